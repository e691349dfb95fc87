package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coffertool/coffer/internal/common"
	"github.com/coffertool/coffer/internal/model"
)

// newTestClient keeps retry delays out of the test runtime.
func newTestClient(url string) *Client {
	return NewClient(url, WithRetryOptions(common.RetryOptions{
		MaxAttempts:  2,
		InitialDelay: time.Millisecond,
		MaxDelay:     2 * time.Millisecond,
	}))
}

func TestBearerToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewEncoder(w).Encode([]model.Category{})
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	client.SetToken("tok-123")
	_, err := client.ListCategories(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-123", gotAuth)
}

func TestErrorDetailShapes(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "string detail",
			body: `{"detail": "Insufficient remaining budget"}`,
			want: "Insufficient remaining budget",
		},
		{
			name: "object detail",
			body: `{"detail": {"msg": "Only pending proposals can be approved"}}`,
			want: "Only pending proposals can be approved",
		},
		{
			name: "array detail joined with comma",
			body: `{"detail": [{"msg": "title is required"}, {"msg": "amount must be positive"}]}`,
			want: "title is required, amount must be positive",
		},
		{
			name: "array with message key",
			body: `{"detail": [{"message": "ministry is required"}]}`,
			want: "ministry is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			client := NewClient(srv.URL)
			_, err := client.CreateProposal(context.Background(), ProposalRequest{})
			var vErr *common.ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.want, strings.Join(vErr.Fields, ", "))
		})
	}
}

func TestErrorClassification(t *testing.T) {
	tests := []struct {
		check  func(t *testing.T, err error)
		name   string
		status int
	}{
		{
			name:   "401 is not authenticated",
			status: http.StatusUnauthorized,
			check: func(t *testing.T, err error) {
				assert.True(t, errors.Is(err, common.ErrNotAuthenticated))
			},
		},
		{
			name:   "403 is a permission error",
			status: http.StatusForbidden,
			check: func(t *testing.T, err error) {
				var permErr *common.PermissionError
				assert.ErrorAs(t, err, &permErr)
			},
		},
		{
			name:   "404 is not found",
			status: http.StatusNotFound,
			check: func(t *testing.T, err error) {
				assert.True(t, errors.Is(err, common.ErrNotFound))
			},
		},
		{
			name:   "409 is a conflict",
			status: http.StatusConflict,
			check: func(t *testing.T, err error) {
				var cErr *common.ConflictError
				assert.ErrorAs(t, err, &cErr)
			},
		},
		{
			name:   "500 is a retryable network error",
			status: http.StatusInternalServerError,
			check: func(t *testing.T, err error) {
				var nErr *common.NetworkError
				assert.ErrorAs(t, err, &nErr)
				assert.True(t, common.IsRetryable(err))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(`{"detail": "nope"}`))
			}))
			defer srv.Close()

			client := newTestClient(srv.URL)
			_, err := client.GetProposal(context.Background(), 1)
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestConnectionFailureIsNetworkError(t *testing.T) {
	client := newTestClient("http://127.0.0.1:1") // nothing listens here
	_, err := client.ListCategories(context.Background())
	var nErr *common.NetworkError
	require.ErrorAs(t, err, &nErr)
	assert.True(t, common.IsRetryable(err))
}

func TestGetRetriesTransientFailures(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits++
		if hits < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode([]model.Category{{ID: 1, Name: "Infrastructure"}})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, WithRetryOptions(common.RetryOptions{
		MaxAttempts:  3,
		InitialDelay: time.Millisecond,
		MaxDelay:     2 * time.Millisecond,
	}))
	categories, err := client.ListCategories(context.Background())
	require.NoError(t, err)
	require.Len(t, categories, 1)
	assert.Equal(t, 3, hits)
}

func TestMutationsDoNotRetry(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	_, err := client.CreateProposal(context.Background(), ProposalRequest{Title: "x"})
	require.Error(t, err)
	assert.Equal(t, 1, hits, "a failed create must not be reissued")
}

func TestDeleteProposalSendsReasonInBody(t *testing.T) {
	var gotMethod string
	var gotBody map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	require.NoError(t, client.DeleteProposal(context.Background(), 7, "duplicate entry"))
	assert.Equal(t, http.MethodDelete, gotMethod)
	assert.Equal(t, "duplicate entry", gotBody["reason"])
}

func TestApprovePayload(t *testing.T) {
	var gotPath string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_ = json.NewEncoder(w).Encode(model.Proposal{ID: 7, Status: model.StatusApproved})
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	notes := "phase one"
	p, err := client.ApproveProposal(context.Background(), 7, 500_000, &notes)
	require.NoError(t, err)
	assert.Equal(t, "/proposals/7/approve", gotPath)
	assert.InDelta(t, 500_000, gotBody["approved_amount"].(float64), 0.001)
	assert.Equal(t, "phase one", gotBody["decision_notes"])
	assert.Equal(t, model.StatusApproved, p.Status)
}

func TestListProposalsQuery(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		_ = json.NewEncoder(w).Encode([]model.Proposal{})
	}))
	defer srv.Close()

	minAmount := 100.0
	client := NewClient(srv.URL)
	_, err := client.ListProposals(context.Background(), ProposalFilter{
		Ministry:   "Health",
		Status:     model.StatusPending,
		CategoryID: 3,
		MinAmount:  &minAmount,
	})
	require.NoError(t, err)
	assert.Contains(t, gotQuery, "ministry=Health")
	assert.Contains(t, gotQuery, "status=Pending")
	assert.Contains(t, gotQuery, "category_id=3")
	assert.Contains(t, gotQuery, "min_amount=100")
}

func TestParseContract(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1 << 20))
		f, hdr, err := r.FormFile("file")
		require.NoError(t, err)
		defer f.Close()
		assert.Equal(t, "contracts.json", hdr.Filename)

		_ = json.NewEncoder(w).Encode(map[string]any{
			"drafts": []map[string]any{
				{"ministry": "Health", "category_id": 1, "category_name": "Infra", "title": "Clinics", "requested_amount": 100.0, "valid": true},
				{"ministry": "", "title": "", "valid": false, "errors": []string{"missing ministry", "missing title"}},
			},
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	drafts, err := client.ParseContract(context.Background(), "/tmp/contracts.json", strings.NewReader(`[]`))
	require.NoError(t, err)
	require.Len(t, drafts, 2)
	assert.True(t, drafts[0].Valid)
	assert.NotEmpty(t, drafts[0].CorrelationID)
	assert.False(t, drafts[1].Valid)
	assert.NotEqual(t, drafts[0].CorrelationID, drafts[1].CorrelationID)
}
