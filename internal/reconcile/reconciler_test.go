package reconcile

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coffertool/coffer/internal/api"
	"github.com/coffertool/coffer/internal/model"
)

type slowCreator struct {
	mu      sync.Mutex
	calls   []api.ProposalRequest
	delay   time.Duration
	failFor map[string]error
}

func (c *slowCreator) CreateProposal(_ context.Context, req api.ProposalRequest) (*model.Proposal, error) {
	if c.delay > 0 {
		time.Sleep(c.delay)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if err, ok := c.failFor[req.Title]; ok {
		return nil, err
	}
	c.calls = append(c.calls, req)
	return &model.Proposal{
		ID:              len(c.calls),
		Ministry:        req.Ministry,
		CategoryID:      req.CategoryID,
		Title:           req.Title,
		RequestedAmount: req.RequestedAmount,
		Status:          model.StatusPending,
	}, nil
}

func (c *slowCreator) callCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.calls)
}

func draft(ministry, title string, amount float64, valid bool) model.Draft {
	return model.Draft{
		Ministry:        ministry,
		CategoryName:    "Infrastructure",
		CategoryID:      1,
		Title:           title,
		RequestedAmount: amount,
		Valid:           valid,
	}
}

func TestReconcile(t *testing.T) {
	t.Run("marks natural-key matches as created", func(t *testing.T) {
		r := New(&slowCreator{}, []model.Draft{
			draft("Health", "Rural clinics", 600_000, true),
			draft("Health", "Vaccines", 200_000, true),
		}, io.Discard)

		r.Reconcile([]model.Proposal{
			{Ministry: "Health", Title: "Rural clinics", RequestedAmount: 600_000, Status: model.StatusApproved},
		})

		drafts := r.Drafts()
		assert.True(t, drafts[0].IsCreated)
		assert.False(t, drafts[1].IsCreated)
	})

	t.Run("two identical rows both match one existing proposal", func(t *testing.T) {
		r := New(&slowCreator{}, []model.Draft{
			draft("Health", "Rural clinics", 600_000, true),
			draft("Health", "Rural clinics", 600_000, true),
		}, io.Discard)

		r.Reconcile([]model.Proposal{
			{Ministry: "Health", Title: "Rural clinics", RequestedAmount: 600_000, Status: model.StatusApproved},
		})

		for _, d := range r.Drafts() {
			assert.True(t, d.IsCreated)
		}
	})

	t.Run("assigns correlation ids", func(t *testing.T) {
		r := New(&slowCreator{}, []model.Draft{
			draft("Health", "A", 1, true),
			draft("Health", "B", 2, true),
		}, io.Discard)

		drafts := r.Drafts()
		assert.NotEmpty(t, drafts[0].CorrelationID)
		assert.NotEmpty(t, drafts[1].CorrelationID)
		assert.NotEqual(t, drafts[0].CorrelationID, drafts[1].CorrelationID)
	})
}

func TestCreateOne(t *testing.T) {
	ctx := context.Background()

	t.Run("skips invalid, created, and in-flight rows", func(t *testing.T) {
		creator := &slowCreator{}
		created := draft("Health", "Done", 1, true)
		created.IsCreated = true
		r := New(creator, []model.Draft{
			draft("Health", "Bad row", 0, false),
			created,
		}, io.Discard)

		require.NoError(t, r.CreateOne(ctx, 0))
		require.NoError(t, r.CreateOne(ctx, 1))
		assert.Zero(t, creator.callCount())
	})

	t.Run("concurrent invocation submits exactly once", func(t *testing.T) {
		creator := &slowCreator{delay: 50 * time.Millisecond}
		r := New(creator, []model.Draft{draft("Health", "Clinics", 100, true)}, io.Discard)

		var wg sync.WaitGroup
		for range [8]struct{}{} {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_ = r.CreateOne(ctx, 0)
			}()
		}
		wg.Wait()

		assert.Equal(t, 1, creator.callCount())
		assert.True(t, r.Drafts()[0].IsCreated)
	})

	t.Run("failure leaves row retryable", func(t *testing.T) {
		boom := errors.New("insufficient budget")
		creator := &slowCreator{failFor: map[string]error{"Clinics": boom}}
		r := New(creator, []model.Draft{draft("Health", "Clinics", 100, true)}, io.Discard)

		err := r.CreateOne(ctx, 0)
		var rowErr RowError
		require.ErrorAs(t, err, &rowErr)
		assert.Equal(t, 0, rowErr.Index)

		d := r.Drafts()[0]
		assert.False(t, d.IsCreating)
		assert.False(t, d.IsCreated)

		// Retry succeeds once the server-side condition clears.
		delete(creator.failFor, "Clinics")
		require.NoError(t, r.CreateOne(ctx, 0))
		assert.True(t, r.Drafts()[0].IsCreated)
	})
}

func TestCreateAllValid(t *testing.T) {
	ctx := context.Background()

	t.Run("processes rows sequentially in stable order", func(t *testing.T) {
		creator := &slowCreator{}
		r := New(creator, []model.Draft{
			draft("Health", "A", 1, true),
			draft("Health", "B", 2, false),
			draft("Health", "C", 3, true),
		}, io.Discard)

		failures := r.CreateAllValid(ctx)
		assert.Empty(t, failures)
		require.Equal(t, 2, creator.callCount())
		assert.Equal(t, "A", creator.calls[0].Title)
		assert.Equal(t, "C", creator.calls[1].Title)
	})

	t.Run("one failure does not abort later rows", func(t *testing.T) {
		creator := &slowCreator{failFor: map[string]error{"B": errors.New("category gone")}}
		r := New(creator, []model.Draft{
			draft("Health", "A", 1, true),
			draft("Health", "B", 2, true),
			draft("Health", "C", 3, true),
		}, io.Discard)

		failures := r.CreateAllValid(ctx)
		require.Len(t, failures, 1)
		assert.Equal(t, 1, failures[0].Index)

		drafts := r.Drafts()
		assert.True(t, drafts[0].IsCreated)
		assert.False(t, drafts[1].IsCreated)
		assert.True(t, drafts[2].IsCreated)
	})

	t.Run("reconciled rows are never submitted", func(t *testing.T) {
		creator := &slowCreator{}
		r := New(creator, []model.Draft{
			draft("Health", "Rural clinics", 600_000, true),
			draft("Health", "Rural clinics", 600_000, true),
		}, io.Discard)
		r.Reconcile([]model.Proposal{
			{Ministry: "Health", Title: "Rural clinics", RequestedAmount: 600_000, Status: model.StatusApproved},
		})

		failures := r.CreateAllValid(ctx)
		assert.Empty(t, failures)
		assert.Zero(t, creator.callCount())
	})
}
