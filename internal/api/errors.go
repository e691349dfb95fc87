package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/coffertool/coffer/internal/common"
)

// errorBody is the API's error envelope. Detail is a string, an object
// with a msg field, or an array of such objects for validation errors.
type errorBody struct {
	Detail json.RawMessage `json:"detail"`
}

type detailEntry struct {
	Msg     string `json:"msg"`
	Message string `json:"message"`
}

func (d detailEntry) text() string {
	if d.Msg != "" {
		return d.Msg
	}
	return d.Message
}

// decodeDetail extracts the human-readable messages from an error body,
// handling all three detail shapes uniformly.
func decodeDetail(data []byte) []string {
	var body errorBody
	if err := json.Unmarshal(data, &body); err != nil || len(body.Detail) == 0 {
		// Some errors come back as a bare string body.
		var plain string
		if err := json.Unmarshal(data, &plain); err == nil && plain != "" {
			return []string{plain}
		}
		return nil
	}

	var s string
	if err := json.Unmarshal(body.Detail, &s); err == nil {
		return []string{s}
	}

	var entry detailEntry
	if err := json.Unmarshal(body.Detail, &entry); err == nil && entry.text() != "" {
		return []string{entry.text()}
	}

	var entries []detailEntry
	if err := json.Unmarshal(body.Detail, &entries); err == nil {
		msgs := make([]string, 0, len(entries))
		for _, e := range entries {
			if t := e.text(); t != "" {
				msgs = append(msgs, t)
			}
		}
		if len(msgs) > 0 {
			return msgs
		}
	}

	return []string{string(body.Detail)}
}

// classifyError maps an API error response onto the shared error
// taxonomy. The response body is fully read here.
func classifyError(resp *http.Response) error {
	data, _ := io.ReadAll(resp.Body)
	msgs := decodeDetail(data)
	msg := strings.Join(msgs, ", ")
	if msg == "" {
		msg = fmt.Sprintf("request failed with status %d", resp.StatusCode)
	}

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return fmt.Errorf("%w: %s", common.ErrNotAuthenticated, msg)
	case http.StatusForbidden:
		return &common.PermissionError{Msg: msg}
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", common.ErrNotFound, msg)
	case http.StatusConflict:
		return &common.ConflictError{Msg: msg}
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s", common.ErrRateLimit, msg)
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		if len(msgs) == 0 {
			msgs = []string{msg}
		}
		return &common.ValidationError{Fields: msgs}
	default:
		if resp.StatusCode >= 500 {
			return &common.NetworkError{Err: fmt.Errorf("server error %d: %s", resp.StatusCode, msg)}
		}
		return fmt.Errorf("API error %d: %s", resp.StatusCode, msg)
	}
}
