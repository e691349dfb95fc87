package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"

	"github.com/coffertool/coffer/internal/common"
	"github.com/coffertool/coffer/internal/model"
)

type parseResponse struct {
	Drafts []model.Draft `json:"drafts"`
}

// ParseContract uploads a contract file and returns the server-parsed
// draft rows. Interpreting the file bytes is entirely the server's job;
// the client only streams them. Every returned draft gets a fresh
// correlation ID.
func (c *Client) ParseContract(ctx context.Context, filename string, contents io.Reader) ([]model.Draft, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	part, err := w.CreateFormFile("file", filepath.Base(filename))
	if err != nil {
		return nil, fmt.Errorf("failed to build multipart form: %w", err)
	}
	if _, err := io.Copy(part, contents); err != nil {
		return nil, fmt.Errorf("failed to read contract file: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize multipart form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/contracts/parse", &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &common.NetworkError{Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return nil, classifyError(resp)
	}

	var out parseResponse
	if err := decodeJSON(resp.Body, &out); err != nil {
		return nil, err
	}

	for i := range out.Drafts {
		out.Drafts[i].NewCorrelationID()
	}
	return out.Drafts, nil
}
