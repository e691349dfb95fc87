package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/coffertool/coffer/internal/model"
)

// MinistrySummary is the per-ministry rollup reported by the API.
type MinistrySummary struct {
	Name           string  `json:"name"`
	ProposalCount  int     `json:"proposal_count"`
	TotalRequested float64 `json:"total_requested"`
	TotalApproved  float64 `json:"total_approved"`
}

// DashboardSummary is the server's denormalized dashboard payload.
type DashboardSummary struct {
	KPIs       map[string]float64 `json:"kpis"`
	Categories []model.Category   `json:"categories"`
	Ministries []MinistrySummary  `json:"ministries"`
}

// GetDashboardSummary fetches the server-side dashboard rollup.
func (c *Client) GetDashboardSummary(ctx context.Context) (*DashboardSummary, error) {
	var out DashboardSummary
	if err := c.get(ctx, "/dashboard/summary", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func decodeJSON(r io.Reader, out any) error {
	if err := json.NewDecoder(r).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
