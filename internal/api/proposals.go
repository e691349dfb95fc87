package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/coffertool/coffer/internal/model"
)

// ProposalFilter narrows a proposal listing. Zero values mean "no
// constraint". Amount bounds use pointers so a zero bound is expressible.
type ProposalFilter struct {
	MinAmount  *float64
	MaxAmount  *float64
	Ministry   string
	Status     model.ProposalStatus
	CategoryID int
}

// Query renders the filter as URL query parameters.
func (f ProposalFilter) Query() url.Values {
	q := url.Values{}
	if f.Ministry != "" {
		q.Set("ministry", f.Ministry)
	}
	if f.Status != "" {
		q.Set("status", string(f.Status))
	}
	if f.CategoryID > 0 {
		q.Set("category_id", strconv.Itoa(f.CategoryID))
	}
	if f.MinAmount != nil {
		q.Set("min_amount", strconv.FormatFloat(*f.MinAmount, 'f', -1, 64))
	}
	if f.MaxAmount != nil {
		q.Set("max_amount", strconv.FormatFloat(*f.MaxAmount, 'f', -1, 64))
	}
	return q
}

// ProposalRequest is the payload for creating or editing a proposal.
type ProposalRequest struct {
	Description     *string `json:"description"`
	Ministry        string  `json:"ministry,omitempty"`
	Title           string  `json:"title"`
	CategoryID      int     `json:"category_id"`
	RequestedAmount float64 `json:"requested_amount"`
}

// ListProposals returns proposals matching the filter.
func (c *Client) ListProposals(ctx context.Context, filter ProposalFilter) ([]model.Proposal, error) {
	var out []model.Proposal
	if err := c.get(ctx, "/proposals", filter.Query(), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateProposal submits a new proposal. It is created Pending.
func (c *Client) CreateProposal(ctx context.Context, req ProposalRequest) (*model.Proposal, error) {
	var out model.Proposal
	if err := c.post(ctx, "/proposals", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateProposal edits a Pending proposal.
func (c *Client) UpdateProposal(ctx context.Context, id int, req ProposalRequest) (*model.Proposal, error) {
	var out model.Proposal
	if err := c.put(ctx, fmt.Sprintf("/proposals/%d", id), req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteProposal removes a Pending proposal. The reason travels in the
// request body, matching the API contract.
func (c *Client) DeleteProposal(ctx context.Context, id int, reason string) error {
	body := map[string]string{"reason": reason}
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/proposals/%d", id), nil, body, nil)
}

// ApproveProposal applies an approval decision.
func (c *Client) ApproveProposal(ctx context.Context, id int, amount float64, notes *string) (*model.Proposal, error) {
	body := map[string]any{
		"approved_amount": amount,
		"decision_notes":  notes,
	}
	var out model.Proposal
	if err := c.post(ctx, fmt.Sprintf("/proposals/%d/approve", id), body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RejectProposal applies a rejection decision.
func (c *Client) RejectProposal(ctx context.Context, id int, notes *string) (*model.Proposal, error) {
	body := map[string]any{"decision_notes": notes}
	var out model.Proposal
	if err := c.post(ctx, fmt.Sprintf("/proposals/%d/reject", id), body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetProposal returns one proposal by ID.
func (c *Client) GetProposal(ctx context.Context, id int) (*model.Proposal, error) {
	var out model.Proposal
	if err := c.get(ctx, fmt.Sprintf("/proposals/%d", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
