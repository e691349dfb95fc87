// Package engine implements the proposal lifecycle: submission,
// editing, deletion, and the approve/reject decision flow, together
// with the role and state preconditions that gate each operation.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/coffertool/coffer/internal/api"
	"github.com/coffertool/coffer/internal/common"
	"github.com/coffertool/coffer/internal/model"
)

// Engine drives proposals through their lifecycle on behalf of one
// authenticated user. The acting user is fixed at construction; role
// is immutable for the session.
type Engine struct {
	proposals  ProposalService
	categories CategoryService
	user       model.User
}

// New creates an engine acting as the given user.
func New(proposals ProposalService, categories CategoryService, user model.User) *Engine {
	return &Engine{
		proposals:  proposals,
		categories: categories,
		user:       user,
	}
}

// SubmitRequest carries the fields of a new or edited proposal.
type SubmitRequest struct {
	Ministry        string
	Title           string
	Description     string
	CategoryID      int
	RequestedAmount float64
}

// validate collects every violated field rather than stopping at the
// first, so the user can fix the whole form in one pass.
func (r SubmitRequest) validate() []string {
	var fields []string
	if strings.TrimSpace(r.Ministry) == "" {
		fields = append(fields, "ministry is required")
	}
	if r.CategoryID <= 0 {
		fields = append(fields, "category is required")
	}
	if strings.TrimSpace(r.Title) == "" {
		fields = append(fields, "title is required")
	}
	if math.IsNaN(r.RequestedAmount) || math.IsInf(r.RequestedAmount, 0) || r.RequestedAmount <= 0 {
		fields = append(fields, "requested amount must be a positive number")
	}
	return fields
}

func (r SubmitRequest) apiRequest() api.ProposalRequest {
	var desc *string
	if strings.TrimSpace(r.Description) != "" {
		d := r.Description
		desc = &d
	}
	return api.ProposalRequest{
		Ministry:        r.Ministry,
		CategoryID:      r.CategoryID,
		Title:           r.Title,
		Description:     desc,
		RequestedAmount: r.RequestedAmount,
	}
}

// requireRole gates an operation on the acting user's role. The switch
// is exhaustive over the closed Role set.
func (e *Engine) requireRole(want model.Role, action string) error {
	switch e.user.Role {
	case model.RoleFinance, model.RoleMinistry:
		if e.user.Role != want {
			return &common.PermissionError{
				Msg: fmt.Sprintf("only %s users can %s", want, action),
			}
		}
		return nil
	default:
		return &common.PermissionError{
			Msg: fmt.Sprintf("unknown role %q", e.user.Role),
		}
	}
}

// Submit creates a new Pending proposal. Ministry users may only submit
// for their own ministry; an empty ministry defaults to it.
func (e *Engine) Submit(ctx context.Context, req SubmitRequest) (*model.Proposal, error) {
	if err := e.requireRole(model.RoleMinistry, "submit proposals"); err != nil {
		return nil, err
	}

	if req.Ministry == "" {
		req.Ministry = e.user.Ministry
	}
	if fields := req.validate(); len(fields) > 0 {
		return nil, &common.ValidationError{Fields: fields}
	}
	if e.user.Ministry != "" && req.Ministry != e.user.Ministry {
		return nil, &common.PermissionError{
			Msg: fmt.Sprintf("you can only submit proposals for %s", e.user.Ministry),
		}
	}

	proposal, err := e.proposals.CreateProposal(ctx, req.apiRequest())
	if err != nil {
		return nil, err
	}

	slog.Info("Submitted proposal",
		"id", proposal.ID,
		"ministry", proposal.Ministry,
		"requested_amount", proposal.RequestedAmount)
	return proposal, nil
}

// Approve decides a Pending proposal in favor, for amount. The cap
// min(requested, category.remaining) is evaluated here, at decision
// time, against a freshly fetched category; the locally cached balance
// is never authoritative.
func (e *Engine) Approve(ctx context.Context, proposalID int, amount float64, notes string) (*model.Proposal, error) {
	if err := e.requireRole(model.RoleFinance, "approve proposals"); err != nil {
		return nil, err
	}

	proposal, err := e.proposals.GetProposal(ctx, proposalID)
	if err != nil {
		return nil, err
	}
	if !proposal.Pending() {
		return nil, &common.StateError{
			Msg: fmt.Sprintf("proposal %d is %s; only pending proposals can be approved", proposalID, proposal.Status),
		}
	}

	category, err := e.categories.GetCategory(ctx, proposal.CategoryID)
	if err != nil {
		return nil, err
	}

	maxAmount := proposal.MaxApprovable(*category)
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0 || amount > maxAmount {
		return nil, &common.InvalidAmountError{Max: maxAmount}
	}

	approved, err := e.proposals.ApproveProposal(ctx, proposalID, amount, optionalNotes(notes))
	if err != nil {
		// The authoritative store serializes concurrent approvals; a
		// stale local read surfaces here. Re-fetch before reporting so
		// the caller retries against the real remaining budget.
		var vErr *common.ValidationError
		if errors.As(err, &vErr) {
			if fresh, fErr := e.categories.GetCategory(ctx, proposal.CategoryID); fErr == nil {
				return nil, &common.InvalidAmountError{Max: proposal.MaxApprovable(*fresh)}
			}
		}
		return nil, err
	}

	slog.Info("Approved proposal",
		"id", approved.ID,
		"approved_amount", amount,
		"category_id", proposal.CategoryID)
	return approved, nil
}

// Reject decides a Pending proposal against. No budget effect.
func (e *Engine) Reject(ctx context.Context, proposalID int, notes string) (*model.Proposal, error) {
	if err := e.requireRole(model.RoleFinance, "reject proposals"); err != nil {
		return nil, err
	}

	proposal, err := e.proposals.GetProposal(ctx, proposalID)
	if err != nil {
		return nil, err
	}
	if !proposal.Pending() {
		return nil, &common.StateError{
			Msg: fmt.Sprintf("proposal %d is %s; only pending proposals can be rejected", proposalID, proposal.Status),
		}
	}

	rejected, err := e.proposals.RejectProposal(ctx, proposalID, optionalNotes(notes))
	if err != nil {
		return nil, err
	}

	slog.Info("Rejected proposal", "id", rejected.ID)
	return rejected, nil
}

// EditDraftProposal updates a Pending proposal owned by the caller's
// ministry. Fields are re-validated exactly as on submission.
func (e *Engine) EditDraftProposal(ctx context.Context, proposalID int, req SubmitRequest) (*model.Proposal, error) {
	if err := e.requireRole(model.RoleMinistry, "edit proposals"); err != nil {
		return nil, err
	}

	proposal, err := e.proposals.GetProposal(ctx, proposalID)
	if err != nil {
		return nil, err
	}
	if !proposal.Pending() {
		return nil, &common.StateError{
			Msg: fmt.Sprintf("proposal %d is %s; decisions are final", proposalID, proposal.Status),
		}
	}
	if e.user.Ministry == "" || proposal.Ministry != e.user.Ministry {
		return nil, &common.PermissionError{
			Msg: "you can only edit proposals from your own ministry",
		}
	}

	if req.Ministry == "" {
		req.Ministry = e.user.Ministry
	}
	if fields := req.validate(); len(fields) > 0 {
		return nil, &common.ValidationError{Fields: fields}
	}
	if req.Ministry != e.user.Ministry {
		return nil, &common.PermissionError{
			Msg: fmt.Sprintf("you can only submit proposals for %s", e.user.Ministry),
		}
	}

	return e.proposals.UpdateProposal(ctx, proposalID, req.apiRequest())
}

// DeleteProposal removes a Pending proposal owned by the caller's
// ministry. A reason is required; the check happens before any network
// call, never silently proceeding without one.
func (e *Engine) DeleteProposal(ctx context.Context, proposalID int, reason string) error {
	if err := e.requireRole(model.RoleMinistry, "delete proposals"); err != nil {
		return err
	}
	if strings.TrimSpace(reason) == "" {
		return common.NewValidationError("a deletion reason is required")
	}

	proposal, err := e.proposals.GetProposal(ctx, proposalID)
	if err != nil {
		return err
	}
	if !proposal.Pending() {
		return &common.StateError{
			Msg: fmt.Sprintf("proposal %d is %s; decided proposals cannot be deleted", proposalID, proposal.Status),
		}
	}
	if e.user.Ministry == "" || proposal.Ministry != e.user.Ministry {
		return &common.PermissionError{
			Msg: "you can only delete proposals from your own ministry",
		}
	}

	if err := e.proposals.DeleteProposal(ctx, proposalID, reason); err != nil {
		return err
	}

	slog.Info("Deleted proposal", "id", proposalID, "reason", reason)
	return nil
}

// List returns proposals visible to the acting user, after normalizing
// the filter. Ministry users see only their own ministry's proposals.
func (e *Engine) List(ctx context.Context, filter api.ProposalFilter) ([]model.Proposal, error) {
	switch e.user.Role {
	case model.RoleMinistry:
		filter.Ministry = e.user.Ministry
	case model.RoleFinance:
		// Finance sees everything.
	default:
		return nil, &common.PermissionError{Msg: fmt.Sprintf("unknown role %q", e.user.Role)}
	}
	return e.proposals.ListProposals(ctx, filter)
}

func optionalNotes(notes string) *string {
	notes = strings.TrimSpace(notes)
	if notes == "" {
		return nil
	}
	return &notes
}
