package model

import (
	"fmt"
	"time"
)

// ProposalStatus tracks a proposal through its lifecycle. Pending is the
// initial state; Approved and Rejected are terminal. There is no
// transition back into Pending.
type ProposalStatus string

const (
	// StatusPending means the proposal awaits a finance decision.
	StatusPending ProposalStatus = "Pending"
	// StatusApproved means the proposal was funded. Terminal.
	StatusApproved ProposalStatus = "Approved"
	// StatusRejected means the proposal was declined. Terminal.
	StatusRejected ProposalStatus = "Rejected"
)

// ParseProposalStatus validates a status string from the API or a filter.
func ParseProposalStatus(s string) (ProposalStatus, error) {
	switch ProposalStatus(s) {
	case StatusPending, StatusApproved, StatusRejected:
		return ProposalStatus(s), nil
	default:
		return "", fmt.Errorf("unknown proposal status %q", s)
	}
}

// Terminal reports whether the status admits no further transitions.
func (s ProposalStatus) Terminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// Proposal is a funding request by a ministry against a category.
type Proposal struct {
	CreatedAt       time.Time      `json:"created_at"`
	DecidedAt       *time.Time     `json:"decided_at"`
	ApprovedAmount  *float64       `json:"approved_amount"`
	DecisionNotes   *string        `json:"decision_notes"`
	Ministry        string         `json:"ministry"`
	Title           string         `json:"title"`
	Description     string         `json:"description,omitempty"`
	Status          ProposalStatus `json:"status"`
	ID              int            `json:"id"`
	CategoryID      int            `json:"category_id"`
	RequestedAmount float64        `json:"requested_amount"`
}

// Pending reports whether the proposal can still be edited, deleted,
// or decided.
func (p Proposal) Pending() bool {
	return p.Status == StatusPending
}

// Consistent checks the lifecycle invariant: Pending iff undecided iff
// no approved amount. Used by tests and defensive checks on API data.
func (p Proposal) Consistent() bool {
	if p.Status == StatusPending {
		return p.ApprovedAmount == nil && p.DecidedAt == nil
	}
	if p.Status == StatusApproved {
		return p.ApprovedAmount != nil && p.DecidedAt != nil
	}
	return p.ApprovedAmount == nil && p.DecidedAt != nil
}

// MaxApprovable is the cap on an approval amount, evaluated against the
// category state at decision time.
func (p Proposal) MaxApprovable(cat Category) float64 {
	if p.RequestedAmount < cat.RemainingBudget {
		return p.RequestedAmount
	}
	return cat.RemainingBudget
}
