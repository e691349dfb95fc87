package model

import "time"

// Category is a budget envelope with an allocated ceiling and a running
// remaining balance. RemainingBudget only decreases, and only by the
// approved amount of a proposal decided against this category.
type Category struct {
	CreatedAt       time.Time `json:"created_at"`
	Name            string    `json:"name"`
	ID              int       `json:"id"`
	AllocatedBudget float64   `json:"allocated_budget"`
	RemainingBudget float64   `json:"remaining_budget"`
}

// Committed returns the portion of the allocation already consumed by
// approved proposals. An edit may never reduce the allocation below this.
func (c Category) Committed() float64 {
	return c.AllocatedBudget - c.RemainingBudget
}
