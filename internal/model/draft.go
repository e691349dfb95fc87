package model

import (
	"fmt"

	"github.com/google/uuid"
)

// Draft is an unpersisted candidate proposal parsed from an uploaded
// contract file. It has no server identity before creation; CorrelationID
// is a client-generated key used to track the row through reconciliation
// and creation, never to be confused with a server-assigned proposal ID.
type Draft struct {
	CorrelationID   string   `json:"-"`
	Ministry        string   `json:"ministry"`
	CategoryName    string   `json:"category_name"`
	Title           string   `json:"title"`
	Description     string   `json:"description,omitempty"`
	Errors          []string `json:"errors,omitempty"`
	CategoryID      int      `json:"category_id"`
	RequestedAmount float64  `json:"requested_amount"`
	Valid           bool     `json:"valid"`

	// Client-local creation flags. IsCreating guards the in-flight
	// window of a create call; IsCreated is permanent once the row
	// matched an existing proposal or a create succeeded.
	IsCreating bool `json:"-"`
	IsCreated  bool `json:"-"`
}

// NewCorrelationID assigns a fresh correlation ID to the draft.
func (d *Draft) NewCorrelationID() {
	d.CorrelationID = uuid.NewString()
}

// Key returns the natural key used for duplicate detection against
// existing proposals: ministry, title, and requested amount. Approximate
// by construction; two distinct proposals sharing all three fields would
// collide.
func (d Draft) Key() string {
	return proposalKey(d.Ministry, d.Title, d.RequestedAmount)
}

// Key returns the proposal's natural key in the same form as Draft.Key.
func (p Proposal) Key() string {
	return proposalKey(p.Ministry, p.Title, p.RequestedAmount)
}

func proposalKey(ministry, title string, amount float64) string {
	return fmt.Sprintf("%s\x00%s\x00%.2f", ministry, title, amount)
}
