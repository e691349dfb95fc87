// Package reconcile turns parsed contract drafts into proposals while
// suppressing duplicate creation. Each draft row carries local
// isCreating/isCreated flags; the in-flight window of a create call is
// a critical section guarded by the flag, not by UI state.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/schollz/progressbar/v3"

	"github.com/coffertool/coffer/internal/api"
	"github.com/coffertool/coffer/internal/model"
)

// ProposalCreator is the single creation path shared with manual
// submission. Implemented by *api.Client.
type ProposalCreator interface {
	CreateProposal(ctx context.Context, req api.ProposalRequest) (*model.Proposal, error)
}

// RowError records a failed creation without aborting the run.
type RowError struct {
	Err   error
	Title string
	Index int
}

func (e RowError) Error() string {
	return fmt.Sprintf("draft %d (%s): %v", e.Index, e.Title, e.Err)
}

// Reconciler owns a batch of draft rows through review and creation.
type Reconciler struct {
	creator  ProposalCreator
	progress io.Writer

	mu     sync.Mutex
	drafts []model.Draft
}

// New creates a reconciler over the given drafts. Rows missing a
// correlation ID get one assigned. Progress output goes to progress;
// pass io.Discard to silence it.
func New(creator ProposalCreator, drafts []model.Draft, progress io.Writer) *Reconciler {
	if progress == nil {
		progress = io.Discard
	}
	owned := make([]model.Draft, len(drafts))
	copy(owned, drafts)
	for i := range owned {
		if owned[i].CorrelationID == "" {
			owned[i].NewCorrelationID()
		}
	}
	return &Reconciler{creator: creator, drafts: owned, progress: progress}
}

// Drafts returns a snapshot of the rows in stable order.
func (r *Reconciler) Drafts() []model.Draft {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.Draft, len(r.drafts))
	copy(out, r.drafts)
	return out
}

// Reconcile marks rows that already correspond to an existing proposal
// as created, keyed by the (ministry, title, requested_amount) triple.
// The match is a heuristic natural key, not a server identity: two
// genuinely distinct proposals sharing all three fields would collide.
func (r *Reconciler) Reconcile(existing []model.Proposal) {
	keys := make(map[string]struct{}, len(existing))
	for _, p := range existing {
		keys[p.Key()] = struct{}{}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	matched := 0
	for i := range r.drafts {
		if _, ok := keys[r.drafts[i].Key()]; ok {
			r.drafts[i].IsCreated = true
			matched++
		}
	}
	if matched > 0 {
		slog.Info("Reconciled drafts against existing proposals",
			"drafts", len(r.drafts), "already_created", matched)
	}
}

// claim atomically transitions a row into the in-flight state. It
// returns a copy of the row and false when the row must be skipped:
// invalid, already created, or already in flight.
func (r *Reconciler) claim(index int) (model.Draft, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if index < 0 || index >= len(r.drafts) {
		return model.Draft{}, false
	}
	d := r.drafts[index]
	if !d.Valid || d.IsCreating || d.IsCreated {
		return model.Draft{}, false
	}
	r.drafts[index].IsCreating = true
	return r.drafts[index], true
}

// settle records the outcome of an in-flight create. Success marks the
// row permanently created; failure clears the in-flight flag so the row
// stays retryable.
func (r *Reconciler) settle(index int, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.drafts[index].IsCreating = false
	if err == nil {
		r.drafts[index].IsCreated = true
	}
}

// CreateOne submits the draft at index. Re-invocation while a call is
// in flight, or on a created or invalid row, is a no-op.
func (r *Reconciler) CreateOne(ctx context.Context, index int) error {
	d, ok := r.claim(index)
	if !ok {
		return nil
	}

	var desc *string
	if d.Description != "" {
		desc = &d.Description
	}
	_, err := r.creator.CreateProposal(ctx, api.ProposalRequest{
		Ministry:        d.Ministry,
		CategoryID:      d.CategoryID,
		Title:           d.Title,
		Description:     desc,
		RequestedAmount: d.RequestedAmount,
	})
	r.settle(index, err)

	if err != nil {
		return RowError{Index: index, Title: d.Title, Err: err}
	}
	slog.Info("Created proposal from draft",
		"index", index, "title", d.Title, "correlation_id", d.CorrelationID)
	return nil
}

// CreateAllValid submits every valid, uncreated row sequentially in
// stable order; creations against the same category must not race each
// other. A failed row is reported and skipped, never aborting the rest,
// so partial failure leaves a deterministic created prefix and a
// retryable remainder.
func (r *Reconciler) CreateAllValid(ctx context.Context) []RowError {
	total := 0
	for _, d := range r.Drafts() {
		if d.Valid && !d.IsCreated {
			total++
		}
	}

	bar := progressbar.NewOptions(total,
		progressbar.OptionSetWriter(r.progress),
		progressbar.OptionSetDescription("Creating proposals"),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)

	var failures []RowError
	for i := range r.Drafts() {
		select {
		case <-ctx.Done():
			failures = append(failures, RowError{Index: i, Err: ctx.Err()})
			return failures
		default:
		}

		d := r.Drafts()[i]
		if !d.Valid || d.IsCreated || d.IsCreating {
			continue
		}
		if err := r.CreateOne(ctx, i); err != nil {
			var rowErr RowError
			if errors.As(err, &rowErr) {
				failures = append(failures, rowErr)
			} else {
				failures = append(failures, RowError{Index: i, Title: d.Title, Err: err})
			}
		}
		_ = bar.Add(1)
	}
	_ = bar.Finish()

	return failures
}
