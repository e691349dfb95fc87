// Package registry manages budget categories: the envelopes proposals
// draw from. It layers client-side validation and referential checks on
// top of the category API and notifies subscribers after any mutation,
// so dependent views re-fetch instead of listening for ad-hoc global
// events.
package registry

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"sync"

	"github.com/coffertool/coffer/internal/api"
	"github.com/coffertool/coffer/internal/common"
	"github.com/coffertool/coffer/internal/model"
)

// CategoryAPI is the slice of the API the registry drives. Implemented
// by *api.Client.
type CategoryAPI interface {
	ListCategories(ctx context.Context) ([]model.Category, error)
	CreateCategory(ctx context.Context, req api.CategoryRequest) (*model.Category, error)
	UpdateCategory(ctx context.Context, id int, req api.CategoryRequest) (*model.Category, error)
	DeleteCategory(ctx context.Context, id int) error
}

// ProposalLister is used to refuse deleting a category that proposals
// still reference.
type ProposalLister interface {
	ListProposals(ctx context.Context, filter api.ProposalFilter) ([]model.Proposal, error)
}

// Observer is notified after the registry mutates a category.
type Observer interface {
	CategoriesChanged()
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func()

// CategoriesChanged implements Observer.
func (f ObserverFunc) CategoriesChanged() { f() }

// Registry is the client-side source of truth for category operations.
// Category mutation is a finance-only concern; the acting user's role
// gates every write.
type Registry struct {
	api       CategoryAPI
	proposals ProposalLister
	user      model.User

	mu        sync.Mutex
	observers []Observer
}

// New creates a registry acting as the given user.
func New(categoryAPI CategoryAPI, proposals ProposalLister, user model.User) *Registry {
	return &Registry{api: categoryAPI, proposals: proposals, user: user}
}

// Subscribe registers an observer for mutation notifications.
func (r *Registry) Subscribe(o Observer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.observers = append(r.observers, o)
}

func (r *Registry) notify() {
	r.mu.Lock()
	observers := make([]Observer, len(r.observers))
	copy(observers, r.observers)
	r.mu.Unlock()

	for _, o := range observers {
		o.CategoriesChanged()
	}
}

func (r *Registry) requireFinance(action string) error {
	switch r.user.Role {
	case model.RoleFinance:
		return nil
	case model.RoleMinistry:
		return &common.PermissionError{
			Msg: fmt.Sprintf("only finance users can %s", action),
		}
	default:
		return &common.PermissionError{
			Msg: fmt.Sprintf("unknown role %q", r.user.Role),
		}
	}
}

// List returns all categories. Readable by every role.
func (r *Registry) List(ctx context.Context) ([]model.Category, error) {
	return r.api.ListCategories(ctx)
}

// Get returns a category by ID.
func (r *Registry) Get(ctx context.Context, id int) (*model.Category, error) {
	categories, err := r.api.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	for i := range categories {
		if categories[i].ID == id {
			return &categories[i], nil
		}
	}
	return nil, fmt.Errorf("category %d: %w", id, common.ErrNotFound)
}

func validateBudget(name string, allocated float64) []string {
	var fields []string
	if strings.TrimSpace(name) == "" {
		fields = append(fields, "name is required")
	}
	// Strictly positive: a zero-budget category can never fund anything.
	if math.IsNaN(allocated) || math.IsInf(allocated, 0) || allocated <= 0 {
		fields = append(fields, "allocated budget must be a positive number")
	}
	return fields
}

// Create adds a new category with the full allocation remaining.
func (r *Registry) Create(ctx context.Context, name string, allocated float64) (*model.Category, error) {
	if err := r.requireFinance("create categories"); err != nil {
		return nil, err
	}
	if fields := validateBudget(name, allocated); len(fields) > 0 {
		return nil, &common.ValidationError{Fields: fields}
	}

	cat, err := r.api.CreateCategory(ctx, api.CategoryRequest{Name: name, AllocatedBudget: allocated})
	if err != nil {
		return nil, err
	}

	slog.Info("Created category", "id", cat.ID, "name", cat.Name, "allocated", cat.AllocatedBudget)
	r.notify()
	return cat, nil
}

// Update edits a category. The new allocation may not fall below the
// amount already committed to approved proposals.
func (r *Registry) Update(ctx context.Context, id int, name string, allocated float64) (*model.Category, error) {
	if err := r.requireFinance("update categories"); err != nil {
		return nil, err
	}
	if fields := validateBudget(name, allocated); len(fields) > 0 {
		return nil, &common.ValidationError{Fields: fields}
	}

	current, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if committed := current.Committed(); allocated < committed {
		return nil, common.NewValidationError(fmt.Sprintf(
			"allocated budget cannot drop below the %.2f already committed", committed))
	}

	cat, err := r.api.UpdateCategory(ctx, id, api.CategoryRequest{Name: name, AllocatedBudget: allocated})
	if err != nil {
		return nil, err
	}

	slog.Info("Updated category", "id", cat.ID, "allocated", cat.AllocatedBudget)
	r.notify()
	return cat, nil
}

// Delete removes a category. Refused while any Pending or Approved
// proposal references it; proposals are never silently orphaned.
func (r *Registry) Delete(ctx context.Context, id int) error {
	if err := r.requireFinance("delete categories"); err != nil {
		return err
	}

	for _, status := range []model.ProposalStatus{model.StatusPending, model.StatusApproved} {
		refs, err := r.proposals.ListProposals(ctx, api.ProposalFilter{CategoryID: id, Status: status})
		if err != nil {
			return err
		}
		if len(refs) > 0 {
			return &common.ConflictError{
				Msg: fmt.Sprintf("category %d still has %d %s proposal(s)", id, len(refs), strings.ToLower(string(status))),
			}
		}
	}

	if err := r.api.DeleteCategory(ctx, id); err != nil {
		return err
	}

	slog.Info("Deleted category", "id", id)
	r.notify()
	return nil
}
