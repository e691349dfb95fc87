package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/coffertool/coffer/internal/api"
	"github.com/coffertool/coffer/internal/common"
	"github.com/coffertool/coffer/internal/model"
)

// MockAPI is an in-memory ProposalService and CategoryService for
// tests. It applies the server-side budget arithmetic so lifecycle
// tests can assert category effects end to end.
type MockAPI struct {
	mu         sync.Mutex
	proposals  map[int]*model.Proposal
	categories map[int]*model.Category
	nextID     int

	// CreateCalls counts CreateProposal invocations, for idempotence
	// assertions.
	CreateCalls int
	// FailCreate forces CreateProposal to fail when set.
	FailCreate error
}

// NewMockAPI creates an empty mock backend.
func NewMockAPI() *MockAPI {
	return &MockAPI{
		proposals:  make(map[int]*model.Proposal),
		categories: make(map[int]*model.Category),
		nextID:     1,
	}
}

// AddCategory seeds a category.
func (m *MockAPI) AddCategory(cat model.Category) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := cat
	m.categories[cat.ID] = &c
}

// AddProposal seeds a proposal and returns its assigned ID.
func (m *MockAPI) AddProposal(p model.Proposal) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p.ID == 0 {
		p.ID = m.nextID
		m.nextID++
	}
	cp := p
	m.proposals[p.ID] = &cp
	return p.ID
}

// GetProposal implements ProposalService.
func (m *MockAPI) GetProposal(_ context.Context, id int) (*model.Proposal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.proposals[id]
	if !ok {
		return nil, fmt.Errorf("proposal %d: %w", id, common.ErrNotFound)
	}
	cp := *p
	return &cp, nil
}

// ListProposals implements ProposalService.
func (m *MockAPI) ListProposals(_ context.Context, filter api.ProposalFilter) ([]model.Proposal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Proposal
	for _, p := range m.proposals {
		if filter.Ministry != "" && p.Ministry != filter.Ministry {
			continue
		}
		if filter.Status != "" && p.Status != filter.Status {
			continue
		}
		if filter.CategoryID > 0 && p.CategoryID != filter.CategoryID {
			continue
		}
		if filter.MinAmount != nil && p.RequestedAmount < *filter.MinAmount {
			continue
		}
		if filter.MaxAmount != nil && p.RequestedAmount > *filter.MaxAmount {
			continue
		}
		out = append(out, *p)
	}
	return out, nil
}

// CreateProposal implements ProposalService.
func (m *MockAPI) CreateProposal(_ context.Context, req api.ProposalRequest) (*model.Proposal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CreateCalls++
	if m.FailCreate != nil {
		return nil, m.FailCreate
	}
	if _, ok := m.categories[req.CategoryID]; !ok {
		return nil, fmt.Errorf("category %d: %w", req.CategoryID, common.ErrNotFound)
	}
	p := &model.Proposal{
		ID:              m.nextID,
		Ministry:        req.Ministry,
		CategoryID:      req.CategoryID,
		Title:           req.Title,
		RequestedAmount: req.RequestedAmount,
		Status:          model.StatusPending,
	}
	if req.Description != nil {
		p.Description = *req.Description
	}
	m.nextID++
	m.proposals[p.ID] = p
	cp := *p
	return &cp, nil
}

// UpdateProposal implements ProposalService.
func (m *MockAPI) UpdateProposal(_ context.Context, id int, req api.ProposalRequest) (*model.Proposal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.proposals[id]
	if !ok {
		return nil, fmt.Errorf("proposal %d: %w", id, common.ErrNotFound)
	}
	if p.Status != model.StatusPending {
		return nil, &common.ConflictError{Msg: "only pending proposals can be edited"}
	}
	p.Ministry = req.Ministry
	p.CategoryID = req.CategoryID
	p.Title = req.Title
	p.RequestedAmount = req.RequestedAmount
	if req.Description != nil {
		p.Description = *req.Description
	}
	cp := *p
	return &cp, nil
}

// DeleteProposal implements ProposalService.
func (m *MockAPI) DeleteProposal(_ context.Context, id int, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.proposals[id]; !ok {
		return fmt.Errorf("proposal %d: %w", id, common.ErrNotFound)
	}
	delete(m.proposals, id)
	return nil
}

// ApproveProposal implements ProposalService, including the atomic
// budget decrement the real store performs.
func (m *MockAPI) ApproveProposal(_ context.Context, id int, amount float64, notes *string) (*model.Proposal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.proposals[id]
	if !ok {
		return nil, fmt.Errorf("proposal %d: %w", id, common.ErrNotFound)
	}
	if p.Status != model.StatusPending {
		return nil, &common.ConflictError{Msg: "only pending proposals can be approved"}
	}
	cat, ok := m.categories[p.CategoryID]
	if !ok {
		return nil, fmt.Errorf("category %d: %w", p.CategoryID, common.ErrNotFound)
	}
	if amount <= 0 || amount > p.RequestedAmount || amount > cat.RemainingBudget {
		return nil, common.NewValidationError("approved_amount out of range")
	}

	cat.RemainingBudget -= amount
	now := time.Now().UTC()
	p.Status = model.StatusApproved
	p.ApprovedAmount = &amount
	p.DecisionNotes = notes
	p.DecidedAt = &now
	cp := *p
	return &cp, nil
}

// RejectProposal implements ProposalService.
func (m *MockAPI) RejectProposal(_ context.Context, id int, notes *string) (*model.Proposal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.proposals[id]
	if !ok {
		return nil, fmt.Errorf("proposal %d: %w", id, common.ErrNotFound)
	}
	if p.Status != model.StatusPending {
		return nil, &common.ConflictError{Msg: "only pending proposals can be rejected"}
	}
	now := time.Now().UTC()
	p.Status = model.StatusRejected
	p.DecisionNotes = notes
	p.DecidedAt = &now
	cp := *p
	return &cp, nil
}

// GetCategory implements CategoryService.
func (m *MockAPI) GetCategory(_ context.Context, id int) (*model.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cat, ok := m.categories[id]
	if !ok {
		return nil, fmt.Errorf("category %d: %w", id, common.ErrNotFound)
	}
	cp := *cat
	return &cp, nil
}
