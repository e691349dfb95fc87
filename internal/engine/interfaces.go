package engine

import (
	"context"

	"github.com/coffertool/coffer/internal/api"
	"github.com/coffertool/coffer/internal/model"
)

// ProposalService is the slice of the API the engine drives proposals
// through. Implemented by *api.Client.
type ProposalService interface {
	GetProposal(ctx context.Context, id int) (*model.Proposal, error)
	ListProposals(ctx context.Context, filter api.ProposalFilter) ([]model.Proposal, error)
	CreateProposal(ctx context.Context, req api.ProposalRequest) (*model.Proposal, error)
	UpdateProposal(ctx context.Context, id int, req api.ProposalRequest) (*model.Proposal, error)
	DeleteProposal(ctx context.Context, id int, reason string) error
	ApproveProposal(ctx context.Context, id int, amount float64, notes *string) (*model.Proposal, error)
	RejectProposal(ctx context.Context, id int, notes *string) (*model.Proposal, error)
}

// CategoryService supplies category state. The engine re-reads the
// category at decision time rather than trusting any cached balance.
type CategoryService interface {
	GetCategory(ctx context.Context, id int) (*model.Category, error)
}
