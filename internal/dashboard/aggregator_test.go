package dashboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coffertool/coffer/internal/model"
)

func approved(amount float64) *float64 { return &amount }

func TestSummarize(t *testing.T) {
	t.Run("empty inputs report zero utilization", func(t *testing.T) {
		s := Summarize(nil, nil)
		assert.Zero(t, s.KPIs.Utilization)
		assert.Zero(t, s.KPIs.TotalAllocated)
		assert.Empty(t, s.CategoryRows)
		assert.Empty(t, s.MinistryRows)
	})

	t.Run("kpis aggregate across categories and proposals", func(t *testing.T) {
		categories := []model.Category{
			{ID: 1, Name: "Roads", AllocatedBudget: 1_000_000, RemainingBudget: 500_000},
			{ID: 2, Name: "Schools", AllocatedBudget: 500_000, RemainingBudget: 500_000},
		}
		proposals := []model.Proposal{
			{Ministry: "Transport", CategoryID: 1, RequestedAmount: 600_000, Status: model.StatusApproved, ApprovedAmount: approved(500_000)},
			{Ministry: "Transport", CategoryID: 1, RequestedAmount: 100_000, Status: model.StatusPending},
			{Ministry: "Education", CategoryID: 2, RequestedAmount: 50_000, Status: model.StatusRejected},
		}

		s := Summarize(categories, proposals)
		assert.InDelta(t, 1_500_000, s.KPIs.TotalAllocated, 0.001)
		assert.InDelta(t, 1_000_000, s.KPIs.TotalRemaining, 0.001)
		assert.InDelta(t, 500_000, s.KPIs.TotalApproved, 0.001)
		assert.InDelta(t, 500_000.0/1_500_000.0, s.KPIs.Utilization, 0.0001)

		require.Len(t, s.MinistryRows, 2)
		// Sorted by ministry name.
		assert.Equal(t, "Education", s.MinistryRows[0].Ministry)
		transport := s.MinistryRows[1]
		assert.Equal(t, 2, transport.ProposalCount)
		assert.Equal(t, 1, transport.PendingCount)
		assert.InDelta(t, 700_000, transport.TotalRequested, 0.001)
		assert.InDelta(t, 500_000, transport.TotalApproved, 0.001)
	})

	t.Run("rejected proposals never contribute approved amounts", func(t *testing.T) {
		proposals := []model.Proposal{
			{Ministry: "Health", RequestedAmount: 100, Status: model.StatusRejected},
		}
		s := Summarize(nil, proposals)
		assert.Zero(t, s.KPIs.TotalApproved)
		assert.Zero(t, s.MinistryRows[0].TotalApproved)
	})
}
