// Package dashboard derives read-only KPI rollups from category and
// proposal data. It never mutates anything.
package dashboard

import (
	"sort"

	"github.com/coffertool/coffer/internal/model"
)

// KPIs are the headline numbers for the overview screen.
type KPIs struct {
	TotalAllocated float64
	TotalRemaining float64
	TotalApproved  float64
	// Utilization is (allocated - remaining) / allocated, reported as 0
	// when no budget exists rather than NaN.
	Utilization float64
}

// CategoryRow is the per-category breakdown.
type CategoryRow struct {
	Name      string
	ID        int
	Allocated float64
	Remaining float64
	Committed float64
}

// MinistryRow aggregates proposals per ministry.
type MinistryRow struct {
	Ministry       string
	ProposalCount  int
	PendingCount   int
	TotalRequested float64
	TotalApproved  float64
}

// Summary is the full dashboard rollup.
type Summary struct {
	KPIs         KPIs
	CategoryRows []CategoryRow
	MinistryRows []MinistryRow
}

// Summarize computes the dashboard from raw category and proposal
// lists. Only Approved proposals contribute to approved totals.
func Summarize(categories []model.Category, proposals []model.Proposal) Summary {
	var s Summary

	for _, c := range categories {
		s.KPIs.TotalAllocated += c.AllocatedBudget
		s.KPIs.TotalRemaining += c.RemainingBudget
		s.CategoryRows = append(s.CategoryRows, CategoryRow{
			ID:        c.ID,
			Name:      c.Name,
			Allocated: c.AllocatedBudget,
			Remaining: c.RemainingBudget,
			Committed: c.Committed(),
		})
	}
	sort.Slice(s.CategoryRows, func(i, j int) bool {
		return s.CategoryRows[i].Name < s.CategoryRows[j].Name
	})

	byMinistry := make(map[string]*MinistryRow)
	for _, p := range proposals {
		row, ok := byMinistry[p.Ministry]
		if !ok {
			row = &MinistryRow{Ministry: p.Ministry}
			byMinistry[p.Ministry] = row
		}
		row.ProposalCount++
		row.TotalRequested += p.RequestedAmount
		if p.Status == model.StatusPending {
			row.PendingCount++
		}
		if p.Status == model.StatusApproved && p.ApprovedAmount != nil {
			row.TotalApproved += *p.ApprovedAmount
			s.KPIs.TotalApproved += *p.ApprovedAmount
		}
	}
	for _, row := range byMinistry {
		s.MinistryRows = append(s.MinistryRows, *row)
	}
	sort.Slice(s.MinistryRows, func(i, j int) bool {
		return s.MinistryRows[i].Ministry < s.MinistryRows[j].Ministry
	})

	if s.KPIs.TotalAllocated > 0 {
		s.KPIs.Utilization = (s.KPIs.TotalAllocated - s.KPIs.TotalRemaining) / s.KPIs.TotalAllocated
	}

	return s
}
