package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/coffertool/coffer/internal/model"
)

// ReplaceSnapshot atomically replaces the cached categories and
// proposals with a fresh fetch and stamps the sync time.
func (s *SnapshotStore) ReplaceSnapshot(ctx context.Context, categories []model.Category, proposals []model.Proposal) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin snapshot transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, table := range []string{"categories", "proposals"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	for _, c := range categories {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO categories (id, name, allocated_budget, remaining_budget, created_at)
			 VALUES (?, ?, ?, ?, ?)`,
			c.ID, c.Name, c.AllocatedBudget, c.RemainingBudget, c.CreatedAt); err != nil {
			return fmt.Errorf("failed to insert category %d: %w", c.ID, err)
		}
	}

	for _, p := range proposals {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO proposals (id, ministry, category_id, title, description,
				requested_amount, status, approved_amount, decision_notes, decided_at, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			p.ID, p.Ministry, p.CategoryID, p.Title, nullString(p.Description),
			p.RequestedAmount, string(p.Status), p.ApprovedAmount, p.DecisionNotes,
			p.DecidedAt, p.CreatedAt); err != nil {
			return fmt.Errorf("failed to insert proposal %d: %w", p.ID, err)
		}
	}

	if err := s.setSyncedAt(ctx, tx, time.Now()); err != nil {
		return fmt.Errorf("failed to stamp sync time: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit snapshot: %w", err)
	}

	slog.Debug("replaced local snapshot",
		"categories", len(categories), "proposals", len(proposals))
	return nil
}

// Categories returns the cached categories ordered by name.
func (s *SnapshotStore) Categories(ctx context.Context) ([]model.Category, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, allocated_budget, remaining_budget, created_at
		FROM categories
		ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	var categories []model.Category
	for rows.Next() {
		var c model.Category
		var createdAt sql.NullTime
		if err := rows.Scan(&c.ID, &c.Name, &c.AllocatedBudget, &c.RemainingBudget, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		c.CreatedAt = createdAt.Time
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}
	return categories, nil
}

// Proposals returns cached proposals matching the filter, ordered by ID.
// A zero categoryID matches every category.
func (s *SnapshotStore) Proposals(ctx context.Context, ministry string, status model.ProposalStatus, categoryID int) ([]model.Proposal, error) {
	query := `
		SELECT id, ministry, category_id, title, description, requested_amount,
			status, approved_amount, decision_notes, decided_at, created_at
		FROM proposals
		WHERE 1=1`
	var args []any
	if ministry != "" {
		query += " AND ministry = ?"
		args = append(args, ministry)
	}
	if status != "" {
		query += " AND status = ?"
		args = append(args, string(status))
	}
	if categoryID > 0 {
		query += " AND category_id = ?"
		args = append(args, categoryID)
	}
	query += " ORDER BY id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query proposals: %w", err)
	}
	defer rows.Close()

	var proposals []model.Proposal
	for rows.Next() {
		var p model.Proposal
		var desc, notes sql.NullString
		var status string
		var approved sql.NullFloat64
		var decidedAt, createdAt sql.NullTime
		if err := rows.Scan(&p.ID, &p.Ministry, &p.CategoryID, &p.Title, &desc,
			&p.RequestedAmount, &status, &approved, &notes, &decidedAt, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan proposal: %w", err)
		}
		p.Status = model.ProposalStatus(status)
		p.Description = desc.String
		if approved.Valid {
			v := approved.Float64
			p.ApprovedAmount = &v
		}
		if notes.Valid {
			n := notes.String
			p.DecisionNotes = &n
		}
		if decidedAt.Valid {
			t := decidedAt.Time
			p.DecidedAt = &t
		}
		p.CreatedAt = createdAt.Time
		proposals = append(proposals, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating proposals: %w", err)
	}
	return proposals, nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
