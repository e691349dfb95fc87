package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coffertool/coffer/internal/model"
)

func createTestStore(t *testing.T) *SnapshotStore {
	t.Helper()
	store, err := NewSnapshotStore(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	require.NoError(t, store.Migrate(context.Background()))
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestReplaceSnapshot(t *testing.T) {
	ctx := context.Background()
	store := createTestStore(t)

	approved := 500_000.0
	decided := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	categories := []model.Category{
		{ID: 1, Name: "Roads", AllocatedBudget: 1_000_000, RemainingBudget: 500_000, CreatedAt: decided},
	}
	proposals := []model.Proposal{
		{
			ID: 10, Ministry: "Transport", CategoryID: 1, Title: "Bridge repair",
			RequestedAmount: 600_000, Status: model.StatusApproved,
			ApprovedAmount: &approved, DecidedAt: &decided, CreatedAt: decided,
		},
		{
			ID: 11, Ministry: "Health", CategoryID: 1, Title: "Clinic roofs",
			Description: "Phase one", RequestedAmount: 100_000,
			Status: model.StatusPending, CreatedAt: decided,
		},
	}

	require.NoError(t, store.ReplaceSnapshot(ctx, categories, proposals))

	gotCategories, err := store.Categories(ctx)
	require.NoError(t, err)
	require.Len(t, gotCategories, 1)
	assert.Equal(t, "Roads", gotCategories[0].Name)
	assert.InDelta(t, 500_000, gotCategories[0].RemainingBudget, 0.001)

	gotProposals, err := store.Proposals(ctx, "", "", 0)
	require.NoError(t, err)
	require.Len(t, gotProposals, 2)
	require.NotNil(t, gotProposals[0].ApprovedAmount)
	assert.InDelta(t, 500_000, *gotProposals[0].ApprovedAmount, 0.001)
	assert.True(t, gotProposals[0].Consistent())
	assert.Equal(t, "Phase one", gotProposals[1].Description)
	assert.True(t, gotProposals[1].Consistent())

	syncedAt, err := store.SyncedAt(ctx)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now(), syncedAt, time.Minute)

	// A second replace fully supersedes the first.
	require.NoError(t, store.ReplaceSnapshot(ctx, nil, proposals[:1]))
	gotProposals, err = store.Proposals(ctx, "", "", 0)
	require.NoError(t, err)
	assert.Len(t, gotProposals, 1)
	gotCategories, err = store.Categories(ctx)
	require.NoError(t, err)
	assert.Empty(t, gotCategories)
}

func TestProposalsFilter(t *testing.T) {
	ctx := context.Background()
	store := createTestStore(t)

	now := time.Now().UTC()
	proposals := []model.Proposal{
		{ID: 1, Ministry: "Health", CategoryID: 1, Title: "a", RequestedAmount: 1, Status: model.StatusPending, CreatedAt: now},
		{ID: 2, Ministry: "Health", CategoryID: 1, Title: "b", RequestedAmount: 2, Status: model.StatusRejected, DecidedAt: &now, CreatedAt: now},
		{ID: 3, Ministry: "Defense", CategoryID: 1, Title: "c", RequestedAmount: 3, Status: model.StatusPending, CreatedAt: now},
	}
	require.NoError(t, store.ReplaceSnapshot(ctx, nil, proposals))

	health, err := store.Proposals(ctx, "Health", "", 0)
	require.NoError(t, err)
	assert.Len(t, health, 2)

	pending, err := store.Proposals(ctx, "", model.StatusPending, 0)
	require.NoError(t, err)
	assert.Len(t, pending, 2)

	both, err := store.Proposals(ctx, "Health", model.StatusPending, 0)
	require.NoError(t, err)
	require.Len(t, both, 1)
	assert.Equal(t, 1, both[0].ID)
}

func TestProposalsFilterByCategory(t *testing.T) {
	ctx := context.Background()
	store := createTestStore(t)

	now := time.Now().UTC()
	proposals := []model.Proposal{
		{ID: 1, Ministry: "Health", CategoryID: 1, Title: "a", RequestedAmount: 1, Status: model.StatusPending, CreatedAt: now},
		{ID: 2, Ministry: "Health", CategoryID: 3, Title: "b", RequestedAmount: 2, Status: model.StatusPending, CreatedAt: now},
		{ID: 3, Ministry: "Defense", CategoryID: 3, Title: "c", RequestedAmount: 3, Status: model.StatusPending, CreatedAt: now},
	}
	require.NoError(t, store.ReplaceSnapshot(ctx, nil, proposals))

	infra, err := store.Proposals(ctx, "", "", 3)
	require.NoError(t, err)
	require.Len(t, infra, 2)
	for _, p := range infra {
		assert.Equal(t, 3, p.CategoryID)
	}

	combined, err := store.Proposals(ctx, "Health", "", 3)
	require.NoError(t, err)
	require.Len(t, combined, 1)
	assert.Equal(t, 2, combined[0].ID)
}

func TestSyncedAtNeverSynced(t *testing.T) {
	store := createTestStore(t)
	syncedAt, err := store.SyncedAt(context.Background())
	require.NoError(t, err)
	assert.True(t, syncedAt.IsZero())
}
