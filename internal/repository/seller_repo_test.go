package repository

import (
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wakala/payouts/internal/domain"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := InitDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func insertSeller(t *testing.T, repo *SellerRepo, id string, checkpoint time.Time) {
	t.Helper()
	require.NoError(t, repo.Insert(&domain.Seller{
		ID:             id,
		Name:           "Seller " + id,
		LastCheckpoint: checkpoint,
		CreatedAt:      checkpoint,
	}))
}

func TestCommitCheckpointAdvances(t *testing.T) {
	repo := NewSellerRepo(newTestDB(t))
	t0 := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	insertSeller(t, repo, "SEL-001", t0)

	t1 := t0.Add(time.Hour)
	require.NoError(t, repo.CommitCheckpoint("SEL-001", t1))

	s, err := repo.GetByID("SEL-001")
	require.NoError(t, err)
	assert.True(t, s.LastCheckpoint.Equal(t1))
}

func TestCommitCheckpointIdempotent(t *testing.T) {
	repo := NewSellerRepo(newTestDB(t))
	t0 := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	insertSeller(t, repo, "SEL-001", t0)

	t1 := t0.Add(time.Hour)
	require.NoError(t, repo.CommitCheckpoint("SEL-001", t1))

	// Re-applying the same checkpoint is a no-op success.
	require.NoError(t, repo.CommitCheckpoint("SEL-001", t1))

	// An older checkpoint never rewinds the seller.
	require.NoError(t, repo.CommitCheckpoint("SEL-001", t0))

	s, err := repo.GetByID("SEL-001")
	require.NoError(t, err)
	assert.True(t, s.LastCheckpoint.Equal(t1))
}

func TestCommitCheckpointUnknownSeller(t *testing.T) {
	repo := NewSellerRepo(newTestDB(t))
	err := repo.CommitCheckpoint("SEL-404", time.Now())
	assert.Error(t, err)
}

func TestCommitCheckpointResetsRetryCount(t *testing.T) {
	repo := NewSellerRepo(newTestDB(t))
	t0 := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	insertSeller(t, repo, "SEL-001", t0)

	require.NoError(t, repo.IncrementRetryCount("SEL-001"))
	require.NoError(t, repo.IncrementRetryCount("SEL-001"))

	s, err := repo.GetByID("SEL-001")
	require.NoError(t, err)
	assert.Equal(t, 2, s.RetryCount)

	require.NoError(t, repo.CommitCheckpoint("SEL-001", t0.Add(time.Hour)))

	s, err = repo.GetByID("SEL-001")
	require.NoError(t, err)
	assert.Equal(t, 0, s.RetryCount)
}

func TestListReturnsAllSellers(t *testing.T) {
	repo := NewSellerRepo(newTestDB(t))
	t0 := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	insertSeller(t, repo, "SEL-002", t0)
	insertSeller(t, repo, "SEL-001", t0)

	sellers, err := repo.List()
	require.NoError(t, err)
	require.Len(t, sellers, 2)
	assert.Equal(t, "SEL-001", sellers[0].ID)
	assert.Equal(t, "SEL-002", sellers[1].ID)
}

func TestCheckpointHistoryAppendAndList(t *testing.T) {
	repo := NewSellerRepo(newTestDB(t))
	t0 := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	insertSeller(t, repo, "SEL-001", t0)

	require.NoError(t, repo.AppendHistory(&domain.CheckpointRecord{
		SellerID:   "SEL-001",
		RunID:      "run-1",
		Checkpoint: t0.Add(time.Hour),
		NetAmount:  7000,
		Outcome:    domain.OutcomeCommitted,
		RecordedAt: t0.Add(time.Hour),
	}))
	require.NoError(t, repo.AppendHistory(&domain.CheckpointRecord{
		SellerID:   "SEL-001",
		RunID:      "run-2",
		Checkpoint: t0.Add(2 * time.Hour),
		NetAmount:  0,
		Outcome:    domain.OutcomeFailed,
		RecordedAt: t0.Add(2 * time.Hour),
	}))

	recs, err := repo.ListHistory("SEL-001", 10)
	require.NoError(t, err)
	require.Len(t, recs, 2)

	// Newest first.
	assert.Equal(t, "run-2", recs[0].RunID)
	assert.Equal(t, domain.OutcomeFailed, recs[0].Outcome)
	assert.Equal(t, "run-1", recs[1].RunID)
	assert.Equal(t, int64(7000), recs[1].NetAmount)
	assert.True(t, recs[1].Checkpoint.Equal(t0.Add(time.Hour)))
}
