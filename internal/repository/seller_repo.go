package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/wakala/payouts/internal/domain"
)

type SellerRepo struct {
	db *sql.DB
}

func NewSellerRepo(db *sql.DB) *SellerRepo {
	return &SellerRepo{db: db}
}

func (r *SellerRepo) Insert(s *domain.Seller) error {
	_, err := r.db.Exec(
		`INSERT OR IGNORE INTO sellers (id, name, last_checkpoint, retry_count, created_at)
		VALUES (?,?,?,?,?)`,
		s.ID, s.Name, s.LastCheckpoint.UnixNano(), s.RetryCount, s.CreatedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("insert seller: %w", err)
	}
	return nil
}

func (r *SellerRepo) Count() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM sellers").Scan(&count)
	return count, err
}

func (r *SellerRepo) GetByID(id string) (*domain.Seller, error) {
	row := r.db.QueryRow(
		"SELECT id, name, last_checkpoint, retry_count, created_at FROM sellers WHERE id = ?", id,
	)
	return scanSeller(row.Scan)
}

// List returns the full seller set, one snapshot per payout run. No
// filtering: every seller participates in every cycle.
func (r *SellerRepo) List() ([]domain.Seller, error) {
	rows, err := r.db.Query(
		"SELECT id, name, last_checkpoint, retry_count, created_at FROM sellers ORDER BY id",
	)
	if err != nil {
		return nil, fmt.Errorf("query sellers: %w", err)
	}
	defer rows.Close()

	var sellers []domain.Seller
	for rows.Next() {
		s, err := scanSeller(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan seller: %w", err)
		}
		sellers = append(sellers, *s)
	}
	return sellers, rows.Err()
}

// CommitCheckpoint advances the seller's checkpoint to newCheckpoint and
// resets the retry counter, as a single conditional update. The checkpoint
// only ever moves forward: if the stored value is already at or past
// newCheckpoint the call is a no-op success, which makes retried commits
// after an ambiguous error safe.
func (r *SellerRepo) CommitCheckpoint(sellerID string, newCheckpoint time.Time) error {
	res, err := r.db.Exec(
		`UPDATE sellers SET last_checkpoint = ?, retry_count = 0
		WHERE id = ? AND last_checkpoint < ?`,
		newCheckpoint.UnixNano(), sellerID, newCheckpoint.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("commit checkpoint: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected > 0 {
		return nil
	}

	// Nothing updated: either the seller is unknown or the checkpoint is
	// already at or past the requested value (idempotent re-commit).
	var current int64
	err = r.db.QueryRow("SELECT last_checkpoint FROM sellers WHERE id = ?", sellerID).Scan(&current)
	if err == sql.ErrNoRows {
		return fmt.Errorf("commit checkpoint: unknown seller %s", sellerID)
	}
	if err != nil {
		return fmt.Errorf("commit checkpoint verify: %w", err)
	}
	if current < newCheckpoint.UnixNano() {
		return fmt.Errorf("commit checkpoint: update for %s did not apply", sellerID)
	}
	return nil
}

// IncrementRetryCount bumps the consecutive-failure counter used for
// operational triage. Reset happens inside CommitCheckpoint.
func (r *SellerRepo) IncrementRetryCount(sellerID string) error {
	_, err := r.db.Exec(
		"UPDATE sellers SET retry_count = retry_count + 1 WHERE id = ?", sellerID,
	)
	if err != nil {
		return fmt.Errorf("increment retry count: %w", err)
	}
	return nil
}

// AppendHistory records one terminal pipeline outcome in the audit history.
// The history is never consulted for windowing.
func (r *SellerRepo) AppendHistory(rec *domain.CheckpointRecord) error {
	_, err := r.db.Exec(
		`INSERT INTO checkpoint_history (seller_id, run_id, checkpoint, net_amount, outcome, recorded_at)
		VALUES (?,?,?,?,?,?)`,
		rec.SellerID, rec.RunID, rec.Checkpoint.UnixNano(), rec.NetAmount,
		string(rec.Outcome), rec.RecordedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("append history: %w", err)
	}
	return nil
}

func (r *SellerRepo) ListHistory(sellerID string, limit int) ([]domain.CheckpointRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.Query(
		`SELECT seller_id, run_id, checkpoint, net_amount, outcome, recorded_at
		FROM checkpoint_history WHERE seller_id = ?
		ORDER BY recorded_at DESC LIMIT ?`,
		sellerID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var recs []domain.CheckpointRecord
	for rows.Next() {
		var rec domain.CheckpointRecord
		var checkpoint, recordedAt int64
		var outcome string
		if err := rows.Scan(&rec.SellerID, &rec.RunID, &checkpoint,
			&rec.NetAmount, &outcome, &recordedAt); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		rec.Checkpoint = time.Unix(0, checkpoint).UTC()
		rec.Outcome = domain.OutcomeStatus(outcome)
		rec.RecordedAt = time.Unix(0, recordedAt).UTC()
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

func scanSeller(scan func(...any) error) (*domain.Seller, error) {
	var s domain.Seller
	var checkpoint, createdAt int64

	if err := scan(&s.ID, &s.Name, &checkpoint, &s.RetryCount, &createdAt); err != nil {
		return nil, err
	}
	s.LastCheckpoint = time.Unix(0, checkpoint).UTC()
	s.CreatedAt = time.Unix(0, createdAt).UTC()
	return &s, nil
}
