package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/wakala/payouts/internal/domain"
)

type BatchRepo struct {
	db *sql.DB
}

func NewBatchRepo(db *sql.DB) *BatchRepo {
	return &BatchRepo{db: db}
}

// ExistsByHash checks whether a batch with the given file hash has already
// been ingested (idempotency check).
func (r *BatchRepo) ExistsByHash(hash string) (bool, error) {
	var count int
	err := r.db.QueryRow(
		"SELECT COUNT(*) FROM ledger_batches WHERE file_hash = ?", hash,
	).Scan(&count)
	return count > 0, err
}

func (r *BatchRepo) Insert(b *domain.LedgerBatch) error {
	_, err := r.db.Exec(
		`INSERT INTO ledger_batches (id, source, file_hash, record_count, ingested_at)
		VALUES (?,?,?,?,?)`,
		b.ID, b.Source, b.FileHash, b.RecordCount, b.IngestedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("insert batch: %w", err)
	}
	return nil
}

func (r *BatchRepo) List(limit int) ([]domain.LedgerBatch, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.Query(
		`SELECT id, source, file_hash, record_count, ingested_at
		FROM ledger_batches ORDER BY ingested_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query batches: %w", err)
	}
	defer rows.Close()

	var batches []domain.LedgerBatch
	for rows.Next() {
		b, err := scanBatch(rows)
		if err != nil {
			return nil, fmt.Errorf("scan batch: %w", err)
		}
		batches = append(batches, *b)
	}
	return batches, rows.Err()
}

func scanBatch(rows *sql.Rows) (*domain.LedgerBatch, error) {
	var b domain.LedgerBatch
	var ingestedAt int64

	if err := rows.Scan(&b.ID, &b.Source, &b.FileHash, &b.RecordCount, &ingestedAt); err != nil {
		return nil, err
	}
	b.IngestedAt = time.Unix(0, ingestedAt).UTC()
	return &b, nil
}
