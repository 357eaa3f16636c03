package repository

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/wakala/payouts/internal/domain"
)

type LedgerRepo struct {
	db *sql.DB
}

func NewLedgerRepo(db *sql.DB) *LedgerRepo {
	return &LedgerRepo{db: db}
}

func (r *LedgerRepo) Insert(e *domain.LedgerEntry) error {
	_, err := r.db.Exec(
		`INSERT OR IGNORE INTO ledger_entries (id, seller_id, product_id, amount, occurred_at, batch_id)
		VALUES (?,?,?,?,?,?)`,
		e.ID, e.SellerID, e.ProductID, e.Amount, e.OccurredAt.UnixNano(), nullableString(e.BatchID),
	)
	if err != nil {
		return fmt.Errorf("insert entry: %w", err)
	}
	return nil
}

// BulkInsert writes a batch of entries in one transaction. Duplicate entry
// IDs are ignored so re-ingesting the same batch is idempotent; the return
// value counts the rows actually written.
func (r *LedgerRepo) BulkInsert(entries []domain.LedgerEntry) (int, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(
		`INSERT OR IGNORE INTO ledger_entries (id, seller_id, product_id, amount, occurred_at, batch_id)
		VALUES (?,?,?,?,?,?)`,
	)
	if err != nil {
		return 0, fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for i := range entries {
		e := &entries[i]
		res, err := stmt.Exec(
			e.ID, e.SellerID, e.ProductID, e.Amount, e.OccurredAt.UnixNano(), nullableString(e.BatchID),
		)
		if err != nil {
			return inserted, fmt.Errorf("insert row %d: %w", i, err)
		}
		ra, _ := res.RowsAffected()
		inserted += int(ra)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return inserted, nil
}

// ReadEntries returns all entries for a seller in the half-open window
// [start, end). An entry occurring exactly at end belongs to the next run.
func (r *LedgerRepo) ReadEntries(sellerID string, start, end time.Time) ([]domain.LedgerEntry, error) {
	rows, err := r.db.Query(
		`SELECT id, seller_id, product_id, amount, occurred_at, batch_id
		FROM ledger_entries
		WHERE seller_id = ? AND occurred_at >= ? AND occurred_at < ?`,
		sellerID, start.UnixNano(), end.UnixNano(),
	)
	if err != nil {
		return nil, fmt.Errorf("query entries: %w", err)
	}
	defer rows.Close()

	var entries []domain.LedgerEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}

type EntryFilter struct {
	SellerID  string
	ProductID string
	From      *time.Time
	To        *time.Time
	Page      int
	Limit     int
}

func (r *LedgerRepo) List(f EntryFilter) ([]domain.LedgerEntry, int, error) {
	where, args := buildEntryWhere(f)

	var total int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM ledger_entries"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count: %w", err)
	}

	if f.Limit <= 0 {
		f.Limit = 50
	}
	if f.Page <= 0 {
		f.Page = 1
	}
	offset := (f.Page - 1) * f.Limit

	q := `SELECT id, seller_id, product_id, amount, occurred_at, batch_id
		FROM ledger_entries` + where + " ORDER BY occurred_at DESC LIMIT ? OFFSET ?"
	args = append(args, f.Limit, offset)

	rows, err := r.db.Query(q, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	var entries []domain.LedgerEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan: %w", err)
		}
		entries = append(entries, *e)
	}
	return entries, total, rows.Err()
}

// LedgerStats holds aggregate ledger statistics for the dashboard.
type LedgerStats struct {
	TotalEntries  int   `json:"total_entries"`
	Purchases     int   `json:"purchases"`
	Refunds       int   `json:"refunds"`
	GrossVolume   int64 `json:"gross_volume"`
	RefundVolume  int64 `json:"refund_volume"`
	NetVolume     int64 `json:"net_volume"`
}

func (r *LedgerRepo) GetStats() (*LedgerStats, error) {
	s := &LedgerStats{}
	err := r.db.QueryRow(`
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN amount >= 0 THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN amount < 0 THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN amount >= 0 THEN amount ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN amount < 0 THEN -amount ELSE 0 END), 0),
			COALESCE(SUM(amount), 0)
		FROM ledger_entries
	`).Scan(&s.TotalEntries, &s.Purchases, &s.Refunds,
		&s.GrossVolume, &s.RefundVolume, &s.NetVolume)
	return s, err
}

// SellerVolume is the per-seller net volume aggregate.
type SellerVolume struct {
	SellerID string `json:"seller_id"`
	Entries  int    `json:"entries"`
	Net      int64  `json:"net"`
}

func (r *LedgerRepo) GetVolumeBySeller() ([]SellerVolume, error) {
	rows, err := r.db.Query(`
		SELECT seller_id, COUNT(*), COALESCE(SUM(amount), 0)
		FROM ledger_entries GROUP BY seller_id ORDER BY seller_id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []SellerVolume
	for rows.Next() {
		var v SellerVolume
		if err := rows.Scan(&v.SellerID, &v.Entries, &v.Net); err != nil {
			return nil, err
		}
		result = append(result, v)
	}
	return result, rows.Err()
}

// --- helpers ---

func buildEntryWhere(f EntryFilter) (string, []any) {
	var clauses []string
	var args []any

	if f.SellerID != "" {
		clauses = append(clauses, "seller_id = ?")
		args = append(args, f.SellerID)
	}
	if f.ProductID != "" {
		clauses = append(clauses, "product_id = ?")
		args = append(args, f.ProductID)
	}
	if f.From != nil {
		clauses = append(clauses, "occurred_at >= ?")
		args = append(args, f.From.UnixNano())
	}
	if f.To != nil {
		clauses = append(clauses, "occurred_at < ?")
		args = append(args, f.To.UnixNano())
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func scanEntry(rows *sql.Rows) (*domain.LedgerEntry, error) {
	var e domain.LedgerEntry
	var occurredAt int64
	var batchID sql.NullString

	if err := rows.Scan(&e.ID, &e.SellerID, &e.ProductID, &e.Amount, &occurredAt, &batchID); err != nil {
		return nil, err
	}
	e.OccurredAt = time.Unix(0, occurredAt).UTC()
	if batchID.Valid {
		e.BatchID = batchID.String
	}
	return &e, nil
}
