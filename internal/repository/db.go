package repository

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// InitDB opens (or creates) a SQLite database at the given path and ensures
// all required tables exist. Pass ":memory:" for an in-memory database.
func InitDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set wal mode: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	if err := createTables(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}

	return db, nil
}

// Timestamps are stored as integer unix nanoseconds so that half-open
// window comparisons are exact. RFC3339 text would lose sub-second
// precision and does not sort correctly across fraction lengths.
func createTables(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS sellers (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			last_checkpoint INTEGER NOT NULL,
			retry_count INTEGER NOT NULL DEFAULT 0,
			created_at INTEGER NOT NULL
		)`,

		// No FK to sellers: ledger events may arrive from the platform
		// before the seller row is onboarded.
		`CREATE TABLE IF NOT EXISTS ledger_entries (
			id TEXT PRIMARY KEY,
			seller_id TEXT NOT NULL,
			product_id TEXT NOT NULL,
			amount INTEGER NOT NULL,
			occurred_at INTEGER NOT NULL,
			batch_id TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_ledger_entries_seller_occurred
			ON ledger_entries(seller_id, occurred_at)`,
		`CREATE INDEX IF NOT EXISTS idx_ledger_entries_batch ON ledger_entries(batch_id)`,

		`CREATE TABLE IF NOT EXISTS ledger_batches (
			id TEXT PRIMARY KEY,
			source TEXT NOT NULL,
			file_hash TEXT UNIQUE NOT NULL,
			record_count INTEGER NOT NULL,
			ingested_at INTEGER NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS checkpoint_history (
			seller_id TEXT NOT NULL,
			run_id TEXT NOT NULL,
			checkpoint INTEGER NOT NULL,
			net_amount INTEGER NOT NULL,
			outcome TEXT NOT NULL,
			recorded_at INTEGER NOT NULL,
			FOREIGN KEY (seller_id) REFERENCES sellers(id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_checkpoint_history_seller
			ON checkpoint_history(seller_id, recorded_at)`,
	}

	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt[:40], err)
		}
	}

	return nil
}
