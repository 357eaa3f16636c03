package ingestion

import (
	"crypto/sha256"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/wakala/payouts/internal/domain"
	"github.com/wakala/payouts/internal/repository"
)

// IngestResult is returned from a successful ingestion.
type IngestResult struct {
	BatchID           string `json:"batch_id"`
	EntriesIngested   int    `json:"entries_ingested"`
	DuplicatesSkipped int    `json:"duplicates_skipped"`
	AlreadyIngested   bool   `json:"already_ingested,omitempty"`
}

// Service handles ingestion of ledger event files. The ledger is
// append-only: entries are only ever added, and both file-level (hash) and
// entry-level (id) replays are no-ops.
type Service struct {
	batchRepo  *repository.BatchRepo
	ledgerRepo *repository.LedgerRepo
}

func NewService(batchRepo *repository.BatchRepo, ledgerRepo *repository.LedgerRepo) *Service {
	return &Service{batchRepo: batchRepo, ledgerRepo: ledgerRepo}
}

// IngestFile parses a ledger event file and appends its entries.
//
// format must be one of: json, csv
func (s *Service) IngestFile(data []byte, source, format string) (*IngestResult, error) {
	// Idempotency check via file hash.
	hash := fmt.Sprintf("%x", sha256.Sum256(data))
	exists, err := s.batchRepo.ExistsByHash(hash)
	if err != nil {
		return nil, fmt.Errorf("check hash: %w", err)
	}
	if exists {
		return &IngestResult{AlreadyIngested: true}, nil
	}

	batchID := fmt.Sprintf("BATCH-%s", uuid.NewString())

	var entries []domain.LedgerEntry
	switch format {
	case "json":
		entries, batchID, err = ParsePlatformJSON(data, batchID)
	case "csv":
		entries, batchID, err = ParseStorefrontCSV(data, batchID)
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", format, err)
	}

	inserted, err := s.ledgerRepo.BulkInsert(entries)
	if err != nil {
		return nil, fmt.Errorf("insert entries: %w", err)
	}

	batch := &domain.LedgerBatch{
		ID:          batchID,
		Source:      source,
		FileHash:    hash,
		RecordCount: len(entries),
		IngestedAt:  time.Now().UTC(),
	}
	if err := s.batchRepo.Insert(batch); err != nil {
		return nil, fmt.Errorf("insert batch: %w", err)
	}

	log.Printf("[ingestion] Ingested batch %s: %d entries (%d new) from %s",
		batchID, len(entries), inserted, source)

	return &IngestResult{
		BatchID:           batchID,
		EntriesIngested:   inserted,
		DuplicatesSkipped: len(entries) - inserted,
	}, nil
}
