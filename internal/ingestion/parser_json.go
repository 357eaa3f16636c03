package ingestion

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/wakala/payouts/internal/domain"
)

// platformFile is the top-level JSON structure of a platform ledger export.
type platformFile struct {
	BatchID string          `json:"batch_id"`
	Entries []platformEntry `json:"entries"`
}

type platformEntry struct {
	ID         string `json:"id"`
	SellerID   string `json:"seller_id"`
	ProductID  string `json:"product_id"`
	Amount     int64  `json:"amount_minor"`
	OccurredAt string `json:"occurred_at"`
}

// ParsePlatformJSON parses the platform's JSON ledger export format.
// Amounts are signed minor units: positive purchase, negative refund.
func ParsePlatformJSON(data []byte, batchID string) ([]domain.LedgerEntry, string, error) {
	var file platformFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, "", fmt.Errorf("unmarshal: %w", err)
	}
	if file.BatchID != "" {
		batchID = file.BatchID
	}

	var entries []domain.LedgerEntry
	for i, raw := range file.Entries {
		if raw.ID == "" || raw.SellerID == "" {
			return nil, "", fmt.Errorf("entry %d: id and seller_id are required", i)
		}

		occurredAt, err := time.Parse(time.RFC3339Nano, raw.OccurredAt)
		if err != nil {
			occurredAt, err = time.Parse(time.RFC3339, raw.OccurredAt)
			if err != nil {
				return nil, "", fmt.Errorf("entry %d occurred_at: %w", i, err)
			}
		}

		entries = append(entries, domain.LedgerEntry{
			ID:         raw.ID,
			SellerID:   raw.SellerID,
			ProductID:  raw.ProductID,
			Amount:     raw.Amount,
			OccurredAt: occurredAt.UTC(),
			BatchID:    batchID,
		})
	}

	return entries, batchID, nil
}
