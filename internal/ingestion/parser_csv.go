package ingestion

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/wakala/payouts/internal/domain"
)

// ParseStorefrontCSV parses the storefront CSV ledger export format.
//
// Expected header:
//
//	entry_id,seller_id,product_id,amount_minor,occurred_at
func ParseStorefrontCSV(data []byte, batchID string) ([]domain.LedgerEntry, string, error) {
	reader := csv.NewReader(strings.NewReader(string(data)))
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, "", fmt.Errorf("read header: %w", err)
	}
	if len(header) < 5 {
		return nil, "", fmt.Errorf("expected 5 columns, got %d", len(header))
	}

	var entries []domain.LedgerEntry
	lineNum := 1

	for {
		lineNum++
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, "", fmt.Errorf("line %d: %w", lineNum, err)
		}
		if len(row) < 5 {
			continue
		}

		entryID := strings.TrimSpace(row[0])
		sellerID := strings.TrimSpace(row[1])
		productID := strings.TrimSpace(row[2])
		amountStr := strings.TrimSpace(row[3])
		occurredStr := strings.TrimSpace(row[4])

		if entryID == "" || sellerID == "" {
			return nil, "", fmt.Errorf("line %d: entry_id and seller_id are required", lineNum)
		}

		amount, err := strconv.ParseInt(amountStr, 10, 64)
		if err != nil {
			return nil, "", fmt.Errorf("line %d amount: %w", lineNum, err)
		}

		occurredAt, err := time.Parse(time.RFC3339Nano, occurredStr)
		if err != nil {
			occurredAt, err = time.Parse(time.RFC3339, occurredStr)
			if err != nil {
				return nil, "", fmt.Errorf("line %d occurred_at: %w", lineNum, err)
			}
		}

		entries = append(entries, domain.LedgerEntry{
			ID:         entryID,
			SellerID:   sellerID,
			ProductID:  productID,
			Amount:     amount,
			OccurredAt: occurredAt.UTC(),
			BatchID:    batchID,
		})
	}

	return entries, batchID, nil
}
