package domain

import "time"

// EntryKind classifies a ledger entry by the sign convention of its amount.
type EntryKind string

const (
	EntryPurchase EntryKind = "purchase"
	EntryRefund   EntryKind = "refund"
)

// LedgerEntry is one immutable signed transaction record. Amounts are in
// minor currency units (cents); purchases are positive, refunds negative.
// A refund is always a new entry, never a mutation of the purchase it
// reverses.
type LedgerEntry struct {
	ID         string    `json:"id"`
	SellerID   string    `json:"seller_id"`
	ProductID  string    `json:"product_id"`
	Amount     int64     `json:"amount"`
	OccurredAt time.Time `json:"occurred_at"`
	BatchID    string    `json:"batch_id,omitempty"`
}

// Kind derives the entry classification from the amount sign.
func (e LedgerEntry) Kind() EntryKind {
	if e.Amount < 0 {
		return EntryRefund
	}
	return EntryPurchase
}

// LedgerBatch records the provenance of one ingested event file. The file
// hash is the idempotency key: re-submitting the same file is a no-op.
type LedgerBatch struct {
	ID          string    `json:"id"`
	Source      string    `json:"source"`
	FileHash    string    `json:"file_hash"`
	RecordCount int       `json:"record_count"`
	IngestedAt  time.Time `json:"ingested_at"`
}
