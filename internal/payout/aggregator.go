package payout

import (
	"fmt"
	"time"

	"github.com/wakala/payouts/internal/domain"
)

// LedgerReader is the read-side ledger capability the aggregator consumes.
// Satisfied by repository.LedgerRepo.
type LedgerReader interface {
	ReadEntries(sellerID string, start, end time.Time) ([]domain.LedgerEntry, error)
}

// Aggregator folds a seller's ledger window into a single net payable
// amount. Read-only; any store error propagates as a retryable per-seller
// failure.
type Aggregator struct {
	ledger LedgerReader
}

func NewAggregator(ledger LedgerReader) *Aggregator {
	return &Aggregator{ledger: ledger}
}

// NetAmount sums the signed amounts of all entries in the window. The
// boundary is strictly half-open: an entry occurring exactly at window.End
// belongs to the next run. An empty window sums to zero.
func (a *Aggregator) NetAmount(window domain.RunWindow) (int64, error) {
	entries, err := a.ledger.ReadEntries(window.SellerID, window.Start, window.End)
	if err != nil {
		return 0, fmt.Errorf("read entries for %s: %w", window.SellerID, err)
	}

	var net int64
	for _, e := range entries {
		net += e.Amount
	}
	return net, nil
}
