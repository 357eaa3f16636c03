package payout

import (
	"fmt"

	"github.com/wakala/payouts/internal/domain"
)

// SelectWindow fixes the half-open ledger window [last_checkpoint, now) for
// one seller. The upper bound is captured here, strictly before any ledger
// read for this seller, and is never re-derived afterward: however long the
// read and disbursement take, the committed checkpoint denotes exactly this
// boundary.
func SelectWindow(clock Clock, seller *domain.Seller) (domain.RunWindow, error) {
	now, err := clock.Now()
	if err != nil {
		return domain.RunWindow{}, fmt.Errorf("%w: %v", ErrClockUnavailable, err)
	}

	return domain.RunWindow{
		SellerID: seller.ID,
		Start:    seller.LastCheckpoint,
		End:      now,
	}, nil
}
