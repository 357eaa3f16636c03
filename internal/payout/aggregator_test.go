package payout_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wakala/payouts/internal/domain"
	"github.com/wakala/payouts/internal/payout"
)

type fakeLedger struct {
	entries []domain.LedgerEntry
	err     error
}

func (l *fakeLedger) ReadEntries(sellerID string, start, end time.Time) ([]domain.LedgerEntry, error) {
	if l.err != nil {
		return nil, l.err
	}
	var out []domain.LedgerEntry
	for _, e := range l.entries {
		if e.SellerID != sellerID {
			continue
		}
		if e.OccurredAt.Before(start) || !e.OccurredAt.Before(end) {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func TestNetAmountSignedSum(t *testing.T) {
	t0 := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	ledger := &fakeLedger{entries: []domain.LedgerEntry{
		{ID: "LE-1", SellerID: "SEL-001", Amount: 10000, OccurredAt: t0.Add(time.Second)},
		{ID: "LE-2", SellerID: "SEL-001", Amount: -3000, OccurredAt: t0.Add(2 * time.Second)},
	}}
	agg := payout.NewAggregator(ledger)

	net, err := agg.NetAmount(domain.RunWindow{
		SellerID: "SEL-001",
		Start:    t0,
		End:      t0.Add(time.Hour),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(7000), net)
}

func TestNetAmountEmptyWindowIsZero(t *testing.T) {
	t0 := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	agg := payout.NewAggregator(&fakeLedger{})

	net, err := agg.NetAmount(domain.RunWindow{SellerID: "SEL-001", Start: t0, End: t0.Add(time.Hour)})
	require.NoError(t, err)
	assert.Equal(t, int64(0), net)
}

func TestNetAmountExcludesEntryAtWindowEnd(t *testing.T) {
	t0 := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	end := t0.Add(time.Hour)
	// LE-1 sits exactly on the start (included); LE-2 exactly on the end
	// and LE-3 before the start (both excluded).
	ledger := &fakeLedger{entries: []domain.LedgerEntry{
		{ID: "LE-1", SellerID: "SEL-001", Amount: 500, OccurredAt: t0},
		{ID: "LE-2", SellerID: "SEL-001", Amount: 700, OccurredAt: end},
		{ID: "LE-3", SellerID: "SEL-001", Amount: 900, OccurredAt: t0.Add(-time.Second)},
	}}
	agg := payout.NewAggregator(ledger)

	net, err := agg.NetAmount(domain.RunWindow{SellerID: "SEL-001", Start: t0, End: end})
	require.NoError(t, err)
	assert.Equal(t, int64(500), net)
}

func TestNetAmountPropagatesReadFailure(t *testing.T) {
	readErr := errors.New("connection lost")
	agg := payout.NewAggregator(&fakeLedger{err: readErr})

	_, err := agg.NetAmount(domain.RunWindow{SellerID: "SEL-001"})
	require.Error(t, err)
	assert.ErrorIs(t, err, readErr)
}
