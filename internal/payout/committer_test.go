package payout_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wakala/payouts/internal/payout"
)

type flakyStore struct {
	failures int // fail this many calls before succeeding
	calls    int
}

func (s *flakyStore) CommitCheckpoint(sellerID string, newCheckpoint time.Time) error {
	s.calls++
	if s.calls <= s.failures {
		return errors.New("db locked")
	}
	return nil
}

func TestCommitSucceedsFirstTry(t *testing.T) {
	store := &flakyStore{}
	c := payout.NewCommitter(store, 3)

	err := c.Commit(context.Background(), "SEL-001", time.Now())
	require.NoError(t, err)
	assert.Equal(t, 1, store.calls)
}

func TestCommitRetriesTransientFailure(t *testing.T) {
	store := &flakyStore{failures: 2}
	c := payout.NewCommitter(store, 3)

	err := c.Commit(context.Background(), "SEL-001", time.Now())
	require.NoError(t, err)
	assert.Equal(t, 3, store.calls)
}

func TestCommitEscalatesAfterBoundedAttempts(t *testing.T) {
	store := &flakyStore{failures: 100}
	c := payout.NewCommitter(store, 3)

	err := c.Commit(context.Background(), "SEL-001", time.Now())
	require.Error(t, err)
	assert.Equal(t, 3, store.calls)

	var commitErr *payout.CommitError
	require.True(t, errors.As(err, &commitErr))
	assert.Equal(t, "SEL-001", commitErr.SellerID)
	assert.Equal(t, 3, commitErr.Attempts)

	var stepErr *payout.StepError
	require.True(t, errors.As(err, &stepErr))
	assert.Equal(t, "commit", string(stepErr.Step))
}
