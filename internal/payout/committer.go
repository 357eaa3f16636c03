package payout

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/wakala/payouts/internal/domain"
)

// CheckpointStore is the durable checkpoint capability the committer
// consumes. CommitCheckpoint must be atomic and idempotent: re-applying a
// checkpoint the seller is already at or past is a no-op success.
// Satisfied by repository.SellerRepo.
type CheckpointStore interface {
	CommitCheckpoint(sellerID string, newCheckpoint time.Time) error
}

// Committer advances a seller's checkpoint after a successful disbursement.
// A commit failure here means money already moved, so the write is retried
// in-process with bounded backoff before the error escalates as critical.
type Committer struct {
	store       CheckpointStore
	maxAttempts uint
}

func NewCommitter(store CheckpointStore, maxAttempts int) *Committer {
	if maxAttempts < 1 {
		maxAttempts = 3
	}
	return &Committer{store: store, maxAttempts: uint(maxAttempts)}
}

// Commit sets the seller's checkpoint to the exact window end captured at
// snapshot time. Invoked strictly after the executor reports success.
func (c *Committer) Commit(ctx context.Context, sellerID string, windowEnd time.Time) error {
	expo := backoff.NewExponentialBackOff()
	expo.InitialInterval = 100 * time.Millisecond

	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		return struct{}{}, c.store.CommitCheckpoint(sellerID, windowEnd)
	}, backoff.WithBackOff(expo), backoff.WithMaxTries(c.maxAttempts))

	if err != nil {
		return stepErr(domain.StepCommit, &CommitError{
			SellerID: sellerID,
			Attempts: int(c.maxAttempts),
			Err:      err,
		})
	}
	return nil
}
