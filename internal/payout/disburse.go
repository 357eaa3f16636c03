package payout

import (
	"context"
	"fmt"

	"github.com/wakala/payouts/internal/domain"
)

// PaymentRail transfers funds to a seller. External collaborator.
type PaymentRail interface {
	Disburse(ctx context.Context, sellerID string, amount int64) error
}

// Notifier informs a seller about a completed transfer. External collaborator.
type Notifier interface {
	Notify(ctx context.Context, sellerID string, amount int64) error
}

// Disposition is the executor's explicit decision for a net amount.
type Disposition int

const (
	// DispositionPaid: funds transferred and seller notified.
	DispositionPaid Disposition = iota
	// DispositionSkippedZero: nothing owed; no external call was made. The
	// checkpoint still advances so the empty window is not re-read forever.
	DispositionSkippedZero
	// DispositionDeferred: net refunds exceed purchases. No external call;
	// the caller must not advance the checkpoint, so the negative balance
	// offsets future sales in the next window.
	DispositionDeferred
)

// Executor drives the external side effects of one payout: the payment-rail
// transfer and the seller notification. Success requires every sub-step to
// succeed; a paid-but-unnotified seller is still a failure and must be
// retried whole in the next run rather than have its checkpoint advanced.
type Executor struct {
	rail     PaymentRail
	notifier Notifier
}

func NewExecutor(rail PaymentRail, notifier Notifier) *Executor {
	return &Executor{rail: rail, notifier: notifier}
}

// Execute disburses net to the seller. Zero and negative amounts are
// explicit non-payment branches, never a transfer of zero.
func (e *Executor) Execute(ctx context.Context, sellerID string, net int64) (Disposition, error) {
	if net == 0 {
		return DispositionSkippedZero, nil
	}
	if net < 0 {
		return DispositionDeferred, nil
	}

	if err := e.rail.Disburse(ctx, sellerID, net); err != nil {
		return 0, stepErr(domain.StepDisburse, fmt.Errorf("payment rail: %w", err))
	}

	if err := e.notifier.Notify(ctx, sellerID, net); err != nil {
		return 0, stepErr(domain.StepNotify, fmt.Errorf("notify seller: %w", err))
	}

	return DispositionPaid, nil
}
