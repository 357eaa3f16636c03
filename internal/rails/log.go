// Package rails provides implementations of the external collaborators the
// payout core calls through: the payment rail, the seller notifier and the
// operator alerter. The log variants are the sandbox default; the webhook
// variants post to real endpoints when configured.
package rails

import (
	"context"
	"log"

	"github.com/wakala/payouts/internal/domain"
)

// LogRail records disbursements to the process log instead of moving money.
type LogRail struct{}

func (LogRail) Disburse(_ context.Context, sellerID string, amount int64) error {
	log.Printf("[rail] Disbursed %d to seller %s", amount, sellerID)
	return nil
}

// LogNotifier records notifications to the process log.
type LogNotifier struct{}

func (LogNotifier) Notify(_ context.Context, sellerID string, amount int64) error {
	log.Printf("[notify] Seller %s notified of payout %d", sellerID, amount)
	return nil
}

// LogAlerter writes operator alerts to the process log. Commit-step
// failures are the paid-but-uncommitted class and get a CRITICAL marker so
// they stand out from ordinary retryable failures.
type LogAlerter struct{}

func (LogAlerter) Alert(sellerID string, step domain.Step, err error) {
	if step == domain.StepCommit {
		log.Printf("[alert] CRITICAL: seller %s step %s: %v (disbursed but checkpoint not advanced)",
			sellerID, step, err)
		return
	}
	log.Printf("[alert] seller %s step %s: %v", sellerID, step, err)
}
