package payout

import (
	"errors"
	"fmt"

	"github.com/wakala/payouts/internal/domain"
)

// ErrClockUnavailable is returned by a Clock that cannot produce the
// current time. Fatal to one seller's pipeline, never to the whole run.
var ErrClockUnavailable = errors.New("clock unavailable")

// ErrRunInFlight is returned when a payout cycle is triggered while a
// previous cycle in the same process has not finished.
var ErrRunInFlight = errors.New("payout cycle already in flight")

// StepError tags a pipeline failure with the stage it occurred in, so the
// orchestrator can alert with enough context to tell a read failure from a
// payment failure from a checkpoint failure.
type StepError struct {
	Step domain.Step
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

func stepErr(step domain.Step, err error) *StepError {
	return &StepError{Step: step, Err: err}
}

// CommitError marks the most dangerous failure class: disbursement went
// through but the checkpoint write did not, even after bounded retries. A
// naive re-run would double-pay the window, so this is surfaced as a
// critical alert rather than an ordinary failure.
type CommitError struct {
	SellerID string
	Attempts int
	Err      error
}

func (e *CommitError) Error() string {
	return fmt.Sprintf("checkpoint commit for seller %s failed after %d attempts: %v",
		e.SellerID, e.Attempts, e.Err)
}

func (e *CommitError) Unwrap() error { return e.Err }
