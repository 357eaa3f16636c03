package domain

import "time"

// Step names the pipeline stage a seller was in when a terminal outcome was
// reached. Used for alert routing and failure reporting.
type Step string

const (
	StepSnapshot  Step = "snapshot"
	StepAggregate Step = "aggregate"
	StepDisburse  Step = "disburse"
	StepNotify    Step = "notify"
	StepCommit    Step = "commit"
)

// OutcomeStatus is the terminal state of one seller's pipeline execution.
type OutcomeStatus string

const (
	// OutcomeCommitted: disbursed (or explicitly skipped at zero) and the
	// checkpoint was durably advanced to the window end.
	OutcomeCommitted OutcomeStatus = "committed"
	// OutcomeDeferred: net amount was negative; nothing was disbursed and
	// the checkpoint was left alone so the balance carries forward.
	OutcomeDeferred OutcomeStatus = "deferred"
	// OutcomeFailed: some step errored; the checkpoint was not advanced and
	// the same window will be retried on the next run.
	OutcomeFailed OutcomeStatus = "failed"
)

// RunWindow fixes the half-open ledger interval [Start, End) for one
// seller's pipeline execution. End is captured before any ledger read and
// never re-derived afterward. Ephemeral; never persisted.
type RunWindow struct {
	SellerID string
	Start    time.Time
	End      time.Time
}

// PayoutOutcome is the terminal result of one seller's pipeline.
type PayoutOutcome struct {
	SellerID  string        `json:"seller_id"`
	NetAmount int64         `json:"net_amount"`
	Status    OutcomeStatus `json:"status"`
	Step      Step          `json:"step,omitempty"`
	Error     string        `json:"error,omitempty"`
}

// RunFailure is one failed seller in a run summary.
type RunFailure struct {
	SellerID string `json:"seller_id"`
	Step     Step   `json:"step"`
	Error    string `json:"error"`
}

// RunSummary aggregates a full payout cycle for the invoking scheduler.
type RunSummary struct {
	RunID      string       `json:"run_id"`
	StartedAt  time.Time    `json:"started_at"`
	FinishedAt time.Time    `json:"finished_at"`
	Committed  int          `json:"committed"`
	Deferred   int          `json:"deferred"`
	Failed     int          `json:"failed"`
	Failures   []RunFailure `json:"failures,omitempty"`
}

// CheckpointRecord is one row of the per-seller payout audit history. The
// history is append-only and strictly informational: windowing always uses
// the seller's scalar LastCheckpoint, never this table.
type CheckpointRecord struct {
	SellerID   string        `json:"seller_id"`
	RunID      string        `json:"run_id"`
	Checkpoint time.Time     `json:"checkpoint"`
	NetAmount  int64         `json:"net_amount"`
	Outcome    OutcomeStatus `json:"outcome"`
	RecordedAt time.Time     `json:"recorded_at"`
}
