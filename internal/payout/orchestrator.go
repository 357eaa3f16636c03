package payout

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/wakala/payouts/internal/domain"
)

// SellerStore is the seller-side persistence the orchestrator consumes.
// Satisfied by repository.SellerRepo.
type SellerStore interface {
	List() ([]domain.Seller, error)
	IncrementRetryCount(sellerID string) error
	AppendHistory(rec *domain.CheckpointRecord) error
}

// Alerter receives one alert per terminal failure, fire-and-forget.
type Alerter interface {
	Alert(sellerID string, step domain.Step, err error)
}

// Orchestrator drives one payout cycle: it pulls the seller list once, runs
// each seller through snapshot, aggregate, disburse and commit, isolates
// per-seller failures, and reports run-level totals. Sellers share no
// mutable state, so pipelines run on a bounded worker pool.
type Orchestrator struct {
	sellers    SellerStore
	clock      Clock
	aggregator *Aggregator
	executor   *Executor
	committer  *Committer
	alerter    Alerter
	workers    int

	running atomic.Bool
}

func NewOrchestrator(
	sellers SellerStore,
	clock Clock,
	aggregator *Aggregator,
	executor *Executor,
	committer *Committer,
	alerter Alerter,
	workers int,
) *Orchestrator {
	if workers < 1 {
		workers = 4
	}
	return &Orchestrator{
		sellers:    sellers,
		clock:      clock,
		aggregator: aggregator,
		executor:   executor,
		committer:  committer,
		alerter:    alerter,
		workers:    workers,
	}
}

// RunPayoutCycle executes one full payout cycle and returns the summary.
// At most one cycle runs at a time within the process; cross-process safety
// for a single seller rests on the conditional checkpoint update. A failure
// listing sellers is fatal to the run; everything after is per-seller.
func (o *Orchestrator) RunPayoutCycle(ctx context.Context) (*domain.RunSummary, error) {
	if !o.running.CompareAndSwap(false, true) {
		return nil, ErrRunInFlight
	}
	defer o.running.Store(false)

	startedAt := time.Now().UTC()
	runID := uuid.NewString()

	sellers, err := o.sellers.List()
	if err != nil {
		return nil, fmt.Errorf("list sellers: %w", err)
	}

	log.Printf("[payout] Run %s started: %d sellers, %d workers", runID, len(sellers), o.workers)

	outcomes := make([]domain.PayoutOutcome, len(sellers))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.workers)
	for i := range sellers {
		i := i
		g.Go(func() error {
			outcomes[i] = o.runSeller(gctx, runID, &sellers[i])
			return nil
		})
	}
	// Workers never return errors; failures live in the outcomes.
	_ = g.Wait()

	summary := &domain.RunSummary{
		RunID:      runID,
		StartedAt:  startedAt,
		FinishedAt: time.Now().UTC(),
	}
	for _, out := range outcomes {
		switch out.Status {
		case domain.OutcomeCommitted:
			summary.Committed++
		case domain.OutcomeDeferred:
			summary.Deferred++
		case domain.OutcomeFailed:
			summary.Failed++
			summary.Failures = append(summary.Failures, domain.RunFailure{
				SellerID: out.SellerID,
				Step:     out.Step,
				Error:    out.Error,
			})
		}
	}

	log.Printf("[payout] Run %s finished: committed=%d deferred=%d failed=%d",
		runID, summary.Committed, summary.Deferred, summary.Failed)

	return summary, nil
}

// runSeller drives one seller through the pipeline. Every error is caught
// here, at the pipeline boundary; nothing propagates to other sellers.
func (o *Orchestrator) runSeller(ctx context.Context, runID string, seller *domain.Seller) domain.PayoutOutcome {
	window, net, err := o.executePipeline(ctx, seller)
	if err != nil {
		return o.fail(runID, seller, window, net, err)
	}

	if net < 0 {
		// Negative balance carries forward: no disbursement happened and
		// the checkpoint stays put, so the next window re-reads these
		// entries together with newer sales.
		log.Printf("[payout] Seller %s deferred: net=%d carries into next window", seller.ID, net)
		o.record(runID, seller.ID, seller.LastCheckpoint, net, domain.OutcomeDeferred)
		return domain.PayoutOutcome{
			SellerID:  seller.ID,
			NetAmount: net,
			Status:    domain.OutcomeDeferred,
		}
	}

	o.record(runID, seller.ID, window.End, net, domain.OutcomeCommitted)
	return domain.PayoutOutcome{
		SellerID:  seller.ID,
		NetAmount: net,
		Status:    domain.OutcomeCommitted,
	}
}

// executePipeline runs snapshot, aggregate, disburse and commit in order.
// The returned window is valid whenever the snapshot step succeeded, even
// if a later step failed.
func (o *Orchestrator) executePipeline(ctx context.Context, seller *domain.Seller) (domain.RunWindow, int64, error) {
	if err := ctx.Err(); err != nil {
		return domain.RunWindow{}, 0, stepErr(domain.StepSnapshot, err)
	}

	window, err := SelectWindow(o.clock, seller)
	if err != nil {
		return domain.RunWindow{}, 0, stepErr(domain.StepSnapshot, err)
	}

	net, err := o.aggregator.NetAmount(window)
	if err != nil {
		return window, 0, stepErr(domain.StepAggregate, err)
	}

	disposition, err := o.executor.Execute(ctx, seller.ID, net)
	if err != nil {
		return window, net, err
	}
	if disposition == DispositionDeferred {
		return window, net, nil
	}

	// An abandoned pipeline must stop before the commit: no checkpoint
	// advanced means the window is simply retried next run.
	if err := ctx.Err(); err != nil {
		return window, net, stepErr(domain.StepCommit, err)
	}

	if err := o.committer.Commit(ctx, seller.ID, window.End); err != nil {
		return window, net, err
	}

	return window, net, nil
}

func (o *Orchestrator) fail(runID string, seller *domain.Seller, window domain.RunWindow, net int64, err error) domain.PayoutOutcome {
	step := domain.StepSnapshot
	var se *StepError
	if errors.As(err, &se) {
		step = se.Step
	}

	o.alerter.Alert(seller.ID, step, err)

	if ierr := o.sellers.IncrementRetryCount(seller.ID); ierr != nil {
		log.Printf("[payout] WARNING: retry count for %s: %v", seller.ID, ierr)
	}

	checkpoint := seller.LastCheckpoint
	if !window.End.IsZero() {
		checkpoint = window.End
	}
	o.record(runID, seller.ID, checkpoint, net, domain.OutcomeFailed)

	return domain.PayoutOutcome{
		SellerID:  seller.ID,
		NetAmount: net,
		Status:    domain.OutcomeFailed,
		Step:      step,
		Error:     err.Error(),
	}
}

func (o *Orchestrator) record(runID, sellerID string, checkpoint time.Time, net int64, outcome domain.OutcomeStatus) {
	rec := &domain.CheckpointRecord{
		SellerID:   sellerID,
		RunID:      runID,
		Checkpoint: checkpoint,
		NetAmount:  net,
		Outcome:    outcome,
		RecordedAt: time.Now().UTC(),
	}
	if err := o.sellers.AppendHistory(rec); err != nil {
		log.Printf("[payout] WARNING: history append for %s: %v", sellerID, err)
	}
}
