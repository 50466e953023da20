package pipeline

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/donaldgifford/ebay-autolister/internal/ebay"
	"github.com/donaldgifford/ebay-autolister/internal/metrics"
	domain "github.com/donaldgifford/ebay-autolister/pkg/types"
)

// Runner orchestrates a full processing run: batching, dispatch, the
// optional offer/publish sequence, and summary assembly.
type Runner struct {
	dispatcher  *Dispatcher
	machine     *StateMachine
	batchSize   int
	concurrency int
	logger      *slog.Logger
	nowFunc     func() time.Time
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithBatchSize sets the per-call record limit.
func WithBatchSize(n int) RunnerOption {
	return func(r *Runner) {
		if n > 0 {
			r.batchSize = n
		}
	}
}

// WithConcurrency bounds how many batches may be in flight at once. The
// default of 1 dispatches batches strictly in order.
func WithConcurrency(n int) RunnerOption {
	return func(r *Runner) {
		if n > 0 {
			r.concurrency = n
		}
	}
}

// WithRunnerLogger sets the runner's logger.
func WithRunnerLogger(l *slog.Logger) RunnerOption {
	return func(r *Runner) {
		r.logger = l
	}
}

// WithNowFunc overrides the clock, for tests.
func WithNowFunc(f func() time.Time) RunnerOption {
	return func(r *Runner) {
		r.nowFunc = f
	}
}

// NewRunner creates a Runner. When createListings is true every record that
// reaches INVENTORY_CREATED is driven through offer creation and publish.
func NewRunner(
	client ebay.InventoryClient,
	policy Policy,
	createListings bool,
	opts ...RunnerOption,
) *Runner {
	r := &Runner{
		batchSize:   DefaultBatchSize,
		concurrency: 1,
		logger:      slog.Default(),
		nowFunc:     time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}

	r.dispatcher = NewDispatcher(client, policy, WithDispatcherLogger(r.logger))
	if createListings {
		r.machine = NewStateMachine(client, policy, WithStateMachineLogger(r.logger))
	}
	return r
}

// Run processes the validated records and returns the run summary together
// with the per-sku results. Validation errors are carried into the summary
// untouched. Cancelling ctx stops new batches from starting; batches already
// in flight run to completion. The returned error is non-nil only for
// run-fatal conditions, and even then the summary reflects all work that
// completed.
func (r *Runner) Run(
	ctx context.Context,
	records []domain.ProductRecord,
	rowErrs []domain.RowError,
) (domain.RunSummary, []domain.ItemResult, error) {
	start := r.nowFunc()
	runID := uuid.NewString()
	agg := NewAggregator()

	batches := SplitBatches(records, r.batchSize)
	r.logger.Info("run started",
		"run_id", runID, "records", len(records), "batches", len(batches))

	// In-flight batches finish even after cancellation.
	workCtx := context.WithoutCancel(ctx)

	var (
		mu       sync.Mutex
		fatalErr error
		wg       sync.WaitGroup
	)
	sem := make(chan struct{}, r.concurrency)

	canceled := false
	for _, batch := range batches {
		// Acquire the slot first so the cancellation and fatal checks see
		// the outcome of every batch that was in flight ahead of this one.
		sem <- struct{}{}

		if ctx.Err() != nil {
			<-sem
			canceled = true
			break
		}

		mu.Lock()
		stop := fatalErr != nil
		mu.Unlock()
		if stop {
			<-sem
			break
		}

		wg.Add(1)
		go func(batch []domain.ProductRecord) {
			defer wg.Done()
			defer func() { <-sem }()

			if err := r.processBatch(workCtx, batch, agg); err != nil {
				mu.Lock()
				if fatalErr == nil {
					fatalErr = err
				}
				mu.Unlock()
			}
		}(batch)
	}
	wg.Wait()

	summary := agg.Summary()
	summary.RunID = runID
	summary.StartedAt = start
	summary.CompletedAt = r.nowFunc()
	summary.ValidationErrors = rowErrs

	switch {
	case fatalErr != nil:
		summary.Aborted = true
		summary.AbortReason = fatalErr.Error()
	case canceled:
		summary.Aborted = true
		summary.AbortReason = "canceled"
	}

	metrics.RunDuration.Observe(summary.CompletedAt.Sub(start).Seconds())
	r.logger.Info("run finished",
		"run_id", runID,
		"attempted", summary.Attempted,
		"inventory_created", summary.InventoryCreated,
		"published", summary.Published,
		"failed", len(summary.Failures),
		"aborted", summary.Aborted)

	return summary, agg.Results(), fatalErr
}

// processBatch resolves one batch end to end and records every outcome.
func (r *Runner) processBatch(
	ctx context.Context,
	batch []domain.ProductRecord,
	agg *Aggregator,
) error {
	outcomes, err := r.dispatcher.DispatchBatch(ctx, batch)

	for _, out := range outcomes {
		// A fatal abort can leave records unresolved; those never appear in
		// the summary as attempted.
		if out.State.Status == domain.StatusPending {
			continue
		}

		if out.State.Status == domain.StatusInventoryCreated && r.machine != nil {
			res, advErr := r.machine.Advance(ctx, out.Record)
			agg.Record(res)
			if advErr != nil && err == nil {
				err = advErr
			}
			continue
		}

		agg.Record(domain.ItemResult{SKU: out.Record.SKU, State: out.State})
	}

	return err
}
