package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/donaldgifford/ebay-autolister/internal/ebay"
	"github.com/donaldgifford/ebay-autolister/internal/metrics"
	domain "github.com/donaldgifford/ebay-autolister/pkg/types"
)

// DefaultBatchSize is the bulk endpoint's per-call record limit.
const DefaultBatchSize = 25

// RecordOutcome is the inventory-phase result for one record in a batch.
type RecordOutcome struct {
	Record domain.ProductRecord
	State  domain.ListingState
}

// SplitBatches partitions records into contiguous batches of at most size,
// preserving input order. Concatenating the result reproduces the input.
func SplitBatches(records []domain.ProductRecord, size int) [][]domain.ProductRecord {
	if size <= 0 {
		size = DefaultBatchSize
	}

	batches := make([][]domain.ProductRecord, 0, (len(records)+size-1)/size)
	for start := 0; start < len(records); start += size {
		end := min(start+size, len(records))
		batches = append(batches, records[start:end])
	}
	return batches
}

// Dispatcher issues bulk inventory calls with retry handling. The bulk
// endpoint reports each record independently, so a retry resubmits only the
// records that failed transiently; successes and permanent rejections are
// settled on the attempt that produced them.
type Dispatcher struct {
	client ebay.InventoryClient
	policy Policy
	logger *slog.Logger
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithDispatcherLogger sets the dispatcher's logger.
func WithDispatcherLogger(l *slog.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		d.logger = l
	}
}

// NewDispatcher creates a Dispatcher using the given client and retry
// policy.
func NewDispatcher(client ebay.InventoryClient, policy Policy, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		client: client,
		policy: policy,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// DispatchBatch submits one batch and resolves every record in it to either
// INVENTORY_CREATED or FAILED(inventory). The returned error is non-nil only
// for run-fatal conditions (auth failure, unreachable host); in that case
// the outcomes resolved so far are still returned.
func (d *Dispatcher) DispatchBatch(
	ctx context.Context,
	batch []domain.ProductRecord,
) ([]RecordOutcome, error) {
	metrics.BatchesDispatchedTotal.Inc()

	states := make(map[string]domain.ListingState, len(batch))
	pending := batch

	for attempt := 1; ; attempt++ {
		statuses, err := d.client.BulkCreateInventoryItems(ctx, pending)
		if err != nil {
			if ebay.IsFatal(err) {
				return collectOutcomes(batch, states), fmt.Errorf("bulk create: %w", err)
			}

			if d.policy.Retryable != nil && d.policy.Retryable(err) {
				if attempt < d.policy.MaxAttempts {
					d.logger.Warn("batch call failed, retrying",
						"attempt", attempt, "pending", len(pending), "error", err)
					metrics.BatchRetriesTotal.Inc()
					if serr := sleep(ctx, d.policy.Backoff(attempt)); serr != nil {
						return collectOutcomes(batch, states), serr
					}
					continue
				}
				failPending(states, pending, retriesExhaustedReason)
				break
			}

			// The server rejected the call outright; nothing to retry.
			failPending(states, pending, err.Error())
			break
		}

		var retry []domain.ProductRecord
		for i, st := range statuses {
			switch {
			case st.Succeeded():
				states[st.SKU] = domain.InventoryCreated()
				metrics.RecordsCreatedTotal.Inc()
			case st.Transient():
				if i < len(pending) {
					retry = append(retry, pending[i])
				}
			default:
				states[st.SKU] = domain.Failed(domain.PhaseInventory, st.Reason())
				metrics.RecordsFailedTotal.WithLabelValues(string(domain.PhaseInventory)).Inc()
			}
		}

		if len(retry) == 0 {
			break
		}
		if attempt >= d.policy.MaxAttempts {
			failPending(states, retry, retriesExhaustedReason)
			break
		}

		d.logger.Warn("retrying transient records",
			"attempt", attempt, "records", len(retry))
		metrics.BatchRetriesTotal.Inc()
		if serr := sleep(ctx, d.policy.Backoff(attempt)); serr != nil {
			failPending(states, retry, retriesExhaustedReason)
			return collectOutcomes(batch, states), serr
		}
		pending = retry
	}

	return collectOutcomes(batch, states), nil
}

func failPending(states map[string]domain.ListingState, pending []domain.ProductRecord, reason string) {
	for _, rec := range pending {
		states[rec.SKU] = domain.Failed(domain.PhaseInventory, reason)
		metrics.RecordsFailedTotal.WithLabelValues(string(domain.PhaseInventory)).Inc()
	}
}

// collectOutcomes orders resolved states by the original batch order. A sku
// with no resolved state (fatal abort mid-batch) stays PENDING.
func collectOutcomes(batch []domain.ProductRecord, states map[string]domain.ListingState) []RecordOutcome {
	outcomes := make([]RecordOutcome, 0, len(batch))
	for _, rec := range batch {
		state, ok := states[rec.SKU]
		if !ok {
			state = domain.Pending()
		}
		outcomes = append(outcomes, RecordOutcome{Record: rec, State: state})
	}
	return outcomes
}
