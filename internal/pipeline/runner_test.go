package pipeline_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/ebay-autolister/internal/ebay"
	"github.com/donaldgifford/ebay-autolister/internal/pipeline"
	domain "github.com/donaldgifford/ebay-autolister/pkg/types"
)

func TestRunner_InventoryOnly(t *testing.T) {
	t.Parallel()

	client := &fakeClient{}
	r := pipeline.NewRunner(client, testPolicy(3), false, pipeline.WithBatchSize(25))

	summary, _, err := r.Run(context.Background(), records(60), nil)
	require.NoError(t, err)

	assert.NotEmpty(t, summary.RunID)
	assert.Equal(t, 60, summary.Attempted)
	assert.Equal(t, 60, summary.InventoryCreated)
	assert.Equal(t, 0, summary.OffersCreated)
	assert.Equal(t, 0, summary.Published)
	assert.Empty(t, summary.Failures)
	assert.False(t, summary.Aborted)

	// 60 records at batch size 25 is three calls.
	assert.Equal(t, 3, client.bulkCalls)
	assert.Equal(t, 0, client.offerCalls)
}

func TestRunner_CreateListings(t *testing.T) {
	t.Parallel()

	client := &fakeClient{}
	r := pipeline.NewRunner(client, testPolicy(3), true, pipeline.WithBatchSize(25))

	summary, results, err := r.Run(context.Background(), records(3), nil)
	require.NoError(t, err)

	assert.Equal(t, 3, summary.Attempted)
	assert.Equal(t, 3, summary.InventoryCreated)
	assert.Equal(t, 3, summary.OffersCreated)
	assert.Equal(t, 3, summary.Published)
	assert.Equal(t, 3, client.offerCalls)
	assert.Equal(t, 3, client.publishCalls)

	require.Len(t, results, 3)
	for _, res := range results {
		assert.Equal(t, domain.StatusPublished, res.State.Status)
		assert.NotEmpty(t, res.OfferID)
		assert.NotEmpty(t, res.ListingID)
	}
}

func TestRunner_FailedBatchDoesNotStopRun(t *testing.T) {
	t.Parallel()

	// The first batch exhausts its retries with server errors; the run must
	// continue and the second batch succeeds.
	var mu sync.Mutex
	firstBatchSKUs := map[string]bool{}

	client := &fakeClient{}
	client.bulkFn = func(call int, recs []domain.ProductRecord) ([]ebay.ItemStatus, error) {
		mu.Lock()
		defer mu.Unlock()

		if call == 1 {
			for _, r := range recs {
				firstBatchSKUs[r.SKU] = true
			}
		}
		if firstBatchSKUs[recs[0].SKU] {
			return nil, &ebay.APIError{Operation: "bulk", StatusCode: 503}
		}
		return allCreated(recs), nil
	}

	r := pipeline.NewRunner(client, testPolicy(3), false, pipeline.WithBatchSize(2))

	summary, _, err := r.Run(context.Background(), records(4), nil)
	require.NoError(t, err)

	assert.Equal(t, 4, summary.Attempted)
	assert.Equal(t, 2, summary.InventoryCreated)
	require.Len(t, summary.Failures, 2)
	for _, f := range summary.Failures {
		assert.Equal(t, domain.PhaseInventory, f.Phase)
		assert.Equal(t, "retries_exhausted", f.Reason)
	}
	assert.False(t, summary.Aborted)
}

func TestRunner_FatalAuthAbortsRemainingBatches(t *testing.T) {
	t.Parallel()

	client := &fakeClient{
		bulkFn: func(call int, recs []domain.ProductRecord) ([]ebay.ItemStatus, error) {
			if call == 1 {
				return allCreated(recs), nil
			}
			return nil, &ebay.AuthError{Err: context.DeadlineExceeded}
		},
	}
	r := pipeline.NewRunner(client, testPolicy(3), false, pipeline.WithBatchSize(2))

	summary, _, err := r.Run(context.Background(), records(6), nil)
	require.Error(t, err)
	assert.True(t, ebay.IsFatal(err))

	// The first batch completed; the failing second batch stopped the run
	// before the third was dispatched.
	assert.Equal(t, 2, client.bulkCalls)
	assert.Equal(t, 2, summary.Attempted)
	assert.Equal(t, 2, summary.InventoryCreated)
	assert.True(t, summary.Aborted)
	assert.NotEmpty(t, summary.AbortReason)
}

func TestRunner_CancellationStopsNewBatches(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())

	client := &fakeClient{}
	client.bulkFn = func(call int, recs []domain.ProductRecord) ([]ebay.ItemStatus, error) {
		// Cancel mid-run; the in-flight batch still completes.
		if call == 1 {
			cancel()
		}
		return allCreated(recs), nil
	}

	r := pipeline.NewRunner(client, testPolicy(3), false, pipeline.WithBatchSize(2))

	summary, _, err := r.Run(ctx, records(6), nil)
	require.NoError(t, err)

	assert.True(t, summary.Aborted)
	assert.Equal(t, "canceled", summary.AbortReason)
	assert.Equal(t, 2, summary.InventoryCreated)
	assert.Less(t, client.bulkCalls, 3)
}

func TestRunner_ValidationErrorsCarriedIntoSummary(t *testing.T) {
	t.Parallel()

	rowErrs := []domain.RowError{{Row: 2, Field: "price", Reason: "required field is missing or empty"}}

	client := &fakeClient{}
	r := pipeline.NewRunner(client, testPolicy(3), false)

	summary, _, err := r.Run(context.Background(), records(3), rowErrs)
	require.NoError(t, err)

	assert.Equal(t, 3, summary.InventoryCreated)
	assert.Equal(t, rowErrs, summary.ValidationErrors)
}

func TestRunner_ConcurrentBatches(t *testing.T) {
	t.Parallel()

	client := &fakeClient{}
	r := pipeline.NewRunner(client, testPolicy(3), false,
		pipeline.WithBatchSize(5),
		pipeline.WithConcurrency(4),
	)

	summary, _, err := r.Run(context.Background(), records(40), nil)
	require.NoError(t, err)

	assert.Equal(t, 40, summary.Attempted)
	assert.Equal(t, 40, summary.InventoryCreated)
	assert.Equal(t, 8, client.bulkCalls)
	assert.Empty(t, summary.Failures)
}
