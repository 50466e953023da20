package pipeline_test

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/donaldgifford/ebay-autolister/internal/ebay"
	"github.com/donaldgifford/ebay-autolister/internal/pipeline"
	domain "github.com/donaldgifford/ebay-autolister/pkg/types"
)

// fakeClient is a scriptable InventoryClient counting every call.
type fakeClient struct {
	mu           sync.Mutex
	bulkCalls    int
	offerCalls   int
	publishCalls int

	bulkFn    func(call int, recs []domain.ProductRecord) ([]ebay.ItemStatus, error)
	offerFn   func(call int, rec domain.ProductRecord) (string, error)
	publishFn func(call int, offerID string) (string, error)
}

func (f *fakeClient) BulkCreateInventoryItems(
	_ context.Context,
	recs []domain.ProductRecord,
) ([]ebay.ItemStatus, error) {
	f.mu.Lock()
	f.bulkCalls++
	call := f.bulkCalls
	f.mu.Unlock()

	if f.bulkFn != nil {
		return f.bulkFn(call, recs)
	}
	return allCreated(recs), nil
}

func (f *fakeClient) GetInventoryItem(_ context.Context, sku string) (*ebay.InventoryItem, error) {
	return &ebay.InventoryItem{SKU: sku}, nil
}

func (f *fakeClient) CreateOffer(_ context.Context, rec domain.ProductRecord) (string, error) {
	f.mu.Lock()
	f.offerCalls++
	call := f.offerCalls
	f.mu.Unlock()

	if f.offerFn != nil {
		return f.offerFn(call, rec)
	}
	return "offer-" + rec.SKU, nil
}

func (f *fakeClient) PublishOffer(_ context.Context, offerID string) (string, error) {
	f.mu.Lock()
	f.publishCalls++
	call := f.publishCalls
	f.mu.Unlock()

	if f.publishFn != nil {
		return f.publishFn(call, offerID)
	}
	return "listing-" + offerID, nil
}

func allCreated(recs []domain.ProductRecord) []ebay.ItemStatus {
	statuses := make([]ebay.ItemStatus, 0, len(recs))
	for _, r := range recs {
		statuses = append(statuses, ebay.ItemStatus{SKU: r.SKU, StatusCode: 200})
	}
	return statuses
}

func records(n int) []domain.ProductRecord {
	recs := make([]domain.ProductRecord, 0, n)
	for i := 0; i < n; i++ {
		recs = append(recs, domain.ProductRecord{
			SKU:        fmt.Sprintf("SKU-%03d", i+1),
			Title:      "Widget",
			CategoryID: "58058",
			Price:      9.99,
			Condition:  domain.ConditionNew,
			Quantity:   1,
		})
	}
	return recs
}

// testPolicy retries transient errors with no backoff delay.
func testPolicy(maxAttempts int) pipeline.Policy {
	return pipeline.Policy{
		MaxAttempts: maxAttempts,
		Backoff:     func(int) time.Duration { return 0 },
		Retryable:   ebay.IsTransient,
	}
}
