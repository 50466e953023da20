package pipeline

import (
	"sync"

	domain "github.com/donaldgifford/ebay-autolister/pkg/types"
)

// Aggregator accumulates per-sku outcomes into a run summary. Each sku holds
// exactly one result; once a sku reaches a terminal state, later updates for
// it are ignored. Safe for concurrent use.
type Aggregator struct {
	mu      sync.Mutex
	results map[string]*domain.ItemResult
	order   []string
}

// NewAggregator creates an empty Aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{
		results: make(map[string]*domain.ItemResult),
	}
}

// Record stores or advances the result for res.SKU. Updates against a
// terminal state and backward transitions are dropped.
func (a *Aggregator) Record(res domain.ItemResult) {
	a.mu.Lock()
	defer a.mu.Unlock()

	existing, ok := a.results[res.SKU]
	if !ok {
		r := res
		a.results[res.SKU] = &r
		a.order = append(a.order, res.SKU)
		return
	}

	if existing.State.Terminal() || !existing.State.CanTransitionTo(res.State) {
		return
	}

	existing.State = res.State
	if res.OfferID != "" {
		existing.OfferID = res.OfferID
	}
	if res.ListingID != "" {
		existing.ListingID = res.ListingID
	}
}

// Results returns all results in first-seen order.
func (a *Aggregator) Results() []domain.ItemResult {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make([]domain.ItemResult, 0, len(a.order))
	for _, sku := range a.order {
		out = append(out, *a.results[sku])
	}
	return out
}

// Summary folds the accumulated results into counts and failure details.
// Identity fields (run ID, timing, validation errors) are the caller's to
// fill in.
func (a *Aggregator) Summary() domain.RunSummary {
	a.mu.Lock()
	defer a.mu.Unlock()

	var s domain.RunSummary
	s.Attempted = len(a.order)

	for _, sku := range a.order {
		res := a.results[sku]
		switch res.State.Status {
		case domain.StatusPublished:
			s.Published++
			s.OffersCreated++
			s.InventoryCreated++
		case domain.StatusOfferCreated:
			s.OffersCreated++
			s.InventoryCreated++
		case domain.StatusInventoryCreated:
			s.InventoryCreated++
		case domain.StatusFailed:
			s.Failures = append(s.Failures, domain.ItemFailure{
				SKU:    res.SKU,
				Phase:  res.State.FailedPhase,
				Reason: res.State.Reason,
			})
			// A failure past the inventory phase still created inventory.
			if res.State.FailedPhase == domain.PhaseOffer {
				s.InventoryCreated++
			}
			if res.State.FailedPhase == domain.PhasePublish {
				s.InventoryCreated++
				s.OffersCreated++
			}
		}
	}

	return s
}
