package pipeline

import (
	"context"
	"log/slog"

	"github.com/donaldgifford/ebay-autolister/internal/ebay"
	"github.com/donaldgifford/ebay-autolister/internal/metrics"
	domain "github.com/donaldgifford/ebay-autolister/pkg/types"
)

// StateMachine advances a record whose inventory item exists through the
// offer and publish phases. Each phase call runs under the retry policy; a
// failed phase freezes the record in FAILED with that phase recorded, and
// later phases are never attempted.
type StateMachine struct {
	client ebay.InventoryClient
	policy Policy
	logger *slog.Logger
}

// StateMachineOption configures a StateMachine.
type StateMachineOption func(*StateMachine)

// WithStateMachineLogger sets the state machine's logger.
func WithStateMachineLogger(l *slog.Logger) StateMachineOption {
	return func(m *StateMachine) {
		m.logger = l
	}
}

// NewStateMachine creates a StateMachine using the given client and retry
// policy.
func NewStateMachine(client ebay.InventoryClient, policy Policy, opts ...StateMachineOption) *StateMachine {
	m := &StateMachine{
		client: client,
		policy: policy,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Advance drives rec from INVENTORY_CREATED toward PUBLISHED. The returned
// result always carries a valid state; the error is non-nil only for
// run-fatal conditions.
func (m *StateMachine) Advance(
	ctx context.Context,
	rec domain.ProductRecord,
) (domain.ItemResult, error) {
	res := domain.ItemResult{SKU: rec.SKU, State: domain.InventoryCreated()}

	var offerID string
	err := m.policy.Do(ctx, func() error {
		id, err := m.client.CreateOffer(ctx, rec)
		if err != nil {
			return err
		}
		offerID = id
		return nil
	})
	if err != nil {
		if ebay.IsFatal(err) {
			return res, err
		}
		m.logger.Warn("offer creation failed", "sku", rec.SKU, "error", err)
		metrics.RecordsFailedTotal.WithLabelValues(string(domain.PhaseOffer)).Inc()
		res.State = domain.Failed(domain.PhaseOffer, FailureReason(err))
		return res, nil
	}

	res.OfferID = offerID
	res.State = domain.OfferCreated()
	metrics.OffersCreatedTotal.Inc()

	var listingID string
	err = m.policy.Do(ctx, func() error {
		id, err := m.client.PublishOffer(ctx, offerID)
		if err != nil {
			return err
		}
		listingID = id
		return nil
	})
	if err != nil {
		if ebay.IsFatal(err) {
			return res, err
		}
		m.logger.Warn("publish failed", "sku", rec.SKU, "offer_id", offerID, "error", err)
		metrics.RecordsFailedTotal.WithLabelValues(string(domain.PhasePublish)).Inc()
		res.State = domain.Failed(domain.PhasePublish, FailureReason(err))
		return res, nil
	}

	res.ListingID = listingID
	res.State = domain.Published()
	metrics.RecordsPublishedTotal.Inc()

	return res, nil
}
