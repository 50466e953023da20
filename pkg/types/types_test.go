package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	domain "github.com/donaldgifford/ebay-autolister/pkg/types"
)

func TestListingState_CanTransitionTo(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		from domain.ListingState
		to   domain.ListingState
		want bool
	}{
		{"pending to inventory", domain.Pending(), domain.InventoryCreated(), true},
		{"inventory to offer", domain.InventoryCreated(), domain.OfferCreated(), true},
		{"offer to published", domain.OfferCreated(), domain.Published(), true},
		{"pending to offer skips a phase", domain.Pending(), domain.OfferCreated(), false},
		{"offer back to inventory", domain.OfferCreated(), domain.InventoryCreated(), false},
		{"non-terminal to failed", domain.InventoryCreated(), domain.Failed(domain.PhaseOffer, "x"), true},
		{"published is terminal", domain.Published(), domain.Failed(domain.PhasePublish, "x"), false},
		{"failed is terminal", domain.Failed(domain.PhaseOffer, "x"), domain.Published(), false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestListingState_Terminal(t *testing.T) {
	t.Parallel()

	assert.False(t, domain.Pending().Terminal())
	assert.False(t, domain.InventoryCreated().Terminal())
	assert.False(t, domain.OfferCreated().Terminal())
	assert.True(t, domain.Published().Terminal())
	assert.True(t, domain.Failed(domain.PhaseInventory, "x").Terminal())
}

func TestCondition_Valid(t *testing.T) {
	t.Parallel()

	for _, c := range domain.Conditions() {
		assert.True(t, c.Valid(), string(c))
	}
	assert.False(t, domain.Condition("MINT").Valid())
	assert.False(t, domain.Condition("").Valid())
}

func TestFailed_CarriesPhaseAndReason(t *testing.T) {
	t.Parallel()

	s := domain.Failed(domain.PhaseOffer, "rejected")
	assert.Equal(t, domain.StatusFailed, s.Status)
	assert.Equal(t, domain.PhaseOffer, s.FailedPhase)
	assert.Equal(t, "rejected", s.Reason)
}
