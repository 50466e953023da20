// Package ebay provides an eBay Sell Inventory API client abstracted behind
// interfaces for testability.
package ebay

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	domain "github.com/donaldgifford/ebay-autolister/pkg/types"
)

// ItemStatus is the per-record outcome of a bulk inventory call. The bulk
// endpoint reports each record independently, so one batch may contain a
// mix of successes and failures.
type ItemStatus struct {
	SKU        string
	StatusCode int
	Errors     []string
}

// Succeeded reports whether the record was created or replaced.
func (s ItemStatus) Succeeded() bool {
	return s.StatusCode >= 200 && s.StatusCode < 300
}

// Transient reports whether the per-record failure is worth retrying.
func (s ItemStatus) Transient() bool {
	return s.StatusCode == http.StatusTooManyRequests || s.StatusCode >= 500
}

// Reason returns a human-readable failure description.
func (s ItemStatus) Reason() string {
	if len(s.Errors) > 0 {
		return strings.Join(s.Errors, "; ")
	}
	return fmt.Sprintf("status %d", s.StatusCode)
}

// InventoryClient defines the Sell Inventory API operations the pipeline
// depends on.
type InventoryClient interface {
	// BulkCreateInventoryItems submits up to the API's batch limit of
	// records in one call and returns one status per record, in input
	// order. The returned error is non-nil only when the call as a whole
	// failed.
	BulkCreateInventoryItems(ctx context.Context, records []domain.ProductRecord) ([]ItemStatus, error)

	// GetInventoryItem fetches a single inventory item by sku.
	GetInventoryItem(ctx context.Context, sku string) (*InventoryItem, error)

	// CreateOffer creates a fixed-price offer for an existing inventory
	// item and returns the offer ID.
	CreateOffer(ctx context.Context, rec domain.ProductRecord) (string, error)

	// PublishOffer publishes an offer and returns the live listing ID.
	PublishOffer(ctx context.Context, offerID string) (string, error)
}

// TokenProvider defines the interface for obtaining OAuth2 tokens.
type TokenProvider interface {
	Token(ctx context.Context) (string, error)
}
