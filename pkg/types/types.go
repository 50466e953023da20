// Package domain defines the core business types for the eBay autolister.
package domain

import (
	"time"
)

// Condition represents an eBay inventory item condition enum value.
type Condition string

// Condition constants (eBay Sell Inventory API condition enum subset).
const (
	ConditionNew                  Condition = "NEW"
	ConditionLikeNew              Condition = "LIKE_NEW"
	ConditionNewOther             Condition = "NEW_OTHER"
	ConditionUsedExcellent        Condition = "USED_EXCELLENT"
	ConditionUsedVeryGood         Condition = "USED_VERY_GOOD"
	ConditionUsedGood             Condition = "USED_GOOD"
	ConditionUsedAcceptable       Condition = "USED_ACCEPTABLE"
	ConditionSellerRefurbished    Condition = "SELLER_REFURBISHED"
	ConditionForPartsOrNotWorking Condition = "FOR_PARTS_OR_NOT_WORKING"
)

// Conditions lists every accepted condition value.
func Conditions() []Condition {
	return []Condition{
		ConditionNew,
		ConditionLikeNew,
		ConditionNewOther,
		ConditionUsedExcellent,
		ConditionUsedVeryGood,
		ConditionUsedGood,
		ConditionUsedAcceptable,
		ConditionSellerRefurbished,
		ConditionForPartsOrNotWorking,
	}
}

// Valid reports whether c is a member of the condition enum.
func (c Condition) Valid() bool {
	for _, v := range Conditions() {
		if c == v {
			return true
		}
	}
	return false
}

// Dimensions is a package size triple in inches.
type Dimensions struct {
	Length float64 `json:"length"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// DefaultDimensions is used when a record omits the dimensions column.
func DefaultDimensions() Dimensions {
	return Dimensions{Length: 10.0, Width: 10.0, Height: 10.0}
}

// ProductRecord is a validated product row ready for dispatch.
// Records are immutable after validation.
type ProductRecord struct {
	SKU         string     `json:"sku"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	CategoryID  string     `json:"category_id"`
	Price       float64    `json:"price"`
	Condition   Condition  `json:"condition"`
	Quantity    int        `json:"quantity"`
	Brand       string     `json:"brand,omitempty"`
	MPN         string     `json:"mpn,omitempty"`
	Weight      float64    `json:"weight"`
	Dimensions  Dimensions `json:"dimensions"`
	Images      []string   `json:"images,omitempty"`
}

// RowError describes a validation failure for a single input row field.
type RowError struct {
	Row    int    `json:"row"`
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// ListingPhase identifies which publish phase a failure occurred in.
type ListingPhase string

// Listing phase constants.
const (
	PhaseInventory ListingPhase = "inventory"
	PhaseOffer     ListingPhase = "offer"
	PhasePublish   ListingPhase = "publish"
)

// ListingStatus is the progression marker for a record's publish sequence.
type ListingStatus string

// Listing status constants. Transitions only move forward or into FAILED;
// PUBLISHED and FAILED are terminal.
const (
	StatusPending          ListingStatus = "PENDING"
	StatusInventoryCreated ListingStatus = "INVENTORY_CREATED"
	StatusOfferCreated     ListingStatus = "OFFER_CREATED"
	StatusPublished        ListingStatus = "PUBLISHED"
	StatusFailed           ListingStatus = "FAILED"
)

// ListingState is the tagged per-record publish state. FailedPhase and
// Reason are set only when Status is FAILED.
type ListingState struct {
	Status      ListingStatus `json:"status"`
	FailedPhase ListingPhase  `json:"failed_phase,omitempty"`
	Reason      string        `json:"reason,omitempty"`
}

// Pending returns the initial listing state.
func Pending() ListingState {
	return ListingState{Status: StatusPending}
}

// InventoryCreated returns the state after a successful inventory call.
func InventoryCreated() ListingState {
	return ListingState{Status: StatusInventoryCreated}
}

// OfferCreated returns the state after a successful offer call.
func OfferCreated() ListingState {
	return ListingState{Status: StatusOfferCreated}
}

// Published returns the terminal success state.
func Published() ListingState {
	return ListingState{Status: StatusPublished}
}

// Failed returns the terminal failure state for the given phase.
func Failed(phase ListingPhase, reason string) ListingState {
	return ListingState{Status: StatusFailed, FailedPhase: phase, Reason: reason}
}

// Terminal reports whether the state permits no further transitions.
func (s ListingState) Terminal() bool {
	return s.Status == StatusPublished || s.Status == StatusFailed
}

// rank orders statuses for forward-only transition checks.
func (s ListingState) rank() int {
	switch s.Status {
	case StatusPending:
		return 0
	case StatusInventoryCreated:
		return 1
	case StatusOfferCreated:
		return 2
	case StatusPublished:
		return 3
	default: // FAILED
		return 4
	}
}

// CanTransitionTo reports whether moving from s to next is a legal
// forward transition. Any non-terminal state may move into FAILED.
func (s ListingState) CanTransitionTo(next ListingState) bool {
	if s.Terminal() {
		return false
	}
	if next.Status == StatusFailed {
		return true
	}
	return next.rank() == s.rank()+1
}

// ItemResult is the final outcome for one sku. Owned by the result
// aggregator; immutable once the sku reaches a terminal state.
type ItemResult struct {
	SKU       string       `json:"sku"`
	State     ListingState `json:"state"`
	OfferID   string       `json:"offer_id,omitempty"`
	ListingID string       `json:"listing_id,omitempty"`
}

// ItemFailure pairs a non-published sku with its failure reason.
type ItemFailure struct {
	SKU    string       `json:"sku"`
	Phase  ListingPhase `json:"phase,omitempty"`
	Reason string       `json:"reason"`
}

// RunSummary is the sole return value of a full processing run.
type RunSummary struct {
	RunID       string    `json:"run_id"`
	File        string    `json:"file,omitempty"`
	StartedAt   time.Time `json:"started_at"`
	CompletedAt time.Time `json:"completed_at"`
	DryRun      bool      `json:"dry_run,omitempty"`

	Attempted        int `json:"attempted"`
	InventoryCreated int `json:"inventory_created"`
	OffersCreated    int `json:"offers_created"`
	Published        int `json:"published"`

	Failures         []ItemFailure `json:"failures,omitempty"`
	ValidationErrors []RowError    `json:"validation_errors,omitempty"`

	// Aborted marks a summary cut short by a fatal error or cancellation.
	// The counts above remain valid for the work that completed.
	Aborted     bool   `json:"aborted,omitempty"`
	AbortReason string `json:"abort_reason,omitempty"`
}
