// Package store defines the optional run-history datastore. The processing
// pipeline works without it; when a database is configured, every completed
// run and its per-sku results are persisted for later inspection.
package store

import (
	"context"

	domain "github.com/donaldgifford/ebay-autolister/pkg/types"
)

// Store defines the run-history data access operations.
type Store interface {
	// SaveRun persists a run summary and its per-sku results.
	SaveRun(ctx context.Context, summary *domain.RunSummary, results []domain.ItemResult) error

	// GetRun retrieves one run summary by its run ID.
	GetRun(ctx context.Context, runID string) (*domain.RunSummary, error)

	// ListRuns returns the most recent runs, newest first.
	ListRuns(ctx context.Context, limit int) ([]domain.RunSummary, error)

	// ListRunItems returns the per-sku results of one run.
	ListRunItems(ctx context.Context, runID string) ([]domain.ItemResult, error)

	// Migrate applies pending SQL schema migrations.
	Migrate(ctx context.Context) error

	// Ping verifies the database connection is alive.
	Ping(ctx context.Context) error
}
