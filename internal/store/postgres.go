package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	domain "github.com/donaldgifford/ebay-autolister/pkg/types"
)

const defaultPoolSize = 5

// ErrRunNotFound is returned when the requested run ID does not exist.
var ErrRunNotFound = errors.New("run not found")

// PostgresStore implements Store using pgxpool (connection-pooled
// PostgreSQL). Methods require a live database and are covered by
// integration tests.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgresStore with connection pooling.
func NewPostgresStore(ctx context.Context, connString string) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("parsing connection string: %w", err)
	}

	cfg.MaxConns = defaultPoolSize

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

// Close gracefully shuts down the connection pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

// Ping verifies the database connection is alive.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Migrate applies pending SQL schema migrations.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	return RunMigrations(ctx, s.pool)
}

// SaveRun persists the summary and its per-sku results in one transaction.
func (s *PostgresStore) SaveRun(
	ctx context.Context,
	summary *domain.RunSummary,
	results []domain.ItemResult,
) error {
	validationErrs, err := json.Marshal(summary.ValidationErrors)
	if err != nil {
		return fmt.Errorf("marshaling validation errors: %w", err)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	_, err = tx.Exec(ctx, queryInsertRun, pgx.NamedArgs{
		"id":                summary.RunID,
		"file":              summary.File,
		"started_at":        summary.StartedAt,
		"completed_at":      summary.CompletedAt,
		"dry_run":           summary.DryRun,
		"attempted":         summary.Attempted,
		"inventory_created": summary.InventoryCreated,
		"offers_created":    summary.OffersCreated,
		"published":         summary.Published,
		"validation_errors": validationErrs,
		"aborted":           summary.Aborted,
		"abort_reason":      summary.AbortReason,
	})
	if err != nil {
		return fmt.Errorf("inserting run %s: %w", summary.RunID, err)
	}

	for _, res := range results {
		_, err = tx.Exec(ctx, queryInsertRunItem, pgx.NamedArgs{
			"run_id":       summary.RunID,
			"sku":          res.SKU,
			"status":       string(res.State.Status),
			"failed_phase": string(res.State.FailedPhase),
			"reason":       res.State.Reason,
			"offer_id":     res.OfferID,
			"listing_id":   res.ListingID,
		})
		if err != nil {
			return fmt.Errorf("inserting run item %s: %w", res.SKU, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing run %s: %w", summary.RunID, err)
	}

	return nil
}

// GetRun retrieves one run summary by its run ID, including failure details.
func (s *PostgresStore) GetRun(ctx context.Context, runID string) (*domain.RunSummary, error) {
	summary, err := scanRun(s.pool.QueryRow(ctx, queryGetRun, runID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRunNotFound
		}
		return nil, fmt.Errorf("getting run %s: %w", runID, err)
	}

	rows, err := s.pool.Query(ctx, queryListRunFailures, runID)
	if err != nil {
		return nil, fmt.Errorf("listing failures for run %s: %w", runID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var f domain.ItemFailure
		var phase string
		if err := rows.Scan(&f.SKU, &phase, &f.Reason); err != nil {
			return nil, fmt.Errorf("scanning failure: %w", err)
		}
		f.Phase = domain.ListingPhase(phase)
		summary.Failures = append(summary.Failures, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating failures: %w", err)
	}

	return summary, nil
}

// ListRuns returns the most recent runs, newest first.
func (s *PostgresStore) ListRuns(ctx context.Context, limit int) ([]domain.RunSummary, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.pool.Query(ctx, queryListRuns, limit)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var runs []domain.RunSummary
	for rows.Next() {
		summary, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		runs = append(runs, *summary)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating runs: %w", err)
	}

	return runs, nil
}

// ListRunItems returns the per-sku results of one run.
func (s *PostgresStore) ListRunItems(ctx context.Context, runID string) ([]domain.ItemResult, error) {
	rows, err := s.pool.Query(ctx, queryListRunItems, runID)
	if err != nil {
		return nil, fmt.Errorf("listing items for run %s: %w", runID, err)
	}
	defer rows.Close()

	var items []domain.ItemResult
	for rows.Next() {
		var res domain.ItemResult
		var status, phase string
		if err := rows.Scan(
			&res.SKU, &status, &phase, &res.State.Reason,
			&res.OfferID, &res.ListingID,
		); err != nil {
			return nil, fmt.Errorf("scanning run item: %w", err)
		}
		res.State.Status = domain.ListingStatus(status)
		res.State.FailedPhase = domain.ListingPhase(phase)
		items = append(items, res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating run items: %w", err)
	}

	return items, nil
}

func scanRun(row pgx.Row) (*domain.RunSummary, error) {
	var s domain.RunSummary
	var validationErrs []byte

	err := row.Scan(
		&s.RunID, &s.File, &s.StartedAt, &s.CompletedAt, &s.DryRun,
		&s.Attempted, &s.InventoryCreated, &s.OffersCreated, &s.Published,
		&validationErrs, &s.Aborted, &s.AbortReason,
	)
	if err != nil {
		return nil, err
	}

	if len(validationErrs) > 0 {
		if err := json.Unmarshal(validationErrs, &s.ValidationErrors); err != nil {
			return nil, fmt.Errorf("unmarshaling validation errors: %w", err)
		}
	}

	return &s, nil
}
