package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/donaldgifford/ebay-autolister/internal/catalog"
	"github.com/donaldgifford/ebay-autolister/internal/config"
	"github.com/donaldgifford/ebay-autolister/internal/metrics"
	"github.com/donaldgifford/ebay-autolister/internal/notify"
	"github.com/donaldgifford/ebay-autolister/internal/pipeline"
	"github.com/donaldgifford/ebay-autolister/internal/store"
	domain "github.com/donaldgifford/ebay-autolister/pkg/types"
)

func processCommand() *cobra.Command {
	var (
		dryRun         bool
		createListings bool
		parallel       int
	)

	processCmd := &cobra.Command{
		Use:   "process <file>",
		Short: "Validate a product CSV and create inventory items in batches",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runProcess(args[0], dryRun, createListings, parallel)
		},
	}

	processCmd.Flags().BoolVar(&dryRun, "dry-run", false,
		"validate and batch without making API calls")
	processCmd.Flags().BoolVar(&createListings, "create-listings", false,
		"create and publish an offer for every created inventory item")
	processCmd.Flags().IntVar(&parallel, "parallel", 1,
		"number of batches dispatched concurrently")

	return processCmd
}

func runProcess(file string, dryRun, createListings bool, parallel int) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}

	rows, err := catalog.ReadFile(file)
	if err != nil {
		return err
	}

	valid, rowErrs := catalog.ValidateRows(rows)
	metrics.ValidationErrorsTotal.Add(float64(len(rowErrs)))
	log.Info("validation finished",
		"file", file, "rows", len(rows), "valid", len(valid), "errors", len(rowErrs))

	if dryRun {
		return printProcessResult(dryRunSummary(file, valid, rowErrs, cfg.Ebay.BatchSize, log))
	}

	if err := requireCredentials(cfg); err != nil {
		return err
	}

	stopMetrics, err := startMetricsServer(cfg, log)
	if err != nil {
		return err
	}
	defer stopMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := newSellClient(cfg, newTokenProvider(cfg))
	runner := pipeline.NewRunner(
		client,
		pipeline.DefaultPolicy(cfg.Ebay.MaxRetries),
		createListings,
		pipeline.WithBatchSize(cfg.Ebay.BatchSize),
		pipeline.WithConcurrency(parallel),
		pipeline.WithRunnerLogger(log),
	)

	summary, results, runErr := runner.Run(ctx, valid, rowErrs)
	summary.File = file

	// Persistence and notification failures are logged, never fatal: the
	// run itself already happened.
	persistRun(cfg, log, &summary, results)
	notifyRun(cfg, log, &summary)

	if err := printProcessResult(&summary); err != nil {
		return err
	}

	// Per-sku failures leave the exit code at zero; only run-fatal
	// conditions propagate.
	return runErr
}

// dryRunSummary reports what a real run would dispatch.
func dryRunSummary(
	file string,
	valid []domain.ProductRecord,
	rowErrs []domain.RowError,
	batchSize int,
	log *slog.Logger,
) *domain.RunSummary {
	batches := pipeline.SplitBatches(valid, batchSize)
	now := time.Now()

	log.Info("dry run",
		"valid_records", len(valid), "batches", len(batches), "batch_size", batchSize)

	return &domain.RunSummary{
		RunID:            uuid.NewString(),
		File:             file,
		StartedAt:        now,
		CompletedAt:      now,
		DryRun:           true,
		Attempted:        len(valid),
		ValidationErrors: rowErrs,
	}
}

func printProcessResult(summary *domain.RunSummary) error {
	if jsonOutput() {
		return outputJSON(summary)
	}
	return printSummary(summary)
}

// startMetricsServer serves /metrics and /healthz while the run is in
// flight. Returns a no-op stopper when metrics are disabled.
func startMetricsServer(cfg *config.Config, log *slog.Logger) (func(), error) {
	if !cfg.Metrics.Enabled {
		return func() {}, nil
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	log.Info("serving metrics", "addr", cfg.Metrics.Addr)

	go func() {
		if err := e.Start(cfg.Metrics.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics server error", "error", err)
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := e.Shutdown(ctx); err != nil {
			log.Error("shutting down metrics server", "error", err)
		}
	}, nil
}

func persistRun(
	cfg *config.Config,
	log *slog.Logger,
	summary *domain.RunSummary,
	results []domain.ItemResult,
) {
	if !cfg.Database.Enabled() {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	st, err := store.NewPostgresStore(ctx, cfg.Database.DSN())
	if err != nil {
		log.Error("connecting to run history database", "error", err)
		return
	}
	defer st.Close()

	if err := st.SaveRun(ctx, summary, results); err != nil {
		log.Error("saving run history", "run_id", summary.RunID, "error", err)
		return
	}

	log.Info("run history saved", "run_id", summary.RunID)
}

func notifyRun(cfg *config.Config, log *slog.Logger, summary *domain.RunSummary) {
	var notifier notify.Notifier = notify.NewNoOpNotifier(log)
	if cfg.Notifications.Webhook.Enabled {
		notifier = notify.NewWebhookNotifier(
			cfg.Notifications.Webhook.URL,
			notify.WithHeaders(cfg.Notifications.Webhook.Headers),
		)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := notifier.SendSummary(ctx, summary); err != nil {
		log.Error("sending run summary notification", "error", err)
	}
}
