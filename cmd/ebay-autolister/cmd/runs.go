package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/donaldgifford/ebay-autolister/internal/store"
)

func runsCommand() *cobra.Command {
	runsCmd := &cobra.Command{
		Use:   "runs",
		Short: "Inspect persisted run history",
	}

	var listLimit int
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List recent runs",
		RunE: func(_ *cobra.Command, _ []string) error {
			return withStore(func(ctx context.Context, st *store.PostgresStore) error {
				runs, err := st.ListRuns(ctx, listLimit)
				if err != nil {
					return err
				}

				if jsonOutput() {
					return outputJSON(runs)
				}
				if len(runs) == 0 {
					fmt.Println("No runs recorded.")
					return nil
				}
				return printRunsTable(runs)
			})
		},
	}
	listCmd.Flags().IntVar(&listLimit, "limit", 20, "number of runs to show")

	showCmd := &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show one run with its per-sku results",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return withStore(func(ctx context.Context, st *store.PostgresStore) error {
				summary, err := st.GetRun(ctx, args[0])
				if err != nil {
					return err
				}
				items, err := st.ListRunItems(ctx, args[0])
				if err != nil {
					return err
				}

				if jsonOutput() {
					return outputJSON(map[string]any{
						"summary": summary,
						"items":   items,
					})
				}

				if err := printSummary(summary); err != nil {
					return err
				}
				if len(items) > 0 {
					fmt.Println("\nItems:")
					return printRunItemsTable(items)
				}
				return nil
			})
		},
	}

	runsCmd.AddCommand(listCmd, showCmd)
	return runsCmd
}

// withStore connects to the configured run-history database for one command.
func withStore(fn func(context.Context, *store.PostgresStore) error) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}
	if !cfg.Database.Enabled() {
		return fmt.Errorf("run history is not configured; set database.host in %s", cfgFile)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	st, err := store.NewPostgresStore(ctx, cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer st.Close()

	return fn(ctx, st)
}
