package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/donaldgifford/ebay-autolister/internal/store"
)

func migrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations for the run-history store",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}
			if !cfg.Database.Enabled() {
				return fmt.Errorf("run history is not configured; set database.host in %s", cfgFile)
			}

			ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
			defer cancel()

			pool, err := pgxpool.New(ctx, cfg.Database.DSN())
			if err != nil {
				return fmt.Errorf("connecting to database: %w", err)
			}
			defer pool.Close()

			log.Info("running migrations", "host", cfg.Database.Host)

			if err := store.RunMigrations(ctx, pool); err != nil {
				return fmt.Errorf("running migrations: %w", err)
			}

			log.Info("migrations complete")
			return nil
		},
	}
}
