package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

func configInfoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "config-info",
		Short: "Display the effective configuration",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, _, err := loadConfig()
			if err != nil {
				return err
			}

			if jsonOutput() {
				return outputJSON(map[string]any{
					"sandbox":             cfg.Ebay.Sandbox,
					"api_base_url":        cfg.Ebay.APIBaseURL(),
					"marketplace":         cfg.Ebay.Marketplace,
					"rate_limit_interval": cfg.Ebay.RateLimitInterval.String(),
					"batch_size":          cfg.Ebay.BatchSize,
					"max_retries":         cfg.Ebay.MaxRetries,
					"credentials_set":     cfg.Ebay.HasCredentials(),
					"database_enabled":    cfg.Database.Enabled(),
					"webhook_enabled":     cfg.Notifications.Webhook.Enabled,
					"metrics_enabled":     cfg.Metrics.Enabled,
					"log_level":           cfg.Logging.Level,
				})
			}

			tw := newTabWriter(os.Stdout)
			tw.writef("Sandbox mode:\t%v\n", cfg.Ebay.Sandbox)
			tw.writef("API base URL:\t%s\n", cfg.Ebay.APIBaseURL())
			tw.writef("Marketplace:\t%s\n", cfg.Ebay.Marketplace)
			tw.writef("Rate limit:\t%s between requests\n", cfg.Ebay.RateLimitInterval)
			tw.writef("Batch size:\t%d items per batch\n", cfg.Ebay.BatchSize)
			tw.writef("Max retries:\t%d\n", cfg.Ebay.MaxRetries)
			tw.writef("Credentials set:\t%v\n", cfg.Ebay.HasCredentials())
			tw.writef("Run history:\t%v\n", cfg.Database.Enabled())
			tw.writef("Webhook:\t%v\n", cfg.Notifications.Webhook.Enabled)
			tw.writef("Metrics:\t%v\n", cfg.Metrics.Enabled)
			tw.writef("Log level:\t%s\n", cfg.Logging.Level)
			return tw.finish()
		},
	}
}
