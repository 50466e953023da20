// Package cmd implements the ebay-autolister CLI commands.
package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/donaldgifford/ebay-autolister/internal/config"
	"github.com/donaldgifford/ebay-autolister/internal/ebay"
	"github.com/donaldgifford/ebay-autolister/pkg/logger"
)

var (
	cfgFile string
	rootCmd = &cobra.Command{
		Use:   "ebay-autolister",
		Short: "Bulk-upload product listings to eBay",
		Long: "ebay-autolister reads product records from a CSV file, validates them,\n" +
			"and creates eBay inventory items in batches through the Sell Inventory API.\n" +
			"Optionally each created item is driven through offer creation and publish.",
	}
)

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().
		StringVar(&cfgFile, "config", "config.yaml", "config file path")
	rootCmd.PersistentFlags().
		String("output", "table", "output format (table, json)")

	cobra.CheckErr(viper.BindPFlag("output", rootCmd.PersistentFlags().Lookup("output")))

	viper.SetEnvPrefix("AUTOLISTER")
	viper.AutomaticEnv()

	rootCmd.AddCommand(processCommand())
	rootCmd.AddCommand(checkCommand())
	rootCmd.AddCommand(testConnectionCommand())
	rootCmd.AddCommand(createSampleCommand())
	rootCmd.AddCommand(setupCommand())
	rootCmd.AddCommand(configInfoCommand())
	rootCmd.AddCommand(runsCommand())
	rootCmd.AddCommand(migrateCommand())
	rootCmd.AddCommand(versionCommand())
}

func jsonOutput() bool {
	return viper.GetString("output") == "json"
}

// loadConfig loads the config file and installs the configured logger as the
// process default.
func loadConfig() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	slog.SetDefault(log)

	return cfg, log, nil
}

// newTokenProvider builds the OAuth token provider for the configured
// environment. Commands that reach the network must call this after
// verifying HasCredentials.
func newTokenProvider(cfg *config.Config) *ebay.OAuthTokenProvider {
	return ebay.NewOAuthTokenProvider(
		cfg.Ebay.ClientID,
		cfg.Ebay.ClientSecret,
		ebay.WithTokenURL(cfg.Ebay.APITokenURL()),
		ebay.WithAuthRetries(cfg.Ebay.AuthMaxRetries),
	)
}

// newSellClient builds the rate-limited Sell Inventory API client.
func newSellClient(cfg *config.Config, tokens ebay.TokenProvider) *ebay.SellClient {
	return ebay.NewSellClient(
		tokens,
		ebay.WithBaseURL(cfg.Ebay.APIBaseURL()),
		ebay.WithMarketplace(cfg.Ebay.Marketplace),
		ebay.WithSellRateLimiter(ebay.NewRateLimiter(cfg.Ebay.RateLimitInterval)),
		ebay.WithListingPolicies(ebay.ListingPolicies{
			FulfillmentPolicyID: cfg.Policies.FulfillmentPolicyID,
			PaymentPolicyID:     cfg.Policies.PaymentPolicyID,
			ReturnPolicyID:      cfg.Policies.ReturnPolicyID,
			MerchantLocationKey: cfg.Policies.MerchantLocationKey,
		}),
	)
}

// requireCredentials is the shared guard for network commands.
func requireCredentials(cfg *config.Config) error {
	if !cfg.Ebay.HasCredentials() {
		return fmt.Errorf(
			"eBay credentials are not configured; set EBAY_CLIENT_ID and EBAY_CLIENT_SECRET (see 'ebay-autolister setup')",
		)
	}
	return nil
}
