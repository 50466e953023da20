package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func testConnectionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "test-connection",
		Short: "Verify eBay API credentials by requesting a token",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, _, err := loadConfig()
			if err != nil {
				return err
			}
			if err := requireCredentials(cfg); err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			if _, err := newTokenProvider(cfg).Token(ctx); err != nil {
				return fmt.Errorf("authentication failed: %w", err)
			}

			fmt.Println("Authentication successful")
			fmt.Printf("API base URL: %s\n", cfg.Ebay.APIBaseURL())
			fmt.Printf("Marketplace:  %s\n", cfg.Ebay.Marketplace)
			if cfg.Ebay.Sandbox {
				fmt.Println("Environment:  sandbox")
			} else {
				fmt.Println("Environment:  production")
			}
			return nil
		},
	}
}
