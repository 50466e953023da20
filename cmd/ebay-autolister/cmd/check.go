package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/donaldgifford/ebay-autolister/internal/ebay"
)

func checkCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check <sku>",
		Short: "Check the status of an inventory item by SKU",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			cfg, _, err := loadConfig()
			if err != nil {
				return err
			}
			if err := requireCredentials(cfg); err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			client := newSellClient(cfg, newTokenProvider(cfg))

			item, err := client.GetInventoryItem(ctx, args[0])
			if err != nil {
				var apiErr *ebay.APIError
				if errors.As(err, &apiErr) && apiErr.StatusCode == 404 {
					return fmt.Errorf("inventory item %q not found", args[0])
				}
				return fmt.Errorf("checking inventory item: %w", err)
			}

			if jsonOutput() {
				return outputJSON(item)
			}
			return printInventoryItem(item)
		},
	}
}
