package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/donaldgifford/ebay-autolister/internal/catalog"
)

func createSampleCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "create-sample [file]",
		Short: "Write a sample product CSV with example records",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			path := "sample_products.csv"
			if len(args) == 1 {
				path = args[0]
			}

			if err := catalog.WriteSample(path); err != nil {
				return fmt.Errorf("writing sample CSV: %w", err)
			}

			fmt.Printf("Sample CSV created: %s\n", path)
			return nil
		},
	}
}
