package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/donaldgifford/ebay-autolister/internal/catalog"
)

const envTemplate = `# eBay API credentials (https://developer.ebay.com/my/keys)
EBAY_CLIENT_ID=your-client-id
EBAY_CLIENT_SECRET=your-client-secret
`

const configTemplate = `ebay:
  client_id: ${EBAY_CLIENT_ID}
  client_secret: ${EBAY_CLIENT_SECRET}
  sandbox: true
  marketplace: EBAY_US
  rate_limit_interval: 100ms
  batch_size: 25
  max_retries: 3

# Default listing policies applied to every created offer. Required when
# running with --create-listings.
policies:
  fulfillment_policy_id: ""
  payment_policy_id: ""
  return_policy_id: ""
  merchant_location_key: ""

# Optional run-history database; leave host empty to disable.
database:
  host: ""
  port: 5432
  name: autolister
  user: autolister
  password: ""
  sslmode: disable

notifications:
  webhook:
    enabled: false
    url: ""

metrics:
  enabled: false
  addr: 127.0.0.1:9107

logging:
  level: info
  format: text
`

func setupCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "setup",
		Short: "Write starter config, .env template, and a sample CSV",
		RunE: func(_ *cobra.Command, _ []string) error {
			if err := writeIfAbsent(".env", envTemplate); err != nil {
				return err
			}
			if err := writeIfAbsent(cfgFile, configTemplate); err != nil {
				return err
			}
			if err := catalog.WriteSample("sample_products.csv"); err != nil {
				return fmt.Errorf("writing sample CSV: %w", err)
			}

			fmt.Println("Setup complete.")
			fmt.Println("Update .env with your eBay API credentials, then run:")
			fmt.Println("  ebay-autolister test-connection")
			fmt.Println("  ebay-autolister process sample_products.csv --dry-run")
			return nil
		},
	}
}

// writeIfAbsent never clobbers an existing file.
func writeIfAbsent(path, content string) error {
	if _, err := os.Stat(path); err == nil {
		fmt.Printf("%s already exists, leaving it untouched\n", path)
		return nil
	}

	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	fmt.Printf("Created %s\n", path)
	return nil
}
