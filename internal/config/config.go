// Package config handles loading and validating the application configuration
// from YAML files with environment variable substitution. Credentials may be
// supplied through a .env file, loaded before substitution.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	sandboxAPIBase    = "https://api.sandbox.ebay.com"
	productionAPIBase = "https://api.ebay.com"

	tokenPath     = "/identity/v1/oauth2/token"
	inventoryPath = "/sell/inventory/v1"
)

// Config is the top-level application configuration.
type Config struct {
	Ebay          EbayConfig          `yaml:"ebay"`
	Policies      PoliciesConfig      `yaml:"policies"`
	Database      DatabaseConfig      `yaml:"database"`
	Notifications NotificationsConfig `yaml:"notifications"`
	Metrics       MetricsConfig       `yaml:"metrics"`
	Logging       LoggingConfig       `yaml:"logging"`
}

// EbayConfig defines eBay Sell API settings.
type EbayConfig struct {
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	Sandbox      bool   `yaml:"sandbox"`
	Marketplace  string `yaml:"marketplace"`

	// Overrides for tests; normally derived from the sandbox flag.
	TokenURL string `yaml:"token_url"`
	BaseURL  string `yaml:"base_url"`

	RateLimitInterval time.Duration `yaml:"rate_limit_interval"`
	BatchSize         int           `yaml:"batch_size"`
	MaxRetries        int           `yaml:"max_retries"`
	AuthMaxRetries    int           `yaml:"auth_max_retries"`
}

// APITokenURL returns the OAuth token endpoint for the configured environment.
func (e *EbayConfig) APITokenURL() string {
	if e.TokenURL != "" {
		return e.TokenURL
	}
	return e.apiBase() + tokenPath
}

// APIBaseURL returns the Sell Inventory API base URL for the configured
// environment.
func (e *EbayConfig) APIBaseURL() string {
	if e.BaseURL != "" {
		return e.BaseURL
	}
	return e.apiBase() + inventoryPath
}

func (e *EbayConfig) apiBase() string {
	if e.Sandbox {
		return sandboxAPIBase
	}
	return productionAPIBase
}

// HasCredentials reports whether both client credentials are set.
func (e *EbayConfig) HasCredentials() bool {
	return e.ClientID != "" && e.ClientSecret != ""
}

// PoliciesConfig defines the default listing policy identifiers applied to
// every created offer.
type PoliciesConfig struct {
	FulfillmentPolicyID string `yaml:"fulfillment_policy_id"`
	PaymentPolicyID     string `yaml:"payment_policy_id"`
	ReturnPolicyID      string `yaml:"return_policy_id"`
	MerchantLocationKey string `yaml:"merchant_location_key"`
}

// DatabaseConfig defines optional PostgreSQL settings for run history.
// Run history is disabled when Host is empty.
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
}

// Enabled reports whether run history persistence is configured.
func (d *DatabaseConfig) Enabled() bool {
	return d.Host != ""
}

// DSN returns a PostgreSQL connection string.
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d dbname=%s user=%s password=%s sslmode=%s",
		d.Host, d.Port, d.Name, d.User, d.Password, d.SSLMode,
	)
}

// NotificationsConfig defines notification targets.
type NotificationsConfig struct {
	Webhook WebhookConfig `yaml:"webhook"`
}

// WebhookConfig defines a generic webhook that receives run summaries.
type WebhookConfig struct {
	Enabled bool              `yaml:"enabled"`
	URL     string            `yaml:"url"`
	Headers map[string]string `yaml:"headers"`
}

// MetricsConfig defines the optional Prometheus endpoint served during runs.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// LoggingConfig defines logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}

// Load reads and parses a YAML config file, performing environment variable
// substitution and validation. A .env file next to the working directory is
// loaded first so credentials can be referenced as ${EBAY_CLIENT_ID} etc.
func Load(path string) (*Config, error) {
	// Missing .env is fine; the environment may already carry credentials.
	_ = godotenv.Load()

	data, err := os.ReadFile(path) //nolint:gosec // config path from trusted CLI flag
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	cfg := &Config{}
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}

	applyDefaults(cfg)

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func applyDefaults(cfg *Config) {
	applyEbayDefaults(&cfg.Ebay)
	applyDatabaseDefaults(&cfg.Database)
	applyMetricsDefaults(&cfg.Metrics)
	applyLoggingDefaults(&cfg.Logging)
}

func applyEbayDefaults(e *EbayConfig) {
	if e.Marketplace == "" {
		e.Marketplace = "EBAY_US"
	}
	if e.RateLimitInterval == 0 {
		e.RateLimitInterval = 100 * time.Millisecond
	}
	if e.BatchSize == 0 {
		e.BatchSize = 25
	}
	if e.MaxRetries == 0 {
		e.MaxRetries = 3
	}
	if e.AuthMaxRetries == 0 {
		e.AuthMaxRetries = 3
	}
}

func applyDatabaseDefaults(d *DatabaseConfig) {
	if d.Port == 0 {
		d.Port = 5432
	}
	if d.SSLMode == "" {
		d.SSLMode = "disable"
	}
}

func applyMetricsDefaults(m *MetricsConfig) {
	if m.Addr == "" {
		m.Addr = "127.0.0.1:9107"
	}
}

func applyLoggingDefaults(l *LoggingConfig) {
	if l.Level == "" {
		l.Level = "info"
	}
	if l.Format == "" {
		l.Format = "text"
	}
}

// validate checks structural settings. Credentials are deliberately not
// required here: commands that never touch the network (dry runs, sample
// generation) must work without them. Commands that build an API client
// call EbayConfig.HasCredentials first.
func validate(cfg *Config) error {
	var errs []error

	if cfg.Ebay.BatchSize < 1 {
		errs = append(errs, fmt.Errorf("ebay.batch_size must be >= 1"))
	}
	if cfg.Ebay.MaxRetries < 1 {
		errs = append(errs, fmt.Errorf("ebay.max_retries must be >= 1"))
	}
	if cfg.Ebay.RateLimitInterval < 0 {
		errs = append(errs, fmt.Errorf("ebay.rate_limit_interval must not be negative"))
	}
	if cfg.Database.Enabled() {
		if cfg.Database.Name == "" {
			errs = append(errs, fmt.Errorf("database.name is required when database.host is set"))
		}
		if cfg.Database.User == "" {
			errs = append(errs, fmt.Errorf("database.user is required when database.host is set"))
		}
	}
	if cfg.Notifications.Webhook.Enabled && cfg.Notifications.Webhook.URL == "" {
		errs = append(errs, fmt.Errorf("notifications.webhook.url is required when webhook is enabled"))
	}

	return errors.Join(errs...)
}
