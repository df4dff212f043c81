package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/cleared-dev/ynabimport/internal/rates"
)

// DefaultPath is where the CLI looks for a config file when none is given.
const DefaultPath = "ynabimport.yaml"

// EnvPrefix prefixes every environment override, e.g. YNABIMPORT_RATE_API_KEY.
const EnvPrefix = "YNABIMPORT"

// Config represents the top-level ynabimport.yaml configuration.
type Config struct {
	Currency   CurrencyConfig   `yaml:"currency"`
	Conversion ConversionConfig `yaml:"conversion"`
	OTP        OTPConfig        `yaml:"otp"`
	Output     OutputConfig     `yaml:"output"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// CurrencyConfig names the budget currency and the one foreign currency that
// gets converted into it.
type CurrencyConfig struct {
	Target string `yaml:"target"`
	Base   string `yaml:"base"`
}

// ConversionConfig controls how foreign amounts are resolved.
type ConversionConfig struct {
	Policy       string        `yaml:"policy"`               // fixed, historical or none
	FixedRate    string        `yaml:"fixed_rate,omitempty"` // skips the rate request when set
	RateURL      string        `yaml:"rate_url"`
	RateQuery    string        `yaml:"rate_query"`
	HistoryURL   string        `yaml:"history_url,omitempty"`
	HistoryQuery string        `yaml:"history_query,omitempty"`
	APIKey       string        `yaml:"api_key,omitempty"`
	Timeout      time.Duration `yaml:"timeout"`
}

// OTPConfig tunes the OTP Bank parser.
type OTPConfig struct {
	Sentinel string `yaml:"sentinel"`
}

// OutputConfig controls where exports and the run log go.
type OutputConfig struct {
	Dir    string `yaml:"dir"`
	RunLog string `yaml:"run_log,omitempty"`
}

// LoggingConfig controls the slog handler.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// envOverrides are read from the environment after the file.
type envOverrides struct {
	RateAPIKey string `envconfig:"RATE_API_KEY"`
	LogLevel   string `envconfig:"LOG_LEVEL"`
	FixedRate  string `envconfig:"FIXED_RATE"`
}

// Load reads a ynabimport.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// LoadOrDefault is Load, except that a missing file yields Default.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// ApplyEnv overlays YNABIMPORT_* environment variables onto cfg.
func ApplyEnv(cfg *Config) error {
	var env envOverrides
	if err := envconfig.Process(EnvPrefix, &env); err != nil {
		return fmt.Errorf("reading environment: %w", err)
	}
	if env.RateAPIKey != "" {
		cfg.Conversion.APIKey = env.RateAPIKey
	}
	if env.LogLevel != "" {
		cfg.Logging.Level = env.LogLevel
	}
	if env.FixedRate != "" {
		cfg.Conversion.FixedRate = env.FixedRate
	}
	return nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config for converting EUR into a HUF budget at the
// current currconv rate. An API key still has to be supplied.
func Default() *Config {
	return &Config{
		Currency: CurrencyConfig{
			Target: "HUF",
			Base:   "EUR",
		},
		Conversion: ConversionConfig{
			Policy:    string(rates.PolicyFixed),
			RateURL:   "https://free.currconv.com/api/v7/convert?q=EUR_HUF&compact=ultra",
			RateQuery: ".EUR_HUF",
			Timeout:   10 * time.Second,
		},
		OTP: OTPConfig{
			Sentinel: "Könyvelt tételek",
		},
		Output: OutputConfig{
			Dir: ".",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// RateSettings converts the conversion section into rates.Settings.
func (c *Config) RateSettings() (rates.Settings, error) {
	policy, err := rates.ParsePolicy(c.Conversion.Policy)
	if err != nil {
		return rates.Settings{}, err
	}

	s := rates.Settings{
		Policy:       policy,
		Base:         strings.ToUpper(c.Currency.Base),
		Target:       strings.ToUpper(c.Currency.Target),
		RateURL:      c.Conversion.RateURL,
		RateQuery:    c.Conversion.RateQuery,
		HistoryURL:   c.Conversion.HistoryURL,
		HistoryQuery: c.Conversion.HistoryQuery,
	}
	if c.Conversion.FixedRate != "" {
		rate, err := decimal.NewFromString(c.Conversion.FixedRate)
		if err != nil {
			return rates.Settings{}, fmt.Errorf("parsing fixed_rate %q: %w", c.Conversion.FixedRate, err)
		}
		if !rate.IsPositive() {
			return rates.Settings{}, fmt.Errorf("fixed_rate must be positive, got %s", rate)
		}
		s.FixedRate = decimal.NewNullDecimal(rate)
	}
	return s, nil
}
