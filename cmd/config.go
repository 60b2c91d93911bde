package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/etnz/taxfolio"
	"github.com/etnz/taxfolio/tax"
	"github.com/etnz/taxfolio/taxlot"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/shopspring/decimal"
)

// Config holds the portfolio settings read from the TOML config file.
type Config struct {
	BaseCurrency        string             `toml:"base_currency"`
	Method              string             `toml:"method"`
	Jurisdiction        string             `toml:"jurisdiction"`
	CashTrackingBrokers []string           `toml:"cash_tracking_brokers"`
	RiskFreeRate        float64            `toml:"risk_free_rate"`
	FX                  map[string]float64 `toml:"fx"` // pair like "USDEUR" to rate
}

// NewDefaultConfig returns the settings used without config file.
func NewDefaultConfig() *Config {
	return &Config{
		BaseCurrency:        taxfolio.BaseCurrency,
		Method:              string(taxlot.FIFO),
		Jurisdiction:        "AT",
		CashTrackingBrokers: slices.Clone(taxfolio.DefaultCashTrackingBrokers),
		RiskFreeRate:        0.02,
	}
}

// LoadConfig reads path over the defaults, then applies the environment
// overrides. A missing file is not an error.
func LoadConfig(path string) (*Config, error) {
	config := NewDefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		default:
			if err := toml.Unmarshal(data, config); err != nil {
				return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
			}
		}
	}
	applyEnvOverrides(config)
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return config, nil
}

func applyEnvOverrides(config *Config) {
	if v := os.Getenv(EnvMethod); v != "" {
		config.Method = v
	}
	if v := os.Getenv(EnvJurisdiction); v != "" {
		config.Jurisdiction = v
	}
	if v := os.Getenv(EnvBrokers); v != "" {
		config.CashTrackingBrokers = strings.Split(v, ",")
	}
	if v := os.Getenv(EnvRiskFreeRate); v != "" {
		if rate, err := strconv.ParseFloat(v, 64); err == nil {
			config.RiskFreeRate = rate
		}
	}
}

// Validate fails fast on settings no engine can run with.
func (c *Config) Validate() error {
	if !taxfolio.ValidCurrency(c.BaseCurrency) {
		return fmt.Errorf("unknown base currency %q", c.BaseCurrency)
	}
	if !strings.EqualFold(c.BaseCurrency, taxfolio.BaseCurrency) {
		return fmt.Errorf("base currency %q is not supported, only %s is", c.BaseCurrency, taxfolio.BaseCurrency)
	}
	if _, err := taxlot.ParseMethod(c.Method); err != nil {
		return err
	}
	if _, err := tax.Lookup(c.Jurisdiction); err != nil {
		return err
	}
	for pair, rate := range c.FX {
		if len(pair) != 6 || !taxfolio.ValidCurrency(pair[:3]) || !taxfolio.ValidCurrency(pair[3:]) {
			return fmt.Errorf("invalid currency pair %q in [fx]", pair)
		}
		if rate <= 0 {
			return fmt.Errorf("exchange rate %s must be positive, got %v", pair, rate)
		}
	}
	return nil
}

// FXRates returns the [fx] table as a converter.
func (c *Config) FXRates() taxfolio.FXRates {
	rates := make(taxfolio.FXRates, len(c.FX))
	for pair, rate := range c.FX {
		rates[strings.ToUpper(pair)] = decimal.NewFromFloat(rate)
	}
	return rates
}

// Strategy returns the configured lot matching strategy, method overriding
// the configuration when not empty.
func (c *Config) Strategy(method string) (taxlot.Strategy, error) {
	if method == "" {
		method = c.Method
	}
	return taxlot.NewStrategy(method)
}
