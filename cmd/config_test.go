package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/etnz/taxfolio/taxlot"
	"github.com/google/go-cmp/cmp"
)

// clearEnv unsets the configuration overrides for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{EnvMethod, EnvJurisdiction, EnvBrokers, EnvRiskFreeRate} {
		t.Setenv(key, "")
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	name := filepath.Join(t.TempDir(), "taxfolio.toml")
	if err := os.WriteFile(name, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	return name
}

func TestLoadConfig_Missing(t *testing.T) {
	clearEnv(t)
	got, err := LoadConfig(filepath.Join(t.TempDir(), "none.toml"))
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if diff := cmp.Diff(NewDefaultConfig(), got); diff != "" {
		t.Errorf("LoadConfig() mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadConfig(t *testing.T) {
	clearEnv(t)
	name := writeConfig(t, `
method = "average"
jurisdiction = "de"
cash_tracking_brokers = ["comdirect"]
risk_free_rate = 0.03

[fx]
USDEUR = 0.92
`)
	got, err := LoadConfig(name)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	want := &Config{
		BaseCurrency:        "EUR",
		Method:              "average",
		Jurisdiction:        "de",
		CashTrackingBrokers: []string{"comdirect"},
		RiskFreeRate:        0.03,
		FX:                  map[string]float64{"USDEUR": 0.92},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("LoadConfig() mismatch (-want +got):\n%s", diff)
	}

	strategy, err := got.Strategy("")
	if err != nil || strategy.Method() != taxlot.WeightedAverage {
		t.Errorf("Strategy(\"\") = %v, %v, want the weighted average", strategy, err)
	}
	if strategy, _ := got.Strategy("fifo"); strategy.Method() != taxlot.FIFO {
		t.Errorf("Strategy(fifo) = %v, want FIFO", strategy.Method())
	}
	if rate, err := got.FXRates().Rate("USD", "EUR"); err != nil || rate.String() != "0.92" {
		t.Errorf("FXRates().Rate(USD, EUR) = %v, %v, want 0.92", rate, err)
	}
}

func TestLoadConfig_Env(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvMethod, "fifo")
	t.Setenv(EnvJurisdiction, "DE")
	t.Setenv(EnvBrokers, "a,b")
	t.Setenv(EnvRiskFreeRate, "0.01")

	got, err := LoadConfig(writeConfig(t, `method = "average"`))
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if got.Method != "fifo" || got.Jurisdiction != "DE" || got.RiskFreeRate != 0.01 {
		t.Errorf("LoadConfig() = %+v, want the environment to win", got)
	}
	if diff := cmp.Diff([]string{"a", "b"}, got.CashTrackingBrokers); diff != "" {
		t.Errorf("CashTrackingBrokers mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadConfig_Invalid(t *testing.T) {
	testCases := []struct {
		name    string
		content string
		want    string
	}{
		{"unknown currency", `base_currency = "ABC"`, "unknown base currency"},
		{"unsupported currency", `base_currency = "USD"`, "not supported"},
		{"unknown method", `method = "lifo"`, "unknown lot matching method"},
		{"unknown jurisdiction", `jurisdiction = "FR"`, "FR"},
		{"bad pair", "[fx]\nUSD = 0.9", "invalid currency pair"},
		{"negative rate", "[fx]\nUSDEUR = -1", "must be positive"},
		{"not toml", `method = `, "failed to parse"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			clearEnv(t)
			_, err := LoadConfig(writeConfig(t, tc.content))
			if err == nil {
				t.Fatalf("LoadConfig() expected an error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Errorf("LoadConfig() error = %q, want it to contain %q", err, tc.want)
			}
		})
	}
}
