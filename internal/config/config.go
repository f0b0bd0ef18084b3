package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
	"github.com/shopspring/decimal"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	AppEnv           string
	Cashier          string
	TaxRate          decimal.Decimal
	LogLevel         string
	LogFormat        string
	MetricsNamespace string
}

// Load reads configuration from environment variables and optional .env files.
func Load() (*Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", func(s string) string { return s }), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	taxRate, err := parseRate(k.String("POS_TAX_RATE"), "0.00")
	if err != nil {
		return nil, fmt.Errorf("POS_TAX_RATE: %w", err)
	}

	cfg := &Config{
		AppEnv:           valueOrDefault(k.String("APP_ENV"), "development"),
		Cashier:          strings.TrimSpace(valueOrDefault(k.String("POS_CASHIER"), "cashier")),
		TaxRate:          taxRate,
		LogLevel:         valueOrDefault(k.String("LOG_LEVEL"), "info"),
		LogFormat:        valueOrDefault(k.String("LOG_FORMAT"), "json"),
		MetricsNamespace: valueOrDefault(k.String("METRICS_NAMESPACE"), "pos"),
	}
	return cfg, nil
}

// IsDevelopment reports whether the app runs in the development environment.
func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(strings.TrimSpace(c.AppEnv), "development")
}

func valueOrDefault(value, fallback string) string {
	if strings.TrimSpace(value) != "" {
		return value
	}
	return fallback
}

func parseRate(value, fallback string) (decimal.Decimal, error) {
	base := strings.TrimSpace(value)
	if base == "" {
		base = fallback
	}
	rate, err := decimal.NewFromString(base)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("parse %q: %w", base, err)
	}
	if rate.IsNegative() {
		return decimal.Decimal{}, fmt.Errorf("must be >= 0, got %s", base)
	}
	return rate, nil
}

// MustLoad behaves like Load but panics on error. Useful for tests and command entrypoints.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// LoadForTests loads configuration with overrides applied to the process
// environment, then puts the previous environment back. An empty override
// value unsets the variable for the duration of the load.
func LoadForTests(overrides map[string]string) (*Config, error) {
	type saved struct {
		value string
		set   bool
	}
	previous := make(map[string]saved, len(overrides))
	for key, value := range overrides {
		old, ok := os.LookupEnv(key)
		previous[key] = saved{value: old, set: ok}
		if err := applyEnv(key, value, value != ""); err != nil {
			return nil, err
		}
	}

	cfg, loadErr := Load()

	var restoreErr error
	for key, p := range previous {
		if err := applyEnv(key, p.value, p.set); err != nil {
			restoreErr = errors.Join(restoreErr, fmt.Errorf("restore %s: %w", key, err))
		}
	}
	if loadErr != nil {
		return nil, loadErr
	}
	return cfg, restoreErr
}

func applyEnv(key, value string, set bool) error {
	if !set {
		return os.Unsetenv(key)
	}
	return os.Setenv(key, value)
}
