// Package config loads the liq configuration: defaults, TOML files, a .env
// file and LIQ_* environment overrides, in that order.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/etnz/liquidity"
	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog"
)

// Config holds all configuration for liq.
type Config struct {
	Currency string        `toml:"currency"` // ISO code used to format amounts
	Planner  PlannerConfig `toml:"planner"`
	Server   ServerConfig  `toml:"server"`
	Logging  LoggingConfig `toml:"logging"`
}

// PlannerConfig tunes the simulations and the planner.
type PlannerConfig struct {
	Tolerance           float64 `toml:"tolerance"`
	ShortfallWindowDays int     `toml:"shortfall_window_days"`
	CoverageWindowDays  int     `toml:"coverage_window_days"`
	HorizonBusinessDays int     `toml:"horizon_business_days"`
	HorizonPadDays      int     `toml:"horizon_pad_days"`
	LookaheadPadDays    int     `toml:"lookahead_pad_days"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host           string   `toml:"host"`
	Port           int      `toml:"port"`
	AllowedOrigins []string `toml:"allowed_origins"`
}

// Addr returns host:port.
func (s ServerConfig) Addr() string { return fmt.Sprintf("%s:%d", s.Host, s.Port) }

// LoggingConfig holds logger configuration.
type LoggingConfig struct {
	Level  string `toml:"level"` // debug, info, warn, error
	Pretty bool   `toml:"pretty"`
}

// NewDefaultConfig returns the configuration used when nothing is set.
func NewDefaultConfig() *Config {
	opt := liquidity.DefaultOptions()
	return &Config{
		Currency: liquidity.DefaultCurrency,
		Planner: PlannerConfig{
			Tolerance:           opt.Tolerance.AsFloat(),
			ShortfallWindowDays: opt.ShortfallWindow,
			CoverageWindowDays:  opt.CoverageWindow,
			HorizonBusinessDays: opt.HorizonBusinessDays,
			HorizonPadDays:      opt.HorizonPadDays,
			LookaheadPadDays:    opt.LookaheadPadDays,
		},
		Server: ServerConfig{
			Host:           "localhost",
			Port:           5010,
			AllowedOrigins: []string{"http://localhost:3000", "http://localhost"},
		},
		Logging: LoggingConfig{Level: "info"},
	}
}

// Load reads the configuration. Missing files are skipped, later files
// override earlier ones. A .env file in the working directory is loaded
// when present, it never overrides variables already set.
func Load(paths ...string) (*Config, error) {
	config := NewDefaultConfig()
	for _, path := range paths {
		if path == "" {
			continue
		}
		data, err := os.ReadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	if err := applyEnvOverrides(config); err != nil {
		return nil, err
	}
	return config, nil
}

// applyEnvOverrides applies the LIQ_* environment variables.
func applyEnvOverrides(config *Config) error {
	if v := os.Getenv("LIQ_CURRENCY"); v != "" {
		config.Currency = strings.ToUpper(v)
	}
	if v := os.Getenv("LIQ_TOLERANCE"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid LIQ_TOLERANCE %q: %w", v, err)
		}
		config.Planner.Tolerance = f
	}
	for _, o := range []struct {
		env string
		dst *int
	}{
		{"LIQ_SHORTFALL_WINDOW_DAYS", &config.Planner.ShortfallWindowDays},
		{"LIQ_COVERAGE_WINDOW_DAYS", &config.Planner.CoverageWindowDays},
		{"LIQ_HORIZON_BUSINESS_DAYS", &config.Planner.HorizonBusinessDays},
		{"LIQ_HORIZON_PAD_DAYS", &config.Planner.HorizonPadDays},
		{"LIQ_LOOKAHEAD_PAD_DAYS", &config.Planner.LookaheadPadDays},
		{"LIQ_PORT", &config.Server.Port},
	} {
		v := os.Getenv(o.env)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", o.env, v, err)
		}
		*o.dst = n
	}
	if v := os.Getenv("LIQ_HOST"); v != "" {
		config.Server.Host = v
	}
	if v := os.Getenv("LIQ_ALLOWED_ORIGINS"); v != "" {
		config.Server.AllowedOrigins = strings.Split(v, ",")
	}
	if v := os.Getenv("LIQ_LOG_LEVEL"); v != "" {
		config.Logging.Level = strings.ToLower(v)
	}
	if v := os.Getenv("LIQ_LOG_PRETTY"); v != "" {
		pretty, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid LIQ_LOG_PRETTY %q: %w", v, err)
		}
		config.Logging.Pretty = pretty
	}
	return nil
}

// PlannerOptions maps the planner section onto liquidity.Options.
func (c *Config) PlannerOptions(log zerolog.Logger) liquidity.Options {
	return liquidity.Options{
		Tolerance:           liquidity.M(c.Planner.Tolerance),
		ShortfallWindow:     c.Planner.ShortfallWindowDays,
		CoverageWindow:      c.Planner.CoverageWindowDays,
		HorizonBusinessDays: c.Planner.HorizonBusinessDays,
		HorizonPadDays:      c.Planner.HorizonPadDays,
		LookaheadPadDays:    c.Planner.LookaheadPadDays,
		Logger:              log,
	}
}
