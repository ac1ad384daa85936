package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/etnz/liquidity"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	c, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	opt := c.PlannerOptions(liquidity.DefaultOptions().Logger)
	want := liquidity.DefaultOptions()
	if !opt.Tolerance.Equal(want.Tolerance) {
		t.Errorf("Tolerance = %v, want %v", opt.Tolerance, want.Tolerance)
	}
	if opt.ShortfallWindow != 3 || opt.CoverageWindow != 1 || opt.HorizonBusinessDays != 5 ||
		opt.HorizonPadDays != 3 || opt.LookaheadPadDays != 5 {
		t.Errorf("PlannerOptions() = %+v, want the defaults", opt)
	}
	if c.Currency != "BRL" {
		t.Errorf("Currency = %q, want BRL", c.Currency)
	}
	if got := c.Server.Addr(); got != "localhost:5010" {
		t.Errorf("Addr() = %q, want localhost:5010", got)
	}
}

func TestLoadFilesInOrder(t *testing.T) {
	base := writeFile(t, "base.toml", `
currency = "usd"

[planner]
tolerance = 50.5
shortfall_window_days = 2

[server]
port = 8080
`)
	local := writeFile(t, "local.toml", `
[planner]
shortfall_window_days = 4

[logging]
level = "debug"
pretty = true
`)
	c, err := Load(base, "", filepath.Join(t.TempDir(), "missing.toml"), local)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if c.Planner.Tolerance != 50.5 {
		t.Errorf("Planner.Tolerance = %v, want 50.5", c.Planner.Tolerance)
	}
	if c.Planner.ShortfallWindowDays != 4 {
		t.Errorf("Planner.ShortfallWindowDays = %d, want 4", c.Planner.ShortfallWindowDays)
	}
	if c.Planner.CoverageWindowDays != 1 {
		t.Errorf("Planner.CoverageWindowDays = %d, want the default 1", c.Planner.CoverageWindowDays)
	}
	if c.Server.Port != 8080 || c.Server.Host != "localhost" {
		t.Errorf("Server = %+v, want localhost:8080", c.Server)
	}
	if c.Logging.Level != "debug" || !c.Logging.Pretty {
		t.Errorf("Logging = %+v, want debug pretty", c.Logging)
	}
}

func TestLoadInvalidFile(t *testing.T) {
	path := writeFile(t, "bad.toml", "[planner\ntolerance = ")
	if _, err := Load(path); err == nil {
		t.Error("Load(bad.toml) error = nil, want a parse error")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("LIQ_TOLERANCE", "10")
	t.Setenv("LIQ_COVERAGE_WINDOW_DAYS", "2")
	t.Setenv("LIQ_PORT", "9000")
	t.Setenv("LIQ_ALLOWED_ORIGINS", "http://a,http://b")
	t.Setenv("LIQ_LOG_LEVEL", "WARN")
	t.Setenv("LIQ_CURRENCY", "eur")

	path := writeFile(t, "base.toml", "[planner]\ntolerance = 50.0\n")
	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if c.Planner.Tolerance != 10 {
		t.Errorf("Planner.Tolerance = %v, want the env value 10", c.Planner.Tolerance)
	}
	if c.Planner.CoverageWindowDays != 2 {
		t.Errorf("Planner.CoverageWindowDays = %d, want 2", c.Planner.CoverageWindowDays)
	}
	if c.Server.Port != 9000 {
		t.Errorf("Server.Port = %d, want 9000", c.Server.Port)
	}
	if strings.Join(c.Server.AllowedOrigins, " ") != "http://a http://b" {
		t.Errorf("Server.AllowedOrigins = %v", c.Server.AllowedOrigins)
	}
	if c.Logging.Level != "warn" || c.Currency != "EUR" {
		t.Errorf("Logging.Level = %q Currency = %q, want warn EUR", c.Logging.Level, c.Currency)
	}
}

func TestEnvOverridesInvalid(t *testing.T) {
	tests := []struct {
		env   string
		value string
	}{
		{"LIQ_HORIZON_PAD_DAYS", "three"},
		{"LIQ_TOLERANCE", "a lot"},
		{"LIQ_LOG_PRETTY", "sometimes"},
	}
	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			t.Setenv(tt.env, tt.value)
			if _, err := Load(); err == nil || !strings.Contains(err.Error(), tt.env) {
				t.Errorf("Load() error = %v, want an invalid %s error", err, tt.env)
			}
		})
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(LoggingConfig{Level: "warn"}, &buf)
	log.Info().Msg("hidden")
	log.Warn().Str("component", "planner").Msg("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("NewLogger(warn) logged an info message: %s", out)
	}
	if !strings.Contains(out, `"component":"planner"`) || !strings.Contains(out, `"message":"shown"`) {
		t.Errorf("NewLogger(warn) output = %s, want the warn message as JSON", out)
	}
}
