package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/chazu/hyperweave/pkg/logging"
)

func TestDefaultsAreValid(t *testing.T) {
	if err := Defaults().Validate(); err != nil {
		t.Fatalf("Defaults().Validate() error: %v", err)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if d := cmp.Diff(Defaults(), cfg); d != "" {
		t.Errorf("config differs from defaults (-want +got):\n%s", d)
	}
}

func TestLoadMergesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hyperweave.yaml")
	data := `
curves:
  capacity: 5
  derivative_scale: 0.5
patches:
  div_points: 40
logging:
  level: DEBUG
  source: true
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	want := Defaults()
	want.Curves.Capacity = 5
	want.Curves.DerivativeScale = 0.5
	want.Patches.DivPoints = 40
	want.Logging.Level = "debug"
	want.Logging.Source = true
	if d := cmp.Diff(want, cfg); d != "" {
		t.Errorf("merged config mismatch (-want +got):\n%s", d)
	}
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("curves: [not, a, map"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv(EnvCurveCapacity, "7")
	t.Setenv(EnvPatchCapacity, "3")
	t.Setenv(EnvEvalTimeoutMs, "250")
	t.Setenv(logging.EnvLevel, "error")
	t.Setenv(logging.EnvSource, "1")
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Curves.Capacity != 7 || cfg.Patches.Capacity != 3 {
		t.Errorf("capacities = %d, %d, want 7, 3", cfg.Curves.Capacity, cfg.Patches.Capacity)
	}
	if got := cfg.Engine.EvalTimeout(); got != 250*time.Millisecond {
		t.Errorf("EvalTimeout() = %v, want 250ms", got)
	}
	if cfg.Logging.Level != "error" || !cfg.Logging.Source {
		t.Errorf("logging overrides not applied: %#v", cfg.Logging)
	}
}

func TestEnvOverrideInvalidValueIgnored(t *testing.T) {
	t.Setenv(EnvCurveCapacity, "many")
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Curves.Capacity != Defaults().Curves.Capacity {
		t.Errorf("Curves.Capacity = %d, want default", cfg.Curves.Capacity)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"zero curve capacity", func(c *Config) { c.Curves.Capacity = 0 }, "curves.capacity"},
		{"single sample", func(c *Config) { c.Curves.Samples = 1 }, "curves.samples"},
		{"negative patch capacity", func(c *Config) { c.Patches.Capacity = -1 }, "patches.capacity"},
		{"zero load alpha", func(c *Config) { c.Patches.LoadAlpha = 0 }, "patches.load_alpha"},
		{"order too high", func(c *Config) { c.Curves.MaxOrder = 3 }, "curves.max_order"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.field) {
				t.Errorf("error %q does not name %s", err, tt.field)
			}
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "hyperweave.yaml")
	cfg := Defaults()
	cfg.Patches.IsolineScale = 0.25
	cfg.Logging.File = "/var/log/hw.log"
	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if d := cmp.Diff(cfg, got); d != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", d)
	}
}

func TestLogOptions(t *testing.T) {
	l := LoggingConfig{Level: "warn", Format: "json", Source: true, File: "x.log"}
	o := l.LogOptions()
	if o.Level != "warn" || o.Format != "json" || !o.AddSource || o.File != "x.log" {
		t.Errorf("LogOptions() = %+v", o)
	}
}
