// Package config loads the YAML configuration: defaults, then the file,
// then environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/chazu/hyperweave/pkg/logging"
)

// CurveConfig sizes the composite curve set and its images.
type CurveConfig struct {
	Capacity        int     `yaml:"capacity"`
	Samples         int     `yaml:"samples"`
	MaxOrder        int     `yaml:"max_order"`
	DerivativeScale float64 `yaml:"derivative_scale"`
	LoadAlpha       float64 `yaml:"load_alpha"` // alpha given to arcs read from a file
}

// PatchConfig sizes the composite patch set and its images.
type PatchConfig struct {
	Capacity         int     `yaml:"capacity"`
	DivPoints        int     `yaml:"div_points"`
	IsolineSamples   int     `yaml:"isoline_samples"`
	IsolineScale     float64 `yaml:"isoline_scale"`
	LoadAlpha        float64 `yaml:"load_alpha"`
	LoadOrder        int     `yaml:"load_order"`
	SelectionSamples int     `yaml:"selection_samples"`
}

type EngineConfig struct {
	TimeoutMs int `yaml:"timeout_ms"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Source bool   `yaml:"source"`
	File   string `yaml:"file"`
}

// Config is the whole configuration file.
//
// config_version: bump when the structure changes incompatibly.
type Config struct {
	ConfigVersion int           `yaml:"config_version"`
	Curves        CurveConfig   `yaml:"curves"`
	Patches       PatchConfig   `yaml:"patches"`
	Engine        EngineConfig  `yaml:"engine"`
	Logging       LoggingConfig `yaml:"logging"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		ConfigVersion: 1,
		Curves: CurveConfig{
			Capacity:        20,
			Samples:         200,
			MaxOrder:        2,
			DerivativeScale: 0.3,
			LoadAlpha:       2,
		},
		Patches: PatchConfig{
			Capacity:         15,
			DivPoints:        20,
			IsolineSamples:   100,
			IsolineScale:     0.4,
			LoadAlpha:        5,
			LoadOrder:        1,
			SelectionSamples: 100,
		},
		Engine:  EngineConfig{TimeoutMs: 5000},
		Logging: LoggingConfig{Level: "info", Format: "console"},
	}
}

// Env var names used as overrides.
const (
	EnvCurveCapacity = "HYPERWEAVE_CURVE_CAPACITY"
	EnvPatchCapacity = "HYPERWEAVE_PATCH_CAPACITY"
	EnvEvalTimeoutMs = "HYPERWEAVE_EVAL_TIMEOUT_MS"
)

// Load reads path (if non-empty and present), merges it over the defaults,
// applies environment overrides and validates the result. A missing file is
// not an error; a malformed one is.
func Load(path string) (Config, error) {
	cfg := Defaults()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			var fileCfg Config
			if err := yaml.Unmarshal(data, &fileCfg); err != nil {
				return cfg, fmt.Errorf("config: parse %s: %w", path, err)
			}
			mergeInto(&cfg, &fileCfg)
		case !errors.Is(err, os.ErrNotExist):
			return cfg, fmt.Errorf("config: read %s: %w", path, err)
		}
	}
	applyEnvOverrides(&cfg)
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Save writes cfg as YAML, creating parent directories.
func Save(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Validate rejects non-positive capacities, densities and alphas.
func (c Config) Validate() error {
	var errs []error
	positive := func(name string, v float64) {
		if v <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %v", name, v))
		}
	}
	positive("curves.capacity", float64(c.Curves.Capacity))
	positive("curves.samples", float64(c.Curves.Samples-1))
	positive("curves.load_alpha", c.Curves.LoadAlpha)
	positive("patches.capacity", float64(c.Patches.Capacity))
	positive("patches.div_points", float64(c.Patches.DivPoints-1))
	positive("patches.isoline_samples", float64(c.Patches.IsolineSamples-1))
	positive("patches.selection_samples", float64(c.Patches.SelectionSamples-1))
	positive("patches.load_alpha", c.Patches.LoadAlpha)
	positive("engine.timeout_ms", float64(c.Engine.TimeoutMs))
	if c.Curves.MaxOrder < 0 || c.Curves.MaxOrder > 2 {
		errs = append(errs, fmt.Errorf("curves.max_order must be in [0, 2], got %d", c.Curves.MaxOrder))
	}
	if c.Patches.LoadOrder < 0 || c.Patches.LoadOrder > 2 {
		errs = append(errs, fmt.Errorf("patches.load_order must be in [0, 2], got %d", c.Patches.LoadOrder))
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}

// EvalTimeout returns the script evaluation timeout.
func (e EngineConfig) EvalTimeout() time.Duration {
	if e.TimeoutMs <= 0 {
		return time.Duration(Defaults().Engine.TimeoutMs) * time.Millisecond
	}
	return time.Duration(e.TimeoutMs) * time.Millisecond
}

// LogOptions converts the logging section for logging.Init.
func (l LoggingConfig) LogOptions() logging.Options {
	return logging.Options{Level: l.Level, Format: l.Format, AddSource: l.Source, File: l.File}
}

func mergeInto(dst *Config, src *Config) {
	if src.ConfigVersion != 0 {
		dst.ConfigVersion = src.ConfigVersion
	}
	mergeInt(&dst.Curves.Capacity, src.Curves.Capacity)
	mergeInt(&dst.Curves.Samples, src.Curves.Samples)
	mergeInt(&dst.Curves.MaxOrder, src.Curves.MaxOrder)
	mergeFloat(&dst.Curves.DerivativeScale, src.Curves.DerivativeScale)
	mergeFloat(&dst.Curves.LoadAlpha, src.Curves.LoadAlpha)

	mergeInt(&dst.Patches.Capacity, src.Patches.Capacity)
	mergeInt(&dst.Patches.DivPoints, src.Patches.DivPoints)
	mergeInt(&dst.Patches.IsolineSamples, src.Patches.IsolineSamples)
	mergeFloat(&dst.Patches.IsolineScale, src.Patches.IsolineScale)
	mergeFloat(&dst.Patches.LoadAlpha, src.Patches.LoadAlpha)
	mergeInt(&dst.Patches.LoadOrder, src.Patches.LoadOrder)
	mergeInt(&dst.Patches.SelectionSamples, src.Patches.SelectionSamples)

	mergeInt(&dst.Engine.TimeoutMs, src.Engine.TimeoutMs)

	if strings.TrimSpace(src.Logging.Level) != "" {
		dst.Logging.Level = strings.ToLower(strings.TrimSpace(src.Logging.Level))
	}
	if strings.TrimSpace(src.Logging.Format) != "" {
		dst.Logging.Format = strings.ToLower(strings.TrimSpace(src.Logging.Format))
	}
	// booleans: copy directly from the file so the preference persists
	dst.Logging.Source = src.Logging.Source
	if strings.TrimSpace(src.Logging.File) != "" {
		dst.Logging.File = strings.TrimSpace(src.Logging.File)
	}
}

func mergeInt(dst *int, v int) {
	if v != 0 {
		*dst = v
	}
}

func mergeFloat(dst *float64, v float64) {
	if v != 0 {
		*dst = v
	}
}

func applyEnvOverrides(cfg *Config) {
	envInt(EnvCurveCapacity, &cfg.Curves.Capacity)
	envInt(EnvPatchCapacity, &cfg.Patches.Capacity)
	envInt(EnvEvalTimeoutMs, &cfg.Engine.TimeoutMs)

	if v := strings.TrimSpace(os.Getenv(logging.EnvLevel)); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(logging.EnvFormat)); v != "" {
		cfg.Logging.Format = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(logging.EnvSource)); v != "" {
		lv := strings.ToLower(v)
		cfg.Logging.Source = lv == "1" || lv == "true" || lv == "on" || lv == "yes"
	}
	if v := strings.TrimSpace(os.Getenv(logging.EnvFile)); v != "" {
		cfg.Logging.File = v
	}
}

func envInt(key string, dst *int) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}
