// Package config loads editor tuning from an optional YAML file with
// environment overrides.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"backing/core"
	"backing/spatial"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

// Config is the full editor configuration.
type Config struct {
	Snap      SnapConfig                 `yaml:"snap"`
	History   HistoryConfig              `yaml:"history"`
	Alignment AlignmentConfig            `yaml:"alignment"`
	Viewport  ViewportConfig             `yaml:"viewport"`
	Spacing   map[string]spatial.Spacing `yaml:"spacing"`
	LogLevel  string                     `yaml:"log_level"`
}

// SnapConfig controls drag snapping, in document inches.
type SnapConfig struct {
	Threshold float64 `yaml:"threshold"`
	GridSize  float64 `yaml:"grid_size"`
}

// HistoryConfig controls the undo timeline.
type HistoryConfig struct {
	MaxSize       int  `yaml:"max_size"`
	GroupWindowMS int  `yaml:"group_window_ms"`
	Grouping      bool `yaml:"grouping"`
	DebounceMS    int  `yaml:"debounce_ms"`
}

// GroupWindow returns the coalescing window as a duration.
func (h HistoryConfig) GroupWindow() time.Duration {
	return time.Duration(h.GroupWindowMS) * time.Millisecond
}

// Debounce returns the commit debounce as a duration.
func (h HistoryConfig) Debounce() time.Duration {
	return time.Duration(h.DebounceMS) * time.Millisecond
}

// AlignmentConfig controls how many guides are surfaced while dragging.
type AlignmentConfig struct {
	TopN        int     `yaml:"top_n"`
	MaxDistance float64 `yaml:"max_distance"`
}

// ViewportConfig holds the initial view.
type ViewportConfig struct {
	Zoom float64 `yaml:"zoom"`
}

// IsZero reports whether c is the zero Config, as left by an unset option.
func (c Config) IsZero() bool {
	return c.Snap == SnapConfig{} && c.History == HistoryConfig{} &&
		c.Alignment == AlignmentConfig{} && c.Viewport == ViewportConfig{} &&
		len(c.Spacing) == 0 && c.LogLevel == ""
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Snap:      SnapConfig{Threshold: 2, GridSize: 1},
		History:   HistoryConfig{MaxSize: 50, GroupWindowMS: 2000, Grouping: true},
		Alignment: AlignmentConfig{TopN: 3, MaxDistance: 6},
		Viewport:  ViewportConfig{Zoom: 1},
		LogLevel:  "info",
	}
}

// Load reads path (if non-empty) over the defaults, then applies BACKING_*
// environment overrides and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Snap.Threshold = getenvFloat("BACKING_SNAP_THRESHOLD", c.Snap.Threshold)
	c.Snap.GridSize = getenvFloat("BACKING_GRID_SIZE", c.Snap.GridSize)
	c.History.MaxSize = getenvInt("BACKING_HISTORY_MAX", c.History.MaxSize)
	c.History.GroupWindowMS = getenvInt("BACKING_GROUP_WINDOW_MS", c.History.GroupWindowMS)
	c.History.Grouping = getenvBool("BACKING_GROUPING", c.History.Grouping)
	c.History.DebounceMS = getenvInt("BACKING_DEBOUNCE_MS", c.History.DebounceMS)
	c.Alignment.TopN = getenvInt("BACKING_ALIGN_TOP_N", c.Alignment.TopN)
	c.Viewport.Zoom = getenvFloat("BACKING_ZOOM", c.Viewport.Zoom)
	c.LogLevel = getenv("BACKING_LOG_LEVEL", c.LogLevel)
}

// Validate rejects values the editor cannot work with.
func (c Config) Validate() error {
	var errs []error
	if c.Snap.Threshold < 0 {
		errs = append(errs, fmt.Errorf("%w: snap.threshold must not be negative", ErrInvalid))
	}
	if c.Snap.GridSize < 0 {
		errs = append(errs, fmt.Errorf("%w: snap.grid_size must not be negative", ErrInvalid))
	}
	if c.History.MaxSize < 0 || c.History.GroupWindowMS < 0 || c.History.DebounceMS < 0 {
		errs = append(errs, fmt.Errorf("%w: history values must not be negative", ErrInvalid))
	}
	if c.Alignment.TopN < 0 {
		errs = append(errs, fmt.Errorf("%w: alignment.top_n must not be negative", ErrInvalid))
	}
	if c.Viewport.Zoom <= 0 {
		errs = append(errs, fmt.Errorf("%w: viewport.zoom must be positive", ErrInvalid))
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	for name, s := range c.Spacing {
		if _, err := core.ParseCategory(name); err != nil {
			errs = append(errs, fmt.Errorf("%w: spacing: %v", ErrInvalid, err))
		}
		if s.Horizontal <= 0 || s.Vertical <= 0 {
			errs = append(errs, fmt.Errorf("%w: spacing.%s must be positive", ErrInvalid, name))
		}
	}
	return errors.Join(errs...)
}

// SpacingTable returns the built-in spacing table with configured overrides.
func (c Config) SpacingTable() spatial.SpacingTable {
	overrides := make(spatial.SpacingTable, len(c.Spacing))
	for name, s := range c.Spacing {
		if cat, err := core.ParseCategory(name); err == nil {
			overrides[cat] = s
		}
	}
	return spatial.DefaultSpacingTable().With(overrides)
}

// ParseLevel maps a level name to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("%w: unknown log level %q", ErrInvalid, s)
}

func getenv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getenvFloat(key string, fallback float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getenvBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}
