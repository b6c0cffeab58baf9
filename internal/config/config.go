package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/1broseidon/canvaslist/internal/geometry"
)

// Config is the effective daemon configuration.
type Config struct {
	HeaderHeight     int `yaml:"header_height"`
	HeaderBuffer     int `yaml:"header_buffer"`
	MinVisibleWidth  int `yaml:"min_visible_width"`
	MinVisibleHeight int `yaml:"min_visible_height"`
	MinWidth         int `yaml:"min_width"`
	MinHeight        int `yaml:"min_height"`
	DefaultWidth     int `yaml:"default_width"`
	DefaultHeight    int `yaml:"default_height"`

	Placement   PlacementConfig   `yaml:"placement"`
	Viewport    ViewportConfig    `yaml:"viewport"`
	Monitor     MonitorConfig     `yaml:"monitor"`
	LayoutStore LayoutStoreConfig `yaml:"layout_store"`
	HTTP        HTTPConfig        `yaml:"http"`
	Hotkeys     HotkeysConfig     `yaml:"hotkeys"`

	LogLevel string `yaml:"log_level"`
}

// PlacementConfig tunes the cascade used for windows created without a position.
type PlacementConfig struct {
	AnchorX  int `yaml:"anchor_x"`
	Step     int `yaml:"step"`
	Columns  int `yaml:"columns"`
	Attempts int `yaml:"attempts"`
	Margin   int `yaml:"margin"`
}

// ViewportConfig is the starting viewport. FollowDisplay tracks the X root
// window instead once the daemon is connected.
type ViewportConfig struct {
	Width         int  `yaml:"width"`
	Height        int  `yaml:"height"`
	FollowDisplay bool `yaml:"follow_display"`
}

type MonitorConfig struct {
	IntervalMs int `yaml:"interval_ms"`
	DebounceMs int `yaml:"debounce_ms"`
}

// LayoutStoreConfig selects where named layouts are persisted. An empty path
// uses the runtime state directory.
type LayoutStoreConfig struct {
	Backend        string `yaml:"backend"`
	Path           string `yaml:"path"`
	RestoreOnStart bool   `yaml:"restore_on_start"`
	SaveOnExit     bool   `yaml:"save_on_exit"`
}

// HTTPConfig configures the HTTP API. An empty listen address disables it.
type HTTPConfig struct {
	Listen string `yaml:"listen"`
}

// HotkeysConfig binds global X11 key sequences such as "Mod4-Shift-r".
// Empty sequences are not registered.
type HotkeysConfig struct {
	Scan       string `yaml:"scan"`
	SaveLayout string `yaml:"save_layout"`
}

// Any reports whether at least one hotkey is configured.
func (h HotkeysConfig) Any() bool {
	return h.Scan != "" || h.SaveLayout != ""
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		HeaderHeight:     geometry.DefaultHeaderHeight,
		HeaderBuffer:     geometry.DefaultHeaderBuffer,
		MinVisibleWidth:  geometry.DefaultMinVisibleWidth,
		MinVisibleHeight: geometry.DefaultMinVisibleHeight,
		MinWidth:         geometry.DefaultMinWidth,
		MinHeight:        geometry.DefaultMinHeight,
		DefaultWidth:     geometry.DefaultWindowWidth,
		DefaultHeight:    geometry.DefaultWindowHeight,
		Placement: PlacementConfig{
			AnchorX:  geometry.DefaultAnchorX,
			Step:     geometry.DefaultCascadeStep,
			Columns:  geometry.DefaultCascadeCols,
			Attempts: geometry.DefaultCascadeTries,
			Margin:   geometry.DefaultPlaceMargin,
		},
		Viewport: ViewportConfig{
			Width:  1920,
			Height: 1080,
		},
		Monitor: MonitorConfig{
			IntervalMs: 5000,
			DebounceMs: 250,
		},
		LayoutStore: LayoutStoreConfig{
			Backend:        "json",
			RestoreOnStart: true,
			SaveOnExit:     true,
		},
		HTTP: HTTPConfig{
			Listen: "127.0.0.1:7878",
		},
		LogLevel: "info",
	}
}

// Validate checks the effective configuration.
func (c *Config) Validate() error {
	nonNegative := []struct {
		path  string
		value int
	}{
		{"header_height", c.HeaderHeight},
		{"header_buffer", c.HeaderBuffer},
		{"min_visible_width", c.MinVisibleWidth},
		{"min_visible_height", c.MinVisibleHeight},
		{"placement.step", c.Placement.Step},
		{"placement.margin", c.Placement.Margin},
	}
	for _, f := range nonNegative {
		if f.value < 0 {
			return &ValidationError{Path: f.path, Err: fmt.Errorf("%s must be >= 0", f.path)}
		}
	}

	positive := []struct {
		path  string
		value int
	}{
		{"min_width", c.MinWidth},
		{"min_height", c.MinHeight},
		{"placement.columns", c.Placement.Columns},
		{"placement.attempts", c.Placement.Attempts},
		{"viewport.width", c.Viewport.Width},
		{"viewport.height", c.Viewport.Height},
		{"monitor.interval_ms", c.Monitor.IntervalMs},
	}
	for _, f := range positive {
		if f.value <= 0 {
			return &ValidationError{Path: f.path, Err: fmt.Errorf("%s must be > 0", f.path)}
		}
	}

	if c.DefaultWidth < c.MinWidth {
		return &ValidationError{Path: "default_width", Err: fmt.Errorf("default_width must be >= min_width (%d)", c.MinWidth)}
	}
	if c.DefaultHeight < c.MinHeight {
		return &ValidationError{Path: "default_height", Err: fmt.Errorf("default_height must be >= min_height (%d)", c.MinHeight)}
	}
	if c.Monitor.DebounceMs < 0 {
		return &ValidationError{Path: "monitor.debounce_ms", Err: fmt.Errorf("debounce_ms must be >= 0")}
	}

	switch c.LayoutStore.Backend {
	case "json", "sqlite":
	default:
		return &ValidationError{Path: "layout_store.backend", Err: fmt.Errorf("backend must be one of: json, sqlite")}
	}

	switch c.LogLevel {
	case "debug", "info", "warning", "error":
	default:
		return &ValidationError{Path: "log_level", Err: fmt.Errorf("log_level must be one of: debug, info, warning, error")}
	}
	return nil
}

// Constraints returns the geometry constraints the registry enforces.
func (c *Config) Constraints() geometry.Constraints {
	return geometry.Constraints{
		HeaderHeight:     c.HeaderHeight,
		HeaderBuffer:     c.HeaderBuffer,
		MinVisibleWidth:  c.MinVisibleWidth,
		MinVisibleHeight: c.MinVisibleHeight,
		MinWidth:         c.MinWidth,
		MinHeight:        c.MinHeight,
	}
}

// Planner returns the placement planner. The anchor sits at the header height.
func (c *Config) Planner() geometry.Planner {
	return geometry.Planner{
		AnchorX:     c.Placement.AnchorX,
		AnchorY:     c.HeaderHeight,
		Step:        c.Placement.Step,
		Columns:     c.Placement.Columns,
		Attempts:    c.Placement.Attempts,
		Margin:      c.Placement.Margin,
		DefaultSize: geometry.Size{Width: c.DefaultWidth, Height: c.DefaultHeight},
	}
}

// InitialViewport returns the configured starting viewport.
func (c *Config) InitialViewport() geometry.Viewport {
	return geometry.Viewport{Width: c.Viewport.Width, Height: c.Viewport.Height}
}

func (c *Config) MonitorInterval() time.Duration {
	return time.Duration(c.Monitor.IntervalMs) * time.Millisecond
}

func (c *Config) MonitorDebounce() time.Duration {
	return time.Duration(c.Monitor.DebounceMs) * time.Millisecond
}

// SlogLevel maps log_level onto a slog level.
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// LayoutStorePath returns the configured store path with ~ expanded, or
// fallback when none is set.
func (c *Config) LayoutStorePath(fallback string) string {
	path := strings.TrimSpace(c.LayoutStore.Path)
	if path == "" {
		return fallback
	}
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}
