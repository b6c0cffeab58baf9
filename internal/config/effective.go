package config

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

type ValidationError struct {
	Path   string
	Source Source
	Err    error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Source.Kind == SourceFile && e.Source.File != "" && e.Source.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %v", e.Source.File, e.Source.Line, e.Source.Column, e.Path, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func setInt(dst *int, src *int) {
	if src != nil {
		*dst = *src
	}
}

func setBool(dst *bool, src *bool) {
	if src != nil {
		*dst = *src
	}
}

func setString(dst *string, src *string, normalize func(string) string) {
	if src != nil {
		*dst = normalize(*src)
	}
}

func lowerTrim(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func trim(s string) string {
	return strings.TrimSpace(s)
}

// BuildEffectiveConfig applies raw on top of DefaultConfig.
func BuildEffectiveConfig(raw RawConfig) (*Config, error) {
	cfg := DefaultConfig()

	setInt(&cfg.HeaderHeight, raw.HeaderHeight)
	setInt(&cfg.HeaderBuffer, raw.HeaderBuffer)
	setInt(&cfg.MinVisibleWidth, raw.MinVisibleWidth)
	setInt(&cfg.MinVisibleHeight, raw.MinVisibleHeight)
	setInt(&cfg.MinWidth, raw.MinWidth)
	setInt(&cfg.MinHeight, raw.MinHeight)
	setInt(&cfg.DefaultWidth, raw.DefaultWidth)
	setInt(&cfg.DefaultHeight, raw.DefaultHeight)
	setString(&cfg.LogLevel, raw.LogLevel, lowerTrim)
	if cfg.LogLevel == "warn" {
		cfg.LogLevel = "warning"
	}

	if p := raw.Placement; p != nil {
		setInt(&cfg.Placement.AnchorX, p.AnchorX)
		setInt(&cfg.Placement.Step, p.Step)
		setInt(&cfg.Placement.Columns, p.Columns)
		setInt(&cfg.Placement.Attempts, p.Attempts)
		setInt(&cfg.Placement.Margin, p.Margin)
	}
	if v := raw.Viewport; v != nil {
		setInt(&cfg.Viewport.Width, v.Width)
		setInt(&cfg.Viewport.Height, v.Height)
		setBool(&cfg.Viewport.FollowDisplay, v.FollowDisplay)
	}
	if m := raw.Monitor; m != nil {
		setInt(&cfg.Monitor.IntervalMs, m.IntervalMs)
		setInt(&cfg.Monitor.DebounceMs, m.DebounceMs)
	}
	if ls := raw.LayoutStore; ls != nil {
		setString(&cfg.LayoutStore.Backend, ls.Backend, lowerTrim)
		setString(&cfg.LayoutStore.Path, ls.Path, trim)
		setBool(&cfg.LayoutStore.RestoreOnStart, ls.RestoreOnStart)
		setBool(&cfg.LayoutStore.SaveOnExit, ls.SaveOnExit)
	}
	if h := raw.HTTP; h != nil {
		setString(&cfg.HTTP.Listen, h.Listen, trim)
	}
	if hk := raw.Hotkeys; hk != nil {
		setString(&cfg.Hotkeys.Scan, hk.Scan, trim)
		setString(&cfg.Hotkeys.SaveLayout, hk.SaveLayout, trim)
	}

	return cfg, nil
}

// Marshal renders the effective configuration as YAML.
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}
