package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// IncludeList supports either:
//
//	include: "/path/to/file.yaml"
//
// or:
//
//	include:
//	  - "/path/to/file.yaml"
//	  - "/path/to/dir"
type IncludeList []string

func (l *IncludeList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case 0:
		// Not present.
		*l = nil
		return nil
	case yaml.ScalarNode:
		if value.Tag != "!!str" {
			return fmt.Errorf("include must be a string or list of strings")
		}
		*l = []string{value.Value}
		return nil
	case yaml.SequenceNode:
		out := make([]string, 0, len(value.Content))
		for _, item := range value.Content {
			if item.Kind != yaml.ScalarNode || item.Tag != "!!str" {
				return fmt.Errorf("include entries must be strings")
			}
			out = append(out, item.Value)
		}
		*l = out
		return nil
	default:
		return fmt.Errorf("include must be a string or list of strings")
	}
}

// RawConfig mirrors Config with every field optional so files can be layered.
type RawConfig struct {
	Include IncludeList `yaml:"include"`

	HeaderHeight     *int `yaml:"header_height"`
	HeaderBuffer     *int `yaml:"header_buffer"`
	MinVisibleWidth  *int `yaml:"min_visible_width"`
	MinVisibleHeight *int `yaml:"min_visible_height"`
	MinWidth         *int `yaml:"min_width"`
	MinHeight        *int `yaml:"min_height"`
	DefaultWidth     *int `yaml:"default_width"`
	DefaultHeight    *int `yaml:"default_height"`

	Placement   *RawPlacement   `yaml:"placement"`
	Viewport    *RawViewport    `yaml:"viewport"`
	Monitor     *RawMonitor     `yaml:"monitor"`
	LayoutStore *RawLayoutStore `yaml:"layout_store"`
	HTTP        *RawHTTP        `yaml:"http"`
	Hotkeys     *RawHotkeys     `yaml:"hotkeys"`

	LogLevel *string `yaml:"log_level"`
}

type RawPlacement struct {
	AnchorX  *int `yaml:"anchor_x"`
	Step     *int `yaml:"step"`
	Columns  *int `yaml:"columns"`
	Attempts *int `yaml:"attempts"`
	Margin   *int `yaml:"margin"`
}

type RawViewport struct {
	Width         *int  `yaml:"width"`
	Height        *int  `yaml:"height"`
	FollowDisplay *bool `yaml:"follow_display"`
}

type RawMonitor struct {
	IntervalMs *int `yaml:"interval_ms"`
	DebounceMs *int `yaml:"debounce_ms"`
}

type RawLayoutStore struct {
	Backend        *string `yaml:"backend"`
	Path           *string `yaml:"path"`
	RestoreOnStart *bool   `yaml:"restore_on_start"`
	SaveOnExit     *bool   `yaml:"save_on_exit"`
}

type RawHTTP struct {
	Listen *string `yaml:"listen"`
}

type RawHotkeys struct {
	Scan       *string `yaml:"scan"`
	SaveLayout *string `yaml:"save_layout"`
}

// pick returns over when set, otherwise base.
func pick[T any](base, over *T) *T {
	if over != nil {
		return over
	}
	return base
}

// merge layers other on top of r.
func (r RawConfig) merge(other RawConfig) RawConfig {
	out := r
	out.Include = nil

	out.HeaderHeight = pick(r.HeaderHeight, other.HeaderHeight)
	out.HeaderBuffer = pick(r.HeaderBuffer, other.HeaderBuffer)
	out.MinVisibleWidth = pick(r.MinVisibleWidth, other.MinVisibleWidth)
	out.MinVisibleHeight = pick(r.MinVisibleHeight, other.MinVisibleHeight)
	out.MinWidth = pick(r.MinWidth, other.MinWidth)
	out.MinHeight = pick(r.MinHeight, other.MinHeight)
	out.DefaultWidth = pick(r.DefaultWidth, other.DefaultWidth)
	out.DefaultHeight = pick(r.DefaultHeight, other.DefaultHeight)
	out.LogLevel = pick(r.LogLevel, other.LogLevel)

	if other.Placement != nil {
		base := RawPlacement{}
		if r.Placement != nil {
			base = *r.Placement
		}
		out.Placement = &RawPlacement{
			AnchorX:  pick(base.AnchorX, other.Placement.AnchorX),
			Step:     pick(base.Step, other.Placement.Step),
			Columns:  pick(base.Columns, other.Placement.Columns),
			Attempts: pick(base.Attempts, other.Placement.Attempts),
			Margin:   pick(base.Margin, other.Placement.Margin),
		}
	}
	if other.Viewport != nil {
		base := RawViewport{}
		if r.Viewport != nil {
			base = *r.Viewport
		}
		out.Viewport = &RawViewport{
			Width:         pick(base.Width, other.Viewport.Width),
			Height:        pick(base.Height, other.Viewport.Height),
			FollowDisplay: pick(base.FollowDisplay, other.Viewport.FollowDisplay),
		}
	}
	if other.Monitor != nil {
		base := RawMonitor{}
		if r.Monitor != nil {
			base = *r.Monitor
		}
		out.Monitor = &RawMonitor{
			IntervalMs: pick(base.IntervalMs, other.Monitor.IntervalMs),
			DebounceMs: pick(base.DebounceMs, other.Monitor.DebounceMs),
		}
	}
	if other.LayoutStore != nil {
		base := RawLayoutStore{}
		if r.LayoutStore != nil {
			base = *r.LayoutStore
		}
		out.LayoutStore = &RawLayoutStore{
			Backend:        pick(base.Backend, other.LayoutStore.Backend),
			Path:           pick(base.Path, other.LayoutStore.Path),
			RestoreOnStart: pick(base.RestoreOnStart, other.LayoutStore.RestoreOnStart),
			SaveOnExit:     pick(base.SaveOnExit, other.LayoutStore.SaveOnExit),
		}
	}
	if other.HTTP != nil {
		base := RawHTTP{}
		if r.HTTP != nil {
			base = *r.HTTP
		}
		out.HTTP = &RawHTTP{Listen: pick(base.Listen, other.HTTP.Listen)}
	}
	if other.Hotkeys != nil {
		base := RawHotkeys{}
		if r.Hotkeys != nil {
			base = *r.Hotkeys
		}
		out.Hotkeys = &RawHotkeys{
			Scan:       pick(base.Scan, other.Hotkeys.Scan),
			SaveLayout: pick(base.SaveLayout, other.Hotkeys.SaveLayout),
		}
	}
	return out
}
