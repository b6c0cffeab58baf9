package layoutstore

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/1broseidon/canvaslist/internal/geometry"
	"github.com/1broseidon/canvaslist/internal/window"
)

// CurrentVersion is the layout format written by this package.
const CurrentVersion = 1

// Layout is a persisted window arrangement.
type Layout struct {
	Version int            `json:"version"`
	Windows []WindowLayout `json:"windows"`
}

// WindowLayout is one persisted window. Nil geometry fields mean "use the
// default"; every value is validated by the registry on hydrate.
type WindowLayout struct {
	ID        int         `json:"id"`
	Kind      window.Kind `json:"kind"`
	Title     string      `json:"title,omitempty"`
	X         *int        `json:"x,omitempty"`
	Y         *int        `json:"y,omitempty"`
	Width     *int        `json:"width,omitempty"`
	Height    *int        `json:"height,omitempty"`
	ZIndex    *int        `json:"z_index,omitempty"`
	Minimized bool        `json:"minimized,omitempty"`
}

// legacyEntry is the pre-versioned per-window record, stored as a bare
// object keyed by window id.
type legacyEntry struct {
	X      *int `json:"x"`
	Y      *int `json:"y"`
	Width  *int `json:"width"`
	Height *int `json:"height"`
	ZIndex *int `json:"zIndex"`
}

// Decode parses a layout in the current format or the legacy bare-map
// format. Legacy entries are treated as list windows.
func Decode(data []byte) (*Layout, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return &Layout{Version: CurrentVersion}, nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("failed to parse layout: %w", err)
	}
	_, hasVersion := fields["version"]
	_, hasWindows := fields["windows"]
	if hasVersion || hasWindows {
		var l Layout
		if err := json.Unmarshal(data, &l); err != nil {
			return nil, fmt.Errorf("failed to parse layout: %w", err)
		}
		if l.Version == 0 {
			l.Version = CurrentVersion
		}
		return &l, nil
	}

	return decodeLegacy(fields)
}

func decodeLegacy(raw map[string]json.RawMessage) (*Layout, error) {
	l := &Layout{Version: CurrentVersion}
	for key, msg := range raw {
		id, err := strconv.Atoi(key)
		if err != nil {
			return nil, fmt.Errorf("legacy layout: invalid window id %q", key)
		}
		var e legacyEntry
		if err := json.Unmarshal(msg, &e); err != nil {
			return nil, fmt.Errorf("legacy layout: window %d: %w", id, err)
		}
		l.Windows = append(l.Windows, WindowLayout{
			ID:     id,
			Kind:   window.KindList,
			X:      e.X,
			Y:      e.Y,
			Width:  e.Width,
			Height: e.Height,
			ZIndex: e.ZIndex,
		})
	}
	sort.Slice(l.Windows, func(i, j int) bool { return l.Windows[i].ID < l.Windows[j].ID })
	return l, nil
}

// Encode writes the layout in the current format.
func Encode(l *Layout) ([]byte, error) {
	if l == nil {
		return nil, errors.New("layout is nil")
	}
	out := *l
	out.Version = CurrentVersion
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode layout: %w", err)
	}
	return append(data, '\n'), nil
}

// Capture builds a layout from every window in the registry, in z order.
func Capture(reg *window.Registry) *Layout {
	recs := reg.ListAll()
	l := &Layout{Version: CurrentVersion, Windows: make([]WindowLayout, 0, len(recs))}
	for _, rec := range recs {
		x, y := rec.Position.X, rec.Position.Y
		w, h := rec.Size.Width, rec.Size.Height
		z := rec.ZOrder
		l.Windows = append(l.Windows, WindowLayout{
			ID:        rec.ID,
			Kind:      rec.Kind,
			Title:     rec.Title,
			X:         &x,
			Y:         &y,
			Width:     &w,
			Height:    &h,
			ZIndex:    &z,
			Minimized: rec.Minimized,
		})
	}
	return l
}

// HydrateResult reports what Hydrate did.
type HydrateResult struct {
	Created  int   `json:"created"`
	Replaced int   `json:"replaced"`
	Skipped  []int `json:"skipped,omitempty"`
}

// Hydrate creates a window for every layout entry. Every entry goes through
// Registry.Create, so persisted geometry is validated before first use.
// When replace is false, ids already registered are skipped; otherwise the
// existing window is destroyed first.
func Hydrate(reg *window.Registry, l *Layout, replace bool) (HydrateResult, error) {
	var res HydrateResult
	if l == nil {
		return res, nil
	}

	defaults := reg.Planner()
	windows := append([]WindowLayout(nil), l.Windows...)
	// Entries without a z-index go last so they land on top of the restored stack.
	sort.SliceStable(windows, func(i, j int) bool {
		zi, zj := windows[i].ZIndex, windows[j].ZIndex
		switch {
		case zi == nil:
			return false
		case zj == nil:
			return true
		default:
			return *zi < *zj
		}
	})

	for _, wl := range windows {
		if _, exists := reg.Get(wl.ID); exists {
			if !replace {
				res.Skipped = append(res.Skipped, wl.ID)
				continue
			}
			reg.Destroy(wl.ID)
			res.Replaced++
		}

		if _, err := reg.Create(wl.ID, wl.Kind, wl.options(defaults)); err != nil {
			return res, err
		}
		if wl.Minimized {
			reg.Minimize(wl.ID)
		}
		res.Created++
	}
	return res, nil
}

// options fills a missing coordinate from the planner anchor and a missing
// dimension from the planner's default size. An entry with no position at
// all is planned by the registry.
func (wl WindowLayout) options(p geometry.Planner) window.Options {
	opts := window.Options{Title: wl.Title, ZOrder: wl.ZIndex}
	if wl.X != nil || wl.Y != nil {
		anchor := p.Anchor()
		opts.Position = &geometry.Point{X: deref(wl.X, anchor.X), Y: deref(wl.Y, anchor.Y)}
	}
	if wl.Width != nil || wl.Height != nil {
		opts.Size = &geometry.Size{
			Width:  deref(wl.Width, p.DefaultSize.Width),
			Height: deref(wl.Height, p.DefaultSize.Height),
		}
	}
	return opts
}

func deref(p *int, def int) int {
	if p == nil {
		return def
	}
	return *p
}
