package mcp

import (
	"time"

	"github.com/1broseidon/canvaslist/internal/daemon"
	"github.com/1broseidon/canvaslist/internal/geometry"
	"github.com/1broseidon/canvaslist/internal/window"
)

type EmptyInput struct{}

type StatusOutput struct {
	Status daemon.Status `json:"status"`
}

// WindowInfo is the tool-facing form of a window record. Kind is carried as
// its text form so the inferred output schema matches the encoded value.
type WindowInfo struct {
	ID        int            `json:"id"`
	Kind      string         `json:"kind" jsonschema:"list or item"`
	Title     string         `json:"title,omitempty"`
	Position  geometry.Point `json:"position"`
	Size      geometry.Size  `json:"size"`
	ZOrder    int            `json:"z_order"`
	Minimized bool           `json:"minimized"`
	CreatedAt time.Time      `json:"created_at"`
}

func toWindowInfo(rec window.Record) WindowInfo {
	return WindowInfo{
		ID:        rec.ID,
		Kind:      rec.Kind.String(),
		Title:     rec.Title,
		Position:  rec.Position,
		Size:      rec.Size,
		ZOrder:    rec.ZOrder,
		Minimized: rec.Minimized,
		CreatedAt: rec.CreatedAt,
	}
}

type ListWindowsOutput struct {
	Windows []WindowInfo `json:"windows"`
}

type CreateWindowInput struct {
	ID     int    `json:"id" jsonschema:"Window id, unique among open windows"`
	Kind   string `json:"kind,omitempty" jsonschema:"Window kind: list (default) or item"`
	Title  string `json:"title,omitempty" jsonschema:"Window title"`
	X      *int   `json:"x,omitempty" jsonschema:"Left edge in pixels; omit to auto-place"`
	Y      *int   `json:"y,omitempty" jsonschema:"Top edge in pixels; omit to auto-place"`
	Width  *int   `json:"width,omitempty" jsonschema:"Width in pixels (default from config)"`
	Height *int   `json:"height,omitempty" jsonschema:"Height in pixels (default from config)"`
}

type WindowOutput struct {
	Window WindowInfo `json:"window"`
}

type MoveWindowInput struct {
	ID int `json:"id" jsonschema:"Window id"`
	X  int `json:"x" jsonschema:"Requested left edge in pixels"`
	Y  int `json:"y" jsonschema:"Requested top edge in pixels"`
}

type ResizeWindowInput struct {
	ID     int `json:"id" jsonschema:"Window id"`
	Width  int `json:"width" jsonschema:"Requested width in pixels"`
	Height int `json:"height" jsonschema:"Requested height in pixels"`
}

type WindowActionInput struct {
	ID     int    `json:"id" jsonschema:"Window id"`
	Action string `json:"action" jsonschema:"One of front, minimize, restore, destroy"`
}

type WindowActionOutput struct {
	Action    string      `json:"action"`
	Window    *WindowInfo `json:"window,omitempty"`
	Destroyed bool        `json:"destroyed,omitempty"`
}

type ViewInput struct {
	Key string `json:"key" jsonschema:"View key: root, list:<id> or item:<list>/<item>"`
}

type ViewOutput struct {
	Key     string `json:"key"`
	Windows int    `json:"windows,omitempty"`
	Applied int    `json:"applied,omitempty"`
	Found   bool   `json:"found"`
}

type ListViewsOutput struct {
	Views []daemon.ViewInfo `json:"views"`
}

type SetViewportInput struct {
	Width  int `json:"width" jsonschema:"Viewport width in pixels"`
	Height int `json:"height" jsonschema:"Viewport height in pixels"`
}

type SetViewportOutput struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

type ScanOutput struct {
	Checked   int `json:"checked"`
	Skipped   int `json:"skipped"`
	Corrected int `json:"corrected"`
}

type LayoutInput struct {
	Name    string `json:"name" jsonschema:"Layout name, without path separators"`
	Replace bool   `json:"replace,omitempty" jsonschema:"load_layout only: recreate windows whose ids already exist"`
}

type SaveLayoutOutput struct {
	Name    string `json:"name"`
	Windows int    `json:"windows"`
}

type LoadLayoutOutput struct {
	Created  int   `json:"created"`
	Replaced int   `json:"replaced"`
	Skipped  []int `json:"skipped,omitempty"`
}

type ListLayoutsOutput struct {
	Layouts []string `json:"layouts"`
}
