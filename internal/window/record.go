package window

import (
	"errors"
	"time"

	"github.com/1broseidon/canvaslist/internal/geometry"
)

// ErrDuplicateID is returned by Create when the id is already registered.
var ErrDuplicateID = errors.New("window id already registered")

// Kind distinguishes list windows from zoomed item windows.
type Kind int

const (
	KindList Kind = iota
	KindItem
)

// String returns the string representation of the kind
func (k Kind) String() string {
	switch k {
	case KindList:
		return "list"
	case KindItem:
		return "item"
	default:
		return "unknown"
	}
}

// ParseKind maps "list"/"item" back to a Kind. Empty input is a list.
func ParseKind(s string) (Kind, bool) {
	switch s {
	case "", "list":
		return KindList, true
	case "item":
		return KindItem, true
	default:
		return KindList, false
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(b []byte) error {
	parsed, ok := ParseKind(string(b))
	if !ok {
		return errors.New("unknown window kind: " + string(b))
	}
	*k = parsed
	return nil
}

// Record is the registry's view of one open window.
type Record struct {
	ID        int            `json:"id"`
	Kind      Kind           `json:"kind"`
	Title     string         `json:"title,omitempty"`
	Position  geometry.Point `json:"position"`
	Size      geometry.Size  `json:"size"`
	ZOrder    int            `json:"z_order"`
	Minimized bool           `json:"minimized"`
	CreatedAt time.Time      `json:"created_at"`
}

// Rect returns the window rectangle.
func (r Record) Rect() geometry.Rect {
	return geometry.NewRect(r.Position, r.Size)
}

// Options tune Create. Nil fields fall back to planned placement, the default
// size and the next z-order.
type Options struct {
	Title    string
	Position *geometry.Point
	Size     *geometry.Size
	ZOrder   *int
}

// EventType names a committed registry mutation.
type EventType string

const (
	EventCreated   EventType = "created"
	EventMoved     EventType = "moved"
	EventResized   EventType = "resized"
	EventFronted   EventType = "fronted"
	EventMinimized EventType = "minimized"
	EventRestored  EventType = "restored"
	EventDestroyed EventType = "destroyed"
)

// Event carries the record state after a mutation. For destroyed events the
// record is the last state before removal.
type Event struct {
	Type   EventType `json:"type"`
	Record Record    `json:"record"`
}
