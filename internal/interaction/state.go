package interaction

import (
	"fmt"

	"github.com/1broseidon/canvaslist/internal/geometry"
)

// Phase represents the current pointer session
type Phase int

const (
	// PhaseInactive means no window is being manipulated
	PhaseInactive Phase = iota
	// PhaseDragging means a window header was grabbed
	PhaseDragging
	// PhaseResizing means a resize handle was grabbed
	PhaseResizing
)

// String returns the string representation of the phase
func (p Phase) String() string {
	switch p {
	case PhaseInactive:
		return "inactive"
	case PhaseDragging:
		return "dragging"
	case PhaseResizing:
		return "resizing"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Phase) UnmarshalText(b []byte) error {
	switch string(b) {
	case "inactive":
		*p = PhaseInactive
	case "dragging":
		*p = PhaseDragging
	case "resizing":
		*p = PhaseResizing
	default:
		return fmt.Errorf("unknown phase %q", b)
	}
	return nil
}

// State holds the current session
type State struct {
	Phase        Phase          `json:"phase"`
	WindowID     int            `json:"window_id"`
	Offset       geometry.Point `json:"offset"`        // Pointer minus window origin, captured at drag start
	StartPointer geometry.Point `json:"start_pointer"` // Pointer at resize start
	StartSize    geometry.Size  `json:"start_size"`    // Window size at resize start
}

// Active reports whether a drag or resize is in progress.
func (s State) Active() bool {
	return s.Phase != PhaseInactive
}

// Reset resets the state to inactive
func (s *State) Reset() {
	s.Phase = PhaseInactive
	s.WindowID = 0
	s.Offset = geometry.Point{}
	s.StartPointer = geometry.Point{}
	s.StartSize = geometry.Size{}
}
