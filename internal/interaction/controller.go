package interaction

import (
	"errors"
	"fmt"
	"sync"

	"github.com/1broseidon/canvaslist/internal/geometry"
	"github.com/1broseidon/canvaslist/internal/window"
)

var (
	// ErrSessionActive is returned when a drag or resize is already running.
	ErrSessionActive = errors.New("another pointer session is active")
	// ErrUnknownWindow is returned when the target window does not exist.
	ErrUnknownWindow = errors.New("unknown window")
)

// Registry is the subset of window.Registry the controller drives.
type Registry interface {
	Get(id int) (window.Record, bool)
	Move(id, x, y int) (geometry.Point, bool)
	Resize(id, width, height int) (geometry.Size, bool)
	BringToFront(id int) (int, bool)
	SetInteracting(id int, active bool) bool
}

// Controller turns pointer events into registry mutations. One drag or
// resize session exists at a time across all windows.
type Controller struct {
	mu    sync.Mutex
	reg   Registry
	state State
}

// NewController creates an inactive controller.
func NewController(reg Registry) *Controller {
	return &Controller{reg: reg}
}

// State returns a copy of the current session.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// BeginDrag starts dragging id by its header. The pointer offset from the
// window origin is captured once and held for the whole drag.
func (c *Controller) BeginDrag(id int, pointer geometry.Point) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.Active() {
		return fmt.Errorf("drag window %d: %w", id, ErrSessionActive)
	}
	rec, ok := c.reg.Get(id)
	if !ok || rec.Minimized {
		return fmt.Errorf("drag window %d: %w", id, ErrUnknownWindow)
	}

	c.state = State{
		Phase:    PhaseDragging,
		WindowID: id,
		Offset:   geometry.Point{X: pointer.X - rec.Position.X, Y: pointer.Y - rec.Position.Y},
	}
	c.reg.SetInteracting(id, true)
	return nil
}

// BeginResize starts resizing id from its bottom-right handle.
func (c *Controller) BeginResize(id int, pointer geometry.Point) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.Active() {
		return fmt.Errorf("resize window %d: %w", id, ErrSessionActive)
	}
	rec, ok := c.reg.Get(id)
	if !ok || rec.Minimized {
		return fmt.Errorf("resize window %d: %w", id, ErrUnknownWindow)
	}

	c.state = State{
		Phase:        PhaseResizing,
		WindowID:     id,
		StartPointer: pointer,
		StartSize:    rec.Size,
	}
	c.reg.SetInteracting(id, true)
	return nil
}

// PointerMove applies the pointer position to the active session and returns
// the window's stored rectangle. It reports false when no session is active
// or the window vanished or was minimized mid-session, in which case the
// session ends.
func (c *Controller) PointerMove(pointer geometry.Point) (geometry.Rect, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.state.Active() {
		return geometry.Rect{}, false
	}
	id := c.state.WindowID
	if rec, ok := c.reg.Get(id); !ok || rec.Minimized {
		c.endLocked()
		return geometry.Rect{}, false
	}
	switch c.state.Phase {
	case PhaseDragging:
		pos, ok := c.reg.Move(id, pointer.X-c.state.Offset.X, pointer.Y-c.state.Offset.Y)
		if !ok {
			c.state.Reset()
			return geometry.Rect{}, false
		}
		rec, _ := c.reg.Get(id)
		return geometry.NewRect(pos, rec.Size), true

	case PhaseResizing:
		dx := pointer.X - c.state.StartPointer.X
		dy := pointer.Y - c.state.StartPointer.Y
		size, ok := c.reg.Resize(id, c.state.StartSize.Width+dx, c.state.StartSize.Height+dy)
		if !ok {
			c.state.Reset()
			return geometry.Rect{}, false
		}
		rec, _ := c.reg.Get(id)
		return geometry.NewRect(rec.Position, size), true

	default:
		return geometry.Rect{}, false
	}
}

// PointerUp ends any session regardless of which window the pointer is
// over, fronts the window and clears its interaction flag. It reports false
// when nothing was active or the window is gone or minimized; such a window
// is not fronted.
func (c *Controller) PointerUp() (int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.state.Active() {
		return 0, false
	}
	id := c.state.WindowID
	c.endLocked()
	if rec, ok := c.reg.Get(id); !ok || rec.Minimized {
		return id, false
	}
	c.reg.BringToFront(id)
	return id, true
}

// Cancel abandons the session without fronting the window. The geometry
// already applied by moves is kept.
func (c *Controller) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.state.Active() {
		return
	}
	c.endLocked()
}

// CancelWindow cancels the session only if it targets id. It reports
// whether a session was ended.
func (c *Controller) CancelWindow(id int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.state.Active() || c.state.WindowID != id {
		return false
	}
	c.endLocked()
	return true
}

func (c *Controller) endLocked() {
	c.reg.SetInteracting(c.state.WindowID, false)
	c.state.Reset()
}
