package interaction

import (
	"fmt"

	"github.com/1broseidon/canvaslist/internal/geometry"
)

// PointerAction is the kind of pointer event.
type PointerAction string

const (
	ActionDown PointerAction = "down"
	ActionMove PointerAction = "move"
	ActionUp   PointerAction = "up"
)

// Target is the part of a window a pointer-down landed on.
type Target string

const (
	TargetHeader Target = "header"
	TargetResize Target = "resize"
)

// PointerEvent is a pointer event as delivered by a transport. WindowID and
// Target are only read for down events.
type PointerEvent struct {
	Action   PointerAction `json:"action"`
	Target   Target        `json:"target,omitempty"`
	WindowID int           `json:"window_id,omitempty"`
	X        int           `json:"x"`
	Y        int           `json:"y"`
}

// Outcome reports what an event did.
type Outcome struct {
	Phase    Phase         `json:"phase"`
	WindowID int           `json:"window_id,omitempty"`
	Rect     geometry.Rect `json:"rect"`
	Applied  bool          `json:"applied"`
}

// HandleEvent dispatches a pointer event to the matching session call.
func (c *Controller) HandleEvent(ev PointerEvent) (Outcome, error) {
	pointer := geometry.Point{X: ev.X, Y: ev.Y}

	switch ev.Action {
	case ActionDown:
		var err error
		switch ev.Target {
		case TargetHeader, "":
			err = c.BeginDrag(ev.WindowID, pointer)
		case TargetResize:
			err = c.BeginResize(ev.WindowID, pointer)
		default:
			return Outcome{}, fmt.Errorf("unknown pointer target %q", ev.Target)
		}
		if err != nil {
			return Outcome{}, err
		}
		return c.outcome(ev.WindowID, true), nil

	case ActionMove:
		id := c.State().WindowID
		rect, ok := c.PointerMove(pointer)
		out := c.outcome(id, ok)
		if ok {
			out.Rect = rect
		}
		return out, nil

	case ActionUp:
		id, ok := c.PointerUp()
		return c.outcome(id, ok), nil

	default:
		return Outcome{}, fmt.Errorf("unknown pointer action %q", ev.Action)
	}
}

func (c *Controller) outcome(id int, applied bool) Outcome {
	st := c.State()
	out := Outcome{
		Phase:    st.Phase,
		WindowID: id,
		Applied:  applied,
	}
	if rec, ok := c.reg.Get(id); ok {
		out.Rect = rec.Rect()
	}
	return out
}
