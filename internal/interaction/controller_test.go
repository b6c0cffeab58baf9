package interaction

import (
	"errors"
	"testing"

	"github.com/1broseidon/canvaslist/internal/geometry"
	"github.com/1broseidon/canvaslist/internal/window"
)

func setup(t *testing.T, ids ...int) (*window.Registry, *Controller) {
	t.Helper()
	reg := window.NewRegistry(window.Config{Viewport: geometry.Viewport{Width: 1920, Height: 1080}})
	for _, id := range ids {
		if _, err := reg.Create(id, window.KindList, window.Options{}); err != nil {
			t.Fatalf("create %d: %v", id, err)
		}
	}
	return reg, NewController(reg)
}

func TestDrag_KeepsGrabOffset(t *testing.T) {
	reg, c := setup(t, 1)

	// Window sits at (100,150); grab its header 40px in and 10px down.
	if err := c.BeginDrag(1, geometry.Point{X: 140, Y: 160}); err != nil {
		t.Fatalf("begin drag: %v", err)
	}
	if !reg.Interacting(1) {
		t.Fatalf("dragged window should be flagged as interacting")
	}

	rect, ok := c.PointerMove(geometry.Point{X: 540, Y: 460})
	if !ok {
		t.Fatalf("move not applied")
	}
	if rect.Origin() != (geometry.Point{X: 500, Y: 450}) {
		t.Fatalf("expected origin (500,450), got %v", rect.Origin())
	}

	// Dragging above the header clamps instead of following the pointer.
	rect, _ = c.PointerMove(geometry.Point{X: 45, Y: 20})
	if rect.Origin() != (geometry.Point{X: 5, Y: 150}) {
		t.Fatalf("expected clamped origin (5,150), got %v", rect.Origin())
	}
}

func TestPointerUp_FrontsAndClears(t *testing.T) {
	reg, c := setup(t, 1, 2)
	before, _ := reg.Get(2)

	c.BeginDrag(1, geometry.Point{X: 110, Y: 160})
	c.PointerMove(geometry.Point{X: 300, Y: 300})
	id, ok := c.PointerUp()
	if !ok || id != 1 {
		t.Fatalf("expected session for window 1 to end, got %d (%v)", id, ok)
	}

	rec, _ := reg.Get(1)
	if rec.ZOrder <= before.ZOrder {
		t.Fatalf("pointer up should front window 1: z %d vs %d", rec.ZOrder, before.ZOrder)
	}
	if reg.Interacting(1) {
		t.Fatalf("interaction flag should clear on pointer up")
	}
	if c.State().Active() {
		t.Fatalf("session should be inactive")
	}
	if _, ok := c.PointerUp(); ok {
		t.Fatalf("second pointer up should report nothing active")
	}
}

func TestResize_FromFixedOrigin(t *testing.T) {
	reg, c := setup(t, 1)
	start, _ := reg.Get(1)

	if err := c.BeginResize(1, geometry.Point{X: 450, Y: 550}); err != nil {
		t.Fatalf("begin resize: %v", err)
	}
	rect, ok := c.PointerMove(geometry.Point{X: 500, Y: 600})
	if !ok {
		t.Fatalf("resize not applied")
	}
	if rect != (geometry.Rect{X: 100, Y: 150, Width: 400, Height: 450}) {
		t.Fatalf("unexpected rect %v", rect)
	}

	rect, _ = c.PointerMove(geometry.Point{X: 0, Y: 0})
	if rect.Dimensions() != (geometry.Size{Width: 300, Height: 200}) {
		t.Fatalf("expected floor 300x200, got %v", rect.Dimensions())
	}
	if rect.Origin() != start.Position {
		t.Fatalf("resize moved the origin to %v", rect.Origin())
	}
}

func TestSingleGlobalSession(t *testing.T) {
	_, c := setup(t, 1, 2)

	if err := c.BeginDrag(1, geometry.Point{X: 110, Y: 160}); err != nil {
		t.Fatalf("begin drag: %v", err)
	}
	if err := c.BeginResize(2, geometry.Point{X: 0, Y: 0}); !errors.Is(err, ErrSessionActive) {
		t.Fatalf("expected ErrSessionActive, got %v", err)
	}
	if err := c.BeginDrag(2, geometry.Point{X: 0, Y: 0}); !errors.Is(err, ErrSessionActive) {
		t.Fatalf("expected ErrSessionActive, got %v", err)
	}
}

func TestBegin_UnknownOrMinimized(t *testing.T) {
	reg, c := setup(t, 1)
	reg.Minimize(1)

	if err := c.BeginDrag(1, geometry.Point{}); !errors.Is(err, ErrUnknownWindow) {
		t.Fatalf("expected ErrUnknownWindow for minimized window, got %v", err)
	}
	if err := c.BeginResize(9, geometry.Point{}); !errors.Is(err, ErrUnknownWindow) {
		t.Fatalf("expected ErrUnknownWindow, got %v", err)
	}
}

func TestWindowDestroyedMidDrag(t *testing.T) {
	reg, c := setup(t, 1)
	c.BeginDrag(1, geometry.Point{X: 110, Y: 160})
	reg.Destroy(1)

	if _, ok := c.PointerMove(geometry.Point{X: 300, Y: 300}); ok {
		t.Fatalf("move on destroyed window should not apply")
	}
	if c.State().Active() {
		t.Fatalf("session should end when its window disappears")
	}
}

func TestCancel_DoesNotFront(t *testing.T) {
	reg, c := setup(t, 1, 2)
	before, _ := reg.Get(1)

	c.BeginDrag(1, geometry.Point{X: 110, Y: 160})
	c.Cancel()

	after, _ := reg.Get(1)
	if after.ZOrder != before.ZOrder {
		t.Fatalf("cancel should not change z-order")
	}
	if reg.Interacting(1) || c.State().Active() {
		t.Fatalf("cancel should clear the session")
	}
}

func TestHandleEvent(t *testing.T) {
	_, c := setup(t, 1)

	steps := []struct {
		ev        PointerEvent
		wantPhase Phase
		wantRect  geometry.Rect
	}{
		{PointerEvent{Action: ActionDown, Target: TargetHeader, WindowID: 1, X: 110, Y: 160}, PhaseDragging, geometry.Rect{X: 100, Y: 150, Width: 350, Height: 400}},
		{PointerEvent{Action: ActionMove, X: 210, Y: 260}, PhaseDragging, geometry.Rect{X: 200, Y: 250, Width: 350, Height: 400}},
		{PointerEvent{Action: ActionUp}, PhaseInactive, geometry.Rect{X: 200, Y: 250, Width: 350, Height: 400}},
		{PointerEvent{Action: ActionDown, Target: TargetResize, WindowID: 1, X: 550, Y: 650}, PhaseResizing, geometry.Rect{X: 200, Y: 250, Width: 350, Height: 400}},
		{PointerEvent{Action: ActionMove, X: 600, Y: 700}, PhaseResizing, geometry.Rect{X: 200, Y: 250, Width: 400, Height: 450}},
		{PointerEvent{Action: ActionUp}, PhaseInactive, geometry.Rect{X: 200, Y: 250, Width: 400, Height: 450}},
	}
	for i, step := range steps {
		out, err := c.HandleEvent(step.ev)
		if err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		if out.Phase != step.wantPhase {
			t.Fatalf("step %d: expected phase %s, got %s", i, step.wantPhase, out.Phase)
		}
		if out.Rect != step.wantRect {
			t.Fatalf("step %d: expected rect %v, got %v", i, step.wantRect, out.Rect)
		}
	}

	if _, err := c.HandleEvent(PointerEvent{Action: "hover"}); err == nil {
		t.Fatalf("expected error for unknown action")
	}
}

func TestDrag_EndsWhenWindowMinimized(t *testing.T) {
	reg, c := setup(t, 1)
	start, _ := reg.Get(1)

	if err := c.BeginDrag(1, geometry.Point{X: 110, Y: 160}); err != nil {
		t.Fatalf("begin drag: %v", err)
	}
	reg.Minimize(1)

	if _, ok := c.PointerMove(geometry.Point{X: 700, Y: 700}); ok {
		t.Fatalf("move should not apply to a minimized window")
	}
	if c.State().Active() {
		t.Fatalf("session should end once the window is minimized")
	}
	if _, ok := c.PointerUp(); ok {
		t.Fatalf("pointer up should report nothing active")
	}

	rec, _ := reg.Get(1)
	if rec.Position != start.Position || rec.ZOrder != start.ZOrder {
		t.Fatalf("minimized window changed: %v z%d -> %v z%d", start.Position, start.ZOrder, rec.Position, rec.ZOrder)
	}
}

func TestCancelWindow_OnlyMatchingSession(t *testing.T) {
	reg, c := setup(t, 1, 2)

	c.BeginResize(1, geometry.Point{X: 450, Y: 550})
	if c.CancelWindow(2) {
		t.Fatalf("cancel for another window should be ignored")
	}
	if !c.CancelWindow(1) {
		t.Fatalf("cancel for the resized window should end the session")
	}
	if c.State().Active() || reg.Interacting(1) {
		t.Fatalf("session and flag should be cleared")
	}
}
