package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/xwindow"

	"github.com/1broseidon/canvaslist/internal/geometry"
)

// Monitor represents a physical display
type Monitor struct {
	ID     int
	Name   string
	Bounds Bounds
}

// Bounds is a rectangle in root window coordinates.
type Bounds struct {
	X, Y, Width, Height int
}

func (b Bounds) contains(x, y int) bool {
	return x >= b.X && x < b.X+b.Width && y >= b.Y && y < b.Y+b.Height
}

// intersect returns the overlap of a and b and whether it is non-empty.
func intersect(a, b Bounds) (Bounds, bool) {
	x1 := max(a.X, b.X)
	y1 := max(a.Y, b.Y)
	x2 := min(a.X+a.Width, b.X+b.Width)
	y2 := min(a.Y+a.Height, b.Y+b.Height)
	if x2 <= x1 || y2 <= y1 {
		return Bounds{}, false
	}
	return Bounds{X: x1, Y: y1, Width: x2 - x1, Height: y2 - y1}, true
}

// GetMonitors retrieves all active monitors using XRandR
func (c *Connection) GetMonitors() ([]Monitor, error) {
	if err := randr.Init(c.XUtil.Conn()); err != nil {
		return nil, fmt.Errorf("randr init failed: %w", err)
	}

	resources, err := randr.GetScreenResources(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to get screen resources: %w", err)
	}

	var monitors []Monitor
	for i, crtc := range resources.Crtcs {
		info, err := randr.GetCrtcInfo(c.XUtil.Conn(), crtc, resources.ConfigTimestamp).Reply()
		if err != nil {
			continue
		}
		// Skip disabled CRTCs
		if info.Width == 0 || info.Height == 0 || len(info.Outputs) == 0 {
			continue
		}

		name := fmt.Sprintf("Monitor%d", i)
		if out, err := randr.GetOutputInfo(c.XUtil.Conn(), info.Outputs[0], resources.ConfigTimestamp).Reply(); err == nil {
			name = string(out.Name)
		}

		monitors = append(monitors, Monitor{
			ID:   i,
			Name: name,
			Bounds: Bounds{
				X:      int(info.X),
				Y:      int(info.Y),
				Width:  int(info.Width),
				Height: int(info.Height),
			},
		})
	}
	return monitors, nil
}

// Viewport returns the usable area of the monitor under the pointer, minus
// panels and docks reported through _NET_WORKAREA. Without RandR the root
// window size is used.
func (c *Connection) Viewport() (geometry.Viewport, error) {
	root, err := xwindow.New(c.XUtil, c.Root).Geometry()
	if err != nil {
		return geometry.Viewport{}, fmt.Errorf("failed to read root geometry: %w", err)
	}
	screen := Bounds{Width: root.Width(), Height: root.Height()}

	monitors, err := c.GetMonitors()
	if err != nil || len(monitors) == 0 {
		monitors = []Monitor{{Name: "root", Bounds: screen}}
	}

	var px, py int
	if pointer, err := xproto.QueryPointer(c.XUtil.Conn(), c.Root).Reply(); err == nil {
		px, py = int(pointer.RootX), int(pointer.RootY)
	}

	var workarea *Bounds
	if areas, err := ewmh.WorkareaGet(c.XUtil); err == nil && len(areas) > 0 {
		desktop := 0
		if cur, err := ewmh.CurrentDesktopGet(c.XUtil); err == nil && int(cur) < len(areas) {
			desktop = int(cur)
		}
		wa := areas[desktop]
		workarea = &Bounds{X: wa.X, Y: wa.Y, Width: int(wa.Width), Height: int(wa.Height)}
	}

	return usableViewport(monitors, px, py, workarea), nil
}

// usableViewport picks the monitor containing (px, py), falling back to the
// first one, and trims it to the work area when they overlap.
func usableViewport(monitors []Monitor, px, py int, workarea *Bounds) geometry.Viewport {
	if len(monitors) == 0 {
		return geometry.Viewport{}
	}
	active := monitors[0].Bounds
	for _, m := range monitors {
		if m.Bounds.contains(px, py) {
			active = m.Bounds
			break
		}
	}
	if workarea != nil {
		if trimmed, ok := intersect(active, *workarea); ok {
			active = trimmed
		}
	}
	return geometry.Viewport{Width: active.Width, Height: active.Height}
}
