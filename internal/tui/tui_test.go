package tui

import (
	"errors"
	"strings"
	"testing"

	"github.com/1broseidon/canvaslist/internal/daemon"
	"github.com/1broseidon/canvaslist/internal/geometry"
	"github.com/1broseidon/canvaslist/internal/monitor"
	"github.com/1broseidon/canvaslist/internal/window"
)

type fakeClient struct {
	windows []window.Record
	calls   []string
	failOn  string
}

func (f *fakeClient) find(id int) (*window.Record, error) {
	for i := range f.windows {
		if f.windows[i].ID == id {
			return &f.windows[i], nil
		}
	}
	return nil, errors.New("window not found")
}

func (f *fakeClient) GetStatus() (*daemon.Status, error) {
	return &daemon.Status{DaemonRunning: true, WindowCount: len(f.windows), Viewport: geometry.Viewport{Width: 1000, Height: 800}, Session: "idle"}, nil
}

func (f *fakeClient) List() ([]window.Record, error) {
	out := make([]window.Record, len(f.windows))
	copy(out, f.windows)
	return out, nil
}

func (f *fakeClient) Move(id, x, y int) (window.Record, error) {
	f.calls = append(f.calls, "move")
	if f.failOn == "move" {
		return window.Record{}, errors.New("move refused")
	}
	rec, err := f.find(id)
	if err != nil {
		return window.Record{}, err
	}
	rec.Position = geometry.Point{X: x, Y: y}
	return *rec, nil
}

func (f *fakeClient) Front(id int) (window.Record, error) {
	f.calls = append(f.calls, "front")
	rec, err := f.find(id)
	if err != nil {
		return window.Record{}, err
	}
	return *rec, nil
}

func (f *fakeClient) Minimize(id int) (window.Record, error) {
	f.calls = append(f.calls, "minimize")
	rec, err := f.find(id)
	if err != nil {
		return window.Record{}, err
	}
	rec.Minimized = true
	return *rec, nil
}

func (f *fakeClient) Restore(id int) (window.Record, error) {
	f.calls = append(f.calls, "restore")
	rec, err := f.find(id)
	if err != nil {
		return window.Record{}, err
	}
	rec.Minimized = false
	return *rec, nil
}

func (f *fakeClient) Scan() (monitor.Result, error) {
	f.calls = append(f.calls, "scan")
	return monitor.Result{Checked: len(f.windows)}, nil
}

func newFakeTUI() (*TUI, *fakeClient) {
	fc := &fakeClient{windows: []window.Record{
		{ID: 1, Position: geometry.Point{X: 100, Y: 150}, Size: geometry.Size{Width: 350, Height: 400}},
		{ID: 2, Position: geometry.Point{X: 500, Y: 200}, Size: geometry.Size{Width: 300, Height: 300}},
	}}
	tu := New(fc, geometry.DefaultHeaderHeight)
	tu.refresh()
	return tu, fc
}

func TestHandleInput_Navigation(t *testing.T) {
	tu, _ := newFakeTUI()

	if quit := tu.handleInput([]byte("j")); quit {
		t.Fatalf("j should not quit")
	}
	if tu.selectedID() != 2 {
		t.Fatalf("selected = %d, want 2", tu.selectedID())
	}
	tu.handleInput([]byte("j"))
	if tu.selectedID() != 1 {
		t.Fatalf("selection should wrap to 1, got %d", tu.selectedID())
	}
	tu.handleInput([]byte("\x1b[A"))
	if tu.selectedID() != 2 {
		t.Fatalf("up arrow should wrap to 2, got %d", tu.selectedID())
	}

	for _, key := range []string{"q", "\x03", "\x1b"} {
		if !tu.handleInput([]byte(key)) {
			t.Fatalf("%q should quit", key)
		}
	}
}

func TestHandleInput_Actions(t *testing.T) {
	tu, fc := newFakeTUI()

	tu.handleInput([]byte("m"))
	if !fc.windows[0].Minimized {
		t.Fatalf("m should minimize the selected window")
	}
	if !tu.windows[0].Minimized {
		t.Fatalf("list should be refreshed after minimize")
	}
	tu.handleInput([]byte("m"))
	if fc.windows[0].Minimized {
		t.Fatalf("second m should restore the window")
	}

	tu.handleInput([]byte("L"))
	tu.handleInput([]byte("J"))
	if got := fc.windows[0].Position; got != (geometry.Point{X: 150, Y: 200}) {
		t.Fatalf("position after L J = %v, want 150,200", got)
	}

	tu.handleInput([]byte("fs"))
	want := []string{"minimize", "restore", "move", "move", "front", "scan"}
	if strings.Join(fc.calls, ",") != strings.Join(want, ",") {
		t.Fatalf("calls = %v, want %v", fc.calls, want)
	}
	if !strings.HasPrefix(tu.lastInfo, "scan:") {
		t.Fatalf("lastInfo = %q, want scan summary", tu.lastInfo)
	}
}

func TestHandleInput_ErrorIsShown(t *testing.T) {
	tu, fc := newFakeTUI()
	fc.failOn = "move"

	tu.handleInput([]byte("H"))
	if tu.lastError != "move refused" {
		t.Fatalf("lastError = %q", tu.lastError)
	}
	if !strings.Contains(tu.renderStatus(), "move refused") {
		t.Fatalf("status line should show the error")
	}
}

func TestRefresh_KeepsSelectionByID(t *testing.T) {
	tu, fc := newFakeTUI()
	tu.handleInput([]byte("j"))

	fc.windows = append([]window.Record{{ID: 9}}, fc.windows...)
	tu.refresh()
	if tu.selectedID() != 2 {
		t.Fatalf("selected = %d, want 2 after refresh", tu.selectedID())
	}
}

func TestRenderMinimap(t *testing.T) {
	vp := geometry.Viewport{Width: 1000, Height: 800}
	windows := []window.Record{
		{ID: 1, Position: geometry.Point{X: 100, Y: 200}, Size: geometry.Size{Width: 400, Height: 400}},
		{ID: 2, Position: geometry.Point{X: 600, Y: 200}, Size: geometry.Size{Width: 300, Height: 300}, Minimized: true},
	}

	lines := renderMinimap(windows, vp, 120, 40, 16, 1)
	if len(lines) != 16 {
		t.Fatalf("got %d lines, want 16", len(lines))
	}
	for i, line := range lines {
		if n := len([]rune(line)); n != 40 {
			t.Fatalf("line %d has %d runes, want 40", i, n)
		}
	}
	if !strings.HasPrefix(lines[0], "╔") || !strings.HasPrefix(lines[15], "╚") {
		t.Fatalf("missing outer border")
	}
	if !strings.Contains(lines[2], "┄") {
		t.Fatalf("header band should be on row 2: %q", lines[2])
	}

	// Window 1 spans columns 4..20 and rows 4..12.
	if r := []rune(lines[4]); r[4] != '┌' || r[20] != '┐' {
		t.Fatalf("unexpected top edge: %q", lines[4])
	}
	if !strings.Contains(lines[8], "1") {
		t.Fatalf("window label missing: %q", lines[8])
	}
	for _, line := range lines {
		if strings.Contains(line, "2") {
			t.Fatalf("minimized window should not be drawn: %q", line)
		}
	}
}

func TestRenderMinimap_Degenerate(t *testing.T) {
	lines := renderMinimap(nil, geometry.Viewport{}, 120, 10, 3, 0)
	if len(lines) != 3 || strings.TrimSpace(lines[0]) != "" {
		t.Fatalf("empty viewport should produce a blank canvas, got %q", lines)
	}

	offscreen := []window.Record{{ID: 5, Position: geometry.Point{X: 5000, Y: 5000}, Size: geometry.Size{Width: 100, Height: 100}}}
	lines = renderMinimap(offscreen, geometry.Viewport{Width: 1000, Height: 800}, 0, 20, 8, 5)
	for _, line := range lines {
		if strings.Contains(line, "5") {
			t.Fatalf("off-canvas window should be skipped: %q", line)
		}
	}
}

func TestTruncateAndPad(t *testing.T) {
	s := escBold + "abcdefgh" + escReset
	if got := visibleLength(truncateANSI(s, 5)); got != 5 {
		t.Fatalf("truncated visible length = %d, want 5", got)
	}
	if got := visibleLength(padRight(s, 12)); got != 12 {
		t.Fatalf("padded visible length = %d, want 12", got)
	}
}
