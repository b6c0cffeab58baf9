// Package tui is a terminal inspector for a running daemon: a window list
// beside a minimap of the viewport.
package tui

import (
	"fmt"
	"os"

	"golang.org/x/term"

	"github.com/1broseidon/canvaslist/internal/daemon"
	"github.com/1broseidon/canvaslist/internal/monitor"
	"github.com/1broseidon/canvaslist/internal/window"
)

// nudge is how far the H/J/K/L keys move the selected window.
const nudge = 50

// Client is the daemon API the inspector uses. *ipc.Client implements it.
type Client interface {
	GetStatus() (*daemon.Status, error)
	List() ([]window.Record, error)
	Move(id, x, y int) (window.Record, error)
	Front(id int) (window.Record, error)
	Minimize(id int) (window.Record, error)
	Restore(id int) (window.Record, error)
	Scan() (monitor.Result, error)
}

// TUI represents the terminal user interface state.
type TUI struct {
	client       Client
	headerHeight int

	// UI state
	windows       []window.Record
	status        *daemon.Status
	selectedIndex int
	lastError     string
	lastInfo      string

	// Terminal state
	oldState *term.State
	width    int
	height   int
}

// New creates a new TUI instance. headerHeight is drawn as a band across
// the top of the minimap.
func New(client Client, headerHeight int) *TUI {
	return &TUI{client: client, headerHeight: headerHeight}
}

// Run starts the TUI main loop.
func (t *TUI) Run() error {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("inspect requires an interactive terminal (stdin/stdout must be TTYs)")
	}

	oldState, err := term.MakeRaw(int(os.Stdin.Fd()))
	if err != nil {
		return fmt.Errorf("failed to enter raw mode: %w", err)
	}
	t.oldState = oldState
	defer t.restore()

	t.updateSize()
	t.refresh()
	t.render()

	buf := make([]byte, 32)
	for {
		n, err := os.Stdin.Read(buf)
		if err != nil {
			return err
		}
		if t.handleInput(buf[:n]) {
			return nil
		}
		t.render()
	}
}

func (t *TUI) restore() {
	if t.oldState != nil {
		term.Restore(int(os.Stdin.Fd()), t.oldState)
	}
	fmt.Print(escReset + escShowCursor + escClear + escHome)
}

func (t *TUI) updateSize() {
	w, h, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		t.width = 80
		t.height = 24
		return
	}
	t.width = w
	t.height = h
}

// refresh reloads windows and status, keeping the selection on the same
// window id when it still exists.
func (t *TUI) refresh() {
	prev := t.selectedID()

	recs, err := t.client.List()
	if err != nil {
		t.lastError = err.Error()
		return
	}
	status, err := t.client.GetStatus()
	if err != nil {
		t.lastError = err.Error()
		return
	}
	t.windows = recs
	t.status = status
	t.lastError = ""

	t.selectedIndex = 0
	for i, rec := range recs {
		if rec.ID == prev {
			t.selectedIndex = i
			break
		}
	}
}

func (t *TUI) handleInput(input []byte) bool {
	for len(input) > 0 {
		if len(input) >= 3 && input[0] == 0x1b && input[1] == '[' {
			switch input[2] {
			case 'A': // Up arrow
				t.moveSelection(-1)
			case 'B': // Down arrow
				t.moveSelection(1)
			}
			input = input[3:]
			continue
		}

		switch input[0] {
		case 'q', 0x1b, 0x03:
			return true
		case 'j':
			t.moveSelection(1)
		case 'k':
			t.moveSelection(-1)
		case 'f':
			t.apply("front", t.client.Front)
		case 'm':
			t.toggleMinimized()
		case 'H':
			t.nudgeSelected(-nudge, 0)
		case 'L':
			t.nudgeSelected(nudge, 0)
		case 'K':
			t.nudgeSelected(0, -nudge)
		case 'J':
			t.nudgeSelected(0, nudge)
		case 's':
			if res, err := t.client.Scan(); err != nil {
				t.lastError = err.Error()
			} else {
				t.lastInfo = fmt.Sprintf("scan: %d checked, %d corrected", res.Checked, res.Corrected)
				t.refresh()
			}
		case 'r':
			t.refresh()
		}
		input = input[1:]
	}
	return false
}

func (t *TUI) moveSelection(delta int) {
	if len(t.windows) == 0 {
		return
	}
	t.selectedIndex += delta
	if t.selectedIndex < 0 {
		t.selectedIndex = len(t.windows) - 1
	} else if t.selectedIndex >= len(t.windows) {
		t.selectedIndex = 0
	}
}

func (t *TUI) selected() (window.Record, bool) {
	if len(t.windows) == 0 || t.selectedIndex >= len(t.windows) {
		return window.Record{}, false
	}
	return t.windows[t.selectedIndex], true
}

func (t *TUI) selectedID() int {
	rec, ok := t.selected()
	if !ok {
		return 0
	}
	return rec.ID
}

func (t *TUI) apply(verb string, fn func(int) (window.Record, error)) {
	rec, ok := t.selected()
	if !ok {
		return
	}
	if _, err := fn(rec.ID); err != nil {
		t.lastError = err.Error()
		return
	}
	t.lastInfo = fmt.Sprintf("%s window %d", verb, rec.ID)
	t.refresh()
}

func (t *TUI) toggleMinimized() {
	rec, ok := t.selected()
	if !ok {
		return
	}
	if rec.Minimized {
		t.apply("restored", t.client.Restore)
	} else {
		t.apply("minimized", t.client.Minimize)
	}
}

func (t *TUI) nudgeSelected(dx, dy int) {
	rec, ok := t.selected()
	if !ok {
		return
	}
	moved, err := t.client.Move(rec.ID, rec.Position.X+dx, rec.Position.Y+dy)
	if err != nil {
		t.lastError = err.Error()
		return
	}
	t.lastInfo = fmt.Sprintf("window %d at %d,%d", moved.ID, moved.Position.X, moved.Position.Y)
	t.refresh()
}
