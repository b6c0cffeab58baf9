package x11

import (
	"log/slog"
	"sync"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/xevent"
	"github.com/BurntSushi/xgbutil/xprop"
	"github.com/BurntSushi/xgbutil/xwindow"

	"github.com/1broseidon/canvaslist/internal/geometry"
)

// ViewportWatcher reports the usable viewport whenever the root window is
// resized or the work area changes.
type ViewportWatcher struct {
	conn     *Connection
	onChange func(geometry.Viewport)
	logger   *slog.Logger

	mu   sync.Mutex
	last geometry.Viewport
}

// NewViewportWatcher builds a watcher on conn. onChange runs on the X event
// goroutine and only for sizes that differ from the last reported one.
func NewViewportWatcher(conn *Connection, onChange func(geometry.Viewport), logger *slog.Logger) *ViewportWatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &ViewportWatcher{conn: conn, onChange: onChange, logger: logger}
}

// Attach reports the current viewport and hooks root window events so later
// changes are reported while the connection's event loop runs.
func (w *ViewportWatcher) Attach() error {
	xu := w.conn.XUtil
	root := xwindow.New(xu, w.conn.Root)
	if err := root.Listen(xproto.EventMaskStructureNotify, xproto.EventMaskPropertyChange); err != nil {
		return err
	}

	xevent.ConfigureNotifyFun(func(xu *xgbutil.XUtil, ev xevent.ConfigureNotifyEvent) {
		w.refresh()
	}).Connect(xu, w.conn.Root)

	xevent.PropertyNotifyFun(func(xu *xgbutil.XUtil, ev xevent.PropertyNotifyEvent) {
		name, err := xprop.AtomName(xu, ev.Atom)
		if err != nil {
			return
		}
		if name == "_NET_WORKAREA" || name == "_NET_CURRENT_DESKTOP" {
			w.refresh()
		}
	}).Connect(xu, w.conn.Root)

	w.refresh()
	return nil
}

func (w *ViewportWatcher) refresh() {
	vp, err := w.conn.Viewport()
	if err != nil {
		w.logger.Warn("failed to read display viewport", "error", err)
		return
	}
	if !w.changed(vp) {
		return
	}
	w.logger.Info("display viewport changed", "viewport", vp.String())
	w.onChange(vp)
}

// changed records vp and reports whether it differs from the previous value.
func (w *ViewportWatcher) changed(vp geometry.Viewport) bool {
	if vp.Width <= 0 || vp.Height <= 0 {
		return false
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if vp == w.last {
		return false
	}
	w.last = vp
	return true
}
