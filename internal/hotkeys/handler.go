// Package hotkeys binds global X11 key sequences to daemon actions.
package hotkeys

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xevent"

	"github.com/1broseidon/canvaslist/internal/config"
	"github.com/1broseidon/canvaslist/internal/layoutstore"
	"github.com/1broseidon/canvaslist/internal/monitor"
	"github.com/1broseidon/canvaslist/internal/x11"
)

// Actions is the subset of the daemon service hotkeys trigger.
type Actions interface {
	Scan() monitor.Result
	SaveLayout(ctx context.Context, name string) (int, error)
}

// Handler manages global keyboard shortcuts
type Handler struct {
	xu   *xgbutil.XUtil
	root xproto.Window
}

var ignoreModsOnce sync.Once

// NewHandler prepares key grabs on the root window of conn.
func NewHandler(conn *x11.Connection) *Handler {
	keybind.Initialize(conn.XUtil)
	ignoreModsOnce.Do(func() {
		configureIgnoreMods(conn.XUtil)
	})
	return &Handler{
		xu:   conn.XUtil,
		root: conn.Root,
	}
}

// RegisterFunc registers an arbitrary hotkey callback.
func (h *Handler) RegisterFunc(keySequence string, callback func()) error {
	return keybind.KeyPressFun(func(xu *xgbutil.XUtil, ev xevent.KeyPressEvent) {
		callback()
	}).Connect(h.xu, h.root, keySequence, true)
}

// RegisterActions binds every configured sequence in cfg. A sequence that
// cannot be grabbed is logged and skipped.
func (h *Handler) RegisterActions(cfg config.HotkeysConfig, actions Actions) int {
	bindings := []struct {
		name     string
		sequence string
		fn       func()
	}{
		{"scan", cfg.Scan, func() {
			res := actions.Scan()
			log.Printf("Scan hotkey: %d checked, %d corrected", res.Checked, res.Corrected)
		}},
		{"save_layout", cfg.SaveLayout, func() {
			n, err := actions.SaveLayout(context.Background(), layoutstore.DefaultName)
			if err != nil {
				log.Printf("Save layout hotkey failed: %v", err)
				return
			}
			log.Printf("Save layout hotkey: saved %d windows to %q", n, layoutstore.DefaultName)
		}},
	}

	registered := 0
	for _, b := range bindings {
		if b.sequence == "" {
			continue
		}
		if err := h.RegisterFunc(b.sequence, b.fn); err != nil {
			log.Printf("Warning: %v", fmt.Errorf("failed to register %s hotkey %q: %w", b.name, b.sequence, err))
			continue
		}
		log.Printf("%s hotkey registered: %s", b.name, b.sequence)
		registered++
	}
	return registered
}

func configureIgnoreMods(xu *xgbutil.XUtil) {
	// Always ignore CapsLock.
	caps := uint16(xproto.ModMaskLock)

	numLock := modMaskForKeysym(xu, "Num_Lock")
	scrollLock := modMaskForKeysym(xu, "Scroll_Lock")

	xevent.IgnoreMods = ignoreMasks(caps, numLock, scrollLock)
}

// ignoreMasks returns every combination of the lock modifiers, including
// none, so a grab fires regardless of lock state.
func ignoreMasks(caps, numLock, scrollLock uint16) []uint16 {
	base := []uint16{caps}
	if numLock != 0 && numLock != caps {
		base = append(base, numLock)
	}
	if scrollLock != 0 && scrollLock != caps && scrollLock != numLock {
		base = append(base, scrollLock)
	}

	masks := make([]uint16, 0, 1<<len(base))
	for subset := 0; subset < (1 << len(base)); subset++ {
		var mask uint16
		for bit := range base {
			if subset&(1<<bit) != 0 {
				mask |= base[bit]
			}
		}
		masks = append(masks, mask)
	}
	return masks
}

func modMaskForKeysym(xu *xgbutil.XUtil, keysym string) uint16 {
	for _, keycode := range keybind.StrToKeycodes(xu, keysym) {
		if mask := keybind.ModGet(xu, keycode); mask != 0 {
			return mask
		}
	}
	return 0
}
