package layoutstore

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/1broseidon/canvaslist/internal/geometry"
	"github.com/1broseidon/canvaslist/internal/window"
)

func newRegistry() *window.Registry {
	return window.NewRegistry(window.Config{Viewport: geometry.Viewport{Width: 1920, Height: 1080}})
}

func TestDecode_LegacyBareMap(t *testing.T) {
	data := []byte(`{
  "12": {"x": 40, "y": 20, "width": 100, "height": 500, "zIndex": 1003},
  "4": {"x": 300, "y": 400}
}`)

	l, err := Decode(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(l.Windows) != 2 {
		t.Fatalf("expected 2 windows, got %d", len(l.Windows))
	}
	if l.Windows[0].ID != 4 || l.Windows[1].ID != 12 {
		t.Fatalf("expected windows sorted by id, got %d,%d", l.Windows[0].ID, l.Windows[1].ID)
	}
	if l.Windows[1].Kind != window.KindList {
		t.Fatalf("legacy windows should migrate as lists")
	}
	if l.Windows[0].Width != nil {
		t.Fatalf("missing legacy width should stay unset")
	}
	if l.Windows[1].ZIndex == nil || *l.Windows[1].ZIndex != 1003 {
		t.Fatalf("legacy zIndex not carried over")
	}
}

func TestDecode_CurrentFormatAndErrors(t *testing.T) {
	l, err := Decode([]byte(`{"version":1,"windows":[{"id":3,"kind":"item","x":10,"y":200}]}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(l.Windows) != 1 || l.Windows[0].Kind != window.KindItem {
		t.Fatalf("unexpected layout %+v", l)
	}

	if _, err := Decode([]byte(`{"abc": {"x": 1}}`)); err == nil {
		t.Fatalf("expected error for non-numeric legacy id")
	}
	if _, err := Decode([]byte(`not json`)); err == nil {
		t.Fatalf("expected error for invalid json")
	}
	if l, err := Decode(nil); err != nil || len(l.Windows) != 0 {
		t.Fatalf("empty input should decode to an empty layout")
	}
}

func TestHydrate_ValidatesLegacyGeometry(t *testing.T) {
	l, err := Decode([]byte(`{"12": {"x": 40, "y": 20, "width": 100, "height": 500, "zIndex": 1003}}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	reg := newRegistry()

	res, err := Hydrate(reg, l, false)
	if err != nil {
		t.Fatalf("hydrate: %v", err)
	}
	if res.Created != 1 {
		t.Fatalf("expected 1 created, got %+v", res)
	}

	rec, ok := reg.Get(12)
	if !ok {
		t.Fatalf("window 12 missing")
	}
	if rec.Rect() != (geometry.Rect{X: 40, Y: 150, Width: 300, Height: 500}) {
		t.Fatalf("expected validated rect, got %v", rec.Rect())
	}
	if rec.ZOrder != 1003 {
		t.Fatalf("expected z 1003, got %d", rec.ZOrder)
	}
	if z, _ := reg.BringToFront(12); z <= 1003 {
		t.Fatalf("counter should continue above persisted z, got %d", z)
	}
}

func TestHydrate_SkipOrReplaceExisting(t *testing.T) {
	reg := newRegistry()
	reg.Create(1, window.KindItem, window.Options{})
	x, y := 500, 500
	l := &Layout{Windows: []WindowLayout{{ID: 1, Kind: window.KindList, X: &x, Y: &y}}}

	res, err := Hydrate(reg, l, false)
	if err != nil {
		t.Fatalf("hydrate: %v", err)
	}
	if res.Created != 0 || len(res.Skipped) != 1 {
		t.Fatalf("expected skip, got %+v", res)
	}

	res, err = Hydrate(reg, l, true)
	if err != nil {
		t.Fatalf("hydrate: %v", err)
	}
	if res.Replaced != 1 || res.Created != 1 {
		t.Fatalf("expected replace, got %+v", res)
	}
	rec, _ := reg.Get(1)
	if rec.Kind != window.KindList || rec.Position != (geometry.Point{X: 500, Y: 500}) {
		t.Fatalf("window not replaced: %+v", rec)
	}
}

func TestHydrate_PartialEntriesUsePlannerDefaults(t *testing.T) {
	planner := geometry.DefaultPlanner(geometry.DefaultHeaderHeight)
	planner.AnchorX = 200
	planner.DefaultSize = geometry.Size{Width: 500, Height: 450}
	reg := window.NewRegistry(window.Config{
		Viewport: geometry.Viewport{Width: 1920, Height: 1080},
		Planner:  planner,
	})

	y, x, w := 300, 900, 600
	l := &Layout{Windows: []WindowLayout{
		{ID: 1, Y: &y, Width: &w},
		{ID: 2, X: &x},
	}}
	if _, err := Hydrate(reg, l, false); err != nil {
		t.Fatalf("hydrate: %v", err)
	}

	tests := []struct {
		id   int
		want geometry.Rect
	}{
		{1, geometry.Rect{X: 200, Y: 300, Width: 600, Height: 450}},
		{2, geometry.Rect{X: 900, Y: 150, Width: 500, Height: 450}},
	}
	for _, tt := range tests {
		rec, _ := reg.Get(tt.id)
		if rec.Rect() != tt.want {
			t.Fatalf("window %d: got %v, want %v", tt.id, rec.Rect(), tt.want)
		}
	}
}

func TestCaptureHydrate_RoundTrip(t *testing.T) {
	src := newRegistry()
	src.Create(1, window.KindList, window.Options{Title: "inbox"})
	src.Create(2, window.KindItem, window.Options{})
	src.Move(2, 700, 400)
	src.Resize(1, 420, 380)
	src.Minimize(1)

	dst := newRegistry()
	if _, err := Hydrate(dst, Capture(src), false); err != nil {
		t.Fatalf("hydrate: %v", err)
	}

	for _, want := range src.ListAll() {
		got, ok := dst.Get(want.ID)
		if !ok {
			t.Fatalf("window %d missing after round trip", want.ID)
		}
		if got.Rect() != want.Rect() || got.ZOrder != want.ZOrder ||
			got.Minimized != want.Minimized || got.Kind != want.Kind || got.Title != want.Title {
			t.Fatalf("window %d differs: %+v vs %+v", want.ID, got, want)
		}
	}
}

func testStores(t *testing.T) map[string]Store {
	t.Helper()
	dir := t.TempDir()
	return map[string]Store{
		BackendJSON:   NewFileStore(filepath.Join(dir, "layouts")),
		BackendSQLite: NewSQLiteStore(filepath.Join(dir, "layouts.db")),
	}
}

func TestStores_SaveLoadListDelete(t *testing.T) {
	ctx := context.Background()
	for backend, store := range testStores(t) {
		t.Run(backend, func(t *testing.T) {
			defer store.Close()

			reg := newRegistry()
			reg.Create(1, window.KindList, window.Options{Title: "a"})
			reg.Create(2, window.KindItem, window.Options{})
			layout := Capture(reg)

			if err := store.Save(ctx, "work", layout); err != nil {
				t.Fatalf("save: %v", err)
			}
			if err := store.Save(ctx, "home", &Layout{}); err != nil {
				t.Fatalf("save: %v", err)
			}

			got, err := store.Load(ctx, "work")
			if err != nil {
				t.Fatalf("load: %v", err)
			}
			if len(got.Windows) != 2 {
				t.Fatalf("expected 2 windows, got %d", len(got.Windows))
			}
			byID := map[int]WindowLayout{}
			for _, w := range got.Windows {
				byID[w.ID] = w
			}
			if byID[1].Title != "a" || byID[2].Kind != window.KindItem {
				t.Fatalf("unexpected windows %+v", got.Windows)
			}
			if byID[2].ZIndex == nil || *byID[2].ZIndex != 2 {
				t.Fatalf("z-index not persisted")
			}

			names, err := store.List(ctx)
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			if len(names) != 2 || names[0] != "home" || names[1] != "work" {
				t.Fatalf("unexpected names %v", names)
			}

			if err := store.Delete(ctx, "home"); err != nil {
				t.Fatalf("delete: %v", err)
			}
			if _, err := store.Load(ctx, "home"); !errors.Is(err, ErrNotFound) {
				t.Fatalf("expected ErrNotFound, got %v", err)
			}
			if err := store.Delete(ctx, "home"); !errors.Is(err, ErrNotFound) {
				t.Fatalf("expected ErrNotFound on second delete, got %v", err)
			}
		})
	}
}

func TestStores_RejectBadNames(t *testing.T) {
	ctx := context.Background()
	for backend, store := range testStores(t) {
		for _, name := range []string{"", "..", "a/b", "../x"} {
			if err := store.Save(ctx, name, &Layout{}); err == nil {
				t.Fatalf("%s: expected error for name %q", backend, name)
			}
		}
	}
}

func TestSQLite_ImportsLegacyFiles(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	filesDir := filepath.Join(dir, "layouts")
	if err := os.MkdirAll(filesDir, 0755); err != nil {
		t.Fatal(err)
	}
	legacy := []byte(`{"7": {"x": 0, "y": 0, "width": 320, "height": 240, "zIndex": 5}}`)
	if err := os.WriteFile(filepath.Join(filesDir, "old.json"), legacy, 0644); err != nil {
		t.Fatal(err)
	}

	db := NewSQLiteStore(filepath.Join(dir, "layouts.db"))
	imported, err := db.ImportFiles(ctx, NewFileStore(filesDir))
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if len(imported) != 1 || imported[0] != "old" {
		t.Fatalf("unexpected import %v", imported)
	}

	l, err := db.Load(ctx, "old")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(l.Windows) != 1 || l.Windows[0].ID != 7 || *l.Windows[0].Width != 320 {
		t.Fatalf("unexpected imported layout %+v", l.Windows)
	}

	again, err := db.ImportFiles(ctx, NewFileStore(filesDir))
	if err != nil || len(again) != 0 {
		t.Fatalf("second import should be a no-op, got %v (%v)", again, err)
	}
}

func TestOpen_UnknownBackend(t *testing.T) {
	if _, err := Open("redis", t.TempDir()); err == nil {
		t.Fatalf("expected error for unknown backend")
	}
}
