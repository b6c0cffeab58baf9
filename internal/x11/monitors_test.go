package x11

import (
	"testing"

	"github.com/1broseidon/canvaslist/internal/geometry"
)

func TestUsableViewport(t *testing.T) {
	dual := []Monitor{
		{ID: 0, Name: "DP-1", Bounds: Bounds{X: 0, Y: 0, Width: 1920, Height: 1080}},
		{ID: 1, Name: "DP-2", Bounds: Bounds{X: 1920, Y: 0, Width: 2560, Height: 1440}},
	}

	tests := []struct {
		name     string
		monitors []Monitor
		px, py   int
		workarea *Bounds
		want     geometry.Viewport
	}{
		{"pointer on first", dual, 100, 100, nil, geometry.Viewport{Width: 1920, Height: 1080}},
		{"pointer on second", dual, 2000, 500, nil, geometry.Viewport{Width: 2560, Height: 1440}},
		{"pointer off screen falls back to first", dual, -10, -10, nil, geometry.Viewport{Width: 1920, Height: 1080}},
		{"top panel trimmed", dual, 100, 100, &Bounds{X: 0, Y: 32, Width: 4480, Height: 1408}, geometry.Viewport{Width: 1920, Height: 1048}},
		{"disjoint workarea ignored", dual, 100, 100, &Bounds{X: 5000, Y: 0, Width: 100, Height: 100}, geometry.Viewport{Width: 1920, Height: 1080}},
		{"no monitors", nil, 0, 0, nil, geometry.Viewport{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := usableViewport(tt.monitors, tt.px, tt.py, tt.workarea)
			if got != tt.want {
				t.Fatalf("usableViewport = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestViewportWatcher_ChangedDeduplicates(t *testing.T) {
	w := &ViewportWatcher{}

	if !w.changed(geometry.Viewport{Width: 1920, Height: 1080}) {
		t.Fatalf("first viewport should be reported")
	}
	if w.changed(geometry.Viewport{Width: 1920, Height: 1080}) {
		t.Fatalf("same viewport should not be reported twice")
	}
	if w.changed(geometry.Viewport{Width: 0, Height: 1080}) {
		t.Fatalf("empty viewport should be ignored")
	}
	if !w.changed(geometry.Viewport{Width: 1280, Height: 720}) {
		t.Fatalf("new size should be reported")
	}
}
