package geometry

import "testing"

func TestValidate_ClampsToHeaderAndViewport(t *testing.T) {
	v := NewValidator(DefaultConstraints())
	vp := Viewport{Width: 1920, Height: 1080}
	size := Size{Width: 350, Height: 400}

	tests := []struct {
		name string
		in   Point
		want Point
	}{
		{"already valid", Point{100, 150}, Point{100, 150}},
		{"above header", Point{100, 10}, Point{100, 150}},
		{"left of screen", Point{-40, 300}, Point{0, 300}},
		// x=5 is already in [0, width-minVisibleWidth], so only y is lifted.
		{"both axes low", Point{5, 10}, Point{5, 150}},
		{"negative both", Point{-5, -10}, Point{0, 150}},
		{"past right edge", Point{5000, 300}, Point{1870, 300}},
		{"past bottom edge", Point{100, 5000}, Point{100, 1050}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := v.Validate(tt.in, size, vp)
			if got != tt.want {
				t.Fatalf("Validate(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestValidate_Idempotent(t *testing.T) {
	v := NewValidator(DefaultConstraints())
	vp := Viewport{Width: 800, Height: 600}
	size := Size{Width: 350, Height: 400}

	for _, p := range []Point{{-100, -100}, {0, 0}, {400, 300}, {9999, 9999}, {760, 151}} {
		once := v.Validate(p, size, vp)
		twice := v.Validate(once, size, vp)
		if once != twice {
			t.Fatalf("Validate not idempotent for %v: %v then %v", p, once, twice)
		}
		if !v.IsReachable(once, vp) {
			t.Fatalf("validated point %v reported unreachable", once)
		}
	}
}

func TestValidate_DegenerateViewportCollapsesToMinimum(t *testing.T) {
	v := NewValidator(DefaultConstraints())
	vp := Viewport{Width: 20, Height: 100}

	if !v.Degenerate(vp) {
		t.Fatalf("expected %v to be degenerate", vp)
	}
	got := v.Validate(Point{X: 500, Y: 500}, Size{Width: 350, Height: 400}, vp)
	if got != (Point{X: 0, Y: 150}) {
		t.Fatalf("expected collapse to (0,150), got %v", got)
	}
	if v.Degenerate(Viewport{Width: 1920, Height: 1080}) {
		t.Fatalf("1920x1080 should not be degenerate")
	}
}

func TestIsReachable(t *testing.T) {
	v := NewValidator(DefaultConstraints())
	vp := Viewport{Width: 1920, Height: 1080}

	if !v.IsReachable(Point{X: 0, Y: 150}, vp) {
		t.Fatalf("(0,150) should be reachable")
	}
	if v.IsReachable(Point{X: 0, Y: 149}, vp) {
		t.Fatalf("(0,149) is under the header and should be unreachable")
	}
	if v.IsReachable(Point{X: 1871, Y: 300}, vp) {
		t.Fatalf("(1871,300) leaves less than the visible width on screen")
	}
}

func TestClampSize_FloorsOnly(t *testing.T) {
	v := NewValidator(DefaultConstraints())

	if got := v.ClampSize(Size{Width: 10, Height: 10}); got != (Size{Width: 300, Height: 200}) {
		t.Fatalf("expected 300x200, got %v", got)
	}
	if got := v.ClampSize(Size{Width: 5000, Height: 4000}); got != (Size{Width: 5000, Height: 4000}) {
		t.Fatalf("expected no ceiling, got %v", got)
	}
}

func TestPlan_EmptyReturnsAnchor(t *testing.T) {
	p := DefaultPlanner(DefaultHeaderHeight)
	got := p.Plan(nil, Viewport{Width: 1920, Height: 1080})
	if got != (Point{X: 100, Y: DefaultHeaderHeight}) {
		t.Fatalf("expected anchor (100,%d), got %v", DefaultHeaderHeight, got)
	}
}

func TestPlan_SkipsOverlappingCandidates(t *testing.T) {
	p := DefaultPlanner(DefaultHeaderHeight)
	existing := []Rect{{X: 100, Y: DefaultHeaderHeight, Width: 50, Height: 50}}

	got := p.Plan(existing, Viewport{Width: 1920, Height: 1080})

	box := NewRect(got, p.DefaultSize).Inflate(p.Margin)
	if box.Intersects(existing[0].Inflate(p.Margin)) {
		t.Fatalf("planned %v overlaps existing %v", got, existing[0])
	}
	// The first three candidates still overlap the padded 50x50 box.
	if got != (Point{X: 190, Y: DefaultHeaderHeight}) {
		t.Fatalf("expected (190,%d), got %v", DefaultHeaderHeight, got)
	}
}

func TestPlan_DefaultSizedWindowAtAnchorFallsBack(t *testing.T) {
	p := DefaultPlanner(DefaultHeaderHeight)
	existing := []Rect{NewRect(p.Anchor(), p.DefaultSize)}

	// The cascade spans at most +120,+90, which never clears a padded
	// 350x400 box, so the count-based fallback is used and still overlaps.
	got := p.Plan(existing, Viewport{Width: 1920, Height: 1080})
	want := Point{X: 100 + 30, Y: DefaultHeaderHeight + 30}
	if got != want {
		t.Fatalf("expected fallback %v, got %v", want, got)
	}
	if !NewRect(got, p.DefaultSize).Intersects(existing[0]) {
		t.Fatalf("fallback %v was expected to overlap %v", got, existing[0])
	}
}

func TestPlan_FallbackCascadesByCount(t *testing.T) {
	p := DefaultPlanner(DefaultHeaderHeight)
	big := Rect{X: 0, Y: 0, Width: 2000, Height: 2000}
	existing := []Rect{big, big, big}

	got := p.Plan(existing, Viewport{Width: 1920, Height: 1080})
	want := Point{X: 100 + 3*30, Y: DefaultHeaderHeight + 3*30}
	if got != want {
		t.Fatalf("expected fallback %v, got %v", want, got)
	}
}

func TestRectIntersects_TouchingEdgesDoNotOverlap(t *testing.T) {
	a := Rect{X: 0, Y: 0, Width: 10, Height: 10}
	b := Rect{X: 10, Y: 0, Width: 10, Height: 10}
	if a.Intersects(b) {
		t.Fatalf("edge-adjacent rects should not intersect")
	}
	if !a.Intersects(Rect{X: 9, Y: 9, Width: 5, Height: 5}) {
		t.Fatalf("overlapping rects should intersect")
	}
}
