package geometry

// Default placement parameters for new windows.
const (
	DefaultAnchorX      = 100
	DefaultCascadeStep  = 30
	DefaultCascadeCols  = 5
	DefaultCascadeTries = 20
	DefaultPlaceMargin  = 20
	DefaultWindowWidth  = 350
	DefaultWindowHeight = 400
)

// Planner picks a default origin for a new window by cascading away from an
// anchor until the new window no longer overlaps any existing one.
type Planner struct {
	AnchorX     int
	AnchorY     int
	Step        int
	Columns     int
	Attempts    int
	Margin      int
	DefaultSize Size
}

// DefaultPlanner anchors at (100, headerHeight) with the stock cascade.
func DefaultPlanner(headerHeight int) Planner {
	return Planner{
		AnchorX:     DefaultAnchorX,
		AnchorY:     headerHeight,
		Step:        DefaultCascadeStep,
		Columns:     DefaultCascadeCols,
		Attempts:    DefaultCascadeTries,
		Margin:      DefaultPlaceMargin,
		DefaultSize: Size{Width: DefaultWindowWidth, Height: DefaultWindowHeight},
	}
}

// Anchor returns the base placement point.
func (p Planner) Anchor() Point {
	return Point{X: p.AnchorX, Y: p.AnchorY}
}

// Plan returns an origin for a new window of DefaultSize. The result is not
// clamped to the viewport; callers pass it through a Validator before use.
//
// When every cascade candidate overlaps, the fallback steps one cascade
// offset per existing window and may overlap.
func (p Planner) Plan(existing []Rect, _ Viewport) Point {
	anchor := p.Anchor()
	if len(existing) == 0 {
		return anchor
	}

	cols := p.Columns
	if cols < 1 {
		cols = 1
	}

	padded := make([]Rect, len(existing))
	for i, r := range existing {
		padded[i] = r.Inflate(p.Margin)
	}

	for attempt := 0; attempt < p.Attempts; attempt++ {
		candidate := Point{
			X: anchor.X + (attempt%cols)*p.Step,
			Y: anchor.Y + (attempt/cols)*p.Step,
		}
		box := NewRect(candidate, p.DefaultSize).Inflate(p.Margin)
		if !overlapsAny(box, padded) {
			return candidate
		}
	}

	n := len(existing)
	return Point{X: anchor.X + n*p.Step, Y: anchor.Y + n*p.Step}
}

func overlapsAny(box Rect, others []Rect) bool {
	for _, o := range others {
		if box.Intersects(o) {
			return true
		}
	}
	return false
}
