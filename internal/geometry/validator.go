package geometry

// Default constraint values. MinY is HeaderHeight+HeaderBuffer and applies to
// list and item windows alike.
const (
	DefaultHeaderHeight     = 120
	DefaultHeaderBuffer     = 30
	DefaultMinVisibleWidth  = 50
	DefaultMinVisibleHeight = 30
	DefaultMinWidth         = 300
	DefaultMinHeight        = 200
)

// Constraints holds the reachability rules every window rectangle obeys.
type Constraints struct {
	HeaderHeight     int
	HeaderBuffer     int
	MinVisibleWidth  int
	MinVisibleHeight int
	MinWidth         int
	MinHeight        int
}

// DefaultConstraints returns the stock constraints (MinY 150, floors 300x200).
func DefaultConstraints() Constraints {
	return Constraints{
		HeaderHeight:     DefaultHeaderHeight,
		HeaderBuffer:     DefaultHeaderBuffer,
		MinVisibleWidth:  DefaultMinVisibleWidth,
		MinVisibleHeight: DefaultMinVisibleHeight,
		MinWidth:         DefaultMinWidth,
		MinHeight:        DefaultMinHeight,
	}
}

// MinX is the leftmost allowed origin.
func (c Constraints) MinX() int {
	return 0
}

// MinY is the header clearance: no visible window origin may sit above it.
func (c Constraints) MinY() int {
	return c.HeaderHeight + c.HeaderBuffer
}

// Validator corrects window geometry so the header stays grabbable and some
// part of the window stays on screen. It holds no state beyond its constraints.
type Validator struct {
	c Constraints
}

// NewValidator creates a validator for the given constraints.
func NewValidator(c Constraints) Validator {
	return Validator{c: c}
}

// Constraints returns the constraints the validator enforces.
func (v Validator) Constraints() Constraints {
	return v.c
}

// Validate returns p clamped into the reachable region of vp. The size is
// accepted for symmetry with callers that hold full rectangles; reachability
// is defined by the visible margins, so it does not shift the bounds.
func (v Validator) Validate(p Point, _ Size, vp Viewport) Point {
	return Point{
		X: clamp(p.X, v.c.MinX(), vp.Width-v.c.MinVisibleWidth),
		Y: clamp(p.Y, v.c.MinY(), vp.Height-v.c.MinVisibleHeight),
	}
}

// ValidateRect validates the origin and applies the size floors.
func (v Validator) ValidateRect(r Rect, vp Viewport) Rect {
	size := v.ClampSize(r.Dimensions())
	return NewRect(v.Validate(r.Origin(), size, vp), size)
}

// IsReachable reports whether Validate would leave p unchanged.
func (v Validator) IsReachable(p Point, vp Viewport) bool {
	return v.Validate(p, Size{}, vp) == p
}

// ClampSize raises a size to the hard floors. There is no ceiling.
func (v Validator) ClampSize(s Size) Size {
	if s.Width < v.c.MinWidth {
		s.Width = v.c.MinWidth
	}
	if s.Height < v.c.MinHeight {
		s.Height = v.c.MinHeight
	}
	return s
}

// Degenerate reports a viewport too small for the reachable region to exist.
// Validation still succeeds; windows pin to the minimum origin.
func (v Validator) Degenerate(vp Viewport) bool {
	return vp.Width-v.c.MinVisibleWidth < v.c.MinX() ||
		vp.Height-v.c.MinVisibleHeight < v.c.MinY()
}

// clamp limits n to [lo, hi]; when hi < lo the range collapses to lo.
func clamp(n, lo, hi int) int {
	if hi < lo {
		hi = lo
	}
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}
