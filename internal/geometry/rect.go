package geometry

import "fmt"

// Point is a top-left window origin in viewport pixels.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Size is a window's width and height in pixels.
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Viewport is the visible area windows are laid out in.
type Viewport struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Rect represents a window position and size
type Rect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// NewRect builds a Rect from a position and size.
func NewRect(p Point, s Size) Rect {
	return Rect{X: p.X, Y: p.Y, Width: s.Width, Height: s.Height}
}

// Origin returns the top-left corner.
func (r Rect) Origin() Point {
	return Point{X: r.X, Y: r.Y}
}

// Dimensions returns the width and height.
func (r Rect) Dimensions() Size {
	return Size{Width: r.Width, Height: r.Height}
}

// Inflate grows the rect by margin on every side.
func (r Rect) Inflate(margin int) Rect {
	return Rect{
		X:      r.X - margin,
		Y:      r.Y - margin,
		Width:  r.Width + 2*margin,
		Height: r.Height + 2*margin,
	}
}

// Intersects reports whether two rects overlap. Touching edges do not count.
func (r Rect) Intersects(other Rect) bool {
	return r.X < other.X+other.Width && other.X < r.X+r.Width &&
		r.Y < other.Y+other.Height && other.Y < r.Y+r.Height
}

func (r Rect) String() string {
	return fmt.Sprintf("%dx%d at %d,%d", r.Width, r.Height, r.X, r.Y)
}

func (v Viewport) String() string {
	return fmt.Sprintf("%dx%d", v.Width, v.Height)
}
