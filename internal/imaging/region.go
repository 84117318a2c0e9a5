package imaging

import (
	"fmt"
	"image"
	"math"
)

// Region is a rectangle in pixel coordinates. (X1,Y1) is inclusive and
// (X2,Y2) exclusive. The zero Region means "the whole image".
type Region struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

// IsZero reports whether r is the zero Region.
func (r Region) IsZero() bool {
	return r == Region{}
}

// Rect converts r to an image.Rectangle.
func (r Region) Rect() image.Rectangle {
	return image.Rect(r.X1, r.Y1, r.X2, r.Y2)
}

// Scaled multiplies every coordinate by s. The min corner is floored and
// the max corner rounded, the rule ToGray uses for the frame size, so a
// region covering the whole image covers the whole scaled frame. A
// non-empty region stays at least one pixel wide and tall.
func (r Region) Scaled(s float64) Region {
	if s == 1 {
		return r
	}
	floor := func(v int) int { return int(math.Floor(float64(v) * s)) }
	round := func(v int) int { return int(math.Round(float64(v) * s)) }

	out := Region{X1: floor(r.X1), Y1: floor(r.Y1), X2: round(r.X2), Y2: round(r.Y2)}
	if r.X2 > r.X1 && out.X2 <= out.X1 {
		out.X2 = out.X1 + 1
	}
	if r.Y2 > r.Y1 && out.Y2 <= out.Y1 {
		out.Y2 = out.Y1 + 1
	}
	return out
}

// Validate checks that r is non-empty and lies inside bounds.
func (r Region) Validate(bounds image.Rectangle) error {
	if r.X1 >= r.X2 || r.Y1 >= r.Y2 {
		return fmt.Errorf("invalid region: x1 must be < x2, y1 must be < y2")
	}
	if !r.Rect().In(bounds) {
		return fmt.Errorf("region (%d,%d)-(%d,%d) outside image bounds (%d,%d)-(%d,%d)",
			r.X1, r.Y1, r.X2, r.Y2, bounds.Min.X, bounds.Min.Y, bounds.Max.X, bounds.Max.Y)
	}
	return nil
}
