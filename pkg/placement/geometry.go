// Geometric helpers for label boxes.

package placement

import "math"

// Rect represents an axis-aligned rectangle in map units.
type Rect struct {
	X, Y float64 // Center
	W, H float64 // Full width and height
}

// RectOverlap returns the overlap area between two rectangles.
// Returns 0 if they don't overlap.
func RectOverlap(a, b Rect) float64 {
	dx := math.Abs(a.X - b.X)
	dy := math.Abs(a.Y - b.Y)

	overlapX := (a.W+b.W)/2 - dx
	overlapY := (a.H+b.H)/2 - dy
	if overlapX <= 0 || overlapY <= 0 {
		return 0
	}
	return overlapX * overlapY
}

// Contains reports whether (x, y) lies inside r.
func (r Rect) Contains(x, y float64) bool {
	return math.Abs(x-r.X) <= r.W/2 && math.Abs(y-r.Y) <= r.H/2
}

// beyond reports whether a label at (lx, ly) is far enough from its anchor
// to need a leader line. Either axis alone may exceed the threshold.
func beyond(lx, ly, ax, ay, threshold float64) bool {
	return math.Abs(lx-ax) > threshold || math.Abs(ly-ay) > threshold
}
