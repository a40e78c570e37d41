package transform

import (
	"cardsmith/pkg/geometry"
)

// HandleRadius is the hit-test radius for corner handles, in display pixels.
const HandleRadius = 12.0

// HitTestHandle returns the corner whose display position lies within radius
// of the pointer, or false if none. Ties resolve to the first corner in the
// stable enumeration order (top-left, top-right, bottom-right, bottom-left).
// displayW/displayH is the size the quad's image occupies on screen.
func HitTestHandle(q geometry.Quad, pointer geometry.Point2D, displayW, displayH, radius float64) (geometry.Corner, bool) {
	best := geometry.CornerTopLeft
	bestDist := 0.0
	found := false
	for i, c := range q.Corners() {
		pos := geometry.Point2D{X: c.X * displayW, Y: c.Y * displayH}
		d := pos.Distance(pointer)
		if d <= radius && (!found || d < bestDist) {
			bestDist = d
			best = geometry.Corner(i)
			found = true
		}
	}
	return best, found
}

// DragCorner moves one corner to the pointer position in display space,
// clamped to the image. The other corners are deliberately untouched; no
// convexity correction is applied.
func DragCorner(q geometry.Quad, c geometry.Corner, pointer geometry.Point2D, displayW, displayH float64) geometry.Quad {
	if displayW <= 0 || displayH <= 0 {
		return q
	}
	return q.WithCorner(c, geometry.Point2D{
		X: pointer.X / displayW,
		Y: pointer.Y / displayH,
	})
}
