package geometry

// Corner identifies one of the four quad corners. The enumeration order is
// the stable hit-test tie-break order: top-left, top-right, bottom-right,
// bottom-left.
type Corner int

const (
	CornerTopLeft Corner = iota
	CornerTopRight
	CornerBottomRight
	CornerBottomLeft
)

func (c Corner) String() string {
	switch c {
	case CornerTopLeft:
		return "topLeft"
	case CornerTopRight:
		return "topRight"
	case CornerBottomRight:
		return "bottomRight"
	case CornerBottomLeft:
		return "bottomLeft"
	default:
		return "unknown"
	}
}

// Quad is a quadrilateral given by four corners in normalized [0,1]x[0,1]
// image coordinates. The quad is not required to be convex; a
// self-intersecting quad is accepted as (degenerate) user input.
type Quad struct {
	TopLeft     Point2D `json:"topLeft"`
	TopRight    Point2D `json:"topRight"`
	BottomLeft  Point2D `json:"bottomLeft"`
	BottomRight Point2D `json:"bottomRight"`
}

// UnitQuad returns the full-image quad.
func UnitQuad() Quad {
	return Quad{
		TopLeft:     Point2D{X: 0, Y: 0},
		TopRight:    Point2D{X: 1, Y: 0},
		BottomLeft:  Point2D{X: 0, Y: 1},
		BottomRight: Point2D{X: 1, Y: 1},
	}
}

// Corner returns the given corner point.
func (q Quad) Corner(c Corner) Point2D {
	switch c {
	case CornerTopLeft:
		return q.TopLeft
	case CornerTopRight:
		return q.TopRight
	case CornerBottomRight:
		return q.BottomRight
	default:
		return q.BottomLeft
	}
}

// WithCorner returns a copy of the quad with one corner replaced. The point
// is clamped to [0,1]x[0,1]; the other corners are untouched.
func (q Quad) WithCorner(c Corner, p Point2D) Quad {
	p = p.Clamp01()
	switch c {
	case CornerTopLeft:
		q.TopLeft = p
	case CornerTopRight:
		q.TopRight = p
	case CornerBottomRight:
		q.BottomRight = p
	case CornerBottomLeft:
		q.BottomLeft = p
	}
	return q
}

// Corners returns the corners in enumeration order.
func (q Quad) Corners() [4]Point2D {
	return [4]Point2D{q.TopLeft, q.TopRight, q.BottomRight, q.BottomLeft}
}

// IsUnit reports whether the quad equals the full-image quad within eps.
func (q Quad) IsUnit(eps float64) bool {
	u := UnitQuad()
	for i, c := range q.Corners() {
		if c.Distance(u.Corners()[i]) > eps {
			return false
		}
	}
	return true
}

// PointAt bilinearly interpolates a point inside the quad. u runs left to
// right, v runs top to bottom, both in [0,1].
func (q Quad) PointAt(u, v float64) Point2D {
	top := q.TopLeft.Lerp(q.TopRight, u)
	bottom := q.BottomLeft.Lerp(q.BottomRight, u)
	return top.Lerp(bottom, v)
}

// GridLines returns the interior grid lines of the quad at n divisions per
// axis, each line as a start/end pair. n=3 yields the rule-of-thirds grid.
// Lines follow the quad edges by bilinear interpolation, so they reflect the
// current perspective.
func (q Quad) GridLines(n int) [][2]Point2D {
	if n < 2 {
		return nil
	}
	lines := make([][2]Point2D, 0, 2*(n-1))
	for i := 1; i < n; i++ {
		t := float64(i) / float64(n)
		// Vertical line: top edge point to bottom edge point.
		lines = append(lines, [2]Point2D{q.PointAt(t, 0), q.PointAt(t, 1)})
		// Horizontal line: left edge point to right edge point.
		lines = append(lines, [2]Point2D{q.PointAt(0, t), q.PointAt(1, t)})
	}
	return lines
}
