package transform

import (
	"testing"

	"cardsmith/pkg/geometry"

	"github.com/stretchr/testify/require"
)

func TestHitTestHandleFindsCorner(t *testing.T) {
	q := geometry.UnitQuad()

	c, ok := HitTestHandle(q, geometry.Point2D{X: 5, Y: 5}, 400, 300, HandleRadius)
	require.True(t, ok)
	require.Equal(t, geometry.CornerTopLeft, c)

	c, ok = HitTestHandle(q, geometry.Point2D{X: 395, Y: 297}, 400, 300, HandleRadius)
	require.True(t, ok)
	require.Equal(t, geometry.CornerBottomRight, c)
}

func TestHitTestHandleMissesFarPointer(t *testing.T) {
	_, ok := HitTestHandle(geometry.UnitQuad(), geometry.Point2D{X: 200, Y: 150}, 400, 300, HandleRadius)
	require.False(t, ok)
}

func TestHitTestHandleRadiusBoundary(t *testing.T) {
	// Exactly at the radius still grabs the handle.
	c, ok := HitTestHandle(geometry.UnitQuad(), geometry.Point2D{X: HandleRadius, Y: 0}, 400, 300, HandleRadius)
	require.True(t, ok)
	require.Equal(t, geometry.CornerTopLeft, c)
}

func TestHitTestHandleTieBreak(t *testing.T) {
	// Equidistant from top-left and top-right: the earlier corner in
	// enumeration order wins.
	c, ok := HitTestHandle(geometry.UnitQuad(), geometry.Point2D{X: 50, Y: 0}, 100, 100, 60)
	require.True(t, ok)
	require.Equal(t, geometry.CornerTopLeft, c)
}

func TestDragCornerClampsToImage(t *testing.T) {
	q := DragCorner(geometry.UnitQuad(), geometry.CornerTopRight, geometry.Point2D{X: 500, Y: -20}, 400, 300)
	require.Equal(t, geometry.Point2D{X: 1, Y: 0}, q.TopRight)

	// Other corners untouched.
	require.Equal(t, geometry.Point2D{X: 0, Y: 0}, q.TopLeft)
	require.Equal(t, geometry.Point2D{X: 1, Y: 1}, q.BottomRight)
}

func TestDragCornerZeroDisplay(t *testing.T) {
	q := geometry.UnitQuad()
	require.Equal(t, q, DragCorner(q, geometry.CornerTopLeft, geometry.Point2D{X: 10, Y: 10}, 0, 0))
}
