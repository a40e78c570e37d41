package transform

import (
	"testing"

	"cardsmith/pkg/geometry"

	"github.com/stretchr/testify/require"
)

func TestHomographyUnitQuadMapsCorners(t *testing.T) {
	region := geometry.RectInt{Width: 100, Height: 80}
	quad := QuadToPixels(geometry.UnitQuad(), region)

	h, err := HomographyFromQuad(quad, 200, 300)
	require.NoError(t, err)

	checks := []struct {
		dx, dy float64
		sx, sy float64
	}{
		{0, 0, 0, 0},
		{199, 0, 99, 0},
		{199, 299, 99, 79},
		{0, 299, 0, 79},
		{99.5, 149.5, 49.5, 39.5},
	}
	for _, c := range checks {
		sx, sy := h.MapPoint(c.dx, c.dy)
		require.InDelta(t, c.sx, sx, 1e-6)
		require.InDelta(t, c.sy, sy, 1e-6)
	}
}

func TestHomographySkewedQuad(t *testing.T) {
	// A quad leaning right: the top edge is shifted relative to the bottom.
	quad := [4]geometry.Point2D{
		{X: 20, Y: 0},
		{X: 120, Y: 10},
		{X: 100, Y: 150},
		{X: 0, Y: 140},
	}
	h, err := HomographyFromQuad(quad, 100, 140)
	require.NoError(t, err)

	sx, sy := h.MapPoint(0, 0)
	require.InDelta(t, 20.0, sx, 1e-6)
	require.InDelta(t, 0.0, sy, 1e-6)

	sx, sy = h.MapPoint(99, 139)
	require.InDelta(t, 100.0, sx, 1e-6)
	require.InDelta(t, 150.0, sy, 1e-6)
}

func TestHomographyDegenerateQuad(t *testing.T) {
	p := geometry.Point2D{X: 10, Y: 10}
	_, err := HomographyFromQuad([4]geometry.Point2D{p, p, p, p}, 100, 100)
	require.Error(t, err)
}

func TestHomographyInvalidOutputSize(t *testing.T) {
	quad := QuadToPixels(geometry.UnitQuad(), geometry.RectInt{Width: 10, Height: 10})
	_, err := HomographyFromQuad(quad, 0, 100)
	require.Error(t, err)
}

func TestQuadToPixelsRegionOffset(t *testing.T) {
	region := geometry.RectInt{X: 50, Y: 60, Width: 101, Height: 201}
	px := QuadToPixels(geometry.UnitQuad(), region)

	require.Equal(t, geometry.Point2D{X: 50, Y: 60}, px[0])
	require.Equal(t, geometry.Point2D{X: 150, Y: 60}, px[1])
	require.Equal(t, geometry.Point2D{X: 150, Y: 260}, px[2])
	require.Equal(t, geometry.Point2D{X: 50, Y: 260}, px[3])
}
