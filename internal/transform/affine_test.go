package transform

import (
	"testing"

	"cardsmith/internal/card"
	"cardsmith/pkg/geometry"

	"github.com/stretchr/testify/require"
)

func TestFillMapperCenterMapsToCenter(t *testing.T) {
	region := geometry.RectInt{Width: 1000, Height: 700}
	m := card.DefaultTransform()

	mapper := FillMapper(m, region, 750, 1050)
	sx, sy := mapper.MapPoint(375, 525)
	require.InDelta(t, 500.0, sx, 1e-9)
	require.InDelta(t, 350.0, sy, 1e-9)
}

func TestFillMapperScaleOneSpansSourceHeight(t *testing.T) {
	region := geometry.RectInt{Width: 1000, Height: 700}
	m := card.DefaultTransform()

	mapper := FillMapper(m, region, 750, 1050)
	_, top := mapper.MapPoint(375, 0)
	_, bottom := mapper.MapPoint(375, 1050)
	require.InDelta(t, 0.0, top, 1e-9)
	require.InDelta(t, 700.0, bottom, 1e-9)
}

func TestFillMapperZoomShrinksSampledArea(t *testing.T) {
	region := geometry.RectInt{Width: 1000, Height: 700}
	m := card.DefaultTransform()
	m.Scale = 2

	mapper := FillMapper(m, region, 750, 1050)
	_, top := mapper.MapPoint(375, 0)
	_, bottom := mapper.MapPoint(375, 1050)
	require.InDelta(t, 175.0, top, 1e-9)
	require.InDelta(t, 525.0, bottom, 1e-9)
}

func TestFillMapperPanShiftsSource(t *testing.T) {
	region := geometry.RectInt{Width: 1000, Height: 700}
	m := card.DefaultTransform()
	m.Position = geometry.Point2D{X: 40, Y: -25}

	mapper := FillMapper(m, region, 750, 1050)
	sx, sy := mapper.MapPoint(375, 525)
	require.InDelta(t, 460.0, sx, 1e-9)
	require.InDelta(t, 375.0, sy, 1e-9)
}

func TestFillMapperRotationPreservesCenter(t *testing.T) {
	region := geometry.RectInt{Width: 800, Height: 600}
	m := card.DefaultTransform()
	m.Rotation = 37

	mapper := FillMapper(m, region, 400, 560)
	sx, sy := mapper.MapPoint(200, 280)
	require.InDelta(t, 400.0, sx, 1e-9)
	require.InDelta(t, 300.0, sy, 1e-9)
}

func TestResampleMapperCorners(t *testing.T) {
	region := geometry.RectInt{X: 10, Y: 20, Width: 100, Height: 50}
	mapper := ResampleMapper(region, 200, 100)

	sx, sy := mapper.MapPoint(0, 0)
	require.InDelta(t, 10.0, sx, 1e-9)
	require.InDelta(t, 20.0, sy, 1e-9)

	sx, sy = mapper.MapPoint(200, 100)
	require.InDelta(t, 110.0, sx, 1e-9)
	require.InDelta(t, 70.0, sy, 1e-9)
}

func TestCropRegion(t *testing.T) {
	r := CropRegion(geometry.Rect{X: 0.25, Y: 0.25, Width: 0.5, Height: 0.5}, 400, 200)
	require.Equal(t, geometry.RectInt{X: 100, Y: 50, Width: 200, Height: 100}, r)

	// Degenerate crop falls back to the full image.
	r = CropRegion(geometry.Rect{}, 400, 200)
	require.Equal(t, geometry.RectInt{Width: 400, Height: 200}, r)

	// Out-of-range values are clamped.
	r = CropRegion(geometry.Rect{X: -1, Y: 0, Width: 5, Height: 5}, 400, 200)
	require.Equal(t, geometry.RectInt{Width: 400, Height: 200}, r)
}
