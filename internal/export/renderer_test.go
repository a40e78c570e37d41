package export

import (
	"bytes"
	"image"
	"image/color"
	"testing"

	"cardsmith/internal/card"
	"cardsmith/pkg/geometry"

	"github.com/stretchr/testify/require"
)

func solidImage(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

var red = color.NRGBA{R: 200, G: 30, B: 30, A: 255}

func TestRenderIdentityIsPlainResample(t *testing.T) {
	src := solidImage(10, 10, red)
	r := NewRenderer(20, 28)

	out, err := r.Render(src, card.DefaultTransform())
	require.NoError(t, err)
	require.Equal(t, 20, out.Bounds().Dx())
	require.Equal(t, 28, out.Bounds().Dy())
	require.Equal(t, red, out.NRGBAAt(0, 0))
	require.Equal(t, red, out.NRGBAAt(10, 14))
	require.Equal(t, red, out.NRGBAAt(19, 27))
}

func TestRenderIdentityKeepsEdgePixels(t *testing.T) {
	// The last output row and column map into the last source pixel, not
	// past it; they must keep the source color, never the out-of-cover
	// black fill.
	src := solidImage(10, 10, red)
	green := color.NRGBA{R: 20, G: 220, B: 20, A: 255}
	for i := 0; i < 10; i++ {
		src.SetNRGBA(9, i, green)
		src.SetNRGBA(i, 9, green)
	}
	r := NewRenderer(20, 28)

	out, err := r.Render(src, card.DefaultTransform())
	require.NoError(t, err)
	for y := 0; y < 28; y++ {
		require.Equal(t, green, out.NRGBAAt(19, y), "right column y=%d", y)
	}
	for x := 0; x < 20; x++ {
		require.Equal(t, green, out.NRGBAAt(x, 27), "bottom row x=%d", x)
	}
}

func TestRenderPNGDeterministic(t *testing.T) {
	src := solidImage(40, 56, red)
	// Make the content non-trivial.
	for y := 0; y < 56; y++ {
		for x := 0; x < 20; x++ {
			src.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 6), G: uint8(y * 4), B: 90, A: 255})
		}
	}
	r := NewRenderer(30, 42)
	m := card.DefaultTransform()
	m.Rotation = 5
	m.Scale = 1.3
	m.Enhancements.Contrast = 120

	a, err := r.RenderPNG(src, m)
	require.NoError(t, err)
	b, err := r.RenderPNG(src, m)
	require.NoError(t, err)
	require.True(t, bytes.Equal(a, b))
}

func TestRenderNilSource(t *testing.T) {
	r := NewRenderer(20, 28)
	_, err := r.Render(nil, card.DefaultTransform())
	require.ErrorIs(t, err, card.ErrInvalidInput)
}

func TestRenderInvalidOutputSize(t *testing.T) {
	r := &Renderer{OutputWidth: 0, OutputHeight: 10, MaxEnhancement: 200}
	_, err := r.Render(solidImage(10, 10, red), card.DefaultTransform())
	require.Error(t, err)
}

func TestRenderPerspectiveSamplesQuad(t *testing.T) {
	// Left half red, right half blue; a quad over the left half must
	// produce an all-red card.
	src := solidImage(20, 20, red)
	blue := color.NRGBA{R: 20, G: 20, B: 220, A: 255}
	for y := 0; y < 20; y++ {
		for x := 10; x < 20; x++ {
			src.SetNRGBA(x, y, blue)
		}
	}

	m := card.DefaultTransform()
	m.Perspective = geometry.Quad{
		TopLeft:     geometry.Point2D{X: 0, Y: 0},
		TopRight:    geometry.Point2D{X: 0.45, Y: 0},
		BottomRight: geometry.Point2D{X: 0.45, Y: 1},
		BottomLeft:  geometry.Point2D{X: 0, Y: 1},
	}
	r := NewRenderer(10, 14)

	out, err := r.Render(src, m)
	require.NoError(t, err)
	require.Equal(t, red, out.NRGBAAt(5, 7))
	require.Equal(t, red, out.NRGBAAt(9, 13))
}

func TestRenderOutOfCoverIsBlack(t *testing.T) {
	src := solidImage(20, 20, red)
	m := card.DefaultTransform()
	// Pan far off the source.
	m.Position = geometry.Point2D{X: 10000, Y: 0}

	r := NewRenderer(10, 14)
	out, err := r.Render(src, m)
	require.NoError(t, err)
	require.Equal(t, color.NRGBA{A: 255}, out.NRGBAAt(5, 7))
}

func TestExtractRegionScalesToOutput(t *testing.T) {
	src := solidImage(100, 100, red)
	r := NewRenderer(30, 42)
	region := card.DetectedRegion{
		ID:         "r1",
		Bounds:     geometry.RectInt{X: 10, Y: 10, Width: 50, Height: 70},
		Confidence: 0.85,
	}

	c, err := r.ExtractRegion(src, "scan.png", region)
	require.NoError(t, err)
	require.NotEmpty(t, c.PNG)
	require.Equal(t, 0.85, c.Confidence)
	require.Equal(t, "scan.png", c.SourceID)
	require.Equal(t, region.Bounds, c.Bounds)
}

func TestExtractRegionOutsideImage(t *testing.T) {
	src := solidImage(100, 100, red)
	r := NewRenderer(30, 42)
	region := card.DetectedRegion{
		ID:     "r9",
		Bounds: geometry.RectInt{X: 500, Y: 500, Width: 50, Height: 70},
	}

	_, err := r.ExtractRegion(src, "scan.png", region)
	require.Error(t, err)
	require.Contains(t, err.Error(), "r9")
}

func TestExtractAllReportsPerItem(t *testing.T) {
	src := solidImage(100, 100, red)
	r := NewRenderer(30, 42)
	regions := []card.DetectedRegion{
		{ID: "r1", Bounds: geometry.RectInt{X: 10, Y: 10, Width: 50, Height: 70}},
		{ID: "r2", Bounds: geometry.RectInt{X: 500, Y: 500, Width: 50, Height: 70}},
		{ID: "r3", Bounds: geometry.RectInt{X: 20, Y: 20, Width: 40, Height: 56}},
	}

	results := r.ExtractAll(src, "scan.png", regions)
	require.Len(t, results, 3)
	require.NoError(t, results[0].Err)
	require.Error(t, results[1].Err)
	require.NoError(t, results[2].Err)
	require.Equal(t, "r2", results[1].Region.ID)
}

func TestExtractAllAsyncCarriesGeneration(t *testing.T) {
	src := solidImage(100, 100, red)
	r := NewRenderer(30, 42)
	regions := []card.DetectedRegion{
		{ID: "r1", Bounds: geometry.RectInt{X: 10, Y: 10, Width: 50, Height: 70}},
	}

	done := make(chan uint64, 1)
	r.ExtractAllAsync(src, "scan.png", regions, 7, func(gen uint64, results []ExtractResult) {
		require.Len(t, results, 1)
		done <- gen
	})
	require.Equal(t, uint64(7), <-done)
}
