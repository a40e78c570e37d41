// Package export produces final card bitmaps from a source image plus a
// transform model or detected region. Rendering is a single inverse-mapped
// bilinear sampling pass at the requested output resolution, independent of
// any preview, and is fully deterministic: identical inputs produce
// byte-identical output.
package export

import (
	"bytes"
	"fmt"
	"image"
	"image/color"

	"cardsmith/internal/card"
	"cardsmith/internal/enhance"
	"cardsmith/internal/transform"
	"cardsmith/pkg/geometry"

	"github.com/disintegration/imaging"
	xdraw "golang.org/x/image/draw"
)

const unitQuadEps = 1e-9

// RenderError reports a failed render with enough context to retry the
// specific item.
type RenderError struct {
	RegionID string
	Err      error
}

func (e *RenderError) Error() string {
	if e.RegionID != "" {
		return fmt.Sprintf("export region %s: %v", e.RegionID, e.Err)
	}
	return fmt.Sprintf("export: %v", e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

// Renderer renders cards at a fixed output size.
type Renderer struct {
	OutputWidth  int
	OutputHeight int
	// MaxEnhancement caps enhancement percentages before application.
	MaxEnhancement float64
}

// NewRenderer creates a renderer for the given output dimensions.
func NewRenderer(width, height int) *Renderer {
	return &Renderer{
		OutputWidth:    width,
		OutputHeight:   height,
		MaxEnhancement: card.MaxEnhancementPercent,
	}
}

// Render produces the full-card bitmap for a transform model at the
// renderer's output size. The geometry path is chosen from the model: a
// non-unit perspective quad runs through the 4-point homography, the
// interactive fill parameters run through the affine chain, and the
// identity model is a plain resample. The enhancement chain runs last.
func (r *Renderer) Render(src image.Image, m card.TransformModel) (*image.NRGBA, error) {
	if src == nil {
		return nil, &RenderError{Err: card.ErrInvalidInput}
	}
	b := src.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return nil, &RenderError{Err: card.ErrInvalidInput}
	}
	w, h := r.OutputWidth, r.OutputHeight
	if w <= 0 || h <= 0 {
		return nil, &RenderError{Err: fmt.Errorf("invalid output size %dx%d", w, h)}
	}

	crop := transform.CropRegion(m.Crop, b.Dx(), b.Dy())

	var mapper transform.Mapper
	switch {
	case !m.Perspective.IsUnit(unitQuadEps):
		quad := transform.QuadToPixels(m.Perspective, crop)
		hom, err := transform.HomographyFromQuad(quad, w, h)
		if err != nil {
			return nil, &RenderError{Err: err}
		}
		mapper = hom
	case m.Rotation != 0 || m.Scale != 1 || m.Position != (geometry.Point2D{}):
		mapper = transform.FillMapper(m, crop, w, h)
	default:
		mapper = transform.ResampleMapper(crop, w, h)
	}

	out := sample(src, mapper, w, h)

	chain := enhance.NewChain(m.Enhancements, r.MaxEnhancement)
	return imaging.Clone(chain.Apply(out)), nil
}

// RenderPNG renders the model and encodes the result as PNG.
func (r *Renderer) RenderPNG(src image.Image, m card.TransformModel) ([]byte, error) {
	img, err := r.Render(src, m)
	if err != nil {
		return nil, err
	}
	return encodePNG(img)
}

// ExtractRegion crops a detected region from the source and scales it to
// the standardized output size. The region path is a plain resize, no
// perspective; confidence and provenance carry through to the card.
func (r *Renderer) ExtractRegion(src image.Image, sourceID string, region card.DetectedRegion) (card.ExtractedCard, error) {
	if src == nil {
		return card.ExtractedCard{}, &RenderError{RegionID: region.ID, Err: card.ErrInvalidInput}
	}
	b := src.Bounds()
	bounds := region.Bounds.Clip(b.Dx(), b.Dy())
	if bounds.Empty() {
		return card.ExtractedCard{}, &RenderError{RegionID: region.ID, Err: fmt.Errorf("region outside image")}
	}

	cropped := imaging.Crop(src, image.Rect(
		b.Min.X+bounds.X,
		b.Min.Y+bounds.Y,
		b.Min.X+bounds.X+bounds.Width,
		b.Min.Y+bounds.Y+bounds.Height,
	))

	scaled := image.NewNRGBA(image.Rect(0, 0, r.OutputWidth, r.OutputHeight))
	xdraw.CatmullRom.Scale(scaled, scaled.Bounds(), cropped, cropped.Bounds(), xdraw.Src, nil)

	png, err := encodePNG(scaled)
	if err != nil {
		return card.ExtractedCard{}, &RenderError{RegionID: region.ID, Err: err}
	}

	return card.ExtractedCard{
		PNG:        png,
		Confidence: region.Confidence,
		Bounds:     bounds,
		SourceID:   sourceID,
	}, nil
}

// sample fills a w x h image by mapping each destination pixel to source
// coordinates and sampling bilinearly. Destinations mapping outside the
// source are opaque black.
func sample(src image.Image, mapper transform.Mapper, w, h int) *image.NRGBA {
	out := image.NewNRGBA(image.Rect(0, 0, w, h))
	sb := src.Bounds()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			sx, sy := mapper.MapPoint(float64(x), float64(y))
			out.SetNRGBA(x, y, bilinearSample(src, sx+float64(sb.Min.X), sy+float64(sb.Min.Y)))
		}
	}
	return out
}

func bilinearSample(src image.Image, x, y float64) color.NRGBA {
	b := src.Bounds()
	// The image extent is [Min, Max); a coordinate inside the last pixel
	// still samples it, with the neighbor clamped below.
	if x < float64(b.Min.X) || y < float64(b.Min.Y) ||
		x >= float64(b.Max.X) || y >= float64(b.Max.Y) {
		return color.NRGBA{A: 255}
	}
	x0, y0 := int(x), int(y)
	x1, y1 := x0+1, y0+1
	if x1 >= b.Max.X {
		x1 = b.Max.X - 1
	}
	if y1 >= b.Max.Y {
		y1 = b.Max.Y - 1
	}
	fx := x - float64(x0)
	fy := y - float64(y0)

	c00 := toFloatRGBA(src.At(x0, y0))
	c10 := toFloatRGBA(src.At(x1, y0))
	c01 := toFloatRGBA(src.At(x0, y1))
	c11 := toFloatRGBA(src.At(x1, y1))

	return color.NRGBA{
		R: uint8(lerp(lerp(c00.r, c10.r, fx), lerp(c01.r, c11.r, fx), fy) + 0.5),
		G: uint8(lerp(lerp(c00.g, c10.g, fx), lerp(c01.g, c11.g, fx), fy) + 0.5),
		B: uint8(lerp(lerp(c00.b, c10.b, fx), lerp(c01.b, c11.b, fx), fy) + 0.5),
		A: uint8(lerp(lerp(c00.a, c10.a, fx), lerp(c01.a, c11.a, fx), fy) + 0.5),
	}
}

type floatRGBA struct{ r, g, b, a float64 }

func toFloatRGBA(c color.Color) floatRGBA {
	r, g, b, a := c.RGBA()
	return floatRGBA{
		r: float64(r >> 8),
		g: float64(g >> 8),
		b: float64(b >> 8),
		a: float64(a >> 8),
	}
}

func lerp(a, b, t float64) float64 { return a + (b-a)*t }

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
