package transform

import (
	"math"

	"cardsmith/internal/card"
	"cardsmith/pkg/geometry"
)

// AffineMapper maps destination pixels to source pixels through a 2x3
// affine transform.
type AffineMapper struct {
	t geometry.AffineTransform
}

// MapPoint applies the inverse chain to a destination point.
func (a AffineMapper) MapPoint(x, y float64) (float64, float64) {
	p := a.t.Apply(geometry.Point2D{X: x, Y: y})
	return p.X, p.Y
}

// FillMapper builds the destination-to-source mapping for the interactive
// fill flow. The forward chain places the source region on the output
// surface with rotation, then scale, then translation, all about the surface
// center. The base scale fits the source height to the surface height, which
// is what AutoFit's coverage guarantee assumes.
//
// srcRegion is the cropped source area in pixels; dstW/dstH is the output
// surface. Position pans in source pixels. The mapping depends only on these
// inputs, so export at any resolution reproduces the preview geometry.
func FillMapper(m card.TransformModel, srcRegion geometry.RectInt, dstW, dstH int) AffineMapper {
	scale := geometry.Clamp(m.Scale, card.MinScale, card.MaxScale)
	k := scale * float64(dstH) / float64(srcRegion.Height)

	srcCx := float64(srcRegion.X) + float64(srcRegion.Width)/2
	srcCy := float64(srcRegion.Y) + float64(srcRegion.Height)/2
	dstCx := float64(dstW) / 2
	dstCy := float64(dstH) / 2

	// Forward: q = Cdst + R(theta) * k * (p - Csrc + pos).
	// Inverse: p = Csrc - pos + R(-theta)/k * (q - Cdst).
	inv := geometry.Translation(srcCx-m.Position.X, srcCy-m.Position.Y).
		Compose(geometry.Scaling(1/k, 1/k)).
		Compose(geometry.Rotation(-m.Rotation * math.Pi / 180)).
		Compose(geometry.Translation(-dstCx, -dstCy))

	return AffineMapper{t: inv}
}

// ResampleMapper maps the output rectangle directly onto the source region,
// stretching to the output dimensions. Used for the identity transform path.
func ResampleMapper(srcRegion geometry.RectInt, dstW, dstH int) AffineMapper {
	sx := float64(srcRegion.Width) / float64(dstW)
	sy := float64(srcRegion.Height) / float64(dstH)
	t := geometry.Translation(float64(srcRegion.X), float64(srcRegion.Y)).
		Compose(geometry.Scaling(sx, sy))
	return AffineMapper{t: t}
}

// CropRegion resolves a normalized crop rectangle against a source image of
// the given size. Out-of-range values are clamped; a degenerate crop falls
// back to the full image.
func CropRegion(crop geometry.Rect, srcW, srcH int) geometry.RectInt {
	x := geometry.Clamp(crop.X, 0, 1)
	y := geometry.Clamp(crop.Y, 0, 1)
	w := geometry.Clamp(crop.Width, 0, 1-x)
	h := geometry.Clamp(crop.Height, 0, 1-y)

	r := geometry.RectInt{
		X:      int(math.Round(x * float64(srcW))),
		Y:      int(math.Round(y * float64(srcH))),
		Width:  int(math.Round(w * float64(srcW))),
		Height: int(math.Round(h * float64(srcH))),
	}
	if r.Empty() {
		return geometry.RectInt{Width: srcW, Height: srcH}
	}
	return r.Clip(srcW, srcH)
}
