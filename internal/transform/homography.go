// Package transform builds the pixel mappings used for preview and export:
// a 4-point projective transform for perspective correction and the
// rotate/scale/translate chain for the interactive fill flow. All mappings
// are expressed destination-to-source so rendering is a single inverse
// sampling pass.
package transform

import (
	"fmt"
	"math"

	"cardsmith/pkg/geometry"

	"gonum.org/v1/gonum/mat"
)

// Mapper maps a destination pixel to source-image coordinates.
type Mapper interface {
	MapPoint(x, y float64) (sx, sy float64)
}

// Homography is a 3x3 projective transform in row-major order with the
// bottom-right element fixed at 1.
type Homography [9]float64

// MapPoint applies the homography to a destination point.
func (h Homography) MapPoint(x, y float64) (float64, float64) {
	denom := h[6]*x + h[7]*y + h[8]
	if denom == 0 {
		return math.Inf(1), math.Inf(1)
	}
	sx := (h[0]*x + h[1]*y + h[2]) / denom
	sy := (h[3]*x + h[4]*y + h[5]) / denom
	return sx, sy
}

// HomographyFromQuad computes the projective transform taking the output
// rectangle dstW x dstH onto the given source quad (in source pixels). It is
// the standard 4-point DLT: eight unknowns solved from the four corner
// correspondences.
func HomographyFromQuad(quad [4]geometry.Point2D, dstW, dstH int) (Homography, error) {
	if dstW <= 0 || dstH <= 0 {
		return Homography{}, fmt.Errorf("invalid output size %dx%d", dstW, dstH)
	}

	dst := [4]geometry.Point2D{
		{X: 0, Y: 0},
		{X: float64(dstW - 1), Y: 0},
		{X: float64(dstW - 1), Y: float64(dstH - 1)},
		{X: 0, Y: float64(dstH - 1)},
	}

	// Build the 8x8 system A*h = b with h22 = 1:
	//   sx = (h0 x + h1 y + h2) / (h6 x + h7 y + 1)
	//   sy = (h3 x + h4 y + h5) / (h6 x + h7 y + 1)
	A := mat.NewDense(8, 8, nil)
	b := mat.NewVecDense(8, nil)
	for i := 0; i < 4; i++ {
		x, y := dst[i].X, dst[i].Y
		sx, sy := quad[i].X, quad[i].Y
		r := 2 * i

		A.Set(r, 0, x)
		A.Set(r, 1, y)
		A.Set(r, 2, 1)
		A.Set(r, 6, -x*sx)
		A.Set(r, 7, -y*sx)
		b.SetVec(r, sx)

		A.Set(r+1, 3, x)
		A.Set(r+1, 4, y)
		A.Set(r+1, 5, 1)
		A.Set(r+1, 6, -x*sy)
		A.Set(r+1, 7, -y*sy)
		b.SetVec(r+1, sy)
	}

	var h mat.VecDense
	if err := h.SolveVec(A, b); err != nil {
		return Homography{}, fmt.Errorf("degenerate quad: %w", err)
	}

	return Homography{
		h.AtVec(0), h.AtVec(1), h.AtVec(2),
		h.AtVec(3), h.AtVec(4), h.AtVec(5),
		h.AtVec(6), h.AtVec(7), 1,
	}, nil
}

// QuadToPixels converts a normalized quad to pixel coordinates within the
// given region of the source image, in DLT corner order (top-left,
// top-right, bottom-right, bottom-left).
func QuadToPixels(q geometry.Quad, region geometry.RectInt) [4]geometry.Point2D {
	scale := func(p geometry.Point2D) geometry.Point2D {
		return geometry.Point2D{
			X: float64(region.X) + p.X*float64(region.Width-1),
			Y: float64(region.Y) + p.Y*float64(region.Height-1),
		}
	}
	return [4]geometry.Point2D{
		scale(q.TopLeft),
		scale(q.TopRight),
		scale(q.BottomRight),
		scale(q.BottomLeft),
	}
}
