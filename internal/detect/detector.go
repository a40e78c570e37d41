//go:build gocv
// +build gocv

package detect

import (
	"image"
	"image/draw"

	"cardsmith/internal/card"
	"cardsmith/pkg/geometry"

	"gocv.io/x/gocv"
)

// Detector finds card-shaped regions using an edge/contour pass.
type Detector struct {
	opts Options
}

// NewDetector creates a detector with the given options.
func NewDetector(opts Options) *Detector {
	return &Detector{opts: opts.withDefaults()}
}

// Detect proposes card regions in the source image. The image is downscaled
// to the working size for the edge pass; returned bounds are in full source
// pixel space. The pass is deterministic: the same image and options always
// produce the same regions.
func (d *Detector) Detect(src image.Image) ([]card.DetectedRegion, error) {
	if src == nil {
		return nil, card.ErrInvalidInput
	}
	b := src.Bounds()
	srcW, srcH := b.Dx(), b.Dy()
	if srcW == 0 || srcH == 0 {
		return nil, card.ErrInvalidInput
	}

	rgba := image.NewRGBA(image.Rect(0, 0, srcW, srcH))
	draw.Draw(rgba, rgba.Bounds(), src, b.Min, draw.Src)

	mat, err := gocv.ImageToMatRGBA(rgba)
	if err != nil {
		return nil, err
	}
	defer mat.Close()

	// Downscale for the edge pass; remember the factor to map rects back.
	downscale := 1.0
	longest := srcW
	if srcH > longest {
		longest = srcH
	}
	if longest > d.opts.WorkingSize {
		downscale = float64(d.opts.WorkingSize) / float64(longest)
		resized := gocv.NewMat()
		gocv.Resize(mat, &resized, image.Pt(int(float64(srcW)*downscale), int(float64(srcH)*downscale)),
			0, 0, gocv.InterpolationArea)
		mat.Close()
		mat = resized
	}

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(mat, &gray, gocv.ColorRGBAToGray)

	blurred := gocv.NewMat()
	defer blurred.Close()
	gocv.GaussianBlur(gray, &blurred, image.Pt(5, 5), 0, 0, gocv.BorderDefault)

	edges := gocv.NewMat()
	defer edges.Close()
	gocv.Canny(blurred, &edges, 50, 150)

	// Close small gaps so card borders form complete contours.
	kernel := gocv.GetStructuringElement(gocv.MorphRect, image.Pt(3, 3))
	defer kernel.Close()
	closed := gocv.NewMat()
	defer closed.Close()
	gocv.Dilate(edges, &closed, kernel)

	contours := gocv.FindContours(closed, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	cands := make([]Candidate, 0, contours.Size())
	for i := 0; i < contours.Size(); i++ {
		c := contours.At(i)
		rect := gocv.BoundingRect(c)
		if rect.Dx() == 0 || rect.Dy() == 0 {
			continue
		}
		area := gocv.ContourArea(c)
		cands = append(cands, Candidate{
			Bounds: geometry.RectInt{
				X:      int(float64(rect.Min.X) / downscale),
				Y:      int(float64(rect.Min.Y) / downscale),
				Width:  int(float64(rect.Dx()) / downscale),
				Height: int(float64(rect.Dy()) / downscale),
			},
			Rectangularity: area / float64(rect.Dx()*rect.Dy()),
		})
	}

	return ScoreCandidates(cands, srcW, srcH, d.opts), nil
}
