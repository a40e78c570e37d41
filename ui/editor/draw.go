// Package editor provides the interactive editing widgets: the pan/zoom
// card surface, the perspective corner editor, and the multi-card region
// canvas. The widgets draw through fyne rasters and keep all geometry in
// the shared transform code so previews match the exported pixels.
package editor

import (
	"image"
	"image/color"

	"cardsmith/pkg/geometry"
)

// drawLine draws a 1px line between two points using integer DDA stepping.
func drawLine(img *image.RGBA, x0, y0, x1, y1 int, c color.RGBA) {
	dx := x1 - x0
	dy := y1 - y0
	steps := abs(dx)
	if abs(dy) > steps {
		steps = abs(dy)
	}
	if steps == 0 {
		setPixel(img, x0, y0, c)
		return
	}
	fx := float64(x0)
	fy := float64(y0)
	sx := float64(dx) / float64(steps)
	sy := float64(dy) / float64(steps)
	for i := 0; i <= steps; i++ {
		setPixel(img, int(fx+0.5), int(fy+0.5), c)
		fx += sx
		fy += sy
	}
}

// drawRect draws a rectangle outline with the given stroke thickness.
func drawRect(img *image.RGBA, r geometry.RectInt, thickness int, c color.RGBA) {
	for t := 0; t < thickness; t++ {
		x0, y0 := r.X+t, r.Y+t
		x1, y1 := r.X+r.Width-1-t, r.Y+r.Height-1-t
		if x1 <= x0 || y1 <= y0 {
			return
		}
		drawLine(img, x0, y0, x1, y0, c)
		drawLine(img, x0, y1, x1, y1, c)
		drawLine(img, x0, y0, x0, y1, c)
		drawLine(img, x1, y0, x1, y1, c)
	}
}

// fillCircle fills a disc, used for corner handles.
func fillCircle(img *image.RGBA, cx, cy, radius int, c color.RGBA) {
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			if dx*dx+dy*dy <= radius*radius {
				setPixel(img, cx+dx, cy+dy, c)
			}
		}
	}
}

func setPixel(img *image.RGBA, x, y int, c color.RGBA) {
	if !(image.Point{X: x, Y: y}).In(img.Bounds()) {
		return
	}
	img.SetRGBA(x, y, c)
}

// blitScaled draws src scaled into the dst rectangle with nearest-neighbor
// sampling. Previews favor speed; export uses the bilinear path.
func blitScaled(dst *image.RGBA, dstRect image.Rectangle, src image.Image) {
	sb := src.Bounds()
	dw := dstRect.Dx()
	dh := dstRect.Dy()
	if dw <= 0 || dh <= 0 || sb.Dx() == 0 || sb.Dy() == 0 {
		return
	}
	for y := 0; y < dh; y++ {
		sy := sb.Min.Y + y*sb.Dy()/dh
		for x := 0; x < dw; x++ {
			sx := sb.Min.X + x*sb.Dx()/dw
			dst.Set(dstRect.Min.X+x, dstRect.Min.Y+y, src.At(sx, sy))
		}
	}
}

// fitRect returns the largest rectangle of the given aspect (width/height)
// centered inside a w x h area.
func fitRect(w, h int, aspect float64) image.Rectangle {
	if w <= 0 || h <= 0 || aspect <= 0 {
		return image.Rectangle{}
	}
	fw := float64(w)
	fh := float64(h)
	if fw/fh > aspect {
		fw = fh * aspect
	} else {
		fh = fw / aspect
	}
	x := (w - int(fw)) / 2
	y := (h - int(fh)) / 2
	return image.Rect(x, y, x+int(fw), y+int(fh))
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
