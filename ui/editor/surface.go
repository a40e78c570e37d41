package editor

import (
	"image"
	"image/color"
	"math"

	"cardsmith/internal/card"
	"cardsmith/internal/fitter"
	"cardsmith/internal/transform"
	"cardsmith/pkg/geometry"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"
)

// zoomStep is the scale delta applied per wheel notch.
const zoomStep = 0.1

var (
	surfaceBackground = color.RGBA{R: 32, G: 32, B: 36, A: 255}
	surfaceOutOfCover = color.RGBA{R: 16, G: 16, B: 18, A: 255}
	boundaryColor     = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	thirdsColor       = color.RGBA{R: 200, G: 200, B: 200, A: 255}
)

// CardSurface shows the source image composed onto a fixed-aspect card
// surface, with drag to pan and wheel to zoom. The preview goes through the
// same fill mapping as export, so what covers the boundary here covers it
// in the output.
type CardSurface struct {
	widget.BaseWidget

	source     image.Image
	model      *fitter.Model
	rotation   float64
	crop       geometry.Rect
	aspect     float64
	bias       float64
	showThirds bool

	raster *fynecanvas.Raster

	// Surface placement from the last draw, for pointer math.
	surf image.Rectangle

	onChange func()
}

// NewCardSurface creates a surface with the given target aspect ratio
// (width over height) and auto-fit bias.
func NewCardSurface(aspect, bias float64) *CardSurface {
	s := &CardSurface{
		model:  fitter.NewModel(),
		crop:   geometry.UnitRect(),
		aspect: aspect,
		bias:   bias,
	}
	s.raster = fynecanvas.NewRaster(s.draw)
	s.raster.ScaleMode = fynecanvas.ImageScalePixels
	s.raster.SetMinSize(fyne.NewSize(300, 420))
	s.ExtendBaseWidget(s)
	return s
}

// SetImage replaces the source image and auto-fits it to the surface.
func (s *CardSurface) SetImage(img image.Image) {
	s.source = img
	if img != nil {
		b := img.Bounds()
		s.model.Fit(float64(b.Dx()), float64(b.Dy()), s.aspect, s.bias)
	}
	s.changed()
}

// Model returns the pan/zoom state for external adjustment.
func (s *CardSurface) Model() *fitter.Model { return s.model }

// SetRotation sets the rotation in degrees.
func (s *CardSurface) SetRotation(deg float64) {
	s.rotation = deg
	s.changed()
}

// SetCrop sets the normalized crop rectangle applied before the fill.
func (s *CardSurface) SetCrop(crop geometry.Rect) {
	s.crop = crop
	s.changed()
}

// SetShowThirds toggles the rule-of-thirds overlay.
func (s *CardSurface) SetShowThirds(show bool) {
	s.showThirds = show
	s.Refresh()
}

// AutoFit re-runs the fill heuristic for the current image.
func (s *CardSurface) AutoFit() {
	if s.source == nil {
		return
	}
	b := s.source.Bounds()
	s.model.Fit(float64(b.Dx()), float64(b.Dy()), s.aspect, s.bias)
	s.changed()
}

// Transform returns the geometry currently shown, for export.
func (s *CardSurface) Transform() card.TransformModel {
	t := card.DefaultTransform()
	t.Rotation = s.rotation
	t.Crop = s.crop
	s.model.ApplyTo(&t)
	return t
}

// OnChange sets a callback invoked after any geometry change.
func (s *CardSurface) OnChange(callback func()) {
	s.onChange = callback
}

// Dragged pans the image under the pointer. The screen delta is rotated
// back and divided by the effective scale so the image tracks the pointer
// at any zoom or rotation.
func (s *CardSurface) Dragged(ev *fyne.DragEvent) {
	if s.source == nil || s.surf.Dy() == 0 {
		return
	}
	region := transform.CropRegion(s.crop, s.sourceW(), s.sourceH())
	k := s.model.Scale * float64(s.surf.Dy()) / float64(region.Height)
	if k == 0 {
		return
	}
	rad := -s.rotation * math.Pi / 180
	dx := float64(ev.Dragged.DX)
	dy := float64(ev.Dragged.DY)
	s.model.Pan(geometry.Point2D{
		X: (dx*math.Cos(rad) - dy*math.Sin(rad)) / k,
		Y: (dx*math.Sin(rad) + dy*math.Cos(rad)) / k,
	})
	s.changed()
}

// DragEnd implements fyne.Draggable.
func (s *CardSurface) DragEnd() {}

// Scrolled zooms around the surface center.
func (s *CardSurface) Scrolled(ev *fyne.ScrollEvent) {
	if ev.Scrolled.DY > 0 {
		s.model.Zoom(zoomStep)
	} else if ev.Scrolled.DY < 0 {
		s.model.Zoom(-zoomStep)
	}
	s.changed()
}

// Refresh redraws the surface.
func (s *CardSurface) Refresh() {
	s.raster.Refresh()
	s.BaseWidget.Refresh()
}

// CreateRenderer implements fyne.Widget.
func (s *CardSurface) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(s.raster)
}

func (s *CardSurface) changed() {
	s.Refresh()
	if s.onChange != nil {
		s.onChange()
	}
}

func (s *CardSurface) sourceW() int { return s.source.Bounds().Dx() }
func (s *CardSurface) sourceH() int { return s.source.Bounds().Dy() }

// draw renders the surface area through the fill mapper with
// nearest-neighbor sampling, then the boundary and grid overlays.
func (s *CardSurface) draw(w, h int) image.Image {
	out := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			out.SetRGBA(x, y, surfaceBackground)
		}
	}

	surf := fitRect(w, h, s.aspect)
	s.surf = surf
	if surf.Empty() {
		return out
	}

	if s.source != nil {
		region := transform.CropRegion(s.crop, s.sourceW(), s.sourceH())
		mapper := transform.FillMapper(s.Transform(), region, surf.Dx(), surf.Dy())
		sb := s.source.Bounds()
		for y := surf.Min.Y; y < surf.Max.Y; y++ {
			for x := surf.Min.X; x < surf.Max.X; x++ {
				sx, sy := mapper.MapPoint(float64(x-surf.Min.X), float64(y-surf.Min.Y))
				px := sb.Min.X + int(sx+0.5)
				py := sb.Min.Y + int(sy+0.5)
				if px < sb.Min.X || px >= sb.Max.X || py < sb.Min.Y || py >= sb.Max.Y {
					out.SetRGBA(x, y, surfaceOutOfCover)
					continue
				}
				out.Set(x, y, s.source.At(px, py))
			}
		}
	}

	drawRect(out, geometry.RectInt{
		X: surf.Min.X, Y: surf.Min.Y,
		Width: surf.Dx(), Height: surf.Dy(),
	}, 1, boundaryColor)

	if s.showThirds {
		for _, line := range geometry.UnitQuad().GridLines(3) {
			drawLine(out,
				surf.Min.X+int(line[0].X*float64(surf.Dx())),
				surf.Min.Y+int(line[0].Y*float64(surf.Dy())),
				surf.Min.X+int(line[1].X*float64(surf.Dx())),
				surf.Min.Y+int(line[1].Y*float64(surf.Dy())),
				thirdsColor)
		}
	}
	return out
}
