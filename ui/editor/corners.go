package editor

import (
	"image"
	"image/color"

	"cardsmith/internal/transform"
	"cardsmith/pkg/geometry"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"
)

const handleDrawRadius = 6

var (
	quadEdgeColor   = color.RGBA{R: 80, G: 200, B: 255, A: 255}
	quadGridColor   = color.RGBA{R: 80, G: 200, B: 255, A: 255}
	handleColor     = color.RGBA{R: 255, G: 180, B: 40, A: 255}
	handleDragColor = color.RGBA{R: 255, G: 80, B: 40, A: 255}
)

// CornerEditor lets the user drag the four corners of the perspective quad
// over the source image. Corner positions are normalized, so the edited quad
// is independent of the widget size.
type CornerEditor struct {
	widget.BaseWidget

	source image.Image
	quad   geometry.Quad

	raster *fynecanvas.Raster

	// Image placement from the last draw, for pointer math.
	disp image.Rectangle

	dragging bool
	active   geometry.Corner

	onChange func(geometry.Quad)
}

// NewCornerEditor creates an editor with the full-image quad.
func NewCornerEditor() *CornerEditor {
	e := &CornerEditor{quad: geometry.UnitQuad()}
	e.raster = fynecanvas.NewRaster(e.draw)
	e.raster.ScaleMode = fynecanvas.ImageScalePixels
	e.raster.SetMinSize(fyne.NewSize(300, 300))
	e.ExtendBaseWidget(e)
	return e
}

// SetImage replaces the image under the quad. The quad is kept: normalized
// corners stay meaningful across crops of the same subject.
func (e *CornerEditor) SetImage(img image.Image) {
	e.source = img
	e.Refresh()
}

// Quad returns the current quad.
func (e *CornerEditor) Quad() geometry.Quad { return e.quad }

// SetQuad replaces the quad.
func (e *CornerEditor) SetQuad(q geometry.Quad) {
	e.quad = q
	e.changed()
}

// Reset restores the full-image quad.
func (e *CornerEditor) Reset() {
	e.quad = geometry.UnitQuad()
	e.changed()
}

// OnChange sets a callback invoked with the quad after each edit.
func (e *CornerEditor) OnChange(callback func(geometry.Quad)) {
	e.onChange = callback
}

// Dragged grabs the handle under the pointer on the first event of a drag
// and moves it with the pointer afterwards. A drag that starts away from
// every handle does nothing.
func (e *CornerEditor) Dragged(ev *fyne.DragEvent) {
	if e.disp.Empty() {
		return
	}
	pointer := geometry.Point2D{
		X: float64(ev.Position.X) - float64(e.disp.Min.X),
		Y: float64(ev.Position.Y) - float64(e.disp.Min.Y),
	}
	dw := float64(e.disp.Dx())
	dh := float64(e.disp.Dy())

	if !e.dragging {
		c, ok := transform.HitTestHandle(e.quad, pointer, dw, dh, transform.HandleRadius)
		if !ok {
			return
		}
		e.dragging = true
		e.active = c
	}
	e.quad = transform.DragCorner(e.quad, e.active, pointer, dw, dh)
	e.changed()
}

// DragEnd implements fyne.Draggable.
func (e *CornerEditor) DragEnd() {
	e.dragging = false
	e.Refresh()
}

// Refresh redraws the editor.
func (e *CornerEditor) Refresh() {
	e.raster.Refresh()
	e.BaseWidget.Refresh()
}

// CreateRenderer implements fyne.Widget.
func (e *CornerEditor) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(e.raster)
}

func (e *CornerEditor) changed() {
	e.Refresh()
	if e.onChange != nil {
		e.onChange(e.quad)
	}
}

// draw renders the image fitted to the widget, then the quad edges, the
// perspective grid, and the corner handles.
func (e *CornerEditor) draw(w, h int) image.Image {
	out := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			out.SetRGBA(x, y, surfaceBackground)
		}
	}
	if e.source == nil {
		e.disp = image.Rectangle{}
		return out
	}

	sb := e.source.Bounds()
	disp := fitRect(w, h, float64(sb.Dx())/float64(sb.Dy()))
	e.disp = disp
	if disp.Empty() {
		return out
	}
	blitScaled(out, disp, e.source)

	toDisp := func(p geometry.Point2D) (int, int) {
		return disp.Min.X + int(p.X*float64(disp.Dx())),
			disp.Min.Y + int(p.Y*float64(disp.Dy()))
	}

	for _, line := range e.quad.GridLines(3) {
		x0, y0 := toDisp(line[0])
		x1, y1 := toDisp(line[1])
		drawLine(out, x0, y0, x1, y1, quadGridColor)
	}

	corners := e.quad.Corners()
	for i := range corners {
		x0, y0 := toDisp(corners[i])
		x1, y1 := toDisp(corners[(i+1)%4])
		drawLine(out, x0, y0, x1, y1, quadEdgeColor)
	}

	for i, c := range corners {
		x, y := toDisp(c)
		col := handleColor
		if e.dragging && geometry.Corner(i) == e.active {
			col = handleDragColor
		}
		fillCircle(out, x, y, handleDrawRadius, col)
	}
	return out
}
