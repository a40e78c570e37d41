package editor

import (
	"image"
	"image/color"

	"cardsmith/internal/refine"
	"cardsmith/pkg/geometry"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"
)

// Mode selects the region canvas interaction.
type Mode int

const (
	// ModeSelect taps to select a region; dragging a corner of the
	// selected region resizes it.
	ModeSelect Mode = iota
	// ModeDraw drags out a new manual region.
	ModeDraw
)

// resizeGrabRadius is the corner grab distance in display pixels, so the
// grab area feels the same regardless of image resolution.
const resizeGrabRadius = 10.0

var (
	proposalColor = color.RGBA{R: 80, G: 220, B: 120, A: 255}
	manualColor   = color.RGBA{R: 80, G: 160, B: 255, A: 255}
	selectedColor = color.RGBA{R: 255, G: 210, B: 40, A: 255}
	draftColor    = color.RGBA{R: 255, G: 255, B: 255, A: 255}
)

// RegionCanvas shows the source image with the session's working set of
// regions over it. All mutation goes through the session; the canvas only
// translates pointer events into session calls.
type RegionCanvas struct {
	widget.BaseWidget

	session *refine.Session
	mode    Mode

	raster *fynecanvas.Raster

	// Image placement from the last draw, for pointer math.
	disp image.Rectangle

	// In-progress drag, in source pixels.
	dragging  bool
	resizing  bool
	resizeID  string
	dragStart image.Point
	dragCur   image.Point
}

// NewRegionCanvas creates a canvas over the given session.
func NewRegionCanvas(session *refine.Session) *RegionCanvas {
	rc := &RegionCanvas{session: session}
	rc.raster = fynecanvas.NewRaster(rc.draw)
	rc.raster.ScaleMode = fynecanvas.ImageScalePixels
	rc.raster.SetMinSize(fyne.NewSize(400, 300))
	rc.ExtendBaseWidget(rc)
	return rc
}

// SetMode switches the interaction mode.
func (rc *RegionCanvas) SetMode(mode Mode) {
	rc.mode = mode
	rc.dragging = false
	rc.resizing = false
}

// Mode returns the current interaction mode.
func (rc *RegionCanvas) Mode() Mode { return rc.mode }

// Tapped selects the topmost region under the pointer, or clears the
// selection on empty space.
func (rc *RegionCanvas) Tapped(ev *fyne.PointEvent) {
	x, y, ok := rc.toImage(ev.Position)
	if !ok {
		return
	}
	if id, found := rc.regionAt(x, y); found {
		rc.session.SelectOnly(id)
	} else {
		rc.session.ClearSelection()
	}
	rc.Refresh()
}

// TappedSecondary toggles the region under the pointer in the selection,
// for building a multi-region selection.
func (rc *RegionCanvas) TappedSecondary(ev *fyne.PointEvent) {
	x, y, ok := rc.toImage(ev.Position)
	if !ok {
		return
	}
	if id, found := rc.regionAt(x, y); found {
		rc.session.ToggleSelected(id)
		rc.Refresh()
	}
}

// Dragged draws a new region in draw mode, or resizes the selected region
// when the drag starts on one of its corners in select mode. Drags in any
// diagonal direction produce the same rectangle.
func (rc *RegionCanvas) Dragged(ev *fyne.DragEvent) {
	x, y, ok := rc.toImage(ev.Position)
	if !ok && !rc.dragging {
		return
	}

	if !rc.dragging {
		rc.dragging = true
		rc.dragStart = image.Point{X: x, Y: y}
		rc.resizing = false
		if rc.mode == ModeSelect {
			if id, anchor, found := rc.grabbedCorner(x, y); found {
				rc.resizing = true
				rc.resizeID = id
				rc.dragStart = anchor
			} else {
				rc.dragging = false
				return
			}
		}
	}
	rc.dragCur = image.Point{X: x, Y: y}

	if rc.resizing {
		bounds := geometry.RectFromCorners(rc.dragStart.X, rc.dragStart.Y, x, y)
		rc.session.ResizeRegion(rc.resizeID, bounds)
	}
	rc.Refresh()
}

// DragEnd commits a drawn region.
func (rc *RegionCanvas) DragEnd() {
	if rc.dragging && !rc.resizing && rc.mode == ModeDraw {
		rc.session.AddManualRegion(rc.dragStart.X, rc.dragStart.Y, rc.dragCur.X, rc.dragCur.Y)
	}
	rc.dragging = false
	rc.resizing = false
	rc.Refresh()
}

// DeleteSelected removes every selected region.
func (rc *RegionCanvas) DeleteSelected() {
	for _, id := range rc.session.SelectedIDs() {
		rc.session.DeleteRegion(id)
	}
	rc.Refresh()
}

// Refresh redraws the canvas.
func (rc *RegionCanvas) Refresh() {
	rc.raster.Refresh()
	rc.BaseWidget.Refresh()
}

// CreateRenderer implements fyne.Widget.
func (rc *RegionCanvas) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(rc.raster)
}

// toImage converts a widget position to source pixel coordinates.
func (rc *RegionCanvas) toImage(pos fyne.Position) (int, int, bool) {
	src := rc.session.Source()
	if src == nil || rc.disp.Empty() {
		return 0, 0, false
	}
	b := src.Bounds()
	x := (float64(pos.X) - float64(rc.disp.Min.X)) * float64(b.Dx()) / float64(rc.disp.Dx())
	y := (float64(pos.Y) - float64(rc.disp.Min.Y)) * float64(b.Dy()) / float64(rc.disp.Dy())
	return int(x), int(y), true
}

// regionAt returns the last (topmost-drawn) region containing the point.
func (rc *RegionCanvas) regionAt(x, y int) (string, bool) {
	regions := rc.session.Regions()
	for i := len(regions) - 1; i >= 0; i-- {
		r := regions[i].Bounds
		if x >= r.X && x < r.X+r.Width && y >= r.Y && y < r.Y+r.Height {
			return regions[i].ID, true
		}
	}
	return "", false
}

// grabbedCorner finds a selected region with a corner near the point and
// returns its id plus the opposite corner as the resize anchor.
func (rc *RegionCanvas) grabbedCorner(x, y int) (string, image.Point, bool) {
	src := rc.session.Source()
	if src == nil || rc.disp.Empty() {
		return "", image.Point{}, false
	}
	scale := float64(rc.disp.Dx()) / float64(src.Bounds().Dx())
	grab := resizeGrabRadius / scale

	for _, region := range rc.session.SelectedRegions() {
		r := region.Bounds
		corners := [4]image.Point{
			{X: r.X, Y: r.Y},
			{X: r.X + r.Width, Y: r.Y},
			{X: r.X + r.Width, Y: r.Y + r.Height},
			{X: r.X, Y: r.Y + r.Height},
		}
		for i, c := range corners {
			dx := float64(x - c.X)
			dy := float64(y - c.Y)
			if dx*dx+dy*dy <= grab*grab {
				return region.ID, corners[(i+2)%4], true
			}
		}
	}
	return "", image.Point{}, false
}

// draw renders the image fitted to the widget with region overlays.
func (rc *RegionCanvas) draw(w, h int) image.Image {
	out := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			out.SetRGBA(x, y, surfaceBackground)
		}
	}

	src := rc.session.Source()
	if src == nil {
		rc.disp = image.Rectangle{}
		return out
	}
	sb := src.Bounds()
	disp := fitRect(w, h, float64(sb.Dx())/float64(sb.Dy()))
	rc.disp = disp
	if disp.Empty() {
		return out
	}
	blitScaled(out, disp, src)

	scaleX := float64(disp.Dx()) / float64(sb.Dx())
	scaleY := float64(disp.Dy()) / float64(sb.Dy())
	toDisp := func(r geometry.RectInt) geometry.RectInt {
		return geometry.RectInt{
			X:      disp.Min.X + int(float64(r.X)*scaleX),
			Y:      disp.Min.Y + int(float64(r.Y)*scaleY),
			Width:  int(float64(r.Width) * scaleX),
			Height: int(float64(r.Height) * scaleY),
		}
	}

	for _, region := range rc.session.Regions() {
		col := proposalColor
		if region.Manual {
			col = manualColor
		}
		thickness := 1
		if rc.session.IsSelected(region.ID) {
			col = selectedColor
			thickness = 2
		}
		drawRect(out, toDisp(region.Bounds), thickness, col)
	}

	if rc.dragging && !rc.resizing && rc.mode == ModeDraw {
		draft := geometry.RectFromCorners(rc.dragStart.X, rc.dragStart.Y, rc.dragCur.X, rc.dragCur.Y)
		drawRect(out, toDisp(draft), 1, draftColor)
	}
	return out
}
