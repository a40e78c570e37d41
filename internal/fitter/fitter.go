// Package fitter holds the interaction model for positioning an image on a
// fixed-aspect card surface: auto-fit, pan, and zoom. It is pure state; the
// editor widgets own rendering.
package fitter

import (
	"cardsmith/internal/card"
	"cardsmith/pkg/geometry"
)

// DefaultBias is the upscale factor applied by AutoFit to avoid thin edge
// gaps from rounding. Fill is intentionally biased toward minor
// over-cropping rather than strict minimum cover.
const DefaultBias = 1.1

// AutoFit computes the scale and position that make an imgW x imgH source
// fill a surface with the given width/height aspect ratio. The render base
// mapping fits the source height to the surface, so a source relatively
// wider than the target already covers at scale 1; a taller source needs
// its width pushed out by targetAspect/imageAspect. Position resets to
// centered. The result is clamped to the interactive scale range, so a
// source with an extreme aspect ratio (needing more than MaxScale to
// cover) comes back at MaxScale and will not fully cover the surface.
func AutoFit(imgW, imgH, targetAspect, bias float64) (float64, geometry.Point2D) {
	if imgW <= 0 || imgH <= 0 || targetAspect <= 0 {
		return 1, geometry.Point2D{}
	}
	if bias <= 0 {
		bias = DefaultBias
	}

	imageAspect := imgW / imgH
	scale := bias
	if imageAspect < targetAspect {
		scale = targetAspect / imageAspect * bias
	}
	return geometry.Clamp(scale, card.MinScale, card.MaxScale), geometry.Point2D{}
}

// Model is the mutable pan/zoom state of one editing surface.
type Model struct {
	Scale    float64
	Position geometry.Point2D
}

// NewModel returns the identity fit.
func NewModel() *Model {
	return &Model{Scale: 1}
}

// Pan moves the image by a delta in source pixels. No clamping: boundary
// violations are caught visually by the surface mask, not prevented here.
func (m *Model) Pan(delta geometry.Point2D) {
	m.Position = m.Position.Add(delta)
}

// Zoom adjusts the scale by delta, clamped to the allowed range.
func (m *Model) Zoom(delta float64) {
	m.Scale = geometry.Clamp(m.Scale+delta, card.MinScale, card.MaxScale)
}

// Fit applies AutoFit for the given source and target.
func (m *Model) Fit(imgW, imgH, targetAspect, bias float64) {
	m.Scale, m.Position = AutoFit(imgW, imgH, targetAspect, bias)
}

// ApplyTo writes the fit state into a transform model.
func (m *Model) ApplyTo(t *card.TransformModel) {
	t.Scale = m.Scale
	t.Position = m.Position
}
