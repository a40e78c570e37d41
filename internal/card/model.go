// Package card defines the value types shared by the editing, detection, and
// export pipeline: the transform model an editing session mutates, detected
// card regions, and extracted card output.
package card

import (
	"errors"

	"cardsmith/pkg/geometry"
)

// Canonical trading card geometry: 2.5 x 3.5 inches.
const (
	TargetAspectRatio = 2.5 / 3.5

	MinScale = 0.5
	MaxScale = 5.0

	// NeutralPercent is the no-op value for every enhancement parameter.
	NeutralPercent = 100.0
	// MaxEnhancementPercent is the default upper clamp for enhancements.
	MaxEnhancementPercent = 200.0
)

var (
	// ErrInvalidInput is returned when a source image is nil or has zero
	// width or height.
	ErrInvalidInput = errors.New("card: invalid source image")

	// ErrEmptySelection is returned when extraction is requested with no
	// regions selected. It gates the state transition locally and is never
	// propagated across the UI boundary as a failure.
	ErrEmptySelection = errors.New("card: no regions selected")
)

// Enhancements holds the visual adjustment parameters. Each value is a
// percentage where 100 means no change. Values are clamped to
// [0, MaxEnhancementPercent] at application time, never rejected.
type Enhancements struct {
	Brightness float64 `json:"brightness"`
	Contrast   float64 `json:"contrast"`
	Saturation float64 `json:"saturation"`
	Sharpness  float64 `json:"sharpness"`
}

// NeutralEnhancements returns all parameters at the no-op value.
func NeutralEnhancements() Enhancements {
	return Enhancements{
		Brightness: NeutralPercent,
		Contrast:   NeutralPercent,
		Saturation: NeutralPercent,
		Sharpness:  NeutralPercent,
	}
}

// Clamped returns the enhancements with every value limited to [0, max].
func (e Enhancements) Clamped(max float64) Enhancements {
	return Enhancements{
		Brightness: geometry.Clamp(e.Brightness, 0, max),
		Contrast:   geometry.Clamp(e.Contrast, 0, max),
		Saturation: geometry.Clamp(e.Saturation, 0, max),
		Sharpness:  geometry.Clamp(e.Sharpness, 0, max),
	}
}

// IsNeutral reports whether every parameter is exactly the no-op value.
func (e Enhancements) IsNeutral() bool {
	return e.Brightness == NeutralPercent &&
		e.Contrast == NeutralPercent &&
		e.Saturation == NeutralPercent &&
		e.Sharpness == NeutralPercent
}

// TransformModel describes how a source image maps onto the output card
// surface. It is a plain serializable value: created with defaults when an
// image enters an editing session, mutated only by interaction handlers, and
// read by the exporter.
type TransformModel struct {
	// Perspective corners in normalized [0,1] source coordinates.
	Perspective geometry.Quad `json:"perspective"`
	// Rotation in signed degrees.
	Rotation float64 `json:"rotation"`
	// Scale factor, clamped to [MinScale, MaxScale] by interaction handlers.
	Scale float64 `json:"scale"`
	// Position is the pan offset in source-image pixels.
	Position geometry.Point2D `json:"position"`
	// Crop is a normalized sub-rectangle of the source, default full image.
	Crop geometry.Rect `json:"crop"`

	Enhancements Enhancements `json:"enhancements"`
}

// DefaultTransform returns the identity transform: full quad, no rotation,
// scale 1, centered, full crop, neutral enhancements.
func DefaultTransform() TransformModel {
	return TransformModel{
		Perspective:  geometry.UnitQuad(),
		Rotation:     0,
		Scale:        1,
		Position:     geometry.Point2D{},
		Crop:         geometry.UnitRect(),
		Enhancements: NeutralEnhancements(),
	}
}

// IsIdentity reports whether the model requires no geometric work beyond a
// plain resample to the output dimensions.
func (m TransformModel) IsIdentity(eps float64) bool {
	return m.Perspective.IsUnit(eps) &&
		m.Rotation == 0 && m.Scale == 1 &&
		m.Position == (geometry.Point2D{}) &&
		m.Crop == geometry.UnitRect()
}

// DetectedRegion is one axis-aligned candidate card area in source-image
// pixel coordinates. Detector output carries a heuristic confidence;
// manually drawn regions are fixed at confidence 1.
type DetectedRegion struct {
	ID         string           `json:"id"`
	Bounds     geometry.RectInt `json:"bounds"`
	Confidence float64          `json:"confidence"`
	Manual     bool             `json:"manual"`
}

// ExtractedCard is one standardized card image produced from a region,
// with provenance for downstream display and sorting.
type ExtractedCard struct {
	PNG        []byte           `json:"-"`
	Confidence float64          `json:"confidence"`
	Bounds     geometry.RectInt `json:"bounds"`
	SourceID   string           `json:"sourceId"`
	// Title is the OCR-read card name, empty when identification is
	// disabled or found nothing.
	Title string `json:"title,omitempty"`
}
