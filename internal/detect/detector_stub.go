//go:build !gocv
// +build !gocv

package detect

import (
	"image"

	"cardsmith/internal/card"
)

// Detector is the no-OpenCV fallback. Builds without the gocv tag always
// report zero detected regions, leaving the manual drawing flow available.
type Detector struct {
	opts Options
}

// NewDetector creates a detector with the given options.
func NewDetector(opts Options) *Detector {
	return &Detector{opts: opts.withDefaults()}
}

// Detect validates the input and returns no regions. An empty result is the
// documented "no cards detected" outcome, so the refinement flow behaves the
// same as when the real detector finds nothing.
func (d *Detector) Detect(src image.Image) ([]card.DetectedRegion, error) {
	if src == nil {
		return nil, card.ErrInvalidInput
	}
	b := src.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return nil, card.ErrInvalidInput
	}
	return nil, nil
}
