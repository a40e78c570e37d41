// Package detect proposes card-shaped rectangular regions in an arbitrary
// source image. The detector is a deterministic geometric heuristic (edge
// and contour based), not a trained model: zero candidates is a valid
// outcome that the caller surfaces as "no cards found".
package detect

import (
	"cardsmith/internal/card"
)

// Options tune the heuristic. Zero values fall back to defaults.
type Options struct {
	// TargetAspect is the width/height ratio candidates are scored
	// against. Default is the canonical card ratio.
	TargetAspect float64
	// AspectTolerance is the maximum relative aspect error accepted.
	AspectTolerance float64
	// MinAreaRatio and MaxAreaRatio reject candidates that are too small
	// or cover nearly the whole frame, as a fraction of image area.
	MinAreaRatio float64
	MaxAreaRatio float64
	// MergeIoU is the overlap ratio above which two candidates are
	// considered the same card and merged.
	MergeIoU float64
	// WorkingSize caps the longest image side during edge detection.
	// Returned coordinates are always in full source pixel space.
	WorkingSize int
}

// DefaultOptions returns the tuning used by the application.
func DefaultOptions() Options {
	return Options{
		TargetAspect:    card.TargetAspectRatio,
		AspectTolerance: 0.35,
		MinAreaRatio:    0.01,
		MaxAreaRatio:    0.95,
		MergeIoU:        0.6,
		WorkingSize:     1024,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.TargetAspect <= 0 {
		o.TargetAspect = d.TargetAspect
	}
	if o.AspectTolerance <= 0 {
		o.AspectTolerance = d.AspectTolerance
	}
	if o.MinAreaRatio <= 0 {
		o.MinAreaRatio = d.MinAreaRatio
	}
	if o.MaxAreaRatio <= 0 {
		o.MaxAreaRatio = d.MaxAreaRatio
	}
	if o.MergeIoU <= 0 {
		o.MergeIoU = d.MergeIoU
	}
	if o.WorkingSize <= 0 {
		o.WorkingSize = d.WorkingSize
	}
	return o
}
