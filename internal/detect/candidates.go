package detect

import (
	"fmt"
	"math"
	"sort"

	"cardsmith/internal/card"
	"cardsmith/pkg/geometry"
)

// Candidate is one raw contour bounding box with its fill ratio (contour
// area over bounding-box area), before filtering and scoring.
type Candidate struct {
	Bounds         geometry.RectInt
	Rectangularity float64
}

// ScoreCandidates filters raw candidates against the image geometry and
// produces confidence-scored regions. Coordinates must already be in full
// source pixel space. Output order is top-to-bottom, left-to-right; callers
// sort by confidence themselves if they need to.
func ScoreCandidates(cands []Candidate, imgW, imgH int, opts Options) []card.DetectedRegion {
	opts = opts.withDefaults()
	if imgW <= 0 || imgH <= 0 {
		return nil
	}
	imgArea := float64(imgW * imgH)

	var regions []card.DetectedRegion
	for _, c := range cands {
		b := c.Bounds.Clip(imgW, imgH)
		if b.Empty() {
			continue
		}

		areaRatio := float64(b.Area()) / imgArea
		if areaRatio < opts.MinAreaRatio || areaRatio > opts.MaxAreaRatio {
			continue
		}

		aspect := float64(b.Width) / float64(b.Height)
		aspectErr := math.Abs(aspect-opts.TargetAspect) / opts.TargetAspect
		if aspectErr > opts.AspectTolerance {
			continue
		}

		regions = append(regions, card.DetectedRegion{
			Bounds:     b,
			Confidence: confidence(aspectErr, c.Rectangularity, opts),
		})
	}

	regions = mergeOverlapping(regions, opts.MergeIoU)

	sort.Slice(regions, func(i, j int) bool {
		if regions[i].Bounds.Y != regions[j].Bounds.Y {
			return regions[i].Bounds.Y < regions[j].Bounds.Y
		}
		return regions[i].Bounds.X < regions[j].Bounds.X
	})
	for i := range regions {
		regions[i].ID = fmt.Sprintf("r%d", i+1)
	}
	return regions
}

// confidence combines aspect fit and contour rectangularity into [0,1].
// Typical detector output lands in 0.7-0.95; 1.0 is reserved for manual
// regions.
func confidence(aspectErr, rectangularity float64, opts Options) float64 {
	fit := 1 - aspectErr/opts.AspectTolerance
	rect := geometry.Clamp(rectangularity, 0, 1)
	return geometry.Clamp(0.7+0.15*fit+0.1*rect, 0, 0.95)
}

// mergeOverlapping collapses near-duplicate candidates: when two regions
// overlap above the IoU threshold, only the higher-confidence one survives.
// Distinct overlapping cards (partially stacked) stay below the threshold
// and are left for manual review.
func mergeOverlapping(regions []card.DetectedRegion, iou float64) []card.DetectedRegion {
	if len(regions) < 2 {
		return regions
	}

	// Order by confidence so the best duplicate wins, keeping the scan
	// deterministic via the position tie-break.
	byConf := make([]card.DetectedRegion, len(regions))
	copy(byConf, regions)
	sort.SliceStable(byConf, func(i, j int) bool {
		if byConf[i].Confidence != byConf[j].Confidence {
			return byConf[i].Confidence > byConf[j].Confidence
		}
		if byConf[i].Bounds.Y != byConf[j].Bounds.Y {
			return byConf[i].Bounds.Y < byConf[j].Bounds.Y
		}
		return byConf[i].Bounds.X < byConf[j].Bounds.X
	})

	var kept []card.DetectedRegion
	for _, r := range byConf {
		dup := false
		for _, k := range kept {
			if r.Bounds.IoU(k.Bounds) >= iou {
				dup = true
				break
			}
		}
		if !dup {
			kept = append(kept, r)
		}
	}
	return kept
}
