package export

import (
	"image"

	"cardsmith/internal/card"
)

// ExtractResult is the per-region outcome of a batch extraction. Failures
// are reported item by item so the caller can show "N of M cards
// extracted" instead of aborting the batch.
type ExtractResult struct {
	Region card.DetectedRegion
	Card   card.ExtractedCard
	Err    error
}

// ExtractAll extracts every region independently and returns one result per
// region, in input order.
func (r *Renderer) ExtractAll(src image.Image, sourceID string, regions []card.DetectedRegion) []ExtractResult {
	results := make([]ExtractResult, len(regions))
	for i, region := range regions {
		c, err := r.ExtractRegion(src, sourceID, region)
		results[i] = ExtractResult{Region: region, Card: c, Err: err}
	}
	return results
}

// ExtractAllAsync runs ExtractAll on a goroutine and reports completion
// through done, together with the caller's generation token. The source
// image is immutable, so the interactive preview keeps reading it while
// the batch runs; the caller compares the token against its current
// generation and discards superseded results.
func (r *Renderer) ExtractAllAsync(src image.Image, sourceID string, regions []card.DetectedRegion,
	gen uint64, done func(gen uint64, results []ExtractResult)) {
	go func() {
		done(gen, r.ExtractAll(src, sourceID, regions))
	}()
}
