package detect

import (
	"testing"

	"cardsmith/pkg/geometry"

	"github.com/stretchr/testify/require"
)

func TestScoreCandidatesKeepsCardShapedBoxes(t *testing.T) {
	cands := []Candidate{
		{Bounds: geometry.RectInt{X: 100, Y: 100, Width: 200, Height: 280}, Rectangularity: 0.9},
	}
	regions := ScoreCandidates(cands, 1000, 1000, DefaultOptions())

	require.Len(t, regions, 1)
	require.Equal(t, "r1", regions[0].ID)
	require.False(t, regions[0].Manual)
	require.Greater(t, regions[0].Confidence, 0.7)
	require.LessOrEqual(t, regions[0].Confidence, 0.95)
}

func TestScoreCandidatesFiltersAspectAndArea(t *testing.T) {
	cands := []Candidate{
		// Landscape box, nowhere near the portrait card aspect.
		{Bounds: geometry.RectInt{X: 0, Y: 0, Width: 400, Height: 100}, Rectangularity: 0.9},
		// Card aspect but far too small.
		{Bounds: geometry.RectInt{X: 0, Y: 0, Width: 25, Height: 35}, Rectangularity: 0.9},
		// Nearly the whole image.
		{Bounds: geometry.RectInt{X: 0, Y: 0, Width: 990, Height: 1000}, Rectangularity: 0.9},
	}
	regions := ScoreCandidates(cands, 1000, 1000, DefaultOptions())
	require.Empty(t, regions)
}

func TestScoreCandidatesMergesNearDuplicates(t *testing.T) {
	cands := []Candidate{
		{Bounds: geometry.RectInt{X: 100, Y: 100, Width: 200, Height: 280}, Rectangularity: 0.5},
		{Bounds: geometry.RectInt{X: 104, Y: 102, Width: 200, Height: 280}, Rectangularity: 0.95},
	}
	regions := ScoreCandidates(cands, 1000, 1000, DefaultOptions())

	// The higher-rectangularity duplicate survives.
	require.Len(t, regions, 1)
	require.Equal(t, geometry.RectInt{X: 104, Y: 102, Width: 200, Height: 280}, regions[0].Bounds)
}

func TestScoreCandidatesKeepsDistinctOverlap(t *testing.T) {
	// Partially stacked cards overlap below the merge threshold and both
	// survive for manual review.
	cands := []Candidate{
		{Bounds: geometry.RectInt{X: 100, Y: 100, Width: 200, Height: 280}, Rectangularity: 0.9},
		{Bounds: geometry.RectInt{X: 250, Y: 120, Width: 200, Height: 280}, Rectangularity: 0.9},
	}
	regions := ScoreCandidates(cands, 1000, 1000, DefaultOptions())
	require.Len(t, regions, 2)
}

func TestScoreCandidatesOrdersTopToBottom(t *testing.T) {
	cands := []Candidate{
		{Bounds: geometry.RectInt{X: 500, Y: 600, Width: 200, Height: 280}, Rectangularity: 0.9},
		{Bounds: geometry.RectInt{X: 100, Y: 100, Width: 200, Height: 280}, Rectangularity: 0.6},
		{Bounds: geometry.RectInt{X: 500, Y: 100, Width: 200, Height: 280}, Rectangularity: 0.7},
	}
	regions := ScoreCandidates(cands, 1000, 1000, DefaultOptions())

	require.Len(t, regions, 3)
	require.Equal(t, []string{"r1", "r2", "r3"}, []string{regions[0].ID, regions[1].ID, regions[2].ID})
	require.Equal(t, 100, regions[0].Bounds.X)
	require.Equal(t, 500, regions[1].Bounds.X)
	require.Equal(t, 600, regions[2].Bounds.Y)
}

func TestScoreCandidatesClipsToImage(t *testing.T) {
	cands := []Candidate{
		{Bounds: geometry.RectInt{X: -20, Y: 100, Width: 220, Height: 290}, Rectangularity: 0.9},
	}
	regions := ScoreCandidates(cands, 1000, 1000, DefaultOptions())

	require.Len(t, regions, 1)
	require.Equal(t, 0, regions[0].Bounds.X)
	require.Equal(t, 200, regions[0].Bounds.Width)
}

func TestDefaultOptionsAspect(t *testing.T) {
	opts := DefaultOptions()
	require.InDelta(t, 2.5/3.5, opts.TargetAspect, 1e-3)
	require.Greater(t, opts.MergeIoU, 0.0)
}
