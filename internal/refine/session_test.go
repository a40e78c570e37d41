package refine

import (
	"image"
	"testing"

	"cardsmith/internal/card"
	"cardsmith/pkg/geometry"

	"github.com/stretchr/testify/require"
)

func testImage(w, h int) image.Image {
	return image.NewRGBA(image.Rect(0, 0, w, h))
}

func seededSession(t *testing.T, regions ...card.DetectedRegion) *Session {
	t.Helper()
	s := NewSession()
	gen, err := s.LoadImage(testImage(1000, 800))
	require.NoError(t, err)
	require.True(t, s.SeedRegions(gen, regions))
	return s
}

func TestLoadImageInvalid(t *testing.T) {
	s := NewSession()
	_, err := s.LoadImage(nil)
	require.ErrorIs(t, err, card.ErrInvalidInput)

	_, err = s.LoadImage(testImage(0, 100))
	require.ErrorIs(t, err, card.ErrInvalidInput)
	require.Equal(t, StageUpload, s.Stage())
}

func TestLoadThenSeedAdvancesStages(t *testing.T) {
	s := NewSession()
	gen, err := s.LoadImage(testImage(1000, 800))
	require.NoError(t, err)
	require.Equal(t, StageDetect, s.Stage())

	ok := s.SeedRegions(gen, []card.DetectedRegion{
		{ID: "r1", Bounds: geometry.RectInt{X: 10, Y: 10, Width: 200, Height: 280}, Confidence: 0.9},
	})
	require.True(t, ok)
	require.Equal(t, StageRefine, s.Stage())

	// Detector proposals start selected.
	require.True(t, s.IsSelected("r1"))
}

func TestSeedRegionsStaleGenerationDropped(t *testing.T) {
	s := NewSession()
	oldGen, err := s.LoadImage(testImage(1000, 800))
	require.NoError(t, err)

	_, err = s.LoadImage(testImage(500, 400))
	require.NoError(t, err)

	ok := s.SeedRegions(oldGen, []card.DetectedRegion{{ID: "r1"}})
	require.False(t, ok)
	require.Empty(t, s.Regions())
	require.Equal(t, StageDetect, s.Stage())
}

func TestSeedRegionsEmptyStillEntersRefine(t *testing.T) {
	s := seededSession(t)
	require.Equal(t, StageRefine, s.Stage())
	require.Empty(t, s.Regions())

	// Manual drawing works from an empty working set.
	r, ok := s.AddManualRegion(10, 10, 200, 290)
	require.True(t, ok)
	require.True(t, r.Manual)
	require.Equal(t, 1.0, r.Confidence)
}

func TestAddManualRegionDirectionIndependent(t *testing.T) {
	s := seededSession(t)

	a, ok := s.AddManualRegion(100, 100, 300, 400)
	require.True(t, ok)
	b, ok := s.AddManualRegion(300, 400, 100, 100)
	require.True(t, ok)

	require.Equal(t, a.Bounds, b.Bounds)
	require.NotEqual(t, a.ID, b.ID)
}

func TestAddManualRegionZeroAreaIgnored(t *testing.T) {
	s := seededSession(t)
	_, ok := s.AddManualRegion(50, 50, 50, 300)
	require.False(t, ok)
	require.Empty(t, s.Regions())
}

func TestAddManualRegionOverlapAllowed(t *testing.T) {
	s := seededSession(t)
	a, _ := s.AddManualRegion(100, 100, 300, 400)
	b, _ := s.AddManualRegion(150, 150, 350, 450)

	require.Len(t, s.Regions(), 2)
	require.True(t, a.Bounds.IoU(b.Bounds) > 0)
}

func TestResizeRegion(t *testing.T) {
	s := seededSession(t)
	r, _ := s.AddManualRegion(100, 100, 300, 400)

	require.True(t, s.ResizeRegion(r.ID, geometry.RectInt{X: 50, Y: 60, Width: 400, Height: 500}))
	regions := s.Regions()
	require.Equal(t, geometry.RectInt{X: 50, Y: 60, Width: 400, Height: 500}, regions[0].Bounds)

	// Degenerate bounds are rejected, region keeps its size.
	require.False(t, s.ResizeRegion(r.ID, geometry.RectInt{X: 2000, Y: 2000, Width: 10, Height: 10}))
	require.Equal(t, geometry.RectInt{X: 50, Y: 60, Width: 400, Height: 500}, s.Regions()[0].Bounds)
}

func TestDeleteRegion(t *testing.T) {
	s := seededSession(t)
	r, _ := s.AddManualRegion(100, 100, 300, 400)

	require.True(t, s.DeleteRegion(r.ID))
	require.Empty(t, s.Regions())
	require.False(t, s.DeleteRegion(r.ID))
}

func TestSelectionPolicies(t *testing.T) {
	s := seededSession(t)
	a, _ := s.AddManualRegion(10, 10, 100, 140)
	b, _ := s.AddManualRegion(200, 10, 300, 140)

	s.SelectOnly(a.ID)
	require.Equal(t, []string{a.ID}, s.SelectedIDs())

	s.ToggleSelected(b.ID)
	require.Len(t, s.SelectedIDs(), 2)
	s.ToggleSelected(b.ID)
	require.Equal(t, []string{a.ID}, s.SelectedIDs())

	s.ClearSelection()
	require.Empty(t, s.SelectedIDs())
	s.SelectAll()
	require.Len(t, s.SelectedIDs(), 2)
}

func TestBeginExtractEmptySelection(t *testing.T) {
	s := seededSession(t)
	s.AddManualRegion(10, 10, 100, 140)
	s.ClearSelection()

	_, _, err := s.BeginExtract()
	require.ErrorIs(t, err, card.ErrEmptySelection)
	require.Equal(t, StageRefine, s.Stage())
}

func TestBeginExtractReturnsSelected(t *testing.T) {
	s := seededSession(t)
	a, _ := s.AddManualRegion(10, 10, 100, 140)
	b, _ := s.AddManualRegion(200, 10, 300, 140)
	s.SelectOnly(b.ID)

	regions, gen, err := s.BeginExtract()
	require.NoError(t, err)
	require.Equal(t, gen, s.Generation())
	require.Len(t, regions, 1)
	require.Equal(t, b.ID, regions[0].ID)
	require.NotEqual(t, a.ID, regions[0].ID)
	require.Equal(t, StageExtract, s.Stage())
}

func TestBackDiscardsStageState(t *testing.T) {
	s := seededSession(t)
	s.AddManualRegion(10, 10, 100, 140)
	_, gen, err := s.BeginExtract()
	require.NoError(t, err)

	// Extract -> refine keeps the working set but supersedes async work.
	require.True(t, s.Back())
	require.Equal(t, StageRefine, s.Stage())
	require.Len(t, s.Regions(), 1)
	require.NotEqual(t, gen, s.Generation())

	// Refine -> detect drops the regions.
	require.True(t, s.Back())
	require.Equal(t, StageDetect, s.Stage())
	require.Empty(t, s.Regions())

	// Detect -> upload drops the source.
	require.True(t, s.Back())
	require.Equal(t, StageUpload, s.Stage())
	require.Nil(t, s.Source())

	require.False(t, s.Back())
}

func TestEventsFire(t *testing.T) {
	s := NewSession()
	var stages []Stage
	s.On(EventStageChanged, func(data interface{}) {
		stages = append(stages, data.(Stage))
	})

	gen, err := s.LoadImage(testImage(100, 100))
	require.NoError(t, err)
	s.SeedRegions(gen, nil)

	require.Equal(t, []Stage{StageDetect, StageRefine}, stages)
}
