// Package refine owns the multi-card editing session: the
// upload/detect/refine/extract stage machine and the mutable working set of
// regions layered over detector output. All mutation goes through the
// session so stage invariants hold by construction.
package refine

import (
	"fmt"
	"image"
	"sort"
	"sync"

	"cardsmith/internal/card"
	"cardsmith/pkg/geometry"
)

// Stage is the editing stage. Transitions only move one step forward, and
// any number of steps back; backward transitions discard the state created
// in the abandoned stage.
type Stage int

const (
	StageUpload Stage = iota
	StageDetect
	StageRefine
	StageExtract
)

func (s Stage) String() string {
	switch s {
	case StageUpload:
		return "upload"
	case StageDetect:
		return "detect"
	case StageRefine:
		return "refine"
	case StageExtract:
		return "extract"
	default:
		return "unknown"
	}
}

// EventType identifies session events.
type EventType int

const (
	EventStageChanged EventType = iota
	EventRegionsChanged
	EventSelectionChanged
)

// EventListener is called when an event occurs.
type EventListener func(data interface{})

// Session is one multi-card editing session over a single source image.
type Session struct {
	mu sync.Mutex

	stage  Stage
	source image.Image
	srcW   int
	srcH   int

	// generation increments whenever in-flight async work (detection,
	// extraction) becomes stale: new image, backward transition. Async
	// completions carrying an older generation are dropped.
	generation uint64

	regions      []card.DetectedRegion
	selected     map[string]bool
	nextManualID int

	listeners map[EventType][]EventListener
}

// NewSession creates an empty session in the upload stage.
func NewSession() *Session {
	return &Session{
		stage:     StageUpload,
		selected:  make(map[string]bool),
		listeners: make(map[EventType][]EventListener),
	}
}

// On registers an event listener.
func (s *Session) On(event EventType, listener EventListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners[event] = append(s.listeners[event], listener)
}

func (s *Session) emit(event EventType, data interface{}) {
	s.mu.Lock()
	listeners := s.listeners[event]
	s.mu.Unlock()
	for _, l := range listeners {
		l(data)
	}
}

// Stage returns the current stage.
func (s *Session) Stage() Stage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stage
}

// Generation returns the token async work must carry to deliver results.
func (s *Session) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}

// Source returns the session's source image. The image is immutable after
// load and may be read concurrently by preview and export passes.
func (s *Session) Source() image.Image {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.source
}

// LoadImage starts a session over a new source image and moves to the
// detect stage. Returns card.ErrInvalidInput for a nil or zero-size image,
// leaving the session untouched.
func (s *Session) LoadImage(src image.Image) (uint64, error) {
	if src == nil {
		return 0, card.ErrInvalidInput
	}
	b := src.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return 0, card.ErrInvalidInput
	}

	s.mu.Lock()
	s.source = src
	s.srcW, s.srcH = b.Dx(), b.Dy()
	s.regions = nil
	s.selected = make(map[string]bool)
	s.nextManualID = 1
	s.stage = StageDetect
	s.generation++
	gen := s.generation
	s.mu.Unlock()

	s.emit(EventStageChanged, StageDetect)
	return gen, nil
}

// SeedRegions delivers detector output and moves to the refine stage. A
// stale generation (superseded by a newer load or a backward transition) is
// dropped; an empty result still enters refine so the user can draw
// regions by hand.
func (s *Session) SeedRegions(gen uint64, regions []card.DetectedRegion) bool {
	s.mu.Lock()
	if gen != s.generation || s.stage != StageDetect {
		s.mu.Unlock()
		return false
	}
	s.regions = make([]card.DetectedRegion, len(regions))
	copy(s.regions, regions)
	s.selected = make(map[string]bool)
	// Detector proposals start selected; the user deselects rejects.
	for _, r := range s.regions {
		s.selected[r.ID] = true
	}
	s.stage = StageRefine
	s.mu.Unlock()

	s.emit(EventStageChanged, StageRefine)
	s.emit(EventRegionsChanged, len(regions))
	return true
}

// Regions returns a copy of the working set.
func (s *Session) Regions() []card.DetectedRegion {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]card.DetectedRegion, len(s.regions))
	copy(out, s.regions)
	return out
}

// AddManualRegion creates a user-drawn region from any two opposite drag
// corners in source pixels. Drags in all four diagonal directions yield the
// same rectangle. Zero-area drags are ignored.
func (s *Session) AddManualRegion(x1, y1, x2, y2 int) (card.DetectedRegion, bool) {
	s.mu.Lock()
	if s.stage != StageRefine {
		s.mu.Unlock()
		return card.DetectedRegion{}, false
	}
	bounds := geometry.RectFromCorners(x1, y1, x2, y2).Clip(s.srcW, s.srcH)
	if bounds.Empty() {
		s.mu.Unlock()
		return card.DetectedRegion{}, false
	}

	r := card.DetectedRegion{
		ID:         fmt.Sprintf("m%d", s.nextManualID),
		Bounds:     bounds,
		Confidence: 1.0,
		Manual:     true,
	}
	s.nextManualID++
	s.regions = append(s.regions, r)
	s.selected[r.ID] = true
	s.mu.Unlock()

	s.emit(EventRegionsChanged, 1)
	s.emit(EventSelectionChanged, nil)
	return r, true
}

// ResizeRegion replaces a region's bounds, clipped to the source image.
// Degenerate bounds are rejected and the region keeps its old size.
func (s *Session) ResizeRegion(id string, bounds geometry.RectInt) bool {
	s.mu.Lock()
	changed := false
	if s.stage == StageRefine {
		clipped := bounds.Clip(s.srcW, s.srcH)
		if !clipped.Empty() {
			for i := range s.regions {
				if s.regions[i].ID == id {
					s.regions[i].Bounds = clipped
					changed = true
					break
				}
			}
		}
	}
	s.mu.Unlock()

	if changed {
		s.emit(EventRegionsChanged, nil)
	}
	return changed
}

// DeleteRegion removes a region and its selection entry.
func (s *Session) DeleteRegion(id string) bool {
	s.mu.Lock()
	removed := false
	if s.stage == StageRefine {
		for i := range s.regions {
			if s.regions[i].ID == id {
				s.regions = append(s.regions[:i], s.regions[i+1:]...)
				delete(s.selected, id)
				removed = true
				break
			}
		}
	}
	s.mu.Unlock()

	if removed {
		s.emit(EventRegionsChanged, nil)
		s.emit(EventSelectionChanged, nil)
	}
	return removed
}

// SelectOnly replaces the selection with the single given region. This is
// the edit-mode click policy: resizing and deleting stay unambiguous.
func (s *Session) SelectOnly(id string) {
	s.mu.Lock()
	if !s.hasRegion(id) {
		s.mu.Unlock()
		return
	}
	s.selected = map[string]bool{id: true}
	s.mu.Unlock()
	s.emit(EventSelectionChanged, nil)
}

// ToggleSelected flips one region's membership in the selection. Used by
// the thumbnail multi-select outside edit mode.
func (s *Session) ToggleSelected(id string) {
	s.mu.Lock()
	if !s.hasRegion(id) {
		s.mu.Unlock()
		return
	}
	if s.selected[id] {
		delete(s.selected, id)
	} else {
		s.selected[id] = true
	}
	s.mu.Unlock()
	s.emit(EventSelectionChanged, nil)
}

// SelectAll selects every region in the working set.
func (s *Session) SelectAll() {
	s.mu.Lock()
	for _, r := range s.regions {
		s.selected[r.ID] = true
	}
	s.mu.Unlock()
	s.emit(EventSelectionChanged, nil)
}

// ClearSelection deselects everything.
func (s *Session) ClearSelection() {
	s.mu.Lock()
	s.selected = make(map[string]bool)
	s.mu.Unlock()
	s.emit(EventSelectionChanged, nil)
}

// IsSelected reports whether the region is selected.
func (s *Session) IsSelected(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected[id]
}

// SelectedRegions returns the selected regions in working-set order.
func (s *Session) SelectedRegions() []card.DetectedRegion {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []card.DetectedRegion
	for _, r := range s.regions {
		if s.selected[r.ID] {
			out = append(out, r)
		}
	}
	return out
}

// SelectedIDs returns the selected region ids, sorted for stable display.
func (s *Session) SelectedIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.selected))
	for id := range s.selected {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// BeginExtract moves refine to extract and returns the regions to extract.
// With an empty selection it returns card.ErrEmptySelection and the stage
// does not change.
func (s *Session) BeginExtract() ([]card.DetectedRegion, uint64, error) {
	s.mu.Lock()
	if s.stage != StageRefine {
		s.mu.Unlock()
		return nil, 0, fmt.Errorf("cannot extract from stage %s", s.stage)
	}
	var selected []card.DetectedRegion
	for _, r := range s.regions {
		if s.selected[r.ID] {
			selected = append(selected, r)
		}
	}
	if len(selected) == 0 {
		s.mu.Unlock()
		return nil, 0, card.ErrEmptySelection
	}
	s.stage = StageExtract
	gen := s.generation
	s.mu.Unlock()

	s.emit(EventStageChanged, StageExtract)
	return selected, gen, nil
}

// Back moves one stage backward, discarding the state created in the
// abandoned stage. In-flight async work is superseded via the generation
// counter. Returns false from the upload stage.
func (s *Session) Back() bool {
	s.mu.Lock()
	var next Stage
	switch s.stage {
	case StageExtract:
		// Extracted cards are dropped, the working set is kept.
		next = StageRefine
	case StageRefine:
		// Regions are dropped; detection will reseed them.
		next = StageDetect
		s.regions = nil
		s.selected = make(map[string]bool)
	case StageDetect:
		next = StageUpload
		s.source = nil
		s.srcW, s.srcH = 0, 0
	default:
		s.mu.Unlock()
		return false
	}
	s.stage = next
	s.generation++
	s.mu.Unlock()

	s.emit(EventStageChanged, next)
	return true
}

func (s *Session) hasRegion(id string) bool {
	for _, r := range s.regions {
		if r.ID == id {
			return true
		}
	}
	return false
}
