package segment

import (
	"fmt"
	"log/slog"
	"os"
	"sync"
)

// Store owns all segment records for the currently-open sprite sheet. It
// enforces name uniqueness, frame bounds and the no-overlap policy, preserves
// insertion order, and persists to a JSON sidecar file next to the image.
//
// All operations are safe for use by a single logical owner; a mutex
// serializes concurrent callers so HTTP handlers and the tray UI cannot
// interleave mutations.
type Store struct {
	mu         sync.Mutex
	spritePath string
	maxFrames  int
	autoSave   bool
	segments   map[string]Record
	order      []string
	subs       []func(Event)
	logger     *slog.Logger
}

// NewStore creates an empty store. When autoSave is true every mutation
// writes the sidecar file synchronously before returning.
func NewStore(logger *slog.Logger, autoSave bool) *Store {
	return &Store{
		autoSave: autoSave,
		segments: make(map[string]Record),
		logger:   logger,
	}
}

// SetSpriteContext switches the store to a new sprite sheet. If the path
// differs from the current one all in-memory segments are discarded first,
// then the sidecar file for the new path is loaded if present. A corrupted
// sidecar degrades to zero segments rather than failing.
func (s *Store) SetSpriteContext(spritePath string, frameCount int) {
	s.mu.Lock()
	var events []Event
	if spritePath != s.spritePath && len(s.segments) > 0 {
		// Discard without auto-saving so the old sprite's sidecar file is
		// not overwritten with an empty list.
		s.clearLocked()
		events = append(events, Event{Type: EventCleared})
	}
	s.spritePath = spritePath
	s.maxFrames = frameCount
	s.mu.Unlock()
	s.notify(events...)

	if spritePath == "" {
		return
	}
	sidecar, err := SidecarPath(spritePath)
	if err != nil {
		return
	}
	if _, err := os.Stat(sidecar); err != nil {
		return
	}
	if err := s.Load(sidecar); err != nil && s.logger != nil {
		s.logger.Warn("failed to load sidecar", "path", sidecar, "error", err)
	}
}

// Add inserts a new segment. Pass a nil color to derive one from the name.
// It fails with ErrNameConflict for a duplicate name, ErrOverlap when the
// range intersects an existing segment, and ErrInvalidRange when bounds
// validation fails. The store is unchanged on failure.
func (s *Store) Add(name string, start, end int, color *Color, description string) (Record, error) {
	s.mu.Lock()

	if _, exists := s.segments[name]; exists {
		s.mu.Unlock()
		return Record{}, fmt.Errorf("%w: segment %q", ErrNameConflict, name)
	}
	if other, ok := s.overlappingLocked(start, end); ok {
		s.mu.Unlock()
		return Record{}, fmt.Errorf("%w: frames %d-%d overlap with segment %q", ErrOverlap, start, end, other)
	}

	rec := NewRecord(name, start, end, color, description)
	if err := rec.Validate(s.maxFrames); err != nil {
		s.mu.Unlock()
		return Record{}, err
	}

	s.segments[name] = rec
	s.order = append(s.order, name)
	s.autoSaveLocked()
	s.mu.Unlock()

	s.notify(Event{Type: EventAdded, Name: name, Record: rec.Clone()})
	return rec.Clone(), nil
}

// Remove deletes a segment by name. It returns false if the segment is not
// present.
func (s *Store) Remove(name string) bool {
	s.mu.Lock()
	if _, exists := s.segments[name]; !exists {
		s.mu.Unlock()
		return false
	}
	delete(s.segments, name)
	s.removeFromOrderLocked(name)
	s.autoSaveLocked()
	s.mu.Unlock()

	s.notify(Event{Type: EventRemoved, Name: name})
	return true
}

// Update applies the supplied field edits to a segment, re-validating the
// result. On validation failure the stored record is left untouched.
type Update struct {
	NewName     *string
	StartFrame  *int
	EndFrame    *int
	Color       *Color
	Description *string
	Tags        *[]string
}

// Rename re-keys a segment. The renamed segment moves to the end of the
// insertion order.
func (s *Store) Rename(oldName, newName string) error {
	_, err := s.ApplyUpdate(oldName, Update{NewName: &newName})
	return err
}

// ApplyUpdate edits a segment in place. It fails with ErrNotFound when the
// segment is absent and ErrNameConflict when renaming onto an existing name.
func (s *Store) ApplyUpdate(name string, upd Update) (Record, error) {
	s.mu.Lock()

	rec, exists := s.segments[name]
	if !exists {
		s.mu.Unlock()
		return Record{}, fmt.Errorf("%w: segment %q", ErrNotFound, name)
	}

	if upd.NewName != nil && *upd.NewName != name {
		if _, taken := s.segments[*upd.NewName]; taken {
			s.mu.Unlock()
			return Record{}, fmt.Errorf("%w: segment %q", ErrNameConflict, *upd.NewName)
		}
	}

	// Edit a copy so a failed validation leaves the stored record unchanged.
	edited := rec.Clone()
	if upd.NewName != nil {
		edited.Name = *upd.NewName
	}
	if upd.StartFrame != nil {
		edited.StartFrame = *upd.StartFrame
	}
	if upd.EndFrame != nil {
		edited.EndFrame = *upd.EndFrame
	}
	if upd.Color != nil {
		edited.ColorRGB = *upd.Color
	}
	if upd.Description != nil {
		edited.Description = *upd.Description
	}
	if upd.Tags != nil {
		edited.Tags = append([]string{}, (*upd.Tags)...)
	}

	if err := edited.Validate(s.maxFrames); err != nil {
		s.mu.Unlock()
		return Record{}, err
	}
	if err := edited.ValidateHolds(edited.FrameHolds); err != nil {
		s.mu.Unlock()
		return Record{}, err
	}

	var events []Event
	if edited.Name != name {
		delete(s.segments, name)
		s.removeFromOrderLocked(name)
		s.segments[edited.Name] = edited
		s.order = append(s.order, edited.Name)
		events = append(events,
			Event{Type: EventRemoved, Name: name},
			Event{Type: EventAdded, Name: edited.Name, Record: edited.Clone()},
		)
	} else {
		s.segments[name] = edited
		events = append(events, Event{Type: EventUpdated, Name: name, Record: edited.Clone()})
	}
	s.autoSaveLocked()
	s.mu.Unlock()

	s.notify(events...)
	return edited.Clone(), nil
}

// SetBounceMode toggles ping-pong playback for a segment.
func (s *Store) SetBounceMode(name string, enabled bool) error {
	s.mu.Lock()
	rec, exists := s.segments[name]
	if !exists {
		s.mu.Unlock()
		return fmt.Errorf("%w: segment %q", ErrNotFound, name)
	}
	rec.BounceMode = enabled
	s.segments[name] = rec
	s.autoSaveLocked()
	s.mu.Unlock()

	s.notify(Event{Type: EventUpdated, Name: name, Record: rec.Clone()})
	return nil
}

// SetFrameHolds replaces a segment's hold map. Offsets are segment-local;
// any offset outside 0..FrameCount-1 fails with ErrOutOfRange and leaves the
// existing holds untouched.
func (s *Store) SetFrameHolds(name string, holds map[int]int) error {
	s.mu.Lock()
	rec, exists := s.segments[name]
	if !exists {
		s.mu.Unlock()
		return fmt.Errorf("%w: segment %q", ErrNotFound, name)
	}
	if err := rec.ValidateHolds(holds); err != nil {
		s.mu.Unlock()
		return err
	}

	rec.FrameHolds = make(map[int]int, len(holds))
	for k, v := range holds {
		rec.FrameHolds[k] = v
	}
	s.segments[name] = rec
	s.autoSaveLocked()
	s.mu.Unlock()

	s.notify(Event{Type: EventUpdated, Name: name, Record: rec.Clone()})
	return nil
}

// Get returns a copy of the named segment.
func (s *Store) Get(name string) (Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, exists := s.segments[name]
	if !exists {
		return Record{}, false
	}
	return rec.Clone(), true
}

// List returns copies of all segments in insertion order.
func (s *Store) List() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listLocked()
}

func (s *Store) listLocked() []Record {
	out := make([]Record, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, s.segments[name].Clone())
	}
	return out
}

// Names returns all segment names in insertion order.
func (s *Store) Names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string{}, s.order...)
}

// Count returns the number of segments.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.order)
}

// SegmentAt returns the first-inserted segment containing the frame index.
func (s *Store) SegmentAt(frameIndex int) (Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, name := range s.order {
		if rec := s.segments[name]; rec.ContainsFrame(frameIndex) {
			return rec.Clone(), true
		}
	}
	return Record{}, false
}

// SegmentsContaining returns the names of every segment containing the frame
// index, in insertion order.
func (s *Store) SegmentsContaining(frameIndex int) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var names []string
	for _, name := range s.order {
		if s.segments[name].ContainsFrame(frameIndex) {
			names = append(names, name)
		}
	}
	return names
}

// Overlaps returns every pair of segments whose frame ranges intersect.
// Add rejects overlapping ranges, so pairs can only arrive through updates
// or a hand-edited sidecar file; this query surfaces them for diagnostics.
func (s *Store) Overlaps() [][2]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var pairs [][2]string
	for i, a := range s.order {
		for _, b := range s.order[i+1:] {
			ra, rb := s.segments[a], s.segments[b]
			if ra.OverlapsRange(rb.StartFrame, rb.EndFrame) {
				pairs = append(pairs, [2]string{a, b})
			}
		}
	}
	return pairs
}

// Clear removes all segments.
func (s *Store) Clear() {
	s.mu.Lock()
	s.clearLocked()
	s.autoSaveLocked()
	s.mu.Unlock()
	s.notify(Event{Type: EventCleared})
}

// SpritePath returns the path of the currently-open sprite sheet.
func (s *Store) SpritePath() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.spritePath
}

// MaxFrames returns the frame-count ceiling used for bounds validation.
func (s *Store) MaxFrames() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.maxFrames
}

// SetAutoSave enables or disables persistence on every mutation.
func (s *Store) SetAutoSave(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.autoSave = enabled
}

// AutoSave reports whether mutations persist to the sidecar automatically.
func (s *Store) AutoSave() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.autoSave
}

func (s *Store) clearLocked() {
	s.segments = make(map[string]Record)
	s.order = nil
}

func (s *Store) removeFromOrderLocked(name string) {
	for i, n := range s.order {
		if n == name {
			s.order = append(s.order[:i], s.order[i+1:]...)
			return
		}
	}
}

// overlappingLocked returns the name of the first segment intersecting
// [start, end], in insertion order.
func (s *Store) overlappingLocked(start, end int) (string, bool) {
	for _, name := range s.order {
		if s.segments[name].OverlapsRange(start, end) {
			return name, true
		}
	}
	return "", false
}

func (s *Store) autoSaveLocked() {
	if !s.autoSave || s.spritePath == "" {
		return
	}
	if err := s.saveLocked(); err != nil && s.logger != nil {
		s.logger.Warn("auto-save failed", "sprite", s.spritePath, "error", err)
	}
}
