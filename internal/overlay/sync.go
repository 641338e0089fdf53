package overlay

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/spritedeck/spritedeck-agent/internal/segment"
	"github.com/spritedeck/spritedeck-agent/internal/selection"
)

// maxNameRetries bounds how many synthesized names are tried when the
// proposed segment name collides.
const maxNameRetries = 10

var (
	// ErrNameExhausted is returned when every synthesized name collided.
	ErrNameExhausted = errors.New("could not find a free segment name")

	// ErrEmptySelection is returned when creating a segment from zero
	// selected frames.
	ErrEmptySelection = errors.New("no frames selected")
)

// NameGenerator produces disambiguator suffixes for name-conflict retries.
// Tests inject deterministic sequences.
type NameGenerator func() string

// TimestampNames derives suffixes from the wall clock, matching the
// interactive behavior where retries within the same session rarely collide.
func TimestampNames() NameGenerator {
	return func() string {
		return strconv.FormatInt(time.Now().UnixMilli()%10000, 10)
	}
}

// Sync is the sole mutation surface between the UI and the segment store.
type Sync struct {
	store  *segment.Store
	cache  *Cache
	names  NameGenerator
	logger *slog.Logger
}

// NewSync wires a mediator over the store and overlay cache. A nil names
// generator falls back to timestamp suffixes.
func NewSync(store *segment.Store, cache *Cache, names NameGenerator, logger *slog.Logger) *Sync {
	if names == nil {
		names = TimestampNames()
	}
	return &Sync{store: store, cache: cache, names: names, logger: logger}
}

// CreateResult reports the outcome of CreateFromSelection.
type CreateResult struct {
	Record segment.Record
	// Renamed is true when the proposed name collided and the segment was
	// created under a synthesized name instead.
	Renamed bool
	// HadGaps is true when the selection was not contiguous, so the created
	// segment spans unselected interior frames.
	HadGaps bool
}

// CreateFromSelection turns a finalized frame selection into a stored
// segment spanning the selection's full min..max range. A non-contiguous
// selection silently includes its gap frames; callers must confirm that
// with the user before calling. Name collisions are retried with
// synthesized "<base>_<suffix>" names, where base is the proposed name up
// to its first underscore.
func (s *Sync) CreateFromSelection(indices []int, proposedName string) (CreateResult, error) {
	if len(indices) == 0 {
		return CreateResult{}, ErrEmptySelection
	}

	start, end := indices[0], indices[0]
	for _, i := range indices[1:] {
		if i < start {
			start = i
		}
		if i > end {
			end = i
		}
	}
	hadGaps := !selection.IsContiguous(indices)

	rec, err := s.store.Add(proposedName, start, end, nil, "")
	if err == nil {
		s.cache.Put(rec)
		if s.logger != nil {
			s.logger.Info("segment created", "segment", rec.Name, "start", start, "end", end)
		}
		return CreateResult{Record: rec, HadGaps: hadGaps}, nil
	}
	if !errors.Is(err, segment.ErrNameConflict) {
		return CreateResult{}, err
	}

	base := proposedName
	if idx := strings.Index(proposedName, "_"); idx != -1 {
		base = proposedName[:idx]
	}

	for attempt := 0; attempt < maxNameRetries; attempt++ {
		candidate := base + "_" + s.names()
		rec, err = s.store.Add(candidate, start, end, nil, "")
		if err == nil {
			s.cache.Put(rec)
			if s.logger != nil {
				s.logger.Info("segment created with synthesized name",
					"segment", rec.Name, "proposed", proposedName, "start", start, "end", end)
			}
			return CreateResult{Record: rec, Renamed: true, HadGaps: hadGaps}, nil
		}
		if !errors.Is(err, segment.ErrNameConflict) {
			return CreateResult{}, err
		}
	}

	return CreateResult{}, fmt.Errorf("%w: %q after %d attempts", ErrNameExhausted, proposedName, maxNameRetries)
}

// RenameValidated renames a segment in the store and, only on success,
// relabels the overlay's cached copy. The cache is never renamed
// speculatively.
func (s *Sync) RenameValidated(oldName, newName string) error {
	if err := s.store.Rename(oldName, newName); err != nil {
		return err
	}
	rec, ok := s.store.Get(newName)
	if !ok {
		// Rename succeeded, so the record must exist; guard anyway.
		return fmt.Errorf("%w: segment %q", segment.ErrNotFound, newName)
	}
	s.cache.Rename(oldName, rec)
	if s.logger != nil {
		s.logger.Info("segment renamed", "from", oldName, "to", newName)
	}
	return nil
}

// Delete removes a segment from the store and, on success, drops the
// overlay's cached copy. On failure the overlay is untouched.
func (s *Sync) Delete(name string) error {
	if !s.store.Remove(name) {
		return fmt.Errorf("%w: segment %q", segment.ErrNotFound, name)
	}
	s.cache.Delete(name)
	if s.logger != nil {
		s.logger.Info("segment deleted", "segment", name)
	}
	return nil
}

// SyncFromStore replaces the overlay's entire cache with deep copies of the
// store's authoritative list. Called when the editing view opens or the
// store's contents may have diverged, such as after a sprite reload.
func (s *Sync) SyncFromStore() {
	s.cache.ReplaceAll(s.store.List())
}
