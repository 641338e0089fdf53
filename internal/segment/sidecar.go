package segment

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// sidecarDirName is the sibling directory holding segment files, one JSON
// file per sprite sheet.
const sidecarDirName = ".sprite_segments"

// sidecarFile is the on-disk shape of a sprite sheet's segment list.
type sidecarFile struct {
	SpriteSheetPath string   `json:"sprite_sheet_path"`
	MaxFrames       int      `json:"max_frames"`
	Segments        []Record `json:"segments"`
}

// SidecarPath derives the segment file location for a sprite sheet:
// a ".sprite_segments" directory next to the image, containing
// "<image-stem>_segments.json".
func SidecarPath(spritePath string) (string, error) {
	if spritePath == "" {
		return "", ErrNoContext
	}
	stem := strings.TrimSuffix(filepath.Base(spritePath), filepath.Ext(spritePath))
	return filepath.Join(filepath.Dir(spritePath), sidecarDirName, stem+"_segments.json"), nil
}

// Save writes the full store to the sidecar file for the current sprite
// sheet. It fails with ErrNoContext when no sprite sheet is loaded.
func (s *Store) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked()
}

func (s *Store) saveLocked() error {
	path, err := SidecarPath(s.spritePath)
	if err != nil {
		return err
	}

	doc := sidecarFile{
		SpriteSheetPath: s.spritePath,
		MaxFrames:       s.maxFrames,
		Segments:        s.listLocked(),
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode segments: %w", err)
	}

	if err := writeFileAtomic(path, data); err != nil {
		return fmt.Errorf("failed to save segments: %w", err)
	}
	return nil
}

// Load replaces the store's contents with the segments in the given file.
// A malformed file degrades to zero segments; entries that fail validation
// against the current frame ceiling are skipped. Neither case is an error.
func (s *Store) Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read segments file: %w", err)
	}

	var doc sidecarFile
	if err := json.Unmarshal(data, &doc); err != nil {
		if s.logger != nil {
			s.logger.Warn("corrupt segments file, treating as empty", "path", path, "error", err)
		}
		doc.Segments = nil
	}

	s.mu.Lock()
	s.clearLocked()

	events := []Event{{Type: EventCleared}}
	var skipped []string
	for _, rec := range doc.Segments {
		if rec.Tags == nil {
			rec.Tags = []string{}
		}
		if rec.FrameHolds == nil {
			rec.FrameHolds = map[int]int{}
		}
		if err := rec.Validate(s.maxFrames); err != nil {
			skipped = append(skipped, rec.Name)
			continue
		}
		if err := rec.ValidateHolds(rec.FrameHolds); err != nil {
			skipped = append(skipped, rec.Name)
			continue
		}
		if _, dup := s.segments[rec.Name]; dup {
			skipped = append(skipped, rec.Name)
			continue
		}
		s.segments[rec.Name] = rec
		s.order = append(s.order, rec.Name)
		events = append(events, Event{Type: EventAdded, Name: rec.Name, Record: rec.Clone()})
	}
	loaded := len(s.order)
	s.mu.Unlock()

	s.notify(events...)

	if s.logger != nil {
		if len(skipped) > 0 {
			s.logger.Warn("skipped invalid segments on load", "path", path, "loaded", loaded, "skipped", skipped)
		} else {
			s.logger.Debug("loaded segments", "path", path, "count", loaded)
		}
	}
	return nil
}

// PeekSidecar reads just the sprite path and frame ceiling recorded in a
// sidecar file, without touching any store.
func PeekSidecar(path string) (spritePath string, maxFrames int, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", 0, fmt.Errorf("failed to read segments file: %w", err)
	}
	var doc sidecarFile
	if err := json.Unmarshal(data, &doc); err != nil {
		return "", 0, fmt.Errorf("failed to parse segments file: %w", err)
	}
	return doc.SpriteSheetPath, doc.MaxFrames, nil
}

// writeFileAtomic writes data to a temp file in the target directory and
// renames it into place, so an interrupted write never leaves a truncated
// sidecar file.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return nil
}
