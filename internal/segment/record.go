// Package segment implements the animation-segment data model and its
// invariant-preserving store. A segment is a named inclusive sub-range of a
// sprite sheet's frame sequence plus playback options (bounce mode, per-frame
// holds). The store owns all segments for the currently-open sprite sheet and
// persists them to a JSON sidecar file next to the image.
package segment

import (
	"fmt"
	"hash/fnv"
	"strings"
)

// Color is an RGB triple on the 0-255 scale.
type Color [3]int

// Record describes one named animation segment. Frame indices are 0-based
// into the full sprite sheet sequence; StartFrame and EndFrame are inclusive.
// FrameHolds maps a segment-local frame offset (0..FrameCount-1) to the
// number of extra ticks the previewer keeps displaying it before advancing.
type Record struct {
	Name        string      `json:"name"`
	StartFrame  int         `json:"start_frame"`
	EndFrame    int         `json:"end_frame"`
	ColorRGB    Color       `json:"color_rgb"`
	Description string      `json:"description"`
	Tags        []string    `json:"tags"`
	BounceMode  bool        `json:"bounce_mode"`
	FrameHolds  map[int]int `json:"frame_holds"`
}

// NewRecord builds a record with defaults applied. If color is nil the color
// is derived from the name so every store agrees on a segment's color.
func NewRecord(name string, start, end int, color *Color, description string) Record {
	c := ColorForName(name)
	if color != nil {
		c = *color
	}
	return Record{
		Name:        name,
		StartFrame:  start,
		EndFrame:    end,
		ColorRGB:    c,
		Description: description,
		Tags:        []string{},
		FrameHolds:  map[int]int{},
	}
}

// FrameCount returns the number of frames covered by the segment.
func (r Record) FrameCount() int {
	return r.EndFrame - r.StartFrame + 1
}

// ContainsFrame reports whether the absolute frame index falls inside the
// segment's inclusive range.
func (r Record) ContainsFrame(frameIndex int) bool {
	return r.StartFrame <= frameIndex && frameIndex <= r.EndFrame
}

// OverlapsRange reports whether the segment intersects the inclusive range
// [start, end].
func (r Record) OverlapsRange(start, end int) bool {
	return start <= r.EndFrame && r.StartFrame <= end
}

// Validate checks the record's invariants. maxFrames is the frame-count
// ceiling of the current sprite sheet; pass 0 when no ceiling is known.
func (r Record) Validate(maxFrames int) error {
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("%w: segment name cannot be empty", ErrInvalidRange)
	}
	if r.StartFrame < 0 {
		return fmt.Errorf("%w: start frame cannot be negative", ErrInvalidRange)
	}
	if r.EndFrame < r.StartFrame {
		return fmt.Errorf("%w: end frame must be >= start frame", ErrInvalidRange)
	}
	if maxFrames > 0 {
		if r.StartFrame >= maxFrames {
			return fmt.Errorf("%w: start frame %d exceeds available frames (%d)", ErrInvalidRange, r.StartFrame, maxFrames)
		}
		if r.EndFrame >= maxFrames {
			return fmt.Errorf("%w: end frame %d exceeds available frames (%d)", ErrInvalidRange, r.EndFrame, maxFrames)
		}
	}
	return nil
}

// ValidateHolds checks that every hold offset is a valid segment-local frame
// offset for this record.
func (r Record) ValidateHolds(holds map[int]int) error {
	for offset := range holds {
		if offset < 0 || offset >= r.FrameCount() {
			return fmt.Errorf("%w: frame offset %d is out of range for segment", ErrOutOfRange, offset)
		}
	}
	return nil
}

// Clone returns a deep copy of the record. Overlay caches hold clones so
// they never alias a store record.
func (r Record) Clone() Record {
	c := r
	c.Tags = make([]string, len(r.Tags))
	copy(c.Tags, r.Tags)
	c.FrameHolds = make(map[int]int, len(r.FrameHolds))
	for k, v := range r.FrameHolds {
		c.FrameHolds[k] = v
	}
	return c
}

// ColorForName derives a stable color from a segment name. The name hash
// picks an HSV hue; saturation and value are fixed so all segment colors sit
// in the same band.
func ColorForName(name string) Color {
	h := fnv.New32a()
	h.Write([]byte(name))
	hue := int(h.Sum32() % 360)
	return hsvColor(hue, 180, 200)
}

// hsvColor converts HSV on the 0-359/0-255/0-255 scale to RGB.
func hsvColor(hue, sat, val int) Color {
	if sat == 0 {
		return Color{val, val, val}
	}

	region := hue / 60
	remainder := hue % 60

	p := val * (255 - sat) / 255
	q := val * (255*60 - sat*remainder) / (255 * 60)
	t := val * (255*60 - sat*(60-remainder)) / (255 * 60)

	switch region {
	case 0:
		return Color{val, t, p}
	case 1:
		return Color{q, val, p}
	case 2:
		return Color{p, val, t}
	case 3:
		return Color{p, q, val}
	case 4:
		return Color{t, p, val}
	default:
		return Color{val, p, q}
	}
}
