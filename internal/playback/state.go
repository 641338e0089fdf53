// Package playback drives segment preview. State is the per-segment tick
// machine that computes the next frame offset from a segment's bounce mode
// and per-frame holds; Server streams the sprite sheet image to the viewer
// with HTTP byte-range support.
package playback

import "github.com/spritedeck/spritedeck-agent/internal/segment"

// State is the runtime playback state for one actively-previewed segment.
// The owner calls Advance once per display frame interval; stopping a
// preview is simply ceasing to call Advance and calling Reset.
//
// Offsets are segment-local: 0 is the segment's first frame. The caller maps
// an offset to an absolute frame with record.StartFrame + offset.
type State struct {
	frameCount  int
	bounceMode  bool
	frameHolds  map[int]int
	offset      int
	direction   int
	holdCounter int
}

// NewState creates playback state for a segment record, starting at offset 0
// moving forward.
func NewState(rec segment.Record) *State {
	holds := make(map[int]int, len(rec.FrameHolds))
	for k, v := range rec.FrameHolds {
		holds[k] = v
	}
	return &State{
		frameCount: rec.FrameCount(),
		bounceMode: rec.BounceMode,
		frameHolds: holds,
		direction:  1,
	}
}

// Advance computes the next display offset for one tick. While the current
// offset has hold ticks remaining it is returned unchanged with held=true.
// Otherwise bounce mode reverses direction at either end of the segment and
// loop mode wraps to the start.
func (s *State) Advance() (offset int, held bool) {
	if holdFor, ok := s.frameHolds[s.offset]; ok && s.holdCounter < holdFor {
		s.holdCounter++
		return s.offset, true
	}
	s.holdCounter = 0

	if s.bounceMode {
		next := s.offset + s.direction
		if next >= s.frameCount {
			s.direction = -1
			next = s.frameCount - 2
		} else if next < 0 {
			s.direction = 1
			next = 1
		}
		if next < 0 {
			next = 0
		}
		if next > s.frameCount-1 {
			next = s.frameCount - 1
		}
		s.offset = next
	} else {
		s.offset = (s.offset + 1) % s.frameCount
	}

	return s.offset, false
}

// Offset returns the current segment-local frame offset.
func (s *State) Offset() int {
	return s.offset
}

// Direction returns the current playback direction, +1 or -1.
func (s *State) Direction() int {
	return s.direction
}

// Reset returns the state to offset 0, forward direction, no pending hold.
func (s *State) Reset() {
	s.offset = 0
	s.direction = 1
	s.holdCounter = 0
}
