// Package frames defines the contract to the frame slicer that cuts a
// sprite sheet into individual frame images. Slicing and image decoding live
// outside this agent; consumers here only need counts and per-index access.
package frames

import "image"

// Source exposes the ordered frame sequence of the currently-open sprite
// sheet.
type Source interface {
	FrameCount() int
	FrameAt(i int) (image.Image, bool)
	AllFrames() []image.Image
}

// StaticSource is a Source over an in-memory frame slice, used by tests and
// by callers that already hold sliced frames.
type StaticSource struct {
	frames []image.Image
}

func NewStaticSource(frames []image.Image) *StaticSource {
	return &StaticSource{frames: frames}
}

func (s *StaticSource) FrameCount() int {
	return len(s.frames)
}

func (s *StaticSource) FrameAt(i int) (image.Image, bool) {
	if i < 0 || i >= len(s.frames) {
		return nil, false
	}
	return s.frames[i], true
}

func (s *StaticSource) AllFrames() []image.Image {
	out := make([]image.Image, len(s.frames))
	copy(out, s.frames)
	return out
}
