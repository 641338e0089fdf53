package frames

import (
	"image"

	"github.com/spritedeck/spritedeck-agent/internal/segment"
)

// ExtractForSegment returns the frames covered by a segment, clamped to the
// frames the source actually has. A segment that falls entirely outside the
// source yields an empty slice.
func ExtractForSegment(rec segment.Record, src Source) []image.Image {
	count := src.FrameCount()
	if count == 0 {
		return nil
	}

	start := rec.StartFrame
	if start < 0 {
		start = 0
	}
	end := rec.EndFrame
	if end > count-1 {
		end = count - 1
	}
	if start > end {
		return nil
	}

	out := make([]image.Image, 0, end-start+1)
	for i := start; i <= end; i++ {
		if frame, ok := src.FrameAt(i); ok {
			out = append(out, frame)
		}
	}
	return out
}
