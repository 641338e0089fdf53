package frames

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
)

var ErrBadGrid = errors.New("frame size does not divide the sheet")

type subImager interface {
	SubImage(r image.Rectangle) image.Image
}

// SheetSource slices a decoded sprite sheet into frames on a fixed grid,
// left to right then top to bottom.
type SheetSource struct {
	sheet      image.Image
	frameW     int
	frameH     int
	columns    int
	frameCount int
}

// LoadSheet decodes the sprite sheet at path and slices it into
// frameW x frameH cells.
func LoadSheet(path string, frameW, frameH int) (*SheetSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sprite sheet: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode sprite sheet: %w", err)
	}
	return NewSheetSource(img, frameW, frameH)
}

func NewSheetSource(sheet image.Image, frameW, frameH int) (*SheetSource, error) {
	if frameW <= 0 || frameH <= 0 {
		return nil, fmt.Errorf("%w: frame size %dx%d", ErrBadGrid, frameW, frameH)
	}
	bounds := sheet.Bounds()
	if bounds.Dx()%frameW != 0 || bounds.Dy()%frameH != 0 {
		return nil, fmt.Errorf("%w: sheet %dx%d, frame %dx%d",
			ErrBadGrid, bounds.Dx(), bounds.Dy(), frameW, frameH)
	}

	columns := bounds.Dx() / frameW
	rows := bounds.Dy() / frameH
	return &SheetSource{
		sheet:      sheet,
		frameW:     frameW,
		frameH:     frameH,
		columns:    columns,
		frameCount: columns * rows,
	}, nil
}

func (s *SheetSource) FrameCount() int {
	return s.frameCount
}

func (s *SheetSource) FrameAt(i int) (image.Image, bool) {
	if i < 0 || i >= s.frameCount {
		return nil, false
	}

	bounds := s.sheet.Bounds()
	col := i % s.columns
	row := i / s.columns
	rect := image.Rect(
		bounds.Min.X+col*s.frameW,
		bounds.Min.Y+row*s.frameH,
		bounds.Min.X+(col+1)*s.frameW,
		bounds.Min.Y+(row+1)*s.frameH,
	)

	if sub, ok := s.sheet.(subImager); ok {
		return sub.SubImage(rect), true
	}

	// Sheet formats without SubImage get copied cell by cell.
	out := image.NewRGBA(image.Rect(0, 0, s.frameW, s.frameH))
	for y := 0; y < s.frameH; y++ {
		for x := 0; x < s.frameW; x++ {
			out.Set(x, y, s.sheet.At(rect.Min.X+x, rect.Min.Y+y))
		}
	}
	return out, true
}

func (s *SheetSource) AllFrames() []image.Image {
	out := make([]image.Image, 0, s.frameCount)
	for i := 0; i < s.frameCount; i++ {
		frame, _ := s.FrameAt(i)
		out = append(out, frame)
	}
	return out
}
