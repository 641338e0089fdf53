package export

import (
	"fmt"
	"image/png"
	"os"
	"path/filepath"

	"github.com/spritedeck/spritedeck-agent/internal/frames"
	"github.com/spritedeck/spritedeck-agent/internal/segment"
)

// WriteSegmentFrames writes one PNG per frame of a segment into outputDir,
// named <segment>_<index>.png with segment-local indices. Returns the paths
// written.
func WriteSegmentFrames(rec segment.Record, src frames.Source, outputDir string) ([]string, error) {
	if err := ValidateOutputDir(outputDir); err != nil {
		return nil, err
	}

	base := SanitizeName(rec.Name, maxFileBaseLen)
	if base == "" {
		base = "segment"
	}

	images := frames.ExtractForSegment(rec, src)
	if len(images) == 0 {
		return nil, fmt.Errorf("segment %q covers no frames in the sheet", rec.Name)
	}

	paths := make([]string, 0, len(images))
	for i, img := range images {
		path := filepath.Join(outputDir, fmt.Sprintf("%s_%03d.png", base, i))
		f, err := os.Create(path)
		if err != nil {
			return paths, fmt.Errorf("failed to create frame file: %w", err)
		}
		if err := png.Encode(f, img); err != nil {
			f.Close()
			return paths, fmt.Errorf("failed to encode frame %d: %w", i, err)
		}
		if err := f.Close(); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}
