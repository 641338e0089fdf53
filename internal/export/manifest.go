// Package export produces the segment manifest handed to external encoding
// pipelines: a JSON listing of every segment's range and playback options
// plus a filesystem-safe base name for per-segment output files.
package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spritedeck/spritedeck-agent/internal/segment"
)

const maxFileBaseLen = 64

// Manifest describes every segment of a sprite sheet for export.
type Manifest struct {
	SpriteSheetPath string  `json:"sprite_sheet_path"`
	MaxFrames       int     `json:"max_frames"`
	GeneratedAt     string  `json:"generated_at"`
	Segments        []Entry `json:"segments"`
}

// Entry is one segment in the manifest.
type Entry struct {
	Name        string      `json:"name"`
	FileBase    string      `json:"file_base"`
	StartFrame  int         `json:"start_frame"`
	EndFrame    int         `json:"end_frame"`
	FrameCount  int         `json:"frame_count"`
	Description string      `json:"description"`
	Tags        []string    `json:"tags"`
	BounceMode  bool        `json:"bounce_mode"`
	FrameHolds  map[int]int `json:"frame_holds"`
}

// BuildManifest snapshots the store's segment list in insertion order.
func BuildManifest(store *segment.Store, now time.Time) Manifest {
	records := store.List()
	entries := make([]Entry, 0, len(records))
	for _, rec := range records {
		entries = append(entries, Entry{
			Name:        rec.Name,
			FileBase:    SanitizeName(rec.Name, maxFileBaseLen),
			StartFrame:  rec.StartFrame,
			EndFrame:    rec.EndFrame,
			FrameCount:  rec.FrameCount(),
			Description: rec.Description,
			Tags:        rec.Tags,
			BounceMode:  rec.BounceMode,
			FrameHolds:  rec.FrameHolds,
		})
	}
	return Manifest{
		SpriteSheetPath: store.SpritePath(),
		MaxFrames:       store.MaxFrames(),
		GeneratedAt:     now.UTC().Format(time.RFC3339),
		Segments:        entries,
	}
}

// WriteManifest writes the manifest as "<sprite-stem>_manifest.json" in the
// output directory and returns the written path.
func WriteManifest(m Manifest, outputDir string) (string, error) {
	if err := ValidateOutputDir(outputDir); err != nil {
		return "", err
	}
	if m.SpriteSheetPath == "" {
		return "", fmt.Errorf("manifest has no sprite sheet path")
	}

	stem := strings.TrimSuffix(filepath.Base(m.SpriteSheetPath), filepath.Ext(m.SpriteSheetPath))
	outPath := filepath.Join(outputDir, stem+"_manifest.json")

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode manifest: %w", err)
	}
	if err := os.WriteFile(outPath, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write manifest: %w", err)
	}
	return outPath, nil
}
