package export

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spritedeck/spritedeck-agent/internal/segment"
)

func testStore(t *testing.T) *segment.Store {
	t.Helper()
	store := segment.NewStore(nil, false)
	store.SetSpriteContext(filepath.Join(t.TempDir(), "hero.png"), 12)
	store.Add("Walk Cycle", 0, 3, nil, "basic walk")
	store.Add("Jump", 4, 9, nil, "")
	store.SetBounceMode("Jump", true)
	store.SetFrameHolds("Jump", map[int]int{0: 2})
	return store
}

func TestBuildManifest(t *testing.T) {
	store := testStore(t)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	m := BuildManifest(store, now)

	if m.SpriteSheetPath != store.SpritePath() {
		t.Errorf("SpriteSheetPath = %q", m.SpriteSheetPath)
	}
	if m.MaxFrames != 12 {
		t.Errorf("MaxFrames = %d, want 12", m.MaxFrames)
	}
	if m.GeneratedAt != "2025-06-01T12:00:00Z" {
		t.Errorf("GeneratedAt = %q", m.GeneratedAt)
	}
	if len(m.Segments) != 2 {
		t.Fatalf("Segments count = %d, want 2", len(m.Segments))
	}

	walk := m.Segments[0]
	if walk.Name != "Walk Cycle" || walk.FrameCount != 4 {
		t.Errorf("first entry = %+v", walk)
	}
	if walk.FileBase != "Walk Cycle" {
		t.Errorf("FileBase = %q", walk.FileBase)
	}

	jump := m.Segments[1]
	if !jump.BounceMode || jump.FrameHolds[0] != 2 {
		t.Errorf("jump entry lost playback options: %+v", jump)
	}
}

func TestWriteManifest(t *testing.T) {
	store := testStore(t)
	outDir := t.TempDir()

	path, err := WriteManifest(BuildManifest(store, time.Now()), outDir)
	if err != nil {
		t.Fatalf("WriteManifest() error = %v", err)
	}
	if !strings.HasSuffix(path, "hero_manifest.json") {
		t.Errorf("manifest path = %q", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading manifest: %v", err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("manifest is not valid JSON: %v", err)
	}
	if len(m.Segments) != 2 {
		t.Errorf("round-tripped segment count = %d", len(m.Segments))
	}
}

func TestWriteManifest_BadOutputDir(t *testing.T) {
	store := testStore(t)
	m := BuildManifest(store, time.Now())

	if _, err := WriteManifest(m, filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("WriteManifest() should fail for missing output dir")
	}
	if _, err := WriteManifest(m, ""); err == nil {
		t.Error("WriteManifest() should fail for empty output dir")
	}
}

func TestSanitizeName_SegmentNames(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Walk Cycle", "Walk Cycle"},
		{"attack/slash", "attack_slash"},
		{"idle\nloop", "idleloop"},
		{"<boss>", "_boss_"},
	}
	for _, tt := range tests {
		if got := SanitizeName(tt.in, 64); got != tt.want {
			t.Errorf("SanitizeName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestValidateOutputDirBasic(t *testing.T) {
	dir := t.TempDir()
	if err := ValidateOutputDir(dir); err != nil {
		t.Errorf("ValidateOutputDir(%q) = %v", dir, err)
	}
	if err := ValidateOutputDir(dir + "/../x"); err == nil {
		t.Error("ValidateOutputDir should reject traversal")
	}

	file := filepath.Join(dir, "f.txt")
	os.WriteFile(file, []byte("x"), 0644)
	if err := ValidateOutputDir(file); err == nil {
		t.Error("ValidateOutputDir should reject a file path")
	}
}
