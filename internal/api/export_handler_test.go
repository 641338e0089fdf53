package api

import (
	"encoding/json"
	"image"
	"image/png"
	"net/http"
	"os"
	"path/filepath"
	"testing"
)

func TestExportManifestHandler(t *testing.T) {
	ts := setupTestServer(t, 16)
	ts.request(t, http.MethodPost, "/segments", CreateSegmentRequest{Name: "Walk", Frames: []int{0, 1, 2}})
	ts.request(t, http.MethodPost, "/segments", CreateSegmentRequest{Name: "Run", Frames: []int{4, 5}})

	outDir := t.TempDir()
	rr := ts.request(t, http.MethodPost, "/export/manifest", ExportManifestRequest{OutputDir: outDir})
	if rr.Code != http.StatusOK {
		t.Fatalf("status code = %d, want %d: %s", rr.Code, http.StatusOK, rr.Body.String())
	}

	var resp ExportManifestResponse
	json.Unmarshal(rr.Body.Bytes(), &resp)
	if resp.SegmentCount != 2 {
		t.Errorf("segment_count = %d, want 2", resp.SegmentCount)
	}

	data, err := os.ReadFile(resp.OutputPath)
	if err != nil {
		t.Fatalf("manifest not written: %v", err)
	}
	var manifest map[string]interface{}
	if err := json.Unmarshal(data, &manifest); err != nil {
		t.Fatalf("manifest is not valid JSON: %v", err)
	}
	segments, ok := manifest["segments"].([]interface{})
	if !ok || len(segments) != 2 {
		t.Errorf("manifest segments = %v, want 2 entries", manifest["segments"])
	}
}

func TestExportManifestHandler_BadOutputDir(t *testing.T) {
	ts := setupTestServer(t, 16)
	ts.request(t, http.MethodPost, "/segments", CreateSegmentRequest{Name: "Walk", Frames: []int{0, 1}})

	rr := ts.request(t, http.MethodPost, "/export/manifest", ExportManifestRequest{OutputDir: "/nonexistent/dir"})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status code = %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestExportManifestHandler_NoSegments(t *testing.T) {
	ts := setupTestServer(t, 16)

	rr := ts.request(t, http.MethodPost, "/export/manifest", ExportManifestRequest{OutputDir: t.TempDir()})
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status code = %d, want %d", rr.Code, http.StatusUnprocessableEntity)
	}
}

// openTestSheet writes a real 4x2-cell PNG sprite sheet and opens it.
func openTestSheet(t *testing.T, ts *testServer) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sheet.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create sheet: %v", err)
	}
	if err := png.Encode(f, image.NewRGBA(image.Rect(0, 0, 32, 16))); err != nil {
		t.Fatalf("failed to encode sheet: %v", err)
	}
	f.Close()

	rr := ts.request(t, http.MethodPost, "/sprite", OpenSpriteRequest{Path: path, FrameCount: 8})
	if rr.Code != http.StatusOK {
		t.Fatalf("open sprite: status code = %d: %s", rr.Code, rr.Body.String())
	}
	return path
}

func TestExportFramesHandler(t *testing.T) {
	ts := setupTestServer(t, 16)
	openTestSheet(t, ts)
	ts.request(t, http.MethodPost, "/segments", CreateSegmentRequest{Name: "Walk", Frames: []int{0, 1, 2}})

	outDir := t.TempDir()
	rr := ts.request(t, http.MethodPost, "/export/frames", ExportFramesRequest{
		OutputDir:   outDir,
		Segment:     "Walk",
		FrameWidth:  8,
		FrameHeight: 8,
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("status code = %d, want %d: %s", rr.Code, http.StatusOK, rr.Body.String())
	}

	var resp ExportFramesResponse
	json.Unmarshal(rr.Body.Bytes(), &resp)
	if resp.FrameCount != 3 {
		t.Errorf("frame_count = %d, want 3", resp.FrameCount)
	}
	for _, path := range resp.Files {
		if _, err := os.Stat(path); err != nil {
			t.Errorf("frame file %s not written: %v", path, err)
		}
	}
}

func TestExportFramesHandler_BadGrid(t *testing.T) {
	ts := setupTestServer(t, 16)
	openTestSheet(t, ts)
	ts.request(t, http.MethodPost, "/segments", CreateSegmentRequest{Name: "Walk", Frames: []int{0, 1}})

	rr := ts.request(t, http.MethodPost, "/export/frames", ExportFramesRequest{
		OutputDir:   t.TempDir(),
		FrameWidth:  7,
		FrameHeight: 8,
	})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status code = %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestExportFramesHandler_UnknownSegment(t *testing.T) {
	ts := setupTestServer(t, 16)
	openTestSheet(t, ts)

	rr := ts.request(t, http.MethodPost, "/export/frames", ExportFramesRequest{
		OutputDir:   t.TempDir(),
		Segment:     "Missing",
		FrameWidth:  8,
		FrameHeight: 8,
	})
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status code = %d, want %d", rr.Code, http.StatusNotFound)
	}
}
