package api

import (
	"time"

	"github.com/spritedeck/spritedeck-agent/internal/segment"
	"github.com/spritedeck/spritedeck-agent/internal/settings"
)

type HealthResponse struct {
	Status   string `json:"status"`
	Version  string `json:"version"`
	UptimeS  int64  `json:"uptime_s"`
	DeviceID string `json:"device_id"`
}

type StatusResponse struct {
	SpritePath    string `json:"sprite_path,omitempty"`
	MaxFrames     int    `json:"max_frames"`
	SegmentsCount int    `json:"segments_count"`
	OverlapsCount int    `json:"overlaps_count"`
	AutoSave      bool   `json:"auto_save"`
}

type OpenSpriteRequest struct {
	Path       string `json:"path"`
	FrameCount int    `json:"frame_count"`
}

type OpenSpriteResponse struct {
	SpritePath    string `json:"sprite_path"`
	MaxFrames     int    `json:"max_frames"`
	SegmentsCount int    `json:"segments_count"`
}

type SegmentResponse struct {
	Name        string      `json:"name"`
	StartFrame  int         `json:"start_frame"`
	EndFrame    int         `json:"end_frame"`
	FrameCount  int         `json:"frame_count"`
	ColorRGB    [3]int      `json:"color_rgb"`
	Description string      `json:"description,omitempty"`
	Tags        []string    `json:"tags,omitempty"`
	BounceMode  bool        `json:"bounce_mode"`
	FrameHolds  map[int]int `json:"frame_holds,omitempty"`
}

type SegmentsResponse struct {
	Segments []SegmentResponse `json:"segments"`
}

type CreateSegmentRequest struct {
	Name   string `json:"name"`
	Frames []int  `json:"frames"`
}

type CreateSegmentResponse struct {
	Segment SegmentResponse `json:"segment"`
	Renamed bool            `json:"renamed"`
	HadGaps bool            `json:"had_gaps"`
}

type RenameSegmentRequest struct {
	NewName string `json:"new_name"`
}

type UpdateSegmentRequest struct {
	NewName     *string   `json:"new_name,omitempty"`
	StartFrame  *int      `json:"start_frame,omitempty"`
	EndFrame    *int      `json:"end_frame,omitempty"`
	ColorRGB    *[3]int   `json:"color_rgb,omitempty"`
	Description *string   `json:"description,omitempty"`
	Tags        *[]string `json:"tags,omitempty"`
}

type BounceModeRequest struct {
	Enabled bool `json:"enabled"`
}

type FrameHoldsRequest struct {
	Holds map[int]int `json:"holds"`
}

type PreviewResponse struct {
	Name   string `json:"name"`
	FPS    int    `json:"fps"`
	Frames []int  `json:"frames"`
}

type OverlapsResponse struct {
	Overlaps [][2]string `json:"overlaps"`
}

type SaveResponse struct {
	Status      string `json:"status"`
	SidecarPath string `json:"sidecar_path"`
}

type ExportManifestRequest struct {
	OutputDir string `json:"output_dir"`
}

type ExportManifestResponse struct {
	Status       string `json:"status"`
	OutputPath   string `json:"output_path"`
	SegmentCount int    `json:"segment_count"`
}

type ExportFramesRequest struct {
	OutputDir   string `json:"output_dir"`
	Segment     string `json:"segment,omitempty"`
	FrameWidth  int    `json:"frame_width"`
	FrameHeight int    `json:"frame_height"`
}

type ExportFramesResponse struct {
	Status     string   `json:"status"`
	FrameCount int      `json:"frame_count"`
	Files      []string `json:"files"`
}

type RecentFileResponse struct {
	Path        string `json:"path"`
	DisplayName string `json:"display_name"`
	OpenedAt    string `json:"opened_at"`
}

type RecentFilesResponse struct {
	Files []RecentFileResponse `json:"files"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func SegmentToResponse(rec segment.Record) SegmentResponse {
	return SegmentResponse{
		Name:        rec.Name,
		StartFrame:  rec.StartFrame,
		EndFrame:    rec.EndFrame,
		FrameCount:  rec.FrameCount(),
		ColorRGB:    [3]int(rec.ColorRGB),
		Description: rec.Description,
		Tags:        rec.Tags,
		BounceMode:  rec.BounceMode,
		FrameHolds:  rec.FrameHolds,
	}
}

func RecentFileToResponse(f *settings.RecentFile) RecentFileResponse {
	return RecentFileResponse{
		Path:        f.Path,
		DisplayName: f.DisplayName,
		OpenedAt:    f.OpenedAt.Format(time.RFC3339),
	}
}
