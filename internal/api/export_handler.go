package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/spritedeck/spritedeck-agent/internal/export"
	"github.com/spritedeck/spritedeck-agent/internal/frames"
	"github.com/spritedeck/spritedeck-agent/internal/logging"
	"github.com/spritedeck/spritedeck-agent/internal/segment"
)

func exportManifestHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ExportManifestRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}

		if err := export.ValidateOutputDir(req.OutputDir); err != nil {
			WriteError(w, http.StatusBadRequest, err.Error(), "BAD_REQUEST")
			return
		}

		if cfg.Store.SpritePath() == "" {
			WriteError(w, http.StatusConflict, "no sprite sheet is open", "NO_SPRITE")
			return
		}
		if cfg.Store.Count() == 0 {
			WriteError(w, http.StatusUnprocessableEntity, "no segments to export", "NO_SEGMENTS")
			return
		}

		manifest := export.BuildManifest(cfg.Store, time.Now().UTC())
		outputPath, err := export.WriteManifest(manifest, req.OutputDir)
		if err != nil {
			WriteError(w, http.StatusInternalServerError, "failed to write manifest", "INTERNAL_ERROR")
			return
		}

		WriteJSON(w, http.StatusOK, ExportManifestResponse{
			Status:       "ok",
			OutputPath:   outputPath,
			SegmentCount: len(manifest.Segments),
		})
	}
}

func exportFramesHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ExportFramesRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}

		if err := export.ValidateOutputDir(req.OutputDir); err != nil {
			WriteError(w, http.StatusBadRequest, err.Error(), "BAD_REQUEST")
			return
		}
		if req.FrameWidth <= 0 || req.FrameHeight <= 0 {
			WriteError(w, http.StatusBadRequest, "frame_width and frame_height must be positive", "BAD_REQUEST")
			return
		}

		spritePath := cfg.Store.SpritePath()
		if spritePath == "" {
			WriteError(w, http.StatusConflict, "no sprite sheet is open", "NO_SPRITE")
			return
		}

		var records []segment.Record
		if req.Segment != "" {
			rec, ok := cfg.Store.Get(req.Segment)
			if !ok {
				WriteError(w, http.StatusNotFound, "segment not found", "NOT_FOUND")
				return
			}
			records = []segment.Record{rec}
		} else {
			records = cfg.Store.List()
		}
		if len(records) == 0 {
			WriteError(w, http.StatusUnprocessableEntity, "no segments to export", "NO_SEGMENTS")
			return
		}

		src, err := frames.LoadSheet(spritePath, req.FrameWidth, req.FrameHeight)
		if err != nil {
			if errors.Is(err, frames.ErrBadGrid) {
				WriteError(w, http.StatusBadRequest, err.Error(), "BAD_REQUEST")
				return
			}
			WriteError(w, http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
			return
		}

		var files []string
		for _, rec := range records {
			paths, err := export.WriteSegmentFrames(rec, src, req.OutputDir)
			if err != nil {
				logging.WithSegment(cfg.Logger, rec.Name).Warn("failed to export segment frames", "error", err)
				continue
			}
			files = append(files, paths...)
		}
		if len(files) == 0 {
			WriteError(w, http.StatusUnprocessableEntity, "no frames could be exported", "NO_FRAMES")
			return
		}

		WriteJSON(w, http.StatusOK, ExportFramesResponse{
			Status:     "ok",
			FrameCount: len(files),
			Files:      files,
		})
	}
}
