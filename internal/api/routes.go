package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/spritedeck/spritedeck-agent/internal/config"
	"github.com/spritedeck/spritedeck-agent/internal/overlay"
	"github.com/spritedeck/spritedeck-agent/internal/playback"
	"github.com/spritedeck/spritedeck-agent/internal/segment"
	"github.com/spritedeck/spritedeck-agent/internal/settings"
)

// maxPreviewTicks caps how many playback steps a single preview request
// may compute.
const maxPreviewTicks = 1024

func NewRouter(cfg ServerConfig) *chi.Mux {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware())
	r.Use(RecoveryMiddleware(cfg.Logger))
	r.Use(LoggingMiddleware(cfg.Logger))
	r.Use(LoopbackMiddleware(cfg.Logger))

	r.Get("/health", healthHandler(cfg))

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(cfg.Repository, cfg.Logger))

		r.Get("/status", statusHandler(cfg))
		r.Post("/sprite", openSpriteHandler(cfg))
		r.Get("/sprite/file", spriteFileHandler(cfg))

		r.Get("/segments", listSegmentsHandler(cfg))
		r.Post("/segments", createSegmentHandler(cfg))
		r.Get("/segments/at/{frame}", segmentAtHandler(cfg))
		r.Get("/segments/{name}", getSegmentHandler(cfg))
		r.Patch("/segments/{name}", updateSegmentHandler(cfg))
		r.Delete("/segments/{name}", deleteSegmentHandler(cfg))
		r.Post("/segments/{name}/rename", renameSegmentHandler(cfg))
		r.Put("/segments/{name}/bounce", bounceModeHandler(cfg))
		r.Put("/segments/{name}/holds", frameHoldsHandler(cfg))
		r.Get("/segments/{name}/preview", previewHandler(cfg))

		r.Get("/overlaps", overlapsHandler(cfg))
		r.Post("/save", saveHandler(cfg))
		r.Post("/export/manifest", exportManifestHandler(cfg))
		r.Post("/export/frames", exportFramesHandler(cfg))

		r.Get("/recent-files", listRecentFilesHandler(cfg))
		r.Delete("/recent-files", deleteRecentFilesHandler(cfg))
	})

	return r
}

// writeSegmentError maps store and overlay errors onto HTTP statuses.
func writeSegmentError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, segment.ErrNotFound):
		WriteError(w, http.StatusNotFound, err.Error(), "NOT_FOUND")
	case errors.Is(err, segment.ErrNameConflict):
		WriteError(w, http.StatusConflict, err.Error(), "NAME_CONFLICT")
	case errors.Is(err, segment.ErrOverlap):
		WriteError(w, http.StatusConflict, err.Error(), "OVERLAP")
	case errors.Is(err, segment.ErrInvalidRange):
		WriteError(w, http.StatusBadRequest, err.Error(), "INVALID_RANGE")
	case errors.Is(err, segment.ErrOutOfRange):
		WriteError(w, http.StatusBadRequest, err.Error(), "OUT_OF_RANGE")
	case errors.Is(err, segment.ErrNoContext):
		WriteError(w, http.StatusConflict, err.Error(), "NO_SPRITE")
	case errors.Is(err, overlay.ErrEmptySelection):
		WriteError(w, http.StatusBadRequest, err.Error(), "BAD_REQUEST")
	case errors.Is(err, overlay.ErrNameExhausted):
		WriteError(w, http.StatusConflict, err.Error(), "NAME_EXHAUSTED")
	default:
		WriteError(w, http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
	}
}

func healthHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uptime := int64(time.Since(cfg.StartTime).Seconds())
		WriteJSON(w, http.StatusOK, HealthResponse{
			Status:   "ok",
			Version:  config.Version,
			UptimeS:  uptime,
			DeviceID: cfg.DeviceID,
		})
	}
}

func statusHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, StatusResponse{
			SpritePath:    cfg.Store.SpritePath(),
			MaxFrames:     cfg.Store.MaxFrames(),
			SegmentsCount: cfg.Store.Count(),
			OverlapsCount: len(cfg.Store.Overlaps()),
			AutoSave:      cfg.Store.AutoSave(),
		})
	}
}

func openSpriteHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req OpenSpriteRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}
		if req.Path == "" {
			WriteError(w, http.StatusBadRequest, "path is required", "BAD_REQUEST")
			return
		}
		if req.FrameCount <= 0 {
			WriteError(w, http.StatusBadRequest, "frame_count must be positive", "BAD_REQUEST")
			return
		}

		cfg.Store.SetSpriteContext(req.Path, req.FrameCount)
		cfg.Sync.SyncFromStore()

		if cfg.SettingsService != nil {
			if err := cfg.SettingsService.AddRecentFile(r.Context(), req.Path); err != nil {
				cfg.Logger.Warn("failed to record recent file", "error", err)
			}
			if err := cfg.SettingsService.Set(r.Context(), settings.KeyLastSprite, req.Path); err != nil {
				cfg.Logger.Warn("failed to store last sprite", "error", err)
			}
		}

		if cfg.OnSpriteOpened != nil {
			cfg.OnSpriteOpened(req.Path)
		}

		WriteJSON(w, http.StatusOK, OpenSpriteResponse{
			SpritePath:    cfg.Store.SpritePath(),
			MaxFrames:     cfg.Store.MaxFrames(),
			SegmentsCount: cfg.Store.Count(),
		})
	}
}

func spriteFileHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		spritePath := cfg.Store.SpritePath()
		if spritePath == "" {
			WriteError(w, http.StatusNotFound, "no sprite sheet is open", "NO_SPRITE")
			return
		}
		if err := cfg.SpriteServer.ServeSprite(w, r, spritePath); err != nil {
			cfg.Logger.Error("sprite serve error", "error", err, "path", spritePath)
		}
	}
}

func listSegmentsHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		records := cfg.Store.List()
		resp := SegmentsResponse{Segments: make([]SegmentResponse, len(records))}
		for i, rec := range records {
			resp.Segments[i] = SegmentToResponse(rec)
		}
		WriteJSON(w, http.StatusOK, resp)
	}
}

func createSegmentHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateSegmentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}
		if req.Name == "" {
			WriteError(w, http.StatusBadRequest, "name is required", "BAD_REQUEST")
			return
		}

		result, err := cfg.Sync.CreateFromSelection(req.Frames, req.Name)
		if err != nil {
			writeSegmentError(w, err)
			return
		}

		WriteJSON(w, http.StatusCreated, CreateSegmentResponse{
			Segment: SegmentToResponse(result.Record),
			Renamed: result.Renamed,
			HadGaps: result.HadGaps,
		})
	}
}

func getSegmentHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "name")
		rec, ok := cfg.Store.Get(name)
		if !ok {
			WriteError(w, http.StatusNotFound, "segment not found", "NOT_FOUND")
			return
		}
		WriteJSON(w, http.StatusOK, SegmentToResponse(rec))
	}
}

func updateSegmentHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "name")

		var req UpdateSegmentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}

		upd := segment.Update{
			NewName:     req.NewName,
			StartFrame:  req.StartFrame,
			EndFrame:    req.EndFrame,
			Description: req.Description,
			Tags:        req.Tags,
		}
		if req.ColorRGB != nil {
			color := segment.Color(*req.ColorRGB)
			upd.Color = &color
		}

		rec, err := cfg.Store.ApplyUpdate(name, upd)
		if err != nil {
			writeSegmentError(w, err)
			return
		}
		cfg.Sync.SyncFromStore()

		WriteJSON(w, http.StatusOK, SegmentToResponse(rec))
	}
}

func deleteSegmentHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "name")
		if err := cfg.Sync.Delete(name); err != nil {
			writeSegmentError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func renameSegmentHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "name")

		var req RenameSegmentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}
		if req.NewName == "" {
			WriteError(w, http.StatusBadRequest, "new_name is required", "BAD_REQUEST")
			return
		}

		if err := cfg.Sync.RenameValidated(name, req.NewName); err != nil {
			writeSegmentError(w, err)
			return
		}

		rec, _ := cfg.Store.Get(req.NewName)
		WriteJSON(w, http.StatusOK, SegmentToResponse(rec))
	}
}

func bounceModeHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "name")

		var req BounceModeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}

		if err := cfg.Store.SetBounceMode(name, req.Enabled); err != nil {
			writeSegmentError(w, err)
			return
		}
		cfg.Sync.SyncFromStore()

		rec, _ := cfg.Store.Get(name)
		WriteJSON(w, http.StatusOK, SegmentToResponse(rec))
	}
}

func frameHoldsHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "name")

		var req FrameHoldsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}

		if err := cfg.Store.SetFrameHolds(name, req.Holds); err != nil {
			writeSegmentError(w, err)
			return
		}
		cfg.Sync.SyncFromStore()

		rec, _ := cfg.Store.Get(name)
		WriteJSON(w, http.StatusOK, SegmentToResponse(rec))
	}
}

// previewHandler plays a segment's frame sequence forward and returns the
// absolute frame indices the viewer would display, holds and bounce applied.
func previewHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "name")
		rec, ok := cfg.Store.Get(name)
		if !ok {
			WriteError(w, http.StatusNotFound, "segment not found", "NOT_FOUND")
			return
		}

		ticks := rec.FrameCount() * 2
		if raw := r.URL.Query().Get("ticks"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 1 {
				WriteError(w, http.StatusBadRequest, "ticks must be a positive integer", "BAD_REQUEST")
				return
			}
			ticks = n
		}
		if ticks > maxPreviewTicks {
			ticks = maxPreviewTicks
		}

		fps := cfg.PreviewFPS
		if fps <= 0 {
			fps = 12
		}

		state := playback.NewState(rec)
		frames := make([]int, 0, ticks+1)
		frames = append(frames, rec.StartFrame+state.Offset())
		for i := 0; i < ticks; i++ {
			offset, _ := state.Advance()
			frames = append(frames, rec.StartFrame+offset)
		}

		WriteJSON(w, http.StatusOK, PreviewResponse{Name: rec.Name, FPS: fps, Frames: frames})
	}
}

func segmentAtHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		frame, err := strconv.Atoi(chi.URLParam(r, "frame"))
		if err != nil {
			WriteError(w, http.StatusBadRequest, "frame must be an integer", "BAD_REQUEST")
			return
		}

		rec, ok := cfg.Store.SegmentAt(frame)
		if !ok {
			WriteError(w, http.StatusNotFound, "no segment contains that frame", "NOT_FOUND")
			return
		}
		WriteJSON(w, http.StatusOK, SegmentToResponse(rec))
	}
}

func overlapsHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		overlaps := cfg.Store.Overlaps()
		if overlaps == nil {
			overlaps = [][2]string{}
		}
		WriteJSON(w, http.StatusOK, OverlapsResponse{Overlaps: overlaps})
	}
}

func saveHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := cfg.Store.Save(); err != nil {
			writeSegmentError(w, err)
			return
		}

		sidecarPath, err := segment.SidecarPath(cfg.Store.SpritePath())
		if err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
			return
		}
		WriteJSON(w, http.StatusOK, SaveResponse{Status: "ok", SidecarPath: sidecarPath})
	}
}

func listRecentFilesHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		files, err := cfg.SettingsService.RecentFiles(r.Context())
		if err != nil {
			WriteError(w, http.StatusInternalServerError, "failed to list recent files", "INTERNAL_ERROR")
			return
		}

		resp := RecentFilesResponse{Files: make([]RecentFileResponse, len(files))}
		for i, f := range files {
			resp.Files[i] = RecentFileToResponse(f)
		}
		WriteJSON(w, http.StatusOK, resp)
	}
}

func deleteRecentFilesHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Query().Get("path")

		var err error
		if path == "" {
			err = cfg.SettingsService.ClearRecentFiles(r.Context())
		} else {
			err = cfg.SettingsService.RemoveRecentFile(r.Context(), path)
		}
		if err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
