package playback

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
)

// SpriteService serves the currently-open sprite sheet image to the viewer.
type SpriteService interface {
	ServeSprite(w http.ResponseWriter, r *http.Request, spritePath string) error
}

// Server streams sprite sheet files over HTTP with byte-range support so the
// viewer can fetch large sheets incrementally.
type Server struct {
	logger *slog.Logger
}

func NewServer(logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{logger: logger}
}

func (s *Server) ServeSprite(w http.ResponseWriter, r *http.Request, spritePath string) error {
	file, err := os.Open(spritePath)
	if err != nil {
		if os.IsNotExist(err) {
			http.Error(w, "sprite sheet not found", http.StatusNotFound)
			return nil
		}
		return fmt.Errorf("failed to open sprite sheet: %w", err)
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat sprite sheet: %w", err)
	}
	size := stat.Size()

	w.Header().Set("Accept-Ranges", "bytes")
	w.Header().Set("Content-Type", sheetContentType(spritePath))

	reqRange, err := ParseRange(r.Header.Get("Range"), size)
	switch {
	case errors.Is(err, ErrUnsatisfiable):
		w.Header().Set("Content-Range", fmt.Sprintf("bytes */%d", size))
		http.Error(w, "Range Not Satisfiable", http.StatusRequestedRangeNotSatisfiable)
		return nil
	case errors.Is(err, ErrInvalidRange):
		// A malformed Range header gets the whole file, matching how
		// net/http's file server treats it.
		s.logger.Debug("ignoring malformed range header", "range", r.Header.Get("Range"))
		reqRange = nil
	case err != nil:
		return err
	}

	if reqRange == nil {
		return s.serveWhole(w, file, size)
	}
	return s.servePartial(w, file, size, reqRange)
}

func (s *Server) serveWhole(w http.ResponseWriter, file *os.File, size int64) error {
	w.Header().Set("Content-Length", strconv.FormatInt(size, 10))
	w.WriteHeader(http.StatusOK)
	io.Copy(w, file)
	return nil
}

func (s *Server) servePartial(w http.ResponseWriter, file *os.File, size int64, rng *Range) error {
	if _, err := file.Seek(rng.Start, io.SeekStart); err != nil {
		return fmt.Errorf("failed to seek: %w", err)
	}

	w.Header().Set("Content-Length", strconv.FormatInt(rng.ContentLength(), 10))
	w.Header().Set("Content-Range", rng.ContentRange(size))
	w.WriteHeader(http.StatusPartialContent)
	io.CopyN(w, file, rng.ContentLength())
	return nil
}

func sheetContentType(path string) string {
	if ct := mime.TypeByExtension(filepath.Ext(path)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
