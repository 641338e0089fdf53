package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/spritedeck/spritedeck-agent/internal/overlay"
	"github.com/spritedeck/spritedeck-agent/internal/playback"
	"github.com/spritedeck/spritedeck-agent/internal/segment"
	"github.com/spritedeck/spritedeck-agent/internal/settings"
)

// Server wraps the agent's loopback HTTP server.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// ServerConfig carries everything the router and handlers need.
type ServerConfig struct {
	Port            int
	PreviewFPS      int
	Store           *segment.Store
	Sync            *overlay.Sync
	SpriteServer    playback.SpriteService
	SettingsService settings.SettingsService
	Repository      settings.Repository
	Logger          *slog.Logger
	StartTime       time.Time
	DeviceID        string

	// OnSpriteOpened is called after a sprite sheet is opened, with its
	// absolute path. Used to retarget the sidecar watcher.
	OnSpriteOpened func(path string)
}

// NewServer builds the HTTP server bound to the loopback interface.
// WriteTimeout stays zero so large sheet file downloads are never cut
// off mid-stream.
func NewServer(cfg ServerConfig) *Server {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf("127.0.0.1:%d", cfg.Port),
		Handler:      NewRouter(cfg),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0,
		IdleTimeout:  60 * time.Second,
	}
	return &Server{httpServer: srv, logger: cfg.Logger}
}

// Start blocks serving requests until Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) Addr() string {
	return s.httpServer.Addr
}
