package settings

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"time"
)

type SettingsService interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	GetBool(ctx context.Context, key string, fallback bool) (bool, error)
	GetInt(ctx context.Context, key string, fallback int) (int, error)

	EnsureAuthToken(ctx context.Context) (string, error)
	EnsureDeviceID(ctx context.Context) (string, error)

	AddRecentFile(ctx context.Context, path string) error
	RecentFiles(ctx context.Context) ([]*RecentFile, error)
	RemoveRecentFile(ctx context.Context, path string) error
	ClearRecentFiles(ctx context.Context) error
}

type Service struct {
	repo        Repository
	recentLimit int
	logger      *slog.Logger
}

func NewService(repo Repository, recentLimit int, logger *slog.Logger) *Service {
	if recentLimit <= 0 {
		recentLimit = 10
	}
	return &Service{repo: repo, recentLimit: recentLimit, logger: logger}
}

func (s *Service) Get(ctx context.Context, key string) (string, error) {
	return s.repo.GetSetting(ctx, key)
}

func (s *Service) Set(ctx context.Context, key, value string) error {
	return s.repo.SetSetting(ctx, key, value)
}

func (s *Service) GetBool(ctx context.Context, key string, fallback bool) (bool, error) {
	raw, err := s.repo.GetSetting(ctx, key)
	if err != nil {
		return fallback, err
	}
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback, nil
	}
	return v, nil
}

func (s *Service) GetInt(ctx context.Context, key string, fallback int) (int, error) {
	raw, err := s.repo.GetSetting(ctx, key)
	if err != nil {
		return fallback, err
	}
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback, nil
	}
	return v, nil
}

// EnsureAuthToken returns the stored API token, generating and persisting
// one on first run.
func (s *Service) EnsureAuthToken(ctx context.Context) (string, error) {
	return s.ensureGenerated(ctx, KeyAuthToken)
}

// EnsureDeviceID returns the stable identifier for this install,
// generating one on first run.
func (s *Service) EnsureDeviceID(ctx context.Context) (string, error) {
	return s.ensureGenerated(ctx, KeyDeviceID)
}

func (s *Service) ensureGenerated(ctx context.Context, key string) (string, error) {
	existing, err := s.repo.GetSetting(ctx, key)
	if err != nil {
		return "", err
	}
	if existing != "" {
		return existing, nil
	}

	token, err := NewToken()
	if err != nil {
		return "", err
	}
	if err := s.repo.SetSetting(ctx, key, token); err != nil {
		return "", fmt.Errorf("failed to store %s: %w", key, err)
	}
	if s.logger != nil {
		s.logger.Info("generated setting", "key", key)
	}
	return token, nil
}

// AddRecentFile records path at the top of the recent-files history and
// prunes entries past the configured limit. Reopening a path moves it
// back to the top.
func (s *Service) AddRecentFile(ctx context.Context, path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("invalid path: %w", err)
	}

	entry := &RecentFile{
		Path:        absPath,
		DisplayName: filepath.Base(absPath),
		OpenedAt:    time.Now().UTC(),
	}
	if err := s.repo.UpsertRecentFile(ctx, entry); err != nil {
		return err
	}
	return s.repo.PruneRecentFiles(ctx, s.recentLimit)
}

func (s *Service) RecentFiles(ctx context.Context) ([]*RecentFile, error) {
	return s.repo.ListRecentFiles(ctx, s.recentLimit)
}

func (s *Service) RemoveRecentFile(ctx context.Context, path string) error {
	return s.repo.DeleteRecentFile(ctx, path)
}

func (s *Service) ClearRecentFiles(ctx context.Context) error {
	return s.repo.ClearRecentFiles(ctx)
}
