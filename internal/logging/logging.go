// Package logging configures the agent's structured slog output and
// provides helpers for attaching common attributes and redacting
// sensitive values before they reach the log stream.
package logging

import (
	"log/slog"
	"os"
	"strings"
)

var levelNames = map[string]slog.Level{
	"debug":   slog.LevelDebug,
	"info":    slog.LevelInfo,
	"warn":    slog.LevelWarn,
	"warning": slog.LevelWarn,
	"error":   slog.LevelError,
}

// ParseLevel maps a level name to its slog level. Unknown names fall
// back to info rather than failing, so a typo in SPRITEDECK_LOG_LEVEL
// never prevents startup.
func ParseLevel(name string) slog.Level {
	if lvl, ok := levelNames[strings.ToLower(strings.TrimSpace(name))]; ok {
		return lvl
	}
	return slog.LevelInfo
}

// NewLogger builds the agent's JSON logger on stdout. Source locations
// are only recorded at debug level to keep normal output compact.
func NewLogger(level string) *slog.Logger {
	lvl := ParseLevel(level)
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:     lvl,
		AddSource: lvl == slog.LevelDebug,
	})
	return slog.New(handler)
}

// WithRequestID tags a logger with the request_id attribute.
func WithRequestID(logger *slog.Logger, requestID string) *slog.Logger {
	return logger.With("request_id", requestID)
}

// WithComponent tags a logger with the component attribute.
func WithComponent(logger *slog.Logger, component string) *slog.Logger {
	return logger.With("component", component)
}

// WithSegment tags a logger with the segment name it is acting on.
func WithSegment(logger *slog.Logger, name string) *slog.Logger {
	return logger.With("segment", name)
}

// WithSprite tags a logger with the sprite sheet path, redacted via
// SanitizePath.
func WithSprite(logger *slog.Logger, path string) *slog.Logger {
	return logger.With("sprite", SanitizePath(path))
}

// SanitizeToken keeps the first and last four characters of a token
// and masks the rest. Short tokens are masked entirely.
func SanitizeToken(token string) string {
	if len(token) <= 8 {
		return "****"
	}
	return token[:4] + "..." + token[len(token)-4:]
}

// SanitizePath collapses the user's home directory prefix to ~ so log
// lines do not leak usernames.
func SanitizePath(path string) string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return path
	}
	if strings.HasPrefix(path, home) {
		return "~" + path[len(home):]
	}
	return path
}
