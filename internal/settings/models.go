package settings

import (
	"crypto/rand"
	"encoding/hex"
	"time"
)

// Well-known setting keys.
const (
	KeyAuthToken    = "auth_token"
	KeyDeviceID     = "device_id"
	KeyPreviewFPS   = "animation.preview_fps"
	KeyLoopMode     = "animation.loop_mode"
	KeyAutoSave     = "segments.auto_save"
	KeyLastSprite   = "sprite.last_opened"
	KeyGridColumns  = "display.grid_columns"
	KeyThumbnailPx  = "display.thumbnail_px"
)

// RecentFile is one entry of the recently-opened sprite sheet history.
type RecentFile struct {
	Path        string    `json:"path"`
	DisplayName string    `json:"display_name"`
	OpenedAt    time.Time `json:"opened_at"`
}

// NewToken returns a random hex token, used for the API bearer token and
// the install's device ID.
func NewToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
