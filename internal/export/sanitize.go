package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"
)

// SanitizeName converts a segment name into a safe file base name.
// Control runes are dropped, anything else outside the allowed set
// becomes an underscore, and the result is trimmed and truncated to
// maxLen runes (0 means no limit).
func SanitizeName(s string, maxLen int) string {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case unicode.IsControl(r):
			return -1
		case allowedNameRune(r):
			return r
		default:
			return '_'
		}
	}, s)

	cleaned = strings.TrimSpace(cleaned)
	if maxLen > 0 {
		if runes := []rune(cleaned); len(runes) > maxLen {
			cleaned = string(runes[:maxLen])
		}
	}
	return cleaned
}

// Letters, digits, and the punctuation commonly seen in animation
// names like "Walk (fast)" or "Idle-2". Path separators are never
// allowed.
func allowedNameRune(r rune) bool {
	if unicode.IsLetter(r) || unicode.IsDigit(r) {
		return true
	}
	return strings.ContainsRune(" -_.,()", r)
}

// ValidateOutputDir rejects export destinations that are empty, carry
// path traversal, are unclean, or do not name an existing directory.
// Callers check this before producing any files.
func ValidateOutputDir(dir string) error {
	if strings.TrimSpace(dir) == "" {
		return fmt.Errorf("output_dir is required")
	}
	if hasTraversal(dir) {
		return fmt.Errorf("output_dir cannot contain path traversal")
	}
	if filepath.Clean(dir) != dir {
		return fmt.Errorf("output_dir must be clean path")
	}

	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("output_dir does not exist")
		}
		return fmt.Errorf("invalid output_dir: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("output_dir is not a directory")
	}
	return nil
}

func hasTraversal(dir string) bool {
	for _, part := range strings.Split(filepath.ToSlash(dir), "/") {
		if part == ".." {
			return true
		}
	}
	return false
}
