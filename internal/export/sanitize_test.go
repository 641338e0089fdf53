package export

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		max   int
		want  string
	}{
		{"plain name", "Walk", 64, "Walk"},
		{"spaces kept", "Idle Blink", 64, "Idle Blink"},
		{"slash replaced", "Run/Fast", 64, "Run_Fast"},
		{"backslash replaced", "Run\\Fast", 64, "Run_Fast"},
		{"control runes dropped", "Jump\x00\x1f", 64, "Jump"},
		{"parens kept", "Walk (fast)", 64, "Walk (fast)"},
		{"truncated", "VeryLongSegmentName", 8, "VeryLong"},
		{"no limit", "VeryLongSegmentName", 0, "VeryLongSegmentName"},
		{"trimmed", "  Walk  ", 64, "Walk"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeName(tt.input, tt.max); got != tt.want {
				t.Errorf("SanitizeName(%q, %d) = %q, want %q", tt.input, tt.max, got, tt.want)
			}
		})
	}
}

func TestValidateOutputDir(t *testing.T) {
	dir := t.TempDir()

	if err := ValidateOutputDir(dir); err != nil {
		t.Errorf("ValidateOutputDir(%q) = %v, want nil", dir, err)
	}

	if err := ValidateOutputDir(""); err == nil {
		t.Error("ValidateOutputDir accepted empty path")
	}
	if err := ValidateOutputDir(dir + "/../elsewhere"); err == nil {
		t.Error("ValidateOutputDir accepted traversal")
	}
	if err := ValidateOutputDir(filepath.Join(dir, "missing")); err == nil {
		t.Error("ValidateOutputDir accepted nonexistent dir")
	}

	file := filepath.Join(dir, "plain.txt")
	if err := os.WriteFile(file, []byte("x"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := ValidateOutputDir(file); err == nil {
		t.Error("ValidateOutputDir accepted a regular file")
	}
}
