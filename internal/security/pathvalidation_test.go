package security

import (
	"os"
	"path/filepath"
	"testing"
)

func TestValidatePathWithinDirectory(t *testing.T) {
	tmpDir := t.TempDir()

	safeDir := filepath.Join(tmpDir, "safe")
	unsafeDir := filepath.Join(tmpDir, "unsafe")
	for _, d := range []string{safeDir, unsafeDir} {
		if err := os.MkdirAll(d, 0755); err != nil {
			t.Fatalf("MkdirAll(%s): %v", d, err)
		}
	}

	unsafeFile := filepath.Join(unsafeDir, "secret.txt")
	if err := os.WriteFile(unsafeFile, []byte("secret"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	// A symlink inside the safe directory pointing outside it.
	symlinkPath := filepath.Join(safeDir, "evil-symlink")
	if err := os.Symlink(unsafeDir, symlinkPath); err != nil {
		t.Fatalf("Symlink: %v", err)
	}

	tests := []struct {
		name      string
		filePath  string
		safeDir   string
		wantError bool
	}{
		{"path within directory", filepath.Join(tmpDir, "file.txt"), tmpDir, false},
		{"nested path", filepath.Join(tmpDir, "subdir", "file.txt"), tmpDir, false},
		{"dotdot component", filepath.Join(tmpDir, "..", "file.txt"), tmpDir, true},
		{"relative traversal", "../../../etc/passwd", tmpDir, true},
		{"absolute path outside", "/etc/passwd", tmpDir, true},
		{"file behind symlinked dir", filepath.Join(symlinkPath, "secret.txt"), safeDir, true},
		{"symlink itself", symlinkPath, safeDir, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePathWithinDirectory(tt.filePath, tt.safeDir)
			if (err != nil) != tt.wantError {
				t.Errorf("ValidatePathWithinDirectory() error = %v, wantError %v", err, tt.wantError)
			}
		})
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"squat", "squat"},
		{"bench press", "bench_press"},
		{"clean & jerk!", "clean_jerk"},
		{"deadlift-2026.03", "deadlift-2026.03"},
		{"../../etc/passwd", "etc_passwd"},
		{"", "unknown"},
		{"///", "unknown"},
	}

	for _, tt := range tests {
		if got := SanitizeFilename(tt.in); got != tt.want {
			t.Errorf("SanitizeFilename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSanitizeFilenameLength(t *testing.T) {
	long := ""
	for i := 0; i < 300; i++ {
		long += "a"
	}
	if got := SanitizeFilename(long); len(got) > 128 {
		t.Errorf("sanitized length = %d, want <= 128", len(got))
	}
}
