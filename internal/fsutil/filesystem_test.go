package fsutil

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

func TestMemoryWriteRead(t *testing.T) {
	m := NewMemoryFileSystem()

	if err := m.WriteFile("out/plots/rep-1.png", []byte("png-bytes"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	data, err := m.ReadFile("out/plots/rep-1.png")
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != "png-bytes" {
		t.Errorf("got %q, want png-bytes", data)
	}
}

func TestMemoryReadMissing(t *testing.T) {
	m := NewMemoryFileSystem()

	_, err := m.ReadFile("no-such-file")
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("got %v, want fs.ErrNotExist", err)
	}
}

func TestMemoryWriteImpliesParents(t *testing.T) {
	m := NewMemoryFileSystem()

	if err := m.WriteFile("a/b/c.csv", []byte("x"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	for _, dir := range []string{"a", "a/b"} {
		if !m.Exists(dir) {
			t.Errorf("Exists(%q) = false after write", dir)
		}
	}
	if m.Exists("a/z") {
		t.Error("Exists(a/z) = true, want false")
	}
}

func TestMemoryMkdirAll(t *testing.T) {
	m := NewMemoryFileSystem()

	if err := m.MkdirAll("reports/2026/03", 0755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if !m.Exists("reports/2026/03") || !m.Exists("reports") {
		t.Error("created directories not visible")
	}
}

func TestMemoryOverwrite(t *testing.T) {
	m := NewMemoryFileSystem()

	m.WriteFile("f", []byte("old"), 0644)
	m.WriteFile("f", []byte("new"), 0644)

	data, err := m.ReadFile("f")
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != "new" {
		t.Errorf("got %q, want new", data)
	}
}

func TestMemoryReadIsCopy(t *testing.T) {
	m := NewMemoryFileSystem()
	m.WriteFile("f", []byte("abc"), 0644)

	data, _ := m.ReadFile("f")
	data[0] = 'z'

	again, _ := m.ReadFile("f")
	if string(again) != "abc" {
		t.Errorf("stored data mutated through returned slice: %q", again)
	}
}

func TestOSFileSystem(t *testing.T) {
	osfs := OSFileSystem{}
	dir := t.TempDir()
	name := filepath.Join(dir, "sub", "f.txt")

	if err := osfs.MkdirAll(filepath.Dir(name), 0755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := osfs.WriteFile(name, []byte("hello"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if !osfs.Exists(name) {
		t.Error("Exists = false for written file")
	}

	data, err := osfs.ReadFile(name)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != "hello" {
		t.Errorf("got %q, want hello", data)
	}

	if osfs.Exists(filepath.Join(dir, "missing")) {
		t.Error("Exists = true for missing file")
	}
	if _, err := osfs.ReadFile(filepath.Join(dir, "missing")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("ReadFile missing: got %v, want ErrNotExist", err)
	}
}
