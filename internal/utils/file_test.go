package utils

import (
	"os"
	"path/filepath"
	"testing"
)

func TestGetFileExtension(t *testing.T) {
	tests := []struct {
		filename string
		expected string
	}{
		{"photo.jpg", "jpg"},
		{"photo.JPEG", "jpeg"},
		{"archive.tar.gz", "gz"},
		{"noext", ""},
		{".hidden", "hidden"},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			if got := GetFileExtension(tt.filename); got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestIsImageFile(t *testing.T) {
	tests := []struct {
		filename string
		image    bool
	}{
		{"photo.jpg", true},
		{"photo.PNG", true},
		{"photo.webp", true},
		{"sidecar.xmp", false},
		{"notes.txt", false},
		{"noext", false},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			if got := IsImageFile(tt.filename); got != tt.image {
				t.Errorf("IsImageFile(%q) = %t, expected %t", tt.filename, got, tt.image)
			}
		})
	}
}

func TestListImageFiles(t *testing.T) {
	tmpDir := t.TempDir()
	subDir := filepath.Join(tmpDir, "nested")
	if err := os.MkdirAll(subDir, 0755); err != nil {
		t.Fatal(err)
	}

	for _, name := range []string{"a.jpg", "b.txt", filepath.Join("nested", "c.png")} {
		if err := os.WriteFile(filepath.Join(tmpDir, name), []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	files, err := ListImageFiles(tmpDir)
	if err != nil {
		t.Fatal(err)
	}

	if len(files) != 2 {
		t.Errorf("Expected 2 image files, got %d: %v", len(files), files)
	}
}

func TestSidecarStem(t *testing.T) {
	if got := SidecarStem("/photos/cat.jpg"); got != "/photos/cat" {
		t.Errorf("Expected /photos/cat, got %s", got)
	}
	if got := SidecarStem("plain"); got != "plain" {
		t.Errorf("Expected plain, got %s", got)
	}
}

func TestMoveFileReplacesExisting(t *testing.T) {
	tmpDir := t.TempDir()
	src := filepath.Join(tmpDir, "src.xmp")
	dst := filepath.Join(tmpDir, "dst.xmp")

	if err := os.WriteFile(src, []byte("new"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(dst, []byte("old"), 0644); err != nil {
		t.Fatal(err)
	}

	if err := MoveFile(src, dst); err != nil {
		t.Fatalf("MoveFile failed: %v", err)
	}

	if FileExists(src) {
		t.Error("Source should be gone after move")
	}
	content, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if string(content) != "new" {
		t.Errorf("Expected destination content 'new', got %q", content)
	}
}

func TestMoveFileMissingSource(t *testing.T) {
	tmpDir := t.TempDir()
	if err := MoveFile(filepath.Join(tmpDir, "missing"), filepath.Join(tmpDir, "dst")); err == nil {
		t.Error("Expected error moving a missing file")
	}
}
