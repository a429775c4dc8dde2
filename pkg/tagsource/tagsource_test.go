package tagsource

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestCaptionFileTags(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		expected []string
	}{
		{"comma separated", "orange cat, sunset, beach", []string{"orange cat", "sunset", "beach"}},
		{"newline separated", "orange cat\nsunset\nbeach\n", []string{"orange cat", "sunset", "beach"}},
		{"mixed with blanks", "orange cat,, sunset\n\n beach ,", []string{"orange cat", "sunset", "beach"}},
		{"windows line endings", "sunset\r\nbeach", []string{"sunset", "beach"}},
		{"empty file", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpDir := t.TempDir()
			imagePath := filepath.Join(tmpDir, "cat.jpg")
			captionPath := filepath.Join(tmpDir, "cat.txt")
			if err := os.WriteFile(captionPath, []byte(tt.content), 0644); err != nil {
				t.Fatal(err)
			}

			tags, err := CaptionFile{}.Tags(imagePath)
			if err != nil {
				t.Fatalf("Tags failed: %v", err)
			}
			if !reflect.DeepEqual(tags, tt.expected) {
				t.Errorf("Expected %v, got %v", tt.expected, tags)
			}
		})
	}
}

func TestCaptionFileMissingIsNotAnError(t *testing.T) {
	tags, err := CaptionFile{}.Tags(filepath.Join(t.TempDir(), "lonely.jpg"))
	if err != nil {
		t.Fatalf("Missing caption file must not be an error, got %v", err)
	}
	if len(tags) != 0 {
		t.Errorf("Expected no tags, got %v", tags)
	}
}

func TestCaptionFileCustomExtension(t *testing.T) {
	tmpDir := t.TempDir()
	imagePath := filepath.Join(tmpDir, "cat.jpg")
	if err := os.WriteFile(filepath.Join(tmpDir, "cat.tags"), []byte("sunset"), 0644); err != nil {
		t.Fatal(err)
	}

	tags, err := CaptionFile{Ext: ".tags"}.Tags(imagePath)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(tags, []string{"sunset"}) {
		t.Errorf("Expected [sunset], got %v", tags)
	}
}
