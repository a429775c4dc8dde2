// Package tagsource discovers the tags to embed for an image, either
// from a caption file next to the image or from keywords already present
// in the image's own metadata.
package tagsource

import (
	"fmt"
	"os"
	"strings"

	"github.com/barasher/go-exiftool"

	"github.com/menta2k/xmp-sidecar/internal/utils"
)

// Source yields the tags for one image. An image without tags returns an
// empty slice and a nil error.
type Source interface {
	Tags(imagePath string) ([]string, error)
}

// CaptionFile reads tags from a text file sharing the image's base name,
// the layout produced by dataset captioning tools. Tags are separated by
// commas or newlines.
type CaptionFile struct {
	// Ext is the caption file extension, ".txt" by default.
	Ext string
}

// Tags reads and splits the caption file. A missing caption file is not
// an error: the image simply has no tags.
func (c CaptionFile) Tags(imagePath string) ([]string, error) {
	ext := c.Ext
	if ext == "" {
		ext = ".txt"
	}
	captionPath := utils.SidecarStem(imagePath) + ext

	data, err := os.ReadFile(captionPath)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read caption file %s: %w", captionPath, err)
	}

	var tags []string
	for _, chunk := range strings.FieldsFunc(string(data), func(r rune) bool {
		return r == ',' || r == '\n' || r == '\r'
	}) {
		if tag := strings.TrimSpace(chunk); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags, nil
}

// keywordFields are the metadata fields mined for embedded tags.
var keywordFields = []string{"Keywords", "Subject", "TagsList"}

// Embedded extracts tags an image already carries in its keyword fields,
// via a persistent exiftool session.
type Embedded struct {
	tool *exiftool.Exiftool
}

// NewEmbedded starts the underlying exiftool session. Callers must Close
// when done.
func NewEmbedded() (*Embedded, error) {
	tool, err := exiftool.NewExiftool()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize exiftool session: %w", err)
	}
	return &Embedded{tool: tool}, nil
}

// Close shuts the exiftool session down.
func (e *Embedded) Close() error {
	return e.tool.Close()
}

// Tags returns the image's embedded keywords, deduplicated across
// fields in first-seen order.
func (e *Embedded) Tags(imagePath string) ([]string, error) {
	metas := e.tool.ExtractMetadata(imagePath)
	if len(metas) == 0 {
		return nil, nil
	}
	meta := metas[0]
	if meta.Err != nil {
		return nil, fmt.Errorf("failed to extract metadata from %s: %w", meta.File, meta.Err)
	}

	var tags []string
	seen := make(map[string]struct{})
	add := func(tag string) {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			return
		}
		if _, ok := seen[tag]; ok {
			return
		}
		seen[tag] = struct{}{}
		tags = append(tags, tag)
	}

	for _, field := range keywordFields {
		value, ok := meta.Fields[field]
		if !ok {
			continue
		}
		switch v := value.(type) {
		case string:
			add(v)
		case []interface{}:
			for _, item := range v {
				if s, ok := item.(string); ok {
					add(s)
				}
			}
		}
	}
	return tags, nil
}
