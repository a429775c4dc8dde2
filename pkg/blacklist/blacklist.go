package blacklist

import (
	"bufio"
	"log"
	"os"
	"strings"
)

// Disabled is the sentinel file value that turns blacklist filtering off
// entirely, regardless of any custom tags.
const Disabled = "DISABLED"

// defaultTags are low-value tags that should never end up in a sidecar:
// quality complaints, watermark noise, and generic media/AI-tooling terms.
var defaultTags = []string{
	"blurry", "low quality", "bad quality", "worst quality", "jpeg artifacts",
	"watermark", "text", "signature", "username", "logo",
	"image", "picture", "photo", "art", "artwork", "drawing", "painting",
	"digital art", "digital painting", "illustration", "sketch",
	"ai generated", "artificial intelligence", "machine learning",
	"deep learning", "neural network", "gan", "stable diffusion",
	"midjourney", "dalle", "openai", "automatic1111",
}

// DefaultTags returns a copy of the built-in blacklist.
func DefaultTags() []string {
	tags := make([]string, len(defaultTags))
	copy(tags, defaultTags)
	return tags
}

// Filter decides which tags are eligible to be written into a sidecar.
// The active set is immutable once constructed.
type Filter struct {
	set map[string]struct{}
}

// New builds a Filter from the built-in defaults, an optional custom tag
// list, and an optional newline-delimited blacklist file. Construction
// fails open: a missing or unreadable file degrades to the defaults plus
// any custom tags, never to an error.
func New(blacklistFile string, customTags []string) *Filter {
	set := make(map[string]struct{})

	if blacklistFile == Disabled {
		return &Filter{set: set}
	}

	for _, tag := range defaultTags {
		set[tag] = struct{}{}
	}

	for _, tag := range customTags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag != "" {
			set[tag] = struct{}{}
		}
	}

	if blacklistFile != "" {
		if err := loadFile(blacklistFile, set); err != nil {
			log.Printf("Warning: could not load blacklist file %s: %v", blacklistFile, err)
			log.Printf("Using default blacklist only.")
		}
	}

	return &Filter{set: set}
}

// loadFile merges a newline-delimited tag file into set. Blank lines and
// lines starting with # are ignored.
func loadFile(path string, set map[string]struct{}) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		set[strings.ToLower(line)] = struct{}{}
	}
	return scanner.Err()
}

// Len returns the number of blacklisted tags in the active set.
func (f *Filter) Len() int {
	return len(f.set)
}

// Contains reports whether a tag is blacklisted. Matching is
// case-insensitive and ignores surrounding whitespace.
func (f *Filter) Contains(tag string) bool {
	_, ok := f.set[strings.ToLower(strings.TrimSpace(tag))]
	return ok
}

// Filter returns the tags not present in the active set, preserving the
// input order and original casing. Empty tags are dropped as well.
func (f *Filter) Filter(tags []string) []string {
	filtered := make([]string, 0, len(tags))
	for _, tag := range tags {
		key := strings.ToLower(strings.TrimSpace(tag))
		if key == "" {
			continue
		}
		if _, ok := f.set[key]; ok {
			log.Printf("Filtered out blacklisted tag: %q", tag)
			continue
		}
		filtered = append(filtered, tag)
	}
	return filtered
}
