// Package metadata reads an image's embedded metadata through exiftool's
// grouped short text output and reconstructs it into a structured record.
package metadata

import (
	"context"
	"log"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/menta2k/xmp-sidecar/pkg/exiftool"
	"github.com/menta2k/xmp-sidecar/pkg/safepath"
	"github.com/menta2k/xmp-sidecar/pkg/types"
)

var (
	gpsPositionRe = regexp.MustCompile(`GPSPosition\s*:\s*(.+)`)
	valueRe       = regexp.MustCompile(`:\s*(.+)`)
	faceNameRe    = regexp.MustCompile(`(?:RegionName|RegionPersonDisplayName)\s*:\s*(.+)`)
	coordNoiseRe  = regexp.MustCompile(`^\d+\s+\d+\s+\d+\s+\d+$`)
)

// tagFields are the metadata keys whose values contribute to tag
// extraction. Matching is by substring, so HierarchicalSubject lines also
// satisfy the Subject check; the order rules in parse keep that harmless.
var tagFields = []string{"Keywords", "Subject", "TagsList", "HierarchicalSubject"}

// regionFields maps a face-region line marker to the setter applied on the
// face record it belongs to.
var regionFields = []struct {
	marker string
	set    func(*types.FaceRegion, string)
}{
	{"RegionRectangle", func(f *types.FaceRegion, v string) { f.Rectangle = v }},
	{"RegionAreaX", func(f *types.FaceRegion, v string) { f.AreaX = v }},
	{"RegionAreaY", func(f *types.FaceRegion, v string) { f.AreaY = v }},
	{"RegionAreaW", func(f *types.FaceRegion, v string) { f.AreaW = v }},
	{"RegionAreaH", func(f *types.FaceRegion, v string) { f.AreaH = v }},
	{"RegionAppliedToDimensionsW", func(f *types.FaceRegion, v string) { f.AppliedW = v }},
	{"RegionAppliedToDimensionsH", func(f *types.FaceRegion, v string) { f.AppliedH = v }},
	{"RegionAppliedToDimensionsUnit", func(f *types.FaceRegion, v string) { f.AppliedUnit = v }},
}

// Reader extracts existing metadata from images. Reading is best-effort
// enrichment: every failure degrades to a partial record plus a logged
// warning, so a broken read never fails the caller's batch item.
type Reader struct {
	runner exiftool.Runner
}

// NewReader creates a Reader backed by the given exiftool runner.
func NewReader(runner exiftool.Runner) *Reader {
	return &Reader{runner: runner}
}

// ReadArgs is the exiftool read invocation: all tags, one-letter group
// labels, short tag names.
func ReadArgs(path string) []string {
	return []string{"-a", "-G1", "-s", path}
}

// Read invokes exiftool against a Unicode-safe copy of the image path and
// parses its output. The returned record is never nil.
func (r *Reader) Read(ctx context.Context, imagePath string) *types.ExistingMetadata {
	safePath, copied := safepath.MakeSafeCopy(imagePath)
	if copied {
		defer safepath.Cleanup(safePath)
	}

	stdout, stderr, err := r.runner.Run(ctx, ReadArgs(safePath))
	if err != nil {
		log.Printf("Warning: could not read metadata from %s: %v", filepath.Base(imagePath), err)
		if strings.TrimSpace(stderr) != "" {
			log.Printf("exiftool stderr: %s", strings.TrimSpace(stderr))
		}
		return emptyMetadata()
	}

	return Parse(stdout)
}

func emptyMetadata() *types.ExistingMetadata {
	return &types.ExistingMetadata{
		Tags:                 []string{},
		HierarchicalSubjects: []string{},
		Faces:                []string{},
		FaceRegions:          []types.FaceRegion{},
		Fields:               map[string]string{},
	}
}

// Parse turns exiftool's "[Group] Key : Value" output into an
// ExistingMetadata record.
//
// Face-region fields arrive as flat line streams without per-record
// delimiters, so each coordinate line is attached to the most recently
// seen face name. For multi-face images this association is best-effort
// and can mis-attribute coordinates; it mirrors what the output format
// allows, not a guaranteed grouping.
func Parse(output string) *types.ExistingMetadata {
	meta := emptyMetadata()

	var faceOrder []string
	facesByName := make(map[string]*types.FaceRegion)
	var lastFace *types.FaceRegion

	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		// Every line lands in Fields, both group-qualified and bare.
		if idx := strings.Index(line, ":"); idx >= 0 {
			key := strings.TrimSpace(line[:idx])
			value := strings.TrimSpace(line[idx+1:])
			meta.Fields[key] = value
			if end := strings.Index(key, "]"); end >= 0 {
				meta.Fields[strings.TrimSpace(key[end+1:])] = value
			}
		}

		if strings.Contains(line, "GPSPosition") {
			if m := gpsPositionRe.FindStringSubmatch(line); m != nil {
				meta.GPSPosition = strings.TrimSpace(m[1])
			}
		}

		if containsAny(line, tagFields) {
			if m := valueRe.FindStringSubmatch(line); m != nil {
				collectTag(meta, strings.TrimSpace(m[1]))
			}
		}

		switch {
		case strings.Contains(line, "RegionName") || strings.Contains(line, "RegionPersonDisplayName"):
			m := faceNameRe.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			name := strings.TrimSpace(m[1])
			if name == "" {
				continue
			}
			face, ok := facesByName[name]
			if !ok {
				face = &types.FaceRegion{Name: name}
				facesByName[name] = face
				faceOrder = append(faceOrder, name)
				meta.Faces = append(meta.Faces, name)
			}
			lastFace = face
		default:
			for _, rf := range regionFields {
				if !strings.Contains(line, rf.marker) {
					continue
				}
				if m := valueRe.FindStringSubmatch(line); m != nil && lastFace != nil {
					rf.set(lastFace, strings.TrimSpace(m[1]))
				}
				break
			}
		}
	}

	for _, name := range faceOrder {
		meta.FaceRegions = append(meta.FaceRegions, *facesByName[name])
	}
	return meta
}

// collectTag applies the tag extraction rules to a single field value.
func collectTag(meta *types.ExistingMetadata, value string) {
	if value == "" || value == "(none)" {
		return
	}
	// Four whitespace-separated integers are subject-area coordinates,
	// not a tag.
	if coordNoiseRe.MatchString(value) {
		return
	}
	if strings.Contains(value, "|") {
		appendUnique(&meta.HierarchicalSubjects, value)
		return
	}
	if strings.Contains(value, "/") && !strings.HasPrefix(value, "http") {
		appendUnique(&meta.HierarchicalSubjects, strings.ReplaceAll(value, "/", "|"))
		return
	}
	appendUnique(&meta.Tags, value)
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func appendUnique(list *[]string, value string) {
	for _, existing := range *list {
		if existing == value {
			return
		}
	}
	*list = append(*list, value)
}
