package metadata

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
)

const sampleOutput = `
[System]        FileName                        : cat.jpg
[IFD0]          Make                            : Canon
[IFD0]          Model                           : Canon EOS R5
[ExifIFD]       ISO                             : 200
[ExifIFD]       SubjectArea                     : 2000 1500 400 300
[Composite]     GPSPosition                     : 40 deg 26' 46.30" N, 79 deg 58' 56.00" W
[IPTC]          Keywords                        : sunset
[XMP-dc]        Subject                         : sunset
[XMP-dc]        Subject                         : beach walk
[XMP-digiKam]   TagsList                        : People/Alice
[XMP-lr]        HierarchicalSubject             : Places|Beach
[XMP-dc]        Subject                         : https://example.com/a
[XMP-mwg-rs]    RegionName                      : Alice
[XMP-mwg-rs]    RegionAreaX                     : 0.42
[XMP-mwg-rs]    RegionAreaY                     : 0.31
[XMP-mwg-rs]    RegionAreaW                     : 0.10
[XMP-mwg-rs]    RegionAreaH                     : 0.15
[XMP-mwg-rs]    RegionPersonDisplayName         : Bob
[XMP-mwg-rs]    RegionAreaX                     : 0.80
[XMP-mwg-rs]    RegionAppliedToDimensionsW      : 6000
[XMP-mwg-rs]    RegionAppliedToDimensionsH      : 4000
[XMP-mwg-rs]    RegionAppliedToDimensionsUnit   : pixel
[XMP-dc]        Subject                         : (none)
`

func TestParseFields(t *testing.T) {
	meta := Parse(sampleOutput)

	// Both group-qualified and bare keys are stored.
	if got := meta.Fields["[IFD0]          Make"]; got != "Canon" {
		t.Errorf("Expected group-qualified Make 'Canon', got %q", got)
	}
	if got := meta.Fields["Make"]; got != "Canon" {
		t.Errorf("Expected bare Make 'Canon', got %q", got)
	}
	if got := meta.Fields["ISO"]; got != "200" {
		t.Errorf("Expected ISO '200', got %q", got)
	}
}

func TestParseGPSPosition(t *testing.T) {
	meta := Parse(sampleOutput)

	expected := `40 deg 26' 46.30" N, 79 deg 58' 56.00" W`
	if meta.GPSPosition != expected {
		t.Errorf("Expected GPS position %q, got %q", expected, meta.GPSPosition)
	}
}

func TestParseTags(t *testing.T) {
	meta := Parse(sampleOutput)

	// sunset deduplicated across Keywords and Subject, coordinate noise
	// and (none) skipped, URL kept flat.
	expectedTags := []string{"sunset", "beach walk", "https://example.com/a"}
	if !reflect.DeepEqual(meta.Tags, expectedTags) {
		t.Errorf("Expected tags %v, got %v", expectedTags, meta.Tags)
	}

	// Slash form rewritten to the pipe form.
	expectedSubjects := []string{"People|Alice", "Places|Beach"}
	if !reflect.DeepEqual(meta.HierarchicalSubjects, expectedSubjects) {
		t.Errorf("Expected hierarchical subjects %v, got %v", expectedSubjects, meta.HierarchicalSubjects)
	}
}

func TestParseFaceRegions(t *testing.T) {
	meta := Parse(sampleOutput)

	if !reflect.DeepEqual(meta.Faces, []string{"Alice", "Bob"}) {
		t.Fatalf("Expected faces [Alice Bob], got %v", meta.Faces)
	}
	if len(meta.FaceRegions) != 2 {
		t.Fatalf("Expected 2 face regions, got %d", len(meta.FaceRegions))
	}

	alice := meta.FaceRegions[0]
	if alice.AreaX != "0.42" || alice.AreaY != "0.31" || alice.AreaW != "0.10" || alice.AreaH != "0.15" {
		t.Errorf("Unexpected Alice region: %+v", alice)
	}

	// Lines after RegionPersonDisplayName attach to the most recently
	// seen face.
	bob := meta.FaceRegions[1]
	if bob.AreaX != "0.80" {
		t.Errorf("Expected Bob AreaX 0.80, got %q", bob.AreaX)
	}
	if bob.AppliedW != "6000" || bob.AppliedH != "4000" || bob.AppliedUnit != "pixel" {
		t.Errorf("Unexpected Bob applied dimensions: %+v", bob)
	}
}

func TestParseEmptyOutput(t *testing.T) {
	meta := Parse("")

	if len(meta.Tags) != 0 || len(meta.Faces) != 0 || len(meta.Fields) != 0 {
		t.Errorf("Expected empty metadata, got %+v", meta)
	}
}

// fakeRunner records the arguments it was called with and returns canned
// output.
type fakeRunner struct {
	args   [][]string
	stdout string
	err    error
}

func (f *fakeRunner) Run(_ context.Context, args []string) (string, string, error) {
	copied := make([]string, len(args))
	copy(copied, args)
	f.args = append(f.args, copied)
	return f.stdout, "", f.err
}

func TestReadInvokesGroupedShortMode(t *testing.T) {
	runner := &fakeRunner{stdout: sampleOutput}
	reader := NewReader(runner)

	meta := reader.Read(context.Background(), "/photos/cat.jpg")

	if len(runner.args) != 1 {
		t.Fatalf("Expected 1 invocation, got %d", len(runner.args))
	}
	expected := []string{"-a", "-G1", "-s", "/photos/cat.jpg"}
	if !reflect.DeepEqual(runner.args[0], expected) {
		t.Errorf("Expected args %v, got %v", expected, runner.args[0])
	}
	if len(meta.Tags) == 0 {
		t.Error("Expected parsed tags from runner output")
	}
}

func TestReadDegradesOnToolFailure(t *testing.T) {
	runner := &fakeRunner{err: errors.New("boom")}
	reader := NewReader(runner)

	meta := reader.Read(context.Background(), "/photos/cat.jpg")

	if meta == nil {
		t.Fatal("Read must never return nil")
	}
	if len(meta.Tags) != 0 || len(meta.Fields) != 0 {
		t.Errorf("Expected empty metadata on failure, got %+v", meta)
	}
}

func TestParseBareKeysWithoutGroup(t *testing.T) {
	meta := Parse("Keywords : mountain\n")

	if got := meta.Fields["Keywords"]; got != "mountain" {
		t.Errorf("Expected Keywords 'mountain', got %q", got)
	}
	if !reflect.DeepEqual(meta.Tags, []string{"mountain"}) {
		t.Errorf("Expected tags [mountain], got %v", meta.Tags)
	}
}

func TestParseCoordinateNoiseSkipped(t *testing.T) {
	meta := Parse("[ExifIFD] SubjectArea : 2000 1500 400 300\n")

	if len(meta.Tags) != 0 {
		t.Errorf("Coordinate values should not become tags, got %v", meta.Tags)
	}
}

func TestParseRegionLinesWithoutKnownFace(t *testing.T) {
	// Coordinate lines before any face name must not panic and must not
	// invent a face.
	meta := Parse("[XMP-mwg-rs] RegionAreaX : 0.5\n")

	if len(meta.FaceRegions) != 0 {
		t.Errorf("Expected no face regions, got %v", meta.FaceRegions)
	}
}

func TestParseMultilineKeyValueSpacing(t *testing.T) {
	meta := Parse(strings.Join([]string{
		"[IFD0] Model: Canon EOS R5",
		"[ExifIFD] DateTimeOriginal : 2023:06:01 10:20:30",
	}, "\n"))

	if got := meta.Fields["Model"]; got != "Canon EOS R5" {
		t.Errorf("Expected Model 'Canon EOS R5', got %q", got)
	}
	if got := meta.Fields["DateTimeOriginal"]; got != "2023:06:01 10:20:30" {
		t.Errorf("Expected timestamp with embedded colons preserved, got %q", got)
	}
}
