// Package xmpsidecar generates XMP sidecar files for tagged image
// batches using exiftool.
//
// A sidecar carries the image's tags in four redundant XMP/IPTC
// locations so digiKam, Lightroom, and Darktable all pick them up, and
// clones the image's embedded EXIF/TIFF/GPS metadata into the matching
// XMP namespaces. Tags pass through a configurable blacklist first, and
// images whose filenames exiftool cannot handle (emoji, surrogates) are
// routed through ASCII-safe temporary copies.
//
// Basic usage:
//
//	package main
//
//	import (
//		"context"
//		"fmt"
//		"log"
//
//		xmpsidecar "github.com/menta2k/xmp-sidecar"
//		"github.com/menta2k/xmp-sidecar/pkg/batch"
//		"github.com/menta2k/xmp-sidecar/pkg/types"
//	)
//
//	func main() {
//		engine, err := xmpsidecar.New(xmpsidecar.Options{Overwrite: true})
//		if err != nil {
//			log.Fatal(err)
//		}
//
//		images := []types.Image{
//			{Path: "photo.jpg", Tags: []string{"sunset", "beach"}},
//		}
//
//		summary := engine.Run(context.Background(), images, batch.Events{
//			Log: func(line string) { fmt.Println(line) },
//		})
//		fmt.Printf("Processed %d images, %d errors\n", summary.Processed, summary.Errors)
//	}
//
// The package consists of five main components:
//
// 1. Blacklist (pkg/blacklist): Filters unwanted tags before writing
// 2. Safepath (pkg/safepath): ASCII-safe temporary paths for exiftool
// 3. Metadata (pkg/metadata): Reads existing metadata from images
// 4. Sidecar (pkg/sidecar): Builds and writes the XMP sidecar files
// 5. Batch (pkg/batch): Concurrent orchestration with cancellation
package xmpsidecar

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"

	"github.com/menta2k/xmp-sidecar/pkg/batch"
	"github.com/menta2k/xmp-sidecar/pkg/blacklist"
	"github.com/menta2k/xmp-sidecar/pkg/exiftool"
	"github.com/menta2k/xmp-sidecar/pkg/metadata"
	"github.com/menta2k/xmp-sidecar/pkg/sidecar"
	"github.com/menta2k/xmp-sidecar/pkg/types"
)

// Version of the xmp-sidecar library
const Version = "1.0.0"

// Options configure an Engine. The zero value is usable: xmp format, no
// overwrite, default blacklist, exiftool from PATH.
type Options struct {
	// Format of the generated sidecars. Only "xmp" is supported; an
	// empty value selects it.
	Format string

	// Overwrite replaces existing sidecar files instead of failing.
	Overwrite bool

	// BlacklistFile is an optional path to a newline-separated tag
	// blacklist. The sentinel blacklist.Disabled turns filtering off.
	BlacklistFile string

	// BlacklistTags are merged into the built-in blacklist.
	BlacklistTags []string

	// Workers is the concurrent worker count; zero selects the default.
	Workers int

	// FlushEvery is the completion count between flush callbacks; zero
	// selects the default of 50.
	FlushEvery int

	// ExiftoolPath overrides the exiftool binary location.
	ExiftoolPath string
}

// Generator performs the per-image pipeline: validate the format,
// filter the tags, read existing metadata, write the sidecar. It is safe
// for concurrent use.
type Generator struct {
	filter    *blacklist.Filter
	reader    *metadata.Reader
	writer    *sidecar.Writer
	format    string
	overwrite bool
}

// NewGenerator wires a Generator from its parts.
func NewGenerator(runner exiftool.Runner, filter *blacklist.Filter, format string, overwrite bool) *Generator {
	if format == "" {
		format = sidecar.Format
	}
	return &Generator{
		filter:    filter,
		reader:    metadata.NewReader(runner),
		writer:    sidecar.NewWriter(runner),
		format:    format,
		overwrite: overwrite,
	}
}

// Process handles one image and reports the outcome. It never panics on
// bad input; every failure mode is an error in the outcome.
func (g *Generator) Process(ctx context.Context, img types.Image) types.Outcome {
	name := filepath.Base(img.Path)

	if g.format != sidecar.Format {
		return types.Outcome{Image: img, Err: fmt.Errorf("%w: %s", sidecar.ErrUnsupportedFormat, g.format)}
	}

	if len(img.Tags) == 0 {
		return types.Outcome{Image: img, Err: fmt.Errorf("%w for %s", sidecar.ErrNoEligibleTags, name)}
	}

	tags := g.filter.Filter(img.Tags)
	if len(tags) == 0 {
		return types.Outcome{Image: img, Err: fmt.Errorf("%w for %s: all tags blacklisted", sidecar.ErrNoEligibleTags, name)}
	}

	// Existing metadata is read for enrichment and diagnostics only; a
	// failed read degrades to an empty record and never fails the image.
	existing := g.reader.Read(ctx, img.Path)
	if len(existing.Tags) > 0 || len(existing.Faces) > 0 {
		log.Printf("Found %d existing tags and %d face regions in %s",
			len(existing.Tags), len(existing.FaceRegions), name)
	}
	if existing.GPSPosition != "" {
		log.Printf("Found GPS position in %s: %s", name, existing.GPSPosition)
	}

	if err := g.writer.Write(ctx, img.Path, tags, g.overwrite); err != nil {
		return types.Outcome{Image: img, Err: err}
	}

	img.HasSidecar = true
	return types.Outcome{Image: img, Success: true}
}

// Engine is the high-level entry point tying the generator to the batch
// orchestrator.
type Engine struct {
	generator *Generator
	opts      Options
}

// New creates an Engine. The requested format is validated up front so a
// misconfigured engine fails at construction, not per image.
func New(opts Options) (*Engine, error) {
	if opts.Format == "" {
		opts.Format = sidecar.Format
	}
	if opts.Format != sidecar.Format {
		return nil, fmt.Errorf("%w: %s", sidecar.ErrUnsupportedFormat, opts.Format)
	}

	runner := exiftool.NewCommandRunner(opts.ExiftoolPath)
	filter := blacklist.New(opts.BlacklistFile, opts.BlacklistTags)

	return &Engine{
		generator: NewGenerator(runner, filter, opts.Format, opts.Overwrite),
		opts:      opts,
	}, nil
}

// Generator exposes the per-image pipeline for callers that manage
// their own concurrency.
func (e *Engine) Generator() *Generator {
	return e.generator
}

// NewRun creates an orchestrator for a batch without starting it, for
// callers that need to Cancel or observe state.
func (e *Engine) NewRun(events batch.Events) *batch.Orchestrator {
	return batch.New(e.generator, events, batch.Options{
		Workers:    e.opts.Workers,
		FlushEvery: e.opts.FlushEvery,
		Format:     e.opts.Format,
	})
}

// Run processes a batch to completion and returns its summary.
func (e *Engine) Run(ctx context.Context, images []types.Image, events batch.Events) types.Summary {
	o := e.NewRun(events)
	if err := o.Start(ctx, images); err != nil {
		// A fresh orchestrator always starts; this guards misuse.
		return types.Summary{Errors: len(images)}
	}
	return o.Wait()
}

// IsNoEligibleTags reports whether an outcome failed because nothing
// remained to write after filtering.
func IsNoEligibleTags(err error) bool {
	return errors.Is(err, sidecar.ErrNoEligibleTags)
}

// IsUnsupportedFormat reports whether an outcome failed on the sidecar
// format.
func IsUnsupportedFormat(err error) bool {
	return errors.Is(err, sidecar.ErrUnsupportedFormat)
}

// GetVersion returns the library version
func GetVersion() string {
	return Version
}
