// Package sidecar writes XMP sidecar files next to images. A sidecar
// clones the image's embedded metadata, maps legacy EXIF/TIFF/IPTC/GPS
// fields into their XMP namespaces, and appends the supplied tags in four
// redundant locations for cross-application compatibility.
package sidecar

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/menta2k/xmp-sidecar/internal/utils"
	"github.com/menta2k/xmp-sidecar/pkg/exiftool"
	"github.com/menta2k/xmp-sidecar/pkg/safepath"
)

// Format is the only sidecar format currently produced.
const Format = "xmp"

var (
	// ErrUnsupportedFormat is returned when a format other than "xmp"
	// is requested.
	ErrUnsupportedFormat = errors.New("unsupported sidecar format")

	// ErrNoEligibleTags is returned when an image has no tags left after
	// blacklist filtering.
	ErrNoEligibleTags = errors.New("no eligible tags")
)

const (
	deleteRetries    = 3
	deleteRetryDelay = 100 * time.Millisecond
)

// Writer produces XMP sidecar files through exiftool.
type Writer struct {
	runner exiftool.Runner
}

// NewWriter creates a Writer backed by the given exiftool runner.
func NewWriter(runner exiftool.Runner) *Writer {
	return &Writer{runner: runner}
}

// SidecarPath returns the sidecar destination for an image: same
// directory, same base name, .xmp extension.
func SidecarPath(imagePath string) string {
	return utils.SidecarStem(imagePath) + ".xmp"
}

// Write creates the sidecar for imagePath carrying the given tags. With
// overwrite set, an existing sidecar is deleted first (3 attempts); on
// any failure no partial sidecar is left at the destination, because the
// destination is only ever touched by the final atomic replace.
func (w *Writer) Write(ctx context.Context, imagePath string, tags []string, overwrite bool) error {
	sidecarPath := SidecarPath(imagePath)

	// A plain Lstat rather than a file check: anything occupying the
	// destination, including a directory, must be deleted or abort the
	// write.
	if overwrite {
		if _, err := os.Lstat(sidecarPath); err == nil {
			if err := w.deleteExisting(sidecarPath); err != nil {
				return err
			}
		}
	}

	safeImage, copied := safepath.MakeSafeCopy(imagePath)
	if copied {
		defer safepath.Cleanup(safeImage)
	}

	// When the source needed a copy, or the sidecar name is itself
	// unsafe, write to a temporary safe path and move into place after.
	outputPath := sidecarPath
	if copied || safepath.NeedsSafeName(filepath.Base(sidecarPath)) {
		tempOut, err := safepath.TempSidecarPath()
		if err != nil {
			return err
		}
		outputPath = tempOut
		defer safepath.Cleanup(tempOut)
	}

	if _, _, err := w.runner.Run(ctx, writeArgs(safeImage, outputPath, tags)); err != nil {
		return fmt.Errorf("failed to create sidecar for %s: %w", filepath.Base(imagePath), err)
	}

	if outputPath != sidecarPath {
		if err := utils.MoveFile(outputPath, sidecarPath); err != nil {
			// The tool produced a valid sidecar; losing only the final
			// move is reported as a warning, not a failure.
			log.Printf("Warning: could not move temporary sidecar to final path: %v", err)
		}
	}

	return nil
}

// deleteExisting removes a sidecar that is about to be replaced, retrying
// a few times for transient filesystem locks. A surviving file aborts the
// write to avoid an ambiguous merge state.
func (w *Writer) deleteExisting(sidecarPath string) error {
	var lastErr error
	for attempt := 1; attempt <= deleteRetries; attempt++ {
		err := os.Remove(sidecarPath)
		if err == nil {
			log.Printf("Deleted existing XMP file: %s", filepath.Base(sidecarPath))
			return nil
		}
		if os.IsNotExist(err) {
			// Already gone, nothing was deleted.
			return nil
		}
		lastErr = err
		log.Printf("Warning: could not delete existing XMP file (attempt %d/%d): %v",
			attempt, deleteRetries, err)
		if attempt < deleteRetries {
			time.Sleep(deleteRetryDelay)
		}
	}
	return fmt.Errorf("failed to delete existing XMP file %s after %d attempts: %w",
		filepath.Base(sidecarPath), deleteRetries, lastErr)
}

// writeArgs builds the single exiftool invocation: clone everything from
// the source, apply the namespace mapping tables, then append each tag to
// the four redundant tag locations.
func writeArgs(safeImage, outputPath string, tags []string) []string {
	args := []string{"-tagsFromFile", safeImage, "-all:all"}
	args = append(args, mappingArgs()...)

	for _, tag := range tags {
		args = append(args, "-XMP-lr:HierarchicalSubject+=Auto Tags|"+tag)
	}
	for _, tag := range tags {
		args = append(args, "-XMP-digiKam:TagsList+=Auto Tags/"+tag)
	}
	for _, tag := range tags {
		args = append(args, "-XMP:Subject+="+tag)
	}
	for _, tag := range tags {
		args = append(args, "-IPTC:Keywords+="+tag)
	}

	return append(args, "-o", outputPath, safeImage)
}
