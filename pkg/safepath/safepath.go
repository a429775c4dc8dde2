package safepath

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// tempDirPattern names the temporary directories this package creates, so
// Cleanup can tell them apart from directories it does not own.
const tempDirPattern = "xmpsafe-"

// unsafeRanges are the code point ranges exiftool is known to mishandle in
// filenames: UTF-16 surrogates plus the common emoji and pictograph blocks.
var unsafeRanges = [][2]rune{
	{0xD800, 0xDFFF},   // surrogates
	{0x1F600, 0x1F64F}, // emoticons
	{0x1F300, 0x1F5FF}, // misc symbols and pictographs
	{0x1F680, 0x1F6FF}, // transport and map
	{0x1F1E0, 0x1F1FF}, // regional indicators
	{0x2600, 0x26FF},   // misc symbols
	{0x2700, 0x27BF},   // dingbats
	{0xFE00, 0xFE0F},   // variation selectors
	{0x1F900, 0x1F9FF}, // supplemental symbols
}

// NeedsSafeName reports whether a filename contains code points that the
// external metadata tool may reject or mis-handle.
func NeedsSafeName(name string) bool {
	for _, r := range name {
		for _, rng := range unsafeRanges {
			if r >= rng[0] && r <= rng[1] {
				return true
			}
		}
	}
	return false
}

// MakeSafeCopy returns a path that is safe to hand to the external tool.
// When the filename is already safe the original path is returned unchanged.
// Otherwise the file is copied into a fresh temporary directory under a
// random ASCII name preserving the extension. A failed copy logs a warning
// and falls back to the original path rather than failing the operation.
func MakeSafeCopy(path string) (safePath string, copied bool) {
	name := filepath.Base(path)
	if !NeedsSafeName(name) {
		return path, false
	}

	tempDir, err := os.MkdirTemp("", tempDirPattern)
	if err != nil {
		log.Printf("Warning: could not create temporary directory for %s: %v", name, err)
		return path, false
	}

	tempPath := filepath.Join(tempDir, fmt.Sprintf("temp_exif_%s%s", uuid.NewString(), filepath.Ext(name)))
	if err := copyFile(path, tempPath); err != nil {
		log.Printf("Warning: could not create temporary copy of %s: %v", name, err)
		if rmErr := os.Remove(tempDir); rmErr != nil {
			log.Printf("Warning: could not remove temporary directory %s: %v", tempDir, rmErr)
		}
		return path, false
	}

	log.Printf("Created temporary copy for exiftool: %s", filepath.Base(tempPath))
	return tempPath, true
}

// TempSidecarPath returns a safe temporary destination for a sidecar that
// cannot be written directly to its true path.
func TempSidecarPath() (string, error) {
	tempDir, err := os.MkdirTemp("", tempDirPattern)
	if err != nil {
		return "", fmt.Errorf("failed to create temporary sidecar directory: %w", err)
	}
	return filepath.Join(tempDir, fmt.Sprintf("temp_%s.xmp", uuid.NewString())), nil
}

// Cleanup removes a temporary file created by this package, along with its
// parent directory when that directory was created here and is now empty.
// Cleanup failures are logged, never returned.
func Cleanup(path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: could not clean up temporary file %s: %v", path, err)
		return
	}
	dir := filepath.Dir(path)
	if !strings.HasPrefix(filepath.Base(dir), tempDirPattern) {
		return
	}
	if err := os.Remove(dir); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: could not clean up temporary directory %s: %v", dir, err)
	}
}

// copyFile duplicates src at dst, carrying over permissions and timestamps.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode())
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}

	return os.Chtimes(dst, info.ModTime(), info.ModTime())
}
