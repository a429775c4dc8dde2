// Package exiftool invokes the external exiftool binary. The tool is an
// opaque collaborator: this package only runs it and reports its output,
// it never interprets metadata itself.
package exiftool

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// DefaultBinary is the executable looked up on PATH when no explicit path
// is configured.
const DefaultBinary = "exiftool"

// ErrNotInstalled is returned when the exiftool binary cannot be found.
var ErrNotInstalled = errors.New("exiftool not found in PATH")

// Runner executes one exiftool invocation. Implementations must be safe
// for concurrent use; the batch engine calls Run from multiple workers.
type Runner interface {
	Run(ctx context.Context, args []string) (stdout string, stderr string, err error)
}

// CommandRunner runs exiftool as a subprocess, one process per invocation.
type CommandRunner struct {
	// Path is the exiftool executable. Empty means DefaultBinary on PATH.
	Path string
}

// NewCommandRunner returns a CommandRunner for the given executable path.
func NewCommandRunner(path string) *CommandRunner {
	if path == "" {
		path = DefaultBinary
	}
	return &CommandRunner{Path: path}
}

// Available reports whether the configured exiftool binary can be found.
func (r *CommandRunner) Available() bool {
	_, err := exec.LookPath(r.binary())
	return err == nil
}

// Run executes exiftool with the given arguments and captures both output
// streams. A missing binary maps to ErrNotInstalled; a non-zero exit is
// reported with the captured stderr. No timeout is imposed here, the
// caller's context carries any deadline.
func (r *CommandRunner) Run(ctx context.Context, args []string) (string, string, error) {
	binary := r.binary()
	if _, err := exec.LookPath(binary); err != nil {
		return "", "", fmt.Errorf("%w: %s", ErrNotInstalled, binary)
	}

	cmd := exec.CommandContext(ctx, binary, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return stdout.String(), stderr.String(), fmt.Errorf("%w: %s", ErrNotInstalled, binary)
		}
		detail := strings.TrimSpace(stderr.String())
		if detail == "" {
			detail = strings.TrimSpace(stdout.String())
		}
		if detail != "" {
			return stdout.String(), stderr.String(), fmt.Errorf("exiftool failed: %v: %s", err, detail)
		}
		return stdout.String(), stderr.String(), fmt.Errorf("exiftool failed: %w", err)
	}

	return stdout.String(), stderr.String(), nil
}

func (r *CommandRunner) binary() string {
	if r.Path == "" {
		return DefaultBinary
	}
	return r.Path
}
