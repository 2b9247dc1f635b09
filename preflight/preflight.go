/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package preflight gates loop startup. Everything that can make a run
// pointless is checked here, once, before the first iteration: corrupted
// embedded assets, missing executables, missing documents. Inside the
// loop, failures are data; out here they are fatal.
package preflight

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sort"
	"strings"

	"github.com/chainguard-dev/clog"
)

// corruptionMarker is the Unicode replacement character, the residue a
// lossy text re-encoding leaves behind. Finding it in our own assets
// means the instructions we would send the agent are damaged.
const corruptionMarker = "�"

// FatalError is a precondition failure that must abort the run before the
// loop starts. It names the resource that failed.
type FatalError struct {
	Resource string
	Err      error
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("fatal precondition: %s: %v", e.Resource, e.Err)
}

func (e *FatalError) Unwrap() error {
	return e.Err
}

// IsFatal reports whether err is (or wraps) a FatalError.
func IsFatal(err error) bool {
	var fe *FatalError
	return errors.As(err, &fe)
}

// CheckIntegrity scans named text assets for the corruption marker.
// Assets are checked in name order so the first failure is deterministic.
func CheckIntegrity(assets map[string]string) error {
	names := make([]string, 0, len(assets))
	for name := range assets {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if strings.Contains(assets[name], corruptionMarker) {
			return &FatalError{
				Resource: name,
				Err:      errors.New("contains corruption marker U+FFFD"),
			}
		}
	}
	return nil
}

// CheckIntegrityFile reads a file and scans it for the corruption marker.
func CheckIntegrityFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return &FatalError{Resource: path, Err: err}
	}
	return CheckIntegrity(map[string]string{path: string(data)})
}

// Requirements lists the external resources the loop depends on.
type Requirements struct {
	// Executables are resolved via the search path; entries containing a
	// path separator are checked directly.
	Executables []string
	// Files must exist and be regular files.
	Files []string
}

// Check verifies every requirement and returns a FatalError naming the
// first missing resource.
func Check(ctx context.Context, reqs Requirements) error {
	log := clog.FromContext(ctx)
	for _, bin := range reqs.Executables {
		if _, err := exec.LookPath(bin); err != nil {
			return &FatalError{Resource: bin, Err: err}
		}
	}
	for _, path := range reqs.Files {
		info, err := os.Stat(path)
		if err != nil {
			return &FatalError{Resource: path, Err: err}
		}
		if info.IsDir() {
			return &FatalError{Resource: path, Err: errors.New("is a directory, expected a file")}
		}
	}
	log.Infof("preflight ok: %d executables, %d files",
		len(reqs.Executables), len(reqs.Files))
	return nil
}
