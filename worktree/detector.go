/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package worktree answers one question for the loop: did the agent
// actually change anything in the directories that matter? Detection is
// checkpoint-based rather than status-based because the tree is usually
// dirty on both sides of an invocation; comparing against HEAD would see
// "dirty" twice and miss a stalled agent.
package worktree

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// Detector scopes change detection to designated directories under a git
// worktree root. It never writes; only the agent mutates the tree.
type Detector struct {
	root   string
	scopes []string
}

// NewDetector validates that root lives inside a git worktree and returns
// a detector over the given in-scope directories (relative to root).
func NewDetector(root string, scopes []string) (*Detector, error) {
	if len(scopes) == 0 {
		return nil, errors.New("worktree: at least one scope directory is required")
	}
	if _, err := gogit.PlainOpenWithOptions(root, &gogit.PlainOpenOptions{DetectDotGit: true}); err != nil {
		return nil, fmt.Errorf("worktree: %s is not inside a git worktree: %w", root, err)
	}
	return &Detector{root: root, scopes: scopes}, nil
}

// Checkpoint is the recorded content identity of every in-scope file at
// one instant, keyed by path relative to the root.
type Checkpoint struct {
	detector *Detector
	files    map[string]plumbing.Hash
}

// Snapshot records the current in-scope state. Scope directories that do
// not exist yet contribute nothing; if the agent creates one later, that
// registers as a change.
func (d *Detector) Snapshot(ctx context.Context) (*Checkpoint, error) {
	files, err := d.hashTree(ctx)
	if err != nil {
		return nil, err
	}
	return &Checkpoint{detector: d, files: files}, nil
}

// Changed reports whether any in-scope file was added, deleted, or
// modified since the checkpoint was taken. Equality is content equality:
// two trees compare equal exactly when every file's bytes match.
func (c *Checkpoint) Changed(ctx context.Context) (bool, error) {
	current, err := c.detector.hashTree(ctx)
	if err != nil {
		return false, err
	}
	if len(current) != len(c.files) {
		return true, nil
	}
	for path, hash := range current {
		if prev, ok := c.files[path]; !ok || prev != hash {
			return true, nil
		}
	}
	return false, nil
}

// hashTree walks the scope directories and computes the git blob hash of
// every regular file.
func (d *Detector) hashTree(ctx context.Context) (map[string]plumbing.Hash, error) {
	files := map[string]plumbing.Hash{}
	for _, scope := range d.scopes {
		root := filepath.Join(d.root, scope)
		err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
			if err != nil {
				if os.IsNotExist(err) {
					return nil
				}
				return err
			}
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			if entry.IsDir() {
				if entry.Name() == gogit.GitDirName {
					return filepath.SkipDir
				}
				return nil
			}
			if !entry.Type().IsRegular() {
				return nil
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("reading %s: %w", path, err)
			}
			rel, err := filepath.Rel(d.root, path)
			if err != nil {
				return err
			}
			files[rel] = plumbing.ComputeHash(plumbing.BlobObject, data)
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walking %s: %w", root, err)
		}
	}
	return files, nil
}
