/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package worktree

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	gogit "github.com/go-git/go-git/v5"
)

// initRepo creates a temporary git repo with in-scope and out-of-scope
// fixtures and returns its root path.
func initRepo(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	if _, err := gogit.PlainInit(dir, false); err != nil {
		t.Fatal(err)
	}
	writeRepoFile(t, dir, "src/app.py", "def main(): pass\n")
	writeRepoFile(t, dir, "src/util/geo.py", "RADIUS = 6371\n")
	writeRepoFile(t, dir, "tests/test_app.py", "def test_main(): pass\n")
	writeRepoFile(t, dir, "README.md", "out of scope\n")
	return dir
}

func writeRepoFile(t *testing.T, dir, relPath, content string) {
	t.Helper()
	fullPath := filepath.Join(dir, relPath)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(fullPath, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func newTestDetector(t *testing.T, root string) *Detector {
	t.Helper()
	d, err := NewDetector(root, []string{"src", "tests"})
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func TestChangedDetectsMutations(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name   string
		mutate func(t *testing.T, root string)
		want   bool
	}{{
		name:   "untouched tree",
		mutate: func(t *testing.T, root string) {},
		want:   false,
	}, {
		name: "modified file",
		mutate: func(t *testing.T, root string) {
			writeRepoFile(t, root, "src/app.py", "def main(): return 1\n")
		},
		want: true,
	}, {
		name: "added file",
		mutate: func(t *testing.T, root string) {
			writeRepoFile(t, root, "src/new.py", "x = 1\n")
		},
		want: true,
	}, {
		name: "deleted file",
		mutate: func(t *testing.T, root string) {
			if err := os.Remove(filepath.Join(root, "tests/test_app.py")); err != nil {
				t.Fatal(err)
			}
		},
		want: true,
	}, {
		name: "single byte change",
		mutate: func(t *testing.T, root string) {
			writeRepoFile(t, root, "src/util/geo.py", "RADIUS = 6372\n")
		},
		want: true,
	}, {
		name: "out of scope change is invisible",
		mutate: func(t *testing.T, root string) {
			writeRepoFile(t, root, "README.md", "still out of scope\n")
		},
		want: false,
	}, {
		name: "rewrite with identical bytes",
		mutate: func(t *testing.T, root string) {
			// Same content, fresh mtime. Content identity must not care.
			writeRepoFile(t, root, "src/app.py", "def main(): pass\n")
		},
		want: false,
	}}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := initRepo(t)
			d := newTestDetector(t, root)

			cp, err := d.Snapshot(ctx)
			if err != nil {
				t.Fatal(err)
			}
			tt.mutate(t, root)

			got, err := cp.Changed(ctx)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("Changed() = %v, wanted %v", got, tt.want)
			}
		})
	}
}

func TestChangedSeesNewScopeDirectory(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	if _, err := gogit.PlainInit(root, false); err != nil {
		t.Fatal(err)
	}

	// Neither scope exists yet.
	d := newTestDetector(t, root)
	cp, err := d.Snapshot(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if changed, err := cp.Changed(ctx); err != nil || changed {
		t.Fatalf("Changed() = %v, %v; wanted false, nil", changed, err)
	}

	writeRepoFile(t, root, "src/first.py", "x = 1\n")
	changed, err := cp.Changed(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !changed {
		t.Error("Changed() = false after scope directory appeared")
	}
}

func TestCheckpointIsStable(t *testing.T) {
	// A checkpoint must keep answering against its own snapshot, not
	// against the latest tree state.
	ctx := context.Background()
	root := initRepo(t)
	d := newTestDetector(t, root)

	cp, err := d.Snapshot(ctx)
	if err != nil {
		t.Fatal(err)
	}
	writeRepoFile(t, root, "src/app.py", "changed\n")

	for i := 0; i < 2; i++ {
		changed, err := cp.Changed(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if !changed {
			t.Error("Changed() = false, wanted true on repeated query")
		}
	}
}

func TestNewDetectorValidation(t *testing.T) {
	t.Run("not a git worktree", func(t *testing.T) {
		if _, err := NewDetector(t.TempDir(), []string{"src"}); err == nil {
			t.Error("NewDetector() error = nil, wanted not-a-worktree error")
		}
	})

	t.Run("no scopes", func(t *testing.T) {
		root := initRepo(t)
		if _, err := NewDetector(root, nil); err == nil {
			t.Error("NewDetector() error = nil, wanted scope error")
		}
	})

	t.Run("subdirectory of a worktree is accepted", func(t *testing.T) {
		root := initRepo(t)
		sub := filepath.Join(root, "src")
		if _, err := NewDetector(sub, []string{"util"}); err != nil {
			t.Errorf("NewDetector() error = %v, wanted nil", err)
		}
	})
}
