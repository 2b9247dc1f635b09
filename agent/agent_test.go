/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package agent

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// fakeAgent writes an executable shell script standing in for the agent
// binary and returns its path.
func fakeAgent(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "agent.sh")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestInvokeCapturesTranscript(t *testing.T) {
	bin := fakeAgent(t, `echo "made edits to src/app.py"`)
	inv, err := New(bin)
	if err != nil {
		t.Fatal(err)
	}
	got, err := inv.Invoke(context.Background(), "close the gaps")
	if err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}
	if want := "made edits to src/app.py\n"; got != want {
		t.Errorf("transcript: got = %q, wanted = %q", got, want)
	}
}

func TestInvokePassesInstructionsLast(t *testing.T) {
	// The script echoes its final argument so we can see what the agent
	// would receive as its task payload.
	bin := fakeAgent(t, `for last; do :; done; echo "$last"`)
	inv, err := New(bin, WithArgs("-p"), WithPermissionMode("acceptEdits"))
	if err != nil {
		t.Fatal(err)
	}
	got, err := inv.Invoke(context.Background(), "the instruction payload")
	if err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}
	if want := "the instruction payload\n"; got != want {
		t.Errorf("final argument: got = %q, wanted = %q", got, want)
	}
}

func TestInvokeFlagOrder(t *testing.T) {
	bin := fakeAgent(t, `echo "$1 $2 $3"`)
	inv, err := New(bin, WithArgs("-p"), WithPermissionMode("plan"))
	if err != nil {
		t.Fatal(err)
	}
	got, err := inv.Invoke(context.Background(), "task")
	if err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}
	if want := "-p --permission-mode plan\n"; got != want {
		t.Errorf("args: got = %q, wanted = %q", got, want)
	}
}

func TestInvokeNonZeroExitKeepsTranscript(t *testing.T) {
	bin := fakeAgent(t, "echo partial work\nexit 3\n")
	inv, err := New(bin)
	if err != nil {
		t.Fatal(err)
	}
	got, err := inv.Invoke(context.Background(), "task")
	if err != nil {
		t.Errorf("Invoke() error = %v, wanted nil", err)
	}
	if !strings.Contains(got, "partial work") {
		t.Errorf("transcript: got = %q, wanted partial work", got)
	}
}

func TestInvokeStartFailure(t *testing.T) {
	inv, err := New("/nonexistent/agent-binary")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := inv.Invoke(context.Background(), "task"); err == nil {
		t.Error("Invoke() error = nil, wanted start failure")
	}
}

func TestInvokeCanceledContext(t *testing.T) {
	bin := fakeAgent(t, "sleep 10\n")
	inv, err := New(bin)
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := inv.Invoke(ctx, "task"); !errors.Is(err, context.Canceled) {
		t.Errorf("Invoke() error = %v, wanted context.Canceled", err)
	}
}

func TestInvokeWorkingDirAndStderr(t *testing.T) {
	dir := t.TempDir()
	bin := fakeAgent(t, "pwd\necho diagnostic >&2\n")

	var stderr bytes.Buffer
	inv, err := New(bin, WithDir(dir), WithStderr(&stderr))
	if err != nil {
		t.Fatal(err)
	}
	got, err := inv.Invoke(context.Background(), "task")
	if err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}
	// Resolve symlinks so macOS /private/var tempdirs compare equal.
	wantDir, err := filepath.EvalSymlinks(dir)
	if err != nil {
		t.Fatal(err)
	}
	gotDir, err := filepath.EvalSymlinks(strings.TrimSpace(got))
	if err != nil {
		t.Fatal(err)
	}
	if gotDir != wantDir {
		t.Errorf("cwd: got = %q, wanted = %q", gotDir, wantDir)
	}
	if !strings.Contains(stderr.String(), "diagnostic") {
		t.Errorf("stderr: got = %q, wanted diagnostic line", stderr.String())
	}
}

func TestNewValidation(t *testing.T) {
	if _, err := New(""); err == nil {
		t.Error("New() with empty binary, wanted error")
	}
	if _, err := New("agent", WithPermissionMode("")); err == nil {
		t.Error("New() with empty permission mode, wanted error")
	}
	if _, err := New("agent", WithStderr(nil)); err == nil {
		t.Error("New() with nil stderr, wanted error")
	}
}
