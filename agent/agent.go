/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package agent invokes the external code-generation agent. The agent is a
// black box: it receives one textual task payload as its final argument,
// may create, edit, or delete any file in the working tree, and whatever
// it writes to stdout is the transcript. No structured exit-code contract
// exists; a non-zero exit still yields a usable transcript.
package agent

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"slices"
	"time"

	"github.com/chainguard-dev/clog"
)

// Invoker is the public interface for agent invocation.
type Invoker interface {
	// Invoke runs the agent synchronously with the given instruction text
	// and returns its stdout transcript.
	Invoke(ctx context.Context, instructions string) (string, error)
}

// invoker provides the private implementation.
type invoker struct {
	binary string
	args   []string
	dir    string
	stderr io.Writer
}

// Option is a functional option for configuring the invoker.
type Option func(*invoker) error

// WithArgs sets arguments passed before the instruction payload, such as
// the default agent's "-p" print flag.
func WithArgs(args ...string) Option {
	return func(i *invoker) error {
		i.args = append(i.args, args...)
		return nil
	}
}

// WithPermissionMode appends the permission-mode flag pair understood by
// the default agent CLI. The mode string is passed through untouched.
func WithPermissionMode(mode string) Option {
	return func(i *invoker) error {
		if mode == "" {
			return errors.New("agent: permission mode must not be empty")
		}
		i.args = append(i.args, "--permission-mode", mode)
		return nil
	}
}

// WithDir sets the working directory the agent runs in. This is the tree
// the agent mutates; defaults to the process working directory.
func WithDir(dir string) Option {
	return func(i *invoker) error {
		i.dir = dir
		return nil
	}
}

// WithStderr redirects the agent's stderr stream. Defaults to the
// controller's own stderr so agent diagnostics stay visible live.
func WithStderr(w io.Writer) Option {
	return func(i *invoker) error {
		if w == nil {
			return errors.New("agent: stderr writer must not be nil")
		}
		i.stderr = w
		return nil
	}
}

// New creates an Invoker for the given agent executable.
func New(binary string, opts ...Option) (Invoker, error) {
	if binary == "" {
		return nil, errors.New("agent: binary must not be empty")
	}
	i := &invoker{
		binary: binary,
		stderr: os.Stderr,
	}
	for _, opt := range opts {
		if err := opt(i); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}
	return i, nil
}

// Invoke runs one blocking agent call. The instruction payload goes last
// on the command line, after any configured flags. There is no timeout
// here; agent calls are expected to be long-running, and cancellation
// comes from the context.
func (i *invoker) Invoke(ctx context.Context, instructions string) (string, error) {
	log := clog.FromContext(ctx)
	log.With("prompt_length", len(instructions)).Info("invoking agent")

	args := append(slices.Clone(i.args), instructions)
	cmd := exec.CommandContext(ctx, i.binary, args...)
	cmd.Dir = i.dir
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = i.stderr

	start := time.Now()
	err := cmd.Run()
	if ctx.Err() != nil {
		return "", ctx.Err()
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			// The transcript is still the only signal we get; use it.
			log.With("exit_code", exitErr.ExitCode()).Warn("agent exited non-zero")
		} else {
			return "", fmt.Errorf("starting agent %s: %w", i.binary, err)
		}
	}

	out := stdout.String()
	log.Infof("agent finished in %s (%d transcript bytes)",
		time.Since(start).Round(time.Millisecond), len(out))
	return out, nil
}
