/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package gate runs the external test suite and reduces it to pass/fail.
// The verdict comes from the exit status alone; output is captured for
// diagnostics but never parsed. A failing gate is information for the
// loop, not a termination condition.
package gate

import (
	"context"
	"errors"
	"os/exec"
	"strings"

	"github.com/chainguard-dev/clog"
)

// Gate invokes the test runner over the whole project.
type Gate struct {
	command []string
	dir     string
}

// Option is a functional option for configuring the Gate.
type Option func(*Gate) error

// WithDir sets the working directory for the test runner. Defaults to the
// process working directory.
func WithDir(dir string) Option {
	return func(g *Gate) error {
		g.dir = dir
		return nil
	}
}

// New creates a Gate for the given command line, split on whitespace.
func New(command string, opts ...Option) (*Gate, error) {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return nil, errors.New("gate: command must not be empty")
	}
	g := &Gate{command: fields}
	for _, opt := range opts {
		if err := opt(g); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// Result is one gate run. ExitCode -1 means the runner never started.
type Result struct {
	Passed   bool
	ExitCode int
	Output   string
}

// Run executes the test runner once. Test failures are results, not
// errors; Run only errors when the context is done.
func (g *Gate) Run(ctx context.Context) (Result, error) {
	log := clog.FromContext(ctx)
	log.Infof("running test gate: %s", strings.Join(g.command, " "))

	cmd := exec.CommandContext(ctx, g.command[0], g.command[1:]...)
	cmd.Dir = g.dir
	out, err := cmd.CombinedOutput()
	if ctx.Err() != nil {
		return Result{}, ctx.Err()
	}

	res := Result{Passed: err == nil, ExitCode: 0, Output: string(out)}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
		} else {
			log.With("error", err).Warn("test runner could not be started")
			res.ExitCode = -1
			res.Output += err.Error()
		}
	}
	log.Infof("test gate finished: passed=%t exit=%d", res.Passed, res.ExitCode)
	return res, nil
}
