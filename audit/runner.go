/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package audit

import (
	"context"
	"errors"
	"os/exec"
	"strings"

	"github.com/chainguard-dev/clog"
)

// Runner executes the audit command and normalizes whatever comes back.
// A non-zero exit status is expected operating data (it signals coverage
// gaps), so Run only returns an error when the context is done.
type Runner struct {
	command []string
	dir     string
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner) error

// WithDir sets the working directory for the audit command. Defaults to
// the process working directory.
func WithDir(dir string) RunnerOption {
	return func(r *Runner) error {
		r.dir = dir
		return nil
	}
}

// NewRunner creates a Runner for the given command line. The command is
// split on whitespace, so "prdaudit -json" works as expected.
func NewRunner(command string, opts ...RunnerOption) (*Runner, error) {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return nil, errors.New("audit: command must not be empty")
	}
	r := &Runner{command: fields}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Run invokes the audit command once and parses its combined output.
//
// Exit statuses are recorded, never surfaced as errors. If the command
// cannot be started at all, the failure text is folded into Raw and the
// exit code is set to -1, matching what a shell pipeline would show.
func (r *Runner) Run(ctx context.Context) (Report, error) {
	log := clog.FromContext(ctx)
	log.Infof("running audit: %s", strings.Join(r.command, " "))

	cmd := exec.CommandContext(ctx, r.command[0], r.command[1:]...)
	cmd.Dir = r.dir
	out, err := cmd.CombinedOutput()
	if ctx.Err() != nil {
		return Report{}, ctx.Err()
	}

	exitCode := 0
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		} else {
			log.With("error", err).Warn("audit command could not be started")
			out = append(out, []byte(err.Error())...)
			exitCode = -1
		}
	}

	report := Parse(string(out), exitCode)
	log.Infof("audit finished: exit=%d covered=%d partial=%d missing=%d",
		exitCode, report.Count(Covered), report.Count(Partial), report.Count(Missing))
	return report, nil
}
