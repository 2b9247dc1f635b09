/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package loop

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"chainguard.dev/convergent/audit"
	"chainguard.dev/convergent/gate"
	"chainguard.dev/convergent/prompt"
	"chainguard.dev/convergent/transcript"
	"github.com/chainguard-dev/clog"
)

// Auditor produces one fresh coverage report per call. A report is never
// cached across iterations; each one observes the tree as the previous
// iteration left it.
type Auditor interface {
	Run(ctx context.Context) (audit.Report, error)
}

// PromptBuilder renders the instruction payload for one agent call.
type PromptBuilder interface {
	Build(mode prompt.Mode, report audit.Report, marker string) (string, error)
}

// Agent is the external code-generation agent: one blocking call, text
// in, transcript out, arbitrary tree mutations in between.
type Agent interface {
	Invoke(ctx context.Context, instructions string) (string, error)
}

// Checkpoint answers whether the in-scope tree changed since it was taken.
type Checkpoint interface {
	Changed(ctx context.Context) (bool, error)
}

// ChangeDetector snapshots the in-scope tree before an agent call.
type ChangeDetector interface {
	Snapshot(ctx context.Context) (Checkpoint, error)
}

// TestGate runs the project test suite and reports pass/fail.
type TestGate interface {
	Run(ctx context.Context) (gate.Result, error)
}

// Deps are the collaborators a Controller drives. All are required.
type Deps struct {
	Auditor  Auditor
	Prompts  PromptBuilder
	Agent    Agent
	Detector ChangeDetector
	Gate     TestGate
}

func (d Deps) validate() error {
	switch {
	case d.Auditor == nil:
		return errors.New("loop: Auditor is required")
	case d.Prompts == nil:
		return errors.New("loop: Prompts is required")
	case d.Agent == nil:
		return errors.New("loop: Agent is required")
	case d.Detector == nil:
		return errors.New("loop: Detector is required")
	case d.Gate == nil:
		return errors.New("loop: Gate is required")
	}
	return nil
}

// Controller owns the loop state and the termination result.
type Controller struct {
	deps     Deps
	maxLoops int
	metrics  *Metrics
	out      io.Writer
}

// Option is a functional option for configuring the Controller.
type Option func(*Controller) error

// WithMaxLoops sets the iteration ceiling. Defaults to 5.
func WithMaxLoops(n int) Option {
	return func(c *Controller) error {
		if n < 1 {
			return fmt.Errorf("loop: max loops must be at least 1, got %d", n)
		}
		c.maxLoops = n
		return nil
	}
}

// WithOutput sets the operator-facing stream that raw audit output and
// gate diagnostics are written to. Defaults to stdout; logs go to stderr,
// so the two streams stay separable.
func WithOutput(w io.Writer) Option {
	return func(c *Controller) error {
		if w == nil {
			return errors.New("loop: output writer must not be nil")
		}
		c.out = w
		return nil
	}
}

// WithMetrics overrides the default metrics instance.
func WithMetrics(m *Metrics) Option {
	return func(c *Controller) error {
		if m == nil {
			return errors.New("loop: metrics must not be nil")
		}
		c.metrics = m
		return nil
	}
}

// New creates a Controller over the given collaborators.
func New(deps Deps, opts ...Option) (*Controller, error) {
	if err := deps.validate(); err != nil {
		return nil, err
	}
	c := &Controller{
		deps:     deps,
		maxLoops: 5,
		metrics:  NewMetrics("chainguard.dev/convergent"),
		out:      os.Stdout,
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Run drives iterations until convergence or the ceiling. The only error
// returns are context cancellation and collaborator failures that leave
// the loop unable to continue; audit gaps and test failures are data.
func (c *Controller) Run(ctx context.Context) (Result, error) {
	log := clog.FromContext(ctx)
	consecutiveNoChange := 0
	var lastReport audit.Report

	for i := 1; i <= c.maxLoops; i++ {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}

		report, err := c.deps.Auditor.Run(ctx)
		if err != nil {
			return Result{}, fmt.Errorf("running audit: %w", err)
		}
		lastReport = report
		mode := prompt.ModeFor(report)
		c.printIteration(i, mode, report)
		c.metrics.RecordIteration(ctx, string(mode))

		// Snapshot before the agent runs so the stall check compares
		// against the tree the agent actually saw. Verify mode never
		// consults the detector.
		var checkpoint Checkpoint
		if mode == prompt.Implement {
			if checkpoint, err = c.deps.Detector.Snapshot(ctx); err != nil {
				return Result{}, fmt.Errorf("snapshotting worktree: %w", err)
			}
		}

		output, err := c.invokeAgent(ctx, i, strconv.Itoa(i), mode, report)
		if err != nil {
			return Result{}, err
		}

		if mode == prompt.Verify {
			if strings.Contains(output, prompt.Sentinel) {
				// The sentinel plus a structurally clean audit is the
				// convergence signal. The final gate run is advisory.
				if res, gerr := c.runGate(ctx); gerr != nil {
					return Result{}, gerr
				} else if !res.Passed {
					log.With("exit_code", res.ExitCode).
						Warn("final test gate failed; converged on sentinel anyway")
				}
				c.metrics.RecordOutcome(ctx, Converged)
				return Result{
					Outcome:    Converged,
					Message:    fmt.Sprintf("sentinel received in iteration %d", i),
					Iterations: i,
				}, nil
			}
			log.Infof("verify output lacks sentinel %q; continuing", prompt.Sentinel)
			if _, err := c.runGate(ctx); err != nil {
				return Result{}, err
			}
			continue
		}

		// Implement mode: gate for diagnostics, then the stall check.
		if _, err := c.runGate(ctx); err != nil {
			return Result{}, err
		}

		changed, err := checkpoint.Changed(ctx)
		if err != nil {
			return Result{}, fmt.Errorf("checking for changes: %w", err)
		}
		if changed {
			consecutiveNoChange = 0
			continue
		}

		// One escalation retry per iteration, never more.
		consecutiveNoChange++
		log.With("iteration", i, "consecutive_no_change", consecutiveNoChange).
			Warn("agent made no in-scope changes; escalating once")
		c.metrics.RecordEscalation(ctx)

		retryCheckpoint, err := c.deps.Detector.Snapshot(ctx)
		if err != nil {
			return Result{}, fmt.Errorf("snapshotting worktree: %w", err)
		}
		if output, err = c.invokeAgent(ctx, i, strconv.Itoa(i)+"-retry", mode, report); err != nil {
			return Result{}, err
		}
		if _, err := c.runGate(ctx); err != nil {
			return Result{}, err
		}
		retryChanged, err := retryCheckpoint.Changed(ctx)
		if err != nil {
			return Result{}, fmt.Errorf("checking for changes: %w", err)
		}
		if retryChanged {
			consecutiveNoChange = 0
		} else {
			// The retry stalled too. The outer loop still advances; the
			// next audit decides what happens.
			consecutiveNoChange++
			log.With("iteration", i).Warn("escalation retry also made no changes")
		}
	}

	c.metrics.RecordOutcome(ctx, MaxLoopsExceeded)
	return Result{
		Outcome: MaxLoopsExceeded,
		Message: fmt.Sprintf("no convergence after %d iterations (%d missing, %d partial)",
			c.maxLoops, lastReport.Count(audit.Missing), lastReport.Count(audit.Partial)),
		Iterations: c.maxLoops,
	}, nil
}

// invokeAgent performs one build-prompt-invoke-record pass.
func (c *Controller) invokeAgent(ctx context.Context, iteration int, marker string, mode prompt.Mode, report audit.Report) (string, error) {
	text, err := c.deps.Prompts.Build(mode, report, marker)
	if err != nil {
		return "", fmt.Errorf("building prompt: %w", err)
	}
	entry := transcript.Begin(iteration, marker, string(mode), text)
	output, err := c.deps.Agent.Invoke(ctx, text)
	entry.Complete(output, err)
	transcript.FromContext(ctx).Record(ctx, *entry)
	if err != nil {
		return "", fmt.Errorf("invoking agent: %w", err)
	}
	return output, nil
}

// runGate executes the test suite once and surfaces failures as
// diagnostics on the operator stream.
func (c *Controller) runGate(ctx context.Context) (gate.Result, error) {
	res, err := c.deps.Gate.Run(ctx)
	if err != nil {
		return gate.Result{}, fmt.Errorf("running test gate: %w", err)
	}
	if !res.Passed {
		c.metrics.RecordGateFailure(ctx)
		clog.FromContext(ctx).With("exit_code", res.ExitCode).Warn("test gate failed")
		if out := strings.TrimSpace(res.Output); out != "" {
			fmt.Fprintln(c.out, out)
		}
	}
	return res, nil
}

// printIteration writes the iteration banner, the raw audit output, and
// the coverage summary to the operator stream. A human watching the log
// can always see why the controller chose its mode.
func (c *Controller) printIteration(i int, mode prompt.Mode, report audit.Report) {
	fmt.Fprintf(c.out, "=== iteration %d/%d: %s mode ===\n", i, c.maxLoops, mode)
	if raw := strings.TrimSpace(report.Raw); raw != "" {
		fmt.Fprintln(c.out, raw)
	}
	audit.RenderTable(c.out, report)
}
