/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package loop

// Outcome classifies how a run terminated. Produced exactly once per run.
type Outcome string

const (
	// Converged means the audit came back clean and the agent confirmed
	// with the sentinel.
	Converged Outcome = "converged"
	// MaxLoopsExceeded means the iteration ceiling was reached without
	// convergence.
	MaxLoopsExceeded Outcome = "max_loops_exceeded"
	// FatalPrecondition means the run was aborted before the first
	// iteration.
	FatalPrecondition Outcome = "fatal_precondition"
)

// Result is the termination result of a run.
type Result struct {
	Outcome    Outcome
	Message    string
	Iterations int
}

// ExitCode maps the outcome onto the process exit convention: 0 for
// Converged, 1 for MaxLoopsExceeded, 2 for FatalPrecondition.
func (r Result) ExitCode() int {
	switch r.Outcome {
	case Converged:
		return 0
	case MaxLoopsExceeded:
		return 1
	default:
		return 2
	}
}
