/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package scanner

import (
	"fmt"
	"io"

	"chainguard.dev/convergent/audit"
)

// Result is one complete audit: every identifier from the PRD, classified.
// The per-class slices partition IDs and preserve its sorted order.
type Result struct {
	PRD     string
	IDs     []string
	Covered []string
	Partial []string
	Missing []string
}

// Gaps reports whether any identifier lacks test evidence.
func (r *Result) Gaps() bool {
	return len(r.Partial)+len(r.Missing) > 0
}

// ExitCode maps the result onto the audit tool's exit convention:
// 0 when everything is covered, 1 when gaps remain.
func (r *Result) ExitCode() int {
	if r.Gaps() {
		return 1
	}
	return 0
}

// WriteText renders the sectioned text report.
func (r *Result) WriteText(w io.Writer) {
	fmt.Fprintln(w, "=== PRD Coverage Audit ===")
	fmt.Fprintf(w, "PRD: %s  (requirements found: %d)\n\n", r.PRD, len(r.IDs))
	writeSection(w, "COVERED", r.Covered)
	writeSection(w, "PARTIAL", r.Partial)
	writeSection(w, "MISSING", r.Missing)
}

func writeSection(w io.Writer, name string, ids []string) {
	fmt.Fprintf(w, "[%s] (%d)\n", name, len(ids))
	for _, id := range ids {
		fmt.Fprintf(w, "- %s\n", id)
	}
	fmt.Fprintln(w)
}

// Coverage projects the result into the machine-readable document shared
// with the loop's parser. Empty classes are [] rather than null.
func (r *Result) Coverage() audit.Coverage {
	return audit.Coverage{
		Covered: orEmpty(r.Covered),
		Partial: orEmpty(r.Partial),
		Missing: orEmpty(r.Missing),
	}
}

func orEmpty(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
