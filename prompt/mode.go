/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package prompt

import "chainguard.dev/convergent/audit"

// Mode selects which instruction template the Builder renders.
type Mode string

const (
	// Implement drives the agent to close audit gaps with direct edits.
	Implement Mode = "implement"
	// Verify asks the agent to double-check a structurally clean tree.
	Verify Mode = "verify"
)

// ModeFor maps a report to its mode: Implement while any requirement is
// Missing or Partial, Verify otherwise. Pure function of the report.
func ModeFor(report audit.Report) Mode {
	if report.Gaps() {
		return Implement
	}
	return Verify
}
