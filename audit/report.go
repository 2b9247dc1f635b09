/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package audit

// Classification is the audit's verdict for a single requirement identifier.
type Classification string

const (
	// Missing means no implementation or test evidence exists.
	Missing Classification = "missing"
	// Partial means implementation evidence exists but no test evidence.
	Partial Classification = "partial"
	// Covered means explicit test evidence exists.
	Covered Classification = "covered"
)

// Requirement pairs an opaque identifier with its classification. The
// identifier's meaning belongs to the PRD and the audit tool; this
// package only counts and echoes it.
type Requirement struct {
	ID    string
	Class Classification
}

// Report is the normalized outcome of one audit run. Requirements preserve
// audit-emission order, and each identifier appears at most once: the first
// classification encountered wins, later duplicates are dropped.
//
// Reports are produced fresh each iteration and never merged with history.
type Report struct {
	Requirements []Requirement
	// Raw is the verbatim combined output of the audit tool.
	Raw string
	// ExitCode is the audit tool's exit status. Zero means fully covered;
	// -1 means the tool could not be started.
	ExitCode int
}

// Add records an identifier under the given classification unless it was
// already classified in this report.
func (r *Report) Add(id string, class Classification) {
	for _, req := range r.Requirements {
		if req.ID == id {
			return
		}
	}
	r.Requirements = append(r.Requirements, Requirement{ID: id, Class: class})
}

// IDs returns the identifiers in the given classification, in emission order.
func (r *Report) IDs(class Classification) []string {
	var ids []string
	for _, req := range r.Requirements {
		if req.Class == class {
			ids = append(ids, req.ID)
		}
	}
	return ids
}

// Count returns the number of identifiers in the given classification.
func (r *Report) Count(class Classification) int {
	n := 0
	for _, req := range r.Requirements {
		if req.Class == class {
			n++
		}
	}
	return n
}

// Gaps reports whether any identifier is Missing or Partial. A gapless
// report is the structural half of the convergence signal.
func (r *Report) Gaps() bool {
	for _, req := range r.Requirements {
		if req.Class == Missing || req.Class == Partial {
			return true
		}
	}
	return false
}

// Empty reports whether the audit yielded no identifiers at all, which is
// what malformed tool output normalizes to.
func (r *Report) Empty() bool {
	return len(r.Requirements) == 0
}

// Coverage is the machine-readable report form, compatible with the JSON
// emitted by the audit tool's converter mode.
type Coverage struct {
	Covered []string `json:"covered" jsonschema:"description=Identifiers with explicit test evidence"`
	Partial []string `json:"partial" jsonschema:"description=Identifiers with implementation evidence but no test evidence"`
	Missing []string `json:"missing" jsonschema:"description=Identifiers with no evidence at all"`
}

// Coverage projects the report into its machine-readable form. The slices
// are always non-nil so the JSON encoding uses [] rather than null.
func (r *Report) Coverage() Coverage {
	cov := Coverage{
		Covered: make([]string, 0, len(r.Requirements)),
		Partial: make([]string, 0),
		Missing: make([]string, 0),
	}
	for _, req := range r.Requirements {
		switch req.Class {
		case Covered:
			cov.Covered = append(cov.Covered, req.ID)
		case Partial:
			cov.Partial = append(cov.Partial, req.ID)
		case Missing:
			cov.Missing = append(cov.Missing, req.ID)
		}
	}
	return cov
}
