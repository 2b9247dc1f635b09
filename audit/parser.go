/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package audit

import (
	"encoding/json"
	"strings"
)

// Parse normalizes raw audit output into a Report. It first tries the JSON
// coverage document (tolerating a surrounding Markdown code fence), then
// falls back to the sectioned text format. Input that matches neither
// yields an empty report with Raw preserved; a broken audit tool must not
// crash the caller, but its output stays visible.
func Parse(raw string, exitCode int) Report {
	report := Report{Raw: raw, ExitCode: exitCode}
	if parseJSON(&report, raw) {
		return report
	}
	parseText(&report, raw)
	return report
}

// parseJSON attempts the coverage-document form. Classification order
// follows the document's array order: covered, then partial, then missing.
func parseJSON(r *Report, raw string) bool {
	payload := strings.TrimSpace(unfence(raw))
	if payload == "" || (payload[0] != '{') {
		return false
	}
	var cov Coverage
	if err := json.Unmarshal([]byte(payload), &cov); err != nil {
		return false
	}
	for _, id := range cov.Covered {
		r.Add(id, Covered)
	}
	for _, id := range cov.Partial {
		r.Add(id, Partial)
	}
	for _, id := range cov.Missing {
		r.Add(id, Missing)
	}
	return true
}

// parseText walks the sectioned text report. Section headers are matched by
// substring so decorations around them don't matter; item lines start with
// "-" and the identifier is the second whitespace-separated token with any
// trailing ":" or "," stripped.
func parseText(r *Report, raw string) {
	var current Classification
	inSection := false
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		switch {
		case strings.Contains(line, "[COVERED]"):
			current, inSection = Covered, true
		case strings.Contains(line, "[PARTIAL]"):
			current, inSection = Partial, true
		case strings.Contains(line, "[MISSING]"):
			current, inSection = Missing, true
		case strings.HasPrefix(line, "-") && inSection:
			fields := strings.Fields(line)
			if len(fields) >= 2 {
				r.Add(strings.Trim(fields[1], ":,"), current)
			}
		}
	}
}

// unfence strips a Markdown code fence from around the payload, if present.
// Audit tools that pipe through an LLM-ish formatter sometimes wrap their
// JSON in ```json blocks; the content inside the first fence wins.
func unfence(raw string) string {
	if !strings.Contains(raw, "```") {
		return raw
	}

	var inner []string
	inFence := false
	for _, line := range strings.Split(raw, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case !inFence && (trimmed == "```json" || trimmed == "```"):
			inFence = true
		case inFence && strings.HasPrefix(trimmed, "```"):
			return strings.Join(inner, "\n")
		case inFence:
			inner = append(inner, line)
		}
	}
	if inFence {
		// Unterminated fence: use what was collected.
		return strings.Join(inner, "\n")
	}
	return raw
}
