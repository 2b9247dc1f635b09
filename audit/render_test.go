/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package audit

import (
	"bytes"
	"strings"
	"testing"
)

func TestRenderTable(t *testing.T) {
	report := Report{Requirements: []Requirement{
		{ID: "F-01", Class: Covered},
		{ID: "F-02", Class: Partial},
		{ID: "E-03", Class: Missing},
	}}

	var buf bytes.Buffer
	RenderTable(&buf, report)
	out := buf.String()

	for _, want := range []string{"Requirement", "Status", "F-01", "covered", "E-03", "missing"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if !strings.Contains(out, "covered 1 / partial 1 / missing 1") {
		t.Errorf("output missing count line:\n%s", out)
	}
}

func TestRenderTableEmptyReport(t *testing.T) {
	var buf bytes.Buffer
	RenderTable(&buf, Report{})
	if !strings.Contains(buf.String(), "covered 0 / partial 0 / missing 0") {
		t.Errorf("output missing zero count line:\n%s", buf.String())
	}
}
