/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package prompt_test

import (
	"strings"
	"testing"

	"chainguard.dev/convergent/audit"
	"chainguard.dev/convergent/prompt"
)

func gapReport() audit.Report {
	r := audit.Report{Raw: "[MISSING] (1)\n- F-06\n", ExitCode: 1}
	r.Add("F-01", audit.Covered)
	r.Add("F-03", audit.Partial)
	r.Add("F-06", audit.Missing)
	return r
}

func cleanReport() audit.Report {
	r := audit.Report{Raw: "[COVERED] (2)\n- F-01\n- F-02\n"}
	r.Add("F-01", audit.Covered)
	r.Add("F-02", audit.Covered)
	return r
}

func TestModeFor(t *testing.T) {
	tests := []struct {
		name   string
		report audit.Report
		want   prompt.Mode
	}{{
		name:   "gaps force implement",
		report: gapReport(),
		want:   prompt.Implement,
	}, {
		name:   "clean report verifies",
		report: cleanReport(),
		want:   prompt.Verify,
	}, {
		name:   "empty report verifies",
		report: audit.Report{Raw: "garbage"},
		want:   prompt.Verify,
	}}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := prompt.ModeFor(tt.report); got != tt.want {
				t.Errorf("ModeFor() = %q, wanted %q", got, tt.want)
			}
		})
	}
}

func TestBuildImplement(t *testing.T) {
	b, err := prompt.NewBuilder()
	if err != nil {
		t.Fatal(err)
	}
	got, err := b.Build(prompt.Implement, gapReport(), "2")
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	// Every identifier must appear, whatever its classification.
	for _, id := range []string{"F-01", "F-03", "F-06"} {
		if !strings.Contains(got, id) {
			t.Errorf("prompt missing identifier %q", id)
		}
	}
	for _, want := range []string{
		"Loop marker: 2",
		"PRD/product_prd.md",
		"CLAUDE.md",
		"not a description of edits",
		"Raw audit output",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("prompt missing %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, prompt.Sentinel) {
		t.Error("implement prompt mentions the sentinel")
	}
	if strings.Contains(got, "{{") {
		t.Errorf("prompt has unresolved placeholders:\n%s", got)
	}
}

func TestBuildVerify(t *testing.T) {
	b, err := prompt.NewBuilder(
		prompt.WithSpecPath("docs/requirements.md"),
		prompt.WithRulesPath("RULES.md"),
	)
	if err != nil {
		t.Fatal(err)
	}
	got, err := b.Build(prompt.Verify, cleanReport(), "4")
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	for _, want := range []string{
		prompt.Sentinel,
		"Loop marker: 4",
		"docs/requirements.md",
		"RULES.md",
		"F-01",
		"F-02",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("prompt missing %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "{{") {
		t.Errorf("prompt has unresolved placeholders:\n%s", got)
	}
}

func TestBuildIsDeterministic(t *testing.T) {
	b, err := prompt.NewBuilder()
	if err != nil {
		t.Fatal(err)
	}
	report := gapReport()

	first, err := b.Build(prompt.Implement, report, "3")
	if err != nil {
		t.Fatal(err)
	}
	second, err := b.Build(prompt.Implement, report, "3")
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Error("Build() produced different text for identical inputs")
	}

	retry, err := b.Build(prompt.Implement, report, "3-retry")
	if err != nil {
		t.Fatal(err)
	}
	if retry == first {
		t.Error("Build() ignored the loop marker")
	}
	if !strings.Contains(retry, "3-retry") {
		t.Error("retry prompt missing its marker")
	}
}

func TestBuildUnknownMode(t *testing.T) {
	b, err := prompt.NewBuilder()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := b.Build(prompt.Mode("plan"), cleanReport(), "1"); err == nil {
		t.Error("Build() error = nil, wanted unknown mode error")
	}
}

func TestBuilderOptionValidation(t *testing.T) {
	if _, err := prompt.NewBuilder(prompt.WithSpecPath("")); err == nil {
		t.Error("NewBuilder() with empty spec path, wanted error")
	}
	if _, err := prompt.NewBuilder(prompt.WithRulesPath("")); err == nil {
		t.Error("NewBuilder() with empty rules path, wanted error")
	}
}

func TestTemplateSources(t *testing.T) {
	sources := prompt.TemplateSources()
	for _, mode := range []prompt.Mode{prompt.Implement, prompt.Verify} {
		if sources[string(mode)] == "" {
			t.Errorf("TemplateSources() missing %q", mode)
		}
	}
}
