/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package prompt

import (
	"errors"
	"fmt"
	"strings"

	"chainguard.dev/convergent/audit"
)

// Sentinel is the exact phrase the agent must emit in Verify mode to
// signal that nothing needs changing. Convergence keys on this literal
// string; near-misses do not count.
const Sentinel = "NO_DRIFT_DETECTED"

const implementTemplate = `You are operating on the repository in the current working directory.
The product requirements document is {{spec_path}}. Project rules live in
{{rules_path}}; follow them.

Loop marker: {{marker}}

Requirement coverage as reported by the compliance audit:

{{coverage}}
Raw audit output:

{{audit}}

Your task is to make the audit pass:
- Implement every requirement listed under "missing".
- Requirements listed under "partial" have implementation evidence but no
  test evidence. Add tests for each, tagged with a comment naming the
  requirement, for example "PRD: F-01".
- Keep requirements listed under "covered" working.

You must produce edits now, not a description of edits. Do not reply with
a plan, a summary, or questions. Edit files directly, then stop.`

const verifyTemplate = `You are operating on the repository in the current working directory.
The product requirements document is {{spec_path}}. Project rules live in
{{rules_path}}; follow them.

Loop marker: {{marker}}

The compliance audit found no structural gaps:

{{coverage}}
Inspect the implementation for drift from {{spec_path}} that the audit
cannot see: stale behavior, contradicted requirements, broken user flows.
If you find drift, fix it by editing files directly. Do not reply with a
plan, a summary, or questions.

If and only if there is nothing left to change, reply with exactly:

{{sentinel}}`

// Builder renders mode-specific agent instructions. It is stateless
// beyond the two document paths, so identical inputs always render
// identical text.
type Builder struct {
	specPath  string
	rulesPath string
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder) error

// WithSpecPath sets the requirements document path named in prompts.
func WithSpecPath(path string) BuilderOption {
	return func(b *Builder) error {
		if path == "" {
			return errors.New("prompt: spec path must not be empty")
		}
		b.specPath = path
		return nil
	}
}

// WithRulesPath sets the project rules document path named in prompts.
func WithRulesPath(path string) BuilderOption {
	return func(b *Builder) error {
		if path == "" {
			return errors.New("prompt: rules path must not be empty")
		}
		b.rulesPath = path
		return nil
	}
}

// NewBuilder creates a Builder with conventional document paths.
func NewBuilder(opts ...BuilderOption) (*Builder, error) {
	b := &Builder{
		specPath:  "PRD/product_prd.md",
		rulesPath: "CLAUDE.md",
	}
	for _, opt := range opts {
		if err := opt(b); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// Build renders the instruction text for one agent invocation. The marker
// distinguishes iterations (and escalation retries) so repeated prompts
// are traceable without being byte-identical.
func (b *Builder) Build(mode Mode, report audit.Report, marker string) (string, error) {
	var template string
	switch mode {
	case Implement:
		template = implementTemplate
	case Verify:
		template = verifyTemplate
	default:
		return "", fmt.Errorf("prompt: unknown mode %q", mode)
	}

	p, err := New(template)
	if err != nil {
		return "", err
	}
	if p, err = p.Bind("spec_path", b.specPath); err != nil {
		return "", err
	}
	if p, err = p.Bind("rules_path", b.rulesPath); err != nil {
		return "", err
	}
	if p, err = p.Bind("marker", marker); err != nil {
		return "", err
	}
	if p, err = p.BindYAML("coverage", report.Coverage()); err != nil {
		return "", err
	}
	switch mode {
	case Implement:
		if p, err = p.Bind("audit", strings.TrimSpace(report.Raw)); err != nil {
			return "", err
		}
	case Verify:
		if p, err = p.Bind("sentinel", Sentinel); err != nil {
			return "", err
		}
	}
	return p.Build()
}

// TemplateSources returns the raw template texts keyed by mode name, so
// startup integrity checks can scan the embedded assets.
func TemplateSources() map[string]string {
	return map[string]string{
		string(Implement): implementTemplate,
		string(Verify):    verifyTemplate,
	}
}
