/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

/*
Package prompt renders the instruction payload sent to the code-generation
agent each iteration.

The low-level half is a small template engine: {{name}} placeholders, bound
either to plain strings or to YAML-marshaled data. Prompts are immutable:
every Bind returns a new instance, Build fails while any placeholder is
unbound, and substitution is single-pass so bound values are never
re-expanded. That last property matters here because audit output and
requirement identifiers flow into the prompt verbatim.

The high-level half is Builder, which owns the two mode templates. Given
the same report, mode, and loop marker it always produces the same text;
stuck loops must be reproducible from their transcript. Both templates
enumerate every requirement identifier with its classification and forbid
the agent from answering with a plan instead of edits. The Verify template
additionally names the exact Sentinel the agent must emit when it finds
nothing to change.
*/
package prompt
