/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

/*
Package audit invokes the external compliance audit tool and normalizes
whatever it prints into a Report: requirement identifiers classified as
Missing, Partial, or Covered, plus the verbatim tool output.

The audit tool is an opaque collaborator. It is run with no arguments in
the project root, and a non-zero exit status means "the codebase has gaps",
not "the audit failed". Runner never turns exit codes into errors.

Parse accepts both output shapes the tool family produces: the JSON
coverage document ({"covered": [...], "partial": [...], "missing": [...]})
and the sectioned text report ([COVERED]/[PARTIAL]/[MISSING] headers with
"- <id>" item lines). Anything unparseable yields an empty report with the
raw text preserved, so a broken audit tool degrades visibly instead of
crashing the loop that consumes it.
*/
package audit
