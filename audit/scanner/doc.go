/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

/*
Package scanner implements the PRD coverage audit: it extracts requirement
identifiers from a product requirements document and classifies each one by
the evidence found in the repository tree.

Classification is evidence-based and deliberately coarse:

  - Covered: a PRD tag ("PRD: F-01" or "PRD F-01", case-insensitive)
    appears in a file under a test directory.
  - Partial: a PRD tag appears in a file under a source directory, or a
    configured implementation or UI keyword hint matches.
  - Missing: no evidence at all.

Test evidence always wins over source evidence. The scanner never parses
code; it greps, which keeps it language-agnostic and fast. Directories,
extensions, the identifier pattern, and keyword hints all come from Config
so the same binary audits different project layouts.
*/
package scanner
