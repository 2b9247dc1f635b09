/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package scanner

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config controls what the scanner reads and how identifiers are matched.
// Extensions include the leading dot. Hint maps are keyed by the exact
// identifier as it appears in the PRD.
type Config struct {
	// Root is the project directory all other paths are relative to.
	// It is set by the caller, never by the config file.
	Root string `yaml:"-"`

	// PRD is the requirements document, relative to Root.
	PRD string `yaml:"prd"`

	// SourceDirs and TestDirs are scanned for evidence, relative to Root.
	// Missing directories are skipped silently.
	SourceDirs []string `yaml:"source_dirs"`
	TestDirs   []string `yaml:"test_dirs"`

	// SourceExts and TestExts limit which files count as evidence.
	SourceExts []string `yaml:"source_extensions"`
	TestExts   []string `yaml:"test_extensions"`

	// UIExts marks the source extensions eligible for UI keyword hints.
	UIExts []string `yaml:"ui_extensions"`

	// IDPattern is the regular expression for one requirement identifier.
	// It is wrapped in word boundaries when applied.
	IDPattern string `yaml:"id_pattern"`

	// ImplHints maps an identifier to keywords whose presence in any
	// source file counts as implementation evidence (Partial).
	ImplHints map[string][]string `yaml:"implementation_hints"`

	// UIHints is like ImplHints but only consulted for files with a
	// UI extension.
	UIHints map[string][]string `yaml:"ui_hints"`
}

// DefaultConfig returns the conventional project layout: a PRD under PRD/,
// code under src/, tests under tests/, and F-NN/E-NN/Analytics identifiers.
func DefaultConfig() Config {
	return Config{
		PRD:        "PRD/product_prd.md",
		SourceDirs: []string{"src"},
		TestDirs:   []string{"tests"},
		SourceExts: []string{".py", ".js", ".html", ".css"},
		TestExts:   []string{".py"},
		UIExts:     []string{".js", ".html", ".css"},
		IDPattern:  `(?:F|E)-\d{2}|Analytics`,
	}
}

// LoadConfig reads a YAML config file over the defaults. Keys absent from
// the file keep their default values.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}
