/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package main implements the requirements coverage audit CLI. It scans a
// project tree for requirement identifiers declared in a PRD document and
// classifies each one by where its evidence appears: test evidence counts
// as covered, implementation evidence alone counts as partial, and no
// evidence at all counts as missing.
//
// Exit codes: 0 all requirements covered, 1 gaps found, 2 audit error.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"chainguard.dev/convergent/audit"
	"chainguard.dev/convergent/audit/scanner"
	"github.com/spf13/cobra"
)

var (
	flagRoot    string
	flagPRD     string
	flagConfig  string
	flagJSON    bool
	flagConvert bool
	flagSchema  bool
)

var rootCmd = &cobra.Command{
	Use:   "prdaudit",
	Short: "Audit a project tree for requirement coverage",
	Long: `Scan source and test trees for requirement identifiers declared in a
PRD document. An identifier referenced from a test file is covered, one
with implementation evidence but no test evidence is partial, and one
with no evidence anywhere is missing.`,
	Args:          cobra.NoArgs,
	RunE:          run,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.Flags().StringVar(&flagRoot, "root", ".", "project root to scan")
	rootCmd.Flags().StringVar(&flagPRD, "prd", "", "requirements document path relative to root (overrides config)")
	rootCmd.Flags().StringVar(&flagConfig, "config", "", "YAML audit configuration file")
	rootCmd.Flags().BoolVar(&flagJSON, "json", false, "emit the JSON coverage document instead of text")
	rootCmd.Flags().BoolVar(&flagConvert, "convert", false, "read an audit text report on stdin and emit JSON")
	rootCmd.Flags().BoolVar(&flagSchema, "schema", false, "print the JSON schema for the coverage document")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		var notFound *scanner.PRDNotFoundError
		if errors.As(err, &notFound) {
			fmt.Fprintf(os.Stderr, "❌ PRD not found: %s\n", notFound.Path)
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(2)
	}
}

func run(cmd *cobra.Command, _ []string) error {
	switch {
	case flagSchema:
		return printSchema(cmd.OutOrStdout())
	case flagConvert:
		return convert(cmd.InOrStdin(), cmd.OutOrStdout())
	}

	cfg := scanner.DefaultConfig()
	if flagConfig != "" {
		var err error
		if cfg, err = scanner.LoadConfig(flagConfig); err != nil {
			return err
		}
	}
	cfg.Root = flagRoot
	if flagPRD != "" {
		cfg.PRD = flagPRD
	}

	s, err := scanner.New(cfg)
	if err != nil {
		return err
	}
	result, err := s.Scan(cmd.Context())
	if err != nil {
		return err
	}

	if flagJSON {
		data, err := json.MarshalIndent(result.Coverage(), "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
	} else {
		result.WriteText(cmd.OutOrStdout())
	}

	// Coverage gaps surface through the exit code, not an error.
	if code := result.ExitCode(); code != 0 {
		os.Exit(code)
	}
	return nil
}

// convert normalizes an audit report read from stdin into the JSON
// coverage document. Text and JSON reports are both accepted; anything
// unrecognizable converts to an empty document.
func convert(in io.Reader, out io.Writer) error {
	data, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("reading stdin: %w", err)
	}
	report := audit.Parse(string(data), 0)
	doc, err := audit.MarshalCoverage(report)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, string(doc))
	return nil
}

func printSchema(out io.Writer) error {
	data, err := json.MarshalIndent(audit.CoverageSchema(), "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(out, string(data))
	return nil
}
