/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package audit_test

import (
	"strings"
	"testing"

	"chainguard.dev/convergent/audit"
)

func TestCoverageSchema(t *testing.T) {
	s := audit.CoverageSchema()
	if s == nil {
		t.Fatal("expected schema")
	}
	if s.Type != "object" {
		t.Errorf("expected object type, got %s", s.Type)
	}

	props := s.Properties
	if props == nil {
		t.Fatal("expected properties")
	}
	for _, key := range []string{"covered", "partial", "missing"} {
		prop, ok := props.Get(key)
		if !ok {
			t.Fatalf("missing %s property", key)
		}
		if prop.Type != "array" {
			t.Errorf("%s: expected array type, got %s", key, prop.Type)
		}
	}
}

func TestMarshalCoverage(t *testing.T) {
	var report audit.Report
	report.Add("F-01", audit.Covered)
	report.Add("F-02", audit.Missing)

	data, err := audit.MarshalCoverage(report)
	if err != nil {
		t.Fatal(err)
	}
	out := string(data)
	for _, want := range []string{`"covered"`, `"F-01"`, `"missing"`, `"F-02"`, `"partial": []`} {
		if !strings.Contains(out, want) {
			t.Errorf("coverage JSON missing %q:\n%s", want, out)
		}
	}
}
