/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package audit

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
)

// CoverageSchema returns the JSON schema for the coverage document, useful
// for validating audit tool output or documenting the wire format.
func CoverageSchema() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		RequiredFromJSONSchemaTags: true,
		ExpandedStruct:             true,
		AllowAdditionalProperties:  true,
		DoNotReference:             true,
	}
	return reflector.Reflect(&Coverage{})
}

// MarshalCoverage serializes the report's coverage projection as the JSON
// coverage document. Empty classes render as [] rather than null.
func MarshalCoverage(report Report) ([]byte, error) {
	return json.MarshalIndent(report.Coverage(), "", "  ")
}
