/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package prompt

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// walkTemplate scans template left to right and calls resolve once per
// placeholder. Single pass: replacement text is emitted, never rescanned,
// so a bound value containing "{{" cannot trigger further substitution.
func walkTemplate(template string, resolve func(name string) (string, error)) (string, error) {
	var out strings.Builder
	rest := template
	for {
		before, after, found := strings.Cut(rest, "{{")
		out.WriteString(before)
		if !found {
			return out.String(), nil
		}
		body, tail, closed := strings.Cut(after, "}}")
		if !closed {
			return "", errors.New("unclosed placeholder: missing '}}'")
		}
		name := strings.TrimSpace(body)
		if !validName(name) {
			return "", fmt.Errorf("invalid placeholder name %q", name)
		}
		val, err := resolve(name)
		if err != nil {
			return "", err
		}
		out.WriteString(val)
		rest = tail
	}
}

// validName accepts identifiers that start with a letter and continue with
// letters, digits, or underscores.
func validName(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if i == 0 {
			if !unicode.IsLetter(r) {
				return false
			}
			continue
		}
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			return false
		}
	}
	return true
}
