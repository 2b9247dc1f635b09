/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package prompt

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// binding is a value waiting to be substituted into the template.
type binding interface {
	value() (string, error)
}

// unboundBinding is the parse-time default; building with one is an error.
type unboundBinding struct {
	name string
}

func (u *unboundBinding) value() (string, error) {
	return "", fmt.Errorf("unbound placeholder: %s", u.name)
}

type literalBinding struct {
	val string
}

func (l *literalBinding) value() (string, error) {
	return l.val, nil
}

type yamlBinding struct {
	data any
}

func (y *yamlBinding) value() (string, error) {
	out, err := yaml.Marshal(y.data)
	if err != nil {
		return "", fmt.Errorf("failed to marshal YAML: %w", err)
	}
	return string(out), nil
}

// existsAndUnbound rejects binds to unknown or already-bound placeholders.
func existsAndUnbound(bindings map[string]binding, name string) error {
	b, ok := bindings[name]
	if !ok {
		return fmt.Errorf("placeholder %q not found in template", name)
	}
	if _, unbound := b.(*unboundBinding); !unbound {
		return fmt.Errorf("placeholder %q already bound", name)
	}
	return nil
}
