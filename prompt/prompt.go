/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package prompt

import (
	"fmt"
	"maps"
)

// Prompt is an immutable template with {{name}} placeholders. Binding
// methods return a new Prompt; the receiver is never modified, so a parsed
// template is safe to share and rebind across iterations.
type Prompt struct {
	template string
	bindings map[string]binding
}

// New parses a template and registers its placeholders, all unbound.
func New(template string) (*Prompt, error) {
	bindings := make(map[string]binding)
	if _, err := walkTemplate(template, func(name string) (string, error) {
		if _, ok := bindings[name]; !ok {
			bindings[name] = &unboundBinding{name: name}
		}
		return "", nil
	}); err != nil {
		return nil, err
	}
	return &Prompt{template: template, bindings: bindings}, nil
}

// Placeholders returns the set of placeholder names in the template.
func (p *Prompt) Placeholders() map[string]struct{} {
	names := make(map[string]struct{}, len(p.bindings))
	for name := range p.bindings {
		names[name] = struct{}{}
	}
	return names
}

// Bind attaches a plain string value to a placeholder. Values are
// substituted verbatim, which is fine for operator configuration and loop
// markers; route anything structured through BindYAML instead.
func (p *Prompt) Bind(name, value string) (*Prompt, error) {
	return p.rebind(name, &literalBinding{val: value})
}

// BindYAML attaches structured data to a placeholder, marshaled as YAML
// at Build time.
func (p *Prompt) BindYAML(name string, data any) (*Prompt, error) {
	return p.rebind(name, &yamlBinding{data: data})
}

func (p *Prompt) rebind(name string, b binding) (*Prompt, error) {
	if err := existsAndUnbound(p.bindings, name); err != nil {
		return nil, err
	}
	next := &Prompt{
		template: p.template,
		bindings: maps.Clone(p.bindings),
	}
	next.bindings[name] = b
	return next, nil
}

// Build renders the final text. Every placeholder must be bound.
func (p *Prompt) Build() (string, error) {
	// Resolve all bindings up front so every unbound placeholder and
	// marshal failure surfaces, not just the first one walked.
	values := make(map[string]string, len(p.bindings))
	for name, b := range p.bindings {
		val, err := b.value()
		if err != nil {
			return "", err
		}
		values[name] = val
	}
	return walkTemplate(p.template, func(name string) (string, error) {
		if val, ok := values[name]; ok {
			return val, nil
		}
		return "", fmt.Errorf("internal error: placeholder %q has no value", name)
	})
}
