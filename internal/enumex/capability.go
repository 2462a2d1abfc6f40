package enumex

import (
	"context"
	"slices"
)

// Kind distinguishes invocable capabilities from properties.
type Kind string

const (
	KindMethod   Kind = "method"
	KindProperty Kind = "property"
)

// Method implements an invocable capability for a member.
type Method func(ctx context.Context, m *Member, args ...any) (any, error)

// Getter, Setter and Deleter implement a property capability.
type (
	Getter  func(ctx context.Context, m *Member) (any, error)
	Setter  func(ctx context.Context, m *Member, v any) error
	Deleter func(ctx context.Context, m *Member) error
)

// Capability is a method or property a type resolves for its members.
// An abstract capability may still carry a body; it only runs on the
// re-entrant path, never through enforcement.
type Capability struct {
	name     string
	kind     Kind
	abstract bool
	method   Method
	get      Getter
	set      Setter
	del      Deleter
	owner    *Type
}

// Name returns the capability name.
func (c *Capability) Name() string { return c.name }

// Kind returns whether the capability is a method or a property.
func (c *Capability) Kind() Kind { return c.kind }

// Abstract reports whether the capability was declared unimplemented.
func (c *Capability) Abstract() bool { return c.abstract }

// Owner returns the type whose declaration provided this capability.
func (c *Capability) Owner() *Type { return c.owner }

// Settable reports whether the property has a setter.
func (c *Capability) Settable() bool { return c.set != nil }

// resolveCapabilities overlays own declarations on the parent's table and
// returns the table together with the sorted unmet names.
func resolveCapabilities(t *Type, parent *Type, own []*Capability) (map[string]*Capability, []string) {
	table := make(map[string]*Capability, len(own))
	if parent != nil {
		for n, c := range parent.caps {
			table[n] = c
		}
	}
	for _, c := range own {
		c.owner = t
		table[c.name] = c
	}

	var unmet []string
	for n, c := range table {
		if c.abstract {
			unmet = append(unmet, n)
		}
	}
	slices.Sort(unmet)
	return table, unmet
}
