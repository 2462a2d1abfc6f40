package enumex

import (
	"fmt"
	"sync"
)

// Registry resolves base names to bases. A new registry knows the root
// types, the markers and the built-in carriers; user types are added with
// Register once built.
type Registry struct {
	mu    sync.RWMutex
	bases map[string]Base
	order []*Type
}

// NewRegistry returns a registry preloaded with the built-in bases.
func NewRegistry() *Registry {
	r := &Registry{bases: map[string]Base{}}
	for _, t := range []*Type{Enum, ReprEnum, IntEnum, StrEnum, Flag, IntFlag} {
		r.bases[t.name] = t
	}
	for _, m := range []*Marker{Abstract, StdEnum, StdReprEnum, StdIntEnum, StdStrEnum, StdFlag, StdIntFlag} {
		r.bases[m.name] = m
	}
	for _, c := range []*Carrier{Object, Int, Str} {
		r.bases[c.name] = c
	}
	return r
}

// Register adds a user type. Names are unique across the registry.
func (r *Registry) Register(t *Type) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.bases[t.name]; exists {
		return fmt.Errorf("type %q already registered", t.name)
	}
	r.bases[t.name] = t
	r.order = append(r.order, t)
	return nil
}

// Base returns the base registered under name.
func (r *Registry) Base(name string) (Base, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.bases[name]
	return b, ok
}

// Type returns the enumeration type registered under name, roots included.
func (r *Registry) Type(name string) (*Type, bool) {
	b, ok := r.Base(name)
	if !ok {
		return nil, false
	}
	t, ok := b.(*Type)
	return t, ok
}

// Types returns the user types in registration order.
func (r *Registry) Types() []*Type {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Type, len(r.order))
	copy(out, r.order)
	return out
}

// Resolve maps base names to bases, failing on the first unknown name.
func (r *Registry) Resolve(names []string) ([]Base, error) {
	out := make([]Base, 0, len(names))
	for _, n := range names {
		b, ok := r.Base(n)
		if !ok {
			return nil, fmt.Errorf("unknown base %q", n)
		}
		out = append(out, b)
	}
	return out, nil
}
