package enumex

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"slices"
)

// Type is a finished enumeration type. It is built once by a Builder and is
// read-only afterwards, so it is safe for concurrent use.
type Type struct {
	name     string
	carrier  *Carrier
	parent   *Type
	std      *Marker
	ancestry map[Base]struct{}

	// declared holds every member name in declaration order, aliases included.
	declared []string
	// names holds the canonical member names in definition order.
	names      []string
	byName     map[string]*Member
	byValue    map[any]*Member
	unhashable []*Member

	caps  map[string]*Capability
	unmet []string

	generator Generator
	intercept Interceptor

	// flags is nil unless the type descends from Flag.
	flags *flagInfo

	repr bool
	root bool
}

// flagInfo is the bookkeeping kept only on flag types.
type flagInfo struct {
	boundary    Boundary
	flagMask    int64
	singlesMask int64
	allBits     int64
	// byValue selects ascending-bit decomposition; otherwise canonical
	// definition order is used.
	byValue bool
}

// BaseName implements Base.
func (t *Type) BaseName() string { return t.name }

// Name returns the type name.
func (t *Type) Name() string { return t.name }

func (t *Type) String() string { return t.name }

// Carrier returns the data carrier, Object when the type has none.
func (t *Type) Carrier() *Carrier { return t.carrier }

// Parent returns the nearest enumeration ancestor, nil for Enum.
func (t *Type) Parent() *Type { return t.parent }

// StdMarker returns the foundational marker this type descends from.
func (t *Type) StdMarker() *Marker { return t.std }

// Root reports whether t is one of the predefined root types.
func (t *Type) Root() bool { return t.root }

// IsA reports whether b is t itself or among its ancestors (types and markers).
func (t *Type) IsA(b Base) bool {
	_, ok := t.ancestry[b]
	return ok
}

// Related reports whether either type descends from the other.
func (t *Type) Related(o *Type) bool {
	return t.IsA(o) || o.IsA(t)
}

// IsFlag reports whether t is a flag-style enumeration.
func (t *Type) IsFlag() bool { return t.flags != nil }

// Boundary returns the boundary policy; ok is false for non-flag types.
func (t *Type) Boundary() (b Boundary, ok bool) {
	if t.flags == nil {
		return "", false
	}
	return t.flags.boundary, true
}

// FlagMask returns the OR of every member value (0 for non-flag types).
func (t *Type) FlagMask() int64 {
	if t.flags == nil {
		return 0
	}
	return t.flags.flagMask
}

// SinglesMask returns the OR of every single-bit member value.
func (t *Type) SinglesMask() int64 {
	if t.flags == nil {
		return 0
	}
	return t.flags.singlesMask
}

// AllBits returns the all-bits mask, 2^bitlen(FlagMask)-1.
func (t *Type) AllBits() int64 {
	if t.flags == nil {
		return 0
	}
	return t.flags.allBits
}

// Abstract reports whether any capability is left unmet.
func (t *Type) Abstract() bool { return len(t.unmet) > 0 }

// Unmet returns the sorted names of unmet capabilities.
func (t *Type) Unmet() []string { return slices.Clone(t.unmet) }

// IsUnmet reports whether the named capability is unmet on t. It reads the
// capability table directly and never goes through the dispatcher.
func (t *Type) IsUnmet(name string) bool {
	_, found := slices.BinarySearch(t.unmet, name)
	return found
}

// Capability returns the capability resolved on t for name.
func (t *Type) Capability(name string) (*Capability, bool) {
	c, ok := t.caps[name]
	return c, ok
}

// Capabilities returns the names of every capability resolved on t, sorted.
func (t *Type) Capabilities() []string {
	names := make([]string, 0, len(t.caps))
	for n := range t.caps {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// Len returns the number of canonical members.
func (t *Type) Len() int { return len(t.names) }

// Names returns the canonical member names in definition order.
func (t *Type) Names() []string { return slices.Clone(t.names) }

// Declared returns every member name in declaration order, aliases included.
func (t *Type) Declared() []string { return slices.Clone(t.declared) }

// Members returns the canonical members in definition order.
func (t *Type) Members() []*Member {
	out := make([]*Member, len(t.names))
	for i, n := range t.names {
		out[i] = t.byName[n]
	}
	return out
}

// Aliases maps every alias name (and, for flags, every non-canonical named
// member) to the member it resolves to.
func (t *Type) Aliases() map[string]*Member {
	canonical := make(map[string]bool, len(t.names))
	for _, n := range t.names {
		canonical[n] = true
	}
	out := map[string]*Member{}
	for _, n := range t.declared {
		if !canonical[n] {
			out[n] = t.byName[n]
		}
	}
	return out
}

// Member returns the member declared under name. An alias resolves to the
// canonical member, which reports its own name.
func (t *Type) Member(name string) (*Member, bool) {
	m, ok := t.byName[name]
	return m, ok
}

// MustMember is like Member but panics when name is not declared.
// Use only in tests or when the name is known to exist.
func (t *Type) MustMember(name string) *Member {
	m, ok := t.byName[name]
	if !ok {
		panic(fmt.Sprintf("enumex: %s has no member %q", t.name, name))
	}
	return m
}

// Lookup returns the member holding value. It never constructs composites.
func (t *Type) Lookup(value any) (*Member, bool) {
	m := t.lookupValue(normalize(value))
	return m, m != nil
}

func (t *Type) lookupValue(v any) *Member {
	if hashable(v) {
		if m, ok := t.byValue[v]; ok {
			return m
		}
	}
	for _, m := range t.unhashable {
		if reflect.DeepEqual(m.value, v) {
			return m
		}
	}
	return nil
}

// New resolves value to an instance of t, the equivalent of calling the type.
//
// Abstract types cannot be instantiated. Flag types construct composite
// members for values that are not declared, subject to the boundary policy;
// a value ejected by the Eject boundary is reported as INVALID_VALUE, use
// Construct to receive the raw integer instead.
func (t *Type) New(value any) (*Member, error) {
	res, err := t.Construct(value)
	if err != nil {
		return nil, err
	}
	if m, ok := res.(*Member); ok {
		return m, nil
	}
	return nil, newValueError(t, "%v ejected by %s boundary", res, Eject)
}

// Construct is New without the Eject restriction: the result is a *Member,
// or an int64 when a flag boundary ejects the value.
func (t *Type) Construct(value any) (any, error) {
	if t.Abstract() {
		return nil, newInstantiationError(t)
	}
	v := normalize(value)
	if m := t.lookupValue(v); m != nil {
		return m, nil
	}
	if t.flags == nil {
		return nil, newValueError(t, "%v is not a valid %s", v, t.name)
	}
	n, ok := v.(int64)
	if !ok {
		return nil, newValueError(t, "%v is not a valid %s: flag values must be integers", v, t.name)
	}
	return t.missing(n)
}

// Decode resolves a JSON-encoded member value back to its member, the inverse
// of Member.MarshalJSON.
//
// Numbers are decoded exactly, so integers beyond 2^53 resolve to their own
// member.
func (t *Type) Decode(data []byte) (*Member, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decoding %s value: %w", t.name, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decoding %s value: unexpected data after value", t.name)
	}
	return t.New(fromJSON(raw))
}

// fromJSON maps decoded JSON onto the value shapes members store.
func fromJSON(v any) any {
	switch x := v.(type) {
	case json.Number:
		if n, err := x.Int64(); err == nil {
			return n
		}
		if f, err := x.Float64(); err == nil {
			if f == float64(int64(f)) {
				return int64(f)
			}
			return f
		}
		return x.String()
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = fromJSON(e)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			out[k] = fromJSON(e)
		}
		return out
	}
	return v
}
