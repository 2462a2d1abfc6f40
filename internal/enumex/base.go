package enumex

import (
	"fmt"
	"math/bits"
	"strings"
)

// Base is anything that can appear in the base list of a type declaration:
// an enumeration *Type, a data *Carrier, or a *Marker.
type Base interface {
	BaseName() string
}

// Marker is a base that carries identity only. Markers join the ancestry of
// every type declared with them so IsA checks succeed, but contribute no
// members, carrier, or capabilities.
type Marker struct {
	name string
	std  bool
}

// BaseName implements Base.
func (m *Marker) BaseName() string { return m.name }

// Standard reports whether m is one of the foundational enumeration markers.
func (m *Marker) Standard() bool { return m.std }

// Abstract marks a type as taking part in abstract contracts.
var Abstract = &Marker{name: "abstract"}

// Foundational markers. Every root type carries one in its ancestry; a user
// declaration may list one as its last base for cross-hierarchy identity.
var (
	StdEnum     = &Marker{name: "std.Enum", std: true}
	StdReprEnum = &Marker{name: "std.ReprEnum", std: true}
	StdIntEnum  = &Marker{name: "std.IntEnum", std: true}
	StdStrEnum  = &Marker{name: "std.StrEnum", std: true}
	StdFlag     = &Marker{name: "std.Flag", std: true}
	StdIntFlag  = &Marker{name: "std.IntFlag", std: true}
)

// Boundary governs how flag construction handles bits outside the type's
// defined flags.
type Boundary string

const (
	Strict  Boundary = "strict"
	Conform Boundary = "conform"
	Eject   Boundary = "eject"
	Keep    Boundary = "keep"
)

// ParseBoundary parses a boundary policy name.
func ParseBoundary(s string) (Boundary, error) {
	switch b := Boundary(strings.ToLower(strings.TrimSpace(s))); b {
	case Strict, Conform, Eject, Keep:
		return b, nil
	}
	return "", fmt.Errorf("invalid boundary %q: must be one of strict, conform, eject, keep", s)
}

// Generator produces a value for a member declared with Auto. count is the
// number of members declared so far (inherited ones included) and last holds
// their values in declaration order.
type Generator func(name string, start int64, count int, last []any) (any, error)

// IncrementGenerator returns one more than the most recent integer value, or
// start when there is none.
func IncrementGenerator(_ string, start int64, _ int, last []any) (any, error) {
	for i := len(last) - 1; i >= 0; i-- {
		if n, ok := toInt64(last[i]); ok {
			return n + 1, nil
		}
	}
	return start, nil
}

// PowerOfTwoGenerator returns the next power of two above the highest value
// declared so far.
func PowerOfTwoGenerator(_ string, start int64, count int, last []any) (any, error) {
	if count == 0 || len(last) == 0 {
		return start, nil
	}
	var high int64
	for _, v := range last {
		n, ok := toInt64(v)
		if !ok {
			return nil, fmt.Errorf("invalid flag value %v", v)
		}
		if n > high {
			high = n
		}
	}
	return int64(1) << bits.Len64(uint64(high)), nil
}

// LowerNameGenerator returns the lower-cased member name.
func LowerNameGenerator(name string, _ int64, _ int, _ []any) (any, error) {
	return strings.ToLower(name), nil
}

// Root types. Every user type descends from one of them.
var (
	Enum     = newRoot("Enum", nil, StdEnum, Object, IncrementGenerator, "", false)
	ReprEnum = newRoot("ReprEnum", Enum, StdReprEnum, Object, nil, "", true)
	IntEnum  = newRoot("IntEnum", ReprEnum, StdIntEnum, Int, nil, "", true)
	StrEnum  = newRoot("StrEnum", ReprEnum, StdStrEnum, Str, LowerNameGenerator, "", true)
	Flag     = newRoot("Flag", Enum, StdFlag, Object, PowerOfTwoGenerator, Strict, false)
	IntFlag  = newRoot("IntFlag", Flag, StdIntFlag, Int, nil, Keep, true, ReprEnum)
)

// newRoot creates a member-less, concrete root type. extra lists additional
// ancestors merged into the ancestry set (IntFlag is both a Flag and a ReprEnum).
func newRoot(name string, parent *Type, std *Marker, carrier *Carrier, gen Generator, boundary Boundary, repr bool, extra ...*Type) *Type {
	t := &Type{
		name:     name,
		carrier:  carrier,
		parent:   parent,
		std:      std,
		ancestry: map[Base]struct{}{std: {}},
		byName:   map[string]*Member{},
		byValue:  map[any]*Member{},
		caps:     map[string]*Capability{},
		repr:     repr,
		root:     true,
	}
	t.ancestry[t] = struct{}{}
	for _, a := range append([]*Type{parent}, extra...) {
		if a == nil {
			continue
		}
		for b := range a.ancestry {
			t.ancestry[b] = struct{}{}
		}
	}
	t.generator = gen
	if gen == nil && parent != nil {
		t.generator = parent.generator
	}
	if boundary != "" {
		t.flags = &flagInfo{boundary: boundary, byValue: true}
	}
	return t
}
