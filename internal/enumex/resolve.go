package enumex

import (
	"fmt"
	"reflect"
	"slices"
	"strings"
)

// resolution is what a type learns from its base list.
type resolution struct {
	carrier  *Carrier
	parent   *Type
	ancestry map[Base]struct{}
	repr     bool
}

// resolve determines the data carrier, the nearest enumeration ancestor and
// the ancestry set for a declaration.
func resolve(name string, bases []Base) (*resolution, error) {
	if len(bases) == 0 {
		bases = []Base{Enum}
	}
	for i, b := range bases {
		if isNilBase(b) {
			return nil, &Error{
				Code:    CodeMissingAncestor,
				Message: fmt.Sprintf("base %d of %s is nil", i, name),
				Type:    name,
			}
		}
	}

	carrier, err := findCarrier(name, bases)
	if err != nil {
		return nil, err
	}

	candidates := bases
	if m, ok := bases[len(bases)-1].(*Marker); ok && m.std && len(bases) > 1 {
		candidates = bases[:len(bases)-1]
	}
	var parent *Type
	for i := len(candidates) - 1; i >= 0; i-- {
		if t, ok := candidates[i].(*Type); ok {
			parent = t
			break
		}
	}
	if parent == nil {
		return nil, &Error{
			Code:    CodeMissingAncestor,
			Message: fmt.Sprintf("new enumerations must derive from an enumeration type, got bases [%s]", baseNames(bases)),
			Type:    name,
		}
	}

	ancestry := map[Base]struct{}{}
	for _, b := range bases {
		ancestry[b] = struct{}{}
		if t, ok := b.(*Type); ok {
			for a := range t.ancestry {
				ancestry[a] = struct{}{}
			}
		}
	}

	if carrier == nil {
		carrier = parent.carrier
	}
	r := &resolution{
		carrier:  carrier,
		parent:   parent,
		ancestry: ancestry,
	}
	_, r.repr = ancestry[ReprEnum]
	if r.repr && carrier == Object {
		return nil, &Error{
			Code:    CodeMissingDataCarrier,
			Message: fmt.Sprintf("%s descends from ReprEnum and needs a data carrier", name),
			Type:    name,
		}
	}
	return r, nil
}

// findCarrier collects the distinct non-object carriers across the bases:
// explicit carrier bases and the carrier each enumeration base resolved.
func findCarrier(name string, bases []Base) (*Carrier, error) {
	var found []*Carrier
	add := func(c *Carrier) {
		if c != nil && c != Object && !slices.Contains(found, c) {
			found = append(found, c)
		}
	}
	for _, b := range bases {
		switch v := b.(type) {
		case *Carrier:
			add(v)
		case *Type:
			add(v.carrier)
		}
	}
	switch len(found) {
	case 0:
		return nil, nil
	case 1:
		return found[0], nil
	}
	names := make([]string, len(found))
	for i, c := range found {
		names[i] = c.name
	}
	slices.Sort(names)
	return nil, &Error{
		Code:    CodeDuplicateDataCarrier,
		Message: fmt.Sprintf("too many data types for %s: %s", name, strings.Join(names, ", ")),
		Type:    name,
		Names:   names,
	}
}

func baseNames(bases []Base) string {
	names := make([]string, len(bases))
	for i, b := range bases {
		names[i] = b.BaseName()
	}
	return strings.Join(names, ", ")
}

func isNilBase(b Base) bool {
	if b == nil {
		return true
	}
	v := reflect.ValueOf(b)
	return v.Kind() == reflect.Pointer && v.IsNil()
}
