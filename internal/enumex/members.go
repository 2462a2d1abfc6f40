package enumex

import (
	"fmt"
	"math/bits"
)

// auto is the type of the Auto sentinel.
type auto struct{}

// Auto requests a generated value: Builder.Member("Red", Auto).
var Auto = auto{}

// memberDecl is a provisional member collected before the type is built.
type memberDecl struct {
	name      string
	args      []any
	auto      bool
	inherited bool
}

var reservedNames = map[string]bool{"": true, "mro": true}

// buildMembers materialises the member table of t: the parent's declared
// members first, then own in declaration order.
func buildMembers(t *Type, own []memberDecl) error {
	var decls []memberDecl
	if p := t.parent; p != nil {
		for _, n := range p.declared {
			decls = append(decls, memberDecl{name: n, args: []any{p.byName[n].value}, inherited: true})
		}
	}
	decls = append(decls, own...)

	values := make([]any, 0, len(decls))
	for _, d := range decls {
		if err := checkMemberName(t, d.name); err != nil {
			return err
		}
		v, err := memberValue(t, d, values)
		if err != nil {
			return err
		}
		values = append(values, v)
		t.declared = append(t.declared, d.name)

		if existing := t.lookupValue(v); existing != nil {
			t.byName[d.name] = existing
			continue
		}
		m := &Member{name: d.name, value: v, typ: t, canonical: true}
		if t.flags != nil {
			m.canonical = isSingleBit(v.(int64))
		}
		t.byName[d.name] = m
		if hashable(v) {
			t.byValue[v] = m
		} else {
			t.unhashable = append(t.unhashable, m)
		}
		if m.canonical {
			t.names = append(t.names, d.name)
		}
	}

	if t.flags != nil {
		computeMasks(t)
	}
	return nil
}

func checkMemberName(t *Type, name string) error {
	reason := ""
	switch {
	case reservedNames[name]:
		reason = "is reserved"
	case t.byName[name] != nil:
		reason = "is already defined"
	case t.caps[name] != nil:
		reason = "collides with a capability"
	default:
		return nil
	}
	return &Error{
		Code:    CodeInvalidMemberName,
		Message: fmt.Sprintf("member name %q %s", name, reason),
		Type:    t.name,
		Names:   []string{name},
	}
}

// memberValue produces the stored value for d. Inherited values are reused
// as-is unless the carrier changed along the way.
func memberValue(t *Type, d memberDecl, values []any) (any, error) {
	args := d.args
	if d.auto {
		gen, err := t.generator(d.name, 1, len(values), values)
		if err != nil {
			return nil, wrapValueError(t, d.name, err)
		}
		args = []any{gen}
	}

	var v any
	if d.inherited && t.carrier == t.parent.carrier {
		v = args[0]
	} else {
		var err error
		v, err = t.carrier.Construct(args...)
		if err != nil {
			return nil, wrapValueError(t, d.name, err)
		}
	}

	if t.flags != nil {
		n, ok := v.(int64)
		if !ok {
			return nil, wrapValueError(t, d.name, fmt.Errorf("flag values must be integers, got %T", v))
		}
		if n < 0 {
			return nil, wrapValueError(t, d.name, fmt.Errorf("flag values must not be negative, got %d", n))
		}
	}
	return v, nil
}

func wrapValueError(t *Type, name string, err error) *Error {
	return &Error{
		Code:    CodeInvalidValue,
		Message: fmt.Sprintf("member %s: %v", name, err),
		Type:    t.name,
		Names:   []string{name},
		Err:     err,
	}
}

// computeMasks fills the flag bookkeeping once the member table is complete.
func computeMasks(t *Type) {
	f := t.flags
	f.flagMask, f.singlesMask = 0, 0
	for _, m := range t.byValue {
		v := m.value.(int64)
		f.flagMask |= v
		if isSingleBit(v) {
			f.singlesMask |= v
		}
	}
	f.allBits = int64(uint64(1)<<bits.Len64(uint64(f.flagMask)) - 1)

	f.byValue = true
	var prev int64
	for _, n := range t.names {
		v := t.byName[n].value.(int64)
		if v <= prev {
			f.byValue = false
			break
		}
		prev = v
	}
}
