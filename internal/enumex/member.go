package enumex

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
)

// Member is one instance of an enumeration type.
//
// Declared members are created once per canonical name while the type is
// built. Composite flag values produced by composition are transient members:
// they are never added to the type's tables and report Canonical() == false.
type Member struct {
	name      string
	value     any
	typ       *Type
	canonical bool
	composite bool
}

// Name returns the member name. Composite members are named after the flags
// they contain ("Read|Write"); an empty composite has no name.
func (m *Member) Name() string { return m.name }

// Value returns the carrier value. Integer carriers and all flag types store int64.
func (m *Member) Value() any { return m.value }

// Type returns the owning type.
func (m *Member) Type() *Type { return m.typ }

// Canonical reports whether the member appears in the type's canonical sequence.
func (m *Member) Canonical() bool { return m.canonical }

// Composite reports whether the member was produced by flag composition or
// construction rather than declared.
func (m *Member) Composite() bool { return m.composite }

// Int64 returns the value as an integer when it is one.
func (m *Member) Int64() (int64, bool) {
	n, ok := m.value.(int64)
	return n, ok
}

// String renders the member as Type.Name. ReprEnum descendants render the
// carrier value instead.
func (m *Member) String() string {
	if m.typ.repr {
		return m.typ.carrier.Format(m.value)
	}
	if m.name == "" {
		return fmt.Sprintf("%s(%s)", m.typ.name, m.valueRepr())
	}
	return m.typ.name + "." + m.name
}

// Repr renders the member as <Type.Name: value>.
func (m *Member) Repr() string {
	if m.name == "" {
		return fmt.Sprintf("<%s: %s>", m.typ.name, m.valueRepr())
	}
	return fmt.Sprintf("<%s.%s: %s>", m.typ.name, m.name, m.valueRepr())
}

func (m *Member) valueRepr() string {
	switch v := m.value.(type) {
	case string:
		return strconv.Quote(v)
	case nil:
		return "nil"
	}
	return fmt.Sprint(m.value)
}

// Format implements fmt.Formatter. Integer verbs format the raw value, so
// fmt.Sprintf("%#b", m) prints the bit pattern; %v and %s use String and %#v
// uses Repr.
func (m *Member) Format(f fmt.State, verb rune) {
	switch verb {
	case 'v':
		if f.Flag('#') {
			fmt.Fprint(f, m.Repr())
			return
		}
		fmt.Fprint(f, m.String())
	case 's':
		fmt.Fprint(f, m.String())
	case 'q':
		fmt.Fprint(f, strconv.Quote(m.String()))
	default:
		fmt.Fprintf(f, fmt.FormatString(f, verb), m.value)
	}
}

// MarshalJSON emits the raw value; Type.Decode resolves it back.
func (m *Member) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.value)
}

// Equal reports whether other denotes the same value of a related type, or,
// for carriers other than Object, whether other is an equal raw value.
func (m *Member) Equal(other any) bool {
	switch o := other.(type) {
	case *Member:
		if o == m {
			return true
		}
		return m.typ.Related(o.typ) && reflect.DeepEqual(m.value, o.value)
	default:
		if m.typ.carrier == Object {
			return false
		}
		return reflect.DeepEqual(m.value, normalize(other))
	}
}

// Call invokes the named method capability on this member.
func (m *Member) Call(ctx context.Context, name string, args ...any) (any, error) {
	return m.typ.dispatch(ctx, &Invocation{Access: AccessCall, Name: name, Receiver: m, Args: args})
}

// Get reads a property, or returns a BoundMethod for a method capability.
func (m *Member) Get(ctx context.Context, name string) (any, error) {
	return m.typ.dispatch(ctx, &Invocation{Access: AccessGet, Name: name, Receiver: m})
}

// Set assigns a property through its setter.
func (m *Member) Set(ctx context.Context, name string, v any) error {
	_, err := m.typ.dispatch(ctx, &Invocation{Access: AccessSet, Name: name, Receiver: m, Value: v})
	return err
}

// Delete removes a property through its deleter.
func (m *Member) Delete(ctx context.Context, name string) error {
	_, err := m.typ.dispatch(ctx, &Invocation{Access: AccessDelete, Name: name, Receiver: m})
	return err
}
