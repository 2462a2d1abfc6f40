package enumex

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Carrier is a data-carrier type: the concrete representation backing the
// values of an enumeration's members.
//
// A carrier is usable as a base when declaring a type, which is how a
// descendant of a carrier-less root gains a concrete value representation.
type Carrier struct {
	name      string
	integer   bool
	construct func(args []any) (any, error)
	accepts   func(v any) bool
	format    func(v any) string
}

// BaseName implements Base.
func (c *Carrier) BaseName() string { return c.name }

// Name returns the carrier's name.
func (c *Carrier) Name() string { return c.name }

// Integer reports whether the carrier represents values as int64.
func (c *Carrier) Integer() bool { return c.integer }

// Construct runs the carrier's construction protocol over member arguments.
func (c *Carrier) Construct(args ...any) (any, error) {
	return c.construct(args)
}

// Accepts reports whether v is a raw value of this carrier, usable directly
// as a flag composition operand.
func (c *Carrier) Accepts(v any) bool {
	if c.accepts == nil {
		return false
	}
	return c.accepts(v)
}

// Format renders a value the way the carrier prints it.
func (c *Carrier) Format(v any) string {
	if c.format != nil {
		return c.format(v)
	}
	return fmt.Sprint(v)
}

// Object is the "no carrier" marker: member values are stored as declared.
var Object = &Carrier{
	name:      "object",
	construct: objectConstruct,
}

// Int carries int64 values. It accepts any Go integer, a decimal string, or a
// (string, base) pair.
var Int = &Carrier{
	name:      "int",
	integer:   true,
	construct: intConstruct,
	accepts:   isInteger,
	format:    func(v any) string { return fmt.Sprint(v) },
}

// Str carries string values. It accepts a string, or a ([]byte, encoding) pair.
var Str = &Carrier{
	name:      "str",
	construct: strConstruct,
	accepts:   func(v any) bool { _, ok := v.(string); return ok },
	format:    func(v any) string { return v.(string) },
}

// NewCarrier creates a user-defined carrier. construct receives the member's
// declared arguments and returns the value to store; accepts may be nil, in
// which case raw values are never accepted as composition operands.
func NewCarrier(name string, construct func(args ...any) (any, error), accepts func(v any) bool) *Carrier {
	return &Carrier{
		name:      name,
		construct: func(args []any) (any, error) { return construct(args...) },
		accepts:   accepts,
	}
}

func objectConstruct(args []any) (any, error) {
	switch len(args) {
	case 0:
		return nil, fmt.Errorf("missing value")
	case 1:
		return normalize(args[0]), nil
	default:
		tuple := make([]any, len(args))
		for i, a := range args {
			tuple[i] = normalize(a)
		}
		return tuple, nil
	}
}

func intConstruct(args []any) (any, error) {
	switch len(args) {
	case 1:
		switch v := args[0].(type) {
		case string:
			n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid literal for int: %q", v)
			}
			return n, nil
		case bool:
			if v {
				return int64(1), nil
			}
			return int64(0), nil
		default:
			n, ok := toInt64(v)
			if !ok {
				return nil, fmt.Errorf("cannot convert %T to int", v)
			}
			return n, nil
		}
	case 2:
		s, ok := args[0].(string)
		if !ok {
			return nil, fmt.Errorf("int with explicit base requires a string, got %T", args[0])
		}
		base, ok := toInt64(args[1])
		if !ok {
			return nil, fmt.Errorf("int base must be an integer, got %T", args[1])
		}
		n, err := strconv.ParseInt(strings.TrimSpace(s), int(base), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid literal for int with base %d: %q", base, s)
		}
		return n, nil
	default:
		return nil, fmt.Errorf("int takes 1 or 2 arguments, got %d", len(args))
	}
}

func strConstruct(args []any) (any, error) {
	switch len(args) {
	case 1:
		s, ok := args[0].(string)
		if !ok {
			return nil, fmt.Errorf("%v is not a string", args[0])
		}
		return s, nil
	case 2, 3:
		raw, ok := args[0].([]byte)
		if !ok {
			return nil, fmt.Errorf("encoding without a byte string argument")
		}
		enc, ok := args[1].(string)
		if !ok {
			return nil, fmt.Errorf("encoding must be a string, got %T", args[1])
		}
		switch strings.ToLower(enc) {
		case "utf-8", "utf8":
			if !utf8.Valid(raw) {
				return nil, fmt.Errorf("invalid utf-8 byte string")
			}
			return string(raw), nil
		default:
			return nil, fmt.Errorf("unsupported encoding %q", enc)
		}
	default:
		return nil, fmt.Errorf("str takes 1 to 3 arguments, got %d", len(args))
	}
}

// normalize folds every Go integer kind to int64 so lookups agree regardless
// of the literal type used by the caller.
func normalize(v any) any {
	if n, ok := toInt64(v); ok {
		return n
	}
	return v
}

func isInteger(v any) bool {
	_, ok := toInt64(v)
	return ok
}

func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint:
		if uint64(n) > math.MaxInt64 {
			return 0, false
		}
		return int64(n), true
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint64:
		if n > math.MaxInt64 {
			return 0, false
		}
		return int64(n), true
	}
	return 0, false
}

// hashable reports whether v can key the value index. Non-comparable values
// (slices, maps, structs holding them) fall back to a linear scan.
func hashable(v any) bool {
	if v == nil {
		return true
	}
	return reflect.ValueOf(v).Comparable()
}
