package enumex

import (
	"errors"
	"fmt"
	"math"
	"math/bits"
	"strconv"
	"strings"
)

// Op is a binary flag composition operator.
type Op int

const (
	OpOr Op = iota
	OpAnd
	OpXor
)

func (op Op) String() string {
	switch op {
	case OpOr:
		return "|"
	case OpAnd:
		return "&"
	case OpXor:
		return "^"
	}
	return "?"
}

func (op Op) apply(a, b int64) int64 {
	switch op {
	case OpAnd:
		return a & b
	case OpXor:
		return a ^ b
	default:
		return a | b
	}
}

// errNotImplemented is the internal "not supported" signal an operand
// returns so Combine can try the reflected operand.
var errNotImplemented = errors.New("operand not supported")

// Combine composes two operands under op. Either operand may be a raw
// carrier value as long as the other is a flag member. The result is a
// *Member, or an int64 when the result type's boundary is Eject.
//
// The left operand is tried first; if it cannot relate the right operand the
// right operand is tried with the operands reflected.
func Combine(op Op, left, right any) (any, error) {
	if lm, ok := left.(*Member); ok {
		res, err := lm.combine(op, right)
		if !errors.Is(err, errNotImplemented) {
			return res, err
		}
	}
	if rm, ok := right.(*Member); ok {
		res, err := rm.combine(op, left)
		if !errors.Is(err, errNotImplemented) {
			return res, err
		}
	}
	return nil, unsupportedError(op, left, right)
}

// Or returns m | other.
func (m *Member) Or(other any) (any, error) { return Combine(OpOr, m, other) }

// And returns m & other.
func (m *Member) And(other any) (any, error) { return Combine(OpAnd, m, other) }

// Xor returns m ^ other.
func (m *Member) Xor(other any) (any, error) { return Combine(OpXor, m, other) }

// Invert returns the complement of m. Under strict and conform the
// complement is taken within the defined flags; under keep and eject every
// bit is inverted and the result passes through the boundary.
func (m *Member) Invert() (any, error) {
	f := m.typ.flags
	if f == nil {
		return nil, &Error{
			Code:    CodeFlagCompositionUnsupported,
			Message: fmt.Sprintf("bad operand for ~: %s is not a flag type", m.typ.name),
			Type:    m.typ.name,
		}
	}
	v := m.value.(int64)
	if f.boundary == Keep || f.boundary == Eject {
		return m.typ.Construct(^v)
	}
	return m.typ.Construct(f.flagMask &^ v)
}

// combine applies op with m as the receiving operand.
//
// Operand resolution: a member of a related type contributes its raw bits
// without being instantiated; a raw carrier value is used as-is. The
// receiver's own type must be constructible: an abstract receiver always
// fails. When the other operand belongs to a descendant, bits the receiver's
// type does not define go through the receiver's boundary first; only keep
// hands them on to the descendant. Otherwise the result is typed by the more
// specific of the two types.
func (m *Member) combine(op Op, other any) (any, error) {
	f := m.typ.flags
	if f == nil {
		return nil, errNotImplemented
	}
	rhs, target, ok := m.operand(other)
	if !ok {
		return nil, errNotImplemented
	}
	if m.typ.Abstract() {
		return nil, newInstantiationError(m.typ)
	}
	v := op.apply(m.value.(int64), rhs)
	if target != m.typ && v&^f.flagMask != 0 && f.boundary != Keep {
		return m.typ.Construct(v)
	}
	return target.Construct(v)
}

func (m *Member) operand(other any) (int64, *Type, bool) {
	switch o := other.(type) {
	case *Member:
		n, isInt := o.value.(int64)
		switch {
		case !isInt:
			return 0, nil, false
		case o.typ == m.typ || m.typ.IsA(o.typ):
			return n, m.typ, true
		case o.typ.IsA(m.typ) && o.typ.flags != nil:
			return n, o.typ, true
		case m.typ.carrier.integer && o.typ.carrier.integer:
			// an integer-carrier member is an integer wherever it comes from
			return n, m.typ, true
		}
		return 0, nil, false
	default:
		if !m.typ.carrier.Accepts(other) {
			return 0, nil, false
		}
		n, ok := toInt64(other)
		if !ok {
			return 0, nil, false
		}
		return n, m.typ, true
	}
}

func unsupportedError(op Op, left, right any) *Error {
	e := &Error{
		Code:    CodeFlagCompositionUnsupported,
		Message: fmt.Sprintf("unsupported operand types for %s: %s and %s", op, operandName(left), operandName(right)),
	}
	if lm, ok := left.(*Member); ok {
		e.Type = lm.typ.name
	} else if rm, ok := right.(*Member); ok {
		e.Type = rm.typ.name
	}
	return e
}

func operandName(v any) string {
	if m, ok := v.(*Member); ok {
		return m.typ.name
	}
	return fmt.Sprintf("%T", v)
}

// missing builds the instance for an undeclared flag value, applying the
// boundary policy first.
func (t *Type) missing(value int64) (any, error) {
	f := t.flags
	outOfRange := value < ^f.allBits || value > f.allBits
	if outOfRange || value&(f.allBits^f.flagMask) != 0 {
		switch f.boundary {
		case Strict:
			return nil, t.undefinedBits(value)
		case Conform:
			value &= f.flagMask
		case Eject:
			return value, nil
		case Keep:
			if value < 0 {
				if n := bitLen(value); n < 63 {
					value = max(f.allBits+1, int64(1)<<n) + value
				} else {
					// 2^n no longer fits; wrap into the positive range.
					value &= math.MaxInt64
				}
			}
		}
	}
	if value < 0 {
		value = f.allBits + 1 + value
	}

	if m := t.lookupValue(value); m != nil {
		return m, nil
	}

	memberValue := value & f.singlesMask
	aliases := value &^ f.singlesMask
	composite := &Member{typ: t, value: value, composite: true}
	if memberValue == 0 && aliases == 0 {
		return composite, nil
	}

	var (
		names    []string
		combined int64
		seen     = map[*Member]bool{}
	)
	for _, m := range t.iterMembers(memberValue) {
		names = append(names, m.name)
		combined |= m.value.(int64)
		seen[m] = true
	}
	if aliases != 0 {
		for _, n := range t.declared {
			m := t.byName[n]
			v := m.value.(int64)
			if seen[m] || v == 0 || v&value != v {
				continue
			}
			names = append(names, m.name)
			combined |= v
			seen[m] = true
		}
	}

	unknown := value ^ combined
	switch {
	case combined == 0:
	case unknown != 0 && f.boundary == Strict:
		return nil, t.undefinedBits(value)
	case unknown != 0:
		names = append(names, strconv.FormatInt(unknown, 10))
	}
	composite.name = strings.Join(names, "|")
	return composite, nil
}

func (t *Type) undefinedBits(value int64) *Error {
	return &Error{
		Code:    CodeUndefinedFlagBits,
		Message: fmt.Sprintf("invalid value %d: bits %#b are not defined (allowed %#b)", value, value&^t.flags.flagMask, t.flags.flagMask),
		Type:    t.name,
		Bits:    value &^ t.flags.flagMask,
	}
}

// iterMembers yields the canonical members whose bits are set in value,
// ascending by bit when canonical values are monotonic, otherwise in
// definition order.
func (t *Type) iterMembers(value int64) []*Member {
	var out []*Member
	if t.flags.byValue {
		rest := uint64(value & t.flags.flagMask)
		for rest != 0 {
			bit := rest & -rest
			rest ^= bit
			if m, ok := t.byValue[int64(bit)]; ok && m.canonical {
				out = append(out, m)
			}
		}
		return out
	}
	for _, n := range t.names {
		m := t.byName[n]
		v := m.value.(int64)
		if v&value == v {
			out = append(out, m)
		}
	}
	return out
}

// Flags decomposes a flag member into the canonical members it contains.
func (m *Member) Flags() []*Member {
	if m.typ.flags == nil {
		return []*Member{m}
	}
	return m.typ.iterMembers(m.value.(int64))
}

// Contains reports whether every bit of other is set in m.
func (m *Member) Contains(other any) (bool, error) {
	if m.typ.flags == nil {
		return false, &Error{
			Code:    CodeFlagCompositionUnsupported,
			Message: fmt.Sprintf("%s is not a flag type", m.typ.name),
			Type:    m.typ.name,
		}
	}
	rhs, _, ok := m.operand(other)
	if !ok {
		return false, unsupportedError(OpAnd, m, other)
	}
	return m.value.(int64)&rhs == rhs, nil
}

// IsZero reports whether a flag member has no bits set.
func (m *Member) IsZero() bool {
	n, ok := m.value.(int64)
	return ok && n == 0
}

// bitLen is the bit length of |v|; MinInt64 has length 64.
func bitLen(v int64) int {
	u := uint64(v)
	if v < 0 {
		u = ^u + 1
	}
	return bits.Len64(u)
}

func isSingleBit(v int64) bool {
	return v > 0 && v&(v-1) == 0
}
