package enumex

import (
	"errors"
	"fmt"
	"strings"
)

// Code categorizes errors raised by type construction, contract enforcement
// and flag composition.
type Code string

const (
	// CodeInvalidMemberName indicates a reserved, duplicated, or
	// capability-colliding member name.
	CodeInvalidMemberName Code = "INVALID_MEMBER_NAME"

	// CodeDuplicateDataCarrier indicates more than one distinct carrier across bases.
	CodeDuplicateDataCarrier Code = "DUPLICATE_DATA_CARRIER"

	// CodeMissingAncestor indicates no enumeration type among the bases.
	CodeMissingAncestor Code = "MISSING_ANCESTOR"

	// CodeAbstractInstantiation indicates construction of an abstract type.
	CodeAbstractInstantiation Code = "ABSTRACT_INSTANTIATION"

	// CodeAbstractAccess indicates access to an unmet capability.
	CodeAbstractAccess Code = "ABSTRACT_ACCESS"

	// CodeOrderMismatch indicates a declared order that disagrees with definition order.
	CodeOrderMismatch Code = "ORDER_MISMATCH"

	// CodeUndefinedFlagBits indicates undefined bits under the strict boundary.
	CodeUndefinedFlagBits Code = "UNDEFINED_FLAG_BITS"

	// CodeFlagCompositionUnsupported indicates operands that cannot be related.
	CodeFlagCompositionUnsupported Code = "FLAG_COMPOSITION_UNSUPPORTED"

	// CodeInvalidValue indicates a value the carrier rejects or that names no member.
	CodeInvalidValue Code = "INVALID_VALUE"

	// CodeMissingDataCarrier indicates a ReprEnum descendant without a carrier.
	CodeMissingDataCarrier Code = "MISSING_DATA_CARRIER"

	// CodeNoAttribute indicates an unknown capability, a read-only property,
	// or an attempt to mutate a finished type.
	CodeNoAttribute Code = "NO_ATTRIBUTE"
)

// Access is the kind of capability access being dispatched.
type Access string

const (
	AccessCall   Access = "call"
	AccessGet    Access = "get"
	AccessSet    Access = "set"
	AccessDelete Access = "delete"
)

// Error is the single error type surfaced by this package.
//
// Structured fields are populated depending on Code:
//   - Names: unmet capabilities (ABSTRACT_INSTANTIATION), offending member
//     names (INVALID_MEMBER_NAME), carrier names (DUPLICATE_DATA_CARRIER)
//   - Capability, Access: ABSTRACT_ACCESS and NO_ATTRIBUTE
//   - Declared, Canonical: ORDER_MISMATCH
//   - Bits: UNDEFINED_FLAG_BITS
type Error struct {
	Code    Code
	Message string

	// Type is the name of the enumeration type involved.
	Type string

	Names      []string
	Capability string
	Access     Access
	Declared   []string
	Canonical  []string
	Bits       int64

	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Type != "" {
		return fmt.Sprintf("%s: %s (type=%s)", e.Code, e.Message, e.Type)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error carrying the same code, so the exported sentinels
// work with errors.Is.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// Sentinels for errors.Is.
var (
	ErrInvalidMemberName          = &Error{Code: CodeInvalidMemberName}
	ErrDuplicateDataCarrier       = &Error{Code: CodeDuplicateDataCarrier}
	ErrMissingAncestor            = &Error{Code: CodeMissingAncestor}
	ErrAbstractInstantiation      = &Error{Code: CodeAbstractInstantiation}
	ErrAbstractAccess             = &Error{Code: CodeAbstractAccess}
	ErrOrderMismatch              = &Error{Code: CodeOrderMismatch}
	ErrUndefinedFlagBits          = &Error{Code: CodeUndefinedFlagBits}
	ErrFlagCompositionUnsupported = &Error{Code: CodeFlagCompositionUnsupported}
	ErrInvalidValue               = &Error{Code: CodeInvalidValue}
	ErrMissingDataCarrier         = &Error{Code: CodeMissingDataCarrier}
	ErrNoAttribute                = &Error{Code: CodeNoAttribute}
)

// HasCode reports whether err is, or wraps, an *Error with the given code.
func HasCode(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// IsAbstractError reports whether err is an instantiation or access failure
// caused by an abstract contract.
func IsAbstractError(err error) bool {
	return HasCode(err, CodeAbstractInstantiation) || HasCode(err, CodeAbstractAccess)
}

func newInstantiationError(t *Type) *Error {
	names := t.Unmet()
	noun := "methods"
	if len(names) == 1 {
		noun = "method"
	}
	return &Error{
		Code:    CodeAbstractInstantiation,
		Message: fmt.Sprintf("can't instantiate abstract enum %s with abstract %s %s", t.name, noun, strings.Join(names, ", ")),
		Type:    t.name,
		Names:   names,
	}
}

func newAccessError(t *Type, c *Capability, access Access) *Error {
	kind := "method"
	if c.kind == KindProperty {
		kind = "property"
	}
	verb := string(access)
	if access == AccessCall {
		verb = "call"
	}
	return &Error{
		Code:       CodeAbstractAccess,
		Message:    fmt.Sprintf("cannot %s abstract %s %q on abstract enum %s", verb, kind, c.name, t.name),
		Type:       t.name,
		Capability: c.name,
		Access:     access,
	}
}

func newAttributeError(t *Type, name string, access Access, reason string) *Error {
	return &Error{
		Code:       CodeNoAttribute,
		Message:    fmt.Sprintf("%q %s", name, reason),
		Type:       t.name,
		Capability: name,
		Access:     access,
	}
}

func newValueError(t *Type, format string, args ...any) *Error {
	return &Error{
		Code:    CodeInvalidValue,
		Message: fmt.Sprintf(format, args...),
		Type:    t.name,
	}
}
