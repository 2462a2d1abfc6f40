package compiler

import (
	"fmt"
	"regexp"
	"text/template"

	"github.com/AddioElectronics/enumex/internal/enumex"
	"github.com/AddioElectronics/enumex/internal/ir"
)

// Validation error codes (E100-E199)
const (
	// General validation errors (E100)
	ErrUnsupportedIRType = "E100" // unsupported IR type for validation

	// EnumDecl errors (E101-E111)
	ErrInvalidEnumName      = "E101" // enum name missing or not an identifier
	ErrInvalidBase          = "E102" // empty or repeated base name
	ErrInvalidMemberName    = "E103" // member name not an identifier or reserved
	ErrInvalidMemberValue   = "E104" // member args contain null
	ErrDuplicateName        = "E105" // duplicate member, capability or enum name
	ErrInvalidCapability    = "E106" // unknown capability kind
	ErrInvalidBoundary      = "E107" // unknown boundary policy
	ErrNameCollision        = "E108" // member name shadows a capability
	ErrUnknownBase          = "E109" // base names neither a built-in nor a declared enum
	ErrInvalidTemplate      = "E110" // capability template does not parse
	ErrInvalidCapabilityUse = "E111" // template on abstract, settable method, concrete without body
)

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// reservedMemberNames cannot be used for members.
var reservedMemberNames = map[string]bool{
	"mro": true,
}

// ValidationError represents a schema validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Line    int    `json:"line,omitempty"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("[%s] line %d: %s: %s", e.Code, e.Line, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate validates compiled IR against schema rules.
// Returns all errors found (does not fail-fast).
//
// A single declaration is checked on its own. A slice is checked as a set:
// names must be unique and every base must be a built-in or a sibling.
func Validate(v any) []ValidationError {
	switch d := v.(type) {
	case *ir.EnumDecl:
		return validateEnumDecl(d, "")
	case ir.EnumDecl:
		return validateEnumDecl(&d, "")
	case []ir.EnumDecl:
		return validateEnumSet(d)
	default:
		return []ValidationError{{
			Field:   "type",
			Message: fmt.Sprintf("unsupported IR type: %T", v),
			Code:    ErrUnsupportedIRType,
		}}
	}
}

// validateEnumSet validates declarations that will be linked together.
func validateEnumSet(decls []ir.EnumDecl) []ValidationError {
	var errs []ValidationError

	builtins := enumex.NewRegistry()
	declared := make(map[string]bool, len(decls))
	for i, d := range decls {
		prefix := fmt.Sprintf("enum.%s", d.Name)
		if declared[d.Name] {
			errs = append(errs, ValidationError{
				Field:   prefix,
				Message: fmt.Sprintf("duplicate enum name: %q", d.Name),
				Code:    ErrDuplicateName,
			})
		}
		if _, ok := builtins.Base(d.Name); ok {
			errs = append(errs, ValidationError{
				Field:   prefix,
				Message: fmt.Sprintf("enum name %q shadows a built-in base", d.Name),
				Code:    ErrDuplicateName,
			})
		}
		declared[d.Name] = true
		errs = append(errs, validateEnumDecl(&decls[i], prefix+".")...)
	}

	for _, d := range decls {
		for j, b := range d.Bases {
			if b == "" {
				continue
			}
			if _, ok := builtins.Base(b); ok || declared[b] {
				continue
			}
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("enum.%s.bases[%d]", d.Name, j),
				Message: fmt.Sprintf("unknown base %q", b),
				Code:    ErrUnknownBase,
			})
		}
	}

	return errs
}

// validateEnumDecl validates a single declaration.
func validateEnumDecl(d *ir.EnumDecl, prefix string) []ValidationError {
	var errs []ValidationError

	// E101: name must be an identifier
	if !identPattern.MatchString(d.Name) {
		errs = append(errs, ValidationError{
			Field:   prefix + "name",
			Message: fmt.Sprintf("enum name %q must be an identifier", d.Name),
			Code:    ErrInvalidEnumName,
		})
	}

	// E102: bases are non-empty and listed once
	seenBases := make(map[string]bool)
	for i, b := range d.Bases {
		field := fmt.Sprintf("%sbases[%d]", prefix, i)
		switch {
		case b == "":
			errs = append(errs, ValidationError{
				Field:   field,
				Message: "base name must be non-empty",
				Code:    ErrInvalidBase,
			})
		case seenBases[b]:
			errs = append(errs, ValidationError{
				Field:   field,
				Message: fmt.Sprintf("duplicate base: %q", b),
				Code:    ErrInvalidBase,
			})
		}
		seenBases[b] = true
	}

	capNames := make(map[string]bool)
	for i, c := range d.Capabilities {
		field := fmt.Sprintf("%scapabilities[%d]", prefix, i)
		if capNames[c.Name] {
			errs = append(errs, ValidationError{
				Field:   field + ".name",
				Message: fmt.Sprintf("duplicate capability name: %q", c.Name),
				Code:    ErrDuplicateName,
			})
		}
		capNames[c.Name] = true
		errs = append(errs, validateCapability(c, field)...)
	}

	memberNames := make(map[string]bool)
	for i, m := range d.Members {
		field := fmt.Sprintf("%smembers[%d]", prefix, i)

		// E103: member name must be an identifier and not reserved
		if !identPattern.MatchString(m.Name) || reservedMemberNames[m.Name] {
			errs = append(errs, ValidationError{
				Field:   field + ".name",
				Message: fmt.Sprintf("invalid member name %q", m.Name),
				Code:    ErrInvalidMemberName,
			})
		}

		// E105: duplicate member name
		if memberNames[m.Name] {
			errs = append(errs, ValidationError{
				Field:   field + ".name",
				Message: fmt.Sprintf("duplicate member name: %q", m.Name),
				Code:    ErrDuplicateName,
			})
		}
		memberNames[m.Name] = true

		// E108: member would shadow a capability
		if capNames[m.Name] {
			errs = append(errs, ValidationError{
				Field:   field + ".name",
				Message: fmt.Sprintf("member %q collides with a capability of the same name", m.Name),
				Code:    ErrNameCollision,
			})
		}

		// E104: null is not a member value
		for j, a := range m.Args {
			if _, isNull := a.(ir.IRNull); isNull {
				errs = append(errs, ValidationError{
					Field:   fmt.Sprintf("%s.args[%d]", field, j),
					Message: fmt.Sprintf("member %q has a null argument", m.Name),
					Code:    ErrInvalidMemberValue,
				})
			}
		}
	}

	// E107: boundary must be a known policy
	if d.Boundary != "" && !ir.ValidBoundaries[d.Boundary] {
		errs = append(errs, ValidationError{
			Field:   prefix + "boundary",
			Message: fmt.Sprintf("invalid boundary %q, must be \"strict\", \"conform\", \"eject\", or \"keep\"", d.Boundary),
			Code:    ErrInvalidBoundary,
		})
	}

	return errs
}

// validateCapability validates one capability declaration.
func validateCapability(c ir.CapabilityDecl, field string) []ValidationError {
	var errs []ValidationError

	if !identPattern.MatchString(c.Name) {
		errs = append(errs, ValidationError{
			Field:   field + ".name",
			Message: fmt.Sprintf("capability name %q must be an identifier", c.Name),
			Code:    ErrInvalidCapability,
		})
	}

	// E106: kind must be method or property
	if !ir.ValidCapabilityKinds[c.Kind] {
		errs = append(errs, ValidationError{
			Field:   field + ".kind",
			Message: fmt.Sprintf("invalid capability kind %q, must be \"method\" or \"property\"", c.Kind),
			Code:    ErrInvalidCapability,
		})
	}

	// E111: body and flags must fit the kind
	switch {
	case c.Abstract && c.Template != "":
		errs = append(errs, ValidationError{
			Field:   field + ".template",
			Message: fmt.Sprintf("abstract capability %q must not have a template", c.Name),
			Code:    ErrInvalidCapabilityUse,
		})
	case !c.Abstract && c.Template == "":
		errs = append(errs, ValidationError{
			Field:   field + ".template",
			Message: fmt.Sprintf("concrete capability %q requires a template", c.Name),
			Code:    ErrInvalidCapabilityUse,
		})
	}
	if c.Settable && c.Kind != "property" {
		errs = append(errs, ValidationError{
			Field:   field + ".settable",
			Message: fmt.Sprintf("only properties can be settable, %q is a %s", c.Name, c.Kind),
			Code:    ErrInvalidCapabilityUse,
		})
	}

	// E110: template must parse
	if c.Template != "" {
		if _, err := template.New(c.Name).Parse(c.Template); err != nil {
			errs = append(errs, ValidationError{
				Field:   field + ".template",
				Message: err.Error(),
				Code:    ErrInvalidTemplate,
			})
		}
	}

	return errs
}
