package compiler

import (
	"fmt"
	"sort"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/AddioElectronics/enumex/internal/ir"
)

// CompileEnum parses a CUE value into an EnumDecl.
// Uses CUE SDK's Go API directly (not CLI subprocess).
//
// The CUE value should be the enum struct itself, e.g.:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`enum: Color: { bases: ["IntEnum"], members: [{name: "Red"}] }`)
//	decl, err := CompileEnum(v.LookupPath(cue.ParsePath("enum.Color")))
func CompileEnum(v cue.Value) (*ir.EnumDecl, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	decl := &ir.EnumDecl{Bases: []string{}, Members: []ir.MemberDecl{}}

	// Enum name comes from the struct label
	labels := v.Path().Selectors()
	if len(labels) > 0 {
		decl.Name = labels[len(labels)-1].String()
	}

	bases, err := parseStrings(v, "bases")
	if err != nil {
		return nil, err
	}
	if bases != nil {
		decl.Bases = bases
	}

	members, err := parseMembers(v)
	if err != nil {
		return nil, err
	}
	decl.Members = members

	caps, err := parseCapabilities(v)
	if err != nil {
		return nil, err
	}
	decl.Capabilities = caps

	if bv := v.LookupPath(cue.ParsePath("boundary")); bv.Exists() {
		s, err := bv.String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		decl.Boundary = s
	}

	order, err := parseStrings(v, "order")
	if err != nil {
		return nil, err
	}
	decl.Order = order

	return decl, nil
}

// parseStrings reads an optional list of strings.
func parseStrings(v cue.Value, field string) ([]string, error) {
	lv := v.LookupPath(cue.ParsePath(field))
	if !lv.Exists() {
		return nil, nil
	}
	iter, err := lv.List()
	if err != nil {
		return nil, formatCUEError(err)
	}
	out := []string{}
	for iter.Next() {
		s, err := iter.Value().String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		out = append(out, s)
	}
	return out, nil
}

// parseMembers extracts the member list. Declaration order is significant.
//
// A member is {name}, {name, value} or {name, args: [...]}; the first form
// takes its value from the type's generator.
func parseMembers(v cue.Value) ([]ir.MemberDecl, error) {
	membersVal := v.LookupPath(cue.ParsePath("members"))
	if !membersVal.Exists() {
		return nil, &CompileError{
			Field:   "members",
			Message: "members are required",
			Pos:     v.Pos(),
		}
	}

	iter, err := membersVal.List()
	if err != nil {
		return nil, formatCUEError(err)
	}

	members := []ir.MemberDecl{}
	for i := 0; iter.Next(); i++ {
		mv := iter.Value()

		name, err := mv.LookupPath(cue.ParsePath("name")).String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		member := ir.MemberDecl{Name: name}

		valueVal := mv.LookupPath(cue.ParsePath("value"))
		argsVal := mv.LookupPath(cue.ParsePath("args"))
		switch {
		case valueVal.Exists() && argsVal.Exists():
			return nil, &CompileError{
				Field:   fmt.Sprintf("members[%d]", i),
				Message: fmt.Sprintf("member %q sets both value and args", name),
				Pos:     mv.Pos(),
			}
		case valueVal.Exists():
			arg, err := extractValue(valueVal)
			if err != nil {
				return nil, err
			}
			member.Args = ir.IRArray{arg}
		case argsVal.Exists():
			arr, err := extractValue(argsVal)
			if err != nil {
				return nil, err
			}
			args, ok := arr.(ir.IRArray)
			if !ok || len(args) == 0 {
				return nil, &CompileError{
					Field:   fmt.Sprintf("members[%d].args", i),
					Message: "args must be a non-empty list",
					Pos:     argsVal.Pos(),
				}
			}
			member.Args = args
		}

		members = append(members, member)
	}
	return members, nil
}

// parseCapabilities extracts capability declarations, sorted by name so the
// compiled form does not depend on CUE field order.
func parseCapabilities(v cue.Value) ([]ir.CapabilityDecl, error) {
	capsVal := v.LookupPath(cue.ParsePath("capabilities"))
	if !capsVal.Exists() {
		return nil, nil
	}

	iter, err := capsVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var caps []ir.CapabilityDecl
	for iter.Next() {
		cv := iter.Value()
		c := ir.CapabilityDecl{Name: iter.Label()}

		kind, err := cv.LookupPath(cue.ParsePath("kind")).String()
		if err != nil {
			return nil, &CompileError{
				Field:   fmt.Sprintf("capabilities.%s.kind", c.Name),
				Message: "capability kind is required",
				Pos:     cv.Pos(),
			}
		}
		c.Kind = kind

		if av := cv.LookupPath(cue.ParsePath("abstract")); av.Exists() {
			if c.Abstract, err = av.Bool(); err != nil {
				return nil, formatCUEError(err)
			}
		}
		if tv := cv.LookupPath(cue.ParsePath("template")); tv.Exists() {
			if c.Template, err = tv.String(); err != nil {
				return nil, formatCUEError(err)
			}
		}
		if sv := cv.LookupPath(cue.ParsePath("settable")); sv.Exists() {
			if c.Settable, err = sv.Bool(); err != nil {
				return nil, formatCUEError(err)
			}
		}

		caps = append(caps, c)
	}

	sort.Slice(caps, func(i, j int) bool { return caps[i].Name < caps[j].Name })
	return caps, nil
}

// extractValue converts a concrete CUE value to an IRValue.
// Floats are forbidden; member values are exact.
func extractValue(v cue.Value) (ir.IRValue, error) {
	switch v.Kind() {
	case cue.NullKind:
		return ir.IRNull{}, nil
	case cue.StringKind:
		s, err := v.String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		return ir.IRString(s), nil
	case cue.IntKind:
		n, err := v.Int64()
		if err != nil {
			return nil, formatCUEError(err)
		}
		return ir.IRInt(n), nil
	case cue.BoolKind:
		b, err := v.Bool()
		if err != nil {
			return nil, formatCUEError(err)
		}
		return ir.IRBool(b), nil
	case cue.ListKind:
		iter, err := v.List()
		if err != nil {
			return nil, formatCUEError(err)
		}
		arr := ir.IRArray{}
		for iter.Next() {
			elem, err := extractValue(iter.Value())
			if err != nil {
				return nil, err
			}
			arr = append(arr, elem)
		}
		return arr, nil
	case cue.StructKind:
		iter, err := v.Fields()
		if err != nil {
			return nil, formatCUEError(err)
		}
		obj := ir.IRObject{}
		for iter.Next() {
			elem, err := extractValue(iter.Value())
			if err != nil {
				return nil, err
			}
			obj[iter.Label()] = elem
		}
		return obj, nil
	case cue.FloatKind, cue.NumberKind:
		return nil, &CompileError{
			Field:   "value",
			Message: "float values are forbidden - use int instead",
			Pos:     v.Pos(),
		}
	default:
		return nil, &CompileError{
			Field:   "value",
			Message: fmt.Sprintf("value must be concrete, got %v", v.IncompleteKind()),
			Pos:     v.Pos(),
		}
	}
}

// CompileError represents a compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	// CUE errors may contain multiple errors
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
