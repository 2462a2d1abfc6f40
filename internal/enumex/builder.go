package enumex

import (
	"fmt"
	"log/slog"
)

// Builder collects a type declaration and builds it into an immutable *Type.
//
// Bases are resolved when the builder is created; a resolution failure is
// held and returned by Build. Builder methods chain:
//
//	Color, err := enumex.NewBuilder("Color", enumex.IntEnum).
//		Member("Red", 1).
//		Auto("Green").
//		Method("describe", describe).
//		Build()
type Builder struct {
	name  string
	res   *resolution
	err   error
	decls []memberDecl
	caps  []*Capability

	boundary  Boundary
	order     []string
	ordered   bool
	generator Generator
	intercept Interceptor
}

// NewBuilder starts the declaration of a type named name. With no bases the
// type descends from Enum.
func NewBuilder(name string, bases ...Base) *Builder {
	b := &Builder{name: name}
	b.res, b.err = resolve(name, bases)
	return b
}

// Member declares a member. With a single Auto argument the value is
// generated; otherwise args go through the carrier's construction protocol.
func (b *Builder) Member(name string, args ...any) *Builder {
	if len(args) == 1 && args[0] == Auto {
		return b.Auto(name)
	}
	b.decls = append(b.decls, memberDecl{name: name, args: args})
	return b
}

// Auto declares a member whose value comes from the type's generator.
func (b *Builder) Auto(name string) *Builder {
	b.decls = append(b.decls, memberDecl{name: name, auto: true})
	return b
}

// Method declares a concrete method capability.
func (b *Builder) Method(name string, fn Method) *Builder {
	b.caps = append(b.caps, &Capability{name: name, kind: KindMethod, method: fn})
	return b
}

// AbstractMethod declares an unimplemented method. fallback may be nil; when
// set it only runs on re-entrant access.
func (b *Builder) AbstractMethod(name string, fallback Method) *Builder {
	b.caps = append(b.caps, &Capability{name: name, kind: KindMethod, abstract: true, method: fallback})
	return b
}

// Property declares a concrete property. set and del may be nil for a
// read-only property.
func (b *Builder) Property(name string, get Getter, set Setter, del Deleter) *Builder {
	b.caps = append(b.caps, &Capability{name: name, kind: KindProperty, get: get, set: set, del: del})
	return b
}

// AbstractProperty declares an unimplemented property.
func (b *Builder) AbstractProperty(name string) *Builder {
	b.caps = append(b.caps, &Capability{name: name, kind: KindProperty, abstract: true})
	return b
}

// Boundary sets the boundary policy of a flag type.
func (b *Builder) Boundary(boundary Boundary) *Builder {
	b.boundary = boundary
	return b
}

// Order declares the expected canonical order. Each entry may be a single
// name or a comma/space delimited list.
func (b *Builder) Order(names ...string) *Builder {
	b.order = append(b.order, names...)
	b.ordered = true
	return b
}

// Generator overrides the inherited Auto value generator.
func (b *Builder) Generator(g Generator) *Builder {
	b.generator = g
	return b
}

// Intercept installs access logic that runs after contract enforcement.
func (b *Builder) Intercept(i Interceptor) *Builder {
	b.intercept = i
	return b
}

// Build finishes the type. It either returns a complete type or an error;
// nothing is partially constructed.
func (b *Builder) Build() (*Type, error) {
	if b.err != nil {
		return nil, b.err
	}
	parent := b.res.parent
	t := &Type{
		name:      b.name,
		carrier:   b.res.carrier,
		parent:    parent,
		std:       parent.std,
		ancestry:  make(map[Base]struct{}, len(b.res.ancestry)+1),
		byName:    map[string]*Member{},
		byValue:   map[any]*Member{},
		generator: parent.generator,
		intercept: parent.intercept,
		repr:      b.res.repr,
	}
	for a := range b.res.ancestry {
		t.ancestry[a] = struct{}{}
	}
	t.ancestry[t] = struct{}{}
	if b.generator != nil {
		t.generator = b.generator
	}
	if b.intercept != nil {
		t.intercept = b.intercept
	}

	if err := b.applyBoundary(t); err != nil {
		return nil, err
	}

	own := make([]*Capability, len(b.caps))
	for i, c := range b.caps {
		clone := *c
		own[i] = &clone
	}
	t.caps, t.unmet = resolveCapabilities(t, parent, own)

	if err := buildMembers(t, b.decls); err != nil {
		return nil, err
	}
	if b.ordered {
		if err := checkOrder(t, splitOrder(b.order)); err != nil {
			return nil, err
		}
	}

	slog.Debug("enum type defined",
		"type", t.name,
		"parent", parent.name,
		"carrier", t.carrier.name,
		"members", t.names,
		"abstract", t.Abstract(),
		"unmet", t.unmet)
	return t, nil
}

// MustBuild is like Build but panics on error. Intended for package-level
// type declarations.
func (b *Builder) MustBuild() *Type {
	t, err := b.Build()
	if err != nil {
		panic(err)
	}
	return t
}

func (b *Builder) applyBoundary(t *Type) error {
	var inherited *flagInfo
	if t.parent.flags != nil {
		inherited = t.parent.flags
	}
	if inherited == nil {
		if _, isFlag := t.ancestry[Flag]; isFlag {
			inherited = Flag.flags
		}
	}
	if inherited == nil {
		if b.boundary != "" {
			return &Error{
				Code:    CodeInvalidValue,
				Message: fmt.Sprintf("boundary %q set on non-flag type", b.boundary),
				Type:    t.name,
			}
		}
		return nil
	}
	boundary := inherited.boundary
	if b.boundary != "" {
		if _, err := ParseBoundary(string(b.boundary)); err != nil {
			return &Error{Code: CodeInvalidValue, Message: err.Error(), Type: t.name, Err: err}
		}
		boundary = b.boundary
	}
	t.flags = &flagInfo{boundary: boundary}
	return nil
}
