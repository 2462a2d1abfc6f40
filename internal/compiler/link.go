package compiler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"text/template"

	"github.com/AddioElectronics/enumex/internal/enumex"
	"github.com/AddioElectronics/enumex/internal/ir"
)

// TemplateData is what capability templates render against.
type TemplateData struct {
	Type  string
	Name  string
	Value any
	Args  []any // method call arguments; empty for properties
}

// Link builds declarations into reg. Declarations are built bases-first;
// the built types are returned in that order.
//
// Link stops at the first failure. Types built before it stay registered.
func Link(decls []ir.EnumDecl, reg *enumex.Registry) ([]*enumex.Type, error) {
	order, cycles := AnalyzeInheritance(decls)
	if len(cycles) > 0 {
		errs := make([]error, len(cycles))
		for i, c := range cycles {
			errs[i] = c
		}
		return nil, errors.Join(errs...)
	}

	byName := make(map[string]*ir.EnumDecl, len(decls))
	for i := range decls {
		byName[decls[i].Name] = &decls[i]
	}

	types := make([]*enumex.Type, 0, len(order))
	for _, name := range order {
		t, err := LinkOne(byName[name], reg)
		if err != nil {
			return types, err
		}
		types = append(types, t)
	}
	return types, nil
}

// LinkOne builds a single declaration whose bases are already in reg and
// registers the result.
func LinkOne(d *ir.EnumDecl, reg *enumex.Registry) (*enumex.Type, error) {
	bases, err := reg.Resolve(d.Bases)
	if err != nil {
		return nil, fmt.Errorf("enum %s: %w", d.Name, err)
	}

	b := enumex.NewBuilder(d.Name, bases...)
	for _, m := range d.Members {
		if m.Auto() {
			b.Auto(m.Name)
			continue
		}
		args := make([]any, len(m.Args))
		for i, a := range m.Args {
			args[i] = ir.ToGo(a)
		}
		b.Member(m.Name, args...)
	}

	store := &propertyStore{values: map[storeKey]any{}}
	for _, c := range d.Capabilities {
		if err := addCapability(b, c, store); err != nil {
			return nil, fmt.Errorf("enum %s: %w", d.Name, err)
		}
	}

	if d.Boundary != "" {
		boundary, err := enumex.ParseBoundary(d.Boundary)
		if err != nil {
			return nil, fmt.Errorf("enum %s: %w", d.Name, err)
		}
		b.Boundary(boundary)
	}
	if d.Order != nil {
		b.Order(d.Order...)
	}

	t, err := b.Build()
	if err != nil {
		return nil, err
	}
	if err := reg.Register(t); err != nil {
		return nil, err
	}

	slog.Debug("enum linked", "type", t.Name(), "capabilities", len(d.Capabilities))
	return t, nil
}

func addCapability(b *enumex.Builder, c ir.CapabilityDecl, store *propertyStore) error {
	switch c.Kind {
	case "method":
		if c.Abstract {
			b.AbstractMethod(c.Name, nil)
			return nil
		}
		tmpl, err := template.New(c.Name).Option("missingkey=error").Parse(c.Template)
		if err != nil {
			return fmt.Errorf("capability %s: %w", c.Name, err)
		}
		b.Method(c.Name, func(_ context.Context, m *enumex.Member, args ...any) (any, error) {
			return render(tmpl, m, args)
		})
	case "property":
		if c.Abstract {
			b.AbstractProperty(c.Name)
			return nil
		}
		tmpl, err := template.New(c.Name).Option("missingkey=error").Parse(c.Template)
		if err != nil {
			return fmt.Errorf("capability %s: %w", c.Name, err)
		}
		get := func(_ context.Context, m *enumex.Member) (any, error) {
			if v, ok := store.get(c.Name, m); ok {
				return v, nil
			}
			return render(tmpl, m, nil)
		}
		if !c.Settable {
			b.Property(c.Name, get, nil, nil)
			return nil
		}
		set := func(_ context.Context, m *enumex.Member, v any) error {
			store.set(c.Name, m, v)
			return nil
		}
		del := func(_ context.Context, m *enumex.Member) error {
			store.delete(c.Name, m)
			return nil
		}
		b.Property(c.Name, get, set, del)
	default:
		return fmt.Errorf("capability %s: unknown kind %q", c.Name, c.Kind)
	}
	return nil
}

func render(tmpl *template.Template, m *enumex.Member, args []any) (string, error) {
	var sb strings.Builder
	data := TemplateData{Type: m.Type().Name(), Name: m.Name(), Value: m.Value(), Args: args}
	if err := tmpl.Execute(&sb, data); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// propertyStore holds values assigned to settable properties of one type.
// An assignment overrides the template until it is deleted. Subclasses
// share the store but not the entries: a member re-created in a subclass is
// a distinct key from the ancestor's member of the same name.
type propertyStore struct {
	mu     sync.Mutex
	values map[storeKey]any
}

type storeKey struct {
	prop   string
	member *enumex.Member
}

func (s *propertyStore) get(prop string, m *enumex.Member) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[storeKey{prop, m}]
	return v, ok
}

func (s *propertyStore) set(prop string, m *enumex.Member, v any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[storeKey{prop, m}] = v
}

func (s *propertyStore) delete(prop string, m *enumex.Member) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, storeKey{prop, m})
}
