package enumex

import (
	"context"
	"fmt"
)

// Invocation describes one capability access flowing through a type's
// dispatcher.
type Invocation struct {
	Access Access
	Name   string

	// Receiver is the member being accessed. For type-level calls it is the
	// explicit receiver; for type-level get/set/delete it is nil.
	Receiver *Member
	Args     []any

	// Value is the assigned value for AccessSet.
	Value any

	typeLevel bool
}

// TypeLevel reports whether the access was made through the type rather than
// through a member.
func (inv *Invocation) TypeLevel() bool { return inv.typeLevel }

// Handler resolves an invocation.
type Handler func(ctx context.Context, inv *Invocation) (any, error)

// Interceptor is user-defined access logic installed with Builder.Intercept.
// It runs after contract enforcement and receives the resolution as next;
// invocations it passes to next are enforced again. Accesses made on ctx
// from inside the interceptor are re-entrant and resolve directly.
type Interceptor func(ctx context.Context, inv *Invocation, next Handler) (any, error)

// BoundMethod is what getting a method capability through a member returns.
type BoundMethod func(ctx context.Context, args ...any) (any, error)

// dispatch is the single access path for every capability touch.
func (t *Type) dispatch(ctx context.Context, inv *Invocation) (any, error) {
	h := hookFor(inv.Access, inv.typeLevel)
	if reentering(ctx, h) {
		return t.resolve(ctx, inv)
	}
	if err := t.enforce(inv); err != nil {
		return nil, err
	}
	if t.intercept == nil {
		return t.resolve(ctx, inv)
	}
	next := func(_ context.Context, forwarded *Invocation) (any, error) {
		if err := t.enforce(forwarded); err != nil {
			return nil, err
		}
		return t.resolve(ctx, forwarded)
	}
	return t.intercept(enter(ctx, h), inv, next)
}

// enforce rejects access to unmet capabilities.
func (t *Type) enforce(inv *Invocation) error {
	c, ok := t.caps[inv.Name]
	if !ok || !c.abstract || !t.Abstract() {
		return nil
	}
	return newAccessError(t, c, inv.Access)
}

// resolve is the pre-interception behavior: plain lookup and invocation.
func (t *Type) resolve(ctx context.Context, inv *Invocation) (any, error) {
	c, ok := t.caps[inv.Name]
	if !ok {
		return nil, newAttributeError(t, inv.Name, inv.Access, "is not a capability of "+t.name)
	}

	if inv.typeLevel {
		switch inv.Access {
		case AccessGet:
			return c, nil
		case AccessCall:
			// handled below with the explicit receiver
		default:
			return nil, newAttributeError(t, inv.Name, inv.Access, "cannot be modified: enumeration types are immutable")
		}
	}

	m := inv.Receiver
	switch inv.Access {
	case AccessCall:
		if c.kind != KindMethod {
			return nil, newAttributeError(t, inv.Name, inv.Access, "is a property, not a method")
		}
		if c.method == nil {
			return nil, nil
		}
		return c.method(ctx, m, inv.Args...)
	case AccessGet:
		if c.kind == KindMethod {
			method := c.method
			return BoundMethod(func(ctx context.Context, args ...any) (any, error) {
				if method == nil {
					return nil, nil
				}
				return method(ctx, m, args...)
			}), nil
		}
		if c.get == nil {
			return nil, nil
		}
		return c.get(ctx, m)
	case AccessSet:
		if c.kind != KindProperty || c.set == nil {
			return nil, newAttributeError(t, inv.Name, inv.Access, "is read-only")
		}
		return nil, c.set(ctx, m, inv.Value)
	case AccessDelete:
		if c.kind != KindProperty || c.del == nil {
			return nil, newAttributeError(t, inv.Name, inv.Access, "cannot be deleted")
		}
		return nil, c.del(ctx, m)
	}
	return nil, fmt.Errorf("unknown access kind %q", inv.Access)
}

// Attr returns the capability named name through the type. Getting an unmet
// capability on an abstract type fails with ABSTRACT_ACCESS.
func (t *Type) Attr(ctx context.Context, name string) (*Capability, error) {
	res, err := t.dispatch(ctx, &Invocation{Access: AccessGet, Name: name, typeLevel: true})
	if err != nil {
		return nil, err
	}
	c, ok := res.(*Capability)
	if !ok {
		return nil, newAttributeError(t, name, AccessGet, "was intercepted with a non-capability result")
	}
	return c, nil
}

// Call invokes a method capability through the type with an explicit
// receiver, which must be a member of t or of a descendant.
func (t *Type) Call(ctx context.Context, name string, recv *Member, args ...any) (any, error) {
	if recv == nil || !recv.typ.IsA(t) {
		return nil, newValueError(t, "%s.%s requires a %s receiver", t.name, name, t.name)
	}
	return t.dispatch(ctx, &Invocation{Access: AccessCall, Name: name, Receiver: recv, Args: args, typeLevel: true})
}

// SetAttr attempts to assign a capability on the type itself. Types are
// immutable, so this always fails; unmet capabilities report ABSTRACT_ACCESS.
func (t *Type) SetAttr(ctx context.Context, name string, v any) error {
	_, err := t.dispatch(ctx, &Invocation{Access: AccessSet, Name: name, Value: v, typeLevel: true})
	return err
}

// DeleteAttr attempts to delete a capability from the type itself; see SetAttr.
func (t *Type) DeleteAttr(ctx context.Context, name string) error {
	_, err := t.dispatch(ctx, &Invocation{Access: AccessDelete, Name: name, typeLevel: true})
	return err
}
