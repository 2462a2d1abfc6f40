package enumex

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func describe(_ context.Context, m *Member, _ ...any) (any, error) {
	return fmt.Sprintf("%s : %v", m.Name(), m.Value()), nil
}

func shapeTypes(t *testing.T) (abstract, concrete *Type) {
	t.Helper()
	sides := map[string]any{}

	abstract, err := NewBuilder("Shape", Abstract, Enum).
		Member("Triangle", 3).
		Member("Square", 4).
		AbstractMethod("area", func(context.Context, *Member, ...any) (any, error) {
			return "default area", nil
		}).
		AbstractProperty("sides").
		Method("describe", describe).
		Build()
	require.NoError(t, err)

	concrete, err = NewBuilder("Polygon", abstract).
		Member("Pentagon", 5).
		Method("area", func(_ context.Context, m *Member, _ ...any) (any, error) {
			return m.Value().(int64) * 10, nil
		}).
		Property("sides",
			func(_ context.Context, m *Member) (any, error) { return sides[m.Name()], nil },
			func(_ context.Context, m *Member, v any) error { sides[m.Name()] = v; return nil },
			func(_ context.Context, m *Member) error { delete(sides, m.Name()); return nil },
		).
		Build()
	require.NoError(t, err)
	return abstract, concrete
}

func TestContract_AbstractInstantiation(t *testing.T) {
	shape, polygon := shapeTypes(t)

	assert.True(t, shape.Abstract())
	assert.Equal(t, []string{"area", "sides"}, shape.Unmet())

	_, err := shape.New(3)
	require.Error(t, err)
	var e *Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, CodeAbstractInstantiation, e.Code)
	assert.Equal(t, []string{"area", "sides"}, e.Names)
	assert.Equal(t, "Shape", e.Type)
	assert.True(t, IsAbstractError(err))

	assert.False(t, polygon.Abstract())
	assert.Empty(t, polygon.Unmet())
	m, err := polygon.New(3)
	require.NoError(t, err)
	assert.Equal(t, "Triangle", m.Name())
}

func TestContract_PartialOverrideStaysAbstract(t *testing.T) {
	shape, _ := shapeTypes(t)

	partial, err := NewBuilder("Partial", shape).
		Method("area", describe).
		Build()
	require.NoError(t, err)

	assert.True(t, partial.Abstract())
	assert.Equal(t, []string{"sides"}, partial.Unmet())
	assert.True(t, partial.IsUnmet("sides"))
	assert.False(t, partial.IsUnmet("area"))

	_, err = partial.New(4)
	var e *Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, []string{"sides"}, e.Names)
}

func TestContract_AbstractAccessThroughMember(t *testing.T) {
	shape, _ := shapeTypes(t)
	ctx := context.Background()
	tri := shape.MustMember("Triangle")

	tests := []struct {
		name   string
		access Access
		cap    string
		do     func() error
	}{
		{"call method", AccessCall, "area", func() error { _, err := tri.Call(ctx, "area"); return err }},
		{"get method", AccessGet, "area", func() error { _, err := tri.Get(ctx, "area"); return err }},
		{"get property", AccessGet, "sides", func() error { _, err := tri.Get(ctx, "sides"); return err }},
		{"set property", AccessSet, "sides", func() error { return tri.Set(ctx, "sides", 3) }},
		{"delete property", AccessDelete, "sides", func() error { return tri.Delete(ctx, "sides") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.do()
			require.Error(t, err)
			var e *Error
			require.ErrorAs(t, err, &e)
			assert.Equal(t, CodeAbstractAccess, e.Code)
			assert.Equal(t, tt.cap, e.Capability)
			assert.Equal(t, tt.access, e.Access)
			assert.True(t, errors.Is(err, ErrAbstractAccess))
		})
	}
}

func TestContract_ConcreteCapabilitiesStayUsable(t *testing.T) {
	shape, _ := shapeTypes(t)
	res, err := shape.MustMember("Square").Call(context.Background(), "describe")
	require.NoError(t, err)
	assert.Equal(t, "Square : 4", res)
}

func TestContract_AbstractAccessThroughType(t *testing.T) {
	shape, polygon := shapeTypes(t)
	ctx := context.Background()

	_, err := shape.Attr(ctx, "area")
	assert.True(t, HasCode(err, CodeAbstractAccess))

	_, err = shape.Call(ctx, "area", shape.MustMember("Triangle"))
	assert.True(t, HasCode(err, CodeAbstractAccess))

	err = shape.SetAttr(ctx, "sides", 1)
	assert.True(t, HasCode(err, CodeAbstractAccess))

	err = shape.DeleteAttr(ctx, "sides")
	assert.True(t, HasCode(err, CodeAbstractAccess))

	c, err := shape.Attr(ctx, "describe")
	require.NoError(t, err)
	assert.Same(t, shape, c.Owner())

	c, err = polygon.Attr(ctx, "area")
	require.NoError(t, err)
	assert.Same(t, polygon, c.Owner())
	assert.False(t, c.Abstract())

	// a concrete type is still immutable
	err = polygon.SetAttr(ctx, "area", nil)
	assert.True(t, HasCode(err, CodeNoAttribute))

	// type-level call accepts descendant receivers
	res, err := polygon.Call(ctx, "area", polygon.MustMember("Pentagon"))
	require.NoError(t, err)
	assert.Equal(t, int64(50), res)

	_, err = polygon.Call(ctx, "area", nil)
	assert.True(t, HasCode(err, CodeInvalidValue))
}

func TestContract_ConcreteProperty(t *testing.T) {
	_, polygon := shapeTypes(t)
	ctx := context.Background()
	sq := polygon.MustMember("Square")

	require.NoError(t, sq.Set(ctx, "sides", 4))
	v, err := sq.Get(ctx, "sides")
	require.NoError(t, err)
	assert.Equal(t, 4, v)

	require.NoError(t, sq.Delete(ctx, "sides"))
	v, err = sq.Get(ctx, "sides")
	require.NoError(t, err)
	assert.Nil(t, v)

	c, ok := polygon.Capability("sides")
	require.True(t, ok)
	assert.Equal(t, KindProperty, c.Kind())
	assert.True(t, c.Settable())
}

func TestContract_BoundMethod(t *testing.T) {
	_, polygon := shapeTypes(t)
	ctx := context.Background()

	got, err := polygon.MustMember("Pentagon").Get(ctx, "area")
	require.NoError(t, err)
	bound, ok := got.(BoundMethod)
	require.True(t, ok)

	res, err := bound(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(50), res)
}

func TestContract_UnknownCapability(t *testing.T) {
	_, polygon := shapeTypes(t)
	_, err := polygon.MustMember("Square").Call(context.Background(), "perimeter")
	assert.True(t, errors.Is(err, ErrNoAttribute))

	err = polygon.MustMember("Square").Set(context.Background(), "describe", 1)
	assert.True(t, HasCode(err, CodeNoAttribute))
}

// The describe example: every member of the abstract type refuses describe,
// every member of the concrete subclass (two inherited, two new) answers.
func TestContract_DescribeExample(t *testing.T) {
	ctx := context.Background()
	a, err := NewBuilder("A", Abstract, Enum).
		Auto("Val1").
		Auto("Val2").
		AbstractMethod("describe", nil).
		Build()
	require.NoError(t, err)
	b, err := NewBuilder("B", a).
		Auto("Val3").
		Auto("Val4").
		Method("describe", describe).
		Build()
	require.NoError(t, err)

	for _, m := range a.Members() {
		_, err := m.Call(ctx, "describe")
		var e *Error
		require.ErrorAs(t, err, &e)
		assert.Equal(t, CodeAbstractAccess, e.Code)
		assert.Equal(t, "describe", e.Capability)
	}

	var out []any
	for _, m := range b.Members() {
		res, err := m.Call(ctx, "describe")
		require.NoError(t, err)
		out = append(out, res)
	}
	assert.Equal(t, []any{"Val1 : 1", "Val2 : 2", "Val3 : 3", "Val4 : 4"}, out)
}

// =============================================================================
// Interception and re-entrancy
// =============================================================================

func TestContract_InterceptorRunsAfterEnforcement(t *testing.T) {
	calls := 0
	a, err := NewBuilder("A", Abstract, Enum).
		Auto("X").
		AbstractMethod("hidden", nil).
		Method("open", describe).
		Intercept(func(ctx context.Context, inv *Invocation, next Handler) (any, error) {
			calls++
			return "intercepted", nil
		}).
		Build()
	require.NoError(t, err)
	ctx := context.Background()
	x := a.MustMember("X")

	// the interceptor never sees the unmet capability
	_, err = x.Call(ctx, "hidden")
	assert.True(t, HasCode(err, CodeAbstractAccess))
	assert.Equal(t, 0, calls)

	res, err := x.Call(ctx, "open")
	require.NoError(t, err)
	assert.Equal(t, "intercepted", res)
	assert.Equal(t, 1, calls)
}

func TestContract_InterceptorForwardingIsEnforced(t *testing.T) {
	a, err := NewBuilder("A", Abstract, Enum).
		Auto("X").
		AbstractMethod("hidden", nil).
		Method("open", describe).
		Intercept(func(ctx context.Context, inv *Invocation, next Handler) (any, error) {
			redirected := *inv
			redirected.Name = "hidden"
			return next(ctx, &redirected)
		}).
		Build()
	require.NoError(t, err)

	_, err = a.MustMember("X").Call(context.Background(), "open")
	assert.True(t, HasCode(err, CodeAbstractAccess))
}

func TestContract_ReentrantAccessResolvesRaw(t *testing.T) {
	a, err := NewBuilder("A", Abstract, Enum).
		Auto("X").
		AbstractMethod("hidden", func(context.Context, *Member, ...any) (any, error) {
			return "fallback", nil
		}).
		Method("peek", describe).
		Intercept(func(ctx context.Context, inv *Invocation, next Handler) (any, error) {
			if inv.Name == "peek" {
				// nested access on the interceptor's context is inert
				return inv.Receiver.Call(ctx, "hidden")
			}
			return next(ctx, inv)
		}).
		Build()
	require.NoError(t, err)
	x := a.MustMember("X")

	res, err := x.Call(context.Background(), "peek")
	require.NoError(t, err)
	assert.Equal(t, "fallback", res)

	// outside the interceptor enforcement still applies
	_, err = x.Call(context.Background(), "hidden")
	assert.True(t, HasCode(err, CodeAbstractAccess))
}

func TestContract_GuardIsPerContext(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{})
	a, err := NewBuilder("A", Abstract, Enum).
		Auto("X").
		AbstractMethod("hidden", nil).
		Method("hold", describe).
		Intercept(func(ctx context.Context, inv *Invocation, next Handler) (any, error) {
			if inv.Name == "hold" {
				close(entered)
				<-release
			}
			return next(ctx, inv)
		}).
		Build()
	require.NoError(t, err)
	x := a.MustMember("X")

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, _ = x.Call(context.Background(), "hold")
	}()
	<-entered

	// another goroutine's in-flight hook must not suppress enforcement here
	_, err = x.Call(context.Background(), "hidden")
	assert.True(t, HasCode(err, CodeAbstractAccess))

	close(release)
	wg.Wait()
}

func TestContract_InterceptorInherited(t *testing.T) {
	seen := []string{}
	a := NewBuilder("A").
		Auto("X").
		Method("m", describe).
		Intercept(func(ctx context.Context, inv *Invocation, next Handler) (any, error) {
			seen = append(seen, inv.Name)
			return next(ctx, inv)
		}).
		MustBuild()
	b := NewBuilder("B", a).Auto("Y").MustBuild()

	_, err := b.MustMember("Y").Call(context.Background(), "m")
	require.NoError(t, err)
	assert.Equal(t, []string{"m"}, seen)
}

func TestGuard_HookKeys(t *testing.T) {
	ctx := context.Background()
	assert.False(t, reentering(ctx, hookInstanceGet))

	inner := enter(ctx, hookInstanceGet)
	assert.True(t, reentering(inner, hookInstanceGet))
	assert.False(t, reentering(inner, hookInstanceSet))
	assert.False(t, reentering(ctx, hookInstanceGet))

	both := enter(inner, hookInstanceSet)
	assert.True(t, reentering(both, hookInstanceGet))
	assert.True(t, reentering(both, hookInstanceSet))

	assert.Equal(t, hookTypeGet, hookFor(AccessSet, true))
	assert.Equal(t, hookInstanceGet, hookFor(AccessCall, false))
	assert.Equal(t, hookInstanceDelete, hookFor(AccessDelete, false))
	assert.Equal(t, "instance-set", hookInstanceSet.String())
}
