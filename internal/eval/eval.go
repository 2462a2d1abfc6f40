package eval

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/AddioElectronics/enumex/internal/enumex"
	"github.com/AddioElectronics/enumex/internal/ir"
)

// Evaluator evaluates expressions against the types of a registry.
//
// Values flowing through evaluation are int64, string, bool, *enumex.Type,
// *enumex.Member, *enumex.Capability and enumex.BoundMethod. Errors raised by
// the enumeration core are returned unwrapped.
type Evaluator struct {
	reg *enumex.Registry
}

// New creates an Evaluator over reg.
func New(reg *enumex.Registry) *Evaluator {
	return &Evaluator{reg: reg}
}

// EvalString parses and evaluates src.
func (e *Evaluator) EvalString(ctx context.Context, src string) (any, error) {
	expr, err := Parse(src)
	if err != nil {
		return nil, err
	}
	return e.Eval(ctx, expr)
}

// Eval evaluates a parsed expression.
func (e *Evaluator) Eval(ctx context.Context, x Expr) (any, error) {
	switch n := x.(type) {
	case Literal:
		return ir.ToGo(n.Value), nil
	case Ref:
		t, ok := e.reg.Type(n.Name)
		if !ok {
			return nil, fmt.Errorf("unknown name %q", n.Name)
		}
		return t, nil
	case Select:
		return e.evalSelect(ctx, n)
	case Call:
		return e.evalCall(ctx, n)
	case Unary:
		return e.evalUnary(ctx, n)
	case Binary:
		return e.evalBinary(ctx, n)
	default:
		return nil, fmt.Errorf("unsupported expression type: %T", x)
	}
}

func (e *Evaluator) evalSelect(ctx context.Context, n Select) (any, error) {
	x, err := e.Eval(ctx, n.X)
	if err != nil {
		return nil, err
	}
	switch v := x.(type) {
	case *enumex.Type:
		if m, ok := v.Member(n.Name); ok {
			return m, nil
		}
		return v.Attr(ctx, n.Name)
	case *enumex.Member:
		return v.Get(ctx, n.Name)
	default:
		return nil, fmt.Errorf("%s has no attribute %q", describeKind(x), n.Name)
	}
}

func (e *Evaluator) evalArgs(ctx context.Context, exprs []Expr) ([]any, error) {
	args := make([]any, len(exprs))
	for i, a := range exprs {
		v, err := e.Eval(ctx, a)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	return args, nil
}

func (e *Evaluator) evalCall(ctx context.Context, n Call) (any, error) {
	switch fun := n.Fun.(type) {
	case Select:
		recv, err := e.Eval(ctx, fun.X)
		if err != nil {
			return nil, err
		}
		args, err := e.evalArgs(ctx, n.Args)
		if err != nil {
			return nil, err
		}
		switch r := recv.(type) {
		case *enumex.Member:
			return r.Call(ctx, fun.Name, args...)
		case *enumex.Type:
			if m, ok := r.Member(fun.Name); ok {
				return nil, fmt.Errorf("%s is not callable", m.Repr())
			}
			if len(args) == 0 {
				return nil, fmt.Errorf("%s.%s() requires a receiver member", r.Name(), fun.Name)
			}
			m, ok := args[0].(*enumex.Member)
			if !ok {
				return nil, fmt.Errorf("%s.%s() receiver must be a member, got %s", r.Name(), fun.Name, describeKind(args[0]))
			}
			return r.Call(ctx, fun.Name, m, args[1:]...)
		default:
			return nil, fmt.Errorf("%s has no attribute %q", describeKind(recv), fun.Name)
		}

	case Ref:
		args, err := e.evalArgs(ctx, n.Args)
		if err != nil {
			return nil, err
		}
		if t, ok := e.reg.Type(fun.Name); ok {
			if len(args) != 1 {
				return nil, fmt.Errorf("%s() takes exactly one argument (%d given)", t.Name(), len(args))
			}
			return t.Construct(args[0])
		}
		if b, ok := builtins[fun.Name]; ok {
			return b(args)
		}
		return nil, fmt.Errorf("unknown name %q", fun.Name)
	}

	callee, err := e.Eval(ctx, n.Fun)
	if err != nil {
		return nil, err
	}
	bound, ok := callee.(enumex.BoundMethod)
	if !ok {
		return nil, fmt.Errorf("%s is not callable", describeKind(callee))
	}
	args, err := e.evalArgs(ctx, n.Args)
	if err != nil {
		return nil, err
	}
	return bound(ctx, args...)
}

func (e *Evaluator) evalUnary(ctx context.Context, n Unary) (any, error) {
	x, err := e.Eval(ctx, n.X)
	if err != nil {
		return nil, err
	}
	switch n.Op {
	case "~":
		switch v := x.(type) {
		case *enumex.Member:
			return v.Invert()
		case int64:
			return ^v, nil
		}
	case "-":
		if v, ok := x.(int64); ok {
			return -v, nil
		}
	case "!":
		if v, ok := x.(bool); ok {
			return !v, nil
		}
	}
	return nil, fmt.Errorf("bad operand type for unary %s: %s", n.Op, describeKind(x))
}

var bitOps = map[string]enumex.Op{
	"|": enumex.OpOr,
	"&": enumex.OpAnd,
	"^": enumex.OpXor,
}

func (e *Evaluator) evalBinary(ctx context.Context, n Binary) (any, error) {
	x, err := e.Eval(ctx, n.X)
	if err != nil {
		return nil, err
	}
	y, err := e.Eval(ctx, n.Y)
	if err != nil {
		return nil, err
	}

	switch n.Op {
	case "==":
		return equal(x, y), nil
	case "!=":
		return !equal(x, y), nil
	}

	op := bitOps[n.Op]
	_, xm := x.(*enumex.Member)
	_, ym := y.(*enumex.Member)
	if xm || ym {
		return enumex.Combine(op, x, y)
	}
	xi, xok := x.(int64)
	yi, yok := y.(int64)
	if !xok || !yok {
		return nil, fmt.Errorf("unsupported operand types for %s: %s and %s", n.Op, describeKind(x), describeKind(y))
	}
	switch op {
	case enumex.OpOr:
		return xi | yi, nil
	case enumex.OpAnd:
		return xi & yi, nil
	default:
		return xi ^ yi, nil
	}
}

func equal(x, y any) bool {
	if m, ok := x.(*enumex.Member); ok {
		return m.Equal(y)
	}
	if m, ok := y.(*enumex.Member); ok {
		return m.Equal(x)
	}
	if x == nil || y == nil {
		return x == nil && y == nil
	}
	if reflect.TypeOf(x) != reflect.TypeOf(y) || !reflect.TypeOf(x).Comparable() {
		return false
	}
	return x == y
}

// builtins are the functions callable by name.
var builtins = map[string]func(args []any) (any, error){
	"len":      builtinLen,
	"contains": builtinContains,
}

func builtinLen(args []any) (any, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("len() takes exactly one argument (%d given)", len(args))
	}
	switch v := args[0].(type) {
	case *enumex.Type:
		return int64(v.Len()), nil
	case *enumex.Member:
		return int64(len(v.Flags())), nil
	case string:
		return int64(len(v)), nil
	}
	return nil, fmt.Errorf("object of kind %s has no len()", describeKind(args[0]))
}

// builtinContains reports whether y is in x: a flag member's bits for a
// member container, membership by value for a type.
func builtinContains(args []any) (any, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("contains() takes exactly two arguments (%d given)", len(args))
	}
	switch c := args[0].(type) {
	case *enumex.Member:
		return c.Contains(args[1])
	case *enumex.Type:
		if m, ok := args[1].(*enumex.Member); ok {
			if !m.Type().IsA(c) {
				return false, nil
			}
			_, found := c.Lookup(m.Value())
			return found, nil
		}
		_, found := c.Lookup(args[1])
		return found, nil
	case string:
		s, ok := args[1].(string)
		if !ok {
			return nil, fmt.Errorf("'in <string>' requires string as left operand, not %s", describeKind(args[1]))
		}
		return strings.Contains(c, s), nil
	}
	return nil, fmt.Errorf("argument of kind %s is not a container", describeKind(args[0]))
}

func describeKind(v any) string {
	switch x := v.(type) {
	case nil:
		return "nil"
	case *enumex.Type:
		return "type " + x.Name()
	case *enumex.Member:
		return x.Type().Name()
	case *enumex.Capability:
		return "capability"
	case enumex.BoundMethod:
		return "bound method"
	case int64:
		return "int"
	}
	return reflect.TypeOf(v).String()
}
