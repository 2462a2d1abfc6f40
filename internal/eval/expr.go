package eval

import "github.com/AddioElectronics/enumex/internal/ir"

// Expr is a parsed expression.
//
// This is a sealed interface - only types in this package implement it,
// so the evaluator's type switch is exhaustive.
//
// Expr types:
//   - Literal: integer, string or boolean constant
//   - Ref: a type or builtin name
//   - Select: X.Name (member, capability or property)
//   - Call: Fun(Args...)
//   - Unary: ~X, -X, !X
//   - Binary: X | Y, X & Y, X ^ Y, X == Y, X != Y
type Expr interface {
	exprNode() // Marker method - seals interface to this package
}

// Literal is a constant. Values are IRValues, so floats never appear.
type Literal struct {
	Value ir.IRValue
}

func (Literal) exprNode() {}

// Ref names a registered type, or a builtin when used as a callee.
type Ref struct {
	Name string
}

func (Ref) exprNode() {}

// Select accesses Name on X.
//
// On a type, Name resolves to a member (aliases included) before falling
// back to a type-level capability get. On a member it is a property read, or
// a bound method when Name is a method.
type Select struct {
	X    Expr
	Name string
}

func (Select) exprNode() {}

// Call applies Fun to Args.
//
// A Select callee is dispatched as a capability call rather than a get
// followed by a call, so abstract enforcement reports the call access.
type Call struct {
	Fun  Expr
	Args []Expr
}

func (Call) exprNode() {}

// Unary applies Op to X. Op is one of "~", "-", "!".
type Unary struct {
	Op string
	X  Expr
}

func (Unary) exprNode() {}

// Binary applies Op to X and Y. Op is one of "|", "&", "^", "==", "!=".
type Binary struct {
	Op string
	X  Expr
	Y  Expr
}

func (Binary) exprNode() {}
