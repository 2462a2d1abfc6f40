// Package eval evaluates small expressions over the types of an
// enumex.Registry.
//
// Expressions use Go syntax:
//
//	A.Val1                  member access
//	B(5)                    construction by value
//	B.Val3 | A.Val1         composition (also &, ^)
//	~B.Val1                 inversion (^ is accepted too)
//	A.Val1.describe()       capability call
//	Color.Red.label         property read
//	len(B), contains(x, y)  builtins
//
// Parse produces a sealed Expr tree; Evaluator.Eval walks it. Errors from
// the enumeration core are returned as they were raised so callers can
// inspect their codes.
package eval
