package eval

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/scanner"
	"go/token"
	"strconv"

	"github.com/AddioElectronics/enumex/internal/ir"
)

// ParseError reports a syntax error or an unsupported construct. Col is the
// 1-based column in the expression, 0 when unknown.
type ParseError struct {
	Expr    string
	Col     int
	Message string
}

func (e *ParseError) Error() string {
	if e.Col > 0 {
		return fmt.Sprintf("%d: %s", e.Col, e.Message)
	}
	return e.Message
}

// Parse parses src into an Expr.
//
// The grammar is a subset of Go expressions: identifiers, selectors, calls,
// integer/string literals, parentheses, unary ~ ^ - ! and binary | & ^ == !=.
// Unary ^ is accepted as a synonym of ~.
func Parse(src string) (Expr, error) {
	node, err := parser.ParseExpr(src)
	if err != nil {
		return nil, convertSyntaxError(src, err)
	}
	return convert(src, node)
}

func convertSyntaxError(src string, err error) error {
	if list, ok := err.(scanner.ErrorList); ok && len(list) > 0 {
		return &ParseError{Expr: src, Col: list[0].Pos.Column, Message: list[0].Msg}
	}
	return &ParseError{Expr: src, Message: err.Error()}
}

func unsupported(src string, n ast.Node, what string) error {
	return &ParseError{Expr: src, Col: int(n.Pos()), Message: "unsupported " + what}
}

func convert(src string, n ast.Expr) (Expr, error) {
	switch e := n.(type) {
	case *ast.ParenExpr:
		return convert(src, e.X)

	case *ast.BasicLit:
		switch e.Kind {
		case token.INT:
			v, err := strconv.ParseInt(e.Value, 0, 64)
			if err != nil {
				return nil, &ParseError{Expr: src, Col: int(e.Pos()), Message: fmt.Sprintf("integer %s out of range", e.Value)}
			}
			return Literal{Value: ir.IRInt(v)}, nil
		case token.STRING, token.CHAR:
			s, err := strconv.Unquote(e.Value)
			if err != nil {
				return nil, &ParseError{Expr: src, Col: int(e.Pos()), Message: err.Error()}
			}
			return Literal{Value: ir.IRString(s)}, nil
		default:
			return nil, unsupported(src, e, fmt.Sprintf("literal %s", e.Value))
		}

	case *ast.Ident:
		switch e.Name {
		case "true":
			return Literal{Value: ir.IRBool(true)}, nil
		case "false":
			return Literal{Value: ir.IRBool(false)}, nil
		}
		return Ref{Name: e.Name}, nil

	case *ast.SelectorExpr:
		x, err := convert(src, e.X)
		if err != nil {
			return nil, err
		}
		return Select{X: x, Name: e.Sel.Name}, nil

	case *ast.CallExpr:
		if e.Ellipsis.IsValid() {
			return nil, unsupported(src, e, "variadic call")
		}
		fun, err := convert(src, e.Fun)
		if err != nil {
			return nil, err
		}
		args := make([]Expr, 0, len(e.Args))
		for _, a := range e.Args {
			arg, err := convert(src, a)
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
		}
		return Call{Fun: fun, Args: args}, nil

	case *ast.UnaryExpr:
		x, err := convert(src, e.X)
		if err != nil {
			return nil, err
		}
		switch e.Op {
		case token.TILDE, token.XOR:
			return Unary{Op: "~", X: x}, nil
		case token.SUB, token.NOT:
			return Unary{Op: e.Op.String(), X: x}, nil
		}
		return nil, unsupported(src, e, "operator "+e.Op.String())

	case *ast.BinaryExpr:
		switch e.Op {
		case token.OR, token.AND, token.XOR, token.EQL, token.NEQ:
		default:
			return nil, unsupported(src, e, "operator "+e.Op.String())
		}
		x, err := convert(src, e.X)
		if err != nil {
			return nil, err
		}
		y, err := convert(src, e.Y)
		if err != nil {
			return nil, err
		}
		return Binary{Op: e.Op.String(), X: x, Y: y}, nil
	}
	return nil, unsupported(src, n, fmt.Sprintf("expression %T", n))
}
