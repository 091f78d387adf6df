package services

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"log"
	"strconv"
	"strings"
)

// EvalNumber evaluates a plain arithmetic expression: numeric literals,
// + - * /, parentheses and unary plus/minus. Identifiers, calls and every
// other construct are rejected, so stored measurement fields can never
// execute anything beyond arithmetic. All arithmetic is carried out in
// float64, so "5/2" is 2.5.
func EvalNumber(expr string) (float64, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return 0, fmt.Errorf("empty expression")
	}
	node, err := parser.ParseExpr(expr)
	if err != nil {
		return 0, fmt.Errorf("parse %q: %w", expr, err)
	}
	v, err := evalNode(node)
	if err != nil {
		return 0, fmt.Errorf("evaluate %q: %w", expr, err)
	}
	return v, nil
}

func evalNode(node ast.Expr) (float64, error) {
	switch n := node.(type) {
	case *ast.BasicLit:
		if n.Kind != token.INT && n.Kind != token.FLOAT {
			return 0, fmt.Errorf("unsupported literal %s", n.Value)
		}
		return strconv.ParseFloat(n.Value, 64)
	case *ast.ParenExpr:
		return evalNode(n.X)
	case *ast.UnaryExpr:
		v, err := evalNode(n.X)
		if err != nil {
			return 0, err
		}
		switch n.Op {
		case token.ADD:
			return v, nil
		case token.SUB:
			return -v, nil
		}
		return 0, fmt.Errorf("unsupported unary operator %s", n.Op)
	case *ast.BinaryExpr:
		x, err := evalNode(n.X)
		if err != nil {
			return 0, err
		}
		y, err := evalNode(n.Y)
		if err != nil {
			return 0, err
		}
		switch n.Op {
		case token.ADD:
			return x + y, nil
		case token.SUB:
			return x - y, nil
		case token.MUL:
			return x * y, nil
		case token.QUO:
			if y == 0 {
				return 0, fmt.Errorf("division by zero")
			}
			return x / y, nil
		}
		return 0, fmt.Errorf("unsupported operator %s", n.Op)
	}
	return 0, fmt.Errorf("unsupported expression %T", node)
}

// evalOrZero is the tolerant form used while loading measurement data:
// a malformed field degrades to zero with a log entry instead of failing
// the whole recomputation.
func evalOrZero(expr string) float64 {
	if strings.TrimSpace(expr) == "" {
		return 0
	}
	v, err := EvalNumber(expr)
	if err != nil {
		log.Printf("eval: wrong value loaded, substituting zero: %v", err)
		return 0
	}
	return v
}
