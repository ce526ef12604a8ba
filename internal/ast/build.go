package ast

import (
	"math/big"

	"github.com/tinyrange/canonbounds/internal/decl"
)

// IgnoreParens strips any number of enclosing Paren nodes.
func IgnoreParens(e Expr) Expr {
	for {
		p, ok := e.(*Paren)
		if !ok || p == nil {
			return e
		}
		e = p.X
	}
}

// Int returns a signed 32-bit integer literal.
func Int(v int64) *IntegerLiteral { return IntWidth(v, 32, true) }

func IntWidth(v int64, width uint, signed bool) *IntegerLiteral {
	return &IntegerLiteral{Value: big.NewInt(v), Width: width, Signed: signed}
}

func Ref(d *decl.Decl) *DeclRef { return &DeclRef{Decl: d} }

func Binary(op BinOp, l, r Expr) Expr {
	if op.IsCompoundAssign() {
		return &CompoundAssignOperator{Op: op, Left: l, Right: r}
	}
	return &BinaryOperator{Op: op, Left: l, Right: r}
}

func Count(e Expr) *CountBounds { return &CountBounds{CountKind: ElementCount, Count: e} }

func Range(lo, hi Expr) *RangeBounds { return &RangeBounds{Lower: lo, Upper: hi} }
