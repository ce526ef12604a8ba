package canon

import (
	"bytes"
	"math"
	"math/big"

	"github.com/tinyrange/canonbounds/internal/ast"
	"github.com/tinyrange/canonbounds/internal/decl"
)

func (l *Lexicographic) comparePredefined(e1, e2 *ast.Predefined) Result {
	return l.decide("Predefined.ident", compareOrdered(e1.Ident, e2.Ident), e1, e2)
}

// compareDeclRef substitutes each variable by its current representative
// before ordering the declarations.
func (l *Lexicographic) compareDeclRef(e1, e2 *ast.DeclRef) Result {
	return l.CompareDecl(l.representative(e1.Decl), l.representative(e2.Decl))
}

func (l *Lexicographic) representative(d *decl.Decl) *decl.Decl {
	d = d.Canonical()
	if l.equalVars == nil || d == nil || !d.Kind.IsVariable() {
		return d
	}
	r := l.equalVars.Representative(d)
	if r == nil {
		panic(invariant("DeclRef.representative", "no representative for %s", d.Qualified()))
	}
	return r.Canonical()
}

var zero = new(big.Int)

func bigOrZero(v *big.Int) *big.Int {
	if v == nil {
		return zero
	}
	return v
}

func (l *Lexicographic) compareIntegerLiteral(e1, e2 *ast.IntegerLiteral) Result {
	if r := l.decide("IntegerLiteral.value", Result(bigOrZero(e1.Value).Cmp(bigOrZero(e2.Value))), e1, e2); r != Equal {
		return r
	}
	if r := l.decide("IntegerLiteral.width", compareOrdered(e1.Width, e2.Width), e1, e2); r != Equal {
		return r
	}
	return l.decide("IntegerLiteral.signed", compareBool(e1.Signed, e2.Signed), e1, e2)
}

// floatKey maps a float64 onto an int64 whose natural order is the IEEE 754
// total order: -NaN < -Inf < ... < -0 < +0 < ... < +Inf < +NaN.
func floatKey(f float64) int64 {
	b := int64(math.Float64bits(f))
	if b < 0 {
		b ^= math.MaxInt64
	}
	return b
}

func (l *Lexicographic) compareFloatingLiteral(e1, e2 *ast.FloatingLiteral) Result {
	if r := l.decide("FloatingLiteral.value", compareOrdered(floatKey(e1.Value), floatKey(e2.Value)), e1, e2); r != Equal {
		return r
	}
	return l.decide("FloatingLiteral.semantics", compareOrdered(e1.Semantics, e2.Semantics), e1, e2)
}

func (l *Lexicographic) compareStringLiteral(e1, e2 *ast.StringLiteral) Result {
	if r := l.decide("StringLiteral.length", compareOrdered(len(e1.Value), len(e2.Value)), e1, e2); r != Equal {
		return r
	}
	if r := l.decide("StringLiteral.bytes", Result(bytes.Compare(e1.Value, e2.Value)), e1, e2); r != Equal {
		return r
	}
	return l.decide("StringLiteral.kind", compareOrdered(e1.CharKind, e2.CharKind), e1, e2)
}

func (l *Lexicographic) compareCharacterLiteral(e1, e2 *ast.CharacterLiteral) Result {
	if r := l.decide("CharacterLiteral.value", compareOrdered(e1.Value, e2.Value), e1, e2); r != Equal {
		return r
	}
	return l.decide("CharacterLiteral.kind", compareOrdered(e1.CharKind, e2.CharKind), e1, e2)
}

func (l *Lexicographic) compareUnaryOperator(e1, e2 *ast.UnaryOperator) Result {
	if r := l.decide("UnaryOperator.op", compareOrdered(e1.Op, e2.Op), e1, e2); r != Equal {
		return r
	}
	return l.CompareExpr(e1.X, e2.X)
}

// Operands are compared in source order; a+b and b+a differ.
func (l *Lexicographic) compareBinaryOperator(e1, e2 *ast.BinaryOperator) Result {
	if r := l.decide("BinaryOperator.op", compareOrdered(e1.Op, e2.Op), e1, e2); r != Equal {
		return r
	}
	if r := l.CompareExpr(e1.Left, e2.Left); r != Equal {
		return r
	}
	return l.CompareExpr(e1.Right, e2.Right)
}

func (l *Lexicographic) compareCompoundAssign(e1, e2 *ast.CompoundAssignOperator) Result {
	if r := l.decide("CompoundAssignOperator.op", compareOrdered(e1.Op, e2.Op), e1, e2); r != Equal {
		return r
	}
	if r := l.CompareExpr(e1.Left, e2.Left); r != Equal {
		return r
	}
	return l.CompareExpr(e1.Right, e2.Right)
}

// compareImplicitCast ignores the cast kind: two implicit conversions to the
// same type of the same operand are the same value.
func (l *Lexicographic) compareImplicitCast(e1, e2 *ast.ImplicitCast) Result {
	if r := l.CompareType(e1.Type, e2.Type); r != Equal {
		return r
	}
	return l.CompareExpr(e1.X, e2.X)
}

func (l *Lexicographic) compareCStyleCast(e1, e2 *ast.CStyleCast) Result {
	if r := l.CompareType(e1.Type, e2.Type); r != Equal {
		return r
	}
	if r := l.decide("CStyleCast.kind", compareOrdered(e1.CastKind, e2.CastKind), e1, e2); r != Equal {
		return r
	}
	return l.CompareExpr(e1.X, e2.X)
}

func (l *Lexicographic) compareMember(e1, e2 *ast.Member) Result {
	if r := l.CompareExpr(e1.Base, e2.Base); r != Equal {
		return r
	}
	if r := l.CompareDecl(e1.Field, e2.Field); r != Equal {
		return r
	}
	return l.decide("Member.arrow", compareBool(e1.Arrow, e2.Arrow), e1, e2)
}

// compareExprs orders two operand lists by length, then element-wise.
func (l *Lexicographic) compareExprs(rule string, xs, ys []ast.Expr) Result {
	if r := l.decide(rule+".count", compareOrdered(len(xs), len(ys)), len(xs), len(ys)); r != Equal {
		return r
	}
	for i := range xs {
		if r := l.CompareExpr(xs[i], ys[i]); r != Equal {
			return r
		}
	}
	return Equal
}

func (l *Lexicographic) compareCompoundLiteral(e1, e2 *ast.CompoundLiteral) Result {
	if r := l.CompareType(e1.Type, e2.Type); r != Equal {
		return r
	}
	return l.compareExprs("CompoundLiteral.inits", e1.Inits, e2.Inits)
}

func (l *Lexicographic) compareGenericSelection(e1, e2 *ast.GenericSelection) Result {
	if r := l.CompareExpr(e1.Control, e2.Control); r != Equal {
		return r
	}
	if r := l.decide("GenericSelection.count", compareOrdered(len(e1.Assocs), len(e2.Assocs)), e1, e2); r != Equal {
		return r
	}
	for i := range e1.Assocs {
		a, b := e1.Assocs[i], e2.Assocs[i]
		// The default association orders first.
		if r := l.decide("GenericSelection.default", compareBool(a.Type != nil, b.Type != nil), e1, e2); r != Equal {
			return r
		}
		if a.Type != nil {
			if r := l.CompareType(*a.Type, *b.Type); r != Equal {
				return r
			}
		}
		if r := l.CompareExpr(a.X, b.X); r != Equal {
			return r
		}
	}
	return Equal
}

func (l *Lexicographic) compareTrait(e1, e2 *ast.UnaryExprOrTypeTrait) Result {
	if r := l.decide("UnaryExprOrTypeTrait.trait", compareOrdered(e1.Trait, e2.Trait), e1, e2); r != Equal {
		return r
	}
	// The type form orders before the expression form.
	if r := l.decide("UnaryExprOrTypeTrait.form", compareBool(e1.Type == nil, e2.Type == nil), e1, e2); r != Equal {
		return r
	}
	if e1.Type != nil {
		return l.CompareType(*e1.Type, *e2.Type)
	}
	return l.CompareExpr(e1.X, e2.X)
}

func (l *Lexicographic) compareOffsetOf(e1, e2 *ast.OffsetOf) Result {
	if r := l.CompareType(e1.Type, e2.Type); r != Equal {
		return r
	}
	if r := l.decide("OffsetOf.count", compareOrdered(len(e1.Designators), len(e2.Designators)), e1, e2); r != Equal {
		return r
	}
	for i := range e1.Designators {
		a, b := e1.Designators[i], e2.Designators[i]
		// Field designators order before array indices.
		if r := l.decide("OffsetOf.form", compareBool(a.Field == nil, b.Field == nil), e1, e2); r != Equal {
			return r
		}
		var r Result
		if a.Field != nil {
			r = l.CompareDecl(a.Field, b.Field)
		} else {
			r = l.CompareExpr(a.Index, b.Index)
		}
		if r != Equal {
			return r
		}
	}
	return Equal
}

func (l *Lexicographic) compareAtomic(e1, e2 *ast.Atomic) Result {
	if r := l.decide("Atomic.op", compareOrdered(e1.Op, e2.Op), e1, e2); r != Equal {
		return r
	}
	return l.compareExprs("Atomic.args", e1.Args, e2.Args)
}

// Blocks are not decomposed; they are identified by their declaration.
func (l *Lexicographic) compareBlock(e1, e2 *ast.Block) Result {
	return l.CompareDecl(e1.Decl, e2.Decl)
}

func (l *Lexicographic) compareNullaryBounds(e1, e2 *ast.NullaryBounds) Result {
	return l.decide("NullaryBounds.kind", compareOrdered(e1.Bounds, e2.Bounds), e1, e2)
}

func (l *Lexicographic) compareCountBounds(e1, e2 *ast.CountBounds) Result {
	if r := l.decide("CountBounds.kind", compareOrdered(e1.CountKind, e2.CountKind), e1, e2); r != Equal {
		return r
	}
	return l.CompareExpr(e1.Count, e2.Count)
}

func (l *Lexicographic) compareRangeBounds(e1, e2 *ast.RangeBounds) Result {
	if r := l.CompareExpr(e1.Lower, e2.Lower); r != Equal {
		return r
	}
	if r := l.CompareExpr(e1.Upper, e2.Upper); r != Equal {
		return r
	}
	switch {
	case e1.Rel == nil && e2.Rel == nil:
		return Equal
	case e1.Rel == nil:
		return l.decide("RangeBounds.relative", LessThan, e1, e2)
	case e2.Rel == nil:
		return l.decide("RangeBounds.relative", GreaterThan, e1, e2)
	}
	return l.compareRelativeBoundsClause(e1.Rel, e2.Rel)
}

func (l *Lexicographic) compareInteropType(e1, e2 *ast.InteropType) Result {
	return l.CompareType(e1.Type, e2.Type)
}

func (l *Lexicographic) comparePositionalParameter(e1, e2 *ast.PositionalParameter) Result {
	if r := l.decide("PositionalParameter.index", compareOrdered(e1.Index, e2.Index), e1, e2); r != Equal {
		return r
	}
	if r := l.decide("PositionalParameter.offset", compareOrdered(e1.Offset, e2.Offset), e1, e2); r != Equal {
		return r
	}
	return l.CompareType(e1.Type, e2.Type)
}

func (l *Lexicographic) compareBoundsCast(e1, e2 *ast.BoundsCast) Result {
	if r := l.decide("BoundsCast.kind", compareOrdered(e1.CastKind, e2.CastKind), e1, e2); r != Equal {
		return r
	}
	if r := l.CompareType(e1.Type, e2.Type); r != Equal {
		return r
	}
	if r := l.CompareExpr(e1.X, e2.X); r != Equal {
		return r
	}
	return l.CompareExpr(e1.Bounds, e2.Bounds)
}

func (l *Lexicographic) compareRelativeBoundsClause(e1, e2 *ast.RelativeBoundsClause) Result {
	if r := l.CompareDecl(e1.Anchor, e2.Anchor); r != Equal {
		return r
	}
	if r := l.decide("RelativeBoundsClause.kind", compareOrdered(e1.Rel, e2.Rel), e1, e2); r != Equal {
		return r
	}
	if e1.Rel == ast.RelativeType {
		return l.CompareType(e1.Type, e2.Type)
	}
	return l.CompareExpr(e1.Offset, e2.Offset)
}
