package canon_test

import (
	"math"
	"math/big"

	"github.com/tinyrange/canonbounds/internal/ast"
	"github.com/tinyrange/canonbounds/internal/decl"
	"github.com/tinyrange/canonbounds/internal/types"
)

// world is a small translation unit:
//
//	struct buf { int len; int cap; char *data; };
//	int g;
//	void f(struct buf *p, int n) { int i; { int j; } }
type world struct {
	tu                    *decl.Scope
	buf, len, cap, data   *decl.Decl
	g, f, p, n, i, j      *decl.Decl
	bufT, bufPtr, charPtr types.QualType
}

func newWorld() *world {
	w := &world{tu: decl.NewTranslationUnit("buf.c")}
	w.buf = w.tu.Declare(decl.Record, "buf")
	body := w.tu.Open(w.buf)
	w.len = body.Declare(decl.Field, "len")
	w.cap = body.Declare(decl.Field, "cap")
	w.data = body.Declare(decl.Field, "data")
	w.bufT = types.QualType{Type: &types.Record{Decl: w.buf}}
	w.bufPtr = types.PointerTo(w.bufT)
	w.charPtr = types.PointerTo(types.CharT())

	w.g = w.tu.Declare(decl.Var, "g")
	w.f = w.tu.Declare(decl.Function, "f")
	fs := w.tu.Open(w.f)
	w.p = fs.Declare(decl.Param, "p")
	w.n = fs.Declare(decl.Param, "n")
	w.i = fs.Declare(decl.Var, "i")
	w.j = fs.Block().Declare(decl.Var, "j")
	return w
}

// corpus returns at least one node of every kind, with several variants of
// the kinds whose fields carry most of the ordering rules. Building the
// corpus twice from separate worlds yields pairwise Equal trees.
func (w *world) corpus() []ast.Expr {
	n, p := ast.Ref(w.n), ast.Ref(w.p)
	arrow := func(f *decl.Decl) ast.Expr { return &ast.Member{Base: p, Field: f, Arrow: true} }
	intT := types.IntT()
	longT := types.BuiltinOf(types.Long)
	return []ast.Expr{
		&ast.Predefined{Ident: ast.Func},
		&ast.Predefined{Ident: ast.PrettyFunction},
		n,
		p,
		ast.Ref(w.i),
		ast.Ref(w.j),
		ast.Ref(w.g),
		ast.Int(0),
		ast.Int(5),
		ast.Int(-1),
		ast.IntWidth(5, 64, true),
		ast.IntWidth(5, 32, false),
		&ast.IntegerLiteral{Value: new(big.Int).Lsh(big.NewInt(1), 70), Width: 128, Signed: false},
		&ast.FloatingLiteral{Value: 1, Semantics: ast.IEEEDouble},
		&ast.FloatingLiteral{Value: 1, Semantics: ast.IEEESingle},
		&ast.FloatingLiteral{Value: math.Copysign(0, -1), Semantics: ast.IEEEDouble},
		&ast.FloatingLiteral{Value: math.NaN(), Semantics: ast.IEEEDouble},
		&ast.StringLiteral{Value: []byte("ab")},
		&ast.StringLiteral{Value: []byte("b")},
		&ast.StringLiteral{Value: []byte("ab"), CharKind: ast.Wide},
		&ast.CharacterLiteral{Value: 'a'},
		&ast.CharacterLiteral{Value: 'a', CharKind: ast.UTF32},
		&ast.Paren{X: ast.Int(7)},
		&ast.UnaryOperator{Op: ast.OpMinus, X: n},
		&ast.UnaryOperator{Op: ast.OpLNot, X: n},
		&ast.UnaryOperator{Op: ast.OpDeref, X: p},
		&ast.OffsetOf{Type: w.bufT, Designators: []ast.Designator{{Field: w.cap}}},
		&ast.OffsetOf{Type: w.bufT, Designators: []ast.Designator{{Field: w.data}, {Index: ast.Int(2)}}},
		&ast.UnaryExprOrTypeTrait{Trait: ast.SizeOf, Type: &intT},
		&ast.UnaryExprOrTypeTrait{Trait: ast.SizeOf, X: n},
		&ast.UnaryExprOrTypeTrait{Trait: ast.AlignOf, Type: &longT},
		arrow(w.len),
		arrow(w.cap),
		&ast.Member{Base: &ast.UnaryOperator{Op: ast.OpDeref, X: p}, Field: w.len},
		ast.Binary(ast.OpAdd, n, ast.Int(1)),
		ast.Binary(ast.OpAdd, ast.Int(1), n),
		ast.Binary(ast.OpMul, n, ast.Int(1)),
		ast.Binary(ast.OpAdd, p, n),
		ast.Binary(ast.OpComma, n, p),
		ast.Binary(ast.OpAddAssign, n, ast.Int(1)),
		ast.Binary(ast.OpShlAssign, n, ast.Int(1)),
		&ast.ImplicitCast{Type: longT, CastKind: ast.CastIntegralCast, X: n},
		&ast.ImplicitCast{Type: intT, CastKind: ast.CastLValueToRValue, X: n},
		&ast.CStyleCast{Type: longT, CastKind: ast.CastIntegralCast, X: n},
		&ast.CStyleCast{Type: longT, CastKind: ast.CastNoOp, X: n},
		&ast.CompoundLiteral{Type: intT, Inits: []ast.Expr{ast.Int(1)}},
		&ast.CompoundLiteral{Type: intT, Inits: []ast.Expr{ast.Int(1), ast.Int(2)}},
		&ast.GenericSelection{Control: n, Assocs: []ast.GenericAssoc{{Type: &intT, X: ast.Int(1)}, {X: ast.Int(0)}}},
		&ast.NullaryBounds{Bounds: ast.BoundsUnknown},
		&ast.NullaryBounds{Bounds: ast.BoundsAny},
		&ast.NullaryBounds{Bounds: ast.BoundsNone},
		ast.Count(n),
		&ast.CountBounds{CountKind: ast.ByteCount, Count: n},
		ast.Count(ast.Binary(ast.OpSub, n, ast.Int(1))),
		ast.Range(p, ast.Binary(ast.OpAdd, p, n)),
		ast.Range(ast.Int(0), n),
		&ast.RangeBounds{Lower: p, Upper: ast.Binary(ast.OpAdd, p, n), Rel: &ast.RelativeBoundsClause{Anchor: w.p, Rel: ast.RelativeType, Type: types.CharT()}},
		&ast.InteropType{Type: types.CheckedPointerTo(intT, types.Ptr)},
		&ast.InteropType{Type: types.CheckedPointerTo(intT, types.ArrayPtr)},
		&ast.PositionalParameter{Index: 0, Type: w.bufPtr},
		&ast.PositionalParameter{Index: 1, Offset: 2, Type: intT},
		&ast.BoundsCast{CastKind: ast.DynamicBoundsCast, Type: w.charPtr, X: p, Bounds: ast.Count(n)},
		&ast.BoundsCast{CastKind: ast.AssumeBoundsCast, Type: w.charPtr, X: p},
		&ast.RelativeBoundsClause{Anchor: w.p, Rel: ast.RelativeType, Type: types.CharT()},
		&ast.RelativeBoundsClause{Anchor: w.p, Rel: ast.RelativeValue, Offset: ast.Int(4)},
		&ast.Atomic{Op: ast.AtomicLoad, Args: []ast.Expr{p, ast.Int(5)}},
		&ast.Atomic{Op: ast.AtomicFetchAdd, Args: []ast.Expr{p, ast.Int(1)}},
		&ast.Block{Decl: w.f},
	}
}
