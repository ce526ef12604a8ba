package canon_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tinyrange/canonbounds/internal/ast"
	"github.com/tinyrange/canonbounds/internal/canon"
	"github.com/tinyrange/canonbounds/internal/decl"
	"github.com/tinyrange/canonbounds/internal/types"
)

func typedefOf(s *decl.Scope, name string, t types.QualType) types.QualType {
	return types.QualType{Type: &types.Typedef{Decl: s.Declare(decl.Typedef, name), Underlying: t}}
}

func TestTypedefsCompareAsUnderlying(t *testing.T) {
	tu := decl.NewTranslationUnit("t.c")
	size := typedefOf(tu, "size_t", types.UnsignedLongT())
	l := newCmp(nil)

	assert.Equal(t, canon.Equal, l.CompareType(size, types.UnsignedLongT()))
	assert.Equal(t, canon.Equal, l.CompareType(types.PointerTo(size), types.PointerTo(types.UnsignedLongT())))

	constSize := typedefOf(tu, "csize_t", types.UnsignedLongT().With(types.Const))
	assert.Equal(t, canon.Equal, l.CompareType(constSize, types.UnsignedLongT().With(types.Const)))
	assert.Equal(t, canon.GreaterThan, l.CompareType(constSize, size))
}

func TestTypeOrderRules(t *testing.T) {
	w := newWorld()
	l := newCmp(nil)
	intT := types.IntT()
	tests := []struct {
		name string
		a, b types.QualType
		want canon.Result
	}{
		{"qualifiers first", intT.With(types.Const), types.CharT(), canon.GreaterThan},
		{"volatile above const", intT.With(types.Volatile), intT.With(types.Const), canon.GreaterThan},
		{"class", intT, types.PointerTo(intT), canon.LessThan},
		{"builtin kind", types.CharT(), intT, canon.LessThan},
		{"checked kind", types.PointerTo(intT), types.CheckedPointerTo(intT, types.Ptr), canon.LessThan},
		{"pointee", types.PointerTo(types.CharT()), types.PointerTo(intT), canon.LessThan},
		{"array size", types.QualType{Type: &types.Array{Elem: intT, Size: 4}}, types.QualType{Type: &types.Array{Elem: intT, Size: 8}}, canon.LessThan},
		{"incomplete array", types.QualType{Type: &types.Array{Elem: intT, Size: -1}}, types.QualType{Type: &types.Array{Elem: intT, Size: 0}}, canon.LessThan},
		{"union flag", w.bufT, types.QualType{Type: &types.Record{Decl: w.buf, Union: true}}, canon.LessThan},
		{"variadic", types.QualType{Type: &types.Function{Result: intT}}, types.QualType{Type: &types.Function{Result: intT, Variadic: true}}, canon.LessThan},
		{"arity", types.QualType{Type: &types.Function{Result: intT, Params: []types.QualType{intT}}}, types.QualType{Type: &types.Function{Result: intT}}, canon.GreaterThan},
		{"null type", types.QualType{}, intT, canon.LessThan},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, l.CompareType(tt.a, tt.b))
			assert.Equal(t, tt.want.Reverse(), l.CompareType(tt.b, tt.a))
		})
	}
}

func TestAnnotatedTypesCompareBounds(t *testing.T) {
	w := newWorld()
	l := newCmp(canon.MapRelation{w.i: w.n})
	ptr := types.CheckedPointerTo(types.IntT(), types.ArrayPtr)
	annotated := func(b ast.Expr) types.QualType {
		return types.QualType{Type: &types.Annotated{Base: ptr, Bounds: b}}
	}
	assert.Equal(t, canon.Equal, l.CompareType(annotated(ast.Count(ast.Ref(w.n))), annotated(ast.Count(ast.Ref(w.i)))))
	assert.NotEqual(t, canon.Equal, l.CompareType(annotated(ast.Count(ast.Ref(w.n))), annotated(ast.Count(ast.Ref(w.g)))))
	assert.Equal(t, l.FingerprintType(annotated(ast.Count(ast.Ref(w.n)))), l.FingerprintType(annotated(ast.Count(ast.Ref(w.i)))))
}

func TestCachedResolverGivesSameOrder(t *testing.T) {
	tu := decl.NewTranslationUnit("c.c")
	size := typedefOf(tu, "size_t", types.UnsignedLongT())
	r, err := types.NewCachedResolver(types.Canonicalizer{}, 16)
	require.NoError(t, err)
	cached := canon.New(canon.NewContext(r), nil)
	plain := newCmp(nil)
	for _, pair := range [][2]types.QualType{
		{size, types.UnsignedLongT()},
		{types.PointerTo(size), types.IntT()},
		{types.IntT(), size},
	} {
		assert.Equal(t, plain.CompareType(pair[0], pair[1]), cached.CompareType(pair[0], pair[1]))
	}
}
