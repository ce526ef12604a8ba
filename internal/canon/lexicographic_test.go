package canon_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/go-logr/logr/funcr"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tinyrange/canonbounds/internal/ast"
	"github.com/tinyrange/canonbounds/internal/canon"
	"github.com/tinyrange/canonbounds/internal/decl"
	"github.com/tinyrange/canonbounds/internal/types"
)

func newCmp(eq canon.EqualityRelation, opts ...canon.Option) *canon.Lexicographic {
	return canon.New(canon.NewContext(nil), eq, opts...)
}

func TestCorpusCoversEveryKind(t *testing.T) {
	seen := map[ast.Kind]bool{}
	for _, e := range newWorld().corpus() {
		seen[e.Kind()] = true
	}
	for k := ast.KindPredefined; k <= ast.KindBlock; k++ {
		assert.True(t, seen[k], "corpus has no %s node", k)
	}
}

func TestReflexive(t *testing.T) {
	l := newCmp(nil)
	a, b := newWorld().corpus(), newWorld().corpus()
	for i := range a {
		assert.Equal(t, canon.Equal, l.CompareExpr(a[i], a[i]), "%s vs itself", ast.String(a[i]))
		assert.Equal(t, canon.Equal, l.CompareExpr(a[i], b[i]), "%s vs rebuilt copy", ast.String(a[i]))
	}
}

func TestCorpusEntriesDistinct(t *testing.T) {
	l := newCmp(nil)
	c := newWorld().corpus()
	for i := range c {
		for j := range c {
			if i != j {
				assert.NotEqual(t, canon.Equal, l.CompareExpr(c[i], c[j]), "%s vs %s", ast.String(c[i]), ast.String(c[j]))
			}
		}
	}
}

func TestAntisymmetric(t *testing.T) {
	l := newCmp(nil)
	c := newWorld().corpus()
	for _, a := range c {
		for _, b := range c {
			ab, ba := l.CompareExpr(a, b), l.CompareExpr(b, a)
			assert.Equal(t, ab, ba.Reverse(), "%s vs %s", ast.String(a), ast.String(b))
		}
	}
}

func TestTransitive(t *testing.T) {
	l := newCmp(nil)
	c := newWorld().corpus()
	for _, a := range c {
		for _, b := range c {
			if l.CompareExpr(a, b) == canon.GreaterThan {
				continue
			}
			for _, x := range c {
				if l.CompareExpr(b, x) == canon.GreaterThan {
					continue
				}
				if l.CompareExpr(a, x) == canon.GreaterThan {
					t.Errorf("%s <= %s <= %s but %s > %s", ast.String(a), ast.String(b), ast.String(x), ast.String(a), ast.String(x))
				}
			}
		}
	}
}

func TestKindPrecedenceDominates(t *testing.T) {
	l := newCmp(nil)
	c := newWorld().corpus()
	for _, a := range c {
		for _, b := range c {
			ka, kb := ast.IgnoreParens(a).Kind(), ast.IgnoreParens(b).Kind()
			if ka == kb {
				continue
			}
			want := canon.LessThan
			if ka > kb {
				want = canon.GreaterThan
			}
			assert.Equal(t, want, l.CompareExpr(a, b), "%s vs %s", ast.String(a), ast.String(b))
		}
	}
}

func TestSortIsDeterministic(t *testing.T) {
	l := newCmp(nil)
	render := func(es []ast.Expr) []string {
		out := make([]string, len(es))
		for i, e := range es {
			out[i] = ast.String(e)
		}
		return out
	}
	a := newWorld().corpus()
	b := newWorld().corpus()
	// Reverse the second input so the sort has real work to do.
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
	l.Sort(a)
	l.Sort(b)
	if diff := cmp.Diff(render(a), render(b)); diff != "" {
		t.Errorf("sorted orders differ (-forward +reversed):\n%s", diff)
	}
}

func TestOracleSubstitution(t *testing.T) {
	w := newWorld()
	x, y := ast.Ref(w.n), ast.Ref(w.i)

	assert.NotEqual(t, canon.Equal, newCmp(nil).CompareExpr(x, y))

	r := w.tu.Declare(decl.Var, "r")
	s := w.tu.Declare(decl.Var, "s")
	m := canon.MapRelation{w.n: r, w.i: r}
	l := newCmp(m)
	assert.Equal(t, canon.Equal, l.CompareExpr(x, y))
	assert.Equal(t, canon.Equal, l.CompareExpr(ast.Count(x), ast.Count(y)))
	assert.Equal(t, l.Fingerprint(x), l.Fingerprint(y))

	// The oracle is consulted on every call, so later facts take effect.
	m[w.i] = s
	assert.NotEqual(t, canon.Equal, l.CompareExpr(x, y))
	assert.Equal(t, l.CompareExpr(x, y), l.CompareExpr(ast.Ref(r), ast.Ref(s)))
}

func TestOracleIgnoresNonVariables(t *testing.T) {
	w := newWorld()
	l := newCmp(canon.MapRelation{w.len: w.cap})
	p := ast.Ref(w.p)
	a := &ast.Member{Base: p, Field: w.len, Arrow: true}
	b := &ast.Member{Base: p, Field: w.cap, Arrow: true}
	assert.NotEqual(t, canon.Equal, l.CompareExpr(a, b))
}

func TestClassesRelation(t *testing.T) {
	w := newWorld()
	c := canon.NewClasses([]*decl.Decl{w.n, w.i})
	c.Add(w.i, w.j)
	assert.Same(t, w.n, c.Representative(w.j))
	assert.ElementsMatch(t, []*decl.Decl{w.n, w.i, w.j}, c.Members(w.i))
	assert.Same(t, w.g, c.Representative(w.g))

	l := newCmp(c)
	assert.Equal(t, canon.Equal, l.CompareExpr(ast.Ref(w.j), ast.Ref(w.n)))
	assert.NotEqual(t, canon.Equal, l.CompareExpr(ast.Ref(w.j), ast.Ref(w.g)))
}

func TestClassesMembersIsACopy(t *testing.T) {
	w := newWorld()
	c := canon.NewClasses([]*decl.Decl{w.n, w.i})
	ms := c.Members(w.n)
	ms[0] = w.g
	assert.ElementsMatch(t, []*decl.Decl{w.n, w.i}, c.Members(w.i))
	assert.Same(t, w.n, c.Representative(w.i))
}

func TestOperandOrderMatters(t *testing.T) {
	w := newWorld()
	l := newCmp(nil)
	a, b := ast.Ref(w.n), ast.Ref(w.i)
	ab := ast.Binary(ast.OpAdd, a, b)
	ba := ast.Binary(ast.OpAdd, b, a)
	r := l.CompareExpr(ab, ba)
	assert.NotEqual(t, canon.Equal, r)
	assert.Equal(t, r.Reverse(), l.CompareExpr(ba, ab))
}

func TestAbsentOrdering(t *testing.T) {
	l := newCmp(nil)
	var typedNil *ast.DeclRef
	present := ast.Int(0)
	assert.Equal(t, canon.LessThan, l.CompareExpr(nil, present))
	assert.Equal(t, canon.GreaterThan, l.CompareExpr(present, nil))
	assert.Equal(t, canon.Equal, l.CompareExpr(nil, nil))
	assert.Equal(t, canon.Equal, l.CompareExpr(typedNil, nil))
	assert.Equal(t, canon.LessThan, l.CompareExpr(typedNil, present))

	w := newWorld()
	withBounds := &ast.BoundsCast{CastKind: ast.DynamicBoundsCast, Type: w.charPtr, X: ast.Ref(w.p), Bounds: ast.Count(ast.Ref(w.n))}
	without := &ast.BoundsCast{CastKind: ast.DynamicBoundsCast, Type: w.charPtr, X: ast.Ref(w.p)}
	assert.Equal(t, canon.LessThan, l.CompareExpr(without, withBounds))
}

func TestIntegerLiteralWidth(t *testing.T) {
	l := newCmp(nil)
	assert.Equal(t, canon.Equal, l.CompareExpr(ast.IntWidth(5, 32, true), ast.IntWidth(5, 32, true)))
	first := l.CompareExpr(ast.IntWidth(5, 32, true), ast.IntWidth(5, 64, true))
	require.NotEqual(t, canon.Equal, first)
	for range 10 {
		assert.Equal(t, first, l.CompareExpr(ast.IntWidth(5, 32, true), ast.IntWidth(5, 64, true)))
		assert.Equal(t, first.Reverse(), l.CompareExpr(ast.IntWidth(5, 64, true), ast.IntWidth(5, 32, true)))
	}
}

func TestRangeVersusCount(t *testing.T) {
	w := newWorld()
	l := newCmp(nil)
	n := ast.Ref(w.n)
	rng, cnt := ast.Range(ast.Int(0), n), ast.Count(n)
	first := l.CompareExpr(rng, cnt)
	require.NotEqual(t, canon.Equal, first)
	for range 10 {
		assert.Equal(t, first, l.CompareExpr(rng, cnt))
		assert.Equal(t, first.Reverse(), l.CompareExpr(cnt, rng))
	}
}

func TestMemberAccess(t *testing.T) {
	w := newWorld()
	l := newCmp(nil)
	p := ast.Ref(w.p)
	lenA := &ast.Member{Base: p, Field: w.len, Arrow: true}
	lenB := &ast.Member{Base: ast.Ref(w.p), Field: w.len, Arrow: true}
	capM := &ast.Member{Base: p, Field: w.cap, Arrow: true}
	assert.Equal(t, canon.Equal, l.CompareExpr(lenA, lenB))
	assert.NotEqual(t, canon.Equal, l.CompareExpr(lenA, capM))
	// len is declared before cap, but names decide first.
	assert.Equal(t, canon.GreaterThan, l.CompareExpr(lenA, capM))
}

func TestImplicitCastIgnoresCastKind(t *testing.T) {
	w := newWorld()
	l := newCmp(nil)
	n := ast.Ref(w.n)
	a := &ast.ImplicitCast{Type: types.IntT(), CastKind: ast.CastLValueToRValue, X: n}
	b := &ast.ImplicitCast{Type: types.IntT(), CastKind: ast.CastNoOp, X: n}
	assert.Equal(t, canon.Equal, l.CompareExpr(a, b))
	assert.Equal(t, l.Fingerprint(a), l.Fingerprint(b))

	c := &ast.CStyleCast{Type: types.IntT(), CastKind: ast.CastLValueToRValue, X: n}
	d := &ast.CStyleCast{Type: types.IntT(), CastKind: ast.CastNoOp, X: n}
	assert.NotEqual(t, canon.Equal, l.CompareExpr(c, d))
}

func TestParensIgnored(t *testing.T) {
	w := newWorld()
	l := newCmp(nil)
	n := ast.Ref(w.n)
	assert.Equal(t, canon.Equal, l.CompareExpr(&ast.Paren{X: &ast.Paren{X: n}}, n))
	assert.Equal(t, canon.Equal, l.CompareExpr(ast.Count(&ast.Paren{X: n}), ast.Count(n)))
}

func TestTraceDoesNotChangeResults(t *testing.T) {
	var lines []string
	sink := funcr.New(func(prefix, args string) {
		lines = append(lines, args)
	}, funcr.Options{Verbosity: 1})

	quiet := newCmp(nil)
	traced := newCmp(nil, canon.WithTrace(sink))
	c := newWorld().corpus()
	for _, a := range c {
		for _, b := range c {
			require.Equal(t, quiet.CompareExpr(a, b), traced.CompareExpr(a, b))
		}
	}
	require.NotEmpty(t, lines)

	lines = nil
	w := newWorld()
	traced.CompareExpr(ast.Ref(w.n), ast.Int(1))
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], `"rule"="kind"`)
	assert.Contains(t, lines[0], `"result"="LessThan"`)

	lines = nil
	traced.CompareExpr(ast.Int(1), ast.Int(1))
	assert.Empty(t, lines, "Equal outcomes are not traced")
}

func TestTraceNeedsVerbosity(t *testing.T) {
	var lines []string
	sink := funcr.New(func(prefix, args string) { lines = append(lines, args) }, funcr.Options{})
	l := newCmp(nil, canon.WithTrace(sink))
	l.CompareExpr(ast.Int(1), ast.Int(2))
	assert.Empty(t, lines)
}

func TestFingerprintConsistentWithEqual(t *testing.T) {
	l := newCmp(nil)
	a, b := newWorld().corpus(), newWorld().corpus()
	for i := range a {
		assert.Equal(t, l.Fingerprint(a[i]), l.Fingerprint(b[i]), ast.String(a[i]))
	}
	seen := map[uint64]string{}
	for _, e := range a {
		h := l.Fingerprint(e)
		if prev, dup := seen[h]; dup {
			t.Logf("fingerprint collision: %s and %s", prev, ast.String(e))
		}
		seen[h] = ast.String(e)
	}
	assert.Greater(t, len(seen), len(a)*9/10)
}

func TestInvariantViolations(t *testing.T) {
	w := newWorld()
	broken := relationFunc(func(*decl.Decl) *decl.Decl { return nil })
	l := newCmp(broken)
	requireInvariant(t, "DeclRef.representative", func() {
		l.CompareExpr(ast.Ref(w.n), ast.Ref(w.i))
	})

	bad := types.QualType{Type: &types.Annotated{Base: types.IntT(), Bounds: "count(n)"}}
	requireInvariant(t, "Type.annotated", func() {
		newCmp(nil).CompareType(bad, types.QualType{Type: &types.Annotated{Base: types.IntT(), Bounds: ast.Int(1)}})
	})
}

type relationFunc func(*decl.Decl) *decl.Decl

func (f relationFunc) Representative(d *decl.Decl) *decl.Decl { return f(d) }

func requireInvariant(t *testing.T, rule string, fn func()) {
	t.Helper()
	defer func() {
		r := recover()
		require.NotNil(t, r, "expected a panic")
		err, ok := r.(*canon.InvariantError)
		require.True(t, ok, "panic value %T is not *canon.InvariantError", r)
		assert.Equal(t, rule, err.Rule)
		assert.True(t, strings.HasPrefix(err.Error(), "canon: "), err.Error())
	}()
	fn()
}

func ExampleLexicographic_CompareExpr() {
	tu := decl.NewTranslationUnit("ex.c")
	f := tu.Declare(decl.Function, "f")
	body := tu.Open(f)
	n := body.Declare(decl.Param, "n")
	m := body.Declare(decl.Param, "m")

	l := canon.New(nil, canon.MapRelation{m: n})
	fmt.Println(l.CompareExpr(ast.Count(ast.Ref(n)), ast.Count(ast.Ref(m))))
	fmt.Println(l.CompareExpr(ast.Count(ast.Ref(n)), ast.Range(ast.Int(0), ast.Ref(n))))
	// Output:
	// Equal
	// LessThan
}
