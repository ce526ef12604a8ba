package fixture

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tinyrange/canonbounds/internal/ast"
	"github.com/tinyrange/canonbounds/internal/decl"
	"github.com/tinyrange/canonbounds/internal/parser"
)

func loadBuf(t *testing.T) *Unit {
	t.Helper()
	u, err := Load("testdata/buf.yaml")
	require.NoError(t, err)
	return u
}

func TestLookup(t *testing.T) {
	u := loadBuf(t)
	assert.Equal(t, "buf.c", u.Name)

	tests := []struct {
		name string
		kind decl.Kind
	}{
		{"g", decl.Var},
		{"f", decl.Function},
		{"RED", decl.EnumConstant},
		{"size_t", decl.Typedef},
		{"f::p", decl.Param},
		{"f::i", decl.Var},
		{"f::j", decl.Var},
		{"buf::len", decl.Field},
		{"h::n", decl.Param},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := u.Lookup(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.kind, d.Kind)
		})
	}

	_, err := u.Lookup("x")
	assert.ErrorContains(t, err, `undeclared "x"`)
	_, err = u.Lookup("g::x")
	assert.ErrorContains(t, err, `no function or record "g"`)
	_, err = u.Lookup("f::zz")
	assert.ErrorContains(t, err, `no "zz" in f`)
}

func TestTypeOf(t *testing.T) {
	u := loadBuf(t)
	for name, want := range map[string]string{
		"f::p":       "struct buf *",
		"f::n":       "size_t",
		"node::b":    "struct buf",
		"node::next": "struct node *",
		"f":          "void(struct buf *, size_t)",
		"h":          "int(struct node *, int)",
		"RED":        "enum color",
	} {
		d, err := u.Lookup(name)
		require.NoError(t, err)
		got, ok := u.TypeOf(d)
		require.True(t, ok, name)
		assert.Equal(t, want, got.String(), name)
	}
}

func TestRelation(t *testing.T) {
	u := loadBuf(t)
	n, _ := u.Lookup("f::n")
	i, _ := u.Lookup("f::i")
	j, _ := u.Lookup("f::j")
	rel := u.Relation()
	assert.Same(t, n, rel.Representative(i))
	assert.Same(t, n, rel.Representative(n))
	assert.Same(t, j, rel.Representative(j))
}

func parse(t *testing.T, env parser.Env, src string) string {
	t.Helper()
	e, err := parser.ParseExpr(src, env)
	require.NoError(t, err)
	return ast.String(e)
}

func TestEnv(t *testing.T) {
	u := loadBuf(t)
	env := u.Env()

	assert.Equal(t, "f::p->len", parse(t, env, "p->len"), "unique local resolves")
	assert.Equal(t, "h::n", parse(t, env, "h::n"))
	assert.Equal(t, "RED", parse(t, env, "RED"))
	assert.Equal(t, "(size_t)g", parse(t, env, "(size_t)g"))
	assert.Equal(t, "offsetof(struct node, b.cap)", parse(t, env, "offsetof(struct node, b.cap)"))

	_, err := parser.ParseExpr("n", env)
	assert.ErrorContains(t, err, "undeclared", "n is declared in two functions")

	h, err := u.In("h")
	require.NoError(t, err)
	assert.Equal(t, "h::n", parse(t, h, "n"))
	assert.Equal(t, "h::q->next->b.len", parse(t, h, "q->next->b.len"))
	assert.Equal(t, "g", parse(t, h, "g"))

	f, err := u.In("f")
	require.NoError(t, err)
	assert.Equal(t, "bounds(f::p, f::p + f::j)", parse(t, f, "bounds(p, p + j)"))

	_, err = u.In("g")
	assert.ErrorContains(t, err, `no function "g"`)
}

func TestInPrefersFunctionScopeOverBlocks(t *testing.T) {
	u, err := Parse([]byte(`
functions:
  - name: f
    locals: [{name: x, type: int}]
    blocks:
      - - {name: x, type: int}
        - {name: y, type: int}
`))
	require.NoError(t, err)
	f, err := u.In("f")
	require.NoError(t, err)

	e, err := parser.ParseExpr("x", f)
	require.NoError(t, err)
	ref, ok := e.(*ast.DeclRef)
	require.True(t, ok)
	assert.Equal(t, decl.FunctionScope, ref.Decl.Scope.Kind)

	e, err = parser.ParseExpr("y", f)
	require.NoError(t, err)
	assert.Equal(t, decl.BlockScope, e.(*ast.DeclRef).Decl.Scope.Kind, "block locals resolve when nothing shadows them")
}

func TestRedeclaredGlobal(t *testing.T) {
	u, err := Parse([]byte(`
globals:
  - {name: g, type: int}
  - {name: g, type: int}
`))
	require.NoError(t, err)
	g, err := u.Lookup("g")
	require.NoError(t, err)
	require.NotNil(t, g.Prev)
	assert.Same(t, g.Prev, g.Canonical())
}

func TestEqualitiesResolveLocals(t *testing.T) {
	u, err := Parse([]byte(`
functions:
  - name: f
    params: [{name: n, type: int}]
    locals: [{name: i, type: int}]
equalities:
  - [n, i]
`))
	require.NoError(t, err)
	n, _ := u.Lookup("f::n")
	i, _ := u.Lookup("f::i")
	assert.Same(t, n, u.Relation().Representative(i))
}

func TestEmptyDocument(t *testing.T) {
	u, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, "unit", u.Name)
	assert.Empty(t, u.Scope.Decls())
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name, doc, want string
	}{
		{"unknown key", "unit: a\nrecord: []\n", "decode fixture"},
		{"duplicate record", "records: [{name: s}, {name: s}]\n", "record s declared twice"},
		{"duplicate tag", "records: [{name: s}]\nenums: [{name: s}]\n", "tag s declared twice"},
		{"bad type", "globals: [{name: x, type: \"struct nope\"}]\n", "type of x: unknown tag struct nope"},
		{"duplicate field", "records: [{name: s, fields: [{name: a, type: int}, {name: a, type: int}]}]\n", "record s: a declared twice"},
		{"duplicate local", "functions: [{name: f, params: [{name: a, type: int}], locals: [{name: a, type: int}]}]\n", "function f: a declared twice"},
		{"equality of field", "records: [{name: s, fields: [{name: a, type: int}]}]\nequalities: [[s::a]]\n", "is a field, not a variable"},
		{"equality of unknown", "equalities: [[x]]\n", "equalities[0]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestLoadMissing(t *testing.T) {
	_, err := Load("testdata/missing.yaml")
	assert.ErrorContains(t, err, "read fixture")
}
