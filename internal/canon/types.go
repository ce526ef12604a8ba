package canon

import (
	"github.com/tinyrange/canonbounds/internal/ast"
	"github.com/tinyrange/canonbounds/internal/types"
)

// CompareType resolves both types through the context's type authority and
// orders them by qualifiers, then by canonical shape.
func (l *Lexicographic) CompareType(t1, t2 types.QualType) Result {
	if t1 == t2 {
		return Equal
	}
	return l.compareCanonical(l.types.Canonical(t1), l.types.Canonical(t2))
}

func (l *Lexicographic) compareCanonical(t1, t2 types.QualType) Result {
	if r := l.decide("Type.quals", compareOrdered(t1.Quals, t2.Quals), t1, t2); r != Equal {
		return r
	}
	return l.compareShape(t1.Type, t2.Type)
}

func (l *Lexicographic) compareShape(a, b types.Type) Result {
	if a == b {
		return Equal
	}
	switch {
	case a == nil:
		return l.decide("Type.null", LessThan, "<null>", b)
	case b == nil:
		return l.decide("Type.null", GreaterThan, a, "<null>")
	}
	if r := l.decide("Type.class", compareOrdered(a.Class(), b.Class()), types.QualType{Type: a}, types.QualType{Type: b}); r != Equal {
		return r
	}

	switch t1 := a.(type) {
	case *types.Builtin:
		t2 := b.(*types.Builtin)
		return l.decide("Type.builtin", compareOrdered(t1.Kind, t2.Kind), t1.Kind, t2.Kind)
	case *types.Pointer:
		t2 := b.(*types.Pointer)
		if r := l.decide("Type.pointer.checked", compareOrdered(t1.Checked, t2.Checked), types.QualType{Type: t1}, types.QualType{Type: t2}); r != Equal {
			return r
		}
		return l.compareCanonical(t1.Elem, t2.Elem)
	case *types.Array:
		t2 := b.(*types.Array)
		if r := l.decide("Type.array.checked", compareOrdered(t1.Checked, t2.Checked), types.QualType{Type: t1}, types.QualType{Type: t2}); r != Equal {
			return r
		}
		if r := l.decide("Type.array.size", compareOrdered(t1.Size, t2.Size), t1.Size, t2.Size); r != Equal {
			return r
		}
		return l.compareCanonical(t1.Elem, t2.Elem)
	case *types.Function:
		t2 := b.(*types.Function)
		if r := l.decide("Type.function.variadic", compareBool(t1.Variadic, t2.Variadic), types.QualType{Type: t1}, types.QualType{Type: t2}); r != Equal {
			return r
		}
		if r := l.decide("Type.function.arity", compareOrdered(len(t1.Params), len(t2.Params)), len(t1.Params), len(t2.Params)); r != Equal {
			return r
		}
		if r := l.compareCanonical(t1.Result, t2.Result); r != Equal {
			return r
		}
		for i := range t1.Params {
			if r := l.compareCanonical(t1.Params[i], t2.Params[i]); r != Equal {
				return r
			}
		}
		return Equal
	case *types.Record:
		t2 := b.(*types.Record)
		if r := l.decide("Type.record.union", compareBool(t1.Union, t2.Union), types.QualType{Type: t1}, types.QualType{Type: t2}); r != Equal {
			return r
		}
		return l.CompareDecl(t1.Decl, t2.Decl)
	case *types.Enum:
		return l.CompareDecl(t1.Decl, b.(*types.Enum).Decl)
	case *types.Typedef:
		// Only reached with a resolver that keeps sugar.
		t2 := b.(*types.Typedef)
		if r := l.CompareDecl(t1.Decl, t2.Decl); r != Equal {
			return r
		}
		return l.CompareType(t1.Underlying, t2.Underlying)
	case *types.Annotated:
		t2 := b.(*types.Annotated)
		if r := l.compareCanonical(t1.Base, t2.Base); r != Equal {
			return r
		}
		return l.CompareExpr(boundsOf(t1), boundsOf(t2))
	}
	panic(invariant("Type.class", "no comparison for type class %d (%T)", a.Class(), a))
}

func boundsOf(t *types.Annotated) ast.Expr {
	if t.Bounds == nil {
		return nil
	}
	e, ok := t.Bounds.(ast.Expr)
	if !ok {
		panic(invariant("Type.annotated", "bounds annotation is %T, not an expression", t.Bounds))
	}
	return e
}
