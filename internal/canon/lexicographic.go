// Package canon orders the expressions, declarations and types that occur in
// bounds expressions. The ordering is a strict weak ordering, so results can
// key sorted collections, and it treats variables that an EqualityRelation
// reports as equal as the same variable.
package canon

import (
	"fmt"
	"reflect"

	"github.com/go-logr/logr"

	"github.com/tinyrange/canonbounds/internal/ast"
	"github.com/tinyrange/canonbounds/internal/decl"
	"github.com/tinyrange/canonbounds/internal/types"
)

// Context carries the compilation-wide authorities a comparator consults.
type Context struct {
	Types types.Resolver
}

// NewContext returns a context using r as the canonical type authority. A
// nil r selects types.Canonicalizer.
func NewContext(r types.Resolver) *Context {
	if r == nil {
		r = types.Canonicalizer{}
	}
	return &Context{Types: r}
}

// Option configures a Lexicographic at construction.
type Option func(*Lexicographic)

// WithTrace logs every non-Equal decision, and the rule that made it, to
// log at verbosity 1.
func WithTrace(log logr.Logger) Option {
	return func(l *Lexicographic) { l.trace = log }
}

// Lexicographic compares bounds expressions field by field. It holds no
// mutable state and may be shared between goroutines if its resolver and
// equality relation allow concurrent reads.
type Lexicographic struct {
	types     types.Resolver
	equalVars EqualityRelation
	trace     logr.Logger
}

// New binds a comparator to ctx and to the equality facts in eq. eq may be
// nil, in which case every variable is its own representative.
func New(ctx *Context, eq EqualityRelation, opts ...Option) *Lexicographic {
	if ctx == nil || ctx.Types == nil {
		ctx = NewContext(nil)
	}
	l := &Lexicographic{types: ctx.Types, equalVars: eq, trace: logr.Discard()}
	for _, o := range opts {
		o(l)
	}
	return l
}

// CompareExpr orders two expression trees. Absent expressions order before
// present ones. Parentheses are ignored.
func (l *Lexicographic) CompareExpr(e1, e2 ast.Expr) Result {
	e1, e2 = ast.IgnoreParens(e1), ast.IgnoreParens(e2)
	n1, n2 := absent(e1), absent(e2)
	switch {
	case n1 && n2:
		return Equal
	case n1:
		return l.decide("null", LessThan, e1, e2)
	case n2:
		return l.decide("null", GreaterThan, e1, e2)
	}
	if e1 == e2 {
		return Equal
	}

	k1, k2 := e1.Kind(), e2.Kind()
	if k1 != k2 {
		return l.decide("kind", compareOrdered(k1, k2), e1, e2)
	}

	switch a := e1.(type) {
	case *ast.Predefined:
		return l.comparePredefined(a, as[*ast.Predefined](e2))
	case *ast.DeclRef:
		return l.compareDeclRef(a, as[*ast.DeclRef](e2))
	case *ast.IntegerLiteral:
		return l.compareIntegerLiteral(a, as[*ast.IntegerLiteral](e2))
	case *ast.FloatingLiteral:
		return l.compareFloatingLiteral(a, as[*ast.FloatingLiteral](e2))
	case *ast.StringLiteral:
		return l.compareStringLiteral(a, as[*ast.StringLiteral](e2))
	case *ast.CharacterLiteral:
		return l.compareCharacterLiteral(a, as[*ast.CharacterLiteral](e2))
	case *ast.UnaryOperator:
		return l.compareUnaryOperator(a, as[*ast.UnaryOperator](e2))
	case *ast.OffsetOf:
		return l.compareOffsetOf(a, as[*ast.OffsetOf](e2))
	case *ast.UnaryExprOrTypeTrait:
		return l.compareTrait(a, as[*ast.UnaryExprOrTypeTrait](e2))
	case *ast.Member:
		return l.compareMember(a, as[*ast.Member](e2))
	case *ast.BinaryOperator:
		return l.compareBinaryOperator(a, as[*ast.BinaryOperator](e2))
	case *ast.CompoundAssignOperator:
		return l.compareCompoundAssign(a, as[*ast.CompoundAssignOperator](e2))
	case *ast.ImplicitCast:
		return l.compareImplicitCast(a, as[*ast.ImplicitCast](e2))
	case *ast.CStyleCast:
		return l.compareCStyleCast(a, as[*ast.CStyleCast](e2))
	case *ast.CompoundLiteral:
		return l.compareCompoundLiteral(a, as[*ast.CompoundLiteral](e2))
	case *ast.GenericSelection:
		return l.compareGenericSelection(a, as[*ast.GenericSelection](e2))
	case *ast.NullaryBounds:
		return l.compareNullaryBounds(a, as[*ast.NullaryBounds](e2))
	case *ast.CountBounds:
		return l.compareCountBounds(a, as[*ast.CountBounds](e2))
	case *ast.RangeBounds:
		return l.compareRangeBounds(a, as[*ast.RangeBounds](e2))
	case *ast.InteropType:
		return l.compareInteropType(a, as[*ast.InteropType](e2))
	case *ast.PositionalParameter:
		return l.comparePositionalParameter(a, as[*ast.PositionalParameter](e2))
	case *ast.BoundsCast:
		return l.compareBoundsCast(a, as[*ast.BoundsCast](e2))
	case *ast.RelativeBoundsClause:
		return l.compareRelativeBoundsClause(a, as[*ast.RelativeBoundsClause](e2))
	case *ast.Atomic:
		return l.compareAtomic(a, as[*ast.Atomic](e2))
	case *ast.Block:
		return l.compareBlock(a, as[*ast.Block](e2))
	}
	// Paren never reaches here.
	panic(invariant("dispatch", "no comparison for %s (%T)", k1, e1))
}

// as narrows e2 to the Go type its kind tag promises.
func as[T ast.Expr](e ast.Expr) T {
	t, ok := e.(T)
	if !ok {
		var want T
		panic(invariant("dispatch", "node of kind %s is %T, want %T", e.Kind(), e, want))
	}
	return t
}

// absent reports nil interfaces and typed nil pointers alike.
func absent(e ast.Expr) bool {
	if e == nil {
		return true
	}
	v := reflect.ValueOf(e)
	return v.Kind() == reflect.Pointer && v.IsNil()
}

// decide returns r, logging it first when it is a decision and tracing is on.
func (l *Lexicographic) decide(rule string, r Result, lhs, rhs any) Result {
	if r == Equal {
		return r
	}
	if log := l.trace.V(1); log.Enabled() {
		log.Info("ordered", "rule", rule, "result", r.String(), "lhs", render(lhs), "rhs", render(rhs))
	}
	return r
}

func render(v any) string {
	switch v := v.(type) {
	case ast.Expr:
		if absent(v) {
			return "<null>"
		}
		return ast.String(v)
	case *decl.Decl:
		return v.Qualified()
	case types.QualType:
		return v.String()
	case fmt.Stringer:
		return v.String()
	}
	return fmt.Sprint(v)
}
