package canon

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"

	"github.com/tinyrange/canonbounds/internal/ast"
	"github.com/tinyrange/canonbounds/internal/decl"
	"github.com/tinyrange/canonbounds/internal/types"
)

// Fingerprint hashes e so that expressions comparing Equal under l hash
// alike. It feeds the digest exactly the fields CompareExpr inspects, after
// the same representative substitution and type canonicalization.
func (l *Lexicographic) Fingerprint(e ast.Expr) uint64 {
	h := hasher{l: l, d: xxhash.New()}
	h.expr(e)
	return h.d.Sum64()
}

// FingerprintType hashes t consistently with CompareType.
func (l *Lexicographic) FingerprintType(t types.QualType) uint64 {
	h := hasher{l: l, d: xxhash.New()}
	h.qualType(l.types.Canonical(t))
	return h.d.Sum64()
}

const nullTag = 0xff

type hasher struct {
	l   *Lexicographic
	d   *xxhash.Digest
	buf [binary.MaxVarintLen64]byte
}

func (h *hasher) num(v int64) {
	n := binary.PutVarint(h.buf[:], v)
	_, _ = h.d.Write(h.buf[:n])
}

func (h *hasher) flag(b bool) {
	if b {
		h.num(1)
	} else {
		h.num(0)
	}
}

func (h *hasher) blob(b []byte) {
	h.num(int64(len(b)))
	_, _ = h.d.Write(b)
}

func (h *hasher) str(s string) {
	h.num(int64(len(s)))
	_, _ = h.d.WriteString(s)
}

func (h *hasher) exprs(xs []ast.Expr) {
	h.num(int64(len(xs)))
	for _, x := range xs {
		h.expr(x)
	}
}

func (h *hasher) expr(e ast.Expr) {
	e = ast.IgnoreParens(e)
	if absent(e) {
		h.num(nullTag)
		return
	}
	h.num(int64(e.Kind()))
	switch e := e.(type) {
	case *ast.Predefined:
		h.num(int64(e.Ident))
	case *ast.DeclRef:
		h.decl(h.l.representative(e.Decl))
	case *ast.IntegerLiteral:
		v := bigOrZero(e.Value)
		h.num(int64(v.Sign()))
		h.blob(v.Bytes())
		h.num(int64(e.Width))
		h.flag(e.Signed)
	case *ast.FloatingLiteral:
		h.num(floatKey(e.Value))
		h.num(int64(e.Semantics))
	case *ast.StringLiteral:
		h.blob(e.Value)
		h.num(int64(e.CharKind))
	case *ast.CharacterLiteral:
		h.num(int64(e.Value))
		h.num(int64(e.CharKind))
	case *ast.UnaryOperator:
		h.num(int64(e.Op))
		h.expr(e.X)
	case *ast.BinaryOperator:
		h.num(int64(e.Op))
		h.expr(e.Left)
		h.expr(e.Right)
	case *ast.CompoundAssignOperator:
		h.num(int64(e.Op))
		h.expr(e.Left)
		h.expr(e.Right)
	case *ast.ImplicitCast:
		h.typ(e.Type)
		h.expr(e.X)
	case *ast.CStyleCast:
		h.typ(e.Type)
		h.num(int64(e.CastKind))
		h.expr(e.X)
	case *ast.Member:
		h.expr(e.Base)
		h.decl(e.Field)
		h.flag(e.Arrow)
	case *ast.CompoundLiteral:
		h.typ(e.Type)
		h.exprs(e.Inits)
	case *ast.GenericSelection:
		h.expr(e.Control)
		h.num(int64(len(e.Assocs)))
		for _, a := range e.Assocs {
			h.flag(a.Type != nil)
			if a.Type != nil {
				h.typ(*a.Type)
			}
			h.expr(a.X)
		}
	case *ast.UnaryExprOrTypeTrait:
		h.num(int64(e.Trait))
		h.flag(e.Type == nil)
		if e.Type != nil {
			h.typ(*e.Type)
		} else {
			h.expr(e.X)
		}
	case *ast.OffsetOf:
		h.typ(e.Type)
		h.num(int64(len(e.Designators)))
		for _, d := range e.Designators {
			h.flag(d.Field == nil)
			if d.Field != nil {
				h.decl(d.Field)
			} else {
				h.expr(d.Index)
			}
		}
	case *ast.Atomic:
		h.num(int64(e.Op))
		h.exprs(e.Args)
	case *ast.Block:
		h.decl(e.Decl)
	case *ast.NullaryBounds:
		h.num(int64(e.Bounds))
	case *ast.CountBounds:
		h.num(int64(e.CountKind))
		h.expr(e.Count)
	case *ast.RangeBounds:
		h.expr(e.Lower)
		h.expr(e.Upper)
		if e.Rel == nil {
			h.num(nullTag)
		} else {
			h.relative(e.Rel)
		}
	case *ast.InteropType:
		h.typ(e.Type)
	case *ast.PositionalParameter:
		h.num(int64(e.Index))
		h.num(e.Offset)
		h.typ(e.Type)
	case *ast.BoundsCast:
		h.num(int64(e.CastKind))
		h.typ(e.Type)
		h.expr(e.X)
		h.expr(e.Bounds)
	case *ast.RelativeBoundsClause:
		h.relative(e)
	default:
		panic(invariant("fingerprint", "no hash for %s (%T)", e.Kind(), e))
	}
}

func (h *hasher) relative(r *ast.RelativeBoundsClause) {
	h.decl(r.Anchor)
	h.num(int64(r.Rel))
	if r.Rel == ast.RelativeType {
		h.typ(r.Type)
	} else {
		h.expr(r.Offset)
	}
}

// decl hashes the structural key CompareDecl orders by.
func (h *hasher) decl(d *decl.Decl) {
	d = d.Canonical()
	if d == nil {
		h.num(nullTag)
		return
	}
	h.num(int64(d.Scope.Depth()))
	for s := d.Scope; s != nil; s = s.Parent {
		h.num(int64(s.Kind))
		h.str(s.Name)
		h.num(int64(s.Seq))
		h.num(int64(ownerSeq(s)))
	}
	h.str(d.Name)
	h.num(int64(d.Kind))
	h.num(int64(d.Seq))
}

func (h *hasher) typ(t types.QualType) { h.qualType(h.l.types.Canonical(t)) }

func (h *hasher) qualType(t types.QualType) {
	h.num(int64(t.Quals))
	h.shape(t.Type)
}

func (h *hasher) shape(t types.Type) {
	if t == nil {
		h.num(nullTag)
		return
	}
	h.num(int64(t.Class()))
	switch t := t.(type) {
	case *types.Builtin:
		h.num(int64(t.Kind))
	case *types.Pointer:
		h.num(int64(t.Checked))
		h.qualType(t.Elem)
	case *types.Array:
		h.num(int64(t.Checked))
		h.num(t.Size)
		h.qualType(t.Elem)
	case *types.Function:
		h.flag(t.Variadic)
		h.num(int64(len(t.Params)))
		h.qualType(t.Result)
		for _, p := range t.Params {
			h.qualType(p)
		}
	case *types.Record:
		h.flag(t.Union)
		h.decl(t.Decl)
	case *types.Enum:
		h.decl(t.Decl)
	case *types.Typedef:
		h.decl(t.Decl)
		h.typ(t.Underlying)
	case *types.Annotated:
		h.qualType(t.Base)
		h.expr(boundsOf(t))
	default:
		panic(invariant("fingerprint", "no hash for type %T", t))
	}
}
