package ast

import (
	"fmt"
	"strconv"
	"strings"
)

var unOpNames = [...]string{"++", "--", "++", "--", "&", "*", "+", "-", "~", "!", "__real ", "__imag ", "__extension__ "}

func (op UnOp) String() string {
	if int(op) >= 0 && int(op) < len(unOpNames) {
		return unOpNames[op]
	}
	return "?"
}

func (op UnOp) IsPostfix() bool { return op == OpPostInc || op == OpPostDec }

var binOpNames = [...]string{
	".*", "->*", "*", "/", "%", "+", "-", "<<", ">>", "<", ">", "<=", ">=",
	"==", "!=", "&", "^", "|", "&&", "||", "=", "*=", "/=", "%=", "+=", "-=",
	"<<=", ">>=", "&=", "^=", "|=", ",",
}

func (op BinOp) String() string {
	if int(op) >= 0 && int(op) < len(binOpNames) {
		return binOpNames[op]
	}
	return "?"
}

var predefinedNames = [...]string{"__func__", "__FUNCTION__", "L__FUNCTION__", "__FUNCDNAME__", "__FUNCSIG__", "__PRETTY_FUNCTION__"}

func (p PredefinedIdent) String() string {
	if int(p) >= 0 && int(p) < len(predefinedNames) {
		return predefinedNames[p]
	}
	return "?"
}

var atomicNames = [...]string{
	"__c11_atomic_init", "__c11_atomic_load", "__c11_atomic_store",
	"__c11_atomic_exchange", "__c11_atomic_compare_exchange_strong",
	"__c11_atomic_compare_exchange_weak", "__c11_atomic_fetch_add",
	"__c11_atomic_fetch_sub", "__c11_atomic_fetch_and", "__c11_atomic_fetch_or",
	"__c11_atomic_fetch_xor",
}

func (op AtomicOp) String() string {
	if int(op) >= 0 && int(op) < len(atomicNames) {
		return atomicNames[op]
	}
	return "?"
}

func (k NullaryKind) String() string {
	switch k {
	case BoundsInvalid:
		return "invalid"
	case BoundsUnknown:
		return "unknown"
	case BoundsNone:
		return "none"
	case BoundsAny:
		return "any"
	}
	return "?"
}

func (t Trait) String() string {
	switch t {
	case SizeOf:
		return "sizeof"
	case AlignOf:
		return "_Alignof"
	case VecStep:
		return "vec_step"
	case PreferredAlignOf:
		return "__alignof"
	}
	return "?"
}

var charPrefixes = [...]string{"", "L", "u8", "u", "U"}

func (k CharKind) Prefix() string {
	if int(k) >= 0 && int(k) < len(charPrefixes) {
		return charPrefixes[k]
	}
	return ""
}

// String renders e in bounds notation. Absent expressions print as "<null>".
//
// C has no negative integer literal: "-1" in source is unary minus applied to
// 1. An IntegerLiteral holding a negative value still prints as "-1", so
// parsing that output yields a UnaryOperator, which orders differently from
// the literal it came from.
func String(e Expr) string {
	var sb strings.Builder
	write(&sb, e)
	return sb.String()
}

func write(sb *strings.Builder, e Expr) {
	switch e := e.(type) {
	case nil:
		sb.WriteString("<null>")
	case *Predefined:
		sb.WriteString(e.Ident.String())
	case *DeclRef:
		sb.WriteString(e.Decl.Qualified())
	case *IntegerLiteral:
		if e.Value == nil {
			sb.WriteString("0")
		} else {
			sb.WriteString(e.Value.String())
		}
		if !e.Signed {
			sb.WriteString("u")
		}
		switch e.Width {
		case 32:
		case 64:
			sb.WriteString("l")
		default:
			fmt.Fprintf(sb, "i%d", e.Width)
		}
	case *FloatingLiteral:
		sb.WriteString(strconv.FormatFloat(e.Value, 'g', -1, 64))
		switch e.Semantics {
		case IEEESingle:
			sb.WriteString("f")
		case X87Extended, IEEEQuad:
			sb.WriteString("l")
		}
	case *StringLiteral:
		sb.WriteString(e.CharKind.Prefix())
		sb.WriteString(strconv.Quote(string(e.Value)))
	case *CharacterLiteral:
		sb.WriteString(e.CharKind.Prefix())
		sb.WriteString(strconv.QuoteRune(rune(e.Value)))
	case *Paren:
		sb.WriteByte('(')
		write(sb, e.X)
		sb.WriteByte(')')
	case *UnaryOperator:
		if e.Op.IsPostfix() {
			write(sb, e.X)
			sb.WriteString(e.Op.String())
			return
		}
		sb.WriteString(e.Op.String())
		write(sb, e.X)
	case *BinaryOperator:
		writeBinary(sb, e.Op, e.Left, e.Right)
	case *CompoundAssignOperator:
		writeBinary(sb, e.Op, e.Left, e.Right)
	case *ImplicitCast:
		// Implicit conversions are not written in source.
		write(sb, e.X)
	case *CStyleCast:
		fmt.Fprintf(sb, "(%s)", e.Type)
		write(sb, e.X)
	case *Member:
		write(sb, e.Base)
		if e.Arrow {
			sb.WriteString("->")
		} else {
			sb.WriteByte('.')
		}
		if e.Field != nil {
			sb.WriteString(e.Field.Name)
		}
	case *CompoundLiteral:
		fmt.Fprintf(sb, "(%s){", e.Type)
		writeList(sb, e.Inits)
		sb.WriteByte('}')
	case *GenericSelection:
		sb.WriteString("_Generic(")
		write(sb, e.Control)
		for _, a := range e.Assocs {
			sb.WriteString(", ")
			if a.Type == nil {
				sb.WriteString("default")
			} else {
				sb.WriteString(a.Type.String())
			}
			sb.WriteString(": ")
			write(sb, a.X)
		}
		sb.WriteByte(')')
	case *UnaryExprOrTypeTrait:
		sb.WriteString(e.Trait.String())
		sb.WriteByte('(')
		if e.Type != nil {
			sb.WriteString(e.Type.String())
		} else {
			write(sb, e.X)
		}
		sb.WriteByte(')')
	case *OffsetOf:
		fmt.Fprintf(sb, "offsetof(%s, ", e.Type)
		for i, d := range e.Designators {
			if d.Field != nil {
				if i > 0 {
					sb.WriteByte('.')
				}
				sb.WriteString(d.Field.Name)
				continue
			}
			sb.WriteByte('[')
			write(sb, d.Index)
			sb.WriteByte(']')
		}
		sb.WriteByte(')')
	case *Atomic:
		sb.WriteString(e.Op.String())
		sb.WriteByte('(')
		writeList(sb, e.Args)
		sb.WriteByte(')')
	case *Block:
		fmt.Fprintf(sb, "^%s", e.Decl.Qualified())
	case *NullaryBounds:
		fmt.Fprintf(sb, "bounds(%s)", e.Bounds)
	case *CountBounds:
		if e.CountKind == ByteCount {
			sb.WriteString("byte_count(")
		} else {
			sb.WriteString("count(")
		}
		write(sb, e.Count)
		sb.WriteByte(')')
	case *RangeBounds:
		sb.WriteString("bounds(")
		write(sb, e.Lower)
		sb.WriteString(", ")
		write(sb, e.Upper)
		sb.WriteByte(')')
		if e.Rel != nil {
			sb.WriteByte(' ')
			writeRelative(sb, e.Rel)
		}
	case *InteropType:
		fmt.Fprintf(sb, "itype(%s)", e.Type)
	case *PositionalParameter:
		fmt.Fprintf(sb, "$%d", e.Index)
		if e.Offset != 0 {
			fmt.Fprintf(sb, "[%d]", e.Offset)
		}
	case *BoundsCast:
		if e.CastKind == AssumeBoundsCast {
			sb.WriteString("_Assume_bounds_cast<")
		} else {
			sb.WriteString("_Dynamic_bounds_cast<")
		}
		fmt.Fprintf(sb, "%s>(", e.Type)
		write(sb, e.X)
		if e.Bounds != nil {
			sb.WriteString(", ")
			write(sb, e.Bounds)
		}
		sb.WriteByte(')')
	case *RelativeBoundsClause:
		writeRelative(sb, e)
	default:
		fmt.Fprintf(sb, "<%T>", e)
	}
}

func writeBinary(sb *strings.Builder, op BinOp, l, r Expr) {
	write(sb, l)
	if op == OpComma {
		sb.WriteString(", ")
	} else {
		sb.WriteString(" " + op.String() + " ")
	}
	write(sb, r)
}

func writeList(sb *strings.Builder, xs []Expr) {
	for i, x := range xs {
		if i > 0 {
			sb.WriteString(", ")
		}
		write(sb, x)
	}
}

func writeRelative(sb *strings.Builder, r *RelativeBoundsClause) {
	if r.Rel == RelativeValue {
		sb.WriteString("rel_align_value(")
		write(sb, r.Offset)
	} else {
		fmt.Fprintf(sb, "rel_align(%s", r.Type)
	}
	sb.WriteByte(')')
	if r.Anchor != nil {
		fmt.Fprintf(sb, "@%s", r.Anchor.Qualified())
	}
}
