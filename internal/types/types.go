package types

import (
	"fmt"
	"strings"

	"github.com/tinyrange/canonbounds/internal/decl"
)

// Kind enumerates the builtin C types we know about.
type Kind int

const (
	Void Kind = iota
	Bool
	Char
	SChar
	UChar
	Short
	UShort
	Int
	UInt
	Long
	ULong
	LongLong
	ULongLong
	Float
	Double
	LongDouble
)

var kindNames = []string{
	"void", "_Bool", "char", "signed char", "unsigned char", "short",
	"unsigned short", "int", "unsigned int", "long", "unsigned long",
	"long long", "unsigned long long", "float", "double", "long double",
}

func (k Kind) String() string {
	if int(k) >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "?"
}

// Class is the tag of a type shape. The constant order is the order in
// which shapes of different classes compare.
type Class int

const (
	BuiltinClass Class = iota
	PointerClass
	ArrayClass
	FunctionClass
	RecordClass
	EnumClass
	TypedefClass
	AnnotatedClass
)

// Type is one of the shapes below.
type Type interface {
	Class() Class
	isType()
}

// Qualifiers is a bit set; each qualifier owns one bit position.
type Qualifiers uint8

const (
	Const Qualifiers = 1 << iota
	Volatile
	Restrict
)

func (q Qualifiers) String() string {
	var parts []string
	if q&Const != 0 {
		parts = append(parts, "const")
	}
	if q&Volatile != 0 {
		parts = append(parts, "volatile")
	}
	if q&Restrict != 0 {
		parts = append(parts, "restrict")
	}
	return strings.Join(parts, " ")
}

// QualType is a type together with the qualifiers written on it.
type QualType struct {
	Type  Type
	Quals Qualifiers
}

// Checked distinguishes unchecked C pointers and arrays from Checked C ones.
type Checked int

const (
	Unchecked Checked = iota
	Ptr               // _Ptr<T>
	ArrayPtr          // _Array_ptr<T>
	NtArrayPtr        // _Nt_array_ptr<T>
)

type Builtin struct{ Kind Kind }

func (*Builtin) Class() Class { return BuiltinClass }
func (*Builtin) isType() {}

type Pointer struct {
	Elem    QualType
	Checked Checked
}

func (*Pointer) Class() Class { return PointerClass }
func (*Pointer) isType() {}

// Array has Size -1 when incomplete.
type Array struct {
	Elem    QualType
	Size    int64
	Checked Checked
}

func (*Array) Class() Class { return ArrayClass }
func (*Array) isType() {}

type Function struct {
	Result   QualType
	Params   []QualType
	Variadic bool
}

func (*Function) Class() Class { return FunctionClass }
func (*Function) isType() {}

type Record struct {
	Decl  *decl.Decl
	Union bool
}

func (*Record) Class() Class { return RecordClass }
func (*Record) isType() {}

type Enum struct{ Decl *decl.Decl }

func (*Enum) Class() Class { return EnumClass }
func (*Enum) isType() {}

// Typedef is a named alias. The canonical form of a typedef is its
// underlying type.
type Typedef struct {
	Decl       *decl.Decl
	Underlying QualType
}

func (*Typedef) Class() Class { return TypedefClass }
func (*Typedef) isType() {}

// Annotated is a type carrying a bounds annotation, such as a parameter
// type declared with ": count(n)". Bounds holds an ast.Expr; it is typed
// as any so this package does not depend on the expression tree.
type Annotated struct {
	Base   QualType
	Bounds any
}

func (*Annotated) Class() Class { return AnnotatedClass }
func (*Annotated) isType() {}

var builtins = func() []*Builtin {
	out := make([]*Builtin, len(kindNames))
	for i := range out {
		out[i] = &Builtin{Kind: Kind(i)}
	}
	return out
}()

// BuiltinOf returns the shared builtin type for k.
func BuiltinOf(k Kind) QualType { return QualType{Type: builtins[k]} }

func IntT() QualType { return BuiltinOf(Int) }
func CharT() QualType { return BuiltinOf(Char) }
func VoidT() QualType { return BuiltinOf(Void) }
func UnsignedLongT() QualType { return BuiltinOf(ULong) }

func PointerTo(elem QualType) QualType { return QualType{Type: &Pointer{Elem: elem}} }

func CheckedPointerTo(elem QualType, c Checked) QualType {
	return QualType{Type: &Pointer{Elem: elem, Checked: c}}
}

// With returns t with q added to its qualifiers.
func (t QualType) With(q Qualifiers) QualType {
	t.Quals |= q
	return t
}

func (t QualType) IsNull() bool { return t.Type == nil }

// Size returns the size in bytes for builtin kinds on our target. Unknown
// kinds default to 8.
func (k Kind) Size() int {
	switch k {
	case Void:
		return 0
	case Bool, Char, SChar, UChar:
		return 1
	case Short, UShort:
		return 2
	case Int, UInt, Float:
		return 4
	case Long, ULong, LongLong, ULongLong, Double:
		return 8
	case LongDouble:
		return 16
	default:
		return 8
	}
}

// IsSigned returns true for signed integer kinds. Plain char is signed on
// our target.
func (k Kind) IsSigned() bool {
	switch k {
	case Char, SChar, Short, Int, Long, LongLong:
		return true
	default:
		return false
	}
}

// IsUnsigned returns true for unsigned integer kinds, including _Bool.
func (k Kind) IsUnsigned() bool {
	switch k {
	case Bool, UChar, UShort, UInt, ULong, ULongLong:
		return true
	default:
		return false
	}
}

func (k Kind) IsInteger() bool { return k.IsSigned() || k.IsUnsigned() }

func (k Kind) IsFloating() bool { return k == Float || k == Double || k == LongDouble }

func (t QualType) IsPointer() bool {
	_, ok := t.Type.(*Pointer)
	return ok
}

func (t QualType) String() string {
	s := typeString(t.Type)
	if t.Quals != 0 {
		if _, ok := t.Type.(*Pointer); ok {
			return s + " " + t.Quals.String()
		}
		return t.Quals.String() + " " + s
	}
	return s
}

func typeString(t Type) string {
	switch t := t.(type) {
	case nil:
		return "<null>"
	case *Builtin:
		return t.Kind.String()
	case *Pointer:
		switch t.Checked {
		case Ptr:
			return "_Ptr<" + t.Elem.String() + ">"
		case ArrayPtr:
			return "_Array_ptr<" + t.Elem.String() + ">"
		case NtArrayPtr:
			return "_Nt_array_ptr<" + t.Elem.String() + ">"
		}
		return t.Elem.String() + " *"
	case *Array:
		prefix := ""
		if t.Checked != Unchecked {
			prefix = "_Checked "
		}
		// Nested arrays print outermost dimension first: int[2][3].
		var dims strings.Builder
		a := t
		for {
			if a.Size < 0 {
				dims.WriteString("[]")
			} else {
				fmt.Fprintf(&dims, "[%d]", a.Size)
			}
			inner, ok := a.Elem.Type.(*Array)
			if !ok || a.Elem.Quals != 0 {
				break
			}
			a = inner
		}
		return prefix + a.Elem.String() + dims.String()
	case *Function:
		params := make([]string, 0, len(t.Params)+1)
		for _, p := range t.Params {
			params = append(params, p.String())
		}
		if t.Variadic {
			params = append(params, "...")
		}
		return t.Result.String() + "(" + strings.Join(params, ", ") + ")"
	case *Record:
		if t.Union {
			return "union " + t.Decl.Name
		}
		return "struct " + t.Decl.Name
	case *Enum:
		return "enum " + t.Decl.Name
	case *Typedef:
		return t.Decl.Name
	case *Annotated:
		if s, ok := t.Bounds.(fmt.Stringer); ok {
			return t.Base.String() + " : " + s.String()
		}
		return t.Base.String() + " : <bounds>"
	}
	return "?"
}
