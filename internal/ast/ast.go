package ast

import (
	"math/big"

	"github.com/tinyrange/canonbounds/internal/decl"
	"github.com/tinyrange/canonbounds/internal/types"
)

// Kind is the node tag. The constant order is the fixed order in which
// nodes of different kinds compare; append new kinds, never reorder.
type Kind int

const (
	KindPredefined Kind = iota
	KindDeclRef
	KindIntegerLiteral
	KindFloatingLiteral
	KindStringLiteral
	KindCharacterLiteral
	KindParen
	KindUnaryOperator
	KindOffsetOf
	KindUnaryExprOrTypeTrait
	KindMember
	KindBinaryOperator
	KindCompoundAssignOperator
	KindImplicitCast
	KindCStyleCast
	KindCompoundLiteral
	KindGenericSelection
	KindNullaryBounds
	KindCountBounds
	KindRangeBounds
	KindInteropType
	KindPositionalParameter
	KindBoundsCast
	KindRelativeBoundsClause
	KindAtomic
	KindBlock
)

var kindNames = [...]string{
	"Predefined", "DeclRef", "IntegerLiteral", "FloatingLiteral",
	"StringLiteral", "CharacterLiteral", "Paren", "UnaryOperator", "OffsetOf",
	"UnaryExprOrTypeTrait", "Member", "BinaryOperator",
	"CompoundAssignOperator", "ImplicitCast", "CStyleCast", "CompoundLiteral",
	"GenericSelection", "NullaryBounds", "CountBounds", "RangeBounds",
	"InteropType", "PositionalParameter", "BoundsCast", "RelativeBoundsClause",
	"Atomic", "Block",
}

func (k Kind) String() string {
	if int(k) >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "?"
}

// Expr is a node of a bounds expression tree. The set of implementations is
// closed: only this package can add one.
type Expr interface {
	Kind() Kind
	isExpr()
}

type Predefined struct{ Ident PredefinedIdent }

func (*Predefined) Kind() Kind { return KindPredefined }
func (*Predefined) isExpr() {}

type PredefinedIdent int

const (
	Func PredefinedIdent = iota // __func__
	Function                    // __FUNCTION__
	LFunction                   // L__FUNCTION__
	FuncDName                   // __FUNCDNAME__
	FuncSig                     // __FUNCSIG__
	PrettyFunction              // __PRETTY_FUNCTION__
)

type DeclRef struct{ Decl *decl.Decl }

func (*DeclRef) Kind() Kind { return KindDeclRef }
func (*DeclRef) isExpr() {}

// IntegerLiteral holds an arbitrary-precision value together with the bit
// width and signedness of its type.
type IntegerLiteral struct {
	Value  *big.Int
	Width  uint
	Signed bool
}

func (*IntegerLiteral) Kind() Kind { return KindIntegerLiteral }
func (*IntegerLiteral) isExpr() {}

type FloatSemantics int

const (
	IEEEHalf FloatSemantics = iota
	IEEESingle
	IEEEDouble
	X87Extended
	IEEEQuad
)

type FloatingLiteral struct {
	Value     float64
	Semantics FloatSemantics
}

func (*FloatingLiteral) Kind() Kind { return KindFloatingLiteral }
func (*FloatingLiteral) isExpr() {}

type CharKind int

const (
	Ascii CharKind = iota
	Wide
	UTF8
	UTF16
	UTF32
)

type StringLiteral struct {
	Value    []byte
	CharKind CharKind
}

func (*StringLiteral) Kind() Kind { return KindStringLiteral }
func (*StringLiteral) isExpr() {}

type CharacterLiteral struct {
	Value    uint32
	CharKind CharKind
}

func (*CharacterLiteral) Kind() Kind { return KindCharacterLiteral }
func (*CharacterLiteral) isExpr() {}

// Paren is kept for printing only; comparison looks through it.
type Paren struct{ X Expr }

func (*Paren) Kind() Kind { return KindParen }
func (*Paren) isExpr() {}

type UnOp int

const (
	OpPostInc UnOp = iota
	OpPostDec
	OpPreInc
	OpPreDec
	OpAddrOf
	OpDeref
	OpPlus
	OpMinus
	OpNot
	OpLNot
	OpReal
	OpImag
	OpExtension
)

type UnaryOperator struct {
	Op UnOp
	X  Expr
}

func (*UnaryOperator) Kind() Kind { return KindUnaryOperator }
func (*UnaryOperator) isExpr() {}

type BinOp int

const (
	OpPtrMemD BinOp = iota
	OpPtrMemI
	OpMul
	OpDiv
	OpRem
	OpAdd
	OpSub
	OpShl
	OpShr
	OpLT
	OpGT
	OpLE
	OpGE
	OpEQ
	OpNE
	OpAnd
	OpXor
	OpOr
	OpLAnd
	OpLOr
	OpAssign
	OpMulAssign
	OpDivAssign
	OpRemAssign
	OpAddAssign
	OpSubAssign
	OpShlAssign
	OpShrAssign
	OpAndAssign
	OpXorAssign
	OpOrAssign
	OpComma
)

// IsCompoundAssign reports whether op is one of the "op=" forms.
func (op BinOp) IsCompoundAssign() bool { return op >= OpMulAssign && op <= OpOrAssign }

type BinaryOperator struct {
	Op          BinOp
	Left, Right Expr
}

func (*BinaryOperator) Kind() Kind { return KindBinaryOperator }
func (*BinaryOperator) isExpr() {}

type CompoundAssignOperator struct {
	Op          BinOp
	Left, Right Expr
}

func (*CompoundAssignOperator) Kind() Kind { return KindCompoundAssignOperator }
func (*CompoundAssignOperator) isExpr() {}

// CastKind is the conversion route taken by a cast.
type CastKind int

const (
	CastNoOp CastKind = iota
	CastBitCast
	CastLValueToRValue
	CastArrayToPointerDecay
	CastFunctionToPointerDecay
	CastNullToPointer
	CastIntegralCast
	CastIntegralToPointer
	CastPointerToIntegral
	CastIntegralToBoolean
	CastIntegralToFloating
	CastFloatingToIntegral
	CastFloatingCast
	CastToVoid
)

type ImplicitCast struct {
	Type     types.QualType
	CastKind CastKind
	X        Expr
}

func (*ImplicitCast) Kind() Kind { return KindImplicitCast }
func (*ImplicitCast) isExpr() {}

type CStyleCast struct {
	Type     types.QualType
	CastKind CastKind
	X        Expr
}

func (*CStyleCast) Kind() Kind { return KindCStyleCast }
func (*CStyleCast) isExpr() {}

type Member struct {
	Base  Expr
	Field *decl.Decl
	Arrow bool
}

func (*Member) Kind() Kind { return KindMember }
func (*Member) isExpr() {}

type CompoundLiteral struct {
	Type  types.QualType
	Inits []Expr
}

func (*CompoundLiteral) Kind() Kind { return KindCompoundLiteral }
func (*CompoundLiteral) isExpr() {}

// GenericAssoc is one association of a _Generic selection. A nil Type is
// the default association.
type GenericAssoc struct {
	Type *types.QualType
	X    Expr
}

type GenericSelection struct {
	Control Expr
	Assocs  []GenericAssoc
}

func (*GenericSelection) Kind() Kind { return KindGenericSelection }
func (*GenericSelection) isExpr() {}

type Trait int

const (
	SizeOf Trait = iota
	AlignOf
	VecStep
	PreferredAlignOf
)

// UnaryExprOrTypeTrait is sizeof/_Alignof applied to either a type or an
// expression; exactly one of Type and X is set.
type UnaryExprOrTypeTrait struct {
	Trait Trait
	Type  *types.QualType
	X     Expr
}

func (*UnaryExprOrTypeTrait) Kind() Kind { return KindUnaryExprOrTypeTrait }
func (*UnaryExprOrTypeTrait) isExpr() {}

// Designator is one step of an offsetof member path: a field or an array
// index.
type Designator struct {
	Field *decl.Decl
	Index Expr
}

type OffsetOf struct {
	Type        types.QualType
	Designators []Designator
}

func (*OffsetOf) Kind() Kind { return KindOffsetOf }
func (*OffsetOf) isExpr() {}

type AtomicOp int

const (
	AtomicInit AtomicOp = iota
	AtomicLoad
	AtomicStore
	AtomicExchange
	AtomicCompareExchangeStrong
	AtomicCompareExchangeWeak
	AtomicFetchAdd
	AtomicFetchSub
	AtomicFetchAnd
	AtomicFetchOr
	AtomicFetchXor
)

type Atomic struct {
	Op   AtomicOp
	Args []Expr
}

func (*Atomic) Kind() Kind { return KindAtomic }
func (*Atomic) isExpr() {}

type Block struct{ Decl *decl.Decl }

func (*Block) Kind() Kind { return KindBlock }
func (*Block) isExpr() {}

type NullaryKind int

const (
	BoundsInvalid NullaryKind = iota
	BoundsUnknown
	BoundsNone
	BoundsAny
)

type NullaryBounds struct{ Bounds NullaryKind }

func (*NullaryBounds) Kind() Kind { return KindNullaryBounds }
func (*NullaryBounds) isExpr() {}

type CountKind int

const (
	ElementCount CountKind = iota
	ByteCount
)

type CountBounds struct {
	CountKind CountKind
	Count     Expr
}

func (*CountBounds) Kind() Kind { return KindCountBounds }
func (*CountBounds) isExpr() {}

type RangeBounds struct {
	Lower, Upper Expr
	Rel          *RelativeBoundsClause // may be nil
}

func (*RangeBounds) Kind() Kind { return KindRangeBounds }
func (*RangeBounds) isExpr() {}

type InteropType struct{ Type types.QualType }

func (*InteropType) Kind() Kind { return KindInteropType }
func (*InteropType) isExpr() {}

// PositionalParameter refers to a function's Index'th parameter, optionally
// displaced by Offset elements.
type PositionalParameter struct {
	Index  int
	Offset int64
	Type   types.QualType
}

func (*PositionalParameter) Kind() Kind { return KindPositionalParameter }
func (*PositionalParameter) isExpr() {}

type BoundsCastKind int

const (
	DynamicBoundsCast BoundsCastKind = iota
	AssumeBoundsCast
)

type BoundsCast struct {
	CastKind BoundsCastKind
	Type     types.QualType
	X        Expr
	Bounds   Expr // may be nil
}

func (*BoundsCast) Kind() Kind { return KindBoundsCast }
func (*BoundsCast) isExpr() {}

type RelativeKind int

const (
	RelativeType  RelativeKind = iota // rel_align(T)
	RelativeValue                     // rel_align_value(e)
)

// RelativeBoundsClause states bounds relative to an anchor parameter or
// field. Type is set for RelativeType, Offset for RelativeValue.
type RelativeBoundsClause struct {
	Anchor *decl.Decl
	Rel    RelativeKind
	Type   types.QualType
	Offset Expr
}

func (*RelativeBoundsClause) Kind() Kind { return KindRelativeBoundsClause }
func (*RelativeBoundsClause) isExpr() {}
