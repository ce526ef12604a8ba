package parser

import (
	"math/big"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/tinyrange/canonbounds/internal/ast"
	"github.com/tinyrange/canonbounds/internal/decl"
	"github.com/tinyrange/canonbounds/internal/lexer"
	"github.com/tinyrange/canonbounds/internal/types"
)

// Expr grammar, loosest first:
// expr       = assign { ',' assign }
// assign     = binary [ assignop assign ]
// binary     = cast { binop cast }      (C precedence)
// cast       = '(' type ')' cast | '(' type ')' '{' inits '}' | unary
// unary      = prefixop cast | sizeof ... | postfix
// postfix    = primary { '->' IDENT | '.' IDENT | '++' | '--' }
func (p *Parser) parseExpr() (ast.Expr, error) {
	left, err := p.parseAssign()
	if err != nil {
		return nil, err
	}
	for p.tok.Type == lexer.COMMA {
		p.next()
		right, err := p.parseAssign()
		if err != nil {
			return nil, err
		}
		left = ast.Binary(ast.OpComma, left, right)
	}
	return left, nil
}

var assignOps = map[lexer.TokenType]ast.BinOp{
	lexer.ASSIGN:         ast.OpAssign,
	lexer.STAR_ASSIGN:    ast.OpMulAssign,
	lexer.SLASH_ASSIGN:   ast.OpDivAssign,
	lexer.PERCENT_ASSIGN: ast.OpRemAssign,
	lexer.PLUS_ASSIGN:    ast.OpAddAssign,
	lexer.MINUS_ASSIGN:   ast.OpSubAssign,
	lexer.SHL_ASSIGN:     ast.OpShlAssign,
	lexer.SHR_ASSIGN:     ast.OpShrAssign,
	lexer.AMP_ASSIGN:     ast.OpAndAssign,
	lexer.CARET_ASSIGN:   ast.OpXorAssign,
	lexer.PIPE_ASSIGN:    ast.OpOrAssign,
}

func (p *Parser) parseAssign() (ast.Expr, error) {
	left, err := p.parseBinary(1)
	if err != nil {
		return nil, err
	}
	op, ok := assignOps[p.tok.Type]
	if !ok {
		return left, nil
	}
	p.next()
	right, err := p.parseAssign()
	if err != nil {
		return nil, err
	}
	return ast.Binary(op, left, right), nil
}

type binInfo struct {
	prec int
	op   ast.BinOp
}

var binOps = map[lexer.TokenType]binInfo{
	lexer.OROR:    {1, ast.OpLOr},
	lexer.ANDAND:  {2, ast.OpLAnd},
	lexer.PIPE:    {3, ast.OpOr},
	lexer.CARET:   {4, ast.OpXor},
	lexer.AMP:     {5, ast.OpAnd},
	lexer.EQEQ:    {6, ast.OpEQ},
	lexer.NEQ:     {6, ast.OpNE},
	lexer.LT:      {7, ast.OpLT},
	lexer.GT:      {7, ast.OpGT},
	lexer.LE:      {7, ast.OpLE},
	lexer.GE:      {7, ast.OpGE},
	lexer.SHL:     {8, ast.OpShl},
	lexer.SHR:     {8, ast.OpShr},
	lexer.PLUS:    {9, ast.OpAdd},
	lexer.MINUS:   {9, ast.OpSub},
	lexer.STAR:    {10, ast.OpMul},
	lexer.SLASH:   {10, ast.OpDiv},
	lexer.PERCENT: {10, ast.OpRem},
}

// parseBinary is precedence climbing over left-associative operators.
func (p *Parser) parseBinary(minPrec int) (ast.Expr, error) {
	left, err := p.parseCast()
	if err != nil {
		return nil, err
	}
	for {
		info, ok := binOps[p.tok.Type]
		if !ok || info.prec < minPrec {
			return left, nil
		}
		p.next()
		right, err := p.parseBinary(info.prec + 1)
		if err != nil {
			return nil, err
		}
		left = ast.Binary(info.op, left, right)
	}
}

func (p *Parser) parseCast() (ast.Expr, error) {
	if p.tok.Type != lexer.LPAREN || !p.isTypeStart(p.peek()) {
		return p.parseUnary()
	}
	p.next()
	t, err := p.parseTypeName()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.RPAREN); err != nil {
		return nil, err
	}
	if p.tok.Type == lexer.LBRACE {
		return p.parseCompoundLiteral(t)
	}
	x, err := p.parseCast()
	if err != nil {
		return nil, err
	}
	return &ast.CStyleCast{Type: t, CastKind: castKindTo(t), X: x}, nil
}

// castKindTo picks the conversion route from the target type alone; the
// operand's type is not tracked by this notation.
func castKindTo(t types.QualType) ast.CastKind {
	switch ty := t.Type.(type) {
	case *types.Pointer:
		return ast.CastBitCast
	case *types.Builtin:
		switch {
		case ty.Kind == types.Void:
			return ast.CastToVoid
		case ty.Kind == types.Bool:
			return ast.CastIntegralToBoolean
		case ty.Kind.IsInteger():
			return ast.CastIntegralCast
		case ty.Kind.IsFloating():
			return ast.CastFloatingCast
		}
	}
	return ast.CastNoOp
}

func (p *Parser) parseCompoundLiteral(t types.QualType) (ast.Expr, error) {
	if _, err := p.expect(lexer.LBRACE); err != nil {
		return nil, err
	}
	var inits []ast.Expr
	for p.tok.Type != lexer.RBRACE {
		e, err := p.parseAssign()
		if err != nil {
			return nil, err
		}
		inits = append(inits, e)
		if p.tok.Type != lexer.COMMA {
			break
		}
		p.next()
	}
	if _, err := p.expect(lexer.RBRACE); err != nil {
		return nil, err
	}
	return &ast.CompoundLiteral{Type: t, Inits: inits}, nil
}

var prefixOps = map[lexer.TokenType]ast.UnOp{
	lexer.INC:   ast.OpPreInc,
	lexer.DEC:   ast.OpPreDec,
	lexer.AMP:   ast.OpAddrOf,
	lexer.STAR:  ast.OpDeref,
	lexer.PLUS:  ast.OpPlus,
	lexer.MINUS: ast.OpMinus,
	lexer.TILDE: ast.OpNot,
	lexer.BANG:  ast.OpLNot,
}

func (p *Parser) parseUnary() (ast.Expr, error) {
	if op, ok := prefixOps[p.tok.Type]; ok {
		p.next()
		x, err := p.parseCast()
		if err != nil {
			return nil, err
		}
		return &ast.UnaryOperator{Op: op, X: x}, nil
	}
	switch p.tok.Type {
	case lexer.KW_SIZEOF:
		p.next()
		return p.parseTrait(ast.SizeOf)
	case lexer.KW_ALIGNOF:
		p.next()
		return p.parseTrait(ast.AlignOf)
	}
	return p.parsePostfix()
}

// parseTrait parses the operand of sizeof or _Alignof.
func (p *Parser) parseTrait(trait ast.Trait) (ast.Expr, error) {
	if p.tok.Type == lexer.LPAREN && p.isTypeStart(p.peek()) {
		p.next()
		t, err := p.parseTypeName()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.RPAREN); err != nil {
			return nil, err
		}
		return &ast.UnaryExprOrTypeTrait{Trait: trait, Type: &t}, nil
	}
	x, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	return &ast.UnaryExprOrTypeTrait{Trait: trait, X: x}, nil
}

func (p *Parser) parsePostfix() (ast.Expr, error) {
	e, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		switch p.tok.Type {
		case lexer.ARROW, lexer.DOT:
			arrow := p.tok.Type == lexer.ARROW
			p.next()
			name, err := p.expectIdent()
			if err != nil {
				return nil, err
			}
			f, err := p.field(p.recordOf(e), name)
			if err != nil {
				return nil, err
			}
			e = &ast.Member{Base: e, Field: f, Arrow: arrow}
		case lexer.INC:
			p.next()
			e = &ast.UnaryOperator{Op: ast.OpPostInc, X: e}
		case lexer.DEC:
			p.next()
			e = &ast.UnaryOperator{Op: ast.OpPostDec, X: e}
		default:
			return e, nil
		}
	}
}

// recordOf finds the record an expression's value refers to, following the
// declarations the environment knows types for.
func (p *Parser) recordOf(e ast.Expr) *decl.Decl {
	if p.env == nil {
		return nil
	}
	switch e := ast.IgnoreParens(e).(type) {
	case *ast.DeclRef:
		return p.env.RecordOf(e.Decl)
	case *ast.Member:
		return p.env.RecordOf(e.Field)
	case *ast.UnaryOperator:
		if e.Op == ast.OpDeref {
			return p.recordOf(e.X)
		}
	case *ast.CStyleCast:
		return recordOfType(e.Type)
	}
	return nil
}

func recordOfType(t types.QualType) *decl.Decl {
	switch ty := t.Type.(type) {
	case *types.Record:
		return ty.Decl
	case *types.Pointer:
		return recordOfType(ty.Elem)
	case *types.Typedef:
		return recordOfType(ty.Underlying)
	}
	return nil
}

func (p *Parser) field(record *decl.Decl, name string) (*decl.Decl, error) {
	if record == nil {
		return nil, p.errorf("cannot find the record holding member %q", name)
	}
	body := record.Body()
	if body != nil {
		if f := body.Local(name); f != nil && f.Kind == decl.Field {
			return f, nil
		}
	}
	return nil, p.errorf("no member %q in %s", name, record.Name)
}

var predefined = map[string]ast.PredefinedIdent{
	"__func__":            ast.Func,
	"__FUNCTION__":        ast.Function,
	"L__FUNCTION__":       ast.LFunction,
	"__FUNCDNAME__":       ast.FuncDName,
	"__FUNCSIG__":         ast.FuncSig,
	"__PRETTY_FUNCTION__": ast.PrettyFunction,
}

var atomicOps = func() map[string]ast.AtomicOp {
	m := map[string]ast.AtomicOp{}
	for op := ast.AtomicInit; op <= ast.AtomicFetchXor; op++ {
		m[op.String()] = op
	}
	return m
}()

var nullaryBounds = map[string]ast.NullaryKind{
	"invalid": ast.BoundsInvalid,
	"unknown": ast.BoundsUnknown,
	"none":    ast.BoundsNone,
	"any":     ast.BoundsAny,
}

func (p *Parser) parsePrimary() (ast.Expr, error) {
	tok := p.tok
	switch tok.Type {
	case lexer.INT:
		p.next()
		return p.intLiteral(tok)
	case lexer.FLOAT:
		p.next()
		return p.floatLiteral(tok)
	case lexer.CHAR:
		p.next()
		r, _ := utf8.DecodeRuneInString(tok.Lex)
		if tok.Lex == "" {
			r = 0
		}
		return &ast.CharacterLiteral{Value: uint32(r), CharKind: charKind(tok.Prefix)}, nil
	case lexer.STRING:
		p.next()
		s := &ast.StringLiteral{Value: []byte(tok.Lex), CharKind: charKind(tok.Prefix)}
		// Adjacent string literals concatenate.
		for p.tok.Type == lexer.STRING {
			s.Value = append(s.Value, p.tok.Lex...)
			p.next()
		}
		return s, nil
	case lexer.POSITIONAL:
		p.next()
		return p.positional(tok)
	case lexer.LPAREN:
		p.next()
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.RPAREN); err != nil {
			return nil, err
		}
		return &ast.Paren{X: e}, nil
	case lexer.CARET:
		p.next()
		at := p.tok
		name, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		d, err := p.lookupValue(at, name)
		if err != nil {
			return nil, err
		}
		return &ast.Block{Decl: d}, nil
	case lexer.KW_GENERIC:
		p.next()
		return p.parseGeneric()
	case lexer.KW_DYNAMIC_CAST:
		p.next()
		return p.parseBoundsCast(ast.DynamicBoundsCast)
	case lexer.KW_ASSUME_CAST:
		p.next()
		return p.parseBoundsCast(ast.AssumeBoundsCast)
	case lexer.IDENT:
		return p.parseIdent()
	}
	return nil, p.errorf("unexpected %v", p.describe())
}

func (p *Parser) parseIdent() (ast.Expr, error) {
	tok := p.tok
	if id, ok := predefined[tok.Lex]; ok {
		p.next()
		return &ast.Predefined{Ident: id}, nil
	}
	if p.peek().Type == lexer.LPAREN {
		switch tok.Lex {
		case "count":
			p.next()
			return p.parseCount(ast.ElementCount)
		case "byte_count":
			p.next()
			return p.parseCount(ast.ByteCount)
		case "bounds":
			p.next()
			return p.parseBounds()
		case "itype":
			p.next()
			p.next()
			t, err := p.parseTypeName()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(lexer.RPAREN); err != nil {
				return nil, err
			}
			return &ast.InteropType{Type: t}, nil
		case "rel_align", "rel_align_value":
			return p.parseRelative()
		case "offsetof":
			p.next()
			return p.parseOffsetOf()
		}
		if op, ok := atomicOps[tok.Lex]; ok {
			p.next()
			return p.parseAtomic(op)
		}
	}
	p.next()
	name := tok.Lex
	if p.tok.Type == lexer.SCOPE {
		p.next()
		local, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		name += "::" + local
	}
	d, err := p.lookupValue(tok, name)
	if err != nil {
		return nil, err
	}
	return &ast.DeclRef{Decl: d}, nil
}

// intLiteral types an integer literal from its C suffix. A trailing
// "i<bits>" suffix sets the width directly, as the printer writes literals
// whose width has no C suffix.
func (p *Parser) intLiteral(tok lexer.Token) (ast.Expr, error) {
	malformed := &Error{Line: tok.Line, Col: tok.Col, Msg: "malformed integer literal " + strconv.Quote(tok.Lex)}
	lex, width := tok.Lex, 0
	if i := strings.LastIndexAny(lex, "iI"); i > 0 {
		w, err := strconv.Atoi(lex[i+1:])
		if err != nil || w <= 0 {
			return nil, malformed
		}
		lex, width = lex[:i], w
	}
	body := strings.TrimRightFunc(lex, func(r rune) bool { return strings.ContainsRune("uUlL", r) })
	suffix := strings.ToLower(lex[len(body):])
	v, ok := new(big.Int).SetString(body, 0)
	if !ok {
		return nil, malformed
	}
	if width > 0 {
		return &ast.IntegerLiteral{Value: v, Width: uint(width), Signed: !strings.Contains(suffix, "u")}, nil
	}
	unsigned := strings.Contains(suffix, "u")
	longs := strings.Count(suffix, "l")
	var k types.Kind
	switch {
	case longs >= 2 && unsigned:
		k = types.ULongLong
	case longs >= 2:
		k = types.LongLong
	case longs == 1 && unsigned:
		k = types.ULong
	case longs == 1:
		k = types.Long
	case unsigned && v.BitLen() > 32:
		k = types.ULong
	case unsigned:
		k = types.UInt
	case v.BitLen() > 31:
		k = types.Long
	default:
		k = types.Int
	}
	return &ast.IntegerLiteral{Value: v, Width: uint(k.Size() * 8), Signed: k.IsSigned()}, nil
}

func (p *Parser) floatLiteral(tok lexer.Token) (ast.Expr, error) {
	body, sem := tok.Lex, ast.IEEEDouble
	isHex := strings.HasPrefix(strings.ToLower(body), "0x")
	switch last := body[len(body)-1]; {
	case (last == 'f' || last == 'F') && !isHex:
		body, sem = body[:len(body)-1], ast.IEEESingle
	case last == 'f' || last == 'F':
		// A hex float's 'f' is a suffix only after the binary exponent.
		if strings.ContainsAny(body, "pP") {
			body, sem = body[:len(body)-1], ast.IEEESingle
		}
	case last == 'l' || last == 'L':
		body, sem = body[:len(body)-1], ast.X87Extended
	}
	v, err := strconv.ParseFloat(body, 64)
	if err != nil {
		return nil, &Error{Line: tok.Line, Col: tok.Col, Msg: "malformed floating literal " + strconv.Quote(tok.Lex)}
	}
	return &ast.FloatingLiteral{Value: v, Semantics: sem}, nil
}

func charKind(prefix string) ast.CharKind {
	switch prefix {
	case "L":
		return ast.Wide
	case "u8":
		return ast.UTF8
	case "u":
		return ast.UTF16
	case "U":
		return ast.UTF32
	}
	return ast.Ascii
}

// positional parses the rest of "$N" or "$N[K]".
func (p *Parser) positional(tok lexer.Token) (ast.Expr, error) {
	idx, err := strconv.Atoi(tok.Lex)
	if err != nil {
		return nil, &Error{Line: tok.Line, Col: tok.Col, Msg: "malformed positional parameter"}
	}
	e := &ast.PositionalParameter{Index: idx}
	if p.tok.Type != lexer.LBRACK {
		return e, nil
	}
	p.next()
	neg := false
	if p.tok.Type == lexer.MINUS || p.tok.Type == lexer.PLUS {
		neg = p.tok.Type == lexer.MINUS
		p.next()
	}
	n, err := p.expect(lexer.INT)
	if err != nil {
		return nil, err
	}
	off, perr := strconv.ParseInt(n.Lex, 0, 64)
	if perr != nil {
		return nil, &Error{Line: n.Line, Col: n.Col, Msg: "malformed offset " + strconv.Quote(n.Lex)}
	}
	if neg {
		off = -off
	}
	e.Offset = off
	if _, err := p.expect(lexer.RBRACK); err != nil {
		return nil, err
	}
	return e, nil
}

func (p *Parser) parseCount(kind ast.CountKind) (ast.Expr, error) {
	if _, err := p.expect(lexer.LPAREN); err != nil {
		return nil, err
	}
	e, err := p.parseAssign()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.RPAREN); err != nil {
		return nil, err
	}
	return &ast.CountBounds{CountKind: kind, Count: e}, nil
}

// parseBounds handles bounds(unknown) and friends, and bounds(lo, hi) with
// an optional trailing relative alignment clause.
func (p *Parser) parseBounds() (ast.Expr, error) {
	if _, err := p.expect(lexer.LPAREN); err != nil {
		return nil, err
	}
	if k, ok := nullaryBounds[p.tok.Lex]; ok && p.tok.Type == lexer.IDENT && p.peek().Type == lexer.RPAREN {
		p.next()
		p.next()
		return &ast.NullaryBounds{Bounds: k}, nil
	}
	lo, err := p.parseAssign()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.COMMA); err != nil {
		return nil, err
	}
	hi, err := p.parseAssign()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.RPAREN); err != nil {
		return nil, err
	}
	r := &ast.RangeBounds{Lower: lo, Upper: hi}
	if p.tok.Type == lexer.IDENT && (p.tok.Lex == "rel_align" || p.tok.Lex == "rel_align_value") {
		rel, err := p.parseRelative()
		if err != nil {
			return nil, err
		}
		r.Rel = rel
	}
	return r, nil
}

// parseRelative parses rel_align(T) or rel_align_value(e), each optionally
// followed by "@anchor".
func (p *Parser) parseRelative() (*ast.RelativeBoundsClause, error) {
	isValue := p.tok.Lex == "rel_align_value"
	p.next()
	if _, err := p.expect(lexer.LPAREN); err != nil {
		return nil, err
	}
	rel := &ast.RelativeBoundsClause{Rel: ast.RelativeType}
	if isValue {
		rel.Rel = ast.RelativeValue
		e, err := p.parseAssign()
		if err != nil {
			return nil, err
		}
		rel.Offset = e
	} else {
		t, err := p.parseTypeName()
		if err != nil {
			return nil, err
		}
		rel.Type = t
	}
	if _, err := p.expect(lexer.RPAREN); err != nil {
		return nil, err
	}
	if p.tok.Type == lexer.AT {
		p.next()
		at := p.tok
		name, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		if rel.Anchor, err = p.lookupValue(at, name); err != nil {
			return nil, err
		}
	}
	return rel, nil
}

func (p *Parser) parseBoundsCast(kind ast.BoundsCastKind) (ast.Expr, error) {
	if _, err := p.expect(lexer.LT); err != nil {
		return nil, err
	}
	t, err := p.parseTypeName()
	if err != nil {
		return nil, err
	}
	if err := p.expectCloseAngle(); err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.LPAREN); err != nil {
		return nil, err
	}
	x, err := p.parseAssign()
	if err != nil {
		return nil, err
	}
	c := &ast.BoundsCast{CastKind: kind, Type: t, X: x}
	if p.tok.Type == lexer.COMMA {
		p.next()
		if c.Bounds, err = p.parseAssign(); err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(lexer.RPAREN); err != nil {
		return nil, err
	}
	return c, nil
}

func (p *Parser) parseGeneric() (ast.Expr, error) {
	if _, err := p.expect(lexer.LPAREN); err != nil {
		return nil, err
	}
	ctrl, err := p.parseAssign()
	if err != nil {
		return nil, err
	}
	g := &ast.GenericSelection{Control: ctrl}
	for p.tok.Type == lexer.COMMA {
		p.next()
		var a ast.GenericAssoc
		if p.tok.Type == lexer.KW_DEFAULT {
			p.next()
		} else {
			t, err := p.parseTypeName()
			if err != nil {
				return nil, err
			}
			a.Type = &t
		}
		if _, err := p.expect(lexer.COLON); err != nil {
			return nil, err
		}
		if a.X, err = p.parseAssign(); err != nil {
			return nil, err
		}
		g.Assocs = append(g.Assocs, a)
	}
	if _, err := p.expect(lexer.RPAREN); err != nil {
		return nil, err
	}
	return g, nil
}

func (p *Parser) parseOffsetOf() (ast.Expr, error) {
	if _, err := p.expect(lexer.LPAREN); err != nil {
		return nil, err
	}
	t, err := p.parseTypeName()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.COMMA); err != nil {
		return nil, err
	}
	o := &ast.OffsetOf{Type: t}
	record := recordOfType(t)
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	for {
		f, err := p.field(record, name)
		if err != nil {
			return nil, err
		}
		o.Designators = append(o.Designators, ast.Designator{Field: f})
		if p.env != nil {
			record = p.env.RecordOf(f)
		}
		for p.tok.Type == lexer.LBRACK {
			p.next()
			idx, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(lexer.RBRACK); err != nil {
				return nil, err
			}
			o.Designators = append(o.Designators, ast.Designator{Index: idx})
		}
		if p.tok.Type != lexer.DOT {
			break
		}
		p.next()
		if name, err = p.expectIdent(); err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(lexer.RPAREN); err != nil {
		return nil, err
	}
	return o, nil
}

func (p *Parser) parseAtomic(op ast.AtomicOp) (ast.Expr, error) {
	if _, err := p.expect(lexer.LPAREN); err != nil {
		return nil, err
	}
	a := &ast.Atomic{Op: op}
	for p.tok.Type != lexer.RPAREN {
		e, err := p.parseAssign()
		if err != nil {
			return nil, err
		}
		a.Args = append(a.Args, e)
		if p.tok.Type != lexer.COMMA {
			break
		}
		p.next()
	}
	if _, err := p.expect(lexer.RPAREN); err != nil {
		return nil, err
	}
	return a, nil
}
