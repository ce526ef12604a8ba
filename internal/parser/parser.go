package parser

import (
	"fmt"

	"github.com/tinyrange/canonbounds/internal/ast"
	"github.com/tinyrange/canonbounds/internal/decl"
	"github.com/tinyrange/canonbounds/internal/lexer"
	"github.com/tinyrange/canonbounds/internal/types"
)

// Env resolves the names a bounds expression mentions.
type Env interface {
	// Value finds a variable, parameter, function or enum constant.
	Value(name string) *decl.Decl
	// Typedef finds a typedef name.
	Typedef(name string) (types.QualType, bool)
	// Tag finds a struct, union or enum by tag.
	Tag(name string) (types.QualType, bool)
	// RecordOf returns the record a variable or field points to or holds,
	// or nil if it is not of record type.
	RecordOf(d *decl.Decl) *decl.Decl
}

// Error is a parse error at a source position.
type Error struct {
	Line, Col int
	Msg       string
}

func (e *Error) Error() string { return fmt.Sprintf("%s at %d:%d", e.Msg, e.Line, e.Col) }

type Parser struct {
	lx    *lexer.Lexer
	tok   lexer.Token
	ahead *lexer.Token
	env   Env
}

func newParser(src string, env Env) *Parser {
	p := &Parser{lx: lexer.New(src), env: env}
	p.next()
	return p
}

// ParseExpr parses a complete bounds expression.
func ParseExpr(src string, env Env) (ast.Expr, error) {
	p := newParser(src, env)
	e, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.EOF); err != nil {
		return nil, err
	}
	return e, nil
}

// ParseType parses a complete type name.
func ParseType(src string, env Env) (types.QualType, error) {
	p := newParser(src, env)
	t, err := p.parseTypeName()
	if err != nil {
		return types.QualType{}, err
	}
	if _, err := p.expect(lexer.EOF); err != nil {
		return types.QualType{}, err
	}
	return t, nil
}

func (p *Parser) next() {
	if p.ahead != nil {
		p.tok = *p.ahead
		p.ahead = nil
		return
	}
	p.tok = p.lx.Next()
}

func (p *Parser) peek() lexer.Token {
	if p.ahead == nil {
		t := p.lx.Next()
		p.ahead = &t
	}
	return *p.ahead
}

func (p *Parser) errorf(format string, args ...any) error {
	return &Error{Line: p.tok.Line, Col: p.tok.Col, Msg: fmt.Sprintf(format, args...)}
}

func (p *Parser) expect(tt lexer.TokenType) (lexer.Token, error) {
	if p.tok.Type != tt {
		return lexer.Token{}, p.errorf("expected %v, got %v", tt, p.describe())
	}
	t := p.tok
	p.next()
	return t, nil
}

func (p *Parser) describe() string {
	switch p.tok.Type {
	case lexer.IDENT, lexer.INT, lexer.FLOAT:
		return fmt.Sprintf("%v %q", p.tok.Type, p.tok.Lex)
	case lexer.ILLEGAL:
		return fmt.Sprintf("illegal %q", p.tok.Lex)
	}
	return p.tok.Type.String()
}

func (p *Parser) expectIdent() (string, error) {
	t, err := p.expect(lexer.IDENT)
	if err != nil {
		return "", err
	}
	return t.Lex, nil
}

// lookupValue resolves name, reporting failures at the identifier's token.
func (p *Parser) lookupValue(at lexer.Token, name string) (*decl.Decl, error) {
	if p.env != nil {
		if d := p.env.Value(name); d != nil {
			return d, nil
		}
	}
	return nil, &Error{Line: at.Line, Col: at.Col, Msg: fmt.Sprintf("undeclared identifier %q", name)}
}

// isTypeStart reports whether tok begins a type name, including typedef
// names known to the environment.
func (p *Parser) isTypeStart(tok lexer.Token) bool {
	if tok.IsTypeStart() {
		return true
	}
	if tok.Type == lexer.IDENT && p.env != nil {
		_, ok := p.env.Typedef(tok.Lex)
		return ok
	}
	return false
}

// expectCloseAngle consumes one '>' of a template-style bracket, splitting
// a '>>' token so nested _Ptr<_Ptr<int>> closes correctly.
func (p *Parser) expectCloseAngle() error {
	if p.tok.Type == lexer.SHR {
		p.tok.Type, p.tok.Lex = lexer.GT, ">"
		p.tok.Col++
		return nil
	}
	_, err := p.expect(lexer.GT)
	return err
}
