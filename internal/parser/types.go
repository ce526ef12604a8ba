package parser

import (
	"strconv"

	"github.com/tinyrange/canonbounds/internal/lexer"
	"github.com/tinyrange/canonbounds/internal/types"
)

type specifiers struct {
	void, boolean, char, short, integer bool
	float, double, signed, unsigned     bool
	longs                               int
}

func (s specifiers) present() bool {
	return s.void || s.boolean || s.char || s.short || s.integer || s.float ||
		s.double || s.signed || s.unsigned || s.longs > 0
}

func (s specifiers) kind() (types.Kind, bool) {
	switch {
	case s.void:
		return types.Void, true
	case s.boolean:
		return types.Bool, true
	case s.char && s.signed:
		return types.SChar, true
	case s.char && s.unsigned:
		return types.UChar, true
	case s.char:
		return types.Char, true
	case s.float:
		return types.Float, true
	case s.double && s.longs == 1:
		return types.LongDouble, true
	case s.double && s.longs == 0:
		return types.Double, true
	case s.double:
		return 0, false
	case s.short && s.unsigned:
		return types.UShort, true
	case s.short:
		return types.Short, true
	case s.longs == 1 && s.unsigned:
		return types.ULong, true
	case s.longs == 1:
		return types.Long, true
	case s.longs == 2 && s.unsigned:
		return types.ULongLong, true
	case s.longs == 2:
		return types.LongLong, true
	case s.longs > 2:
		return 0, false
	case s.unsigned:
		return types.UInt, true
	}
	return types.Int, true
}

func (p *Parser) parseQualifiers() types.Qualifiers {
	var q types.Qualifiers
	for {
		switch p.tok.Type {
		case lexer.KW_CONST:
			q |= types.Const
		case lexer.KW_VOLATILE:
			q |= types.Volatile
		case lexer.KW_RESTRICT:
			q |= types.Restrict
		default:
			return q
		}
		p.next()
	}
}

// parseTypeName parses specifiers then an abstract declarator of pointer
// stars and array suffixes.
func (p *Parser) parseTypeName() (types.QualType, error) {
	base, err := p.parseSpecifiers()
	if err != nil {
		return types.QualType{}, err
	}
	for p.tok.Type == lexer.STAR {
		p.next()
		base = types.PointerTo(base).With(p.parseQualifiers())
	}
	var dims []int64
	for p.tok.Type == lexer.LBRACK {
		p.next()
		n := int64(-1)
		if p.tok.Type == lexer.INT {
			v, err := strconv.ParseInt(p.tok.Lex, 0, 64)
			if err != nil || v < 0 {
				return types.QualType{}, p.errorf("bad array size %q", p.tok.Lex)
			}
			n = v
			p.next()
		}
		if _, err := p.expect(lexer.RBRACK); err != nil {
			return types.QualType{}, err
		}
		dims = append(dims, n)
	}
	// int[2][3] is an array of 2 arrays of 3 ints.
	for i := len(dims) - 1; i >= 0; i-- {
		base = types.QualType{Type: &types.Array{Elem: base, Size: dims[i]}}
	}
	return base, nil
}

func (p *Parser) parseSpecifiers() (types.QualType, error) {
	quals := p.parseQualifiers()
	var spec specifiers
	var named *types.QualType
	for {
		quals |= p.parseQualifiers()
		tok := p.tok
		switch tok.Type {
		case lexer.KW_VOID:
			spec.void = true
		case lexer.KW_BOOL:
			spec.boolean = true
		case lexer.KW_CHAR:
			spec.char = true
		case lexer.KW_SHORT:
			spec.short = true
		case lexer.KW_INT:
			spec.integer = true
		case lexer.KW_LONG:
			spec.longs++
		case lexer.KW_SIGNED:
			spec.signed = true
		case lexer.KW_UNSIGNED:
			spec.unsigned = true
		case lexer.KW_FLOAT:
			spec.float = true
		case lexer.KW_DOUBLE:
			spec.double = true
		case lexer.KW_STRUCT, lexer.KW_UNION, lexer.KW_ENUM:
			if named != nil || spec.present() {
				return types.QualType{}, p.errorf("unexpected %v in type name", tok.Type)
			}
			p.next()
			t, err := p.parseTag(tok.Type)
			if err != nil {
				return types.QualType{}, err
			}
			named = &t
			continue
		case lexer.KW_PTR, lexer.KW_ARRAY_PTR, lexer.KW_NT_ARRAY_PTR:
			if named != nil || spec.present() {
				return types.QualType{}, p.errorf("unexpected %v in type name", tok.Type)
			}
			p.next()
			t, err := p.parseCheckedPointer(tok.Type)
			if err != nil {
				return types.QualType{}, err
			}
			named = &t
			continue
		case lexer.IDENT:
			if named != nil || spec.present() || p.env == nil {
				break
			}
			if t, ok := p.env.Typedef(tok.Lex); ok {
				p.next()
				named = &t
				continue
			}
		}
		if tok.Type == lexer.IDENT || !tok.IsTypeStart() {
			break
		}
		if named != nil {
			return types.QualType{}, p.errorf("unexpected %v in type name", tok.Type)
		}
		p.next()
	}
	if named != nil {
		return named.With(quals), nil
	}
	if !spec.present() {
		return types.QualType{}, p.errorf("expected type name, got %v", p.describe())
	}
	k, ok := spec.kind()
	if !ok {
		return types.QualType{}, p.errorf("invalid combination of type specifiers")
	}
	return types.BuiltinOf(k).With(quals), nil
}

func (p *Parser) parseTag(kw lexer.TokenType) (types.QualType, error) {
	name, err := p.expectIdent()
	if err != nil {
		return types.QualType{}, err
	}
	if p.env != nil {
		if t, ok := p.env.Tag(name); ok {
			switch ty := t.Type.(type) {
			case *types.Record:
				if ty.Union == (kw == lexer.KW_UNION) && kw != lexer.KW_ENUM {
					return t, nil
				}
			case *types.Enum:
				if kw == lexer.KW_ENUM {
					return t, nil
				}
			}
			return types.QualType{}, p.errorf("%s is not a %v", name, kw)
		}
	}
	return types.QualType{}, p.errorf("unknown tag %v %s", kw, name)
}

func (p *Parser) parseCheckedPointer(kw lexer.TokenType) (types.QualType, error) {
	if _, err := p.expect(lexer.LT); err != nil {
		return types.QualType{}, err
	}
	elem, err := p.parseTypeName()
	if err != nil {
		return types.QualType{}, err
	}
	if err := p.expectCloseAngle(); err != nil {
		return types.QualType{}, err
	}
	checked := types.Ptr
	switch kw {
	case lexer.KW_ARRAY_PTR:
		checked = types.ArrayPtr
	case lexer.KW_NT_ARRAY_PTR:
		checked = types.NtArrayPtr
	}
	return types.CheckedPointerTo(elem, checked), nil
}
