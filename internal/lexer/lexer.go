package lexer

import (
	"strings"
	"unicode"
)

type Lexer struct {
	src  []rune
	i    int
	ch   rune
	line int
	col  int
}

func New(src string) *Lexer {
	l := &Lexer{src: []rune(src), line: 1}
	l.read()
	return l
}

func (l *Lexer) read() {
	if l.i >= len(l.src) {
		l.ch = 0
		return
	}
	l.ch = l.src[l.i]
	l.i++
	if l.ch == '\n' {
		l.line++
		l.col = 0
	} else {
		l.col++
	}
}

func (l *Lexer) peek() rune {
	if l.i >= len(l.src) {
		return 0
	}
	return l.src[l.i]
}

// symbols lists operator spellings longest first so maximal munch falls out
// of a linear scan.
var symbols = []struct {
	lex string
	tt  TokenType
}{
	{"<<=", SHL_ASSIGN}, {">>=", SHR_ASSIGN},
	{"->", ARROW}, {"++", INC}, {"--", DEC}, {"<<", SHL}, {">>", SHR},
	{"::", SCOPE}, {"<=", LE}, {">=", GE}, {"==", EQEQ}, {"!=", NEQ}, {"&&", ANDAND},
	{"||", OROR}, {"*=", STAR_ASSIGN}, {"/=", SLASH_ASSIGN},
	{"%=", PERCENT_ASSIGN}, {"+=", PLUS_ASSIGN}, {"-=", MINUS_ASSIGN},
	{"&=", AMP_ASSIGN}, {"^=", CARET_ASSIGN}, {"|=", PIPE_ASSIGN},
	{"(", LPAREN}, {")", RPAREN}, {"{", LBRACE}, {"}", RBRACE},
	{"[", LBRACK}, {"]", RBRACK}, {";", SEMI}, {",", COMMA}, {":", COLON},
	{"?", QUESTION}, {".", DOT}, {"@", AT}, {"=", ASSIGN}, {"+", PLUS},
	{"-", MINUS}, {"*", STAR}, {"/", SLASH}, {"%", PERCENT}, {"&", AMP},
	{"|", PIPE}, {"^", CARET}, {"~", TILDE}, {"!", BANG}, {"<", LT}, {">", GT},
}

func (l *Lexer) hasPrefix(s string) bool {
	rs := []rune(s)
	if l.ch != rs[0] {
		return false
	}
	for k := 1; k < len(rs); k++ {
		if l.i+k-1 >= len(l.src) || l.src[l.i+k-1] != rs[k] {
			return false
		}
	}
	return true
}

func (l *Lexer) Next() Token {
	// skip spaces and comments
	for {
		for unicode.IsSpace(l.ch) {
			l.read()
		}
		if l.ch == '/' && l.peek() == '/' {
			for l.ch != 0 && l.ch != '\n' {
				l.read()
			}
			continue
		}
		if l.ch == '/' && l.peek() == '*' {
			l.read()
			l.read()
			for l.ch != 0 {
				if l.ch == '*' && l.peek() == '/' {
					l.read()
					l.read()
					break
				}
				l.read()
			}
			continue
		}
		break
	}
	tok := Token{Line: l.line, Col: l.col}
	ch := l.ch
	switch {
	case ch == 0:
		tok.Type = EOF
	case ch == '"' || ch == '\'':
		return l.quoted(tok, "")
	case ch == '$':
		l.read()
		var num []rune
		for unicode.IsDigit(l.ch) {
			num = append(num, l.ch)
			l.read()
		}
		tok.Type, tok.Lex = POSITIONAL, string(num)
		if len(num) == 0 {
			tok.Type, tok.Lex = ILLEGAL, "$"
		}
	case unicode.IsLetter(ch) || ch == '_':
		ident := []rune{ch}
		l.read()
		for unicode.IsLetter(l.ch) || unicode.IsDigit(l.ch) || l.ch == '_' {
			ident = append(ident, l.ch)
			l.read()
		}
		lex := string(ident)
		if (l.ch == '"' || l.ch == '\'') && isEncodingPrefix(lex) {
			return l.quoted(tok, lex)
		}
		tok.Type, tok.Lex = IDENT, lex
		if kw, ok := keywords[lex]; ok {
			tok.Type = kw
		}
	case unicode.IsDigit(ch) || (ch == '.' && unicode.IsDigit(l.peek())):
		l.number(&tok)
	default:
		for _, s := range symbols {
			if l.hasPrefix(s.lex) {
				for range s.lex {
					l.read()
				}
				tok.Type, tok.Lex = s.tt, s.lex
				return tok
			}
		}
		tok.Type, tok.Lex = ILLEGAL, string(ch)
		l.read()
	}
	return tok
}

func isEncodingPrefix(s string) bool {
	return s == "L" || s == "u8" || s == "u" || s == "U"
}

// number scans a pp-number: digits, letters, '.', and a sign directly after
// an exponent marker. The parser splits off suffixes.
func (l *Lexer) number(tok *Token) {
	var num []rune
	hex := l.ch == '0' && (l.peek() == 'x' || l.peek() == 'X')
	isFloat := false
	for {
		c := l.ch
		switch {
		case unicode.IsDigit(c) || unicode.IsLetter(c) || c == '_':
			num = append(num, c)
			l.read()
			exp := (!hex && (c == 'e' || c == 'E')) || (hex && (c == 'p' || c == 'P'))
			if exp {
				isFloat = true
				if l.ch == '+' || l.ch == '-' {
					num = append(num, l.ch)
					l.read()
				}
			}
		case c == '.':
			isFloat = true
			num = append(num, c)
			l.read()
		default:
			tok.Type, tok.Lex = INT, string(num)
			if isFloat {
				tok.Type = FLOAT
			}
			return
		}
	}
}

// quoted scans a string or character literal whose encoding prefix has
// already been consumed. Lex holds the decoded contents.
func (l *Lexer) quoted(tok Token, prefix string) Token {
	quote := l.ch
	tok.Prefix = prefix
	tok.Type = STRING
	if quote == '\'' {
		tok.Type = CHAR
	}
	l.read()
	var sb strings.Builder
	for l.ch != quote {
		if l.ch == 0 || l.ch == '\n' {
			tok.Type, tok.Lex = ILLEGAL, "unterminated literal"
			return tok
		}
		if l.ch == '\\' {
			l.read()
			r, ok := l.escape()
			if !ok {
				tok.Type, tok.Lex = ILLEGAL, "malformed hex escape"
				return tok
			}
			sb.WriteRune(r)
			continue
		}
		sb.WriteRune(l.ch)
		l.read()
	}
	l.read()
	tok.Lex = sb.String()
	return tok
}

// escape decodes the escape sequence after a backslash. It fails for \x
// without digits or with a value past the largest code point.
func (l *Lexer) escape() (rune, bool) {
	c := l.ch
	l.read()
	switch c {
	case 'n':
		return '\n', true
	case 't':
		return '\t', true
	case 'r':
		return '\r', true
	case 'a':
		return '\a', true
	case 'b':
		return '\b', true
	case 'f':
		return '\f', true
	case 'v':
		return '\v', true
	case 'x':
		if !isHexDigit(l.ch) {
			return 0, false
		}
		var v rune
		for isHexDigit(l.ch) {
			v = v*16 + hexVal(l.ch)
			if v > unicode.MaxRune {
				return 0, false
			}
			l.read()
		}
		return v, true
	case '0', '1', '2', '3', '4', '5', '6', '7':
		v := c - '0'
		for n := 1; n < 3 && l.ch >= '0' && l.ch <= '7'; n++ {
			v = v*8 + (l.ch - '0')
			l.read()
		}
		return v, true
	}
	// \\, \', \", \? and unknown escapes stand for themselves.
	return c, true
}

func isHexDigit(c rune) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func hexVal(c rune) rune {
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	default:
		return c - 'A' + 10
	}
}
