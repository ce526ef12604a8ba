package lexer

type TokenType int

const (
	// Special
	EOF TokenType = iota
	ILLEGAL

	// Identifiers + literals
	IDENT
	INT
	FLOAT
	CHAR
	STRING
	POSITIONAL // $N

	// Keywords
	KW_VOID
	KW_BOOL
	KW_CHAR
	KW_SHORT
	KW_INT
	KW_LONG
	KW_SIGNED
	KW_UNSIGNED
	KW_FLOAT
	KW_DOUBLE
	KW_STRUCT
	KW_UNION
	KW_ENUM
	KW_CONST
	KW_VOLATILE
	KW_RESTRICT
	KW_SIZEOF
	KW_ALIGNOF
	KW_GENERIC
	KW_DEFAULT
	KW_PTR          // _Ptr
	KW_ARRAY_PTR    // _Array_ptr
	KW_NT_ARRAY_PTR // _Nt_array_ptr
	KW_DYNAMIC_CAST // _Dynamic_bounds_cast
	KW_ASSUME_CAST  // _Assume_bounds_cast

	// Symbols
	LPAREN   // (
	RPAREN   // )
	LBRACE   // {
	RBRACE   // }
	LBRACK   // [
	RBRACK   // ]
	SEMI     // ;
	COMMA    // ,
	COLON    // :
	SCOPE    // ::
	QUESTION // ?
	DOT      // .
	ARROW    // ->
	AT       // @
	ASSIGN   // =

	// Arithmetic
	PLUS    // +
	MINUS   // -
	STAR    // *
	SLASH   // /
	PERCENT // %
	INC     // ++
	DEC     // --

	// Shifts
	SHL // <<
	SHR // >>

	// Bitwise/logical
	AMP    // &
	ANDAND // &&
	OROR   // ||
	PIPE   // |
	CARET  // ^
	TILDE  // ~
	BANG   // !

	// Comparison
	EQEQ // ==
	NEQ  // !=
	LT   // <
	LE   // <=
	GT   // >
	GE   // >=

	// Compound assignment
	STAR_ASSIGN    // *=
	SLASH_ASSIGN   // /=
	PERCENT_ASSIGN // %=
	PLUS_ASSIGN    // +=
	MINUS_ASSIGN   // -=
	SHL_ASSIGN     // <<=
	SHR_ASSIGN     // >>=
	AMP_ASSIGN     // &=
	CARET_ASSIGN   // ^=
	PIPE_ASSIGN    // |=
)

var keywords = map[string]TokenType{
	"void":                 KW_VOID,
	"_Bool":                KW_BOOL,
	"char":                 KW_CHAR,
	"short":                KW_SHORT,
	"int":                  KW_INT,
	"long":                 KW_LONG,
	"signed":               KW_SIGNED,
	"unsigned":             KW_UNSIGNED,
	"float":                KW_FLOAT,
	"double":               KW_DOUBLE,
	"struct":               KW_STRUCT,
	"union":                KW_UNION,
	"enum":                 KW_ENUM,
	"const":                KW_CONST,
	"volatile":             KW_VOLATILE,
	"restrict":             KW_RESTRICT,
	"sizeof":               KW_SIZEOF,
	"_Alignof":             KW_ALIGNOF,
	"_Generic":             KW_GENERIC,
	"default":              KW_DEFAULT,
	"_Ptr":                 KW_PTR,
	"_Array_ptr":           KW_ARRAY_PTR,
	"_Nt_array_ptr":        KW_NT_ARRAY_PTR,
	"_Dynamic_bounds_cast": KW_DYNAMIC_CAST,
	"_Assume_bounds_cast":  KW_ASSUME_CAST,
}

var tokenNames = map[TokenType]string{
	EOF: "EOF", ILLEGAL: "ILLEGAL", IDENT: "identifier", INT: "integer",
	FLOAT: "float", CHAR: "char", STRING: "string", POSITIONAL: "positional",
	LPAREN: "(", RPAREN: ")", LBRACE: "{", RBRACE: "}", LBRACK: "[",
	RBRACK: "]", SEMI: ";", COMMA: ",", COLON: ":", SCOPE: "::",
	QUESTION: "?", DOT: ".",
	ARROW: "->", AT: "@", ASSIGN: "=", PLUS: "+", MINUS: "-", STAR: "*",
	SLASH: "/", PERCENT: "%", INC: "++", DEC: "--", SHL: "<<", SHR: ">>",
	AMP: "&", ANDAND: "&&", OROR: "||", PIPE: "|", CARET: "^", TILDE: "~",
	BANG: "!", EQEQ: "==", NEQ: "!=", LT: "<", LE: "<=", GT: ">", GE: ">=",
	STAR_ASSIGN: "*=", SLASH_ASSIGN: "/=", PERCENT_ASSIGN: "%=",
	PLUS_ASSIGN: "+=", MINUS_ASSIGN: "-=", SHL_ASSIGN: "<<=",
	SHR_ASSIGN: ">>=", AMP_ASSIGN: "&=", CARET_ASSIGN: "^=", PIPE_ASSIGN: "|=",
}

func (t TokenType) String() string {
	if s, ok := tokenNames[t]; ok {
		return s
	}
	for k, v := range keywords {
		if v == t {
			return k
		}
	}
	return "token"
}

type Token struct {
	Type TokenType
	Lex  string
	// Prefix is the encoding prefix of a STRING or CHAR token: "", "L",
	// "u8", "u" or "U".
	Prefix string
	Line   int
	Col    int
}

func (t Token) Is(op TokenType) bool { return t.Type == op }

// IsTypeStart reports whether t can begin a type name, not counting
// typedef names.
func (t Token) IsTypeStart() bool {
	switch t.Type {
	case KW_VOID, KW_BOOL, KW_CHAR, KW_SHORT, KW_INT, KW_LONG, KW_SIGNED,
		KW_UNSIGNED, KW_FLOAT, KW_DOUBLE, KW_STRUCT, KW_UNION, KW_ENUM,
		KW_CONST, KW_VOLATILE, KW_RESTRICT, KW_PTR, KW_ARRAY_PTR, KW_NT_ARRAY_PTR:
		return true
	}
	return false
}
