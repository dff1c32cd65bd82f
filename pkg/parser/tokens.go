// Package parser converts C/C++ source text into a structured model of
// types, fields, functions and relationships.
package parser

import (
	"fmt"
	"strings"
)

// TokenKind classifies a lexed token.
type TokenKind int

const (
	TokenEOF TokenKind = iota
	TokenUnknown
	TokenWhitespace
	TokenNewline
	TokenComment

	// Preprocessor
	TokenInclude
	TokenDefine
	TokenPreprocessor

	// Literals
	TokenIdentifier
	TokenNumber
	TokenString
	TokenCharLiteral

	// Keywords
	TokenStruct
	TokenEnum
	TokenUnion
	TokenTypedef
	TokenStatic
	TokenExtern
	TokenInline
	TokenConst
	TokenVoid

	// Primitive type keywords
	TokenChar
	TokenShort
	TokenInt
	TokenLong
	TokenFloat
	TokenDouble
	TokenSigned
	TokenUnsigned
	TokenBool

	// Punctuation
	TokenLeftParen    // (
	TokenRightParen   // )
	TokenLeftBrace    // {
	TokenRightBrace   // }
	TokenLeftBracket  // [
	TokenRightBracket // ]
	TokenSemicolon    // ;
	TokenColon        // :
	TokenComma        // ,
	TokenDot          // .
	TokenArrow        // ->
	TokenStar         // *
	TokenAmpersand    // &
	TokenEquals       // =
	TokenLess         // <
	TokenGreater      // >
	TokenPlus         // +
	TokenMinus        // -
	TokenSlash        // /
	TokenPercent      // %
	TokenExclamation  // !
	TokenQuestion     // ?
	TokenTilde        // ~
	TokenCaret        // ^
	TokenPipe         // |
	TokenBackslash    // \
	TokenHash         // #
)

// Token is a single classified token with its source position.
// Tokens are immutable once produced.
type Token struct {
	Kind   TokenKind
	Text   string
	Line   int
	Column int
}

// String returns a debug representation of the token.
func (t Token) String() string {
	switch t.Kind {
	case TokenEOF:
		return "EOF"
	case TokenNewline:
		return "NEWLINE"
	case TokenWhitespace:
		return "WHITESPACE"
	default:
		return fmt.Sprintf("%s:%s", kindNames[t.Kind], t.Text)
	}
}

// kindNames maps token kinds to their names for debugging.
var kindNames = map[TokenKind]string{
	TokenEOF:          "EOF",
	TokenUnknown:      "UNKNOWN",
	TokenWhitespace:   "WHITESPACE",
	TokenNewline:      "NEWLINE",
	TokenComment:      "COMMENT",
	TokenInclude:      "INCLUDE",
	TokenDefine:       "DEFINE",
	TokenPreprocessor: "PREPROCESSOR",
	TokenIdentifier:   "IDENTIFIER",
	TokenNumber:       "NUMBER",
	TokenString:       "STRING",
	TokenCharLiteral:  "CHAR",
	TokenStruct:       "STRUCT",
	TokenEnum:         "ENUM",
	TokenUnion:        "UNION",
	TokenTypedef:      "TYPEDEF",
	TokenStatic:       "STATIC",
	TokenExtern:       "EXTERN",
	TokenInline:       "INLINE",
	TokenConst:        "CONST",
	TokenVoid:         "VOID",
	TokenChar:         "CHAR_KW",
	TokenShort:        "SHORT",
	TokenInt:          "INT",
	TokenLong:         "LONG",
	TokenFloat:        "FLOAT",
	TokenDouble:       "DOUBLE",
	TokenSigned:       "SIGNED",
	TokenUnsigned:     "UNSIGNED",
	TokenBool:         "BOOL",
	TokenLeftParen:    "LEFT_PAREN",
	TokenRightParen:   "RIGHT_PAREN",
	TokenLeftBrace:    "LEFT_BRACE",
	TokenRightBrace:   "RIGHT_BRACE",
	TokenLeftBracket:  "LEFT_BRACKET",
	TokenRightBracket: "RIGHT_BRACKET",
	TokenSemicolon:    "SEMICOLON",
	TokenColon:        "COLON",
	TokenComma:        "COMMA",
	TokenDot:          "DOT",
	TokenArrow:        "ARROW",
	TokenStar:         "STAR",
	TokenAmpersand:    "AMPERSAND",
	TokenEquals:       "EQUALS",
	TokenLess:         "LESS",
	TokenGreater:      "GREATER",
	TokenPlus:         "PLUS",
	TokenMinus:        "MINUS",
	TokenSlash:        "SLASH",
	TokenPercent:      "PERCENT",
	TokenExclamation:  "EXCLAMATION",
	TokenQuestion:     "QUESTION",
	TokenTilde:        "TILDE",
	TokenCaret:        "CARET",
	TokenPipe:         "PIPE",
	TokenBackslash:    "BACKSLASH",
	TokenHash:         "HASH",
}

// keywords maps lowercased identifier text to keyword kinds.
// Lookup is case-insensitive; LOCAL_INLINE is the AUTOSAR spelling of inline.
var keywords = map[string]TokenKind{
	"struct":       TokenStruct,
	"enum":         TokenEnum,
	"union":        TokenUnion,
	"typedef":      TokenTypedef,
	"static":       TokenStatic,
	"extern":       TokenExtern,
	"inline":       TokenInline,
	"local_inline": TokenInline,
	"const":        TokenConst,
	"void":         TokenVoid,
	"char":         TokenChar,
	"short":        TokenShort,
	"int":          TokenInt,
	"long":         TokenLong,
	"float":        TokenFloat,
	"double":       TokenDouble,
	"signed":       TokenSigned,
	"unsigned":     TokenUnsigned,
	"bool":         TokenBool,
	"_bool":        TokenBool,
}

// punctuation maps single characters to their token kinds.
// The only two-character entry, "->", is handled before this table.
var punctuation = map[byte]TokenKind{
	'(':  TokenLeftParen,
	')':  TokenRightParen,
	'{':  TokenLeftBrace,
	'}':  TokenRightBrace,
	'[':  TokenLeftBracket,
	']':  TokenRightBracket,
	';':  TokenSemicolon,
	':':  TokenColon,
	',':  TokenComma,
	'.':  TokenDot,
	'*':  TokenStar,
	'&':  TokenAmpersand,
	'=':  TokenEquals,
	'<':  TokenLess,
	'>':  TokenGreater,
	'+':  TokenPlus,
	'-':  TokenMinus,
	'/':  TokenSlash,
	'%':  TokenPercent,
	'!':  TokenExclamation,
	'?':  TokenQuestion,
	'~':  TokenTilde,
	'^':  TokenCaret,
	'|':  TokenPipe,
	'\\': TokenBackslash,
	'#':  TokenHash,
}

// IsPrimitiveType reports whether the kind is a primitive type keyword.
func (k TokenKind) IsPrimitiveType() bool {
	switch k {
	case TokenVoid, TokenChar, TokenShort, TokenInt, TokenLong,
		TokenFloat, TokenDouble, TokenSigned, TokenUnsigned, TokenBool:
		return true
	}
	return false
}

// IsKeyword reports whether the kind is a keyword token.
func (k TokenKind) IsKeyword() bool {
	return k >= TokenStruct && k <= TokenBool
}

// Filter returns the subsequence of tokens omitting the given kinds.
func Filter(tokens []Token, excluded ...TokenKind) []Token {
	skip := make(map[TokenKind]bool, len(excluded))
	for _, k := range excluded {
		skip[k] = true
	}
	out := make([]Token, 0, len(tokens))
	for _, tok := range tokens {
		if !skip[tok.Kind] {
			out = append(out, tok)
		}
	}
	return out
}

// FilterDefault applies the default exclusion set used by all structural
// scans: whitespace, comments, newlines and the EOF marker.
func FilterDefault(tokens []Token) []Token {
	return Filter(tokens, TokenWhitespace, TokenComment, TokenNewline, TokenEOF)
}

// JoinTokens renders a token run as source-like text with single spaces.
func JoinTokens(tokens []Token) string {
	parts := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		parts = append(parts, tok.Text)
	}
	return strings.Join(parts, " ")
}
