package parser

import (
	"regexp"
	"strings"
)

// numberPattern matches C numeric literals: hex, binary, decimal/octal
// integers, floats with optional exponent, and integer/float suffixes.
var numberPattern = regexp.MustCompile(`^(?:0[xX][0-9a-fA-F]+|0[bB][01]+|(?:[0-9]+\.?[0-9]*|\.[0-9]+)(?:[eE][+-]?[0-9]+)?)[uUlLfF]*`)

// identifierPattern matches a C identifier.
var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*`)

// Tokenizer scans source text line by line. Three constructs carry over
// across line boundaries: unterminated string literals, open block comments
// and #define bodies ending in a backslash continuation.
type Tokenizer struct {
	lines  []string
	li     int // current line index
	pos    int // current byte offset within the line
	tokens []Token
}

// NewTokenizer creates a tokenizer for the given source text.
func NewTokenizer(input string) *Tokenizer {
	return &Tokenizer{
		lines:  strings.Split(input, "\n"),
		tokens: make([]Token, 0, 256),
	}
}

// Tokenize scans source text into tokens. It never fails: unrecognized
// characters become single-character UNKNOWN tokens. A NEWLINE token is
// emitted after each line except the final one, and the sequence always
// ends with exactly one EOF token.
func Tokenize(input string) []Token {
	return NewTokenizer(input).Tokenize()
}

// Tokenize runs the scan loop.
func (t *Tokenizer) Tokenize() []Token {
	iterations := 0
	maxIterations := 0
	for _, line := range t.lines {
		maxIterations += len(line) + 2
	}

	for t.li < len(t.lines) {
		line := t.lines[t.li]
		if t.pos >= len(line) {
			if t.li < len(t.lines)-1 {
				t.add(TokenNewline, "\n", t.li+1, len(line)+1)
			}
			t.li++
			t.pos = 0
			continue
		}

		oldLi, oldPos := t.li, t.pos
		t.scanToken()

		// The scan functions always advance, but guard against a stuck
		// position rather than looping forever on pathological input.
		if t.li == oldLi && t.pos == oldPos {
			t.add(TokenUnknown, line[t.pos:t.pos+1], t.li+1, t.pos+1)
			t.pos++
		}
		iterations++
		if iterations > maxIterations {
			break
		}
	}

	last := len(t.lines) - 1
	t.tokens = append(t.tokens, Token{
		Kind:   TokenEOF,
		Line:   last + 1,
		Column: len(t.lines[last]) + 1,
	})
	return t.tokens
}

// add appends a token.
func (t *Tokenizer) add(kind TokenKind, text string, line, col int) {
	t.tokens = append(t.tokens, Token{Kind: kind, Text: text, Line: line, Column: col})
}

// scanToken scans one token starting at the current position. First match
// wins, with greedy matching inside each category.
func (t *Tokenizer) scanToken() {
	line := t.lines[t.li]
	rest := line[t.pos:]
	startLine, startCol := t.li+1, t.pos+1

	switch {
	case rest[0] == ' ' || rest[0] == '\t' || rest[0] == '\r':
		n := 1
		for n < len(rest) && (rest[n] == ' ' || rest[n] == '\t' || rest[n] == '\r') {
			n++
		}
		t.add(TokenWhitespace, rest[:n], startLine, startCol)
		t.pos += n

	case strings.HasPrefix(rest, "//"):
		t.add(TokenComment, rest, startLine, startCol)
		t.pos = len(line)

	case strings.HasPrefix(rest, "/*"):
		t.scanBlockComment(startLine, startCol)

	case rest[0] == '#':
		t.scanDirective(startLine, startCol)

	case stringStart(rest) >= 0:
		t.scanString(stringStart(rest), startLine, startCol)

	case rest[0] == '\'':
		t.scanCharLiteral(startLine, startCol)

	case isDigit(rest[0]) || (rest[0] == '.' && len(rest) > 1 && isDigit(rest[1])):
		m := numberPattern.FindString(rest)
		t.add(TokenNumber, m, startLine, startCol)
		t.pos += len(m)

	case strings.HasPrefix(rest, "->"):
		t.add(TokenArrow, "->", startLine, startCol)
		t.pos += 2

	default:
		if m := identifierPattern.FindString(rest); m != "" {
			kind := TokenIdentifier
			if kw, ok := keywords[strings.ToLower(m)]; ok {
				kind = kw
			}
			t.add(kind, m, startLine, startCol)
			t.pos += len(m)
		} else if kind, ok := punctuation[rest[0]]; ok {
			t.add(kind, rest[:1], startLine, startCol)
			t.pos++
		} else {
			t.add(TokenUnknown, rest[:1], startLine, startCol)
			t.pos++
		}
	}
}

// stringStart returns the offset of the opening quote when rest begins a
// string literal, accounting for the L, u, U and u8 prefixes. Returns -1
// when rest does not start a string literal.
func stringStart(rest string) int {
	if rest[0] == '"' {
		return 0
	}
	if len(rest) > 1 && rest[1] == '"' && (rest[0] == 'L' || rest[0] == 'u' || rest[0] == 'U') {
		return 1
	}
	if len(rest) > 2 && rest[0] == 'u' && rest[1] == '8' && rest[2] == '"' {
		return 2
	}
	return -1
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// scanBlockComment consumes a /* ... */ comment, carrying over as many lines
// as needed. An unterminated comment runs to end of input.
func (t *Tokenizer) scanBlockComment(startLine, startCol int) {
	line := t.lines[t.li]
	var text strings.Builder
	text.WriteString(line[t.pos : t.pos+2])
	searchFrom := t.pos + 2

	for {
		if idx := strings.Index(line[searchFrom:], "*/"); idx >= 0 {
			text.WriteString(line[searchFrom : searchFrom+idx+2])
			t.pos = searchFrom + idx + 2
			break
		}
		text.WriteString(line[searchFrom:])
		if t.li >= len(t.lines)-1 {
			t.pos = len(line)
			break
		}
		text.WriteString("\n")
		t.li++
		line = t.lines[t.li]
		searchFrom = 0
	}

	t.add(TokenComment, text.String(), startLine, startCol)
}

// scanDirective consumes a preprocessor directive to end of line. #include
// and #define get their own kinds; everything else is PREPROCESSOR. A
// #define body ending in a backslash swallows the following physical lines
// until one does not end in a backslash, yielding one multi-line token.
func (t *Tokenizer) scanDirective(startLine, startCol int) {
	line := t.lines[t.li]
	after := strings.TrimLeft(line[t.pos+1:], " \t")
	word := identifierPattern.FindString(after)

	kind := TokenPreprocessor
	switch word {
	case "include":
		kind = TokenInclude
	case "define":
		kind = TokenDefine
	}

	text := line[t.pos:]
	t.pos = len(line)

	if kind == TokenDefine {
		for strings.HasSuffix(strings.TrimRight(text, " \t"), "\\") && t.li < len(t.lines)-1 {
			trimmed := strings.TrimRight(text, " \t")
			text = trimmed[:len(trimmed)-1] + "\n" + t.lines[t.li+1]
			t.li++
			t.pos = len(t.lines[t.li])
		}
	}

	t.add(kind, text, startLine, startCol)
}

// scanString consumes a string literal starting at the current position,
// where qoff is the offset of the opening quote past any literal prefix.
// An unterminated literal carries over to following lines; at end of input
// whatever was collected is emitted as a STRING token.
func (t *Tokenizer) scanString(qoff, startLine, startCol int) {
	line := t.lines[t.li]
	var text strings.Builder
	text.WriteString(line[t.pos : t.pos+qoff+1])
	i := t.pos + qoff + 1

	for {
		for i < len(line) {
			c := line[i]
			if c == '\\' && i+1 < len(line) {
				text.WriteByte(c)
				text.WriteByte(line[i+1])
				i += 2
				continue
			}
			text.WriteByte(c)
			i++
			if c == '"' {
				t.pos = i
				t.add(TokenString, text.String(), startLine, startCol)
				return
			}
		}
		if t.li >= len(t.lines)-1 {
			t.pos = len(line)
			t.add(TokenString, text.String(), startLine, startCol)
			return
		}
		text.WriteString("\n")
		t.li++
		line = t.lines[t.li]
		i = 0
	}
}

// scanCharLiteral consumes a character literal. A quote with no closing
// quote on the same line is emitted as a single UNKNOWN token.
func (t *Tokenizer) scanCharLiteral(startLine, startCol int) {
	line := t.lines[t.li]
	i := t.pos + 1

	for i < len(line) {
		c := line[i]
		if c == '\\' && i+1 < len(line) {
			i += 2
			continue
		}
		i++
		if c == '\'' {
			t.add(TokenCharLiteral, line[t.pos:i], startLine, startCol)
			t.pos = i
			return
		}
	}

	t.add(TokenUnknown, line[t.pos:t.pos+1], startLine, startCol)
	t.pos++
}
