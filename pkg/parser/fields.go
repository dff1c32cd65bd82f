package parser

import (
	"fmt"
	"strings"

	"github.com/fischerjooo/c2puml-sub000/pkg/model"
)

// FieldClass tags the outcome of field classification.
type FieldClass int

const (
	FieldPlain FieldClass = iota
	FieldPointer
	FieldArray
	FieldFunctionPointer
	FieldNestedAggregate
	FieldCommaList
)

func (c FieldClass) String() string {
	switch c {
	case FieldPointer:
		return "pointer"
	case FieldArray:
		return "array"
	case FieldFunctionPointer:
		return "function_pointer"
	case FieldNestedAggregate:
		return "nested_aggregate"
	case FieldCommaList:
		return "comma_list"
	default:
		return "plain"
	}
}

// ExtractFields splits the body of an aggregate span into individual field
// declarations. The span must lie within the token sequence; violating that
// is a programmer error and panics.
func ExtractFields(tokens []Token, span Span) []model.Field {
	checkSpan(tokens, span)

	body, ok := spanBody(tokens, span)
	if !ok {
		return nil
	}

	var fields []model.Field
	for _, run := range splitFieldRuns(body) {
		fields = append(fields, buildFields(run)...)
	}
	return fields
}

// checkSpan fails fast on an out-of-range span.
func checkSpan(tokens []Token, span Span) {
	if span.Start < 0 || span.End >= len(tokens) || span.Start > span.End {
		panic(fmt.Sprintf("parser: span [%d,%d] out of range for %d tokens",
			span.Start, span.End, len(tokens)))
	}
}

// spanBody returns the tokens strictly between the span's outermost brace
// pair.
func spanBody(tokens []Token, span Span) ([]Token, bool) {
	open := -1
	for j := span.Start; j <= span.End; j++ {
		if tokens[j].Kind == TokenLeftBrace {
			open = j
			break
		}
	}
	if open < 0 {
		return nil, false
	}
	close := matchBrace(tokens, open)
	if close < 0 || close > span.End {
		return nil, false
	}
	return tokens[open+1 : close], true
}

// splitFieldRuns collects token runs terminated by a semicolon at depth 0
// relative to each run's own start. A semicolon inside a nested aggregate,
// a function-pointer parameter list or an array-size expression never
// terminates the enclosing field.
func splitFieldRuns(body []Token) [][]Token {
	var runs [][]Token
	var run []Token
	depth := 0

	for _, tok := range body {
		switch tok.Kind {
		case TokenLeftBrace, TokenLeftParen, TokenLeftBracket:
			depth++
		case TokenRightBrace, TokenRightParen, TokenRightBracket:
			depth--
		case TokenSemicolon:
			if depth == 0 {
				if len(run) > 0 {
					runs = append(runs, run)
					run = nil
				}
				continue
			}
		}
		run = append(run, tok)
	}
	if len(run) > 0 {
		runs = append(runs, run)
	}
	return runs
}

// ClassifyField determines which of the declaration shapes a field run has.
func ClassifyField(run []Token) FieldClass {
	if isNestedAggregate(run) {
		return FieldNestedAggregate
	}
	if idx := functionPointerName(run); idx >= 0 {
		return FieldFunctionPointer
	}
	if hasTopLevelComma(run) {
		return FieldCommaList
	}
	if topLevelBracket(run) >= 0 {
		return FieldArray
	}
	for _, tok := range run {
		if tok.Kind == TokenStar {
			return FieldPointer
		}
	}
	return FieldPlain
}

// buildFields converts one collected run into zero or more fields.
// Structurally invalid runs (fewer than two tokens, no recoverable name)
// are dropped rather than inserted malformed.
func buildFields(run []Token) []model.Field {
	if len(run) < 2 {
		return nil
	}

	switch ClassifyField(run) {
	case FieldNestedAggregate:
		if f, ok := nestedAggregateField(run); ok {
			return []model.Field{f}
		}
		return nil

	case FieldFunctionPointer:
		idx := functionPointerName(run)
		return []model.Field{{Name: run[idx].Text, Type: JoinTokens(run)}}

	case FieldCommaList:
		return commaListFields(run)

	case FieldArray, FieldPointer, FieldPlain:
		if f, ok := declaratorField(run); ok {
			return []model.Field{f}
		}
		return nil
	}
	return nil
}

// isNestedAggregate reports whether the run declares an inline anonymous
// struct or union: "struct { ... } name".
func isNestedAggregate(run []Token) bool {
	if run[0].Kind != TokenStruct && run[0].Kind != TokenUnion {
		return false
	}
	for _, tok := range run {
		if tok.Kind == TokenLeftBrace {
			return true
		}
		if tok.Kind == TokenSemicolon {
			break
		}
	}
	return false
}

// nestedAggregateField extracts the field name following the outer closing
// brace and preserves the literal nested content for the resolver.
func nestedAggregateField(run []Token) (model.Field, bool) {
	open := -1
	for j, tok := range run {
		if tok.Kind == TokenLeftBrace {
			open = j
			break
		}
	}
	if open < 0 {
		return model.Field{}, false
	}
	close := matchBrace(run, open)
	if close < 0 {
		return model.Field{}, false
	}

	// An unnamed run is a C11 anonymous member; it is kept with an empty
	// name so the resolver can assign a counter-based one.
	name := ""
	for j := close + 1; j < len(run); j++ {
		if run[j].Kind == TokenIdentifier {
			name = run[j].Text
			break
		}
	}

	inner := JoinTokens(run[open+1 : close])
	return model.Field{
		Name:           name,
		Type:           fmt.Sprintf("%s { %s }", run[0].Text, inner),
		AnonymousInner: inner,
	}, true
}

// functionPointerName returns the index of the name identifier in a
// "( * name ) ( params )" pattern, or -1 when the run is not a function
// pointer declaration. An array suffix between the name and the closing
// parenthesis ("(*handlers[4])(...)") is tolerated.
func functionPointerName(run []Token) int {
	for j := 0; j+4 < len(run); j++ {
		if run[j].Kind != TokenLeftParen || run[j+1].Kind != TokenStar ||
			run[j+2].Kind != TokenIdentifier {
			continue
		}
		k := j + 3
		if run[k].Kind == TokenLeftBracket {
			depth := 1
			for k++; k < len(run) && depth > 0; k++ {
				switch run[k].Kind {
				case TokenLeftBracket:
					depth++
				case TokenRightBracket:
					depth--
				}
			}
		}
		if k+1 < len(run) && run[k].Kind == TokenRightParen && run[k+1].Kind == TokenLeftParen {
			return j + 2
		}
	}
	return -1
}

// hasTopLevelComma reports whether the run contains a comma outside any
// nesting.
func hasTopLevelComma(run []Token) bool {
	depth := 0
	for _, tok := range run {
		switch tok.Kind {
		case TokenLeftBrace, TokenLeftParen, TokenLeftBracket:
			depth++
		case TokenRightBrace, TokenRightParen, TokenRightBracket:
			depth--
		case TokenComma:
			if depth == 0 {
				return true
			}
		}
	}
	return false
}

// topLevelBracket returns the index of the first top-level '[', or -1.
func topLevelBracket(run []Token) int {
	depth := 0
	for j, tok := range run {
		switch tok.Kind {
		case TokenLeftBrace, TokenLeftParen:
			depth++
		case TokenRightBrace, TokenRightParen:
			depth--
		case TokenLeftBracket:
			if depth == 0 {
				return j
			}
		}
	}
	return -1
}

// declaratorField handles the plain, pointer and array shapes: the declared
// name is the last identifier before any array suffix; everything before it
// (minus its own pointer stars) is the base type.
func declaratorField(run []Token) (model.Field, bool) {
	bracket := topLevelBracket(run)

	nameIdx := -1
	limit := len(run)
	if bracket >= 0 {
		limit = bracket
	}
	for j := limit - 1; j >= 0; j-- {
		if run[j].Kind == TokenIdentifier {
			nameIdx = j
			break
		}
	}
	if nameIdx <= 0 {
		return model.Field{}, false
	}

	typeText := JoinTokens(run[:nameIdx])
	if bracket >= 0 {
		typeText = strings.TrimRight(typeText, " ") + arraySuffix(run[bracket:])
	}
	if typeText == "" {
		return model.Field{}, false
	}
	return model.Field{Name: run[nameIdx].Text, Type: typeText}, true
}

// arraySuffix renders one or more bracket groups as "[size][size]...".
func arraySuffix(run []Token) string {
	var sb strings.Builder
	depth := 0
	var inner []Token
	for _, tok := range run {
		switch tok.Kind {
		case TokenLeftBracket:
			depth++
			if depth == 1 {
				inner = nil
				continue
			}
		case TokenRightBracket:
			depth--
			if depth == 0 {
				sb.WriteString("[" + JoinTokens(inner) + "]")
				continue
			}
		}
		if depth > 0 {
			inner = append(inner, tok)
		}
	}
	return sb.String()
}

// commaListFields expands "int a, b, c;" style declarations. The first
// declared name fixes the base type; each following name re-checks its own
// leading stars and array suffix.
func commaListFields(run []Token) []model.Field {
	groups := splitTopLevel(run, TokenComma)
	if len(groups) == 0 {
		return nil
	}

	first := groups[0]
	bracket := topLevelBracket(first)
	limit := len(first)
	if bracket >= 0 {
		limit = bracket
	}
	nameIdx := -1
	for j := limit - 1; j >= 0; j-- {
		if first[j].Kind == TokenIdentifier {
			nameIdx = j
			break
		}
	}
	if nameIdx <= 0 {
		return nil
	}

	// Strip the first name's own pointer stars off the shared base type.
	baseEnd := nameIdx
	firstStars := 0
	for baseEnd > 0 && first[baseEnd-1].Kind == TokenStar {
		baseEnd--
		firstStars++
	}
	base := JoinTokens(first[:baseEnd])
	if base == "" {
		return nil
	}

	var fields []model.Field
	appendField := func(name string, stars int, suffix string) {
		typeText := base
		if stars > 0 {
			typeText += " " + strings.Repeat("*", stars)
		}
		typeText += suffix
		fields = append(fields, model.Field{Name: name, Type: typeText})
	}

	suffix := ""
	if bracket >= 0 {
		suffix = arraySuffix(first[bracket:])
	}
	appendField(first[nameIdx].Text, firstStars, suffix)

	for _, group := range groups[1:] {
		stars := 0
		j := 0
		for j < len(group) && group[j].Kind == TokenStar {
			stars++
			j++
		}
		if j >= len(group) || group[j].Kind != TokenIdentifier {
			continue
		}
		name := group[j].Text
		suffix := ""
		if b := topLevelBracket(group); b >= 0 {
			suffix = arraySuffix(group[b:])
		}
		appendField(name, stars, suffix)
	}
	return fields
}

// splitTopLevel splits a run at the given kind, ignoring nested regions.
func splitTopLevel(run []Token, at TokenKind) [][]Token {
	var groups [][]Token
	var group []Token
	depth := 0
	for _, tok := range run {
		switch tok.Kind {
		case TokenLeftBrace, TokenLeftParen, TokenLeftBracket:
			depth++
		case TokenRightBrace, TokenRightParen, TokenRightBracket:
			depth--
		}
		if tok.Kind == at && depth == 0 {
			groups = append(groups, group)
			group = nil
			continue
		}
		group = append(group, tok)
	}
	groups = append(groups, group)
	return groups
}

// ExtractEnumValues returns the enumerators of an enum span. Each segment is
// either "NAME" or "NAME = EXPR"; the expression text is kept unparsed.
func ExtractEnumValues(tokens []Token, span Span) []model.EnumValue {
	checkSpan(tokens, span)

	body, ok := spanBody(tokens, span)
	if !ok {
		return nil
	}

	var values []model.EnumValue
	for _, segment := range splitTopLevel(body, TokenComma) {
		if len(segment) == 0 {
			continue
		}
		if segment[0].Kind != TokenIdentifier {
			continue
		}
		value := model.EnumValue{Name: segment[0].Text}
		if len(segment) >= 3 && segment[1].Kind == TokenEquals {
			value.Value = JoinTokens(segment[2:])
		}
		values = append(values, value)
	}
	return values
}

// ExtractParameters splits a function span's parameter list into fields.
// An empty list or a lone void yields no parameters; an ellipsis yields a
// single "..." parameter.
func ExtractParameters(tokens []Token, span Span, functionName string) []model.Field {
	checkSpan(tokens, span)

	open := -1
	for j := span.Start; j <= span.End; j++ {
		if tokens[j].Kind == TokenIdentifier && tokens[j].Text == functionName &&
			j+1 <= span.End && tokens[j+1].Kind == TokenLeftParen {
			open = j + 1
			break
		}
	}
	if open < 0 {
		return nil
	}
	close := matchParen(tokens, open)
	if close < 0 || close > span.End {
		return nil
	}

	list := tokens[open+1 : close]
	if len(list) == 0 {
		return nil
	}
	if len(list) == 1 && list[0].Kind == TokenVoid {
		return nil
	}

	var params []model.Field
	for _, group := range splitTopLevel(list, TokenComma) {
		if len(group) == 0 {
			continue
		}
		if isEllipsis(group) {
			params = append(params, model.Field{Name: "...", Type: "..."})
			continue
		}
		params = append(params, buildFields(group)...)
	}
	return params
}

// ParseFieldList parses a bare field-declaration list, as found inside an
// anonymous aggregate body, into fields. Used by the resolver when it
// re-parses embedded inner text.
func ParseFieldList(inner string) []model.Field {
	body := FilterDefault(Tokenize(inner))
	var fields []model.Field
	for _, run := range splitFieldRuns(body) {
		fields = append(fields, buildFields(run)...)
	}
	return fields
}

// isEllipsis matches a literal "..." parameter, lexed as three dot tokens.
func isEllipsis(group []Token) bool {
	if len(group) != 3 {
		return false
	}
	for _, tok := range group {
		if tok.Kind != TokenDot {
			return false
		}
	}
	return true
}
