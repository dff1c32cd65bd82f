package parser

// Span is an inclusive token-index range covering one balanced construct.
// The matching closer of the construct's opening brace always lies within
// [Start, End]; unmatched constructs never produce a Span.
type Span struct {
	Start int
	End   int
}

// AggregateInfo is a located struct, union or enum definition.
type AggregateInfo struct {
	Span Span
	Name string
}

// FunctionInfo is a located function declaration or definition.
type FunctionInfo struct {
	Span          Span
	Name          string
	ReturnType    string
	IsDeclaration bool
	IsInline      bool
}

// returnTypeLookback bounds the backward walk that collects a function's
// return type tokens.
const returnTypeLookback = 10

// FindAggregates locates struct or union definitions in a filtered token
// sequence. kind must be TokenStruct or TokenUnion. Casts, forward
// declarations and plain variable declarations are skipped.
func FindAggregates(tokens []Token, kind TokenKind) []AggregateInfo {
	return findTagged(tokens, kind)
}

// FindEnums locates enum definitions in a filtered token sequence.
func FindEnums(tokens []Token) []AggregateInfo {
	return findTagged(tokens, TokenEnum)
}

// findTagged scans left to right for keyword-introduced brace constructs.
func findTagged(tokens []Token, kind TokenKind) []AggregateInfo {
	var found []AggregateInfo

	i := 0
	for i < len(tokens) {
		if tokens[i].Kind != kind {
			i++
			continue
		}

		// Cast rejection: "(struct foo*)ptr" and declarations such as
		// "struct foo x;" must not be taken for definitions.
		if i > 0 && tokens[i-1].Kind == TokenLeftParen {
			i++
			continue
		}
		bracePos := -1
		for j := i + 1; j < len(tokens); j++ {
			k := tokens[j].Kind
			if k == TokenLeftBrace {
				bracePos = j
				break
			}
			if k == TokenRightParen || k == TokenSemicolon {
				break
			}
		}
		if bracePos < 0 {
			i++
			continue
		}

		tag := ""
		if tokens[i+1].Kind == TokenIdentifier && i+1 < bracePos {
			tag = tokens[i+1].Text
		}

		closePos := matchBrace(tokens, bracePos)
		if closePos < 0 {
			i++
			continue
		}

		// A typedef may precede the keyword, separated only by further
		// aggregate keywords or braces.
		back := i - 1
		for back >= 0 {
			k := tokens[back].Kind
			if k == TokenStruct || k == TokenUnion || k == TokenEnum ||
				k == TokenLeftBrace || k == TokenRightBrace {
				back--
				continue
			}
			break
		}
		hasTypedef := back >= 0 && tokens[back].Kind == TokenTypedef

		// Resolve the entity name from what follows the closing brace.
		name := tag
		semiPos := -1
		trailingIdent := ""
		for j := closePos + 1; j < len(tokens); j++ {
			if tokens[j].Kind == TokenSemicolon {
				semiPos = j
				break
			}
			if tokens[j].Kind == TokenIdentifier && trailingIdent == "" {
				trailingIdent = tokens[j].Text
			}
		}
		if hasTypedef {
			if trailingIdent != "" {
				name = trailingIdent
			}
		} else if trailingIdent != "" {
			// "struct { ... } instance;" declares a variable of an
			// anonymous aggregate.
			name = ""
		}

		end := closePos
		if semiPos >= 0 {
			end = semiPos
		}

		found = append(found, AggregateInfo{Span: Span{Start: i, End: end}, Name: name})
		i = end + 1
	}

	return found
}

// matchBrace returns the index of the brace matching the opener at open,
// or -1 when the construct is unbalanced.
func matchBrace(tokens []Token, open int) int {
	depth := 1
	for j := open + 1; j < len(tokens); j++ {
		switch tokens[j].Kind {
		case TokenLeftBrace:
			depth++
		case TokenRightBrace:
			depth--
			if depth == 0 {
				return j
			}
		}
	}
	return -1
}

// matchParen returns the index of the parenthesis matching the opener at
// open, or -1 when unbalanced.
func matchParen(tokens []Token, open int) int {
	depth := 1
	for j := open + 1; j < len(tokens); j++ {
		switch tokens[j].Kind {
		case TokenLeftParen:
			depth++
		case TokenRightParen:
			depth--
			if depth == 0 {
				return j
			}
		}
	}
	return -1
}

// FindFunctions locates function declarations and definitions in a filtered
// token sequence. The span of a definition covers its whole body, so nothing
// inside a body is scanned twice.
func FindFunctions(tokens []Token) []FunctionInfo {
	var found []FunctionInfo

	i := 0
	for i < len(tokens) {
		if tokens[i].Kind != TokenLeftParen || i == 0 || tokens[i-1].Kind != TokenIdentifier {
			i++
			continue
		}

		nameIdx := i - 1

		// Walk backward from the name collecting a contiguous run of
		// return-type-eligible tokens.
		isInline := false
		first := nameIdx
		for steps := 0; steps < returnTypeLookback && first > 0; steps++ {
			k := tokens[first-1].Kind
			if !isReturnTypeToken(k) {
				break
			}
			if k == TokenInline {
				isInline = true
			}
			first--
		}
		if first == nameIdx {
			i++
			continue
		}

		closeParen := matchParen(tokens, i)
		if closeParen < 0 || closeParen+1 >= len(tokens) {
			i++
			continue
		}

		end := -1
		isDeclaration := false
		switch tokens[closeParen+1].Kind {
		case TokenSemicolon:
			isDeclaration = true
			end = closeParen + 1
		case TokenLeftBrace:
			end = matchBrace(tokens, closeParen+1)
		}
		if end < 0 {
			i++
			continue
		}

		found = append(found, FunctionInfo{
			Span:          Span{Start: first, End: end},
			Name:          tokens[nameIdx].Text,
			ReturnType:    returnTypeText(tokens[first:nameIdx]),
			IsDeclaration: isDeclaration,
			IsInline:      isInline,
		})
		i = end + 1
	}

	return found
}

// isReturnTypeToken reports whether a token kind may appear in the
// return-type run preceding a function name.
func isReturnTypeToken(k TokenKind) bool {
	if k.IsPrimitiveType() {
		return true
	}
	switch k {
	case TokenIdentifier, TokenStar, TokenConst, TokenStatic, TokenExtern, TokenInline:
		return true
	}
	return false
}

// returnTypeText renders the collected run as the return type, dropping
// storage and linkage modifiers.
func returnTypeText(run []Token) string {
	kept := make([]Token, 0, len(run))
	for _, tok := range run {
		switch tok.Kind {
		case TokenStatic, TokenExtern, TokenInline:
			continue
		}
		kept = append(kept, tok)
	}
	return JoinTokens(kept)
}
