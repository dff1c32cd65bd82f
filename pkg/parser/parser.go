package parser

import (
	"regexp"

	"github.com/fischerjooo/c2puml-sub000/pkg/model"
)

var (
	includeTargetPattern = regexp.MustCompile(`[<"]([^>"]+)[>"]`)
	defineNamePattern    = regexp.MustCompile(`^#\s*define\s+(\w+)`)
)

// Parser assembles a FileModel from raw source text: tokenize, locate
// structural spans, extract fields and signatures, then resolve anonymous
// aggregates in place.
type Parser struct {
	resolver *Resolver
}

// New creates a parser with a default resolver.
func New() *Parser {
	return &Parser{resolver: NewResolver()}
}

// NewWithResolver creates a parser using the given resolver, letting the
// caller control the resolution depth bound.
func NewWithResolver(r *Resolver) *Parser {
	return &Parser{resolver: r}
}

// Parse builds the model for one file. It never fails: malformed input
// degrades to fewer recovered entities, not an error.
func (p *Parser) Parse(filename, content string) *model.FileModel {
	fm := model.NewFileModel(filename)

	raw := Tokenize(content)
	tokens := FilterDefault(raw)

	p.collectPreprocessor(fm, raw)

	for _, info := range FindAggregates(tokens, TokenStruct) {
		if info.Name == "" {
			// An anonymous file-scope aggregate declares only a variable;
			// there is no name to register it under.
			continue
		}
		if _, exists := fm.Structs[info.Name]; exists {
			continue
		}
		fm.Structs[info.Name] = &model.Aggregate{
			Name:   info.Name,
			Kind:   model.KindStruct,
			Fields: ExtractFields(tokens, info.Span),
		}
	}

	for _, info := range FindAggregates(tokens, TokenUnion) {
		if info.Name == "" {
			continue
		}
		if _, exists := fm.Unions[info.Name]; exists {
			continue
		}
		fm.Unions[info.Name] = &model.Aggregate{
			Name:   info.Name,
			Kind:   model.KindUnion,
			Fields: ExtractFields(tokens, info.Span),
		}
	}

	for _, info := range FindEnums(tokens) {
		if info.Name == "" {
			continue
		}
		if _, exists := fm.Enums[info.Name]; exists {
			continue
		}
		fm.Enums[info.Name] = &model.Enum{
			Name:   info.Name,
			Values: ExtractEnumValues(tokens, info.Span),
		}
	}

	for _, alias := range findAliases(tokens) {
		if _, exists := fm.Aliases[alias.Name]; exists {
			continue
		}
		fm.Aliases[alias.Name] = alias
	}

	for _, info := range FindFunctions(tokens) {
		fm.Functions = append(fm.Functions, model.Function{
			Name:          info.Name,
			ReturnType:    info.ReturnType,
			Parameters:    ExtractParameters(tokens, info.Span, info.Name),
			IsDeclaration: info.IsDeclaration,
			IsInline:      info.IsInline,
		})
	}

	p.resolver.Resolve(fm)
	return fm
}

// collectPreprocessor records include targets and macro names from the
// unfiltered token stream.
func (p *Parser) collectPreprocessor(fm *model.FileModel, raw []Token) {
	for _, tok := range raw {
		switch tok.Kind {
		case TokenInclude:
			if m := includeTargetPattern.FindStringSubmatch(tok.Text); m != nil {
				fm.Includes = append(fm.Includes, m[1])
			}
		case TokenDefine:
			if m := defineNamePattern.FindStringSubmatch(tok.Text); m != nil {
				fm.Macros = append(fm.Macros, m[1])
			}
		}
	}
}

// findAliases locates non-aggregate typedefs. Aggregate and enum typedefs
// carry a brace before their terminating semicolon and are handled by the
// structural scans instead.
func findAliases(tokens []Token) []*model.Alias {
	var aliases []*model.Alias

	i := 0
	for i < len(tokens) {
		if tokens[i].Kind != TokenTypedef {
			i++
			continue
		}

		// Collect the typedef body up to its terminating semicolon,
		// skipping any balanced brace block on the way.
		var run []Token
		j := i + 1
		hasBraces := false
		for j < len(tokens) && tokens[j].Kind != TokenSemicolon {
			if tokens[j].Kind == TokenLeftBrace {
				hasBraces = true
				close := matchBrace(tokens, j)
				if close < 0 {
					break
				}
				j = close + 1
				continue
			}
			run = append(run, tokens[j])
			j++
		}
		if j >= len(tokens) || tokens[j].Kind != TokenSemicolon || hasBraces || len(run) < 2 {
			i = j + 1
			continue
		}

		if fp := functionPointerName(run); fp >= 0 {
			aliases = append(aliases, &model.Alias{
				Name: run[fp].Text,
				Type: JoinTokens(run),
			})
		} else if f, ok := declaratorField(run); ok {
			aliases = append(aliases, &model.Alias{Name: f.Name, Type: f.Type})
		}

		i = j + 1
	}

	return aliases
}
