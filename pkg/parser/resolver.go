package parser

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/fischerjooo/c2puml-sub000/pkg/model"
)

// DefaultMaxDepth is the default bound on nested anonymous aggregate
// resolution. Each resolver pass peels one level of nesting, so MaxDepth
// passes resolve aggregates nested up to MaxDepth levels deep.
const DefaultMaxDepth = 8

// Complexity gate thresholds. Inner text beyond these bounds is left as raw
// inline text rather than expanded into a synthesized entity.
const (
	gateMaxLength           = 500
	gateMaxBraceDepth       = 3
	gateMaxFunctionPointers = 2
)

var (
	functionPointerPattern      = regexp.MustCompile(`\(\s*\*`)
	functionPointerArrayPattern = regexp.MustCompile(`\(\s*\*\s*\w+\s*\[`)
)

// Resolver rewrites a FileModel in place, replacing fields whose type is an
// inline anonymous struct/union with references to synthesized named
// entities. Resolution is idempotent: once a model contains no more
// anonymous aggregate fields, further calls change nothing.
type Resolver struct {
	// MaxDepth bounds the number of passes and therefore the nesting depth
	// that gets expanded.
	MaxDepth int

	// counters tracks the next fallback index per parent and kind, so the
	// resolver carries no ambient state.
	counters map[string]int
}

// NewResolver creates a resolver with the default depth bound.
func NewResolver() *Resolver {
	return &Resolver{
		MaxDepth: DefaultMaxDepth,
		counters: make(map[string]int),
	}
}

// Resolve processes aliases, then structs, then unions, repeating until a
// pass synthesizes nothing. The alias-first order means a struct synthesized
// from an alias body is still visited by the struct pass of the same call.
func (r *Resolver) Resolve(fm *model.FileModel) {
	maxDepth := r.MaxDepth
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}

	for pass := 0; pass < maxDepth; pass++ {
		changed := false

		for _, name := range fm.SortedAliasNames() {
			if r.resolveAlias(fm, fm.Aliases[name]) {
				changed = true
			}
		}
		for _, name := range fm.SortedStructNames() {
			if r.resolveAggregate(fm, fm.Structs[name]) {
				changed = true
			}
		}
		for _, name := range fm.SortedUnionNames() {
			if r.resolveAggregate(fm, fm.Unions[name]) {
				changed = true
			}
		}

		if !changed {
			break
		}
	}
}

// resolveAggregate rewrites the anonymous-aggregate fields of one entity.
// Returns true when anything was synthesized.
func (r *Resolver) resolveAggregate(fm *model.FileModel, agg *model.Aggregate) bool {
	changed := false

	for i := range agg.Fields {
		field := &agg.Fields[i]

		inner, kind, ok := anonymousContent(field)
		if !ok {
			continue
		}
		if !passesComplexityGate(inner) {
			// Over-complex inner text is left as raw inline text; downstream
			// rendering shows an unexpanded blob.
			continue
		}

		childName := r.synthesizeName(fm, agg.Name, field.Name, kind)
		insertAggregate(fm, childName, kind, ParseFieldList(inner))
		fm.AddRelationship(agg.Name, childName)

		field.Type = childName
		field.AnonymousInner = ""
		changed = true
	}

	return changed
}

// resolveAlias handles the degraded alias code path, where no token span is
// available and the inner text must be brace-extracted from the alias's raw
// type text.
func (r *Resolver) resolveAlias(fm *model.FileModel, alias *model.Alias) bool {
	kind, found := inlineKind(alias.Type)
	if !found {
		return false
	}

	inner, ok := braceExtract(alias.Type)
	if !ok || !passesComplexityGate(inner) {
		return false
	}

	childName := r.synthesizeName(fm, alias.Name, "", kind)
	insertAggregate(fm, childName, kind, ParseFieldList(inner))
	fm.AddRelationship(alias.Name, childName)
	alias.Type = childName
	return true
}

// anonymousContent recovers the inner declaration text of an inline
// anonymous aggregate field, preferring the embedded content over a brace
// scan of the type text.
func anonymousContent(field *model.Field) (inner string, kind model.AggregateKind, ok bool) {
	kind, found := inlineKind(field.Type)
	if !found {
		return "", 0, false
	}
	if field.AnonymousInner != "" {
		return field.AnonymousInner, kind, true
	}
	inner, ok = braceExtract(field.Type)
	return inner, kind, ok
}

// inlineKind detects whether a type text denotes an inline aggregate
// definition and which kind it is.
func inlineKind(typeText string) (model.AggregateKind, bool) {
	trimmed := strings.TrimSpace(typeText)
	if strings.HasPrefix(trimmed, "struct") && strings.Contains(trimmed, "{") {
		return model.KindStruct, true
	}
	if strings.HasPrefix(trimmed, "union") && strings.Contains(trimmed, "{") {
		return model.KindUnion, true
	}
	return 0, false
}

// braceExtract returns the text between the first '{' and its balanced
// closer.
func braceExtract(text string) (string, bool) {
	open := strings.IndexByte(text, '{')
	if open < 0 {
		return "", false
	}
	depth := 0
	for i := open; i < len(text); i++ {
		switch text[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return strings.TrimSpace(text[open+1 : i]), true
			}
		}
	}
	return "", false
}

// passesComplexityGate bounds worst-case recursive expansion. Rejected text
// is not an error; the field simply keeps its raw inline type.
func passesComplexityGate(inner string) bool {
	if len(inner) > gateMaxLength {
		return false
	}
	if textBraceDepth(inner) > gateMaxBraceDepth {
		return false
	}
	if functionPointerArrayPattern.MatchString(inner) {
		return false
	}
	if len(functionPointerPattern.FindAllString(inner, -1)) > gateMaxFunctionPointers {
		return false
	}
	return true
}

// textBraceDepth returns the maximum brace nesting depth of a text.
func textBraceDepth(text string) int {
	depth, max := 0, 0
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '{':
			depth++
			if depth > max {
				max = depth
			}
		case '}':
			depth--
		}
	}
	return max
}

// synthesizeName builds the name of a synthesized entity: parent-qualified
// by field name when one is known, otherwise by a 1-based per-parent counter.
func (r *Resolver) synthesizeName(fm *model.FileModel, parent, fieldName string, kind model.AggregateKind) string {
	if fieldName != "" {
		name := parent + "_" + fieldName
		if !fm.HasEntity(name) {
			return name
		}
		// Fall through to the counter when the qualified name is taken.
	}

	key := parent + "|" + kind.String()
	for {
		r.counters[key]++
		name := fmt.Sprintf("%s_anonymous_%s_%d", parent, kind, r.counters[key])
		if !fm.HasEntity(name) {
			return name
		}
	}
}

// insertAggregate registers a synthesized entity in the matching name space.
func insertAggregate(fm *model.FileModel, name string, kind model.AggregateKind, fields []model.Field) {
	agg := &model.Aggregate{Name: name, Kind: kind, Fields: fields}
	if kind == model.KindUnion {
		fm.Unions[name] = agg
	} else {
		fm.Structs[name] = agg
	}
}
