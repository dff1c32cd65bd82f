// Package transform applies rename, removal and file filtering rules to an
// already-built ProjectModel. It never touches source text or tokens; all
// rules operate on the model.
package transform

import (
	"fmt"
	"regexp"

	"github.com/fischerjooo/c2puml-sub000/pkg/model"
)

// Rules describes a transformation set. Patterns are Go regular expressions.
type Rules struct {
	Renames []RenameRule `yaml:"renames"`
	Remove  RemoveRules  `yaml:"remove"`
	Files   FileFilter   `yaml:"files"`
}

// RenameRule rewrites entity names of one kind. Replace may use capture
// group references ($1, ${name}).
type RenameRule struct {
	Kind    string `yaml:"kind"` // struct, union, enum, alias, function, field
	Pattern string `yaml:"pattern"`
	Replace string `yaml:"replace"`
}

// RemoveRules lists name patterns to drop per entity kind.
type RemoveRules struct {
	Structs   []string `yaml:"structs"`
	Unions    []string `yaml:"unions"`
	Enums     []string `yaml:"enums"`
	Aliases   []string `yaml:"aliases"`
	Functions []string `yaml:"functions"`
	Macros    []string `yaml:"macros"`
}

// FileFilter selects which file models survive, matched against the model's
// filename. An empty include list keeps everything not excluded.
type FileFilter struct {
	Include []string `yaml:"include"`
	Exclude []string `yaml:"exclude"`
}

type compiledRename struct {
	kind    string
	pattern *regexp.Regexp
	replace string
}

// Transformer holds a compiled rule set.
type Transformer struct {
	renames []compiledRename
	remove  map[string][]*regexp.Regexp
	include []*regexp.Regexp
	exclude []*regexp.Regexp
}

// New compiles a rule set. Invalid patterns fail here, not during Apply.
func New(rules Rules) (*Transformer, error) {
	t := &Transformer{remove: make(map[string][]*regexp.Regexp)}

	for _, r := range rules.Renames {
		switch r.Kind {
		case "struct", "union", "enum", "alias", "function", "field":
		default:
			return nil, fmt.Errorf("rename rule: unknown kind %q", r.Kind)
		}
		re, err := regexp.Compile(r.Pattern)
		if err != nil {
			return nil, fmt.Errorf("rename pattern %q: %w", r.Pattern, err)
		}
		t.renames = append(t.renames, compiledRename{kind: r.Kind, pattern: re, replace: r.Replace})
	}

	removeSets := map[string][]string{
		"struct":   rules.Remove.Structs,
		"union":    rules.Remove.Unions,
		"enum":     rules.Remove.Enums,
		"alias":    rules.Remove.Aliases,
		"function": rules.Remove.Functions,
		"macro":    rules.Remove.Macros,
	}
	for kind, patterns := range removeSets {
		for _, p := range patterns {
			re, err := regexp.Compile(p)
			if err != nil {
				return nil, fmt.Errorf("remove pattern %q: %w", p, err)
			}
			t.remove[kind] = append(t.remove[kind], re)
		}
	}

	for _, p := range rules.Files.Include {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("file include pattern %q: %w", p, err)
		}
		t.include = append(t.include, re)
	}
	for _, p := range rules.Files.Exclude {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("file exclude pattern %q: %w", p, err)
		}
		t.exclude = append(t.exclude, re)
	}

	return t, nil
}

// Apply transforms the project model in place: file filtering first, then
// removals, then renames.
func (t *Transformer) Apply(pm *model.ProjectModel) {
	for _, name := range pm.SortedFilenames() {
		if !t.keepFile(name) {
			delete(pm.Files, name)
		}
	}
	for _, name := range pm.SortedFilenames() {
		fm := pm.Files[name]
		t.applyRemovals(fm)
		t.applyRenames(fm)
	}
}

func (t *Transformer) keepFile(name string) bool {
	for _, re := range t.exclude {
		if re.MatchString(name) {
			return false
		}
	}
	if len(t.include) == 0 {
		return true
	}
	for _, re := range t.include {
		if re.MatchString(name) {
			return true
		}
	}
	return false
}

func matchesAny(res []*regexp.Regexp, name string) bool {
	for _, re := range res {
		if re.MatchString(name) {
			return true
		}
	}
	return false
}

func (t *Transformer) applyRemovals(fm *model.FileModel) {
	for _, name := range fm.SortedStructNames() {
		if matchesAny(t.remove["struct"], name) {
			delete(fm.Structs, name)
			delete(fm.AnonymousRelationships, name)
		}
	}
	for _, name := range fm.SortedUnionNames() {
		if matchesAny(t.remove["union"], name) {
			delete(fm.Unions, name)
			delete(fm.AnonymousRelationships, name)
		}
	}
	for _, name := range fm.SortedEnumNames() {
		if matchesAny(t.remove["enum"], name) {
			delete(fm.Enums, name)
		}
	}
	for _, name := range fm.SortedAliasNames() {
		if matchesAny(t.remove["alias"], name) {
			delete(fm.Aliases, name)
			delete(fm.AnonymousRelationships, name)
		}
	}

	if res := t.remove["function"]; len(res) > 0 {
		kept := fm.Functions[:0]
		for _, fn := range fm.Functions {
			if !matchesAny(res, fn.Name) {
				kept = append(kept, fn)
			}
		}
		fm.Functions = kept
	}
	if res := t.remove["macro"]; len(res) > 0 {
		kept := fm.Macros[:0]
		for _, m := range fm.Macros {
			if !matchesAny(res, m) {
				kept = append(kept, m)
			}
		}
		fm.Macros = kept
	}
}

// applyRenames renames entities and then rewrites type references so fields
// and aliases keep pointing at the renamed entities.
func (t *Transformer) applyRenames(fm *model.FileModel) {
	renamed := make(map[string]string)

	rename := func(kind, name string) string {
		out := name
		for _, r := range t.renames {
			if r.kind == kind {
				out = r.pattern.ReplaceAllString(out, r.replace)
			}
		}
		return out
	}

	for _, name := range fm.SortedStructNames() {
		if next := rename("struct", name); next != name && !fm.HasEntity(next) {
			agg := fm.Structs[name]
			agg.Name = next
			fm.Structs[next] = agg
			delete(fm.Structs, name)
			renamed[name] = next
		}
	}
	for _, name := range fm.SortedUnionNames() {
		if next := rename("union", name); next != name && !fm.HasEntity(next) {
			agg := fm.Unions[name]
			agg.Name = next
			fm.Unions[next] = agg
			delete(fm.Unions, name)
			renamed[name] = next
		}
	}
	for _, name := range fm.SortedEnumNames() {
		if next := rename("enum", name); next != name && !fm.HasEntity(next) {
			e := fm.Enums[name]
			e.Name = next
			fm.Enums[next] = e
			delete(fm.Enums, name)
			renamed[name] = next
		}
	}
	for _, name := range fm.SortedAliasNames() {
		if next := rename("alias", name); next != name && !fm.HasEntity(next) {
			a := fm.Aliases[name]
			a.Name = next
			fm.Aliases[next] = a
			delete(fm.Aliases, name)
			renamed[name] = next
		}
	}
	for i := range fm.Functions {
		fm.Functions[i].Name = rename("function", fm.Functions[i].Name)
	}

	for _, agg := range fm.Structs {
		for i := range agg.Fields {
			agg.Fields[i].Name = rename("field", agg.Fields[i].Name)
		}
	}
	for _, agg := range fm.Unions {
		for i := range agg.Fields {
			agg.Fields[i].Name = rename("field", agg.Fields[i].Name)
		}
	}

	if len(renamed) > 0 {
		rewriteReferences(fm, renamed)
	}
}

// rewriteReferences replaces whole-word occurrences of renamed entity names
// in field types, parameter types, return types and alias targets, and moves
// relationship keys and children to the new names.
func rewriteReferences(fm *model.FileModel, renamed map[string]string) {
	replace := func(text string) string {
		for old, next := range renamed {
			re := regexp.MustCompile(`\b` + regexp.QuoteMeta(old) + `\b`)
			text = re.ReplaceAllString(text, next)
		}
		return text
	}

	for _, agg := range fm.Structs {
		for i := range agg.Fields {
			agg.Fields[i].Type = replace(agg.Fields[i].Type)
		}
	}
	for _, agg := range fm.Unions {
		for i := range agg.Fields {
			agg.Fields[i].Type = replace(agg.Fields[i].Type)
		}
	}
	for _, a := range fm.Aliases {
		a.Type = replace(a.Type)
	}
	for i := range fm.Functions {
		fn := &fm.Functions[i]
		fn.ReturnType = replace(fn.ReturnType)
		for j := range fn.Parameters {
			fn.Parameters[j].Type = replace(fn.Parameters[j].Type)
		}
	}

	rels := make(map[string][]string, len(fm.AnonymousRelationships))
	for parent, children := range fm.AnonymousRelationships {
		if next, ok := renamed[parent]; ok {
			parent = next
		}
		mapped := make([]string, len(children))
		for i, child := range children {
			if next, ok := renamed[child]; ok {
				child = next
			}
			mapped[i] = child
		}
		rels[parent] = mapped
	}
	fm.AnonymousRelationships = rels
}
