// Package generator renders file models as PlantUML class diagrams:
// one diagram per source file, a box per entity, composition edges for
// type references and nesting edges for synthesized anonymous aggregates.
package generator

import (
	"fmt"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/fischerjooo/c2puml-sub000/pkg/model"
)

// Options configures diagram generation.
type Options struct {
	ShowFunctions bool // include a source box with functions
	ShowMacros    bool // include macros in the source box
	ShowIncludes  bool // include the include list in the source box
}

// DefaultOptions returns the defaults used by the generate command.
func DefaultOptions() *Options {
	return &Options{
		ShowFunctions: true,
		ShowMacros:    true,
		ShowIncludes:  true,
	}
}

// GenerateFile renders one file model as a complete PlantUML document.
// Output is deterministic: entities, members and edges are emitted in
// sorted order.
func GenerateFile(fm *model.FileModel, opts *Options) string {
	if opts == nil {
		opts = DefaultOptions()
	}

	var sb strings.Builder
	base := filepath.Base(fm.Filename)

	sb.WriteString(fmt.Sprintf("@startuml %s\n\n", sanitizeID(trimExt(base))))

	writeSourceBox(&sb, fm, base, opts)

	for _, name := range fm.SortedStructNames() {
		writeAggregate(&sb, fm.Structs[name])
	}
	for _, name := range fm.SortedUnionNames() {
		writeAggregate(&sb, fm.Unions[name])
	}
	for _, name := range fm.SortedEnumNames() {
		writeEnum(&sb, fm.Enums[name])
	}
	for _, name := range fm.SortedAliasNames() {
		writeAlias(&sb, fm.Aliases[name])
	}

	writeEdges(&sb, fm)

	sb.WriteString("\n@enduml\n")
	return sb.String()
}

// writeSourceBox renders the file itself as a class holding macros and
// function signatures.
func writeSourceBox(sb *strings.Builder, fm *model.FileModel, base string, opts *Options) {
	if !opts.ShowFunctions && !opts.ShowMacros && !opts.ShowIncludes {
		return
	}

	sb.WriteString(fmt.Sprintf("class \"%s\" as %s <<source>> {\n", base, sourceID(base)))

	if opts.ShowIncludes {
		for _, inc := range fm.Includes {
			sb.WriteString(fmt.Sprintf("    .. #include %s ..\n", inc))
		}
	}
	if opts.ShowMacros {
		for _, macro := range fm.Macros {
			sb.WriteString(fmt.Sprintf("    - #define %s\n", macro))
		}
	}
	if opts.ShowFunctions {
		for _, fn := range fm.Functions {
			sb.WriteString(fmt.Sprintf("    %s %s\n", visibility(fn), signature(fn)))
		}
	}
	sb.WriteString("}\n\n")
}

// visibility marks definitions public and declarations private, matching the
// convention that a .c file's declarations are internal.
func visibility(fn model.Function) string {
	if fn.IsDeclaration {
		return "+"
	}
	return "-"
}

// signature renders a function as "ret name(type name, ...)".
func signature(fn model.Function) string {
	params := make([]string, 0, len(fn.Parameters))
	for _, p := range fn.Parameters {
		if p.Name == "..." {
			params = append(params, "...")
			continue
		}
		params = append(params, strings.TrimSpace(p.Type+" "+p.Name))
	}
	return fmt.Sprintf("%s %s(%s)", fn.ReturnType, fn.Name, strings.Join(params, ", "))
}

func writeAggregate(sb *strings.Builder, agg *model.Aggregate) {
	stereotype := "struct"
	if agg.Kind == model.KindUnion {
		stereotype = "union"
	}
	sb.WriteString(fmt.Sprintf("class \"%s\" as %s <<%s>> {\n",
		agg.Name, sanitizeID(agg.Name), stereotype))
	for _, f := range agg.Fields {
		sb.WriteString(fmt.Sprintf("    + %s %s\n", f.Type, f.Name))
	}
	sb.WriteString("}\n\n")
}

func writeEnum(sb *strings.Builder, e *model.Enum) {
	sb.WriteString(fmt.Sprintf("enum \"%s\" as %s {\n", e.Name, sanitizeID(e.Name)))
	for _, v := range e.Values {
		if v.Value != "" {
			sb.WriteString(fmt.Sprintf("    %s = %s\n", v.Name, v.Value))
		} else {
			sb.WriteString(fmt.Sprintf("    %s\n", v.Name))
		}
	}
	sb.WriteString("}\n\n")
}

func writeAlias(sb *strings.Builder, a *model.Alias) {
	sb.WriteString(fmt.Sprintf("class \"%s\" as %s <<typedef>> {\n",
		a.Name, sanitizeID(a.Name)))
	sb.WriteString(fmt.Sprintf("    %s\n", a.Type))
	sb.WriteString("}\n\n")
}

// writeEdges emits nesting edges from anonymous_relationships first, then
// composition edges for field types referencing entities in the same file.
// Each pair is emitted once; nesting wins over composition.
func writeEdges(sb *strings.Builder, fm *model.FileModel) {
	emitted := make(map[string]bool)
	var lines []string

	parents := make([]string, 0, len(fm.AnonymousRelationships))
	for parent := range fm.AnonymousRelationships {
		parents = append(parents, parent)
	}
	sort.Strings(parents)
	for _, parent := range parents {
		for _, child := range fm.AnonymousRelationships[parent] {
			key := parent + "|" + child
			if emitted[key] {
				continue
			}
			emitted[key] = true
			lines = append(lines, fmt.Sprintf("%s *-- %s",
				sanitizeID(parent), sanitizeID(child)))
		}
	}

	addComposition := func(owner string, fields []model.Field) {
		for _, f := range fields {
			target, ok := referencedEntity(fm, f.Type)
			if !ok || target == owner {
				continue
			}
			key := owner + "|" + target
			if emitted[key] {
				continue
			}
			emitted[key] = true
			lines = append(lines, fmt.Sprintf("%s --> %s : %s",
				sanitizeID(owner), sanitizeID(target), f.Name))
		}
	}
	for _, name := range fm.SortedStructNames() {
		addComposition(name, fm.Structs[name].Fields)
	}
	for _, name := range fm.SortedUnionNames() {
		addComposition(name, fm.Unions[name].Fields)
	}

	if len(lines) == 0 {
		return
	}
	for _, line := range lines {
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
}

// referencedEntity reports which entity of the model a field type points at,
// matching on whole identifiers so "sensor_t" does not match "sensor_t2".
func referencedEntity(fm *model.FileModel, typeText string) (string, bool) {
	for _, word := range identifierWords(typeText) {
		if fm.HasEntity(word) {
			return word, true
		}
	}
	return "", false
}

var identifierPatternPUML = regexp.MustCompile(`[A-Za-z_][A-Za-z0-9_]*`)

func identifierWords(text string) []string {
	return identifierPatternPUML.FindAllString(text, -1)
}

// sanitizeID converts an entity name to a valid PlantUML identifier.
var pumlIDRegex = regexp.MustCompile(`[^a-zA-Z0-9_]`)

func sanitizeID(id string) string {
	sanitized := pumlIDRegex.ReplaceAllString(id, "_")
	if sanitized == "" {
		return "_empty"
	}
	if sanitized[0] >= '0' && sanitized[0] <= '9' {
		sanitized = "_" + sanitized
	}
	return sanitized
}

func sourceID(base string) string {
	return "src_" + sanitizeID(trimExt(base))
}

func trimExt(base string) string {
	return strings.TrimSuffix(base, filepath.Ext(base))
}
