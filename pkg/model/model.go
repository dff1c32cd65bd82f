// Package model defines the structured representation of parsed C/C++ sources
package model

import "sort"

// Field represents a single field or parameter declaration.
// Type holds the normalized textual type: pointer stars, array suffixes and
// full function-pointer signatures are preserved verbatim.
type Field struct {
	Name string `json:"name"`
	Type string `json:"type"`

	// AnonymousInner carries the exact inner declaration text of an inline
	// anonymous struct/union field so the resolver can re-parse it without
	// going back to the original source. Empty for ordinary fields.
	AnonymousInner string `json:"-"`
}

// AggregateKind distinguishes struct and union entities.
type AggregateKind int

const (
	KindStruct AggregateKind = iota
	KindUnion
)

func (k AggregateKind) String() string {
	if k == KindUnion {
		return "union"
	}
	return "struct"
}

// Aggregate represents a struct or union definition.
// Name is empty for anonymous entities until the resolver names them.
type Aggregate struct {
	Name   string        `json:"name"`
	Kind   AggregateKind `json:"kind"`
	Fields []Field       `json:"fields"`
}

// EnumValue is a single enumerator, optionally with its literal expression.
type EnumValue struct {
	Name  string `json:"name"`
	Value string `json:"value,omitempty"`
}

// Enum represents an enum definition.
type Enum struct {
	Name   string      `json:"name"`
	Values []EnumValue `json:"values"`
}

// Alias represents a non-aggregate typedef such as
// "typedef int Foo;" or "typedef int (*Cmp)(const void*, const void*);".
type Alias struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Function represents a function declaration or definition.
type Function struct {
	Name          string  `json:"name"`
	ReturnType    string  `json:"return_type"`
	Parameters    []Field `json:"parameters"`
	IsDeclaration bool    `json:"is_declaration"`
	IsInline      bool    `json:"is_inline"`
}

// FileModel holds everything recovered from a single source file.
// Structs, Unions, Enums and Aliases are four separate name spaces; names are
// unique within each. Functions keep their source order.
// AnonymousRelationships maps a parent entity name to the ordered list of
// entity names synthesized from its inline anonymous aggregates; it is
// append-only and grows only during resolution.
type FileModel struct {
	Filename  string                `json:"filename"`
	Structs   map[string]*Aggregate `json:"structs"`
	Unions    map[string]*Aggregate `json:"unions"`
	Enums     map[string]*Enum      `json:"enums"`
	Aliases   map[string]*Alias     `json:"aliases"`
	Functions []Function            `json:"functions"`
	Includes  []string              `json:"includes,omitempty"`
	Macros    []string              `json:"macros,omitempty"`

	AnonymousRelationships map[string][]string `json:"anonymous_relationships,omitempty"`
}

// NewFileModel creates an empty model for the given file.
func NewFileModel(filename string) *FileModel {
	return &FileModel{
		Filename:               filename,
		Structs:                make(map[string]*Aggregate),
		Unions:                 make(map[string]*Aggregate),
		Enums:                  make(map[string]*Enum),
		Aliases:                make(map[string]*Alias),
		AnonymousRelationships: make(map[string][]string),
	}
}

// AddRelationship records a parent -> synthesized child relationship.
func (fm *FileModel) AddRelationship(parent, child string) {
	fm.AnonymousRelationships[parent] = append(fm.AnonymousRelationships[parent], child)
}

// HasEntity reports whether name exists in any of the four name spaces.
func (fm *FileModel) HasEntity(name string) bool {
	if _, ok := fm.Structs[name]; ok {
		return true
	}
	if _, ok := fm.Unions[name]; ok {
		return true
	}
	if _, ok := fm.Enums[name]; ok {
		return true
	}
	_, ok := fm.Aliases[name]
	return ok
}

// EntityCount returns the total number of named entities in the model.
func (fm *FileModel) EntityCount() int {
	return len(fm.Structs) + len(fm.Unions) + len(fm.Enums) + len(fm.Aliases)
}

// SortedStructNames returns struct names in deterministic order.
func (fm *FileModel) SortedStructNames() []string {
	return sortedKeys(fm.Structs)
}

// SortedUnionNames returns union names in deterministic order.
func (fm *FileModel) SortedUnionNames() []string {
	return sortedKeys(fm.Unions)
}

// SortedEnumNames returns enum names in deterministic order.
func (fm *FileModel) SortedEnumNames() []string {
	return sortedKeys(fm.Enums)
}

// SortedAliasNames returns alias names in deterministic order.
func (fm *FileModel) SortedAliasNames() []string {
	return sortedKeys(fm.Aliases)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ProjectModel aggregates the per-file models of a whole source tree.
type ProjectModel struct {
	Name  string                `json:"name"`
	Files map[string]*FileModel `json:"files"`
}

// NewProjectModel creates an empty project model.
func NewProjectModel(name string) *ProjectModel {
	return &ProjectModel{
		Name:  name,
		Files: make(map[string]*FileModel),
	}
}

// AddFile inserts a parsed file model, replacing any previous model for the
// same path.
func (pm *ProjectModel) AddFile(fm *FileModel) {
	pm.Files[fm.Filename] = fm
}

// SortedFilenames returns the file paths in deterministic order.
func (pm *ProjectModel) SortedFilenames() []string {
	return sortedKeys(pm.Files)
}
