package parser

import (
	"strings"
	"testing"
)

func TestExtractFieldsBasic(t *testing.T) {
	tokens := scan("struct point_tag { int x; int y; };")
	infos := FindAggregates(tokens, TokenStruct)
	if len(infos) != 1 {
		t.Fatalf("Expected 1 struct, got %d", len(infos))
	}

	fields := ExtractFields(tokens, infos[0].Span)
	if len(fields) != 2 {
		t.Fatalf("Expected 2 fields, got %d", len(fields))
	}
	if fields[0].Name != "x" || fields[0].Type != "int" {
		t.Errorf("Field 0: expected (x, int), got (%s, %s)", fields[0].Name, fields[0].Type)
	}
	if fields[1].Name != "y" || fields[1].Type != "int" {
		t.Errorf("Field 1: expected (y, int), got (%s, %s)", fields[1].Name, fields[1].Type)
	}
}

func TestCommaSeparatedFields(t *testing.T) {
	tokens := scan("struct s { int a, b, c; };")
	infos := FindAggregates(tokens, TokenStruct)
	fields := ExtractFields(tokens, infos[0].Span)

	if len(fields) != 3 {
		t.Fatalf("Expected 3 fields from comma list, got %d", len(fields))
	}
	names := []string{"a", "b", "c"}
	for i, want := range names {
		if fields[i].Name != want {
			t.Errorf("Field %d: expected name %s, got %s", i, want, fields[i].Name)
		}
		if fields[i].Type != "int" {
			t.Errorf("Field %d: expected type int, got %s", i, fields[i].Type)
		}
	}
}

func TestPointerCommaList(t *testing.T) {
	tokens := scan("struct s { char *p1, *p2, plain; };")
	infos := FindAggregates(tokens, TokenStruct)
	fields := ExtractFields(tokens, infos[0].Span)

	if len(fields) != 3 {
		t.Fatalf("Expected 3 fields, got %d", len(fields))
	}
	if fields[0].Type != "char *" || fields[1].Type != "char *" {
		t.Errorf("Expected pointer types char *, got %q and %q", fields[0].Type, fields[1].Type)
	}
	if fields[2].Name != "plain" || fields[2].Type != "char" {
		t.Errorf("Expected (plain, char), got (%s, %s)", fields[2].Name, fields[2].Type)
	}
}

func TestArrayField(t *testing.T) {
	tokens := scan("struct s { char buffer[MAX_SIZE]; };")
	infos := FindAggregates(tokens, TokenStruct)
	fields := ExtractFields(tokens, infos[0].Span)

	if len(fields) != 1 {
		t.Fatalf("Expected 1 field, got %d", len(fields))
	}
	if fields[0].Name != "buffer" {
		t.Errorf("Expected name buffer, got %q", fields[0].Name)
	}
	if fields[0].Type != "char[MAX_SIZE]" {
		t.Errorf("Expected type char[MAX_SIZE], got %q", fields[0].Type)
	}
}

func TestMultiDimensionalArrayField(t *testing.T) {
	tokens := scan("struct s { int grid[4][8]; };")
	infos := FindAggregates(tokens, TokenStruct)
	fields := ExtractFields(tokens, infos[0].Span)

	if len(fields) != 1 {
		t.Fatalf("Expected 1 field, got %d", len(fields))
	}
	if fields[0].Type != "int[4][8]" {
		t.Errorf("Expected type int[4][8], got %q", fields[0].Type)
	}
}

func TestFunctionPointerField(t *testing.T) {
	tokens := scan("struct s { void (*callback)(int code, char *msg); };")
	infos := FindAggregates(tokens, TokenStruct)
	fields := ExtractFields(tokens, infos[0].Span)

	if len(fields) != 1 {
		t.Fatalf("Expected 1 field, got %d", len(fields))
	}
	if fields[0].Name != "callback" {
		t.Errorf("Expected name callback, got %q", fields[0].Name)
	}
	if !strings.Contains(fields[0].Type, "( * callback )") {
		t.Errorf("Expected verbatim function pointer type, got %q", fields[0].Type)
	}
}

func TestFunctionPointerArrayField(t *testing.T) {
	tokens := scan("struct s { int (*handlers[4])(void); };")
	infos := FindAggregates(tokens, TokenStruct)
	fields := ExtractFields(tokens, infos[0].Span)

	if len(fields) != 1 {
		t.Fatalf("Expected 1 field, got %d", len(fields))
	}
	if fields[0].Name != "handlers" {
		t.Errorf("Expected name handlers, got %q", fields[0].Name)
	}
}

func TestNestedAggregateField(t *testing.T) {
	tokens := scan("struct outer { int count; struct { int id; } item; };")
	infos := FindAggregates(tokens, TokenStruct)
	fields := ExtractFields(tokens, infos[0].Span)

	if len(fields) != 2 {
		t.Fatalf("Expected 2 fields, got %d", len(fields))
	}
	item := fields[1]
	if item.Name != "item" {
		t.Errorf("Expected name item, got %q", item.Name)
	}
	if !strings.HasPrefix(item.Type, "struct {") {
		t.Errorf("Expected inline aggregate type, got %q", item.Type)
	}
	if item.AnonymousInner != "int id ;" {
		t.Errorf("Expected embedded inner text %q, got %q", "int id ;", item.AnonymousInner)
	}
}

func TestNestedSemicolonDoesNotSplit(t *testing.T) {
	tokens := scan("struct s { struct { int a; int b; } pair; int after; };")
	infos := FindAggregates(tokens, TokenStruct)
	fields := ExtractFields(tokens, infos[0].Span)

	if len(fields) != 2 {
		t.Fatalf("Expected 2 fields (nested semicolons must not split), got %d", len(fields))
	}
	if fields[0].Name != "pair" || fields[1].Name != "after" {
		t.Errorf("Expected fields pair and after, got %s and %s", fields[0].Name, fields[1].Name)
	}
}

func TestClassifyField(t *testing.T) {
	cases := []struct {
		src  string
		want FieldClass
	}{
		{"int x", FieldPlain},
		{"char * p", FieldPointer},
		{"int arr[4]", FieldArray},
		{"void ( * cb ) ( int )", FieldFunctionPointer},
		{"int a , b", FieldCommaList},
		{"struct { int a ; } inner", FieldNestedAggregate},
	}

	for _, tc := range cases {
		run := scan(tc.src)
		if got := ClassifyField(run); got != tc.want {
			t.Errorf("Run %q: expected class %v, got %v", tc.src, tc.want, got)
		}
	}
}

func TestMalformedRunsDropped(t *testing.T) {
	tokens := scan("struct s { ; int ok; x };")
	infos := FindAggregates(tokens, TokenStruct)
	fields := ExtractFields(tokens, infos[0].Span)

	if len(fields) != 1 {
		t.Fatalf("Expected only the well-formed field, got %d", len(fields))
	}
	if fields[0].Name != "ok" {
		t.Errorf("Expected field ok, got %q", fields[0].Name)
	}
}

func TestExtractFieldsPanicsOnBadSpan(t *testing.T) {
	tokens := scan("struct s { int x; };")

	defer func() {
		if recover() == nil {
			t.Error("Expected panic for out-of-range span")
		}
	}()
	ExtractFields(tokens, Span{Start: 0, End: len(tokens) + 5})
}

func TestExtractEnumValues(t *testing.T) {
	tokens := scan("enum color_tag { RED, GREEN = 2, BLUE = RED + 5 };")
	infos := FindEnums(tokens)
	if len(infos) != 1 {
		t.Fatalf("Expected 1 enum, got %d", len(infos))
	}

	values := ExtractEnumValues(tokens, infos[0].Span)
	if len(values) != 3 {
		t.Fatalf("Expected 3 enumerators, got %d", len(values))
	}
	if values[0].Name != "RED" || values[0].Value != "" {
		t.Errorf("Enumerator 0: expected (RED, ), got (%s, %s)", values[0].Name, values[0].Value)
	}
	if values[1].Name != "GREEN" || values[1].Value != "2" {
		t.Errorf("Enumerator 1: expected (GREEN, 2), got (%s, %s)", values[1].Name, values[1].Value)
	}
	if values[2].Value != "RED + 5" {
		t.Errorf("Enumerator 2: expected unparsed expression, got %q", values[2].Value)
	}
}

func TestExtractParameters(t *testing.T) {
	tokens := scan("int add(int a, int b);")
	infos := FindFunctions(tokens)
	if len(infos) != 1 {
		t.Fatalf("Expected 1 function, got %d", len(infos))
	}

	params := ExtractParameters(tokens, infos[0].Span, "add")
	if len(params) != 2 {
		t.Fatalf("Expected 2 parameters, got %d", len(params))
	}
	if params[0].Name != "a" || params[0].Type != "int" {
		t.Errorf("Parameter 0: expected (a, int), got (%s, %s)", params[0].Name, params[0].Type)
	}
}

func TestExtractParametersVoid(t *testing.T) {
	tokens := scan("void reset(void);")
	infos := FindFunctions(tokens)

	params := ExtractParameters(tokens, infos[0].Span, "reset")
	if len(params) != 0 {
		t.Errorf("Expected no parameters for (void), got %d", len(params))
	}
}

func TestExtractParametersEllipsis(t *testing.T) {
	tokens := scan("int log_msg(const char *fmt, ...);")
	infos := FindFunctions(tokens)

	params := ExtractParameters(tokens, infos[0].Span, "log_msg")
	if len(params) != 2 {
		t.Fatalf("Expected 2 parameters, got %d", len(params))
	}
	last := params[len(params)-1]
	if last.Name != "..." || last.Type != "..." {
		t.Errorf("Expected ellipsis parameter, got (%s, %s)", last.Name, last.Type)
	}
}

func TestParseFieldList(t *testing.T) {
	fields := ParseFieldList("int id ; char name [ 8 ] ;")

	if len(fields) != 2 {
		t.Fatalf("Expected 2 fields, got %d", len(fields))
	}
	if fields[0].Name != "id" || fields[0].Type != "int" {
		t.Errorf("Field 0: expected (id, int), got (%s, %s)", fields[0].Name, fields[0].Type)
	}
	if fields[1].Name != "name" || fields[1].Type != "char[8]" {
		t.Errorf("Field 1: expected (name, char[8]), got (%s, %s)", fields[1].Name, fields[1].Type)
	}
}
