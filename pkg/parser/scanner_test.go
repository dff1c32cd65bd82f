package parser

import "testing"

func scan(src string) []Token {
	return FilterDefault(Tokenize(src))
}

func TestFindStructDefinition(t *testing.T) {
	tokens := scan("struct point_tag { int x; int y; };")

	infos := FindAggregates(tokens, TokenStruct)
	if len(infos) != 1 {
		t.Fatalf("Expected 1 struct, got %d", len(infos))
	}
	if infos[0].Name != "point_tag" {
		t.Errorf("Expected name point_tag, got %q", infos[0].Name)
	}
	if infos[0].Span.Start != 0 {
		t.Errorf("Expected span to start at token 0, got %d", infos[0].Span.Start)
	}
}

func TestFindTypedefStruct(t *testing.T) {
	tokens := scan("typedef struct { int x; } point_t;")

	infos := FindAggregates(tokens, TokenStruct)
	if len(infos) != 1 {
		t.Fatalf("Expected 1 struct, got %d", len(infos))
	}
	if infos[0].Name != "point_t" {
		t.Errorf("Expected typedef name point_t, got %q", infos[0].Name)
	}
}

func TestFindTypedefTaggedStruct(t *testing.T) {
	tokens := scan("typedef struct node_tag { int v; } node_t;")

	infos := FindAggregates(tokens, TokenStruct)
	if len(infos) != 1 {
		t.Fatalf("Expected 1 struct, got %d", len(infos))
	}
	// The typedef name wins over the tag.
	if infos[0].Name != "node_t" {
		t.Errorf("Expected typedef name node_t, got %q", infos[0].Name)
	}
}

func TestAnonymousInstanceDeclaration(t *testing.T) {
	tokens := scan("struct { int a; } instance;")

	infos := FindAggregates(tokens, TokenStruct)
	if len(infos) != 1 {
		t.Fatalf("Expected 1 struct, got %d", len(infos))
	}
	if infos[0].Name != "" {
		t.Errorf("Expected anonymous instance declaration to have empty name, got %q", infos[0].Name)
	}
}

func TestCastRejection(t *testing.T) {
	sources := []string{
		"point_t* p = (struct point_tag*)raw;",
		"x = (struct foo *)(y);",
		"struct foo; /* forward declaration */",
		"struct foo x;",
	}

	for _, src := range sources {
		tokens := scan(src)
		infos := FindAggregates(tokens, TokenStruct)
		if len(infos) != 0 {
			t.Errorf("Source %q: expected no structs, got %d", src, len(infos))
		}
	}
}

func TestSpanBraceBalance(t *testing.T) {
	src := `typedef struct {
    int count;
    struct { int id; char name[8]; } item;
    union { int i; float f; } value;
} container_t;`

	tokens := scan(src)
	infos := FindAggregates(tokens, TokenStruct)
	if len(infos) != 1 {
		t.Fatalf("Expected 1 outer struct, got %d", len(infos))
	}

	span := infos[0].Span
	open, close := 0, 0
	for j := span.Start; j <= span.End; j++ {
		switch tokens[j].Kind {
		case TokenLeftBrace:
			open++
		case TokenRightBrace:
			close++
		}
	}
	if open != close {
		t.Errorf("Expected balanced braces within span, got %d open and %d close", open, close)
	}
	if open != 3 {
		t.Errorf("Expected 3 brace pairs inside the outer span, got %d", open)
	}
}

func TestUnbalancedBracesSkipped(t *testing.T) {
	tokens := scan("struct broken { int x;")

	infos := FindAggregates(tokens, TokenStruct)
	if len(infos) != 0 {
		t.Errorf("Expected unbalanced struct to be skipped, got %d results", len(infos))
	}
}

func TestFindEnums(t *testing.T) {
	tokens := scan("typedef enum { RED, GREEN = 2, BLUE } color_t;")

	infos := FindEnums(tokens)
	if len(infos) != 1 {
		t.Fatalf("Expected 1 enum, got %d", len(infos))
	}
	if infos[0].Name != "color_t" {
		t.Errorf("Expected name color_t, got %q", infos[0].Name)
	}
}

func TestFindFunctionDeclaration(t *testing.T) {
	tokens := scan("int add(int a, int b);")

	infos := FindFunctions(tokens)
	if len(infos) != 1 {
		t.Fatalf("Expected 1 function, got %d", len(infos))
	}
	if infos[0].Name != "add" {
		t.Errorf("Expected name add, got %q", infos[0].Name)
	}
	if !infos[0].IsDeclaration {
		t.Error("Expected IsDeclaration to be true")
	}
	if infos[0].ReturnType != "int" {
		t.Errorf("Expected return type int, got %q", infos[0].ReturnType)
	}
}

func TestFindFunctionDefinition(t *testing.T) {
	tokens := scan("int add(int a, int b) { return a + b; }")

	infos := FindFunctions(tokens)
	if len(infos) != 1 {
		t.Fatalf("Expected 1 function, got %d", len(infos))
	}
	if infos[0].IsDeclaration {
		t.Error("Expected IsDeclaration to be false for a definition")
	}
}

func TestFunctionBodyNotRescanned(t *testing.T) {
	src := `int outer(void) {
    int r = helper(1);
    return r;
}`

	tokens := scan(src)
	infos := FindFunctions(tokens)
	if len(infos) != 1 {
		t.Fatalf("Expected 1 function (calls inside the body skipped), got %d", len(infos))
	}
	if infos[0].Name != "outer" {
		t.Errorf("Expected name outer, got %q", infos[0].Name)
	}
}

func TestStaticInlineFunction(t *testing.T) {
	tokens := scan("static inline uint32_t next_id(void) { return 0; }")

	infos := FindFunctions(tokens)
	if len(infos) != 1 {
		t.Fatalf("Expected 1 function, got %d", len(infos))
	}
	if !infos[0].IsInline {
		t.Error("Expected IsInline to be true")
	}
	if infos[0].ReturnType != "uint32_t" {
		t.Errorf("Expected modifiers stripped from return type, got %q", infos[0].ReturnType)
	}
}

func TestPointerReturnType(t *testing.T) {
	tokens := scan("char * strdup_local(const char * src);")

	infos := FindFunctions(tokens)
	if len(infos) != 1 {
		t.Fatalf("Expected 1 function, got %d", len(infos))
	}
	if infos[0].ReturnType != "char *" {
		t.Errorf("Expected return type %q, got %q", "char *", infos[0].ReturnType)
	}
}

func TestCallExpressionNotAFunction(t *testing.T) {
	// A bare call has no return-type run before the name.
	tokens := scan("do_work(1, 2);")

	infos := FindFunctions(tokens)
	if len(infos) != 0 {
		t.Errorf("Expected bare call to be rejected, got %d results", len(infos))
	}
}
