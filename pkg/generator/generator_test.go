package generator

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fischerjooo/c2puml-sub000/pkg/model"
	"github.com/fischerjooo/c2puml-sub000/pkg/parser"
)

const containerHeader = `#include <stdint.h>
#define CONTAINER_CAP 32

typedef struct {
    int count;
    struct { int id; char name[8]; } item;
} container_t;

typedef enum { EMPTY, PARTIAL = 1, FULL } fill_state_t;

int container_push(container_t *c, int id);
`

func TestGenerateFileStructure(t *testing.T) {
	fm := parser.New().Parse("container.h", containerHeader)
	out := GenerateFile(fm, nil)

	if !strings.HasPrefix(out, "@startuml container\n") {
		t.Errorf("Expected @startuml header, got %q", out[:40])
	}
	if !strings.HasSuffix(out, "@enduml\n") {
		t.Error("Expected @enduml trailer")
	}

	for _, want := range []string{
		`class "container_t" as container_t <<struct>>`,
		`class "container_t_item" as container_t_item <<struct>>`,
		`enum "fill_state_t" as fill_state_t`,
		"PARTIAL = 1",
		"+ int count",
		"+ container_t_item item",
		"container_t *-- container_t_item",
		"- #define CONTAINER_CAP",
		".. #include stdint.h ..",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected output to contain %q\n%s", want, out)
		}
	}
}

func TestGenerateFileFunctionSignatures(t *testing.T) {
	fm := parser.New().Parse("container.h", containerHeader)
	out := GenerateFile(fm, nil)

	if !strings.Contains(out, "int container_push(container_t * c, int id)") {
		t.Errorf("Expected function signature in source box\n%s", out)
	}
	// Declarations are the public surface of a header.
	if !strings.Contains(out, "+ int container_push") {
		t.Error("Expected declaration marked public")
	}
}

func TestGenerateFileDeterministic(t *testing.T) {
	fm := parser.New().Parse("container.h", containerHeader)

	first := GenerateFile(fm, nil)
	second := GenerateFile(fm, nil)
	if first != second {
		t.Error("Expected identical output for repeated generation")
	}
}

func TestGenerateFileOptionsSuppressSourceBox(t *testing.T) {
	fm := parser.New().Parse("container.h", containerHeader)

	out := GenerateFile(fm, &Options{})
	if strings.Contains(out, "<<source>>") {
		t.Error("Expected source box suppressed when all options are off")
	}
	if !strings.Contains(out, "container_t") {
		t.Error("Expected entities still rendered")
	}
}

func TestGenerateUnionStereotype(t *testing.T) {
	fm := parser.New().Parse("u.h", "typedef union { int i; float f; } value_t;")
	out := GenerateFile(fm, nil)

	if !strings.Contains(out, `class "value_t" as value_t <<union>>`) {
		t.Errorf("Expected union stereotype\n%s", out)
	}
}

func TestGenerateAliasBox(t *testing.T) {
	fm := parser.New().Parse("a.h", "typedef uint32_t sensor_id_t;")
	out := GenerateFile(fm, nil)

	if !strings.Contains(out, `class "sensor_id_t" as sensor_id_t <<typedef>>`) {
		t.Errorf("Expected typedef box\n%s", out)
	}
	if !strings.Contains(out, "uint32_t") {
		t.Error("Expected alias target rendered")
	}
}

func TestCompositionEdgeForTypeReference(t *testing.T) {
	src := `struct inner_tag { int v; };
struct outer_tag { struct inner_tag in; };`

	fm := parser.New().Parse("ref.h", src)
	out := GenerateFile(fm, nil)

	if !strings.Contains(out, "outer_tag --> inner_tag : in") {
		t.Errorf("Expected composition edge with field label\n%s", out)
	}
}

func TestSanitizeID(t *testing.T) {
	cases := []struct{ in, want string }{
		{"plain", "plain"},
		{"has-dash", "has_dash"},
		{"2starts_with_digit", "_2starts_with_digit"},
		{"", "_empty"},
	}
	for _, tc := range cases {
		if got := sanitizeID(tc.in); got != tc.want {
			t.Errorf("sanitizeID(%q): expected %q, got %q", tc.in, tc.want, got)
		}
	}
}

func TestWriteProject(t *testing.T) {
	pm := model.NewProjectModel("demo")
	pm.AddFile(parser.New().Parse("/src/container.h", containerHeader))
	pm.AddFile(parser.New().Parse("/src/other.c", "int helper(void) { return 1; }"))

	dir := t.TempDir()
	written, err := WriteProject(pm, dir, nil)
	if err != nil {
		t.Fatalf("WriteProject failed: %v", err)
	}
	if len(written) != 2 {
		t.Fatalf("Expected 2 diagrams, got %d", len(written))
	}

	data, err := os.ReadFile(filepath.Join(dir, "container.puml"))
	if err != nil {
		t.Fatalf("Expected container.puml written: %v", err)
	}
	if !strings.Contains(string(data), "container_t") {
		t.Error("Expected diagram content in container.puml")
	}
}

func TestWriteProjectBaseNameCollision(t *testing.T) {
	pm := model.NewProjectModel("demo")
	pm.AddFile(parser.New().Parse("/a/dup.h", "int a;"))
	pm.AddFile(parser.New().Parse("/b/dup.h", "int b;"))

	dir := t.TempDir()
	written, err := WriteProject(pm, dir, nil)
	if err != nil {
		t.Fatalf("WriteProject failed: %v", err)
	}
	if len(written) != 2 {
		t.Fatalf("Expected 2 diagrams, got %d", len(written))
	}
	if written[0] == written[1] {
		t.Errorf("Expected distinct output paths, got %v", written)
	}
}
