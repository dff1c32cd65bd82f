package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if err := Validate(cfg); err != nil {
		t.Fatalf("Expected default config to validate, got %v", err)
	}
	if cfg.Parser.MaxDepth != 8 {
		t.Errorf("Expected default max_depth 8, got %d", cfg.Parser.MaxDepth)
	}
	if cfg.Parser.Workers != 4 {
		t.Errorf("Expected default workers 4, got %d", cfg.Parser.Workers)
	}
}

func TestLoadFromPathMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadFromPath(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Expected defaults for missing file, got error %v", err)
	}
	if cfg.Parser.MaxDepth != DefaultConfig().Parser.MaxDepth {
		t.Errorf("Expected default max_depth, got %d", cfg.Parser.MaxDepth)
	}
}

func TestLoadFromPathMergesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `project:
  name: demo
  source_folders:
    - ./src
parser:
  workers: 2
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath failed: %v", err)
	}
	if cfg.Project.Name != "demo" {
		t.Errorf("Expected project name demo, got %q", cfg.Project.Name)
	}
	if cfg.Parser.Workers != 2 {
		t.Errorf("Expected workers 2 from file, got %d", cfg.Parser.Workers)
	}
	if cfg.Parser.MaxDepth != 8 {
		t.Errorf("Expected max_depth merged from defaults, got %d", cfg.Parser.MaxDepth)
	}
	if len(cfg.Parser.Extensions) == 0 {
		t.Error("Expected extensions merged from defaults")
	}
}

func TestLoadFromPathInvalidYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(":\n  - not valid: ["), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadFromPath(path); err == nil {
		t.Error("Expected error for invalid YAML")
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []func(*Config){
		func(c *Config) { c.Project.SourceFolders = nil },
		func(c *Config) { c.Parser.MaxDepth = 0 },
		func(c *Config) { c.Parser.Workers = -1 },
		func(c *Config) { c.Parser.Extensions = []string{"c"} },
		func(c *Config) { c.Output.Dir = "" },
	}

	for i, mutate := range cases {
		cfg := DefaultConfig()
		mutate(cfg)
		err := Validate(cfg)
		if err == nil {
			t.Errorf("Case %d: expected validation error", i)
			continue
		}
		if !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("Case %d: expected ErrInvalidConfig, got %v", i, err)
		}
	}
}

func TestFindConfigDirWalksUp(t *testing.T) {
	root := t.TempDir()
	configDir := filepath.Join(root, ConfigDirName)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		t.Fatal(err)
	}
	nested := filepath.Join(root, "a", "b", "c")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}

	found, err := FindConfigDir(nested)
	if err != nil {
		t.Fatalf("FindConfigDir failed: %v", err)
	}
	if found != configDir {
		t.Errorf("Expected %s, got %s", configDir, found)
	}
}

func TestSaveDefaultRefusesOverwrite(t *testing.T) {
	dir := t.TempDir()

	path, err := SaveDefault(dir)
	if err != nil {
		t.Fatalf("SaveDefault failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("Expected config file written: %v", err)
	}

	if _, err := SaveDefault(dir); err == nil {
		t.Error("Expected error when config file already exists")
	}
}
