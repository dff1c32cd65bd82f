// Package config loads the c2puml YAML configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v2"
)

// ConfigFileName is the name of the c2puml configuration file
const ConfigFileName = "config.yaml"

// ConfigDirName is the name of the c2puml configuration directory
const ConfigDirName = ".c2puml"

// Config holds all c2puml configuration
type Config struct {
	Project ProjectConfig `yaml:"project"`
	Parser  ParserConfig  `yaml:"parser"`
	Output  OutputConfig  `yaml:"output"`
	Cache   CacheConfig   `yaml:"cache"`
}

// ProjectConfig holds configuration for source discovery
type ProjectConfig struct {
	Name          string   `yaml:"name"`
	SourceFolders []string `yaml:"source_folders"`
	Recursive     bool     `yaml:"recursive"`
	IncludeGlobs  []string `yaml:"include_globs"`
	ExcludeGlobs  []string `yaml:"exclude_globs"`
}

// ParserConfig holds configuration for the parse stage
type ParserConfig struct {
	MaxDepth   int      `yaml:"max_depth"`
	Workers    int      `yaml:"workers"`
	Extensions []string `yaml:"extensions"`
}

// OutputConfig holds configuration for diagram output
type OutputConfig struct {
	Dir        string `yaml:"dir"`
	ModelFile  string `yaml:"model_file"`
	WriteModel bool   `yaml:"write_model"`
}

// CacheConfig holds configuration for the incremental parse cache
type CacheConfig struct {
	Enabled bool   `yaml:"enabled"`
	Dir     string `yaml:"dir"`
}

// ErrConfigNotFound is returned when no config file can be found
var ErrConfigNotFound = errors.New("config file not found")

// ErrInvalidConfig is returned when config validation fails
var ErrInvalidConfig = errors.New("invalid configuration")

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Project: ProjectConfig{
			Name:          "project",
			SourceFolders: []string{"."},
			Recursive:     true,
		},
		Parser: ParserConfig{
			MaxDepth:   8,
			Workers:    4,
			Extensions: []string{".c", ".h"},
		},
		Output: OutputConfig{
			Dir:       "./output",
			ModelFile: "model.json",
		},
		Cache: CacheConfig{
			Enabled: true,
			Dir:     ConfigDirName,
		},
	}
}

// Load reads config from .c2puml/config.yaml, falling back to defaults.
// It searches for the config directory starting from workDir and walking up
// the directory tree. If no config is found, returns defaults.
func Load(workDir string) (*Config, error) {
	configDir, err := FindConfigDir(workDir)
	if err != nil {
		return DefaultConfig(), nil
	}
	return LoadFromPath(filepath.Join(configDir, ConfigFileName))
}

// LoadFromPath reads config from a specific path.
// Merges loaded config with defaults and validates the result.
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	loaded := &Config{}
	if err := yaml.Unmarshal(data, loaded); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	merged := Merge(loaded, DefaultConfig())

	if err := Validate(merged); err != nil {
		return nil, err
	}
	return merged, nil
}

// Merge fills the zero-valued fields of loaded from defaults.
func Merge(loaded, defaults *Config) *Config {
	merged := *loaded

	if merged.Project.Name == "" {
		merged.Project.Name = defaults.Project.Name
	}
	if len(merged.Project.SourceFolders) == 0 {
		merged.Project.SourceFolders = defaults.Project.SourceFolders
		merged.Project.Recursive = defaults.Project.Recursive
	}
	if merged.Parser.MaxDepth == 0 {
		merged.Parser.MaxDepth = defaults.Parser.MaxDepth
	}
	if merged.Parser.Workers == 0 {
		merged.Parser.Workers = defaults.Parser.Workers
	}
	if len(merged.Parser.Extensions) == 0 {
		merged.Parser.Extensions = defaults.Parser.Extensions
	}
	if merged.Output.Dir == "" {
		merged.Output.Dir = defaults.Output.Dir
	}
	if merged.Output.ModelFile == "" {
		merged.Output.ModelFile = defaults.Output.ModelFile
	}
	if merged.Cache.Dir == "" {
		merged.Cache.Dir = defaults.Cache.Dir
	}
	return &merged
}

// FindConfigDir locates the .c2puml directory by walking up from startDir.
func FindConfigDir(startDir string) (string, error) {
	absDir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	currentDir := absDir
	for {
		configDir := filepath.Join(currentDir, ConfigDirName)
		info, err := os.Stat(configDir)
		if err == nil && info.IsDir() {
			return configDir, nil
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			return "", ErrConfigNotFound
		}
		currentDir = parentDir
	}
}

// EnsureConfigDir creates the .c2puml directory if it doesn't exist.
func EnsureConfigDir(workDir string) (string, error) {
	absDir, err := filepath.Abs(workDir)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	configDir := filepath.Join(absDir, ConfigDirName)

	info, err := os.Stat(configDir)
	if err == nil {
		if info.IsDir() {
			return configDir, nil
		}
		return "", fmt.Errorf("%s exists but is not a directory", configDir)
	}

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return "", fmt.Errorf("creating config directory: %w", err)
	}
	return configDir, nil
}

// Validate checks that config values are valid.
func Validate(cfg *Config) error {
	if len(cfg.Project.SourceFolders) == 0 {
		return fmt.Errorf("%w: at least one source folder is required", ErrInvalidConfig)
	}
	if cfg.Parser.MaxDepth < 1 {
		return fmt.Errorf("%w: max_depth must be positive, got %d",
			ErrInvalidConfig, cfg.Parser.MaxDepth)
	}
	if cfg.Parser.Workers < 1 {
		return fmt.Errorf("%w: workers must be positive, got %d",
			ErrInvalidConfig, cfg.Parser.Workers)
	}
	if len(cfg.Parser.Extensions) == 0 {
		return fmt.Errorf("%w: at least one file extension is required", ErrInvalidConfig)
	}
	for _, ext := range cfg.Parser.Extensions {
		if len(ext) < 2 || ext[0] != '.' {
			return fmt.Errorf("%w: extension %q must start with a dot", ErrInvalidConfig, ext)
		}
	}
	if cfg.Output.Dir == "" {
		return fmt.Errorf("%w: output dir is required", ErrInvalidConfig)
	}
	return nil
}

// SaveDefault writes the default configuration to .c2puml/config.yaml in
// workDir. Creates the .c2puml directory if it doesn't exist.
func SaveDefault(workDir string) (string, error) {
	configDir, err := EnsureConfigDir(workDir)
	if err != nil {
		return "", err
	}

	configPath := filepath.Join(configDir, ConfigFileName)

	if _, err := os.Stat(configPath); err == nil {
		return "", fmt.Errorf("config file already exists: %s", configPath)
	}

	cfg := DefaultConfig()
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("marshaling config: %w", err)
	}

	header := "# c2puml configuration\n\n"
	data = append([]byte(header), data...)

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return "", fmt.Errorf("writing config file: %w", err)
	}
	return configPath, nil
}
