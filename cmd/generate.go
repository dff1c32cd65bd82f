package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fischerjooo/c2puml-sub000/pkg/cache"
	"github.com/fischerjooo/c2puml-sub000/pkg/config"
	"github.com/fischerjooo/c2puml-sub000/pkg/generator"
	"github.com/fischerjooo/c2puml-sub000/pkg/model"
	"github.com/fischerjooo/c2puml-sub000/pkg/project"
	"github.com/fischerjooo/c2puml-sub000/pkg/transform"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v2"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Parse the configured project and write PlantUML diagrams",
	Long: `Discover the project's C/C++ sources, parse them into a project
model (using the cache where possible), apply any configured transformation
rules and write one .puml diagram per source file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")
		outputDir, _ := cmd.Flags().GetString("output")
		rulesPath, _ := cmd.Flags().GetString("rules")
		noCache, _ := cmd.Flags().GetBool("no-cache")

		cfg, err := loadConfig(configPath)
		if err != nil {
			return err
		}
		if outputDir != "" {
			cfg.Output.Dir = outputDir
		}

		var opts []project.Option
		if cfg.Cache.Enabled && !noCache {
			c, err := openCache(cfg)
			if err != nil {
				return err
			}
			defer c.Close()
			opts = append(opts, project.WithCache(c))
		}

		pm, err := project.NewProcessor(cfg, opts...).Run(cmd.Context())
		if err != nil {
			return err
		}

		if rulesPath != "" {
			tr, err := loadRules(rulesPath)
			if err != nil {
				return err
			}
			tr.Apply(pm)
		}

		written, err := generator.WriteProject(pm, cfg.Output.Dir, generator.DefaultOptions())
		if err != nil {
			return err
		}
		for _, path := range written {
			fmt.Println(path)
		}

		if cfg.Output.WriteModel {
			if err := writeModelJSON(pm, cfg); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	generateCmd.Flags().StringP("config", "c", "", "Path to config.yaml (default: search for .c2puml)")
	generateCmd.Flags().StringP("output", "o", "", "Output directory (overrides config)")
	generateCmd.Flags().StringP("rules", "r", "", "Path to a YAML transformation rules file")
	generateCmd.Flags().Bool("no-cache", false, "Disable the parse cache for this run")
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFromPath(path)
	}
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("getting working directory: %w", err)
	}
	return config.Load(wd)
}

func openCache(cfg *config.Config) (*cache.Cache, error) {
	if err := os.MkdirAll(cfg.Cache.Dir, 0755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}
	return cache.Open(cfg.Cache.Dir)
}

func loadRules(path string) (*transform.Transformer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading rules file: %w", err)
	}
	var rules transform.Rules
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("parsing rules file: %w", err)
	}
	return transform.New(rules)
}

func writeModelJSON(pm *model.ProjectModel, cfg *config.Config) error {
	path := filepath.Join(cfg.Output.Dir, cfg.Output.ModelFile)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating model file: %w", err)
	}
	defer f.Close()

	encoder := json.NewEncoder(f)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(pm); err != nil {
		return fmt.Errorf("writing model file: %w", err)
	}
	return nil
}
