package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/fischerjooo/c2puml-sub000/pkg/model"
	"github.com/fischerjooo/c2puml-sub000/pkg/parser"

	"github.com/spf13/cobra"
)

var parseCmd = &cobra.Command{
	Use:   "parse [file]",
	Short: "Parse a C/C++ file and output its structured model",
	Long: `Parse a single C/C++ source or header file and print the recovered
model: structs, unions, enums, typedefs, functions, includes and macros.
The output can be JSON for further processing or a human-readable dump.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		filename := args[0]

		content, err := os.ReadFile(filename)
		if err != nil {
			return fmt.Errorf("failed to read file %s: %w", filename, err)
		}

		maxDepth, _ := cmd.Flags().GetInt("max-depth")
		r := parser.NewResolver()
		if maxDepth > 0 {
			r.MaxDepth = maxDepth
		}
		fm := parser.NewWithResolver(r).Parse(filename, string(content))

		format, _ := cmd.Flags().GetString("format")
		switch format {
		case "json":
			return outputJSON(fm)
		default:
			return outputHuman(fm)
		}
	},
}

func init() {
	parseCmd.Flags().StringP("format", "f", "human", "Output format (human, json)")
	parseCmd.Flags().Int("max-depth", 0, "Anonymous aggregate resolution depth (0 = default)")
}

func outputJSON(fm *model.FileModel) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(fm)
}

func outputHuman(fm *model.FileModel) error {
	fmt.Printf("Parsed file: %s\n", fm.Filename)
	fmt.Printf("=====================================\n\n")

	if len(fm.Includes) > 0 {
		fmt.Printf("Includes:\n")
		for _, inc := range fm.Includes {
			fmt.Printf("  #include %s\n", inc)
		}
		fmt.Println()
	}
	if len(fm.Macros) > 0 {
		fmt.Printf("Macros:\n")
		for _, m := range fm.Macros {
			fmt.Printf("  #define %s\n", m)
		}
		fmt.Println()
	}

	for _, name := range fm.SortedStructNames() {
		printAggregate(fm.Structs[name])
	}
	for _, name := range fm.SortedUnionNames() {
		printAggregate(fm.Unions[name])
	}
	for _, name := range fm.SortedEnumNames() {
		e := fm.Enums[name]
		fmt.Printf("enum %s:\n", e.Name)
		for _, v := range e.Values {
			if v.Value != "" {
				fmt.Printf("  %s = %s\n", v.Name, v.Value)
			} else {
				fmt.Printf("  %s\n", v.Name)
			}
		}
		fmt.Println()
	}
	for _, name := range fm.SortedAliasNames() {
		a := fm.Aliases[name]
		fmt.Printf("typedef %s -> %s\n", a.Name, a.Type)
	}
	if len(fm.Aliases) > 0 {
		fmt.Println()
	}

	for _, fn := range fm.Functions {
		kind := "definition"
		if fn.IsDeclaration {
			kind = "declaration"
		}
		fmt.Printf("function %s: %s", fn.Name, kind)
		if fn.IsInline {
			fmt.Printf(" [inline]")
		}
		fmt.Printf("\n  returns: %s\n", fn.ReturnType)
		for _, p := range fn.Parameters {
			fmt.Printf("  param: %s %s\n", p.Type, p.Name)
		}
	}
	if len(fm.Functions) > 0 {
		fmt.Println()
	}

	if len(fm.AnonymousRelationships) > 0 {
		fmt.Printf("Anonymous aggregates:\n")
		for _, parent := range sortedRelationshipParents(fm) {
			for _, child := range fm.AnonymousRelationships[parent] {
				fmt.Printf("  %s contains %s\n", parent, child)
			}
		}
		fmt.Println()
	}

	fmt.Printf("Summary:\n")
	fmt.Printf("--------\n")
	fmt.Printf("Structs:   %d\n", len(fm.Structs))
	fmt.Printf("Unions:    %d\n", len(fm.Unions))
	fmt.Printf("Enums:     %d\n", len(fm.Enums))
	fmt.Printf("Typedefs:  %d\n", len(fm.Aliases))
	fmt.Printf("Functions: %d\n", len(fm.Functions))
	return nil
}

func printAggregate(agg *model.Aggregate) {
	fmt.Printf("%s %s:\n", agg.Kind, agg.Name)
	for _, f := range agg.Fields {
		fmt.Printf("  %s %s\n", f.Type, f.Name)
	}
	fmt.Println()
}

func sortedRelationshipParents(fm *model.FileModel) []string {
	parents := make([]string, 0, len(fm.AnonymousRelationships))
	for parent := range fm.AnonymousRelationships {
		parents = append(parents, parent)
	}
	sort.Strings(parents)
	return parents
}
