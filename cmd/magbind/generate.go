package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/chazu/magbind/bindings"
	"github.com/chazu/magbind/descriptor"
	"github.com/chazu/magbind/graph"
)

var (
	printErrors bool
	outputPath  string
)

func init() {
	generateCmd.Flags().BoolVar(&printErrors, "print-errors", false, "render excluded methods as commented-out diagnostic trails")
	generateCmd.Flags().StringVarP(&outputPath, "output", "o", "", "override the configured output file path")
}

var generateCmd = &cobra.Command{
	Use:   "generate <graph>...",
	Short: "Generate the binding descriptor artifact",
	Long: `Reads one or more type graph documents (.json or .cbor), matches the
configured types, and writes the descriptor artifact to the configured
output file.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		log := configureLogging()

		result, cfg, err := runPass(args)
		if err != nil {
			return err
		}

		out := cfg.OutputFile
		if outputPath != "" {
			out = outputPath
		}
		if out == "" {
			return fmt.Errorf("no output file configured; set output_file in %s or pass --output", configPath)
		}

		if err := os.WriteFile(out, result.Output, 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", out, err)
		}

		for _, t := range result.Report.Types {
			log.Debugf("%s: %d methods selected, %d excluded, %d fields, %d binops, %d unaryops",
				t.Name, t.MethodsIncluded(), t.MethodsExcluded(), t.Fields, t.BinOps, t.UnaryOps)
		}
		log.Infof("wrote %s (%d types)", out, len(result.Report.Types))
		return nil
	},
}

// runPass loads inputs and runs the generation pass shared by generate
// and check.
func runPass(graphPaths []string) (*descriptor.Result, *bindings.Config, error) {
	cfg, err := bindings.Load(configPath)
	if err != nil {
		return nil, nil, err
	}

	set, err := graph.LoadSet(graphPaths)
	if err != nil {
		return nil, nil, err
	}

	result, err := descriptor.Generate(set, cfg, descriptor.Options{Diagnostics: printErrors})
	if err != nil {
		return nil, nil, err
	}
	return result, cfg, nil
}
