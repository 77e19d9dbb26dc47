// magbind generates binding descriptor blocks for the Mag scripting
// runtime from type graph documents and a bindings.toml configuration.
package main

import (
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"

	_ "github.com/tliron/commonlog/simple"
)

var (
	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "magbind",
	Short: "Binding descriptor generator for the Mag scripting runtime",
	Long: `magbind consumes type graph documents describing a compiled codebase's
public surface, matches them against a bindings.toml configuration, and
emits one descriptor artifact for the downstream macro processor.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.Version = buildVersion()

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "bindings.toml", "bindings configuration file")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "log generation progress")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		color.New(color.FgRed, color.Bold).Fprintf(os.Stderr, "error: ")
		color.New(color.FgRed).Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

// configureLogging sets up commonlog before any command work runs.
func configureLogging() commonlog.Logger {
	verbosity := 0
	if verbose {
		verbosity = 2
	}
	commonlog.Configure(verbosity, nil)
	return commonlog.GetLogger("magbind")
}
