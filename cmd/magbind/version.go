package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// Build metadata, injected with -ldflags at release time.
var (
	version   = "dev"
	gitCommit = ""
	buildDate = ""
)

func buildVersion() string {
	v := strings.TrimSpace(version)
	if v == "" {
		return "dev"
	}
	return v
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show the magbind build fingerprint",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "magbind %s\n", buildVersion())
		if gitCommit != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "commit: %s\n", gitCommit)
		}
		if buildDate != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "built:  %s\n", buildDate)
		}
	},
}
