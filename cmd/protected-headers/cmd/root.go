package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "protected-headers",
	Short:         "Emit deterministic protected-headers reference messages",
	SilenceUsage:  false,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(listVectorsCmd)
}

// Execute runs the command line. Unknown subcommands print usage to stderr
// and yield a non-zero exit through the returned error.
func Execute() error {
	return rootCmd.Execute()
}
