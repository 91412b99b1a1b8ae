package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/zostay/go-protected-headers/vector"
)

// one subcommand per registered vector
func init() {
	for _, v := range vector.All() {
		v := v
		rootCmd.AddCommand(&cobra.Command{
			Use:   v.Name,
			Short: v.Summary,
			Args:  cobra.NoArgs,
			Run: func(cmd *cobra.Command, _ []string) {
				GenerateVector(cmd, v.Name)
			},
		})
	}
}

func GenerateVector(cmd *cobra.Command, name string) {
	cfg, err := vector.DefaultConfig()
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Failed to load key material: %v\n", err)
		os.Exit(1)
	}

	err = vector.Render(cfg, name, cmd.OutOrStdout())
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Failed to generate vector %s: %v\n", name, err)
		os.Exit(1)
	}
}
