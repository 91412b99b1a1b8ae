package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zostay/go-protected-headers/vector"
)

var listVectorsCmd = &cobra.Command{
	Use:   "list-vectors",
	Short: "list the available reference vectors",
	Args:  cobra.NoArgs,
	Run:   ListVectors,
}

func ListVectors(cmd *cobra.Command, _ []string) {
	for _, v := range vector.All() {
		fmt.Fprintf(cmd.OutOrStdout(), "%-18s %s\n", v.Name, v.Summary)
	}
}
