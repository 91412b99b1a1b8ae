package main

import (
	"github.com/spf13/cobra"

	"github.com/zostay/go-protected-headers/cmd/protected-headers/cmd"
)

func main() {
	err := cmd.Execute()
	cobra.CheckErr(err)
}
