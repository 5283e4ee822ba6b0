package main

import (
	"github.com/spf13/cobra"
)

// RootCommand is the base CLI command every subcommand attaches to.
var RootCommand = &cobra.Command{
	Use:   "c2w",
	Short: "Clarity-to-WebAssembly code generator",
	Long:  "c2w lowers an analyzed Clarity contract into a WebAssembly module.",
}
