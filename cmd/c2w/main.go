// Command c2w is the CLI driver for the Clarity-to-Wasm generator: it reads
// an analyzed-contract JSON document, runs internal/codegen over it, and
// writes the resulting WebAssembly module.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := RootCommand.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
