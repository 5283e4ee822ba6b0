package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/clarlang/c2w/internal/ast"
	"github.com/clarlang/c2w/internal/codegen"
	"github.com/clarlang/c2w/internal/codegen/costtable"
	"github.com/clarlang/c2w/internal/wasm/encoding"
)

type compileParams struct {
	costVersion string
	outputFile  string
}

var configuredCompileParams = compileParams{
	costVersion: costtable.DefaultVersion,
}

var compileCommand = &cobra.Command{
	Use:   "compile <path>",
	Short: "Compile an analyzed contract to a Wasm module",
	Long: `Compile reads an analyzed-contract JSON document (the wire format
internal/ast.DecodeContract understands) from <path>, or from stdin if
<path> is "-", lowers it with internal/codegen, and writes the resulting
WebAssembly binary to --output (default: stdout).`,
	Args: cobra.ExactArgs(1),
	PreRunE: func(_ *cobra.Command, _ []string) error {
		if !isValidCostVersion(configuredCompileParams.costVersion) {
			return fmt.Errorf("invalid --cost-version %q (available: %s)",
				configuredCompileParams.costVersion, strings.Join(costtable.Versions(), ", "))
		}
		return nil
	},
	RunE: func(_ *cobra.Command, args []string) error {
		return runCompile(args[0], &configuredCompileParams, os.Stdout)
	},
}

func isValidCostVersion(v string) bool {
	for _, candidate := range costtable.Versions() {
		if candidate == v {
			return true
		}
	}
	return false
}

func runCompile(path string, params *compileParams, defaultOut io.Writer) error {
	data, err := readContractInput(path)
	if err != nil {
		return errors.Wrap(err, "read contract")
	}

	contract, err := ast.DecodeContract(data)
	if err != nil {
		return errors.Wrap(err, "decode contract")
	}

	g := codegen.New(contract, codegen.WithCostVersion(params.costVersion))
	mod, err := g.Compile()
	if err != nil {
		return errors.Wrap(err, "compile contract")
	}

	out := defaultOut
	if params.outputFile != "" {
		f, err := os.Create(params.outputFile)
		if err != nil {
			return errors.Wrap(err, "open output file")
		}
		defer f.Close()
		out = f
	}

	if err := encoding.WriteModule(out, mod); err != nil {
		return errors.Wrap(err, "write module")
	}
	return nil
}

func readContractInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

func init() {
	compileCommand.Flags().StringVar(&configuredCompileParams.costVersion, "cost-version", costtable.DefaultVersion,
		fmt.Sprintf("cost table version to charge against (available: %s)", strings.Join(costtable.Versions(), ", ")))
	compileCommand.Flags().StringVarP(&configuredCompileParams.outputFile, "output", "o", "",
		"output file for the compiled Wasm module (default: stdout)")

	RootCommand.AddCommand(compileCommand)
}
