package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/clarlang/c2w/internal/hostsim"
)

type runParams struct {
	entrypoint string
	mainnet    bool
	args       []string
}

var configuredRunParams runParams

var runCommand = &cobra.Command{
	Use:   "run <module.wasm>",
	Short: "Run a compiled Wasm module against the in-process host simulator",
	Long: `Run loads a module produced by "c2w compile" into internal/hostsim, a
wazero-backed stand-in for a real Clarity host, calls --entrypoint with
--arg values as its raw i64 stack words, and prints the result words and
anything the contract printed with (print ...).

This runs against a synthetic, single-module chain state: there is no real
block history, no other contracts to contract-call into, and balances/maps
start empty. It exists to exercise a compiled module's host-import surface
end to end, not to simulate a real network.`,
	Args: cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		return runRun(args[0], &configuredRunParams, os.Stdout)
	},
}

func runRun(path string, params *runParams, out io.Writer) error {
	wasmBytes, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "read compiled module")
	}

	stackArgs, err := parseStackArgs(params.args)
	if err != nil {
		return errors.Wrap(err, "parse --arg")
	}

	ctx := context.Background()
	result, err := hostsim.Run(ctx, wasmBytes, params.mainnet, params.entrypoint, stackArgs...)
	if err != nil {
		return errors.Wrap(err, "run module")
	}

	for _, line := range result.Logs {
		fmt.Fprintln(out, line)
	}
	fmt.Fprintf(out, "result: %v\n", result.Values)
	return nil
}

// parseStackArgs turns a list of "--arg" values, each a base-10 or 0x-prefixed
// uint64, into the raw stack words hostsim.Run passes to the entrypoint. A
// Clarity value wider than one stack word (e.g. int/uint) is passed as two
// consecutive --arg flags, low half first, matching abi.go's Shape ordering.
func parseStackArgs(raw []string) ([]uint64, error) {
	out := make([]uint64, 0, len(raw))
	for _, s := range raw {
		v, err := strconv.ParseUint(strings.TrimPrefix(s, "0x"), hexOrDecBase(s), 64)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid --arg %q", s)
		}
		out = append(out, v)
	}
	return out, nil
}

func hexOrDecBase(s string) int {
	if strings.HasPrefix(s, "0x") {
		return 16
	}
	return 10
}

func init() {
	runCommand.Flags().StringVar(&configuredRunParams.entrypoint, "entrypoint", "",
		"exported function name to call")
	runCommand.Flags().BoolVar(&configuredRunParams.mainnet, "mainnet", false,
		"simulate a mainnet host (affects principal address version bytes)")
	runCommand.Flags().StringArrayVar(&configuredRunParams.args, "arg", nil,
		"raw i64 stack word to pass to --entrypoint (repeatable; use two for a 128-bit value, low half first)")
	_ = runCommand.MarkFlagRequired("entrypoint")

	RootCommand.AddCommand(runCommand)
}
