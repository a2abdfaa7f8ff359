// Command ir_pipeline runs the full nine-pass pipeline (spec.md §6) over
// a single source file and renders the resulting MIR. The actual
// MIR-to-LLVM emitter is an out-of-scope external collaborator (spec.md
// §1); this command's JSON rendering of the lowered functions stands in
// for the "IR" spec.md §6 says goes to stdout, with any runtime-helper
// declarations the module needs rendered separately to stderr.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/rogerflowey/rust-compiler-sub004/internal/debugdump"
	"github.com/rogerflowey/rust-compiler-sub004/internal/diag"
	"github.com/rogerflowey/rust-compiler-sub004/internal/pipeline"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:           "ir_pipeline <path|-> [out|->]",
	Short:         "Lower an Rx source file to MIR",
	Args:          cobra.RangeArgs(1, 2),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

func init() {
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "print one progress line per pass to stderr")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(_ *cobra.Command, args []string) error {
	name, source, err := readSource(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}

	out := "-"
	if len(args) == 2 {
		out = args[1]
	}

	res, mod, bag := pipeline.RunIR(name, source, pipeline.Options{Verbose: verbose})
	if bag != nil {
		fmt.Fprint(os.Stderr, diag.FormatAll(bag.All()))
		return fmt.Errorf("semantic analysis failed with %d diagnostic(s)", bag.Count())
	}

	if len(mod.ExternalFunctions) > 0 {
		helpers, err := debugdump.MIRExternalFunctions(res.Ctx, mod)
		if err != nil {
			return fmt.Errorf("rendering runtime helpers: %w", err)
		}
		fmt.Fprintln(os.Stderr, helpers)
	}

	rendered, err := debugdump.MIRFunctions(res.Ctx, mod)
	if err != nil {
		return fmt.Errorf("rendering MIR: %w", err)
	}

	return writeOutput(out, rendered)
}

func readSource(path string) (name, source string, err error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", "", fmt.Errorf("reading stdin: %w", err)
		}
		return "<stdin>", string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", "", fmt.Errorf("reading %s: %w", path, err)
	}
	return path, string(data), nil
}

func writeOutput(path, content string) error {
	if path == "-" {
		_, err := fmt.Fprintln(os.Stdout, content)
		return err
	}
	return os.WriteFile(path, []byte(content+"\n"), 0o644)
}
