// Command semantic_pipeline runs Rx's semantic analysis pipeline — passes
// 0 through 8, spec.md §6 — over a single source file and reports only
// whether it is valid.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/rogerflowey/rust-compiler-sub004/internal/diag"
	"github.com/rogerflowey/rust-compiler-sub004/internal/pipeline"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:           "semantic_pipeline <path|->",
	Short:         "Validate an Rx source file through the semantic analysis pipeline",
	Args:          cobra.ExactArgs(1),
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

	_, bag := pipeline.RunSemantic(name, source, pipeline.Options{Verbose: verbose})
	if bag != nil {
		fmt.Fprint(os.Stderr, diag.FormatAll(bag.All()))
		return fmt.Errorf("semantic analysis failed with %d diagnostic(s)", bag.Count())
	}
	return nil
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
