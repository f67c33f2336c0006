package main

import (
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/wippyai/jaot/compiler"
	"github.com/wippyai/jaot/errors"
)

var graphCmd = &cobra.Command{
	Use:   "graph <main-class>",
	Short: "Print the dependency graph of a main class as YAML",
	Long: `Graph lists every class reachable from the main class, each edge with its
kind (HARD or SOFT) and the emission order. When the HARD edges form a cycle
the order is replaced by the classes on the cycle.`,
	Args: cobra.ExactArgs(1),
	RunE: runGraph,
}

func init() {
	rootCmd.AddCommand(graphCmd)
}

func runGraph(cmd *cobra.Command, args []string) error {
	opts, err := cfg.CompilerOptions()
	if err != nil {
		return err
	}
	cp, done, err := openClassPath()
	if err != nil {
		return err
	}
	defer done()

	g, err := compiler.NewContext(cp, opts).Collect(binaryName(args[0]))
	if err != nil {
		return err
	}

	enc := yaml.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent(2)
	if err := enc.Encode(g.Export()); err != nil {
		return errors.Wrap(errors.PhaseCollect, errors.KindInvalidData, err, "encode graph")
	}
	return enc.Close()
}
