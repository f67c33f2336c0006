package main

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wippyai/jaot/compiler"
	"github.com/wippyai/jaot/errors"
)

var compileCmd = &cobra.Command{
	Use:   "compile <main-class>",
	Short: "Emit C++ declarations for a main class and its dependencies",
	Long: `Compile collects every class reachable from the main class, orders them
and writes one C++ header. Nothing is written when any class fails.

Examples:
  jaot compile -c app.jar -c rt.jar com.example.Main
  jaot compile -c build/classes com/example/Main -o main.hpp --verify`,
	Args: cobra.ExactArgs(1),
	RunE: runCompile,
}

func init() {
	compileCmd.Flags().StringP("output", "o", "", `output file, "-" for standard output`)
	compileCmd.Flags().Bool("verify", false, "parse the generated source and fail on syntax errors")
	compileCmd.Flags().Bool("disassemble", false, "include method instructions as comments")
	rootCmd.AddCommand(compileCmd)
}

func runCompile(cmd *cobra.Command, args []string) error {
	opts, err := cfg.CompilerOptions()
	if err != nil {
		return err
	}
	cp, done, err := openClassPath()
	if err != nil {
		return err
	}
	defer done()

	c := compiler.NewContext(cp, opts)
	res, err := c.Compile(cmd.Context(), binaryName(args[0]))
	if err != nil {
		return err
	}

	if cfg.Output == "-" {
		_, err = cmd.OutOrStdout().Write(res.Source)
		return err
	}
	if err := os.WriteFile(cfg.Output, res.Source, 0o644); err != nil {
		return errors.Wrap(errors.PhaseCodegen, errors.KindInvalidInput, err, "write "+cfg.Output)
	}
	logger.Info("wrote output",
		zap.String("path", cfg.Output),
		zap.Int("classes", len(res.Order)),
		zap.String("run", c.RunID()))
	return nil
}
