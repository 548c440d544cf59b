// Package main implements the sv2v CLI.
package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"sv2v/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "sv2v [flags] [files...]",
	Short: "SystemVerilog to Verilog-2005 converter",
	Long:  "sv2v converts synthesizable SystemVerilog into plain Verilog-2005.",
	Args:  cobra.ArbitraryArgs,
	RunE:  convertExecution,

	SilenceErrors: true,
	SilenceUsage:  true,
}

func main() {
	rootCmd.Version = version.Version
	rootCmd.AddCommand(versionCmd)

	rootCmd.Flags().StringArrayP("define", "D", nil, "define a preprocessor macro (NAME or NAME=VALUE)")
	rootCmd.Flags().StringArrayP("incdir", "I", nil, "add a directory to the include search path")
	rootCmd.Flags().StringP("output", "o", "", "write output to a file instead of stdout")
	rootCmd.Flags().Bool("no-cache", false, "disable the conversion result cache")
	rootCmd.Flags().Bool("clear-cache", false, "drop all cached conversion results first")

	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().String("ui", "auto", "show progress UI (auto|on|off)")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
