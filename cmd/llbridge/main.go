package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"llbridge/internal/version"
)

var rootCmd = &cobra.Command{
	Use:           "llbridge",
	Short:         "Inspect types, data layouts and object files through the llvm bridge",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setupApp(cmd)
	},
}

func init() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(sectionsCmd)
	rootCmd.AddCommand(typesCmd)
	rootCmd.AddCommand(layoutCmd)
	rootCmd.AddCommand(passesCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().String("config", "", "path to llbridge.toml (default: search upwards from the working directory)")
	rootCmd.PersistentFlags().String("datalayout", "", "override [target].datalayout")
	rootCmd.PersistentFlags().String("trace", "", "trace output file (- for stderr)")
	rootCmd.PersistentFlags().String("trace-level", "", "trace level (off|error|session|resource|debug)")
	rootCmd.PersistentFlags().String("trace-mode", "", "trace storage mode (stream|ring|both)")
	rootCmd.PersistentFlags().Int("jobs", 0, "parallel workers for object scans (0 = GOMAXPROCS)")
	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().Bool("timings", false, "show timing information")
}

func main() {
	err := rootCmd.ExecuteContext(context.Background())
	app.close(rootCmd.ErrOrStderr())
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
