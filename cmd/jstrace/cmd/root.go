package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Version information (set by build flags)
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "jstrace",
	Short: "Deterministic step-tracing simulator for a JavaScript subset",
	Long: `jstrace runs an already-parsed JavaScript program (given as an
ESTree-shaped JSON document) through a two-pass interpreter and emits the
full sequence of execution steps it took: every scope push/pop, every
operand-stack push/pop, every declaration, and every console call.

It does not parse source text itself - feed it the AST a real parser
already produced. The goal is a trace precise enough to teach how
scoping, hoisting, and the call stack actually behave, not to run
programs fast.`,
	Version:       Version,
	SilenceErrors: true,
}

// Execute runs the root command. Errors are left unprinted here - the
// caller (main) reports them through ExitWithError so there is exactly one
// place that formats a fatal CLI error and exits.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(`{{with .Name}}{{printf "%%s " .}}{{end}}{{printf "version %%s" .Version}}
Commit: %s
Built:  %s
`, GitCommit, BuildDate))

	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "log decode/run/trace-view progress to stderr")
}

// verboseLogger builds a logger gated on cmd's --verbose flag: debug-level
// output when set, warn-level (effectively silent for this CLI, which never
// logs a warning) otherwise. A bare *cobra.Command with no --verbose flag
// registered (as in-process tests construct) behaves as if unset.
func verboseLogger(cmd *cobra.Command) *slog.Logger {
	level := slog.LevelWarn
	if v, err := cmd.Flags().GetBool("verbose"); err == nil && v {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
}

// ExitWithError prints a formatted error to stderr and exits 1. It is the
// one place a fatal CLI error (as opposed to a RunE error cobra's own
// usage/help machinery can still act on) leaves the process.
func ExitWithError(msg string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+msg+"\n", args...)
	os.Exit(1)
}
