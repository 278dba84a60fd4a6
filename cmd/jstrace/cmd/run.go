package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/jstrace/jstrace/internal/decode"
	"github.com/jstrace/jstrace/internal/interp"
)

var runCmd = &cobra.Command{
	Use:   "run [file]",
	Short: "Run an ESTree JSON program and print its step trace",
	Long: `run reads an ESTree-shaped JSON document - an already-parsed program,
not source text - from the given file, or from stdin if no file is given,
and drives it through the simulator. The resulting step trace is printed
to stdout as JSON, one array of step records.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runProgram,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runProgram(cmd *cobra.Command, args []string) error {
	logger := verboseLogger(cmd)

	var data []byte
	var err error
	if len(args) == 1 {
		logger.Debug("reading program", "source", args[0])
		data, err = os.ReadFile(args[0])
	} else {
		logger.Debug("reading program", "source", "stdin")
		data, err = io.ReadAll(os.Stdin)
	}
	if err != nil {
		return fmt.Errorf("reading program: %w", err)
	}

	program, err := decode.Program(data)
	if err != nil {
		return fmt.Errorf("decoding program: %w", err)
	}
	logger.Debug("decoded program", "statements", len(program.Body))

	steps, runErr := interp.New().Run(program)
	logger.Debug("simulator finished", "steps", len(steps), "error", runErr)

	out, marshalErr := json.MarshalIndent(steps, "", "  ")
	if marshalErr != nil {
		return fmt.Errorf("marshaling trace: %w", marshalErr)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))

	if runErr != nil {
		return fmt.Errorf("simulator error: %w", runErr)
	}
	return nil
}
