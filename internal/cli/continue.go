package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/acta-dev/acta/pkg/action"
)

// ContinueOptions holds flags for the continue command.
type ContinueOptions struct {
	*RootOptions
	File     string
	Progress int
}

// NewContinueCommand creates the continue command.
func NewContinueCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ContinueOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "continue [payload]",
		Short: "Advance an async record to the running phase",
		Long: `Print a successor of the input record in the running phase, stamped
with a fresh update time. The payload replaces the input's payload
wholesale; progress is clamped to 0-100. The input record is read from
--file, or from stdin by default, and must be async.

Examples:
  acta new export.requested --async | acta continue '{"pct":40}' --progress 40
  acta continue -f job.json --progress 75`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runContinue(opts, args, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.File, "file", "f", "-", "record to advance (path or - for stdin)")
	cmd.Flags().IntVar(&opts.Progress, "progress", 0, "progress percentage (clamped to 0-100)")

	return cmd
}

func runContinue(opts *ContinueOptions, args []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	payload, err := transitionPayloadArg(args)
	if err != nil {
		return formatter.Fail(ExitCommandError, "MALFORMED", fmt.Sprintf("invalid payload argument: %v", err), nil)
	}

	a, err := readRecord(opts.File, cmd)
	if err != nil {
		return failRead(formatter, opts.File, err)
	}

	next, err := action.Continue(a, payload, opts.Progress)
	if err != nil {
		return formatter.Fail(ExitFailure, usageCode(err), err.Error(), nil)
	}

	return emitRecord(formatter, next)
}

// transitionPayloadArg parses the optional payload argument of a
// transition command (the record itself arrives via --file, so the
// payload is the first positional argument).
func transitionPayloadArg(args []string) (action.Value, error) {
	if len(args) == 0 {
		return nil, nil
	}
	return action.ParseValue([]byte(args[0]))
}
