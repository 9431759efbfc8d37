package cli

import (
	"github.com/spf13/cobra"

	"github.com/acta-dev/acta/pkg/action"
)

// FailOptions holds flags for the fail command.
type FailOptions struct {
	*RootOptions
	File string
}

// NewFailCommand creates the fail command.
func NewFailCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &FailOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "fail [reason]",
		Short: "Finish an async record as failed",
		Long: `Print a successor of the input record in the finished phase with
progress 100 and the error flag set. The reason becomes the payload: a
JSON value when it parses as one, otherwise a bare string. The input
record is read from --file, or from stdin by default, and must be async.

Examples:
  acta fail -f job.json 'disk full'
  acta fail -f job.json '{"code":507,"message":"disk full"}'`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFail(opts, args, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.File, "file", "f", "-", "record to finish (path or - for stdin)")

	return cmd
}

func runFail(opts *FailOptions, args []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	a, err := readRecord(opts.File, cmd)
	if err != nil {
		return failRead(formatter, opts.File, err)
	}

	next, err := action.Fail(a, reasonArg(args))
	if err != nil {
		return formatter.Fail(ExitFailure, usageCode(err), err.Error(), nil)
	}

	return emitRecord(formatter, next)
}

// reasonArg interprets the failure reason: JSON when it parses as JSON,
// a plain string otherwise.
func reasonArg(args []string) action.Value {
	if len(args) == 0 {
		return nil
	}
	if v, err := action.ParseValue([]byte(args[0])); err == nil {
		return v
	}
	return action.String(args[0])
}
