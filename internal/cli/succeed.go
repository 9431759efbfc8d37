package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/acta-dev/acta/pkg/action"
)

// SucceedOptions holds flags for the succeed command.
type SucceedOptions struct {
	*RootOptions
	File string
}

// NewSucceedCommand creates the succeed command.
func NewSucceedCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SucceedOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "succeed [payload]",
		Short: "Finish an async record successfully",
		Long: `Print a successor of the input record in the finished phase with
progress 100 and the error flag cleared. The payload, typically the
outcome, replaces the input's payload wholesale. The input record is read
from --file, or from stdin by default, and must be async.

Examples:
  acta succeed -f job.json '{"status":200}'
  acta new fetch --async | acta succeed`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSucceed(opts, args, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.File, "file", "f", "-", "record to finish (path or - for stdin)")

	return cmd
}

func runSucceed(opts *SucceedOptions, args []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	payload, err := transitionPayloadArg(args)
	if err != nil {
		return formatter.Fail(ExitCommandError, "MALFORMED", fmt.Sprintf("invalid payload argument: %v", err), nil)
	}

	a, err := readRecord(opts.File, cmd)
	if err != nil {
		return failRead(formatter, opts.File, err)
	}

	next, err := action.Succeed(a, payload)
	if err != nil {
		return formatter.Fail(ExitFailure, usageCode(err), err.Error(), nil)
	}

	return emitRecord(formatter, next)
}
