package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/acta-dev/acta/pkg/action"
)

// NewCmdOptions holds flags for the new command.
type NewCmdOptions struct {
	*RootOptions
	Async bool
	Uniq  bool
	At    string
}

// NewNewCommand creates the new command.
func NewNewCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &NewCmdOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "new <type> [payload]",
		Short: "Mint an action record",
		Long: `Mint an action record of the given type and print it as canonical
wire JSON.

The payload, when given, must be a JSON value. The identifier is derived
from type and payload, so the same inputs always mint the same id; --uniq
requests a random identifier instead. --async marks the record with
lifecycle state (phase/progress).

Examples:
  acta new user.created '{"name":"Ada"}'
  acta new export.requested '{"format":"csv"}' --async
  acta new page.viewed '{"path":"/home"}' --async --uniq
  acta new ping --at 2024-01-01T00:00:00Z`,
		Args:          cobra.RangeArgs(1, 2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNew(opts, args, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Async, "async", false, "mint an async record with lifecycle state")
	cmd.Flags().BoolVar(&opts.Uniq, "uniq", false, "random identifier instead of a content-derived one")
	cmd.Flags().StringVar(&opts.At, "at", "", "freeze the creation timestamp (RFC 3339)")

	return cmd
}

func runNew(opts *NewCmdOptions, args []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	payload, err := payloadArg(args)
	if err != nil {
		return formatter.Fail(ExitCommandError, "MALFORMED", fmt.Sprintf("invalid payload argument: %v", err), nil)
	}

	factory, err := factoryAt(opts.At)
	if err != nil {
		return formatter.Fail(ExitCommandError, "BAD_FLAG", err.Error(), nil)
	}

	a, err := factory.New(args[0], payload, action.Options{Async: opts.Async, Uniq: opts.Uniq})
	if err != nil {
		return formatter.Fail(ExitFailure, usageCode(err), err.Error(), nil)
	}

	return emitRecord(formatter, a)
}
