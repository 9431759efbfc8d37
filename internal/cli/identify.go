package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/acta-dev/acta/pkg/action"
)

// IdentifyOptions holds flags for the identify command.
type IdentifyOptions struct {
	*RootOptions
	Uniq bool
}

// NewIdentifyCommand creates the identify command.
func NewIdentifyCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &IdentifyOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "identify <type> [payload]",
		Short: "Derive an action identifier without minting a record",
		Long: `Print the identifier an action of the given type and payload would
carry. Identifiers are content-derived: the same type and structurally
equal payload always map to the same id. With --uniq a fresh random id is
printed on every call.

Examples:
  acta identify user.created '{"name":"Ada"}'
  acta identify page.viewed --uniq`,
		Args:          cobra.RangeArgs(1, 2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIdentify(opts, args, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Uniq, "uniq", false, "random identifier instead of a content-derived one")

	return cmd
}

func runIdentify(opts *IdentifyOptions, args []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	payload, err := payloadArg(args)
	if err != nil {
		return formatter.Fail(ExitCommandError, "MALFORMED", fmt.Sprintf("invalid payload argument: %v", err), nil)
	}

	id, err := action.Identify(args[0], payload, opts.Uniq)
	if err != nil {
		return formatter.Fail(ExitFailure, usageCode(err), err.Error(), nil)
	}

	if formatter.Format == "json" {
		return formatter.Success(map[string]string{"id": id})
	}
	fmt.Fprintln(formatter.Writer, id)
	return nil
}
