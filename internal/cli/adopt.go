package cli

import (
	"github.com/spf13/cobra"

	"github.com/acta-dev/acta/pkg/action"
)

// AdoptOptions holds flags for the adopt command.
type AdoptOptions struct {
	*RootOptions
	Parent string
	Child  string
}

// NewAdoptCommand creates the adopt command.
func NewAdoptCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &AdoptOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "adopt --parent <file> --child <file>",
		Short: "Stamp a record with a parent's identity",
		Long: `Print a copy of the child record whose pid is the parent's id and
whose update time is fresh. The child's own identity and creation time
are untouched. Lineage is a single hop: the stamped record points at its
direct parent only.

Example:
  acta adopt --parent session.json --child click.json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAdopt(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Parent, "parent", "", "parent record (path or - for stdin)")
	cmd.Flags().StringVar(&opts.Child, "child", "", "child record (path or - for stdin)")
	_ = cmd.MarkFlagRequired("parent")
	_ = cmd.MarkFlagRequired("child")

	return cmd
}

func runAdopt(opts *AdoptOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	parent, err := readRecord(opts.Parent, cmd)
	if err != nil {
		return failRead(formatter, opts.Parent, err)
	}
	child, err := readRecord(opts.Child, cmd)
	if err != nil {
		return failRead(formatter, opts.Child, err)
	}

	stamped, err := action.MakeChildOf(parent, child)
	if err != nil {
		return formatter.Fail(ExitFailure, usageCode(err), err.Error(), nil)
	}

	return emitRecord(formatter, stamped)
}
