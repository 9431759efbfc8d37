package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/acta-dev/acta/pkg/schema"
)

// NewSchemaCommand creates the schema command.
func NewSchemaCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the CUE wire contract",
		Long: `Print the CUE source of the action wire contract, the definition
used by validate --strict. Pipe it into cue tooling or embed it in other
systems that need to check records at a process boundary.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSchema(rootOpts, cmd)
		},
	}

	return cmd
}

func runSchema(opts *RootOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	if formatter.Format == "json" {
		return formatter.Success(map[string]string{"source": schema.Source()})
	}
	fmt.Fprint(formatter.Writer, schema.Source())
	return nil
}
