package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/acta-dev/acta/pkg/action"
	"github.com/acta-dev/acta/pkg/schema"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
	File   string
	Strict bool
}

// ValidationReport holds validation results for a single document.
type ValidationReport struct {
	Valid  bool                `json:"valid"`
	Fields []action.FieldError `json:"fields,omitempty"`
	Schema string              `json:"schema,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check a document against the action shape",
		Long: `Check whether a JSON document conforms to the action record shape:
exact key sets at the top level and in meta, a string type, the marker,
and lifecycle keys only on async records. All problems are reported, not
just the first. The shape check is literal about keys and leaves values
alone; --strict additionally validates values against the published CUE
contract (phase enum, progress bounds).

Exit codes:
  0 - Document is valid
  1 - Document is invalid
  2 - Command error (unreadable file, not JSON)

Examples:
  acta validate -f record.json
  acta validate -f record.json --strict
  cat record.json | acta validate`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(opts, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.File, "file", "f", "-", "document to check (path or - for stdin)")
	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "also validate values against the CUE contract")

	return cmd
}

func runValidate(opts *ValidateOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	data, err := readDocument(opts.File, cmd)
	if err != nil {
		return formatter.Fail(ExitCommandError, "IO_ERROR", fmt.Sprintf("reading %s: %v", opts.File, err), nil)
	}

	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return formatter.Fail(ExitCommandError, "MALFORMED", fmt.Sprintf("not a JSON document: %v", err), nil)
	}

	report := ValidationReport{Valid: true}
	if fields := action.Check(doc); len(fields) > 0 {
		report.Valid = false
		report.Fields = fields
	}
	if opts.Strict && report.Valid {
		if err := schema.Validate(data); err != nil {
			report.Valid = false
			report.Schema = err.Error()
		}
	}

	if report.Valid {
		return outputValidateSuccess(formatter)
	}
	return outputValidateFailure(formatter, report)
}

// outputValidateSuccess outputs a passing validation report.
func outputValidateSuccess(formatter *OutputFormatter) error {
	if formatter.Format == "json" {
		return formatter.Success(ValidationReport{Valid: true})
	}
	fmt.Fprintln(formatter.Writer, "✓ valid")
	return nil
}

// outputValidateFailure outputs a failing validation report. Invalid
// documents are domain failures (exit code 1), not command errors.
func outputValidateFailure(formatter *OutputFormatter, report ValidationReport) error {
	problems := len(report.Fields)
	if report.Schema != "" {
		problems++
	}

	if formatter.Format == "json" {
		response := CLIResponse{
			Status: "error",
			Data:   report,
			Error: &CLIError{
				Code:    "INVALID_ACTION",
				Message: fmt.Sprintf("validation failed with %d problem(s)", problems),
			},
		}
		if err := json.NewEncoder(formatter.Writer).Encode(response); err != nil {
			return err
		}
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d problem(s)", problems))
	}

	fmt.Fprintf(formatter.Writer, "✗ invalid (%d problem(s))\n", problems)
	for _, fe := range report.Fields {
		fmt.Fprintf(formatter.Writer, "  %s\n", fe.Error())
	}
	if report.Schema != "" {
		fmt.Fprintf(formatter.Writer, "  [SCHEMA] %s\n", report.Schema)
	}
	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d problem(s)", problems))
}
