package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/acta-dev/acta/pkg/action"
)

// newFormatter builds the output formatter for a command invocation.
// Verbose logs go to stderr so the JSON format stays machine-readable.
func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
}

// readDocument loads raw bytes from a path, or from stdin when the path
// is "-".
func readDocument(path string, cmd *cobra.Command) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(path)
}

// readRecord loads and strictly parses a wire document.
func readRecord(path string, cmd *cobra.Command) (*action.Action, error) {
	data, err := readDocument(path, cmd)
	if err != nil {
		return nil, err
	}
	return action.Parse(data)
}

// failRead reports a record that could not be loaded. Unreadable or
// undecodable input is a command error, not a domain failure.
func failRead(f *OutputFormatter, path string, err error) error {
	code := "IO_ERROR"
	var ue *action.UsageError
	if errors.As(err, &ue) {
		code = string(ue.Code)
	}
	return f.Fail(ExitCommandError, code, fmt.Sprintf("reading %s: %v", path, err), nil)
}

// payloadArg parses the optional trailing payload argument as JSON.
func payloadArg(args []string) (action.Value, error) {
	if len(args) < 2 {
		return nil, nil
	}
	return action.ParseValue([]byte(args[1]))
}

// emitRecord prints a record as canonical wire JSON. Under the json
// format the record becomes the data field of the response envelope.
func emitRecord(f *OutputFormatter, a *action.Action) error {
	data, err := a.MarshalJSON()
	if err != nil {
		return f.Fail(ExitFailure, usageCode(err), err.Error(), nil)
	}
	if f.Format == "json" {
		return f.Success(json.RawMessage(data))
	}
	fmt.Fprintln(f.Writer, string(data))
	return nil
}

// factoryAt returns a factory on the system clock, or on a clock frozen
// at the given RFC 3339 instant.
func factoryAt(at string) (*action.Factory, error) {
	if at == "" {
		return action.NewFactory(nil), nil
	}
	t, err := time.Parse(time.RFC3339, at)
	if err != nil {
		return nil, fmt.Errorf("invalid --at timestamp %q: %v", at, err)
	}
	return action.NewFactory(fixedClock{t}), nil
}

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }
