package cli

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/acta-dev/acta/internal/testutil"
	"github.com/acta-dev/acta/pkg/action"
)

// testInstant is the frozen instant used by command tests that need
// predictable timestamps.
var testInstant = time.Date(2024, 5, 6, 7, 8, 9, 123000000, time.UTC)

// testFactory returns a factory on a clock frozen at testInstant.
func testFactory() *action.Factory {
	return action.NewFactory(testutil.NewFixedClock(testInstant))
}

// mustValue parses a JSON literal into a payload value.
func mustValue(t *testing.T, src string) action.Value {
	t.Helper()
	v, err := action.ParseValue([]byte(src))
	require.NoError(t, err)
	return v
}

// writeRecord marshals a record into dir under name and returns its path.
func writeRecord(t *testing.T, dir, name string, a *action.Action) string {
	t.Helper()
	data, err := a.MarshalJSON()
	require.NoError(t, err)
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

// newAsyncRecordFile mints an async record and writes it to dir.
func newAsyncRecordFile(t *testing.T, dir string) (string, *action.Action) {
	t.Helper()
	a, err := testFactory().NewAsync("export.requested", mustValue(t, `{"format":"csv"}`))
	require.NoError(t, err)
	return writeRecord(t, dir, "job.json", a), a
}

// newSyncRecordFile mints a sync record and writes it to dir.
func newSyncRecordFile(t *testing.T, dir string) (string, *action.Action) {
	t.Helper()
	a, err := testFactory().New("user.created", mustValue(t, `{"name":"Ada"}`), action.Options{})
	require.NoError(t, err)
	return writeRecord(t, dir, "record.json", a), a
}

// parseOutput strictly parses a command's printed record.
func parseOutput(t *testing.T, out []byte) *action.Action {
	t.Helper()
	a, err := action.Parse(out)
	require.NoError(t, err, "command output is not a wire record: %s", out)
	return a
}
