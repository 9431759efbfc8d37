package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acta-dev/acta/pkg/action"
)

func TestInspectSyncRecord(t *testing.T) {
	path, orig := newSyncRecordFile(t, t.TempDir())

	buf := &bytes.Buffer{}
	cmd := NewInspectCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"-f", path})

	err := cmd.Execute()
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "type:     user.created")
	assert.Contains(t, out, "id:       "+orig.Meta.ID)
	assert.Contains(t, out, "async:    false")
	assert.Contains(t, out, "ctime:    2024-05-06T07:08:09.123Z")
	assert.NotContains(t, out, "phase:")
	assert.NotContains(t, out, "pid:")
}

func TestInspectAsyncRecord(t *testing.T) {
	path, _ := newAsyncRecordFile(t, t.TempDir())

	buf := &bytes.Buffer{}
	cmd := NewInspectCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"-f", path})

	err := cmd.Execute()
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "async:    true")
	assert.Contains(t, out, "phase:    started")
	assert.Contains(t, out, "progress: 0")
}

func TestInspectAdoptedRecord(t *testing.T) {
	factory := testFactory()
	parent, err := factory.New("session.opened", nil, action.Options{})
	require.NoError(t, err)
	child, err := factory.NewAsync("export.requested", nil)
	require.NoError(t, err)
	adopted, err := factory.MakeChildOf(parent, child)
	require.NoError(t, err)

	path := writeRecord(t, t.TempDir(), "adopted.json", adopted)

	buf := &bytes.Buffer{}
	cmd := NewInspectCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"-f", path})

	err = cmd.Execute()
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "pid:      "+parent.Meta.ID)
	assert.Contains(t, out, "utime:    2024-05-06T07:08:09.123Z")
}

func TestInspectJSONEnvelope(t *testing.T) {
	path, orig := newAsyncRecordFile(t, t.TempDir())

	buf := &bytes.Buffer{}
	cmd := NewInspectCommand(&RootOptions{Format: "json"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"-f", path})

	err := cmd.Execute()
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)

	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "export.requested", data["type"])
	assert.Equal(t, orig.Meta.ID, data["id"])
	assert.Equal(t, true, data["async"])
	assert.Equal(t, "started", data["phase"])
	assert.Equal(t, float64(0), data["progress"])
}

func TestInspectMalformedRecord(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.json")
	require.NoError(t, os.WriteFile(path, []byte(`{}`), 0644))

	buf := &bytes.Buffer{}
	cmd := NewInspectCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"-f", path})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, buf.String(), "Error [MALFORMED]")
}

func TestInspectMissingFile(t *testing.T) {
	buf := &bytes.Buffer{}
	cmd := NewInspectCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"-f", "/nonexistent/record.json"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, buf.String(), "Error [IO_ERROR]")
}
