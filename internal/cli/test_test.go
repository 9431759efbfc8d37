package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scenariosDir points at the harness's own scenario corpus.
var scenariosDir = filepath.Join("..", "harness", "testdata", "scenarios")

func TestTestCommandRunsScenarios(t *testing.T) {
	if _, err := os.Stat(scenariosDir); os.IsNotExist(err) {
		t.Skip("harness scenario corpus not found")
	}

	buf := &bytes.Buffer{}
	cmd := NewTestCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{scenariosDir})

	err := cmd.Execute()
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "✓ async_lifecycle")
	assert.Contains(t, out, ", 0 failed,")
	assert.Contains(t, out, "✓ All scenarios passed")
}

func TestTestCommandPatternFilter(t *testing.T) {
	if _, err := os.Stat(scenariosDir); os.IsNotExist(err) {
		t.Skip("harness scenario corpus not found")
	}

	buf := &bytes.Buffer{}
	cmd := NewTestCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{scenariosDir, "--pattern", "lineage*"})

	err := cmd.Execute()
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "✓ lineage")
	assert.Contains(t, out, "Test Summary: 1 passed, 0 failed, 1 total")
}

func TestTestCommandJSON(t *testing.T) {
	if _, err := os.Stat(scenariosDir); os.IsNotExist(err) {
		t.Skip("harness scenario corpus not found")
	}

	buf := &bytes.Buffer{}
	cmd := NewTestCommand(&RootOptions{Format: "json"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{scenariosDir})

	err := cmd.Execute()
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)

	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(0), data["failed"])
	assert.Equal(t, data["total"], data["passed"])
}

func TestTestCommandEmptyDir(t *testing.T) {
	buf := &bytes.Buffer{}
	cmd := NewTestCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{t.TempDir()})

	err := cmd.Execute()
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "No scenarios found.")
}

func TestTestCommandMissingDir(t *testing.T) {
	cmd := NewTestCommand(&RootOptions{Format: "text"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"/nonexistent/scenarios"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "scenarios directory not found")
}

func TestTestCommandFailingScenario(t *testing.T) {
	dir := t.TempDir()
	scenario := `
name: premature
steps:
  - op: new_async
    as: a
    type: fetch
assertions:
  - kind: phase
    target: a
    equals: finished
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "premature.yaml"), []byte(scenario), 0644))

	buf := &bytes.Buffer{}
	cmd := NewTestCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{dir})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	out := buf.String()
	assert.Contains(t, out, "✗ premature")
	assert.Contains(t, out, "Test Summary: 0 passed, 1 failed, 1 total")
}

func TestTestCommandUnloadableScenario(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.yaml"), []byte("name: [unclosed\n"), 0644))

	buf := &bytes.Buffer{}
	cmd := NewTestCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{dir})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, buf.String(), "Load error:")
}

func TestTestCommandUpdateThenCompare(t *testing.T) {
	if _, err := os.Stat(scenariosDir); os.IsNotExist(err) {
		t.Skip("harness scenario corpus not found")
	}

	// Copy one deterministic scenario into a fresh directory with no golden.
	src, err := os.ReadFile(filepath.Join(scenariosDir, "async_lifecycle.yaml"))
	require.NoError(t, err)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "async_lifecycle.yaml"), src, 0644))

	buf := &bytes.Buffer{}
	cmd := NewTestCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{dir, "--update"})

	err = cmd.Execute()
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "golden updated")

	goldenPath := filepath.Join(dir, "golden", "async_lifecycle.golden")
	_, err = os.Stat(goldenPath)
	require.NoError(t, err, "golden file should have been written")

	// A second run compares against the freshly written golden and passes.
	buf = &bytes.Buffer{}
	cmd = NewTestCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{dir})

	err = cmd.Execute()
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "✓ All scenarios passed")
}
