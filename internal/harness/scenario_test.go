package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadScenario_ValidFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.yaml")

	content := `
name: test_scenario
description: "Exercises the loader"
clock:
  start: "2025-03-01T00:00:00Z"
  step_seconds: 5
steps:
  - op: new_async
    as: a
    type: fetch
    payload:
      url: /x
  - op: succeed
    as: b
    from: a
assertions:
  - kind: id_stable
    targets: [a, b]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	scenario, err := LoadScenario(path)
	require.NoError(t, err)

	assert.Equal(t, "test_scenario", scenario.Name)
	assert.Equal(t, "Exercises the loader", scenario.Description)
	require.NotNil(t, scenario.Clock)
	assert.Equal(t, "2025-03-01T00:00:00Z", scenario.Clock.Start)
	assert.Equal(t, 5, scenario.Clock.Step)
	require.Len(t, scenario.Steps, 2)
	assert.Equal(t, OpNewAsync, scenario.Steps[0].Op)
	assert.Equal(t, map[string]any{"url": "/x"}, scenario.Steps[0].Payload)
	require.Len(t, scenario.Assertions, 1)
	assert.Equal(t, []string{"a", "b"}, scenario.Assertions[0].Targets)
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario("/nonexistent/scenario.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestParseScenario_UnknownFieldRejected(t *testing.T) {
	content := `
name: typo
steps:
  - op: new
    as: a
    type: ping
    paylod:
      x: 1
`
	_, err := ParseScenario([]byte(content))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestParseScenario_MissingName(t *testing.T) {
	content := `
steps:
  - op: new
    as: a
    type: ping
`
	_, err := ParseScenario([]byte(content))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "name is required")
}

func TestParseScenario_NoSteps(t *testing.T) {
	_, err := ParseScenario([]byte("name: empty\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "steps list is required")
}

func TestParseScenario_StepValidation(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "missing op",
			yaml:    "name: s\nsteps:\n  - as: a\n",
			wantErr: "steps[0]: op is required",
		},
		{
			name:    "unknown op",
			yaml:    "name: s\nsteps:\n  - op: teleport\n    as: a\n",
			wantErr: `steps[0]: unknown op "teleport"`,
		},
		{
			name:    "new without type",
			yaml:    "name: s\nsteps:\n  - op: new\n    as: a\n",
			wantErr: "steps[0]: type is required for new",
		},
		{
			name:    "new without binding",
			yaml:    "name: s\nsteps:\n  - op: new\n    type: ping\n",
			wantErr: "steps[0]: as is required for new",
		},
		{
			name:    "continue without from",
			yaml:    "name: s\nsteps:\n  - op: continue\n    as: b\n",
			wantErr: "steps[0]: from is required for continue",
		},
		{
			name:    "progress out of range",
			yaml:    "name: s\nsteps:\n  - op: continue\n    as: b\n    from: a\n    progress: 150\n",
			wantErr: "progress must be between 0 and 100, got 150",
		},
		{
			name:    "adopt without child",
			yaml:    "name: s\nsteps:\n  - op: adopt\n    as: x\n    parent: p\n",
			wantErr: "steps[0]: child is required for adopt",
		},
		{
			name:    "identify without type",
			yaml:    "name: s\nsteps:\n  - op: identify\n",
			wantErr: "steps[0]: type is required for identify",
		},
		{
			name:    "parse without wire",
			yaml:    "name: s\nsteps:\n  - op: parse\n    as: x\n",
			wantErr: "steps[0]: wire is required for parse",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestParseScenario_AssertionValidation(t *testing.T) {
	header := "name: s\nsteps:\n  - op: new\n    as: a\n    type: ping\nassertions:\n"

	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "missing kind",
			yaml:    header + "  - target: a\n",
			wantErr: "assertions[0]: kind is required",
		},
		{
			name:    "unknown kind",
			yaml:    header + "  - kind: sorted\n",
			wantErr: `assertions[0]: unknown kind "sorted"`,
		},
		{
			name:    "valid without target",
			yaml:    header + "  - kind: valid\n",
			wantErr: "assertions[0]: target is required for valid",
		},
		{
			name:    "id_stable with one target",
			yaml:    header + "  - kind: id_stable\n    targets: [a]\n",
			wantErr: "at least two entries",
		},
		{
			name:    "phase with non-string equals",
			yaml:    header + "  - kind: phase\n    target: a\n    equals: 3\n",
			wantErr: "equals must be a string for phase",
		},
		{
			name:    "progress with non-integer equals",
			yaml:    header + "  - kind: progress\n    target: a\n    equals: half\n",
			wantErr: "equals must be an integer for progress",
		},
		{
			name:    "error_flag with non-boolean equals",
			yaml:    header + "  - kind: error_flag\n    target: a\n    equals: nope\n",
			wantErr: "equals must be a boolean for error_flag",
		},
		{
			name:    "child_of without parent",
			yaml:    header + "  - kind: child_of\n    child: a\n",
			wantErr: "assertions[0]: parent is required for child_of",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
