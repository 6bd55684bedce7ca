package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeScenario(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// packRelative points a temp-dir scenario at the shared basic pack.
func packRelative(t *testing.T) string {
	t.Helper()
	abs, err := filepath.Abs(filepath.Join("testdata", "packs", "basic"))
	require.NoError(t, err)
	return abs
}

func TestLoadScenarioValid(t *testing.T) {
	scenario, err := LoadScenario(filepath.Join("testdata", "scenarios", "completed-quiz.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "completed-quiz", scenario.Name)
	assert.Equal(t, "+242061234567", scenario.Participant)
	require.Len(t, scenario.Steps, 4)
	assert.Equal(t, "Vrai", scenario.Steps[1].Send)
	assert.Equal(t, int64(12000), scenario.Steps[1].AdvanceMs)
	require.NotNil(t, scenario.Final)
	require.NotNil(t, scenario.Final.Score)
	assert.Equal(t, 15, *scenario.Final.Score)

	// The pack path resolved relative to the scenario file.
	assert.DirExists(t, scenario.Pack)
}

func TestLoadScenarioMissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read")
}

func TestLoadScenarioUnknownField(t *testing.T) {
	path := writeScenario(t, `
name: typo
description: unknown field is rejected
pack: `+packRelative(t)+`
participant: p1
step:
  - send: "bonjour"
`)
	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "field step not found")
}

func TestLoadScenarioValidation(t *testing.T) {
	pack := packRelative(t)

	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name: "missing name",
			content: `
description: d
pack: ` + pack + `
participant: p1
steps:
  - send: "bonjour"
`,
			wantErr: "name is required",
		},
		{
			name: "missing participant",
			content: `
name: s
description: d
pack: ` + pack + `
steps:
  - send: "bonjour"
`,
			wantErr: "participant is required",
		},
		{
			name: "missing pack",
			content: `
name: s
description: d
participant: p1
steps:
  - send: "bonjour"
`,
			wantErr: "pack is required",
		},
		{
			name: "pack not found",
			content: `
name: s
description: d
pack: /nonexistent/pack
participant: p1
steps:
  - send: "bonjour"
`,
			wantErr: "pack directory not found",
		},
		{
			name: "no steps",
			content: `
name: s
description: d
pack: ` + pack + `
participant: p1
steps: []
`,
			wantErr: "steps list is required",
		},
		{
			name: "step without send",
			content: `
name: s
description: d
pack: ` + pack + `
participant: p1
steps:
  - advance_ms: 1000
`,
			wantErr: "steps[0]: send is required",
		},
		{
			name: "negative advance",
			content: `
name: s
description: d
pack: ` + pack + `
participant: p1
steps:
  - send: "bonjour"
    advance_ms: -5
`,
			wantErr: "advance_ms must be non-negative",
		},
		{
			name: "empty expect",
			content: `
name: s
description: d
pack: ` + pack + `
participant: p1
steps:
  - send: "bonjour"
    expect: {}
`,
			wantErr: "contains or completed is required",
		},
		{
			name: "unknown final status",
			content: `
name: s
description: d
pack: ` + pack + `
participant: p1
steps:
  - send: "bonjour"
final:
  status: paused
`,
			wantErr: `unknown status "paused"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadScenario(writeScenario(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
