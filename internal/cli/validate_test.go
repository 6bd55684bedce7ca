package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateValidPack(t *testing.T) {
	out, err := execute(t, nil, "validate", writeSamplePack(t))
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Pack valid: 3 question(s), 2 rule(s)")
}

func TestValidateValidPackJSON(t *testing.T) {
	out, err := execute(t, nil, "--format", "json", "validate", writeSamplePack(t))
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestValidateInvalidPack(t *testing.T) {
	dir := t.TempDir()
	badPack := `
question: q1: {
	text: "Type inconnu"
	type: "essay"
	orderIndex: 1
}
question: q2: {
	text: "Doublon"
	type: "personal"
	orderIndex: 1
}
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pack.cue"), []byte(badPack), 0o644))

	out, err := execute(t, nil, "validate", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ Pack invalid")
	assert.Contains(t, out, "E102")
	assert.Contains(t, out, "E107")
}

func TestValidateNonExistentDirectory(t *testing.T) {
	out, err := execute(t, nil, "validate", filepath.Join(t.TempDir(), "absent"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "E005")
	assert.Contains(t, out, "not found")
}

func TestValidateEmptyDirectory(t *testing.T) {
	out, err := execute(t, nil, "validate", t.TempDir())
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "E003")
	assert.Contains(t, out, "no CUE files found")
}
