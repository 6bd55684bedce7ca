package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResetActiveSession(t *testing.T) {
	db := importSamplePack(t)

	// Progress past the first question, then reset.
	_, err := execute(t, nil, "send", "--db", db, "--participant", "p1", "bonjour")
	require.NoError(t, err)
	_, err = execute(t, nil, "send", "--db", db, "--participant", "p1", "Vrai")
	require.NoError(t, err)

	out, err := execute(t, nil, "reset", "--db", db, "--participant", "p1")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Session reset for p1")

	// The participant is back on the first question.
	out, err = execute(t, nil, "send", "--db", db, "--participant", "p1", "Faux")
	require.NoError(t, err)
	assert.Contains(t, out, "Question 2/2")
}

func TestResetNoActiveSession(t *testing.T) {
	db := testDBPath(t)

	out, err := execute(t, nil, "reset", "--db", db, "--participant", "ghost")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "no active session")
}
