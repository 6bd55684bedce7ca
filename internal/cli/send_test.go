package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendConversation(t *testing.T) {
	db := importSamplePack(t)

	// First contact opens the session; q3 is still hidden.
	out, err := execute(t, nil, "send", "--db", db, "--participant", "p1", "bonjour")
	require.NoError(t, err)
	assert.Contains(t, out, "Question 1/2 : La Terre est ronde.")
	assert.Contains(t, out, "Répondez par Vrai ou Faux.")

	// Answering "vrai" unlocks q3.
	out, err = execute(t, nil, "send", "--db", db, "--participant", "p1", "Vrai")
	require.NoError(t, err)
	assert.Contains(t, out, "Question 2/3 : Quelle est votre couleur préférée ?")

	out, err = execute(t, nil, "send", "--db", db, "--participant", "p1", "bleu")
	require.NoError(t, err)
	assert.Contains(t, out, "Question 3/3 : Vous aimez la géographie ?")

	out, err = execute(t, nil, "send", "--db", db, "--participant", "p1", "Oui")
	require.NoError(t, err)
	assert.Contains(t, out, "Quiz terminé ! Score final : 15 points.")
}

func TestSendInvalidAnswerReprompts(t *testing.T) {
	db := importSamplePack(t)

	_, err := execute(t, nil, "send", "--db", db, "--participant", "p1", "bonjour")
	require.NoError(t, err)

	out, err := execute(t, nil, "send", "--db", db, "--participant", "p1", "peut-être")
	require.NoError(t, err)
	assert.Contains(t, out, "Réponse non reconnue.")
	assert.Contains(t, out, "Question 1/2 : La Terre est ronde.")
}

func TestSendJSON(t *testing.T) {
	db := importSamplePack(t)

	out, err := execute(t, nil, "--format", "json", "send", "--db", db, "--participant", "p1", "bonjour")
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)

	data, ok := resp.Data.(map[string]any)
	require.True(t, ok)
	assert.NotEmpty(t, data["session_id"])
	assert.Contains(t, data["reply"], "Question 1/2")
	assert.Equal(t, false, data["completed"])
}

func TestSendParticipantsAreIndependent(t *testing.T) {
	db := importSamplePack(t)

	_, err := execute(t, nil, "send", "--db", db, "--participant", "p1", "bonjour")
	require.NoError(t, err)
	_, err = execute(t, nil, "send", "--db", db, "--participant", "p1", "Vrai")
	require.NoError(t, err)

	// A second participant still starts at the first question.
	out, err := execute(t, nil, "send", "--db", db, "--participant", "p2", "bonjour")
	require.NoError(t, err)
	assert.Contains(t, out, "Question 1/2 : La Terre est ronde.")
}
