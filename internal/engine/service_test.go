package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pasteur222/quizflow/internal/quiz"
	"github.com/pasteur222/quizflow/internal/store"
	"github.com/pasteur222/quizflow/internal/testutil"
)

func newTestService(t *testing.T) (*Service, *store.Store, *testutil.ManualClock) {
	t.Helper()
	st := newTestStore(t)
	clock := testutil.NewManualClock(testEpoch)
	svc := NewService(st,
		WithClock(clock),
		WithIDGenerator(testutil.NewSeqIDGenerator()),
	)
	return svc, st, clock
}

func TestService_FullConversation(t *testing.T) {
	svc, st, clock := newTestService(t)
	ctx := context.Background()
	seedPack(t, st, branchingPack())

	// First contact opens the quiz; the message is not an answer.
	reply, err := svc.HandleAnswer(ctx, "p1", "Bonjour")
	require.NoError(t, err)
	assert.Equal(t, "session-0001", reply.SessionID)
	assert.Equal(t, "Question 1/2 : La Terre est ronde.\nRépondez par Vrai ou Faux.", reply.Text)
	assert.False(t, reply.Completed)

	clock.Advance(4 * time.Second)
	reply, err = svc.HandleAnswer(ctx, "p1", "Vrai")
	require.NoError(t, err)
	assert.Equal(t, "Question 2/3 : Quelle est votre couleur préférée ?", reply.Text)

	clock.Advance(8 * time.Second)
	reply, err = svc.HandleAnswer(ctx, "p1", "Bleu")
	require.NoError(t, err)
	assert.Equal(t, "Question 3/3 : Vous aimez la géographie ?\nRépondez par Oui ou Non.", reply.Text)

	clock.Advance(5 * time.Second)
	reply, err = svc.HandleAnswer(ctx, "p1", "Oui")
	require.NoError(t, err)
	assert.True(t, reply.Completed)
	assert.Contains(t, reply.Text, "Quiz terminé ! Score final : 15 points.")

	sess, err := st.GetSession(ctx, "session-0001")
	require.NoError(t, err)
	assert.Equal(t, quiz.StatusCompleted, sess.Status)
	assert.Equal(t, 15, sess.Score)
	assert.Len(t, sess.Answers, 3)
	assert.Equal(t, int64(17000), sess.Engagement.TotalTimeMs)
	// One commit per accepted answer on top of the initial insert.
	assert.Equal(t, int64(4), sess.Version)
}

func TestService_InvalidAnswerRepromptsWithoutMutation(t *testing.T) {
	svc, st, _ := newTestService(t)
	ctx := context.Background()
	seedPack(t, st, branchingPack())

	_, err := svc.HandleAnswer(ctx, "p1", "Bonjour")
	require.NoError(t, err)

	reply, err := svc.HandleAnswer(ctx, "p1", "peut-être")
	require.NoError(t, err, "a vocabulary miss is a reply, not an error")
	assert.Equal(t,
		"Réponse non reconnue.\nQuestion 1/2 : La Terre est ronde.\nRépondez par Vrai ou Faux.",
		reply.Text)

	sess, err := st.GetSession(ctx, "session-0001")
	require.NoError(t, err)
	assert.Zero(t, sess.CurrentIndex)
	assert.Empty(t, sess.Answers)
	assert.Equal(t, int64(1), sess.Version, "rejected answers persist nothing")
}

func TestService_SkipRequiredReprompts(t *testing.T) {
	svc, st, _ := newTestService(t)
	ctx := context.Background()
	seedPack(t, st, branchingPack())

	_, err := svc.HandleAnswer(ctx, "p1", "Bonjour")
	require.NoError(t, err)

	reply, err := svc.HandleAnswer(ctx, "p1", "passer")
	require.NoError(t, err)
	assert.Equal(t,
		"Cette question est obligatoire.\nQuestion 1/2 : La Terre est ronde.\nRépondez par Vrai ou Faux.",
		reply.Text)
}

func TestService_RestartResetsInPlace(t *testing.T) {
	svc, st, clock := newTestService(t)
	ctx := context.Background()
	seedPack(t, st, branchingPack())

	_, err := svc.HandleAnswer(ctx, "p1", "Bonjour")
	require.NoError(t, err)
	clock.Advance(3 * time.Second)
	_, err = svc.HandleAnswer(ctx, "p1", "Vrai")
	require.NoError(t, err)

	before, err := st.GetSession(ctx, "session-0001")
	require.NoError(t, err)
	require.Equal(t, 10, before.Score)

	reply, err := svc.HandleAnswer(ctx, "p1", "recommencer")
	require.NoError(t, err)
	assert.Equal(t, "session-0001", reply.SessionID, "restart reuses the row")
	assert.Equal(t, "Question 1/2 : La Terre est ronde.\nRépondez par Vrai ou Faux.", reply.Text)

	after, err := st.GetSession(ctx, "session-0001")
	require.NoError(t, err)
	assert.Zero(t, after.Score)
	assert.Zero(t, after.CurrentIndex)
	assert.Empty(t, after.Answers)
	assert.Equal(t, quiz.StatusActive, after.Status)
	assert.Greater(t, after.Version, before.Version, "the reset is a normal versioned mutation")

	sessions, err := st.ListSessions(ctx, "p1")
	require.NoError(t, err)
	assert.Len(t, sessions, 1, "restart never duplicates the participant's row")
}

func TestService_RestartFromFirstContactJustOpens(t *testing.T) {
	svc, st, _ := newTestService(t)
	ctx := context.Background()
	seedPack(t, st, branchingPack())

	reply, err := svc.HandleAnswer(ctx, "p1", "restart")
	require.NoError(t, err)
	assert.Equal(t, "Question 1/2 : La Terre est ronde.\nRépondez par Vrai ou Faux.", reply.Text)
}

func TestService_AdminReset(t *testing.T) {
	svc, st, clock := newTestService(t)
	ctx := context.Background()
	seedPack(t, st, branchingPack())

	_, err := svc.HandleAnswer(ctx, "p1", "Bonjour")
	require.NoError(t, err)
	clock.Advance(time.Second)
	_, err = svc.HandleAnswer(ctx, "p1", "Vrai")
	require.NoError(t, err)

	require.NoError(t, svc.AdminResetSession(ctx, "p1"))

	sess, err := st.GetSession(ctx, "session-0001")
	require.NoError(t, err)
	assert.Zero(t, sess.Score)
	assert.Zero(t, sess.CurrentIndex)
	assert.Empty(t, sess.Answers)
	assert.Equal(t, quiz.StatusActive, sess.Status)
}

func TestService_AdminResetNoActiveSession(t *testing.T) {
	svc, _, _ := newTestService(t)

	err := svc.AdminResetSession(context.Background(), "stranger")
	require.True(t, IsSessionNotFound(err))
}

func TestService_EmptyPackTellsParticipant(t *testing.T) {
	svc, _, _ := newTestService(t)

	reply, err := svc.HandleAnswer(context.Background(), "p1", "Bonjour")
	require.NoError(t, err)
	assert.Equal(t, noQuestionsReply, reply.Text)
}

func TestService_AbnormalErrorMarksInterrupted(t *testing.T) {
	svc, st, _ := newTestService(t)
	ctx := context.Background()
	seedPack(t, st, branchingPack())

	seedSession(t, st, "s1", "p1", testEpoch)

	boom := errors.New("boom")
	_, err := svc.recoverReply(ctx, "s1", branchingPack(), boom)
	require.ErrorIs(t, err, boom)

	sess, err := st.GetSession(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, quiz.StatusInterrupted, sess.Status)
}

func TestService_ContendedSessionSurfacesLockError(t *testing.T) {
	st := newTestStore(t)
	clock := testutil.NewManualClock(testEpoch)
	svc := NewService(st,
		WithClock(clock),
		WithIDGenerator(testutil.NewSeqIDGenerator()),
		WithRetryPolicy(RetryPolicy{MaxAttempts: 2, BaseDelay: time.Millisecond}),
	)
	ctx := context.Background()
	seedPack(t, st, branchingPack())

	_, err := svc.HandleAnswer(ctx, "p1", "Bonjour")
	require.NoError(t, err)

	// A stuck holder pins the lease; the manual clock never expires it.
	_, ok, err := svc.Leases().Acquire(ctx, "session-0001", "stuck")
	require.NoError(t, err)
	require.True(t, ok)

	_, err = svc.HandleAnswer(ctx, "p1", "Vrai")
	require.True(t, IsLockUnavailable(err))
}
