package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pasteur222/quizflow/internal/quiz"
)

func TestQuestion_RoundTrip(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	correct := true
	q := quiz.Question{
		ID:            "q1",
		Text:          "La Terre est ronde.",
		Type:          quiz.TypeTrueFalse,
		OrderIndex:    1,
		Required:      true,
		CorrectAnswer: &correct,
		Points:        10,
	}
	require.NoError(t, st.PutQuestion(ctx, q))

	got, err := st.GetQuestion(ctx, "q1")
	require.NoError(t, err)
	assert.Equal(t, q, got)
}

func TestQuestion_RoundTripOptionalFields(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	q := quiz.Question{
		ID:         "q2",
		Text:       "Quel format préférez-vous ?",
		Type:       quiz.TypePreference,
		OrderIndex: 2,
		Options:    []string{"Texte", "Vidéo"},
		Conditional: &quiz.ConditionalLogic{
			DependsOn:     "q1",
			RequiredValue: "vrai",
		},
	}
	require.NoError(t, st.PutQuestion(ctx, q))

	got, err := st.GetQuestion(ctx, "q2")
	require.NoError(t, err)
	assert.Equal(t, q, got)
	assert.Nil(t, got.CorrectAnswer)
}

func TestQuestion_PutReplacesExisting(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	q := quiz.Question{ID: "q1", Text: "v1", Type: quiz.TypePersonal, OrderIndex: 1}
	require.NoError(t, st.PutQuestion(ctx, q))

	q.Text = "v2"
	q.OrderIndex = 5
	require.NoError(t, st.PutQuestion(ctx, q))

	got, err := st.GetQuestion(ctx, "q1")
	require.NoError(t, err)
	assert.Equal(t, "v2", got.Text)
	assert.Equal(t, 5, got.OrderIndex)

	all, err := st.ListQuestions(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestQuestion_ListOrderedByIndex(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	for _, q := range []quiz.Question{
		{ID: "b", Text: "second", Type: quiz.TypePersonal, OrderIndex: 2},
		{ID: "c", Text: "third", Type: quiz.TypePersonal, OrderIndex: 3},
		{ID: "a", Text: "first", Type: quiz.TypePersonal, OrderIndex: 1},
	} {
		require.NoError(t, st.PutQuestion(ctx, q))
	}

	all, err := st.ListQuestions(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "a", all[0].ID)
	assert.Equal(t, "b", all[1].ID)
	assert.Equal(t, "c", all[2].ID)
}

func TestQuestion_Missing(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	_, err := st.GetQuestion(ctx, "nope")
	require.ErrorIs(t, err, ErrNotFound)

	require.ErrorIs(t, st.DeleteQuestion(ctx, "nope"), ErrNotFound)
}

func TestQuestion_Delete(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.PutQuestion(ctx, quiz.Question{
		ID: "q1", Text: "bye", Type: quiz.TypePersonal, OrderIndex: 1,
	}))
	require.NoError(t, st.DeleteQuestion(ctx, "q1"))

	_, err := st.GetQuestion(ctx, "q1")
	require.ErrorIs(t, err, ErrNotFound)
}
