package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redisv9 "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studyai/internal/model"
)

func newStore(t *testing.T, ttl time.Duration) (*QuizStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redisv9.NewClient(&redisv9.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewQuizStore(client, ttl), mr
}

func TestQuizStoreSaveGet(t *testing.T) {
	store, mr := newStore(t, time.Minute)
	ctx := context.Background()
	answer := 2

	quiz := &model.Quiz{
		ID:         "abc",
		Difficulty: "easy",
		Questions: []model.Question{
			{Type: model.QuestionTypeTest, Question: "q", Options: []string{"a", "b", "c", "d"}, CorrectAnswer: &answer},
		},
		CreatedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	require.NoError(t, store.Save(ctx, quiz))
	assert.True(t, mr.Exists("quiz:abc"))
	assert.Equal(t, time.Minute, mr.TTL("quiz:abc"))

	got, found, err := store.Get(ctx, "abc")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, quiz.Difficulty, got.Difficulty)
	require.Len(t, got.Questions, 1)
	assert.Equal(t, 2, *got.Questions[0].CorrectAnswer)
	assert.True(t, quiz.CreatedAt.Equal(got.CreatedAt))
}

func TestQuizStoreExpiry(t *testing.T) {
	store, mr := newStore(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, &model.Quiz{ID: "old"}))
	mr.FastForward(2 * time.Minute)

	_, found, err := store.Get(ctx, "old")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestQuizStoreDefaultTTL(t *testing.T) {
	store, mr := newStore(t, 0)

	require.NoError(t, store.Save(context.Background(), &model.Quiz{ID: "x"}))
	assert.Equal(t, time.Hour, mr.TTL("quiz:x"))
}

func TestQuizStoreCorruptPayload(t *testing.T) {
	store, mr := newStore(t, time.Minute)
	require.NoError(t, mr.Set("quiz:bad", "{not json"))

	_, _, err := store.Get(context.Background(), "bad")
	assert.Error(t, err)
}
