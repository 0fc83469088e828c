package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	redisv9 "github.com/redis/go-redis/v9"

	"studyai/internal/model"
)

// QuizStore keeps generated quizzes in Redis until their TTL runs out.
type QuizStore struct {
	client *redisv9.Client
	ttl    time.Duration
}

func NewQuizStore(client *redisv9.Client, ttl time.Duration) *QuizStore {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &QuizStore{
		client: client,
		ttl:    ttl,
	}
}

func (s *QuizStore) Save(ctx context.Context, quiz *model.Quiz) error {
	payload, err := json.Marshal(quiz)
	if err != nil {
		return fmt.Errorf("marshal quiz failed: %w", err)
	}
	if err := s.client.Set(ctx, quizKey(quiz.ID), payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set quiz failed: %w", err)
	}
	return nil
}

// Get reports false for unknown or expired quizzes.
func (s *QuizStore) Get(ctx context.Context, id string) (*model.Quiz, bool, error) {
	raw, err := s.client.Get(ctx, quizKey(id)).Result()
	if err == redisv9.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get quiz failed: %w", err)
	}

	var quiz model.Quiz
	if err := json.Unmarshal([]byte(raw), &quiz); err != nil {
		return nil, false, fmt.Errorf("unmarshal cached quiz failed: %w", err)
	}
	return &quiz, true, nil
}

func quizKey(id string) string {
	return "quiz:" + id
}
