package app

import (
	"context"
	"sync"

	"studyai/internal/ai"
	"studyai/internal/model"
)

type fakeLLM struct {
	mu sync.Mutex

	reply string
	err   error

	mediaReply string
	mediaErr   error

	prompts    []string
	mediaCalls int
}

func (f *fakeLLM) Complete(_ context.Context, prompt string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, prompt)
	return f.reply, f.err
}

func (f *fakeLLM) CompleteWithMedia(_ context.Context, _ string, _ ai.Media) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mediaCalls++
	return f.mediaReply, f.mediaErr
}

type memoryQuizStore struct {
	mu      sync.Mutex
	quizzes map[string]*model.Quiz
}

func newMemoryQuizStore() *memoryQuizStore {
	return &memoryQuizStore{quizzes: map[string]*model.Quiz{}}
}

func (s *memoryQuizStore) Save(_ context.Context, quiz *model.Quiz) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quizzes[quiz.ID] = quiz
	return nil
}

func (s *memoryQuizStore) Get(_ context.Context, id string) (*model.Quiz, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	q, ok := s.quizzes[id]
	return q, ok, nil
}

type staticMaterials map[string]string

func (m staticMaterials) SessionMaterialText(sessionID string) (string, error) {
	text, ok := m[sessionID]
	if !ok {
		return "", ErrSessionNotFound
	}
	return text, nil
}

type recordingDispatcher struct {
	jobs []model.ExtractionJob
	err  error
}

func (d *recordingDispatcher) PublishExtraction(_ context.Context, job model.ExtractionJob) error {
	if d.err != nil {
		return d.err
	}
	d.jobs = append(d.jobs, job)
	return nil
}

func intPtr(v int) *int {
	return &v
}
