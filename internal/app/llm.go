package app

import (
	"context"

	"studyai/internal/ai"
)

// LLM is the completion surface the generation services need; *ai.OllamaClient
// implements it.
type LLM interface {
	Complete(ctx context.Context, prompt string) (string, error)
	CompleteWithMedia(ctx context.Context, prompt string, media ai.Media) (string, error)
}
