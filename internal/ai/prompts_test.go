package ai

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQuizPromptByKind(t *testing.T) {
	test := QuizPrompt("photosynthesis", 5, DifficultyHard, QuizKindTest)
	assert.Contains(t, test, "EXACTLY 5 multiple-choice questions")
	assert.Contains(t, test, "deep analysis")
	assert.Contains(t, test, "exactly 4 options")
	assert.NotContains(t, test, "expectedAnswer")

	essay := QuizPrompt("photosynthesis", 3, DifficultyEasy, QuizKindEssay)
	assert.Contains(t, essay, "EXACTLY 3 short-answer questions")
	assert.Contains(t, essay, "expectedAnswer")
	assert.NotContains(t, essay, "exactly 4 options")

	mixed := QuizPrompt("photosynthesis", 4, DifficultyMedium, QuizKindMixed)
	assert.Contains(t, mixed, `"type": "test"`)
	assert.Contains(t, mixed, `"type": "essay"`)
}

func TestEssayEvaluationPromptKeepsThreshold(t *testing.T) {
	p := EssayEvaluationPrompt("q", "expected", "mine")
	assert.Contains(t, p, "at least 70% correct")
	assert.Contains(t, p, "STUDENT ANSWER:\nmine")
}

func TestRecitationPromptOrder(t *testing.T) {
	p := RecitationPrompt("what I said", "the material")
	assert.Less(t, strings.Index(p, "the material"), strings.Index(p, "what I said"))
}

