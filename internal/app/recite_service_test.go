package app

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studyai/internal/ai"
)

const goodRecitation = `Sure! {"accuracy": 82, "missingParts": ["light reactions"], "incorrectParts": [], "summary": "Solid."}`

func TestReciteEvaluateParsed(t *testing.T) {
	svc := NewReciteService(&fakeLLM{reply: goodRecitation}, false, nil)

	eval, err := svc.Evaluate(context.Background(), RecitationInput{RecitedText: "plants eat light", ExpectedText: "photosynthesis"})
	require.NoError(t, err)
	require.NotNil(t, eval.Accuracy)
	assert.Equal(t, 82.0, *eval.Accuracy)
	assert.Equal(t, []string{"light reactions"}, eval.MissingParts)
	assert.Equal(t, []string{}, eval.IncorrectParts)
	assert.Empty(t, eval.Error)
	assert.Empty(t, eval.Raw)
	assert.Nil(t, eval.BodyLanguage)
}

func TestReciteEvaluateQuotedAccuracy(t *testing.T) {
	svc := NewReciteService(&fakeLLM{reply: `{"accuracy": "85", "missingParts": [], "incorrectParts": [], "summary": "Good."}`}, false, nil)

	eval, err := svc.Evaluate(context.Background(), RecitationInput{RecitedText: "a", ExpectedText: "b"})
	require.NoError(t, err)
	require.NotNil(t, eval.Accuracy)
	assert.Equal(t, 85.0, *eval.Accuracy)
	assert.Empty(t, eval.Error)
}

func TestReciteEvaluateFallback(t *testing.T) {
	for name, reply := range map[string]string{
		"no json":       "The student did great!",
		"out of range":  `{"accuracy": 140, "missingParts": [], "incorrectParts": [], "summary": "?"}`,
		"missing score": `{"summary": "no score"}`,
		"wrong type":    `{"accuracy": "high"}`,
	} {
		t.Run(name, func(t *testing.T) {
			svc := NewReciteService(&fakeLLM{reply: reply}, false, nil)

			eval, err := svc.Evaluate(context.Background(), RecitationInput{RecitedText: "a", ExpectedText: "b"})
			require.NoError(t, err)
			assert.Equal(t, 50.0, *eval.Accuracy)
			assert.Equal(t, []string{"Could not analyze the response correctly"}, eval.MissingParts)
			assert.Equal(t, []string{}, eval.IncorrectParts)
			assert.NotEmpty(t, eval.Summary)
			assert.Equal(t, reply, eval.Raw)
			assert.Equal(t, FallbackErrorText, eval.Error)
		})
	}
}

func TestReciteEvaluateErrors(t *testing.T) {
	svc := NewReciteService(&fakeLLM{reply: goodRecitation}, false, nil)
	_, err := svc.Evaluate(context.Background(), RecitationInput{RecitedText: "a"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	transport := errors.New("ollama unreachable")
	svc = NewReciteService(&fakeLLM{err: transport}, false, nil)
	_, err = svc.Evaluate(context.Background(), RecitationInput{RecitedText: "a", ExpectedText: "b"})
	assert.ErrorIs(t, err, transport)
}

func TestReciteBodyLanguage(t *testing.T) {
	media := &ai.Media{MimeType: "image/jpeg", Data: []byte{1, 2, 3}}
	input := RecitationInput{RecitedText: "a", ExpectedText: "b", Media: media}
	good := `{"confidence": 7, "nervousness": 3, "posture": "upright", "eyeContact": "steady", "facialExpression": "calm", "suggestions": ["slow down"]}`

	t.Run("disabled", func(t *testing.T) {
		llm := &fakeLLM{reply: goodRecitation, mediaReply: good}
		eval, err := NewReciteService(llm, false, nil).Evaluate(context.Background(), input)
		require.NoError(t, err)
		assert.Nil(t, eval.BodyLanguage)
		assert.Zero(t, llm.mediaCalls)
	})

	t.Run("enabled", func(t *testing.T) {
		llm := &fakeLLM{reply: goodRecitation, mediaReply: good}
		eval, err := NewReciteService(llm, true, nil).Evaluate(context.Background(), input)
		require.NoError(t, err)
		require.NotNil(t, eval.BodyLanguage)
		assert.Equal(t, 7, eval.BodyLanguage.Confidence)
		assert.Equal(t, []string{"slow down"}, eval.BodyLanguage.Suggestions)
	})

	t.Run("failure is swallowed", func(t *testing.T) {
		llm := &fakeLLM{reply: goodRecitation, mediaErr: errors.New("vision model missing")}
		eval, err := NewReciteService(llm, true, nil).Evaluate(context.Background(), input)
		require.NoError(t, err)
		assert.Nil(t, eval.BodyLanguage)
		assert.Equal(t, 82.0, *eval.Accuracy)
		assert.Equal(t, 1, llm.mediaCalls)
	})

	t.Run("unparseable analysis is swallowed", func(t *testing.T) {
		llm := &fakeLLM{reply: goodRecitation, mediaReply: `{"confidence": 0}`}
		eval, err := NewReciteService(llm, true, nil).Evaluate(context.Background(), input)
		require.NoError(t, err)
		assert.Nil(t, eval.BodyLanguage)
	})
}
