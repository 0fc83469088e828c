package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"studyai/internal/ai"
	"studyai/internal/logging"
	"studyai/internal/metrics"
	"studyai/internal/model"
)

const (
	fallbackAccuracy  = 50
	FallbackErrorText = "LLM did not return valid JSON"
)

type ReciteService struct {
	llm           LLM
	videoAnalysis bool
	logger        *zap.Logger
}

type RecitationInput struct {
	RecitedText  string
	ExpectedText string
	// Media is only analyzed when video analysis is enabled.
	Media *ai.Media
}

func NewReciteService(llm LLM, videoAnalysis bool, logger *zap.Logger) *ReciteService {
	return &ReciteService{
		llm:           llm,
		videoAnalysis: videoAnalysis,
		logger:        logging.OrNop(logger),
	}
}

// AnalyzesMedia reports whether Evaluate does anything with RecitationInput.Media.
func (s *ReciteService) AnalyzesMedia() bool {
	return s.videoAnalysis
}

// Evaluate grades a recitation. Unusable model output is not an error: the
// placeholder evaluation comes back with Error and Raw set.
func (s *ReciteService) Evaluate(ctx context.Context, input RecitationInput) (*model.RecitationEvaluation, error) {
	if strings.TrimSpace(input.RecitedText) == "" || strings.TrimSpace(input.ExpectedText) == "" {
		return nil, ErrInvalidInput
	}

	raw, err := s.llm.Complete(ctx, ai.RecitationPrompt(input.RecitedText, input.ExpectedText))
	if err != nil {
		return nil, err
	}
	s.logger.Debug("recitation model output", zap.String("raw", raw))

	res := ai.Normalize(raw, ai.ShapeObject, validateRecitation, fallbackRecitation())
	eval := res.Value
	switch res.Kind {
	case ai.KindParsed:
		eval.Raw = ""
		eval.Error = ""
	case ai.KindFallback:
		metrics.Default().IncFallback("recitation")
		s.logger.Warn("recitation output not usable, returning placeholder", zap.Error(res.Err))
		eval.Raw = raw
		eval.Error = FallbackErrorText
	}
	if eval.MissingParts == nil {
		eval.MissingParts = []string{}
	}
	if eval.IncorrectParts == nil {
		eval.IncorrectParts = []string{}
	}
	eval.BodyLanguage = nil

	if s.videoAnalysis && input.Media != nil && len(input.Media.Data) > 0 {
		analysis, err := s.analyzeBodyLanguage(ctx, *input.Media)
		if err != nil {
			s.logger.Warn("body language analysis failed", zap.Error(err))
		} else {
			eval.BodyLanguage = analysis
		}
	}
	return &eval, nil
}

func (s *ReciteService) analyzeBodyLanguage(ctx context.Context, media ai.Media) (*model.BodyLanguageAnalysis, error) {
	raw, err := s.llm.CompleteWithMedia(ctx, ai.BodyLanguagePrompt, media)
	if err != nil {
		return nil, err
	}
	res := ai.Normalize(raw, ai.ShapeObject, validateBodyLanguage, model.BodyLanguageAnalysis{})
	if res.IsFallback() {
		metrics.Default().IncFallback("body_language")
		return nil, res.Err
	}
	analysis := res.Value
	if analysis.Suggestions == nil {
		analysis.Suggestions = []string{}
	}
	return &analysis, nil
}

func fallbackRecitation() model.RecitationEvaluation {
	accuracy := float64(fallbackAccuracy)
	return model.RecitationEvaluation{
		Accuracy:       &accuracy,
		MissingParts:   []string{"Could not analyze the response correctly"},
		IncorrectParts: []string{},
		Summary:        "There was an error processing the AI model's response. Please try again.",
	}
}

func validateRecitation(e model.RecitationEvaluation) error {
	if e.Accuracy == nil {
		return errors.New("accuracy is missing")
	}
	if *e.Accuracy < 0 || *e.Accuracy > 100 {
		return fmt.Errorf("accuracy %v out of range", *e.Accuracy)
	}
	return nil
}

func validateBodyLanguage(b model.BodyLanguageAnalysis) error {
	if b.Confidence < 1 || b.Confidence > 10 || b.Nervousness < 1 || b.Nervousness > 10 {
		return errors.New("scores must be between 1 and 10")
	}
	return nil
}
