package app

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"studyai/internal/ai"
	"studyai/internal/logging"
	"studyai/internal/metrics"
	"studyai/internal/model"
)

const (
	DefaultNumQuestions = 10
	MaxNumQuestions     = 50
)

// MaterialSource resolves a session's materials into one prompt-ready text.
type MaterialSource interface {
	SessionMaterialText(sessionID string) (string, error)
}

// QuizAttemptStore keeps generated quizzes around long enough to score them.
type QuizAttemptStore interface {
	Save(ctx context.Context, quiz *model.Quiz) error
	Get(ctx context.Context, id string) (*model.Quiz, bool, error)
}

type QuizService struct {
	llm       LLM
	materials MaterialSource
	store     QuizAttemptStore
	logger    *zap.Logger
	now       func() time.Time
}

type GenerateQuizInput struct {
	Material     string
	ChatID       string
	NumQuestions int
	Difficulty   string
	Type         string
}

type GenerateQuizResult struct {
	QuizID    string           `json:"quizId,omitempty"`
	Questions []model.Question `json:"questions"`
}

type EvaluateEssayInput struct {
	Question       string
	ExpectedAnswer string
	UserAnswer     string
}

// NewQuizService accepts a nil store; scoring is then unavailable and
// generated quizzes carry no id.
func NewQuizService(llm LLM, materials MaterialSource, store QuizAttemptStore, logger *zap.Logger) *QuizService {
	return &QuizService{
		llm:       llm,
		materials: materials,
		store:     store,
		logger:    logging.OrNop(logger),
		now:       time.Now,
	}
}

func (s *QuizService) Generate(ctx context.Context, input GenerateQuizInput) (*GenerateQuizResult, error) {
	n := input.NumQuestions
	if n == 0 {
		n = DefaultNumQuestions
	}
	if n < 1 || n > MaxNumQuestions {
		return nil, fmt.Errorf("%w: numQuestions must be between 1 and %d", ErrInvalidInput, MaxNumQuestions)
	}

	difficulty := strings.ToLower(strings.TrimSpace(input.Difficulty))
	switch difficulty {
	case "":
		difficulty = ai.DifficultyMedium
	case ai.DifficultyEasy, ai.DifficultyMedium, ai.DifficultyHard:
	default:
		return nil, fmt.Errorf("%w: difficulty must be easy, medium or hard", ErrInvalidInput)
	}

	kind := strings.ToLower(strings.TrimSpace(input.Type))
	switch kind {
	case "":
		kind = ai.QuizKindTest
	case ai.QuizKindTest, ai.QuizKindEssay, ai.QuizKindMixed:
	default:
		return nil, fmt.Errorf("%w: type must be test, essay or mixed", ErrInvalidInput)
	}

	material, err := s.resolveMaterial(input)
	if err != nil {
		return nil, err
	}

	raw, err := s.llm.Complete(ctx, ai.QuizPrompt(material, n, difficulty, kind))
	if err != nil {
		return nil, err
	}
	s.logger.Debug("quiz model output", zap.String("raw", raw))

	res := ai.Normalize[[]model.Question](raw, ai.ShapeArray, nil, nil)
	if res.IsFallback() {
		metrics.Default().IncFallback("quiz")
		s.logger.Warn("quiz output not usable", zap.Error(res.Err))
		if errors.Is(res.Err, ai.ErrInvalidShape) {
			return nil, &GenerationError{Err: ErrQuizInvalid, Raw: raw}
		}
		return nil, &GenerationError{Err: ErrQuizGeneration, Raw: raw}
	}

	questions := res.Value
	if len(questions) == 0 {
		return nil, &GenerationError{Err: ErrQuizInvalid, Raw: raw}
	}
	for i := range questions {
		if err := normalizeQuestion(&questions[i], kind); err != nil {
			s.logger.Warn("quiz question rejected", zap.Int("index", i), zap.Error(err))
			return nil, &GenerationError{Err: ErrQuizInvalid, Raw: raw, Detail: questions[i]}
		}
	}
	if len(questions) != n {
		s.logger.Warn("quiz question count mismatch",
			zap.Int("requested", n),
			zap.Int("returned", len(questions)))
	}

	result := &GenerateQuizResult{Questions: questions}
	if s.store == nil {
		return result, nil
	}
	quiz := &model.Quiz{
		ID:         uuid.NewString(),
		Difficulty: difficulty,
		Questions:  questions,
		CreatedAt:  s.now(),
	}
	if err := s.store.Save(ctx, quiz); err != nil {
		s.logger.Warn("save quiz attempt failed", zap.Error(err))
		return result, nil
	}
	result.QuizID = quiz.ID
	return result, nil
}

func (s *QuizService) EvaluateEssay(ctx context.Context, input EvaluateEssayInput) (*model.EssayEvaluation, error) {
	if strings.TrimSpace(input.Question) == "" ||
		strings.TrimSpace(input.ExpectedAnswer) == "" ||
		strings.TrimSpace(input.UserAnswer) == "" {
		return nil, ErrInvalidInput
	}

	raw, err := s.llm.Complete(ctx, ai.EssayEvaluationPrompt(input.Question, input.ExpectedAnswer, input.UserAnswer))
	if err != nil {
		return nil, err
	}
	s.logger.Debug("essay evaluation model output", zap.String("raw", raw))

	res := ai.Normalize(raw, ai.ShapeObject, validateEssayEvaluation, model.EssayEvaluation{})
	if !res.IsFallback() {
		return &res.Value, nil
	}

	metrics.Default().IncFallback("essay")
	s.logger.Warn("essay evaluation output not usable", zap.Error(res.Err))
	if errors.Is(res.Err, ai.ErrInvalidShape) {
		// Echo whatever JSON the model did produce.
		detail := ai.Normalize[map[string]any](raw, ai.ShapeObject, nil, nil)
		return nil, &GenerationError{Err: ErrEvaluationInvalid, Raw: raw, Detail: detail.Value}
	}
	return nil, &GenerationError{Err: ErrEvaluation, Raw: raw}
}

// Score grades multiple-choice answers against a stored quiz. answers is
// indexed like the quiz questions; nil means unanswered. Essay questions are
// not counted.
func (s *QuizService) Score(ctx context.Context, quizID string, answers []*int) (*model.QuizScore, error) {
	if s.store == nil {
		return nil, ErrQuizStoreDisabled
	}
	quiz, found, err := s.store.Get(ctx, quizID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrQuizNotFound
	}

	score := &model.QuizScore{QuizID: quiz.ID, Results: []model.AnswerResult{}}
	for i, q := range quiz.Questions {
		if q.Type == model.QuestionTypeEssay || q.CorrectAnswer == nil {
			continue
		}
		var selected *int
		if i < len(answers) {
			selected = answers[i]
		}
		ok := selected != nil && *selected == *q.CorrectAnswer
		if ok {
			score.Correct++
		}
		score.Total++
		score.Results = append(score.Results, model.AnswerResult{
			Index:         i,
			Selected:      selected,
			CorrectAnswer: *q.CorrectAnswer,
			IsCorrect:     ok,
			Explanation:   q.Explanation,
		})
	}
	if score.Total > 0 {
		score.Score = int(math.Round(float64(score.Correct) * 100 / float64(score.Total)))
	}
	return score, nil
}

func (s *QuizService) resolveMaterial(input GenerateQuizInput) (string, error) {
	material := strings.TrimSpace(input.Material)
	if material == "" && strings.TrimSpace(input.ChatID) != "" && s.materials != nil {
		text, err := s.materials.SessionMaterialText(strings.TrimSpace(input.ChatID))
		if err != nil {
			return "", err
		}
		material = strings.TrimSpace(text)
	}
	if material == "" {
		return "", fmt.Errorf("%w: missing material", ErrInvalidInput)
	}
	return material, nil
}

// normalizeQuestion fills in a missing type and checks the question against
// the requested quiz kind.
func normalizeQuestion(q *model.Question, kind string) error {
	if q.Type == "" {
		switch {
		case len(q.Options) > 0 || q.CorrectAnswer != nil:
			q.Type = model.QuestionTypeTest
		case kind == ai.QuizKindEssay || q.ExpectedAnswer != "":
			q.Type = model.QuestionTypeEssay
		default:
			q.Type = model.QuestionTypeTest
		}
	}
	if strings.TrimSpace(q.Question) == "" {
		return errors.New("empty question text")
	}

	switch q.Type {
	case model.QuestionTypeTest:
		if kind == ai.QuizKindEssay {
			return errors.New("multiple-choice question in an essay quiz")
		}
		if len(q.Options) != 4 {
			return fmt.Errorf("expected 4 options, got %d", len(q.Options))
		}
		if q.CorrectAnswer == nil || *q.CorrectAnswer < 0 || *q.CorrectAnswer > 3 {
			return errors.New("correctAnswer must be an index in [0,3]")
		}
	case model.QuestionTypeEssay:
		if kind == ai.QuizKindTest {
			return errors.New("essay question in a multiple-choice quiz")
		}
		if strings.TrimSpace(q.ExpectedAnswer) == "" {
			return errors.New("empty expectedAnswer")
		}
	default:
		return fmt.Errorf("unknown question type %q", q.Type)
	}
	return nil
}

func validateEssayEvaluation(e model.EssayEvaluation) error {
	if e.IsCorrect == nil {
		return errors.New("isCorrect must be a boolean")
	}
	if strings.TrimSpace(e.Feedback) == "" {
		return errors.New("feedback is empty")
	}
	return nil
}
