package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"studyai/internal/app"
	"studyai/internal/logging"
	"studyai/internal/transport/http/response"
)

type QuizHandler struct {
	quizService *app.QuizService
	logger      *zap.Logger
}

type GenerateQuizRequest struct {
	Material     string `json:"material"`
	ChatID       string `json:"chatId"`
	NumQuestions int    `json:"numQuestions"`
	Difficulty   string `json:"difficulty"`
	Type         string `json:"type"`
}

type EvaluateEssayRequest struct {
	Question       string `json:"question"`
	ExpectedAnswer string `json:"expectedAnswer"`
	UserAnswer     string `json:"userAnswer"`
}

type ScoreQuizRequest struct {
	Answers []*int `json:"answers" binding:"required"`
}

func NewQuizHandler(quizService *app.QuizService, logger *zap.Logger) *QuizHandler {
	return &QuizHandler{quizService: quizService, logger: logging.OrNop(logger)}
}

func (h *QuizHandler) Generate(c *gin.Context) {
	var req GenerateQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Material) == "" && strings.TrimSpace(req.ChatID) == "" {
		response.Error(c, http.StatusBadRequest, "Missing material")
		return
	}

	h.logger.Info("generating quiz",
		zap.Int("num_questions", req.NumQuestions),
		zap.String("difficulty", req.Difficulty),
		zap.String("type", req.Type))

	result, err := h.quizService.Generate(c.Request.Context(), app.GenerateQuizInput{
		Material:     req.Material,
		ChatID:       req.ChatID,
		NumQuestions: req.NumQuestions,
		Difficulty:   req.Difficulty,
		Type:         req.Type,
	})
	if err != nil {
		var genErr *app.GenerationError
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, validationMessage(err))
		case errors.Is(err, app.ErrSessionNotFound):
			response.Error(c, http.StatusNotFound, "Chat not found")
		case errors.Is(err, app.ErrQuizInvalid) && errors.As(err, &genErr):
			response.ErrorWith(c, http.StatusInternalServerError, "Invalid question format", gin.H{
				"raw":      genErr.Raw,
				"question": genErr.Detail,
			})
		case errors.As(err, &genErr):
			response.ErrorWith(c, http.StatusInternalServerError, "Failed to generate valid quiz questions", gin.H{
				"raw": genErr.Raw,
			})
		default:
			h.logger.Error("quiz generation failed", zap.Error(err))
			response.Error(c, http.StatusInternalServerError, "Failed to generate quiz")
		}
		return
	}
	response.OK(c, result)
}

func (h *QuizHandler) Evaluate(c *gin.Context) {
	var req EvaluateEssayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if missing := missingFields(
		field{"question", req.Question},
		field{"expectedAnswer", req.ExpectedAnswer},
		field{"userAnswer", req.UserAnswer},
	); len(missing) > 0 {
		response.Error(c, http.StatusBadRequest, "Missing required fields: "+strings.Join(missing, ", "))
		return
	}

	evaluation, err := h.quizService.EvaluateEssay(c.Request.Context(), app.EvaluateEssayInput{
		Question:       req.Question,
		ExpectedAnswer: req.ExpectedAnswer,
		UserAnswer:     req.UserAnswer,
	})
	if err != nil {
		var genErr *app.GenerationError
		switch {
		case errors.Is(err, app.ErrEvaluationInvalid) && errors.As(err, &genErr):
			response.ErrorWith(c, http.StatusInternalServerError, "Invalid evaluation format", gin.H{
				"raw":        genErr.Raw,
				"evaluation": genErr.Detail,
			})
		case errors.As(err, &genErr):
			response.ErrorWith(c, http.StatusInternalServerError, "Failed to evaluate answer", gin.H{
				"raw": genErr.Raw,
			})
		default:
			h.logger.Error("essay evaluation failed", zap.Error(err))
			response.Error(c, http.StatusInternalServerError, "Failed to evaluate answer")
		}
		return
	}
	response.OK(c, evaluation)
}

func (h *QuizHandler) Score(c *gin.Context) {
	var req ScoreQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Missing required fields: answers")
		return
	}

	score, err := h.quizService.Score(c.Request.Context(), c.Param("id"), req.Answers)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrQuizNotFound):
			response.Error(c, http.StatusNotFound, "Quiz not found")
		case errors.Is(err, app.ErrQuizStoreDisabled):
			response.Error(c, http.StatusServiceUnavailable, "Quiz scoring is not available")
		default:
			h.logger.Error("quiz scoring failed", zap.Error(err))
			response.Error(c, http.StatusInternalServerError, "Failed to score quiz")
		}
		return
	}
	response.OK(c, score)
}

// validationMessage drops the sentinel prefix from wrapped ErrInvalidInput
// errors so clients see only the field-specific part.
func validationMessage(err error) string {
	msg := err.Error()
	if rest, ok := strings.CutPrefix(msg, app.ErrInvalidInput.Error()+": "); ok {
		return rest
	}
	return msg
}
