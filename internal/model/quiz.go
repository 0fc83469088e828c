package model

import "time"

const (
	QuestionTypeTest  = "test"
	QuestionTypeEssay = "essay"
)

// Question is produced per generation call and never written to the
// database. CorrectAnswer is a pointer so a missing index can be told apart
// from index 0.
type Question struct {
	Type           string   `json:"type"`
	Question       string   `json:"question"`
	Options        []string `json:"options,omitempty"`
	CorrectAnswer  *int     `json:"correctAnswer,omitempty"`
	ExpectedAnswer string   `json:"expectedAnswer,omitempty"`
	Explanation    string   `json:"explanation"`
}

// Quiz is a generated question set kept in Redis for scoring.
type Quiz struct {
	ID         string     `json:"id"`
	Difficulty string     `json:"difficulty"`
	Questions  []Question `json:"questions"`
	CreatedAt  time.Time  `json:"createdAt"`
}

type AnswerResult struct {
	Index         int    `json:"index"`
	Selected      *int   `json:"selected"`
	CorrectAnswer int    `json:"correctAnswer"`
	IsCorrect     bool   `json:"isCorrect"`
	Explanation   string `json:"explanation"`
}

type QuizScore struct {
	QuizID  string         `json:"quizId"`
	Correct int            `json:"correct"`
	Total   int            `json:"total"`
	Score   int            `json:"score"`
	Results []AnswerResult `json:"results"`
}
