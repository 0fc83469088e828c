package model

type EssayEvaluation struct {
	IsCorrect *bool  `json:"isCorrect"`
	Feedback  string `json:"feedback"`
}

// RecitationEvaluation is returned even when the model output could not be
// parsed; Error is then set and Raw carries the model text.
type RecitationEvaluation struct {
	Accuracy       *float64              `json:"accuracy"`
	MissingParts   []string              `json:"missingParts"`
	IncorrectParts []string              `json:"incorrectParts"`
	Summary        string                `json:"summary"`
	BodyLanguage   *BodyLanguageAnalysis `json:"bodyLanguage,omitempty"`
	Raw            string                `json:"raw,omitempty"`
	Error          string                `json:"error,omitempty"`
}

// BodyLanguageAnalysis comes from the vision model; scores are 1..10.
type BodyLanguageAnalysis struct {
	Confidence       int      `json:"confidence"`
	Nervousness      int      `json:"nervousness"`
	Posture          string   `json:"posture"`
	EyeContact       string   `json:"eyeContact"`
	FacialExpression string   `json:"facialExpression"`
	Suggestions      []string `json:"suggestions"`
}
