package app

import "errors"

var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrSessionNotFound     = errors.New("session not found")
	ErrMaterialNotFound    = errors.New("material not found")
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file too large")

	ErrQuizNotFound      = errors.New("quiz not found")
	ErrQuizStoreDisabled = errors.New("quiz store is disabled")
	ErrQuizGeneration    = errors.New("model did not return a quiz")
	ErrQuizInvalid       = errors.New("model returned a malformed question")
	ErrEvaluation        = errors.New("model did not return an evaluation")
	ErrEvaluationInvalid = errors.New("model returned a malformed evaluation")
)

// GenerationError carries the raw model output next to the failure so the
// HTTP layer can echo it back for debugging.
type GenerationError struct {
	Err error
	Raw string
	// Detail is the offending value when it parsed but failed validation.
	Detail any
}

func (e *GenerationError) Error() string {
	return e.Err.Error()
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}
