package ai

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Shape is the top-level JSON kind the caller expects from the model.
type Shape int

const (
	ShapeArray Shape = iota
	ShapeObject
)

var (
	arrayPattern  = regexp.MustCompile(`\[[\s\S]*\]`)
	objectPattern = regexp.MustCompile(`\{[\s\S]*\}`)
)

var (
	ErrNoJSON       = errors.New("no JSON value found in model output")
	ErrInvalidShape = errors.New("model output has an unexpected shape")
)

type Kind int

const (
	KindParsed Kind = iota
	KindFallback
)

func (k Kind) String() string {
	if k == KindParsed {
		return "parsed"
	}
	return "fallback"
}

// Result is either Parsed (Value came from the model) or Fallback (Value is
// the caller's placeholder and Err says why).
type Result[T any] struct {
	Kind  Kind
	Value T
	Raw   string
	// Tier is 1 when the whole text parsed, 2 when an embedded span did,
	// 0 for fallbacks.
	Tier int
	Err  error
}

func (r Result[T]) IsFallback() bool {
	return r.Kind == KindFallback
}

// Normalize coerces raw model output into T in three tiers: the whole text,
// then the first greedy [...] or {...} span, then fallback. A value that
// decodes but fails validate also yields the fallback, with Err wrapping
// ErrInvalidShape.
func Normalize[T any](raw string, shape Shape, validate func(T) error, fallback T) Result[T] {
	candidate, tier := locate(raw, shape)
	if tier == 0 {
		return Result[T]{Kind: KindFallback, Value: fallback, Raw: raw, Err: ErrNoJSON}
	}

	var value T
	if err := json.Unmarshal([]byte(candidate), &value); err != nil {
		return Result[T]{Kind: KindFallback, Value: fallback, Raw: raw, Err: fmt.Errorf("%w: %v", ErrInvalidShape, err)}
	}
	if validate != nil {
		if err := validate(value); err != nil {
			return Result[T]{Kind: KindFallback, Value: fallback, Raw: raw, Err: fmt.Errorf("%w: %v", ErrInvalidShape, err)}
		}
	}
	return Result[T]{Kind: KindParsed, Value: value, Raw: raw, Tier: tier}
}

func locate(raw string, shape Shape) (string, int) {
	trimmed := strings.TrimSpace(raw)
	if trimmed != "" && trimmed[0] == opener(shape) && json.Valid([]byte(trimmed)) {
		return trimmed, 1
	}

	pattern := objectPattern
	if shape == ShapeArray {
		pattern = arrayPattern
	}
	if match := pattern.FindString(raw); match != "" && json.Valid([]byte(match)) {
		return match, 2
	}
	return "", 0
}

func opener(shape Shape) byte {
	if shape == ShapeArray {
		return '['
	}
	return '{'
}
