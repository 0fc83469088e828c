package model

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Local models often quote numbers or emit integers as floats. These
// decoders accept both forms for the few numeric fields we validate.

func (e *RecitationEvaluation) UnmarshalJSON(data []byte) error {
	type plain RecitationEvaluation
	aux := struct {
		*plain
		Accuracy json.RawMessage `json:"accuracy"`
	}{plain: (*plain)(e)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if aux.Accuracy == nil {
		return nil
	}
	accuracy, ok, err := looseNumber(aux.Accuracy)
	if err != nil {
		return fmt.Errorf("accuracy: %w", err)
	}
	e.Accuracy = nil
	if ok {
		e.Accuracy = &accuracy
	}
	return nil
}

func (q *Question) UnmarshalJSON(data []byte) error {
	type plain Question
	aux := struct {
		*plain
		CorrectAnswer json.RawMessage `json:"correctAnswer"`
	}{plain: (*plain)(q)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if aux.CorrectAnswer == nil {
		return nil
	}
	n, ok, err := looseNumber(aux.CorrectAnswer)
	if err != nil {
		return fmt.Errorf("correctAnswer: %w", err)
	}
	q.CorrectAnswer = nil
	if !ok {
		return nil
	}
	if n != math.Trunc(n) || math.Abs(n) > math.MaxInt32 {
		return fmt.Errorf("correctAnswer: %v is not an index", n)
	}
	index := int(n)
	q.CorrectAnswer = &index
	return nil
}

// looseNumber decodes a JSON number or a string holding one. ok is false for
// null.
func looseNumber(raw json.RawMessage) (n float64, ok bool, err error) {
	if string(raw) == "null" {
		return 0, false, nil
	}
	if err := json.Unmarshal(raw, &n); err == nil {
		return n, true, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, false, fmt.Errorf("%s is not a number", raw)
	}
	n, err = strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false, fmt.Errorf("%q is not a number", s)
	}
	return n, true, nil
}
