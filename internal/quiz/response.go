package quiz

import (
	"encoding/json"
	"strings"
)

// ExtractQuizObject recovers a JSON value from model output that may wrap the
// object in prose or markdown fences. It parses the text between the first '{'
// and the last '}' inclusive.
func ExtractQuizObject(raw string) (any, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end < 0 || end < start {
		return nil, &ResponseError{Reason: RejectMalformedStructure, Raw: raw}
	}

	candidate := raw[start : end+1]
	var value any
	if err := json.Unmarshal([]byte(candidate), &value); err != nil {
		return nil, &ResponseError{Reason: RejectMalformedJSON, Raw: candidate, Err: err}
	}
	return value, nil
}

// IsValidQuizDetails reports whether v has the quiz details shape: a non-empty
// quizDetails array whose every element is a valid question. A single bad
// question invalidates the whole value.
func IsValidQuizDetails(v any) bool {
	obj, ok := v.(map[string]any)
	if !ok {
		return false
	}
	items, ok := obj["quizDetails"].([]any)
	if !ok || len(items) == 0 {
		return false
	}
	for _, item := range items {
		if !isValidQuestion(item) {
			return false
		}
	}
	return true
}

func isValidQuestion(v any) bool {
	q, ok := v.(map[string]any)
	if !ok {
		return false
	}
	if !isFilledString(q["question"]) {
		return false
	}
	options, ok := q["options"].(map[string]any)
	if !ok {
		return false
	}

	present := presentOptionKeys(options)
	if len(present) < 2 {
		return false
	}
	for _, key := range present {
		if !isFilledString(options[key]) {
			return false
		}
	}

	answer, ok := q["answer"].(string)
	if !ok || !contains(present, answer) {
		return false
	}
	return isFilledString(q["explanation"])
}

// presentOptionKeys returns the option letters before the first missing one.
func presentOptionKeys(options map[string]any) []string {
	for i, key := range OptionKeys {
		if _, ok := options[key]; !ok {
			return OptionKeys[:i]
		}
	}
	return OptionKeys
}

func isFilledString(v any) bool {
	s, ok := v.(string)
	return ok && s != ""
}

func contains(keys []string, s string) bool {
	for _, k := range keys {
		if k == s {
			return true
		}
	}
	return false
}

// ParseResponse extracts, validates and converts a raw model response. Every
// failure is a *ResponseError wrapping ErrMalformedResponse.
func ParseResponse(raw string) (Details, error) {
	if strings.TrimSpace(raw) == "" {
		return Details{}, &ResponseError{Reason: RejectEmptyResponse, Raw: raw}
	}

	value, err := ExtractQuizObject(raw)
	if err != nil {
		return Details{}, err
	}
	if !IsValidQuizDetails(value) {
		return Details{}, &ResponseError{Reason: RejectInvalidDetails, Raw: raw}
	}
	return toDetails(value), nil
}

// toDetails converts a value already accepted by IsValidQuizDetails.
func toDetails(v any) Details {
	items := v.(map[string]any)["quizDetails"].([]any)
	out := Details{QuizDetails: make([]Question, 0, len(items))}
	for _, item := range items {
		q := item.(map[string]any)
		options := q["options"].(map[string]any)

		present := presentOptionKeys(options)
		opts := make(map[string]string, len(present))
		for _, key := range present {
			opts[key] = options[key].(string)
		}

		out.QuizDetails = append(out.QuizDetails, Question{
			Question:    q["question"].(string),
			Options:     opts,
			Answer:      q["answer"].(string),
			Explanation: q["explanation"].(string),
		})
	}
	return out
}
