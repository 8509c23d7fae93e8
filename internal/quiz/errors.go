package quiz

import (
	"errors"
	"fmt"
)

// Failure kinds surfaced by Assemble. Callers branch on them with errors.Is.
var (
	// ErrInvalidParameter is returned for out-of-contract caller input.
	ErrInvalidParameter = errors.New("invalid quiz generation parameter")

	// ErrInsufficientContent is returned when the lesson is too short to quiz.
	ErrInsufficientContent = errors.New("lesson content word count is below the required minimum")

	// ErrMalformedResponse marks a single unusable model response. Assemble absorbs it.
	ErrMalformedResponse = errors.New("malformed model response")

	// ErrAllSourcesInvalid is returned when no generation call produced a usable question.
	ErrAllSourcesInvalid = errors.New("no valid quiz questions could be generated")
)

// RejectReason classifies why a model response was dropped.
type RejectReason string

const (
	RejectGenerationFailed   RejectReason = "generation_failed"
	RejectEmptyResponse      RejectReason = "empty_response"
	RejectMalformedStructure RejectReason = "malformed_structure"
	RejectMalformedJSON      RejectReason = "malformed_json"
	RejectInvalidDetails     RejectReason = "invalid_quiz_details"
)

// ResponseError carries the rejection reason and the offending raw text.
type ResponseError struct {
	Reason RejectReason
	Raw    string
	Err    error
}

func (e *ResponseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", ErrMalformedResponse, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", ErrMalformedResponse, e.Reason)
}

// Unwrap exposes ErrMalformedResponse and the underlying cause.
func (e *ResponseError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrMalformedResponse, e.Err}
	}
	return []error{ErrMalformedResponse}
}

// ReasonOf extracts the rejection reason from err, or "" when err is not a ResponseError.
func ReasonOf(err error) RejectReason {
	var respErr *ResponseError
	if errors.As(err, &respErr) {
		return respErr.Reason
	}
	return ""
}
