package errors

// Error codes for standardized error responses
const (
	// Validation errors
	ErrCodeInvalidRequest   = "invalid_request"
	ErrCodeValidationFailed = "validation_failed"
	ErrCodeMissingField     = "missing_field"

	// Method errors
	ErrCodeMethodNotAllowed = "method_not_allowed"

	// Resource errors
	ErrCodeLessonNotFound = "lesson_not_found"

	// Quiz generation errors
	ErrCodeInsufficientContent = "insufficient_content"
	ErrCodeContentTooLong      = "content_too_long"
	ErrCodeGenerationFailed    = "generation_failed"

	// Server errors
	ErrCodeInternalError = "internal_error"
	ErrCodeUpstreamError = "upstream_error"

	// Feature availability
	ErrCodeFeatureNotAvailable = "feature_not_available"
)
