package quiz

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/lesson-quiz/internal/lesson"
	"github.com/gokatarajesh/lesson-quiz/internal/logging"
	httperrors "github.com/gokatarajesh/lesson-quiz/pkg/http/errors"
)

// Query parameters of the generate-quiz endpoint.
const (
	ParamLessonID          = "lesson_id"
	ParamMaxQuestionsCount = "max_questions_count"
)

const (
	maxEncodedBytesPerChar = 12
	bodyEnvelopeBytes      = 4096
)

// QuizAssembler is the part of Assembler the HTTP layer needs.
type QuizAssembler interface {
	Assemble(ctx context.Context, content string, maxQuestions int) (FinalQuiz, error)
	Policy() Policy
}

// LessonSource loads stored lesson content.
type LessonSource interface {
	GetContent(ctx context.Context, lessonID uuid.UUID) (string, error)
}

// HTTPHandler exposes quiz generation over REST.
type HTTPHandler struct {
	assembler QuizAssembler
	lessons   LessonSource
	logger    zerolog.Logger
}

// NewHTTPHandler constructs the handler. lessons may be nil when no lesson store is configured.
func NewHTTPHandler(assembler QuizAssembler, lessons LessonSource, logger zerolog.Logger) *HTTPHandler {
	return &HTTPHandler{
		assembler: assembler,
		lessons:   lessons,
		logger:    logger.With().Str("component", "quiz_http").Logger(),
	}
}

// CreateQuizRequest is the body of POST /v1/quizzes.
type CreateQuizRequest struct {
	Content           string `json:"content"`
	MaxQuestionsCount int    `json:"max_questions_count"`
}

// HandleGenerate handles GET /v1/generate-quiz?lesson_id={uuid}&max_questions_count={n}
func (h *HTTPHandler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httperrors.RespondMethodNotAllowed(w)
		return
	}

	query := r.URL.Query()
	lessonID, err := uuid.Parse(query.Get(ParamLessonID))
	if err != nil {
		httperrors.RespondValidationError(w, httperrors.ErrCodeInvalidRequest, "Invalid '"+ParamLessonID+"' query field", ParamLessonID)
		return
	}

	maxQuestions, err := strconv.Atoi(strings.TrimSpace(query.Get(ParamMaxQuestionsCount)))
	if err != nil {
		httperrors.RespondValidationError(w, httperrors.ErrCodeValidationFailed, "Invalid '"+ParamMaxQuestionsCount+"' query field", ParamMaxQuestionsCount)
		return
	}

	policy := h.assembler.Policy()
	if maxQuestions < policy.LowestMaxQuestions || maxQuestions > policy.HighestMaxQuestions {
		httperrors.RespondValidationError(w, httperrors.ErrCodeValidationFailed,
			fmt.Sprintf("'%s' must be between %d and %d", ParamMaxQuestionsCount, policy.LowestMaxQuestions, policy.HighestMaxQuestions),
			ParamMaxQuestionsCount)
		return
	}

	if h.lessons == nil {
		httperrors.RespondServiceUnavailable(w, httperrors.ErrCodeFeatureNotAvailable, "Lesson store is not configured")
		return
	}

	ctx := h.requestContext(r, lessonID.String())
	content, err := h.lessons.GetContent(ctx, lessonID)
	if err != nil {
		if errors.Is(err, lesson.ErrNotFound) {
			httperrors.RespondNotFound(w, httperrors.ErrCodeLessonNotFound, "Lesson not found")
			return
		}
		logger := logging.FromContext(ctx)
		logger.Error().Err(err).Msg("lesson load failed")
		httperrors.RespondInternalError(w, "Failed to load lesson")
		return
	}

	h.assemble(ctx, w, content, maxQuestions)
}

// HandleCreate handles POST /v1/quizzes with inline lesson content.
func (h *HTTPHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httperrors.RespondMethodNotAllowed(w)
		return
	}

	limits := h.assembler.Policy().Limits
	if limits.MaxChars > 0 {
		// a rune escaped as a \uXXXX surrogate pair takes 12 bytes, plus room for the JSON envelope
		r.Body = http.MaxBytesReader(w, r.Body, int64(limits.MaxChars)*maxEncodedBytesPerChar+bodyEnvelopeBytes)
	}

	var req CreateQuizRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httperrors.RespondError(w, http.StatusRequestEntityTooLarge, httperrors.ErrCodeContentTooLong, "Request body exceeds the lesson size limit")
			return
		}
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid JSON payload")
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		httperrors.RespondValidationError(w, httperrors.ErrCodeMissingField, "content is required", "content")
		return
	}

	h.assemble(h.requestContext(r, ""), w, req.Content, req.MaxQuestionsCount)
}

func (h *HTTPHandler) assemble(ctx context.Context, w http.ResponseWriter, content string, maxQuestions int) {
	quiz, err := h.assembler.Assemble(ctx, content, maxQuestions)
	if err != nil {
		h.respondAssembleError(ctx, w, err)
		return
	}
	writeJSON(w, http.StatusOK, quiz)
}

func (h *HTTPHandler) respondAssembleError(ctx context.Context, w http.ResponseWriter, err error) {
	var lengthErr *lesson.LengthError
	switch {
	case errors.As(err, &lengthErr):
		httperrors.RespondErrorWithDetails(w, http.StatusBadRequest, httperrors.ErrCodeContentTooLong, lengthErr.Error(), map[string]interface{}{
			"field": lengthErr.Field,
			"got":   lengthErr.Got,
			"limit": lengthErr.Limit,
		})
	case errors.Is(err, ErrInvalidParameter):
		httperrors.RespondValidationError(w, httperrors.ErrCodeValidationFailed, err.Error(), ParamMaxQuestionsCount)
	case errors.Is(err, ErrInsufficientContent):
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInsufficientContent, "Lesson content word count is not up to the required minimum")
	case errors.Is(err, ErrAllSourcesInvalid):
		httperrors.RespondBadGateway(w, httperrors.ErrCodeGenerationFailed, "Quiz could not be generated from the lesson")
	default:
		logger := logging.FromContext(ctx)
		logger.Error().Err(err).Msg("quiz assembly failed")
		httperrors.RespondInternalError(w, "Quiz generation failed")
	}
}

func (h *HTTPHandler) requestContext(r *http.Request, lessonID string) context.Context {
	l := h.logger.With().Str("path", r.URL.Path)
	if lessonID != "" {
		l = l.Str("lesson_id", lessonID)
	}
	return logging.IntoContext(r.Context(), l.Logger())
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
