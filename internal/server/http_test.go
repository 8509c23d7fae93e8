package server

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gokatarajesh/lesson-quiz/internal/quiz"
	httperrors "github.com/gokatarajesh/lesson-quiz/pkg/http/errors"
)

func newTestMux(t *testing.T) *http.ServeMux {
	t.Helper()
	reg := prometheus.NewRegistry()
	metrics := quiz.NewMetrics(reg)
	gen := quiz.GeneratorFunc(func(context.Context, quiz.GenerateRequest) (string, error) {
		return "", nil
	})
	assembler := quiz.NewAssembler(quiz.DefaultPolicy(), gen, zerolog.Nop(), quiz.WithMetrics(metrics))
	handler := quiz.NewHTTPHandler(assembler, nil, zerolog.Nop())
	return NewMux(zerolog.Nop(), Dependencies{}, reg, handler)
}

func TestMux_Healthz(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestMux(t).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestMux_PingWithoutDependencies(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestMux(t).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/ping", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"pong":true}`, rec.Body.String())
}

func TestMux_MetricsExposeQuizCollectors(t *testing.T) {
	mux := newTestMux(t)

	body := `{"content":"` + strings.Repeat("word ", 200) + `","max_questions_count":3}`
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/quizzes", strings.NewReader(body)))
	require.Equal(t, http.StatusBadGateway, rec.Code)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `lessonquiz_generation_calls_total{outcome="rejected"} 1`)
	assert.Contains(t, rec.Body.String(), `lessonquiz_rejected_responses_total{reason="empty_response"} 1`)
}

func TestMux_QuizRoutesRegistered(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestMux(t).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/generate-quiz?lesson_id=x", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMux_PingReportsUnreachableRedis(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 200 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	var logs bytes.Buffer
	mux := NewMux(zerolog.New(&logs), Dependencies{Redis: client}, prometheus.NewRegistry(), nil)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/ping", nil))

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), httperrors.ErrCodeUpstreamError)
	assert.Contains(t, logs.String(), "dependency ping failed")
}
