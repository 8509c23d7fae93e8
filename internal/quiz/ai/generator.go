package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/gokatarajesh/lesson-quiz/internal/quiz"
)

// Config holds connection details for the quiz generator service.
type Config struct {
	GeneratorURL string
	GeneratorKey string
	Timeout      time.Duration
}

// Generator implements quiz.Generator against an HTTP generator service.
type Generator struct {
	httpClient  *http.Client
	config      Config
	logger      zerolog.Logger
	generateURL string
}

var _ quiz.Generator = (*Generator)(nil)

func NewGenerator(cfg Config, logger zerolog.Logger) *Generator {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	base := strings.TrimSuffix(cfg.GeneratorURL, "/")

	return &Generator{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		config:      cfg,
		logger:      logger.With().Str("component", "http_quiz_generator").Logger(),
		generateURL: base + "/generate",
	}
}

// Generate posts one chunk and returns the service's raw lesson_quiz text.
func (g *Generator) Generate(ctx context.Context, req quiz.GenerateRequest) (string, error) {
	if g.config.GeneratorURL == "" {
		return "", fmt.Errorf("generator endpoint not configured")
	}

	body, err := json.Marshal(generatorRequest{
		Content:        req.Chunk,
		QuestionsCount: req.QuestionsCount,
	})
	if err != nil {
		return "", err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.generateURL, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if g.config.GeneratorKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+g.config.GeneratorKey)
	}

	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		// drain so the connection can be reused
		_, _ = io.Copy(io.Discard, resp.Body)
		return "", fmt.Errorf("generator returned status %d", resp.StatusCode)
	}

	var genResp generatorResponse
	if err := json.NewDecoder(resp.Body).Decode(&genResp); err != nil {
		return "", fmt.Errorf("decode generator payload: %w", err)
	}

	g.logger.Debug().
		Int("questions_count", req.QuestionsCount).
		Int("response_length", len(genResp.LessonQuiz)).
		Msg("generator responded")

	return genResp.LessonQuiz, nil
}

type generatorRequest struct {
	Content        string `json:"content"`
	QuestionsCount int    `json:"questions_count"`
}

type generatorResponse struct {
	LessonQuiz string `json:"lesson_quiz"`
}
