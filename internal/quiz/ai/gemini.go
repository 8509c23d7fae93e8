package ai

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"strings"
	"text/template"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/genai"

	"github.com/gokatarajesh/lesson-quiz/internal/quiz"
)

//go:embed prompts/quiz.tmpl
var defaultPromptTemplate string

// ErrContentBlocked is returned when the model refuses a prompt on safety grounds.
var ErrContentBlocked = errors.New("content blocked by language model safety filters")

// errEmptyCandidate marks a response with no usable text.
var errEmptyCandidate = errors.New("model returned no content")

// GeminiConfig configures the Gemini backend.
type GeminiConfig struct {
	APIKey      string
	Model       string
	Temperature float32
	MaxRetries  int
	RetryDelay  time.Duration
	// PromptTemplate overrides the embedded prompt. It receives .Content and .QuestionsCount.
	PromptTemplate string
}

type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiGenerator implements quiz.Generator with Google's Gemini API.
type GeminiGenerator struct {
	models contentGenerator
	config GeminiConfig
	prompt *template.Template
	logger zerolog.Logger
	sleep  func(ctx context.Context, d time.Duration) error
}

var _ quiz.Generator = (*GeminiGenerator)(nil)

type promptData struct {
	Content        string
	QuestionsCount int
}

// NewGeminiGenerator creates the API client and parses the prompt template.
func NewGeminiGenerator(ctx context.Context, cfg GeminiConfig, logger zerolog.Logger) (*GeminiGenerator, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key cannot be empty")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return newGeminiGenerator(client.Models, cfg, logger)
}

func newGeminiGenerator(models contentGenerator, cfg GeminiConfig, logger zerolog.Logger) (*GeminiGenerator, error) {
	if cfg.Model == "" {
		return nil, fmt.Errorf("gemini model name cannot be empty")
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = time.Second
	}

	text := cfg.PromptTemplate
	if text == "" {
		text = defaultPromptTemplate
	}
	tmpl, err := template.New("quiz").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parse prompt template: %w", err)
	}

	return &GeminiGenerator{
		models: models,
		config: cfg,
		prompt: tmpl,
		logger: logger.With().Str("component", "gemini_quiz_generator").Str("model", cfg.Model).Logger(),
		sleep:  sleepContext,
	}, nil
}

// Generate renders the prompt and returns the concatenated text of the first candidate.
// Transport errors are retried with exponential backoff and jitter; safety blocks
// and empty candidates are not.
func (g *GeminiGenerator) Generate(ctx context.Context, req quiz.GenerateRequest) (string, error) {
	prompt, err := g.renderPrompt(req)
	if err != nil {
		return "", err
	}

	genCfg := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	}
	if g.config.Temperature > 0 {
		temperature := g.config.Temperature
		genCfg.Temperature = &temperature
	}

	for attempt := 0; ; attempt++ {
		text, err := g.call(ctx, prompt, genCfg)
		if err == nil {
			return text, nil
		}
		if errors.Is(err, ErrContentBlocked) || errors.Is(err, errEmptyCandidate) {
			return "", err
		}
		if attempt >= g.config.MaxRetries {
			return "", fmt.Errorf("gemini call failed after %d attempt(s): %w", attempt+1, err)
		}

		delay := backoff(g.config.RetryDelay, attempt)
		g.logger.Warn().Err(err).Int("attempt", attempt+1).Dur("delay", delay).Msg("gemini call failed, retrying")
		if err := g.sleep(ctx, delay); err != nil {
			return "", err
		}
	}
}

func (g *GeminiGenerator) renderPrompt(req quiz.GenerateRequest) (string, error) {
	var buf bytes.Buffer
	if err := g.prompt.Execute(&buf, promptData{Content: req.Chunk, QuestionsCount: req.QuestionsCount}); err != nil {
		return "", fmt.Errorf("render prompt: %w", err)
	}
	return buf.String(), nil
}

func (g *GeminiGenerator) call(ctx context.Context, prompt string, cfg *genai.GenerateContentConfig) (string, error) {
	resp, err := g.models.GenerateContent(ctx, g.config.Model, genai.Text(prompt), cfg)
	if err != nil {
		return "", err
	}
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0] == nil {
		return "", errEmptyCandidate
	}

	candidate := resp.Candidates[0]
	if candidate.FinishReason == genai.FinishReasonSafety {
		return "", ErrContentBlocked
	}
	if candidate.Content == nil {
		return "", errEmptyCandidate
	}

	var b strings.Builder
	for _, part := range candidate.Content.Parts {
		if part != nil {
			b.WriteString(part.Text)
		}
	}
	return b.String(), nil
}

// backoff returns base * 2^attempt scaled by a jitter factor in [0.5, 1).
func backoff(base time.Duration, attempt int) time.Duration {
	scaled := float64(base) * math.Pow(2, float64(attempt))
	return time.Duration(scaled * (0.5 + rand.Float64()*0.5))
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
