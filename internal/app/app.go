package app

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/lesson-quiz/internal/config"
	"github.com/gokatarajesh/lesson-quiz/internal/lesson"
	"github.com/gokatarajesh/lesson-quiz/internal/logging"
	"github.com/gokatarajesh/lesson-quiz/internal/quiz"
	"github.com/gokatarajesh/lesson-quiz/internal/quiz/ai"
	"github.com/gokatarajesh/lesson-quiz/internal/server"
)

// Application aggregates shared infrastructure (DB, cache, generator, HTTP server).
type Application struct {
	cfg    *config.App
	logger zerolog.Logger

	pool      *pgxpool.Pool
	redis     *redis.Client
	generator quiz.Generator
	http      *http.Server
}

// New bootstraps logger, optional Postgres and Redis, the generator backend and HTTP server.
func New(ctx context.Context, cfg *config.App) (*Application, error) {
	logger := logging.New(cfg.Name, cfg.Env, cfg.LogLevel)
	logger.Info().Str("backend", cfg.Generator.Backend).Msg("starting application bootstrap")

	a := &Application{cfg: cfg, logger: logger}

	var lessons quiz.LessonSource
	if cfg.Postgres.Enabled() {
		pool, err := pgxpool.New(ctx, cfg.Postgres.ConnString())
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		a.pool = pool
		lessons = lesson.NewRepository(pool)
	} else {
		logger.Warn().Msg("PG_HOST not configured; lesson lookup by id disabled")
	}

	generator, err := NewGenerator(ctx, cfg.Generator, logger)
	if err != nil {
		a.close()
		return nil, err
	}
	a.generator = generator

	if cfg.Redis.Addr != "" {
		a.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		})
		store := quiz.NewRedisResponseStore(a.redis, cfg.Redis.CacheTTL)
		generator = quiz.NewCachedGenerator(generator, store, logger)
		logger.Info().Dur("ttl", cfg.Redis.CacheTTL).Msg("response cache enabled")
	}

	metrics := quiz.NewMetrics(prometheus.DefaultRegisterer)
	assembler := quiz.NewAssembler(PolicyFromConfig(cfg.Quiz), generator, logger, quiz.WithMetrics(metrics))
	quizHandler := quiz.NewHTTPHandler(assembler, lessons, logger)

	a.http = server.NewHTTPServer(cfg, logger, server.Dependencies{Pool: a.pool, Redis: a.redis}, nil, quizHandler)
	return a, nil
}

// NewGenerator builds the configured text-generation backend.
func NewGenerator(ctx context.Context, cfg config.Generator, logger zerolog.Logger) (quiz.Generator, error) {
	switch cfg.Backend {
	case config.BackendHTTP:
		return ai.NewGenerator(ai.Config{
			GeneratorURL: cfg.URL,
			GeneratorKey: cfg.APIKey,
			Timeout:      cfg.Timeout,
		}, logger), nil
	case config.BackendGemini:
		g, err := ai.NewGeminiGenerator(ctx, ai.GeminiConfig{
			APIKey:      cfg.GeminiAPIKey,
			Model:       cfg.GeminiModel,
			Temperature: cfg.GeminiTemperature,
			MaxRetries:  cfg.GeminiMaxRetries,
			RetryDelay:  cfg.GeminiRetryDelay,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("init gemini generator: %w", err)
		}
		return g, nil
	case config.BackendMindsDB:
		g, err := ai.NewMindsDBGenerator(ai.MindsDBConfig{
			DSN:   cfg.MindsDBDSN,
			Model: cfg.MindsDBModel,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("init mindsdb generator: %w", err)
		}
		return g, nil
	default:
		return nil, fmt.Errorf("unknown generator backend %q", cfg.Backend)
	}
}

// PolicyFromConfig maps environment settings onto the assembly policy.
func PolicyFromConfig(c config.Quiz) quiz.Policy {
	return quiz.Policy{
		LowestMaxQuestions:   c.LowestMaxQuestions,
		HighestMaxQuestions:  c.HighestMaxQuestions,
		MaxQuestionsPerChunk: c.MaxQuestionsPerChunk,
		Limits: lesson.Limits{
			MinWords: c.MinContentWords,
			MaxWords: c.MaxContentWords,
			MaxChars: c.MaxContentChars,
		},
		Segmenter: lesson.SegmenterOptions{
			MaxWordsPerChunk: c.MaxWordsPerChunk,
			MinSensibleWords: c.MinSensibleWords,
		},
		MaxConcurrentCalls: c.MaxConcurrentCalls,
	}
}

// Run starts the HTTP server and waits for termination signals.
func (a *Application) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info().Str("addr", a.cfg.HTTPAddr).Msg("http server listening")
		if err := a.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		a.logger.Info().Str("signal", sig.String()).Msg("shutdown signal received")
	case err := <-errCh:
		a.close()
		return fmt.Errorf("http server error: %w", err)
	case <-ctx.Done():
		a.logger.Warn().Msg("context canceled")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.GracefulShutdownTimeout)
	defer cancel()

	if err := a.http.Shutdown(shutdownCtx); err != nil {
		a.logger.Error().Err(err).Msg("http shutdown error")
	}

	a.close()
	a.logger.Info().Msg("shutdown complete")
	return nil
}

func (a *Application) close() {
	if closer, ok := a.generator.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			a.logger.Error().Err(err).Msg("generator shutdown error")
		}
	}
	if a.pool != nil {
		a.pool.Close()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Error().Err(err).Msg("redis shutdown error")
		}
	}
}
