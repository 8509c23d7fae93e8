package server

import (
	"context"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/lesson-quiz/internal/config"
	"github.com/gokatarajesh/lesson-quiz/internal/logging"
	"github.com/gokatarajesh/lesson-quiz/internal/quiz"
	httperrors "github.com/gokatarajesh/lesson-quiz/pkg/http/errors"
)

// Dependencies are the optional backing services checked by /v1/ping.
type Dependencies struct {
	Pool  *pgxpool.Pool
	Redis *redis.Client
}

// NewHTTPServer wires base routes (health, metrics) and the quiz API.
func NewHTTPServer(cfg *config.App, logger zerolog.Logger, deps Dependencies, gatherer prometheus.Gatherer, quizHandler *quiz.HTTPHandler) *http.Server {
	return &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: NewMux(logger, deps, gatherer, quizHandler),
	}
}

// NewMux builds the route table. A nil gatherer serves the default registry.
func NewMux(logger zerolog.Logger, deps Dependencies, gatherer prometheus.Gatherer, quizHandler *quiz.HTTPHandler) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if gatherer == nil {
		mux.Handle("/metrics", promhttp.Handler())
	} else {
		mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	mux.HandleFunc("/v1/ping", func(w http.ResponseWriter, r *http.Request) {
		ctx := logging.IntoContext(r.Context(), logger)
		if err := pingDependencies(ctx, deps); err != nil {
			logger := logging.FromContext(ctx)
			logger.Error().Err(err).Msg("dependency ping failed")
			httperrors.RespondBadGateway(w, httperrors.ErrCodeUpstreamError, "upstream error")
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"pong":true}`))
	})

	if quizHandler != nil {
		mux.HandleFunc("/v1/generate-quiz", quizHandler.HandleGenerate)
		mux.HandleFunc("/v1/quizzes", quizHandler.HandleCreate)
	}

	return mux
}

func pingDependencies(ctx context.Context, deps Dependencies) error {
	if deps.Pool != nil {
		if err := deps.Pool.Ping(ctx); err != nil {
			return err
		}
	}
	if deps.Redis != nil {
		if err := deps.Redis.Ping(ctx).Err(); err != nil {
			return err
		}
	}
	return nil
}
