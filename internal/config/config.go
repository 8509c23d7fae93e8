package config

import (
	"context"
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/go-playground/validator/v10"
)

// Generator backends.
const (
	BackendHTTP    = "http"
	BackendGemini  = "gemini"
	BackendMindsDB = "mindsdb"
)

// App holds core runtime configuration shared across services.
type App struct {
	Name                    string        `env:"APP_NAME" envDefault:"lesson-quiz"`
	Env                     string        `env:"APP_ENV" envDefault:"development"`
	LogLevel                string        `env:"LOG_LEVEL" envDefault:"info" validate:"oneof=trace debug info warn error"`
	HTTPAddr                string        `env:"HTTP_ADDR" envDefault:"0.0.0.0:8080"`
	GracefulShutdownTimeout time.Duration `env:"GRACEFUL_SHUTDOWN_SECONDS" envDefault:"20s"`

	Postgres  Postgres
	Redis     Redis
	Quiz      Quiz
	Generator Generator
}

// Postgres captures connection info for the lesson database. An empty host
// disables lesson lookup by id.
type Postgres struct {
	Host     string `env:"PG_HOST" envDefault:""`
	Port     int    `env:"PG_PORT" envDefault:"5432"`
	User     string `env:"PG_USER" envDefault:""`
	Password string `env:"PG_PASSWORD" envDefault:""`
	Database string `env:"PG_DATABASE" envDefault:""`
	SSLMode  string `env:"PG_SSL_MODE" envDefault:"disable"`
	MaxConns int    `env:"PG_MAX_CONNS" envDefault:"10" validate:"gte=1"`
}

// Enabled reports whether a database host is configured.
func (p Postgres) Enabled() bool {
	return p.Host != ""
}

// DSN renders a keyword/value connection string for a single connection.
func (p Postgres) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode)
}

// ConnString is DSN plus pgxpool sizing.
func (p Postgres) ConnString() string {
	return fmt.Sprintf("%s pool_max_conns=%d", p.DSN(), p.MaxConns)
}

// Redis holds response cache configuration. An empty address disables caching.
type Redis struct {
	Addr     string        `env:"REDIS_ADDR" envDefault:""`
	DB       int           `env:"REDIS_DB" envDefault:"0"`
	PoolSize int           `env:"REDIS_POOL_SIZE" envDefault:"20"`
	CacheTTL time.Duration `env:"QUIZ_RESPONSE_CACHE_TTL" envDefault:"24h"`
}

// Quiz groups the numeric policy of chunking and assembly.
type Quiz struct {
	LowestMaxQuestions   int `env:"QUIZ_LOWEST_MAX_QUESTIONS" envDefault:"3" validate:"gte=1"`
	HighestMaxQuestions  int `env:"QUIZ_HIGHEST_MAX_QUESTIONS" envDefault:"10" validate:"gtefield=LowestMaxQuestions"`
	MaxQuestionsPerChunk int `env:"QUIZ_MAX_QUESTIONS_PER_CHUNK" envDefault:"3" validate:"gte=1"`
	MaxWordsPerChunk     int `env:"QUIZ_MAX_WORDS_PER_CHUNK" envDefault:"100" validate:"gte=1"`
	MinSensibleWords     int `env:"QUIZ_MIN_SENSIBLE_CHUNK_WORDS" envDefault:"40" validate:"gte=1,ltefield=MaxWordsPerChunk"`
	MinContentWords      int `env:"LESSON_MIN_WORDS" envDefault:"150" validate:"gte=0"`
	MaxContentWords      int `env:"LESSON_MAX_WORDS" envDefault:"4000" validate:"gtefield=MinContentWords"`
	MaxContentChars      int `env:"LESSON_MAX_CHARS" envDefault:"20000" validate:"gte=0"`
	MaxConcurrentCalls   int `env:"QUIZ_MAX_CONCURRENT_CALLS" envDefault:"0" validate:"gte=0"`
}

// Generator selects and configures the text-generation backend.
type Generator struct {
	Backend string `env:"GENERATOR_BACKEND" envDefault:"http" validate:"oneof=http gemini mindsdb"`

	URL     string        `env:"AI_GENERATOR_URL" envDefault:"" validate:"required_if=Backend http"`
	APIKey  string        `env:"AI_GENERATOR_API_KEY" envDefault:""`
	Timeout time.Duration `env:"AI_HTTP_TIMEOUT" envDefault:"30s"`

	GeminiAPIKey      string        `env:"GEMINI_API_KEY" envDefault:"" validate:"required_if=Backend gemini"`
	GeminiModel       string        `env:"GEMINI_MODEL" envDefault:"gemini-2.5-flash"`
	GeminiTemperature float32       `env:"GEMINI_TEMPERATURE" envDefault:"0.4"`
	GeminiMaxRetries  int           `env:"GEMINI_MAX_RETRIES" envDefault:"2" validate:"gte=0"`
	GeminiRetryDelay  time.Duration `env:"GEMINI_RETRY_DELAY" envDefault:"1s"`

	MindsDBDSN   string `env:"MINDSDB_DSN" envDefault:"" validate:"required_if=Backend mindsdb"`
	MindsDBModel string `env:"MINDSDB_MODEL" envDefault:"mindsdb.lesson_quiz_generator"`
}

var validate = validator.New()

// Load parses environment variables into App config and validates it.
func Load(ctx context.Context) (*App, error) {
	cfg := &App{}
	if err := env.ParseWithOptions(cfg, env.Options{RequiredIfNoDef: true}); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := validate.StructCtx(ctx, cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}
