package ai

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/lesson-quiz/internal/quiz"
)

var modelIdentifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// MindsDB rejects single quotes in predicate values, so they are swapped for a
// look-alike modifier letter before querying.
var quoteReplacer = strings.NewReplacer("'", "ʼ")

// MindsDBConfig configures the MindsDB backend.
type MindsDBConfig struct {
	// DSN is a go-sql-driver/mysql DSN for the MindsDB MySQL endpoint.
	DSN string
	// Model is the (optionally project-qualified) predictor to query.
	Model string
}

type rowQueryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// MindsDBGenerator implements quiz.Generator by querying a MindsDB predictor over SQL.
type MindsDBGenerator struct {
	db     rowQueryer
	closer func() error
	query  string
	logger zerolog.Logger
}

var _ quiz.Generator = (*MindsDBGenerator)(nil)

// NewMindsDBGenerator opens a connection pool to MindsDB. Parameters are
// interpolated client-side since MindsDB does not support prepared statements.
func NewMindsDBGenerator(cfg MindsDBConfig, logger zerolog.Logger) (*MindsDBGenerator, error) {
	dsnCfg, err := mysql.ParseDSN(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse mindsdb dsn: %w", err)
	}
	dsnCfg.InterpolateParams = true

	db, err := sql.Open("mysql", dsnCfg.FormatDSN())
	if err != nil {
		return nil, fmt.Errorf("open mindsdb: %w", err)
	}

	g, err := newMindsDBGenerator(db, cfg.Model, logger)
	if err != nil {
		db.Close()
		return nil, err
	}
	g.closer = db.Close
	return g, nil
}

func newMindsDBGenerator(db rowQueryer, model string, logger zerolog.Logger) (*MindsDBGenerator, error) {
	if !modelIdentifier.MatchString(model) {
		return nil, fmt.Errorf("invalid mindsdb model identifier %q", model)
	}
	return &MindsDBGenerator{
		db:     db,
		query:  "SELECT lesson_quiz FROM " + model + " WHERE questions_count = ? AND lesson_content = ?",
		logger: logger.With().Str("component", "mindsdb_quiz_generator").Str("model", model).Logger(),
	}, nil
}

// Generate returns the predictor's lesson_quiz column. No rows yields "".
func (g *MindsDBGenerator) Generate(ctx context.Context, req quiz.GenerateRequest) (string, error) {
	var raw sql.NullString
	err := g.db.QueryRowContext(ctx, g.query, strconv.Itoa(req.QuestionsCount), SanitizeForMindsDB(req.Chunk)).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			g.logger.Warn().Int("questions_count", req.QuestionsCount).Msg("predictor returned no rows")
			return "", nil
		}
		return "", fmt.Errorf("query mindsdb: %w", err)
	}
	return raw.String, nil
}

// Close releases the connection pool.
func (g *MindsDBGenerator) Close() error {
	if g.closer == nil {
		return nil
	}
	return g.closer()
}

// SanitizeForMindsDB replaces characters MindsDB cannot take in a predicate value.
func SanitizeForMindsDB(content string) string {
	return quoteReplacer.Replace(content)
}
