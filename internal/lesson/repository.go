package lesson

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ErrNotFound is returned when a lesson does not exist or has no content.
var ErrNotFound = errors.New("lesson not found")

const getLessonContentSQL = `SELECT content FROM lessons WHERE lesson_id = $1`

type rowQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository reads lesson content from Postgres. It never writes.
type Repository struct {
	db rowQuerier
}

// NewRepository wraps a pgx pool (or any QueryRow-capable handle).
func NewRepository(db rowQuerier) *Repository {
	return &Repository{db: db}
}

// GetContent returns the stored content of a lesson.
func (r *Repository) GetContent(ctx context.Context, lessonID uuid.UUID) (string, error) {
	var content string
	if err := r.db.QueryRow(ctx, getLessonContentSQL, lessonID).Scan(&content); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("load lesson %s: %w", lessonID, err)
	}
	if strings.TrimSpace(content) == "" {
		return "", ErrNotFound
	}
	return content, nil
}
