package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"github.com/m3rciful/codemasterbot/internal/logger"
	"github.com/m3rciful/codemasterbot/internal/models"
)

// QuestionRepo reads quiz reference data.
type QuestionRepo struct {
	db *sqlx.DB
}

// NewQuestionRepo constructs a question repository over the given connection pool.
func NewQuestionRepo(db *sqlx.DB) *QuestionRepo {
	return &QuestionRepo{db: db}
}

// RandomByTag returns up to count questions carrying the given tag slug,
// selected uniformly at random without replacement. An empty result is not an
// error; it simply means the topic has no questions.
func (r *QuestionRepo) RandomByTag(ctx context.Context, slug string, count int) ([]models.Question, error) {
	const q = `
		SELECT q.id, q.name, q.description, q.syntax
		FROM questions q
		JOIN question_tags qt ON qt.question_id = q.id
		JOIN tags t ON t.id = qt.tag_id
		WHERE t.slug = $1
		ORDER BY random()
		LIMIT $2`

	var questions []models.Question
	if err := r.db.SelectContext(ctx, &questions, q, slug, count); err != nil {
		return nil, fmt.Errorf("random questions by tag %q: %w", slug, err)
	}
	logger.Debug(ctx, "repo.questions", "random_by_tag",
		slog.String("slug", slug),
		slog.Int("requested", count),
		slog.Int("found", len(questions)),
	)
	return questions, nil
}

// AllNamesExcept returns the names of every question except the one with the
// given id. Used to draw incorrect options in easy mode.
func (r *QuestionRepo) AllNamesExcept(ctx context.Context, questionID int64) ([]string, error) {
	const q = `SELECT name FROM questions WHERE id <> $1`

	var names []string
	if err := r.db.SelectContext(ctx, &names, q, questionID); err != nil {
		return nil, fmt.Errorf("question names except %d: %w", questionID, err)
	}
	return names, nil
}

// TagBySlug fetches a single tag by slug.
func (r *QuestionRepo) TagBySlug(ctx context.Context, slug string) (*models.Tag, error) {
	const q = `SELECT id, name, slug FROM tags WHERE slug = $1`

	var tag models.Tag
	if err := r.db.GetContext(ctx, &tag, q, slug); err != nil {
		return nil, fmt.Errorf("tag by slug %q: %w", slug, err)
	}
	return &tag, nil
}

// TagByName fetches a single tag by its display name.
func (r *QuestionRepo) TagByName(ctx context.Context, name string) (*models.Tag, error) {
	const q = `SELECT id, name, slug FROM tags WHERE name = $1`

	var tag models.Tag
	if err := r.db.GetContext(ctx, &tag, q, name); err != nil {
		return nil, fmt.Errorf("tag by name %q: %w", name, err)
	}
	return &tag, nil
}

// UpsertQuestion inserts a question unless one with the same name already
// exists, returning its id and whether a new row was created.
func (r *QuestionRepo) UpsertQuestion(ctx context.Context, name, description, syntax string) (int64, bool, error) {
	const insert = `
		INSERT INTO questions (name, description, syntax)
		VALUES ($1, $2, NULLIF($3, ''))
		ON CONFLICT (name) DO NOTHING
		RETURNING id`

	var id int64
	err := r.db.GetContext(ctx, &id, insert, name, description, syntax)
	if err == nil {
		return id, true, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, false, fmt.Errorf("upsert question %q: %w", name, err)
	}
	// Conflict path: RETURNING yields no rows, fetch the existing id.
	const lookup = `SELECT id FROM questions WHERE name = $1`
	if getErr := r.db.GetContext(ctx, &id, lookup, name); getErr != nil {
		return 0, false, fmt.Errorf("upsert question %q: %w", name, getErr)
	}
	return id, false, nil
}

// AttachTag links a question to a tag, ignoring duplicates.
func (r *QuestionRepo) AttachTag(ctx context.Context, questionID, tagID int64) error {
	const q = `
		INSERT INTO question_tags (question_id, tag_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING`

	if _, err := r.db.ExecContext(ctx, q, questionID, tagID); err != nil {
		return fmt.Errorf("attach tag %d to question %d: %w", tagID, questionID, err)
	}
	return nil
}

// EnsureTag inserts a tag if missing and returns its id.
func (r *QuestionRepo) EnsureTag(ctx context.Context, name, slug string) (int64, error) {
	const q = `
		INSERT INTO tags (name, slug)
		VALUES ($1, $2)
		ON CONFLICT (slug) DO UPDATE SET name = EXCLUDED.name
		RETURNING id`

	var id int64
	if err := r.db.GetContext(ctx, &id, q, name, slug); err != nil {
		return 0, fmt.Errorf("ensure tag %q: %w", slug, err)
	}
	return id, nil
}
