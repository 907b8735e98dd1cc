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

// ErrNotFound is returned when a lookup matches no rows.
var ErrNotFound = errors.New("repository: not found")

// UserRepo manages registered Telegram users.
type UserRepo struct {
	db *sqlx.DB
}

// NewUserRepo constructs a user repository over the given connection pool.
func NewUserRepo(db *sqlx.DB) *UserRepo {
	return &UserRepo{db: db}
}

// ByTelegramID fetches a user by Telegram id. Returns ErrNotFound for
// unregistered users.
func (r *UserRepo) ByTelegramID(ctx context.Context, telegramID int64) (*models.User, error) {
	const q = `SELECT id, telegram_id, username, created_at FROM users WHERE telegram_id = $1`

	var user models.User
	if err := r.db.GetContext(ctx, &user, q, telegramID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("user by telegram id %d: %w", telegramID, err)
	}
	return &user, nil
}

// GetOrCreate registers a Telegram user if needed and reports whether a new
// row was created.
func (r *UserRepo) GetOrCreate(ctx context.Context, telegramID int64, username string) (*models.User, bool, error) {
	if user, err := r.ByTelegramID(ctx, telegramID); err == nil {
		return user, false, nil
	} else if !errors.Is(err, ErrNotFound) {
		return nil, false, err
	}

	const insert = `
		INSERT INTO users (telegram_id, username)
		VALUES ($1, NULLIF($2, ''))
		ON CONFLICT (telegram_id) DO UPDATE SET username = EXCLUDED.username
		RETURNING id, telegram_id, username, created_at`

	var user models.User
	if err := r.db.GetContext(ctx, &user, insert, telegramID, username); err != nil {
		return nil, false, fmt.Errorf("create user %d: %w", telegramID, err)
	}
	logger.Info(ctx, "repo.users", "user.created",
		slog.Int64("telegram_id", telegramID),
	)
	return &user, true, nil
}
