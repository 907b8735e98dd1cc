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

const settingsColumns = `
	s.id, s.user_id, s.tag_id, s.difficulty, s.notification, s.notification_time,
	t.slug AS tag_slug, t.name AS tag_name`

// SettingsRepo manages per-user quiz preferences.
type SettingsRepo struct {
	db       *sqlx.DB
	defaults models.DefaultSettings
}

// NewSettingsRepo constructs a settings repository. The defaults are
// substituted whenever a user has no settings record or the record is
// malformed.
func NewSettingsRepo(db *sqlx.DB, defaults models.DefaultSettings) *SettingsRepo {
	return &SettingsRepo{db: db, defaults: defaults}
}

// Defaults exposes the configured fallback settings.
func (r *SettingsRepo) Defaults() models.DefaultSettings {
	return r.defaults
}

// GetOrCreate returns the settings row for a user, creating it lazily on
// first access.
func (r *SettingsRepo) GetOrCreate(ctx context.Context, userID int64) (*models.UserSettings, error) {
	if s, err := r.byUserID(ctx, userID); err == nil {
		return s, nil
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	const insert = `
		INSERT INTO user_settings (user_id)
		VALUES ($1)
		ON CONFLICT (user_id) DO NOTHING`
	if _, err := r.db.ExecContext(ctx, insert, userID); err != nil {
		return nil, fmt.Errorf("create settings for user %d: %w", userID, err)
	}
	logger.Info(ctx, "repo.settings", "settings.created",
		slog.Int64("user_id", userID),
	)
	return r.byUserID(ctx, userID)
}

func (r *SettingsRepo) byUserID(ctx context.Context, userID int64) (*models.UserSettings, error) {
	q := `
		SELECT` + settingsColumns + `
		FROM user_settings s
		LEFT JOIN tags t ON t.id = s.tag_id
		WHERE s.user_id = $1`

	var s models.UserSettings
	if err := r.db.GetContext(ctx, &s, q, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("settings for user %d: %w", userID, err)
	}
	return &s, nil
}

// Resolve looks up the settings for a Telegram user and reports whether a
// personal record exists. Unregistered users and users without a settings row
// receive the defaults; storage failures also degrade to defaults with a
// warning, per the engine's malformed-settings recovery.
func (r *SettingsRepo) Resolve(ctx context.Context, telegramID int64) (models.Settings, bool) {
	q := `
		SELECT` + settingsColumns + `
		FROM user_settings s
		JOIN users u ON u.id = s.user_id
		LEFT JOIN tags t ON t.id = s.tag_id
		WHERE u.telegram_id = $1`

	var s models.UserSettings
	if err := r.db.GetContext(ctx, &s, q, telegramID); err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			logger.Warn(ctx, "repo.settings", "settings.fallback",
				slog.Int64("telegram_id", telegramID),
				slog.String("err", err.Error()),
			)
		}
		return r.defaults, false
	}
	return models.PersistedSettings{Record: s, Defaults: r.defaults}, true
}

// SetTag updates the topic tag in a settings record.
func (r *SettingsRepo) SetTag(ctx context.Context, settingsID, tagID int64) error {
	const q = `UPDATE user_settings SET tag_id = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, q, settingsID, tagID); err != nil {
		return fmt.Errorf("set tag for settings %d: %w", settingsID, err)
	}
	return nil
}

// SetDifficulty updates the quiz mode in a settings record.
func (r *SettingsRepo) SetDifficulty(ctx context.Context, settingsID int64, d models.Difficulty) error {
	const q = `UPDATE user_settings SET difficulty = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, q, settingsID, string(d)); err != nil {
		return fmt.Errorf("set difficulty for settings %d: %w", settingsID, err)
	}
	return nil
}

// SetNotification toggles daily reminders in a settings record.
func (r *SettingsRepo) SetNotification(ctx context.Context, settingsID int64, enabled bool) error {
	const q = `UPDATE user_settings SET notification = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, q, settingsID, enabled); err != nil {
		return fmt.Errorf("set notification for settings %d: %w", settingsID, err)
	}
	return nil
}

// SetNotificationTime stores the reminder time (HH:MM, UTC) in a settings record.
func (r *SettingsRepo) SetNotificationTime(ctx context.Context, settingsID int64, hhmm string) error {
	const q = `UPDATE user_settings SET notification_time = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, q, settingsID, hhmm); err != nil {
		return fmt.Errorf("set notification time for settings %d: %w", settingsID, err)
	}
	return nil
}

// Due returns the chat ids of users whose reminder is enabled and scheduled
// for the given HH:MM (UTC).
func (r *SettingsRepo) Due(ctx context.Context, hhmm string) ([]int64, error) {
	const q = `
		SELECT u.telegram_id
		FROM user_settings s
		JOIN users u ON u.id = s.user_id
		WHERE s.notification AND s.notification_time = $1`

	var ids []int64
	if err := r.db.SelectContext(ctx, &ids, q, hhmm); err != nil {
		return nil, fmt.Errorf("due reminders at %s: %w", hhmm, err)
	}
	return ids, nil
}
