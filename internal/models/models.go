package models

import (
	"database/sql"
	"time"
)

// Difficulty selects how questions are presented during a quiz.
type Difficulty string

const (
	// DifficultyEasy presents multiple-choice buttons.
	DifficultyEasy Difficulty = "easy"
	// DifficultyHard expects a typed free-text answer.
	DifficultyHard Difficulty = "hard"
)

// Valid reports whether the difficulty is one of the known modes.
func (d Difficulty) Valid() bool {
	return d == DifficultyEasy || d == DifficultyHard
}

// User is a registered Telegram user.
type User struct {
	ID         int64          `db:"id"`
	TelegramID int64          `db:"telegram_id"`
	Username   sql.NullString `db:"username"`
	CreatedAt  time.Time      `db:"created_at"`
}

// Tag groups questions by topic.
type Tag struct {
	ID   int64  `db:"id"`
	Name string `db:"name"`
	Slug string `db:"slug"`
}

// Question is immutable reference data created by the import process and
// read-only during quiz play.
type Question struct {
	ID          int64          `db:"id"`
	Name        string         `db:"name"`
	Description string         `db:"description"`
	Syntax      sql.NullString `db:"syntax"`
}

// UserSettings holds per-user quiz preferences, one-to-one with a user.
type UserSettings struct {
	ID               int64          `db:"id"`
	UserID           int64          `db:"user_id"`
	TagID            sql.NullInt64  `db:"tag_id"`
	TagSlug          sql.NullString `db:"tag_slug"`
	TagName          sql.NullString `db:"tag_name"`
	Difficulty       Difficulty     `db:"difficulty"`
	Notification     bool           `db:"notification"`
	NotificationTime string         `db:"notification_time"`
}
