package session

import "github.com/m3rciful/codemasterbot/internal/models"

// Quiz is the ephemeral per-user quiz state. It lives only in the session
// store and is destroyed when the quiz ends or is cancelled.
type Quiz struct {
	// Remaining holds the drawn questions not yet asked. It never contains
	// Current.
	Remaining []models.Question
	// Current is the question awaiting an answer, nil when no question is
	// active.
	Current *models.Question
	// Correct counts right answers; it only increments.
	Correct int
	// AwaitingAnswer marks that the next free-text message is a hard-mode
	// answer submission.
	AwaitingAnswer bool
	// Difficulty fixes the presentation mode for the whole session.
	Difficulty models.Difficulty
}

// PopNext moves the next queued question into Current and returns it, or nil
// when the queue is exhausted.
func (q *Quiz) PopNext() *models.Question {
	if len(q.Remaining) == 0 {
		q.Current = nil
		return nil
	}
	next := q.Remaining[0]
	q.Remaining = q.Remaining[1:]
	q.Current = &next
	return q.Current
}

// Manager stores conversation state per user.
type Manager interface {
	// Quiz returns the active quiz for a user, or nil.
	Quiz(userID int64) *Quiz
	// StartQuiz installs a fresh quiz session, silently replacing any
	// previous one.
	StartQuiz(userID int64, q *Quiz)
	// ClearQuiz removes the quiz session for a user.
	ClearQuiz(userID int64)

	// Notification time entry flow.
	SetAwaitingNotificationTime(userID int64, awaiting bool)
	AwaitingNotificationTime(userID int64) bool

	// Clear removes all session data for a user.
	Clear(userID int64)
}
