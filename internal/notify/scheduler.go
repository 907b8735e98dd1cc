// Package notify delivers daily quiz reminders to opted-in users.
package notify

import (
	"context"
	"log/slog"
	"time"

	"github.com/m3rciful/codemasterbot/internal/logger"
)

// Source lists the chats whose reminder is due at a given HH:MM (UTC).
type Source interface {
	Due(ctx context.Context, hhmm string) ([]int64, error)
}

// Sender delivers a reminder message to a chat.
type Sender interface {
	SendText(ctx context.Context, chatID int64, text string) error
}

// Scheduler wakes up every minute and sends the reminder to every user whose
// configured time matches the current UTC minute.
type Scheduler struct {
	source   Source
	sender   Sender
	reminder string

	// now and tick are swappable for tests.
	now  func() time.Time
	tick time.Duration
}

// NewScheduler builds a reminder scheduler.
func NewScheduler(source Source, sender Sender, reminder string) *Scheduler {
	return &Scheduler{
		source:   source,
		sender:   sender,
		reminder: reminder,
		now:      time.Now,
		tick:     time.Minute,
	}
}

// Run blocks until the context is cancelled, firing at most once per minute.
// A send failure for one chat does not stop delivery to the others.
func (s *Scheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	logger.Info(ctx, "notify", "scheduler.started")

	var lastFired string
	for {
		select {
		case <-ctx.Done():
			logger.Info(ctx, "notify", "scheduler.stopped")
			return ctx.Err()
		case <-ticker.C:
			minute := s.now().UTC().Format("15:04")
			if minute == lastFired {
				continue
			}
			lastFired = minute
			s.fire(ctx, minute)
		}
	}
}

func (s *Scheduler) fire(ctx context.Context, minute string) {
	chats, err := s.source.Due(ctx, minute)
	if err != nil {
		logger.Error(ctx, "notify", "due.failed",
			slog.String("minute", minute),
			slog.String("err", err.Error()),
		)
		return
	}
	if len(chats) == 0 {
		return
	}

	sent := 0
	for _, chatID := range chats {
		if err := s.sender.SendText(ctx, chatID, s.reminder); err != nil {
			logger.Warn(ctx, "notify", "send.failed",
				slog.Int64("chat_id", chatID),
				slog.String("err", err.Error()),
			)
			continue
		}
		sent++
	}
	logger.Info(ctx, "notify", "reminders.sent",
		slog.String("minute", minute),
		slog.Int("total", len(chats)),
		slog.Int("sent", sent),
	)
}
