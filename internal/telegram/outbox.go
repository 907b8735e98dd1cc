package telegram

import (
	"context"
	"log/slog"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/codemasterbot/internal/logger"
)

// Callback uniques used by quiz keyboards.
const (
	cbQuizAnswer = "quiz_answer"
	cbQuizEnd    = "quiz_end"
)

const endQuizLabel = "⛔ End quiz ⛔"

// Outbox sends quiz output through the bot API. Send failures are logged and
// returned; there is no retry beyond the HTTP transport.
type Outbox struct {
	bot *tele.Bot
}

// NewOutbox wraps a bot into the engine's messaging sink.
func NewOutbox(bot *tele.Bot) *Outbox {
	return &Outbox{bot: bot}
}

func (o *Outbox) send(ctx context.Context, chatID int64, what interface{}, opts ...interface{}) error {
	_, err := o.bot.Send(tele.ChatID(chatID), what, opts...)
	if err != nil {
		logger.Error(ctx, "tg.outbox", "send.fail",
			slog.Int64("chat_id", chatID),
			slog.String("err", err.Error()),
		)
	}
	return err
}

// SendText delivers a plain text message.
func (o *Outbox) SendText(ctx context.Context, chatID int64, text string) error {
	return o.send(ctx, chatID, text)
}

// SendChoices delivers a question with one button per option plus the
// end-quiz control. The button payload carries the option label, mirroring
// how answers come back as opaque submitted values.
func (o *Outbox) SendChoices(ctx context.Context, chatID int64, text string, options []string) error {
	rows := make([][]InlineBtn, 0, len(options)+1)
	for _, option := range options {
		rows = append(rows, []InlineBtn{{Text: option, Unique: cbQuizAnswer, Data: option}})
	}
	rows = append(rows, []InlineBtn{{Text: endQuizLabel, Unique: cbQuizEnd}})
	return o.send(ctx, chatID, text, InlineRows(rows...))
}

// SendSticker delivers a sticker by file id.
func (o *Outbox) SendSticker(ctx context.Context, chatID int64, fileID string) error {
	return o.send(ctx, chatID, &tele.Sticker{File: tele.File{FileID: fileID}})
}
