package quiz

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"

	"github.com/m3rciful/codemasterbot/internal/logger"
	"github.com/m3rciful/codemasterbot/internal/models"
	"github.com/m3rciful/codemasterbot/internal/session"
)

var (
	// ErrNoQuestions signals that the chosen topic has no questions; no
	// session is created.
	ErrNoQuestions = errors.New("quiz: no questions for topic")
	// ErrNoActiveQuestion signals a submission without an active question;
	// state is not advanced.
	ErrNoActiveQuestion = errors.New("quiz: no active question")
)

// QuestionSource supplies quiz reference data.
type QuestionSource interface {
	// RandomByTag draws up to count questions carrying the tag, uniformly at
	// random without replacement. An empty slice is a valid result.
	RandomByTag(ctx context.Context, slug string, count int) ([]models.Question, error)
	// AllNamesExcept lists the names of all other questions, used as the pool
	// of incorrect options.
	AllNamesExcept(ctx context.Context, questionID int64) ([]string, error)
}

// Outbox delivers quiz output to the user. Failures are logged by the caller
// and abort the current handler; the engine never retries.
type Outbox interface {
	SendText(ctx context.Context, chatID int64, text string) error
	// SendChoices renders one selectable button per option plus an explicit
	// end-quiz control.
	SendChoices(ctx context.Context, chatID int64, text string, options []string) error
	SendSticker(ctx context.Context, chatID int64, fileID string) error
}

// Pools groups celebration sticker file IDs by result tier.
type Pools struct {
	Perfect []string
	Great   []string
	Good    []string
}

// Config carries the engine's tunables. Sticker pools and thresholds are
// injected here rather than read from globals.
type Config struct {
	// QuestionsPerQuiz is the draw size and the fixed score denominator.
	QuestionsPerQuiz int
	// ChoiceCount caps the number of incorrect options in easy mode.
	ChoiceCount int
	// GreatThreshold is the minimal score for the "great" tier; a full score
	// reaches "perfect".
	GreatThreshold int
	Stickers       Pools
}

// Engine drives the question→answer→question loop and computes the final
// score. All state lives in the session manager; the engine itself only
// guards its random source.
type Engine struct {
	questions QuestionSource
	sessions  session.Manager
	out       Outbox
	cfg       Config

	rndMu sync.Mutex
	rnd   *rand.Rand
}

// New constructs a quiz engine. A nil rnd falls back to a freshly seeded
// source; tests inject a deterministic one.
func New(questions QuestionSource, sessions session.Manager, out Outbox, cfg Config, rnd *rand.Rand) *Engine {
	if cfg.QuestionsPerQuiz <= 0 {
		cfg.QuestionsPerQuiz = 10
	}
	if cfg.ChoiceCount <= 0 {
		cfg.ChoiceCount = 3
	}
	if cfg.GreatThreshold <= 0 {
		cfg.GreatThreshold = 7
	}
	if rnd == nil {
		rnd = rand.New(rand.NewSource(rand.Int63()))
	}
	return &Engine{
		questions: questions,
		sessions:  sessions,
		out:       out,
		cfg:       cfg,
		rnd:       rnd,
	}
}

// Start begins a quiz for the chat, silently replacing any previous session.
// Returns ErrNoQuestions when the topic is empty; the caller owns the
// user-facing message for that case.
func (e *Engine) Start(ctx context.Context, chatID int64, difficulty models.Difficulty, tagSlug string) error {
	if !difficulty.Valid() {
		difficulty = models.DifficultyEasy
	}

	drawn, err := e.questions.RandomByTag(ctx, tagSlug, e.cfg.QuestionsPerQuiz)
	if err != nil {
		return fmt.Errorf("draw questions: %w", err)
	}
	if len(drawn) == 0 {
		logger.Info(ctx, "quiz", "start.empty",
			slog.Int64("chat_id", chatID),
			slog.String("tag", tagSlug),
		)
		return ErrNoQuestions
	}

	qz := &session.Quiz{Remaining: drawn, Difficulty: difficulty}
	qz.PopNext()
	e.sessions.StartQuiz(chatID, qz)

	logger.Info(ctx, "quiz", "start",
		slog.Int64("chat_id", chatID),
		slog.String("tag", tagSlug),
		slog.String("difficulty", string(difficulty)),
		slog.Int("questions", len(drawn)),
	)

	return e.presentQuestion(ctx, chatID, qz)
}

// presentQuestion sends the current question in the session's difficulty mode.
func (e *Engine) presentQuestion(ctx context.Context, chatID int64, qz *session.Quiz) error {
	current := qz.Current
	if current == nil {
		return ErrNoActiveQuestion
	}

	if qz.Difficulty == models.DifficultyHard {
		qz.AwaitingAnswer = true
		return e.out.SendText(ctx, chatID, hardQuestionText(current, len(qz.Remaining)))
	}

	names, err := e.questions.AllNamesExcept(ctx, current.ID)
	if err != nil {
		return fmt.Errorf("incorrect options: %w", err)
	}
	wrongCount := len(names)
	if wrongCount > e.cfg.ChoiceCount {
		wrongCount = e.cfg.ChoiceCount
	}
	if wrongCount < e.cfg.ChoiceCount {
		logger.Warn(ctx, "quiz", "options.short",
			slog.Int64("question_id", current.ID),
			slog.Int("available", len(names)),
		)
	}

	options := append([]string{current.Name}, e.sample(names, wrongCount)...)
	e.shuffle(options)

	return e.out.SendChoices(ctx, chatID, easyQuestionText(current, len(qz.Remaining)), options)
}

// Submit evaluates an answer against the current question, reveals the
// outcome, and advances the quiz. Comparison is exact and case-sensitive.
func (e *Engine) Submit(ctx context.Context, chatID int64, answer string) error {
	qz := e.sessions.Quiz(chatID)
	if qz == nil || qz.Current == nil {
		return ErrNoActiveQuestion
	}

	current := qz.Current
	correct := answer == current.Name
	if correct {
		qz.Correct++
	}
	qz.AwaitingAnswer = false

	logger.Debug(ctx, "quiz", "answer",
		slog.Int64("chat_id", chatID),
		slog.Int64("question_id", current.ID),
		slog.Bool("correct", correct),
		slog.Int("score", qz.Correct),
	)

	if err := e.out.SendText(ctx, chatID, revealText(current, answer, correct)); err != nil {
		return err
	}

	if qz.PopNext() != nil {
		return e.presentQuestion(ctx, chatID, qz)
	}
	return e.finish(ctx, chatID, qz)
}

// finish reports the final score against the fixed draw-count denominator,
// sends a tiered celebration sticker, and clears the session.
func (e *Engine) finish(ctx context.Context, chatID int64, qz *session.Quiz) error {
	score := qz.Correct
	total := e.cfg.QuestionsPerQuiz
	e.sessions.ClearQuiz(chatID)

	logger.Info(ctx, "quiz", "finish",
		slog.Int64("chat_id", chatID),
		slog.Int("score", score),
		slog.Int("total", total),
	)

	if err := e.out.SendText(ctx, chatID, finishText(score, total)); err != nil {
		return err
	}

	pool := e.tierPool(score, total)
	if len(pool) == 0 {
		logger.Warn(ctx, "quiz", "sticker.empty_pool",
			slog.Int("score", score),
		)
		return nil
	}
	return e.out.SendSticker(ctx, chatID, pool[e.intn(len(pool))])
}

// Cancel unconditionally clears the session and acknowledges the cancellation.
// No partial score is reported.
func (e *Engine) Cancel(ctx context.Context, chatID int64) error {
	e.sessions.ClearQuiz(chatID)
	logger.Info(ctx, "quiz", "cancel",
		slog.Int64("chat_id", chatID),
	)
	return e.out.SendText(ctx, chatID, cancelText())
}

// AwaitingAnswer reports whether the chat has a hard-mode question pending a
// typed answer. The text router uses this to claim inbound messages.
func (e *Engine) AwaitingAnswer(chatID int64) bool {
	qz := e.sessions.Quiz(chatID)
	return qz != nil && qz.AwaitingAnswer
}

func (e *Engine) tierPool(score, total int) []string {
	switch {
	case score >= total:
		return e.cfg.Stickers.Perfect
	case score >= e.cfg.GreatThreshold:
		return e.cfg.Stickers.Great
	default:
		return e.cfg.Stickers.Good
	}
}

// sample draws k distinct values from names uniformly at random.
func (e *Engine) sample(names []string, k int) []string {
	if k >= len(names) {
		k = len(names)
	}
	e.rndMu.Lock()
	perm := e.rnd.Perm(len(names))
	e.rndMu.Unlock()

	picked := make([]string, 0, k)
	for _, idx := range perm[:k] {
		picked = append(picked, names[idx])
	}
	return picked
}

func (e *Engine) shuffle(options []string) {
	e.rndMu.Lock()
	defer e.rndMu.Unlock()
	e.rnd.Shuffle(len(options), func(i, j int) {
		options[i], options[j] = options[j], options[i]
	})
}

func (e *Engine) intn(n int) int {
	e.rndMu.Lock()
	defer e.rndMu.Unlock()
	return e.rnd.Intn(n)
}
