// Package bootstrap assembles the bot: logger, database, migrations, seed
// data, and the wired application services.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/m3rciful/codemasterbot/internal/buildinfo"
	"github.com/m3rciful/codemasterbot/internal/config"
	"github.com/m3rciful/codemasterbot/internal/database"
	"github.com/m3rciful/codemasterbot/internal/logger"
	"github.com/m3rciful/codemasterbot/internal/models"
	"github.com/m3rciful/codemasterbot/internal/notify"
	"github.com/m3rciful/codemasterbot/internal/quiz"
	"github.com/m3rciful/codemasterbot/internal/repository"
	"github.com/m3rciful/codemasterbot/internal/seed"
	"github.com/m3rciful/codemasterbot/internal/session"
	"github.com/m3rciful/codemasterbot/internal/telegram"
)

const dbReadyTimeout = 30 * time.Second

// Options tune the bootstrap pipeline.
type Options struct {
	// ImportPath, when set, imports questions from the CSV file before the
	// bot starts.
	ImportPath string
}

// App holds the assembled application.
type App struct {
	DB        *sqlx.DB
	Bot       *telegram.Bot
	Scheduler *notify.Scheduler
}

// Run initializes infrastructure and wires the application services.
func Run(ctx context.Context, cfg *config.Config, opts Options) (*App, error) {
	logger.Init(logger.Options{
		Level:   cfg.Logging.Level,
		Format:  cfg.Logging.Format,
		Profile: cfg.Logging.Profile,
	})
	logger.Info(ctx, "app", "build",
		slog.String("version", buildinfo.Version),
		slog.String("commit", buildinfo.Commit),
		slog.String("date", buildinfo.Date),
	)

	if err := database.WaitForPostgres(cfg.Database.DSN(), dbReadyTimeout); err != nil {
		return nil, fmt.Errorf("bootstrap: database not ready: %w", err)
	}
	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: database initialization failed: %w", err)
	}
	if err := database.RunMigrations(cfg.Database); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bootstrap: migrations failed: %w", err)
	}

	users := repository.NewUserRepo(db)
	questions := repository.NewQuestionRepo(db)
	settings := repository.NewSettingsRepo(db, models.DefaultSettings{
		DefaultTagSlug: cfg.Quiz.DefaultTag,
	})

	if err := seed.Tags(ctx, questions, cfg.Quiz.Topics); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bootstrap: %w", err)
	}
	if opts.ImportPath != "" {
		if _, err := seed.QuestionsFromFile(ctx, questions, opts.ImportPath); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("bootstrap: %w", err)
		}
	}

	sessions := session.NewMemoryManager()

	bot, err := telegram.NewBot(cfg)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bootstrap: %w", err)
	}
	outbox := telegram.NewOutbox(bot.Raw())

	engine := quiz.New(questions, sessions, outbox, quiz.Config{
		QuestionsPerQuiz: cfg.Quiz.QuestionsPerQuiz,
		ChoiceCount:      cfg.Quiz.ChoiceCount,
		GreatThreshold:   cfg.Quiz.GreatThreshold,
		Stickers: quiz.Pools{
			Perfect: cfg.Quiz.Stickers.Perfect,
			Great:   cfg.Quiz.Stickers.Great,
			Good:    cfg.Quiz.Stickers.Good,
		},
	}, nil)

	handlers := telegram.NewHandlers(cfg, engine, sessions, users, settings, questions)
	bot.Wire(handlers)

	app := &App{DB: db, Bot: bot}
	if cfg.Notifications.Enabled {
		app.Scheduler = notify.NewScheduler(settings, outbox, cfg.Notifications.Reminder)
	}
	return app, nil
}

// Run starts the bot and, when enabled, the reminder scheduler; it blocks
// until the context is cancelled.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if a.Scheduler != nil {
		go func() {
			_ = a.Scheduler.Run(ctx)
		}()
	}

	defer func() { _ = a.DB.Close() }()
	return a.Bot.Run(ctx)
}
