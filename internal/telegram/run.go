package telegram

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/codemasterbot/internal/config"
	"github.com/m3rciful/codemasterbot/internal/logger"
)

// Bot wraps a configured telebot instance with its routing tables.
type Bot struct {
	bot      *tele.Bot
	cfg      *config.Config
	registry *Registry
}

// NewBot constructs the Telegram bot and applies middleware. Handlers are
// wired separately via Wire once the services that need the bot's sender
// exist.
func NewBot(cfg *config.Config) (*Bot, error) {
	bot, err := tele.NewBot(tele.Settings{
		Token:  cfg.Telegram.Token,
		Poller: BuildPoller(cfg),
		Client: BuildHTTPClient(),
	})
	if err != nil {
		return nil, fmt.Errorf("telegram: bot initialization failed: %w", err)
	}

	bot.Use(RecoverMiddleware)
	bot.Use(LoggerMiddleware)
	if cfg.RateLimit.IntervalMS > 0 {
		exclude := make(map[string]struct{}, len(cfg.RateLimit.ExcludeUpdates))
		for _, kind := range cfg.RateLimit.ExcludeUpdates {
			exclude[kind] = struct{}{}
		}
		bot.Use(RateLimitMiddleware(RateLimitOptions{
			Interval: time.Duration(cfg.RateLimit.IntervalMS) * time.Millisecond,
			Exclude:  exclude,
		}))
	}

	return &Bot{bot: bot, cfg: cfg, registry: NewRegistry()}, nil
}

// Wire registers the handler set and binds the message, callback, and
// command routes.
func (b *Bot) Wire(handlers *Handlers) {
	handlers.Register(b.registry)

	router := NewRouter(b.registry, handlers)
	for name, cmd := range b.registry.Commands() {
		h := cmd.Handler
		if cmd.AdminOnly {
			h = AdminGuard(b.cfg.Telegram.AdminID, h)
		}
		b.bot.Handle(name, h)
	}
	b.bot.Handle(tele.OnText, router.OnText)
	b.bot.Handle(tele.OnCallback, router.OnCallback)

	if err := b.bot.SetCommands(b.registry.ListCommands()); err != nil {
		logger.Warn(context.Background(), "tg", "set_commands.failed",
			slog.String("err", err.Error()),
		)
	}
}

// Raw exposes the underlying telebot instance for senders.
func (b *Bot) Raw() *tele.Bot {
	return b.bot
}

// Run starts the bot and blocks until the context is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	mode := strings.ToLower(strings.TrimSpace(b.cfg.Telegram.RunMode))
	switch p := b.bot.Poller.(type) {
	case *tele.Webhook:
		logger.Info(ctx, "tg", "mode",
			slog.String("mode", config.RunModeWebhook),
			slog.String("listen", p.Listen),
			slog.String("public_url", p.Endpoint.PublicURL),
		)
	default:
		logger.Info(ctx, "tg", "mode",
			slog.String("mode", config.RunModeLongpoll),
		)
		// A leftover webhook blocks getUpdates.
		if mode == config.RunModeLongpoll {
			if err := deleteWebhook(ctx, b.cfg.Telegram.Token); err != nil {
				logger.Warn(ctx, "tg", "delete_webhook.failed",
					slog.String("err", err.Error()),
				)
			}
		}
	}

	done := make(chan struct{})
	go func() {
		b.bot.Start()
		close(done)
	}()

	select {
	case <-ctx.Done():
		b.bot.Stop()
		<-done
		if errors.Is(ctx.Err(), context.Canceled) {
			return nil
		}
		return ctx.Err()
	case <-done:
		return nil
	}
}

func deleteWebhook(ctx context.Context, token string) error {
	if strings.TrimSpace(token) == "" {
		return fmt.Errorf("empty token")
	}
	url := fmt.Sprintf("https://api.telegram.org/bot%s/deleteWebhook", token)

	reqCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, url,
		strings.NewReader("drop_pending_updates=false"))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("deleteWebhook status: %s", resp.Status)
	}
	return nil
}
