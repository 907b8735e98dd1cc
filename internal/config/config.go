package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/m3rciful/codemasterbot/internal/database"
)

// TelegramConfig holds Telegram bot related settings.
type TelegramConfig struct {
	Token   string `yaml:"token" envconfig:"BOT_TOKEN"`
	AdminID int64  `yaml:"admin_id" envconfig:"TELEGRAM_ADMIN_ID"`
	RunMode string `yaml:"run_mode" envconfig:"TELEGRAM_RUN_MODE"`
	// LongPollTimeoutSeconds defines long polling timeout; 0 -> default
	LongPollTimeoutSeconds int `yaml:"longpoll_timeout_seconds" envconfig:"TELEGRAM_LONGPOLL_TIMEOUT_SECONDS"`
}

// WebhookConfig specifies webhook settings.
type WebhookConfig struct {
	URL    string `yaml:"url" envconfig:"WEBHOOK_URL"`
	Listen string `yaml:"listen" envconfig:"WEBHOOK_LISTEN"`
	Port   int    `yaml:"port" envconfig:"WEBHOOK_PORT"`
}

// LoggingConfig defines logging related configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	// Profile indicates environment profile such as "debug" or "prod".
	Profile string `yaml:"profile"`
}

// RateLimitConfig holds settings for rate limiting.
type RateLimitConfig struct {
	IntervalMS     int      `yaml:"interval_ms" envconfig:"RATE_LIMIT_INTERVAL_MS"`
	ExcludeUpdates []string `yaml:"exclude_updates" envconfig:"RATE_LIMIT_EXCLUDE_UPDATES"`
}

// Topic maps a user-facing topic name to its tag slug.
type Topic struct {
	Name string `yaml:"name"`
	Slug string `yaml:"slug"`
}

// StickerPools groups celebration sticker file IDs by result tier.
type StickerPools struct {
	Perfect []string `yaml:"perfect"`
	Great   []string `yaml:"great"`
	Good    []string `yaml:"good"`
}

// QuizConfig controls the quiz session engine.
type QuizConfig struct {
	QuestionsPerQuiz int `yaml:"questions_per_quiz"`
	// ChoiceCount is the number of incorrect options offered in easy mode.
	ChoiceCount int `yaml:"choice_count"`
	// GreatThreshold is the minimal score for the "great" sticker tier.
	GreatThreshold int          `yaml:"great_threshold"`
	DefaultTag     string       `yaml:"default_tag"`
	Topics         []Topic      `yaml:"topics"`
	Stickers       StickerPools `yaml:"stickers"`
}

// NotificationsConfig controls the daily reminder scheduler.
type NotificationsConfig struct {
	Enabled  bool   `yaml:"enabled" envconfig:"NOTIFICATIONS_ENABLED"`
	Reminder string `yaml:"reminder"`
}

const (
	// RunModeWebhook selects webhook mode for Telegram updates.
	RunModeWebhook = "webhook"
	// RunModeLongpoll selects long-polling mode for Telegram updates.
	RunModeLongpoll = "longpoll"
)

const (
	// UpdateCallback identifies callback updates for rate limit exclusions.
	UpdateCallback = "callback"
	// UpdateMessage identifies message updates for rate limit exclusions.
	UpdateMessage = "message"
	// UpdateInlineQuery identifies inline query updates for rate limit exclusions.
	UpdateInlineQuery = "inline_query"
)

// Config aggregates the whole bot configuration.
type Config struct {
	Telegram      TelegramConfig      `yaml:"telegram"`
	Webhook       WebhookConfig       `yaml:"webhook"`
	Database      database.Config     `yaml:"database"`
	Logging       LoggingConfig       `yaml:"logging"`
	RateLimit     RateLimitConfig     `yaml:"rate_limit"`
	Quiz          QuizConfig          `yaml:"quiz"`
	Notifications NotificationsConfig `yaml:"notifications"`
}

// Load reads configuration from a YAML file and environment variables.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env: %w", err)
	}

	if err := Normalize(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Normalize performs basic validation of required configuration fields and adjusts defaults.
func Normalize(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("nil config")
	}

	if cfg.Telegram.Token == "" {
		return fmt.Errorf("telegram token is required")
	}

	rm := strings.ToLower(strings.TrimSpace(cfg.Telegram.RunMode))
	if rm == "" {
		rm = RunModeLongpoll
	}
	if rm == "polling" { // accept alias
		rm = RunModeLongpoll
	}
	switch rm {
	case RunModeWebhook:
		if strings.TrimSpace(cfg.Webhook.URL) == "" {
			return fmt.Errorf("webhook.url is required when telegram.run_mode is 'webhook'")
		}
		if strings.TrimSpace(cfg.Webhook.Listen) == "" {
			return fmt.Errorf("webhook.listen is required when telegram.run_mode is 'webhook'")
		}
		if cfg.Webhook.Port <= 0 {
			return fmt.Errorf("webhook.port must be > 0 when telegram.run_mode is 'webhook'")
		}
	case RunModeLongpoll:
		if cfg.Telegram.LongPollTimeoutSeconds < 0 {
			return fmt.Errorf("telegram.longpoll_timeout_seconds must be >= 0")
		}
	default:
		return fmt.Errorf("invalid telegram.run_mode %q; allowed: webhook, longpoll", cfg.Telegram.RunMode)
	}
	cfg.Telegram.RunMode = rm

	allowed := map[string]struct{}{
		UpdateCallback:    {},
		UpdateMessage:     {},
		UpdateInlineQuery: {},
	}
	for i, v := range cfg.RateLimit.ExcludeUpdates {
		key := strings.ToLower(strings.TrimSpace(v))
		if key == "" {
			continue
		}
		if _, ok := allowed[key]; !ok {
			return fmt.Errorf("invalid rate_limit.exclude_updates value %q; allowed: callback, message, inline_query", v)
		}
		cfg.RateLimit.ExcludeUpdates[i] = key
	}

	if err := normalizeQuiz(&cfg.Quiz); err != nil {
		return err
	}

	if cfg.Notifications.Reminder == "" {
		cfg.Notifications.Reminder = "Time to review some theory! Start a quiz to warm up."
	}

	return nil
}

func normalizeQuiz(q *QuizConfig) error {
	if q.QuestionsPerQuiz == 0 {
		q.QuestionsPerQuiz = 10
	}
	if q.QuestionsPerQuiz < 0 {
		return fmt.Errorf("quiz.questions_per_quiz must be > 0")
	}
	if q.ChoiceCount == 0 {
		q.ChoiceCount = 3
	}
	if q.ChoiceCount < 0 {
		return fmt.Errorf("quiz.choice_count must be > 0")
	}
	if q.GreatThreshold == 0 {
		q.GreatThreshold = 7
	}
	if q.GreatThreshold < 0 || q.GreatThreshold > q.QuestionsPerQuiz {
		return fmt.Errorf("quiz.great_threshold must be within 1..quiz.questions_per_quiz")
	}
	if q.DefaultTag == "" {
		q.DefaultTag = "func"
	}
	seen := make(map[string]struct{}, len(q.Topics))
	for _, t := range q.Topics {
		slug := strings.TrimSpace(t.Slug)
		if slug == "" || strings.TrimSpace(t.Name) == "" {
			return fmt.Errorf("quiz.topics entries require both name and slug")
		}
		if _, dup := seen[slug]; dup {
			return fmt.Errorf("duplicate quiz.topics slug %q", slug)
		}
		seen[slug] = struct{}{}
	}
	return nil
}
