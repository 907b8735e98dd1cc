package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Telegram: TelegramConfig{Token: "123:abc"},
	}
}

func TestNormalizeAppliesDefaults(t *testing.T) {
	cfg := validConfig()
	require.NoError(t, Normalize(cfg))

	assert.Equal(t, RunModeLongpoll, cfg.Telegram.RunMode)
	assert.Equal(t, 10, cfg.Quiz.QuestionsPerQuiz)
	assert.Equal(t, 3, cfg.Quiz.ChoiceCount)
	assert.Equal(t, 7, cfg.Quiz.GreatThreshold)
	assert.Equal(t, "func", cfg.Quiz.DefaultTag)
	assert.NotEmpty(t, cfg.Notifications.Reminder)
}

func TestNormalizeRequiresToken(t *testing.T) {
	err := Normalize(&Config{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "token")
}

func TestNormalizeAcceptsPollingAlias(t *testing.T) {
	cfg := validConfig()
	cfg.Telegram.RunMode = "Polling"
	require.NoError(t, Normalize(cfg))
	assert.Equal(t, RunModeLongpoll, cfg.Telegram.RunMode)
}

func TestNormalizeRejectsUnknownRunMode(t *testing.T) {
	cfg := validConfig()
	cfg.Telegram.RunMode = "carrier-pigeon"
	require.Error(t, Normalize(cfg))
}

func TestNormalizeWebhookRequiresEndpoint(t *testing.T) {
	cfg := validConfig()
	cfg.Telegram.RunMode = RunModeWebhook

	require.Error(t, Normalize(cfg))

	cfg.Webhook = WebhookConfig{URL: "https://bot.example.com", Listen: "0.0.0.0", Port: 8443}
	require.NoError(t, Normalize(cfg))
}

func TestNormalizeRateLimitExclusions(t *testing.T) {
	cfg := validConfig()
	cfg.RateLimit.ExcludeUpdates = []string{" Callback ", "message"}
	require.NoError(t, Normalize(cfg))
	assert.Equal(t, []string{"callback", "message"}, cfg.RateLimit.ExcludeUpdates)

	cfg = validConfig()
	cfg.RateLimit.ExcludeUpdates = []string{"sticker"}
	require.Error(t, Normalize(cfg))
}

func TestNormalizeRejectsThresholdAboveDrawSize(t *testing.T) {
	cfg := validConfig()
	cfg.Quiz.QuestionsPerQuiz = 5
	cfg.Quiz.GreatThreshold = 9
	require.Error(t, Normalize(cfg))
}

func TestNormalizeRejectsDuplicateTopicSlugs(t *testing.T) {
	cfg := validConfig()
	cfg.Quiz.Topics = []Topic{
		{Name: "Functions", Slug: "func"},
		{Name: "Also functions", Slug: "func"},
	}
	require.Error(t, Normalize(cfg))
}

func TestNormalizeRejectsTopicWithoutSlug(t *testing.T) {
	cfg := validConfig()
	cfg.Quiz.Topics = []Topic{{Name: "Functions"}}
	require.Error(t, Normalize(cfg))
}

func TestLoadReadsYAMLAndEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	payload := `
telegram:
  token: from-file
  run_mode: longpoll
quiz:
  questions_per_quiz: 5
  great_threshold: 4
  topics:
    - name: Functions
      slug: func
`
	require.NoError(t, os.WriteFile(path, []byte(payload), 0o600))
	t.Setenv("BOT_TOKEN", "from-env")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Telegram.Token)
	assert.Equal(t, 5, cfg.Quiz.QuestionsPerQuiz)
	assert.Equal(t, 4, cfg.Quiz.GreatThreshold)
	require.Len(t, cfg.Quiz.Topics, 1)
	assert.Equal(t, "func", cfg.Quiz.Topics[0].Slug)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}
