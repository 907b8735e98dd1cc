package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/codemasterbot/internal/config"
	"github.com/m3rciful/codemasterbot/internal/logger"
	"github.com/m3rciful/codemasterbot/internal/models"
	"github.com/m3rciful/codemasterbot/internal/quiz"
	"github.com/m3rciful/codemasterbot/internal/repository"
	"github.com/m3rciful/codemasterbot/internal/seed"
	"github.com/m3rciful/codemasterbot/internal/session"
)

// Reply-keyboard button labels.
const (
	actionMenu = "Menu"
	actionQuiz = "Quiz"
	actionDice = "Roll the dice"
)

// Callback uniques for menu and settings flows.
const (
	cbMenuConfig   = "menu_config"
	cbMenuInfo     = "menu_info"
	cbMenuRegister = "menu_register"
	cbCfgMode      = "cfg_mode"
	cbCfgTopic     = "cfg_topic"
	cbCfgNotify    = "cfg_notify"
	cbModePick     = "mode_pick"
	cbTopicPick    = "topic_pick"
	cbNotifyOn     = "notify_on"
	cbNotifyOff    = "notify_off"
	cbNotifyTime   = "notify_time"
)

// Handlers bundles the services behind the bot's commands and callbacks.
type Handlers struct {
	cfg       *config.Config
	engine    *quiz.Engine
	sessions  session.Manager
	users     *repository.UserRepo
	settings  *repository.SettingsRepo
	questions *repository.QuestionRepo
}

// NewHandlers wires handler dependencies.
func NewHandlers(
	cfg *config.Config,
	engine *quiz.Engine,
	sessions session.Manager,
	users *repository.UserRepo,
	settings *repository.SettingsRepo,
	questions *repository.QuestionRepo,
) *Handlers {
	return &Handlers{
		cfg:       cfg,
		engine:    engine,
		sessions:  sessions,
		users:     users,
		settings:  settings,
		questions: questions,
	}
}

// Register wires every command, reply action, and callback into the registry.
func (h *Handlers) Register(reg *Registry) {
	reg.RegisterCommand("/start", Command{Handler: h.Start, Description: "Show the main keyboard"})
	reg.RegisterCommand("/menu", Command{Handler: h.Menu, Description: "Open the bot menu"})
	reg.RegisterCommand("/quiz", Command{Handler: h.QuizStart, Description: "Start a quiz"})
	reg.RegisterCommand("/import", Command{Handler: h.ImportQuestions, Hidden: true, AdminOnly: true})

	reg.RegisterAction(actionMenu, h.Menu)
	reg.RegisterAction(actionQuiz, h.QuizStart)
	reg.RegisterAction(actionDice, h.RollDice)

	reg.RegisterCallback(cbQuizAnswer, h.QuizAnswer)
	reg.RegisterCallback(cbQuizEnd, h.QuizEnd)
	reg.RegisterCallback(cbMenuConfig, h.ConfigView)
	reg.RegisterCallback(cbMenuInfo, h.Info)
	reg.RegisterCallback(cbMenuRegister, h.RegisterUser)
	reg.RegisterCallback(cbCfgMode, h.ModeMenu)
	reg.RegisterCallback(cbCfgTopic, h.TopicMenu)
	reg.RegisterCallback(cbCfgNotify, h.NotifyMenu)
	reg.RegisterCallback(cbModePick, h.ModePick)
	reg.RegisterCallback(cbTopicPick, h.TopicPick)
	reg.RegisterCallback(cbNotifyOn, h.NotifyToggle)
	reg.RegisterCallback(cbNotifyOff, h.NotifyToggle)
	reg.RegisterCallback(cbNotifyTime, h.NotifyTimePrompt)

	reg.SetTextFallback(h.UnknownText)
}

// Start greets the user and shows the persistent reply keyboard.
func (h *Handlers) Start(c tele.Context) error {
	keyboard := ReplyButtons(
		[]string{actionMenu, actionQuiz},
		[]string{actionDice},
	)
	return c.Send(
		"Hi! 👋 I'm CodeMasterBot.\n\n"+
			"Ready to test your knowledge?\n"+
			"Hit \"Quiz\" and off we go! 🎉\n\n"+
			"To learn about the bot or tune it to your taste, open \"Menu\".",
		keyboard,
	)
}

// Menu shows the inline main menu.
func (h *Handlers) Menu(c tele.Context) error {
	return c.Send("Please choose:", h.menuKeyboard())
}

// RollDice sends an animated dice.
func (h *Handlers) RollDice(c tele.Context) error {
	return c.Send(tele.Cube)
}

// Info describes the bot.
func (h *Handlers) Info(c tele.Context) error {
	return c.EditOrSend(
		"CodeMasterBot quizzes you on programming functions.\n\n"+
			"Easy mode offers answer buttons; hard mode expects you to type the name. "+
			"Pick a topic and difficulty under \"Configure bot\".",
		h.menuKeyboard(),
	)
}

// QuizStart resolves the user's settings and launches a quiz session,
// replacing any session already in progress.
func (h *Handlers) QuizStart(c tele.Context) error {
	ctx := BuildContext(c)
	chatID := c.Sender().ID

	settings, hasPersonal := h.settings.Resolve(ctx, chatID)
	if !hasPersonal {
		if err := c.Send(
			"❗ You can tune the bot for yourself!\n\n" +
				"Use the menu button:\n" +
				"✨ \"Configure bot\" ✨\n\n" +
				"Configuring requires you to:\n" +
				"⚠️ \"Register\" ⚠️",
		); err != nil {
			return err
		}
	}

	err := h.engine.Start(ctx, chatID, settings.Difficulty(), settings.TagSlug())
	if errors.Is(err, quiz.ErrNoQuestions) {
		return c.Send(
			"Unfortunately this topic has no questions yet. 😔\n" +
				"Please pick another topic.",
		)
	}
	return err
}

// QuizAnswer handles a pressed answer button.
func (h *Handlers) QuizAnswer(c tele.Context) error {
	ctx := BuildContext(c)
	answer := CallbackPayload(c)

	err := h.engine.Submit(ctx, c.Sender().ID, answer)
	if errors.Is(err, quiz.ErrNoActiveQuestion) {
		return c.EditOrSend("Question not found.")
	}
	return err
}

// QuizEnd handles the end-quiz button.
func (h *Handlers) QuizEnd(c tele.Context) error {
	return h.engine.Cancel(BuildContext(c), c.Sender().ID)
}

// RegisterUser stores the Telegram user.
func (h *Handlers) RegisterUser(c tele.Context) error {
	ctx := BuildContext(c)
	sender := c.Sender()

	user, created, err := h.users.GetOrCreate(ctx, sender.ID, sender.Username)
	if err != nil {
		return err
	}
	if created {
		return c.Send("You are registered!")
	}
	name := user.Username.String
	if name == "" {
		name = fmt.Sprintf("User %d", user.TelegramID)
	}
	return c.Send(fmt.Sprintf("%s, you are already registered", name))
}

// ConfigView shows the stored settings with the configuration keyboard.
func (h *Handlers) ConfigView(c tele.Context) error {
	ctx := BuildContext(c)
	settings, hasPersonal := h.settings.Resolve(ctx, c.Sender().ID)

	text := "You have no saved settings yet."
	if hasPersonal {
		topic := h.topicName(settings.TagSlug())
		state := "OFF"
		if settings.Notification() {
			state = "ON"
		}
		text = fmt.Sprintf(
			"📌 Your settings\n\n"+
				"⚙️ Difficulty: %s\n"+
				"🎯 Topic: %s\n"+
				"🔔 Reminder: %s\n"+
				"⏰ Reminder time: %s\n\n"+
				"📢 Note: time is in UTC",
			settings.Difficulty(), topic, state, settings.NotificationTime(),
		)
	}
	return c.EditOrSend(text, h.configKeyboard())
}

// ModeMenu offers the difficulty choices.
func (h *Handlers) ModeMenu(c tele.Context) error {
	return c.EditOrSend("Choose difficulty:", InlineRows([]InlineBtn{
		{Text: "Easy", Unique: cbModePick, Data: string(models.DifficultyEasy)},
		{Text: "Hard", Unique: cbModePick, Data: string(models.DifficultyHard)},
	}))
}

// ModePick persists the chosen difficulty.
func (h *Handlers) ModePick(c tele.Context) error {
	ctx := BuildContext(c)
	mode := models.Difficulty(CallbackPayload(c))
	if !mode.Valid() {
		return c.EditOrSend("Unknown mode.")
	}

	record, err := h.settingsRecord(ctx, c)
	if err != nil || record == nil {
		return err
	}
	if err := h.settings.SetDifficulty(ctx, record.ID, mode); err != nil {
		return err
	}
	return c.EditOrSend(fmt.Sprintf("Quiz mode set to %s.", mode), h.configKeyboard())
}

// TopicMenu offers the configured topics.
func (h *Handlers) TopicMenu(c tele.Context) error {
	buttons := make([]InlineBtn, 0, len(h.cfg.Quiz.Topics))
	for _, t := range h.cfg.Quiz.Topics {
		buttons = append(buttons, InlineBtn{Text: t.Name, Unique: cbTopicPick, Data: t.Slug})
	}
	return c.EditOrSend("Choose a topic:", InlineColumn(buttons...))
}

// TopicPick persists the chosen topic tag.
func (h *Handlers) TopicPick(c tele.Context) error {
	ctx := BuildContext(c)
	slug := CallbackPayload(c)

	record, err := h.settingsRecord(ctx, c)
	if err != nil || record == nil {
		return err
	}

	tag, err := h.questions.TagBySlug(ctx, slug)
	if err != nil {
		logger.Warn(ctx, "tg", "topic.missing",
			slog.String("slug", slug),
			slog.String("err", err.Error()),
		)
		return c.EditOrSend(fmt.Sprintf("Topic %q is not in the database.", slug))
	}
	if err := h.settings.SetTag(ctx, record.ID, tag.ID); err != nil {
		return err
	}
	return h.ConfigView(c)
}

// NotifyMenu offers reminder controls.
func (h *Handlers) NotifyMenu(c tele.Context) error {
	return c.EditOrSend("Choose a setting:", InlineRows(
		[]InlineBtn{
			{Text: "ON", Unique: cbNotifyOn},
			{Text: "OFF", Unique: cbNotifyOff},
		},
		[]InlineBtn{{Text: "Set time", Unique: cbNotifyTime}},
	))
}

// NotifyToggle enables or disables daily reminders.
func (h *Handlers) NotifyToggle(c tele.Context) error {
	ctx := BuildContext(c)
	record, err := h.settingsRecord(ctx, c)
	if err != nil || record == nil {
		return err
	}

	key, _ := ParseCallbackData(c.Callback())
	enabled := key == cbNotifyOn
	if err := h.settings.SetNotification(ctx, record.ID, enabled); err != nil {
		return err
	}
	if enabled {
		return c.EditOrSend("🔔 Reminders enabled!", InlineColumn(
			InlineBtn{Text: "Set time", Unique: cbNotifyTime},
		))
	}
	return c.EditOrSend("🔕 Reminders disabled.")
}

// NotifyTimePrompt asks the user to type the reminder time.
func (h *Handlers) NotifyTimePrompt(c tele.Context) error {
	h.sessions.SetAwaitingNotificationTime(c.Sender().ID, true)
	return c.EditOrSend("Enter the reminder time as HH:MM (for example, 07:00):")
}

// NotifyTimeInput handles the typed reminder time.
func (h *Handlers) NotifyTimeInput(c tele.Context) error {
	ctx := BuildContext(c)
	chatID := c.Sender().ID
	defer h.sessions.SetAwaitingNotificationTime(chatID, false)

	record, err := h.settingsRecord(ctx, c)
	if err != nil || record == nil {
		return err
	}

	raw := strings.TrimSpace(c.Text())
	parsed, err := time.Parse("15:04", raw)
	if err != nil {
		return c.Send("Invalid time format. Enter the time as HH:MM (for example, 07:00).")
	}
	hhmm := parsed.Format("15:04")
	if err := h.settings.SetNotificationTime(ctx, record.ID, hhmm); err != nil {
		return err
	}
	return c.Send(fmt.Sprintf("Reminder time set to %s.", hhmm))
}

// ImportQuestions loads questions from a CSV file on the bot host. Admin
// only; the file path comes as the command payload.
func (h *Handlers) ImportQuestions(c tele.Context) error {
	ctx := BuildContext(c)

	path := strings.TrimSpace(c.Message().Payload)
	if path == "" {
		return c.Send("Usage: /import <path to CSV file>")
	}

	stats, err := seed.QuestionsFromFile(ctx, h.questions, path)
	if err != nil {
		return c.Send(fmt.Sprintf("Import failed: %v", err))
	}
	return c.Send(fmt.Sprintf(
		"Import finished: %d created, %d already existed, %d bad rows, %d unknown tags.",
		stats.Created, stats.Skipped, stats.BadRows, stats.UnknownTags,
	))
}

// UnknownText nudges the user towards the keyboard.
func (h *Handlers) UnknownText(c tele.Context) error {
	return c.Send("I did not get that. Use the keyboard below or /start.")
}

// settingsRecord resolves the registered user's settings row, creating it
// lazily. A nil record with nil error means the user is not registered and
// has already been told so.
func (h *Handlers) settingsRecord(ctx context.Context, c tele.Context) (*models.UserSettings, error) {
	user, err := h.users.ByTelegramID(ctx, c.Sender().ID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, c.Send("You are not registered.\nPlease register first.")
	}
	if err != nil {
		return nil, err
	}
	return h.settings.GetOrCreate(ctx, user.ID)
}

func (h *Handlers) menuKeyboard() *tele.ReplyMarkup {
	return InlineRows(
		[]InlineBtn{
			{Text: "Configure bot", Unique: cbMenuConfig},
			{Text: "About the bot", Unique: cbMenuInfo},
		},
		[]InlineBtn{{Text: "Register", Unique: cbMenuRegister}},
	)
}

func (h *Handlers) configKeyboard() *tele.ReplyMarkup {
	return InlineRows(
		[]InlineBtn{
			{Text: "Difficulty", Unique: cbCfgMode},
			{Text: "Topic", Unique: cbCfgTopic},
		},
		[]InlineBtn{{Text: "Configure reminders", Unique: cbCfgNotify}},
	)
}

// topicName resolves a tag slug to the configured display name.
func (h *Handlers) topicName(slug string) string {
	for _, t := range h.cfg.Quiz.Topics {
		if t.Slug == slug {
			return t.Name
		}
	}
	return slug
}
