package telegram

import (
	"strings"

	tele "gopkg.in/telebot.v4"
)

// Router dispatches text messages and callback queries to registry handlers.
type Router struct {
	registry *Registry
	handlers *Handlers
}

// NewRouter binds a registry and handler set.
func NewRouter(reg *Registry, h *Handlers) *Router {
	return &Router{registry: reg, handlers: h}
}

// OnText routes plain text. An in-flight hard-mode question takes priority,
// then a pending reminder-time prompt, then reply-keyboard actions.
func (r *Router) OnText(c tele.Context) error {
	chatID := c.Sender().ID

	if r.handlers.engine.AwaitingAnswer(chatID) {
		return r.handlers.engine.Submit(BuildContext(c), chatID, strings.TrimSpace(c.Text()))
	}
	if r.handlers.sessions.AwaitingNotificationTime(chatID) {
		return r.handlers.NotifyTimeInput(c)
	}
	if h, ok := r.registry.LookupAction(c.Text()); ok {
		return h(c)
	}
	return r.registry.TextFallback()(c)
}

// OnCallback routes callback queries by their unique key and always answers
// the query so the client stops its spinner.
func (r *Router) OnCallback(c tele.Context) error {
	defer func() { _ = c.Respond() }()

	key, _ := ParseCallbackData(c.Callback())
	if h, ok := r.registry.GetCallback(key); ok {
		return h(c)
	}
	return r.registry.CallbackNotFound()(c)
}
