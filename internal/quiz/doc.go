// Package quiz implements the quiz session engine: it owns the per-user quiz
// lifecycle (question queue, current question, scoring, difficulty-dependent
// presentation, termination) on top of a question source, a session store,
// and an outbox it does not manage.
package quiz
