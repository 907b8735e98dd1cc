// Package session provides the in-memory per-user conversation state for the
// bot: the active quiz and transient input-mode flags. Correctness relies on
// the dispatch layer processing at most one update per chat at a time; the
// store itself is mutex-guarded because the notifier goroutine shares the
// process.
package session
