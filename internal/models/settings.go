package models

// Settings is the common accessor surface over persisted user settings and
// the hard-coded defaults used when no record exists or the stored record is
// malformed.
type Settings interface {
	Difficulty() Difficulty
	TagSlug() string
	Notification() bool
	NotificationTime() string
	// Persisted reports whether the values come from a stored record.
	Persisted() bool
}

// DefaultSettings carries the fallback preferences applied to users without a
// settings record.
type DefaultSettings struct {
	DefaultTagSlug string
}

// Difficulty returns the default presentation mode.
func (DefaultSettings) Difficulty() Difficulty { return DifficultyEasy }

// TagSlug returns the configured default topic slug.
func (d DefaultSettings) TagSlug() string { return d.DefaultTagSlug }

// Notification is always off for defaults.
func (DefaultSettings) Notification() bool { return false }

// NotificationTime returns the default reminder time.
func (DefaultSettings) NotificationTime() string { return "12:00" }

// Persisted reports that these values are not backed by a record.
func (DefaultSettings) Persisted() bool { return false }

// PersistedSettings wraps a stored UserSettings row. Missing or malformed
// fields fall back to the provided defaults.
type PersistedSettings struct {
	Record   UserSettings
	Defaults DefaultSettings
}

// Difficulty returns the stored presentation mode, or the default when the
// stored value is not a known mode.
func (p PersistedSettings) Difficulty() Difficulty {
	if p.Record.Difficulty.Valid() {
		return p.Record.Difficulty
	}
	return p.Defaults.Difficulty()
}

// TagSlug returns the stored topic slug, or the default topic when no tag is set.
func (p PersistedSettings) TagSlug() string {
	if p.Record.TagSlug.Valid && p.Record.TagSlug.String != "" {
		return p.Record.TagSlug.String
	}
	return p.Defaults.TagSlug()
}

// Notification reports whether daily reminders are enabled.
func (p PersistedSettings) Notification() bool { return p.Record.Notification }

// NotificationTime returns the stored reminder time in HH:MM.
func (p PersistedSettings) NotificationTime() string {
	if p.Record.NotificationTime != "" {
		return p.Record.NotificationTime
	}
	return p.Defaults.NotificationTime()
}

// Persisted reports that these values are backed by a record.
func (PersistedSettings) Persisted() bool { return true }
