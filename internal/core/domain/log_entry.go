package domain

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrInvalidLogEntry = errors.New("invalid log entry data")
)

// LogEntry records what happened for one habit on one calendar day. There
// is at most one active entry per (habit, day): logging the same day twice
// overwrites the previous entry.
type LogEntry struct {
	ID      string `json:"id" db:"id"`
	HabitID string `json:"habit_id" db:"habit_id"`
	UserID  string `json:"user_id" db:"user_id"`

	LogDate   time.Time `json:"log_date" db:"log_date"`
	Completed bool      `json:"completed" db:"completed"`
	Value     int       `json:"value" db:"value"`
	Notes     string    `json:"notes" db:"notes"`

	Version   int        `json:"version" db:"version"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`
}

func NewLogEntry(habitID, userID string, date time.Time, completed bool, value int) *LogEntry {
	now := time.Now().UTC()

	return &LogEntry{
		HabitID:   habitID,
		UserID:    userID,
		LogDate:   DayOf(date),
		Completed: completed,
		Value:     value,

		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (e *LogEntry) Validate() error {
	if strings.TrimSpace(e.HabitID) == "" {
		return errors.New("habit_id is required")
	}
	if strings.TrimSpace(e.UserID) == "" {
		return errors.New("user_id is required")
	}
	if e.Value < 0 {
		return errors.New("value cannot be negative")
	}
	if e.LogDate.IsZero() {
		return errors.New("log_date is required")
	}
	return nil
}

// DayKey returns the canonical YYYY-MM-DD key for the entry's day.
func (e *LogEntry) DayKey() string {
	return e.LogDate.UTC().Format("2006-01-02")
}

// DayOf truncates a timestamp to UTC midnight. Entries are keyed by day,
// the time-of-day component never survives past this boundary.
func DayOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
