package domain

import (
	"time"

	"github.com/ritmoapp/ritmo/internal/core/stats"
)

// HabitStats merges the computed statistics of one habit with the display
// metadata the habit owns. The stats payload is produced by the stats
// engine, everything else comes from the habit row.
type HabitStats struct {
	HabitID  string `json:"habit_id"`
	Title    string `json:"title"`
	Category string `json:"category,omitempty"`
	Color    string `json:"color"`
	Icon     string `json:"icon"`
	Unit     string `json:"unit,omitempty"`

	stats.Stats
}

// Overview aggregates stats across every habit of a user for one window.
type Overview struct {
	StartDate   string       `json:"start_date"`
	EndDate     string       `json:"end_date"`
	TotalHabits int          `json:"total_habits"`
	OverallRate float64      `json:"overall_completion_rate"`
	Habits      []HabitStats `json:"habits"`
}

// StatsInput carries the parameters of a stats request. AsOf is the
// injected "today": handlers default it to the current UTC day, tests pin
// it to a fixed date.
type StatsInput struct {
	UserID    string
	HabitID   string
	StartDate time.Time
	EndDate   time.Time
	AsOf      time.Time
}
