// Package stats computes habit statistics (streaks, completion rates,
// weekday patterns) over a daily completion log. Everything in here is
// pure: callers inject the reference date, nothing reads the system clock.
package stats

import "time"

const dayLayout = "2006-01-02"

// Record is one raw log record as handed over by the caller. Date may be
// a plain YYYY-MM-DD day or a full RFC3339 timestamp; anything else is
// dropped during normalization.
type Record struct {
	Date      string
	Completed bool
	Value     int
}

// WeekdayCount accumulates per-weekday totals. Total counts every calendar
// day of that weekday inside the window, Completed only the logged ones.
type WeekdayCount struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
}

// Stats is the immutable result of a single computation.
type Stats struct {
	WindowStart    string                  `json:"window_start"`
	WindowEnd      string                  `json:"window_end"`
	CurrentStreak  int                     `json:"current_streak"`
	LongestStreak  int                     `json:"longest_streak"`
	CompletionRate float64                 `json:"completion_rate"`
	CompletedToday bool                    `json:"completed_today"`
	WeeklyPattern  map[string]WeekdayCount `json:"weekly_pattern"`
	SkippedRecords int                     `json:"skipped_records,omitempty"`
}

// Window is an inclusive day range. A window whose Start is after its End
// is valid input and simply contains zero days.
type Window struct {
	Start time.Time
	End   time.Time
}

func NewWindow(start, end time.Time) Window {
	return Window{Start: day(start), End: day(end)}
}

// LastNDays returns the trailing n-day window ending at asOf (inclusive).
func LastNDays(asOf time.Time, n int) Window {
	end := day(asOf)
	if n < 1 {
		n = 1
	}
	return Window{Start: end.AddDate(0, 0, -(n - 1)), End: end}
}

// Days returns the number of calendar days in the window, 0 when inverted.
func (w Window) Days() int {
	if w.Start.After(w.End) {
		return 0
	}
	return int(w.End.Sub(w.Start).Hours()/24) + 1
}

func (w Window) contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// day truncates to UTC midnight, the canonical representation every
// computation below works with.
func day(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func dayKey(t time.Time) string {
	return day(t).Format(dayLayout)
}

// Compute runs the full pipeline: normalize the raw records, then derive
// streaks and aggregates for the given window. today is the reference date
// for "current streak" and "completed today". The function is total: any
// input, including an empty log or an inverted window, yields zero-valued
// stats rather than an error.
func Compute(records []Record, w Window, today time.Time) Stats {
	log, skipped := Normalize(records)

	s := Stats{
		WindowStart:    dayKey(w.Start),
		WindowEnd:      dayKey(w.End),
		CurrentStreak:  currentStreak(log, w, today),
		LongestStreak:  longestStreak(log, w),
		CompletionRate: completionRate(log, w),
		CompletedToday: completedOn(log, today),
		WeeklyPattern:  weeklyPattern(log, w),
		SkippedRecords: skipped,
	}

	if w.Days() == 0 {
		s.WindowStart = ""
		s.WindowEnd = ""
	}

	return s
}
