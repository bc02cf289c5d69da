package stats

import (
	"math"
	"time"
)

// completionRate is the percentage of window days with a completed record,
// rounded to one decimal. An empty window yields 0, never NaN.
func completionRate(log DayLog, w Window) float64 {
	total := w.Days()
	if total == 0 {
		return 0
	}

	completed := 0
	for cursor := w.Start; !cursor.After(w.End); cursor = cursor.AddDate(0, 0, 1) {
		if rec, ok := log[dayKey(cursor)]; ok && rec.Completed {
			completed++
		}
	}

	return round1(float64(completed) / float64(total) * 100)
}

func completedOn(log DayLog, t time.Time) bool {
	rec, ok := log[dayKey(t)]
	return ok && rec.Completed
}

// weeklyPattern groups every window day by weekday name. Days without a
// record still count toward Total: a missed opportunity is part of the
// pattern, it just never counts as Completed.
func weeklyPattern(log DayLog, w Window) map[string]WeekdayCount {
	pattern := make(map[string]WeekdayCount, 7)

	for cursor := w.Start; !cursor.After(w.End); cursor = cursor.AddDate(0, 0, 1) {
		name := cursor.Weekday().String()
		wc := pattern[name]
		wc.Total++
		if rec, ok := log[dayKey(cursor)]; ok && rec.Completed {
			wc.Completed++
		}
		pattern[name] = wc
	}

	return pattern
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
