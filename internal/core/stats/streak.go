package stats

import "time"

// currentStreak counts consecutive completed days ending at today, walking
// backward until the first missing or incomplete day, or past the window
// start. A day with no record at all for today does not break the streak:
// the user simply has not acted yet, so counting starts at yesterday. An
// explicit completed=false record for today does break it.
func currentStreak(log DayLog, w Window, today time.Time) int {
	if w.Days() == 0 {
		return 0
	}

	cursor := day(today)

	rec, ok := log[dayKey(cursor)]
	switch {
	case !ok:
		cursor = cursor.AddDate(0, 0, -1)
	case !rec.Completed:
		return 0
	}

	streak := 0
	for !cursor.Before(w.Start) {
		rec, ok := log[dayKey(cursor)]
		if !ok || !rec.Completed {
			break
		}
		streak++
		cursor = cursor.AddDate(0, 0, -1)
	}

	return streak
}

// longestStreak scans the window chronologically keeping a running count of
// consecutive completed days and retains the maximum. Missing days reset
// the run like incomplete ones.
func longestStreak(log DayLog, w Window) int {
	longest := 0
	run := 0

	for cursor := w.Start; !cursor.After(w.End); cursor = cursor.AddDate(0, 0, 1) {
		rec, ok := log[dayKey(cursor)]
		if ok && rec.Completed {
			run++
			if run > longest {
				longest = run
			}
		} else {
			run = 0
		}
	}

	return longest
}
