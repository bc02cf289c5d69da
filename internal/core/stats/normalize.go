package stats

import "time"

// DayLog maps canonical YYYY-MM-DD keys to the record logged for that day.
type DayLog map[string]Record

// dateLayouts are tried in order when parsing a record date. Clients send
// plain days, sync payloads tend to carry full timestamps.
var dateLayouts = []string{
	dayLayout,
	time.RFC3339,
	"2006-01-02T15:04:05",
}

// Normalize collapses raw records into one record per calendar day. When
// two records fall on the same day the later one in input order wins.
// Records with unparseable dates are dropped and counted, never fatal.
// The returned map holds no reference to the input slice.
func Normalize(records []Record) (DayLog, int) {
	log := make(DayLog, len(records))
	skipped := 0

	for _, rec := range records {
		t, ok := parseDay(rec.Date)
		if !ok {
			skipped++
			continue
		}
		key := dayKey(t)
		rec.Date = key
		log[key] = rec
	}

	return log, skipped
}

func parseDay(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
