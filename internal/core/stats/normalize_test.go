package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	t.Run("Later record for the same day wins", func(t *testing.T) {
		records := []Record{
			{Date: "2025-06-10", Completed: false, Value: 5},
			{Date: "2025-06-11", Completed: true},
			{Date: "2025-06-10T18:45:00Z", Completed: true, Value: 20},
		}

		log, skipped := Normalize(records)

		assert.Zero(t, skipped)
		require.Len(t, log, 2)

		rec, ok := log["2025-06-10"]
		require.True(t, ok)
		assert.True(t, rec.Completed)
		assert.Equal(t, 20, rec.Value)
		assert.Equal(t, "2025-06-10", rec.Date)
	})

	t.Run("Malformed dates are skipped and counted", func(t *testing.T) {
		records := []Record{
			{Date: "2025-06-10", Completed: true},
			{Date: "10/06/2025", Completed: true},
			{Date: "", Completed: true},
			{Date: "not-a-date", Completed: true},
		}

		log, skipped := Normalize(records)

		assert.Equal(t, 3, skipped)
		assert.Len(t, log, 1)
	})

	t.Run("RFC3339 timestamps collapse to their UTC day", func(t *testing.T) {
		records := []Record{
			{Date: "2025-06-10T23:30:00+02:00", Completed: true},
		}

		log, skipped := Normalize(records)

		assert.Zero(t, skipped)
		_, ok := log["2025-06-10"]
		assert.True(t, ok, "expected the +02:00 evening entry keyed by its UTC day")
	})

	t.Run("Empty input yields empty map", func(t *testing.T) {
		log, skipped := Normalize(nil)
		assert.Zero(t, skipped)
		assert.Empty(t, log)
	})
}
