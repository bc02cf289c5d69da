package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ritmoapp/ritmo/internal/core/domain"
)

func TestNewLogEntry(t *testing.T) {
	ts := time.Date(2025, 6, 15, 22, 45, 12, 0, time.FixedZone("CEST", 2*3600))

	e := domain.NewLogEntry("habit-1", "user-1", ts, true, 30)

	// 22:45 +02:00 is 20:45 UTC, still June 15th.
	assert.Equal(t, time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC), e.LogDate)
	assert.Equal(t, "2025-06-15", e.DayKey())
	assert.True(t, e.Completed)
	assert.Equal(t, 30, e.Value)
	assert.Equal(t, 1, e.Version)
}

func TestLogEntry_Validate(t *testing.T) {
	valid := func() *domain.LogEntry {
		return domain.NewLogEntry("habit-1", "user-1", time.Now(), true, 1)
	}

	t.Run("Valid entry", func(t *testing.T) {
		require.NoError(t, valid().Validate())
	})

	t.Run("Missing habit id", func(t *testing.T) {
		e := valid()
		e.HabitID = "  "
		assert.Error(t, e.Validate())
	})

	t.Run("Missing user id", func(t *testing.T) {
		e := valid()
		e.UserID = ""
		assert.Error(t, e.Validate())
	})

	t.Run("Negative value", func(t *testing.T) {
		e := valid()
		e.Value = -1
		assert.Error(t, e.Validate())
	})

	t.Run("Zero date", func(t *testing.T) {
		e := valid()
		e.LogDate = time.Time{}
		assert.Error(t, e.Validate())
	})
}

func TestDayOf(t *testing.T) {
	late := time.Date(2025, 6, 15, 23, 59, 59, 0, time.UTC)
	assert.Equal(t, time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC), domain.DayOf(late))

	// A local evening past UTC midnight lands on the next UTC day.
	tokyo := time.Date(2025, 6, 15, 5, 0, 0, 0, time.FixedZone("JST", 9*3600))
	assert.Equal(t, time.Date(2025, 6, 14, 0, 0, 0, 0, time.UTC), domain.DayOf(tokyo))
}
