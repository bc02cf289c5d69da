package workers

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ritmoapp/ritmo/internal/core/domain"
)

func entryOn(habitID string, daysAgo int, completed bool, now time.Time) *domain.LogEntry {
	return &domain.LogEntry{
		ID:        "e-" + habitID,
		HabitID:   habitID,
		UserID:    "user-1",
		LogDate:   domain.DayOf(now.AddDate(0, 0, -daysAgo)),
		Completed: completed,
	}
}

func TestComputeStreaks(t *testing.T) {
	now := time.Date(2025, 6, 15, 9, 0, 0, 0, time.UTC)

	entries := func(offsets ...int) []*domain.LogEntry {
		var out []*domain.LogEntry
		for _, off := range offsets {
			out = append(out, entryOn("h1", off, true, now))
		}
		return out
	}

	tests := []struct {
		name        string
		entries     []*domain.LogEntry
		wantCurrent int
		wantLongest int
	}{
		{
			name:        "Empty log",
			entries:     nil,
			wantCurrent: 0,
			wantLongest: 0,
		},
		{
			name:        "Single entry today",
			entries:     entries(0),
			wantCurrent: 1,
			wantLongest: 1,
		},
		{
			name:        "Single entry yesterday keeps streak alive",
			entries:     entries(1),
			wantCurrent: 1,
			wantLongest: 1,
		},
		{
			name:        "Single entry two days ago breaks streak",
			entries:     entries(2),
			wantCurrent: 0,
			wantLongest: 1,
		},
		{
			name:        "Longest run in the past",
			entries:     entries(0, 10, 11, 12),
			wantCurrent: 1,
			wantLongest: 3,
		},
		{
			name: "Incomplete day resets the run",
			entries: append(entries(0, 1, 3, 4),
				entryOn("h1", 2, false, now)),
			wantCurrent: 2,
			wantLongest: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotCurrent, gotLongest := computeStreaks(tt.entries, now)
			assert.Equal(t, tt.wantCurrent, gotCurrent, "current streak mismatch")
			assert.Equal(t, tt.wantLongest, gotLongest, "longest streak mismatch")
		})
	}
}

type fakeHabitRepo struct {
	habit    *domain.Habit
	current  int
	longest  int
	updated  bool
	getErr   error
	writeErr error
}

func (f *fakeHabitRepo) GetByID(ctx context.Context, id string) (*domain.Habit, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.habit, nil
}

func (f *fakeHabitRepo) UpdateStreaks(ctx context.Context, id string, current, longest int) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	f.updated = true
	f.current = current
	f.longest = longest
	return nil
}

type fakeLogRepo struct {
	entries []*domain.LogEntry
}

func (f *fakeLogRepo) ListAllByHabitID(ctx context.Context, habitID string) ([]*domain.LogEntry, error) {
	return f.entries, nil
}

func TestStreakWorker_ProcessJob(t *testing.T) {
	now := time.Now().UTC()

	t.Run("Persists changed streaks", func(t *testing.T) {
		habits := &fakeHabitRepo{habit: &domain.Habit{ID: "h1", Title: "Run"}}
		logs := &fakeLogRepo{entries: []*domain.LogEntry{
			entryOn("h1", 0, true, now),
			entryOn("h1", 1, true, now),
		}}

		w := NewStreakWorker(habits, logs)
		w.processJob(context.Background(), StreakJob{HabitID: "h1"})

		require.True(t, habits.updated)
		assert.Equal(t, 2, habits.current)
		assert.Equal(t, 2, habits.longest)
	})

	t.Run("Skips write when streaks unchanged", func(t *testing.T) {
		habits := &fakeHabitRepo{habit: &domain.Habit{ID: "h1", CurrentStreak: 1, LongestStreak: 1}}
		logs := &fakeLogRepo{entries: []*domain.LogEntry{entryOn("h1", 0, true, now)}}

		w := NewStreakWorker(habits, logs)
		w.processJob(context.Background(), StreakJob{HabitID: "h1"})

		assert.False(t, habits.updated)
	})
}

func TestStreakWorker_EnqueueFullQueueDoesNotBlock(t *testing.T) {
	w := NewStreakWorker(&fakeHabitRepo{}, &fakeLogRepo{})

	done := make(chan struct{})
	go func() {
		for i := 0; i < 250; i++ {
			w.Enqueue("h1")
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Enqueue blocked on a full queue")
	}
}
