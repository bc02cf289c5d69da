package workers

import (
	"context"
	"log"
	"time"

	"github.com/ritmoapp/ritmo/internal/core/domain"
	"github.com/ritmoapp/ritmo/internal/core/stats"
)

type HabitRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Habit, error)
	UpdateStreaks(ctx context.Context, id string, current, longest int) error
}

type LogRepository interface {
	ListAllByHabitID(ctx context.Context, habitID string) ([]*domain.LogEntry, error)
}

type StreakJob struct {
	HabitID string
}

// StreakWorker recomputes the denormalized streak counters of a habit in
// the background. Write paths enqueue jobs; the actual math is delegated
// to the stats engine over the habit's full log.
type StreakWorker struct {
	habitRepo HabitRepository
	logRepo   LogRepository
	jobs      chan StreakJob
}

func NewStreakWorker(hRepo HabitRepository, lRepo LogRepository) *StreakWorker {
	return &StreakWorker{
		habitRepo: hRepo,
		logRepo:   lRepo,
		jobs:      make(chan StreakJob, 100),
	}
}

func (w *StreakWorker) Start(ctx context.Context) {
	go func() {
		log.Println("Streak worker started in background...")
		for {
			select {
			case job := <-w.jobs:
				w.processJob(ctx, job)
			case <-ctx.Done():
				log.Println("Streak worker shutting down...")
				return
			}
		}
	}()
}

func (w *StreakWorker) Enqueue(habitID string) {
	select {
	case w.jobs <- StreakJob{HabitID: habitID}:
	default:
		log.Printf("Streak worker queue full! Dropping job for habit %s", habitID)
	}
}

func (w *StreakWorker) processJob(ctx context.Context, job StreakJob) {
	habit, err := w.habitRepo.GetByID(ctx, job.HabitID)
	if err != nil {
		log.Printf("Worker error fetching habit %s: %v", job.HabitID, err)
		return
	}

	entries, err := w.logRepo.ListAllByHabitID(ctx, job.HabitID)
	if err != nil {
		log.Printf("Worker error fetching log for %s: %v", job.HabitID, err)
		return
	}

	current, longest := computeStreaks(entries, time.Now().UTC())

	if habit.CurrentStreak != current || habit.LongestStreak != longest {
		if err := w.habitRepo.UpdateStreaks(ctx, habit.ID, current, longest); err != nil {
			log.Printf("Worker failed to update streaks for %s: %v", habit.ID, err)
		} else {
			log.Printf("Streaks updated for %q: current=%d, longest=%d", habit.Title, current, longest)
		}
	}
}

// computeStreaks runs the stats engine over the complete log. The window
// spans from the oldest entry to the reference day so the longest streak
// accounts for the entire history.
func computeStreaks(entries []*domain.LogEntry, now time.Time) (int, int) {
	if len(entries) == 0 {
		return 0, 0
	}

	records := make([]stats.Record, 0, len(entries))
	oldest := domain.DayOf(now)

	for _, e := range entries {
		day := domain.DayOf(e.LogDate)
		if day.Before(oldest) {
			oldest = day
		}
		records = append(records, stats.Record{
			Date:      e.DayKey(),
			Completed: e.Completed,
			Value:     e.Value,
		})
	}

	computed := stats.Compute(records, stats.NewWindow(oldest, now), now)

	return computed.CurrentStreak, computed.LongestStreak
}
