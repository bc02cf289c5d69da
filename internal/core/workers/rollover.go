package workers

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

type HabitLister interface {
	ListActiveIDs(ctx context.Context) ([]string, error)
}

// RolloverScheduler refreshes every habit's streaks at midnight UTC.
// Current streaks decay when a day passes without a log, which no write
// path observes, so the recomputation has to be time-driven.
type RolloverScheduler struct {
	habits HabitLister
	queue  StreakQueue
	cron   *cron.Cron
}

type StreakQueue interface {
	Enqueue(habitID string)
}

func NewRolloverScheduler(habits HabitLister, queue StreakQueue) *RolloverScheduler {
	return &RolloverScheduler{
		habits: habits,
		queue:  queue,
		cron:   cron.New(cron.WithLocation(time.UTC)),
	}
}

func (s *RolloverScheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc("0 0 * * *", func() {
		s.runOnce(ctx)
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	log.Println("Rollover scheduler started (daily at 00:00 UTC)")

	go func() {
		<-ctx.Done()
		s.cron.Stop()
		log.Println("Rollover scheduler stopped")
	}()

	return nil
}

func (s *RolloverScheduler) runOnce(ctx context.Context) {
	ids, err := s.habits.ListActiveIDs(ctx)
	if err != nil {
		log.Printf("Rollover: failed to list habits: %v", err)
		return
	}

	for _, id := range ids {
		s.queue.Enqueue(id)
	}

	log.Printf("Rollover: enqueued %d habits for streak refresh", len(ids))
}
