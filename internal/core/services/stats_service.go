package services

import (
	"context"
	"log"

	"github.com/ritmoapp/ritmo/internal/core/domain"
	"github.com/ritmoapp/ritmo/internal/core/stats"
)

type StatsService struct {
	habitRepo domain.HabitRepository
	logRepo   domain.LogEntryRepository
}

func NewStatsService(habitRepo domain.HabitRepository, logRepo domain.LogEntryRepository) *StatsService {
	return &StatsService{
		habitRepo: habitRepo,
		logRepo:   logRepo,
	}
}

// GetHabitStats computes the statistics of a single habit over the
// requested window. The reference date comes from the input, never from
// the system clock, so results are reproducible.
func (s *StatsService) GetHabitStats(ctx context.Context, input domain.StatsInput) (*domain.HabitStats, error) {
	habit, err := s.habitRepo.GetByID(ctx, input.HabitID)
	if err != nil {
		return nil, err
	}
	if habit.UserID != input.UserID {
		return nil, domain.ErrHabitNotFound
	}

	entries, err := s.logRepo.ListByHabitID(ctx, input.HabitID, input.StartDate, input.EndDate)
	if err != nil {
		return nil, err
	}

	window := stats.NewWindow(input.StartDate, input.EndDate)
	computed := stats.Compute(toRecords(entries), window, input.AsOf)

	if computed.SkippedRecords > 0 {
		log.Printf("[STATS] habit %s: skipped %d log records with malformed dates", habit.ID, computed.SkippedRecords)
	}

	return &domain.HabitStats{
		HabitID:  habit.ID,
		Title:    habit.Title,
		Category: habit.Category,
		Color:    habit.Color,
		Icon:     habit.Icon,
		Unit:     habit.Unit,
		Stats:    computed,
	}, nil
}

// GetOverview computes stats for every habit of a user over one shared
// window, plus the overall completion rate across all of them.
func (s *StatsService) GetOverview(ctx context.Context, input domain.StatsInput) (*domain.Overview, error) {
	habits, err := s.habitRepo.ListByUserID(ctx, input.UserID)
	if err != nil {
		return nil, err
	}

	entries, err := s.logRepo.ListByUserIDAndDateRange(ctx, input.UserID, input.StartDate, input.EndDate)
	if err != nil {
		return nil, err
	}

	byHabit := make(map[string][]*domain.LogEntry)
	for _, e := range entries {
		byHabit[e.HabitID] = append(byHabit[e.HabitID], e)
	}

	window := stats.NewWindow(input.StartDate, input.EndDate)

	overview := &domain.Overview{
		StartDate:   input.StartDate.UTC().Format("2006-01-02"),
		EndDate:     input.EndDate.UTC().Format("2006-01-02"),
		TotalHabits: len(habits),
		Habits:      make([]domain.HabitStats, 0, len(habits)),
	}

	daysPossible := 0
	daysCompleted := 0

	for _, h := range habits {
		habitEntries := byHabit[h.ID]
		computed := stats.Compute(toRecords(habitEntries), window, input.AsOf)

		daysPossible += window.Days()
		daysCompleted += completedDays(habitEntries, window)

		overview.Habits = append(overview.Habits, domain.HabitStats{
			HabitID:  h.ID,
			Title:    h.Title,
			Category: h.Category,
			Color:    h.Color,
			Icon:     h.Icon,
			Unit:     h.Unit,
			Stats:    computed,
		})
	}

	if daysPossible > 0 {
		overview.OverallRate = float64(daysCompleted) / float64(daysPossible) * 100
	}

	return overview, nil
}

func toRecords(entries []*domain.LogEntry) []stats.Record {
	records := make([]stats.Record, 0, len(entries))
	for _, e := range entries {
		records = append(records, stats.Record{
			Date:      e.DayKey(),
			Completed: e.Completed,
			Value:     e.Value,
		})
	}
	return records
}

func completedDays(entries []*domain.LogEntry, w stats.Window) int {
	seen := make(map[string]bool)
	for _, e := range entries {
		day := domain.DayOf(e.LogDate)
		if !e.Completed || day.Before(w.Start) || day.After(w.End) {
			continue
		}
		seen[e.DayKey()] = true
	}
	return len(seen)
}
