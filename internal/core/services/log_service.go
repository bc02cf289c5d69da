package services

import (
	"context"
	"time"

	"github.com/ritmoapp/ritmo/internal/core/domain"
)

// StreakQueue is the slice of the streak worker the log service needs:
// fire-and-forget recomputation requests after every write.
type StreakQueue interface {
	Enqueue(habitID string)
}

type LogService struct {
	repo      domain.LogEntryRepository
	habitRepo domain.HabitRepository
	queue     StreakQueue
}

func NewLogService(repo domain.LogEntryRepository, habitRepo domain.HabitRepository, queue StreakQueue) *LogService {
	return &LogService{
		repo:      repo,
		habitRepo: habitRepo,
		queue:     queue,
	}
}

type LogInput struct {
	HabitID   string
	UserID    string
	Date      time.Time
	Completed bool
	Value     int
	Notes     string
}

type UpdateLogInput struct {
	ID        string
	UserID    string
	Completed bool
	Value     int
	Notes     string
	Version   int
}

// Log records (or overwrites) the entry for one habit and day. For numeric
// habits the completed flag is server-owned: a day counts as done when the
// logged value reaches the habit target.
func (s *LogService) Log(ctx context.Context, input LogInput) (*domain.LogEntry, error) {
	habit, err := s.habitRepo.GetByID(ctx, input.HabitID)
	if err != nil {
		return nil, err
	}
	if habit.UserID != input.UserID {
		return nil, domain.ErrUnauthorized
	}
	if habit.ArchivedAt != nil {
		return nil, domain.ErrHabitArchived
	}

	completed := input.Completed
	if habit.Type == domain.HabitTypeNumeric {
		completed = input.Value >= habit.TargetValue
	}

	entry := domain.NewLogEntry(input.HabitID, input.UserID, input.Date, completed, input.Value)
	entry.Notes = input.Notes

	if err := entry.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.Put(ctx, entry); err != nil {
		return nil, err
	}

	s.queue.Enqueue(entry.HabitID)

	return entry, nil
}

func (s *LogService) Update(ctx context.Context, input UpdateLogInput) (*domain.LogEntry, error) {
	existing, err := s.GetByID(ctx, input.ID, input.UserID)
	if err != nil {
		return nil, err
	}

	if input.Version > 0 && existing.Version != input.Version {
		return nil, domain.ErrLogEntryConflict
	}

	habit, err := s.habitRepo.GetByID(ctx, existing.HabitID)
	if err != nil {
		return nil, err
	}

	existing.Value = input.Value
	existing.Notes = input.Notes
	existing.Completed = input.Completed
	if habit.Type == domain.HabitTypeNumeric {
		existing.Completed = input.Value >= habit.TargetValue
	}

	existing.Version++
	existing.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, existing); err != nil {
		return nil, err
	}

	s.queue.Enqueue(existing.HabitID)

	return existing, nil
}

func (s *LogService) GetByID(ctx context.Context, id string, userID string) (*domain.LogEntry, error) {
	entry, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if entry.UserID != userID {
		return nil, domain.ErrUnauthorized
	}
	return entry, nil
}

func (s *LogService) ListByHabitID(ctx context.Context, habitID string, userID string, from, to time.Time) ([]*domain.LogEntry, error) {
	habit, err := s.habitRepo.GetByID(ctx, habitID)
	if err != nil {
		return nil, err
	}
	if habit.UserID != userID {
		return nil, domain.ErrUnauthorized
	}

	return s.repo.ListByHabitID(ctx, habitID, from, to)
}

func (s *LogService) Delete(ctx context.Context, id string, userID string) error {
	entry, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if entry.UserID != userID {
		return domain.ErrUnauthorized
	}

	habitID := entry.HabitID

	if err := s.repo.Delete(ctx, id, userID); err != nil {
		return err
	}

	s.queue.Enqueue(habitID)

	return nil
}
