package domain

import (
	"context"
	"errors"
)

var (
	ErrHabitNotFound = errors.New("habit not found")
	ErrHabitConflict = errors.New("habit version conflict")
	ErrUnauthorized  = errors.New("unauthorized access")
)

type HabitRepository interface {
	// Create persists a new habit definition.
	Create(ctx context.Context, habit *Habit) error

	// GetByID retrieves an active (non-deleted) habit by its identifier.
	GetByID(ctx context.Context, id string) (*Habit, error)

	// ListByUserID retrieves all active habits of a user, sorted by
	// sort_order for stable dashboard rendering.
	ListByUserID(ctx context.Context, userID string) ([]*Habit, error)

	// Update modifies an existing habit. Implementations must enforce
	// optimistic locking on the version column.
	Update(ctx context.Context, habit *Habit) error

	// Delete soft-deletes a habit.
	Delete(ctx context.Context, id string) error

	// UpdateStreaks persists the denormalized streak counters without
	// bumping the version; only the streak worker calls this.
	UpdateStreaks(ctx context.Context, id string, current, longest int) error

	// ListActiveIDs returns the IDs of every active habit across users.
	// The nightly rollover walks this to refresh decayed streaks.
	ListActiveIDs(ctx context.Context) ([]string, error)
}
