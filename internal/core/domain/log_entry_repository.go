package domain

import (
	"context"
	"errors"
	"time"
)

var (
	ErrLogEntryNotFound = errors.New("log entry not found")
	ErrLogEntryConflict = errors.New("log entry version conflict")
)

type LogEntryRepository interface {
	// Put persists an entry, overwriting any existing active entry for
	// the same (habit, day) pair. The one-entry-per-day invariant lives
	// here, not in callers.
	Put(ctx context.Context, entry *LogEntry) error

	// Update modifies an existing entry by ID. Implementations must
	// handle optimistic locking (version check).
	Update(ctx context.Context, entry *LogEntry) error

	// Delete performs a soft delete. It requires userID to ensure the
	// caller actually owns the entry being deleted.
	Delete(ctx context.Context, id string, userID string) error

	// GetByID retrieves a single active entry by its ID.
	GetByID(ctx context.Context, id string) (*LogEntry, error)

	// ListByHabitID retrieves active entries for a habit within an
	// inclusive date range, most recent first.
	ListByHabitID(ctx context.Context, habitID string, from, to time.Time) ([]*LogEntry, error)

	// ListAllByHabitID retrieves the full active log of a habit; the
	// streak worker needs the unwindowed history.
	ListAllByHabitID(ctx context.Context, habitID string) ([]*LogEntry, error)

	// ListByUserIDAndDateRange retrieves all entries of a user across
	// habits for a date range, feeding the overview stats.
	ListByUserIDAndDateRange(ctx context.Context, userID string, from, to time.Time) ([]*LogEntry, error)
}
