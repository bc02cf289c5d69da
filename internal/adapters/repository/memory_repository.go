package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ritmoapp/ritmo/internal/core/domain"
)

var (
	_ domain.HabitRepository    = (*InMemoryHabitRepository)(nil)
	_ domain.LogEntryRepository = (*InMemoryLogEntryRepository)(nil)
	_ domain.UserRepository     = (*InMemoryUserRepository)(nil)
)

// The in-memory repositories store copies, never caller pointers, so
// they exhibit the same aliasing behavior as a real database.
type InMemoryHabitRepository struct {
	store map[string]*domain.Habit

	mu sync.RWMutex
}

func NewInMemoryHabitRepository() *InMemoryHabitRepository {
	return &InMemoryHabitRepository{
		store: make(map[string]*domain.Habit),
	}
}

func (r *InMemoryHabitRepository) Create(ctx context.Context, habit *domain.Habit) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *habit
	r.store[habit.ID] = &stored
	return nil
}

func (r *InMemoryHabitRepository) GetByID(ctx context.Context, id string) (*domain.Habit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	habit, ok := r.store[id]
	if !ok {
		return nil, domain.ErrHabitNotFound
	}
	copied := *habit
	return &copied, nil
}

func (r *InMemoryHabitRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.Habit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	habits := []*domain.Habit{}
	for _, h := range r.store {
		if h.UserID == userID {
			copied := *h
			habits = append(habits, &copied)
		}
	}

	sort.Slice(habits, func(i, j int) bool {
		return habits[i].SortOrder < habits[j].SortOrder
	})

	return habits, nil
}

func (r *InMemoryHabitRepository) Update(ctx context.Context, habit *domain.Habit) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.store[habit.ID]
	if !ok {
		return domain.ErrHabitNotFound
	}
	if current.Version != habit.Version {
		return domain.ErrHabitConflict
	}

	habit.Version++
	habit.UpdatedAt = time.Now().UTC()

	stored := *habit
	r.store[habit.ID] = &stored
	return nil
}

func (r *InMemoryHabitRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.store[id]; !ok {
		return domain.ErrHabitNotFound
	}

	delete(r.store, id)
	return nil
}

func (r *InMemoryHabitRepository) UpdateStreaks(ctx context.Context, id string, current, longest int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	habit, ok := r.store[id]
	if !ok {
		return domain.ErrHabitNotFound
	}

	habit.CurrentStreak = current
	habit.LongestStreak = longest
	return nil
}

func (r *InMemoryHabitRepository) ListActiveIDs(ctx context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := []string{}
	for _, h := range r.store {
		if h.ArchivedAt == nil {
			ids = append(ids, h.ID)
		}
	}
	return ids, nil
}

type InMemoryLogEntryRepository struct {
	store map[string]*domain.LogEntry

	mu sync.RWMutex
}

func NewInMemoryLogEntryRepository() *InMemoryLogEntryRepository {
	return &InMemoryLogEntryRepository{
		store: make(map[string]*domain.LogEntry),
	}
}

func (r *InMemoryLogEntryRepository) Put(ctx context.Context, entry *domain.LogEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Upsert by (habit, day): a second log for the same day replaces
	// the first in place, keeping the original id.
	for _, e := range r.store {
		if e.HabitID == entry.HabitID && e.DayKey() == entry.DayKey() {
			entry.ID = e.ID
			entry.Version = e.Version + 1

			stored := *entry
			r.store[e.ID] = &stored
			return nil
		}
	}

	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}

	stored := *entry
	r.store[entry.ID] = &stored
	return nil
}

func (r *InMemoryLogEntryRepository) GetByID(ctx context.Context, id string) (*domain.LogEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.store[id]
	if !ok {
		return nil, domain.ErrLogEntryNotFound
	}
	copied := *entry
	return &copied, nil
}

func (r *InMemoryLogEntryRepository) ListByHabitID(ctx context.Context, habitID string, from, to time.Time) ([]*domain.LogEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := []*domain.LogEntry{}
	for _, e := range r.store {
		if e.HabitID == habitID && !e.LogDate.Before(from) && !e.LogDate.After(to) {
			copied := *e
			entries = append(entries, &copied)
		}
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].LogDate.After(entries[j].LogDate)
	})

	return entries, nil
}

func (r *InMemoryLogEntryRepository) ListAllByHabitID(ctx context.Context, habitID string) ([]*domain.LogEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := []*domain.LogEntry{}
	for _, e := range r.store {
		if e.HabitID == habitID {
			copied := *e
			entries = append(entries, &copied)
		}
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].LogDate.After(entries[j].LogDate)
	})

	return entries, nil
}

func (r *InMemoryLogEntryRepository) ListByUserIDAndDateRange(ctx context.Context, userID string, from, to time.Time) ([]*domain.LogEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := []*domain.LogEntry{}
	for _, e := range r.store {
		if e.UserID == userID && !e.LogDate.Before(from) && !e.LogDate.After(to) {
			copied := *e
			entries = append(entries, &copied)
		}
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].LogDate.Before(entries[j].LogDate)
	})

	return entries, nil
}

func (r *InMemoryLogEntryRepository) Update(ctx context.Context, entry *domain.LogEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.store[entry.ID]
	if !ok {
		return domain.ErrLogEntryNotFound
	}
	if current.Version != entry.Version-1 {
		return domain.ErrLogEntryConflict
	}

	stored := *entry
	r.store[entry.ID] = &stored
	return nil
}

func (r *InMemoryLogEntryRepository) Delete(ctx context.Context, id string, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.store[id]
	if !ok || entry.UserID != userID {
		return domain.ErrLogEntryNotFound
	}

	delete(r.store, id)
	return nil
}

type InMemoryUserRepository struct {
	store map[string]*domain.User

	mu sync.RWMutex
}

func NewInMemoryUserRepository() *InMemoryUserRepository {
	return &InMemoryUserRepository{
		store: make(map[string]*domain.User),
	}
}

func (r *InMemoryUserRepository) Create(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.store {
		if u.Email == user.Email {
			return domain.ErrEmailAlreadyExists
		}
	}

	r.store[user.ID] = user
	return nil
}

func (r *InMemoryUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.store[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return user, nil
}

func (r *InMemoryUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.store {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}
