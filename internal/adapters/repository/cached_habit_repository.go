package repository

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ritmoapp/ritmo/internal/core/domain"
)

var _ domain.HabitRepository = (*CachedHabitRepository)(nil)

const habitListTTL = 30 * time.Minute

// CachedHabitRepository decorates a HabitRepository with a Redis
// read-through cache of per-user habit lists. Every write path drops the
// owner's cached list; the cache never serves stale data longer than the
// write that changed it.
type CachedHabitRepository struct {
	next  domain.HabitRepository
	cache *redis.Client
}

func NewCachedHabitRepository(next domain.HabitRepository, cache *redis.Client) *CachedHabitRepository {
	return &CachedHabitRepository{next: next, cache: cache}
}

func listKey(userID string) string {
	return "habits:" + userID
}

func (r *CachedHabitRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.Habit, error) {
	if habits, ok := r.readList(ctx, userID); ok {
		return habits, nil
	}

	habits, err := r.next.ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	r.storeList(ctx, userID, habits)
	return habits, nil
}

func (r *CachedHabitRepository) readList(ctx context.Context, userID string) ([]*domain.Habit, bool) {
	raw, err := r.cache.Get(ctx, listKey(userID)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Printf("[CACHE] Read failed for user %s: %v", userID, err)
		}
		return nil, false
	}

	var habits []*domain.Habit
	if err := json.Unmarshal(raw, &habits); err != nil {
		// Unreadable payloads are dropped so the next read repopulates.
		log.Printf("[CACHE] Corrupted entry for user %s, dropping it", userID)
		r.cache.Del(ctx, listKey(userID))
		return nil, false
	}

	return habits, true
}

func (r *CachedHabitRepository) storeList(ctx context.Context, userID string, habits []*domain.Habit) {
	data, err := json.Marshal(habits)
	if err != nil {
		return
	}
	if err := r.cache.Set(ctx, listKey(userID), data, habitListTTL).Err(); err != nil {
		log.Printf("[CACHE] Write failed for user %s: %v", userID, err)
	}
}

func (r *CachedHabitRepository) invalidate(ctx context.Context, userID string) {
	if err := r.cache.Del(ctx, listKey(userID)).Err(); err != nil {
		log.Printf("[CACHE] Invalidation failed for user %s: %v", userID, err)
	}
}

// invalidateOwner resolves the habit's owner before a write that only
// carries the habit ID, so the right list entry gets dropped.
func (r *CachedHabitRepository) invalidateOwner(ctx context.Context, habitID string) func() {
	habit, err := r.next.GetByID(ctx, habitID)
	if err != nil || habit == nil {
		return func() {}
	}
	return func() { r.invalidate(ctx, habit.UserID) }
}

func (r *CachedHabitRepository) GetByID(ctx context.Context, id string) (*domain.Habit, error) {
	return r.next.GetByID(ctx, id)
}

func (r *CachedHabitRepository) ListActiveIDs(ctx context.Context) ([]string, error) {
	return r.next.ListActiveIDs(ctx)
}

func (r *CachedHabitRepository) Create(ctx context.Context, habit *domain.Habit) error {
	if err := r.next.Create(ctx, habit); err != nil {
		return err
	}
	r.invalidate(ctx, habit.UserID)
	return nil
}

func (r *CachedHabitRepository) Update(ctx context.Context, habit *domain.Habit) error {
	if err := r.next.Update(ctx, habit); err != nil {
		return err
	}
	r.invalidate(ctx, habit.UserID)
	return nil
}

func (r *CachedHabitRepository) Delete(ctx context.Context, id string) error {
	defer r.invalidateOwner(ctx, id)()
	return r.next.Delete(ctx, id)
}

// UpdateStreaks invalidates too: cached lists embed the streak counters.
func (r *CachedHabitRepository) UpdateStreaks(ctx context.Context, id string, current, longest int) error {
	defer r.invalidateOwner(ctx, id)()
	return r.next.UpdateStreaks(ctx, id, current, longest)
}
