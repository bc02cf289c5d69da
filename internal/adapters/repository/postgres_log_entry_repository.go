package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/ritmoapp/ritmo/internal/core/domain"
)

type PostgresLogEntryRepository struct {
	db *sqlx.DB
}

func NewPostgresLogEntryRepository(db *sqlx.DB) *PostgresLogEntryRepository {
	return &PostgresLogEntryRepository{db: db}
}

// Put upserts on the (habit_id, log_date) unique index: logging a day that
// already has an active entry replaces it in place.
func (r *PostgresLogEntryRepository) Put(ctx context.Context, entry *domain.LogEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}

	query := `
		INSERT INTO log_entries (
			id, habit_id, user_id,
			log_date, completed, value, notes,
			version, created_at, updated_at, deleted_at
		) VALUES (
			:id, :habit_id, :user_id,
			:log_date, :completed, :value, :notes,
			:version, :created_at, :updated_at, :deleted_at
		)
		ON CONFLICT (habit_id, log_date) WHERE deleted_at IS NULL
		DO UPDATE SET
			completed = EXCLUDED.completed,
			value = EXCLUDED.value,
			notes = EXCLUDED.notes,
			updated_at = EXCLUDED.updated_at,
			version = log_entries.version + 1
		RETURNING id, version`

	rows, err := r.db.NamedQueryContext(ctx, query, entry)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23503" {
			return errors.New("referenced habit or user does not exist")
		}
		return err
	}
	defer rows.Close()

	// On overwrite the row keeps its original id and bumps its version;
	// reflect that back so the caller returns accurate data.
	if rows.Next() {
		if err := rows.Scan(&entry.ID, &entry.Version); err != nil {
			return fmt.Errorf("upsert scan failed: %w", err)
		}
	}
	return rows.Err()
}

func (r *PostgresLogEntryRepository) GetByID(ctx context.Context, id string) (*domain.LogEntry, error) {
	var entry domain.LogEntry
	query := `SELECT * FROM log_entries WHERE id = $1 AND deleted_at IS NULL`

	err := r.db.GetContext(ctx, &entry, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrLogEntryNotFound
		}
		return nil, err
	}
	return &entry, nil
}

func (r *PostgresLogEntryRepository) ListByHabitID(ctx context.Context, habitID string, from, to time.Time) ([]*domain.LogEntry, error) {
	entries := []*domain.LogEntry{}

	query := `
		SELECT * FROM log_entries
		WHERE habit_id = $1
		  AND log_date >= $2
		  AND log_date <= $3
		  AND deleted_at IS NULL
		ORDER BY log_date DESC`

	if err := r.db.SelectContext(ctx, &entries, query, habitID, from, to); err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *PostgresLogEntryRepository) ListAllByHabitID(ctx context.Context, habitID string) ([]*domain.LogEntry, error) {
	entries := []*domain.LogEntry{}

	query := `
		SELECT * FROM log_entries
		WHERE habit_id = $1 AND deleted_at IS NULL
		ORDER BY log_date DESC`

	if err := r.db.SelectContext(ctx, &entries, query, habitID); err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *PostgresLogEntryRepository) ListByUserIDAndDateRange(ctx context.Context, userID string, from, to time.Time) ([]*domain.LogEntry, error) {
	entries := []*domain.LogEntry{}

	query := `
		SELECT * FROM log_entries
		WHERE user_id = $1
		  AND log_date >= $2
		  AND log_date <= $3
		  AND deleted_at IS NULL
		ORDER BY log_date ASC`

	if err := r.db.SelectContext(ctx, &entries, query, userID, from, to); err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *PostgresLogEntryRepository) Update(ctx context.Context, entry *domain.LogEntry) error {
	query := `
		UPDATE log_entries
		SET completed = :completed,
		    value = :value,
		    notes = :notes,
		    version = :version,
		    updated_at = :updated_at
		WHERE id = :id
		  AND version = :version - 1
		  AND deleted_at IS NULL`

	result, err := r.db.NamedExecContext(ctx, query, entry)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		exists, _ := r.exists(ctx, entry.ID)
		if !exists {
			return domain.ErrLogEntryNotFound
		}
		return domain.ErrLogEntryConflict
	}

	return nil
}

func (r *PostgresLogEntryRepository) Delete(ctx context.Context, id string, userID string) error {
	now := time.Now().UTC()

	query := `
		UPDATE log_entries
		SET deleted_at = $1,
		    updated_at = $1,
		    version = version + 1
		WHERE id = $2
		  AND user_id = $3
		  AND deleted_at IS NULL`

	result, err := r.db.ExecContext(ctx, query, now, id, userID)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrLogEntryNotFound
	}

	return nil
}

func (r *PostgresLogEntryRepository) exists(ctx context.Context, id string) (bool, error) {
	var count int
	err := r.db.GetContext(ctx, &count, "SELECT count(*) FROM log_entries WHERE id = $1", id)
	if err != nil {
		return false, fmt.Errorf("existence check failed: %w", err)
	}
	return count > 0, nil
}
