package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/ritmoapp/ritmo/internal/core/domain"
)

var (
	_ domain.HabitRepository    = (*SQLiteHabitRepository)(nil)
	_ domain.LogEntryRepository = (*SQLiteLogEntryRepository)(nil)
	_ domain.UserRepository     = (*SQLiteUserRepository)(nil)
)

func init() {
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

// NewSQLiteDB opens (or creates) an embedded database at path and applies
// the schema. Pass ":memory:" for a throwaway store.
func NewSQLiteDB(path string) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// A single connection keeps :memory: databases coherent and avoids
	// SQLITE_BUSY under concurrent writers.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := db.Exec(`PRAGMA foreign_keys = ON`); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if err := migrateSQLite(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return db, nil
}

func migrateSQLite(db *sqlx.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			email TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		);

		CREATE TABLE IF NOT EXISTS habits (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			title TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			category TEXT NOT NULL DEFAULT '',
			color TEXT NOT NULL DEFAULT '',
			icon TEXT NOT NULL DEFAULT '',
			sort_order INTEGER NOT NULL DEFAULT 0,
			type TEXT NOT NULL DEFAULT 'boolean',
			target_value INTEGER NOT NULL DEFAULT 1,
			unit TEXT NOT NULL DEFAULT '',
			current_streak INTEGER NOT NULL DEFAULT 0,
			longest_streak INTEGER NOT NULL DEFAULT 0,
			version INTEGER NOT NULL DEFAULT 1,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL,
			archived_at TIMESTAMP,
			deleted_at TIMESTAMP,
			FOREIGN KEY(user_id) REFERENCES users(id) ON DELETE CASCADE
		);

		CREATE TABLE IF NOT EXISTS log_entries (
			id TEXT PRIMARY KEY,
			habit_id TEXT NOT NULL,
			user_id TEXT NOT NULL,
			log_date TIMESTAMP NOT NULL,
			completed INTEGER NOT NULL DEFAULT 0,
			value INTEGER NOT NULL DEFAULT 0,
			notes TEXT NOT NULL DEFAULT '',
			version INTEGER NOT NULL DEFAULT 1,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL,
			deleted_at TIMESTAMP,
			FOREIGN KEY(habit_id) REFERENCES habits(id) ON DELETE CASCADE,
			FOREIGN KEY(user_id) REFERENCES users(id) ON DELETE CASCADE
		);

		CREATE UNIQUE INDEX IF NOT EXISTS idx_log_entries_habit_day
			ON log_entries (habit_id, log_date)
			WHERE deleted_at IS NULL;
	`)
	return err
}

type SQLiteHabitRepository struct {
	db *sqlx.DB
}

func NewSQLiteHabitRepository(db *sqlx.DB) *SQLiteHabitRepository {
	return &SQLiteHabitRepository{db: db}
}

func (r *SQLiteHabitRepository) Create(ctx context.Context, h *domain.Habit) error {
	query := `
		INSERT INTO habits (
			id, user_id, title, description, category, color, icon, sort_order,
			type, target_value, unit,
			current_streak, longest_streak,
			version, created_at, updated_at, archived_at, deleted_at
		) VALUES (
			:id, :user_id, :title, :description, :category, :color, :icon, :sort_order,
			:type, :target_value, :unit,
			:current_streak, :longest_streak,
			:version, :created_at, :updated_at, :archived_at, :deleted_at
		)`

	if _, err := r.db.NamedExecContext(ctx, query, h); err != nil {
		return fmt.Errorf("failed to insert habit: %w", err)
	}
	return nil
}

func (r *SQLiteHabitRepository) GetByID(ctx context.Context, id string) (*domain.Habit, error) {
	var h domain.Habit
	query := `SELECT * FROM habits WHERE id = ? AND deleted_at IS NULL`

	err := r.db.GetContext(ctx, &h, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrHabitNotFound
		}
		return nil, fmt.Errorf("database scan error: %w", err)
	}
	return &h, nil
}

func (r *SQLiteHabitRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.Habit, error) {
	habits := []*domain.Habit{}

	query := `
		SELECT * FROM habits
		WHERE user_id = ? AND deleted_at IS NULL
		ORDER BY sort_order ASC, created_at DESC`

	if err := r.db.SelectContext(ctx, &habits, query, userID); err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}
	return habits, nil
}

func (r *SQLiteHabitRepository) Update(ctx context.Context, h *domain.Habit) error {
	now := time.Now().UTC()

	query := `
		UPDATE habits SET
			title=?, description=?, category=?, color=?, icon=?, sort_order=?,
			type=?, target_value=?, unit=?,
			archived_at=?,
			updated_at=?, version = version + 1
		WHERE id=? AND version=? AND deleted_at IS NULL`

	res, err := r.db.ExecContext(ctx, query,
		h.Title, h.Description, h.Category, h.Color, h.Icon, h.SortOrder,
		h.Type, h.TargetValue, h.Unit,
		h.ArchivedAt,
		now,
		h.ID, h.Version,
	)
	if err != nil {
		return fmt.Errorf("update query failed: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		var count int
		existsQuery := `SELECT count(*) FROM habits WHERE id = ? AND deleted_at IS NULL`
		if checkErr := r.db.GetContext(ctx, &count, existsQuery, h.ID); checkErr != nil {
			return fmt.Errorf("existence check failed: %w", checkErr)
		}
		if count == 0 {
			return domain.ErrHabitNotFound
		}
		return domain.ErrHabitConflict
	}

	h.Version++
	h.UpdatedAt = now

	return nil
}

func (r *SQLiteHabitRepository) Delete(ctx context.Context, id string) error {
	now := time.Now().UTC()

	query := `
		UPDATE habits
		SET deleted_at = ?, updated_at = ?, version = version + 1
		WHERE id = ? AND deleted_at IS NULL`

	res, err := r.db.ExecContext(ctx, query, now, now, id)
	if err != nil {
		return fmt.Errorf("delete query failed: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrHabitNotFound
	}

	return nil
}

func (r *SQLiteHabitRepository) UpdateStreaks(ctx context.Context, id string, current, longest int) error {
	query := `
		UPDATE habits
		SET current_streak = ?, longest_streak = ?
		WHERE id = ? AND deleted_at IS NULL`

	res, err := r.db.ExecContext(ctx, query, current, longest, id)
	if err != nil {
		return fmt.Errorf("streak update failed: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrHabitNotFound
	}

	return nil
}

func (r *SQLiteHabitRepository) ListActiveIDs(ctx context.Context) ([]string, error) {
	ids := []string{}

	query := `SELECT id FROM habits WHERE deleted_at IS NULL AND archived_at IS NULL`

	if err := r.db.SelectContext(ctx, &ids, query); err != nil {
		return nil, fmt.Errorf("id listing failed: %w", err)
	}
	return ids, nil
}

type SQLiteLogEntryRepository struct {
	db *sqlx.DB
}

func NewSQLiteLogEntryRepository(db *sqlx.DB) *SQLiteLogEntryRepository {
	return &SQLiteLogEntryRepository{db: db}
}

func (r *SQLiteLogEntryRepository) Put(ctx context.Context, entry *domain.LogEntry) error {
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
			completed = excluded.completed,
			value = excluded.value,
			notes = excluded.notes,
			updated_at = excluded.updated_at,
			version = log_entries.version + 1
		RETURNING id, version`

	rows, err := r.db.NamedQueryContext(ctx, query, entry)
	if err != nil {
		if isSQLiteFKViolation(err) {
			return errors.New("referenced habit or user does not exist")
		}
		return err
	}
	defer rows.Close()

	if rows.Next() {
		if err := rows.Scan(&entry.ID, &entry.Version); err != nil {
			return fmt.Errorf("upsert scan failed: %w", err)
		}
	}
	return rows.Err()
}

func (r *SQLiteLogEntryRepository) GetByID(ctx context.Context, id string) (*domain.LogEntry, error) {
	var entry domain.LogEntry
	query := `SELECT * FROM log_entries WHERE id = ? AND deleted_at IS NULL`

	err := r.db.GetContext(ctx, &entry, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrLogEntryNotFound
		}
		return nil, err
	}
	return &entry, nil
}

func (r *SQLiteLogEntryRepository) ListByHabitID(ctx context.Context, habitID string, from, to time.Time) ([]*domain.LogEntry, error) {
	entries := []*domain.LogEntry{}

	query := `
		SELECT * FROM log_entries
		WHERE habit_id = ?
		  AND log_date >= ?
		  AND log_date <= ?
		  AND deleted_at IS NULL
		ORDER BY log_date DESC`

	if err := r.db.SelectContext(ctx, &entries, query, habitID, from, to); err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *SQLiteLogEntryRepository) ListAllByHabitID(ctx context.Context, habitID string) ([]*domain.LogEntry, error) {
	entries := []*domain.LogEntry{}

	query := `
		SELECT * FROM log_entries
		WHERE habit_id = ? AND deleted_at IS NULL
		ORDER BY log_date DESC`

	if err := r.db.SelectContext(ctx, &entries, query, habitID); err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *SQLiteLogEntryRepository) ListByUserIDAndDateRange(ctx context.Context, userID string, from, to time.Time) ([]*domain.LogEntry, error) {
	entries := []*domain.LogEntry{}

	query := `
		SELECT * FROM log_entries
		WHERE user_id = ?
		  AND log_date >= ?
		  AND log_date <= ?
		  AND deleted_at IS NULL
		ORDER BY log_date ASC`

	if err := r.db.SelectContext(ctx, &entries, query, userID, from, to); err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *SQLiteLogEntryRepository) Update(ctx context.Context, entry *domain.LogEntry) error {
	query := `
		UPDATE log_entries
		SET completed = ?,
		    value = ?,
		    notes = ?,
		    version = ?,
		    updated_at = ?
		WHERE id = ?
		  AND version = ?
		  AND deleted_at IS NULL`

	result, err := r.db.ExecContext(ctx, query,
		entry.Completed, entry.Value, entry.Notes,
		entry.Version, entry.UpdatedAt,
		entry.ID, entry.Version-1,
	)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		var count int
		if err := r.db.GetContext(ctx, &count, "SELECT count(*) FROM log_entries WHERE id = ?", entry.ID); err != nil {
			return fmt.Errorf("existence check failed: %w", err)
		}
		if count == 0 {
			return domain.ErrLogEntryNotFound
		}
		return domain.ErrLogEntryConflict
	}

	return nil
}

func (r *SQLiteLogEntryRepository) Delete(ctx context.Context, id string, userID string) error {
	now := time.Now().UTC()

	query := `
		UPDATE log_entries
		SET deleted_at = ?,
		    updated_at = ?,
		    version = version + 1
		WHERE id = ?
		  AND user_id = ?
		  AND deleted_at IS NULL`

	result, err := r.db.ExecContext(ctx, query, now, now, id, userID)
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

type SQLiteUserRepository struct {
	db *sqlx.DB
}

func NewSQLiteUserRepository(db *sqlx.DB) *SQLiteUserRepository {
	return &SQLiteUserRepository{db: db}
}

func (r *SQLiteUserRepository) Create(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (id, email, password_hash, created_at, updated_at)
		VALUES (:id, :email, :password_hash, :created_at, :updated_at)`

	if _, err := r.db.NamedExecContext(ctx, query, user); err != nil {
		if isSQLiteUniqueViolation(err) {
			return domain.ErrEmailAlreadyExists
		}
		return fmt.Errorf("repository: create user failed: %w", err)
	}
	return nil
}

func (r *SQLiteUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	query := `SELECT * FROM users WHERE email = ?`

	err := r.db.GetContext(ctx, &user, query, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("repository: get user by email failed: %w", err)
	}
	return &user, nil
}

func (r *SQLiteUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	var user domain.User
	query := `SELECT * FROM users WHERE id = ?`

	err := r.db.GetContext(ctx, &user, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("repository: get user by id failed: %w", err)
	}
	return &user, nil
}

// modernc.org/sqlite surfaces constraint failures as plain errors with the
// SQLITE_CONSTRAINT message text, so classification is string-based.
func isSQLiteUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func isSQLiteFKViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}
