package http_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ritmoapp/ritmo/internal/core/domain"
)

func TestHabitHandler_Create(t *testing.T) {
	userID := "user-habits"

	t.Run("Success: 201 with the created habit", func(t *testing.T) {
		env := newTestEnv()

		w := env.do(t, "POST", "/api/v1/habits", userID, body{
			"title": "Meditate", "color": "#00AA55", "type": "boolean",
		})

		require.Equal(t, http.StatusCreated, w.Code)

		var got domain.Habit
		decodeBody(t, w, &got)
		assert.NotEmpty(t, got.ID)
		assert.Equal(t, "Meditate", got.Title)
		assert.Equal(t, 1, got.Version)
	})

	t.Run("Validation: 400 on missing title", func(t *testing.T) {
		env := newTestEnv()

		w := env.do(t, "POST", "/api/v1/habits", userID, body{"color": "#00AA55"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Validation: 400 on bad color", func(t *testing.T) {
		env := newTestEnv()

		w := env.do(t, "POST", "/api/v1/habits", userID, body{"title": "Meditate", "color": "green"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Validation: 400 on negative target", func(t *testing.T) {
		env := newTestEnv()

		w := env.do(t, "POST", "/api/v1/habits", userID, body{
			"title": "Hydrate", "type": "numeric", "target_value": -2,
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestHabitHandler_ListAndGet(t *testing.T) {
	userID := "user-habits"

	env := newTestEnv()
	habit := env.seedHabit(t, userID, "Meditate", domain.HabitTypeBoolean, 1)
	env.seedHabit(t, "someone-else", "Other", domain.HabitTypeBoolean, 1)

	t.Run("List returns only the caller's habits", func(t *testing.T) {
		w := env.do(t, "GET", "/api/v1/habits", userID, nil)

		require.Equal(t, http.StatusOK, w.Code)

		var got []domain.Habit
		decodeBody(t, w, &got)
		require.Len(t, got, 1)
		assert.Equal(t, habit.ID, got[0].ID)
	})

	t.Run("Get by id", func(t *testing.T) {
		w := env.do(t, "GET", "/api/v1/habits/"+habit.ID, userID, nil)

		require.Equal(t, http.StatusOK, w.Code)

		var got domain.Habit
		decodeBody(t, w, &got)
		assert.Equal(t, "Meditate", got.Title)
	})

	t.Run("Foreign habit reads as 404", func(t *testing.T) {
		w := env.do(t, "GET", "/api/v1/habits/"+habit.ID, "intruder", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestHabitHandler_Update(t *testing.T) {
	userID := "user-habits"

	t.Run("Success: partial update keeps unset fields", func(t *testing.T) {
		env := newTestEnv()
		habit := env.seedHabit(t, userID, "Meditate", domain.HabitTypeBoolean, 1)

		w := env.do(t, "PUT", "/api/v1/habits/"+habit.ID, userID, body{
			"title": "Meditate longer", "version": 1,
		})

		require.Equal(t, http.StatusOK, w.Code)

		var got domain.Habit
		decodeBody(t, w, &got)
		assert.Equal(t, "Meditate longer", got.Title)
		assert.Equal(t, domain.HabitTypeBoolean, got.Type)
		assert.Equal(t, 2, got.Version)
	})

	t.Run("Conflict: 409 on stale version", func(t *testing.T) {
		env := newTestEnv()
		habit := env.seedHabit(t, userID, "Meditate", domain.HabitTypeBoolean, 1)

		first := env.do(t, "PUT", "/api/v1/habits/"+habit.ID, userID, body{"title": "A", "version": 1})
		require.Equal(t, http.StatusOK, first.Code)

		second := env.do(t, "PUT", "/api/v1/habits/"+habit.ID, userID, body{"title": "B", "version": 1})
		assert.Equal(t, http.StatusConflict, second.Code)
	})

	t.Run("NotFound: 404 on missing habit", func(t *testing.T) {
		env := newTestEnv()

		w := env.do(t, "PUT", "/api/v1/habits/missing", userID, body{"title": "X"})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestHabitHandler_ArchiveAndDelete(t *testing.T) {
	userID := "user-habits"

	t.Run("Archive then logging is rejected", func(t *testing.T) {
		env := newTestEnv()
		habit := env.seedHabit(t, userID, "Meditate", domain.HabitTypeBoolean, 1)

		w := env.do(t, "POST", "/api/v1/habits/"+habit.ID+"/archive", userID, nil)
		require.Equal(t, http.StatusOK, w.Code)

		logAttempt := env.do(t, "POST", "/api/v1/logs", userID, body{
			"habit_id": habit.ID, "date": "2025-06-15T00:00:00Z", "completed": true,
		})
		assert.Equal(t, http.StatusBadRequest, logAttempt.Code)
	})

	t.Run("Delete: 204 and gone", func(t *testing.T) {
		env := newTestEnv()
		habit := env.seedHabit(t, userID, "Meditate", domain.HabitTypeBoolean, 1)

		w := env.do(t, "DELETE", "/api/v1/habits/"+habit.ID, userID, nil)
		require.Equal(t, http.StatusNoContent, w.Code)

		after := env.do(t, "GET", "/api/v1/habits/"+habit.ID, userID, nil)
		assert.Equal(t, http.StatusNotFound, after.Code)
	})

	t.Run("Delete foreign habit: 404", func(t *testing.T) {
		env := newTestEnv()
		habit := env.seedHabit(t, userID, "Meditate", domain.HabitTypeBoolean, 1)

		w := env.do(t, "DELETE", "/api/v1/habits/"+habit.ID, "intruder", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

