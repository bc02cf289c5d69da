package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	adapterHTTP "github.com/ritmoapp/ritmo/internal/adapters/handler/http"
	"github.com/ritmoapp/ritmo/internal/adapters/handler/http/middleware"
	"github.com/ritmoapp/ritmo/internal/adapters/repository"
	"github.com/ritmoapp/ritmo/internal/core/domain"
	"github.com/ritmoapp/ritmo/internal/core/services"
)

type body = map[string]any

// recordingQueue stands in for the streak worker and remembers every
// habit id that was enqueued.
type recordingQueue struct {
	enqueued []string
}

func (q *recordingQueue) Enqueue(habitID string) {
	q.enqueued = append(q.enqueued, habitID)
}

type testEnv struct {
	router *gin.Engine
	habits *repository.InMemoryHabitRepository
	logs   *repository.InMemoryLogEntryRepository
	users  *repository.InMemoryUserRepository
	queue  *recordingQueue
}

// newTestEnv wires real services over in-memory repositories. The auth
// middleware is replaced by a header shim so tests choose their caller
// with X-User-ID.
func newTestEnv() *testEnv {
	gin.SetMode(gin.TestMode)

	habits := repository.NewInMemoryHabitRepository()
	logs := repository.NewInMemoryLogEntryRepository()
	users := repository.NewInMemoryUserRepository()
	queue := &recordingQueue{}

	tokens := services.NewTokenService("test-secret", "ritmo-test", time.Hour, users)

	authHandler := adapterHTTP.NewAuthHandler(services.NewAuthService(users, tokens))
	habitHandler := adapterHTTP.NewHabitHandler(services.NewHabitService(habits))
	logHandler := adapterHTTP.NewLogHandler(services.NewLogService(logs, habits, queue))
	statsHandler := adapterHTTP.NewStatsHandler(services.NewStatsService(habits, logs))

	r := gin.New()

	r.Use(func(c *gin.Context) {
		if userID := c.GetHeader("X-User-ID"); userID != "" {
			c.Set(middleware.ContextUserIDKey, userID)
		}
		c.Next()
	})

	api := r.Group("/api/v1")
	authHandler.RegisterRoutes(api)
	habitHandler.RegisterRoutes(api)
	logHandler.RegisterRoutes(api)
	statsHandler.RegisterRoutes(api)

	return &testEnv{
		router: r,
		habits: habits,
		logs:   logs,
		users:  users,
		queue:  queue,
	}
}

func (env *testEnv) do(t *testing.T, method, path, userID string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

func (env *testEnv) seedHabit(t *testing.T, userID, title, hType string, target int) *domain.Habit {
	t.Helper()

	habit, err := domain.NewHabit(userID, title, "", "", "", "", hType, "", target)
	require.NoError(t, err)
	require.NoError(t, env.habits.Create(context.Background(), habit))
	return habit
}

func (env *testEnv) seedLog(t *testing.T, habitID, userID string, day time.Time, completed bool, value int) *domain.LogEntry {
	t.Helper()

	entry := domain.NewLogEntry(habitID, userID, day, completed, value)
	require.NoError(t, env.logs.Put(context.Background(), entry))
	return entry
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out))
}
