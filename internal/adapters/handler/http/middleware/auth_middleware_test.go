package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ritmoapp/ritmo/internal/adapters/handler/http/middleware"
	"github.com/ritmoapp/ritmo/internal/adapters/repository"
	"github.com/ritmoapp/ritmo/internal/core/domain"
	"github.com/ritmoapp/ritmo/internal/core/services"
)

func setupProtectedRouter(t *testing.T) (*gin.Engine, *services.TokenService, *domain.User) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	users := repository.NewInMemoryUserRepository()
	user, err := domain.NewUser("user-mw-1", "mw@example.com")
	require.NoError(t, err)
	require.NoError(t, users.Create(context.Background(), user))

	tokens := services.NewTokenService("mw-secret", "ritmo-test", time.Hour, users)

	r := gin.New()
	r.Use(middleware.AuthMiddleware(tokens))
	r.GET("/whoami", func(c *gin.Context) {
		id, ok := middleware.GetUserID(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, gin.H{"user_id": id})
	})

	return r, tokens, user
}

func TestAuthMiddleware(t *testing.T) {
	t.Run("Success: valid token passes and sets the user", func(t *testing.T) {
		r, tokens, user := setupProtectedRouter(t)

		token, err := tokens.GenerateToken(user.ID)
		require.NoError(t, err)

		req, _ := http.NewRequest("GET", "/whoami", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()

		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), user.ID)
	})

	t.Run("Fail: missing header", func(t *testing.T) {
		r, _, _ := setupProtectedRouter(t)

		req, _ := http.NewRequest("GET", "/whoami", nil)
		w := httptest.NewRecorder()

		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Fail: wrong scheme", func(t *testing.T) {
		r, tokens, user := setupProtectedRouter(t)

		token, err := tokens.GenerateToken(user.ID)
		require.NoError(t, err)

		req, _ := http.NewRequest("GET", "/whoami", nil)
		req.Header.Set("Authorization", "Basic "+token)
		w := httptest.NewRecorder()

		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Fail: garbage token", func(t *testing.T) {
		r, _, _ := setupProtectedRouter(t)

		req, _ := http.NewRequest("GET", "/whoami", nil)
		req.Header.Set("Authorization", "Bearer not.a.token")
		w := httptest.NewRecorder()

		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Fail: token for a deleted user", func(t *testing.T) {
		r, tokens, _ := setupProtectedRouter(t)

		token, err := tokens.GenerateToken("ghost-user")
		require.NoError(t, err)

		req, _ := http.NewRequest("GET", "/whoami", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()

		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
