package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	_ = godotenv.Load("../../../../../.env")

	addr := "localhost:6379"
	if host := os.Getenv("REDIS_HOST"); host != "" {
		port := os.Getenv("REDIS_PORT")
		if port == "" {
			port = "6379"
		}
		addr = host + ":" + port
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       1,
	})

	if err := rdb.Ping(context.Background()).Err(); err != nil {
		t.Skipf("Skipping integration test (Redis down): %v", err)
	}

	require.NoError(t, rdb.FlushDB(context.Background()).Err())
	t.Cleanup(func() { rdb.Close() })
	return rdb
}

func limitedRouter(rdb *redis.Client, limit int) *gin.Engine {
	r := gin.New()
	r.Use(RateLimiterMiddleware(rdb, limit, time.Minute))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func hit(router *gin.Engine, ip string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Forwarded-For", ip)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRateLimiterMiddleware_Integration(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rdb := setupTestRedis(t)

	t.Run("Requests under the limit pass with headers", func(t *testing.T) {
		router := limitedRouter(rdb, 5)

		for i := 1; i <= 5; i++ {
			w := hit(router, "192.168.1.100")
			require.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, strconv.Itoa(5-i), w.Header().Get("X-RateLimit-Remaining"))
			assert.Equal(t, "5", w.Header().Get("X-RateLimit-Limit"))
		}
	})

	t.Run("Requests over the limit are rejected", func(t *testing.T) {
		router := limitedRouter(rdb, 2)

		hit(router, "192.168.1.101")
		hit(router, "192.168.1.101")

		w := hit(router, "192.168.1.101")
		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.Contains(t, w.Body.String(), "Too many requests")
	})

	t.Run("Counters are per client", func(t *testing.T) {
		router := limitedRouter(rdb, 1)

		require.Equal(t, http.StatusOK, hit(router, "10.0.0.1").Code)
		require.Equal(t, http.StatusTooManyRequests, hit(router, "10.0.0.1").Code)
		assert.Equal(t, http.StatusOK, hit(router, "10.0.0.2").Code)
	})

	t.Run("Fail open when Redis is down", func(t *testing.T) {
		dead := redis.NewClient(&redis.Options{Addr: "localhost:9999"})
		defer dead.Close()

		router := limitedRouter(dead, 1)

		for i := 0; i < 3; i++ {
			assert.Equal(t, http.StatusOK, hit(router, "10.0.0.3").Code)
		}
	})
}
