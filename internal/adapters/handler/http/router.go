package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/ritmoapp/ritmo/internal/adapters/handler/http/middleware"
	"github.com/ritmoapp/ritmo/internal/core/services"
)

const defaultRateLimit = 100

type RouterDependencies struct {
	AuthHandler  *AuthHandler
	HabitHandler *HabitHandler
	LogHandler   *LogHandler
	StatsHandler *StatsHandler
	TokenService *services.TokenService
	DB           *sqlx.DB
	Redis        *redis.Client
	RateLimit    int
	StartTime    time.Time
}

func NewRouter(deps RouterDependencies) *gin.Engine {
	router := gin.Default()
	router.Use(corsMiddleware())

	if deps.Redis != nil {
		limit := deps.RateLimit
		if limit <= 0 {
			limit = defaultRateLimit
		}
		router.Use(middleware.RateLimiterMiddleware(deps.Redis, limit, time.Minute))
	}

	router.GET("/health", healthHandler(deps))
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	apiV1 := router.Group("/api/v1")
	deps.AuthHandler.RegisterRoutes(apiV1)

	protected := apiV1.Group("")
	protected.Use(middleware.AuthMiddleware(deps.TokenService))
	{
		deps.HabitHandler.RegisterRoutes(protected)
		deps.LogHandler.RegisterRoutes(protected)
		deps.StatsHandler.RegisterRoutes(protected)
	}

	return router
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE")
		h.Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// healthHandler reports the database as a hard dependency and redis as a
// soft one: a missing cache degrades performance, not availability.
func healthHandler(deps RouterDependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := http.StatusOK
		overall := "ok"
		db := "connected"
		if err := deps.DB.Ping(); err != nil {
			db = "unreachable"
			overall = "degraded"
			status = http.StatusServiceUnavailable
		}

		cacheState := "disabled"
		if deps.Redis != nil {
			cacheState = "connected"
			if err := deps.Redis.Ping(c.Request.Context()).Err(); err != nil {
				cacheState = "unreachable"
			}
		}

		c.JSON(status, gin.H{
			"status":   overall,
			"database": db,
			"redis":    cacheState,
			"uptime":   time.Since(deps.StartTime).String(),
		})
	}
}
