package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	_ "github.com/ritmoapp/ritmo/docs"
	"github.com/ritmoapp/ritmo/internal/adapters/cache"
	adapterHTTP "github.com/ritmoapp/ritmo/internal/adapters/handler/http"
	"github.com/ritmoapp/ritmo/internal/adapters/repository"
	"github.com/ritmoapp/ritmo/internal/config"
	"github.com/ritmoapp/ritmo/internal/core/domain"
	"github.com/ritmoapp/ritmo/internal/core/services"
	"github.com/ritmoapp/ritmo/internal/core/workers"
)

// @title Ritmo API
// @version 1.0
// @description Habit tracking backend with per-habit statistics, streaks and completion rates.
// @BasePath /api/v1
func main() {
	startTime := time.Now()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Critical: invalid configuration: %v", err)
	}

	db, habitRepo, logRepo, userRepo, err := openStorage(cfg)
	if err != nil {
		log.Fatalf("Critical: failed to open storage: %v", err)
	}
	defer db.Close()

	log.Printf("Storage ready (driver=%s)", cfg.DBDriver)

	// The cache is optional: a missing or unreachable Redis only costs
	// read performance and rate limiting, never availability.
	var redisClient *redis.Client
	if cfg.RedisEnabled() {
		redisClient, err = cache.NewRedisClient(cfg.RedisHost, cfg.RedisPort, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			log.Printf("Redis unavailable, continuing without cache: %v", err)
			redisClient = nil
		} else {
			defer redisClient.Close()
			habitRepo = repository.NewCachedHabitRepository(habitRepo, redisClient)
			log.Println("Redis cache enabled.")
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	streakWorker := workers.NewStreakWorker(habitRepo, logRepo)
	streakWorker.Start(ctx)

	rollover := workers.NewRolloverScheduler(habitRepo, streakWorker)
	if err := rollover.Start(ctx); err != nil {
		log.Fatalf("Critical: failed to start rollover scheduler: %v", err)
	}

	tokenService := services.NewTokenService(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL, userRepo)
	authService := services.NewAuthService(userRepo, tokenService)
	habitService := services.NewHabitService(habitRepo)
	logService := services.NewLogService(logRepo, habitRepo, streakWorker)
	statsService := services.NewStatsService(habitRepo, logRepo)

	router := adapterHTTP.NewRouter(adapterHTTP.RouterDependencies{
		AuthHandler:  adapterHTTP.NewAuthHandler(authService),
		HabitHandler: adapterHTTP.NewHabitHandler(habitService),
		LogHandler:   adapterHTTP.NewLogHandler(logService),
		StatsHandler: adapterHTTP.NewStatsHandler(statsService),
		TokenService: tokenService,
		DB:           db,
		Redis:        redisClient,
		RateLimit:    cfg.RateLimitPerMin,
		StartTime:    startTime,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("Ritmo API running on http://localhost:%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Critical server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Stop signal received. Shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Forced shutdown error:", err)
	}

	log.Println("Server stopped gracefully.")
}

func openStorage(cfg *config.Config) (*sqlx.DB, domain.HabitRepository, domain.LogEntryRepository, domain.UserRepository, error) {
	if cfg.DBDriver == "sqlite" {
		db, err := repository.NewSQLiteDB(cfg.SQLitePath)
		if err != nil {
			return nil, nil, nil, nil, err
		}
		return db,
			repository.NewSQLiteHabitRepository(db),
			repository.NewSQLiteLogEntryRepository(db),
			repository.NewSQLiteUserRepository(db),
			nil
	}

	db, err := sqlx.Connect("pgx", cfg.PostgresDSN())
	if err != nil {
		return nil, nil, nil, nil, err
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	return db,
		repository.NewPostgresHabitRepository(db),
		repository.NewPostgresLogEntryRepository(db),
		repository.NewPostgresUserRepository(db),
		nil
}
