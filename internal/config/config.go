package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

var validate = validator.New()

// Config carries everything the API needs to start. Values come from the
// environment, with a .env file as a development convenience.
type Config struct {
	Port string `validate:"required,numeric"`

	// DBDriver selects the storage backend: "postgres" for a shared
	// deployment, "sqlite" for a single-node or local setup.
	DBDriver string `validate:"required,oneof=postgres sqlite"`

	DBUser     string `validate:"required_if=DBDriver postgres"`
	DBPassword string
	DBHost     string
	DBPort     string `validate:"omitempty,numeric"`
	DBName     string `validate:"required_if=DBDriver postgres"`

	SQLitePath string `validate:"required_if=DBDriver sqlite"`

	RedisHost     string
	RedisPort     string `validate:"omitempty,numeric"`
	RedisPassword string
	RedisDB       int

	JWTSecret string        `validate:"required,min=16"`
	JWTIssuer string        `validate:"required"`
	JWTTTL    time.Duration `validate:"required"`

	// RateLimitPerMin caps requests per client IP per minute; only
	// enforced when Redis is configured.
	RateLimitPerMin int `validate:"gt=0"`
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// Load reads the environment (and an optional .env file) into a Config
// and validates it.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("config: invalid REDIS_DB: %w", err)
	}

	jwtTTL, err := time.ParseDuration(getEnv("JWT_TTL", "24h"))
	if err != nil {
		return nil, fmt.Errorf("config: invalid JWT_TTL: %w", err)
	}

	rateLimit, err := strconv.Atoi(getEnv("RATE_LIMIT_PER_MIN", "100"))
	if err != nil {
		return nil, fmt.Errorf("config: invalid RATE_LIMIT_PER_MIN: %w", err)
	}

	cfg := &Config{
		Port: getEnv("PORT", "8080"),

		DBDriver:   getEnv("DB_DRIVER", "postgres"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBName:     os.Getenv("DB_NAME"),

		SQLitePath: getEnv("SQLITE_PATH", "ritmo.db"),

		RedisHost:     os.Getenv("REDIS_HOST"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       redisDB,

		JWTSecret: os.Getenv("JWT_SECRET"),
		JWTIssuer: getEnv("JWT_ISSUER", "ritmo"),
		JWTTTL:    jwtTTL,

		RateLimitPerMin: rateLimit,
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return cfg, nil
}

func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName)
}

// RedisEnabled reports whether a cache layer was configured at all.
func (c *Config) RedisEnabled() bool {
	return c.RedisHost != ""
}
