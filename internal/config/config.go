package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port     string
	Env      string
	LogLevel string

	// Database
	DatabaseURL string

	// Redis
	RedisURL string

	// JWT issued by the hosted auth provider
	JWTSecret string

	// Gemini AI. An empty key is allowed: generation calls then fail
	// with a configuration error instead of the server refusing to start.
	GeminiAPIKey      string
	GeminiModel       string
	GeminiTemperature float32
	// Gemini calls allowed in flight at once, process-wide
	GeminiConcurrentReqs int

	// Generation
	GenerationLockTTL time.Duration
	MaxUploadBytes    int64

	// Frontend
	FrontendURL string
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	cfg := &Config{
		Port:                 getEnvOrDefault("PORT", "8080"),
		Env:                  getEnvOrDefault("ENV", "development"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		DatabaseURL:          mustGetEnv("DATABASE_URL"),
		RedisURL:             mustGetEnv("REDIS_URL"),
		JWTSecret:            mustGetEnv("JWT_SECRET"),
		GeminiAPIKey:         os.Getenv("GEMINI_API_KEY"),
		GeminiModel:          getEnvOrDefault("GEMINI_MODEL", "gemini-1.5-flash"),
		GeminiTemperature:    float32(getEnvAsIntOrDefault("GEMINI_TEMPERATURE_PERCENT", 30)) / 100,
		GeminiConcurrentReqs: getEnvAsIntOrDefault("GEMINI_CONCURRENT_REQUESTS", 5),
		GenerationLockTTL:    time.Duration(getEnvAsIntOrDefault("GENERATION_LOCK_SECONDS", 120)) * time.Second,
		MaxUploadBytes:       int64(getEnvAsIntOrDefault("MAX_UPLOAD_MB", 25)) << 20,
		FrontendURL:          getEnvOrDefault("FRONTEND_URL", "http://localhost:8081"),
	}

	return cfg
}

// AIConfigured reports whether a Gemini credential is present.
func (c *Config) AIConfigured() bool {
	return c.GeminiAPIKey != ""
}

func mustGetEnv(key string) string {
	val := os.Getenv(key)
	if val == "" {
		panic(fmt.Sprintf("required environment variable %s is not set", key))
	}
	return val
}

func getEnvOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvAsIntOrDefault(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil || n < 0 {
		return defaultVal
	}
	return n
}
