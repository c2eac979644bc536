package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"studybuddy-backend/internal/config"
	"studybuddy-backend/internal/database"
	"studybuddy-backend/internal/handlers"
	"studybuddy-backend/internal/logger"
	"studybuddy-backend/internal/middleware"
	"studybuddy-backend/internal/repository"
	"studybuddy-backend/internal/router"
	"studybuddy-backend/internal/services"
)

func main() {
	// ──── Step 1: Load Environment Variables ────
	cfg := config.Load()

	log, err := logger.Initialize(cfg.Env, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "✗ Logger initialization failed: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	log.Info("🚀 Starting StudyBuddy backend...", zap.String("env", cfg.Env))

	ctx := context.Background()

	// ──── Step 2: Initialize PostgreSQL Connection Pool ────
	pool, err := database.NewPostgresPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal("✗ PostgreSQL connection failed", zap.Error(err))
	}
	defer pool.Close()
	log.Info("✓ PostgreSQL connected")

	// ──── Step 3: Initialize Redis Client ────
	redisClient, err := database.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatal("✗ Redis connection failed", zap.Error(err))
	}
	defer redisClient.Close()
	log.Info("✓ Redis connected")

	// ──── Step 4: Run Database Migrations ────
	if err := database.RunMigrations(ctx, pool, log); err != nil {
		log.Fatal("✗ Database migration failed", zap.Error(err))
	}
	log.Info("✓ Database migrations applied")

	// ──── Step 5: Initialize Gemini Client ────
	var generator services.ContentGenerator
	if cfg.AIConfigured() {
		gemini, err := services.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, cfg.GeminiTemperature, cfg.GeminiConcurrentReqs, log)
		if err != nil {
			log.Fatal("✗ Gemini client initialization failed", zap.Error(err))
		}
		defer gemini.Close()
		generator = gemini
		log.Info("✓ Gemini client initialized", zap.String("model", cfg.GeminiModel))
	} else {
		log.Warn("GEMINI_API_KEY is not set; generation requests will fail until it is configured")
	}

	// ──── Initialize Services ────
	generationService := services.NewGenerationService(cfg.GeminiAPIKey, generator, log)
	generationGuard := services.NewGenerationGuard(redisClient, cfg.GenerationLockTTL)
	fileExtractService := services.NewFileExtractService()
	noteRepo := repository.NewNoteRepo(pool)

	// ──── Initialize Handlers ────
	studioHandler := handlers.NewStudioHandler(generationService, generationGuard, fileExtractService, cfg.MaxUploadBytes, log)
	noteHandler := handlers.NewNoteHandler(noteRepo, log)

	studioLimiter := middleware.NewRateLimiter(20, time.Minute)
	defer studioLimiter.Stop()

	// ──── Step 6: Start HTTP Server ────
	r := router.New(router.Deps{
		JWTAuth:       middleware.NewJWTAuth(cfg.JWTSecret),
		StudioHandler: studioHandler,
		NoteHandler:   noteHandler,
		StudioLimiter: studioLimiter,
		FrontendURL:   cfg.FrontendURL,
		AIConfigured:  cfg.AIConfigured(),
		Logger:        log,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	done := make(chan struct{})
	go func() {
		defer close(done)
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Info("Shutting down...")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			log.Error("Graceful shutdown failed", zap.Error(err))
		}
	}()

	log.Info("✓ StudyBuddy backend ready",
		zap.String("api", fmt.Sprintf("http://localhost:%s/api/v1", cfg.Port)))

	if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		log.Fatal("Server error", zap.Error(err))
	}
	<-done
}
