package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	mongoadapter "github.com/gospelstack/sermon-audio/adapters/mongo"
	"github.com/gospelstack/sermon-audio/adapters/storage"
	"github.com/gospelstack/sermon-audio/adapters/tts"
	"github.com/gospelstack/sermon-audio/domain/repositories"
	"github.com/gospelstack/sermon-audio/internal/api"
	"github.com/gospelstack/sermon-audio/internal/websocket"
	"github.com/gospelstack/sermon-audio/usecase"
)

func main() {
	// Load .env if present; real deployments set the environment directly
	_ = godotenv.Load()

	// Initialize logger
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	ctx := context.Background()

	// Initialize MongoDB
	mongoClient, err := mongoadapter.NewClient(logger)
	if err != nil {
		logger.Fatal("Failed to connect to MongoDB", zap.Error(err))
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		mongoClient.Close(closeCtx)
	}()

	indexCtx, cancelIndex := context.WithTimeout(ctx, 30*time.Second)
	if err := mongoClient.EnsureIndexes(indexCtx); err != nil {
		logger.Fatal("Failed to ensure MongoDB indexes", zap.Error(err))
	}
	cancelIndex()

	cacheTTL := durationFromEnv("CACHE_TTL_DAYS", 30) * 24 * time.Hour

	sermonRepo := mongoadapter.NewSermonRepository(mongoClient.Database)
	cacheRepo := mongoadapter.NewCacheRepository(mongoClient.Database, cacheTTL, logger)
	claimRepo := mongoadapter.NewClaimRepository(mongoClient.Database, logger)
	usageRepo := mongoadapter.NewUsageRepository(mongoClient.Database)

	// Initialize blob store
	blobStore, err := storage.NewGCSBlobStore(ctx, storage.NewGCSConfigFromEnv(), logger)
	if err != nil {
		logger.Fatal("Failed to initialize blob store", zap.Error(err))
	}
	defer blobStore.Close()

	// Initialize synthesis provider
	textToSpeech, err := newTextToSpeech(ctx, logger)
	if err != nil {
		logger.Fatal("Failed to initialize synthesis provider", zap.Error(err))
	}

	// Initialize progress hub and generation service
	hub := websocket.NewHub(logger)
	generation := usecase.NewGenerationService(
		sermonRepo, cacheRepo, claimRepo, blobStore, textToSpeech, usageRepo,
		hub,
		usecase.GenerationConfig{
			MaxChunkSize:           intFromEnv("TTS_MAX_CHUNK_SIZE", 0),
			MaxConcurrentSynthesis: intFromEnv("TTS_MAX_CONCURRENCY", 0),
		},
		logger)

	// Out-of-band cache sweep
	sweepCtx, stopSweeper := context.WithCancel(ctx)
	defer stopSweeper()
	sweeper := usecase.NewCacheSweeper(cacheRepo, usecase.DefaultSweepInterval, cacheTTL, logger)
	go sweeper.Run(sweepCtx)

	// Create Echo instance
	e := echo.New()
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	api.InitRoutes(e, generation, hub, logger)

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	go func() {
		if err := e.Start(":" + port); err != nil && err != http.ErrServerClosed {
			logger.Fatal("shutting down the server", zap.Error(err))
		}
	}()

	logger.Info("Server started", zap.String("port", port))

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("Server is shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}

// newTextToSpeech selects the synthesis provider from TTS_PROVIDER.
func newTextToSpeech(ctx context.Context, logger *zap.Logger) (repositories.TextToSpeech, error) {
	switch os.Getenv("TTS_PROVIDER") {
	case "elevenlabs":
		return tts.NewElevenLabsTTS(tts.NewElevenLabsConfigFromEnv(), logger)
	case "mock":
		return tts.NewMockTTS(logger), nil
	default:
		return tts.NewGoogleTTS(ctx, logger)
	}
}

func intFromEnv(name string, fallback int) int {
	if raw := os.Getenv(name); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			return value
		}
	}
	return fallback
}

func durationFromEnv(name string, fallbackDays int) time.Duration {
	return time.Duration(intFromEnv(name, fallbackDays))
}
