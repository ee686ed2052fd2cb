package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/testcraft-backend/internal/blobstore"
	"github.com/stemsi/testcraft-backend/internal/config"
	"github.com/stemsi/testcraft-backend/internal/database"
	"github.com/stemsi/testcraft-backend/internal/handler"
	"github.com/stemsi/testcraft-backend/internal/identity"
	"github.com/stemsi/testcraft-backend/internal/logger"
	"github.com/stemsi/testcraft-backend/internal/repository"
	"github.com/stemsi/testcraft-backend/internal/router"
	"github.com/stemsi/testcraft-backend/internal/service"
	"github.com/stemsi/testcraft-backend/internal/validator"
	"github.com/stemsi/testcraft-backend/internal/worker"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("docstore", cfg.DocstoreDriver).
		Str("log_level", cfg.LogLevel).
		Msg("Starting TestCraft Backend")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Open Document Store ───────────────────────────────────────────
	store, closeStore, err := database.NewDocstore(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open document store")
	}
	defer closeStore()

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// ─── Blob Store & Auth Events ──────────────────────────────────────
	blobs := blobstore.NewDiskStore(cfg.UploadDir, cfg.PublicBaseURL)
	notifier := identity.NewRedisNotifier(rdb, log)

	// ─── Initialize Repositories ───────────────────────────────────────
	teacherRepo := repository.NewTeacherRepository(store)
	classRepo := repository.NewClassRepository(store)
	itemRepo := repository.NewItemRepository(store)
	testRepo := repository.NewTestRepository(store)
	recordRepo := repository.NewScoreRecordRepository(store)

	// ─── Initialize Services ──────────────────────────────────────────
	authService := service.NewAuthService(cfg, rdb, teacherRepo, notifier, log)
	classService := service.NewClassService(classRepo, log)
	itemService := service.NewItemService(itemRepo, log)
	testService := service.NewTestService(testRepo, itemRepo, classService, log)
	mediaService := service.NewMediaService(cfg, blobs)
	analyticsService := service.NewAnalyticsService(classService, recordRepo, rdb, cfg.AnalyticsCacheTTL, log)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Auth:      handler.NewAuthHandler(authService),
		Class:     handler.NewClassHandler(classService, testService),
		Item:      handler.NewItemHandler(itemService),
		Editor:    handler.NewEditorHandler(),
		Test:      handler.NewTestHandler(testService),
		Media:     handler.NewMediaHandler(mediaService),
		Analytics: handler.NewAnalyticsHandler(analyticsService),
		Monitor:   handler.NewMonitorHandler(rdb, analyticsService, notifier, log, cfg.AllowedOrigins),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())
	workerDone := make(chan struct{})

	ingestWorker := worker.NewScoreIngestWorker(recordRepo, analyticsService, rdb, log)
	go func() {
		defer close(workerDone)
		ingestWorker.Start(workerCtx)
	}()

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(ctx, authService, handlers, cfg)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Stop accepting new HTTP requests (5s timeout).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Stop the ingest worker and wait for its last batch.
	workerCancel()
	select {
	case <-workerDone:
	case <-time.After(10 * time.Second):
		log.Warn().Msg("Ingest worker did not drain in time")
	}

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
