package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/stemsi/musiq-backend/internal/audio"
	"github.com/stemsi/musiq-backend/internal/cache"
	"github.com/stemsi/musiq-backend/internal/config"
	"github.com/stemsi/musiq-backend/internal/database"
	"github.com/stemsi/musiq-backend/internal/generator"
	"github.com/stemsi/musiq-backend/internal/handler"
	"github.com/stemsi/musiq-backend/internal/logger"
	"github.com/stemsi/musiq-backend/internal/middleware"
	"github.com/stemsi/musiq-backend/internal/repository"
	"github.com/stemsi/musiq-backend/internal/router"
	"github.com/stemsi/musiq-backend/internal/score"
	"github.com/stemsi/musiq-backend/internal/service"
	"github.com/stemsi/musiq-backend/internal/validator"
	"github.com/stemsi/musiq-backend/internal/worker"
)

// memoryCacheEntries bounds the in-process cache used without Redis.
const memoryCacheEntries = 2048

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Str("generator", cfg.Generator).
		Msg("Starting Musiq Backend")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to PostgreSQL (optional) ──────────────────────────────
	var pool *pgxpool.Pool
	if cfg.HistoryEnabled() {
		var err error
		pool, err = database.NewPostgresPool(ctx, cfg, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
		}
		defer pool.Close()
	} else {
		log.Warn().Msg("DATABASE_URL not set, generation history disabled")
	}

	// ─── Connect to Redis (optional) ───────────────────────────────────
	var rdb *redis.Client
	if cfg.RedisURL != "" {
		var err error
		rdb, err = database.NewRedisClient(ctx, cfg, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		defer rdb.Close()
	} else {
		log.Warn().Msg("REDIS_URL not set, using in-process cache")
	}

	var docCache cache.Cache = cache.NewMemoryCache(memoryCacheEntries)
	if rdb != nil {
		docCache = cache.NewRedisCache(rdb)
	}

	// ─── Initialize Generation Pipeline ────────────────────────────────
	gen, err := generator.New(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize question generator")
	}

	audioAnalyzer := audio.NewAnalyzer(
		audio.NewDecoder(cfg.FFmpegPath),
		audio.LoadClassifier(cfg.RhythmModelPath, log),
		log,
	)
	scoreAnalyzer := score.NewAnalyzer(log)

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())
	workersDone := make(chan struct{})

	var (
		recorder       service.Recorder = service.NopRecorder{}
		reader         service.GenerationReader
		historyService *service.HistoryService
	)
	switch {
	case pool != nil && rdb != nil:
		genRepo := repository.NewGenerationRepository(pool)
		queue := cache.NewRedisQueue(rdb, config.WorkerKey.PersistGenerationsQueue)
		recorder = service.NewQueueRecorder(queue)
		reader = genRepo
		historyService = service.NewHistoryService(genRepo)

		historyWorker := worker.NewHistoryWorker(genRepo, queue, log)
		go func() {
			historyWorker.Start(workerCtx)
			close(workersDone)
		}()
	case pool != nil:
		genRepo := repository.NewGenerationRepository(pool)
		recorder = service.NewDirectRecorder(genRepo)
		reader = genRepo
		historyService = service.NewHistoryService(genRepo)
		close(workersDone)
	default:
		close(workersDone)
	}

	// ─── Initialize Services ──────────────────────────────────────────
	authService := service.NewAuthService(cfg)
	mediaService := service.NewMediaService(cfg)
	questionService := service.NewQuestionService(cfg, gen, audioAnalyzer, scoreAnalyzer, docCache, recorder, reader, log)

	if cfg.AdminEmail == "" || cfg.AdminPassHash == "" {
		log.Warn().Msg("ADMIN_EMAIL or ADMIN_PASSWORD_HASH not set, admin login disabled")
	}

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Auth:     handler.NewAuthHandler(authService),
		Catalog:  handler.NewCatalogHandler(),
		Question: handler.NewQuestionHandler(questionService, mediaService),
		Media:    handler.NewMediaHandler(mediaService),
		History:  handler.NewHistoryHandler(historyService),
		WS:       handler.NewWSHandler(questionService, mediaService, log, cfg.AllowedOrigins),
	}

	// ─── Rate Limiting ─────────────────────────────────────────────────
	var limiter middleware.Limiter
	if cfg.GenerateRateLimit > 0 {
		if rdb != nil {
			limiter = middleware.NewRedisRateLimiter(rdb, config.CacheKey.RateLimitPrefix("generate"), cfg.GenerateRateLimit, time.Minute)
		} else {
			limiter = middleware.NewRateLimiter(workerCtx, cfg.GenerateRateLimit, time.Minute)
		}
	}

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(router.Dependencies{
		Auth:            authService,
		GenerateLimiter: limiter,
		Log:             log,
	}, handlers, cfg)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Stop accepting new HTTP requests. Generations can take a while.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Stop background workers and wait for the history queue to drain.
	workerCancel()
	select {
	case <-workersDone:
	case <-time.After(10 * time.Second):
		log.Warn().Msg("History worker did not stop in time")
	}

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
