package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/smartbotuz/avtomat/internal/ai"
	"github.com/smartbotuz/avtomat/internal/api"
	"github.com/smartbotuz/avtomat/internal/archive"
	"github.com/smartbotuz/avtomat/internal/cache"
	"github.com/smartbotuz/avtomat/internal/config"
	"github.com/smartbotuz/avtomat/internal/logger"
	"github.com/smartbotuz/avtomat/internal/marketing"
	"github.com/smartbotuz/avtomat/internal/middleware"
	"github.com/smartbotuz/avtomat/internal/scheduler"
	"github.com/smartbotuz/avtomat/internal/store"
	"github.com/smartbotuz/avtomat/internal/telegram"
)

func main() {
	// Load and validate configuration. A missing credential stops the
	// process before the scheduling loop ever starts.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	if err := logger.Init(logger.Config{
		Level:  cfg.LogLevel,
		Output: logOutput(cfg),
		Pretty: cfg.Env == "development",
	}); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	lg := logger.Get()
	lg.Info().Msg("Starting SmartBot.uz marketing avtomat...")

	// Topic cache: Redis when configured, in-process otherwise. The cache
	// only steers topic selection, so a missing Redis is not fatal.
	var topicCache cache.TopicCache
	if cfg.RedisURL != "" {
		rc, err := cache.NewRedisCache(cfg)
		if err != nil {
			lg.Warn().Err(err).Msg("Redis unavailable, falling back to in-memory topic cache")
			topicCache = cache.NewMemoryCache()
		} else {
			topicCache = rc
		}
	} else {
		topicCache = cache.NewMemoryCache()
	}
	defer func() {
		if err := topicCache.Close(); err != nil {
			lg.Error().Err(err).Msg("Error closing topic cache")
		}
	}()

	blogStore, err := store.NewFileStore(cfg.BlogFile)
	if err != nil {
		lg.Fatal().Err(err).Msg("Failed to initialize blog store")
	}
	statsStore, err := store.NewStatsStore(cfg.StatsFile)
	if err != nil {
		lg.Fatal().Err(err).Msg("Failed to initialize stats store")
	}

	gemini := ai.NewGeminiClient(cfg.GeminiAPIKey, cfg.GeminiModel, cfg.AITimeout)
	publisher := telegram.NewPublisher(cfg.TelegramBotToken, cfg.TelegramChatID, cfg.SiteBaseURL, cfg.HTTPTimeout, blogStore)
	sched := scheduler.New(publisher, blogStore, cfg.DailyRunAt, cfg.TickInterval)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var archiver marketing.Archiver
	if cfg.ArchiveEnabled() {
		a, err := archive.New(ctx, cfg)
		if err != nil {
			lg.Warn().Err(err).Msg("Batch archive disabled, R2 client init failed")
		} else {
			archiver = a
			lg.Info().Str("bucket", cfg.R2Bucket).Msg("Batch archive enabled")
		}
	}

	avtomat := marketing.New(marketing.Options{
		Generator: gemini,
		Store:     blogStore,
		Stats:     statsStore,
		Topics:    topicCache,
		Scheduler: sched,
		Archiver:  archiver,
		BatchSize: cfg.TopicCount,
		TopicTTL:  cfg.TopicTTL,
		Model:     cfg.GeminiModel,
	})
	sched.SetDailyJob(avtomat.RunDaily)
	sched.Start(ctx)

	// HTTP surface: read-only blog API plus the admin trigger.
	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.HTTPTimeout,
		WriteTimeout: cfg.HTTPTimeout,
		IdleTimeout:  120 * time.Second,
		ErrorHandler: middleware.ErrorHandler,
	})
	app.Use(recover.New())
	app.Use(middleware.RequestLogger())

	handlers := api.NewHandlers(blogStore, statsStore, sched, avtomat)
	api.SetupRoutes(app, handlers, cfg.AdminAPIKey)

	go func() {
		lg.Info().Str("port", cfg.Port).Msg("Starting server")
		if err := app.Listen(":" + cfg.Port); err != nil {
			lg.Fatal().Err(err).Msg("Server error")
		}
	}()

	lg.Info().
		Str("daily_run_at", cfg.DailyRunAt).
		Msg("Avtomat is running, daily content generation scheduled")

	// Wait for interrupt signal to gracefully shut down
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	lg.Info().Msg("Shutting down...")

	sched.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		lg.Error().Err(err).Msg("Server forced to shutdown")
	}

	lg.Info().Msg("Avtomat exited properly")
}

func logOutput(cfg *config.Config) string {
	if cfg.LogFile != "" {
		return cfg.LogFile
	}
	return "stdout"
}
