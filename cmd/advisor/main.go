package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/smartspec/build-advisor/config"
	"github.com/smartspec/build-advisor/internal/delivery/rest"
	"github.com/smartspec/build-advisor/internal/delivery/telegram"
	"github.com/smartspec/build-advisor/internal/domain/constants"
	"github.com/smartspec/build-advisor/internal/domain/repository"
	"github.com/smartspec/build-advisor/internal/infrastructure/gemini"
	"github.com/smartspec/build-advisor/internal/infrastructure/storage"
	"github.com/smartspec/build-advisor/internal/usecase"
	"github.com/smartspec/build-advisor/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Init("info", "json").Fatal("failed to load configuration", zap.Error(err))
	}

	log := logger.Init(cfg.LogLevel, cfg.LogFormat)
	defer logger.Sync()
	log.Info("starting build advisor", zap.String("model", cfg.GeminiModel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. Gemini client. The handle is created on the first request.
	aiRepo := gemini.NewGeminiClient(gemini.Options{
		APIKey:    cfg.GeminiAPIKey,
		ModelName: cfg.GeminiModel,
		Timeout:   cfg.GenerationTimeout,
		Logger:    log,
	})
	defer aiRepo.Close()
	if cfg.GeminiAPIKey == "" {
		log.Warn("GEMINI_API_KEY is not set; recommendation requests will fail until it is")
	}

	// 2. Build history
	buildRepo, db, err := openBuildRepository(ctx, cfg, log)
	if err != nil {
		log.Fatal("failed to open build storage", zap.Error(err))
	}
	if db != nil {
		defer db.Close()
	}

	// 3. Use case
	recommendations := usecase.NewRecommendationUseCase(aiRepo, buildRepo, cfg.HistoryLimit, log)

	// 4. HTTP API
	gin.SetMode(gin.ReleaseMode)
	router := rest.NewRouter(rest.NewHandler(recommendations, log), log)
	server := rest.NewServer(cfg.HTTPAddr, router, cfg.GenerationTimeout, log)

	errCh := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil {
			errCh <- err
		}
	}()

	// 5. Telegram bot (optional)
	if cfg.TelegramEnabled() {
		bot, err := telegram.NewBotHandler(cfg.TelegramToken, recommendations, log)
		if err != nil {
			log.Error("telegram bot disabled", zap.Error(err))
		} else {
			log.Info("telegram bot ready", zap.String("username", bot.GetBotUsername()))
			go func() {
				if err := bot.Start(ctx); err != nil && ctx.Err() == nil {
					log.Error("telegram bot stopped", zap.Error(err))
				}
			}()
		}
	}

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err := <-errCh:
		log.Error("http server failed", zap.Error(err))
	}
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown", zap.Error(err))
	}
	log.Info("stopped")
}

// openBuildRepository uses Postgres when DATABASE_URL is set, memory otherwise.
func openBuildRepository(ctx context.Context, cfg *config.Config, log *zap.Logger) (repository.BuildRepository, *sql.DB, error) {
	if cfg.DatabaseURL == "" {
		log.Info("DATABASE_URL not set, keeping build history in memory")
		return storage.NewMemoryBuildRepository(constants.DefaultMaxBuildsPerUser), nil, nil
	}

	db, err := storage.OpenPostgres(ctx, cfg.DatabaseURL, cfg.PostgresConnectAttempts, cfg.PostgresConnectDelay, log)
	if err != nil {
		return nil, nil, err
	}
	if err := storage.RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, nil, err
	}
	log.Info("build history stored in postgres")
	return storage.NewPostgresBuildRepository(db), db, nil
}
