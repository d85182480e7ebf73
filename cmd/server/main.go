package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/jrmmllrs/test-app-backend/internal/config"
	"github.com/jrmmllrs/test-app-backend/internal/database"
	"github.com/jrmmllrs/test-app-backend/internal/handler"
	"github.com/jrmmllrs/test-app-backend/internal/logger"
	"github.com/jrmmllrs/test-app-backend/internal/mailer"
	"github.com/jrmmllrs/test-app-backend/internal/repository"
	"github.com/jrmmllrs/test-app-backend/internal/router"
	"github.com/jrmmllrs/test-app-backend/internal/service"
	"github.com/jrmmllrs/test-app-backend/internal/validator"
	"github.com/jrmmllrs/test-app-backend/internal/worker"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Msg("Starting Assessment Platform Backend")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// ─── Initialize Repositories ───────────────────────────────────────
	userRepo := repository.NewUserRepository(pool)
	testRepo := repository.NewTestRepository(pool)
	questionRepo := repository.NewQuestionRepository(pool)
	invitationRepo := repository.NewInvitationRepository(pool)
	sessionRepo := repository.NewSessionRepository(pool)
	resultRepo := repository.NewResultRepository(pool)
	proctoringRepo := repository.NewProctoringRepository(pool)

	// ─── Initialize Services ──────────────────────────────────────────
	mail := mailer.New(cfg)
	notifier := service.NewRedisNotifier(rdb)

	authService := service.NewAuthService(cfg, userRepo)
	userService := service.NewUserService(userRepo, authService)
	testService := service.NewTestService(testRepo, questionRepo, resultRepo)
	invitationService := service.NewInvitationService(cfg, invitationRepo, testRepo, mail)
	sessionService := service.NewSessionService(sessionRepo, resultRepo)
	gradingService := service.NewGradingService(testRepo, questionRepo, resultRepo, userRepo, invitationService, notifier)
	proctoringService := service.NewProctoringService(proctoringRepo, testRepo, notifier)
	resultService := service.NewResultService(resultRepo, testRepo)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Auth:       handler.NewAuthHandler(authService, userService),
		Test:       handler.NewTestHandler(testService, sessionService, gradingService, resultService),
		Invitation: handler.NewInvitationHandler(invitationService),
		Proctoring: handler.NewProctoringHandler(proctoringService),
		Result:     handler.NewResultHandler(resultService),
		User:       handler.NewUserHandler(userService),
		Monitor:    handler.NewMonitorHandler(rdb, proctoringService, testService, log, cfg.AllowedOrigins),
		System:     handler.NewSystemHandler(rdb, log),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())

	notifyWorker := worker.NewNotifyWorker(rdb, mail, log)
	go notifyWorker.Start(workerCtx)

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(authService, handlers, cfg)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
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

	// 2. Stop the notify worker and let it drain the queue.
	workerCancel()
	time.Sleep(2 * time.Second)

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
