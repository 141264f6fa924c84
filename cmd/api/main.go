package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/Mukasa-Matthew/expense-api/internal/auth"
	"github.com/Mukasa-Matthew/expense-api/internal/config"
	"github.com/Mukasa-Matthew/expense-api/internal/events"
	apphttp "github.com/Mukasa-Matthew/expense-api/internal/http"
	"github.com/Mukasa-Matthew/expense-api/internal/log"
	"github.com/Mukasa-Matthew/expense-api/internal/services"
	"github.com/Mukasa-Matthew/expense-api/internal/storage"
)

const sessionPurgeInterval = time.Hour

func main() {
	_ = godotenv.Load()

	logger := log.New(log.Config{}).WithComponent(log.ComponentApp)
	log.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("configuration invalid", log.FieldError, err)
		os.Exit(1)
	}

	repo, err := storage.NewSQLiteRepository(cfg.DBPath)
	if err != nil {
		logger.Error("storage init failed", log.FieldError, err)
		os.Exit(1)
	}
	defer repo.Close()

	var publisher *events.Publisher
	if cfg.AMQPURL != "" {
		publisher, err = events.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("amqp init failed", log.FieldError, err)
			os.Exit(1)
		}
		defer publisher.Close()
	} else {
		logger.Info("event publishing disabled, AMQP_URL not set")
	}

	authSvc := auth.NewService(repo, cfg.SessionTTL, cfg.BcryptCost, logger)
	records := services.NewRecordService(repo, publisher, logger)
	analytics := services.NewAnalyticsService(repo, logger)

	srv := apphttp.NewServer(cfg, authSvc, records, analytics, repo, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go purgeSessions(ctx, authSvc, logger)

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown error", log.FieldError, err)
		}
		cancel()
	}()

	logger.Info("starting expense-api", "port", cfg.Port, "db", cfg.DBPath, log.FieldOperation, log.OpStartup)
	if err := srv.Start(); err != nil {
		logger.Error("server error", log.FieldError, err)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("server stopped gracefully")
}

// purgeSessions drops expired sessions on a fixed interval so the sessions
// table does not grow without bound.
func purgeSessions(ctx context.Context, authSvc *auth.Service, logger *log.Logger) {
	ticker := time.NewTicker(sessionPurgeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := authSvc.PurgeExpired(ctx); err != nil {
				logger.Warn("session purge failed", log.FieldError, err)
			}
		}
	}
}
