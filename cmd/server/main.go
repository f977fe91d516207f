// Package main is the entry point for the trading journal backend.
//
// The application follows a layered architecture:
// - Domain layer is pure (no infrastructure dependencies)
// - Repository pattern for data access
// - Service layer for business logic
// - HTTP handlers for API endpoints
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/zhixing/journal/internal/config"
	"github.com/zhixing/journal/internal/database"
	"github.com/zhixing/journal/internal/modules/accounts"
	accounthandlers "github.com/zhixing/journal/internal/modules/accounts/handlers"
	"github.com/zhixing/journal/internal/modules/analytics"
	statshandlers "github.com/zhixing/journal/internal/modules/analytics/handlers"
	"github.com/zhixing/journal/internal/modules/notes"
	notehandlers "github.com/zhixing/journal/internal/modules/notes/handlers"
	"github.com/zhixing/journal/internal/modules/trades"
	tradehandlers "github.com/zhixing/journal/internal/modules/trades/handlers"
	"github.com/zhixing/journal/internal/server"
	"github.com/zhixing/journal/pkg/logger"
)

func main() {
	// Load configuration first to get log level
	cfg, err := config.Load()
	if err != nil {
		fallbackLog := logger.New(logger.Config{
			Level:  "info",
			Pretty: true,
		})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:    cfg.LogLevel,
		Pretty:   cfg.DevMode,
		FilePath: cfg.LogFile,
	})
	logger.SetGlobalLogger(log)

	log.Info().Str("dataDir", cfg.DataDir).Msg("Starting trading journal")

	// Journal database: maximum-durability SQLite profile, since this is the
	// audit trail of real trades
	db, err := database.New(database.Config{
		Path:    cfg.DatabasePath(),
		Profile: database.ProfileJournal,
		Name:    "journal",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open database")
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatal().Err(err).Msg("Failed to migrate database")
	}

	// Repositories
	conn := db.Conn()
	tradeRepo := trades.NewTradeRepository(conn, log)
	accountRepo := accounts.NewRepository(conn, log)
	noteRepo := notes.NewRepository(conn, log)

	// Services
	accountService := accounts.NewService(accountRepo, log)
	tradeService := trades.NewService(conn, tradeRepo, accountService, log)
	statsService := analytics.NewService(tradeRepo, log)

	// HTTP layer
	srv := server.New(cfg, db, server.Handlers{
		Trades:   tradehandlers.NewTradeHandlers(tradeService, cfg.DefaultPageSize, cfg.MaxPageSize, log),
		Accounts: accounthandlers.NewAccountHandlers(accountService, log),
		Stats:    statshandlers.NewStatsHandlers(statsService, log),
		Notes:    notehandlers.NewNoteHandlers(noteRepo, log),
	}, log)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server shutdown failed")
	}

	log.Info().Msg("Trading journal stopped")
}
