package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pharmledger/pharmledger/internal/app"
	"github.com/pharmledger/pharmledger/internal/dispense"
	"github.com/pharmledger/pharmledger/internal/observability"
	"github.com/pharmledger/pharmledger/internal/platform/db"
	"github.com/pharmledger/pharmledger/internal/reports"
	"github.com/pharmledger/pharmledger/internal/settings"
	"github.com/pharmledger/pharmledger/internal/stock"
	"github.com/pharmledger/pharmledger/internal/transfer"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	sdb, err := db.Open(cfg.SQLiteDSN)
	if err != nil {
		logger.Error("open database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := sdb.Close(); err != nil {
			logger.Warn("close database", slog.Any("error", err))
		}
	}()

	settingsRepo := settings.NewRepository(sdb)
	settingsService := settings.NewService(settingsRepo)
	settingsHandler := settings.NewHandler(logger, settingsService)

	stockRepo := stock.NewRepository(sdb)
	stockService := stock.NewService(stockRepo, settingsService)
	stockHandler := stock.NewHandler(logger, stockService)

	dispenseRepo := dispense.NewRepository(sdb)
	dispenseService := dispense.NewService(dispenseRepo, settingsService)
	dispenseHandler := dispense.NewHandler(logger, dispenseService)

	reportsHandler := reports.NewHandler(logger, stockRepo, dispenseRepo)

	transferRepo := transfer.NewRepository(sdb)
	transferService := transfer.NewService(transferRepo, settingsService)
	transferHandler := transfer.NewHandler(logger, transferService)

	metrics := observability.NewMetrics()

	router := app.NewRouter(app.RouterParams{
		Logger:          logger,
		Config:          cfg,
		StockHandler:    stockHandler,
		DispenseHandler: dispenseHandler,
		ReportsHandler:  reportsHandler,
		TransferHandler: transferHandler,
		SettingsHandler: settingsHandler,
		Metrics:         metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
