package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/youssef-benmansour/fuel-vivo/internal/app"
	"github.com/youssef-benmansour/fuel-vivo/internal/fileparse"
	"github.com/youssef-benmansour/fuel-vivo/internal/importer"
	"github.com/youssef-benmansour/fuel-vivo/internal/masterdata"
	"github.com/youssef-benmansour/fuel-vivo/internal/orders"
	"github.com/youssef-benmansour/fuel-vivo/internal/platform/cache"
	"github.com/youssef-benmansour/fuel-vivo/internal/platform/db"
	"github.com/youssef-benmansour/fuel-vivo/internal/trips"
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

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	// The reference cache is optional; without Redis every list read falls
	// through to the database.
	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable, reference cache disabled", slog.Any("error", err))
	} else {
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}()
	}
	store := cache.NewStore(redisClient, cfg.ReferenceCacheTTL)

	masterRepo := masterdata.NewRepository(pool)
	dataHandler := masterdata.NewHandler(logger, masterRepo, store)

	orderRepo := orders.NewRepository(pool)
	orderService := orders.NewService(logger, orderRepo)
	orderHandler := orders.NewHandler(logger, orderService)

	tripRepo := trips.NewRepository(pool)
	tripService := trips.NewService(logger, tripRepo)
	tripHandler := trips.NewHandler(logger, tripService)

	historyRepo := importer.NewHistoryRepository(pool)
	importService := importer.NewService(logger, tripRepo, masterRepo, historyRepo, store)
	importHandler := importer.NewHandler(logger, importService, fileparse.Parse, cfg.MaxUploadBytes)

	router := app.NewRouter(app.RouterParams{
		Logger:        logger,
		Config:        cfg,
		OrderHandler:  orderHandler,
		TripHandler:   tripHandler,
		ImportHandler: importHandler,
		DataHandler:   dataHandler,
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
