package main

import (
	"context"
	"errors"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"github.com/username/partsviewer/backend/src/config"
	"github.com/username/partsviewer/backend/src/database"
	"github.com/username/partsviewer/backend/src/handlers"
	"github.com/username/partsviewer/backend/src/logger"
	"github.com/username/partsviewer/backend/src/processors"
	"github.com/username/partsviewer/backend/src/security"
	"github.com/username/partsviewer/backend/src/services"
)

func main() {
	config.LoadConfig()
	logger.InitLogger(config.Cfg.LogLevel, logger.FileOptions{
		Path:       config.Cfg.LogFile,
		MaxSizeMB:  config.Cfg.LogMaxSizeMB,
		MaxBackups: config.Cfg.LogMaxBackups,
		MaxAgeDays: config.Cfg.LogMaxAgeDays,
	})
	logger.L.Info("Parts viewer backend starting...")

	logger.L.Info("Initializing database...", "path", config.Cfg.DatabasePath)
	store, err := database.Open(config.Cfg.DatabasePath)
	if err != nil {
		logger.L.Error("Failed to open database", "path", config.Cfg.DatabasePath, "error", err)
		os.Exit(1)
	}
	defer store.Close()

	authService := security.NewAuthService(config.Cfg.JWTSecret, config.Cfg.AccessTokenExpiry, store)
	if err := authService.EnsureAdmin(context.Background(), config.Cfg.AdminUsername, config.Cfg.AdminPassword); err != nil {
		logger.L.Error("Failed to create bootstrap admin", "error", err)
		os.Exit(1)
	}

	logger.L.Info("Initializing services and handlers...")
	uploadCache := cache.New(config.Cfg.UploadTTL, services.CacheCleanupInterval)
	mapper := processors.NewColumnMapper()
	catalogService := services.NewCatalogService(store)
	importService := services.NewImportService(
		mapper,
		processors.NewImportRowProcessor(mapper),
		services.NewReconciler(store),
		services.NewEmailService(),
		uploadCache,
	)
	exportService := services.NewExportService(store, config.Cfg.ExportDir)

	router := &handlers.Router{
		Users:      handlers.NewUserHandler(authService),
		Parts:      handlers.NewPartHandler(catalogService, importService),
		Categories: handlers.NewCategoryHandler(catalogService),
		Imports:    handlers.NewImportHandler(importService, exportService),
	}

	limiter := rate.NewLimiter(rate.Every(100*time.Millisecond), 30)
	finalHandler := handlers.CORSMiddleware(config.Cfg.AllowedOrigin)(
		handlers.RateLimitMiddleware(limiter)(router.Handler()))

	// Loopback only: the UI runs on the same machine.
	serverAddr := "127.0.0.1:" + config.Cfg.Port
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      finalHandler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.L.Info("Server starting", "address", serverAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.L.Error("Failed to start server", "error", err)
			stdlog.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	logger.L.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.L.Error("Graceful shutdown failed", "error", err)
	}
	logger.L.Info("Server stopped gracefully.")
}
