package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"spendlens/internal/api"
	"spendlens/internal/api/handlers"
	"spendlens/internal/repository"
	"spendlens/internal/service"
	"spendlens/pkg/config"
	"spendlens/pkg/logger"
	"spendlens/pkg/postgres"

	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize global logger
	if err := logger.Init(cfg.Logger.Level); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	appLogger := logger.Get()
	appLogger.Info("Starting spendlens service")

	if err := os.MkdirAll(cfg.Storage.UploadDir, 0755); err != nil {
		appLogger.Fatal("Failed to create upload directory", zap.Error(err))
	}

	// Initialize database
	ctx := context.Background()
	db, err := postgres.NewPool(ctx, &cfg.Database, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := postgres.EnsureSchema(ctx, db); err != nil {
		appLogger.Fatal("Failed to ensure database schema", zap.Error(err))
	}

	// Initialize store and adapters
	store := repository.NewDocumentRepository(db, appLogger)
	extractor := service.NewFitzExtractor(appLogger)

	parser, err := service.NewStatementParser(ctx, cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize statement parser", zap.Error(err))
	}
	defer parser.Close()

	// Initialize services
	statementService := service.NewStatementService(store, extractor, parser, cfg.Storage.ArtifactDir, appLogger)
	dashboardService := service.NewDashboardService(cfg.Storage.ArtifactDir, appLogger)
	summaryService := service.NewSummaryService(store, appLogger)

	// Initialize handlers and router
	statementHandler := handlers.NewStatementHandler(
		statementService, dashboardService, summaryService, cfg.Storage.UploadDir, appLogger,
	)
	app := api.SetupRouter(statementHandler, appLogger)

	// Start server
	go func() {
		addr := ":" + cfg.Server.Port
		appLogger.Info("Server starting", zap.String("address", addr))
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server")
	if err := app.Shutdown(); err != nil {
		appLogger.Error("Server shutdown error", zap.Error(err))
	}
}
