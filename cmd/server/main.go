// cmd/server/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/shopify-automation/internal/config"
	"github.com/javajoker/shopify-automation/internal/database"
	"github.com/javajoker/shopify-automation/internal/i18n"
	"github.com/javajoker/shopify-automation/internal/router"
	"github.com/javajoker/shopify-automation/internal/services"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}

	logger := newLogger(cfg.Logging)

	// Initialize database
	db, err := database.Initialize(cfg.Database)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize database")
	}
	defer database.Close(db)

	// Run database migrations
	if err := database.RunMigrations(db); err != nil {
		logger.WithError(err).Fatal("Failed to run migrations")
	}
	if err := database.SeedInitialData(db, cfg.Seed); err != nil {
		logger.WithError(err).Fatal("Failed to seed initial data")
	}

	// Initialize i18n
	if err := i18n.Initialize(); err != nil {
		logger.WithError(err).Fatal("Failed to initialize i18n")
	}

	// Set Gin mode
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// Initialize services
	logService := services.NewLogService(db, logger)
	storageService, err := services.NewStorageService(cfg)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize archive storage")
	}
	shopifyService := services.NewShopifyService(cfg.Shopify)
	openAIService := services.NewOpenAIService(cfg.OpenAI, logger)
	aliexpressService := services.NewAliExpressService(cfg.Scraper, logger)
	defer aliexpressService.Close()

	importService := services.NewImportService(db, aliexpressService, shopifyService, storageService, logService)

	r := router.Initialize(ctx, cfg, router.Services{
		DB:       db,
		Source:   aliexpressService,
		Products: services.NewProductService(db, shopifyService, openAIService, logService),
		Import:   importService,
		SNS:      services.NewSNSService(db, openAIService, logService),
		Users:    services.NewUserService(db, logService),
		Logs:     logService,
	}, logger)

	go logService.RunRetention(ctx, cfg.Logging.RetentionDays, time.Duration(cfg.Logging.RetentionIntervalHours)*time.Hour)

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.WithField("addr", srv.Addr).Info("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("Failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	// Create a deadline for shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Server forced to shutdown")
	}

	stop()

	// Let running import jobs finish their current batch
	logger.Info("Waiting for import jobs...")
	importService.Wait()

	logger.Info("Server exited")
}

func newLogger(cfg config.LoggingConfig) *logrus.Logger {
	logger := logrus.StandardLogger()

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if cfg.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return logger
}
