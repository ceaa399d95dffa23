package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/back-pedagogico/stories-backend/config"
	"github.com/back-pedagogico/stories-backend/internal/app"
	"github.com/back-pedagogico/stories-backend/internal/db"
	"github.com/back-pedagogico/stories-backend/internal/storage"
	"github.com/back-pedagogico/stories-backend/pkg/logger"
	"github.com/back-pedagogico/stories-backend/pkg/redis"
	"github.com/back-pedagogico/stories-backend/pkg/tracing"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	// Initialize logger
	logLevel := "info"
	logFormat := "json"
	if cfg.Server.Environment == "development" {
		logLevel = "debug"
		logFormat = "console"
	}
	logger.Initialize(logger.Config{
		Level:       logLevel,
		Format:      logFormat,
		EnableColor: true,
	})

	logger.Info("Starting stories backend", map[string]interface{}{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"log_level":   logLevel,
	})

	ctx := context.Background()

	shutdownTracing, err := tracing.Init(ctx, &cfg.Tracing, cfg.Server.Environment)
	if err != nil {
		logger.Fatal("Failed to initialize tracing", err)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logger.Error("Failed to flush traces", err)
		}
	}()

	// Initialize database
	conn, err := db.Connect(&cfg.Database)
	if err != nil {
		logger.Fatal("Failed to initialize database", err)
	}
	defer func() {
		if err := db.Close(conn); err != nil {
			logger.Error("Failed to close database connection", err)
		}
	}()

	if err := db.Migrate(conn); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	store, err := storage.New(ctx, &cfg.Upload, &cfg.S3)
	if err != nil {
		logger.Fatal("Failed to initialize upload storage", err)
	}

	deps := app.Dependencies{DB: conn, Store: store}
	if cfg.Redis.Enabled {
		client, err := redis.Connect(ctx, &cfg.Redis)
		if err != nil {
			logger.Fatal("Failed to initialize Redis", err)
		}
		defer client.Close()
		deps.Blocklist = redis.NewTokenBlocklist(client)
	} else {
		logger.Info("Redis disabled, logout is stateless")
	}

	application := app.New(cfg, deps)

	if cfg.Bootstrap.AdminName != "" && cfg.Bootstrap.AdminPassword != "" {
		created, err := application.Auth.EnsureAdmin(ctx, cfg.Bootstrap.AdminName, cfg.Bootstrap.AdminPassword)
		if err != nil {
			logger.Fatal("Failed to bootstrap admin account", err)
		}
		if created {
			logger.Info("Bootstrap admin created", map[string]interface{}{
				"name": cfg.Bootstrap.AdminName,
			})
		}
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           application.Engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Server started successfully", map[string]interface{}{
			"address": srv.Addr,
			"pid":     os.Getpid(),
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server gracefully...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", err)
	}
	logger.Info("Server stopped successfully")
}
