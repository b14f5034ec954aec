// ===========================================
// SmartLink Service - Main Entry Point
// ===========================================
// Wires everything together:
// 1. Load configuration
// 2. Initialize dependencies (PostgreSQL, Odesli client)
// 3. Build the HTTP server
// 4. Handle graceful shutdown
//
// If a critical dependency fails at startup, the process exits
// immediately rather than serving broken requests.
// ===========================================

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/user/smartlink/internal/config"
	"github.com/user/smartlink/internal/database"
	"github.com/user/smartlink/internal/handler"
	"github.com/user/smartlink/internal/logger"
	"github.com/user/smartlink/internal/odesli"
	"github.com/user/smartlink/internal/repository"
	"github.com/user/smartlink/internal/service"
	"go.uber.org/zap"
)

// Version is set at build time using ldflags.
// go build -ldflags "-X main.Version=1.0.0"
var Version = "dev"

func main() {
	// .env is optional; production injects real environment variables.
	_ = godotenv.Load()

	cfg := config.Load()

	log, err := logger.New(cfg.Env)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting smartlink service",
		zap.String("version", Version),
		zap.String("port", cfg.Server.Port),
		zap.String("env", cfg.Env),
	)

	// Startup gets a bounded context: if PostgreSQL is not reachable
	// within 30 seconds, something is wrong with the deployment.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	postgres, err := database.NewPostgresDB(ctx, cfg.Database)
	if err != nil {
		log.Fatal("failed to connect to PostgreSQL", zap.Error(err))
	}
	defer postgres.Close()
	log.Info("PostgreSQL connected")

	// Repositories -> services -> handlers, each layer only knowing
	// the one below. Manual dependency injection, no framework.
	linkRepo := repository.NewLinkRepository(postgres.Pool)
	linkService := service.NewLinkService(linkRepo, log)
	scanner := odesli.NewClient(cfg.Odesli)

	linkHandler := handler.NewLinkHandler(linkService, log)
	redirectHandler := handler.NewRedirectHandler(linkService, log)
	scanHandler := handler.NewScanHandler(scanner, log)
	healthHandler := handler.NewHealthHandler(postgres)

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := handler.NewRouter(log, cfg.CORS, linkHandler, redirectHandler, scanHandler, healthHandler)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	// Graceful shutdown: stop accepting new requests, give in-flight
	// requests 30 seconds to complete.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("server forced to shutdown", zap.Error(err))
	}

	log.Info("server stopped")
}
