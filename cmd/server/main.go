// Package main initializes and starts the LeafGuard HTTP server,
// setting up configuration, logging, database connections, repositories,
// services and handlers.
package main

import (
	"cmp"
	"context"
	"fmt"
	"time"

	nethttp "net/http"

	"go.uber.org/zap"

	"github.com/atinyakov/LeafGuard/internal/config"
	"github.com/atinyakov/LeafGuard/internal/db"
	"github.com/atinyakov/LeafGuard/internal/inference"
	"github.com/atinyakov/LeafGuard/internal/logger"
	"github.com/atinyakov/LeafGuard/internal/repository"
	"github.com/atinyakov/LeafGuard/internal/server/handler/http"
	"github.com/atinyakov/LeafGuard/internal/service"
	"github.com/atinyakov/LeafGuard/internal/storage"
	"github.com/atinyakov/LeafGuard/internal/token"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

func main() {
	// Parse command-line and environment configuration.
	options := config.Parse()

	// Print build metadata (or "N/A" if unset).
	fmt.Printf("Build version: %s\n", cmp.Or(version, "N/A"))
	fmt.Printf("Build date: %s\n", cmp.Or(buildDate, "N/A"))

	// Initialize structured logging.
	log := logger.New()
	defer func() { _ = log.Log.Sync() }()
	if err := log.Init("Info"); err != nil {
		log.Log.Fatal("failed to init logger", zap.Error(err))
	}
	zapLogger := log.Log

	// Secrets have no defaults: refuse to start without them.
	if options.JWTSecret == "" {
		zapLogger.Fatal("token signing key is not configured (JWT_SECRET)")
	}
	if options.DatabaseDSN == "" {
		zapLogger.Fatal("database DSN is not configured (DATABASE_DSN)")
	}

	// Initialize PostgreSQL connection.
	postgresDB, err := db.InitPostgres(options.DatabaseDSN)
	if err != nil {
		zapLogger.Fatal("cannot init database", zap.Error(err))
	}

	// Reap image files orphaned by failed history inserts.
	db.StartOrphanImageCleaner(context.Background(), postgresDB,
		options.UploadDir,
		time.Hour,    // interval
		24*time.Hour, // minimum file age
		zapLogger,
	)

	// Initialize repositories for users and prediction history.
	userRepo := repository.NewPostgresUserRepository(postgresDB)
	historyRepo := repository.NewPostgresHistoryRepository(postgresDB)

	// Token manager, image store and classifier client.
	tokens := token.NewManager(options.JWTSecret, time.Duration(options.TokenTTLMinutes)*time.Minute)
	images := storage.NewImageStore(options.UploadDir)
	classifier := inference.NewClient(options.ModelURL)

	// Initialize business-logic services.
	authService := service.NewAuthService(userRepo, tokens)
	historyService := service.NewHistoryService(historyRepo, userRepo, images, zapLogger)

	// Create HTTP handlers for auth, history and predict endpoints.
	authHandler := &http.AuthHandler{AuthService: authService}
	historyHandler := &http.HistoryHandler{HistoryService: historyService}
	predictHandler := &http.PredictHandler{Classifier: classifier}

	// Build the router with middleware and routes.
	router := http.NewRouter(authHandler, historyHandler, predictHandler, tokens, zapLogger)

	server := &nethttp.Server{
		Addr:    options.Address,
		Handler: router,
	}

	zapLogger.Info("starting HTTP server", zap.String("addr", options.Address))
	if err := server.ListenAndServe(); err != nil {
		zapLogger.Fatal("failed to start HTTP server", zap.Error(err))
	}
}
