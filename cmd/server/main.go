package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"todo_server/internal/api"
	"todo_server/internal/app/service"
	"todo_server/internal/common/security"
	"todo_server/internal/domain/repository"
	"todo_server/internal/platform/config"
	"todo_server/internal/platform/database"
	"todo_server/internal/platform/kvstore"
	"todo_server/internal/platform/logging"
	"todo_server/internal/platform/metrics"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger := logging.Setup(cfg.AppName, cfg.LogFormat, cfg.LogLevel, os.Stderr)
	slog.SetDefault(logger)
	logger.Info("Configuration loaded")

	ctx := context.Background()

	// 2. Initialize Database
	pool, err := database.Connect(ctx, cfg)
	if err != nil {
		logger.Error("Unable to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	// 3. Apply Migrations
	if err := migrate(cfg.DatabaseURL); err != nil {
		logger.Error("Migrations failed", "error", err)
		os.Exit(1)
	}
	logger.Info("Migrations applied")

	// 4. Initialize Redis (optional)
	var limiter service.LoginLimiter = service.NoopLimiter{}
	rdb, err := kvstore.Connect(ctx, cfg)
	if err != nil {
		logger.Error("Unable to connect to Redis", "error", err)
		os.Exit(1)
	}
	if rdb != nil {
		defer rdb.Close()
		limiter = service.NewRedisLoginLimiter(rdb, cfg.AppName, cfg.LoginMaxFailures, cfg.LoginLockout)
	}

	// 5. Initialize Repositories
	userRepo := repository.NewPgUserRepository(pool)
	todoRepo := repository.NewPgTodoRepository(pool)

	// 6. Initialize Services
	tokens := security.NewTokenService(security.TokenConfig{Secret: cfg.JWTKey, TTL: security.TokenTTL})
	userService := service.NewUserService(userRepo, security.NewBcryptHasher(cfg.BcryptCost), limiter, logger)
	todoService := service.NewTodoService(todoRepo)

	// 7. Initialize Router & HTTP Server
	router := api.NewRouter(api.Deps{
		UserService: userService,
		TodoService: todoService,
		Tokens:      tokens,
		Metrics:     metrics.New(),
		Logger:      logger,
	})

	server := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// 8. Graceful Shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Server starting", "port", cfg.APIPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Could not listen", "port", cfg.APIPort, "error", err)
			os.Exit(1)
		}
	}()

	<-stop // Wait for interrupt signal

	logger.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown failed", "error", err)
		return
	}

	logger.Info("Server stopped gracefully")
}

func migrate(databaseURL string) error {
	m, err := database.NewMigrator(databaseURL)
	if err != nil {
		return err
	}
	defer m.Close()
	return m.Up()
}
