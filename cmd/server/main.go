package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/tankarena/lobby-server/internal/api"
	"github.com/tankarena/lobby-server/internal/factory"
	"github.com/tankarena/lobby-server/internal/services/room"
	redisstorage "github.com/tankarena/lobby-server/internal/storage/redis"
)

func main() {
	// Set up logging with JSON output
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Build factory config from environment
	cfg := factory.Config{
		Logger:      logger,
		StorageType: os.Getenv("STORAGE_TYPE"),
	}

	roomCfg := room.DefaultConfig()
	if v := os.Getenv("MIN_PLAYERS_TO_START"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			logger.Error("invalid MIN_PLAYERS_TO_START", slog.String("value", v))
			os.Exit(1)
		}
		roomCfg.MinPlayersToStart = n
	}
	cfg.RoomConfig = roomCfg

	// Configure Redis if storage type is redis
	if cfg.StorageType == factory.StorageTypeRedis {
		redisURL := os.Getenv("REDIS_URL")
		if redisURL == "" {
			logger.Error("REDIS_URL required when STORAGE_TYPE=redis")
			os.Exit(1)
		}
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = redisURL
		cfg.RedisConfig = &redisCfg
	}

	// Create application factory
	app, err := factory.New(cfg)
	if err != nil {
		logger.Error("failed to create application", slog.String("error", err.Error()))
		os.Exit(1)
	}

	router := api.NewRouter(api.RouterConfig{
		Logger:  logger,
		Session: app.Session,
	})

	serverConfig := api.DefaultServerConfig()
	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			logger.Error("invalid PORT", slog.String("value", v))
			os.Exit(1)
		}
		serverConfig.Port = port
	}
	server := api.NewServer(router, serverConfig, logger)

	// Handle graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logger.Info("shutdown signal received")
		cancel()
	}()

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	logger.Info("server started", slog.String("addr", server.Addr()))

	// Wait for shutdown or error
	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	case <-ctx.Done():
		if err := server.Shutdown(context.Background()); err != nil {
			logger.Error("shutdown error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	logger.Info("server stopped")
}
