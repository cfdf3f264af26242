package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/minnehack2026-blugolds/backend/cache"
	"github.com/minnehack2026-blugolds/backend/config"
	"github.com/minnehack2026-blugolds/backend/router"
	"github.com/minnehack2026-blugolds/backend/utils"

	"go.uber.org/zap"
)

func main() {
	reset := flag.Bool("reset", false, "drop all tables, migrate and seed demo users")
	flag.Parse()

	cfg := config.LoadConfig()

	logger, err := config.NewLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	db, err := config.OpenDatabase(cfg.DBDriver, cfg.DatabaseURL, config.GormLogLevel(cfg.LogLevel))
	if err != nil {
		logger.Fatal("failed to initialize database", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("failed to get database handle", zap.Error(err))
	}
	sqlDB.SetMaxOpenConns(cfg.DBMaxOpenConns)
	defer sqlDB.Close()

	if *reset {
		err = config.ResetAndMigrate(db, logger)
	} else {
		err = config.Migrate(db, logger)
	}
	if err != nil {
		logger.Fatal("failed to migrate database", zap.Error(err))
	}

	deps := router.Deps{
		Config: cfg,
		DB:     db,
		Log:    logger,
		Tokens: utils.NewTokenManager(cfg.JWTSecret, cfg.JWTExpiration),
	}

	if cfg.RedisURL != "" {
		rc, err := cache.NewRedisCache(context.Background(), cfg.RedisURL)
		if err != nil {
			logger.Warn("redis unavailable, running without cache", zap.Error(err))
		} else {
			defer rc.Close()
			deps.Cache = rc
		}
	}

	app := router.New(deps)

	go func() {
		addr := cfg.HOST + ":" + cfg.AppPort
		logger.Info("server starting", zap.String("addr", addr), zap.String("env", cfg.AppEnv))
		if err := app.Listen(addr); err != nil {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")
	if err := app.ShutdownWithTimeout(30 * time.Second); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}
	logger.Info("server exited gracefully")
}
