// Package main is the entry point of the ledger HTTP server.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fanzvault/internal/app"
	"fanzvault/internal/config"
	"fanzvault/internal/logger"
	"fanzvault/internal/metrics"
	"fanzvault/internal/repositories"
	"fanzvault/internal/repositories/cache"
	"fanzvault/internal/routes"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func main() {
	config.LoadEnv()
	cfg := config.Load()

	zlog, err := logger.New(cfg.Env)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer zlog.Sync() //nolint:errcheck

	db, err := repositories.OpenPostgres(cfg.DB)
	if err != nil {
		zlog.Fatal("database", zap.Error(err))
	}
	if err := repositories.Migrate(db); err != nil {
		zlog.Fatal("migration", zap.Error(err))
	}
	store := repositories.NewPostgresStore(db)
	defer store.Close()

	ctx := context.Background()
	if err := store.Ping(ctx); err != nil {
		zlog.Fatal("database ping", zap.Error(err))
	}
	zlog.Info("connected to database", zap.String("host", cfg.DB.Host), zap.String("db", cfg.DB.Name))

	var redisClient *redis.Client
	if cfg.Redis.Host != "" {
		redisClient = cache.NewRedisClient(cfg.Redis)
		if err := cache.HealthCheck(ctx, redisClient); err != nil {
			// Balances are served from the database until redis is back.
			zlog.Warn("redis unavailable", zap.Error(err))
		}
		defer redisClient.Close()
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.NewPrometheus(reg)

	svcs := app.NewServices(store, redisClient, cfg.Ledger, collector, zlog)

	server := fiber.New(fiber.Config{
		AppName:      "fanzvault",
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	})
	server.Use(recover.New())
	server.Use(cors.New(cors.Config{
		AllowOrigins: config.GetEnv("CORS_ALLOW_ORIGINS", "*"),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,HEAD",
	}))
	server.Use(fiberlogger.New(fiberlogger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	routes.SetupRoutes(server, svcs.Routes(cfg.JWTSecret, reg, zlog))

	go func() {
		if err := server.Listen(":" + cfg.Port); err != nil {
			zlog.Fatal("server stopped", zap.Error(err))
		}
	}()
	zlog.Info("listening", zap.String("port", cfg.Port), zap.String("env", cfg.Env))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zlog.Info("shutting down")
	if err := server.ShutdownWithTimeout(shutdownTimeout); err != nil {
		zlog.Error("shutdown", zap.Error(err))
	}
}
