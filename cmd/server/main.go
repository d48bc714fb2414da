package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/nekogravitycat/room-rental-backend/internal/app"
	"github.com/nekogravitycat/room-rental-backend/internal/auth"
	"github.com/nekogravitycat/room-rental-backend/internal/config"
	"github.com/nekogravitycat/room-rental-backend/internal/db"
	"github.com/nekogravitycat/room-rental-backend/internal/event"
	"github.com/nekogravitycat/room-rental-backend/internal/pkg/cache"
	"github.com/nekogravitycat/room-rental-backend/internal/pkg/logger"
)

func main() {
	// For receiving Ctrl+C / SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load config
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	l, err := logger.New(cfg.LogLevel, cfg.LogFormat, "room-rental-backend")
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer l.Sync()

	// Connect DB
	pool, err := db.NewPool(ctx, cfg.DBDSN)
	if err != nil {
		l.Fatal("failed to connect to db", zap.Error(err))
	}
	defer pool.Close()

	if err := db.EnsureSchema(ctx, pool); err != nil {
		l.Fatal("failed to apply schema", zap.Error(err))
	}

	// Optional event publisher
	var publisher event.Publisher = event.NopPublisher{}
	if cfg.RabbitMQURL != "" {
		publisher = event.NewAMQPPublisher(event.AMQPConfig{
			URL:         cfg.RabbitMQURL,
			Queue:       cfg.RentalEventsQueue,
			Buffer:      cfg.RentalEventsBuffer,
			DialTimeout: cfg.RabbitMQDialTimeout,
		}, l.Named("event"))
		l.Info("rental events enabled", zap.String("queue", cfg.RentalEventsQueue))
	}
	defer publisher.Close()

	// Optional availability cache. Startup continues without it.
	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb, err = cache.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			l.Warn("redis unavailable, caching disabled", zap.Error(err))
		} else {
			defer rdb.Close()
		}
	}

	container := app.NewContainer(app.Config{
		IsProduction: cfg.IsProduction,
		ProdOrigins:  cfg.ProdOrigins,
		DBPool:       pool,
		Token: auth.TokenConfig{
			Secret:   cfg.JWTSecret,
			Issuer:   cfg.JWTIssuer,
			Audience: cfg.JWTAudience,
			TTL:      cfg.JWTAccessTokenTTL,
		},
		BcryptCost:   cfg.BcryptCost,
		Logger:       l,
		Publisher:    publisher,
		Redis:        rdb,
		CacheTTL:     cfg.CacheTTL,
	})

	// Use http.Server for graceful shutdown
	server := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: container.Router,
	}

	// Run server in separate goroutine
	go func() {
		l.Info("server running", zap.String("addr", cfg.HTTPAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.Fatal("server error", zap.Error(err))
		}
	}()

	// Wait for Ctrl+C
	<-ctx.Done()
	l.Info("shutdown signal received")

	// Create a shutdown context with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Shutdown HTTP server
	if err := server.Shutdown(shutdownCtx); err != nil {
		l.Warn("server forced to shutdown", zap.Error(err))
	}

	l.Info("server exited gracefully")
}
