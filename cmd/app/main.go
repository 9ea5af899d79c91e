package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gaurav-prajapat/featuresgym-sub009/internal/booking"
	"github.com/gaurav-prajapat/featuresgym-sub009/internal/cache"
	"github.com/gaurav-prajapat/featuresgym-sub009/internal/clock"
	"github.com/gaurav-prajapat/featuresgym-sub009/internal/config"
	"github.com/gaurav-prajapat/featuresgym-sub009/internal/db"
	"github.com/gaurav-prajapat/featuresgym-sub009/internal/events"
	"github.com/gaurav-prajapat/featuresgym-sub009/internal/facility"
	"github.com/gaurav-prajapat/featuresgym-sub009/internal/logger"
	"github.com/gaurav-prajapat/featuresgym-sub009/internal/membership"
	"github.com/gaurav-prajapat/featuresgym-sub009/internal/occupancy"
	"github.com/gaurav-prajapat/featuresgym-sub009/internal/server"
	"github.com/gaurav-prajapat/featuresgym-sub009/internal/sweeper"
	"github.com/gaurav-prajapat/featuresgym-sub009/internal/tracing"
	"github.com/gaurav-prajapat/featuresgym-sub009/internal/wallet"

	"github.com/redis/go-redis/v9"
)

var version = "dev"

// @title FeaturesGym Booking API
// @version 1.0
// @description Visit booking, cancellation and entitlement engine for FeaturesGym facilities.
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Init()
		logger.Fatalf("Failed to load config: %v", err)
	}
	logger.Init(cfg.LogLevel)
	logger.Info("Starting FeaturesGym booking service", "version", version)

	loc, err := cfg.Location()
	if err != nil {
		logger.Fatalf("Failed to resolve facility timezone: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownTracing, err := tracing.Init(ctx, cfg.OTELEndpoint, version)
	if err != nil {
		logger.Fatalf("Failed to init tracing: %v", err)
	}
	defer func() {
		tctx, tcancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer tcancel()
		if err := shutdownTracing(tctx); err != nil {
			logger.Errorf("Error flushing traces: %v", err)
		}
	}()

	logger.Info("Connecting to database...")
	database, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()
	logger.Info("Database connected")

	if err := db.RunMigrations(database, cfg.MigrationsPath); err != nil {
		logger.Fatalf("Failed to run migrations: %v", err)
	}
	logger.Info("Migrations completed")

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer rdb.Close()
	if err := rdb.Ping(ctx).Err(); err != nil {
		// Cache misses and an unlocked sweep are both safe; keep going.
		logger.WithError(err).Warn("Redis unreachable, slot cache and sweep lock degraded")
	}

	var publisher events.Publisher = events.Nop{}
	if cfg.RabbitURL != "" {
		rp, err := events.NewRabbitPublisher(cfg.RabbitURL, cfg.EventsExchange)
		if err != nil {
			logger.Fatalf("Failed to connect to RabbitMQ: %v", err)
		}
		publisher = rp
		logger.Info("Event publisher connected", "exchange", cfg.EventsExchange)
	}
	defer publisher.Close()

	clk := clock.NewReal()
	memberships := membership.NewRepository(database)
	wallets := wallet.NewRepository(database)
	store := booking.NewRepository(database, memberships, wallets, occupancy.NewTracker(database))

	svc := booking.NewService(store, facility.NewRepository(database), clk,
		booking.WithLocation(loc),
		booking.WithPublisher(publisher),
		booking.WithSlotCache(cache.NewSlotCache(rdb, cfg.SlotCacheTTL)),
	)

	sw := sweeper.New(svc, clk,
		sweeper.WithLocker(sweeper.NewRedisLocker(rdb)),
		sweeper.WithInterval(cfg.SweepInterval),
	)
	go sw.Start(ctx)

	srv := server.New(cfg, server.Handlers{
		Bookings:    booking.NewHandler(svc),
		Wallet:      wallet.NewHandler(wallets),
		Memberships: membership.NewHandler(memberships),
		Sweeps:      sweeper.NewHandler(sw, clk),
		Ping:        database.PingContext,
	})

	serverErrChan := make(chan error, 1)
	go func() {
		logger.Infof("Server starting on port %s", cfg.Port)
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Infof("Received signal: %v", sig)
	case err := <-serverErrChan:
		logger.Errorf("Server error: %v", err)
	}

	logger.Info("Shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Error during server shutdown: %v", err)
	}

	logger.Info("Server stopped")
}
