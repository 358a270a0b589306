package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/playhouse/roomhub/internal/api"
	"github.com/playhouse/roomhub/internal/api/handler"
	"github.com/playhouse/roomhub/internal/core/ports"
	"github.com/playhouse/roomhub/internal/core/service"
	"github.com/playhouse/roomhub/internal/infrastructure/db/mongo"
	"github.com/playhouse/roomhub/internal/infrastructure/db/redis"
	"github.com/playhouse/roomhub/internal/infrastructure/lock"
	"github.com/playhouse/roomhub/internal/infrastructure/realtime"
	"github.com/playhouse/roomhub/internal/pkg/config"
	"github.com/playhouse/roomhub/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		boot := zerolog.New(os.Stderr)
		boot.Fatal().Err(err).Msg("failed to load configuration")
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "roomhub",
		Env:     cfg.Env,
	})

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	mongoClient, db, err := mongo.Connect(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		return err
	}
	defer func() {
		_ = mongoClient.Disconnect(context.Background())
	}()
	if err := mongo.EnsureIndexes(ctx, db); err != nil {
		return err
	}
	log.Info().Str("database", cfg.Mongo.Database).Msg("mongodb connected")

	checks := map[string]handler.Check{
		"mongodb": func(ctx context.Context) error { return mongoClient.Ping(ctx, nil) },
	}

	var locker ports.Locker
	switch cfg.Lock.Backend {
	case config.LockBackendRedis:
		rdb, err := redis.Connect(ctx, redis.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
		if err != nil {
			return err
		}
		defer rdb.Close()
		checks["redis"] = redis.Ping(rdb)
		locker = redis.NewLocker(rdb, cfg.Lock.Timeout, cfg.Lock.HoldTimeout, logger.Component("lock"))
		log.Info().Str("addr", cfg.Redis.Addr).Msg("redis lock backend enabled")
	default:
		locker = lock.NewKeyed(cfg.Lock.Timeout, cfg.Lock.HoldTimeout)
		log.Info().Msg("in-process lock backend enabled")
	}

	// --- Repositories ---
	users := mongo.NewUserRepository(db)
	characters := mongo.NewCharacterRepository(db)
	rooms := mongo.NewRoomRepository(db)
	catalog := mongo.NewCatalogRepository(db)
	inventory := mongo.NewInventoryRepository(db)
	attempts := mongo.NewPurchaseRepository(db)

	// --- Realtime ---
	hub := realtime.NewHub(logger.Component("realtime"))
	defer hub.Close()

	// --- Services ---
	authSvc := service.NewAuthService(users, characters, cfg.JWTSecret, cfg.TokenTTL, cfg.StartingBalance)
	if cfg.Admin.Username != "" {
		if _, err := authSvc.EnsureAdmin(ctx, cfg.Admin.Username, cfg.Admin.Password); err != nil {
			return err
		}
		log.Info().Str("username", cfg.Admin.Username).Msg("bootstrap admin ready")
	}
	ledgerSvc := service.NewLedgerService(users, locker, logger.Component("ledger"))
	inventorySvc := service.NewInventoryService(catalog, inventory, locker, logger.Component("inventory"))
	catalogSvc := service.NewCatalogService(catalog, logger.Component("catalog"))
	purchaseSvc := service.NewPurchaseService(catalog, ledgerSvc, inventorySvc, attempts, locker, logger.Component("purchase"))
	roomSvc := service.NewRoomService(rooms, characters, locker, hub, cfg.Rooms.DefaultMaxPlayers, logger.Component("rooms"))
	presenceSvc := service.NewPresenceService(rooms, characters, locker, hub, logger.Component("presence"))

	e := api.NewRouter(api.Deps{
		Auth:      authSvc,
		Catalog:   catalogSvc,
		Purchases: purchaseSvc,
		Inventory: inventorySvc,
		Ledger:    ledgerSvc,
		Rooms:     roomSvc,
		Presence:  presenceSvc,
		Feed:      hub,
		Checks:    checks,
		JWTSecret: cfg.JWTSecret,
		Log:       log,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Msg("http server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
