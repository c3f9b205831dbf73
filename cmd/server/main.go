package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/meridianbank/core-banking/internal/api"
	"github.com/meridianbank/core-banking/internal/audit"
	"github.com/meridianbank/core-banking/internal/core/service"
	"github.com/meridianbank/core-banking/internal/infrastructure/config"
	mongodb "github.com/meridianbank/core-banking/internal/infrastructure/db/mongo"
	redisdb "github.com/meridianbank/core-banking/internal/infrastructure/db/redis"
	"github.com/meridianbank/core-banking/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.Load()

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	if cfg.JWTSecret == "" {
		log.Fatal().Msg("JWT_SECRET is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Infrastructure ---
	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongodb connection failed")
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = mongoClient.Disconnect(disconnectCtx)
	}()

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr: cfg.Redis.Addr,
		DB:   cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer func() { _ = rdb.Close() }()

	// --- Repositories ---
	userRepo := mongodb.NewUserRepository(db)
	accountRepo := mongodb.NewAccountRepository(db)
	transactionRepo := mongodb.NewTransactionRepository(mongoClient, db)
	auditRepo := mongodb.NewAuditRepository(db)

	for name, ensure := range map[string]func(context.Context) error{
		"users":        userRepo.EnsureIndexes,
		"accounts":     accountRepo.EnsureIndexes,
		"transactions": transactionRepo.EnsureIndexes,
	} {
		if err := ensure(ctx); err != nil {
			log.Fatal().Err(err).Str("collection", name).Msg("index creation failed")
		}
	}

	cache := redisdb.NewCache(rdb)

	// --- Services ---
	auditService := service.NewAuditService(auditRepo, log)

	dispatcher := audit.NewDispatcher(cfg.AuditWorkers, auditService, log)
	dispatcher.Start(ctx)

	authService := service.NewAuthService(userRepo, cache, dispatcher, cfg.JWTSecret, cfg.TokenTTL, log)
	guard := service.NewAccessGuard(authService)
	accountService := service.NewAccountService(accountRepo, userRepo, dispatcher, log)
	transferService := service.NewTransferService(accountRepo, transactionRepo, cache, dispatcher, log)
	userService := service.NewUserService(userRepo, dispatcher, log)

	// --- HTTP server ---
	e := api.NewRouter(api.Dependencies{
		Auth:      authService,
		Guard:     guard,
		Accounts:  accountService,
		Transfers: transferService,
		Audit:     auditService,
		Users:     userService,
		Mongo:     db,
		Redis:     rdb,
		Logger:    log,
	})

	go func() {
		addr := ":" + cfg.Port
		log.Info().Str("addr", addr).Str("env", cfg.Env).Msg("server starting")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped unexpectedly")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
