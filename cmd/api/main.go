package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"marketplace-settlement/config"
	httpHandler "marketplace-settlement/internal/adapter/http/handler"
	"marketplace-settlement/internal/adapter/messaging/kafka"
	pgStorage "marketplace-settlement/internal/adapter/storage/postgres"
	redisStorage "marketplace-settlement/internal/adapter/storage/redis"
	"marketplace-settlement/internal/core/domain"
	"marketplace-settlement/internal/core/ports"
	"marketplace-settlement/internal/service"
	"marketplace-settlement/pkg/logger"
	"marketplace-settlement/pkg/validation"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

type eventPublisher interface {
	ports.EventPublisher
	Close() error
}

func main() {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	log.Info().
		Str("mode", cfg.Server.Mode).
		Int("port", cfg.Server.Port).
		Str("commission_rate", cfg.Settlement.CommissionRate).
		Msg("Starting Marketplace Settlement")

	ctx := context.Background()

	// Initialize PostgreSQL pool
	pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()
	log.Info().Msg("PostgreSQL connected")

	// Initialize Redis client
	rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()
	log.Info().Msg("Redis connected")

	publisher := newPublisher(cfg.Kafka, log)
	defer func() {
		if err := publisher.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close event publisher")
		}
	}()

	// Initialize repositories
	walletRepo := pgStorage.NewWalletRepo(pool)
	txRepo := pgStorage.NewTransactionRepo(pool)
	payoutRepo := pgStorage.NewPayoutRepo(pool)
	idempotencyRepo := pgStorage.NewIdempotencyRepo(pool)
	orderRepo := pgStorage.NewOrderRepo()
	auditRepo := pgStorage.NewAuditRepo(pool)
	transactor := pgStorage.NewTransactor(pool)

	// Initialize Redis stores
	idempotencyCache := redisStorage.NewIdempotencyCache(rdb)
	rateLimitStore := redisStorage.NewRateLimitStore(rdb)

	// Initialize core services
	encSvc, err := service.NewAESEncryptionService(cfg.AES.Key)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize encryption service")
	}
	sigSvc := service.NewHMACSignatureService()
	tokenSvc := service.NewJWTTokenService(cfg.Identity.JWTSecret, cfg.Identity.Issuer)

	policy, err := domain.NewCommissionPolicy(cfg.Settlement.CommissionRate)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid commission rate")
	}
	validate := validation.New()

	// Initialize business services
	ledgerSvc := service.NewLedgerService(walletRepo, txRepo, cfg.Settlement.Currency, log)
	settlementSvc := service.NewSettlementService(
		orderRepo,
		ledgerSvc,
		idempotencyCache,
		publisher,
		transactor,
		service.SettlementOptions{
			Policy:      policy,
			Currency:    cfg.Settlement.Currency,
			UnitTimeout: cfg.Settlement.UnitTimeout,
		},
		validate,
		log,
	)
	payoutSvc := service.NewPayoutService(
		walletRepo,
		payoutRepo,
		idempotencyRepo,
		ledgerSvc,
		idempotencyCache,
		encSvc,
		publisher,
		transactor,
		cfg.Settlement.Currency,
		cfg.Settlement.UnitTimeout,
		validate,
		log,
	)
	walletSvc := service.NewWalletService(
		walletRepo,
		txRepo,
		ledgerSvc,
		transactor,
		cfg.Settlement.HistoryLimit,
		cfg.Settlement.UnitTimeout,
		log,
	)
	auditSvc := service.NewAuditService(auditRepo, log)

	// Initialize health checkers
	pgHealth := pgStorage.NewHealthCheck(pool)
	redisHealth := redisStorage.NewHealthCheck(rdb)

	gin.SetMode(cfg.Server.Mode)

	// Setup Gin router with all routes
	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		SettlementSvc:  settlementSvc,
		PayoutSvc:      payoutSvc,
		WalletSvc:      walletSvc,
		SigSvc:         sigSvc,
		TokenSvc:       tokenSvc,
		WebhookSecret:  cfg.Gateway.WebhookSecret,
		RateLimitStore: rateLimitStore,
		HealthCheckers: []ports.HealthChecker{pgHealth, redisHealth},
		AuditSvc:       auditSvc,
		Logger:         log,
	})

	// HTTP Server with graceful shutdown
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	// Pending audit writes use their own timeout.
	auditSvc.Wait()

	log.Info().Msg("Server exited")
}

func newPublisher(cfg config.KafkaConfig, log zerolog.Logger) eventPublisher {
	if !cfg.Enabled {
		log.Info().Msg("Kafka disabled, events will only be logged")
		return kafka.NewLogPublisher(log)
	}

	producer, err := kafka.NewSyncProducer(cfg)
	if err != nil {
		log.Fatal().Err(err).Strs("brokers", cfg.Brokers).Msg("Failed to connect to Kafka")
	}
	log.Info().Strs("brokers", cfg.Brokers).Msg("Kafka producer connected")
	return kafka.NewPublisher(producer, cfg, log)
}
