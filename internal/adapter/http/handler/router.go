package handler

import (
	"marketplace-settlement/internal/adapter/http/middleware"
	redisStore "marketplace-settlement/internal/adapter/storage/redis"
	"marketplace-settlement/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const maxBodyBytes = 1 << 20

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	SettlementSvc  ports.SettlementService
	PayoutSvc      ports.PayoutService
	WalletSvc      ports.WalletService
	SigSvc         ports.SignatureService
	TokenSvc       ports.TokenService
	WebhookSecret  string
	RateLimitStore *redisStore.RateLimitStore // nil = rate limiting disabled
	HealthCheckers []ports.HealthChecker
	AuditSvc       ports.AuditService // nil = audit logging disabled
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.RequestID())
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(maxBodyBytes))

	// Audit logging (after response)
	if deps.AuditSvc != nil {
		r.Use(middleware.AuditLog(deps.AuditSvc))
	}

	// Health check (deep: PostgreSQL + Redis)
	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	rules := middleware.DefaultRateLimitRules()

	// Helper: return rate limiter middleware if store is available, else noop.
	rl := func(group string) gin.HandlerFunc {
		if deps.RateLimitStore == nil {
			return func(c *gin.Context) { c.Next() }
		}
		rule, ok := rules[group]
		if !ok {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RateLimiter(deps.RateLimitStore, group, rule, deps.Logger)
	}

	v1 := r.Group("/api/v1")

	// --- Payment gateway webhooks (HMAC-SHA512 over the raw body) ---
	webhookHandler := NewWebhookHandler(deps.SettlementSvc, deps.Logger)
	webhooks := v1.Group("/webhooks")
	{
		webhooks.POST("/payments",
			rl("webhooks"),
			middleware.WebhookSignature(deps.WebhookSecret, deps.SigSvc, deps.Logger),
			webhookHandler.HandlePayment,
		)
	}

	// --- Seller routes (JWT from the identity provider) ---
	jwtAuth := middleware.JWTAuth(deps.TokenSvc, deps.Logger)

	payoutHandler := NewPayoutHandler(deps.PayoutSvc)
	payouts := v1.Group("/payouts", jwtAuth)
	{
		payouts.POST("", rl("payouts"), payoutHandler.RequestPayout)
		payouts.GET("", rl("payouts_list"), payoutHandler.ListPayouts)
	}

	walletHandler := NewWalletHandler(deps.WalletSvc)
	wallet := v1.Group("/wallet", jwtAuth)
	{
		wallet.GET("", rl("wallet"), walletHandler.GetWallet)
		wallet.GET("/reconcile", rl("wallet"), walletHandler.Reconcile)
	}

	return r
}
