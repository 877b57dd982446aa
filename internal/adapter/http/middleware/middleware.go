package middleware

import (
	"net/http"
	"regexp"
	"strings"
	"time"

	"marketplace-settlement/internal/core/ports"
	"marketplace-settlement/pkg/apperror"
	"marketplace-settlement/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	// HeaderGatewaySignature carries the payment gateway's HMAC-SHA512 of the raw body.
	HeaderGatewaySignature = "X-Paystack-Signature"
	HeaderIdempotencyKey   = "Idempotency-Key"

	// Context keys
	CtxSellerID        = "seller_id"
	CtxAuditAction     = "audit_action"
	CtxAuditResourceID = "audit_resource_id"
	CtxAuditDetails    = "audit_details"
)

// JWTAuth validates the identity provider's bearer token and stores the seller id.
func JWTAuth(tokenSvc ports.TokenService, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if !ok || strings.TrimSpace(tokenStr) == "" {
			response.Abort(c, apperror.ErrUnauthorized())
			return
		}

		claims, err := tokenSvc.Validate(strings.TrimSpace(tokenStr))
		if err != nil {
			log.Debug().Err(err).Str("path", c.Request.URL.Path).Msg("rejected bearer token")
			response.Abort(c, apperror.ErrUnauthorized())
			return
		}

		c.Set(CtxSellerID, claims.SellerID)
		c.Next()
	}
}

// SellerID returns the authenticated seller set by JWTAuth.
func SellerID(c *gin.Context) (uuid.UUID, bool) {
	v, exists := c.Get(CtxSellerID)
	if !exists {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok && id != uuid.Nil
}

// WebhookSignature verifies the gateway signature over the exact bytes
// received. The body is restored for the handler.
func WebhookSignature(secret string, sigSvc ports.SignatureService, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		signature := c.GetHeader(HeaderGatewaySignature)
		if signature == "" {
			response.Abort(c, apperror.ErrInvalidWebhookSignature())
			return
		}

		body, err := bufferBody(c)
		if err != nil {
			response.Abort(c, err)
			return
		}

		if !sigSvc.Verify(secret, body, signature) {
			log.Warn().Str("client_ip", c.ClientIP()).Int("bytes", len(body)).Msg("webhook signature mismatch")
			response.Abort(c, apperror.ErrInvalidWebhookSignature())
			return
		}

		c.Next()
	}
}

// RequestID assigns every request an id, reusing the caller's X-Request-ID
// when it is a plain token, and echoes it in the response header.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(response.HeaderRequestID)
		if !requestIDPattern.MatchString(id) {
			id = uuid.NewString()
		}
		c.Set(response.CtxRequestID, id)
		c.Header(response.HeaderRequestID, id)
		c.Next()
	}
}

var requestIDPattern = regexp.MustCompile(`^[A-Za-z0-9._-]{8,64}$`)

// RequestLogger creates a middleware that logs every HTTP request.
func RequestLogger(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		status := c.Writer.Status()

		event := log.Info()
		if status >= http.StatusInternalServerError {
			event = log.Error()
		} else if status >= http.StatusBadRequest {
			event = log.Warn()
		}

		if sellerID, ok := SellerID(c); ok {
			event = event.Str("seller_id", sellerID.String())
		}

		event.
			Str("request_id", c.GetString(response.CtxRequestID)).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("latency", latency).
			Str("client_ip", c.ClientIP()).
			Msg("http request")
	}
}

// Recovery creates a panic recovery middleware.
func Recovery(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Error().Interface("panic", r).Str("path", c.Request.URL.Path).Msg("panic recovered")
				response.Abort(c, apperror.InternalError(nil))
			}
		}()
		c.Next()
	}
}
