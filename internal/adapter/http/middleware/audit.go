package middleware

import (
	"encoding/json"
	"net/http"
	"time"

	"marketplace-settlement/internal/core/domain"
	"marketplace-settlement/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AuditLog records successful write operations after the handler ran.
// Handlers may pick the action and resource id through CtxAuditAction and
// CtxAuditResourceID, and add fields through CtxAuditDetails.
func AuditLog(auditSvc ports.AuditService) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		status := c.Writer.Status()
		if status < http.StatusOK || status >= http.StatusMultipleChoices {
			return
		}
		if c.Request.Method != http.MethodPost {
			return
		}

		action, resourceType := resolveAction(c)
		if action == "" {
			return
		}

		var sellerID *uuid.UUID
		if id, ok := SellerID(c); ok {
			sellerID = &id
		}

		fields := map[string]any{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
			"status": status,
		}
		if extra, ok := c.Get(CtxAuditDetails); ok {
			if m, ok := extra.(map[string]any); ok {
				for k, v := range m {
					fields[k] = v
				}
			}
		}
		details, _ := json.Marshal(fields)

		auditSvc.Log(c.Request.Context(), &domain.AuditLog{
			ID:           uuid.New(),
			SellerID:     sellerID,
			Action:       action,
			ResourceType: resourceType,
			ResourceID:   c.GetString(CtxAuditResourceID),
			IPAddress:    c.ClientIP(),
			Details:      string(details),
			CreatedAt:    time.Now().UTC(),
		})
	}
}

func resolveAction(c *gin.Context) (domain.AuditAction, string) {
	if v, ok := c.Get(CtxAuditAction); ok {
		if action, ok := v.(domain.AuditAction); ok {
			return action, resourceTypeOf(action)
		}
	}
	if c.Request.URL.Path == "/api/v1/payouts" {
		return domain.AuditActionPayoutRequest, resourceTypeOf(domain.AuditActionPayoutRequest)
	}
	return "", ""
}

func resourceTypeOf(action domain.AuditAction) string {
	switch action {
	case domain.AuditActionPayoutRequest:
		return "payout_request"
	case domain.AuditActionSettlement, domain.AuditActionAmountMismatch:
		return "order"
	}
	return ""
}
