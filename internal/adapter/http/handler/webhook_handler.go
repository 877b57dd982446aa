package handler

import (
	"marketplace-settlement/internal/adapter/http/dto"
	"marketplace-settlement/internal/adapter/http/middleware"
	"marketplace-settlement/internal/core/domain"
	"marketplace-settlement/internal/core/ports"
	"marketplace-settlement/pkg/apperror"
	"marketplace-settlement/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// WebhookHandler receives payment gateway notifications. The signature has
// already been verified by middleware.WebhookSignature.
type WebhookHandler struct {
	settlementSvc ports.SettlementService
	log           zerolog.Logger
}

func NewWebhookHandler(settlementSvc ports.SettlementService, log zerolog.Logger) *WebhookHandler {
	return &WebhookHandler{settlementSvc: settlementSvc, log: log}
}

// HandlePayment handles POST /api/v1/webhooks/payments.
// Every settlement outcome is acknowledged with 200 so the gateway stops
// retrying; only storage failures answer 503.
func (h *WebhookHandler) HandlePayment(c *gin.Context) {
	var evt dto.WebhookEvent
	if err := c.ShouldBindJSON(&evt); err != nil {
		response.Error(c, apperror.Validation("malformed webhook payload"))
		return
	}

	if !evt.IsChargeSuccess() {
		h.log.Debug().Str("event", evt.Event).Str("status", evt.Data.Status).Msg("webhook event ignored")
		response.OK(c, dto.WebhookAck{Outcome: string(domain.SettlementOutcomeIgnored)})
		return
	}

	result, err := h.settlementSvc.SettleOrder(c.Request.Context(), evt.Data.Reference, evt.Data.Amount)
	if err != nil {
		h.log.Error().Err(err).Str("reference", evt.Data.Reference).Msg("settlement failed")
		response.Error(c, err)
		return
	}

	ack := dto.WebhookAck{Outcome: string(result.Outcome)}
	if result.OrderID != nil {
		id := result.OrderID.String()
		ack.OrderID = &id
		c.Set(middleware.CtxAuditResourceID, id)
	}

	switch result.Outcome {
	case domain.SettlementOutcomeSettled:
		c.Set(middleware.CtxAuditAction, domain.AuditActionSettlement)
		c.Set(middleware.CtxAuditDetails, map[string]any{
			"reference": evt.Data.Reference,
			"amount":    evt.Data.Amount,
			"sellers":   len(result.Credits),
		})
	case domain.SettlementOutcomeAmountMismatch:
		c.Set(middleware.CtxAuditAction, domain.AuditActionAmountMismatch)
		c.Set(middleware.CtxAuditDetails, map[string]any{
			"reference": evt.Data.Reference,
			"verified":  evt.Data.Amount,
		})
	}

	response.OK(c, ack)
}
