package handler

import (
	"errors"
	"net/http"

	"marketplace-settlement/internal/adapter/http/dto"
	"marketplace-settlement/internal/adapter/http/middleware"
	"marketplace-settlement/internal/core/domain"
	"marketplace-settlement/internal/core/ports"
	"marketplace-settlement/pkg/apperror"
	"marketplace-settlement/pkg/response"
	"marketplace-settlement/pkg/validation"

	"github.com/gin-gonic/gin"
)

// PayoutHandler handles seller payout endpoints.
type PayoutHandler struct {
	payoutSvc ports.PayoutService
}

func NewPayoutHandler(payoutSvc ports.PayoutService) *PayoutHandler {
	return &PayoutHandler{payoutSvc: payoutSvc}
}

// RequestPayout handles POST /api/v1/payouts.
func (h *PayoutHandler) RequestPayout(c *gin.Context) {
	sellerID, ok := middleware.SellerID(c)
	if !ok {
		response.Error(c, apperror.ErrUnauthorized())
		return
	}

	var headers dto.PayoutHeaders
	if err := c.ShouldBindHeader(&headers); err != nil {
		response.Error(c, validation.Error(err))
		return
	}

	var req dto.PayoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err))
		return
	}
	dto.SanitizeStruct(&req)

	payout, err := h.payoutSvc.RequestPayout(c.Request.Context(), domain.PayoutRequestInput{
		SellerID: sellerID,
		Amount:   req.Amount,
		BankDetails: domain.BankDetails{
			AccountNumber: req.BankDetails.AccountNumber,
			BankName:      req.BankDetails.BankName,
			AccountName:   req.BankDetails.AccountName,
		},
		IdempotencyKey: headers.IdempotencyKey,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Set(middleware.CtxAuditResourceID, payout.ID.String())
	c.Set(middleware.CtxAuditDetails, map[string]any{"amount": payout.Amount})

	response.Created(c, dto.ToPayoutResponse(payout))
}

// bindError maps a body binding failure without echoing decoder or validator internals.
func bindError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return apperror.ErrPayloadTooLarge()
	}
	return validation.Error(err)
}

// ListPayouts handles GET /api/v1/payouts.
func (h *PayoutHandler) ListPayouts(c *gin.Context) {
	sellerID, ok := middleware.SellerID(c)
	if !ok {
		response.Error(c, apperror.ErrUnauthorized())
		return
	}

	var q dto.ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, validation.Error(err))
		return
	}

	payouts, err := h.payoutSvc.ListPayouts(c.Request.Context(), sellerID, q.Limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]dto.PayoutResponse, 0, len(payouts))
	for i := range payouts {
		items = append(items, dto.ToPayoutResponse(&payouts[i]))
	}
	response.OK(c, items)
}
