package handler

import (
	"marketplace-settlement/internal/adapter/http/dto"
	"marketplace-settlement/internal/adapter/http/middleware"
	"marketplace-settlement/internal/core/ports"
	"marketplace-settlement/pkg/apperror"
	"marketplace-settlement/pkg/response"
	"marketplace-settlement/pkg/validation"

	"github.com/gin-gonic/gin"
)

// WalletHandler handles the seller's wallet endpoints.
type WalletHandler struct {
	walletSvc ports.WalletService
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(walletSvc ports.WalletService) *WalletHandler {
	return &WalletHandler{walletSvc: walletSvc}
}

// GetWallet handles GET /api/v1/wallet.
func (h *WalletHandler) GetWallet(c *gin.Context) {
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

	view, err := h.walletSvc.GetWallet(c.Request.Context(), sellerID, q.Limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.ToWalletResponse(view))
}

// Reconcile handles GET /api/v1/wallet/reconcile.
func (h *WalletHandler) Reconcile(c *gin.Context) {
	sellerID, ok := middleware.SellerID(c)
	if !ok {
		response.Error(c, apperror.ErrUnauthorized())
		return
	}

	rec, err := h.walletSvc.ReconcileWallet(c.Request.Context(), sellerID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.ToReconciliationResponse(rec))
}
