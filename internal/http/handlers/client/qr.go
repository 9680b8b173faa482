package client

import (
	"errors"

	"github.com/vale-cashback/api/internal/http/response"
	"github.com/vale-cashback/api/internal/service"

	"github.com/gin-gonic/gin"
)

// VerifyQRCode 校验收款二维码（支付前预览）
func (h *Handler) VerifyQRCode(c *gin.Context) {
	code := c.Param("code")
	qr, err := h.QRService.Verify(code)
	if err != nil {
		respondQRError(c, err)
		return
	}
	response.Success(c, gin.H{
		"code":        qr.Code,
		"merchant_id": qr.MerchantID,
		"amount":      qr.Amount,
		"description": qr.Description,
		"status":      qr.Status,
		"expires_at":  qr.ExpiresAt,
	})
}

// PayQRCodeRequest 扫码支付请求
type PayQRCodeRequest struct {
	Code string `json:"code" binding:"required"`
}

// PayQRCode 扫码支付（消费二维码并结算）
func (h *Handler) PayQRCode(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}

	var req PayQRCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	txn, err := h.QRService.Pay(userID, req.Code)
	if err != nil {
		respondQRError(c, err)
		return
	}
	response.Success(c, txn)
}

func respondQRError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrQRCodeNotFound):
		respondError(c, response.CodeNotFound, "error.qr_not_found", nil)
	case errors.Is(err, service.ErrQRCodeExpired):
		respondError(c, response.CodeBadRequest, "error.qr_expired", nil)
	case errors.Is(err, service.ErrQRCodeAlreadyUsed):
		respondError(c, response.CodeConflict, "error.qr_already_used", nil)
	case errors.Is(err, service.ErrQRCodeSelfPayment):
		respondError(c, response.CodeBadRequest, "error.qr_self_payment", nil)
	case errors.Is(err, service.ErrUserNotFound):
		respondError(c, response.CodeNotFound, "error.user_not_found", nil)
	case errors.Is(err, service.ErrUserDisabled):
		respondError(c, response.CodeForbidden, "error.user_disabled", nil)
	case errors.Is(err, service.ErrMerchantNotFound):
		respondError(c, response.CodeNotFound, "error.merchant_not_found", nil)
	case errors.Is(err, service.ErrCommissionRateInvalid):
		respondError(c, response.CodeInternal, "error.commission_config_invalid", err)
	default:
		respondError(c, response.CodeInternal, "error.qr_pay_failed", err)
	}
}
