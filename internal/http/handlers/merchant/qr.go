package merchant

import (
	"errors"
	"strconv"

	handlershared "github.com/vale-cashback/api/internal/http/handlers/shared"
	"github.com/vale-cashback/api/internal/http/response"
	"github.com/vale-cashback/api/internal/models"
	"github.com/vale-cashback/api/internal/repository"
	"github.com/vale-cashback/api/internal/service"

	"github.com/gin-gonic/gin"
)

// GenerateQRCodeRequest 生成收款二维码请求
type GenerateQRCodeRequest struct {
	Amount      models.Money `json:"amount" binding:"required"`
	Description string       `json:"description"`
}

// GenerateQRCode 生成收款二维码
func (h *Handler) GenerateQRCode(c *gin.Context) {
	merchantID, ok := getUserID(c)
	if !ok {
		return
	}

	var req GenerateQRCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	result, err := h.QRService.Generate(service.QRGenerateInput{
		MerchantID:  merchantID,
		Amount:      req.Amount,
		Description: req.Description,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidAmount):
			respondError(c, response.CodeBadRequest, "error.invalid_amount", nil)
		case errors.Is(err, service.ErrMerchantNotFound):
			respondError(c, response.CodeForbidden, "error.merchant_not_found", nil)
		case errors.Is(err, service.ErrMerchantNotApproved):
			respondError(c, response.CodeForbidden, "error.merchant_not_approved", nil)
		case errors.Is(err, service.ErrUserDisabled):
			respondError(c, response.CodeForbidden, "error.user_disabled", nil)
		default:
			respondError(c, response.CodeInternal, "error.qr_generate_failed", err)
		}
		return
	}
	response.Success(c, gin.H{
		"qr_code":   result.QRCode,
		"image_png": result.ImagePNG,
	})
}

// ListQRCodes 查询本店二维码
func (h *Handler) ListQRCodes(c *gin.Context) {
	merchantID, ok := getUserID(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = handlershared.NormalizePagination(page, pageSize)

	codes, total, err := h.QRService.List(repository.QRCodeListFilter{
		Page:       page,
		PageSize:   pageSize,
		MerchantID: merchantID,
		Status:     c.Query("status"),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.qr_fetch_failed", err)
		return
	}
	response.SuccessWithPage(c, codes, response.BuildPagination(page, pageSize, total))
}

// GetQRCode 查询本店单个二维码
func (h *Handler) GetQRCode(c *gin.Context) {
	merchantID, ok := getUserID(c)
	if !ok {
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}

	qr, err := h.QRService.GetForMerchant(merchantID, uint(id))
	if err != nil {
		if errors.Is(err, service.ErrQRCodeNotFound) {
			respondError(c, response.CodeNotFound, "error.qr_not_found", nil)
			return
		}
		respondError(c, response.CodeInternal, "error.qr_fetch_failed", err)
		return
	}
	response.Success(c, qr)
}
