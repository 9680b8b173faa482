package merchant

import (
	"errors"

	"github.com/vale-cashback/api/internal/http/response"
	"github.com/vale-cashback/api/internal/service"

	"github.com/gin-gonic/gin"
)

// GetStoreProfile 获取店铺资料
func (h *Handler) GetStoreProfile(c *gin.Context) {
	merchantID, ok := getUserID(c)
	if !ok {
		return
	}

	profile, err := h.MerchantRepo.GetByUserID(merchantID)
	if err != nil {
		respondError(c, response.CodeInternal, "error.profile_fetch_failed", err)
		return
	}
	if profile == nil {
		respondError(c, response.CodeNotFound, "error.merchant_not_found", nil)
		return
	}
	response.Success(c, profile)
}

// UpdateStoreProfileRequest 更新店铺资料请求
type UpdateStoreProfileRequest struct {
	StoreName   *string `json:"store_name"`
	Category    *string `json:"category"`
	TaxID       *string `json:"tax_id"`
	Address     *string `json:"address"`
	City        *string `json:"city"`
	LogoURL     *string `json:"logo_url"`
	Description *string `json:"description"`
}

// UpdateStoreProfile 更新店铺资料
func (h *Handler) UpdateStoreProfile(c *gin.Context) {
	merchantID, ok := getUserID(c)
	if !ok {
		return
	}

	var req UpdateStoreProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	profile, err := h.UserService.UpdateMerchantProfile(merchantID, service.MerchantProfileUpdateInput{
		StoreName:   req.StoreName,
		Category:    req.Category,
		TaxID:       req.TaxID,
		Address:     req.Address,
		City:        req.City,
		LogoURL:     req.LogoURL,
		Description: req.Description,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMerchantNotFound):
			respondError(c, response.CodeNotFound, "error.merchant_not_found", nil)
		case errors.Is(err, service.ErrMerchantProfileRequired):
			respondError(c, response.CodeBadRequest, "error.merchant_profile_required", nil)
		default:
			respondError(c, response.CodeInternal, "error.profile_update_failed", err)
		}
		return
	}
	response.Success(c, profile)
}
