package admin

import (
	"errors"

	"github.com/vale-cashback/api/internal/http/response"
	"github.com/vale-cashback/api/internal/models"
	"github.com/vale-cashback/api/internal/service"

	"github.com/gin-gonic/gin"
)

// GetCommissionSetting 获取佣金分配配置
func (h *Handler) GetCommissionSetting(c *gin.Context) {
	setting, err := h.SettingService.GetCommissionSetting()
	if err != nil {
		respondError(c, response.CodeInternal, "error.setting_fetch_failed", err)
		return
	}
	response.Success(c, setting)
}

// UpdateCommissionSettingRequest 佣金分配配置更新请求
type UpdateCommissionSettingRequest struct {
	FeeRatePercent  models.Money `json:"fee_rate_percent" binding:"required"`
	CashbackPercent models.Money `json:"cashback_percent"`
	ReferralPercent models.Money `json:"referral_percent"`
}

// UpdateCommissionSetting 更新佣金分配配置
func (h *Handler) UpdateCommissionSetting(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}

	var req UpdateCommissionSettingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	setting, err := h.SettingService.UpdateCommissionSetting(service.CommissionSetting{
		FeeRatePercent:  req.FeeRatePercent.Decimal,
		CashbackPercent: req.CashbackPercent.Decimal,
		ReferralPercent: req.ReferralPercent.Decimal,
	})
	if err != nil {
		if errors.Is(err, service.ErrCommissionRateInvalid) {
			respondError(c, response.CodeBadRequest, "error.commission_rate_invalid", nil)
			return
		}
		respondError(c, response.CodeInternal, "error.setting_update_failed", err)
		return
	}

	requestLog(c).Infow("admin_commission_setting_updated",
		"admin_id", adminID,
		"fee_rate_percent", setting.FeeRatePercent.StringFixed(2),
		"cashback_percent", setting.CashbackPercent.StringFixed(2),
		"referral_percent", setting.ReferralPercent.StringFixed(2),
	)
	response.Success(c, setting)
}

// GetWithdrawalSetting 获取提现配置
func (h *Handler) GetWithdrawalSetting(c *gin.Context) {
	setting, err := h.SettingService.GetWithdrawalSetting()
	if err != nil {
		respondError(c, response.CodeInternal, "error.setting_fetch_failed", err)
		return
	}
	response.Success(c, setting)
}

// UpdateWithdrawalSettingRequest 提现配置更新请求
type UpdateWithdrawalSettingRequest struct {
	MinAmount models.Money `json:"min_amount" binding:"required"`
}

// UpdateWithdrawalSetting 更新提现配置
func (h *Handler) UpdateWithdrawalSetting(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}

	var req UpdateWithdrawalSettingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	setting, err := h.SettingService.UpdateWithdrawalSetting(service.WithdrawalSetting{
		MinAmount: req.MinAmount.Decimal,
	})
	if err != nil {
		if errors.Is(err, service.ErrSettingInvalid) {
			respondError(c, response.CodeBadRequest, "error.setting_invalid", nil)
			return
		}
		respondError(c, response.CodeInternal, "error.setting_update_failed", err)
		return
	}

	requestLog(c).Infow("admin_withdrawal_setting_updated",
		"admin_id", adminID,
		"min_amount", setting.MinAmount.StringFixed(2),
	)
	response.Success(c, setting)
}

// GetReferralSetting 获取推荐奖励配置
func (h *Handler) GetReferralSetting(c *gin.Context) {
	setting, err := h.SettingService.GetReferralSetting()
	if err != nil {
		respondError(c, response.CodeInternal, "error.setting_fetch_failed", err)
		return
	}
	response.Success(c, setting)
}

// UpdateReferralSettingRequest 推荐奖励配置更新请求
type UpdateReferralSettingRequest struct {
	MinTransactionAmount models.Money `json:"min_transaction_amount"`
}

// UpdateReferralSetting 更新推荐奖励配置
func (h *Handler) UpdateReferralSetting(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}

	var req UpdateReferralSettingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	setting, err := h.SettingService.UpdateReferralSetting(service.ReferralSetting{
		MinTransactionAmount: req.MinTransactionAmount.Decimal,
	})
	if err != nil {
		if errors.Is(err, service.ErrSettingInvalid) {
			respondError(c, response.CodeBadRequest, "error.setting_invalid", nil)
			return
		}
		respondError(c, response.CodeInternal, "error.setting_update_failed", err)
		return
	}

	requestLog(c).Infow("admin_referral_setting_updated",
		"admin_id", adminID,
		"min_transaction_amount", setting.MinTransactionAmount.StringFixed(2),
	)
	response.Success(c, setting)
}

// GetSiteSetting 获取站点配置
func (h *Handler) GetSiteSetting(c *gin.Context) {
	setting, err := h.SettingService.GetSiteSetting()
	if err != nil {
		respondError(c, response.CodeInternal, "error.setting_fetch_failed", err)
		return
	}
	response.Success(c, setting)
}

// UpdateSiteSettingRequest 站点配置更新请求
type UpdateSiteSettingRequest struct {
	SiteName string `json:"site_name" binding:"required"`
	Currency string `json:"currency" binding:"required"`
}

// UpdateSiteSetting 更新站点配置
func (h *Handler) UpdateSiteSetting(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}

	var req UpdateSiteSettingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	setting, err := h.SettingService.UpdateSiteSetting(service.SiteSetting{
		SiteName: req.SiteName,
		Currency: req.Currency,
	})
	if err != nil {
		if errors.Is(err, service.ErrSettingInvalid) {
			respondError(c, response.CodeBadRequest, "error.setting_invalid", nil)
			return
		}
		respondError(c, response.CodeInternal, "error.setting_update_failed", err)
		return
	}

	requestLog(c).Infow("admin_site_setting_updated",
		"admin_id", adminID,
		"site_name", setting.SiteName,
		"currency", setting.Currency,
	)
	response.Success(c, setting)
}
