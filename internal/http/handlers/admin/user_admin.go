package admin

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

// ListUsers 用户列表
func (h *Handler) ListUsers(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = handlershared.NormalizePagination(page, pageSize)

	users, total, err := h.UserService.List(repository.UserListFilter{
		Page:     page,
		PageSize: pageSize,
		Role:     c.Query("role"),
		Status:   c.Query("status"),
		Search:   c.Query("search"),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.users_fetch_failed", err)
		return
	}
	response.SuccessWithPage(c, users, response.BuildPagination(page, pageSize, total))
}

// ListMerchants 商户列表
func (h *Handler) ListMerchants(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = handlershared.NormalizePagination(page, pageSize)

	merchants, total, err := h.UserService.ListMerchants(repository.MerchantListFilter{
		Page:     page,
		PageSize: pageSize,
		Category: c.Query("category"),
		City:     c.Query("city"),
		Search:   c.Query("search"),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.merchants_fetch_failed", err)
		return
	}
	response.SuccessWithPage(c, merchants, response.BuildPagination(page, pageSize, total))
}

// ApproveMerchantRequest 商户审核请求
type ApproveMerchantRequest struct {
	CommissionRate *models.Money `json:"commission_rate"`
}

// ApproveMerchant 审核通过商户
func (h *Handler) ApproveMerchant(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}

	var req ApproveMerchantRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, response.CodeBadRequest, "error.bad_request", err)
			return
		}
	}

	profile, err := h.UserService.ApproveMerchant(service.ApproveMerchantInput{
		ProfileID:      uint(id),
		ReviewerID:     adminID,
		CommissionRate: req.CommissionRate,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMerchantNotFound):
			respondError(c, response.CodeNotFound, "error.merchant_not_found", nil)
		case errors.Is(err, service.ErrSettingInvalid):
			respondError(c, response.CodeBadRequest, "error.setting_invalid", nil)
		default:
			respondError(c, response.CodeInternal, "error.merchant_approve_failed", err)
		}
		return
	}

	requestLog(c).Infow("admin_merchant_approved",
		"admin_id", adminID,
		"merchant_profile_id", profile.ID,
		"merchant_user_id", profile.UserID,
	)
	response.Success(c, profile)
}

// SetUserStatusRequest 用户状态变更请求
type SetUserStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// SetUserStatus 启用/禁用用户
func (h *Handler) SetUserStatus(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}

	var req SetUserStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	user, err := h.UserService.SetStatus(uint(id), req.Status)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			respondError(c, response.CodeNotFound, "error.user_not_found", nil)
		case errors.Is(err, service.ErrSettingInvalid):
			respondError(c, response.CodeBadRequest, "error.status_invalid", nil)
		default:
			respondError(c, response.CodeInternal, "error.user_update_failed", err)
		}
		return
	}
	response.Success(c, user)
}

// AdjustBalanceRequest 余额调整请求
type AdjustBalanceRequest struct {
	Delta     models.Money `json:"delta" binding:"required"`
	Reference string       `json:"reference" binding:"required"`
	Remark    string       `json:"remark"`
}

// AdjustBalance 管理员调整用户余额（正数入账、负数出账）
func (h *Handler) AdjustBalance(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}

	var req AdjustBalanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	balance, entry, err := h.BalanceService.AdminAdjust(uint(id), req.Delta, req.Reference, req.Remark)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrBalanceNotFound):
			respondError(c, response.CodeNotFound, "error.user_not_found", nil)
		case errors.Is(err, service.ErrInvalidAmount):
			respondError(c, response.CodeBadRequest, "error.invalid_amount", nil)
		case errors.Is(err, service.ErrInsufficientBalance):
			respondError(c, response.CodeBadRequest, "error.insufficient_balance", nil)
		default:
			respondError(c, response.CodeInternal, "error.balance_adjust_failed", err)
		}
		return
	}

	requestLog(c).Infow("admin_balance_adjusted",
		"admin_id", adminID,
		"user_id", id,
		"delta", req.Delta.String(),
		"reference", req.Reference,
	)
	response.Success(c, gin.H{
		"balance": balance,
		"entry":   entry,
	})
}

// ListLoginLogs 登录日志列表
func (h *Handler) ListLoginLogs(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = handlershared.NormalizePagination(page, pageSize)

	filter := repository.LoginLogListFilter{
		Page:     page,
		PageSize: pageSize,
		Email:    c.Query("email"),
		Status:   c.Query("status"),
	}
	if raw := c.Query("user_id"); raw != "" {
		if userID, err := strconv.ParseUint(raw, 10, 64); err == nil {
			filter.UserID = uint(userID)
		}
	}

	logs, total, err := h.AuthService.ListLoginLogs(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "error.login_logs_fetch_failed", err)
		return
	}
	response.SuccessWithPage(c, logs, response.BuildPagination(page, pageSize, total))
}

// ListReferrals 推荐关系列表
func (h *Handler) ListReferrals(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = handlershared.NormalizePagination(page, pageSize)

	filter := repository.ReferralListFilter{
		Page:     page,
		PageSize: pageSize,
		Status:   c.Query("status"),
	}
	if raw := c.Query("referrer_id"); raw != "" {
		if referrerID, err := strconv.ParseUint(raw, 10, 64); err == nil {
			filter.ReferrerID = uint(referrerID)
		}
	}

	referrals, total, err := h.UserService.ListReferrals(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "error.referrals_fetch_failed", err)
		return
	}
	response.SuccessWithPage(c, referrals, response.BuildPagination(page, pageSize, total))
}
