package admin

import (
	"errors"
	"strconv"
	"time"

	handlershared "github.com/vale-cashback/api/internal/http/handlers/shared"
	"github.com/vale-cashback/api/internal/http/response"
	"github.com/vale-cashback/api/internal/repository"
	"github.com/vale-cashback/api/internal/service"

	"github.com/gin-gonic/gin"
)

// ListWithdrawals 提现申请列表
func (h *Handler) ListWithdrawals(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = handlershared.NormalizePagination(page, pageSize)

	filter := repository.WithdrawalListFilter{
		Page:     page,
		PageSize: pageSize,
		Status:   c.Query("status"),
	}
	if raw := c.Query("user_id"); raw != "" {
		if userID, err := strconv.ParseUint(raw, 10, 64); err == nil {
			filter.UserID = uint(userID)
		}
	}
	if raw := c.Query("created_from"); raw != "" {
		if from, err := time.Parse("2006-01-02", raw); err == nil {
			filter.CreatedFrom = &from
		}
	}
	if raw := c.Query("created_to"); raw != "" {
		if to, err := time.Parse("2006-01-02", raw); err == nil {
			filter.CreatedTo = &to
		}
	}

	requests, total, err := h.WithdrawalService.List(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "error.withdrawals_fetch_failed", err)
		return
	}
	response.SuccessWithPage(c, requests, response.BuildPagination(page, pageSize, total))
}

// GetWithdrawal 查询单笔提现申请
func (h *Handler) GetWithdrawal(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}

	request, err := h.WithdrawalService.Get(uint(id))
	if err != nil {
		if errors.Is(err, service.ErrWithdrawalNotFound) {
			respondError(c, response.CodeNotFound, "error.withdrawal_not_found", nil)
			return
		}
		respondError(c, response.CodeInternal, "error.withdrawals_fetch_failed", err)
		return
	}
	response.Success(c, request)
}

// ReviewWithdrawalRequest 提现审核请求
type ReviewWithdrawalRequest struct {
	Action string `json:"action" binding:"required"` // approve/reject/complete
	Note   string `json:"note"`
}

// ReviewWithdrawal 审核提现申请
func (h *Handler) ReviewWithdrawal(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}

	var req ReviewWithdrawalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	request, err := h.WithdrawalService.Review(service.ReviewWithdrawalInput{
		RequestID:  uint(id),
		ReviewerID: adminID,
		Action:     req.Action,
		Note:       req.Note,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrWithdrawalNotFound):
			respondError(c, response.CodeNotFound, "error.withdrawal_not_found", nil)
		case errors.Is(err, service.ErrWithdrawalInvalidAction):
			respondError(c, response.CodeBadRequest, "error.withdrawal_action_invalid", nil)
		case errors.Is(err, service.ErrWithdrawalTerminal):
			respondError(c, response.CodeConflict, "error.withdrawal_terminal", nil)
		case errors.Is(err, service.ErrWithdrawalNotPending):
			respondError(c, response.CodeConflict, "error.withdrawal_not_pending", nil)
		case errors.Is(err, service.ErrInsufficientBalance):
			respondError(c, response.CodeBadRequest, "error.insufficient_balance", nil)
		default:
			respondError(c, response.CodeInternal, "error.withdrawal_review_failed", err)
		}
		return
	}

	requestLog(c).Infow("admin_withdrawal_reviewed",
		"admin_id", adminID,
		"request_id", id,
		"action", req.Action,
		"status", request.Status,
	)
	response.Success(c, request)
}
