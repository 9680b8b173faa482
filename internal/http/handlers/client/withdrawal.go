package client

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

// ApplyWithdrawalRequest 提现申请请求
type ApplyWithdrawalRequest struct {
	Amount        models.Money `json:"amount" binding:"required"`
	Method        string       `json:"method" binding:"required"`
	AccountDetail models.JSON  `json:"account_detail" binding:"required"`
}

// ApplyWithdrawal 提交提现申请
func (h *Handler) ApplyWithdrawal(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}

	var req ApplyWithdrawalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	request, err := h.WithdrawalService.Apply(service.ApplyWithdrawalInput{
		UserID:        userID,
		Amount:        req.Amount,
		Method:        req.Method,
		AccountDetail: req.AccountDetail,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidAmount):
			respondError(c, response.CodeBadRequest, "error.invalid_amount", nil)
		case errors.Is(err, service.ErrWithdrawalInvalidAction):
			respondError(c, response.CodeBadRequest, "error.withdrawal_method_invalid", nil)
		case errors.Is(err, service.ErrWithdrawalBelowMinimum):
			respondError(c, response.CodeBadRequest, "error.withdrawal_below_minimum", nil)
		case errors.Is(err, service.ErrInsufficientBalance):
			respondError(c, response.CodeBadRequest, "error.insufficient_balance", nil)
		default:
			respondError(c, response.CodeInternal, "error.withdrawal_apply_failed", err)
		}
		return
	}
	response.Success(c, request)
}

// ListWithdrawals 查询本人提现申请
func (h *Handler) ListWithdrawals(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = handlershared.NormalizePagination(page, pageSize)

	requests, total, err := h.WithdrawalService.List(repository.WithdrawalListFilter{
		Page:     page,
		PageSize: pageSize,
		UserID:   userID,
		Status:   c.Query("status"),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.withdrawals_fetch_failed", err)
		return
	}
	response.SuccessWithPage(c, requests, response.BuildPagination(page, pageSize, total))
}

// CancelWithdrawal 取消本人待处理的提现申请
func (h *Handler) CancelWithdrawal(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}

	request, err := h.WithdrawalService.Cancel(userID, uint(id))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrWithdrawalNotFound):
			respondError(c, response.CodeNotFound, "error.withdrawal_not_found", nil)
		case errors.Is(err, service.ErrWithdrawalTerminal):
			respondError(c, response.CodeConflict, "error.withdrawal_terminal", nil)
		case errors.Is(err, service.ErrWithdrawalNotPending):
			respondError(c, response.CodeConflict, "error.withdrawal_not_pending", nil)
		default:
			respondError(c, response.CodeInternal, "error.withdrawal_cancel_failed", err)
		}
		return
	}
	response.Success(c, request)
}

// GetWithdrawal 查询单笔提现申请
func (h *Handler) GetWithdrawal(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}

	request, err := h.WithdrawalService.GetForUser(userID, uint(id))
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
