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

// CreateTransferRequest 转账请求
type CreateTransferRequest struct {
	ReceiverEmail string       `json:"receiver_email" binding:"required"`
	Amount        models.Money `json:"amount" binding:"required"`
	Reference     string       `json:"reference"`
	Remark        string       `json:"remark"`
}

// CreateTransfer 向其他用户转账
func (h *Handler) CreateTransfer(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}

	var req CreateTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	transfer, err := h.TransferService.Transfer(service.TransferInput{
		SenderID:      userID,
		ReceiverEmail: req.ReceiverEmail,
		Amount:        req.Amount,
		Reference:     req.Reference,
		Remark:        req.Remark,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidAmount):
			respondError(c, response.CodeBadRequest, "error.invalid_amount", nil)
		case errors.Is(err, service.ErrRecipientNotFound):
			respondError(c, response.CodeNotFound, "error.recipient_not_found", nil)
		case errors.Is(err, service.ErrTransferSelf):
			respondError(c, response.CodeBadRequest, "error.transfer_self", nil)
		case errors.Is(err, service.ErrInsufficientBalance):
			respondError(c, response.CodeBadRequest, "error.insufficient_balance", nil)
		case errors.Is(err, service.ErrUserNotFound):
			respondError(c, response.CodeNotFound, "error.user_not_found", nil)
		case errors.Is(err, service.ErrUserDisabled):
			respondError(c, response.CodeForbidden, "error.user_disabled", nil)
		default:
			respondError(c, response.CodeInternal, "error.transfer_failed", err)
		}
		return
	}
	response.Success(c, transfer)
}

// ListTransfers 查询转账记录
func (h *Handler) ListTransfers(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = handlershared.NormalizePagination(page, pageSize)

	transfers, total, err := h.TransferService.List(repository.TransferListFilter{
		Page:     page,
		PageSize: pageSize,
		UserID:   userID,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.transfers_fetch_failed", err)
		return
	}
	response.SuccessWithPage(c, transfers, response.BuildPagination(page, pageSize, total))
}
