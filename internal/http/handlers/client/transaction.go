package client

import (
	"errors"
	"strconv"

	handlershared "github.com/vale-cashback/api/internal/http/handlers/shared"
	"github.com/vale-cashback/api/internal/http/response"
	"github.com/vale-cashback/api/internal/repository"
	"github.com/vale-cashback/api/internal/service"

	"github.com/gin-gonic/gin"
)

// ListTransactions 查询本人消费记录
func (h *Handler) ListTransactions(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = handlershared.NormalizePagination(page, pageSize)

	transactions, total, err := h.SettlementService.ListTransactions(repository.TransactionListFilter{
		Page:     page,
		PageSize: pageSize,
		ClientID: userID,
		Type:     c.Query("type"),
		Status:   c.Query("status"),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.transactions_fetch_failed", err)
		return
	}
	response.SuccessWithPage(c, transactions, response.BuildPagination(page, pageSize, total))
}

// GetTransaction 查询单笔消费记录（含拆分明细）
func (h *Handler) GetTransaction(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}

	txn, err := h.SettlementService.GetTransaction(uint(id))
	if err != nil {
		if errors.Is(err, service.ErrTransactionNotFound) {
			respondError(c, response.CodeNotFound, "error.transaction_not_found", nil)
			return
		}
		respondError(c, response.CodeInternal, "error.transactions_fetch_failed", err)
		return
	}
	if txn.ClientID != userID {
		respondError(c, response.CodeNotFound, "error.transaction_not_found", nil)
		return
	}
	response.Success(c, txn)
}
