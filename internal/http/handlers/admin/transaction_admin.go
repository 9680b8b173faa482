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

// ListTransactions 交易列表
func (h *Handler) ListTransactions(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = handlershared.NormalizePagination(page, pageSize)

	filter := repository.TransactionListFilter{
		Page:     page,
		PageSize: pageSize,
		Type:     c.Query("type"),
		Status:   c.Query("status"),
	}
	if raw := c.Query("client_id"); raw != "" {
		if clientID, err := strconv.ParseUint(raw, 10, 64); err == nil {
			filter.ClientID = uint(clientID)
		}
	}
	if raw := c.Query("merchant_id"); raw != "" {
		if merchantID, err := strconv.ParseUint(raw, 10, 64); err == nil {
			filter.MerchantID = uint(merchantID)
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

	transactions, total, err := h.SettlementService.ListTransactions(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "error.transactions_fetch_failed", err)
		return
	}
	response.SuccessWithPage(c, transactions, response.BuildPagination(page, pageSize, total))
}

// GetTransaction 查询单笔交易（含拆分明细）
func (h *Handler) GetTransaction(c *gin.Context) {
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
	response.Success(c, txn)
}
