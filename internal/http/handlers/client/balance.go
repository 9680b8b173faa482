package client

import (
	"strconv"

	handlershared "github.com/vale-cashback/api/internal/http/handlers/shared"
	"github.com/vale-cashback/api/internal/http/response"
	"github.com/vale-cashback/api/internal/repository"

	"github.com/gin-gonic/gin"
)

// GetBalance 获取返现余额
func (h *Handler) GetBalance(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}

	balance, err := h.BalanceService.GetBalance(userID)
	if err != nil {
		respondError(c, response.CodeInternal, "error.balance_fetch_failed", err)
		return
	}
	available, err := h.WithdrawalService.AvailableBalance(userID)
	if err != nil {
		respondError(c, response.CodeInternal, "error.balance_fetch_failed", err)
		return
	}

	response.Success(c, gin.H{
		"balance":      balance.Balance,
		"available":    available,
		"total_earned": balance.TotalEarned,
		"total_spent":  balance.TotalSpent,
		"updated_at":   balance.UpdatedAt,
	})
}

// ListBalanceEntries 查询余额流水
func (h *Handler) ListBalanceEntries(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = handlershared.NormalizePagination(page, pageSize)

	entries, total, err := h.BalanceService.ListEntries(repository.BalanceEntryListFilter{
		Page:      page,
		PageSize:  pageSize,
		UserID:    userID,
		Type:      c.Query("type"),
		Direction: c.Query("direction"),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.balance_entries_fetch_failed", err)
		return
	}
	response.SuccessWithPage(c, entries, response.BuildPagination(page, pageSize, total))
}
