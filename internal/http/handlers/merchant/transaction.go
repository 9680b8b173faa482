package merchant

import (
	"errors"
	"strconv"

	"github.com/vale-cashback/api/internal/constants"
	handlershared "github.com/vale-cashback/api/internal/http/handlers/shared"
	"github.com/vale-cashback/api/internal/http/response"
	"github.com/vale-cashback/api/internal/models"
	"github.com/vale-cashback/api/internal/repository"
	"github.com/vale-cashback/api/internal/service"

	"github.com/gin-gonic/gin"
)

// RecordTransactionItemRequest 交易明细行
type RecordTransactionItemRequest struct {
	Name      string       `json:"name" binding:"required"`
	Quantity  int          `json:"quantity"`
	UnitPrice models.Money `json:"unit_price"`
}

// RecordTransactionRequest 登记线下消费请求
type RecordTransactionRequest struct {
	ClientID    uint                           `json:"client_id" binding:"required"`
	Amount      models.Money                   `json:"amount" binding:"required"`
	Reference   string                         `json:"reference"`
	Description string                         `json:"description"`
	Items       []RecordTransactionItemRequest `json:"items"`
}

// RecordTransaction 商户登记一笔线下消费并立即结算
func (h *Handler) RecordTransaction(c *gin.Context) {
	merchantID, ok := getUserID(c)
	if !ok {
		return
	}

	var req RecordTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	input := service.SettleInput{
		ClientID:    req.ClientID,
		MerchantID:  merchantID,
		Amount:      req.Amount,
		Type:        constants.TransactionTypePurchase,
		Reference:   req.Reference,
		Description: req.Description,
	}
	for _, item := range req.Items {
		input.Items = append(input.Items, service.SettleItemInput{
			Name:      item.Name,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}

	txn, err := h.SettlementService.Settle(input)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidAmount):
			respondError(c, response.CodeBadRequest, "error.invalid_amount", nil)
		case errors.Is(err, service.ErrUserNotFound):
			respondError(c, response.CodeNotFound, "error.user_not_found", nil)
		case errors.Is(err, service.ErrUserDisabled):
			respondError(c, response.CodeForbidden, "error.user_disabled", nil)
		case errors.Is(err, service.ErrMerchantNotFound):
			respondError(c, response.CodeForbidden, "error.merchant_not_found", nil)
		case errors.Is(err, service.ErrMerchantNotApproved):
			respondError(c, response.CodeForbidden, "error.merchant_not_approved", nil)
		case errors.Is(err, service.ErrCommissionRateInvalid):
			respondError(c, response.CodeInternal, "error.commission_config_invalid", err)
		default:
			respondError(c, response.CodeInternal, "error.settlement_failed", err)
		}
		return
	}
	response.Success(c, txn)
}

// ListTransactions 查询本店销售记录
func (h *Handler) ListTransactions(c *gin.Context) {
	merchantID, ok := getUserID(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = handlershared.NormalizePagination(page, pageSize)

	transactions, total, err := h.SettlementService.ListTransactions(repository.TransactionListFilter{
		Page:       page,
		PageSize:   pageSize,
		MerchantID: merchantID,
		Type:       c.Query("type"),
		Status:     c.Query("status"),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.transactions_fetch_failed", err)
		return
	}
	response.SuccessWithPage(c, transactions, response.BuildPagination(page, pageSize, total))
}

// GetTransaction 查询本店单笔销售记录（含拆分明细）
func (h *Handler) GetTransaction(c *gin.Context) {
	merchantID, ok := getUserID(c)
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
	if txn.MerchantID != merchantID {
		respondError(c, response.CodeNotFound, "error.transaction_not_found", nil)
		return
	}
	response.Success(c, txn)
}
