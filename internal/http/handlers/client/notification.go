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

// ListNotifications 查询通知列表
func (h *Handler) ListNotifications(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = handlershared.NormalizePagination(page, pageSize)

	notifications, total, err := h.NotificationService.List(repository.NotificationListFilter{
		Page:       page,
		PageSize:   pageSize,
		UserID:     userID,
		Type:       c.Query("type"),
		UnreadOnly: c.Query("unread_only") == "true",
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.notifications_fetch_failed", err)
		return
	}
	response.SuccessWithPage(c, notifications, response.BuildPagination(page, pageSize, total))
}

// CountUnreadNotifications 统计未读通知数量
func (h *Handler) CountUnreadNotifications(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}

	count, err := h.NotificationService.CountUnread(userID)
	if err != nil {
		respondError(c, response.CodeInternal, "error.notifications_fetch_failed", err)
		return
	}
	response.Success(c, gin.H{"unread": count})
}

// MarkNotificationRead 将单条通知标记为已读
func (h *Handler) MarkNotificationRead(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}

	if err := h.NotificationService.MarkRead(uint(id), userID); err != nil {
		if errors.Is(err, service.ErrNotificationNotFound) {
			respondError(c, response.CodeNotFound, "error.notification_not_found", nil)
			return
		}
		respondError(c, response.CodeInternal, "error.notification_mark_failed", err)
		return
	}
	response.Success(c, gin.H{"read": true})
}

// MarkAllNotificationsRead 将全部通知标记为已读
func (h *Handler) MarkAllNotificationsRead(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}

	affected, err := h.NotificationService.MarkAllRead(userID)
	if err != nil {
		respondError(c, response.CodeInternal, "error.notification_mark_failed", err)
		return
	}
	response.Success(c, gin.H{"marked": affected})
}
