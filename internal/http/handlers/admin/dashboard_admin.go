package admin

import (
	"errors"
	"strconv"
	"strings"

	"github.com/vale-cashback/api/internal/http/response"
	"github.com/vale-cashback/api/internal/service"

	"github.com/gin-gonic/gin"
)

// GetDashboardSummary 获取后台仪表盘总览
func (h *Handler) GetDashboardSummary(c *gin.Context) {
	days := 0
	if raw := strings.TrimSpace(c.Query("days")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			respondError(c, response.CodeBadRequest, "error.bad_request", err)
			return
		}
		days = parsed
	}

	forceRefresh := false
	if raw := strings.TrimSpace(c.Query("force_refresh")); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			respondError(c, response.CodeBadRequest, "error.bad_request", err)
			return
		}
		forceRefresh = parsed
	}

	summary, err := h.DashboardService.GetSummary(c.Request.Context(), days, forceRefresh)
	if err != nil {
		if errors.Is(err, service.ErrDashboardRangeInvalid) {
			respondError(c, response.CodeBadRequest, "error.bad_request", nil)
			return
		}
		respondError(c, response.CodeInternal, "error.dashboard_fetch_failed", err)
		return
	}
	response.Success(c, summary)
}
