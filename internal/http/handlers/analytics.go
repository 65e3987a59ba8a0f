package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/propdesk/backend/internal/service"
)

type SummaryQuery struct {
	Days int `form:"days" validate:"omitempty,min=1,max=90"`
}

// @Summary Dashboard summary
// @Tags analytics
// @Produce json
// @Param days query int false "Trend window in days"
// @Success 200 {object} service.Summary
// @Failure 502 {object} map[string]any
// @Router /api/analytics/summary [get]
func (h *Handler) Summary(c *gin.Context) {
	var q SummaryQuery
	if !h.bindQuery(c, &q) {
		return
	}
	days := h.TrendDays
	if q.Days > 0 {
		days = q.Days
	}
	reporting := service.ReportingService{Source: h.Source, Logger: h.Logger, Now: h.now}
	summary, err := reporting.Summary(c.Request.Context(), days)
	if err != nil {
		h.writeSourceError(c, "build summary", err)
		return
	}
	c.JSON(http.StatusOK, summary)
}
