package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/propdesk/backend/internal/filter"
	"github.com/propdesk/backend/internal/metrics"
	"github.com/propdesk/backend/internal/service"
)

type CallQuery struct {
	ListQuery
	Search    *string `form:"search" validate:"omitempty,max=200"`
	Direction *string `form:"direction" validate:"omitempty,oneof=all inbound outbound missed"`
	Status    *string `form:"status" validate:"omitempty,oneof=all completed missed voicemail"`
	Duration  *string `form:"duration" validate:"omitempty,oneof=all short medium long"`
	Linked    *string `form:"linked" validate:"omitempty,oneof=all true false"`
}

// @Summary List calls
// @Tags calls
// @Produce json
// @Param search query string false "Matches contact, transcript or phone"
// @Param direction query string false "all|inbound|outbound|missed"
// @Param status query string false "all|completed|missed|voicemail"
// @Param duration query string false "all|short|medium|long"
// @Param linked query string false "all|true|false"
// @Param from query string false "YYYY-MM-DD or RFC3339"
// @Param to query string false "YYYY-MM-DD or RFC3339"
// @Param sort query string false "created_at|duration|contact_name"
// @Param dir query string false "asc|desc"
// @Param toggle query string false "Sort field clicked"
// @Success 200 {object} map[string]any
// @Failure 400 {object} map[string]any
// @Router /api/calls [get]
func (h *Handler) CallsList(c *gin.Context) {
	var q CallQuery
	if !h.bindQuery(c, &q) {
		return
	}
	dates, err := q.dateRange()
	if err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid date range", err.Error())
		return
	}
	sort, err := resolveSort(q.ListQuery, service.DefaultCallSort(), service.ParseCallSortField)
	if err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid sort", err.Error())
		return
	}
	filters := service.DefaultCallFilters().Apply(service.CallFilterPatch{
		Search:    q.Search,
		Direction: q.Direction,
		Status:    q.Status,
		Duration:  q.Duration,
		DateRange: dates,
		Linked:    q.Linked,
	})

	calls, err := h.Source.ListCalls(c.Request.Context())
	if err != nil {
		h.writeSourceError(c, "list calls", err)
		return
	}

	start := time.Now()
	items := service.FilterAndSortCalls(calls, filters, sort)
	metrics.ObservePipeline("calls", start, len(items))

	c.JSON(http.StatusOK, gin.H{
		"items":   service.NewCallViews(items),
		"count":   len(items),
		"total":   len(calls),
		"sort":    sort,
		"filters": filters,
	})
}

// @Summary Call details with transcript segments
// @Tags calls
// @Produce json
// @Param id path string true "Call ID"
// @Success 200 {object} service.CallDetail
// @Failure 404 {object} map[string]any
// @Router /api/calls/{id} [get]
func (h *Handler) CallDetails(c *gin.Context) {
	ctx := c.Request.Context()
	call, err := h.Source.GetCall(ctx, c.Param("id"))
	if err != nil {
		h.writeSourceError(c, "get call", err)
		return
	}
	detail := service.NewCallDetail(call)
	if h.Recordings != nil && call.RecordingKey != nil {
		url, err := h.Recordings.URL(ctx, filter.Deref(call.RecordingKey))
		switch {
		case err == nil:
			detail.RecordingURL = url
		case ctx.Err() != nil:
			h.writeSourceError(c, "sign recording", ctx.Err())
			return
		default:
			h.Logger.Warn().Err(err).Str("call_id", call.ID).Msg("recording link unavailable")
		}
	}
	c.JSON(http.StatusOK, detail)
}
