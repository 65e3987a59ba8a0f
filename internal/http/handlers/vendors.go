package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/propdesk/backend/internal/metrics"
	"github.com/propdesk/backend/internal/service"
)

type VendorQuery struct {
	ListQuery
	Search      *string  `form:"search" validate:"omitempty,max=200"`
	ServiceType *string  `form:"service_type" validate:"omitempty,max=100"`
	Active      *string  `form:"active" validate:"omitempty,oneof=all true false"`
	MinRating   *float64 `form:"min_rating" validate:"omitempty,gte=0,lte=5"`
}

// @Summary List vendors
// @Tags vendors
// @Produce json
// @Param search query string false "Matches name, type, categories or phone"
// @Param service_type query string false "Service category"
// @Param active query string false "all|true|false"
// @Param min_rating query number false "0-5"
// @Param sort query string false "company_name|rating|total_jobs|response_time"
// @Param dir query string false "asc|desc"
// @Param toggle query string false "Sort field clicked"
// @Success 200 {object} map[string]any
// @Failure 400 {object} map[string]any
// @Router /api/vendors [get]
func (h *Handler) VendorsList(c *gin.Context) {
	var q VendorQuery
	if !h.bindQuery(c, &q) {
		return
	}
	sort, err := resolveSort(q.ListQuery, service.DefaultVendorSort(), service.ParseVendorSortField)
	if err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid sort", err.Error())
		return
	}
	filters := service.DefaultVendorFilters().Apply(service.VendorFilterPatch{
		Search:      q.Search,
		ServiceType: q.ServiceType,
		Active:      q.Active,
		MinRating:   q.MinRating,
	})

	vendors, err := h.Source.ListVendors(c.Request.Context())
	if err != nil {
		h.writeSourceError(c, "list vendors", err)
		return
	}

	start := time.Now()
	items := service.FilterAndSortVendors(vendors, filters, sort)
	metrics.ObservePipeline("vendors", start, len(items))

	c.JSON(http.StatusOK, gin.H{
		"items":   service.NewVendorViews(items, h.Synthetic),
		"count":   len(items),
		"total":   len(vendors),
		"sort":    sort,
		"filters": filters,
	})
}

type VendorActiveRequest struct {
	Active *bool `json:"active" validate:"required"`
}

// @Summary Activate or deactivate a vendor
// @Tags vendors
// @Accept json
// @Produce json
// @Param id path string true "Vendor ID"
// @Param payload body VendorActiveRequest true "Active flag"
// @Success 200 {object} map[string]any
// @Failure 404 {object} map[string]any
// @Router /api/vendors/{id}/active [patch]
func (h *Handler) SetVendorActive(c *gin.Context) {
	var req VendorActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid payload", err.Error())
		return
	}
	if err := h.Validator.Struct(req); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", err.Error())
		return
	}
	w, ok := h.writer()
	if !ok {
		writeError(c, http.StatusMethodNotAllowed, "READ_ONLY", "Record source does not accept changes", nil)
		return
	}
	id := c.Param("id")
	if err := w.SetVendorActive(c.Request.Context(), id, *req.Active); err != nil {
		h.writeSourceError(c, "update vendor", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "id": id, "active": *req.Active})
}
