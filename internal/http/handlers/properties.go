package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/propdesk/backend/internal/metrics"
	"github.com/propdesk/backend/internal/service"
)

type PropertyQuery struct {
	ListQuery
	Search    *string `form:"search" validate:"omitempty,max=200"`
	Occupancy *string `form:"occupancy" validate:"omitempty,oneof=all occupied vacant"`
	Active    *string `form:"active" validate:"omitempty,oneof=all true false"`
}

// @Summary List property units
// @Tags properties
// @Produce json
// @Param search query string false "Matches property, address, tenant or manager"
// @Param occupancy query string false "all|occupied|vacant"
// @Param active query string false "all|true|false"
// @Param sort query string false "property_name|full_address|tenant_name"
// @Param dir query string false "asc|desc"
// @Param toggle query string false "Sort field clicked"
// @Success 200 {object} map[string]any
// @Failure 400 {object} map[string]any
// @Router /api/properties [get]
func (h *Handler) PropertiesList(c *gin.Context) {
	var q PropertyQuery
	if !h.bindQuery(c, &q) {
		return
	}
	sort, err := resolveSort(q.ListQuery, service.DefaultPropertySort(), service.ParsePropertySortField)
	if err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid sort", err.Error())
		return
	}
	filters := service.DefaultPropertyFilters().Apply(service.PropertyFilterPatch{
		Search:    q.Search,
		Occupancy: q.Occupancy,
		Active:    q.Active,
	})

	units, err := h.Source.ListPropertyUnits(c.Request.Context())
	if err != nil {
		h.writeSourceError(c, "list property units", err)
		return
	}

	start := time.Now()
	items := service.FilterAndSortProperties(units, filters, sort)
	metrics.ObservePipeline("properties", start, len(items))

	occupied, rate := service.Occupancy(units)
	c.JSON(http.StatusOK, gin.H{
		"items":          items,
		"count":          len(items),
		"total":          len(units),
		"occupied":       occupied,
		"occupancy_rate": rate,
		"sort":           sort,
		"filters":        filters,
	})
}
