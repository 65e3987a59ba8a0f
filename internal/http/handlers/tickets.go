package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/propdesk/backend/internal/filter"
	"github.com/propdesk/backend/internal/metrics"
	"github.com/propdesk/backend/internal/models"
	"github.com/propdesk/backend/internal/service"
)

type TicketQuery struct {
	ListQuery
	Search   *string `form:"search" validate:"omitempty,max=200"`
	Urgency  *string `form:"urgency" validate:"omitempty,oneof=all emergency urgent standard"`
	Status   *string `form:"status" validate:"omitempty,oneof=all open vendor_notified in_progress resolved canceled"`
	Assigned *string `form:"assigned" validate:"omitempty,oneof=all true false"`
}

type ticketPage struct {
	items   []models.Ticket
	total   int
	filters service.TicketFilters
	sort    filter.SortState[service.TicketSortField]
}

// loadTickets runs the ticket pipeline for the request's query. It writes the
// error response itself and reports false on failure.
func (h *Handler) loadTickets(c *gin.Context) (ticketPage, bool) {
	var q TicketQuery
	if !h.bindQuery(c, &q) {
		return ticketPage{}, false
	}
	dates, err := q.dateRange()
	if err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid date range", err.Error())
		return ticketPage{}, false
	}
	sort, err := resolveSort(q.ListQuery, service.DefaultTicketSort(), service.ParseTicketSortField)
	if err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid sort", err.Error())
		return ticketPage{}, false
	}
	filters := service.DefaultTicketFilters().Apply(service.TicketFilterPatch{
		Search:    q.Search,
		Urgency:   q.Urgency,
		Status:    q.Status,
		DateRange: dates,
		Assigned:  q.Assigned,
	})

	tickets, err := h.Source.ListTickets(c.Request.Context())
	if err != nil {
		h.writeSourceError(c, "list tickets", err)
		return ticketPage{}, false
	}

	start := time.Now()
	items := service.FilterAndSortTickets(tickets, filters, sort)
	metrics.ObservePipeline("tickets", start, len(items))
	return ticketPage{items: items, total: len(tickets), filters: filters, sort: sort}, true
}

// @Summary List tickets
// @Tags tickets
// @Produce json
// @Param search query string false "Matches id, property, address or description"
// @Param urgency query string false "all|emergency|urgent|standard"
// @Param status query string false "all|open|vendor_notified|in_progress|resolved|canceled"
// @Param assigned query string false "all|true|false"
// @Param from query string false "YYYY-MM-DD or RFC3339"
// @Param to query string false "YYYY-MM-DD or RFC3339"
// @Param sort query string false "created_at|updated_at|urgency|status|property_name"
// @Param dir query string false "asc|desc"
// @Param toggle query string false "Sort field clicked"
// @Success 200 {object} map[string]any
// @Failure 400 {object} map[string]any
// @Router /api/tickets [get]
func (h *Handler) TicketsList(c *gin.Context) {
	page, ok := h.loadTickets(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"items":   page.items,
		"count":   len(page.items),
		"total":   page.total,
		"sort":    page.sort,
		"filters": page.filters,
	})
}

// @Summary Ticket details with linked calls
// @Tags tickets
// @Produce json
// @Param id path string true "Ticket ID"
// @Success 200 {object} map[string]any
// @Failure 404 {object} map[string]any
// @Router /api/tickets/{id} [get]
func (h *Handler) TicketDetails(c *gin.Context) {
	ctx := c.Request.Context()
	ticket, err := h.Source.GetTicket(ctx, c.Param("id"))
	if err != nil {
		h.writeSourceError(c, "get ticket", err)
		return
	}
	calls, err := h.ticketCalls(ctx, ticket.ID)
	if err != nil {
		h.writeSourceError(c, "list calls", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"ticket": ticket,
		"calls":  service.NewCallViews(calls),
	})
}

// ticketCallLister is implemented by sources that can query linked calls
// directly.
type ticketCallLister interface {
	ListCallsForTicket(ctx context.Context, ticketID string) ([]models.Call, error)
}

func (h *Handler) ticketCalls(ctx context.Context, ticketID string) ([]models.Call, error) {
	if l, ok := h.Source.(ticketCallLister); ok {
		return l.ListCallsForTicket(ctx, ticketID)
	}
	calls, err := h.Source.ListCalls(ctx)
	if err != nil {
		return nil, err
	}
	return service.CallsForTicket(calls, ticketID), nil
}

// @Summary Suggest a vendor for a ticket
// @Tags tickets
// @Produce json
// @Param id path string true "Ticket ID"
// @Success 200 {object} service.Recommendation
// @Failure 404 {object} map[string]any
// @Router /api/tickets/{id}/vendors [get]
func (h *Handler) TicketVendors(c *gin.Context) {
	ctx := c.Request.Context()
	ticket, err := h.Source.GetTicket(ctx, c.Param("id"))
	if err != nil {
		h.writeSourceError(c, "get ticket", err)
		return
	}
	vendors, err := h.Source.ListVendors(ctx)
	if err != nil {
		h.writeSourceError(c, "list vendors", err)
		return
	}
	c.JSON(http.StatusOK, service.RecommendVendor(ticket, vendors))
}

type CreateTicketRequest struct {
	ID               string  `json:"id" validate:"omitempty,max=64"`
	PropertyName     string  `json:"property_name" validate:"required,max=200"`
	UnitAddress      string  `json:"unit_address" validate:"required,max=300"`
	IssueDescription string  `json:"issue_description" validate:"required,max=4000"`
	Urgency          string  `json:"urgency" validate:"required,oneof=emergency urgent standard"`
	ServiceProvider  *string `json:"service_provider" validate:"omitempty,max=200"`
}

// @Summary Create ticket
// @Tags tickets
// @Accept json
// @Produce json
// @Param payload body CreateTicketRequest true "Ticket"
// @Success 201 {object} models.Ticket
// @Failure 400 {object} map[string]any
// @Router /api/tickets [post]
func (h *Handler) CreateTicket(c *gin.Context) {
	var req CreateTicketRequest
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

	status := models.TicketOpen
	if req.ServiceProvider != nil && *req.ServiceProvider != "" {
		status = models.TicketVendorNotified
	}
	now := h.now()
	created, err := w.CreateTicket(c.Request.Context(), models.Ticket{
		ID:               req.ID,
		PropertyName:     req.PropertyName,
		UnitAddress:      req.UnitAddress,
		IssueDescription: req.IssueDescription,
		Urgency:          models.Urgency(req.Urgency),
		Status:           status,
		ServiceProvider:  req.ServiceProvider,
		CreatedAt:        now,
		UpdatedAt:        now,
	})
	if err != nil {
		h.writeSourceError(c, "create ticket", err)
		return
	}
	h.Logger.Info().Str("ticket_id", created.ID).Str("urgency", string(created.Urgency)).Msg("ticket created")
	c.JSON(http.StatusCreated, created)
}

type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=open vendor_notified in_progress resolved canceled"`
}

// @Summary Update ticket status
// @Tags tickets
// @Accept json
// @Produce json
// @Param id path string true "Ticket ID"
// @Param payload body UpdateStatusRequest true "Status"
// @Success 200 {object} models.Ticket
// @Failure 404 {object} map[string]any
// @Router /api/tickets/{id}/status [patch]
func (h *Handler) UpdateTicketStatus(c *gin.Context) {
	var req UpdateStatusRequest
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
	updated, err := w.UpdateTicketStatus(c.Request.Context(), c.Param("id"), models.TicketStatus(req.Status))
	if err != nil {
		h.writeSourceError(c, "update ticket", err)
		return
	}
	c.JSON(http.StatusOK, updated)
}
