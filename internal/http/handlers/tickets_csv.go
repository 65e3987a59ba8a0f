package handlers

import (
	"encoding/csv"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/propdesk/backend/internal/filter"
	"github.com/propdesk/backend/internal/models"
)

var ticketCSVHeader = []string{
	"id", "property_name", "unit_address", "issue_description",
	"urgency", "status", "service_provider", "created_at", "updated_at",
}

type ImportSummary struct {
	Parsed   int      `json:"parsed"`
	Inserted int      `json:"inserted"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors"`
}

// @Summary Export filtered tickets as CSV
// @Tags tickets
// @Produce text/csv
// @Param search query string false "Matches id, property, address or description"
// @Param urgency query string false "all|emergency|urgent|standard"
// @Param status query string false "all|open|vendor_notified|in_progress|resolved|canceled"
// @Param assigned query string false "all|true|false"
// @Param from query string false "YYYY-MM-DD or RFC3339"
// @Param to query string false "YYYY-MM-DD or RFC3339"
// @Param sort query string false "created_at|updated_at|urgency|status|property_name"
// @Param dir query string false "asc|desc"
// @Param toggle query string false "Sort field clicked"
// @Success 200 {string} string
// @Failure 400 {object} map[string]any
// @Router /api/tickets/export [get]
func (h *Handler) TicketsExport(c *gin.Context) {
	page, ok := h.loadTickets(c)
	if !ok {
		return
	}
	name := fmt.Sprintf("tickets-%s.csv", h.now().Format("20060102"))
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.Status(http.StatusOK)

	w := csv.NewWriter(c.Writer)
	_ = w.Write(ticketCSVHeader)
	for _, t := range page.items {
		_ = w.Write([]string{
			t.ID,
			t.PropertyName,
			t.UnitAddress,
			t.IssueDescription,
			string(t.Urgency),
			string(t.Status),
			filter.Deref(t.ServiceProvider),
			t.CreatedAt.UTC().Format(time.RFC3339),
			t.UpdatedAt.UTC().Format(time.RFC3339),
		})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		h.Logger.Error().Err(err).Msg("ticket export failed")
	}
}

// @Summary Import tickets from CSV
// @Tags tickets
// @Accept multipart/form-data
// @Produce json
// @Param tickets formData file true "tickets.csv"
// @Success 200 {object} ImportSummary
// @Failure 400 {object} map[string]any
// @Router /api/tickets/import [post]
func (h *Handler) ImportTickets(c *gin.Context) {
	file, err := c.FormFile("tickets")
	if err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "tickets file required", nil)
		return
	}
	if !validateExt(file.Filename) {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "file must be .csv", nil)
		return
	}
	if h.MaxUploadMB > 0 && file.Size > h.MaxUploadMB<<20 {
		writeError(c, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE",
			fmt.Sprintf("file exceeds %d MB", h.MaxUploadMB), nil)
		return
	}
	w, ok := h.writer()
	if !ok {
		writeError(c, http.StatusMethodNotAllowed, "READ_ONLY", "Record source does not accept changes", nil)
		return
	}

	tickets, errs := parseTicketsCSV(file, h.now())
	summary := ImportSummary{Parsed: len(tickets), Errors: errs}
	if summary.Errors == nil {
		summary.Errors = []string{}
	}

	ctx := c.Request.Context()
	for _, t := range tickets {
		if _, err := w.CreateTicket(ctx, t); err != nil {
			summary.Skipped++
			summary.Errors = append(summary.Errors, fmt.Sprintf("ticket %s: %v", t.ID, err))
			continue
		}
		summary.Inserted++
	}
	h.Logger.Info().
		Int("parsed", summary.Parsed).
		Int("inserted", summary.Inserted).
		Int("errors", len(summary.Errors)).
		Msg("tickets imported")
	c.JSON(http.StatusOK, summary)
}

// parseTicketsCSV reads a ticket upload. Rows with an unknown urgency or
// status are reported and left out; a missing timestamp falls back to now.
func parseTicketsCSV(file *multipart.FileHeader, now time.Time) ([]models.Ticket, []string) {
	f, err := file.Open()
	if err != nil {
		return nil, []string{err.Error()}
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.TrimLeadingSpace = true
	headers, err := reader.Read()
	if err != nil {
		return nil, []string{"failed to read header"}
	}
	index := headerIndex(headers)
	var errs []string
	var out []models.Ticket

	for line := 2; ; line++ {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			errs = append(errs, err.Error())
			continue
		}

		urgency := strings.ToLower(getFieldAny(rec, index, "urgency", "priority"))
		if !models.ValidUrgency(urgency) {
			errs = append(errs, fmt.Sprintf("line %d: unknown urgency %q", line, urgency))
			continue
		}
		status := strings.ToLower(getFieldAny(rec, index, "status"))
		if status == "" {
			status = string(models.TicketOpen)
		}
		if !models.ValidTicketStatus(status) {
			errs = append(errs, fmt.Sprintf("line %d: unknown status %q", line, status))
			continue
		}

		t := models.Ticket{
			ID:               getFieldAny(rec, index, "id", "ticket_id", "ticket id"),
			PropertyName:     getFieldAny(rec, index, "property_name", "property"),
			UnitAddress:      getFieldAny(rec, index, "unit_address", "address"),
			IssueDescription: getFieldAny(rec, index, "issue_description", "description", "issue"),
			Urgency:          models.Urgency(urgency),
			Status:           models.TicketStatus(status),
			CreatedAt:        parseCSVTime(getFieldAny(rec, index, "created_at", "created", "date"), now),
		}
		t.UpdatedAt = parseCSVTime(getFieldAny(rec, index, "updated_at", "updated"), t.CreatedAt)
		if t.UpdatedAt.Before(t.CreatedAt) {
			t.UpdatedAt = t.CreatedAt
		}
		if provider := getFieldAny(rec, index, "service_provider", "vendor"); provider != "" {
			t.ServiceProvider = &provider
		}
		if t.PropertyName == "" {
			t.PropertyName = "Unknown"
		}
		if t.IssueDescription == "" {
			errs = append(errs, fmt.Sprintf("line %d: issue description required", line))
			continue
		}
		out = append(out, t)
	}
	return out, errs
}

func parseCSVTime(value string, fallback time.Time) time.Time {
	if value == "" {
		return fallback
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.UTC()
	}
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t
	}
	return fallback
}

func headerIndex(headers []string) map[string]int {
	idx := map[string]int{}
	for i, h := range headers {
		idx[normalizeHeader(h)] = i
	}
	return idx
}

func getField(rec []string, idx map[string]int, name string) string {
	pos, ok := idx[name]
	if !ok || pos >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[pos])
}

func getFieldAny(rec []string, idx map[string]int, names ...string) string {
	for _, name := range names {
		if v := getField(rec, idx, normalizeHeader(name)); v != "" {
			return v
		}
	}
	return ""
}

func normalizeHeader(h string) string {
	h = strings.ReplaceAll(h, "\ufeff", "")
	return strings.ToLower(strings.TrimSpace(h))
}

func validateExt(name string) bool {
	return strings.ToLower(filepath.Ext(name)) == ".csv"
}
