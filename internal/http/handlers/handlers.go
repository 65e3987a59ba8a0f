package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/propdesk/backend/internal/derive"
	"github.com/propdesk/backend/internal/filter"
	"github.com/propdesk/backend/internal/metrics"
	"github.com/propdesk/backend/internal/source"
)

// RecordingSigner issues playable links for call recordings.
type RecordingSigner interface {
	URL(ctx context.Context, key string) (string, error)
}

type Handler struct {
	Source      source.Source
	Recordings  RecordingSigner
	Synthetic   *derive.SyntheticMetrics
	Validator   *validator.Validate
	Logger      zerolog.Logger
	TrendDays   int
	MaxUploadMB int64
	Now         func() time.Time
}

func (h *Handler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now().UTC()
}

func (h *Handler) writer() (source.Writer, bool) {
	w, ok := h.Source.(source.Writer)
	return w, ok
}

// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} map[string]any
// @Failure 503 {object} map[string]any
// @Router /healthz [get]
func (h *Handler) Healthz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()
	if p, ok := h.Source.(source.Pinger); ok {
		if err := p.Ping(ctx); err != nil {
			writeError(c, http.StatusServiceUnavailable, "SOURCE_UNAVAILABLE", "Record source unavailable", err.Error())
			return
		}
	}
	resp := gin.H{"status": "ok"}
	// recordings are optional; a failing bucket degrades call details only
	if p, ok := h.Recordings.(source.Pinger); ok {
		if err := p.Ping(ctx); err != nil {
			h.Logger.Warn().Err(err).Msg("recordings storage unreachable")
			resp["status"] = "degraded"
			resp["recordings"] = "unavailable"
		} else {
			resp["recordings"] = "ok"
		}
	}
	c.JSON(http.StatusOK, resp)
}

func writeError(c *gin.Context, status int, code string, message string, details any) {
	c.JSON(status, gin.H{
		"error": gin.H{
			"code":    code,
			"message": message,
			"details": details,
		},
	})
}

// writeSourceError maps a source failure onto the error envelope.
func (h *Handler) writeSourceError(c *gin.Context, op string, err error) {
	metrics.SourceErrors.WithLabelValues(op).Inc()
	switch {
	case errors.Is(err, source.ErrNotFound):
		writeError(c, http.StatusNotFound, "NOT_FOUND", "Record not found", nil)
	case errors.Is(err, source.ErrConflict):
		writeError(c, http.StatusConflict, "CONFLICT", "Record already exists", err.Error())
	case errors.Is(err, source.ErrReadOnly):
		writeError(c, http.StatusMethodNotAllowed, "READ_ONLY", "Record source does not accept changes", nil)
	case errors.Is(err, context.DeadlineExceeded):
		writeError(c, http.StatusGatewayTimeout, "SOURCE_TIMEOUT", "Record source timed out", err.Error())
	default:
		h.Logger.Error().Err(err).Str("op", op).Msg("source error")
		writeError(c, http.StatusBadGateway, "SOURCE_ERROR", "Failed to "+op, err.Error())
	}
}

// ListQuery holds the query parameters shared by every list endpoint.
type ListQuery struct {
	From   string `form:"from"`
	To     string `form:"to"`
	Sort   string `form:"sort"`
	Dir    string `form:"dir" validate:"omitempty,oneof=asc desc"`
	Toggle string `form:"toggle"`
}

func (q ListQuery) dateRange() (*filter.DateRange, error) {
	if q.From == "" && q.To == "" {
		return nil, nil
	}
	r, err := filter.ParseRange(q.From, q.To)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// resolveSort starts from the view default, applies an explicit sort/dir and
// then a column click (toggle).
func resolveSort[F ~string](q ListQuery, def filter.SortState[F], parse func(string) (F, bool)) (filter.SortState[F], error) {
	state := def
	if q.Sort != "" {
		field, ok := parse(q.Sort)
		if !ok {
			return state, errors.New("unknown sort field " + q.Sort)
		}
		if field != def.Field {
			state = filter.SortState[F]{Field: field, Direction: filter.Asc}
		}
	}
	if q.Dir != "" {
		if dir, ok := filter.ParseDirection(q.Dir); ok {
			state.Direction = dir
		}
	}
	if q.Toggle != "" {
		field, ok := parse(q.Toggle)
		if !ok {
			return state, errors.New("unknown sort field " + q.Toggle)
		}
		state = state.Toggle(field)
	}
	return state, nil
}

// bindQuery binds and validates query parameters into dst.
func (h *Handler) bindQuery(c *gin.Context, dst any) bool {
	if err := c.ShouldBindQuery(dst); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid query", err.Error())
		return false
	}
	if err := h.Validator.Struct(dst); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", err.Error())
		return false
	}
	return true
}
