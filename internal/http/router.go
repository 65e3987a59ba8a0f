package httpapi

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/propdesk/backend/internal/config"
	"github.com/propdesk/backend/internal/derive"
	"github.com/propdesk/backend/internal/http/handlers"
	"github.com/propdesk/backend/internal/http/middleware"
	"github.com/propdesk/backend/internal/metrics"
	"github.com/propdesk/backend/internal/source"

	_ "github.com/propdesk/backend/docs"
)

func Router(cfg config.Config, src source.Source, rec handlers.RecordingSigner, synthetic *derive.SyntheticMetrics, logger zerolog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(metrics.Middleware())
	r.MaxMultipartMemory = cfg.MaxUploadMB << 20

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Admin-Key", "X-Request-Id"},
		ExposeHeaders:    []string{"Content-Disposition", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if cfg.CORSAllowed == "*" || cfg.CORSAllowed == "" {
		corsCfg.AllowAllOrigins = true
		corsCfg.AllowCredentials = false
	} else {
		for _, origin := range strings.Split(cfg.CORSAllowed, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				corsCfg.AllowOrigins = append(corsCfg.AllowOrigins, origin)
			}
		}
	}
	r.Use(cors.New(corsCfg))

	h := &handlers.Handler{
		Source:      src,
		Recordings:  rec,
		Synthetic:   synthetic,
		Validator:   validator.New(),
		Logger:      logger,
		TrendDays:   cfg.TrendDays,
		MaxUploadMB: cfg.MaxUploadMB,
	}

	r.GET("/healthz", h.Healthz)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	api.Use(middleware.Timeout(cfg.RequestTimeout))
	{
		api.GET("/analytics/summary", h.Summary)
		api.GET("/tickets", h.TicketsList)
		api.GET("/tickets/export", h.TicketsExport)
		api.GET("/tickets/:id", h.TicketDetails)
		api.GET("/tickets/:id/vendors", h.TicketVendors)
		api.GET("/vendors", h.VendorsList)
		api.GET("/properties", h.PropertiesList)
		api.GET("/calls", h.CallsList)
		api.GET("/calls/:id", h.CallDetails)
	}

	admin := api.Group("")
	admin.Use(middleware.AdminKey(cfg.AdminKey))
	{
		admin.POST("/tickets", h.CreateTicket)
		admin.POST("/tickets/import", h.ImportTickets)
		admin.PATCH("/tickets/:id/status", h.UpdateTicketStatus)
		admin.PATCH("/vendors/:id/active", h.SetVendorActive)
	}

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}
