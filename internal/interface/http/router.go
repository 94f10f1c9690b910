package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yanqian/accessroute/internal/infra/config"
	"github.com/yanqian/accessroute/pkg/metrics"
)

// NewRouter wires up the HTTP handlers and returns a configured server.
// A nil gatherer leaves /metrics unregistered.
func NewRouter(cfg *config.Config, handler *Handler, gatherer prometheus.Gatherer, m *metrics.Metrics) *http.Server {
	gin.SetMode(gin.ReleaseMode)
	registerValidations()

	router := gin.New()
	router.Use(
		gin.Recovery(),
		requestLogger(handler.logger),
		corsMiddleware(cfg.HTTP.CORSOrigins),
		errorHandlingMiddleware(handler.logger),
	)

	router.GET("/healthz", handler.Health)
	if gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	api := router.Group("/api/v1")
	api.Use(rateLimitMiddleware(cfg.HTTP.RateLimit, m, handler.logger))
	{
		api.POST("/routes", handler.PlanRoute)
		api.POST("/routes/gpx", handler.ExportGPX)
		api.GET("/hazards", handler.ListHazards)

		api.GET("/reports", handler.ListReports)
		api.POST("/reports", handler.CreateReport)
		api.DELETE("/reports/:id", handler.DeleteReport)
		api.POST("/reports/photo-uploads", handler.CreatePhotoUpload)

		api.GET("/search", handler.Search)
		api.GET("/reverse", handler.Reverse)
	}

	return &http.Server{
		Addr:           cfg.HTTP.Address,
		Handler:        router,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		MaxHeaderBytes: 1 << 20,
	}
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("http request", "method", c.Request.Method, "path", c.Request.URL.Path, "status", c.Writer.Status(), "latency_ms", latency.Milliseconds())
	}
}
