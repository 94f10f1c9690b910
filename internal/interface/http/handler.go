package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yanqian/accessroute/internal/domain/geo"
	"github.com/yanqian/accessroute/internal/domain/hazard"
	"github.com/yanqian/accessroute/internal/domain/report"
	"github.com/yanqian/accessroute/internal/domain/route"
	"github.com/yanqian/accessroute/internal/domain/search"
)

// CapabilityHeader carries the report delete capability.
const CapabilityHeader = "X-Report-Capability"

// HazardLister exposes the merged hazard catalog.
type HazardLister interface {
	ActiveHazards(ctx context.Context, now time.Time) []hazard.Point
}

// Handler wires the HTTP transport to domain services.
type Handler struct {
	routes  route.Service
	hazards HazardLister
	reports report.Service
	search  search.Service
	logger  *slog.Logger
	now     func() time.Time
}

// NewHandler constructs the root HTTP handler.
func NewHandler(routes route.Service, hazards HazardLister, reports report.Service, searchSvc search.Service, logger *slog.Logger) *Handler {
	return &Handler{
		routes:  routes,
		hazards: hazards,
		reports: reports,
		search:  searchSvc,
		logger:  logger.With("component", "http.handler"),
		now:     time.Now,
	}
}

// PlanRoute scores an accessible route between two points.
func (h *Handler) PlanRoute(c *gin.Context) {
	var req planRouteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, invalidRequest(err))
		return
	}

	result, err := h.routes.Plan(c.Request.Context(), req.toDomain())
	if err != nil {
		abortWithError(c, fromDomainError(err))
		return
	}

	c.JSON(http.StatusOK, result)
}

// ExportGPX plans a route and returns it as a GPX attachment.
func (h *Handler) ExportGPX(c *gin.Context) {
	var req planRouteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, invalidRequest(err))
		return
	}

	result, err := h.routes.Plan(c.Request.Context(), req.toDomain())
	if err != nil {
		abortWithError(c, fromDomainError(err))
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = "Accessible route"
	}
	payload, err := route.EncodeGPX(result, name)
	if err != nil {
		abortWithError(c, asHTTPError(err))
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.gpx"`, fileSlug(name)))
	c.Data(http.StatusOK, "application/gpx+xml", payload)
}

// ListHazards returns every hazard currently in effect.
func (h *Handler) ListHazards(c *gin.Context) {
	points := h.hazards.ActiveHazards(c.Request.Context(), h.now())
	if points == nil {
		points = []hazard.Point{}
	}
	c.JSON(http.StatusOK, gin.H{"hazards": points})
}

// ListReports returns the active issue reports.
func (h *Handler) ListReports(c *gin.Context) {
	reports, err := h.reports.List(c.Request.Context())
	if err != nil {
		abortWithError(c, fromDomainError(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"reports": reports})
}

// CreateReport stores a new issue report.
func (h *Handler) CreateReport(c *gin.Context) {
	var req createReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, invalidRequest(err))
		return
	}

	created, err := h.reports.Create(c.Request.Context(), req.toDomain())
	if err != nil {
		abortWithError(c, fromDomainError(err))
		return
	}
	c.JSON(http.StatusCreated, created)
}

// DeleteReport removes a report when the caller holds its capability.
func (h *Handler) DeleteReport(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		abortWithError(c, invalidRequest(fmt.Errorf("invalid report id: %w", err)))
		return
	}

	if err := h.reports.Delete(c.Request.Context(), id, c.GetHeader(CapabilityHeader)); err != nil {
		abortWithError(c, fromDomainError(err))
		return
	}
	c.Status(http.StatusNoContent)
}

// CreatePhotoUpload presigns a direct photo upload.
func (h *Handler) CreatePhotoUpload(c *gin.Context) {
	var req photoUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, invalidRequest(err))
		return
	}

	upload, err := h.reports.PhotoUpload(c.Request.Context(), req.ContentType)
	if err != nil {
		abortWithError(c, fromDomainError(err))
		return
	}
	c.JSON(http.StatusOK, upload)
}

// Search looks up places by free text.
func (h *Handler) Search(c *gin.Context) {
	var q searchQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		abortWithError(c, invalidRequest(err))
		return
	}

	places, err := h.search.Search(c.Request.Context(), q.ClientID, q.Query)
	if err != nil {
		abortWithError(c, fromDomainError(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"places": places})
}

// Reverse resolves coordinates to a place name.
func (h *Handler) Reverse(c *gin.Context) {
	var q reverseQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		abortWithError(c, invalidRequest(err))
		return
	}

	place, err := h.search.Reverse(c.Request.Context(), geo.Point{Lat: *q.Lat, Lng: *q.Lon})
	if err != nil {
		abortWithError(c, fromDomainError(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"place": place})
}

// Health reports liveness.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

var slugPattern = regexp.MustCompile(`[^a-z0-9]+`)

func fileSlug(name string) string {
	slug := strings.Trim(slugPattern.ReplaceAllString(strings.ToLower(name), "-"), "-")
	if slug == "" {
		return "route"
	}
	return slug
}
