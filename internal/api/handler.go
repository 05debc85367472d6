// Package api exposes the planner over HTTP: operation and corridor
// management, brief ingestion and processing, draft review, incident
// records, spatial risk queries, exports, and map layers.
package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/levonter/corridor/internal/domain"
	"github.com/levonter/corridor/internal/export"
	"github.com/levonter/corridor/internal/maplayer"
	"github.com/levonter/corridor/internal/observability"
	"github.com/levonter/corridor/internal/pipeline"
	"github.com/levonter/corridor/internal/spatial"
	"github.com/levonter/corridor/internal/store"
)

// IncidentPublisher pushes newly created incidents to downstream consumers.
type IncidentPublisher interface {
	PublishIncident(ctx context.Context, inc domain.Incident) error
}

// Handler carries the API dependencies.
type Handler struct {
	store          *store.Store
	pipeline       *pipeline.Pipeline
	metrics        *observability.Metrics
	logger         *slog.Logger
	publisher      IncidentPublisher // optional
	bufferRadiusKm float64
}

// NewHandler creates the API handler. publisher may be nil when no incident
// topic is configured. bufferRadiusKm is the default risk buffer used when a
// request does not override it.
func NewHandler(st *store.Store, pl *pipeline.Pipeline, metrics *observability.Metrics, logger *slog.Logger, publisher IncidentPublisher, bufferRadiusKm float64) *Handler {
	return &Handler{
		store:          st,
		pipeline:       pl,
		metrics:        metrics,
		logger:         logger,
		publisher:      publisher,
		bufferRadiusKm: bufferRadiusKm,
	}
}

// publishIncident is best effort. The incident is already persisted, so a
// publish failure is logged rather than surfaced to the client.
func (h *Handler) publishIncident(ctx context.Context, inc domain.Incident) {
	if h.publisher == nil {
		return
	}
	if err := h.publisher.PublishIncident(ctx, inc); err != nil {
		h.logger.Warn("publish incident failed", "incident_id", inc.ID, "error", err)
	}
}

// NewRouter builds the gin engine with all routes registered.
func NewRouter(h *Handler, rps float64) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	// The store and gazetteer live in process memory, so the service is
	// ready as soon as it is listening.
	r.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/api/v1", RateLimitMiddleware(rps))
	h.RegisterRoutes(v1)
	return r
}

// RegisterRoutes attaches all API endpoints to the group.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/operations", h.createOperation)
	r.GET("/operations", h.listOperations)
	r.GET("/operations/:id", h.getOperation)
	r.DELETE("/operations/:id", h.deleteOperation)

	r.POST("/operations/:id/corridors", h.createCorridor)
	r.GET("/operations/:id/corridors", h.listCorridors)
	r.GET("/operations/:id/corridors/:corridorID", h.getCorridor)
	r.PUT("/operations/:id/corridors/:corridorID/waypoints", h.updateWaypoints)
	r.DELETE("/operations/:id/corridors/:corridorID", h.deleteCorridor)
	r.GET("/operations/:id/corridors/:corridorID/risk", h.corridorRisk)
	r.GET("/operations/:id/corridors/:corridorID/point", h.corridorPoint)

	r.POST("/operations/:id/briefs", h.createBrief)
	r.GET("/operations/:id/briefs", h.listBriefs)
	r.POST("/operations/:id/briefs/:briefID/process", h.processBrief)
	r.DELETE("/operations/:id/briefs/:briefID", h.archiveBrief)

	r.GET("/operations/:id/drafts", h.listDrafts)
	r.POST("/operations/:id/drafts/:draftID/confirm", h.confirmDraft)
	r.POST("/operations/:id/drafts/:draftID/reject", h.rejectDraft)

	r.POST("/operations/:id/incidents", h.createIncident)
	r.GET("/operations/:id/incidents", h.listIncidents)
	r.GET("/operations/:id/incidents/:incidentID", h.getIncident)
	r.PATCH("/operations/:id/incidents/:incidentID", h.updateIncident)
	r.DELETE("/operations/:id/incidents/:incidentID", h.deleteIncident)

	r.POST("/operations/:id/riskzones", h.createRiskZone)
	r.GET("/operations/:id/riskzones", h.listRiskZones)

	r.GET("/operations/:id/export/geojson", h.exportGeoJSON)
	r.GET("/operations/:id/export/csv", h.exportCSV)
	r.GET("/operations/:id/export/report", h.exportReport)
	r.GET("/operations/:id/maplayers", h.mapLayers)
}

// respondError maps domain errors to status codes.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrInvalidStateTransition):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrRouteTooShort):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// Operations

type createOperationRequest struct {
	Name     string          `json:"name" binding:"required"`
	Severity domain.Severity `json:"severity"`
	Region   domain.Region   `json:"region"`
}

func (h *Handler) createOperation(c *gin.Context) {
	var req createOperationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Severity == "" {
		req.Severity = domain.SeverityMedium
	}
	op := h.store.CreateOperation(req.Name, req.Severity, req.Region)
	c.JSON(http.StatusCreated, op)
}

func (h *Handler) listOperations(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.ListOperations())
}

func (h *Handler) getOperation(c *gin.Context) {
	op, err := h.store.GetOperation(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, op)
}

func (h *Handler) deleteOperation(c *gin.Context) {
	if err := h.store.DeleteOperation(c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Corridors

type createCorridorRequest struct {
	Name      string            `json:"name" binding:"required"`
	Waypoints []domain.Waypoint `json:"waypoints" binding:"required"`
}

func (h *Handler) createCorridor(c *gin.Context) {
	var req createCorridorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	corridor, err := h.store.CreateCorridor(c.Param("id"), req.Name, req.Waypoints)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, corridor)
}

func (h *Handler) listCorridors(c *gin.Context) {
	if _, err := h.store.GetOperation(c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.store.ListCorridors(c.Param("id")))
}

func (h *Handler) getCorridor(c *gin.Context) {
	corridor, err := h.store.GetCorridor(c.Param("id"), c.Param("corridorID"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, corridor)
}

func (h *Handler) updateWaypoints(c *gin.Context) {
	var waypoints []domain.Waypoint
	if err := c.ShouldBindJSON(&waypoints); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	corridor, err := h.store.UpdateCorridorWaypoints(c.Param("id"), c.Param("corridorID"), waypoints)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, corridor)
}

func (h *Handler) deleteCorridor(c *gin.Context) {
	if err := h.store.DeleteCorridor(c.Param("id"), c.Param("corridorID")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Spatial queries

type riskResponse struct {
	CorridorID    string                  `json:"corridor_id"`
	RadiusKm      float64                 `json:"radius_km"`
	RouteLengthKm float64                 `json:"route_length_km"`
	RiskScore     float64                 `json:"risk_score"`
	Incidents     []spatial.RatedIncident `json:"incidents"`
	Buffer        []domain.Coordinate     `json:"buffer"`
}

func (h *Handler) corridorRisk(c *gin.Context) {
	corridor, err := h.store.GetCorridor(c.Param("id"), c.Param("corridorID"))
	if err != nil {
		respondError(c, err)
		return
	}
	if len(corridor.Waypoints) < 2 {
		respondError(c, domain.ErrRouteTooShort)
		return
	}

	radius := h.bufferRadiusKm
	if q := c.Query("radius_km"); q != "" {
		r, err := strconv.ParseFloat(q, 64)
		if err != nil || r <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "radius_km must be a positive number"})
			return
		}
		radius = r
	}

	incidents := h.store.ListIncidents(c.Param("id"))
	rated := spatial.IncidentsInBuffer(incidents, corridor.Waypoints, radius)
	score := spatial.RiskScore(rated, nil)
	h.metrics.RiskQueries.Inc()
	h.metrics.RiskQueryScore.Observe(score)

	c.JSON(http.StatusOK, riskResponse{
		CorridorID:    corridor.ID,
		RadiusKm:      radius,
		RouteLengthKm: spatial.RouteLengthKm(corridor.Waypoints),
		RiskScore:     score,
		Incidents:     rated,
		Buffer:        spatial.Buffer(corridor.Waypoints, radius),
	})
}

func (h *Handler) corridorPoint(c *gin.Context) {
	corridor, err := h.store.GetCorridor(c.Param("id"), c.Param("corridorID"))
	if err != nil {
		respondError(c, err)
		return
	}
	f, err := strconv.ParseFloat(c.DefaultQuery("f", "0.5"), 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "f must be a number in [0,1]"})
		return
	}
	pt := spatial.PointAtFraction(corridor.Waypoints, f)
	if pt == nil {
		respondError(c, domain.ErrRouteTooShort)
		return
	}
	c.JSON(http.StatusOK, pt)
}

// Briefs

type createBriefRequest struct {
	Text   string `json:"text" binding:"required"`
	Source string `json:"source"`
}

func (h *Handler) createBrief(c *gin.Context) {
	var req createBriefRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	brief, err := h.store.CreateBrief(c.Param("id"), req.Text, req.Source)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, brief)
}

func (h *Handler) listBriefs(c *gin.Context) {
	if _, err := h.store.GetOperation(c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	include := c.Query("include_archived") == "true"
	c.JSON(http.StatusOK, h.store.ListBriefs(c.Param("id"), include))
}

func (h *Handler) processBrief(c *gin.Context) {
	brief, err := h.store.GetBrief(c.Param("id"), c.Param("briefID"))
	if err != nil {
		respondError(c, err)
		return
	}
	drafts, err := h.pipeline.ProcessBrief(c.Request.Context(), brief, nil)
	if err != nil {
		respondError(c, err)
		return
	}
	if drafts == nil {
		drafts = []domain.Draft{}
	}
	c.JSON(http.StatusOK, gin.H{"drafts": drafts})
}

func (h *Handler) archiveBrief(c *gin.Context) {
	if err := h.store.ArchiveBrief(c.Param("id"), c.Param("briefID")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Drafts

func (h *Handler) listDrafts(c *gin.Context) {
	if _, err := h.store.GetOperation(c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	status := domain.DraftStatus(c.Query("status"))
	c.JSON(http.StatusOK, h.store.ListDrafts(c.Param("id"), status))
}

type confirmDraftRequest struct {
	Lat *float64 `json:"lat" binding:"required"`
	Lon *float64 `json:"lon" binding:"required"`
}

func (h *Handler) confirmDraft(c *gin.Context) {
	var req confirmDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	inc, err := h.store.ConfirmDraft(c.Param("id"), c.Param("draftID"), *req.Lat, *req.Lon)
	if err != nil {
		respondError(c, err)
		return
	}
	h.metrics.DraftsConfirmed.Inc()
	h.metrics.IncidentsCreated.Inc()
	h.publishIncident(c.Request.Context(), inc)
	c.JSON(http.StatusCreated, inc)
}

func (h *Handler) rejectDraft(c *gin.Context) {
	if err := h.store.RejectDraft(c.Param("id"), c.Param("draftID")); err != nil {
		respondError(c, err)
		return
	}
	h.metrics.DraftsRejected.Inc()
	c.Status(http.StatusNoContent)
}

// Incidents

type createIncidentRequest struct {
	Title        string          `json:"title" binding:"required"`
	Description  string          `json:"description"`
	Category     domain.Category `json:"category"`
	Severity     domain.Severity `json:"severity"`
	Date         string          `json:"date"`
	Lat          *float64        `json:"lat" binding:"required"`
	Lon          *float64        `json:"lon" binding:"required"`
	Actor        string          `json:"actor"`
	Organization string          `json:"organization"`
}

func (h *Handler) createIncident(c *gin.Context) {
	var req createIncidentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Category == "" {
		req.Category = domain.CategoryDisplacement
	}
	if req.Severity == "" {
		req.Severity = domain.SeverityMedium
	}
	inc, err := h.store.CreateIncident(domain.Incident{
		OperationID:  c.Param("id"),
		Title:        req.Title,
		Description:  req.Description,
		Category:     req.Category,
		Severity:     req.Severity,
		Date:         req.Date,
		Lat:          *req.Lat,
		Lon:          *req.Lon,
		Actor:        req.Actor,
		Organization: req.Organization,
		Source:       domain.SourceManual,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	h.metrics.IncidentsCreated.Inc()
	h.publishIncident(c.Request.Context(), inc)
	c.JSON(http.StatusCreated, inc)
}

func (h *Handler) listIncidents(c *gin.Context) {
	if _, err := h.store.GetOperation(c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.store.ListIncidents(c.Param("id")))
}

func (h *Handler) getIncident(c *gin.Context) {
	inc, err := h.store.GetIncident(c.Param("id"), c.Param("incidentID"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, inc)
}

type updateIncidentRequest struct {
	Title        *string          `json:"title"`
	Description  *string          `json:"description"`
	Category     *domain.Category `json:"category"`
	Severity     *domain.Severity `json:"severity"`
	Date         *string          `json:"date"`
	Actor        *string          `json:"actor"`
	Organization *string          `json:"organization"`
	Verified     *bool            `json:"verified"`
}

func (h *Handler) updateIncident(c *gin.Context) {
	var req updateIncidentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	inc, err := h.store.UpdateIncident(c.Param("id"), c.Param("incidentID"), store.IncidentUpdate{
		Title:        req.Title,
		Description:  req.Description,
		Category:     req.Category,
		Severity:     req.Severity,
		Date:         req.Date,
		Actor:        req.Actor,
		Organization: req.Organization,
		Verified:     req.Verified,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, inc)
}

func (h *Handler) deleteIncident(c *gin.Context) {
	if err := h.store.DeleteIncident(c.Param("id"), c.Param("incidentID")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Risk zones

type createRiskZoneRequest struct {
	Name        string          `json:"name" binding:"required"`
	Lat         *float64        `json:"lat" binding:"required"`
	Lon         *float64        `json:"lon" binding:"required"`
	RadiusM     float64         `json:"radius_m" binding:"required"`
	Severity    domain.Severity `json:"severity"`
	Description string          `json:"description"`
}

func (h *Handler) createRiskZone(c *gin.Context) {
	var req createRiskZoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Severity == "" {
		req.Severity = domain.SeverityMedium
	}
	zone, err := h.store.CreateRiskZone(domain.RiskZone{
		OperationID: c.Param("id"),
		Name:        req.Name,
		Lat:         *req.Lat,
		Lon:         *req.Lon,
		RadiusM:     req.RadiusM,
		Severity:    req.Severity,
		Description: req.Description,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, zone)
}

func (h *Handler) listRiskZones(c *gin.Context) {
	if _, err := h.store.GetOperation(c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.store.ListRiskZones(c.Param("id")))
}

// Exports and map layers

func (h *Handler) exportGeoJSON(c *gin.Context) {
	op, err := h.store.GetOperation(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	fc := export.GeoJSON(op,
		h.store.ListCorridors(op.ID),
		h.store.ListIncidents(op.ID),
		h.store.ListDrafts(op.ID, domain.DraftPending),
		h.store.ListRiskZones(op.ID))
	c.Header("Content-Type", "application/geo+json")
	c.JSON(http.StatusOK, fc)
}

func (h *Handler) exportCSV(c *gin.Context) {
	op, err := h.store.GetOperation(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	raw, err := export.CSV(h.store.ListIncidents(op.ID))
	if err != nil {
		respondError(c, err)
		return
	}
	c.Data(http.StatusOK, "text/csv", raw)
}

func (h *Handler) exportReport(c *gin.Context) {
	op, err := h.store.GetOperation(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	report := export.Markdown(op,
		h.store.ListCorridors(op.ID),
		h.store.ListIncidents(op.ID),
		h.store.ListDrafts(op.ID, ""),
		h.bufferRadiusKm)
	c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(report))
}

func (h *Handler) mapLayers(c *gin.Context) {
	op, err := h.store.GetOperation(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	corridors := h.store.ListCorridors(op.ID)
	lines := make([]maplayer.CorridorLines, 0, len(corridors))
	for _, corridor := range corridors {
		lines = append(lines, maplayer.CorridorPolylines(corridor))
	}
	c.JSON(http.StatusOK, gin.H{
		"corridors":  lines,
		"incidents":  maplayer.IncidentMarkers(h.store.ListIncidents(op.ID)),
		"drafts":     maplayer.DraftMarkers(h.store.ListDrafts(op.ID, domain.DraftPending)),
		"risk_zones": maplayer.RiskZoneCircles(h.store.ListRiskZones(op.ID)),
	})
}
