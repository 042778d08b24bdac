package zones

import (
	"github.com/chauffio/chauffio/pkg/common"
	"github.com/chauffio/chauffio/pkg/geo"
	"github.com/gin-gonic/gin"
)

// Handler exposes zone endpoints
type Handler struct {
	service *Service
}

// NewHandler creates a new zones handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers zone routes on the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/zones", h.List)
	rg.POST("/zones/classify", h.Classify)
}

// List returns the organization's active zones.
func (h *Handler) List(c *gin.Context) {
	orgID, ok := common.ParseUUIDQuery(c, "organization_id", "organization ID", true)
	if !ok {
		return
	}

	result, err := h.service.ActiveZones(c.Request.Context(), orgID)
	if common.HandleServiceError(c, err, "failed to list zones") {
		return
	}

	common.SuccessResponse(c, result)
}

// Classify resolves the zone(s) containing a point.
func (h *Handler) Classify(c *gin.Context) {
	orgID, ok := common.ParseUUIDQuery(c, "organization_id", "organization ID", true)
	if !ok {
		return
	}

	var req ClassifyRequest
	if !common.BindJSON(c, &req) {
		return
	}

	result, err := h.service.Classify(c.Request.Context(), orgID,
		geo.Point{Lat: req.Latitude, Lng: req.Longitude}, req.Strategy)
	if common.HandleServiceError(c, err, "failed to classify point") {
		return
	}

	common.SuccessResponse(c, result)
}
