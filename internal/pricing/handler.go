package pricing

import (
	"github.com/chauffio/chauffio/pkg/common"
	"github.com/gin-gonic/gin"
)

// Handler exposes pricing endpoints
type Handler struct {
	service *Service
}

// NewHandler creates a new pricing handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers pricing routes on the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/pricing/compute", h.Compute)
	rg.POST("/pricing/snapshots/:id/override", h.Override)
}

// Compute prices a trip request.
func (h *Handler) Compute(c *gin.Context) {
	orgID, ok := common.ParseUUIDQuery(c, "organization_id", "organization ID", true)
	if !ok {
		return
	}

	var req Request
	if !common.BindJSON(c, &req) {
		return
	}

	result, err := h.service.ComputePrice(c.Request.Context(), orgID, req)
	if common.HandleServiceError(c, err, "failed to compute price") {
		return
	}

	common.SuccessResponse(c, result)
}

type overrideRequest struct {
	NewPrice             float64  `json:"new_price" binding:"required"`
	Reason               string   `json:"reason"`
	MinimumMarginPercent *float64 `json:"minimum_margin_percent,omitempty"`
}

// Override applies a manual price override to a stored snapshot.
func (h *Handler) Override(c *gin.Context) {
	orgID, ok := common.ParseUUIDQuery(c, "organization_id", "organization ID", true)
	if !ok {
		return
	}
	snapshotID, ok := common.ParseUUIDParam(c, "id", "snapshot ID")
	if !ok {
		return
	}

	var req overrideRequest
	if !common.BindJSON(c, &req) {
		return
	}

	result, err := h.service.OverridePrice(c.Request.Context(), orgID, snapshotID, req.NewPrice, req.Reason, req.MinimumMarginPercent)
	if common.HandleServiceError(c, err, "failed to apply price override") {
		return
	}

	common.SuccessResponse(c, result)
}
