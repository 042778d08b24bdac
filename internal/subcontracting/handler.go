package subcontracting

import (
	"time"

	"github.com/chauffio/chauffio/pkg/common"
	"github.com/chauffio/chauffio/pkg/geo"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Handler exposes subcontracting endpoints
type Handler struct {
	service *Service
}

// NewHandler creates a new subcontracting handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers subcontracting routes on the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/subcontracting/candidates", h.Candidates)
	rg.POST("/subcontracting/empty-legs/match", h.MatchEmptyLegs)
	rg.POST("/missions/:id/subcontract", h.Subcontract)
}

// Candidates ranks subcontractors for a mission profile.
func (h *Handler) Candidates(c *gin.Context) {
	orgID, ok := common.ParseUUIDQuery(c, "organization_id", "organization ID", true)
	if !ok {
		return
	}

	var profile MissionProfile
	if !common.BindJSON(c, &profile) {
		return
	}

	candidates, err := h.service.FindCandidates(c.Request.Context(), orgID, profile)
	if common.HandleServiceError(c, err, "failed to rank candidates") {
		return
	}
	common.SuccessResponse(c, candidates)
}

type emptyLegMatchRequest struct {
	Pickup   geo.Point `json:"pickup" binding:"required"`
	Dropoff  geo.Point `json:"dropoff" binding:"required"`
	PickupAt time.Time `json:"pickup_at" binding:"required"`
}

// MatchEmptyLegs returns the empty legs a planned trip can ride.
func (h *Handler) MatchEmptyLegs(c *gin.Context) {
	orgID, ok := common.ParseUUIDQuery(c, "organization_id", "organization ID", true)
	if !ok {
		return
	}

	var req emptyLegMatchRequest
	if !common.BindJSON(c, &req) {
		return
	}

	legs, err := h.service.MatchEmptyLegs(c.Request.Context(), orgID, req.Pickup, req.Dropoff, req.PickupAt)
	if common.HandleServiceError(c, err, "failed to match empty legs") {
		return
	}
	common.SuccessResponse(c, legs)
}

type subcontractRequest struct {
	SubcontractorID uuid.UUID `json:"subcontractor_id" binding:"required"`
	AgreedPrice     float64   `json:"agreed_price" binding:"required"`
	ChangedBy       string    `json:"changed_by"`
}

// Subcontract hands a mission to a subcontractor.
func (h *Handler) Subcontract(c *gin.Context) {
	orgID, ok := common.ParseUUIDQuery(c, "organization_id", "organization ID", true)
	if !ok {
		return
	}
	missionID, ok := common.ParseUUIDParam(c, "id", "mission ID")
	if !ok {
		return
	}

	var req subcontractRequest
	if !common.BindJSON(c, &req) {
		return
	}

	err := h.service.Subcontract(c.Request.Context(), orgID, missionID, req.SubcontractorID, req.AgreedPrice, req.ChangedBy)
	if common.HandleServiceError(c, err, "failed to subcontract mission") {
		return
	}
	common.SuccessResponse(c, gin.H{"mission_id": missionID, "subcontractor_id": req.SubcontractorID})
}
