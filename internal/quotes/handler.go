package quotes

import (
	"github.com/chauffio/chauffio/pkg/common"
	"github.com/gin-gonic/gin"
)

// Handler exposes quote lifecycle endpoints
type Handler struct {
	service *Service
}

// NewHandler creates a new quotes handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers quote routes on the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/quotes/:id", h.Get)
	rg.GET("/quotes/:id/transitions", h.Transitions)
	rg.GET("/quotes/:id/audit", h.Audit)
	rg.POST("/quotes/:id/transition", h.Transition)
}

// Get returns a quote with its lines.
func (h *Handler) Get(c *gin.Context) {
	orgID, ok := common.ParseUUIDQuery(c, "organization_id", "organization ID", true)
	if !ok {
		return
	}
	quoteID, ok := common.ParseUUIDParam(c, "id", "quote ID")
	if !ok {
		return
	}

	quote, err := h.service.repo.GetQuote(c.Request.Context(), orgID, quoteID)
	if common.HandleServiceError(c, err, "failed to get quote") {
		return
	}
	common.SuccessResponse(c, quote)
}

// Transitions returns the allowed next statuses and editability flags.
func (h *Handler) Transitions(c *gin.Context) {
	orgID, ok := common.ParseUUIDQuery(c, "organization_id", "organization ID", true)
	if !ok {
		return
	}
	quoteID, ok := common.ParseUUIDParam(c, "id", "quote ID")
	if !ok {
		return
	}

	quote, err := h.service.repo.GetQuote(c.Request.Context(), orgID, quoteID)
	if common.HandleServiceError(c, err, "failed to get quote") {
		return
	}

	common.SuccessResponse(c, gin.H{
		"status":                 quote.Status,
		"valid_transitions":      ValidTransitions(quote.Status),
		"is_editable":            quote.IsEditable(),
		"is_commercially_frozen": quote.IsCommerciallyFrozen(),
		"notes_editable":         quote.NotesEditable(),
		"can_convert_to_invoice": quote.CanConvertToInvoice(),
	})
}

type transitionRequest struct {
	NewStatus Status `json:"new_status" binding:"required"`
	Reason    string `json:"reason"`
	ChangedBy string `json:"changed_by"`
}

// Transition applies a status change to a quote.
func (h *Handler) Transition(c *gin.Context) {
	orgID, ok := common.ParseUUIDQuery(c, "organization_id", "organization ID", true)
	if !ok {
		return
	}
	quoteID, ok := common.ParseUUIDParam(c, "id", "quote ID")
	if !ok {
		return
	}

	var req transitionRequest
	if !common.BindJSON(c, &req) {
		return
	}

	quote, err := h.service.Transition(c.Request.Context(), orgID, quoteID, req.NewStatus, req.Reason, req.ChangedBy)
	if common.HandleServiceError(c, err, "failed to transition quote") {
		return
	}
	common.SuccessResponse(c, quote)
}

// Audit returns the status history of a quote.
func (h *Handler) Audit(c *gin.Context) {
	if _, ok := common.ParseUUIDQuery(c, "organization_id", "organization ID", true); !ok {
		return
	}
	quoteID, ok := common.ParseUUIDParam(c, "id", "quote ID")
	if !ok {
		return
	}

	entries, err := h.service.repo.ListAuditLog(c.Request.Context(), quoteID)
	if common.HandleServiceError(c, err, "failed to list audit log") {
		return
	}
	common.SuccessResponse(c, entries)
}
