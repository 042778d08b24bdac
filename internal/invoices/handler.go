package invoices

import (
	"github.com/chauffio/chauffio/pkg/common"
	"github.com/gin-gonic/gin"
)

// Handler exposes invoice endpoints
type Handler struct {
	service *Service
}

// NewHandler creates a new invoices handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers invoice routes on the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/orders/:id/invoice", h.CreateFromOrder)
	rg.GET("/invoices/:id", h.Get)
}

// CreateFromOrder builds the invoice for an order.
func (h *Handler) CreateFromOrder(c *gin.Context) {
	orgID, ok := common.ParseUUIDQuery(c, "organization_id", "organization ID", true)
	if !ok {
		return
	}
	orderID, ok := common.ParseUUIDParam(c, "id", "order ID")
	if !ok {
		return
	}

	inv, err := h.service.CreateFromOrder(c.Request.Context(), orgID, orderID)
	if common.HandleServiceError(c, err, "failed to create invoice") {
		return
	}
	common.SuccessResponse(c, inv)
}

// Get returns an invoice with its lines.
func (h *Handler) Get(c *gin.Context) {
	orgID, ok := common.ParseUUIDQuery(c, "organization_id", "organization ID", true)
	if !ok {
		return
	}
	invoiceID, ok := common.ParseUUIDParam(c, "id", "invoice ID")
	if !ok {
		return
	}

	inv, err := h.service.GetInvoice(c.Request.Context(), orgID, invoiceID)
	if common.HandleServiceError(c, err, "failed to get invoice") {
		return
	}
	common.SuccessResponse(c, inv)
}
