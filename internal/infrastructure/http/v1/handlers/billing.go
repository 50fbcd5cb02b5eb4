package handlers

import (
	"github.com/gin-gonic/gin"

	"milkbill/internal/core/apperror"
	"milkbill/internal/core/types"
	"milkbill/internal/domain/billing"
	"milkbill/internal/domain/collection"
)

// BillingHandler handles settlement reads: farmer bills, period instances
// and valuation previews. All responses are computed on demand from master
// data; nothing here writes.
type BillingHandler struct {
	*BaseHandler
	service *billing.Service
}

// NewBillingHandler creates a new billing handler.
func NewBillingHandler(base *BaseHandler, service *billing.Service) *BillingHandler {
	return &BillingHandler{
		BaseHandler: base,
		service:     service,
	}
}

// FarmerBill handles GET /bills/:farmerId?period={instanceId}.
func (h *BillingHandler) FarmerBill(c *gin.Context) {
	farmerID := c.Param("farmerId")
	periodID := c.Query("period")
	if periodID == "" {
		h.Error(c, apperror.NewValidation("period is required").
			WithDetail("query", "period"))
		return
	}

	stmt, err := h.service.FarmerBill(c.Request.Context(), farmerID, periodID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, stmt)
}

// PeriodInstances handles GET /bill-periods/instances.
func (h *BillingHandler) PeriodInstances(c *gin.Context) {
	var ref types.Date
	if raw := c.Query("ref"); raw != "" {
		parsed, err := types.ParseDate(raw)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid ref date").
				WithDetail("ref", raw))
			return
		}
		ref = parsed
	}
	window := h.ParseIntQuery(c, "months", 0)

	instances, err := h.service.PeriodInstances(c.Request.Context(), ref, window)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, gin.H{"items": instances, "totalCount": len(instances)})
}

// PreviewValuation handles POST /valuations/preview. The entry screen sends
// the full snapshot and renders the derived record; nothing is persisted.
func (h *BillingHandler) PreviewValuation(c *gin.Context) {
	var in collection.Input
	if !h.BindJSON(c, &in) {
		return
	}

	if in.FarmerID == "" {
		h.Error(c, apperror.NewValidation("farmerId is required").
			WithDetail("field", "farmerId"))
		return
	}
	if in.Date.IsZero() {
		h.Error(c, apperror.NewValidation("date is required").
			WithDetail("field", "date"))
		return
	}
	// Shift bounds slab validity windows; an absent one would silently
	// order as AM and can pick the wrong slab at a PM-bounded window.
	if in.Shift == "" {
		h.Error(c, apperror.NewValidation("shift is required").
			WithDetail("field", "shift"))
		return
	}

	record, err := h.service.PreviewValuation(c.Request.Context(), in)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, record)
}

// RegisterRoutes registers billing routes.
func (h *BillingHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/bills/:farmerId", h.FarmerBill)
	rg.GET("/bill-periods/instances", h.PeriodInstances)
	rg.POST("/valuations/preview", h.PreviewValuation)
}
