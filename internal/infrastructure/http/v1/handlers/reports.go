package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"milkbill/internal/core/id"
	"milkbill/internal/domain"
	"milkbill/internal/domain/dispatch"
)

// ReportsHandler handles read-only report endpoints.
type ReportsHandler struct {
	*BaseHandler
	dispatches *dispatch.Service
}

// NewReportsHandler creates a new reports handler.
func NewReportsHandler(base *BaseHandler, dispatches *dispatch.Service) *ReportsHandler {
	return &ReportsHandler{
		BaseHandler: base,
		dispatches:  dispatches,
	}
}

// DispatchVariance handles GET /reports/dispatch-variance. Settled rows carry
// the destination-minus-dispatch differences; in-transit rows carry none.
func (h *ReportsHandler) DispatchVariance(c *gin.Context) {
	filter := dispatch.ListFilter{
		ListFilter: domain.DefaultListFilter(),
	}
	filter.Limit = h.ParseIntQuery(c, "limit", 200)
	filter.Offset = h.ParseIntQuery(c, "offset", 0)
	filter.OrderBy = c.DefaultQuery("orderBy", "-date")

	if sourceID := c.Query("sourceUnitId"); sourceID != "" {
		if parsed, err := id.Parse(sourceID); err == nil {
			filter.SourceUnitID = &parsed
		}
	}

	if destID := c.Query("destinationUnitId"); destID != "" {
		if parsed, err := id.Parse(destID); err == nil {
			filter.DestinationUnitID = &parsed
		}
	}

	if inTransit := c.Query("inTransit"); inTransit != "" {
		val := inTransit == "true"
		filter.InTransit = &val
	}

	if dateFrom := c.Query("dateFrom"); dateFrom != "" {
		if parsed, err := time.Parse("2006-01-02", dateFrom); err == nil {
			filter.DateFrom = &parsed
		}
	}

	if dateTo := c.Query("dateTo"); dateTo != "" {
		if parsed, err := time.Parse("2006-01-02", dateTo); err == nil {
			filter.DateTo = &parsed
		}
	}

	rows, err := h.dispatches.VarianceReport(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, gin.H{"items": rows, "totalCount": len(rows)})
}

// RegisterRoutes registers report routes.
func (h *ReportsHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/dispatch-variance", h.DispatchVariance)
}
