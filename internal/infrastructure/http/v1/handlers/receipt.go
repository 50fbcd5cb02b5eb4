package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"milkbill/internal/core/apperror"
	"milkbill/internal/core/id"
	"milkbill/internal/domain"
	"milkbill/internal/domain/dispatch"
	"milkbill/internal/infrastructure/http/v1/dto"
)

// ReceiptHandler handles HTTP requests for milk receipt documents. Saving a
// receipt settles the matching in-transit dispatch in the same transaction.
type ReceiptHandler struct {
	*BaseHandler
	service *dispatch.Service
}

// NewReceiptHandler creates a new receipt handler.
func NewReceiptHandler(base *BaseHandler, service *dispatch.Service) *ReceiptHandler {
	return &ReceiptHandler{
		BaseHandler: base,
		service:     service,
	}
}

// Create handles POST /receipts.
func (h *ReceiptHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()
	var req dto.CreateReceiptRequest
	if !h.BindJSON(c, &req) {
		return
	}

	doc := req.ToEntity()
	if err := h.service.CreateReceipt(ctx, doc); err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.FromReceipt(doc))
}

// Get handles GET /receipts/:id.
func (h *ReceiptHandler) Get(c *gin.Context) {
	docID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	doc, err := h.service.GetReceipt(c.Request.Context(), docID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromReceipt(doc))
}

// Update handles PUT /receipts/:id - corrections to receipt readings. A
// correction restates the linked dispatch's destination totals as well.
func (h *ReceiptHandler) Update(c *gin.Context) {
	ctx := c.Request.Context()
	docID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	var req dto.UpdateReceiptRequest
	if !h.BindJSON(c, &req) {
		return
	}

	doc, err := h.service.GetReceipt(ctx, docID)
	if err != nil {
		h.Error(c, err)
		return
	}

	req.ApplyTo(doc)

	if err := h.service.UpdateReceipt(ctx, doc); err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromReceipt(doc))
}

// List handles GET /receipts - list with filtering.
func (h *ReceiptHandler) List(c *gin.Context) {
	filter := dispatch.ListFilter{
		ListFilter: domain.DefaultListFilter(),
	}
	filter.Limit = h.ParseIntQuery(c, "limit", 50)
	filter.Offset = h.ParseIntQuery(c, "offset", 0)
	filter.OrderBy = c.DefaultQuery("orderBy", "-date")
	filter.IncludeDeleted = c.Query("includeDeleted") == "true"

	if sourceID := c.Query("sourceUnitId"); sourceID != "" {
		if parsed, err := id.Parse(sourceID); err == nil {
			filter.SourceUnitID = &parsed
		}
	}

	if destID := c.Query("receivingUnitId"); destID != "" {
		if parsed, err := id.Parse(destID); err == nil {
			filter.DestinationUnitID = &parsed
		}
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

	result, err := h.service.ListReceipts(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]*dto.ReceiptResponse, len(result.Items))
	for i, doc := range result.Items {
		items[i] = dto.FromReceipt(doc)
	}

	h.OK(c, dto.ReceiptListResponse{
		Items:      items,
		TotalCount: int(result.TotalCount),
		Limit:      result.Limit,
		Offset:     result.Offset,
	})
}

// Defaults handles GET /receipts/defaults - prefills entry-screen readings
// from the pending dispatch for a unit pair.
func (h *ReceiptHandler) Defaults(c *gin.Context) {
	sourceID, err := id.Parse(c.Query("sourceUnitId"))
	if err != nil {
		h.Error(c, apperror.NewValidation("sourceUnitId is required"))
		return
	}
	destID, err := id.Parse(c.Query("receivingUnitId"))
	if err != nil {
		h.Error(c, apperror.NewValidation("receivingUnitId is required"))
		return
	}

	doc, err := h.service.ReceiptDefaults(c.Request.Context(), sourceID, destID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromReceipt(doc))
}

// RegisterRoutes registers receipt routes.
func (h *ReceiptHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("", h.Create)
	rg.GET("/defaults", h.Defaults)
	rg.GET("/:id", h.Get)
	rg.PUT("/:id", h.Update)
}
