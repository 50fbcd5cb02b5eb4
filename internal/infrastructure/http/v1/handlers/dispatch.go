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

// DispatchHandler handles HTTP requests for milk dispatch documents.
type DispatchHandler struct {
	*BaseHandler
	service *dispatch.Service
}

// NewDispatchHandler creates a new dispatch handler.
func NewDispatchHandler(base *BaseHandler, service *dispatch.Service) *DispatchHandler {
	return &DispatchHandler{
		BaseHandler: base,
		service:     service,
	}
}

// Create handles POST /dispatches.
func (h *DispatchHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()
	var req dto.CreateDispatchRequest
	if !h.BindJSON(c, &req) {
		return
	}

	doc := req.ToEntity()
	if err := h.service.Create(ctx, doc); err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.FromDispatch(doc))
}

// Import handles POST /dispatches/import - the historical bulk import path.
func (h *DispatchHandler) Import(c *gin.Context) {
	ctx := c.Request.Context()
	var req dto.ImportDispatchesRequest
	if !h.BindJSON(c, &req) {
		return
	}

	docs := make([]*dispatch.Dispatch, len(req.Items))
	for i := range req.Items {
		docs[i] = req.Items[i].ToEntity()
	}

	if err := h.service.BulkImport(ctx, docs); err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"imported": len(docs)})
}

// Get handles GET /dispatches/:id.
func (h *DispatchHandler) Get(c *gin.Context) {
	docID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	doc, err := h.service.GetByID(c.Request.Context(), docID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromDispatch(doc))
}

// Update handles PUT /dispatches/:id - corrections to in-transit dispatches.
func (h *DispatchHandler) Update(c *gin.Context) {
	ctx := c.Request.Context()
	docID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	var req dto.UpdateDispatchRequest
	if !h.BindJSON(c, &req) {
		return
	}

	doc, err := h.service.GetByID(ctx, docID)
	if err != nil {
		h.Error(c, err)
		return
	}

	req.ApplyTo(doc)

	if err := h.service.Update(ctx, doc); err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromDispatch(doc))
}

// Delete handles DELETE /dispatches/:id.
func (h *DispatchHandler) Delete(c *gin.Context) {
	docID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	if err := h.service.Delete(c.Request.Context(), docID); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}

// List handles GET /dispatches - list with filtering.
func (h *DispatchHandler) List(c *gin.Context) {
	filter := h.parseFilter(c)

	result, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]*dto.DispatchResponse, len(result.Items))
	for i, doc := range result.Items {
		items[i] = dto.FromDispatch(doc)
	}

	h.OK(c, dto.DispatchListResponse{
		Items:      items,
		TotalCount: int(result.TotalCount),
		Limit:      result.Limit,
		Offset:     result.Offset,
	})
}

// Pending handles GET /dispatches/pending - the oldest in-transit dispatch
// for a source/destination unit pair.
func (h *DispatchHandler) Pending(c *gin.Context) {
	sourceID, err := id.Parse(c.Query("sourceUnitId"))
	if err != nil {
		h.Error(c, apperror.NewValidation("sourceUnitId is required"))
		return
	}
	destID, err := id.Parse(c.Query("destinationUnitId"))
	if err != nil {
		h.Error(c, apperror.NewValidation("destinationUnitId is required"))
		return
	}

	doc, err := h.service.FindPendingDispatch(c.Request.Context(), sourceID, destID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromDispatch(doc))
}

// parseFilter builds the list filter from query parameters.
func (h *DispatchHandler) parseFilter(c *gin.Context) dispatch.ListFilter {
	filter := dispatch.ListFilter{
		ListFilter: domain.DefaultListFilter(),
	}
	filter.Search = c.Query("search")
	filter.Limit = h.ParseIntQuery(c, "limit", 50)
	filter.Offset = h.ParseIntQuery(c, "offset", 0)
	filter.OrderBy = c.DefaultQuery("orderBy", "-date")
	filter.IncludeDeleted = c.Query("includeDeleted") == "true"

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

	return filter
}

// RegisterRoutes registers dispatch routes.
func (h *DispatchHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("", h.Create)
	rg.POST("/import", h.Import)
	rg.GET("/pending", h.Pending)
	rg.GET("/:id", h.Get)
	rg.PUT("/:id", h.Update)
	rg.DELETE("/:id", h.Delete)
}
