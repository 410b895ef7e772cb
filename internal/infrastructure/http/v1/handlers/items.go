package handlers

import (
	"github.com/gin-gonic/gin"

	"shoptill/internal/core/apperror"
	"shoptill/internal/core/id"
	"shoptill/internal/core/types"
	"shoptill/internal/domain/catalog"
	"shoptill/internal/infrastructure/http/v1/dto"
)

// ItemHandler handles catalog item endpoints.
type ItemHandler struct {
	*BaseHandler
	service *catalog.Service
	mirror  *catalog.Mirror
}

// NewItemHandler creates a new item handler.
func NewItemHandler(base *BaseHandler, service *catalog.Service, mirror *catalog.Mirror) *ItemHandler {
	return &ItemHandler{BaseHandler: base, service: service, mirror: mirror}
}

// List handles GET /items. Served from the mirror: the register reads
// its own snapshot, not the database.
func (h *ItemHandler) List(c *gin.Context) {
	items := h.mirror.CurrentItems()
	h.OK(c, dto.ListResponse{Items: items, Count: len(items)})
}

// Get handles GET /items/:id.
func (h *ItemHandler) Get(c *gin.Context) {
	itemID, ok := h.parseID(c)
	if !ok {
		return
	}
	item, err := h.service.GetByID(c.Request.Context(), itemID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, item)
}

// Create handles POST /items.
func (h *ItemHandler) Create(c *gin.Context) {
	var req dto.CreateItemRequest
	if !h.BindJSON(c, &req) {
		return
	}
	price, err := types.NewMoneyFromString(req.UnitPrice)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid unit price").WithDetail("unitPrice", req.UnitPrice))
		return
	}

	item := catalog.NewItem(req.Name, price, req.StockQuantity, req.ReorderThreshold)
	if err := h.service.Create(c.Request.Context(), item); err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, item.ID.String())
}

// Update handles PUT /items/:id.
func (h *ItemHandler) Update(c *gin.Context) {
	itemID, ok := h.parseID(c)
	if !ok {
		return
	}
	var req dto.UpdateItemRequest
	if !h.BindJSON(c, &req) {
		return
	}
	price, err := types.NewMoneyFromString(req.UnitPrice)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid unit price").WithDetail("unitPrice", req.UnitPrice))
		return
	}

	item, err := h.service.GetByID(c.Request.Context(), itemID)
	if err != nil {
		h.Error(c, err)
		return
	}
	item.Name = req.Name
	item.UnitPrice = price
	item.ReorderThreshold = req.ReorderThreshold
	item.Version = req.Version

	if err := h.service.Update(c.Request.Context(), item); err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, item)
}

// Delete handles DELETE /items/:id (soft delete).
func (h *ItemHandler) Delete(c *gin.Context) {
	itemID, ok := h.parseID(c)
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), itemID); err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}

// Restock handles POST /items/:id/restock.
func (h *ItemHandler) Restock(c *gin.Context) {
	itemID, ok := h.parseID(c)
	if !ok {
		return
	}
	var req dto.RestockRequest
	if !h.BindJSON(c, &req) {
		return
	}

	remaining, err := h.service.Restock(c.Request.Context(), itemID, req.Quantity)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, gin.H{"stockQuantity": remaining})
}

// Reprice handles PUT /items/:id/price.
func (h *ItemHandler) Reprice(c *gin.Context) {
	itemID, ok := h.parseID(c)
	if !ok {
		return
	}
	var req dto.RepriceRequest
	if !h.BindJSON(c, &req) {
		return
	}
	price, err := types.NewMoneyFromString(req.UnitPrice)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid unit price").WithDetail("unitPrice", req.UnitPrice))
		return
	}

	item, err := h.service.Reprice(c.Request.Context(), itemID, price)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, item)
}

// LowStock handles GET /items/low-stock.
func (h *ItemHandler) LowStock(c *gin.Context) {
	items, err := h.service.LowStock(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.ListResponse{Items: items, Count: len(items)})
}

func (h *ItemHandler) parseID(c *gin.Context) (id.ID, bool) {
	itemID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid item id").WithDetail("id", c.Param("id")))
		return id.Nil(), false
	}
	return itemID, true
}
