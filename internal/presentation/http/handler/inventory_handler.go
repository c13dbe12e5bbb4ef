package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/tillbook-api/internal/application/service"
	"github.com/sangkips/tillbook-api/internal/presentation/http/dto/request"
	"github.com/sangkips/tillbook-api/internal/presentation/http/dto/response"
)

// InventoryHandler handles stock and unit conversion HTTP requests
type InventoryHandler struct {
	inventoryService *service.InventoryService
}

// NewInventoryHandler creates a new inventory handler
func NewInventoryHandler(inventoryService *service.InventoryService) *InventoryHandler {
	return &InventoryHandler{inventoryService: inventoryService}
}

// List handles listing items (?search=&page=&per_page=)
func (h *InventoryHandler) List(c *gin.Context) {
	result, err := h.inventoryService.ListItems(c.Request.Context(), pageParams(c), c.Query("search"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, 200, "Inventory retrieved successfully", result)
}

// Create handles adding an item
func (h *InventoryHandler) Create(c *gin.Context) {
	workerID, ok := currentUser(c)
	if !ok {
		return
	}

	var req request.CreateItemRequest
	if !bindJSON(c, &req) {
		return
	}

	item, err := h.inventoryService.CreateItem(c.Request.Context(), &service.CreateItemInput{
		WorkerID:         workerID,
		Name:             req.Name,
		BaseUnit:         req.BaseUnit,
		AtomicUnit:       req.AtomicUnit,
		ConversionFactor: req.ConversionFactor,
		LossFactor:       req.LossFactor,
		CostPrice:        req.CostPrice,
		SalesPrice:       req.SalesPrice,
		ReorderPoint:     req.ReorderPoint,
		OpeningStock:     req.OpeningStock,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Inventory item created successfully", item)
}

// Get handles getting a single item
func (h *InventoryHandler) Get(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	item, err := h.inventoryService.GetItem(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Inventory item retrieved successfully", item)
}

// Update handles changing an item's descriptive fields
func (h *InventoryHandler) Update(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req request.UpdateItemRequest
	if !bindJSON(c, &req) {
		return
	}

	item, err := h.inventoryService.UpdateItem(c.Request.Context(), &service.UpdateItemInput{
		ID:               id,
		Name:             req.Name,
		BaseUnit:         req.BaseUnit,
		AtomicUnit:       req.AtomicUnit,
		ConversionFactor: req.ConversionFactor,
		LossFactor:       req.LossFactor,
		CostPrice:        req.CostPrice,
		SalesPrice:       req.SalesPrice,
		ReorderPoint:     req.ReorderPoint,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Inventory item updated successfully", item)
}

// Delete handles removing an item together with its conversions
func (h *InventoryHandler) Delete(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	if err := h.inventoryService.DeleteItem(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Inventory item deleted successfully", nil)
}

// ListConversions handles listing the sale units of an item
func (h *InventoryHandler) ListConversions(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	conversions, err := h.inventoryService.ListConversions(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Conversions retrieved successfully", conversions)
}

// SaveConversion handles creating or replacing a sale unit of an item
func (h *InventoryHandler) SaveConversion(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req request.ConversionRequest
	if !bindJSON(c, &req) {
		return
	}

	conversion, err := h.inventoryService.SaveConversion(c.Request.Context(), &service.SaveConversionInput{
		InventoryID:    id,
		ToUnit:         req.ToUnit,
		ConversionRate: req.ConversionRate,
		SalesPrice:     req.SalesPrice,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Conversion saved successfully", conversion)
}

// DeleteConversion handles removing a sale unit
func (h *InventoryHandler) DeleteConversion(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	conversionID, ok := idParam(c, "conversion_id")
	if !ok {
		return
	}

	if err := h.inventoryService.DeleteConversion(c.Request.Context(), id, conversionID); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Conversion deleted successfully", nil)
}

// Restock handles booking a delivery
func (h *InventoryHandler) Restock(c *gin.Context) {
	workerID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req request.RestockRequest
	if !bindJSON(c, &req) {
		return
	}

	item, err := h.inventoryService.Restock(c.Request.Context(), &service.RestockInput{
		ItemID:     id,
		WorkerID:   workerID,
		Quantity:   req.Quantity,
		CostPrice:  req.CostPrice,
		SalesPrice: req.SalesPrice,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Item restocked successfully", item)
}

// Adjust handles a stock correction in atomic units
func (h *InventoryHandler) Adjust(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req request.AdjustStockRequest
	if !bindJSON(c, &req) {
		return
	}

	item, advisory, err := h.inventoryService.AdjustStock(c.Request.Context(), id, req.Quantity)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Stock adjusted successfully", gin.H{
		"item":     item,
		"advisory": advisory,
	})
}

// RestockHistory handles listing the deliveries of an item
func (h *InventoryHandler) RestockHistory(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	history, err := h.inventoryService.RestockHistory(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Restock history retrieved successfully", history)
}

// BreakdownHistory handles listing the unit breakdowns of an item
func (h *InventoryHandler) BreakdownHistory(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	history, err := h.inventoryService.BreakdownHistory(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Breakdown history retrieved successfully", history)
}

// Reorder handles recomputing an item's reorder point from recent sales
func (h *InventoryHandler) Reorder(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req request.ReorderRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.inventoryService.RecomputeReorderPoint(c.Request.Context(), &service.ReorderInput{
		ItemID:       id,
		Days:         req.Days,
		LeadTimeDays: req.LeadTimeDays,
		ServiceLevel: req.ServiceLevel,
		OrderCost:    req.OrderCost,
		HoldingCost:  req.HoldingCost,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Reorder point updated", result)
}
