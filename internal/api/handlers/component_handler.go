// internal/api/handlers/component_handler.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/opsdash/backend-go/internal/domain"
	"github.com/opsdash/backend-go/internal/repository"
	"github.com/opsdash/backend-go/internal/service"
)

type ComponentHandler struct {
	components repository.ComponentRepository
	stock      *service.StockService
}

func NewComponentHandler(components repository.ComponentRepository, stock *service.StockService) *ComponentHandler {
	return &ComponentHandler{components: components, stock: stock}
}

type componentRequest struct {
	SKU             string `json:"sku" binding:"required"`
	Name            string `json:"name" binding:"required"`
	Category        string `json:"category"`
	SupplierID      *int64 `json:"supplier_id"`
	LeadTimeDays    int    `json:"lead_time_days" binding:"gte=0"`
	SafetyDays      int    `json:"safety_days" binding:"gte=0"`
	MinimumOrderQty int    `json:"minimum_order_quantity" binding:"gte=0"`
}

// List returns components with optional search
func (h *ComponentHandler) List(c *gin.Context) {
	filter := repository.ComponentFilter{
		Search:          c.Query("search"),
		Limit:           parsePositiveIntWithDefault(c.Query("limit"), 50),
		Offset:          parseNonNegativeInt(c.Query("offset")),
		IncludeInactive: c.Query("include_inactive") == "true",
	}

	components, err := h.components.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, components)
}

// Create registers a new component
func (h *ComponentHandler) Create(c *gin.Context) {
	var req componentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	component := &domain.Component{
		SKU:             req.SKU,
		Name:            req.Name,
		Category:        req.Category,
		SupplierID:      req.SupplierID,
		LeadTimeDays:    req.LeadTimeDays,
		SafetyDays:      req.SafetyDays,
		MinimumOrderQty: req.MinimumOrderQty,
		IsActive:        true,
	}
	if err := h.components.Create(c.Request.Context(), component); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, component)
}

// Get returns one component by id
func (h *ComponentHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	component, err := h.components.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, component)
}

// Update replaces a component's master data
func (h *ComponentHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req componentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	component, err := h.components.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	component.SKU = req.SKU
	component.Name = req.Name
	component.Category = req.Category
	component.SupplierID = req.SupplierID
	component.LeadTimeDays = req.LeadTimeDays
	component.SafetyDays = req.SafetyDays
	component.MinimumOrderQty = req.MinimumOrderQty

	if err := h.components.Update(c.Request.Context(), component); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, component)
}

// Delete soft-deactivates a component. Components are never hard-deleted.
func (h *ComponentHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.components.Deactivate(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "component deactivated"})
}

// GetStock returns the stock level and recent ledger for a component
func (h *ComponentHandler) GetStock(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	view, err := h.stock.GetStock(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

type adjustStockRequest struct {
	Type     string `json:"type" binding:"required,oneof=count add remove"`
	Quantity int    `json:"quantity"`
	Notes    string `json:"notes"`
}

// AdjustStock applies a manual stock adjustment
func (h *ComponentHandler) AdjustStock(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req adjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.stock.Adjust(c.Request.Context(), service.AdjustRequest{
		ComponentID: id,
		Type:        service.AdjustmentType(req.Type),
		Quantity:    req.Quantity,
		Notes:       req.Notes,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// StockHistory lists ledger entries for a component, newest first
func (h *ComponentHandler) StockHistory(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	limit := parsePositiveIntWithDefault(c.Query("limit"), 50)
	offset := parseNonNegativeInt(c.Query("offset"))

	transactions, err := h.stock.History(c.Request.Context(), id, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, transactions)
}
