// internal/api/handlers/po_handler.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/opsdash/backend-go/internal/domain"
	"github.com/opsdash/backend-go/internal/repository"
	"github.com/opsdash/backend-go/internal/service"
)

type POHandler struct {
	poService *service.POService
}

func NewPOHandler(poService *service.POService) *POHandler {
	return &POHandler{poService: poService}
}

// List returns purchase orders filtered by status and supplier
func (h *POHandler) List(c *gin.Context) {
	filter := repository.POFilter{
		Status:     domain.POStatus(c.Query("status")),
		SupplierID: int64(parseNonNegativeInt(c.Query("supplier_id"))),
		Page:       parsePositiveIntWithDefault(c.Query("page"), 1),
		PageSize:   parsePositiveIntWithDefault(c.Query("page_size"), 20),
	}

	orders, total, err := h.poService.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items":     orders,
		"total":     total,
		"page":      filter.Page,
		"page_size": filter.PageSize,
	})
}

// Create registers a new draft purchase order
func (h *POHandler) Create(c *gin.Context) {
	var input service.CreatePOInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	po, err := h.poService.Create(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, po)
}

// Get returns one purchase order with its line items
func (h *POHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	po, err := h.poService.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, po)
}

type updateStatusRequest struct {
	Status string `json:"status" binding:"required,postatus"`
}

// UpdateStatus moves a purchase order through its lifecycle
func (h *POHandler) UpdateStatus(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	po, err := h.poService.UpdateStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, po)
}

type receiveRequest struct {
	Items []repository.ReceiptLine `json:"items" binding:"required,min=1"`
}

// Receive records received quantities against the order's line items
func (h *POHandler) Receive(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req receiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	po, err := h.poService.Receive(c.Request.Context(), id, req.Items)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, po)
}

// Delete removes a draft or cancelled purchase order
func (h *POHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.poService.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "purchase order deleted"})
}

// GetSuppliers returns all suppliers
func (h *POHandler) GetSuppliers(c *gin.Context) {
	suppliers, err := h.poService.ListSuppliers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, suppliers)
}
