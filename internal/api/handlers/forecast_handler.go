// internal/api/handlers/forecast_handler.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/opsdash/backend-go/internal/report"
	"github.com/opsdash/backend-go/internal/service"
)

type ForecastHandler struct {
	forecastService *service.ForecastService
	archiver        *report.Archiver
}

func NewForecastHandler(forecastService *service.ForecastService, archiver *report.Archiver) *ForecastHandler {
	return &ForecastHandler{forecastService: forecastService, archiver: archiver}
}

// GetForecast runs a forecast sweep across active components
func (h *ForecastHandler) GetForecast(c *gin.Context) {
	brandID := parseOptionalID(c.Query("brand_id"))

	rows, err := h.forecastService.Evaluate(c.Request.Context(), brandID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, rows)
}

// GetLowStock returns the categorized low-stock report
func (h *ForecastHandler) GetLowStock(c *gin.Context) {
	brandID := parseOptionalID(c.Query("brand_id"))

	lowStock, err := h.forecastService.LowStock(c.Request.Context(), brandID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, lowStock)
}

// ArchiveLowStock renders the current low-stock report to CSV and uploads
// it to object storage
func (h *ForecastHandler) ArchiveLowStock(c *gin.Context) {
	if h.archiver == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "report storage is not configured"})
		return
	}

	brandID := parseOptionalID(c.Query("brand_id"))

	lowStock, err := h.forecastService.LowStock(c.Request.Context(), brandID)
	if err != nil {
		respondError(c, err)
		return
	}

	key, err := h.archiver.Archive(c.Request.Context(), lowStock)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"key":        key,
		"components": lowStock.Total(),
	})
}
