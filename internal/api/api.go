// internal/api/api.go
package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/opsdash/backend-go/internal/api/handlers"
	"github.com/opsdash/backend-go/internal/api/middleware"
	"github.com/opsdash/backend-go/internal/domain"
	"github.com/opsdash/backend-go/internal/report"
	"github.com/opsdash/backend-go/internal/repository"
	"github.com/opsdash/backend-go/internal/service"
)

type Services struct {
	Components      repository.ComponentRepository
	StockService    *service.StockService
	POService       *service.POService
	ForecastService *service.ForecastService
	Archiver        *report.Archiver
}

func NewRouter(services *Services, allowedOrigins []string) *gin.Engine {
	registerValidations()

	router := gin.New()

	// Add middleware
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())
	defaultOrigins := []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	corsConfig := cors.Config{
		AllowOrigins:     defaultOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(allowedOrigins) > 0 {
		normalizedOrigins, allowAll := normalizeAllowedOrigins(allowedOrigins)
		if allowAll {
			corsConfig.AllowOrigins = nil
			corsConfig.AllowOriginFunc = func(origin string) bool { return true }
		} else if len(normalizedOrigins) > 0 {
			corsConfig.AllowOrigins = normalizedOrigins
		}
	}
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	apiGroup := router.Group("/api/v1")

	if services != nil {
		if services.Components != nil && services.StockService != nil {
			componentHandler := handlers.NewComponentHandler(services.Components, services.StockService)
			componentGroup := apiGroup.Group("/components")
			{
				componentGroup.GET("", componentHandler.List)
				componentGroup.POST("", componentHandler.Create)
				componentGroup.GET("/:id", componentHandler.Get)
				componentGroup.PUT("/:id", componentHandler.Update)
				componentGroup.DELETE("/:id", componentHandler.Delete)
				componentGroup.GET("/:id/stock", componentHandler.GetStock)
				componentGroup.POST("/:id/stock/adjust", componentHandler.AdjustStock)
				componentGroup.GET("/:id/stock/history", componentHandler.StockHistory)
			}
		}

		if services.POService != nil {
			poHandler := handlers.NewPOHandler(services.POService)
			poGroup := apiGroup.Group("/purchase_orders")
			{
				poGroup.GET("", poHandler.List)
				poGroup.POST("", poHandler.Create)
				poGroup.GET("/:id", poHandler.Get)
				poGroup.PATCH("/:id/status", poHandler.UpdateStatus)
				poGroup.POST("/:id/receive", poHandler.Receive)
				poGroup.DELETE("/:id", poHandler.Delete)
			}
			apiGroup.GET("/suppliers", poHandler.GetSuppliers)
		}

		if services.ForecastService != nil {
			forecastHandler := handlers.NewForecastHandler(services.ForecastService, services.Archiver)
			forecastGroup := apiGroup.Group("/forecast")
			{
				forecastGroup.GET("", forecastHandler.GetForecast)
				forecastGroup.GET("/low_stock", forecastHandler.GetLowStock)
				forecastGroup.POST("/low_stock/archive", forecastHandler.ArchiveLowStock)
			}
		}
	}

	return router
}

func registerValidations() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("postatus", func(fl validator.FieldLevel) bool {
			_, ok := domain.ParsePOStatus(fl.Field().String())
			return ok
		})
	}
}

func normalizeAllowedOrigins(origins []string) ([]string, bool) {
	var (
		parsed   []string
		allowAll bool
	)
	for _, origin := range origins {
		parts := strings.Split(origin, ",")
		for _, part := range parts {
			trimmed := strings.TrimSpace(part)
			if trimmed == "" {
				continue
			}
			if trimmed == "*" {
				allowAll = true
				continue
			}
			parsed = append(parsed, trimmed)
		}
	}
	return parsed, allowAll
}
