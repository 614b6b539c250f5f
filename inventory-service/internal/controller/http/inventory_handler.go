package http

import (
	"net/http"

	"github.com/director74/order_saga/inventory-service/internal/entity"
	"github.com/director74/order_saga/inventory-service/internal/usecase"
	"github.com/director74/order_saga/pkg/errors"
	"github.com/gin-gonic/gin"
)

// InventoryHandler обработчик HTTP запросов для склада
type InventoryHandler struct {
	inventoryUseCase *usecase.InventoryUseCase
	health           func(c *gin.Context) error
}

// NewInventoryHandler создает новый обработчик склада
func NewInventoryHandler(inventoryUseCase *usecase.InventoryUseCase, health func(c *gin.Context) error) *InventoryHandler {
	return &InventoryHandler{
		inventoryUseCase: inventoryUseCase,
		health:           health,
	}
}

// RegisterRoutes регистрирует маршруты склада
func (h *InventoryHandler) RegisterRoutes(router *gin.Engine, internalAuth gin.HandlerFunc) {
	router.GET("/health", h.HealthCheck)

	inventory := router.Group("/api/v1/inventory")
	{
		inventory.GET("/:code", h.GetStock)
	}

	// Внутренние маршруты для администрирования остатков
	internal := router.Group("/internal", internalAuth)
	{
		internal.PUT("/inventory", h.SetStock)
	}
}

// HealthCheck обрабатывает запрос на проверку работоспособности сервиса
func (h *InventoryHandler) HealthCheck(c *gin.Context) {
	if h.health != nil {
		if err := h.health(c); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// GetStock возвращает остаток товара по коду
func (h *InventoryHandler) GetStock(c *gin.Context) {
	inventory, err := h.inventoryUseCase.GetStock(c.Request.Context(), c.Param("code"))
	if errors.HandleGinError(c, err) {
		return
	}
	c.JSON(http.StatusOK, inventory)
}

// SetStock устанавливает остаток товара
func (h *InventoryHandler) SetStock(c *gin.Context) {
	var req entity.SetStockRequest
	if !errors.BindJSON(c, &req) {
		return
	}

	inventory, err := h.inventoryUseCase.SetStock(c.Request.Context(), req)
	if errors.HandleGinError(c, err) {
		return
	}
	c.JSON(http.StatusOK, inventory)
}
