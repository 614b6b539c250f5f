package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/director74/order_saga/order-service/internal/entity"
	"github.com/director74/order_saga/order-service/internal/usecase"
	"github.com/director74/order_saga/pkg/auth"
	"github.com/director74/order_saga/pkg/errors"
)

type OrderHandler struct {
	orderUseCase   *usecase.OrderUseCase
	authMiddleware gin.HandlerFunc
	health         func(c *gin.Context) error
}

func NewOrderHandler(orderUseCase *usecase.OrderUseCase, authMiddleware gin.HandlerFunc, health func(c *gin.Context) error) *OrderHandler {
	return &OrderHandler{
		orderUseCase:   orderUseCase,
		authMiddleware: authMiddleware,
		health:         health,
	}
}

func (h *OrderHandler) RegisterRoutes(router *gin.Engine) {
	router.GET("/health", h.HealthCheck)

	api := router.Group("/api/v1")
	api.Use(h.authMiddleware)
	{
		api.POST("/orders", h.CreateOrder)
		api.GET("/orders/:id", h.GetOrder)
		api.GET("/events", h.FindAllEvents)
		api.GET("/events/filter", h.FindEventByFilters)
	}
}

func (h *OrderHandler) HealthCheck(c *gin.Context) {
	if h.health != nil {
		if err := h.health(c); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// CreateOrder создает заказ и запускает сагу
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req entity.CreateOrderRequest
	if !errors.BindJSON(c, &req) {
		return
	}

	order, err := h.orderUseCase.CreateOrder(c.Request.Context(), auth.GetClientID(c), req)
	if errors.HandleGinError(c, err) {
		return
	}

	c.JSON(http.StatusCreated, order)
}

func (h *OrderHandler) GetOrder(c *gin.Context) {
	order, err := h.orderUseCase.GetOrder(c.Request.Context(), c.Param("id"))
	if errors.HandleGinError(c, err) {
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) FindAllEvents(c *gin.Context) {
	events, err := h.orderUseCase.FindAllEvents(c.Request.Context())
	if errors.HandleGinError(c, err) {
		return
	}
	c.JSON(http.StatusOK, events)
}

// FindEventByFilters возвращает последнее событие по orderId или transactionId
func (h *OrderHandler) FindEventByFilters(c *gin.Context) {
	var filters entity.EventFilters
	if !errors.BindQuery(c, &filters) {
		return
	}

	event, err := h.orderUseCase.FindEventByFilters(c.Request.Context(), filters)
	if errors.HandleGinError(c, err) {
		return
	}
	c.JSON(http.StatusOK, event)
}
