package http

import (
	"net/http"

	"github.com/director74/order_saga/pkg/metrics"
	"github.com/director74/order_saga/pkg/saga"
	"github.com/gin-gonic/gin"
)

// RouteLister источник таблицы маршрутов саги
type RouteLister interface {
	Pipeline() []saga.Source
	Routes() []saga.Route
}

// SagaHandler обработчик HTTP запросов оркестратора
type SagaHandler struct {
	routes RouteLister
}

func NewSagaHandler(routes RouteLister) *SagaHandler {
	return &SagaHandler{routes: routes}
}

// RegisterRoutes регистрирует маршруты
func (h *SagaHandler) RegisterRoutes(router *gin.Engine, internalAuth gin.HandlerFunc) {
	router.GET("/health", h.HealthCheck)
	router.GET("/metrics", metrics.Handler())

	internal := router.Group("/internal", internalAuth)
	{
		internal.GET("/saga/routes", h.GetRoutes)
	}
}

func (h *SagaHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// GetRoutes возвращает порядок участников, таблицу переходов и все топики саги
func (h *SagaHandler) GetRoutes(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"pipeline": h.routes.Pipeline(),
		"routes":   h.routes.Routes(),
		"topics":   saga.Topics(),
	})
}
