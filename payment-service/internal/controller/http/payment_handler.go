package http

import (
	"net/http"

	"github.com/director74/order_saga/payment-service/internal/entity"
	"github.com/director74/order_saga/payment-service/internal/usecase"
	"github.com/director74/order_saga/pkg/auth"
	"github.com/director74/order_saga/pkg/errors"
	"github.com/gin-gonic/gin"
)

// PaymentHandler обработчик HTTP запросов для платежей
type PaymentHandler struct {
	paymentUseCase *usecase.PaymentUseCase
	authMiddleware *auth.AuthMiddleware
	health         func(c *gin.Context) error
}

// NewPaymentHandler создает новый обработчик платежей
func NewPaymentHandler(paymentUseCase *usecase.PaymentUseCase, authMiddleware *auth.AuthMiddleware, health func(c *gin.Context) error) *PaymentHandler {
	return &PaymentHandler{
		paymentUseCase: paymentUseCase,
		authMiddleware: authMiddleware,
		health:         health,
	}
}

// RegisterRoutes регистрирует маршруты
func (h *PaymentHandler) RegisterRoutes(router *gin.Engine) {
	router.GET("/health", h.HealthCheck)

	v1 := router.Group("/api/v1", h.authMiddleware.AuthRequired())
	{
		v1.GET("/payments", h.FindPayments)
	}
}

// HealthCheck обрабатывает запрос на проверку работоспособности сервиса
func (h *PaymentHandler) HealthCheck(c *gin.Context) {
	if h.health != nil {
		if err := h.health(c); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// FindPayments возвращает платежи заказа, при указании transactionId только платеж этой саги
func (h *PaymentHandler) FindPayments(c *gin.Context) {
	var filter entity.PaymentFilter
	if !errors.BindQuery(c, &filter) {
		return
	}

	payments, err := h.paymentUseCase.FindPayments(c.Request.Context(), filter)
	if errors.HandleGinError(c, err) {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"payments": payments,
		"total":    len(payments),
	})
}
