package http

import (
	"net/http"

	"github.com/director74/order_saga/pkg/errors"
	"github.com/director74/order_saga/product-validation-service/internal/entity"
	"github.com/director74/order_saga/product-validation-service/internal/usecase"
	"github.com/gin-gonic/gin"
)

// ProductHandler обработчик HTTP запросов каталога товаров
type ProductHandler struct {
	useCase *usecase.ValidationUseCase
	health  func(c *gin.Context) error
}

func NewProductHandler(useCase *usecase.ValidationUseCase, health func(c *gin.Context) error) *ProductHandler {
	return &ProductHandler{useCase: useCase, health: health}
}

// RegisterRoutes регистрирует маршруты
func (h *ProductHandler) RegisterRoutes(router *gin.Engine, internalAuth gin.HandlerFunc) {
	router.GET("/health", h.HealthCheck)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/products", h.ListProducts)
	}

	internal := router.Group("/internal", internalAuth)
	{
		internal.POST("/products", h.CreateProduct)
	}
}

func (h *ProductHandler) HealthCheck(c *gin.Context) {
	if h.health != nil {
		if err := h.health(c); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *ProductHandler) ListProducts(c *gin.Context) {
	products, err := h.useCase.ListProducts(c.Request.Context())
	if errors.HandleGinError(c, err) {
		return
	}
	c.JSON(http.StatusOK, products)
}

// CreateProduct добавляет товар в каталог
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var req entity.CreateProductRequest
	if !errors.BindJSON(c, &req) {
		return
	}

	product, err := h.useCase.CreateProduct(c.Request.Context(), req)
	if errors.HandleGinError(c, err) {
		return
	}
	c.JSON(http.StatusCreated, product)
}
