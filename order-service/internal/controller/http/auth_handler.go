package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/director74/order_saga/order-service/internal/entity"
	"github.com/director74/order_saga/order-service/internal/usecase"
	"github.com/director74/order_saga/pkg/errors"
)

type AuthHandler struct {
	authUseCase  *usecase.AuthUseCase
	internalAuth gin.HandlerFunc
}

func NewAuthHandler(authUseCase *usecase.AuthUseCase, internalAuth gin.HandlerFunc) *AuthHandler {
	return &AuthHandler{
		authUseCase:  authUseCase,
		internalAuth: internalAuth,
	}
}

func (h *AuthHandler) RegisterRoutes(router *gin.Engine) {
	api := router.Group("/api/v1")
	{
		// Регистрация клиентов доступна только из внутренней сети или по ключу
		api.POST("/clients", h.internalAuth, h.RegisterClient)
		api.POST("/auth/token", h.IssueToken)
	}
}

func (h *AuthHandler) RegisterClient(c *gin.Context) {
	var req entity.RegisterClientRequest
	if !errors.BindJSON(c, &req) {
		return
	}

	resp, err := h.authUseCase.RegisterClient(c.Request.Context(), req)
	if errors.HandleGinError(c, err) {
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (h *AuthHandler) IssueToken(c *gin.Context) {
	var req entity.TokenRequest
	if !errors.BindJSON(c, &req) {
		return
	}

	resp, err := h.authUseCase.IssueToken(c.Request.Context(), req)
	if errors.HandleGinError(c, err) {
		return
	}

	c.JSON(http.StatusOK, resp)
}
