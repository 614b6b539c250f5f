package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/director74/order_saga/inventory-service/internal/entity"
	"github.com/director74/order_saga/inventory-service/internal/usecase"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// stubInventoryRepository остатки в памяти
type stubInventoryRepository struct {
	usecase.InventoryRepository
	stock map[string]int
}

func (s *stubInventoryRepository) FindByProductCode(ctx context.Context, code string) (*entity.Inventory, error) {
	available, ok := s.stock[code]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &entity.Inventory{ProductCode: code, Available: available}, nil
}

func (s *stubInventoryRepository) UpsertStock(ctx context.Context, inventory *entity.Inventory) error {
	s.stock[inventory.ProductCode] = inventory.Available
	return nil
}

func newTestRouter(repo usecase.InventoryRepository, internalAuth gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	NewInventoryHandler(usecase.NewInventoryUseCase(repo, nil), nil).RegisterRoutes(router, internalAuth)
	return router
}

func TestGetStock(t *testing.T) {
	router := newTestRouter(&stubInventoryRepository{stock: map[string]int{"BOOKS": 7}}, gin.HandlerFunc(func(c *gin.Context) { c.Next() }))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/inventory/BOOKS", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var inventory entity.Inventory
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &inventory))
	assert.Equal(t, 7, inventory.Available)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/inventory/PENS", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSetStock(t *testing.T) {
	repo := &stubInventoryRepository{stock: map[string]int{}}

	t.Run("установка остатка", func(t *testing.T) {
		router := newTestRouter(repo, func(c *gin.Context) { c.Next() })

		req := httptest.NewRequest(http.MethodPut, "/internal/inventory", strings.NewReader(`{"productCode":"BOOKS","available":0}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 0, repo.stock["BOOKS"])
	})

	t.Run("отрицательный остаток", func(t *testing.T) {
		router := newTestRouter(repo, func(c *gin.Context) { c.Next() })

		req := httptest.NewRequest(http.MethodPut, "/internal/inventory", strings.NewReader(`{"productCode":"BOOKS","available":-1}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("внешний запрос", func(t *testing.T) {
		router := newTestRouter(repo, func(c *gin.Context) { c.AbortWithStatus(http.StatusForbidden) })

		req := httptest.NewRequest(http.MethodPut, "/internal/inventory", strings.NewReader(`{"productCode":"BOOKS","available":5}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, 0, repo.stock["BOOKS"])
	})
}
