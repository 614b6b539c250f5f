package http

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/director74/order_saga/pkg/saga"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSagaHandler_GetRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)

	table, err := saga.NewRouteTable(saga.DefaultPipeline(), log.New(io.Discard, "", 0))
	require.NoError(t, err)

	router := gin.New()
	NewSagaHandler(table).RegisterRoutes(router, func(c *gin.Context) { c.Next() })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/internal/saga/routes", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Pipeline []saga.Source `json:"pipeline"`
		Routes   []saga.Route  `json:"routes"`
		Topics   []saga.Topic  `json:"topics"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))

	assert.Equal(t, saga.DefaultPipeline(), body.Pipeline)
	assert.Len(t, body.Routes, 12)
	assert.Equal(t, saga.Topics(), body.Topics)
}

func TestSagaHandler_InternalGuard(t *testing.T) {
	gin.SetMode(gin.TestMode)

	table, err := saga.NewRouteTable(saga.DefaultPipeline(), log.New(io.Discard, "", 0))
	require.NoError(t, err)

	router := gin.New()
	NewSagaHandler(table).RegisterRoutes(router, func(c *gin.Context) {
		c.AbortWithStatus(http.StatusForbidden)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/internal/saga/routes", nil))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
