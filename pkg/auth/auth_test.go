package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/director74/order_saga/pkg/config"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager() *JWTManager {
	return NewJWTManager(NewConfig(config.JWTConfig{
		SigningKey:     "test-signing-key",
		TokenTTL:       time.Hour,
		TokenIssuer:    "order-service",
		TokenAudiences: []string{"order-saga"},
	}))
}

func TestJWTManager_GenerateAndParse(t *testing.T) {
	manager := newTestManager()

	token, err := manager.GenerateToken("client-1", "storefront")
	require.NoError(t, err)

	claims, err := manager.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "client-1", claims.ClientID)
	assert.Equal(t, "storefront", claims.ClientName)
	assert.Equal(t, "order-service", claims.Issuer)
}

func TestJWTManager_ExpiredToken(t *testing.T) {
	manager := newTestManager()
	manager.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	token, err := manager.GenerateToken("client-1", "storefront")
	require.NoError(t, err)

	manager.now = time.Now
	_, err = manager.ParseToken(token)
	assert.Error(t, err)
}

func TestJWTManager_WrongKey(t *testing.T) {
	token, err := newTestManager().GenerateToken("client-1", "storefront")
	require.NoError(t, err)

	other := NewJWTManager(NewConfig(config.JWTConfig{
		SigningKey:     "another-key",
		TokenTTL:       time.Hour,
		TokenAudiences: []string{"order-saga"},
	}))
	_, err = other.ParseToken(token)
	assert.Error(t, err)
}

func TestAuthMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	manager := newTestManager()

	router := gin.New()
	router.GET("/orders", NewAuthMiddleware(manager).AuthRequired(), func(c *gin.Context) {
		c.String(http.StatusOK, GetClientID(c))
	})

	token, err := manager.GenerateToken("client-42", "storefront")
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		code   int
	}{
		{"без заголовка", "", http.StatusUnauthorized},
		{"неверный формат", "Token " + token, http.StatusUnauthorized},
		{"неверный токен", "Bearer broken", http.StatusUnauthorized},
		{"валидный токен", "Bearer " + token, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/orders", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.code, w.Code)
			if tt.code == http.StatusOK {
				assert.Equal(t, "client-42", w.Body.String())
			}
		})
	}
}

func TestSecretHash(t *testing.T) {
	hash, err := HashSecret("s3cret")
	require.NoError(t, err)

	assert.NotEqual(t, "s3cret", hash)
	assert.True(t, CheckSecretHash("s3cret", hash))
	assert.False(t, CheckSecretHash("wrong", hash))
}
