package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	contextClientID   = "client_id"
	contextClientName = "client_name"
)

// AuthMiddleware middleware для проверки JWT токена
type AuthMiddleware struct {
	jwtManager *JWTManager
}

func NewAuthMiddleware(jwtManager *JWTManager) *AuthMiddleware {
	return &AuthMiddleware{
		jwtManager: jwtManager,
	}
}

// AuthRequired middleware требует авторизации для доступа к endpoint
func (m *AuthMiddleware) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "отсутствует токен авторизации"})
			return
		}

		// Проверяем формат токена "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "неверный формат токена авторизации"})
			return
		}

		claims, err := m.jwtManager.ParseToken(parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "недействительный токен: " + err.Error()})
			return
		}

		c.Set(contextClientID, claims.ClientID)
		c.Set(contextClientName, claims.ClientName)

		c.Next()
	}
}

// GetClientID идентификатор клиента из проверенного токена
func GetClientID(c *gin.Context) string {
	return c.GetString(contextClientID)
}

func GetClientName(c *gin.Context) string {
	return c.GetString(contextClientName)
}
