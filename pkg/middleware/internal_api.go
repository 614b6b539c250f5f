package middleware

import (
	"crypto/subtle"
	"log"
	"net"
	"net/http"

	"github.com/director74/order_saga/pkg/config"
	"github.com/gin-gonic/gin"
)

// InternalAuthMiddleware middleware для защиты доступа к внутренним API
type InternalAuthMiddleware struct {
	config   config.InternalAPIConfig
	networks []*net.IPNet
}

// NewInternalAuthMiddleware создает middleware для защиты внутренних API.
// Некорректные CIDR из конфигурации пропускаются с предупреждением.
func NewInternalAuthMiddleware(cfg config.InternalAPIConfig) *InternalAuthMiddleware {
	networks := make([]*net.IPNet, 0, len(cfg.TrustedNetworks))
	for _, network := range cfg.TrustedNetworks {
		_, ipNet, err := net.ParseCIDR(network)
		if err != nil {
			log.Printf("[WARN] Некорректная доверенная сеть %q: %v", network, err)
			continue
		}
		networks = append(networks, ipNet)
	}

	return &InternalAuthMiddleware{
		config:   cfg,
		networks: networks,
	}
}

// Required middleware требует авторизации для доступа к внутренним API.
// Проверяет либо наличие корректного API ключа, либо что запрос идет из доверенной сети
func (m *InternalAuthMiddleware) Required() gin.HandlerFunc {
	return func(c *gin.Context) {
		headerKey := c.GetHeader(m.config.HeaderName)
		if m.config.APIKey != "" && subtle.ConstantTimeCompare([]byte(headerKey), []byte(m.config.APIKey)) == 1 {
			c.Next()
			return
		}

		if m.isIPTrusted(c.ClientIP()) {
			c.Next()
			return
		}

		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"error": "доступ запрещен, этот API доступен только для внутренних сервисов",
		})
	}
}

func (m *InternalAuthMiddleware) isIPTrusted(ipStr string) bool {
	ip := net.ParseIP(ipStr)
	if ip == nil {
		return false
	}

	for _, ipNet := range m.networks {
		if ipNet.Contains(ip) {
			return true
		}
	}
	return false
}
