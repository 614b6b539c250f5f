package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/director74/order_saga/pkg/config"
	"github.com/golang-jwt/jwt/v5"
)

// TokenClaims содержит данные API-клиента и стандартные JWT claims
type TokenClaims struct {
	ClientID   string `json:"client_id"`
	ClientName string `json:"client_name"`
	jwt.RegisteredClaims
}

// Config содержит настройки для JWT токенов
type Config struct {
	SigningKey     string
	TokenTTL       time.Duration
	SigningMethod  jwt.SigningMethod
	TokenIssuer    string
	TokenAudiences []string
}

// NewConfig переводит конфигурацию сервиса в настройки JWT менеджера
func NewConfig(cfg config.JWTConfig) *Config {
	return &Config{
		SigningKey:     cfg.SigningKey,
		TokenTTL:       cfg.TokenTTL,
		SigningMethod:  jwt.SigningMethodHS256,
		TokenIssuer:    cfg.TokenIssuer,
		TokenAudiences: cfg.TokenAudiences,
	}
}

// JWTManager управляет JWT токенами
type JWTManager struct {
	config *Config
	now    func() time.Time
}

func NewJWTManager(config *Config) *JWTManager {
	return &JWTManager{
		config: config,
		now:    time.Now,
	}
}

// TokenTTL время жизни выпускаемых токенов
func (m *JWTManager) TokenTTL() time.Duration {
	return m.config.TokenTTL
}

// GenerateToken создаёт JWT токен для API-клиента со временем истечения из конфигурации
func (m *JWTManager) GenerateToken(clientID, clientName string) (string, error) {
	now := m.now()
	claims := TokenClaims{
		ClientID:   clientID,
		ClientName: clientName,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   clientID,
			ExpiresAt: jwt.NewNumericDate(now.Add(m.config.TokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    m.config.TokenIssuer,
			Audience:  m.config.TokenAudiences,
		},
	}

	token := jwt.NewWithClaims(m.config.SigningMethod, claims)
	return token.SignedString([]byte(m.config.SigningKey))
}

// ParseToken проверяет валидность JWT токена и извлекает из него данные
func (m *JWTManager) ParseToken(tokenString string) (*TokenClaims, error) {
	options := []jwt.ParserOption{jwt.WithTimeFunc(m.now)}
	if len(m.config.TokenAudiences) > 0 {
		options = append(options, jwt.WithAudience(m.config.TokenAudiences[0]))
	}

	token, err := jwt.ParseWithClaims(tokenString, &TokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("неожиданный метод подписи: %v", token.Header["alg"])
		}
		return []byte(m.config.SigningKey), nil
	}, options...)

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*TokenClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, errors.New("недействительный токен")
}
