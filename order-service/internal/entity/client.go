package entity

import (
	"time"
)

// Client API клиент, которому выдаются токены доступа
type Client struct {
	ID         string    `json:"clientId" gorm:"primaryKey"`
	Name       string    `json:"clientName" gorm:"size:100;not null;uniqueIndex"`
	SecretHash string    `json:"-" gorm:"size:100;not null"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// RegisterClientRequest запрос на регистрацию клиента
type RegisterClientRequest struct {
	Name string `json:"clientName" binding:"required,min=3,max=100"`
}

// RegisterClientResponse ответ на регистрацию клиента. Секрет возвращается только один раз.
type RegisterClientResponse struct {
	ClientID     string    `json:"clientId"`
	ClientName   string    `json:"clientName"`
	ClientSecret string    `json:"clientSecret"`
	CreatedAt    time.Time `json:"createdAt"`
}

// TokenRequest запрос на выдачу токена
type TokenRequest struct {
	ClientID     string `json:"clientId" binding:"required"`
	ClientSecret string `json:"clientSecret" binding:"required"`
}

// TokenResponse выданный токен доступа
type TokenResponse struct {
	AccessToken string `json:"accessToken"`
	TokenType   string `json:"tokenType"`
	ExpiresIn   int64  `json:"expiresIn"`
}
