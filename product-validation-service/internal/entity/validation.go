package entity

import "time"

// Product товар каталога, который можно заказать
type Product struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Code      string    `json:"code" gorm:"not null;uniqueIndex"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Validation результат проверки товаров заказа в рамках саги.
// Пара (order_id, transaction_id) уникальна: шаг выполняется один раз.
type Validation struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	OrderID       string    `json:"orderId" gorm:"not null;uniqueIndex:idx_validation_order_tx"`
	TransactionID string    `json:"transactionId" gorm:"not null;uniqueIndex:idx_validation_order_tx"`
	Success       bool      `json:"success" gorm:"not null"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// CreateProductRequest запрос на добавление товара в каталог
type CreateProductRequest struct {
	Code string `json:"code" binding:"required"`
}
