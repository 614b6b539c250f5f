package entity

import (
	"time"
)

// PaymentStatus статус платежа
type PaymentStatus string

// Константы для статусов платежа
const (
	PaymentStatusPending PaymentStatus = "PENDING"
	PaymentStatusSuccess PaymentStatus = "SUCCESS"
	PaymentStatusRefund  PaymentStatus = "REFUND"
)

// Payment платеж по заказу в рамках саги.
// PreviousStatus и Status хранят значения до и после последнего изменения.
type Payment struct {
	ID             uint          `json:"id" gorm:"primaryKey"`
	OrderID        string        `json:"orderId" gorm:"not null;uniqueIndex:idx_payment_order_tx"`
	TransactionID  string        `json:"transactionId" gorm:"not null;uniqueIndex:idx_payment_order_tx"`
	TotalAmount    float64       `json:"totalAmount" gorm:"type:decimal(12,2);not null"`
	TotalItems     int           `json:"totalItems" gorm:"not null"`
	Status         PaymentStatus `json:"status" gorm:"not null;default:PENDING"`
	PreviousStatus PaymentStatus `json:"previousStatus"`
	CreatedAt      time.Time     `json:"createdAt"`
	UpdatedAt      time.Time     `json:"updatedAt"`
}

// PaymentFilter параметры поиска платежей
type PaymentFilter struct {
	OrderID       string `form:"orderId"`
	TransactionID string `form:"transactionId"`
}
