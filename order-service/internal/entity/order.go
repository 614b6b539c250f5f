package entity

import (
	"time"

	"github.com/director74/order_saga/pkg/saga"
	"gorm.io/datatypes"
)

// OrderStatus статус заказа
type OrderStatus string

const (
	OrderStatusPending OrderStatus = "PENDING"
	OrderStatusSuccess OrderStatus = "SUCCESS"
	OrderStatusFail    OrderStatus = "FAIL"
)

// OrderStatusFromSaga переводит итоговый статус саги в статус заказа
func OrderStatusFromSaga(status saga.Status) OrderStatus {
	if status == saga.StatusSuccess {
		return OrderStatusSuccess
	}
	return OrderStatusFail
}

// Order заказ клиента и его текущий статус
type Order struct {
	ID            string                                  `json:"id" gorm:"primaryKey"`
	ClientID      string                                  `json:"clientId" gorm:"index"`
	TransactionID string                                  `json:"transactionId" gorm:"not null;uniqueIndex"`
	Products      datatypes.JSONSlice[saga.OrderProducts] `json:"products" gorm:"type:jsonb;not null"`
	TotalAmount   float64                                 `json:"totalAmount" gorm:"type:decimal(12,2)"`
	TotalItems    int                                     `json:"totalItems"`
	Status        OrderStatus                             `json:"status" gorm:"not null;default:'PENDING'"`
	CreatedAt     time.Time                               `json:"createdAt"`
	UpdatedAt     time.Time                               `json:"updatedAt"`
}

// ToSaga возвращает агрегат заказа для события саги
func (o Order) ToSaga() saga.Order {
	return saga.Order{
		ID:            o.ID,
		Products:      append([]saga.OrderProducts(nil), o.Products...),
		CreatedAt:     o.CreatedAt,
		TransactionID: o.TransactionID,
		TotalAmount:   o.TotalAmount,
		TotalItems:    o.TotalItems,
	}
}

// CreateOrderRequest запрос на создание заказа
type CreateOrderRequest struct {
	Products []saga.OrderProducts `json:"products" binding:"required"`
}
