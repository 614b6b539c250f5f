package entity

import (
	"time"

	"github.com/director74/order_saga/pkg/saga"
	"gorm.io/datatypes"
)

// Event сохранённое состояние саги. Заказ и история хранятся в JSON колонках.
type Event struct {
	ID            string                            `json:"id" gorm:"primaryKey"`
	TransactionID string                            `json:"transactionId" gorm:"not null;index"`
	OrderID       string                            `json:"orderId" gorm:"not null;index"`
	Payload       datatypes.JSONType[saga.Order]    `json:"payload" gorm:"type:jsonb"`
	Source        saga.Source                       `json:"source"`
	Status        saga.Status                       `json:"status"`
	EventHistory  datatypes.JSONSlice[saga.History] `json:"eventHistory" gorm:"type:jsonb"`
	CreatedAt     time.Time                         `json:"createdAt" gorm:"index"`
}

// NewEventRecord готовит событие саги к сохранению
func NewEventRecord(event saga.Event) *Event {
	return &Event{
		ID:            event.ID,
		TransactionID: event.TransactionID,
		OrderID:       event.OrderID,
		Payload:       datatypes.NewJSONType(event.Payload),
		Source:        event.Source,
		Status:        event.Status,
		EventHistory:  datatypes.NewJSONSlice(event.EventHistory),
		CreatedAt:     event.CreatedAt,
	}
}

// ToSaga восстанавливает событие саги
func (e Event) ToSaga() saga.Event {
	return saga.Event{
		ID:            e.ID,
		TransactionID: e.TransactionID,
		OrderID:       e.OrderID,
		Payload:       e.Payload.Data(),
		Source:        e.Source,
		Status:        e.Status,
		EventHistory:  append([]saga.History(nil), e.EventHistory...),
		CreatedAt:     e.CreatedAt,
	}
}

// EventFilters параметры поиска события
type EventFilters struct {
	OrderID       string `form:"orderId"`
	TransactionID string `form:"transactionId"`
}
