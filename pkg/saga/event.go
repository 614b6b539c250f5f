package saga

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Event конверт экземпляра саги, проходит через всех участников от начала до конца
type Event struct {
	ID            string    `json:"id"`
	TransactionID string    `json:"transactionId"`
	OrderID       string    `json:"orderId"`
	Payload       Order     `json:"payload"`
	Source        Source    `json:"source"`
	Status        Status    `json:"status"`
	EventHistory  []History `json:"eventHistory"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Order агрегат заказа
type Order struct {
	ID            string          `json:"id"`
	Products      []OrderProducts `json:"products"`
	CreatedAt     time.Time       `json:"createdAt"`
	TransactionID string          `json:"transactionId"`
	TotalAmount   float64         `json:"totalAmount"`
	TotalItems    int             `json:"totalItems"`
}

// OrderProducts строка заказа
type OrderProducts struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}

// Product товар из каталога
type Product struct {
	Code      string  `json:"code"`
	UnitValue float64 `json:"unitValue"`
}

// History запись журнала аудита саги
type History struct {
	Source    Source    `json:"source"`
	Status    Status    `json:"status"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

// Clock источник текущего времени, подменяется в тестах
type Clock func() time.Time

// NewTransactionID формирует идентификатор транзакции в формате <unix millis>_<uuid>
func NewTransactionID(now time.Time) string {
	return fmt.Sprintf("%d_%s", now.UnixMilli(), uuid.NewString())
}

// NewEvent создаёт событие для нового экземпляра саги
func NewEvent(order Order, now time.Time) Event {
	return Event{
		ID:            uuid.NewString(),
		TransactionID: order.TransactionID,
		OrderID:       order.ID,
		Payload:       order,
		CreatedAt:     now,
	}
}

// Validate проверяет наличие ключей корреляции
func (e Event) Validate() error {
	if e.OrderID == "" || e.TransactionID == "" {
		return &InvalidEventError{Reason: "orderId and transactionId must be informed"}
	}
	return nil
}

// WithOutcome фиксирует результат действия источника и добавляет запись в историю.
// Исходное событие не изменяется.
func (e Event) WithOutcome(source Source, status Status, message string, now time.Time) Event {
	e.Source = source
	e.Status = status
	return e.WithHistory(message, now)
}

// WithHistory добавляет запись в историю от имени текущего источника и статуса.
// Срез истории копируется, поэтому копии события не разделяют общий массив.
func (e Event) WithHistory(message string, now time.Time) Event {
	if n := len(e.EventHistory); n > 0 && now.Before(e.EventHistory[n-1].CreatedAt) {
		now = e.EventHistory[n-1].CreatedAt
	}

	history := make([]History, len(e.EventHistory), len(e.EventHistory)+1)
	copy(history, e.EventHistory)
	e.EventHistory = append(history, History{
		Source:    e.Source,
		Status:    e.Status,
		Message:   message,
		CreatedAt: now,
	})
	return e
}

// Clone возвращает глубокую копию события
func (e Event) Clone() Event {
	if e.EventHistory != nil {
		e.EventHistory = append([]History(nil), e.EventHistory...)
	}
	if e.Payload.Products != nil {
		e.Payload.Products = append([]OrderProducts(nil), e.Payload.Products...)
	}
	return e
}

// LastHistory последняя запись истории
func (e Event) LastHistory() (History, bool) {
	if len(e.EventHistory) == 0 {
		return History{}, false
	}
	return e.EventHistory[len(e.EventHistory)-1], true
}

// CalculateTotals считает сумму и количество товаров заказа
func (o Order) CalculateTotals() (float64, int) {
	var amount float64
	var items int
	for _, p := range o.Products {
		amount += float64(p.Quantity) * p.Product.UnitValue
		items += p.Quantity
	}
	return amount, items
}
