package usecase

import (
	"context"

	"github.com/director74/order_saga/order-service/internal/entity"
	"github.com/director74/order_saga/pkg/saga"
)

// OrderRepository хранилище заказов и событий саги
type OrderRepository interface {
	CreateWithEvent(ctx context.Context, order *entity.Order, event *entity.Event) error
	GetByID(ctx context.Context, id string) (*entity.Order, error)
	UpdateStatus(ctx context.Context, id string, status entity.OrderStatus) error
	SaveEvent(ctx context.Context, event *entity.Event) error
	FindAllEvents(ctx context.Context) ([]entity.Event, error)
	FindLatestEventByOrderID(ctx context.Context, orderID string) (*entity.Event, error)
	FindLatestEventByTransactionID(ctx context.Context, transactionID string) (*entity.Event, error)
}

// ClientRepository хранилище API клиентов
type ClientRepository interface {
	Create(ctx context.Context, client *entity.Client) error
	GetByID(ctx context.Context, id string) (*entity.Client, error)
}

// EventPublisher публикует событие саги в топик
type EventPublisher interface {
	Publish(ctx context.Context, topic saga.Topic, event saga.Event) error
}
