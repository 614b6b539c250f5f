package rabbitmq

import (
	"log"

	"github.com/director74/order_saga/inventory-service/internal/usecase"
	"github.com/director74/order_saga/pkg/messaging"
	"github.com/director74/order_saga/pkg/metrics"
	"github.com/director74/order_saga/pkg/sagahandler"
)

// SagaConsumer обработчик сообщений саги для склада
type SagaConsumer struct {
	sagahandler.BaseSagaConsumer
}

// NewSagaConsumer создает новый обработчик сообщений саги для склада
func NewSagaConsumer(inventoryUseCase *usecase.InventoryUseCase, broker messaging.MessageBroker, publisher sagahandler.EventPublisher, exchange string) *SagaConsumer {
	logger := log.New(log.Writer(), "[InventoryService] [Saga] ", log.LstdFlags)
	executor := sagahandler.NewExecutor(inventoryUseCase, publisher, logger, metrics.Saga())
	return &SagaConsumer{
		BaseSagaConsumer: *sagahandler.NewBaseSagaConsumer(broker, exchange, executor, logger),
	}
}

// Setup настраивает очереди inventory-success и inventory-fail
func (c *SagaConsumer) Setup() error {
	return c.SetupQueues()
}
