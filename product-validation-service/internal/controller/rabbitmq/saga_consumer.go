package rabbitmq

import (
	"log"

	"github.com/director74/order_saga/pkg/messaging"
	"github.com/director74/order_saga/pkg/metrics"
	"github.com/director74/order_saga/pkg/sagahandler"
	"github.com/director74/order_saga/product-validation-service/internal/usecase"
)

// SagaConsumer обработчик сообщений саги для проверки товаров
type SagaConsumer struct {
	sagahandler.BaseSagaConsumer
}

// NewSagaConsumer создает новый обработчик сообщений саги для проверки товаров
func NewSagaConsumer(useCase *usecase.ValidationUseCase, broker messaging.MessageBroker, publisher sagahandler.EventPublisher, exchange string) *SagaConsumer {
	logger := log.New(log.Writer(), "[ProductValidationService] [Saga] ", log.LstdFlags)
	return &SagaConsumer{
		BaseSagaConsumer: *sagahandler.NewBaseSagaConsumer(broker, exchange,
			sagahandler.NewExecutor(useCase, publisher, logger, metrics.Saga()), logger),
	}
}

// Setup настраивает обработчик событий саги
func (c *SagaConsumer) Setup() error {
	return c.SetupQueues()
}
