package rabbitmq

import (
	"log"

	"github.com/director74/order_saga/payment-service/internal/usecase"
	"github.com/director74/order_saga/pkg/messaging"
	"github.com/director74/order_saga/pkg/metrics"
	"github.com/director74/order_saga/pkg/sagahandler"
)

// SagaConsumer обработчик сообщений саги для платежей
type SagaConsumer struct {
	sagahandler.BaseSagaConsumer
}

// NewSagaConsumer создает новый обработчик сообщений саги для платежей
func NewSagaConsumer(paymentUseCase *usecase.PaymentUseCase, broker messaging.MessageBroker, publisher sagahandler.EventPublisher, exchange string) *SagaConsumer {
	logger := log.New(log.Writer(), "[PaymentService] [Saga] ", log.LstdFlags)
	return &SagaConsumer{
		BaseSagaConsumer: *sagahandler.NewBaseSagaConsumer(broker, exchange,
			sagahandler.NewExecutor(paymentUseCase, publisher, logger, metrics.Saga()), logger),
	}
}

// Setup настраивает обработчик событий саги
func (c *SagaConsumer) Setup() error {
	return c.SetupQueues()
}
