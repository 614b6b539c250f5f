package rabbitmq

import (
	"context"
	"errors"
	"log"

	"github.com/director74/order_saga/order-service/internal/usecase"
	"github.com/director74/order_saga/pkg/messaging"
	"github.com/director74/order_saga/pkg/rabbitmq"
	"github.com/director74/order_saga/pkg/saga"
	"github.com/director74/order_saga/pkg/sagahandler"
)

// NotifyConsumer обработчик итоговых событий саги из топика notify-ending
type NotifyConsumer struct {
	orderUseCase *usecase.OrderUseCase
	broker       messaging.MessageBroker
	exchange     string
	logger       *log.Logger
}

func NewNotifyConsumer(orderUseCase *usecase.OrderUseCase, broker messaging.MessageBroker, exchange string, logger *log.Logger) *NotifyConsumer {
	if logger == nil {
		logger = log.New(log.Writer(), "[OrderService] [Saga] ", log.LstdFlags)
	}
	return &NotifyConsumer{
		orderUseCase: orderUseCase,
		broker:       broker,
		exchange:     exchange,
		logger:       logger,
	}
}

// Setup объявляет очередь notify-ending и подписывается на неё
func (c *NotifyConsumer) Setup() error {
	err := messaging.SetupExchangesAndQueues(c.broker,
		map[string]string{c.exchange: "topic"},
		messaging.SagaQueues(c.exchange, saga.TopicNotifyEnding),
	)
	if err != nil {
		c.logger.Printf("[ERROR] Ошибка при настройке очередей: %v", err)
		return err
	}

	queueName := messaging.QueueName(saga.TopicNotifyEnding)
	handler := sagahandler.EventHandler(c.logger, saga.TopicNotifyEnding, c.handleNotifyEnding)
	if err := c.broker.ConsumeMessages(queueName, "order-service-notify-ending", handler); err != nil {
		c.logger.Printf("[ERROR] Ошибка при настройке обработчика сообщений для %s: %v", queueName, err)
		return err
	}

	c.logger.Printf("Подписка на топик %s настроена", saga.TopicNotifyEnding)
	return nil
}

func (c *NotifyConsumer) handleNotifyEnding(ctx context.Context, event saga.Event) error {
	err := c.orderUseCase.NotifyEnding(ctx, event)
	if errors.Is(err, saga.ErrInvalidEvent) {
		return rabbitmq.Permanent(err)
	}
	return err
}
