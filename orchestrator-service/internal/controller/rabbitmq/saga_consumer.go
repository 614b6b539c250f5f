package rabbitmq

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/director74/order_saga/orchestrator-service/internal/usecase"
	"github.com/director74/order_saga/pkg/messaging"
	"github.com/director74/order_saga/pkg/rabbitmq"
	"github.com/director74/order_saga/pkg/saga"
	"github.com/director74/order_saga/pkg/sagahandler"
)

// SagaConsumer обработчик топиков оркестратора
type SagaConsumer struct {
	orchestrator *usecase.SagaOrchestrator
	broker       messaging.MessageBroker
	exchange     string
	logger       *log.Logger
}

// NewSagaConsumer создает новый обработчик
func NewSagaConsumer(orchestrator *usecase.SagaOrchestrator, broker messaging.MessageBroker, exchange string, logger *log.Logger) *SagaConsumer {
	if logger == nil {
		logger = log.New(log.Writer(), "[OrchestratorConsumer] ", log.LstdFlags)
	}
	return &SagaConsumer{
		orchestrator: orchestrator,
		broker:       broker,
		exchange:     exchange,
		logger:       logger,
	}
}

// Setup объявляет очереди оркестратора и подписывается на них
func (c *SagaConsumer) Setup() error {
	handlers := map[saga.Topic]func(ctx context.Context, event saga.Event) error{
		saga.TopicStartSaga: func(ctx context.Context, event saga.Event) error {
			_, err := c.orchestrator.StartSaga(ctx, event)
			return routingError(err)
		},
		saga.TopicOrchestrator: func(ctx context.Context, event saga.Event) error {
			_, err := c.orchestrator.ContinueSaga(ctx, event)
			return routingError(err)
		},
		saga.TopicFinishSuccess: func(ctx context.Context, event saga.Event) error {
			c.orchestrator.FinishSagaSuccess(ctx, event)
			return nil
		},
		saga.TopicFinishFail: func(ctx context.Context, event saga.Event) error {
			c.orchestrator.FinishSagaFail(ctx, event)
			return nil
		},
	}

	topics := make([]saga.Topic, 0, len(handlers))
	for topic := range handlers {
		topics = append(topics, topic)
	}

	err := messaging.SetupExchangesAndQueues(c.broker,
		map[string]string{c.exchange: "topic"},
		messaging.SagaQueues(c.exchange, topics...),
	)
	if err != nil {
		c.logger.Printf("[ERROR] Ошибка при настройке очередей оркестратора: %v", err)
		return err
	}

	for topic, handle := range handlers {
		queueName := messaging.QueueName(topic)
		consumerName := fmt.Sprintf("orchestrator-%s", topic)
		if err := c.broker.ConsumeMessages(queueName, consumerName, sagahandler.EventHandler(c.logger, topic, handle)); err != nil {
			c.logger.Printf("[ERROR] Ошибка при настройке обработчика сообщений для %s: %v", queueName, err)
			return fmt.Errorf("ошибка при настройке обработчика сообщений для %s: %w", queueName, err)
		}
	}

	c.logger.Printf("Оркестратор подписан на топики %v", topics)
	return nil
}

// routingError помечает ошибки маршрутизации как необрабатываемые:
// повторная доставка такого сообщения даст тот же результат
func routingError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, saga.ErrInvalidEvent) || errors.Is(err, saga.ErrRouteNotFound) {
		return rabbitmq.Permanent(err)
	}
	return err
}
