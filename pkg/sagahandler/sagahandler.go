package sagahandler

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/director74/order_saga/pkg/messaging"
	"github.com/director74/order_saga/pkg/rabbitmq"
	"github.com/director74/order_saga/pkg/saga"
)

// ParseEvent десериализует событие саги из тела сообщения
func ParseEvent(data []byte) (saga.Event, error) {
	var event saga.Event
	if err := json.Unmarshal(data, &event); err != nil {
		return saga.Event{}, fmt.Errorf("ошибка десериализации события саги: %w", err)
	}
	return event, nil
}

// EventHandler превращает обработчик события в обработчик сообщения RabbitMQ.
// Сообщение, которое не удалось разобрать, отклоняется без возврата в очередь.
func EventHandler(logger *log.Logger, topic saga.Topic, handle func(ctx context.Context, event saga.Event) error) func([]byte) error {
	return func(data []byte) error {
		event, err := ParseEvent(data)
		if err != nil {
			logger.Printf("[ERROR] Топик %s: %v", topic, err)
			return rabbitmq.Permanent(err)
		}

		logger.Printf("SagaID=%s: Получено событие из топика %s", event.TransactionID, topic)
		return handle(context.Background(), event)
	}
}

// BaseSagaConsumer базовый обработчик сообщений саги для участника
type BaseSagaConsumer struct {
	Broker   messaging.MessageBroker
	Logger   *log.Logger
	Exchange string
	Executor *Executor
}

// NewBaseSagaConsumer создает обработчик топиков выполнения и компенсации участника
func NewBaseSagaConsumer(broker messaging.MessageBroker, exchange string, executor *Executor, logger *log.Logger) *BaseSagaConsumer {
	return &BaseSagaConsumer{
		Broker:   broker,
		Logger:   logger,
		Exchange: exchange,
		Executor: executor,
	}
}

// SetupQueues настраивает очереди и обмены для обработки саги
func (b *BaseSagaConsumer) SetupQueues() error {
	source := b.Executor.Participant().Source()

	executeTopic, ok := saga.ExecuteTopic(source)
	if !ok {
		return fmt.Errorf("для источника %s не объявлены топики саги", source)
	}
	compensateTopic, _ := saga.CompensateTopic(source)

	// Объявляем exchange, очереди и привязки к ключам маршрутизации
	err := messaging.SetupExchangesAndQueues(b.Broker,
		map[string]string{b.Exchange: "topic"},
		messaging.SagaQueues(b.Exchange, executeTopic, compensateTopic),
	)
	if err != nil {
		return fmt.Errorf("ошибка при настройке очередей саги: %w", err)
	}

	handleExecute := EventHandler(b.Logger, executeTopic, func(ctx context.Context, event saga.Event) error {
		b.Executor.HandleExecute(ctx, event)
		return nil
	})
	consumerExecuteName := fmt.Sprintf("%s-execute-%d", source, time.Now().UnixNano())
	if err := b.Broker.ConsumeMessages(messaging.QueueName(executeTopic), consumerExecuteName, handleExecute); err != nil {
		return fmt.Errorf("ошибка при настройке обработчика сообщений для выполнения: %w", err)
	}

	handleCompensate := EventHandler(b.Logger, compensateTopic, func(ctx context.Context, event saga.Event) error {
		b.Executor.HandleCompensate(ctx, event)
		return nil
	})
	consumerCompensateName := fmt.Sprintf("%s-compensate-%d", source, time.Now().UnixNano())
	if err := b.Broker.ConsumeMessages(messaging.QueueName(compensateTopic), consumerCompensateName, handleCompensate); err != nil {
		return fmt.Errorf("ошибка при настройке обработчика сообщений для компенсации: %w", err)
	}

	b.Logger.Printf("Настроена обработка сообщений саги для участника %s (%s, %s)", source, executeTopic, compensateTopic)
	return nil
}
