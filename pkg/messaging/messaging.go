package messaging

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/director74/order_saga/pkg/config"
	"github.com/director74/order_saga/pkg/rabbitmq"
	"github.com/director74/order_saga/pkg/saga"
)

// MessagePublisher интерфейс для публикации сообщений
type MessagePublisher interface {
	PublishMessage(exchange, routingKey string, message interface{}) error
	PublishWithKey(ctx context.Context, exchange, routingKey, partitionKey string, message interface{}) error
}

// MessageConsumer интерфейс для получения сообщений
type MessageConsumer interface {
	DeclareQueue(name string) error
	BindQueue(queueName, exchangeName, routingKey string) error
	ConsumeMessages(queueName, consumerName string, handler func([]byte) error) error
}

// MessageBroker объединяет функциональность публикации и обработки сообщений
type MessageBroker interface {
	MessagePublisher
	MessageConsumer
	DeclareExchange(name string, kind string) error
	Close() error
}

// InitRabbitMQ инициализирует подключение к RabbitMQ с общими параметрами
func InitRabbitMQ(cfg config.RabbitMQConfig) (*rabbitmq.RabbitMQ, error) {
	return rabbitmq.NewRabbitMQ(rabbitmq.Config{
		Host:     cfg.Host,
		Port:     cfg.Port,
		User:     cfg.User,
		Password: cfg.Password,
		VHost:    cfg.VHost,
		Prefetch: cfg.Prefetch,
	})
}

// EventPublisher публикует события саги в топик с ключом партиционирования transactionId
type EventPublisher struct {
	publisher MessagePublisher
	exchange  string
	retries   int
	logger    *log.Logger
}

// NewEventPublisher создает публикатор событий саги
func NewEventPublisher(publisher MessagePublisher, exchange string, retries int, logger *log.Logger) *EventPublisher {
	if logger == nil {
		logger = log.New(log.Writer(), "[EventPublisher] ", log.LstdFlags)
	}
	return &EventPublisher{
		publisher: publisher,
		exchange:  exchange,
		retries:   retries,
		logger:    logger,
	}
}

// Publish отправляет событие в топик. Ошибка возвращается вызывающему,
// который решает, логировать ли её.
func (p *EventPublisher) Publish(ctx context.Context, topic saga.Topic, event saga.Event) error {
	err := rabbitmq.Retry(p.retries, 500*time.Millisecond, p.logger, func() error {
		return p.publisher.PublishWithKey(ctx, p.exchange, string(topic), event.TransactionID, event)
	})
	if err != nil {
		p.logger.Printf("[ERROR] SagaID=%s: Ошибка при публикации события в топик %s: %v", event.TransactionID, topic, err)
		return err
	}

	p.logger.Printf("SagaID=%s: Событие опубликовано в топик %s (source=%s, status=%s)",
		event.TransactionID, topic, event.Source, event.Status)
	return nil
}

// QueueName имя очереди для топика саги
func QueueName(topic saga.Topic) string {
	return fmt.Sprintf("saga.%s", topic)
}

// SagaQueues формирует привязки очередей к топикам для SetupExchangesAndQueues
func SagaQueues(exchange string, topics ...saga.Topic) map[string]map[string]string {
	queues := make(map[string]map[string]string, len(topics))
	for _, topic := range topics {
		queues[QueueName(topic)] = map[string]string{exchange: string(topic)}
	}
	return queues
}

// SetupExchangesAndQueues настраивает exchanges и очереди для сервиса
func SetupExchangesAndQueues(broker MessageBroker, exchanges map[string]string, queues map[string]map[string]string) error {
	for name, kind := range exchanges {
		if err := broker.DeclareExchange(name, kind); err != nil {
			return fmt.Errorf("ошибка при объявлении exchange %s: %w", name, err)
		}
	}

	for queueName, bindings := range queues {
		if err := broker.DeclareQueue(queueName); err != nil {
			return fmt.Errorf("ошибка при объявлении очереди %s: %w", queueName, err)
		}

		for exchangeName, routingKey := range bindings {
			if err := broker.BindQueue(queueName, exchangeName, routingKey); err != nil {
				return fmt.Errorf("ошибка при привязке очереди %s к ключу %s: %w", queueName, routingKey, err)
			}
		}
	}

	return nil
}
