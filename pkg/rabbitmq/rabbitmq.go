package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// PartitionKeyHeader заголовок с ключом партиционирования (transactionId саги)
const PartitionKeyHeader = "x-partition-key"

// ErrPermanent помечает ошибку обработки, после которой сообщение не возвращается в очередь
var ErrPermanent = errors.New("сообщение не может быть обработано")

// Permanent оборачивает ошибку, чтобы сообщение ушло в dead-letter, а не в повторную обработку
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrPermanent, err)
}

// Config содержит настройки подключения к RabbitMQ
type Config struct {
	Host     string
	Port     string
	User     string
	Password string
	VHost    string
	Prefetch int
}

// RabbitMQ представляет клиент для работы с RabbitMQ
type RabbitMQ struct {
	config     Config
	mu         sync.Mutex
	connection *amqp.Connection
	channel    *amqp.Channel
	logger     *log.Logger
}

func NewRabbitMQ(cfg Config) (*RabbitMQ, error) {
	rmq := &RabbitMQ{
		config: cfg,
		logger: log.New(log.Writer(), "[RabbitMQ] ", log.LstdFlags),
	}

	if err := rmq.connect(); err != nil {
		return nil, err
	}

	return rmq, nil
}

// URL строка подключения к брокеру
func (c Config) URL() string {
	return fmt.Sprintf("amqp://%s:%s@%s:%s/%s", c.User, c.Password, c.Host, c.Port, c.VHost)
}

// connect устанавливает соединение с RabbitMQ
func (r *RabbitMQ) connect() error {
	conn, err := amqp.Dial(r.config.URL())
	if err != nil {
		return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to open channel: %w", err)
	}

	if r.config.Prefetch > 0 {
		if err := ch.Qos(r.config.Prefetch, 0, false); err != nil {
			ch.Close()
			conn.Close()
			return fmt.Errorf("failed to set prefetch: %w", err)
		}
	}

	r.connection = conn
	r.channel = ch
	return nil
}

// ensureChannel пытается восстановить соединение с RabbitMQ и возвращает рабочий канал
func (r *RabbitMQ) ensureChannel() (*amqp.Channel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.connection != nil && !r.connection.IsClosed() && r.channel != nil && !r.channel.IsClosed() {
		return r.channel, nil
	}

	r.logger.Println("Попытка переподключения к RabbitMQ...")
	if r.connection != nil && !r.connection.IsClosed() {
		r.connection.Close()
	}
	if err := r.connect(); err != nil {
		return nil, err
	}
	return r.channel, nil
}

// Close закрывает соединение с RabbitMQ
func (r *RabbitMQ) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.channel != nil && !r.channel.IsClosed() {
		if err := r.channel.Close(); err != nil {
			return fmt.Errorf("ошибка при закрытии канала: %w", err)
		}
	}
	if r.connection != nil && !r.connection.IsClosed() {
		if err := r.connection.Close(); err != nil {
			return fmt.Errorf("ошибка при закрытии соединения: %w", err)
		}
	}
	return nil
}

// DeclareExchange объявляет exchange
func (r *RabbitMQ) DeclareExchange(name string, kind string) error {
	ch, err := r.ensureChannel()
	if err != nil {
		return fmt.Errorf("ошибка переподключения перед объявлением exchange: %w", err)
	}

	return ch.ExchangeDeclare(
		name,  // name
		kind,  // type
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,   // arguments
	)
}

// DeclareQueue объявляет очередь
func (r *RabbitMQ) DeclareQueue(name string) error {
	ch, err := r.ensureChannel()
	if err != nil {
		return fmt.Errorf("ошибка переподключения перед объявлением очереди: %w", err)
	}

	_, err = ch.QueueDeclare(
		name,  // name
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	return err
}

// BindQueue привязывает очередь к exchange
func (r *RabbitMQ) BindQueue(queueName, exchangeName, routingKey string) error {
	ch, err := r.ensureChannel()
	if err != nil {
		return fmt.Errorf("ошибка переподключения перед привязкой очереди: %w", err)
	}

	return ch.QueueBind(
		queueName,    // queue name
		routingKey,   // routing key
		exchangeName, // exchange
		false,        // no-wait
		nil,          // arguments
	)
}

// PublishMessage публикует сообщение в RabbitMQ
func (r *RabbitMQ) PublishMessage(exchange, routingKey string, message interface{}) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return r.PublishWithKey(ctx, exchange, routingKey, "", message)
}

// PublishWithKey публикует сообщение с ключом партиционирования.
// Ключ передаётся в CorrelationId и заголовке x-partition-key.
func (r *RabbitMQ) PublishWithKey(ctx context.Context, exchange, routingKey, partitionKey string, message interface{}) error {
	ch, err := r.ensureChannel()
	if err != nil {
		return fmt.Errorf("ошибка переподключения перед публикацией сообщения: %w", err)
	}

	publishing, err := NewPublishing(partitionKey, message)
	if err != nil {
		return err
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
	}

	return ch.PublishWithContext(
		ctx,
		exchange,   // exchange
		routingKey, // routing key
		false,      // mandatory
		false,      // immediate
		publishing,
	)
}

// NewPublishing сериализует сообщение в JSON и заполняет свойства AMQP
func NewPublishing(partitionKey string, message interface{}) (amqp.Publishing, error) {
	body, err := json.Marshal(message)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("failed to marshal message: %w", err)
	}

	publishing := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
		Body:         body,
	}
	if partitionKey != "" {
		publishing.CorrelationId = partitionKey
		publishing.Headers = amqp.Table{PartitionKeyHeader: partitionKey}
	}
	return publishing, nil
}

// Retry выполняет fn до retries+1 раз с линейно растущей паузой
func Retry(retries int, step time.Duration, logger *log.Logger, fn func() error) error {
	var err error
	for i := 0; i <= retries; i++ {
		if err = fn(); err == nil {
			return nil
		}

		logger.Printf("Ошибка публикации сообщения (попытка %d/%d): %v", i+1, retries+1, err)

		if i < retries {
			backoff := time.Duration(i+1) * step
			logger.Printf("Повторная попытка через %v...", backoff)
			time.Sleep(backoff)
		}
	}

	return fmt.Errorf("не удалось опубликовать сообщение после %d попыток: %w", retries+1, err)
}

// ConsumeMessages начинает обработку сообщений из очереди с обработчиком
func (r *RabbitMQ) ConsumeMessages(queueName, consumerName string, handler func([]byte) error) error {
	ch, err := r.ensureChannel()
	if err != nil {
		return fmt.Errorf("ошибка переподключения перед обработкой сообщений: %w", err)
	}

	consumerName = fmt.Sprintf("%s-%d", consumerName, time.Now().UnixNano())

	msgs, err := ch.Consume(
		queueName,    // queue
		consumerName, // consumer
		false,        // auto-ack
		false,        // exclusive
		false,        // no-local
		false,        // no-wait
		nil,          // args
	)
	if err != nil {
		return fmt.Errorf("ошибка при начале обработки сообщений: %w", err)
	}

	go r.HandleMessages(msgs, handler)

	return nil
}

// Acknowledger подтверждение доставки, выделено для тестов
type Acknowledger interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

// HandleMessages обрабатывает сообщения последовательно, сохраняя порядок внутри очереди
func (r *RabbitMQ) HandleMessages(msgs <-chan amqp.Delivery, handler func([]byte) error) {
	for msg := range msgs {
		r.handleDelivery(msg, msg.Body, handler)
	}
}

func (r *RabbitMQ) handleDelivery(ack Acknowledger, body []byte, handler func([]byte) error) {
	err := handler(body)
	switch {
	case err == nil:
		ack.Ack(false)
	case errors.Is(err, ErrPermanent):
		r.logger.Printf("[ERROR] Сообщение отклонено без повторной обработки: %v", err)
		ack.Nack(false, false)
	default:
		r.logger.Printf("Error handling message: %v", err)
		ack.Nack(false, true) // Сообщение не обработано и возвращается в очередь
	}
}
