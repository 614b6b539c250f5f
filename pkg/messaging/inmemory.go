package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// PublishedMessage сообщение, прошедшее через InMemoryBroker
type PublishedMessage struct {
	Exchange     string
	RoutingKey   string
	PartitionKey string
	Body         []byte
}

type inMemoryDelivery struct {
	queue string
	body  []byte
}

// InMemoryBroker брокер в памяти с точным совпадением ключей маршрутизации.
// Доставляет сообщения только при вызове Drain, в порядке публикации.
type InMemoryBroker struct {
	mu        sync.Mutex
	bindings  map[string]map[string][]string
	handlers  map[string]func([]byte) error
	pending   []inMemoryDelivery
	published []PublishedMessage
	failures  []error
}

// NewInMemoryBroker создает брокер в памяти
func NewInMemoryBroker() *InMemoryBroker {
	return &InMemoryBroker{
		bindings: make(map[string]map[string][]string),
		handlers: make(map[string]func([]byte) error),
	}
}

func (b *InMemoryBroker) DeclareExchange(name string, kind string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.bindings[name]; !ok {
		b.bindings[name] = make(map[string][]string)
	}
	return nil
}

func (b *InMemoryBroker) DeclareQueue(name string) error {
	return nil
}

func (b *InMemoryBroker) BindQueue(queueName, exchangeName, routingKey string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.bindings[exchangeName]; !ok {
		return fmt.Errorf("exchange %s не объявлен", exchangeName)
	}
	b.bindings[exchangeName][routingKey] = append(b.bindings[exchangeName][routingKey], queueName)
	return nil
}

func (b *InMemoryBroker) ConsumeMessages(queueName, consumerName string, handler func([]byte) error) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[queueName] = handler
	return nil
}

func (b *InMemoryBroker) PublishMessage(exchange, routingKey string, message interface{}) error {
	return b.PublishWithKey(context.Background(), exchange, routingKey, "", message)
}

func (b *InMemoryBroker) PublishWithKey(ctx context.Context, exchange, routingKey, partitionKey string, message interface{}) error {
	body, err := json.Marshal(message)
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.published = append(b.published, PublishedMessage{
		Exchange:     exchange,
		RoutingKey:   routingKey,
		PartitionKey: partitionKey,
		Body:         body,
	})
	for _, queue := range b.bindings[exchange][routingKey] {
		b.pending = append(b.pending, inMemoryDelivery{queue: queue, body: body})
	}
	return nil
}

func (b *InMemoryBroker) Close() error {
	return nil
}

// Drain доставляет накопленные сообщения, пока очередь не опустеет или не будет
// достигнут лимит шагов. Возвращает количество доставок.
func (b *InMemoryBroker) Drain(maxSteps int) int {
	delivered := 0
	for delivered < maxSteps {
		b.mu.Lock()
		if len(b.pending) == 0 {
			b.mu.Unlock()
			break
		}
		next := b.pending[0]
		b.pending = b.pending[1:]
		handler := b.handlers[next.queue]
		b.mu.Unlock()

		delivered++
		if handler == nil {
			continue
		}
		if err := handler(next.body); err != nil {
			b.mu.Lock()
			b.failures = append(b.failures, err)
			b.mu.Unlock()
		}
	}
	return delivered
}

// Published возвращает копию всех опубликованных сообщений
func (b *InMemoryBroker) Published() []PublishedMessage {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]PublishedMessage(nil), b.published...)
}

// Failures ошибки, которые вернули обработчики
func (b *InMemoryBroker) Failures() []error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]error(nil), b.failures...)
}
