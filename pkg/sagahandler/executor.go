package sagahandler

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/director74/order_saga/pkg/metrics"
	"github.com/director74/order_saga/pkg/saga"
)

// Participant локальная транзакция одного участника саги.
//
// Execute выполняет проверку, изменение и запись снимков old/new в одной транзакции БД
// и возвращает событие, которое нужно опубликовать, в том числе вместе с ошибкой.
// Compensate восстанавливает охраняемые значения из снимков.
type Participant interface {
	Source() saga.Source
	Name() string
	Exists(ctx context.Context, orderID, transactionID string) (bool, error)
	Execute(ctx context.Context, event saga.Event) (saga.Event, error)
	Compensate(ctx context.Context, event saga.Event) (saga.Event, error)
}

// EventPublisher публикует событие саги в топик
type EventPublisher interface {
	Publish(ctx context.Context, topic saga.Topic, event saga.Event) error
}

// Executor реализует протокол участника: идемпотентное выполнение и компенсацию
// по снимкам. Любая ошибка превращается в статус события, событие публикуется всегда.
type Executor struct {
	participant Participant
	publisher   EventPublisher
	logger      *log.Logger
	clock       saga.Clock
	metrics     *metrics.SagaMetrics
}

// NewExecutor создает исполнителя для участника
func NewExecutor(participant Participant, publisher EventPublisher, logger *log.Logger, m *metrics.SagaMetrics) *Executor {
	if logger == nil {
		logger = log.New(os.Stdout, fmt.Sprintf("[%s] [Saga] ", participant.Source()), log.LstdFlags)
	}
	return &Executor{
		participant: participant,
		publisher:   publisher,
		logger:      logger,
		clock:       time.Now,
		metrics:     m,
	}
}

// WithClock подменяет источник времени для записей истории
func (e *Executor) WithClock(clock saga.Clock) *Executor {
	e.clock = clock
	return e
}

// Participant участник, которого обслуживает исполнитель
func (e *Executor) Participant() Participant {
	return e.participant
}

// HandleExecute выполняет шаг участника и публикует результат оркестратору
func (e *Executor) HandleExecute(ctx context.Context, event saga.Event) saga.Event {
	source := e.participant.Source()
	name := e.participant.Name()

	e.logger.Printf("SagaID=%s: Получено событие на выполнение шага %s (orderId=%s)",
		event.TransactionID, source, event.OrderID)

	result, err := e.execute(ctx, event)
	if err != nil {
		e.logger.Printf("[ERROR] SagaID=%s: Шаг %s завершился ошибкой: %v", event.TransactionID, source, err)
		result = result.WithOutcome(source, saga.StatusRollbackPending, fmt.Sprintf("%s failed: %v", name, err), e.clock())
		e.metrics.Participant(string(source), "execute", "failed")
	} else {
		result = result.WithOutcome(source, saga.StatusSuccess, name+" completed successfully", e.clock())
		e.metrics.Participant(string(source), "execute", "success")
	}

	e.publish(ctx, result)
	return result
}

func (e *Executor) execute(ctx context.Context, event saga.Event) (saga.Event, error) {
	if err := event.Validate(); err != nil {
		return event, err
	}

	exists, err := e.participant.Exists(ctx, event.OrderID, event.TransactionID)
	if err != nil {
		return event, fmt.Errorf("idempotency check: %w", err)
	}
	if exists {
		return event, saga.ErrDuplicateExecution
	}

	result, err := e.participant.Execute(ctx, event.Clone())
	if result.TransactionID == "" {
		result = event
	}
	return result, err
}

// HandleCompensate откатывает шаг участника. Ошибка компенсации записывается в историю
// и не прерывает сагу.
func (e *Executor) HandleCompensate(ctx context.Context, event saga.Event) saga.Event {
	source := e.participant.Source()
	name := e.participant.Name()

	e.logger.Printf("SagaID=%s: Получено событие на компенсацию шага %s (orderId=%s)",
		event.TransactionID, source, event.OrderID)

	event.Source = source
	event.Status = saga.StatusFail

	result, err := e.compensate(ctx, event)
	if err != nil {
		e.logger.Printf("[ERROR] SagaID=%s: Компенсация шага %s не выполнена: %v", event.TransactionID, source, err)
		result = result.WithOutcome(source, saga.StatusFail, fmt.Sprintf("%s rollback failed: %v", name, err), e.clock())
		e.metrics.Participant(string(source), "compensate", "failed")
	} else {
		result = result.WithOutcome(source, saga.StatusFail, name+" rollback", e.clock())
		e.metrics.Participant(string(source), "compensate", "success")
	}

	e.publish(ctx, result)
	return result
}

func (e *Executor) compensate(ctx context.Context, event saga.Event) (saga.Event, error) {
	if err := event.Validate(); err != nil {
		return event, err
	}

	result, err := e.participant.Compensate(ctx, event.Clone())
	if result.TransactionID == "" {
		result = event
	}
	return result, err
}

// publish отправляет событие оркестратору. Ошибка публикации только логируется.
func (e *Executor) publish(ctx context.Context, event saga.Event) {
	if err := e.publisher.Publish(ctx, saga.TopicOrchestrator, event); err != nil {
		e.logger.Printf("[ERROR] SagaID=%s: Не удалось отправить результат шага %s оркестратору: %v",
			event.TransactionID, e.participant.Source(), err)
		e.metrics.PublishError(string(saga.TopicOrchestrator))
	}
}
