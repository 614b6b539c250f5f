package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/director74/order_saga/pkg/metrics"
	"github.com/director74/order_saga/pkg/saga"
)

// EventPublisher публикует событие саги в топик
type EventPublisher interface {
	Publish(ctx context.Context, topic saga.Topic, event saga.Event) error
}

// RouteResolver определяет следующий топик по (source, status) события
type RouteResolver interface {
	Resolve(event saga.Event) (saga.Route, error)
}

// SagaOrchestrator управляет ходом саги. Состояния не хранит: всё нужное
// для маршрутизации содержится в самом событии.
type SagaOrchestrator struct {
	router    RouteResolver
	publisher EventPublisher
	logger    *log.Logger
	clock     saga.Clock
	metrics   *metrics.SagaMetrics
}

// NewSagaOrchestrator создает новый оркестратор саги
func NewSagaOrchestrator(router RouteResolver, publisher EventPublisher, logger *log.Logger, m *metrics.SagaMetrics) *SagaOrchestrator {
	if logger == nil {
		logger = log.New(log.Writer(), "[Orchestrator] [Saga] ", log.LstdFlags)
	}
	return &SagaOrchestrator{
		router:    router,
		publisher: publisher,
		logger:    logger,
		clock:     time.Now,
		metrics:   m,
	}
}

// WithClock подменяет источник времени
func (o *SagaOrchestrator) WithClock(clock saga.Clock) *SagaOrchestrator {
	o.clock = clock
	return o
}

// StartSaga запускает новый экземпляр саги
func (o *SagaOrchestrator) StartSaga(ctx context.Context, event saga.Event) (saga.Event, error) {
	if err := event.Validate(); err != nil {
		o.logger.Printf("[ERROR] Невозможно запустить сагу для заказа %q: %v", event.OrderID, err)
		o.metrics.RoutingError("invalid_event")
		return event, err
	}

	o.logger.Printf("SagaID=%s: Запуск саги для заказа %s", event.TransactionID, event.OrderID)

	event = event.WithOutcome(saga.SourceOrchestrator, saga.StatusSuccess, "saga started", o.clock())

	route, err := o.router.Resolve(event)
	if err != nil {
		return event, fmt.Errorf("не удалось определить первый шаг саги: %w", err)
	}

	o.publish(ctx, route, event)
	return event, nil
}

// ContinueSaga передает событие следующему участнику по таблице маршрутов.
// Событие публикуется без изменений.
func (o *SagaOrchestrator) ContinueSaga(ctx context.Context, event saga.Event) (saga.Event, error) {
	route, err := o.router.Resolve(event)
	if err != nil {
		var invalid *saga.InvalidEventError
		var notFound *saga.RouteNotFoundError
		switch {
		case errors.As(err, &invalid):
			o.metrics.RoutingError("invalid_event")
			if vErr := event.Validate(); vErr != nil {
				o.logger.Printf("[ERROR] Событие без ключей корреляции отброшено: %v", vErr)
				return event, vErr
			}
			o.logger.Printf("[WARN] SagaID=%s: Некорректное событие (%v), сага завершается с ошибкой",
				event.TransactionID, err)
			return o.finish(ctx, event, saga.StatusFail, "saga finished with errors: "+invalid.Reason), nil
		case errors.As(err, &notFound):
			o.metrics.RoutingError("route_not_found")
			o.logger.Printf("[ALERT] SagaID=%s: Маршрут не найден для source=%s status=%s, сага остановлена",
				event.TransactionID, notFound.Source, notFound.Status)
		}
		return event, err
	}

	o.publish(ctx, route, event)
	return event, nil
}

// FinishSagaSuccess завершает сагу успешно и уведомляет сервис заказов
func (o *SagaOrchestrator) FinishSagaSuccess(ctx context.Context, event saga.Event) saga.Event {
	o.logger.Printf("SagaID=%s: Сага для заказа %s успешно завершена", event.TransactionID, event.OrderID)
	return o.finish(ctx, event, saga.StatusSuccess, "saga finished successfully")
}

// FinishSagaFail завершает сагу после компенсации всех шагов
func (o *SagaOrchestrator) FinishSagaFail(ctx context.Context, event saga.Event) saga.Event {
	o.logger.Printf("SagaID=%s: Сага для заказа %s завершена с ошибками", event.TransactionID, event.OrderID)
	return o.finish(ctx, event, saga.StatusFail, "saga finished with errors")
}

func (o *SagaOrchestrator) finish(ctx context.Context, event saga.Event, status saga.Status, message string) saga.Event {
	event = event.WithOutcome(saga.SourceOrchestrator, status, message, o.clock())

	if err := o.publisher.Publish(ctx, saga.TopicNotifyEnding, event); err != nil {
		o.logger.Printf("[ERROR] SagaID=%s: Не удалось отправить уведомление о завершении саги: %v", event.TransactionID, err)
		o.metrics.PublishError(string(saga.TopicNotifyEnding))
	}
	o.metrics.Finished(string(status))
	return event
}

// publish отправляет событие в топик маршрута. Ошибка публикации только логируется.
func (o *SagaOrchestrator) publish(ctx context.Context, route saga.Route, event saga.Event) {
	o.metrics.Transition(string(route.Source), string(route.Status), string(route.Direction))

	if err := o.publisher.Publish(ctx, route.Topic, event); err != nil {
		o.logger.Printf("[ERROR] SagaID=%s: Не удалось отправить событие в топик %s: %v", event.TransactionID, route.Topic, err)
		o.metrics.PublishError(string(route.Topic))
	}
}
