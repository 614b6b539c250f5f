package usecase

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/director74/order_saga/order-service/internal/entity"
	"github.com/director74/order_saga/pkg/errors"
	"github.com/director74/order_saga/pkg/saga"
)

// OrderUseCase создает заказы, запускает сагу и фиксирует её итог
type OrderUseCase struct {
	repo      OrderRepository
	publisher EventPublisher
	logger    *log.Logger
	clock     saga.Clock
}

func NewOrderUseCase(repo OrderRepository, publisher EventPublisher, logger *log.Logger) *OrderUseCase {
	if logger == nil {
		logger = log.New(log.Writer(), "[OrderUseCase] ", log.LstdFlags)
	}
	return &OrderUseCase{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		clock:     time.Now,
	}
}

// WithClock подменяет источник времени
func (uc *OrderUseCase) WithClock(clock saga.Clock) *OrderUseCase {
	uc.clock = clock
	return uc
}

// CreateOrder сохраняет заказ с начальным событием и публикует его в start-saga
func (uc *OrderUseCase) CreateOrder(ctx context.Context, clientID string, req entity.CreateOrderRequest) (*entity.Order, error) {
	if len(req.Products) == 0 {
		return nil, saga.ErrEmptyOrder
	}

	now := uc.clock()
	payload := saga.Order{
		ID:            uuid.NewString(),
		Products:      req.Products,
		CreatedAt:     now,
		TransactionID: saga.NewTransactionID(now),
	}
	totalAmount, totalItems := payload.CalculateTotals()

	order := &entity.Order{
		ID:            payload.ID,
		ClientID:      clientID,
		TransactionID: payload.TransactionID,
		Products:      payload.Products,
		TotalAmount:   totalAmount,
		TotalItems:    totalItems,
		Status:        entity.OrderStatusPending,
		CreatedAt:     now,
	}
	event := saga.NewEvent(payload, now)

	if err := uc.repo.CreateWithEvent(ctx, order, entity.NewEventRecord(event)); err != nil {
		return nil, fmt.Errorf("ошибка при сохранении заказа: %w", err)
	}

	uc.logger.Printf("SagaID=%s: Создан заказ %s, клиент %s, позиций %d", event.TransactionID, order.ID, clientID, totalItems)

	if err := uc.publisher.Publish(ctx, saga.TopicStartSaga, event); err != nil {
		uc.logger.Printf("[ERROR] SagaID=%s: Ошибка запуска саги для заказа %s: %v", event.TransactionID, order.ID, err)
		return nil, errors.NewInternalServerError(fmt.Errorf("ошибка запуска саги: %w", err))
	}

	return order, nil
}

// NotifyEnding сохраняет итоговое событие саги и переводит заказ в итоговый статус
func (uc *OrderUseCase) NotifyEnding(ctx context.Context, event saga.Event) error {
	if err := event.Validate(); err != nil {
		return err
	}

	event.CreatedAt = uc.clock()
	if err := uc.repo.SaveEvent(ctx, entity.NewEventRecord(event)); err != nil {
		return fmt.Errorf("ошибка при сохранении события: %w", err)
	}

	status := entity.OrderStatusFromSaga(event.Status)
	if err := uc.repo.UpdateStatus(ctx, event.OrderID, status); err != nil {
		if errors.IsNotFound(err) {
			uc.logger.Printf("[WARN] SagaID=%s: Заказ %s не найден, статус не обновлён", event.TransactionID, event.OrderID)
			return nil
		}
		return fmt.Errorf("ошибка при обновлении статуса заказа: %w", err)
	}

	uc.logger.Printf("SagaID=%s: Сага заказа %s завершена со статусом %s", event.TransactionID, event.OrderID, status)
	return nil
}

// GetOrder возвращает заказ по идентификатору
func (uc *OrderUseCase) GetOrder(ctx context.Context, id string) (*entity.Order, error) {
	return uc.repo.GetByID(ctx, id)
}

// FindAllEvents возвращает все события, новые первыми
func (uc *OrderUseCase) FindAllEvents(ctx context.Context) ([]saga.Event, error) {
	records, err := uc.repo.FindAllEvents(ctx)
	if err != nil {
		return nil, err
	}

	events := make([]saga.Event, 0, len(records))
	for _, record := range records {
		events = append(events, record.ToSaga())
	}
	return events, nil
}

// FindEventByFilters возвращает последнее событие по orderId, а если он не указан, по transactionId
func (uc *OrderUseCase) FindEventByFilters(ctx context.Context, filters entity.EventFilters) (*saga.Event, error) {
	var (
		record *entity.Event
		err    error
	)
	switch {
	case filters.OrderID != "":
		record, err = uc.repo.FindLatestEventByOrderID(ctx, filters.OrderID)
	case filters.TransactionID != "":
		record, err = uc.repo.FindLatestEventByTransactionID(ctx, filters.TransactionID)
	default:
		return nil, errors.NewBadRequestError("orderId or transactionId must be informed")
	}
	if err != nil {
		return nil, err
	}

	event := record.ToSaga()
	return &event, nil
}
