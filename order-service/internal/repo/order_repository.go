package repo

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/director74/order_saga/order-service/internal/entity"
	"github.com/director74/order_saga/pkg/database"
	"github.com/director74/order_saga/pkg/errors"
)

// OrderRepo репозиторий заказов и событий саги
type OrderRepo struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepo {
	return &OrderRepo{db: db}
}

// CreateWithEvent сохраняет заказ и начальное событие саги в одной транзакции
func (r *OrderRepo) CreateWithEvent(ctx context.Context, order *entity.Order, event *entity.Event) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(order).Error; err != nil {
			return err
		}
		return tx.Create(event).Error
	})
}

// GetByID возвращает заказ по идентификатору
func (r *OrderRepo) GetByID(ctx context.Context, id string) (*entity.Order, error) {
	var order entity.Order
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&order).Error
	if database.IsNotFound(err) {
		return nil, errors.NewNotFoundError("Заказ", id)
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// UpdateStatus обновляет только статус заказа
func (r *OrderRepo) UpdateStatus(ctx context.Context, id string, status entity.OrderStatus) error {
	result := r.db.WithContext(ctx).Model(&entity.Order{}).Where("id = ?", id).Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errors.NewNotFoundError("Заказ", id)
	}
	return nil
}

// SaveEvent сохраняет событие, существующее с тем же id перезаписывается
func (r *OrderRepo) SaveEvent(ctx context.Context, event *entity.Event) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"transaction_id", "order_id", "payload", "source", "status", "event_history", "created_at",
		}),
	}).Create(event).Error
}

// FindAllEvents возвращает все события, новые первыми
func (r *OrderRepo) FindAllEvents(ctx context.Context) ([]entity.Event, error) {
	var events []entity.Event
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&events).Error
	return events, err
}

// FindLatestEventByOrderID последнее событие заказа
func (r *OrderRepo) FindLatestEventByOrderID(ctx context.Context, orderID string) (*entity.Event, error) {
	return r.findLatestEvent(ctx, "order_id = ?", orderID)
}

// FindLatestEventByTransactionID последнее событие транзакции
func (r *OrderRepo) FindLatestEventByTransactionID(ctx context.Context, transactionID string) (*entity.Event, error) {
	return r.findLatestEvent(ctx, "transaction_id = ?", transactionID)
}

func (r *OrderRepo) findLatestEvent(ctx context.Context, query string, value string) (*entity.Event, error) {
	var event entity.Event
	err := r.db.WithContext(ctx).Where(query, value).Order("created_at DESC").Take(&event).Error
	if database.IsNotFound(err) {
		return nil, errors.NewNotFoundError("Событие", value)
	}
	if err != nil {
		return nil, err
	}
	return &event, nil
}
