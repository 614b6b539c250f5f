package repo

import (
	"context"

	"github.com/director74/order_saga/payment-service/internal/entity"
	"github.com/director74/order_saga/pkg/database"
	"github.com/director74/order_saga/pkg/saga"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PaymentRepo репозиторий платежей
type PaymentRepo struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) *PaymentRepo {
	return &PaymentRepo{db: db}
}

// ExistsByOrderAndTransaction проверяет, создавался ли платеж для заказа
func (r *PaymentRepo) ExistsByOrderAndTransaction(ctx context.Context, orderID, transactionID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Payment{}).
		Where("order_id = ? AND transaction_id = ?", orderID, transactionID).
		Count(&count).Error
	return count > 0, err
}

// CreatePayment сохраняет платеж одной вставкой.
// Повторная вставка для той же пары заказ/транзакция возвращает saga.ErrDuplicateExecution.
func (r *PaymentRepo) CreatePayment(ctx context.Context, payment *entity.Payment) error {
	err := r.db.WithContext(ctx).Create(payment).Error
	if database.IsDuplicateKey(err) {
		return saga.ErrDuplicateExecution
	}
	return err
}

// RefundPayment переводит платеж в статус REFUND под блокировкой строки
func (r *PaymentRepo) RefundPayment(ctx context.Context, orderID, transactionID string) (*entity.Payment, error) {
	var payment entity.Payment

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("order_id = ? AND transaction_id = ?", orderID, transactionID).
			First(&payment).Error
		if database.IsNotFound(err) {
			return saga.ErrRecordNotFound
		}
		if err != nil {
			return err
		}

		payment.PreviousStatus = payment.Status
		payment.Status = entity.PaymentStatusRefund
		return tx.Model(&payment).Updates(map[string]interface{}{
			"previous_status": payment.PreviousStatus,
			"status":          payment.Status,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

// FindByOrderAndTransaction возвращает платеж саги
func (r *PaymentRepo) FindByOrderAndTransaction(ctx context.Context, orderID, transactionID string) (*entity.Payment, error) {
	var payment entity.Payment
	err := r.db.WithContext(ctx).
		Where("order_id = ? AND transaction_id = ?", orderID, transactionID).
		First(&payment).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

// FindByOrder возвращает все платежи заказа, новые первыми
func (r *PaymentRepo) FindByOrder(ctx context.Context, orderID string) ([]entity.Payment, error) {
	var payments []entity.Payment
	err := r.db.WithContext(ctx).Where("order_id = ?", orderID).Order("created_at DESC").Find(&payments).Error
	return payments, err
}
