package repo

import (
	"context"
	"time"

	"github.com/director74/order_saga/pkg/database"
	"github.com/director74/order_saga/pkg/errors"
	"github.com/director74/order_saga/pkg/saga"
	"github.com/director74/order_saga/product-validation-service/internal/entity"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ValidationRepo репозиторий каталога и результатов проверки
type ValidationRepo struct {
	db *gorm.DB
}

func NewValidationRepo(db *gorm.DB) *ValidationRepo {
	return &ValidationRepo{db: db}
}

// ExistsByOrderAndTransaction проверяет, выполнялся ли шаг для заказа
func (r *ValidationRepo) ExistsByOrderAndTransaction(ctx context.Context, orderID, transactionID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Validation{}).
		Where("order_id = ? AND transaction_id = ?", orderID, transactionID).
		Count(&count).Error
	return count > 0, err
}

// FindExistingCodes возвращает коды из списка, которые есть в каталоге
func (r *ValidationRepo) FindExistingCodes(ctx context.Context, codes []string) ([]string, error) {
	var found []string
	err := r.db.WithContext(ctx).Model(&entity.Product{}).
		Where("code IN ?", codes).
		Pluck("code", &found).Error
	return found, err
}

// CreateValidation сохраняет результат проверки.
// Повторная запись для той же пары заказ/транзакция возвращает saga.ErrDuplicateExecution.
func (r *ValidationRepo) CreateValidation(ctx context.Context, validation *entity.Validation) error {
	err := r.db.WithContext(ctx).Create(validation).Error
	if database.IsDuplicateKey(err) {
		return saga.ErrDuplicateExecution
	}
	return err
}

// MarkFailed помечает проверку неуспешной, создавая запись при её отсутствии
func (r *ValidationRepo) MarkFailed(ctx context.Context, orderID, transactionID string) error {
	validation := &entity.Validation{
		OrderID:       orderID,
		TransactionID: transactionID,
		Success:       false,
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "order_id"}, {Name: "transaction_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"success":    false,
			"updated_at": time.Now(),
		}),
	}).Create(validation).Error
}

// CreateProduct добавляет товар в каталог
func (r *ValidationRepo) CreateProduct(ctx context.Context, product *entity.Product) error {
	err := r.db.WithContext(ctx).Create(product).Error
	if database.IsDuplicateKey(err) {
		return errors.NewAlreadyExistsError("Товар", "code", product.Code)
	}
	return err
}

// ListProducts возвращает каталог, отсортированный по коду
func (r *ValidationRepo) ListProducts(ctx context.Context) ([]entity.Product, error) {
	var products []entity.Product
	err := r.db.WithContext(ctx).Order("code").Find(&products).Error
	return products, err
}
