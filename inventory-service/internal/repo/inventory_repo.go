package repo

import (
	"context"
	"fmt"

	"github.com/director74/order_saga/inventory-service/internal/entity"
	"github.com/director74/order_saga/pkg/database"
	"github.com/director74/order_saga/pkg/saga"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// InventoryRepo репозиторий остатков и снимков списаний
type InventoryRepo struct {
	db *gorm.DB
}

// NewInventoryRepo создает новый репозиторий склада
func NewInventoryRepo(db *gorm.DB) *InventoryRepo {
	return &InventoryRepo{db: db}
}

// ExistsByOrderAndTransaction проверяет, списывался ли товар для заказа
func (r *InventoryRepo) ExistsByOrderAndTransaction(ctx context.Context, orderID, transactionID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.OrderInventory{}).
		Where("order_id = ? AND transaction_id = ?", orderID, transactionID).
		Count(&count).Error
	return count > 0, err
}

// ReserveStock списывает товары заказа в одной транзакции.
// Для каждой строки остаток блокируется, сохраняется снимок и уменьшается available.
// Любая ошибка откатывает все списания заказа.
func (r *InventoryRepo) ReserveStock(ctx context.Context, orderID, transactionID string, lines []saga.OrderProducts) ([]entity.OrderInventory, error) {
	snapshots := make([]entity.OrderInventory, 0, len(lines))

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i, line := range lines {
			var inventory entity.Inventory
			err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				Where("product_code = ?", line.Product.Code).
				First(&inventory).Error
			if database.IsNotFound(err) {
				return fmt.Errorf("%w: %s", saga.ErrProductNotFound, line.Product.Code)
			}
			if err != nil {
				return err
			}

			if line.Quantity > inventory.Available {
				return &saga.InsufficientStockError{
					ProductCode: line.Product.Code,
					Requested:   line.Quantity,
					Available:   inventory.Available,
				}
			}

			snapshot := entity.OrderInventory{
				InventoryID:   inventory.ID,
				OrderID:       orderID,
				TransactionID: transactionID,
				Line:          i,
				OrderQuantity: line.Quantity,
				OldQuantity:   inventory.Available,
				NewQuantity:   inventory.Available - line.Quantity,
			}
			if err := tx.Create(&snapshot).Error; err != nil {
				if database.IsDuplicateKey(err) {
					return saga.ErrDuplicateExecution
				}
				return err
			}

			if err := tx.Model(&inventory).Update("available", snapshot.NewQuantity).Error; err != nil {
				return err
			}
			snapshots = append(snapshots, snapshot)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return snapshots, nil
}

// RestoreStock возвращает остатки к значениям до списания.
// Снимки обходятся от последнего к первому, поэтому при повторе кода остаток
// становится равным OldQuantity первого снимка. Без снимков ничего не делает.
func (r *InventoryRepo) RestoreStock(ctx context.Context, orderID, transactionID string) ([]entity.OrderInventory, error) {
	var snapshots []entity.OrderInventory

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ? AND transaction_id = ?", orderID, transactionID).
			Order("id DESC").
			Find(&snapshots).Error; err != nil {
			return err
		}

		for _, snapshot := range snapshots {
			var inventory entity.Inventory
			if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				First(&inventory, snapshot.InventoryID).Error; err != nil {
				return err
			}
			if err := tx.Model(&inventory).Update("available", snapshot.OldQuantity).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return snapshots, nil
}

// FindByProductCode возвращает остаток товара
func (r *InventoryRepo) FindByProductCode(ctx context.Context, code string) (*entity.Inventory, error) {
	var inventory entity.Inventory
	err := r.db.WithContext(ctx).Where("product_code = ?", code).First(&inventory).Error
	if err != nil {
		return nil, err
	}
	return &inventory, nil
}

// UpsertStock устанавливает остаток товара, создавая запись при её отсутствии
func (r *InventoryRepo) UpsertStock(ctx context.Context, inventory *entity.Inventory) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "product_code"}},
		DoUpdates: clause.AssignmentColumns([]string{"available", "updated_at"}),
	}).Create(inventory).Error
}

// CreateIfAbsent добавляет остаток, существующая запись не меняется
func (r *InventoryRepo) CreateIfAbsent(ctx context.Context, inventory *entity.Inventory) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "product_code"}},
		DoNothing: true,
	}).Create(inventory).Error
}
