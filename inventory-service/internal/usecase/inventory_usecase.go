package usecase

import (
	"context"
	"fmt"
	"log"

	"github.com/director74/order_saga/inventory-service/internal/entity"
	"github.com/director74/order_saga/pkg/database"
	"github.com/director74/order_saga/pkg/errors"
	"github.com/director74/order_saga/pkg/saga"
)

// InventoryRepository хранилище остатков
type InventoryRepository interface {
	ExistsByOrderAndTransaction(ctx context.Context, orderID, transactionID string) (bool, error)
	ReserveStock(ctx context.Context, orderID, transactionID string, lines []saga.OrderProducts) ([]entity.OrderInventory, error)
	RestoreStock(ctx context.Context, orderID, transactionID string) ([]entity.OrderInventory, error)
	FindByProductCode(ctx context.Context, code string) (*entity.Inventory, error)
	UpsertStock(ctx context.Context, inventory *entity.Inventory) error
	CreateIfAbsent(ctx context.Context, inventory *entity.Inventory) error
}

// InventoryUseCase шаг саги INVENTORY: списывает товары заказа со склада
type InventoryUseCase struct {
	repo   InventoryRepository
	logger *log.Logger
}

// NewInventoryUseCase создает новый usecase склада
func NewInventoryUseCase(repo InventoryRepository, logger *log.Logger) *InventoryUseCase {
	if logger == nil {
		logger = log.New(log.Writer(), "[InventoryService] ", log.LstdFlags)
	}
	return &InventoryUseCase{repo: repo, logger: logger}
}

func (uc *InventoryUseCase) Source() saga.Source {
	return saga.SourceInventory
}

func (uc *InventoryUseCase) Name() string {
	return "Inventory"
}

func (uc *InventoryUseCase) Exists(ctx context.Context, orderID, transactionID string) (bool, error) {
	return uc.repo.ExistsByOrderAndTransaction(ctx, orderID, transactionID)
}

// Execute списывает все строки заказа или не списывает ничего
func (uc *InventoryUseCase) Execute(ctx context.Context, event saga.Event) (saga.Event, error) {
	if len(event.Payload.Products) == 0 {
		return event, saga.ErrEmptyOrder
	}
	for _, p := range event.Payload.Products {
		if p.Quantity <= 0 {
			return event, fmt.Errorf("quantity of product %s must be greater than zero", p.Product.Code)
		}
	}

	snapshots, err := uc.repo.ReserveStock(ctx, event.OrderID, event.TransactionID, event.Payload.Products)
	if err != nil {
		return event, err
	}

	for _, s := range snapshots {
		uc.logger.Printf("SagaID=%s: Остаток товара %d уменьшен с %d до %d", event.TransactionID, s.InventoryID, s.OldQuantity, s.NewQuantity)
	}
	return event, nil
}

// Compensate возвращает остатки к значениям до списания
func (uc *InventoryUseCase) Compensate(ctx context.Context, event saga.Event) (saga.Event, error) {
	snapshots, err := uc.repo.RestoreStock(ctx, event.OrderID, event.TransactionID)
	if err != nil {
		return event, fmt.Errorf("ошибка восстановления остатков: %w", err)
	}

	if len(snapshots) == 0 {
		uc.logger.Printf("SagaID=%s: Списаний для заказа %s не было, восстанавливать нечего", event.TransactionID, event.OrderID)
		return event, nil
	}
	for _, s := range snapshots {
		uc.logger.Printf("SagaID=%s: Остаток товара %d восстановлен с %d до %d", event.TransactionID, s.InventoryID, s.NewQuantity, s.OldQuantity)
	}
	return event, nil
}

// GetStock возвращает остаток товара по коду
func (uc *InventoryUseCase) GetStock(ctx context.Context, code string) (*entity.Inventory, error) {
	inventory, err := uc.repo.FindByProductCode(ctx, code)
	if database.IsNotFound(err) {
		return nil, errors.NewNotFoundError("Товар", code)
	}
	return inventory, err
}

// SetStock устанавливает остаток товара
func (uc *InventoryUseCase) SetStock(ctx context.Context, req entity.SetStockRequest) (*entity.Inventory, error) {
	inventory := &entity.Inventory{ProductCode: req.ProductCode, Available: *req.Available}
	if err := uc.repo.UpsertStock(ctx, inventory); err != nil {
		return nil, err
	}
	uc.logger.Printf("Остаток товара %s установлен в %d", req.ProductCode, *req.Available)
	return inventory, nil
}

// SeedStock добавляет начальные остатки для товаров, которых ещё нет на складе
func (uc *InventoryUseCase) SeedStock(ctx context.Context, stock map[string]int) error {
	for code, available := range stock {
		if err := uc.repo.CreateIfAbsent(ctx, &entity.Inventory{ProductCode: code, Available: available}); err != nil {
			return fmt.Errorf("ошибка заполнения склада товаром %s: %w", code, err)
		}
	}
	return nil
}
