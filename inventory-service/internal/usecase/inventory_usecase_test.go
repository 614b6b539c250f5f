package usecase

import (
	"context"
	"log"
	"os"
	"testing"

	"github.com/director74/order_saga/inventory-service/internal/entity"
	pkgErrors "github.com/director74/order_saga/pkg/errors"
	"github.com/director74/order_saga/pkg/saga"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// MockInventoryRepository мок для репозитория склада
type MockInventoryRepository struct {
	mock.Mock
}

func (m *MockInventoryRepository) ExistsByOrderAndTransaction(ctx context.Context, orderID, transactionID string) (bool, error) {
	args := m.Called(ctx, orderID, transactionID)
	return args.Bool(0), args.Error(1)
}

func (m *MockInventoryRepository) ReserveStock(ctx context.Context, orderID, transactionID string, lines []saga.OrderProducts) ([]entity.OrderInventory, error) {
	args := m.Called(ctx, orderID, transactionID, lines)
	snapshots, _ := args.Get(0).([]entity.OrderInventory)
	return snapshots, args.Error(1)
}

func (m *MockInventoryRepository) RestoreStock(ctx context.Context, orderID, transactionID string) ([]entity.OrderInventory, error) {
	args := m.Called(ctx, orderID, transactionID)
	snapshots, _ := args.Get(0).([]entity.OrderInventory)
	return snapshots, args.Error(1)
}

func (m *MockInventoryRepository) FindByProductCode(ctx context.Context, code string) (*entity.Inventory, error) {
	args := m.Called(ctx, code)
	inventory, _ := args.Get(0).(*entity.Inventory)
	return inventory, args.Error(1)
}

func (m *MockInventoryRepository) UpsertStock(ctx context.Context, inventory *entity.Inventory) error {
	args := m.Called(ctx, inventory)
	return args.Error(0)
}

func (m *MockInventoryRepository) CreateIfAbsent(ctx context.Context, inventory *entity.Inventory) error {
	args := m.Called(ctx, inventory)
	return args.Error(0)
}

func newInventoryUseCase(repo *MockInventoryRepository) *InventoryUseCase {
	return NewInventoryUseCase(repo, log.New(os.Stdout, "[TEST] ", log.LstdFlags))
}

func inventoryEvent(products ...saga.OrderProducts) saga.Event {
	return saga.Event{
		OrderID:       "order-1",
		TransactionID: "tx-1",
		Payload:       saga.Order{ID: "order-1", TransactionID: "tx-1", Products: products},
	}
}

func line(code string, quantity int) saga.OrderProducts {
	return saga.OrderProducts{Product: saga.Product{Code: code, UnitValue: 10}, Quantity: quantity}
}

func TestExecute_ReservesAllLines(t *testing.T) {
	repo := new(MockInventoryRepository)
	uc := newInventoryUseCase(repo)

	event := inventoryEvent(line("BOOKS", 2), line("MOVIES", 1))
	repo.On("ReserveStock", mock.Anything, "order-1", "tx-1", event.Payload.Products).Return([]entity.OrderInventory{
		{InventoryID: 1, OrderQuantity: 2, OldQuantity: 10, NewQuantity: 8},
		{InventoryID: 2, OrderQuantity: 1, OldQuantity: 5, NewQuantity: 4},
	}, nil)

	result, err := uc.Execute(context.Background(), event)

	require.NoError(t, err)
	assert.Equal(t, event.OrderID, result.OrderID)
	repo.AssertExpectations(t)
}

func TestExecute_InsufficientStock(t *testing.T) {
	repo := new(MockInventoryRepository)
	uc := newInventoryUseCase(repo)

	stockErr := &saga.InsufficientStockError{ProductCode: "BOOKS", Requested: 20, Available: 10}
	repo.On("ReserveStock", mock.Anything, "order-1", "tx-1", mock.Anything).Return(nil, stockErr)

	_, err := uc.Execute(context.Background(), inventoryEvent(line("BOOKS", 20)))

	assert.ErrorIs(t, err, saga.ErrInsufficientStock)
	assert.EqualError(t, err, "product BOOKS is out of stock: requested 20, available 10")
}

func TestExecute_InvalidOrderLines(t *testing.T) {
	tests := []struct {
		name  string
		event saga.Event
	}{
		{"пустой заказ", inventoryEvent()},
		{"нулевое количество", inventoryEvent(line("BOOKS", 0))},
		{"отрицательное количество", inventoryEvent(line("BOOKS", -1))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockInventoryRepository)
			_, err := newInventoryUseCase(repo).Execute(context.Background(), tt.event)
			assert.Error(t, err)
			repo.AssertNotCalled(t, "ReserveStock", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestCompensate_RestoresSnapshots(t *testing.T) {
	repo := new(MockInventoryRepository)
	uc := newInventoryUseCase(repo)

	repo.On("RestoreStock", mock.Anything, "order-1", "tx-1").Return([]entity.OrderInventory{
		{InventoryID: 1, OldQuantity: 10, NewQuantity: 8},
	}, nil)

	_, err := uc.Compensate(context.Background(), inventoryEvent(line("BOOKS", 2)))

	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestCompensate_NoSnapshotsIsNoop(t *testing.T) {
	repo := new(MockInventoryRepository)
	uc := newInventoryUseCase(repo)

	repo.On("RestoreStock", mock.Anything, "order-1", "tx-1").Return([]entity.OrderInventory{}, nil)

	_, err := uc.Compensate(context.Background(), inventoryEvent(line("BOOKS", 2)))

	require.NoError(t, err)
}

func TestGetStock_NotFound(t *testing.T) {
	repo := new(MockInventoryRepository)
	uc := newInventoryUseCase(repo)

	repo.On("FindByProductCode", mock.Anything, "MUSIC").Return(nil, gorm.ErrRecordNotFound)

	_, err := uc.GetStock(context.Background(), "MUSIC")

	assert.ErrorIs(t, err, pkgErrors.ErrNotFound)
}

func TestSetStock(t *testing.T) {
	repo := new(MockInventoryRepository)
	uc := newInventoryUseCase(repo)

	available := 7
	repo.On("UpsertStock", mock.Anything, &entity.Inventory{ProductCode: "BOOKS", Available: 7}).Return(nil)

	inventory, err := uc.SetStock(context.Background(), entity.SetStockRequest{ProductCode: "BOOKS", Available: &available})

	require.NoError(t, err)
	assert.Equal(t, 7, inventory.Available)
}

func TestSeedStock(t *testing.T) {
	repo := new(MockInventoryRepository)
	uc := newInventoryUseCase(repo)

	repo.On("CreateIfAbsent", mock.Anything, &entity.Inventory{ProductCode: "BOOKS", Available: 10}).Return(nil)

	require.NoError(t, uc.SeedStock(context.Background(), map[string]int{"BOOKS": 10}))
	repo.AssertExpectations(t)
}
