package usecase

import (
	"context"
	"errors"
	"log"
	"os"
	"testing"

	"github.com/director74/order_saga/payment-service/internal/entity"
	pkgErrors "github.com/director74/order_saga/pkg/errors"
	"github.com/director74/order_saga/pkg/saga"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockPaymentRepository мок для репозитория платежей
type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) ExistsByOrderAndTransaction(ctx context.Context, orderID, transactionID string) (bool, error) {
	args := m.Called(ctx, orderID, transactionID)
	return args.Bool(0), args.Error(1)
}

func (m *MockPaymentRepository) CreatePayment(ctx context.Context, payment *entity.Payment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

func (m *MockPaymentRepository) RefundPayment(ctx context.Context, orderID, transactionID string) (*entity.Payment, error) {
	args := m.Called(ctx, orderID, transactionID)
	payment, _ := args.Get(0).(*entity.Payment)
	return payment, args.Error(1)
}

func (m *MockPaymentRepository) FindByOrderAndTransaction(ctx context.Context, orderID, transactionID string) (*entity.Payment, error) {
	args := m.Called(ctx, orderID, transactionID)
	payment, _ := args.Get(0).(*entity.Payment)
	return payment, args.Error(1)
}

func (m *MockPaymentRepository) FindByOrder(ctx context.Context, orderID string) ([]entity.Payment, error) {
	args := m.Called(ctx, orderID)
	return args.Get(0).([]entity.Payment), args.Error(1)
}

func newPaymentUseCase(repo *MockPaymentRepository) *PaymentUseCase {
	return NewPaymentUseCase(repo, DefaultMinAmount, log.New(os.Stdout, "[TEST] ", log.LstdFlags))
}

func paymentEvent(unitValue float64, quantity int) saga.Event {
	return saga.Event{
		OrderID:       "order-1",
		TransactionID: "tx-1",
		Payload: saga.Order{
			ID:            "order-1",
			TransactionID: "tx-1",
			Products: []saga.OrderProducts{
				{Product: saga.Product{Code: "COMIC_BOOKS", UnitValue: unitValue}, Quantity: quantity},
				{Product: saga.Product{Code: "BOOKS", UnitValue: unitValue}, Quantity: 1},
			},
		},
	}
}

func TestPaymentExecute_Success(t *testing.T) {
	repo := new(MockPaymentRepository)
	uc := newPaymentUseCase(repo)

	repo.On("CreatePayment", mock.Anything, mock.MatchedBy(func(p *entity.Payment) bool {
		return p.Status == entity.PaymentStatusSuccess &&
			p.PreviousStatus == entity.PaymentStatusPending &&
			p.TotalAmount == 40 && p.TotalItems == 4
	})).Return(nil)

	result, err := uc.Execute(context.Background(), paymentEvent(10, 3))

	require.NoError(t, err)
	assert.Equal(t, 40.0, result.Payload.TotalAmount)
	assert.Equal(t, 4, result.Payload.TotalItems)
	repo.AssertExpectations(t)
}

func TestPaymentExecute_AmountBelowMinimum(t *testing.T) {
	repo := new(MockPaymentRepository)
	uc := newPaymentUseCase(repo)

	repo.On("CreatePayment", mock.Anything, mock.MatchedBy(func(p *entity.Payment) bool {
		return p.Status == entity.PaymentStatusPending
	})).Return(nil)

	_, err := uc.Execute(context.Background(), paymentEvent(0.01, 1))

	var amountErr *saga.InvalidAmountError
	require.ErrorAs(t, err, &amountErr)
	assert.Equal(t, DefaultMinAmount, amountErr.Min)
	assert.ErrorIs(t, err, saga.ErrInvalidAmount)
}

func TestPaymentExecute_Duplicate(t *testing.T) {
	repo := new(MockPaymentRepository)
	uc := newPaymentUseCase(repo)

	repo.On("CreatePayment", mock.Anything, mock.Anything).Return(saga.ErrDuplicateExecution)

	result, err := uc.Execute(context.Background(), paymentEvent(10, 1))

	assert.ErrorIs(t, err, saga.ErrDuplicateExecution)
	assert.Zero(t, result.Payload.TotalAmount)
}

func TestPaymentCompensate(t *testing.T) {
	repo := new(MockPaymentRepository)
	uc := newPaymentUseCase(repo)

	repo.On("RefundPayment", mock.Anything, "order-1", "tx-1").Return(&entity.Payment{
		OrderID:        "order-1",
		TransactionID:  "tx-1",
		TotalAmount:    40,
		TotalItems:     4,
		Status:         entity.PaymentStatusRefund,
		PreviousStatus: entity.PaymentStatusSuccess,
	}, nil)

	result, err := uc.Compensate(context.Background(), paymentEvent(10, 3))

	require.NoError(t, err)
	assert.Equal(t, 40.0, result.Payload.TotalAmount)
	assert.Equal(t, 4, result.Payload.TotalItems)
}

func TestPaymentCompensate_NotFound(t *testing.T) {
	repo := new(MockPaymentRepository)
	uc := newPaymentUseCase(repo)

	repo.On("RefundPayment", mock.Anything, "order-1", "tx-1").Return(nil, saga.ErrRecordNotFound)

	_, err := uc.Compensate(context.Background(), paymentEvent(10, 3))

	assert.ErrorIs(t, err, saga.ErrRecordNotFound)
}

func TestFindPayments(t *testing.T) {
	repo := new(MockPaymentRepository)
	uc := newPaymentUseCase(repo)

	repo.On("FindByOrder", mock.Anything, "order-1").Return([]entity.Payment{{OrderID: "order-1"}}, nil)
	repo.On("FindByOrderAndTransaction", mock.Anything, "order-1", "tx-404").Return(nil, errors.New("record not found"))

	payments, err := uc.FindPayments(context.Background(), entity.PaymentFilter{OrderID: "order-1"})
	require.NoError(t, err)
	assert.Len(t, payments, 1)

	_, err = uc.FindPayments(context.Background(), entity.PaymentFilter{OrderID: "order-1", TransactionID: "tx-404"})
	assert.ErrorIs(t, err, pkgErrors.ErrNotFound)

	_, err = uc.FindPayments(context.Background(), entity.PaymentFilter{})
	assert.ErrorIs(t, err, pkgErrors.ErrBadRequest)
}
