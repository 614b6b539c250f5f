package usecase

import (
	"context"
	"fmt"
	"log"

	"github.com/director74/order_saga/payment-service/internal/entity"
	"github.com/director74/order_saga/pkg/errors"
	"github.com/director74/order_saga/pkg/saga"
)

// DefaultMinAmount минимальная сумма заказа
const DefaultMinAmount = 0.1

// PaymentRepository хранилище платежей
type PaymentRepository interface {
	ExistsByOrderAndTransaction(ctx context.Context, orderID, transactionID string) (bool, error)
	CreatePayment(ctx context.Context, payment *entity.Payment) error
	RefundPayment(ctx context.Context, orderID, transactionID string) (*entity.Payment, error)
	FindByOrderAndTransaction(ctx context.Context, orderID, transactionID string) (*entity.Payment, error)
	FindByOrder(ctx context.Context, orderID string) ([]entity.Payment, error)
}

// PaymentUseCase шаг саги PAYMENT: рассчитывает сумму заказа и проводит оплату
type PaymentUseCase struct {
	repo      PaymentRepository
	minAmount float64
	logger    *log.Logger
}

func NewPaymentUseCase(repo PaymentRepository, minAmount float64, logger *log.Logger) *PaymentUseCase {
	if logger == nil {
		logger = log.New(log.Writer(), "[PaymentService] ", log.LstdFlags)
	}
	if minAmount <= 0 {
		minAmount = DefaultMinAmount
	}
	return &PaymentUseCase{repo: repo, minAmount: minAmount, logger: logger}
}

func (uc *PaymentUseCase) Source() saga.Source {
	return saga.SourcePayment
}

func (uc *PaymentUseCase) Name() string {
	return "Payment"
}

func (uc *PaymentUseCase) Exists(ctx context.Context, orderID, transactionID string) (bool, error) {
	return uc.repo.ExistsByOrderAndTransaction(ctx, orderID, transactionID)
}

// Execute создает платеж и проводит его, если сумма не меньше минимальной.
// Платеж с недопустимой суммой сохраняется в статусе PENDING, чтобы компенсация могла его найти.
func (uc *PaymentUseCase) Execute(ctx context.Context, event saga.Event) (saga.Event, error) {
	totalAmount, totalItems := event.Payload.CalculateTotals()

	payment := &entity.Payment{
		OrderID:       event.OrderID,
		TransactionID: event.TransactionID,
		TotalAmount:   totalAmount,
		TotalItems:    totalItems,
		Status:        entity.PaymentStatusPending,
	}

	var amountErr error
	if totalAmount < uc.minAmount {
		amountErr = &saga.InvalidAmountError{Amount: totalAmount, Min: uc.minAmount}
	} else {
		payment.PreviousStatus = entity.PaymentStatusPending
		payment.Status = entity.PaymentStatusSuccess
	}

	if err := uc.repo.CreatePayment(ctx, payment); err != nil {
		return event, err
	}

	event.Payload.TotalAmount = payment.TotalAmount
	event.Payload.TotalItems = payment.TotalItems

	if amountErr != nil {
		return event, amountErr
	}

	uc.logger.Printf("SagaID=%s: Платеж по заказу %s проведен на сумму %.2f", event.TransactionID, event.OrderID, totalAmount)
	return event, nil
}

// Compensate возвращает платеж и восстанавливает суммы заказа из сохранённой записи
func (uc *PaymentUseCase) Compensate(ctx context.Context, event saga.Event) (saga.Event, error) {
	payment, err := uc.repo.RefundPayment(ctx, event.OrderID, event.TransactionID)
	if err != nil {
		return event, err
	}

	event.Payload.TotalAmount = payment.TotalAmount
	event.Payload.TotalItems = payment.TotalItems

	uc.logger.Printf("SagaID=%s: Платеж по заказу %s возвращен (был %s)", event.TransactionID, event.OrderID, payment.PreviousStatus)
	return event, nil
}

// FindPayments ищет платежи по заказу или по паре заказ/транзакция
func (uc *PaymentUseCase) FindPayments(ctx context.Context, filter entity.PaymentFilter) ([]entity.Payment, error) {
	if filter.OrderID == "" {
		return nil, errors.NewBadRequestError("orderId must be informed")
	}

	if filter.TransactionID == "" {
		return uc.repo.FindByOrder(ctx, filter.OrderID)
	}

	payment, err := uc.repo.FindByOrderAndTransaction(ctx, filter.OrderID, filter.TransactionID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrNotFound, err)
	}
	return []entity.Payment{*payment}, nil
}
