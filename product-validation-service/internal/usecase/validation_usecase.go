package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"

	pkgErrors "github.com/director74/order_saga/pkg/errors"
	"github.com/director74/order_saga/pkg/saga"
	"github.com/director74/order_saga/product-validation-service/internal/entity"
)

// ValidationRepository хранилище каталога и результатов проверки
type ValidationRepository interface {
	ExistsByOrderAndTransaction(ctx context.Context, orderID, transactionID string) (bool, error)
	FindExistingCodes(ctx context.Context, codes []string) ([]string, error)
	CreateValidation(ctx context.Context, validation *entity.Validation) error
	MarkFailed(ctx context.Context, orderID, transactionID string) error
	CreateProduct(ctx context.Context, product *entity.Product) error
	ListProducts(ctx context.Context) ([]entity.Product, error)
}

// ValidationUseCase шаг саги PRODUCT_VALIDATION: проверяет, что все товары заказа есть в каталоге
type ValidationUseCase struct {
	repo   ValidationRepository
	logger *log.Logger
}

func NewValidationUseCase(repo ValidationRepository, logger *log.Logger) *ValidationUseCase {
	if logger == nil {
		logger = log.New(log.Writer(), "[ProductValidationService] ", log.LstdFlags)
	}
	return &ValidationUseCase{repo: repo, logger: logger}
}

func (uc *ValidationUseCase) Source() saga.Source {
	return saga.SourceProductValidation
}

func (uc *ValidationUseCase) Name() string {
	return "Product validation"
}

func (uc *ValidationUseCase) Exists(ctx context.Context, orderID, transactionID string) (bool, error) {
	return uc.repo.ExistsByOrderAndTransaction(ctx, orderID, transactionID)
}

// Execute проверяет состав заказа и фиксирует успешную проверку
func (uc *ValidationUseCase) Execute(ctx context.Context, event saga.Event) (saga.Event, error) {
	codes, err := productCodes(event.Payload)
	if err != nil {
		return event, err
	}

	existing, err := uc.repo.FindExistingCodes(ctx, codes)
	if err != nil {
		return event, fmt.Errorf("ошибка чтения каталога: %w", err)
	}

	known := make(map[string]bool, len(existing))
	for _, code := range existing {
		known[code] = true
	}
	for _, code := range codes {
		if !known[code] {
			return event, fmt.Errorf("%w: %s", saga.ErrProductNotFound, code)
		}
	}

	validation := &entity.Validation{
		OrderID:       event.OrderID,
		TransactionID: event.TransactionID,
		Success:       true,
	}
	if err := uc.repo.CreateValidation(ctx, validation); err != nil {
		return event, err
	}

	uc.logger.Printf("SagaID=%s: Товары заказа %s проверены (%d позиций)", event.TransactionID, event.OrderID, len(codes))
	return event, nil
}

// Compensate помечает проверку как отменённую
func (uc *ValidationUseCase) Compensate(ctx context.Context, event saga.Event) (saga.Event, error) {
	if err := uc.repo.MarkFailed(ctx, event.OrderID, event.TransactionID); err != nil {
		return event, fmt.Errorf("ошибка отмены проверки: %w", err)
	}
	return event, nil
}

// CreateProduct добавляет товар в каталог
func (uc *ValidationUseCase) CreateProduct(ctx context.Context, req entity.CreateProductRequest) (*entity.Product, error) {
	product := &entity.Product{Code: req.Code}
	if err := uc.repo.CreateProduct(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

func (uc *ValidationUseCase) ListProducts(ctx context.Context) ([]entity.Product, error) {
	return uc.repo.ListProducts(ctx)
}

// SeedCatalog добавляет в каталог отсутствующие товары
func (uc *ValidationUseCase) SeedCatalog(ctx context.Context, codes []string) error {
	for _, code := range codes {
		err := uc.repo.CreateProduct(ctx, &entity.Product{Code: code})
		if err != nil && !errors.Is(err, pkgErrors.ErrAlreadyExists) {
			return fmt.Errorf("ошибка заполнения каталога товаром %s: %w", code, err)
		}
	}
	return nil
}

// productCodes проверяет строки заказа и возвращает коды товаров без повторов
func productCodes(order saga.Order) ([]string, error) {
	if len(order.Products) == 0 {
		return nil, saga.ErrEmptyOrder
	}

	seen := make(map[string]bool, len(order.Products))
	codes := make([]string, 0, len(order.Products))
	for _, p := range order.Products {
		if p.Product.Code == "" {
			return nil, fmt.Errorf("product code must be informed")
		}
		if p.Quantity <= 0 {
			return nil, fmt.Errorf("quantity of product %s must be greater than zero", p.Product.Code)
		}
		if !seen[p.Product.Code] {
			seen[p.Product.Code] = true
			codes = append(codes, p.Product.Code)
		}
	}
	return codes, nil
}
