package saga

import (
	"errors"
	"fmt"
)

// Ошибки саги. Бизнес-ошибки участников переводятся исполнителем в статус ROLLBACK_PENDING.
var (
	ErrInvalidEvent       = errors.New("invalid saga event")
	ErrRouteNotFound      = errors.New("saga route not found")
	ErrDuplicateExecution = errors.New("saga step already executed for this order and transaction")
	ErrInsufficientStock  = errors.New("product is out of stock")
	ErrInvalidAmount      = errors.New("invalid payment amount")
	ErrRecordNotFound     = errors.New("compensation record not found")
	ErrProductNotFound    = errors.New("product code not found")
	ErrEmptyOrder         = errors.New("order products must be informed")
)

// InvalidEventError событие не содержит данных, необходимых для маршрутизации
type InvalidEventError struct {
	Reason string
}

func (e *InvalidEventError) Error() string {
	return e.Reason
}

func (e *InvalidEventError) Is(target error) bool {
	return target == ErrInvalidEvent
}

// RouteNotFoundError участник сообщил о паре (source, status), которой нет в таблице маршрутов
type RouteNotFoundError struct {
	Source Source
	Status Status
}

func (e *RouteNotFoundError) Error() string {
	return fmt.Sprintf("route not found for source %s and status %s", e.Source, e.Status)
}

func (e *RouteNotFoundError) Is(target error) bool {
	return target == ErrRouteNotFound
}

// InsufficientStockError на складе меньше товара, чем требует заказ
type InsufficientStockError struct {
	ProductCode string
	Requested   int
	Available   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("product %s is out of stock: requested %d, available %d",
		e.ProductCode, e.Requested, e.Available)
}

func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}

// InvalidAmountError сумма заказа меньше минимально допустимой
type InvalidAmountError struct {
	Amount float64
	Min    float64
}

func (e *InvalidAmountError) Error() string {
	return fmt.Sprintf("amount %.2f must be greater than %g", e.Amount, e.Min)
}

func (e *InvalidAmountError) Is(target error) bool {
	return target == ErrInvalidAmount
}
