package errors

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/director74/order_saga/pkg/saga"
)

// ServiceError представляет ошибку микросервиса с HTTP-статусом
type ServiceError struct {
	Code    int    // HTTP-статус
	Message string // Сообщение об ошибке
	Err     error  // Исходная ошибка
}

func NewServiceError(code int, message string, err error) *ServiceError {
	return &ServiceError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

func NewNotFoundError(resourceType string, id interface{}) *ServiceError {
	message := fmt.Sprintf("%s с ID=%v не найден", resourceType, id)
	return NewServiceError(http.StatusNotFound, message, ErrNotFound)
}

func NewAlreadyExistsError(resourceType string, field string, value interface{}) *ServiceError {
	message := fmt.Sprintf("%s с %s=%v уже существует", resourceType, field, value)
	return NewServiceError(http.StatusConflict, message, ErrAlreadyExists)
}

func NewUnauthorizedError(reason string) *ServiceError {
	message := "Требуется авторизация"
	if reason != "" {
		message = fmt.Sprintf("%s: %s", message, reason)
	}
	return NewServiceError(http.StatusUnauthorized, message, ErrUnauthorized)
}

func NewInternalServerError(err error) *ServiceError {
	return NewServiceError(http.StatusInternalServerError, "Внутренняя ошибка сервера", err)
}

// NewBadRequestError ошибка запроса; сообщение передаётся клиенту без изменений
func NewBadRequestError(reason string) *ServiceError {
	return NewServiceError(http.StatusBadRequest, reason, ErrBadRequest)
}

// ToHTTPResponse преобразует ошибку в HTTP-ответ.
// Ошибки саги отображаются на коды так же, как общие ошибки сервиса.
func ToHTTPResponse(err error) (int, HTTPErrorResponse) {
	var se *ServiceError
	if errors.As(err, &se) {
		return se.Code, ErrorResponse(se.Message, nil)
	}

	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, saga.ErrProductNotFound),
		errors.Is(err, saga.ErrRecordNotFound):
		return http.StatusNotFound, ErrorResponse(err.Error(), nil)
	case errors.Is(err, ErrAlreadyExists), errors.Is(err, saga.ErrDuplicateExecution):
		return http.StatusConflict, ErrorResponse(err.Error(), nil)
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized, ErrorResponse(err.Error(), nil)
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden, ErrorResponse(err.Error(), nil)
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, saga.ErrInvalidEvent),
		errors.Is(err, saga.ErrEmptyOrder):
		return http.StatusBadRequest, ErrorResponse(err.Error(), nil)
	case errors.Is(err, saga.ErrInsufficientStock), errors.Is(err, saga.ErrInvalidAmount):
		return http.StatusUnprocessableEntity, ErrorResponse(err.Error(), nil)
	default:
		return http.StatusInternalServerError, ErrorResponse("Внутренняя ошибка сервера", nil)
	}
}
