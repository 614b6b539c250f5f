package errors

import (
	"errors"
	"fmt"
	"log"
	"strings"
)

// Common errors
var (
	ErrNotFound       = errors.New("ресурс не найден")
	ErrAlreadyExists  = errors.New("ресурс уже существует")
	ErrUnauthorized   = errors.New("не авторизован")
	ErrForbidden      = errors.New("доступ запрещен")
	ErrInternalServer = errors.New("внутренняя ошибка сервера")
	ErrBadRequest     = errors.New("некорректный запрос")
)

// AppendPrefix добавляет префикс к сообщению об ошибке
func AppendPrefix(err error, prefix string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", prefix, err)
}

// IsNotFound сообщает, что ресурс не найден
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// LogError логирует ошибку с контекстом
func LogError(err error, context string) {
	if err == nil {
		return
	}
	log.Printf("ОШИБКА [%s]: %v", context, err)
}

// ErrorGroup собирает ошибки нескольких независимых операций, например закрытия ресурсов
type ErrorGroup struct {
	errors []error
}

func NewErrorGroup() *ErrorGroup {
	return &ErrorGroup{
		errors: make([]error, 0),
	}
}

// Add добавляет ошибку в группу (игнорирует nil)
func (g *ErrorGroup) Add(err error) {
	if err != nil {
		g.errors = append(g.errors, err)
	}
}

// AddPrefix добавляет ошибку с префиксом в группу
func (g *ErrorGroup) AddPrefix(err error, prefix string) {
	if err != nil {
		g.errors = append(g.errors, AppendPrefix(err, prefix))
	}
}

func (g *ErrorGroup) HasErrors() bool {
	return len(g.errors) > 0
}

// Err возвращает группу как ошибку или nil, если ошибок не было
func (g *ErrorGroup) Err() error {
	if !g.HasErrors() {
		return nil
	}
	return g
}

func (g *ErrorGroup) Error() string {
	var sb strings.Builder
	for i, err := range g.errors {
		if i > 0 {
			sb.WriteString("; ")
		}
		sb.WriteString(err.Error())
	}
	return sb.String()
}

// Unwrap позволяет errors.Is находить ошибки внутри группы
func (g *ErrorGroup) Unwrap() []error {
	return g.errors
}
