package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/director74/order_saga/order-service/internal/entity"
	"github.com/director74/order_saga/pkg/database"
	"github.com/director74/order_saga/pkg/errors"
)

// ClientRepo репозиторий API клиентов
type ClientRepo struct {
	db *gorm.DB
}

func NewClientRepository(db *gorm.DB) *ClientRepo {
	return &ClientRepo{db: db}
}

// Create сохраняет клиента, имя клиента уникально
func (r *ClientRepo) Create(ctx context.Context, client *entity.Client) error {
	err := r.db.WithContext(ctx).Create(client).Error
	if database.IsDuplicateKey(err) {
		return errors.NewAlreadyExistsError("Клиент", "clientName", client.Name)
	}
	return err
}

// GetByID возвращает клиента по идентификатору
func (r *ClientRepo) GetByID(ctx context.Context, id string) (*entity.Client, error) {
	var client entity.Client
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&client).Error
	if database.IsNotFound(err) {
		return nil, errors.NewNotFoundError("Клиент", id)
	}
	if err != nil {
		return nil, err
	}
	return &client, nil
}
