package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/director74/order_saga/order-service/internal/entity"
	"github.com/director74/order_saga/pkg/auth"
	"github.com/director74/order_saga/pkg/config"
	"github.com/director74/order_saga/pkg/errors"
)

const clientSecretLength = 32

// TokenIssuer выпускает JWT токены
type TokenIssuer interface {
	GenerateToken(clientID, clientName string) (string, error)
	TokenTTL() time.Duration
}

// AuthUseCase регистрирует API клиентов и выдает им токены
type AuthUseCase struct {
	clients ClientRepository
	tokens  TokenIssuer
}

func NewAuthUseCase(clients ClientRepository, tokens TokenIssuer) *AuthUseCase {
	return &AuthUseCase{
		clients: clients,
		tokens:  tokens,
	}
}

// RegisterClient создает клиента со случайным секретом, в базе хранится только его хеш
func (uc *AuthUseCase) RegisterClient(ctx context.Context, req entity.RegisterClientRequest) (*entity.RegisterClientResponse, error) {
	secret := config.GenerateRandomKey(clientSecretLength)
	hash, err := auth.HashSecret(secret)
	if err != nil {
		return nil, errors.NewInternalServerError(err)
	}

	client := &entity.Client{
		ID:         uuid.NewString(),
		Name:       req.Name,
		SecretHash: hash,
	}
	if err := uc.clients.Create(ctx, client); err != nil {
		return nil, err
	}

	return &entity.RegisterClientResponse{
		ClientID:     client.ID,
		ClientName:   client.Name,
		ClientSecret: secret,
		CreatedAt:    client.CreatedAt,
	}, nil
}

// IssueToken проверяет учетные данные клиента и выдает JWT
func (uc *AuthUseCase) IssueToken(ctx context.Context, req entity.TokenRequest) (*entity.TokenResponse, error) {
	client, err := uc.clients.GetByID(ctx, req.ClientID)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, errors.NewUnauthorizedError("неверные учетные данные")
		}
		return nil, err
	}

	if !auth.CheckSecretHash(req.ClientSecret, client.SecretHash) {
		return nil, errors.NewUnauthorizedError("неверные учетные данные")
	}

	token, err := uc.tokens.GenerateToken(client.ID, client.Name)
	if err != nil {
		return nil, errors.NewInternalServerError(err)
	}

	return &entity.TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(uc.tokens.TokenTTL().Seconds()),
	}, nil
}
