package usecase

import (
	"context"
	"errors"
	"log"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/director74/order_saga/order-service/internal/entity"
	pkgErrors "github.com/director74/order_saga/pkg/errors"
	"github.com/director74/order_saga/pkg/saga"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockOrderRepository мок для репозитория заказов
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) CreateWithEvent(ctx context.Context, order *entity.Order, event *entity.Event) error {
	args := m.Called(ctx, order, event)
	return args.Error(0)
}

func (m *MockOrderRepository) GetByID(ctx context.Context, id string) (*entity.Order, error) {
	args := m.Called(ctx, id)
	order, _ := args.Get(0).(*entity.Order)
	return order, args.Error(1)
}

func (m *MockOrderRepository) UpdateStatus(ctx context.Context, id string, status entity.OrderStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockOrderRepository) SaveEvent(ctx context.Context, event *entity.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockOrderRepository) FindAllEvents(ctx context.Context) ([]entity.Event, error) {
	args := m.Called(ctx)
	events, _ := args.Get(0).([]entity.Event)
	return events, args.Error(1)
}

func (m *MockOrderRepository) FindLatestEventByOrderID(ctx context.Context, orderID string) (*entity.Event, error) {
	args := m.Called(ctx, orderID)
	event, _ := args.Get(0).(*entity.Event)
	return event, args.Error(1)
}

func (m *MockOrderRepository) FindLatestEventByTransactionID(ctx context.Context, transactionID string) (*entity.Event, error) {
	args := m.Called(ctx, transactionID)
	event, _ := args.Get(0).(*entity.Event)
	return event, args.Error(1)
}

// MockEventPublisher мок для публикации событий саги
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, topic saga.Topic, event saga.Event) error {
	args := m.Called(ctx, topic, event)
	return args.Error(0)
}

var fixedNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func newOrderUseCase(repo *MockOrderRepository, publisher *MockEventPublisher) *OrderUseCase {
	return NewOrderUseCase(repo, publisher, log.New(os.Stdout, "[TEST] ", log.LstdFlags)).
		WithClock(func() time.Time { return fixedNow })
}

func orderRequest() entity.CreateOrderRequest {
	return entity.CreateOrderRequest{Products: []saga.OrderProducts{
		{Product: saga.Product{Code: "COMIC_BOOKS", UnitValue: 15.5}, Quantity: 3},
		{Product: saga.Product{Code: "BOOKS", UnitValue: 9.9}, Quantity: 2},
	}}
}

func TestCreateOrder_PublishesStartSaga(t *testing.T) {
	repo := new(MockOrderRepository)
	publisher := new(MockEventPublisher)
	uc := newOrderUseCase(repo, publisher)

	var saved *entity.Event
	repo.On("CreateWithEvent", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { saved = args.Get(2).(*entity.Event) }).
		Return(nil)

	var published saga.Event
	publisher.On("Publish", mock.Anything, saga.TopicStartSaga, mock.Anything).
		Run(func(args mock.Arguments) { published = args.Get(2).(saga.Event) }).
		Return(nil)

	order, err := uc.CreateOrder(context.Background(), "client-1", orderRequest())

	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusPending, order.Status)
	assert.Equal(t, "client-1", order.ClientID)
	assert.Equal(t, 5, order.TotalItems)
	assert.InDelta(t, 66.3, order.TotalAmount, 0.0001)

	// transactionId в формате <unix millis>_<uuid>
	assert.True(t, strings.HasPrefix(order.TransactionID, "1709294400000_"))

	assert.Equal(t, order.ID, published.OrderID)
	assert.Equal(t, order.TransactionID, published.TransactionID)
	assert.Equal(t, order.ID, published.Payload.ID)
	assert.Empty(t, published.EventHistory)
	assert.Equal(t, published.ID, saved.ID)
	assert.Equal(t, fixedNow, saved.CreatedAt)
}

func TestCreateOrder_EmptyOrder(t *testing.T) {
	repo := new(MockOrderRepository)
	publisher := new(MockEventPublisher)

	_, err := newOrderUseCase(repo, publisher).CreateOrder(context.Background(), "client-1", entity.CreateOrderRequest{})

	assert.ErrorIs(t, err, saga.ErrEmptyOrder)
	repo.AssertNotCalled(t, "CreateWithEvent", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateOrder_PublishError(t *testing.T) {
	repo := new(MockOrderRepository)
	publisher := new(MockEventPublisher)

	repo.On("CreateWithEvent", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	publisher.On("Publish", mock.Anything, saga.TopicStartSaga, mock.Anything).Return(errors.New("channel closed"))

	_, err := newOrderUseCase(repo, publisher).CreateOrder(context.Background(), "client-1", orderRequest())

	status, _ := pkgErrors.ToHTTPResponse(err)
	assert.Equal(t, 500, status)
}

func TestNotifyEnding(t *testing.T) {
	tests := []struct {
		name   string
		status saga.Status
		want   entity.OrderStatus
	}{
		{"успешная сага", saga.StatusSuccess, entity.OrderStatusSuccess},
		{"сага с ошибкой", saga.StatusFail, entity.OrderStatusFail},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockOrderRepository)
			uc := newOrderUseCase(repo, new(MockEventPublisher))

			repo.On("SaveEvent", mock.Anything, mock.MatchedBy(func(e *entity.Event) bool {
				return e.ID == "event-1" && e.CreatedAt.Equal(fixedNow) && e.Status == tt.status
			})).Return(nil)
			repo.On("UpdateStatus", mock.Anything, "order-1", tt.want).Return(nil)

			err := uc.NotifyEnding(context.Background(), saga.Event{
				ID:            "event-1",
				OrderID:       "order-1",
				TransactionID: "tx-1",
				Source:        saga.SourceOrchestrator,
				Status:        tt.status,
			})

			require.NoError(t, err)
			repo.AssertExpectations(t)
		})
	}
}

func TestNotifyEnding_UnknownOrder(t *testing.T) {
	repo := new(MockOrderRepository)
	uc := newOrderUseCase(repo, new(MockEventPublisher))

	repo.On("SaveEvent", mock.Anything, mock.Anything).Return(nil)
	repo.On("UpdateStatus", mock.Anything, "order-1", entity.OrderStatusFail).
		Return(pkgErrors.NewNotFoundError("Заказ", "order-1"))

	err := uc.NotifyEnding(context.Background(), saga.Event{ID: "event-1", OrderID: "order-1", TransactionID: "tx-1", Status: saga.StatusFail})

	assert.NoError(t, err)
}

func TestNotifyEnding_InvalidEvent(t *testing.T) {
	repo := new(MockOrderRepository)

	err := newOrderUseCase(repo, new(MockEventPublisher)).NotifyEnding(context.Background(), saga.Event{ID: "event-1"})

	assert.ErrorIs(t, err, saga.ErrInvalidEvent)
	repo.AssertNotCalled(t, "SaveEvent", mock.Anything, mock.Anything)
}

func TestFindEventByFilters(t *testing.T) {
	record := entity.NewEventRecord(saga.Event{ID: "event-1", OrderID: "order-1", TransactionID: "tx-1"})

	t.Run("orderId имеет приоритет", func(t *testing.T) {
		repo := new(MockOrderRepository)
		repo.On("FindLatestEventByOrderID", mock.Anything, "order-1").Return(record, nil)

		event, err := newOrderUseCase(repo, new(MockEventPublisher)).
			FindEventByFilters(context.Background(), entity.EventFilters{OrderID: "order-1", TransactionID: "tx-2"})

		require.NoError(t, err)
		assert.Equal(t, "event-1", event.ID)
		repo.AssertNotCalled(t, "FindLatestEventByTransactionID", mock.Anything, mock.Anything)
	})

	t.Run("по transactionId", func(t *testing.T) {
		repo := new(MockOrderRepository)
		repo.On("FindLatestEventByTransactionID", mock.Anything, "tx-1").Return(record, nil)

		event, err := newOrderUseCase(repo, new(MockEventPublisher)).
			FindEventByFilters(context.Background(), entity.EventFilters{TransactionID: "tx-1"})

		require.NoError(t, err)
		assert.Equal(t, "order-1", event.OrderID)
	})

	t.Run("без фильтров", func(t *testing.T) {
		_, err := newOrderUseCase(new(MockOrderRepository), new(MockEventPublisher)).
			FindEventByFilters(context.Background(), entity.EventFilters{})

		status, body := pkgErrors.ToHTTPResponse(err)
		assert.Equal(t, 400, status)
		assert.Equal(t, "orderId or transactionId must be informed", body.Error)
	})

	t.Run("не найдено", func(t *testing.T) {
		repo := new(MockOrderRepository)
		repo.On("FindLatestEventByOrderID", mock.Anything, "order-2").
			Return(nil, pkgErrors.NewNotFoundError("Событие", "order-2"))

		_, err := newOrderUseCase(repo, new(MockEventPublisher)).
			FindEventByFilters(context.Background(), entity.EventFilters{OrderID: "order-2"})

		status, _ := pkgErrors.ToHTTPResponse(err)
		assert.Equal(t, 404, status)
	})
}

func TestFindAllEvents(t *testing.T) {
	repo := new(MockOrderRepository)
	repo.On("FindAllEvents", mock.Anything).Return([]entity.Event{
		*entity.NewEventRecord(saga.Event{ID: "event-2", OrderID: "order-2", TransactionID: "tx-2"}),
		*entity.NewEventRecord(saga.Event{ID: "event-1", OrderID: "order-1", TransactionID: "tx-1"}),
	}, nil)

	events, err := newOrderUseCase(repo, new(MockEventPublisher)).FindAllEvents(context.Background())

	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "event-2", events[0].ID)
}
