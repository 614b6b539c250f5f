package sagahandler

import (
	"context"
	"errors"
	"log"
	"os"
	"testing"
	"time"

	"github.com/director74/order_saga/pkg/saga"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockEventPublisher мок для публикации событий
type MockEventPublisher struct {
	mock.Mock
	Published []saga.Event
}

func (m *MockEventPublisher) Publish(ctx context.Context, topic saga.Topic, event saga.Event) error {
	m.Published = append(m.Published, event)
	args := m.Called(ctx, topic, event)
	return args.Error(0)
}

// MockParticipant мок участника саги
type MockParticipant struct {
	mock.Mock
}

func (m *MockParticipant) Source() saga.Source { return saga.SourcePayment }
func (m *MockParticipant) Name() string        { return "Payment" }

func (m *MockParticipant) Exists(ctx context.Context, orderID, transactionID string) (bool, error) {
	args := m.Called(ctx, orderID, transactionID)
	return args.Bool(0), args.Error(1)
}

func (m *MockParticipant) Execute(ctx context.Context, event saga.Event) (saga.Event, error) {
	args := m.Called(ctx, event)
	return args.Get(0).(saga.Event), args.Error(1)
}

func (m *MockParticipant) Compensate(ctx context.Context, event saga.Event) (saga.Event, error) {
	args := m.Called(ctx, event)
	return args.Get(0).(saga.Event), args.Error(1)
}

var testNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func newTestExecutor(participant *MockParticipant, publisher *MockEventPublisher) *Executor {
	logger := log.New(os.Stdout, "[TEST] ", log.LstdFlags)
	return NewExecutor(participant, publisher, logger, nil).WithClock(func() time.Time { return testNow })
}

func testEvent() saga.Event {
	return saga.Event{
		ID:            "event-1",
		OrderID:       "order-1",
		TransactionID: "tx-1",
		Source:        saga.SourceProductValidation,
		Status:        saga.StatusSuccess,
		Payload: saga.Order{
			ID:            "order-1",
			TransactionID: "tx-1",
			Products: []saga.OrderProducts{
				{Product: saga.Product{Code: "COMIC_BOOKS", UnitValue: 15.5}, Quantity: 2},
			},
		},
	}
}

func TestExecutor_HandleExecute_Success(t *testing.T) {
	// Создаем моки
	participant := new(MockParticipant)
	publisher := new(MockEventPublisher)
	executor := newTestExecutor(participant, publisher)

	event := testEvent()
	participant.On("Exists", mock.Anything, "order-1", "tx-1").Return(false, nil)
	participant.On("Execute", mock.Anything, mock.Anything).Return(event, nil)
	publisher.On("Publish", mock.Anything, saga.TopicOrchestrator, mock.Anything).Return(nil)

	result := executor.HandleExecute(context.Background(), event)

	assert.Equal(t, saga.SourcePayment, result.Source)
	assert.Equal(t, saga.StatusSuccess, result.Status)
	last, ok := result.LastHistory()
	require.True(t, ok)
	assert.Equal(t, "Payment completed successfully", last.Message)
	assert.Equal(t, testNow, last.CreatedAt)

	require.Len(t, publisher.Published, 1)
	assert.Equal(t, result, publisher.Published[0])
	participant.AssertExpectations(t)
	publisher.AssertExpectations(t)
}

func TestExecutor_HandleExecute_BusinessFailure(t *testing.T) {
	participant := new(MockParticipant)
	publisher := new(MockEventPublisher)
	executor := newTestExecutor(participant, publisher)

	event := testEvent()
	participant.On("Exists", mock.Anything, "order-1", "tx-1").Return(false, nil)
	participant.On("Execute", mock.Anything, mock.Anything).
		Return(event, &saga.InvalidAmountError{Amount: 0.05, Min: 0.1})
	publisher.On("Publish", mock.Anything, saga.TopicOrchestrator, mock.Anything).Return(nil)

	result := executor.HandleExecute(context.Background(), event)

	assert.Equal(t, saga.StatusRollbackPending, result.Status)
	last, _ := result.LastHistory()
	assert.Equal(t, "Payment failed: amount 0.05 must be greater than 0.1", last.Message)
	require.Len(t, publisher.Published, 1)
}

func TestExecutor_HandleExecute_Duplicate(t *testing.T) {
	participant := new(MockParticipant)
	publisher := new(MockEventPublisher)
	executor := newTestExecutor(participant, publisher)

	participant.On("Exists", mock.Anything, "order-1", "tx-1").Return(true, nil)
	publisher.On("Publish", mock.Anything, saga.TopicOrchestrator, mock.Anything).Return(nil)

	result := executor.HandleExecute(context.Background(), testEvent())

	// Повторное выполнение не вызывает Execute
	participant.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything)
	assert.Equal(t, saga.StatusRollbackPending, result.Status)
	last, _ := result.LastHistory()
	assert.Contains(t, last.Message, saga.ErrDuplicateExecution.Error())
}

func TestExecutor_HandleExecute_InvalidEvent(t *testing.T) {
	participant := new(MockParticipant)
	publisher := new(MockEventPublisher)
	executor := newTestExecutor(participant, publisher)

	publisher.On("Publish", mock.Anything, saga.TopicOrchestrator, mock.Anything).Return(nil)

	event := testEvent()
	event.TransactionID = ""
	result := executor.HandleExecute(context.Background(), event)

	participant.AssertNotCalled(t, "Exists", mock.Anything, mock.Anything, mock.Anything)
	assert.Equal(t, saga.StatusRollbackPending, result.Status)
}

func TestExecutor_HandleExecute_DoesNotMutateInput(t *testing.T) {
	participant := new(MockParticipant)
	publisher := new(MockEventPublisher)
	executor := newTestExecutor(participant, publisher)

	event := testEvent().WithHistory("Saga started!", testNow.Add(-time.Minute))
	participant.On("Exists", mock.Anything, "order-1", "tx-1").Return(false, nil)
	participant.On("Execute", mock.Anything, mock.Anything).Return(event, nil)
	publisher.On("Publish", mock.Anything, saga.TopicOrchestrator, mock.Anything).Return(nil)

	result := executor.HandleExecute(context.Background(), event)

	assert.Len(t, event.EventHistory, 1)
	assert.Len(t, result.EventHistory, 2)
	assert.Equal(t, saga.SourceProductValidation, event.Source)
}

func TestExecutor_HandleExecute_PublishErrorSwallowed(t *testing.T) {
	participant := new(MockParticipant)
	publisher := new(MockEventPublisher)
	executor := newTestExecutor(participant, publisher)

	event := testEvent()
	participant.On("Exists", mock.Anything, "order-1", "tx-1").Return(false, nil)
	participant.On("Execute", mock.Anything, mock.Anything).Return(event, nil)
	publisher.On("Publish", mock.Anything, saga.TopicOrchestrator, mock.Anything).Return(errors.New("broker unavailable"))

	assert.NotPanics(t, func() {
		result := executor.HandleExecute(context.Background(), event)
		assert.Equal(t, saga.StatusSuccess, result.Status)
	})
}

func TestExecutor_HandleCompensate(t *testing.T) {
	participant := new(MockParticipant)
	publisher := new(MockEventPublisher)
	executor := newTestExecutor(participant, publisher)

	event := testEvent()
	event.Source = saga.SourceInventory
	event.Status = saga.StatusFail

	participant.On("Compensate", mock.Anything, mock.MatchedBy(func(e saga.Event) bool {
		return e.Source == saga.SourcePayment && e.Status == saga.StatusFail
	})).Return(event, nil)
	publisher.On("Publish", mock.Anything, saga.TopicOrchestrator, mock.Anything).Return(nil)

	result := executor.HandleCompensate(context.Background(), event)

	assert.Equal(t, saga.SourcePayment, result.Source)
	assert.Equal(t, saga.StatusFail, result.Status)
	last, _ := result.LastHistory()
	assert.Equal(t, "Payment rollback", last.Message)
	participant.AssertExpectations(t)
}

func TestExecutor_HandleCompensate_Failure(t *testing.T) {
	participant := new(MockParticipant)
	publisher := new(MockEventPublisher)
	executor := newTestExecutor(participant, publisher)

	event := testEvent()
	participant.On("Compensate", mock.Anything, mock.Anything).Return(saga.Event{}, saga.ErrRecordNotFound)
	publisher.On("Publish", mock.Anything, saga.TopicOrchestrator, mock.Anything).Return(nil)

	result := executor.HandleCompensate(context.Background(), event)

	// Ошибка компенсации не прерывает сагу, событие публикуется со статусом FAIL
	assert.Equal(t, saga.StatusFail, result.Status)
	assert.Equal(t, "tx-1", result.TransactionID)
	last, _ := result.LastHistory()
	assert.Equal(t, "Payment rollback failed: compensation record not found", last.Message)
	require.Len(t, publisher.Published, 1)
}
