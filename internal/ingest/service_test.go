package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/suivest/suivest-go/internal/domain"
	"github.com/suivest/suivest-go/internal/eventlog"
	"github.com/suivest/suivest-go/internal/gateway"
)

// MockEventLog is a mock implementation of eventlog.Service
type MockEventLog struct {
	mock.Mock
}

func (m *MockEventLog) Record(ctx context.Context, evt *domain.ChainEvent) (eventlog.Outcome, error) {
	args := m.Called(ctx, evt)
	return args.Get(0).(eventlog.Outcome), args.Error(1)
}

func (m *MockEventLog) Dequeue(ctx context.Context, vaultID uuid.UUID, limit int) ([]domain.ChainEvent, error) {
	args := m.Called(ctx, vaultID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ChainEvent), args.Error(1)
}

func (m *MockEventLog) VaultsWithWork(ctx context.Context) ([]uuid.UUID, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

func (m *MockEventLog) DrainedThrough(ctx context.Context, vaultID uuid.UUID, blockHeight int64) (bool, error) {
	args := m.Called(ctx, vaultID, blockHeight)
	return args.Bool(0), args.Error(1)
}

// scriptedFeed delivers a fixed batch of events per Subscribe call and then
// returns the configured error.
type scriptedFeed struct {
	events     []domain.ChainEvent
	err        error
	subscribes int
}

func (f *scriptedFeed) Subscribe(ctx context.Context, handler gateway.EventHandler) error {
	f.subscribes++
	for i := range f.events {
		if err := handler(ctx, &f.events[i]); err != nil {
			return err
		}
	}
	return f.err
}

func chainEvent(eventType domain.EventType) domain.ChainEvent {
	return domain.ChainEvent{
		VaultID:     uuid.New(),
		TxHash:      uuid.NewString(),
		EventType:   eventType,
		BlockHeight: 42,
		Payload:     json.RawMessage(`{}`),
	}
}

func TestIngestRecordsEvent(t *testing.T) {
	log := new(MockEventLog)
	svc := NewService(&scriptedFeed{}, log)
	evt := chainEvent(domain.EventDeposited)

	log.On("Record", mock.Anything, &evt).Return(eventlog.OutcomeAccepted, nil)

	require.NoError(t, svc.Ingest(context.Background(), &evt))
	log.AssertExpectations(t)
}

func TestIngestDuplicateIsSuccess(t *testing.T) {
	log := new(MockEventLog)
	svc := NewService(&scriptedFeed{}, log)
	evt := chainEvent(domain.EventWithdrawn)

	log.On("Record", mock.Anything, &evt).Return(eventlog.OutcomeDuplicate, nil)

	require.NoError(t, svc.Ingest(context.Background(), &evt))
}

func TestIngestPropagatesStoreFailure(t *testing.T) {
	log := new(MockEventLog)
	svc := NewService(&scriptedFeed{}, log)
	evt := chainEvent(domain.EventDeposited)

	storeErr := errors.New("connection refused")
	log.On("Record", mock.Anything, &evt).Return(eventlog.Outcome(""), storeErr)

	err := svc.Ingest(context.Background(), &evt)
	require.Error(t, err)
	assert.ErrorIs(t, err, storeErr)
	assert.Contains(t, err.Error(), ErrContextFailedToRecord)
}

func TestRunDeliversFeedEventsToLog(t *testing.T) {
	log := new(MockEventLog)
	feed := &scriptedFeed{
		events: []domain.ChainEvent{
			chainEvent(domain.EventDeposited),
			chainEvent(domain.EventYieldHarvested),
		},
		err: errors.New("stream closed"),
	}
	svc := NewService(feed, log)

	log.On("Record", mock.Anything, mock.Anything).Return(eventlog.OutcomeAccepted, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		svc.Run(ctx)
		close(done)
	}()

	// Wait for the first pass to record both events, then stop the loop
	// before the reconnect backoff fires again.
	assert.Eventually(t, func() bool {
		return len(log.Calls) >= 2
	}, 2*time.Second, 10*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop after cancellation")
	}
	assert.GreaterOrEqual(t, feed.subscribes, 1)
}
