package eventlog

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/suivest/suivest-go/internal/domain"
)

func depositEvent(t *testing.T) *domain.ChainEvent {
	t.Helper()
	payload, err := json.Marshal(domain.DepositedPayload{
		UserID: uuid.New(),
		Amount: 5_000_000,
	})
	require.NoError(t, err)

	return &domain.ChainEvent{
		VaultID:     uuid.New(),
		EventType:   domain.EventDeposited,
		TxHash:      "0xabc123",
		BlockHeight: 42,
		Payload:     payload,
	}
}

func TestRecordAccepted(t *testing.T) {
	repo := new(MockEventLogRepository)
	svc := NewService(repo)

	evt := depositEvent(t)
	repo.On("InsertEvent", mock.Anything, evt).Return(true, nil)

	outcome, err := svc.Record(context.Background(), evt)
	require.NoError(t, err)
	assert.Equal(t, OutcomeAccepted, outcome)
	assert.True(t, evt.PayloadValid)
	assert.False(t, evt.ReceivedAt.IsZero())
	repo.AssertExpectations(t)
}

func TestRecordDuplicate(t *testing.T) {
	repo := new(MockEventLogRepository)
	svc := NewService(repo)

	evt := depositEvent(t)
	repo.On("InsertEvent", mock.Anything, evt).Return(false, nil)

	outcome, err := svc.Record(context.Background(), evt)
	require.NoError(t, err)
	assert.Equal(t, OutcomeDuplicate, outcome)
	repo.AssertExpectations(t)
}

func TestRecordInvalidPayloadStillRecorded(t *testing.T) {
	repo := new(MockEventLogRepository)
	svc := NewService(repo)

	evt := depositEvent(t)
	evt.Payload = json.RawMessage(`{"user_id":"not-a-uuid"}`)
	repo.On("InsertEvent", mock.Anything, evt).Return(true, nil)

	outcome, err := svc.Record(context.Background(), evt)
	require.NoError(t, err)
	assert.Equal(t, OutcomeAccepted, outcome)
	assert.False(t, evt.PayloadValid)
	repo.AssertExpectations(t)
}

func TestRecordUnknownEventTypeFlaggedInvalid(t *testing.T) {
	repo := new(MockEventLogRepository)
	svc := NewService(repo)

	evt := depositEvent(t)
	evt.EventType = domain.EventType("mystery")
	repo.On("InsertEvent", mock.Anything, evt).Return(true, nil)

	outcome, err := svc.Record(context.Background(), evt)
	require.NoError(t, err)
	assert.Equal(t, OutcomeAccepted, outcome)
	assert.False(t, evt.PayloadValid)
}

func TestRecordMissingRequiredField(t *testing.T) {
	repo := new(MockEventLogRepository)
	svc := NewService(repo)

	evt := depositEvent(t)
	payload, err := json.Marshal(map[string]any{"user_id": uuid.New(), "amount": 0})
	require.NoError(t, err)
	evt.Payload = payload
	repo.On("InsertEvent", mock.Anything, evt).Return(true, nil)

	_, err = svc.Record(context.Background(), evt)
	require.NoError(t, err)
	assert.False(t, evt.PayloadValid)
}

func TestRecordInsertFailure(t *testing.T) {
	repo := new(MockEventLogRepository)
	svc := NewService(repo)

	evt := depositEvent(t)
	repo.On("InsertEvent", mock.Anything, evt).Return(false, errors.New("connection refused"))

	_, err := svc.Record(context.Background(), evt)
	require.Error(t, err)
	assert.Contains(t, err.Error(), ErrContextFailedToInsert)
}

func TestDrainedThrough(t *testing.T) {
	vaultID := uuid.New()

	t.Run("drained when nothing pending", func(t *testing.T) {
		repo := new(MockEventLogRepository)
		svc := NewService(repo)
		repo.On("HasUnprocessedAtOrBelow", mock.Anything, vaultID, int64(100)).Return(false, nil)

		drained, err := svc.DrainedThrough(context.Background(), vaultID, 100)
		require.NoError(t, err)
		assert.True(t, drained)
	})

	t.Run("not drained with pending events", func(t *testing.T) {
		repo := new(MockEventLogRepository)
		svc := NewService(repo)
		repo.On("HasUnprocessedAtOrBelow", mock.Anything, vaultID, int64(100)).Return(true, nil)

		drained, err := svc.DrainedThrough(context.Background(), vaultID, 100)
		require.NoError(t, err)
		assert.False(t, drained)
	})
}

func TestDequeuePassesThrough(t *testing.T) {
	repo := new(MockEventLogRepository)
	svc := NewService(repo)

	vaultID := uuid.New()
	events := []domain.ChainEvent{{Seq: 1}, {Seq: 2}}
	repo.On("DequeueUnprocessed", mock.Anything, vaultID, 50).Return(events, nil)

	got, err := svc.Dequeue(context.Background(), vaultID, 50)
	require.NoError(t, err)
	assert.Equal(t, events, got)
}
