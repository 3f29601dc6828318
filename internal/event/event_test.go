package event

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suivest/suivest-go/internal/domain"
)

func TestMemoryBusPublishSubscribe(t *testing.T) {
	bus := NewMemoryBus()

	var received []Event
	bus.Subscribe(DepositConfirmed, func(ctx context.Context, e Event) error {
		received = append(received, e)
		return nil
	})

	evt := NewDepositConfirmedEvent(uuid.New(), uuid.New(), "0xabc", 100, 1, 1)
	require.NoError(t, bus.Publish(context.Background(), evt))

	require.Len(t, received, 1)
	assert.Equal(t, DepositConfirmed, received[0].Type)
	assert.Equal(t, EventSchemaVersion, received[0].Version)
}

func TestMemoryBusNoSubscribers(t *testing.T) {
	bus := NewMemoryBus()
	evt := NewVaultHaltedEvent(uuid.New(), "mismatch")
	assert.NoError(t, bus.Publish(context.Background(), evt))
}

func TestMemoryBusMultipleHandlers(t *testing.T) {
	bus := NewMemoryBus()

	calls := 0
	handler := func(ctx context.Context, e Event) error {
		calls++
		return nil
	}
	bus.Subscribe(RoundLocked, handler)
	bus.Subscribe(RoundLocked, handler)

	round := &domain.Round{ID: uuid.New(), VaultID: uuid.New(), RoundNumber: 1}
	require.NoError(t, bus.Publish(context.Background(), NewRoundLockedEvent(round)))
	assert.Equal(t, 2, calls)
}

func TestMemoryBusHandlerErrorDoesNotStopOthers(t *testing.T) {
	bus := NewMemoryBus()

	secondCalled := false
	bus.Subscribe(RoundStuck, func(ctx context.Context, e Event) error {
		return errors.New("handler exploded")
	})
	bus.Subscribe(RoundStuck, func(ctx context.Context, e Event) error {
		secondCalled = true
		return nil
	})

	round := &domain.Round{ID: uuid.New(), VaultID: uuid.New(), RoundNumber: 2}
	err := bus.Publish(context.Background(), NewRoundStuckEvent(round))
	assert.Error(t, err)
	assert.True(t, secondCalled)
}

func TestDecodePayload(t *testing.T) {
	userID := uuid.New()
	vaultID := uuid.New()
	evt := NewWithdrawalConfirmedEvent(userID, vaultID, "0xdef", 250, -2, 3)

	payload, err := DecodePayload[LedgerEntryPayloadV1](evt.Payload)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), payload.UserID)
	assert.Equal(t, vaultID.String(), payload.VaultID)
	assert.Equal(t, int64(250), payload.Amount)
	assert.Equal(t, int64(-2), payload.TicketsDelta)
}

func TestRoundFinalizedEventCarriesWinners(t *testing.T) {
	round := &domain.Round{ID: uuid.New(), VaultID: uuid.New(), RoundNumber: 5, PrizePool: 1000}
	winners := []domain.Winner{
		{UserID: uuid.New(), Position: 1, PrizeAmount: 625},
		{UserID: uuid.New(), Position: 2, PrizeAmount: 375},
	}

	evt := NewRoundFinalizedEvent(round, winners)
	payload, ok := evt.Payload.(RoundFinalizedPayloadV1)
	require.True(t, ok)
	require.Len(t, payload.Winners, 2)
	assert.Equal(t, int64(1000), payload.PrizePool)
	assert.Equal(t, winners[0].UserID.String(), payload.Winners[0].UserID)
	assert.WithinDuration(t, time.Now(), time.Unix(payload.Timestamp, 0), time.Minute)
}
