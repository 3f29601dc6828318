package gateway

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockGateway is a mock implementation of Gateway
type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) SubmitDeposit(ctx context.Context, vaultID, userID uuid.UUID, amount int64) (string, error) {
	args := m.Called(ctx, vaultID, userID, amount)
	return args.String(0), args.Error(1)
}

func (m *MockGateway) SubmitWithdrawal(ctx context.Context, vaultID, userID uuid.UUID, amount int64) (string, error) {
	args := m.Called(ctx, vaultID, userID, amount)
	return args.String(0), args.Error(1)
}

func (m *MockGateway) StartRound(ctx context.Context, vaultID uuid.UUID, roundNumber int64) (string, error) {
	args := m.Called(ctx, vaultID, roundNumber)
	return args.String(0), args.Error(1)
}

func (m *MockGateway) EndRound(ctx context.Context, vaultID uuid.UUID, roundNumber int64, seed string) (string, error) {
	args := m.Called(ctx, vaultID, roundNumber, seed)
	return args.String(0), args.Error(1)
}

func (m *MockGateway) RequestRandomness(ctx context.Context, vaultID uuid.UUID, roundNumber int64) (string, error) {
	args := m.Called(ctx, vaultID, roundNumber)
	return args.String(0), args.Error(1)
}

func (m *MockGateway) QueryRandomness(ctx context.Context, handle string) (*RandomnessStatus, error) {
	args := m.Called(ctx, handle)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*RandomnessStatus), args.Error(1)
}

func (m *MockGateway) ClaimPrize(ctx context.Context, vaultID, userID uuid.UUID) (string, error) {
	args := m.Called(ctx, vaultID, userID)
	return args.String(0), args.Error(1)
}

func (m *MockGateway) DistributePrizes(ctx context.Context, vaultID uuid.UUID, roundNumber int64, payouts []PrizePayout) (string, error) {
	args := m.Called(ctx, vaultID, roundNumber, payouts)
	return args.String(0), args.Error(1)
}

func (m *MockGateway) WaitForTransaction(ctx context.Context, txHash string) error {
	args := m.Called(ctx, txHash)
	return args.Error(0)
}

func TestRetryingGatewayRecoversFromTransient(t *testing.T) {
	inner := new(MockGateway)
	gw := NewRetryingGateway(inner, 3, time.Millisecond)

	vaultID := uuid.New()
	inner.On("StartRound", mock.Anything, vaultID, int64(1)).
		Return("", Transient(errors.New("timeout"))).Twice()
	inner.On("StartRound", mock.Anything, vaultID, int64(1)).
		Return("0xdeadbeef", nil).Once()

	txHash, err := gw.StartRound(context.Background(), vaultID, 1)
	require.NoError(t, err)
	assert.Equal(t, "0xdeadbeef", txHash)
	inner.AssertNumberOfCalls(t, "StartRound", 3)
}

func TestRetryingGatewayExhaustsAttempts(t *testing.T) {
	inner := new(MockGateway)
	gw := NewRetryingGateway(inner, 2, time.Millisecond)

	vaultID := uuid.New()
	transientErr := Transient(errors.New("node overloaded"))
	inner.On("RequestRandomness", mock.Anything, vaultID, int64(3)).Return("", transientErr)

	_, err := gw.RequestRandomness(context.Background(), vaultID, 3)
	require.Error(t, err)
	assert.True(t, IsTransient(err))
	inner.AssertNumberOfCalls(t, "RequestRandomness", 2)
}

func TestRetryingGatewayPermanentErrorPassesThrough(t *testing.T) {
	inner := new(MockGateway)
	gw := NewRetryingGateway(inner, 5, time.Millisecond)

	vaultID := uuid.New()
	permanent := errors.New("round already started")
	inner.On("StartRound", mock.Anything, vaultID, int64(1)).Return("", permanent)

	_, err := gw.StartRound(context.Background(), vaultID, 1)
	assert.ErrorIs(t, err, permanent)
	inner.AssertNumberOfCalls(t, "StartRound", 1)
}

func TestRetryingGatewayHonorsContextCancellation(t *testing.T) {
	inner := new(MockGateway)
	gw := NewRetryingGateway(inner, 10, 50*time.Millisecond)

	vaultID := uuid.New()
	inner.On("StartRound", mock.Anything, vaultID, int64(1)).
		Return("", Transient(errors.New("timeout")))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := gw.StartRound(ctx, vaultID, 1)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRetryingGatewayQueryRandomness(t *testing.T) {
	inner := new(MockGateway)
	gw := NewRetryingGateway(inner, 3, time.Millisecond)

	status := &RandomnessStatus{Handle: "h1", Fulfilled: true, Seed: "aabb", Proof: "ccdd"}
	inner.On("QueryRandomness", mock.Anything, "h1").
		Return(nil, Transient(errors.New("flaky"))).Once()
	inner.On("QueryRandomness", mock.Anything, "h1").Return(status, nil).Once()

	got, err := gw.QueryRandomness(context.Background(), "h1")
	require.NoError(t, err)
	assert.Equal(t, status, got)
}

func TestWithJitterBounds(t *testing.T) {
	base := 100 * time.Millisecond
	for i := 0; i < 64; i++ {
		d := withJitter(base)
		assert.GreaterOrEqual(t, d, base)
		assert.LessOrEqual(t, d, base+base/2)
	}
}

func TestIsTransient(t *testing.T) {
	assert.True(t, IsTransient(Transient(errors.New("x"))))
	assert.False(t, IsTransient(errors.New("x")))
	assert.NoError(t, Transient(nil))
}
