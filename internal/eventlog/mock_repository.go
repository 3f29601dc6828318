package eventlog

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/suivest/suivest-go/internal/domain"
)

// MockEventLogRepository is a mock implementation of repository.EventLog
type MockEventLogRepository struct {
	mock.Mock
}

func (m *MockEventLogRepository) InsertEvent(ctx context.Context, evt *domain.ChainEvent) (bool, error) {
	args := m.Called(ctx, evt)
	return args.Bool(0), args.Error(1)
}

func (m *MockEventLogRepository) DequeueUnprocessed(ctx context.Context, vaultID uuid.UUID, limit int) ([]domain.ChainEvent, error) {
	args := m.Called(ctx, vaultID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ChainEvent), args.Error(1)
}

func (m *MockEventLogRepository) VaultsWithUnprocessed(ctx context.Context) ([]uuid.UUID, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

func (m *MockEventLogRepository) HasUnprocessedAtOrBelow(ctx context.Context, vaultID uuid.UUID, blockHeight int64) (bool, error) {
	args := m.Called(ctx, vaultID, blockHeight)
	return args.Bool(0), args.Error(1)
}
