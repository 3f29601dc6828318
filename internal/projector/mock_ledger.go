package projector

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/suivest/suivest-go/internal/domain"
	"github.com/suivest/suivest-go/internal/event"
	"github.com/suivest/suivest-go/internal/eventlog"
	"github.com/suivest/suivest-go/internal/repository"
)

// MockLedger is a mock implementation of repository.Ledger
type MockLedger struct {
	mock.Mock
}

func (m *MockLedger) BeginTx(ctx context.Context) (repository.LedgerTx, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(repository.LedgerTx), args.Error(1)
}

func (m *MockLedger) GetVault(ctx context.Context, vaultID uuid.UUID) (*domain.Vault, error) {
	args := m.Called(ctx, vaultID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Vault), args.Error(1)
}

func (m *MockLedger) ListActiveVaults(ctx context.Context) ([]domain.Vault, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Vault), args.Error(1)
}

func (m *MockLedger) HaltVault(ctx context.Context, vaultID uuid.UUID) error {
	args := m.Called(ctx, vaultID)
	return args.Error(0)
}

func (m *MockLedger) GetTicketBalance(ctx context.Context, userID, vaultID uuid.UUID, roundNumber int64) (*domain.TicketBalance, error) {
	args := m.Called(ctx, userID, vaultID, roundNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TicketBalance), args.Error(1)
}

func (m *MockLedger) ListTicketBalances(ctx context.Context, vaultID uuid.UUID, roundNumber int64) ([]domain.TicketBalance, error) {
	args := m.Called(ctx, vaultID, roundNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.TicketBalance), args.Error(1)
}

func (m *MockLedger) SumTicketBalances(ctx context.Context, vaultID uuid.UUID, roundNumber int64) (int64, int64, error) {
	args := m.Called(ctx, vaultID, roundNumber)
	return args.Get(0).(int64), args.Get(1).(int64), args.Error(2)
}

func (m *MockLedger) GetStreak(ctx context.Context, userID, vaultID uuid.UUID) (*domain.StreakState, error) {
	args := m.Called(ctx, userID, vaultID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.StreakState), args.Error(1)
}

func (m *MockLedger) ListStreaks(ctx context.Context, vaultID uuid.UUID) ([]domain.StreakState, error) {
	args := m.Called(ctx, vaultID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.StreakState), args.Error(1)
}

func (m *MockLedger) SumConfirmedDeposits(ctx context.Context, vaultID uuid.UUID) (int64, error) {
	args := m.Called(ctx, vaultID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLedger) SumConfirmedWithdrawals(ctx context.Context, vaultID uuid.UUID) (int64, error) {
	args := m.Called(ctx, vaultID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLedger) ListDeposits(ctx context.Context, userID, vaultID uuid.UUID, limit int) ([]domain.Deposit, error) {
	args := m.Called(ctx, userID, vaultID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Deposit), args.Error(1)
}

func (m *MockLedger) ListWithdrawals(ctx context.Context, userID, vaultID uuid.UUID, limit int) ([]domain.Withdrawal, error) {
	args := m.Called(ctx, userID, vaultID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Withdrawal), args.Error(1)
}

// MockLedgerTx is a mock implementation of repository.LedgerTx
type MockLedgerTx struct {
	mock.Mock
}

func (m *MockLedgerTx) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockLedgerTx) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockLedgerTx) UpsertDeposit(ctx context.Context, dep *domain.Deposit) error {
	args := m.Called(ctx, dep)
	return args.Error(0)
}

func (m *MockLedgerTx) UpsertWithdrawal(ctx context.Context, wd *domain.Withdrawal) error {
	args := m.Called(ctx, wd)
	return args.Error(0)
}

func (m *MockLedgerTx) IncrementVaultDeposits(ctx context.Context, vaultID uuid.UUID, amount int64, participantDelta int) error {
	args := m.Called(ctx, vaultID, amount, participantDelta)
	return args.Error(0)
}

func (m *MockLedgerTx) IncrementVaultWithdrawals(ctx context.Context, vaultID uuid.UUID, amount int64, participantDelta int) error {
	args := m.Called(ctx, vaultID, amount, participantDelta)
	return args.Error(0)
}

func (m *MockLedgerTx) GetTicketBalanceForUpdate(ctx context.Context, userID, vaultID uuid.UUID, roundNumber int64) (*domain.TicketBalance, error) {
	args := m.Called(ctx, userID, vaultID, roundNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TicketBalance), args.Error(1)
}

func (m *MockLedgerTx) UpsertTicketBalance(ctx context.Context, bal *domain.TicketBalance) error {
	args := m.Called(ctx, bal)
	return args.Error(0)
}

func (m *MockLedgerTx) GetStreakForUpdate(ctx context.Context, userID, vaultID uuid.UUID) (*domain.StreakState, error) {
	args := m.Called(ctx, userID, vaultID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.StreakState), args.Error(1)
}

func (m *MockLedgerTx) UpsertStreak(ctx context.Context, st *domain.StreakState) error {
	args := m.Called(ctx, st)
	return args.Error(0)
}

func (m *MockLedgerTx) GetRoundByNumber(ctx context.Context, vaultID uuid.UUID, roundNumber int64) (*domain.Round, error) {
	args := m.Called(ctx, vaultID, roundNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Round), args.Error(1)
}

func (m *MockLedgerTx) GetCurrentRound(ctx context.Context, vaultID uuid.UUID) (*domain.Round, error) {
	args := m.Called(ctx, vaultID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Round), args.Error(1)
}

func (m *MockLedgerTx) UpdateRoundStateIfMatches(ctx context.Context, roundID uuid.UUID, expected, next domain.RoundState) (int64, error) {
	args := m.Called(ctx, roundID, expected, next)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLedgerTx) SetRoundSeed(ctx context.Context, roundID uuid.UUID, seed string) error {
	args := m.Called(ctx, roundID, seed)
	return args.Error(0)
}

func (m *MockLedgerTx) AddToPrizePool(ctx context.Context, roundID uuid.UUID, amount int64) error {
	args := m.Called(ctx, roundID, amount)
	return args.Error(0)
}

func (m *MockLedgerTx) MarkWinnerClaimed(ctx context.Context, roundID, userID uuid.UUID) (int64, error) {
	args := m.Called(ctx, roundID, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLedgerTx) MarkEventProcessed(ctx context.Context, seq int64) error {
	args := m.Called(ctx, seq)
	return args.Error(0)
}

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

// MockBus is a mock implementation of event.Bus
type MockBus struct {
	mock.Mock
}

func (m *MockBus) Publish(ctx context.Context, evt event.Event) error {
	args := m.Called(ctx, evt)
	return args.Error(0)
}

func (m *MockBus) Subscribe(eventType event.Type, handler event.Handler) {
	m.Called(eventType, handler)
}
