package server

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/suivest/suivest-go/internal/domain"
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

// MockRounds is a mock implementation of repository.Rounds
type MockRounds struct {
	mock.Mock
}

func (m *MockRounds) GetCurrentRound(ctx context.Context, vaultID uuid.UUID) (*domain.Round, error) {
	args := m.Called(ctx, vaultID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Round), args.Error(1)
}

func (m *MockRounds) GetRoundByNumber(ctx context.Context, vaultID uuid.UUID, roundNumber int64) (*domain.Round, error) {
	args := m.Called(ctx, vaultID, roundNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Round), args.Error(1)
}

func (m *MockRounds) GetRound(ctx context.Context, roundID uuid.UUID) (*domain.Round, error) {
	args := m.Called(ctx, roundID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Round), args.Error(1)
}

func (m *MockRounds) CreateRound(ctx context.Context, round *domain.Round) error {
	args := m.Called(ctx, round)
	return args.Error(0)
}

func (m *MockRounds) UpdateRoundStateIfMatches(ctx context.Context, roundID uuid.UUID, expected, next domain.RoundState) (int64, error) {
	args := m.Called(ctx, roundID, expected, next)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRounds) LockRound(ctx context.Context, roundID uuid.UUID, totalTickets int64) (int64, error) {
	args := m.Called(ctx, roundID, totalTickets)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRounds) SetRandomnessRequested(ctx context.Context, roundID uuid.UUID, handle string) (int64, error) {
	args := m.Called(ctx, roundID, handle)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRounds) SetRoundSeed(ctx context.Context, roundID uuid.UUID, seed string) error {
	args := m.Called(ctx, roundID, seed)
	return args.Error(0)
}

func (m *MockRounds) FlagRoundStuck(ctx context.Context, roundID uuid.UUID) error {
	args := m.Called(ctx, roundID)
	return args.Error(0)
}

func (m *MockRounds) ListWinners(ctx context.Context, roundID uuid.UUID) ([]domain.Winner, error) {
	args := m.Called(ctx, roundID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Winner), args.Error(1)
}

func (m *MockRounds) ListWinnersByVault(ctx context.Context, vaultID uuid.UUID, limit int) ([]domain.Winner, error) {
	args := m.Called(ctx, vaultID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Winner), args.Error(1)
}

func (m *MockRounds) ListFinalizedRounds(ctx context.Context, vaultID uuid.UUID, limit int) ([]domain.Round, error) {
	args := m.Called(ctx, vaultID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Round), args.Error(1)
}

func (m *MockRounds) SumWinnerPrizes(ctx context.Context, roundID uuid.UUID) (int64, error) {
	args := m.Called(ctx, roundID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRounds) BeginFinalizeTx(ctx context.Context) (repository.FinalizeTx, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(repository.FinalizeTx), args.Error(1)
}
