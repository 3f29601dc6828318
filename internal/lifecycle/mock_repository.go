package lifecycle

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/suivest/suivest-go/internal/domain"
	"github.com/suivest/suivest-go/internal/eventlog"
	"github.com/suivest/suivest-go/internal/gateway"
	"github.com/suivest/suivest-go/internal/repository"
)

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

// MockFinalizeTx is a mock implementation of repository.FinalizeTx
type MockFinalizeTx struct {
	mock.Mock
}

func (m *MockFinalizeTx) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockFinalizeTx) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockFinalizeTx) InsertWinner(ctx context.Context, w *domain.Winner) error {
	args := m.Called(ctx, w)
	return args.Error(0)
}

func (m *MockFinalizeTx) FinalizeRound(ctx context.Context, roundID uuid.UUID) (int64, error) {
	args := m.Called(ctx, roundID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockFinalizeTx) IncrementVaultPrizes(ctx context.Context, vaultID uuid.UUID, amount int64) error {
	args := m.Called(ctx, vaultID, amount)
	return args.Error(0)
}

func (m *MockFinalizeTx) UpsertStreak(ctx context.Context, st *domain.StreakState) error {
	args := m.Called(ctx, st)
	return args.Error(0)
}

func (m *MockFinalizeTx) CreateRound(ctx context.Context, round *domain.Round) error {
	args := m.Called(ctx, round)
	return args.Error(0)
}

func (m *MockFinalizeTx) CarryTicketBalances(ctx context.Context, vaultID uuid.UUID, fromRound, toRound int64) error {
	args := m.Called(ctx, vaultID, fromRound, toRound)
	return args.Error(0)
}

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

// MockGateway is a mock implementation of gateway.Gateway
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

func (m *MockGateway) QueryRandomness(ctx context.Context, handle string) (*gateway.RandomnessStatus, error) {
	args := m.Called(ctx, handle)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gateway.RandomnessStatus), args.Error(1)
}

func (m *MockGateway) ClaimPrize(ctx context.Context, vaultID, userID uuid.UUID) (string, error) {
	args := m.Called(ctx, vaultID, userID)
	return args.String(0), args.Error(1)
}

func (m *MockGateway) DistributePrizes(ctx context.Context, vaultID uuid.UUID, roundNumber int64, payouts []gateway.PrizePayout) (string, error) {
	args := m.Called(ctx, vaultID, roundNumber, payouts)
	return args.String(0), args.Error(1)
}

func (m *MockGateway) WaitForTransaction(ctx context.Context, txHash string) error {
	args := m.Called(ctx, txHash)
	return args.Error(0)
}
