package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/suivest/suivest-go/internal/domain"
)

// Ledger defines the data access required by the projector and the read-only
// query surface. The projector is the sole writer of derived ledger state.
type Ledger interface {
	// Transaction support: every chain event is applied inside one LedgerTx
	// so derived records, vault aggregates, ticket/streak updates and the
	// processed flag commit or roll back together.
	BeginTx(ctx context.Context) (LedgerTx, error)

	// Vault reads
	GetVault(ctx context.Context, vaultID uuid.UUID) (*domain.Vault, error)
	ListActiveVaults(ctx context.Context) ([]domain.Vault, error)
	HaltVault(ctx context.Context, vaultID uuid.UUID) error

	// Ticket balance reads
	GetTicketBalance(ctx context.Context, userID, vaultID uuid.UUID, roundNumber int64) (*domain.TicketBalance, error)
	ListTicketBalances(ctx context.Context, vaultID uuid.UUID, roundNumber int64) ([]domain.TicketBalance, error)
	SumTicketBalances(ctx context.Context, vaultID uuid.UUID, roundNumber int64) (tickets int64, amount int64, err error)

	// Streak reads
	GetStreak(ctx context.Context, userID, vaultID uuid.UUID) (*domain.StreakState, error)
	ListStreaks(ctx context.Context, vaultID uuid.UUID) ([]domain.StreakState, error)

	// Aggregate verification reads (reconciler)
	SumConfirmedDeposits(ctx context.Context, vaultID uuid.UUID) (int64, error)
	SumConfirmedWithdrawals(ctx context.Context, vaultID uuid.UUID) (int64, error)

	// Record reads (query surface)
	ListDeposits(ctx context.Context, userID, vaultID uuid.UUID, limit int) ([]domain.Deposit, error)
	ListWithdrawals(ctx context.Context, userID, vaultID uuid.UUID, limit int) ([]domain.Withdrawal, error)
}

// LedgerTx extends Tx with the per-event write set of the projector
type LedgerTx interface {
	Tx

	// Derived records. Upserts are keyed on (vault_id, tx_hash) so replaying
	// an event after a crash rewrites the same row.
	UpsertDeposit(ctx context.Context, dep *domain.Deposit) error
	UpsertWithdrawal(ctx context.Context, wd *domain.Withdrawal) error

	// Vault aggregates
	IncrementVaultDeposits(ctx context.Context, vaultID uuid.UUID, amount int64, participantDelta int) error
	IncrementVaultWithdrawals(ctx context.Context, vaultID uuid.UUID, amount int64, participantDelta int) error

	// Ticket balances
	GetTicketBalanceForUpdate(ctx context.Context, userID, vaultID uuid.UUID, roundNumber int64) (*domain.TicketBalance, error)
	UpsertTicketBalance(ctx context.Context, bal *domain.TicketBalance) error

	// Streaks
	GetStreakForUpdate(ctx context.Context, userID, vaultID uuid.UUID) (*domain.StreakState, error)
	UpsertStreak(ctx context.Context, st *domain.StreakState) error

	// Rounds touched by projection (event-driven state confirmation,
	// randomness delivery, prize pool growth)
	GetRoundByNumber(ctx context.Context, vaultID uuid.UUID, roundNumber int64) (*domain.Round, error)
	GetCurrentRound(ctx context.Context, vaultID uuid.UUID) (*domain.Round, error)
	UpdateRoundStateIfMatches(ctx context.Context, roundID uuid.UUID, expected, next domain.RoundState) (int64, error)
	SetRoundSeed(ctx context.Context, roundID uuid.UUID, seed string) error
	AddToPrizePool(ctx context.Context, roundID uuid.UUID, amount int64) error

	// Winners (claim tracking)
	MarkWinnerClaimed(ctx context.Context, roundID, userID uuid.UUID) (int64, error)

	// Event log processed flag, flipped in the same transaction
	MarkEventProcessed(ctx context.Context, seq int64) error
}
