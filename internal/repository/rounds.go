package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/suivest/suivest-go/internal/domain"
)

// Rounds defines the data access required by the round lifecycle manager.
// The lifecycle manager is the sole writer of round and winner records.
type Rounds interface {
	// GetCurrentRound returns the latest non-finalized round for the vault,
	// or nil when none exists (bootstrap).
	GetCurrentRound(ctx context.Context, vaultID uuid.UUID) (*domain.Round, error)
	GetRoundByNumber(ctx context.Context, vaultID uuid.UUID, roundNumber int64) (*domain.Round, error)
	GetRound(ctx context.Context, roundID uuid.UUID) (*domain.Round, error)

	CreateRound(ctx context.Context, round *domain.Round) error

	// UpdateRoundStateIfMatches performs a compare-and-set state transition
	// and returns the number of rows affected; zero means another writer got
	// there first or the state moved on.
	UpdateRoundStateIfMatches(ctx context.Context, roundID uuid.UUID, expected, next domain.RoundState) (int64, error)

	// LockRound freezes the ticket total and transitions Active -> Locked.
	LockRound(ctx context.Context, roundID uuid.UUID, totalTickets int64) (int64, error)

	// SetRandomnessRequested stores the request handle and transitions
	// Locked -> RandomnessPending.
	SetRandomnessRequested(ctx context.Context, roundID uuid.UUID, handle string) (int64, error)

	// SetRoundSeed stores a verified randomness seed. Used by the re-query
	// path on restart; the projector writes the same column through its own
	// transaction when the RandomnessFulfilled event arrives first.
	SetRoundSeed(ctx context.Context, roundID uuid.UUID, seed string) error

	// FlagRoundStuck marks a round for operator intervention.
	FlagRoundStuck(ctx context.Context, roundID uuid.UUID) error

	// Winner reads (query surface)
	ListWinners(ctx context.Context, roundID uuid.UUID) ([]domain.Winner, error)
	ListWinnersByVault(ctx context.Context, vaultID uuid.UUID, limit int) ([]domain.Winner, error)

	// Finalized-round invariant check (reconciler)
	ListFinalizedRounds(ctx context.Context, vaultID uuid.UUID, limit int) ([]domain.Round, error)
	SumWinnerPrizes(ctx context.Context, roundID uuid.UUID) (int64, error)

	// BeginFinalizeTx opens the finalization transaction: winners, round
	// state, vault aggregates, streak updates and next-round creation commit
	// atomically so a crash mid-finalization replays cleanly.
	BeginFinalizeTx(ctx context.Context) (FinalizeTx, error)
}

// FinalizeTx extends Tx with the finalization write set
type FinalizeTx interface {
	Tx

	InsertWinner(ctx context.Context, w *domain.Winner) error
	FinalizeRound(ctx context.Context, roundID uuid.UUID) (int64, error)
	IncrementVaultPrizes(ctx context.Context, vaultID uuid.UUID, amount int64) error
	UpsertStreak(ctx context.Context, st *domain.StreakState) error
	CreateRound(ctx context.Context, round *domain.Round) error

	// CarryTicketBalances copies each user's positive ticket balance from
	// the finalized round into the next round number, so standing deposits
	// keep participating.
	CarryTicketBalances(ctx context.Context, vaultID uuid.UUID, fromRound, toRound int64) error
}
