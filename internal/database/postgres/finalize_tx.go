package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/suivest/suivest-go/internal/domain"
)

// finalizeTx is the pgx-backed finalization transaction
type finalizeTx struct {
	tx pgx.Tx
}

func (t *finalizeTx) Commit(ctx context.Context) error {
	return t.tx.Commit(ctx)
}

func (t *finalizeTx) Rollback(ctx context.Context) error {
	if err := t.tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return err
	}
	return nil
}

// InsertWinner records one prize position. (round_id, user_id) and
// (round_id, position) are unique, so a replayed finalization that somehow
// got past the state CAS still cannot duplicate winners.
func (t *finalizeTx) InsertWinner(ctx context.Context, w *domain.Winner) error {
	_, err := t.tx.Exec(ctx, `
		INSERT INTO winners (winner_id, round_id, user_id, position, prize_amount)
		VALUES ($1, $2, $3, $4, $5)`,
		w.ID, w.RoundID, w.UserID, w.Position, w.PrizeAmount,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrInvalidRoundTransition
		}
		return fmt.Errorf("failed to insert winner: %w", err)
	}
	return nil
}

// FinalizeRound transitions RandomnessPending -> Finalized; zero rows means
// another writer finalized first
func (t *finalizeTx) FinalizeRound(ctx context.Context, roundID uuid.UUID) (int64, error) {
	tag, err := t.tx.Exec(ctx, `
		UPDATE rounds SET state = $3, finalized_at = NOW()
		WHERE round_id = $1 AND state = $2`,
		roundID, string(domain.RoundStateRandomnessPending), string(domain.RoundStateFinalized),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to finalize round: %w", err)
	}
	return tag.RowsAffected(), nil
}

// IncrementVaultPrizes bumps the distributed-prizes aggregate
func (t *finalizeTx) IncrementVaultPrizes(ctx context.Context, vaultID uuid.UUID, amount int64) error {
	_, err := t.tx.Exec(ctx, `
		UPDATE vaults SET
			total_prizes_distributed = total_prizes_distributed + $2,
			updated_at = NOW()
		WHERE vault_id = $1`,
		vaultID, amount,
	)
	if err != nil {
		return fmt.Errorf("failed to increment vault prizes: %w", err)
	}
	return nil
}

// UpsertStreak writes one streak row
func (t *finalizeTx) UpsertStreak(ctx context.Context, st *domain.StreakState) error {
	return upsertStreak(ctx, t.tx, st)
}

// CreateRound inserts the next scheduled round
func (t *finalizeTx) CreateRound(ctx context.Context, round *domain.Round) error {
	return createRound(ctx, t.tx, round)
}

// CarryTicketBalances copies positive balances into the next round. Rows the
// projector already created through the early carry-forward path are left
// untouched: they reflect post-lock withdrawals and are more current.
func (t *finalizeTx) CarryTicketBalances(ctx context.Context, vaultID uuid.UUID, fromRound, toRound int64) error {
	_, err := t.tx.Exec(ctx, `
		INSERT INTO ticket_balances (user_id, vault_id, round_number, tickets, amount, updated_at)
		SELECT user_id, vault_id, $3, tickets, amount, NOW()
		FROM ticket_balances
		WHERE vault_id = $1 AND round_number = $2 AND tickets > 0
		ON CONFLICT (user_id, vault_id, round_number) DO NOTHING`,
		vaultID, fromRound, toRound,
	)
	if err != nil {
		return fmt.Errorf("failed to carry ticket balances: %w", err)
	}
	return nil
}
