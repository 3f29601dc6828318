package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/suivest/suivest-go/internal/domain"
)

// ledgerTx is the pgx-backed projection transaction
type ledgerTx struct {
	tx pgx.Tx
}

func (t *ledgerTx) Commit(ctx context.Context) error {
	return t.tx.Commit(ctx)
}

// Rollback after a successful commit is a no-op, matching the repository.Tx
// contract so SafeRollback can be deferred unconditionally.
func (t *ledgerTx) Rollback(ctx context.Context) error {
	if err := t.tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return err
	}
	return nil
}

// UpsertDeposit writes a derived deposit record keyed on (vault_id, tx_hash)
func (t *ledgerTx) UpsertDeposit(ctx context.Context, dep *domain.Deposit) error {
	_, err := t.tx.Exec(ctx, `
		INSERT INTO deposits (deposit_id, user_id, vault_id, tx_hash, amount, tickets_delta, round_number, status, fail_reason)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (vault_id, tx_hash) DO UPDATE SET
			amount = EXCLUDED.amount,
			tickets_delta = EXCLUDED.tickets_delta,
			round_number = EXCLUDED.round_number,
			status = EXCLUDED.status,
			fail_reason = EXCLUDED.fail_reason`,
		dep.ID, dep.UserID, dep.VaultID, dep.TxHash, dep.Amount, dep.TicketsDelta, dep.RoundNumber, string(dep.Status), ptrToText(dep.FailReason),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert deposit: %w", err)
	}
	return nil
}

// UpsertWithdrawal writes a derived withdrawal record keyed on (vault_id, tx_hash)
func (t *ledgerTx) UpsertWithdrawal(ctx context.Context, wd *domain.Withdrawal) error {
	_, err := t.tx.Exec(ctx, `
		INSERT INTO withdrawals (withdrawal_id, user_id, vault_id, tx_hash, amount, tickets_delta, round_number, status, fail_reason)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (vault_id, tx_hash) DO UPDATE SET
			amount = EXCLUDED.amount,
			tickets_delta = EXCLUDED.tickets_delta,
			round_number = EXCLUDED.round_number,
			status = EXCLUDED.status,
			fail_reason = EXCLUDED.fail_reason`,
		wd.ID, wd.UserID, wd.VaultID, wd.TxHash, wd.Amount, wd.TicketsDelta, wd.RoundNumber, string(wd.Status), ptrToText(wd.FailReason),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert withdrawal: %w", err)
	}
	return nil
}

// IncrementVaultDeposits bumps the deposit aggregate and participant count
func (t *ledgerTx) IncrementVaultDeposits(ctx context.Context, vaultID uuid.UUID, amount int64, participantDelta int) error {
	_, err := t.tx.Exec(ctx, `
		UPDATE vaults SET
			total_deposits = total_deposits + $2,
			active_participants = active_participants + $3,
			updated_at = NOW()
		WHERE vault_id = $1`,
		vaultID, amount, participantDelta,
	)
	if err != nil {
		return fmt.Errorf("failed to increment vault deposits: %w", err)
	}
	return nil
}

// IncrementVaultWithdrawals bumps the withdrawal aggregate and participant count
func (t *ledgerTx) IncrementVaultWithdrawals(ctx context.Context, vaultID uuid.UUID, amount int64, participantDelta int) error {
	_, err := t.tx.Exec(ctx, `
		UPDATE vaults SET
			total_withdrawals = total_withdrawals + $2,
			active_participants = active_participants + $3,
			updated_at = NOW()
		WHERE vault_id = $1`,
		vaultID, amount, participantDelta,
	)
	if err != nil {
		return fmt.Errorf("failed to increment vault withdrawals: %w", err)
	}
	return nil
}

// GetTicketBalanceForUpdate row-locks one balance for the event being applied
func (t *ledgerTx) GetTicketBalanceForUpdate(ctx context.Context, userID, vaultID uuid.UUID, roundNumber int64) (*domain.TicketBalance, error) {
	row := t.tx.QueryRow(ctx, `
		SELECT `+balanceColumns+` FROM ticket_balances
		WHERE user_id = $1 AND vault_id = $2 AND round_number = $3
		FOR UPDATE`,
		userID, vaultID, roundNumber,
	)
	return scanBalanceOrNil(row)
}

// UpsertTicketBalance writes one balance row
func (t *ledgerTx) UpsertTicketBalance(ctx context.Context, bal *domain.TicketBalance) error {
	_, err := t.tx.Exec(ctx, `
		INSERT INTO ticket_balances (user_id, vault_id, round_number, tickets, amount, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (user_id, vault_id, round_number) DO UPDATE SET
			tickets = EXCLUDED.tickets,
			amount = EXCLUDED.amount,
			updated_at = NOW()`,
		bal.UserID, bal.VaultID, bal.RoundNumber, bal.Tickets, bal.Amount,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert ticket balance: %w", err)
	}
	return nil
}

// GetStreakForUpdate row-locks one streak row
func (t *ledgerTx) GetStreakForUpdate(ctx context.Context, userID, vaultID uuid.UUID) (*domain.StreakState, error) {
	row := t.tx.QueryRow(ctx, `
		SELECT `+streakColumns+` FROM user_streaks
		WHERE user_id = $1 AND vault_id = $2
		FOR UPDATE`,
		userID, vaultID,
	)
	return scanStreakOrNil(row)
}

// UpsertStreak writes one streak row
func (t *ledgerTx) UpsertStreak(ctx context.Context, st *domain.StreakState) error {
	return upsertStreak(ctx, t.tx, st)
}

// GetRoundByNumber fetches a round by vault and number, nil when absent
func (t *ledgerTx) GetRoundByNumber(ctx context.Context, vaultID uuid.UUID, roundNumber int64) (*domain.Round, error) {
	row := t.tx.QueryRow(ctx, `
		SELECT `+roundColumns+` FROM rounds
		WHERE vault_id = $1 AND round_number = $2`,
		vaultID, roundNumber,
	)
	return scanRoundOrNil(row)
}

// GetCurrentRound fetches the latest non-finalized round, nil at bootstrap
func (t *ledgerTx) GetCurrentRound(ctx context.Context, vaultID uuid.UUID) (*domain.Round, error) {
	row := t.tx.QueryRow(ctx, `
		SELECT `+roundColumns+` FROM rounds
		WHERE vault_id = $1 AND state <> $2
		ORDER BY round_number DESC
		LIMIT 1`,
		vaultID, string(domain.RoundStateFinalized),
	)
	return scanRoundOrNil(row)
}

// UpdateRoundStateIfMatches performs a compare-and-set state transition
func (t *ledgerTx) UpdateRoundStateIfMatches(ctx context.Context, roundID uuid.UUID, expected, next domain.RoundState) (int64, error) {
	tag, err := t.tx.Exec(ctx, `
		UPDATE rounds SET state = $3 WHERE round_id = $1 AND state = $2`,
		roundID, string(expected), string(next),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to update round state: %w", err)
	}
	return tag.RowsAffected(), nil
}

// SetRoundSeed stores a verified randomness seed
func (t *ledgerTx) SetRoundSeed(ctx context.Context, roundID uuid.UUID, seed string) error {
	_, err := t.tx.Exec(ctx, `UPDATE rounds SET randomness_seed = $2 WHERE round_id = $1`, roundID, seed)
	if err != nil {
		return fmt.Errorf("failed to set round seed: %w", err)
	}
	return nil
}

// AddToPrizePool grows the round's prize pool by harvested yield
func (t *ledgerTx) AddToPrizePool(ctx context.Context, roundID uuid.UUID, amount int64) error {
	_, err := t.tx.Exec(ctx, `UPDATE rounds SET prize_pool = prize_pool + $2 WHERE round_id = $1`, roundID, amount)
	if err != nil {
		return fmt.Errorf("failed to add to prize pool: %w", err)
	}
	return nil
}

// MarkWinnerClaimed flips the claim flag; zero rows means already claimed or
// no such winner
func (t *ledgerTx) MarkWinnerClaimed(ctx context.Context, roundID, userID uuid.UUID) (int64, error) {
	tag, err := t.tx.Exec(ctx, `
		UPDATE winners SET has_claimed = TRUE, claimed_at = NOW()
		WHERE round_id = $1 AND user_id = $2 AND NOT has_claimed`,
		roundID, userID,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to mark winner claimed: %w", err)
	}
	return tag.RowsAffected(), nil
}

// MarkEventProcessed flips the processed flag inside the same transaction as
// the ledger writes
func (t *ledgerTx) MarkEventProcessed(ctx context.Context, seq int64) error {
	_, err := t.tx.Exec(ctx, `
		UPDATE chain_events SET processed = TRUE, processed_at = NOW() WHERE seq = $1`,
		seq,
	)
	if err != nil {
		return fmt.Errorf("failed to mark event processed: %w", err)
	}
	return nil
}

// ---- Shared transactional helpers ----

func upsertStreak(ctx context.Context, tx pgx.Tx, st *domain.StreakState) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO user_streaks (user_id, vault_id, current_streak, longest_streak, rounds_participated, last_participation_round, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		ON CONFLICT (user_id, vault_id) DO UPDATE SET
			current_streak = EXCLUDED.current_streak,
			longest_streak = EXCLUDED.longest_streak,
			rounds_participated = EXCLUDED.rounds_participated,
			last_participation_round = EXCLUDED.last_participation_round,
			updated_at = NOW()`,
		st.UserID, st.VaultID, st.CurrentStreak, st.LongestStreak, st.RoundsParticipated, st.LastParticipationRound,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert streak: %w", err)
	}
	return nil
}
