package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/suivest/suivest-go/internal/domain"
	"github.com/suivest/suivest-go/internal/repository"
)

// LedgerRepository implements the projector's data access for PostgreSQL
type LedgerRepository struct {
	db *pgxpool.Pool
}

// NewLedgerRepository creates a new LedgerRepository
func NewLedgerRepository(db *pgxpool.Pool) *LedgerRepository {
	return &LedgerRepository{db: db}
}

// BeginTx opens the per-event projection transaction
func (r *LedgerRepository) BeginTx(ctx context.Context) (repository.LedgerTx, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return &ledgerTx{tx: tx}, nil
}

const vaultColumns = `vault_id, token_type, token_symbol, token_decimals, total_deposits, total_withdrawals, total_prizes_distributed, active_participants, is_active, halted, created_at, updated_at`

// GetVault retrieves a vault by ID, nil when not found
func (r *LedgerRepository) GetVault(ctx context.Context, vaultID uuid.UUID) (*domain.Vault, error) {
	row := r.db.QueryRow(ctx, `SELECT `+vaultColumns+` FROM vaults WHERE vault_id = $1`, vaultID)

	vault, err := scanVault(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return vault, nil
}

// ListActiveVaults lists vaults accepting deposits, halted ones included so
// callers can observe and skip them explicitly
func (r *LedgerRepository) ListActiveVaults(ctx context.Context) ([]domain.Vault, error) {
	rows, err := r.db.Query(ctx, `SELECT `+vaultColumns+` FROM vaults WHERE is_active ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("failed to list vaults: %w", err)
	}
	defer rows.Close()

	var vaults []domain.Vault
	for rows.Next() {
		vault, err := scanVault(rows)
		if err != nil {
			return nil, err
		}
		vaults = append(vaults, *vault)
	}
	return vaults, rows.Err()
}

// HaltVault marks a vault halted
func (r *LedgerRepository) HaltVault(ctx context.Context, vaultID uuid.UUID) error {
	_, err := r.db.Exec(ctx, `UPDATE vaults SET halted = TRUE, updated_at = NOW() WHERE vault_id = $1`, vaultID)
	if err != nil {
		return fmt.Errorf("failed to halt vault: %w", err)
	}
	return nil
}

const balanceColumns = `user_id, vault_id, round_number, tickets, amount, updated_at`

// GetTicketBalance retrieves one balance row, nil when absent
func (r *LedgerRepository) GetTicketBalance(ctx context.Context, userID, vaultID uuid.UUID, roundNumber int64) (*domain.TicketBalance, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+balanceColumns+` FROM ticket_balances
		WHERE user_id = $1 AND vault_id = $2 AND round_number = $3`,
		userID, vaultID, roundNumber,
	)
	return scanBalanceOrNil(row)
}

// ListTicketBalances lists every balance row for a vault round
func (r *LedgerRepository) ListTicketBalances(ctx context.Context, vaultID uuid.UUID, roundNumber int64) ([]domain.TicketBalance, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+balanceColumns+` FROM ticket_balances
		WHERE vault_id = $1 AND round_number = $2`,
		vaultID, roundNumber,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list ticket balances: %w", err)
	}
	defer rows.Close()

	var balances []domain.TicketBalance
	for rows.Next() {
		var bal domain.TicketBalance
		if err := rows.Scan(&bal.UserID, &bal.VaultID, &bal.RoundNumber, &bal.Tickets, &bal.Amount, &bal.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan ticket balance: %w", err)
		}
		balances = append(balances, bal)
	}
	return balances, rows.Err()
}

// SumTicketBalances totals tickets and backing amounts for a vault round
func (r *LedgerRepository) SumTicketBalances(ctx context.Context, vaultID uuid.UUID, roundNumber int64) (int64, int64, error) {
	var tickets, amount int64
	err := r.db.QueryRow(ctx, `
		SELECT COALESCE(SUM(tickets), 0), COALESCE(SUM(amount), 0)
		FROM ticket_balances
		WHERE vault_id = $1 AND round_number = $2`,
		vaultID, roundNumber,
	).Scan(&tickets, &amount)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to sum ticket balances: %w", err)
	}
	return tickets, amount, nil
}

const streakColumns = `user_id, vault_id, current_streak, longest_streak, rounds_participated, last_participation_round, updated_at`

// GetStreak retrieves one streak row, nil when absent
func (r *LedgerRepository) GetStreak(ctx context.Context, userID, vaultID uuid.UUID) (*domain.StreakState, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+streakColumns+` FROM user_streaks
		WHERE user_id = $1 AND vault_id = $2`,
		userID, vaultID,
	)
	return scanStreakOrNil(row)
}

// ListStreaks lists every streak row for a vault
func (r *LedgerRepository) ListStreaks(ctx context.Context, vaultID uuid.UUID) ([]domain.StreakState, error) {
	rows, err := r.db.Query(ctx, `SELECT `+streakColumns+` FROM user_streaks WHERE vault_id = $1`, vaultID)
	if err != nil {
		return nil, fmt.Errorf("failed to list streaks: %w", err)
	}
	defer rows.Close()

	var streaks []domain.StreakState
	for rows.Next() {
		var st domain.StreakState
		if err := rows.Scan(&st.UserID, &st.VaultID, &st.CurrentStreak, &st.LongestStreak, &st.RoundsParticipated, &st.LastParticipationRound, &st.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan streak: %w", err)
		}
		streaks = append(streaks, st)
	}
	return streaks, rows.Err()
}

// SumConfirmedDeposits totals confirmed deposit amounts for a vault
func (r *LedgerRepository) SumConfirmedDeposits(ctx context.Context, vaultID uuid.UUID) (int64, error) {
	return r.sumConfirmed(ctx, "deposits", vaultID)
}

// SumConfirmedWithdrawals totals confirmed withdrawal amounts for a vault
func (r *LedgerRepository) SumConfirmedWithdrawals(ctx context.Context, vaultID uuid.UUID) (int64, error) {
	return r.sumConfirmed(ctx, "withdrawals", vaultID)
}

func (r *LedgerRepository) sumConfirmed(ctx context.Context, table string, vaultID uuid.UUID) (int64, error) {
	var total int64
	err := r.db.QueryRow(ctx, `
		SELECT COALESCE(SUM(amount), 0) FROM `+table+`
		WHERE vault_id = $1 AND status = $2`,
		vaultID, string(domain.RecordStatusConfirmed),
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to sum %s: %w", table, err)
	}
	return total, nil
}

const depositColumns = `deposit_id, user_id, vault_id, tx_hash, amount, tickets_delta, round_number, status, fail_reason, created_at`

// ListDeposits lists a user's deposit records, newest first
func (r *LedgerRepository) ListDeposits(ctx context.Context, userID, vaultID uuid.UUID, limit int) ([]domain.Deposit, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+depositColumns+` FROM deposits
		WHERE user_id = $1 AND vault_id = $2
		ORDER BY created_at DESC
		LIMIT $3`,
		userID, vaultID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list deposits: %w", err)
	}
	defer rows.Close()

	var deposits []domain.Deposit
	for rows.Next() {
		var dep domain.Deposit
		var status string
		var failReason pgtype.Text
		if err := rows.Scan(&dep.ID, &dep.UserID, &dep.VaultID, &dep.TxHash, &dep.Amount, &dep.TicketsDelta, &dep.RoundNumber, &status, &failReason, &dep.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan deposit: %w", err)
		}
		dep.Status = domain.RecordStatus(status)
		dep.FailReason = textToPtr(failReason)
		deposits = append(deposits, dep)
	}
	return deposits, rows.Err()
}

const withdrawalColumns = `withdrawal_id, user_id, vault_id, tx_hash, amount, tickets_delta, round_number, status, fail_reason, created_at`

// ListWithdrawals lists a user's withdrawal records, newest first
func (r *LedgerRepository) ListWithdrawals(ctx context.Context, userID, vaultID uuid.UUID, limit int) ([]domain.Withdrawal, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+withdrawalColumns+` FROM withdrawals
		WHERE user_id = $1 AND vault_id = $2
		ORDER BY created_at DESC
		LIMIT $3`,
		userID, vaultID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list withdrawals: %w", err)
	}
	defer rows.Close()

	var withdrawals []domain.Withdrawal
	for rows.Next() {
		var wd domain.Withdrawal
		var status string
		var failReason pgtype.Text
		if err := rows.Scan(&wd.ID, &wd.UserID, &wd.VaultID, &wd.TxHash, &wd.Amount, &wd.TicketsDelta, &wd.RoundNumber, &status, &failReason, &wd.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan withdrawal: %w", err)
		}
		wd.Status = domain.RecordStatus(status)
		wd.FailReason = textToPtr(failReason)
		withdrawals = append(withdrawals, wd)
	}
	return withdrawals, rows.Err()
}

// ---- Row scanning helpers ----

func scanVault(row pgx.Row) (*domain.Vault, error) {
	var vault domain.Vault
	err := row.Scan(
		&vault.ID, &vault.TokenType, &vault.TokenSymbol, &vault.TokenDecimals,
		&vault.TotalDeposits, &vault.TotalWithdrawals, &vault.TotalPrizesDistributed,
		&vault.ActiveParticipants, &vault.IsActive, &vault.Halted,
		&vault.CreatedAt, &vault.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan vault: %w", err)
	}
	return &vault, nil
}

func scanBalanceOrNil(row pgx.Row) (*domain.TicketBalance, error) {
	var bal domain.TicketBalance
	err := row.Scan(&bal.UserID, &bal.VaultID, &bal.RoundNumber, &bal.Tickets, &bal.Amount, &bal.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan ticket balance: %w", err)
	}
	return &bal, nil
}

func scanStreakOrNil(row pgx.Row) (*domain.StreakState, error) {
	var st domain.StreakState
	err := row.Scan(&st.UserID, &st.VaultID, &st.CurrentStreak, &st.LongestStreak, &st.RoundsParticipated, &st.LastParticipationRound, &st.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan streak: %w", err)
	}
	return &st, nil
}

const roundColumns = `round_id, vault_id, round_number, start_time, end_time, total_tickets, prize_pool, state, randomness_seed, randomness_handle, randomness_requested_at, stuck_flagged, created_at, finalized_at`

func scanRound(row pgx.Row) (*domain.Round, error) {
	var round domain.Round
	var state string
	var seed, handle pgtype.Text
	var requestedAt, finalizedAt pgtype.Timestamptz

	err := row.Scan(
		&round.ID, &round.VaultID, &round.RoundNumber, &round.StartTime, &round.EndTime,
		&round.TotalTickets, &round.PrizePool, &state, &seed, &handle,
		&requestedAt, &round.StuckFlagged, &round.CreatedAt, &finalizedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan round: %w", err)
	}

	round.State = domain.RoundState(state)
	round.RandomnessSeed = textToPtr(seed)
	round.RandomnessHandle = textToPtr(handle)
	round.RandomnessRequestedAt = ptrTime(requestedAt)
	round.FinalizedAt = ptrTime(finalizedAt)
	return &round, nil
}

func scanRoundOrNil(row pgx.Row) (*domain.Round, error) {
	round, err := scanRound(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return round, nil
}
