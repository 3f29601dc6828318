package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/suivest/suivest-go/internal/domain"
	"github.com/suivest/suivest-go/internal/repository"
)

// RoundsRepository implements the lifecycle manager's data access for
// PostgreSQL
type RoundsRepository struct {
	db *pgxpool.Pool
}

// NewRoundsRepository creates a new RoundsRepository
func NewRoundsRepository(db *pgxpool.Pool) *RoundsRepository {
	return &RoundsRepository{db: db}
}

// GetCurrentRound fetches the latest non-finalized round, nil at bootstrap
func (r *RoundsRepository) GetCurrentRound(ctx context.Context, vaultID uuid.UUID) (*domain.Round, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+roundColumns+` FROM rounds
		WHERE vault_id = $1 AND state <> $2
		ORDER BY round_number DESC
		LIMIT 1`,
		vaultID, string(domain.RoundStateFinalized),
	)
	return scanRoundOrNil(row)
}

// GetRoundByNumber fetches a round by vault and number, nil when absent
func (r *RoundsRepository) GetRoundByNumber(ctx context.Context, vaultID uuid.UUID, roundNumber int64) (*domain.Round, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+roundColumns+` FROM rounds
		WHERE vault_id = $1 AND round_number = $2`,
		vaultID, roundNumber,
	)
	return scanRoundOrNil(row)
}

// GetRound fetches a round by ID, nil when absent
func (r *RoundsRepository) GetRound(ctx context.Context, roundID uuid.UUID) (*domain.Round, error) {
	row := r.db.QueryRow(ctx, `SELECT `+roundColumns+` FROM rounds WHERE round_id = $1`, roundID)
	return scanRoundOrNil(row)
}

// CreateRound inserts a new round. A duplicate (vault_id, round_number)
// surfaces as ErrInvalidRoundTransition since only one writer may create it.
func (r *RoundsRepository) CreateRound(ctx context.Context, round *domain.Round) error {
	return createRound(ctx, r.db, round)
}

// UpdateRoundStateIfMatches performs a compare-and-set state transition
func (r *RoundsRepository) UpdateRoundStateIfMatches(ctx context.Context, roundID uuid.UUID, expected, next domain.RoundState) (int64, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE rounds SET state = $3 WHERE round_id = $1 AND state = $2`,
		roundID, string(expected), string(next),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to update round state: %w", err)
	}
	return tag.RowsAffected(), nil
}

// LockRound freezes the ticket total and transitions Active -> Locked
func (r *RoundsRepository) LockRound(ctx context.Context, roundID uuid.UUID, totalTickets int64) (int64, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE rounds SET state = $3, total_tickets = $4
		WHERE round_id = $1 AND state = $2`,
		roundID, string(domain.RoundStateActive), string(domain.RoundStateLocked), totalTickets,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to lock round: %w", err)
	}
	return tag.RowsAffected(), nil
}

// SetRandomnessRequested stores the request handle and transitions
// Locked -> RandomnessPending
func (r *RoundsRepository) SetRandomnessRequested(ctx context.Context, roundID uuid.UUID, handle string) (int64, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE rounds SET state = $3, randomness_handle = $4, randomness_requested_at = NOW()
		WHERE round_id = $1 AND state = $2`,
		roundID, string(domain.RoundStateLocked), string(domain.RoundStateRandomnessPending), handle,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to set randomness requested: %w", err)
	}
	return tag.RowsAffected(), nil
}

// SetRoundSeed stores a verified randomness seed
func (r *RoundsRepository) SetRoundSeed(ctx context.Context, roundID uuid.UUID, seed string) error {
	_, err := r.db.Exec(ctx, `UPDATE rounds SET randomness_seed = $2 WHERE round_id = $1`, roundID, seed)
	if err != nil {
		return fmt.Errorf("failed to set round seed: %w", err)
	}
	return nil
}

// FlagRoundStuck marks a round for operator intervention
func (r *RoundsRepository) FlagRoundStuck(ctx context.Context, roundID uuid.UUID) error {
	_, err := r.db.Exec(ctx, `UPDATE rounds SET stuck_flagged = TRUE WHERE round_id = $1`, roundID)
	if err != nil {
		return fmt.Errorf("failed to flag round stuck: %w", err)
	}
	return nil
}

const winnerColumns = `winner_id, round_id, user_id, position, prize_amount, has_claimed, claimed_at, created_at`

// ListWinners lists a round's winners by prize position
func (r *RoundsRepository) ListWinners(ctx context.Context, roundID uuid.UUID) ([]domain.Winner, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+winnerColumns+` FROM winners
		WHERE round_id = $1
		ORDER BY position`,
		roundID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list winners: %w", err)
	}
	defer rows.Close()
	return collectWinners(rows)
}

// ListWinnersByVault lists a vault's recent winners, newest first
func (r *RoundsRepository) ListWinnersByVault(ctx context.Context, vaultID uuid.UUID, limit int) ([]domain.Winner, error) {
	rows, err := r.db.Query(ctx, `
		SELECT w.winner_id, w.round_id, w.user_id, w.position, w.prize_amount, w.has_claimed, w.claimed_at, w.created_at
		FROM winners w
		JOIN rounds r ON r.round_id = w.round_id
		WHERE r.vault_id = $1
		ORDER BY w.created_at DESC, w.position
		LIMIT $2`,
		vaultID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list winners by vault: %w", err)
	}
	defer rows.Close()
	return collectWinners(rows)
}

// ListFinalizedRounds lists a vault's most recent finalized rounds
func (r *RoundsRepository) ListFinalizedRounds(ctx context.Context, vaultID uuid.UUID, limit int) ([]domain.Round, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+roundColumns+` FROM rounds
		WHERE vault_id = $1 AND state = $2
		ORDER BY round_number DESC
		LIMIT $3`,
		vaultID, string(domain.RoundStateFinalized), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list finalized rounds: %w", err)
	}
	defer rows.Close()

	var rounds []domain.Round
	for rows.Next() {
		round, err := scanRound(rows)
		if err != nil {
			return nil, err
		}
		rounds = append(rounds, *round)
	}
	return rounds, rows.Err()
}

// SumWinnerPrizes totals the prize amounts recorded for a round
func (r *RoundsRepository) SumWinnerPrizes(ctx context.Context, roundID uuid.UUID) (int64, error) {
	var total int64
	err := r.db.QueryRow(ctx, `
		SELECT COALESCE(SUM(prize_amount), 0) FROM winners WHERE round_id = $1`,
		roundID,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to sum winner prizes: %w", err)
	}
	return total, nil
}

// BeginFinalizeTx opens the finalization transaction
func (r *RoundsRepository) BeginFinalizeTx(ctx context.Context) (repository.FinalizeTx, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return &finalizeTx{tx: tx}, nil
}

func collectWinners(rows pgx.Rows) ([]domain.Winner, error) {
	var winners []domain.Winner
	for rows.Next() {
		var w domain.Winner
		var claimedAt pgtype.Timestamptz
		if err := rows.Scan(&w.ID, &w.RoundID, &w.UserID, &w.Position, &w.PrizeAmount, &w.HasClaimed, &claimedAt, &w.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan winner: %w", err)
		}
		w.ClaimedAt = ptrTime(claimedAt)
		winners = append(winners, w)
	}
	return winners, rows.Err()
}

// execer abstracts pgxpool.Pool and pgx.Tx for shared write helpers
type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func createRound(ctx context.Context, db execer, round *domain.Round) error {
	_, err := db.Exec(ctx, `
		INSERT INTO rounds (round_id, vault_id, round_number, start_time, end_time, total_tickets, prize_pool, state, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		round.ID, round.VaultID, round.RoundNumber, round.StartTime, round.EndTime,
		round.TotalTickets, round.PrizePool, string(round.State), round.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrInvalidRoundTransition
		}
		return fmt.Errorf("failed to create round: %w", err)
	}
	return nil
}
