package lifecycle

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/suivest/suivest-go/internal/accountant"
	"github.com/suivest/suivest-go/internal/domain"
	"github.com/suivest/suivest-go/internal/event"
	"github.com/suivest/suivest-go/internal/gateway"
	"github.com/suivest/suivest-go/internal/logger"
	"github.com/suivest/suivest-go/internal/metrics"
	"github.com/suivest/suivest-go/internal/repository"
	"github.com/suivest/suivest-go/internal/selector"
)

// finalize runs winner selection from the frozen ticket snapshot and commits
// the entire finalization write set in one transaction: winners, round state,
// vault aggregates, streak updates, next-round creation and balance
// carry-over. Selection is deterministic, so replaying finalization after a
// crash produces the identical write set and the CAS on round state makes the
// replay a no-op.
func (m *manager) finalize(ctx context.Context, round *domain.Round) error {
	log := logger.FromContext(ctx)

	snapshot, streakByUser, err := m.loadSnapshot(ctx, round)
	if err != nil {
		return err
	}

	var winners []domain.Winner
	results, err := selector.SelectWinners(snapshot, *round.RandomnessSeed, round.PrizePool, m.opts.PrizeSplit)
	switch {
	case errors.Is(err, domain.ErrNoTicketHolders):
		// Empty round: no winners, the prize pool rolls into the next round.
		log.Info(LogMsgEmptyRound, "vault_id", round.VaultID, "round_number", round.RoundNumber)
	case err != nil:
		return fmt.Errorf("%s: %w", ErrContextFailedToSelectWinners, err)
	default:
		winners = make([]domain.Winner, 0, len(results))
		for _, r := range results {
			winners = append(winners, domain.Winner{
				ID:          uuid.New(),
				RoundID:     round.ID,
				UserID:      r.UserID,
				Position:    r.Position,
				PrizeAmount: r.PrizeAmount,
			})
		}
	}

	nextRound, err := m.commitFinalization(ctx, round, winners, streakByUser)
	if err != nil {
		return err
	}
	if nextRound == nil {
		// Another pass finalized this round already.
		return nil
	}

	metrics.RoundsFinalized.Inc()
	m.publish(ctx, event.NewRoundFinalizedEvent(round, winners))

	log.Info(LogMsgRoundFinalized,
		"vault_id", round.VaultID,
		"round_number", round.RoundNumber,
		"winners", len(winners),
		"prize_pool", round.PrizePool,
		"next_round", nextRound.RoundNumber,
	)

	// Chain submission happens after the durable finalization commit. A
	// failure here is recoverable: winners are persisted and selection is
	// deterministic, so the calls can be re-issued from stored state.
	if err := m.distribute(ctx, round, winners); err != nil {
		log.Error(LogMsgDistributionFailed, "vault_id", round.VaultID, "round_number", round.RoundNumber, "error", err)
	}
	return nil
}

// loadSnapshot builds the selection snapshot: each positive ticket balance of
// the round weighted by the holder's streak multiplier.
func (m *manager) loadSnapshot(ctx context.Context, round *domain.Round) ([]selector.Entry, map[uuid.UUID]domain.StreakState, error) {
	balances, err := m.ledger.ListTicketBalances(ctx, round.VaultID, round.RoundNumber)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", ErrContextFailedToLoadBalances, err)
	}
	streaks, err := m.ledger.ListStreaks(ctx, round.VaultID)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", ErrContextFailedToLoadStreaks, err)
	}

	streakByUser := make(map[uuid.UUID]domain.StreakState, len(streaks))
	for _, st := range streaks {
		streakByUser[st.UserID] = st
	}

	snapshot := make([]selector.Entry, 0, len(balances))
	for _, bal := range balances {
		if bal.Tickets <= 0 {
			continue
		}
		streak := 0
		if st, ok := streakByUser[bal.UserID]; ok {
			streak = st.CurrentStreak
		}
		snapshot = append(snapshot, selector.Entry{
			UserID:  bal.UserID,
			Tickets: accountant.EffectiveTickets(bal.Tickets, streak, m.opts.StreakMultipliers),
		})
	}
	return snapshot, streakByUser, nil
}

// commitFinalization writes the finalization set atomically. Returns the
// created next round, or nil when the CAS found the round already finalized.
func (m *manager) commitFinalization(ctx context.Context, round *domain.Round, winners []domain.Winner, streakByUser map[uuid.UUID]domain.StreakState) (*domain.Round, error) {
	tx, err := m.rounds.BeginFinalizeTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToBeginTx, err)
	}
	defer repository.SafeRollback(ctx, tx)

	rows, err := tx.FinalizeRound(ctx, round.ID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToFinalizeRound, err)
	}
	if rows == 0 {
		return nil, nil
	}

	var distributed int64
	for i := range winners {
		if err := tx.InsertWinner(ctx, &winners[i]); err != nil {
			return nil, fmt.Errorf("%s: %w", ErrContextFailedToInsertWinner, err)
		}
		distributed += winners[i].PrizeAmount
	}
	if distributed > 0 {
		if err := tx.IncrementVaultPrizes(ctx, round.VaultID, distributed); err != nil {
			return nil, fmt.Errorf("%s: %w", ErrContextFailedToUpdateVault, err)
		}
	}

	if err := m.applyStreakRule(ctx, tx, round, streakByUser); err != nil {
		return nil, err
	}

	now := m.now().UTC()
	next := &domain.Round{
		ID:          uuid.New(),
		VaultID:     round.VaultID,
		RoundNumber: round.RoundNumber + 1,
		StartTime:   now,
		EndTime:     now.Add(m.opts.RoundDuration),
		State:       domain.RoundStateScheduled,
		CreatedAt:   now,
	}
	if len(winners) == 0 {
		// No-winner rounds carry their pool forward so yield is never lost.
		next.PrizePool = round.PrizePool
	}
	if err := tx.CreateRound(ctx, next); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToCreateRound, err)
	}

	if err := tx.CarryTicketBalances(ctx, round.VaultID, round.RoundNumber, next.RoundNumber); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToCarryBalances, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToCommitTx, err)
	}
	return next, nil
}

// applyStreakRule applies the once-per-round streak update: holders with
// tickets in the finalized round extend their streak, everyone else with a
// standing streak resets. Withdrawal-time resets already happened in the
// projector; this pass covers users who simply sat the round out.
func (m *manager) applyStreakRule(ctx context.Context, tx repository.FinalizeTx, round *domain.Round, streakByUser map[uuid.UUID]domain.StreakState) error {
	balances, err := m.ledger.ListTicketBalances(ctx, round.VaultID, round.RoundNumber)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrContextFailedToLoadBalances, err)
	}

	now := m.now().UTC()
	participated := make(map[uuid.UUID]bool, len(balances))

	for _, bal := range balances {
		if bal.Tickets <= 0 {
			continue
		}
		participated[bal.UserID] = true

		st, ok := streakByUser[bal.UserID]
		if !ok {
			st = domain.StreakState{UserID: bal.UserID, VaultID: round.VaultID}
		}
		// Guard against double-counting if finalization replays with a stale
		// snapshot: the round number only extends a streak once.
		if st.LastParticipationRound >= round.RoundNumber {
			continue
		}
		st.CurrentStreak++
		if st.CurrentStreak > st.LongestStreak {
			st.LongestStreak = st.CurrentStreak
		}
		st.RoundsParticipated++
		st.LastParticipationRound = round.RoundNumber
		st.UpdatedAt = now

		if err := tx.UpsertStreak(ctx, &st); err != nil {
			return fmt.Errorf("%s: %w", ErrContextFailedToWriteStreak, err)
		}
	}

	for _, st := range streakByUser {
		if st.CurrentStreak == 0 || participated[st.UserID] {
			continue
		}
		st.CurrentStreak = 0
		st.UpdatedAt = now
		if err := tx.UpsertStreak(ctx, &st); err != nil {
			return fmt.Errorf("%s: %w", ErrContextFailedToWriteStreak, err)
		}
	}
	return nil
}

// distribute submits end-round with the verified seed, then the prize
// payouts. End-round goes out even for a round with no winners: the on-chain
// round has to close before the next one can start.
func (m *manager) distribute(ctx context.Context, round *domain.Round, winners []domain.Winner) error {
	callCtx, cancel := context.WithTimeout(ctx, GatewayCallTimeout)
	defer cancel()

	if _, err := m.gw.EndRound(callCtx, round.VaultID, round.RoundNumber, *round.RandomnessSeed); err != nil {
		return fmt.Errorf("%s: %w", ErrContextFailedToEndRound, err)
	}

	if len(winners) == 0 {
		return nil
	}

	payouts := make([]gateway.PrizePayout, 0, len(winners))
	for _, w := range winners {
		payouts = append(payouts, gateway.PrizePayout{UserID: w.UserID, Amount: w.PrizeAmount})
	}

	txHash, err := m.gw.DistributePrizes(callCtx, round.VaultID, round.RoundNumber, payouts)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrContextFailedToDistribute, err)
	}

	logger.FromContext(ctx).Info(LogMsgPrizesDistributed, "vault_id", round.VaultID, "round_number", round.RoundNumber, "tx_hash", txHash)
	return nil
}
