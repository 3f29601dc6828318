package projector

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/suivest/suivest-go/internal/accountant"
	"github.com/suivest/suivest-go/internal/domain"
	"github.com/suivest/suivest-go/internal/event"
	"github.com/suivest/suivest-go/internal/logger"
	"github.com/suivest/suivest-go/internal/repository"
)

// accrualRound returns the round number new deposits and withdrawals accrue
// to. Once a round locks, later activity belongs to the next round even
// though its row is only created at finalization.
func accrualRound(round *domain.Round) int64 {
	if round == nil {
		return 1
	}
	switch round.State {
	case domain.RoundStateScheduled, domain.RoundStateActive:
		return round.RoundNumber
	default:
		return round.RoundNumber + 1
	}
}

func (s *service) applyDeposit(ctx context.Context, tx repository.LedgerTx, vault *domain.Vault, evt *domain.ChainEvent) ([]event.Event, error) {
	payload, err := decodePayload[domain.DepositedPayload](evt)
	if err != nil {
		return s.applyInvalid(ctx, tx, vault, evt, err.Error())
	}

	round, err := tx.GetCurrentRound(ctx, vault.ID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToGetRound, err)
	}
	targetRound := accrualRound(round)

	tickets := accountant.TicketsForDeposit(payload.Amount, vault.TokenDecimals)

	bal, err := tx.GetTicketBalanceForUpdate(ctx, payload.UserID, vault.ID, targetRound)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToGetBalance, err)
	}

	participantDelta := 0
	if bal == nil {
		participantDelta = 1
		bal = &domain.TicketBalance{
			UserID:      payload.UserID,
			VaultID:     vault.ID,
			RoundNumber: targetRound,
		}
	} else if bal.Amount == 0 {
		participantDelta = 1
	}
	bal.Tickets += tickets
	bal.Amount += payload.Amount
	bal.UpdatedAt = time.Now().UTC()

	if err := tx.UpsertTicketBalance(ctx, bal); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToWriteBalance, err)
	}

	dep := &domain.Deposit{
		ID:           uuid.New(),
		UserID:       payload.UserID,
		VaultID:      vault.ID,
		TxHash:       evt.TxHash,
		Amount:       payload.Amount,
		TicketsDelta: tickets,
		RoundNumber:  targetRound,
		Status:       domain.RecordStatusConfirmed,
	}
	if err := tx.UpsertDeposit(ctx, dep); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToWriteRecord, err)
	}

	if err := tx.IncrementVaultDeposits(ctx, vault.ID, payload.Amount, participantDelta); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToUpdateVault, err)
	}

	return []event.Event{
		event.NewDepositConfirmedEvent(payload.UserID, vault.ID, evt.TxHash, payload.Amount, tickets, targetRound),
	}, nil
}

func (s *service) applyWithdrawal(ctx context.Context, tx repository.LedgerTx, vault *domain.Vault, evt *domain.ChainEvent) ([]event.Event, error) {
	payload, err := decodePayload[domain.WithdrawnPayload](evt)
	if err != nil {
		return s.applyInvalid(ctx, tx, vault, evt, err.Error())
	}

	round, err := tx.GetCurrentRound(ctx, vault.ID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToGetRound, err)
	}
	targetRound := accrualRound(round)

	bal, err := tx.GetTicketBalanceForUpdate(ctx, payload.UserID, vault.ID, targetRound)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToGetBalance, err)
	}

	// After a lock the standing position has not been carried into the
	// accrual round yet; pull it forward for this user so the burn applies
	// to the carried balance. The finalization carry skips rows that exist.
	if bal == nil && round != nil && targetRound > round.RoundNumber {
		prev, err := tx.GetTicketBalanceForUpdate(ctx, payload.UserID, vault.ID, round.RoundNumber)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", ErrContextFailedToGetBalance, err)
		}
		if prev != nil {
			bal = &domain.TicketBalance{
				UserID:      payload.UserID,
				VaultID:     vault.ID,
				RoundNumber: targetRound,
				Tickets:     prev.Tickets,
				Amount:      prev.Amount,
			}
		}
	}

	if bal == nil || bal.Amount < payload.Amount {
		// Should be impossible for a confirmed on-chain withdrawal; record
		// it as Failed for manual review instead of corrupting aggregates.
		return s.applyInvalid(ctx, tx, vault, evt, domain.ErrMsgInsufficientBalance)
	}

	burned := accountant.TicketsForWithdrawal(payload.Amount, bal.Amount, bal.Tickets)
	bal.Tickets -= burned
	bal.Amount -= payload.Amount
	bal.UpdatedAt = time.Now().UTC()

	if err := tx.UpsertTicketBalance(ctx, bal); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToWriteBalance, err)
	}

	// Withdrawal always breaks the streak, immediately and mid-round.
	if err := s.resetStreak(ctx, tx, payload.UserID, vault.ID); err != nil {
		return nil, err
	}

	participantDelta := 0
	if bal.Amount == 0 {
		participantDelta = -1
	}

	wd := &domain.Withdrawal{
		ID:           uuid.New(),
		UserID:       payload.UserID,
		VaultID:      vault.ID,
		TxHash:       evt.TxHash,
		Amount:       payload.Amount,
		TicketsDelta: -burned,
		RoundNumber:  targetRound,
		Status:       domain.RecordStatusConfirmed,
	}
	if err := tx.UpsertWithdrawal(ctx, wd); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToWriteRecord, err)
	}

	if err := tx.IncrementVaultWithdrawals(ctx, vault.ID, payload.Amount, participantDelta); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToUpdateVault, err)
	}

	return []event.Event{
		event.NewWithdrawalConfirmedEvent(payload.UserID, vault.ID, evt.TxHash, payload.Amount, -burned, targetRound),
	}, nil
}

func (s *service) resetStreak(ctx context.Context, tx repository.LedgerTx, userID, vaultID uuid.UUID) error {
	st, err := tx.GetStreakForUpdate(ctx, userID, vaultID)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrContextFailedToGetStreak, err)
	}
	if st == nil || st.CurrentStreak == 0 {
		return nil
	}
	st.CurrentStreak = 0
	st.UpdatedAt = time.Now().UTC()
	if err := tx.UpsertStreak(ctx, st); err != nil {
		return fmt.Errorf("%s: %w", ErrContextFailedToWriteStreak, err)
	}
	return nil
}

func (s *service) applyRoundStarted(ctx context.Context, tx repository.LedgerTx, vault *domain.Vault, evt *domain.ChainEvent) ([]event.Event, error) {
	payload, err := decodePayload[domain.RoundStartedPayload](evt)
	if err != nil {
		return s.applyInvalid(ctx, tx, vault, evt, err.Error())
	}

	round, err := tx.GetRoundByNumber(ctx, vault.ID, payload.RoundNumber)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToGetRound, err)
	}
	if round == nil {
		logger.FromContext(ctx).Warn(LogMsgRoundEventForUnknownRound, "vault_id", vault.ID, "round_number", payload.RoundNumber)
		return nil, nil
	}

	if !round.CanTransitionTo(domain.RoundStateActive) {
		// Confirmation already applied, or the round moved past Active.
		return nil, nil
	}

	// Local state flips only on chain confirmation; the CAS backstops a
	// concurrent transition between the read above and this write.
	rows, err := tx.UpdateRoundStateIfMatches(ctx, round.ID, domain.RoundStateScheduled, domain.RoundStateActive)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToUpdateRound, err)
	}
	if rows == 0 {
		return nil, nil
	}
	round.State = domain.RoundStateActive
	return []event.Event{event.NewRoundStartedEvent(round)}, nil
}

func (s *service) applyRoundEnded(ctx context.Context, tx repository.LedgerTx, vault *domain.Vault, evt *domain.ChainEvent) ([]event.Event, error) {
	payload, err := decodePayload[domain.RoundEndedPayload](evt)
	if err != nil {
		return s.applyInvalid(ctx, tx, vault, evt, err.Error())
	}

	// The lock itself happens locally at end_time (the lifecycle manager
	// freezes the ticket total); the chain event is confirmation only.
	logger.FromContext(ctx).Debug(LogMsgRoundEndConfirmed, "vault_id", vault.ID, "round_number", payload.RoundNumber)
	return nil, nil
}

func (s *service) applyRandomnessFulfilled(ctx context.Context, tx repository.LedgerTx, vault *domain.Vault, evt *domain.ChainEvent) ([]event.Event, error) {
	payload, err := decodePayload[domain.RandomnessFulfilledPayload](evt)
	if err != nil {
		return s.applyInvalid(ctx, tx, vault, evt, err.Error())
	}

	round, err := tx.GetRoundByNumber(ctx, vault.ID, payload.RoundNumber)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToGetRound, err)
	}
	if round == nil || round.State != domain.RoundStateRandomnessPending {
		logger.FromContext(ctx).Warn(LogMsgSeedForUnexpectedRound, "vault_id", vault.ID, "round_number", payload.RoundNumber)
		return nil, nil
	}

	handle := ""
	if round.RandomnessHandle != nil {
		handle = *round.RandomnessHandle
	}
	if !s.verifySeed(payload.Seed, payload.Proof, handle) {
		// An unverifiable seed must never reach winner selection.
		logger.FromContext(ctx).Error(LogMsgSeedVerificationFailed, "vault_id", vault.ID, "round_number", payload.RoundNumber)
		return s.applyInvalid(ctx, tx, vault, evt, domain.ErrMsgInvalidSeed)
	}

	if err := tx.SetRoundSeed(ctx, round.ID, payload.Seed); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToUpdateRound, err)
	}
	return nil, nil
}

func (s *service) applyPrizeClaimed(ctx context.Context, tx repository.LedgerTx, vault *domain.Vault, evt *domain.ChainEvent) ([]event.Event, error) {
	payload, err := decodePayload[domain.PrizeClaimedPayload](evt)
	if err != nil {
		return s.applyInvalid(ctx, tx, vault, evt, err.Error())
	}

	round, err := tx.GetRoundByNumber(ctx, vault.ID, payload.RoundNumber)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToGetRound, err)
	}
	if round == nil {
		logger.FromContext(ctx).Warn(LogMsgRoundEventForUnknownRound, "vault_id", vault.ID, "round_number", payload.RoundNumber)
		return nil, nil
	}

	rows, err := tx.MarkWinnerClaimed(ctx, round.ID, payload.UserID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToUpdateWinner, err)
	}
	if rows == 0 {
		// Already claimed or not a winner; idempotent either way.
		return nil, nil
	}
	return []event.Event{event.NewPrizeClaimedEvent(payload.UserID, vault.ID, payload.RoundNumber, payload.Amount)}, nil
}

func (s *service) applyYieldHarvested(ctx context.Context, tx repository.LedgerTx, vault *domain.Vault, evt *domain.ChainEvent) ([]event.Event, error) {
	payload, err := decodePayload[domain.YieldHarvestedPayload](evt)
	if err != nil {
		return s.applyInvalid(ctx, tx, vault, evt, err.Error())
	}

	round, err := tx.GetCurrentRound(ctx, vault.ID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToGetRound, err)
	}
	if round == nil {
		logger.FromContext(ctx).Warn(LogMsgHarvestWithoutRound, "vault_id", vault.ID)
		return nil, nil
	}

	if err := tx.AddToPrizePool(ctx, round.ID, payload.Amount); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToUpdateRound, err)
	}
	return nil, nil
}
