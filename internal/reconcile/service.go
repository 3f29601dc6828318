package reconcile

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/suivest/suivest-go/internal/domain"
	"github.com/suivest/suivest-go/internal/event"
	"github.com/suivest/suivest-go/internal/logger"
	"github.com/suivest/suivest-go/internal/repository"
	"github.com/suivest/suivest-go/internal/worker"
)

// Service periodically re-derives vault aggregates from the raw derived
// records and compares them against the stored running totals. A mismatch
// means the projection logic or the database diverged, and the vault is
// halted rather than allowed to keep accruing wrong state.
type Service interface {
	// Run enqueues a reconciliation job per active vault on each interval.
	Run(ctx context.Context)

	// CheckVault verifies one vault's aggregates and halts it on mismatch.
	CheckVault(ctx context.Context, vaultID uuid.UUID) error
}

type service struct {
	ledger   repository.Ledger
	rounds   repository.Rounds
	eventBus event.Bus
	pool     *worker.Pool
	interval time.Duration
}

// NewService creates a new reconciliation service
func NewService(ledger repository.Ledger, rounds repository.Rounds, eventBus event.Bus, pool *worker.Pool, interval time.Duration) Service {
	return &service{
		ledger:   ledger,
		rounds:   rounds,
		eventBus: eventBus,
		pool:     pool,
		interval: interval,
	}
}

// vaultJob is the unit of work submitted to the pool
type vaultJob struct {
	svc     *service
	vaultID uuid.UUID
}

func (j *vaultJob) Process(ctx context.Context) error {
	return j.svc.CheckVault(ctx, j.vaultID)
}

func (s *service) Run(ctx context.Context) {
	log := logger.FromContext(ctx)
	log.Info(LogMsgReconcilerStarted, "interval", s.interval)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info(LogMsgReconcilerStopped)
			return
		case <-ticker.C:
			vaults, err := s.ledger.ListActiveVaults(ctx)
			if err != nil {
				log.Error(LogMsgReconcilerPassFailed, "error", err)
				continue
			}
			for _, vault := range vaults {
				if vault.Halted {
					continue
				}
				if !s.pool.TryEnqueue(&vaultJob{svc: s, vaultID: vault.ID}) {
					log.Warn(LogMsgQueueFull, "vault_id", vault.ID)
				}
			}
		}
	}
}

func (s *service) CheckVault(ctx context.Context, vaultID uuid.UUID) error {
	vault, err := s.ledger.GetVault(ctx, vaultID)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrContextFailedToGetVault, err)
	}
	if vault == nil || vault.Halted {
		return nil
	}

	if err := s.checkFlowAggregates(ctx, vault); err != nil {
		return err
	}
	return s.checkFinalizedRounds(ctx, vault)
}

// checkFlowAggregates re-sums confirmed deposit and withdrawal records and
// compares them against the vault's running totals.
func (s *service) checkFlowAggregates(ctx context.Context, vault *domain.Vault) error {
	deposits, err := s.ledger.SumConfirmedDeposits(ctx, vault.ID)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrContextFailedToSumRecords, err)
	}
	withdrawals, err := s.ledger.SumConfirmedWithdrawals(ctx, vault.ID)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrContextFailedToSumRecords, err)
	}

	if deposits != vault.TotalDeposits || withdrawals != vault.TotalWithdrawals {
		reason := fmt.Sprintf(HaltReasonAggregateFormat,
			vault.TotalDeposits, deposits, vault.TotalWithdrawals, withdrawals)
		return s.halt(ctx, vault.ID, reason)
	}
	return nil
}

// checkFinalizedRounds verifies that each finalized round's winner prizes sum
// to exactly its prize pool. Empty rounds carry their pool forward and have
// no winners, which is consistent by construction.
func (s *service) checkFinalizedRounds(ctx context.Context, vault *domain.Vault) error {
	rounds, err := s.rounds.ListFinalizedRounds(ctx, vault.ID, FinalizedRoundsPerPass)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrContextFailedToListRounds, err)
	}

	for _, round := range rounds {
		prizes, err := s.rounds.SumWinnerPrizes(ctx, round.ID)
		if err != nil {
			return fmt.Errorf("%s: %w", ErrContextFailedToSumPrizes, err)
		}
		if prizes == 0 {
			continue
		}
		if prizes != round.PrizePool {
			reason := fmt.Sprintf(HaltReasonPrizesFormat, round.RoundNumber, round.PrizePool, prizes)
			return s.halt(ctx, vault.ID, reason)
		}
	}
	return nil
}

// halt marks the vault halted and raises the alert. Halting wins over any
// concurrent processing: the projector and lifecycle manager both skip halted
// vaults on their next pass.
func (s *service) halt(ctx context.Context, vaultID uuid.UUID, reason string) error {
	if err := s.ledger.HaltVault(ctx, vaultID); err != nil {
		return fmt.Errorf("%s: %w", ErrContextFailedToHaltVault, err)
	}

	logger.FromContext(ctx).Error(LogMsgVaultHalted, "vault_id", vaultID, "reason", reason)

	if err := s.eventBus.Publish(ctx, event.NewVaultHaltedEvent(vaultID, reason)); err != nil {
		logger.FromContext(ctx).Error(LogMsgNotificationFailed, "vault_id", vaultID, "error", err)
	}
	return fmt.Errorf("%w: %s", domain.ErrAggregateMismatch, reason)
}
