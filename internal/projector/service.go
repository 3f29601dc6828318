package projector

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/suivest/suivest-go/internal/domain"
	"github.com/suivest/suivest-go/internal/event"
	"github.com/suivest/suivest-go/internal/eventlog"
	"github.com/suivest/suivest-go/internal/gateway"
	"github.com/suivest/suivest-go/internal/logger"
	"github.com/suivest/suivest-go/internal/metrics"
	"github.com/suivest/suivest-go/internal/repository"
	"github.com/suivest/suivest-go/internal/worker"
)

// Service drains the chain event log and projects events onto the derived
// ledger tables. It is the sole writer of deposits, withdrawals, ticket
// balances, streak state and vault aggregates.
//
// Each event applies inside one transaction together with its processed
// flag, so a crash between steps leaves the event unprocessed and the ledger
// untouched; restart simply retries it.
type Service interface {
	// Run polls for unprocessed events until ctx is cancelled.
	Run(ctx context.Context)

	// RunOnce processes one batch for every vault with pending events.
	RunOnce(ctx context.Context) error

	// ProcessVault drains one batch for a single vault.
	ProcessVault(ctx context.Context, vaultID uuid.UUID) error
}

type service struct {
	log        eventlog.Service
	ledger     repository.Ledger
	eventBus   event.Bus
	locks      *worker.KeyedMutex
	batchSize  int
	interval   time.Duration
	verifySeed func(seed, proof, handle string) bool
}

// NewService creates a new projector service. locks serializes per-vault work
// with the lifecycle manager; pass the same instance to both.
func NewService(log eventlog.Service, ledger repository.Ledger, eventBus event.Bus, locks *worker.KeyedMutex, batchSize int, interval time.Duration) Service {
	return &service{
		log:        log,
		ledger:     ledger,
		eventBus:   eventBus,
		locks:      locks,
		batchSize:  batchSize,
		interval:   interval,
		verifySeed: gateway.VerifySeed,
	}
}

func (s *service) Run(ctx context.Context) {
	log := logger.FromContext(ctx)
	log.Info(LogMsgProjectorStarted, "interval", s.interval, "batchSize", s.batchSize)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info(LogMsgProjectorStopped)
			return
		case <-ticker.C:
			if err := s.RunOnce(ctx); err != nil {
				log.Error(LogMsgProjectorPassFailed, "error", err)
			}
		}
	}
}

func (s *service) RunOnce(ctx context.Context) error {
	vaults, err := s.log.VaultsWithWork(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrContextFailedToListVaults, err)
	}

	for _, vaultID := range vaults {
		if err := s.ProcessVault(ctx, vaultID); err != nil {
			// One vault failing must not starve the others.
			logger.FromContext(ctx).Error(LogMsgVaultProcessingFailed, "vault_id", vaultID, "error", err)
		}
	}
	return nil
}

func (s *service) ProcessVault(ctx context.Context, vaultID uuid.UUID) error {
	unlock := s.locks.Lock(vaultID.String())
	defer unlock()

	vault, err := s.ledger.GetVault(ctx, vaultID)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrContextFailedToGetVault, err)
	}
	if vault == nil {
		return fmt.Errorf("%w: %s", domain.ErrVaultNotFound, vaultID)
	}
	if vault.Halted {
		logger.FromContext(ctx).Warn(LogMsgSkippingHaltedVault, "vault_id", vaultID)
		return nil
	}
	if !vault.IsActive {
		return nil
	}

	events, err := s.log.Dequeue(ctx, vaultID, s.batchSize)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrContextFailedToDequeue, err)
	}

	for i := range events {
		if err := s.applyEvent(ctx, vault, &events[i]); err != nil {
			// Stop the batch: events must apply in sequence order, so a
			// failure on event N means N+1 cannot proceed this pass.
			return fmt.Errorf("%s seq=%d: %w", ErrContextFailedToApply, events[i].Seq, err)
		}
	}
	return nil
}

// applyEvent projects a single event. Derived records, aggregates and the
// processed flag commit atomically; notifications publish after commit.
func (s *service) applyEvent(ctx context.Context, vault *domain.Vault, evt *domain.ChainEvent) error {
	log := logger.FromContext(ctx)
	start := time.Now()

	tx, err := s.ledger.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrContextFailedToBeginTx, err)
	}
	defer repository.SafeRollback(ctx, tx)

	var notifications []event.Event

	if !evt.PayloadValid {
		notifications, err = s.applyInvalid(ctx, tx, vault, evt, domain.ErrMsgInvalidEventPayload)
	} else {
		switch evt.EventType {
		case domain.EventDeposited:
			notifications, err = s.applyDeposit(ctx, tx, vault, evt)
		case domain.EventWithdrawn:
			notifications, err = s.applyWithdrawal(ctx, tx, vault, evt)
		case domain.EventRoundStarted:
			notifications, err = s.applyRoundStarted(ctx, tx, vault, evt)
		case domain.EventRoundEnded:
			notifications, err = s.applyRoundEnded(ctx, tx, vault, evt)
		case domain.EventRandomnessFulfilled:
			notifications, err = s.applyRandomnessFulfilled(ctx, tx, vault, evt)
		case domain.EventPrizeClaimed:
			notifications, err = s.applyPrizeClaimed(ctx, tx, vault, evt)
		case domain.EventYieldHarvested:
			notifications, err = s.applyYieldHarvested(ctx, tx, vault, evt)
		default:
			// Unknown types are caught at the log boundary; belt and braces.
			notifications, err = s.applyInvalid(ctx, tx, vault, evt, domain.ErrMsgUnknownEventType)
		}
	}
	if err != nil {
		return err
	}

	if err := tx.MarkEventProcessed(ctx, evt.Seq); err != nil {
		return fmt.Errorf("%s: %w", ErrContextFailedToMarkProcessed, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("%s: %w", ErrContextFailedToCommitTx, err)
	}

	metrics.ChainEventsProcessed.WithLabelValues(string(evt.EventType)).Inc()
	metrics.EventProcessingDuration.WithLabelValues(string(evt.EventType)).Observe(time.Since(start).Seconds())

	for _, n := range notifications {
		if err := s.eventBus.Publish(ctx, n); err != nil {
			// The ledger write already committed; a notification failure is
			// logged, not propagated.
			log.Error(LogMsgNotificationFailed, "type", n.Type, "error", err)
		}
	}

	log.Debug(LogMsgEventApplied, "seq", evt.Seq, "type", evt.EventType, "vault_id", vault.ID)
	return nil
}

// applyInvalid records a Failed derived record for deposit/withdrawal events
// and marks everything else processed as-is. Invalid events never block the
// queue.
func (s *service) applyInvalid(ctx context.Context, tx repository.LedgerTx, vault *domain.Vault, evt *domain.ChainEvent, reason string) ([]event.Event, error) {
	switch evt.EventType {
	case domain.EventDeposited:
		dep := &domain.Deposit{
			ID:         uuid.New(),
			VaultID:    vault.ID,
			TxHash:     evt.TxHash,
			Status:     domain.RecordStatusFailed,
			FailReason: &reason,
		}
		if err := tx.UpsertDeposit(ctx, dep); err != nil {
			return nil, fmt.Errorf("%s: %w", ErrContextFailedToWriteRecord, err)
		}
	case domain.EventWithdrawn:
		wd := &domain.Withdrawal{
			ID:         uuid.New(),
			VaultID:    vault.ID,
			TxHash:     evt.TxHash,
			Status:     domain.RecordStatusFailed,
			FailReason: &reason,
		}
		if err := tx.UpsertWithdrawal(ctx, wd); err != nil {
			return nil, fmt.Errorf("%s: %w", ErrContextFailedToWriteRecord, err)
		}
	}

	metrics.ChainEventsFailed.WithLabelValues(string(evt.EventType)).Inc()
	return []event.Event{event.NewEventFailedEvent(vault.ID, evt.TxHash, evt.EventType, reason)}, nil
}

func decodePayload[T any](evt *domain.ChainEvent) (T, error) {
	var payload T
	if err := json.Unmarshal(evt.Payload, &payload); err != nil {
		return payload, fmt.Errorf("%w: %s", domain.ErrInvalidEventPayload, err.Error())
	}
	return payload, nil
}
