package eventlog

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/suivest/suivest-go/internal/domain"
	"github.com/suivest/suivest-go/internal/logger"
	"github.com/suivest/suivest-go/internal/metrics"
	"github.com/suivest/suivest-go/internal/repository"
)

// Outcome is the result of recording a chain event
type Outcome string

// Record outcomes
const (
	OutcomeAccepted  Outcome = "accepted"
	OutcomeDuplicate Outcome = "duplicate"
)

// Service is the durable append-only log of raw chain events.
//
// Record is idempotent on (vault_id, tx_hash, event_type): the gateway feed
// delivers at-least-once and redeliveries return OutcomeDuplicate. Events are
// never deleted; the projector flips the processed flag as it drains.
type Service interface {
	// Record appends a raw chain event, validating the payload shape at the
	// boundary. Malformed payloads are still recorded (audit trail) but
	// marked invalid so the projector writes a Failed derived record.
	Record(ctx context.Context, evt *domain.ChainEvent) (Outcome, error)

	// Dequeue returns up to limit unprocessed events for a vault in strict
	// insert-sequence order, oldest first.
	Dequeue(ctx context.Context, vaultID uuid.UUID, limit int) ([]domain.ChainEvent, error)

	// VaultsWithWork lists vaults that have unprocessed events.
	VaultsWithWork(ctx context.Context) ([]uuid.UUID, error)

	// DrainedThrough reports whether every event at or below blockHeight has
	// been processed for the vault.
	DrainedThrough(ctx context.Context, vaultID uuid.UUID, blockHeight int64) (bool, error)
}

type service struct {
	repo     repository.EventLog
	validate *validator.Validate
}

// NewService creates a new event log service
func NewService(repo repository.EventLog) Service {
	return &service{
		repo:     repo,
		validate: validator.New(),
	}
}

func (s *service) Record(ctx context.Context, evt *domain.ChainEvent) (Outcome, error) {
	log := logger.FromContext(ctx)

	if evt.ReceivedAt.IsZero() {
		evt.ReceivedAt = time.Now().UTC()
	}

	evt.PayloadValid = true
	if err := s.validatePayload(evt); err != nil {
		// Still recorded: the projector turns it into a Failed record rather
		// than silently dropping it.
		log.Warn(LogMsgPayloadInvalid, "tx_hash", evt.TxHash, "type", evt.EventType, "error", err)
		evt.PayloadValid = false
		metrics.ChainEventsIngested.WithLabelValues(string(evt.EventType), metrics.OutcomeInvalid).Inc()
	}

	inserted, err := s.repo.InsertEvent(ctx, evt)
	if err != nil {
		return "", fmt.Errorf("%s: %w", ErrContextFailedToInsert, err)
	}
	if !inserted {
		metrics.ChainEventsIngested.WithLabelValues(string(evt.EventType), metrics.OutcomeDuplicate).Inc()
		log.Debug(LogMsgDuplicateDelivery, "tx_hash", evt.TxHash, "type", evt.EventType, "vault_id", evt.VaultID)
		return OutcomeDuplicate, nil
	}
	metrics.ChainEventsIngested.WithLabelValues(string(evt.EventType), metrics.OutcomeAccepted).Inc()

	log.Debug(LogMsgEventRecorded, "tx_hash", evt.TxHash, "type", evt.EventType, "vault_id", evt.VaultID, "height", evt.BlockHeight)
	return OutcomeAccepted, nil
}

func (s *service) Dequeue(ctx context.Context, vaultID uuid.UUID, limit int) ([]domain.ChainEvent, error) {
	return s.repo.DequeueUnprocessed(ctx, vaultID, limit)
}

func (s *service) VaultsWithWork(ctx context.Context) ([]uuid.UUID, error) {
	return s.repo.VaultsWithUnprocessed(ctx)
}

func (s *service) DrainedThrough(ctx context.Context, vaultID uuid.UUID, blockHeight int64) (bool, error) {
	pending, err := s.repo.HasUnprocessedAtOrBelow(ctx, vaultID, blockHeight)
	if err != nil {
		return false, err
	}
	return !pending, nil
}

// validatePayload checks the payload against the tagged struct for the event
// type. Unknown event types are rejected here rather than deep in the
// projector.
func (s *service) validatePayload(evt *domain.ChainEvent) error {
	target, err := payloadTarget(evt.EventType)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(evt.Payload, target); err != nil {
		return fmt.Errorf("%w: %s", domain.ErrInvalidEventPayload, err.Error())
	}
	if err := s.validate.Struct(target); err != nil {
		return fmt.Errorf("%w: %s", domain.ErrInvalidEventPayload, err.Error())
	}
	return nil
}

func payloadTarget(t domain.EventType) (interface{}, error) {
	switch t {
	case domain.EventDeposited:
		return &domain.DepositedPayload{}, nil
	case domain.EventWithdrawn:
		return &domain.WithdrawnPayload{}, nil
	case domain.EventRoundStarted:
		return &domain.RoundStartedPayload{}, nil
	case domain.EventRoundEnded:
		return &domain.RoundEndedPayload{}, nil
	case domain.EventRandomnessFulfilled:
		return &domain.RandomnessFulfilledPayload{}, nil
	case domain.EventPrizeClaimed:
		return &domain.PrizeClaimedPayload{}, nil
	case domain.EventYieldHarvested:
		return &domain.YieldHarvestedPayload{}, nil
	default:
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownEventType, t)
	}
}
