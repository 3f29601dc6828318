package event

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/suivest/suivest-go/internal/domain"
)

// Type represents the type of an event
type Type string

// Metadata defines the type for event metadata
type Metadata interface{}

// Event represents a generic domain notification in the system
type Event struct {
	Version  string      `json:"version"` // Event schema version (e.g., "1.0")
	Type     Type        `json:"type"`
	Payload  interface{} `json:"payload"`
	Metadata Metadata    `json:"metadata"`
}

// Notification types published by the engine
const (
	DepositConfirmed    Type = Type(domain.NotifyDepositConfirmed)
	WithdrawalConfirmed Type = Type(domain.NotifyWithdrawalConfirmed)
	EventFailed         Type = Type(domain.NotifyEventFailed)
	RoundStarted        Type = Type(domain.NotifyRoundStarted)
	RoundLocked         Type = Type(domain.NotifyRoundLocked)
	RoundFinalized      Type = Type(domain.NotifyRoundFinalized)
	PrizeClaimed        Type = Type(domain.NotifyPrizeClaimed)
	VaultHalted         Type = Type(domain.NotifyVaultHalted)
	RoundStuck          Type = Type(domain.NotifyRoundStuck)
)

// Typed event payloads for type safety

// LedgerEntryPayloadV1 is the typed payload for deposit/withdrawal
// confirmation notifications
type LedgerEntryPayloadV1 struct {
	UserID       string `json:"user_id"`
	VaultID      string `json:"vault_id"`
	TxHash       string `json:"tx_hash"`
	Amount       int64  `json:"amount"`
	TicketsDelta int64  `json:"tickets_delta"`
	RoundNumber  int64  `json:"round_number"`
	Timestamp    int64  `json:"timestamp"`
}

// EventFailedPayloadV1 is the typed payload for failed-event notifications
type EventFailedPayloadV1 struct {
	VaultID   string `json:"vault_id"`
	TxHash    string `json:"tx_hash"`
	EventType string `json:"event_type"`
	Reason    string `json:"reason"`
	Timestamp int64  `json:"timestamp"`
}

// RoundPayloadV1 is the typed payload for round lifecycle notifications
type RoundPayloadV1 struct {
	RoundID      string `json:"round_id"`
	VaultID      string `json:"vault_id"`
	RoundNumber  int64  `json:"round_number"`
	TotalTickets int64  `json:"total_tickets"`
	PrizePool    int64  `json:"prize_pool"`
	Timestamp    int64  `json:"timestamp"`
}

// RoundFinalizedPayloadV1 is the typed payload for finalization notifications
type RoundFinalizedPayloadV1 struct {
	RoundID     string          `json:"round_id"`
	VaultID     string          `json:"vault_id"`
	RoundNumber int64           `json:"round_number"`
	PrizePool   int64           `json:"prize_pool"`
	Winners     []WinnerInfoV1  `json:"winners"`
	Timestamp   int64           `json:"timestamp"`
}

// WinnerInfoV1 describes one winner within a finalization notification
type WinnerInfoV1 struct {
	UserID      string `json:"user_id"`
	Position    int    `json:"position"`
	PrizeAmount int64  `json:"prize_amount"`
}

// PrizeClaimedPayloadV1 is the typed payload for claim notifications
type PrizeClaimedPayloadV1 struct {
	UserID      string `json:"user_id"`
	VaultID     string `json:"vault_id"`
	RoundNumber int64  `json:"round_number"`
	Amount      int64  `json:"amount"`
	Timestamp   int64  `json:"timestamp"`
}

// VaultHaltedPayloadV1 is the typed payload for vault-halt alerts
type VaultHaltedPayloadV1 struct {
	VaultID   string `json:"vault_id"`
	Reason    string `json:"reason"`
	Timestamp int64  `json:"timestamp"`
}

// RoundStuckPayloadV1 is the typed payload for stuck-round alerts
type RoundStuckPayloadV1 struct {
	RoundID     string `json:"round_id"`
	VaultID     string `json:"vault_id"`
	RoundNumber int64  `json:"round_number"`
	Timestamp   int64  `json:"timestamp"`
}

// Type-safe event constructors

// NewDepositConfirmedEvent creates a deposit confirmation notification
func NewDepositConfirmedEvent(userID, vaultID uuid.UUID, txHash string, amount, ticketsDelta, roundNumber int64) Event {
	return Event{
		Version: EventSchemaVersion,
		Type:    DepositConfirmed,
		Payload: LedgerEntryPayloadV1{
			UserID:       userID.String(),
			VaultID:      vaultID.String(),
			TxHash:       txHash,
			Amount:       amount,
			TicketsDelta: ticketsDelta,
			RoundNumber:  roundNumber,
			Timestamp:    time.Now().Unix(),
		},
		Metadata: nil,
	}
}

// NewWithdrawalConfirmedEvent creates a withdrawal confirmation notification
func NewWithdrawalConfirmedEvent(userID, vaultID uuid.UUID, txHash string, amount, ticketsDelta, roundNumber int64) Event {
	return Event{
		Version: EventSchemaVersion,
		Type:    WithdrawalConfirmed,
		Payload: LedgerEntryPayloadV1{
			UserID:       userID.String(),
			VaultID:      vaultID.String(),
			TxHash:       txHash,
			Amount:       amount,
			TicketsDelta: ticketsDelta,
			RoundNumber:  roundNumber,
			Timestamp:    time.Now().Unix(),
		},
		Metadata: nil,
	}
}

// NewEventFailedEvent creates a failed-event notification
func NewEventFailedEvent(vaultID uuid.UUID, txHash string, eventType domain.EventType, reason string) Event {
	return Event{
		Version: EventSchemaVersion,
		Type:    EventFailed,
		Payload: EventFailedPayloadV1{
			VaultID:   vaultID.String(),
			TxHash:    txHash,
			EventType: string(eventType),
			Reason:    reason,
			Timestamp: time.Now().Unix(),
		},
		Metadata: nil,
	}
}

// NewRoundStartedEvent creates a round-started notification
func NewRoundStartedEvent(round *domain.Round) Event {
	return newRoundEvent(RoundStarted, round)
}

// NewRoundLockedEvent creates a round-locked notification
func NewRoundLockedEvent(round *domain.Round) Event {
	return newRoundEvent(RoundLocked, round)
}

func newRoundEvent(t Type, round *domain.Round) Event {
	return Event{
		Version: EventSchemaVersion,
		Type:    t,
		Payload: RoundPayloadV1{
			RoundID:      round.ID.String(),
			VaultID:      round.VaultID.String(),
			RoundNumber:  round.RoundNumber,
			TotalTickets: round.TotalTickets,
			PrizePool:    round.PrizePool,
			Timestamp:    time.Now().Unix(),
		},
		Metadata: nil,
	}
}

// NewRoundFinalizedEvent creates a finalization notification with winners
func NewRoundFinalizedEvent(round *domain.Round, winners []domain.Winner) Event {
	infos := make([]WinnerInfoV1, 0, len(winners))
	for _, w := range winners {
		infos = append(infos, WinnerInfoV1{
			UserID:      w.UserID.String(),
			Position:    w.Position,
			PrizeAmount: w.PrizeAmount,
		})
	}
	return Event{
		Version: EventSchemaVersion,
		Type:    RoundFinalized,
		Payload: RoundFinalizedPayloadV1{
			RoundID:     round.ID.String(),
			VaultID:     round.VaultID.String(),
			RoundNumber: round.RoundNumber,
			PrizePool:   round.PrizePool,
			Winners:     infos,
			Timestamp:   time.Now().Unix(),
		},
		Metadata: nil,
	}
}

// NewPrizeClaimedEvent creates a prize-claim notification
func NewPrizeClaimedEvent(userID, vaultID uuid.UUID, roundNumber, amount int64) Event {
	return Event{
		Version: EventSchemaVersion,
		Type:    PrizeClaimed,
		Payload: PrizeClaimedPayloadV1{
			UserID:      userID.String(),
			VaultID:     vaultID.String(),
			RoundNumber: roundNumber,
			Amount:      amount,
			Timestamp:   time.Now().Unix(),
		},
		Metadata: nil,
	}
}

// NewVaultHaltedEvent creates a vault-halt alert
func NewVaultHaltedEvent(vaultID uuid.UUID, reason string) Event {
	return Event{
		Version: EventSchemaVersion,
		Type:    VaultHalted,
		Payload: VaultHaltedPayloadV1{
			VaultID:   vaultID.String(),
			Reason:    reason,
			Timestamp: time.Now().Unix(),
		},
		Metadata: nil,
	}
}

// NewRoundStuckEvent creates a stuck-round alert
func NewRoundStuckEvent(round *domain.Round) Event {
	return Event{
		Version: EventSchemaVersion,
		Type:    RoundStuck,
		Payload: RoundStuckPayloadV1{
			RoundID:     round.ID.String(),
			VaultID:     round.VaultID.String(),
			RoundNumber: round.RoundNumber,
			Timestamp:   time.Now().Unix(),
		},
		Metadata: nil,
	}
}

// Handler is a function that handles an event
type Handler func(ctx context.Context, event Event) error

// Bus defines the interface for an event bus
type Bus interface {
	Publish(ctx context.Context, event Event) error
	Subscribe(eventType Type, handler Handler)
}

// MemoryBus is an in-memory implementation of the Event Bus
type MemoryBus struct {
	handlers map[Type][]Handler
	mu       sync.RWMutex
}

// NewMemoryBus creates a new MemoryBus
func NewMemoryBus() *MemoryBus {
	return &MemoryBus{
		handlers: make(map[Type][]Handler),
	}
}

// Publish publishes an event to all subscribers
func (b *MemoryBus) Publish(ctx context.Context, event Event) error {
	b.mu.RLock()
	handlers, ok := b.handlers[event.Type]
	b.mu.RUnlock()

	if !ok {
		return nil
	}

	// Handlers execute synchronously; the callers treat publish failures as
	// non-fatal (the ledger write already committed).
	var errs []error
	for _, handler := range handlers {
		if err := handler(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf(LogMsgHandlerErrorFormat, len(errs), event.Type, errs)
	}

	return nil
}

// Subscribe subscribes a handler to an event type
func (b *MemoryBus) Subscribe(eventType Type, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)
}
