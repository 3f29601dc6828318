package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// EventType identifies the kind of chain event
type EventType string

// Chain event types emitted by the vault contract
const (
	EventDeposited            EventType = "deposited"
	EventWithdrawn            EventType = "withdrawn"
	EventRoundStarted         EventType = "round_started"
	EventRoundEnded           EventType = "round_ended"
	EventRandomnessFulfilled  EventType = "randomness_fulfilled"
	EventPrizeClaimed         EventType = "prize_claimed"
	EventYieldHarvested       EventType = "yield_harvested"
)

// KnownEventTypes lists every event type the projector understands.
var KnownEventTypes = []EventType{
	EventDeposited,
	EventWithdrawn,
	EventRoundStarted,
	EventRoundEnded,
	EventRandomnessFulfilled,
	EventPrizeClaimed,
	EventYieldHarvested,
}

// ChainEvent is one raw event delivered by the blockchain gateway.
//
// Events are append-only: rows are never deleted (audit trail) and the only
// mutation is flipping Processed. (VaultID, TxHash, EventType) is unique so
// at-least-once delivery from the gateway dedupes to a no-op.
type ChainEvent struct {
	// Seq is a strictly increasing insert-time sequence number. Per-vault
	// FIFO ordering follows Seq, not delivery timestamps, so out-of-order
	// redelivery across gateway reconnects cannot reorder application.
	Seq         int64           `json:"seq"`
	VaultID     uuid.UUID       `json:"vault_id"`
	EventType   EventType       `json:"event_type"`
	TxHash      string          `json:"tx_hash"`
	BlockHeight int64           `json:"block_height"`
	Payload     json.RawMessage `json:"payload"`
	// PayloadValid is determined once at the event log boundary. Invalid
	// events are still recorded but project to a Failed derived record.
	PayloadValid bool       `json:"payload_valid"`
	Processed    bool       `json:"processed"`
	ReceivedAt   time.Time  `json:"received_at"`
	ProcessedAt  *time.Time `json:"processed_at,omitempty"`
}

// DepositedPayload is the tagged payload for EventDeposited
type DepositedPayload struct {
	UserID uuid.UUID `json:"user_id" validate:"required"`
	Amount int64     `json:"amount" validate:"required,gt=0"`
}

// WithdrawnPayload is the tagged payload for EventWithdrawn
type WithdrawnPayload struct {
	UserID uuid.UUID `json:"user_id" validate:"required"`
	Amount int64     `json:"amount" validate:"required,gt=0"`
}

// RoundStartedPayload is the tagged payload for EventRoundStarted
type RoundStartedPayload struct {
	RoundNumber int64 `json:"round_number" validate:"required,gt=0"`
}

// RoundEndedPayload is the tagged payload for EventRoundEnded
type RoundEndedPayload struct {
	RoundNumber int64 `json:"round_number" validate:"required,gt=0"`
}

// RandomnessFulfilledPayload is the tagged payload for EventRandomnessFulfilled.
// Seed and Proof are hex-encoded; the lifecycle manager verifies the proof
// against the stored request handle before trusting the seed.
type RandomnessFulfilledPayload struct {
	RoundNumber int64  `json:"round_number" validate:"required,gt=0"`
	Seed        string `json:"seed" validate:"required,hexadecimal"`
	Proof       string `json:"proof" validate:"required,hexadecimal"`
}

// PrizeClaimedPayload is the tagged payload for EventPrizeClaimed
type PrizeClaimedPayload struct {
	UserID      uuid.UUID `json:"user_id" validate:"required"`
	RoundNumber int64     `json:"round_number" validate:"required,gt=0"`
	Amount      int64     `json:"amount" validate:"required,gt=0"`
}

// YieldHarvestedPayload is the tagged payload for EventYieldHarvested
type YieldHarvestedPayload struct {
	Amount int64 `json:"amount" validate:"required,gt=0"`
}
