package domain

import (
	"time"

	"github.com/google/uuid"
)

// RecordStatus is the status of a derived deposit/withdrawal record
type RecordStatus string

// Derived record statuses. Events arrive already confirmed on-chain, so a
// record goes straight to Confirmed on processing, or Failed when the event
// payload does not validate.
const (
	RecordStatusConfirmed RecordStatus = "confirmed"
	RecordStatusFailed    RecordStatus = "failed"
)

// Deposit is a derived record created when a Deposited event is processed
type Deposit struct {
	ID           uuid.UUID    `json:"id"`
	UserID       uuid.UUID    `json:"user_id"`
	VaultID      uuid.UUID    `json:"vault_id"`
	TxHash       string       `json:"tx_hash"`
	Amount       int64        `json:"amount"`
	TicketsDelta int64        `json:"tickets_delta"`
	RoundNumber  int64        `json:"round_number"`
	Status       RecordStatus `json:"status"`
	FailReason   *string      `json:"fail_reason,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
}

// Withdrawal is a derived record created when a Withdrawn event is processed
type Withdrawal struct {
	ID           uuid.UUID    `json:"id"`
	UserID       uuid.UUID    `json:"user_id"`
	VaultID      uuid.UUID    `json:"vault_id"`
	TxHash       string       `json:"tx_hash"`
	Amount       int64        `json:"amount"`
	TicketsDelta int64        `json:"tickets_delta"` // negative: tickets burned
	RoundNumber  int64        `json:"round_number"`
	Status       RecordStatus `json:"status"`
	FailReason   *string      `json:"fail_reason,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
}

// TicketBalance is a user's effective ticket position for one round of one
// vault. Recomputed incrementally by the accountant; Amount tracks the token
// value backing the tickets so proportional burns stay exact.
type TicketBalance struct {
	UserID      uuid.UUID `json:"user_id"`
	VaultID     uuid.UUID `json:"vault_id"`
	RoundNumber int64     `json:"round_number"`
	Tickets     int64     `json:"tickets"`
	Amount      int64     `json:"amount"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// StreakState tracks a user's consecutive-round participation per vault.
// CurrentStreak resets to zero the moment a withdrawal is processed,
// independent of round finalization.
type StreakState struct {
	UserID                 uuid.UUID `json:"user_id"`
	VaultID                uuid.UUID `json:"vault_id"`
	CurrentStreak          int       `json:"current_streak"`
	LongestStreak          int       `json:"longest_streak"`
	RoundsParticipated     int       `json:"rounds_participated"`
	LastParticipationRound int64     `json:"last_participation_round"`
	UpdatedAt              time.Time `json:"updated_at"`
}

// Winner is one prize position of a finalized round. Created atomically at
// finalization; HasClaimed flips only on a confirmed PrizeClaimed event.
type Winner struct {
	ID          uuid.UUID  `json:"id"`
	RoundID     uuid.UUID  `json:"round_id"`
	UserID      uuid.UUID  `json:"user_id"`
	Position    int        `json:"position"`
	PrizeAmount int64      `json:"prize_amount"`
	HasClaimed  bool       `json:"has_claimed"`
	ClaimedAt   *time.Time `json:"claimed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}
