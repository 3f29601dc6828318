package domain

import (
	"time"

	"github.com/google/uuid"
)

// RoundState represents the lifecycle state of a prize draw round
type RoundState string

// Round lifecycle states. Transitions only move forward:
// Scheduled -> Active -> Locked -> RandomnessPending -> Finalized
const (
	RoundStateScheduled         RoundState = "scheduled"
	RoundStateActive            RoundState = "active"
	RoundStateLocked            RoundState = "locked"
	RoundStateRandomnessPending RoundState = "randomness_pending"
	RoundStateFinalized         RoundState = "finalized"
)

// Round is one scheduled draw cycle for a vault.
// Unique on (VaultID, RoundNumber). Never deleted.
type Round struct {
	ID           uuid.UUID  `json:"id"`
	VaultID      uuid.UUID  `json:"vault_id"`
	RoundNumber  int64      `json:"round_number"`
	StartTime    time.Time  `json:"start_time"`
	EndTime      time.Time  `json:"end_time"`
	TotalTickets int64      `json:"total_tickets"`
	PrizePool    int64      `json:"prize_pool"`
	State        RoundState `json:"state"`
	// RandomnessSeed is the verified seed delivered by the chain once the
	// round's randomness request is fulfilled. Hex-encoded.
	RandomnessSeed *string `json:"randomness_seed,omitempty"`
	// RandomnessHandle is the on-chain request handle stored when randomness
	// is requested; on restart an in-flight request is re-queried via this
	// handle rather than re-submitted.
	RandomnessHandle *string `json:"randomness_handle,omitempty"`
	// RandomnessRequestedAt feeds the stuck-round timeout check.
	RandomnessRequestedAt *time.Time `json:"randomness_requested_at,omitempty"`
	// StuckFlagged marks a round that exceeded the randomness timeout and
	// needs operator intervention. A flagged round is never auto-retried.
	StuckFlagged bool       `json:"stuck_flagged"`
	CreatedAt    time.Time  `json:"created_at"`
	FinalizedAt  *time.Time `json:"finalized_at,omitempty"`
}

// CanTransitionTo reports whether the round may move to the given state.
func (r *Round) CanTransitionTo(next RoundState) bool {
	switch r.State {
	case RoundStateScheduled:
		return next == RoundStateActive
	case RoundStateActive:
		return next == RoundStateLocked
	case RoundStateLocked:
		return next == RoundStateRandomnessPending
	case RoundStateRandomnessPending:
		return next == RoundStateFinalized
	default:
		return false
	}
}
