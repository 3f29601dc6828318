package domain

import (
	"time"

	"github.com/google/uuid"
)

// Vault is a pool of deposits denominated in one token type.
//
// The aggregate columns (TotalDeposits, TotalWithdrawals,
// TotalPrizesDistributed) are derived state owned by the projector: they must
// always equal the sum of the corresponding confirmed records for the vault.
// The reconciler verifies this and halts the vault on mismatch.
type Vault struct {
	ID                     uuid.UUID `json:"id"`
	TokenType              string    `json:"token_type"`
	TokenSymbol            string    `json:"token_symbol"`
	TokenDecimals          int       `json:"token_decimals"`
	TotalDeposits          int64     `json:"total_deposits"`
	TotalWithdrawals       int64     `json:"total_withdrawals"`
	TotalPrizesDistributed int64     `json:"total_prizes_distributed"`
	ActiveParticipants     int       `json:"active_participants"`
	IsActive               bool      `json:"is_active"`
	// Halted is set when an invariant violation is detected. A halted vault is
	// skipped by the projector and the lifecycle manager until an operator
	// clears the flag; other vaults are unaffected.
	Halted    bool      `json:"halted"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
