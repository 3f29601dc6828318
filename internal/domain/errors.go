package domain

import "errors"

// Error message string constants - single source of truth for error messages
// Use these in assert.Contains() checks when testing error messages
const (
	// Vault errors
	ErrMsgVaultNotFound = "vault not found"
	ErrMsgVaultHalted   = "vault processing halted"

	// Round errors
	ErrMsgRoundNotFound          = "round not found"
	ErrMsgInvalidRoundTransition = "invalid round state transition"
	ErrMsgRoundStuck             = "round flagged stuck"
	ErrMsgRoundNotLocked         = "round is not locked"

	// Event errors
	ErrMsgEventNotFound       = "chain event not found"
	ErrMsgDuplicateEvent      = "duplicate chain event"
	ErrMsgUnknownEventType    = "unknown chain event type"
	ErrMsgInvalidEventPayload = "invalid event payload"

	// Selection errors
	ErrMsgNoTicketHolders = "no ticket holders at lock time"
	ErrMsgInvalidSeed     = "randomness seed failed verification"

	// Ledger errors
	ErrMsgInsufficientBalance  = "withdrawal exceeds recorded balance"
	ErrMsgAggregateMismatch    = "vault aggregate mismatch"
	ErrMsgProjectorNotCaughtUp = "projector not caught up to seed height"
)

// Common domain errors
// Wrap these with fmt.Errorf("%w: %s", domain.ErrXxx, details) for context.
var (
	ErrVaultNotFound = errors.New(ErrMsgVaultNotFound)
	ErrVaultHalted   = errors.New(ErrMsgVaultHalted)

	ErrRoundNotFound          = errors.New(ErrMsgRoundNotFound)
	ErrInvalidRoundTransition = errors.New(ErrMsgInvalidRoundTransition)
	ErrRoundStuck             = errors.New(ErrMsgRoundStuck)
	ErrRoundNotLocked         = errors.New(ErrMsgRoundNotLocked)

	ErrEventNotFound       = errors.New(ErrMsgEventNotFound)
	ErrDuplicateEvent      = errors.New(ErrMsgDuplicateEvent)
	ErrUnknownEventType    = errors.New(ErrMsgUnknownEventType)
	ErrInvalidEventPayload = errors.New(ErrMsgInvalidEventPayload)

	ErrNoTicketHolders = errors.New(ErrMsgNoTicketHolders)
	ErrInvalidSeed     = errors.New(ErrMsgInvalidSeed)

	ErrInsufficientBalance  = errors.New(ErrMsgInsufficientBalance)
	ErrAggregateMismatch    = errors.New(ErrMsgAggregateMismatch)
	ErrProjectorNotCaughtUp = errors.New(ErrMsgProjectorNotCaughtUp)
)
