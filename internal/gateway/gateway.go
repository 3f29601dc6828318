package gateway

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// RandomnessStatus is the state of an on-chain randomness request
type RandomnessStatus struct {
	Handle    string
	Fulfilled bool
	Seed      string // hex, set when fulfilled
	Proof     string // hex, set when fulfilled
}

// PrizePayout is one winner's share submitted for on-chain distribution
type PrizePayout struct {
	UserID uuid.UUID
	Amount int64
}

// Gateway is the narrow interface to the vault contract. Implementations
// talk to the chain RPC node; the engine never interprets chain state
// directly, it only submits transactions and consumes the event feed.
//
// All methods block on network calls and honor ctx cancellation.
type Gateway interface {
	SubmitDeposit(ctx context.Context, vaultID uuid.UUID, userID uuid.UUID, amount int64) (txHash string, err error)
	SubmitWithdrawal(ctx context.Context, vaultID uuid.UUID, userID uuid.UUID, amount int64) (txHash string, err error)

	StartRound(ctx context.Context, vaultID uuid.UUID, roundNumber int64) (txHash string, err error)
	EndRound(ctx context.Context, vaultID uuid.UUID, roundNumber int64, seed string) (txHash string, err error)

	// RequestRandomness submits a randomness request for the round and
	// returns an idempotent request handle. Re-submitting for the same round
	// returns the existing handle.
	RequestRandomness(ctx context.Context, vaultID uuid.UUID, roundNumber int64) (handle string, err error)

	// QueryRandomness re-queries an in-flight request by handle. Used on
	// restart instead of re-submitting.
	QueryRandomness(ctx context.Context, handle string) (*RandomnessStatus, error)

	ClaimPrize(ctx context.Context, vaultID uuid.UUID, userID uuid.UUID) (txHash string, err error)
	DistributePrizes(ctx context.Context, vaultID uuid.UUID, roundNumber int64, payouts []PrizePayout) (txHash string, err error)

	// WaitForTransaction blocks until the transaction is confirmed on-chain
	// or ctx expires.
	WaitForTransaction(ctx context.Context, txHash string) error
}

// ErrTransient wraps chain errors that are safe to retry (network failures,
// timeouts, node overload). Everything else is treated as permanent.
var ErrTransient = errors.New("transient chain error")

// Transient wraps err as retryable
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return errors.Join(ErrTransient, err)
}

// IsTransient reports whether err is retryable
func IsTransient(err error) bool {
	return errors.Is(err, ErrTransient)
}
