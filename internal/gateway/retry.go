package gateway

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"

	"github.com/suivest/suivest-go/internal/logger"
)

// Retry configuration defaults
const (
	DefaultMaxAttempts = 4
	DefaultBaseDelay   = 500 * time.Millisecond
)

// RetryingGateway decorates a Gateway with jittered exponential backoff on
// transient errors. Permanent errors and context cancellation pass through untouched.
type RetryingGateway struct {
	inner       Gateway
	maxAttempts int
	baseDelay   time.Duration
}

// NewRetryingGateway wraps gw with retry behavior
func NewRetryingGateway(gw Gateway, maxAttempts int, baseDelay time.Duration) *RetryingGateway {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	if baseDelay <= 0 {
		baseDelay = DefaultBaseDelay
	}
	return &RetryingGateway{inner: gw, maxAttempts: maxAttempts, baseDelay: baseDelay}
}

func (g *RetryingGateway) SubmitDeposit(ctx context.Context, vaultID, userID uuid.UUID, amount int64) (string, error) {
	return retryString(ctx, g, "SubmitDeposit", func(ctx context.Context) (string, error) {
		return g.inner.SubmitDeposit(ctx, vaultID, userID, amount)
	})
}

func (g *RetryingGateway) SubmitWithdrawal(ctx context.Context, vaultID, userID uuid.UUID, amount int64) (string, error) {
	return retryString(ctx, g, "SubmitWithdrawal", func(ctx context.Context) (string, error) {
		return g.inner.SubmitWithdrawal(ctx, vaultID, userID, amount)
	})
}

func (g *RetryingGateway) StartRound(ctx context.Context, vaultID uuid.UUID, roundNumber int64) (string, error) {
	return retryString(ctx, g, "StartRound", func(ctx context.Context) (string, error) {
		return g.inner.StartRound(ctx, vaultID, roundNumber)
	})
}

func (g *RetryingGateway) EndRound(ctx context.Context, vaultID uuid.UUID, roundNumber int64, seed string) (string, error) {
	return retryString(ctx, g, "EndRound", func(ctx context.Context) (string, error) {
		return g.inner.EndRound(ctx, vaultID, roundNumber, seed)
	})
}

func (g *RetryingGateway) RequestRandomness(ctx context.Context, vaultID uuid.UUID, roundNumber int64) (string, error) {
	return retryString(ctx, g, "RequestRandomness", func(ctx context.Context) (string, error) {
		return g.inner.RequestRandomness(ctx, vaultID, roundNumber)
	})
}

func (g *RetryingGateway) QueryRandomness(ctx context.Context, handle string) (*RandomnessStatus, error) {
	var status *RandomnessStatus
	_, err := retryString(ctx, g, "QueryRandomness", func(ctx context.Context) (string, error) {
		var err error
		status, err = g.inner.QueryRandomness(ctx, handle)
		return "", err
	})
	if err != nil {
		return nil, err
	}
	return status, nil
}

func (g *RetryingGateway) ClaimPrize(ctx context.Context, vaultID, userID uuid.UUID) (string, error) {
	return retryString(ctx, g, "ClaimPrize", func(ctx context.Context) (string, error) {
		return g.inner.ClaimPrize(ctx, vaultID, userID)
	})
}

func (g *RetryingGateway) DistributePrizes(ctx context.Context, vaultID uuid.UUID, roundNumber int64, payouts []PrizePayout) (string, error) {
	return retryString(ctx, g, "DistributePrizes", func(ctx context.Context) (string, error) {
		return g.inner.DistributePrizes(ctx, vaultID, roundNumber, payouts)
	})
}

func (g *RetryingGateway) WaitForTransaction(ctx context.Context, txHash string) error {
	_, err := retryString(ctx, g, "WaitForTransaction", func(ctx context.Context) (string, error) {
		return "", g.inner.WaitForTransaction(ctx, txHash)
	})
	return err
}

func retryString(ctx context.Context, g *RetryingGateway, op string, fn func(context.Context) (string, error)) (string, error) {
	log := logger.FromContext(ctx)

	var lastErr error
	delay := g.baseDelay
	for attempt := 1; attempt <= g.maxAttempts; attempt++ {
		result, err := fn(ctx)
		if err == nil {
			return result, nil
		}
		if !IsTransient(err) {
			return "", err
		}
		lastErr = err

		if attempt < g.maxAttempts {
			sleep := withJitter(delay)
			log.Warn("Transient chain error, retrying", "op", op, "attempt", attempt, "delay", sleep, "error", err)
			select {
			case <-time.After(sleep):
			case <-ctx.Done():
				return "", ctx.Err()
			}
			delay *= 2
		}
	}
	return "", lastErr
}

// withJitter spreads concurrent retries apart by stretching the delay by a
// random amount up to half its length.
func withJitter(d time.Duration) time.Duration {
	return d + rand.N(d/2+1)
}
