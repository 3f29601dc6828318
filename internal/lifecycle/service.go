package lifecycle

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/suivest/suivest-go/internal/accountant"
	"github.com/suivest/suivest-go/internal/domain"
	"github.com/suivest/suivest-go/internal/event"
	"github.com/suivest/suivest-go/internal/eventlog"
	"github.com/suivest/suivest-go/internal/gateway"
	"github.com/suivest/suivest-go/internal/logger"
	"github.com/suivest/suivest-go/internal/metrics"
	"github.com/suivest/suivest-go/internal/repository"
	"github.com/suivest/suivest-go/internal/selector"
	"github.com/suivest/suivest-go/internal/worker"
)

// Manager drives each vault's round through its lifecycle:
// Scheduled -> Active -> Locked -> RandomnessPending -> Finalized.
//
// All decisions are made from persisted round and ledger state, so the
// manager is crash-restartable: on restart it re-evaluates every vault from
// the database and picks up exactly where it left off. The only in-memory
// state is a resubmission rate limiter, which is safe to lose because chain
// submissions are idempotent per round.
type Manager interface {
	Run(ctx context.Context)
	RunOnce(ctx context.Context) error
	Tick(ctx context.Context, vaultID uuid.UUID) error
}

// Options bundles the lifecycle tuning knobs from configuration
type Options struct {
	Interval          time.Duration
	RoundDuration     time.Duration
	RandomnessTimeout time.Duration
	PrizeSplit        selector.PrizeSplit
	StreakMultipliers accountant.MultiplierSchedule
}

type manager struct {
	rounds   repository.Rounds
	ledger   repository.Ledger
	log      eventlog.Service
	gw       gateway.Gateway
	eventBus event.Bus
	locks    *worker.KeyedMutex
	opts     Options

	// lastSubmit rate-limits re-submission of idempotent chain calls while a
	// transition waits for its confirmation event.
	lastSubmit map[uuid.UUID]time.Time

	now func() time.Time
}

// NewManager creates a new round lifecycle manager. locks must be the same
// instance the projector uses so per-vault work is serialized.
func NewManager(rounds repository.Rounds, ledger repository.Ledger, log eventlog.Service, gw gateway.Gateway, eventBus event.Bus, locks *worker.KeyedMutex, opts Options) Manager {
	return &manager{
		rounds:     rounds,
		ledger:     ledger,
		log:        log,
		gw:         gw,
		eventBus:   eventBus,
		locks:      locks,
		opts:       opts,
		lastSubmit: make(map[uuid.UUID]time.Time),
		now:        time.Now,
	}
}

func (m *manager) Run(ctx context.Context) {
	log := logger.FromContext(ctx)
	log.Info(LogMsgManagerStarted, "interval", m.opts.Interval, "roundDuration", m.opts.RoundDuration)

	ticker := time.NewTicker(m.opts.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info(LogMsgManagerStopped)
			return
		case <-ticker.C:
			if err := m.RunOnce(ctx); err != nil {
				log.Error(LogMsgManagerPassFailed, "error", err)
			}
		}
	}
}

func (m *manager) RunOnce(ctx context.Context) error {
	vaults, err := m.ledger.ListActiveVaults(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrContextFailedToListVaults, err)
	}

	for _, vault := range vaults {
		if vault.Halted {
			continue
		}
		if err := m.Tick(ctx, vault.ID); err != nil {
			// Per-vault isolation: one vault's failure never blocks others.
			logger.FromContext(ctx).Error(LogMsgTickFailed, "vault_id", vault.ID, "error", err)
		}
	}
	return nil
}

func (m *manager) Tick(ctx context.Context, vaultID uuid.UUID) error {
	unlock := m.locks.Lock(vaultID.String())
	defer unlock()

	round, err := m.rounds.GetCurrentRound(ctx, vaultID)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrContextFailedToGetRound, err)
	}
	if round == nil {
		return m.bootstrap(ctx, vaultID)
	}

	switch round.State {
	case domain.RoundStateScheduled:
		return m.tickScheduled(ctx, round)
	case domain.RoundStateActive:
		return m.tickActive(ctx, round)
	case domain.RoundStateLocked:
		return m.tickLocked(ctx, round)
	case domain.RoundStateRandomnessPending:
		return m.tickRandomnessPending(ctx, round)
	default:
		return nil
	}
}

// bootstrap creates the first round for a vault that has none.
func (m *manager) bootstrap(ctx context.Context, vaultID uuid.UUID) error {
	now := m.now().UTC()
	round := &domain.Round{
		ID:          uuid.New(),
		VaultID:     vaultID,
		RoundNumber: 1,
		StartTime:   now,
		EndTime:     now.Add(m.opts.RoundDuration),
		State:       domain.RoundStateScheduled,
		CreatedAt:   now,
	}
	if err := m.rounds.CreateRound(ctx, round); err != nil {
		return fmt.Errorf("%s: %w", ErrContextFailedToCreateRound, err)
	}
	logger.FromContext(ctx).Info(LogMsgBootstrapRound, "vault_id", vaultID, "round_number", round.RoundNumber)
	return nil
}

// tickScheduled submits start-round once the start time passes. The local
// state flips only when the projector applies the RoundStarted chain event,
// so the ledger cannot diverge from the chain if the transaction fails.
func (m *manager) tickScheduled(ctx context.Context, round *domain.Round) error {
	if m.now().Before(round.StartTime) {
		return nil
	}
	if !m.shouldSubmit(round.ID) {
		return nil
	}

	callCtx, cancel := context.WithTimeout(ctx, GatewayCallTimeout)
	defer cancel()

	txHash, err := m.gw.StartRound(callCtx, round.VaultID, round.RoundNumber)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrContextFailedToStartRound, err)
	}

	logger.FromContext(ctx).Info(LogMsgStartRoundSubmitted, "vault_id", round.VaultID, "round_number", round.RoundNumber, "tx_hash", txHash)
	return nil
}

// tickActive locks the round at its scheduled end, freezing the ticket total
// from the sum of balances at that instant.
func (m *manager) tickActive(ctx context.Context, round *domain.Round) error {
	if m.now().Before(round.EndTime) {
		return nil
	}

	tickets, _, err := m.ledger.SumTicketBalances(ctx, round.VaultID, round.RoundNumber)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrContextFailedToSumTickets, err)
	}

	rows, err := m.rounds.LockRound(ctx, round.ID, tickets)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrContextFailedToLockRound, err)
	}
	if rows == 0 {
		return nil
	}

	round.State = domain.RoundStateLocked
	round.TotalTickets = tickets
	metrics.RoundsLocked.Inc()
	m.publish(ctx, event.NewRoundLockedEvent(round))

	logger.FromContext(ctx).Info(LogMsgRoundLocked, "vault_id", round.VaultID, "round_number", round.RoundNumber, "total_tickets", tickets)
	return nil
}

// tickLocked requests randomness and stores the request handle. Requests are
// idempotent per round, so a crash between the gateway call and the state
// update is resolved by the gateway returning the existing handle.
func (m *manager) tickLocked(ctx context.Context, round *domain.Round) error {
	callCtx, cancel := context.WithTimeout(ctx, GatewayCallTimeout)
	defer cancel()

	handle, err := m.gw.RequestRandomness(callCtx, round.VaultID, round.RoundNumber)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrContextFailedToRequestRandomness, err)
	}

	rows, err := m.rounds.SetRandomnessRequested(ctx, round.ID, handle)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrContextFailedToUpdateRound, err)
	}
	if rows == 0 {
		return nil
	}

	logger.FromContext(ctx).Info(LogMsgRandomnessRequested, "vault_id", round.VaultID, "round_number", round.RoundNumber, "handle", handle)
	return nil
}

// tickRandomnessPending finalizes once a verified seed is stored and the
// projector has drained the vault's event backlog, so winner selection never
// sees stale ticket data. A round waiting past the timeout is flagged for
// operator intervention instead of retrying forever.
func (m *manager) tickRandomnessPending(ctx context.Context, round *domain.Round) error {
	if round.StuckFlagged {
		return nil
	}

	if round.RandomnessSeed == nil {
		return m.awaitSeed(ctx, round)
	}

	drained, err := m.log.DrainedThrough(ctx, round.VaultID, maxBlockHeight)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrContextFailedToCheckDrain, err)
	}
	if !drained {
		logger.FromContext(ctx).Debug(LogMsgWaitingForProjector, "vault_id", round.VaultID, "round_number", round.RoundNumber)
		return nil
	}

	return m.finalize(ctx, round)
}

// awaitSeed re-queries the in-flight randomness request (restart-safe: the
// request is never re-submitted) and flags the round stuck on timeout.
func (m *manager) awaitSeed(ctx context.Context, round *domain.Round) error {
	log := logger.FromContext(ctx)

	if round.RandomnessHandle != nil {
		callCtx, cancel := context.WithTimeout(ctx, GatewayCallTimeout)
		defer cancel()

		status, err := m.gw.QueryRandomness(callCtx, *round.RandomnessHandle)
		if err != nil {
			log.Warn(LogMsgRandomnessQueryFailed, "vault_id", round.VaultID, "error", err)
		} else if status != nil && status.Fulfilled {
			if !gateway.VerifySeed(status.Seed, status.Proof, *round.RandomnessHandle) {
				log.Error(LogMsgSeedVerificationFailed, "vault_id", round.VaultID, "round_number", round.RoundNumber)
			} else if err := m.rounds.SetRoundSeed(ctx, round.ID, status.Seed); err != nil {
				return fmt.Errorf("%s: %w", ErrContextFailedToUpdateRound, err)
			}
			return nil
		}
	}

	if round.RandomnessRequestedAt != nil && m.now().Sub(*round.RandomnessRequestedAt) > m.opts.RandomnessTimeout {
		if err := m.rounds.FlagRoundStuck(ctx, round.ID); err != nil {
			return fmt.Errorf("%s: %w", ErrContextFailedToUpdateRound, err)
		}
		metrics.RoundsStuck.Inc()
		m.publish(ctx, event.NewRoundStuckEvent(round))
		log.Error(LogMsgRoundStuck, "vault_id", round.VaultID, "round_number", round.RoundNumber)
	}
	return nil
}

// shouldSubmit rate-limits idempotent chain resubmissions per round.
func (m *manager) shouldSubmit(roundID uuid.UUID) bool {
	last, ok := m.lastSubmit[roundID]
	if ok && m.now().Sub(last) < ResubmitInterval {
		return false
	}
	m.lastSubmit[roundID] = m.now()
	return true
}

func (m *manager) publish(ctx context.Context, evt event.Event) {
	if err := m.eventBus.Publish(ctx, evt); err != nil {
		logger.FromContext(ctx).Error(LogMsgNotificationFailed, "type", evt.Type, "error", err)
	}
}
