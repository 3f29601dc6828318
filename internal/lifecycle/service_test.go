package lifecycle

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/suivest/suivest-go/internal/domain"
	"github.com/suivest/suivest-go/internal/event"
	"github.com/suivest/suivest-go/internal/gateway"
	"github.com/suivest/suivest-go/internal/selector"
	"github.com/suivest/suivest-go/internal/worker"
)

const testSeed = "aabbccddeeff00112233445566778899aabbccddeeff00112233445566778899"

// commitSeed builds a seed that passes gateway.VerifySeed for the proof/handle pair
func commitSeed(t *testing.T, proofHex, handle string) string {
	t.Helper()
	proof, err := hex.DecodeString(proofHex)
	require.NoError(t, err)
	h := sha256.New()
	h.Write(proof)
	h.Write([]byte(handle))
	return hex.EncodeToString(h.Sum(nil))
}

type fixture struct {
	rounds  *MockRounds
	ledger  *MockLedger
	log     *MockEventLog
	gw      *MockGateway
	bus     *event.MemoryBus
	manager *manager
	now     time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		rounds: new(MockRounds),
		ledger: new(MockLedger),
		log:    new(MockEventLog),
		gw:     new(MockGateway),
		bus:    event.NewMemoryBus(),
		now:    time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
	}
	opts := Options{
		Interval:          time.Second,
		RoundDuration:     7 * 24 * time.Hour,
		RandomnessTimeout: 30 * time.Minute,
		PrizeSplit:        selector.PrizeSplit{5000, 3000, 2000},
	}
	f.manager = NewManager(f.rounds, f.ledger, f.log, f.gw, f.bus, worker.NewKeyedMutex(), opts).(*manager)
	f.manager.now = func() time.Time { return f.now }
	return f
}

func (f *fixture) capture(types ...event.Type) *[]event.Event {
	var captured []event.Event
	for _, tp := range types {
		f.bus.Subscribe(tp, func(ctx context.Context, e event.Event) error {
			captured = append(captured, e)
			return nil
		})
	}
	return &captured
}

func TestTickBootstrapsFirstRound(t *testing.T) {
	f := newFixture(t)
	vaultID := uuid.New()

	f.rounds.On("GetCurrentRound", mock.Anything, vaultID).Return(nil, nil)
	f.rounds.On("CreateRound", mock.Anything, mock.MatchedBy(func(r *domain.Round) bool {
		return r.VaultID == vaultID &&
			r.RoundNumber == 1 &&
			r.State == domain.RoundStateScheduled &&
			r.EndTime.Sub(r.StartTime) == f.manager.opts.RoundDuration
	})).Return(nil)

	require.NoError(t, f.manager.Tick(context.Background(), vaultID))
	f.rounds.AssertExpectations(t)
}

func TestScheduledBeforeStartTimeWaits(t *testing.T) {
	f := newFixture(t)
	round := &domain.Round{
		ID:        uuid.New(),
		VaultID:   uuid.New(),
		StartTime: f.now.Add(time.Hour),
		State:     domain.RoundStateScheduled,
	}
	f.rounds.On("GetCurrentRound", mock.Anything, round.VaultID).Return(round, nil)

	require.NoError(t, f.manager.Tick(context.Background(), round.VaultID))
	f.gw.AssertNotCalled(t, "StartRound", mock.Anything, mock.Anything, mock.Anything)
}

func TestScheduledSubmitsStartRound(t *testing.T) {
	f := newFixture(t)
	round := &domain.Round{
		ID:          uuid.New(),
		VaultID:     uuid.New(),
		RoundNumber: 2,
		StartTime:   f.now.Add(-time.Minute),
		State:       domain.RoundStateScheduled,
	}
	f.rounds.On("GetCurrentRound", mock.Anything, round.VaultID).Return(round, nil)
	f.gw.On("StartRound", mock.Anything, round.VaultID, int64(2)).Return("0xstart", nil)

	require.NoError(t, f.manager.Tick(context.Background(), round.VaultID))

	// A second tick inside the resubmit window must not submit again; the
	// state only flips when the chain confirmation is projected.
	require.NoError(t, f.manager.Tick(context.Background(), round.VaultID))
	f.gw.AssertNumberOfCalls(t, "StartRound", 1)

	// Past the window it resubmits the idempotent call.
	f.now = f.now.Add(ResubmitInterval + time.Second)
	require.NoError(t, f.manager.Tick(context.Background(), round.VaultID))
	f.gw.AssertNumberOfCalls(t, "StartRound", 2)
}

func TestActiveLocksAtEndTime(t *testing.T) {
	f := newFixture(t)
	captured := f.capture(event.RoundLocked)
	round := &domain.Round{
		ID:          uuid.New(),
		VaultID:     uuid.New(),
		RoundNumber: 3,
		EndTime:     f.now.Add(-time.Second),
		State:       domain.RoundStateActive,
	}
	f.rounds.On("GetCurrentRound", mock.Anything, round.VaultID).Return(round, nil)
	f.ledger.On("SumTicketBalances", mock.Anything, round.VaultID, int64(3)).Return(int64(250), int64(250_000_000), nil)
	f.rounds.On("LockRound", mock.Anything, round.ID, int64(250)).Return(int64(1), nil)

	require.NoError(t, f.manager.Tick(context.Background(), round.VaultID))

	require.Len(t, *captured, 1)
	payload := (*captured)[0].Payload.(event.RoundPayloadV1)
	assert.Equal(t, int64(250), payload.TotalTickets)
}

func TestActiveBeforeEndTimeWaits(t *testing.T) {
	f := newFixture(t)
	round := &domain.Round{
		ID:      uuid.New(),
		VaultID: uuid.New(),
		EndTime: f.now.Add(time.Hour),
		State:   domain.RoundStateActive,
	}
	f.rounds.On("GetCurrentRound", mock.Anything, round.VaultID).Return(round, nil)

	require.NoError(t, f.manager.Tick(context.Background(), round.VaultID))
	f.rounds.AssertNotCalled(t, "LockRound", mock.Anything, mock.Anything, mock.Anything)
}

func TestLockedRequestsRandomness(t *testing.T) {
	f := newFixture(t)
	round := &domain.Round{
		ID:          uuid.New(),
		VaultID:     uuid.New(),
		RoundNumber: 3,
		State:       domain.RoundStateLocked,
	}
	f.rounds.On("GetCurrentRound", mock.Anything, round.VaultID).Return(round, nil)
	f.gw.On("RequestRandomness", mock.Anything, round.VaultID, int64(3)).Return("handle-3", nil)
	f.rounds.On("SetRandomnessRequested", mock.Anything, round.ID, "handle-3").Return(int64(1), nil)

	require.NoError(t, f.manager.Tick(context.Background(), round.VaultID))
	f.rounds.AssertExpectations(t)
}

func TestRandomnessPendingRequeriesSeed(t *testing.T) {
	f := newFixture(t)
	handle := "handle-9"
	requestedAt := f.now.Add(-time.Minute)
	round := &domain.Round{
		ID:                    uuid.New(),
		VaultID:               uuid.New(),
		RoundNumber:           9,
		State:                 domain.RoundStateRandomnessPending,
		RandomnessHandle:      &handle,
		RandomnessRequestedAt: &requestedAt,
	}

	proof := "deadbeef"
	seed := commitSeed(t, proof, handle)

	f.rounds.On("GetCurrentRound", mock.Anything, round.VaultID).Return(round, nil)
	f.gw.On("QueryRandomness", mock.Anything, handle).
		Return(&gateway.RandomnessStatus{Handle: handle, Fulfilled: true, Seed: seed, Proof: proof}, nil)
	f.rounds.On("SetRoundSeed", mock.Anything, round.ID, seed).Return(nil)

	require.NoError(t, f.manager.Tick(context.Background(), round.VaultID))
	f.rounds.AssertExpectations(t)
}

func TestRandomnessPendingRejectsUnverifiableSeed(t *testing.T) {
	f := newFixture(t)
	handle := "handle-9"
	requestedAt := f.now.Add(-time.Minute)
	round := &domain.Round{
		ID:                    uuid.New(),
		VaultID:               uuid.New(),
		RoundNumber:           9,
		State:                 domain.RoundStateRandomnessPending,
		RandomnessHandle:      &handle,
		RandomnessRequestedAt: &requestedAt,
	}

	f.rounds.On("GetCurrentRound", mock.Anything, round.VaultID).Return(round, nil)
	f.gw.On("QueryRandomness", mock.Anything, handle).
		Return(&gateway.RandomnessStatus{Handle: handle, Fulfilled: true, Seed: testSeed, Proof: "deadbeef"}, nil)

	require.NoError(t, f.manager.Tick(context.Background(), round.VaultID))
	f.rounds.AssertNotCalled(t, "SetRoundSeed", mock.Anything, mock.Anything, mock.Anything)
}

func TestRandomnessTimeoutFlagsStuck(t *testing.T) {
	f := newFixture(t)
	captured := f.capture(event.RoundStuck)
	handle := "handle-4"
	requestedAt := f.now.Add(-time.Hour)
	round := &domain.Round{
		ID:                    uuid.New(),
		VaultID:               uuid.New(),
		RoundNumber:           4,
		State:                 domain.RoundStateRandomnessPending,
		RandomnessHandle:      &handle,
		RandomnessRequestedAt: &requestedAt,
	}

	f.rounds.On("GetCurrentRound", mock.Anything, round.VaultID).Return(round, nil)
	f.gw.On("QueryRandomness", mock.Anything, handle).
		Return(&gateway.RandomnessStatus{Handle: handle, Fulfilled: false}, nil)
	f.rounds.On("FlagRoundStuck", mock.Anything, round.ID).Return(nil)

	require.NoError(t, f.manager.Tick(context.Background(), round.VaultID))
	require.Len(t, *captured, 1)
}

func TestStuckRoundIsNeverRetried(t *testing.T) {
	f := newFixture(t)
	round := &domain.Round{
		ID:           uuid.New(),
		VaultID:      uuid.New(),
		State:        domain.RoundStateRandomnessPending,
		StuckFlagged: true,
	}
	f.rounds.On("GetCurrentRound", mock.Anything, round.VaultID).Return(round, nil)

	require.NoError(t, f.manager.Tick(context.Background(), round.VaultID))
	f.gw.AssertNotCalled(t, "QueryRandomness", mock.Anything, mock.Anything)
}

func TestFinalizeWaitsForProjectorDrain(t *testing.T) {
	f := newFixture(t)
	seed := testSeed
	round := &domain.Round{
		ID:             uuid.New(),
		VaultID:        uuid.New(),
		RoundNumber:    5,
		State:          domain.RoundStateRandomnessPending,
		RandomnessSeed: &seed,
	}
	f.rounds.On("GetCurrentRound", mock.Anything, round.VaultID).Return(round, nil)
	f.log.On("DrainedThrough", mock.Anything, round.VaultID, int64(maxBlockHeight)).Return(false, nil)

	require.NoError(t, f.manager.Tick(context.Background(), round.VaultID))
	f.rounds.AssertNotCalled(t, "BeginFinalizeTx", mock.Anything)
}

func TestFinalizeSingleHolder(t *testing.T) {
	f := newFixture(t)
	captured := f.capture(event.RoundFinalized)
	seed := testSeed
	userID := uuid.New()
	sitterID := uuid.New()
	round := &domain.Round{
		ID:             uuid.New(),
		VaultID:        uuid.New(),
		RoundNumber:    5,
		State:          domain.RoundStateRandomnessPending,
		PrizePool:      1000,
		TotalTickets:   10,
		RandomnessSeed: &seed,
	}
	tx := new(MockFinalizeTx)

	f.rounds.On("GetCurrentRound", mock.Anything, round.VaultID).Return(round, nil)
	f.log.On("DrainedThrough", mock.Anything, round.VaultID, int64(maxBlockHeight)).Return(true, nil)
	f.ledger.On("ListTicketBalances", mock.Anything, round.VaultID, int64(5)).
		Return([]domain.TicketBalance{{UserID: userID, VaultID: round.VaultID, RoundNumber: 5, Tickets: 10, Amount: 10_000_000}}, nil)
	f.ledger.On("ListStreaks", mock.Anything, round.VaultID).
		Return([]domain.StreakState{
			{UserID: userID, VaultID: round.VaultID, CurrentStreak: 2, LongestStreak: 2, RoundsParticipated: 2, LastParticipationRound: 4},
			{UserID: sitterID, VaultID: round.VaultID, CurrentStreak: 1, LongestStreak: 3},
		}, nil)

	f.rounds.On("BeginFinalizeTx", mock.Anything).Return(tx, nil)
	tx.On("FinalizeRound", mock.Anything, round.ID).Return(int64(1), nil)
	tx.On("InsertWinner", mock.Anything, mock.MatchedBy(func(w *domain.Winner) bool {
		return w.UserID == userID && w.Position == 1 && w.PrizeAmount == 1000
	})).Return(nil)
	tx.On("IncrementVaultPrizes", mock.Anything, round.VaultID, int64(1000)).Return(nil)
	// Participant extends the streak; the sitter resets.
	tx.On("UpsertStreak", mock.Anything, mock.MatchedBy(func(st *domain.StreakState) bool {
		return st.UserID == userID && st.CurrentStreak == 3 && st.LongestStreak == 3 && st.LastParticipationRound == 5
	})).Return(nil)
	tx.On("UpsertStreak", mock.Anything, mock.MatchedBy(func(st *domain.StreakState) bool {
		return st.UserID == sitterID && st.CurrentStreak == 0 && st.LongestStreak == 3
	})).Return(nil)
	tx.On("CreateRound", mock.Anything, mock.MatchedBy(func(r *domain.Round) bool {
		return r.RoundNumber == 6 && r.State == domain.RoundStateScheduled && r.PrizePool == 0
	})).Return(nil)
	tx.On("CarryTicketBalances", mock.Anything, round.VaultID, int64(5), int64(6)).Return(nil)
	tx.On("Commit", mock.Anything).Return(nil)
	tx.On("Rollback", mock.Anything).Return(nil)

	f.gw.On("EndRound", mock.Anything, round.VaultID, int64(5), seed).Return("0xend", nil)
	f.gw.On("DistributePrizes", mock.Anything, round.VaultID, int64(5), mock.MatchedBy(func(p []gateway.PrizePayout) bool {
		return len(p) == 1 && p[0].UserID == userID && p[0].Amount == 1000
	})).Return("0xdist", nil)

	require.NoError(t, f.manager.Tick(context.Background(), round.VaultID))

	require.Len(t, *captured, 1)
	tx.AssertExpectations(t)
	f.gw.AssertExpectations(t)
}

func TestFinalizeEmptyRoundCarriesPool(t *testing.T) {
	f := newFixture(t)
	seed := testSeed
	round := &domain.Round{
		ID:             uuid.New(),
		VaultID:        uuid.New(),
		RoundNumber:    2,
		State:          domain.RoundStateRandomnessPending,
		PrizePool:      777,
		RandomnessSeed: &seed,
	}
	tx := new(MockFinalizeTx)

	f.rounds.On("GetCurrentRound", mock.Anything, round.VaultID).Return(round, nil)
	f.log.On("DrainedThrough", mock.Anything, round.VaultID, int64(maxBlockHeight)).Return(true, nil)
	f.ledger.On("ListTicketBalances", mock.Anything, round.VaultID, int64(2)).Return([]domain.TicketBalance{}, nil)
	f.ledger.On("ListStreaks", mock.Anything, round.VaultID).Return([]domain.StreakState{}, nil)

	f.rounds.On("BeginFinalizeTx", mock.Anything).Return(tx, nil)
	tx.On("FinalizeRound", mock.Anything, round.ID).Return(int64(1), nil)
	tx.On("CreateRound", mock.Anything, mock.MatchedBy(func(r *domain.Round) bool {
		return r.RoundNumber == 3 && r.PrizePool == 777
	})).Return(nil)
	tx.On("CarryTicketBalances", mock.Anything, round.VaultID, int64(2), int64(3)).Return(nil)
	tx.On("Commit", mock.Anything).Return(nil)
	tx.On("Rollback", mock.Anything).Return(nil)

	// The on-chain round still closes even with nobody to pay.
	f.gw.On("EndRound", mock.Anything, round.VaultID, int64(2), seed).Return("0xend", nil)

	require.NoError(t, f.manager.Tick(context.Background(), round.VaultID))

	tx.AssertNotCalled(t, "InsertWinner", mock.Anything, mock.Anything)
	f.gw.AssertExpectations(t)
	f.gw.AssertNotCalled(t, "DistributePrizes", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestFinalizeAlreadyFinalizedIsNoOp(t *testing.T) {
	f := newFixture(t)
	captured := f.capture(event.RoundFinalized)
	seed := testSeed
	userID := uuid.New()
	round := &domain.Round{
		ID:             uuid.New(),
		VaultID:        uuid.New(),
		RoundNumber:    5,
		State:          domain.RoundStateRandomnessPending,
		PrizePool:      1000,
		RandomnessSeed: &seed,
	}
	tx := new(MockFinalizeTx)

	f.rounds.On("GetCurrentRound", mock.Anything, round.VaultID).Return(round, nil)
	f.log.On("DrainedThrough", mock.Anything, round.VaultID, int64(maxBlockHeight)).Return(true, nil)
	f.ledger.On("ListTicketBalances", mock.Anything, round.VaultID, int64(5)).
		Return([]domain.TicketBalance{{UserID: userID, Tickets: 10, Amount: 10_000_000}}, nil)
	f.ledger.On("ListStreaks", mock.Anything, round.VaultID).Return([]domain.StreakState{}, nil)

	f.rounds.On("BeginFinalizeTx", mock.Anything).Return(tx, nil)
	tx.On("FinalizeRound", mock.Anything, round.ID).Return(int64(0), nil)
	tx.On("Rollback", mock.Anything).Return(nil)

	require.NoError(t, f.manager.Tick(context.Background(), round.VaultID))

	assert.Empty(t, *captured)
	tx.AssertNotCalled(t, "Commit", mock.Anything)
	f.gw.AssertNotCalled(t, "DistributePrizes", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRunOnceSkipsHaltedVaults(t *testing.T) {
	f := newFixture(t)
	healthy := domain.Vault{ID: uuid.New(), IsActive: true}
	halted := domain.Vault{ID: uuid.New(), IsActive: true, Halted: true}

	f.ledger.On("ListActiveVaults", mock.Anything).Return([]domain.Vault{healthy, halted}, nil)
	f.rounds.On("GetCurrentRound", mock.Anything, healthy.ID).Return(nil, nil)
	f.rounds.On("CreateRound", mock.Anything, mock.Anything).Return(nil)

	require.NoError(t, f.manager.RunOnce(context.Background()))
	f.rounds.AssertNumberOfCalls(t, "GetCurrentRound", 1)
}
