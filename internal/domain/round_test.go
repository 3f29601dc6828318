package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoundCanTransitionTo(t *testing.T) {
	states := []RoundState{
		RoundStateScheduled,
		RoundStateActive,
		RoundStateLocked,
		RoundStateRandomnessPending,
		RoundStateFinalized,
	}
	allowed := map[RoundState]RoundState{
		RoundStateScheduled:         RoundStateActive,
		RoundStateActive:            RoundStateLocked,
		RoundStateLocked:            RoundStateRandomnessPending,
		RoundStateRandomnessPending: RoundStateFinalized,
	}

	// Only the single forward step is legal from each state; everything
	// else, including skips and reversals, is rejected.
	for _, from := range states {
		for _, to := range states {
			r := &Round{State: from}
			want := allowed[from] == to
			assert.Equal(t, want, r.CanTransitionTo(to), "%s -> %s", from, to)
		}
	}
}

func TestFinalizedRoundIsTerminal(t *testing.T) {
	r := &Round{State: RoundStateFinalized}
	for _, next := range []RoundState{
		RoundStateScheduled, RoundStateActive, RoundStateLocked,
		RoundStateRandomnessPending, RoundStateFinalized,
	} {
		assert.False(t, r.CanTransitionTo(next))
	}
}
