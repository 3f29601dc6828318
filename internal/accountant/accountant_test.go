package accountant

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTicketsForDeposit(t *testing.T) {
	tests := []struct {
		name     string
		amount   int64
		decimals int
		want     int64
	}{
		{"whole dollars", 5_000_000, 6, 5},
		{"fractional amount floors", 5_999_999, 6, 5},
		{"below one dollar", 999_999, 6, 0},
		{"zero amount", 0, 6, 0},
		{"negative amount", -1_000_000, 6, 0},
		{"zero decimals", 42, 0, 42},
		{"nine decimals", 3_500_000_000, 9, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TicketsForDeposit(tt.amount, tt.decimals))
		})
	}
}

func TestTicketsForWithdrawal(t *testing.T) {
	tests := []struct {
		name           string
		amount         int64
		balanceAmount  int64
		balanceTickets int64
		want           int64
	}{
		{"full withdrawal burns all", 100, 100, 10, 10},
		{"over-withdrawal burns all", 150, 100, 10, 10},
		{"half withdrawal burns half", 50, 100, 10, 5},
		{"proportional burn rounds up", 1, 100, 10, 1},
		{"tiny withdrawal still burns one", 1, 1000, 3, 1},
		{"zero amount burns nothing", 0, 100, 10, 0},
		{"no tickets to burn", 50, 100, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TicketsForWithdrawal(tt.amount, tt.balanceAmount, tt.balanceTickets))
		})
	}
}

func TestParseMultiplierSchedule(t *testing.T) {
	t.Run("parses and sorts tiers", func(t *testing.T) {
		schedule, err := ParseMultiplierSchedule("6:1.2,3:1.1,11:1.3")
		require.NoError(t, err)
		require.Len(t, schedule, 3)
		assert.Equal(t, 3, schedule[0].MinStreak)
		assert.Equal(t, 6, schedule[1].MinStreak)
		assert.Equal(t, 11, schedule[2].MinStreak)
	})

	t.Run("empty string is no schedule", func(t *testing.T) {
		schedule, err := ParseMultiplierSchedule("")
		require.NoError(t, err)
		assert.Nil(t, schedule)
	})

	t.Run("rejects multiplier below one", func(t *testing.T) {
		_, err := ParseMultiplierSchedule("3:0.5")
		assert.Error(t, err)
	})

	t.Run("rejects malformed tier", func(t *testing.T) {
		_, err := ParseMultiplierSchedule("3-1.1")
		assert.Error(t, err)
	})
}

func TestMultiplier(t *testing.T) {
	schedule, err := ParseMultiplierSchedule("3:1.1,6:1.2,11:1.3")
	require.NoError(t, err)

	tests := []struct {
		streak int
		want   float64
	}{
		{0, 1.0},
		{2, 1.0},
		{3, 1.1},
		{5, 1.1},
		{6, 1.2},
		{10, 1.2},
		{11, 1.3},
		{52, 1.3},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, schedule.Multiplier(tt.streak), "streak %d", tt.streak)
	}
}

func TestEffectiveTickets(t *testing.T) {
	schedule, err := ParseMultiplierSchedule("3:1.1,6:1.2,11:1.3")
	require.NoError(t, err)

	t.Run("no streak is unmultiplied", func(t *testing.T) {
		assert.Equal(t, int64(100), EffectiveTickets(100, 0, schedule))
	})

	t.Run("multiplier floors", func(t *testing.T) {
		// 5 * 1.1 = 5.5 -> 5
		assert.Equal(t, int64(5), EffectiveTickets(5, 3, schedule))
		assert.Equal(t, int64(110), EffectiveTickets(100, 3, schedule))
	})

	t.Run("top tier", func(t *testing.T) {
		assert.Equal(t, int64(130), EffectiveTickets(100, 20, schedule))
	})

	t.Run("empty schedule is identity", func(t *testing.T) {
		assert.Equal(t, int64(7), EffectiveTickets(7, 99, nil))
	})

	t.Run("zero tickets", func(t *testing.T) {
		assert.Equal(t, int64(0), EffectiveTickets(0, 10, schedule))
	})
}
