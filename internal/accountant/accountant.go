package accountant

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// TicketsPerUSD is the base minting rate: one ticket per $1 equivalent.
const TicketsPerUSD = 1

// TicketsForDeposit computes the tickets minted for a deposit of the given
// amount in token base units. Vault tokens are $1-pegged, so the USD value is
// the amount scaled down by the token's decimals, floored.
func TicketsForDeposit(amount int64, tokenDecimals int) int64 {
	if amount <= 0 {
		return 0
	}
	unit := pow10(tokenDecimals)
	return (amount / unit) * TicketsPerUSD
}

// TicketsForWithdrawal computes the tickets burned when withdrawing amount
// from a position of balanceAmount backing balanceTickets. The burn is
// proportional and rounds up so a full withdrawal always empties the ticket
// balance. The result is capped at balanceTickets.
func TicketsForWithdrawal(amount, balanceAmount, balanceTickets int64) int64 {
	if amount <= 0 || balanceAmount <= 0 || balanceTickets <= 0 {
		return 0
	}
	if amount >= balanceAmount {
		return balanceTickets
	}
	burned := (amount*balanceTickets + balanceAmount - 1) / balanceAmount
	if burned > balanceTickets {
		burned = balanceTickets
	}
	return burned
}

// MultiplierTier is one step of the streak multiplier schedule
type MultiplierTier struct {
	MinStreak  int
	Multiplier float64
}

// MultiplierSchedule maps a streak length to a ticket multiplier. Tiers are
// kept sorted ascending by MinStreak; the highest tier at or below the streak
// applies. An empty schedule means no multiplier (1.0).
type MultiplierSchedule []MultiplierTier

// ParseMultiplierSchedule parses a schedule from its external configuration
// form: comma-separated "minStreak:multiplier" pairs, e.g. "3:1.1,6:1.2,11:1.3".
func ParseMultiplierSchedule(raw string) (MultiplierSchedule, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	var schedule MultiplierSchedule
	for _, part := range strings.Split(raw, ",") {
		fields := strings.Split(strings.TrimSpace(part), ":")
		if len(fields) != 2 {
			return nil, fmt.Errorf("invalid multiplier tier %q", part)
		}
		minStreak, err := strconv.Atoi(fields[0])
		if err != nil || minStreak < 0 {
			return nil, fmt.Errorf("invalid tier streak %q", fields[0])
		}
		mult, err := strconv.ParseFloat(fields[1], 64)
		if err != nil || mult < 1.0 {
			return nil, fmt.Errorf("invalid tier multiplier %q", fields[1])
		}
		schedule = append(schedule, MultiplierTier{MinStreak: minStreak, Multiplier: mult})
	}

	sort.Slice(schedule, func(i, j int) bool {
		return schedule[i].MinStreak < schedule[j].MinStreak
	})
	return schedule, nil
}

// Multiplier returns the multiplier for the given streak length.
func (s MultiplierSchedule) Multiplier(streak int) float64 {
	mult := 1.0
	for _, tier := range s {
		if streak >= tier.MinStreak {
			mult = tier.Multiplier
		}
	}
	return mult
}

// EffectiveTickets applies the streak multiplier to a raw ticket count,
// flooring the result. Effective tickets feed winner selection only; stored
// balances stay un-multiplied.
func EffectiveTickets(tickets int64, streak int, schedule MultiplierSchedule) int64 {
	if tickets <= 0 {
		return 0
	}
	return int64(math.Floor(float64(tickets) * schedule.Multiplier(streak)))
}

func pow10(n int) int64 {
	result := int64(1)
	for i := 0; i < n; i++ {
		result *= 10
	}
	return result
}
