package selector

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math/big"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/suivest/suivest-go/internal/domain"
)

// PrizeSplitDenominator is the basis-point denominator for prize shares
const PrizeSplitDenominator = 10000

// PrizeSplit is the configured prize share schedule in basis points,
// position 1 first. Shares must sum to PrizeSplitDenominator.
type PrizeSplit []int64

// ParsePrizeSplit parses a split from its external configuration form:
// comma-separated basis points, e.g. "5000,3000,2000".
func ParsePrizeSplit(raw string) (PrizeSplit, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("empty prize split")
	}

	var split PrizeSplit
	var total int64
	for _, part := range strings.Split(raw, ",") {
		share, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil || share <= 0 {
			return nil, fmt.Errorf("invalid prize share %q", part)
		}
		split = append(split, share)
		total += share
	}
	if total != PrizeSplitDenominator {
		return nil, fmt.Errorf("prize shares sum to %d, want %d", total, PrizeSplitDenominator)
	}
	return split, nil
}

// Entry is one user's effective ticket position in the lock-time snapshot
type Entry struct {
	UserID  uuid.UUID
	Tickets int64
}

// Result is one selected winner before persistence
type Result struct {
	UserID      uuid.UUID
	Position    int
	PrizeAmount int64
}

// SelectWinners deterministically picks up to len(split) distinct winners
// from the snapshot, weighted by effective tickets, and assigns prize
// amounts from prizePool according to split.
//
// Draw i derives from SHA-256(seed || i) mapped into the remaining total
// weight; selected users are excluded from subsequent draws (weighted
// sampling without replacement). Given the same seed and snapshot the output
// is bit-for-bit reproducible, which makes finalization safe to replay after
// a crash.
//
// If fewer distinct ticket holders exist than prize positions, all holders
// are selected and the unassigned shares are redistributed proportionally
// across the assigned ones. Any rounding remainder goes to position 1, so
// the amounts always sum to prizePool exactly.
func SelectWinners(snapshot []Entry, seed string, prizePool int64, split PrizeSplit) ([]Result, error) {
	seedBytes, err := hex.DecodeString(strings.TrimPrefix(seed, "0x"))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidSeed, seed)
	}

	holders := make([]Entry, 0, len(snapshot))
	for _, e := range snapshot {
		if e.Tickets > 0 {
			holders = append(holders, e)
		}
	}
	if len(holders) == 0 {
		return nil, domain.ErrNoTicketHolders
	}

	// Canonical order: snapshot iteration order must not influence the
	// outcome, so sort by user ID before drawing.
	sort.Slice(holders, func(i, j int) bool {
		return holders[i].UserID.String() < holders[j].UserID.String()
	})

	n := len(split)
	if n > len(holders) {
		n = len(holders)
	}

	var totalWeight int64
	for _, h := range holders {
		totalWeight += h.Tickets
	}

	selected := make([]Result, 0, n)
	for i := 0; i < n; i++ {
		target := drawValue(seedBytes, i, totalWeight)

		var cumulative int64
		idx := -1
		for j, h := range holders {
			cumulative += h.Tickets
			if target < cumulative {
				idx = j
				break
			}
		}
		if idx == -1 {
			idx = len(holders) - 1
		}

		selected = append(selected, Result{UserID: holders[idx].UserID, Position: i + 1})
		totalWeight -= holders[idx].Tickets
		holders = append(holders[:idx], holders[idx+1:]...)
	}

	assignPrizes(selected, prizePool, split)
	return selected, nil
}

// drawValue maps SHA-256(seed || position) into [0, totalWeight)
func drawValue(seed []byte, position int, totalWeight int64) int64 {
	var posBytes [8]byte
	binary.BigEndian.PutUint64(posBytes[:], uint64(position))

	h := sha256.New()
	h.Write(seed)
	h.Write(posBytes[:])
	digest := h.Sum(nil)

	v := new(big.Int).SetBytes(digest)
	v.Mod(v, big.NewInt(totalWeight))
	return v.Int64()
}

// assignPrizes splits prizePool across the selected winners. When fewer
// winners exist than configured positions, the leftover shares are folded in
// by renormalizing over the assigned shares.
func assignPrizes(selected []Result, prizePool int64, split PrizeSplit) {
	var shareTotal int64
	for i := range selected {
		shareTotal += split[i]
	}

	// pool * share can exceed int64 for large prize pools, so the
	// intermediate product goes through big.Int.
	pool := new(big.Int).SetInt64(prizePool)
	denom := new(big.Int).SetInt64(shareTotal)

	var assigned int64
	for i := range selected {
		amount := new(big.Int).Mul(pool, big.NewInt(split[i]))
		amount.Quo(amount, denom)
		selected[i].PrizeAmount = amount.Int64()
		assigned += selected[i].PrizeAmount
	}

	// Rounding remainder goes to position 1 so the sum matches exactly.
	if remainder := prizePool - assigned; remainder > 0 && len(selected) > 0 {
		selected[0].PrizeAmount += remainder
	}
}
