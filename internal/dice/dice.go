// Package dice implements the d20 roll engine for initiative.
package dice

import (
	"math/rand"
	"time"

	"github.com/grimforge/initiative-api/internal/entities"
)

// Roller produces raw d20 values. Implementations must return values in
// [1, 20].
type Roller interface {
	D20() int
}

type randRoller struct {
	rng *rand.Rand
}

// NewRoller returns a Roller backed by a time-seeded PRNG.
func NewRoller() Roller {
	return &randRoller{rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

func (r *randRoller) D20() int {
	return 1 + r.rng.Intn(20)
}

// Sequence is a deterministic Roller for tests. It replays the given
// values in order and cycles when exhausted.
type Sequence struct {
	values []int
	next   int
}

// NewSequence creates a sequence roller. It panics on an empty sequence.
func NewSequence(values ...int) *Sequence {
	if len(values) == 0 {
		panic("dice: sequence roller needs at least one value")
	}
	return &Sequence{values: values}
}

// D20 returns the next value in the sequence.
func (s *Sequence) D20() int {
	v := s.values[s.next%len(s.values)]
	s.next++
	return v
}

// Outcome is the result of resolving one initiative roll.
type Outcome struct {
	// Rolls holds every die shown to the user: the raw roll(s) in roll
	// order, then any lucky reroll.
	Rolls []int
	// BaseRoll is the die result actually used.
	BaseRoll int
	// LuckyReroll is the discarded natural 1 when the halfling rule
	// fired, else nil.
	LuckyReroll *int
}

// Resolve computes a roll outcome for the given advantage mode and
// lucky rule. The halfling rule rerolls a resolved natural 1 once,
// silently; the feat rule never fires here, it is a separate
// player-triggered operation.
func Resolve(r Roller, mode entities.AdvantageMode, lucky *entities.LuckyRule) Outcome {
	var out Outcome

	switch mode {
	case entities.AdvantageAdvantage:
		r1, r2 := r.D20(), r.D20()
		out.Rolls = []int{r1, r2}
		out.BaseRoll = max(r1, r2)
	case entities.AdvantageDisadvantage:
		r1, r2 := r.D20(), r.D20()
		out.Rolls = []int{r1, r2}
		out.BaseRoll = min(r1, r2)
	default:
		roll := r.D20()
		out.Rolls = []int{roll}
		out.BaseRoll = roll
	}

	if lucky != nil && *lucky == entities.LuckyHalfling && out.BaseRoll == 1 {
		discarded := out.BaseRoll
		out.LuckyReroll = &discarded
		out.BaseRoll = r.D20()
		out.Rolls = append(out.Rolls, out.BaseRoll)
	}

	return out
}

// Initiative is the total turn-order value for a resolved roll.
func Initiative(baseRoll, dex, modifier int) int {
	return baseRoll + dex + modifier
}
