// Package entities defines the domain types for the initiative tracker.
package entities

// CombatantType categorizes a combatant for tie-break ordering and list
// grouping. It carries no gameplay logic.
type CombatantType string

// Combatant types
const (
	TypeParty    CombatantType = "party"
	TypeFriendly CombatantType = "friendly"
	TypeEnemy    CombatantType = "enemy"
)

// Precedence returns the tie-break rank for the type. Player-aligned
// types resolve initiative ties before enemies; unknown types rank as
// enemies.
func (t CombatantType) Precedence() int {
	switch t {
	case TypeParty:
		return 0
	case TypeFriendly:
		return 1
	default:
		return 2
	}
}

// AdvantageMode selects how many d20s are rolled and which one counts.
type AdvantageMode string

// Advantage modes, cycled normal -> advantage -> disadvantage -> normal.
const (
	AdvantageNormal       AdvantageMode = "normal"
	AdvantageAdvantage    AdvantageMode = "advantage"
	AdvantageDisadvantage AdvantageMode = "disadvantage"
)

// Next returns the following mode in the toggle cycle.
func (m AdvantageMode) Next() AdvantageMode {
	switch m {
	case AdvantageNormal:
		return AdvantageAdvantage
	case AdvantageAdvantage:
		return AdvantageDisadvantage
	default:
		return AdvantageNormal
	}
}

// LuckyRule is a reroll rule attached to a combatant. A nil *LuckyRule
// means no rule.
type LuckyRule string

// Lucky rules
const (
	// LuckyHalfling silently rerolls any natural 1, once per roll.
	LuckyHalfling LuckyRule = "halfling"
	// LuckyFeat allows one manually-triggered reroll per round, usable
	// only after rolling a natural 1.
	LuckyFeat LuckyRule = "feat"
)

// MoveDirection records which way a combatant was dragged relative to
// its post-roll position.
type MoveDirection string

// Move directions
const (
	MoveUp   MoveDirection = "up"
	MoveDown MoveDirection = "down"
)

// Combatant is one participant in combat. Nullable fields are pointers
// so the persisted JSON carries explicit nulls rather than omitted keys.
type Combatant struct {
	ID       string        `json:"id"`
	Name     string        `json:"name"`
	Dex      int           `json:"dex"`
	Modifier int           `json:"modifier"`
	Type     CombatantType `json:"type"`

	Advantage AdvantageMode `json:"advantage"`
	Lucky     *LuckyRule    `json:"lucky"`
	LuckyUsed bool          `json:"luckyUsed"`

	// Rolls holds the raw die values produced by the last roll: one
	// normally, two under advantage/disadvantage, plus any lucky reroll
	// appended for display.
	Rolls []int `json:"rolls"`
	// BaseRoll is the die result actually used, post
	// advantage/disadvantage resolution and any lucky reroll.
	BaseRoll int `json:"baseRoll"`
	// LuckyReroll is the discarded natural 1 when a lucky rule fired
	// this roll.
	LuckyReroll *int `json:"luckyReroll"`
	// Initiative is BaseRoll + Dex + Modifier, the sort key.
	Initiative int `json:"initiative"`

	// ManualOrder pins an explicit position that outranks the computed
	// rank. Reset to nil on every group roll.
	ManualOrder *int `json:"manualOrder"`
	// WasMoved and MoveDirection report whether the canonical position
	// differs from the post-roll baseline.
	WasMoved      bool           `json:"wasMoved"`
	MoveDirection *MoveDirection `json:"moveDirection"`
	// OriginalIndex is the rank immediately after the most recent
	// automatic roll, before any manual reordering.
	OriginalIndex *int `json:"originalIndex"`
}

// Clone returns a deep copy of the combatant.
func (c *Combatant) Clone() *Combatant {
	if c == nil {
		return nil
	}
	dup := *c
	dup.Lucky = cloneLucky(c.Lucky)
	dup.LuckyReroll = cloneInt(c.LuckyReroll)
	dup.ManualOrder = cloneInt(c.ManualOrder)
	dup.MoveDirection = cloneDirection(c.MoveDirection)
	dup.OriginalIndex = cloneInt(c.OriginalIndex)
	if c.Rolls != nil {
		dup.Rolls = make([]int, len(c.Rolls))
		copy(dup.Rolls, c.Rolls)
	}
	return &dup
}

// CloneCombatants deep-copies a roster.
func CloneCombatants(cs []*Combatant) []*Combatant {
	out := make([]*Combatant, len(cs))
	for i, c := range cs {
		out[i] = c.Clone()
	}
	return out
}

func cloneInt(v *int) *int {
	if v == nil {
		return nil
	}
	dup := *v
	return &dup
}

func cloneLucky(v *LuckyRule) *LuckyRule {
	if v == nil {
		return nil
	}
	dup := *v
	return &dup
}

func cloneDirection(v *MoveDirection) *MoveDirection {
	if v == nil {
		return nil
	}
	dup := *v
	return &dup
}

// IntPtr is a convenience for building nullable int fields.
func IntPtr(v int) *int {
	return &v
}

// LuckyPtr is a convenience for building nullable lucky fields.
func LuckyPtr(r LuckyRule) *LuckyRule {
	return &r
}

// DirectionPtr is a convenience for building nullable move directions.
func DirectionPtr(d MoveDirection) *MoveDirection {
	return &d
}
