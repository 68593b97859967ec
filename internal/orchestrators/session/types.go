package session

import (
	"github.com/grimforge/initiative-api/internal/entities"
)

// StateView is the read-only projection of the active session handed to
// presentation layers. Everything in it is a deep copy; mutating a view
// never touches session state.
type StateView struct {
	CampaignID string
	Round      int

	// Order is the canonical turn sequence after merging manual and
	// automatic ranking.
	Order []*entities.Combatant

	// Roster groupings in insertion order, for list rendering.
	Party      []*entities.Combatant
	Friendlies []*entities.Combatant
	Enemies    []*entities.Combatant

	// History is chronological; presentation reverses for
	// most-recent-first display.
	History []entities.HistoryEntry
}

// AddCombatantInput contains the fields for a new combatant
type AddCombatantInput struct {
	Name      string
	Dex       int
	Modifier  int
	Type      entities.CombatantType
	Advantage entities.AdvantageMode
	Lucky     *entities.LuckyRule
}

// AddCombatantOutput reports the assigned combatant ID
type AddCombatantOutput struct {
	CombatantID string
}

// UpdateCombatantInput edits an existing combatant's gameplay fields
type UpdateCombatantInput struct {
	CombatantID string
	Name        string
	Dex         int
	Modifier    int
	Type        entities.CombatantType
	Advantage   entities.AdvantageMode
	Lucky       *entities.LuckyRule
}

// UpdateCombatantOutput reports whether the combatant existed
type UpdateCombatantOutput struct {
	Found bool
}

// RemoveCombatantInput identifies the combatant to remove
type RemoveCombatantInput struct {
	CombatantID string
}

// RemoveCombatantOutput is empty; removal of an unknown id is a no-op
type RemoveCombatantOutput struct{}

// DuplicateCombatantInput identifies the combatant to copy
type DuplicateCombatantInput struct {
	CombatantID string
}

// DuplicateCombatantOutput reports the new combatant's id and
// collision-safe name; empty when the source id was unknown
type DuplicateCombatantOutput struct {
	CombatantID string
	Name        string
}

// ToggleAdvantageInput identifies the combatant whose mode to cycle
type ToggleAdvantageInput struct {
	CombatantID string
}

// ToggleAdvantageOutput reports the mode now in effect
type ToggleAdvantageOutput struct {
	Advantage entities.AdvantageMode
}

// RollAllInput triggers a fresh automatic round ordering
type RollAllInput struct{}

// RollAllOutput is empty; query the state view for results
type RollAllOutput struct{}

// ReorderInput carries the full id permutation a drag produced plus the
// dragged combatant
type ReorderInput struct {
	OrderedIDs []string
	DraggedID  string
}

// ReorderOutput reports whether the drag changed anything
type ReorderOutput struct {
	Changed bool
}

// RerollLuckyFeatInput identifies the combatant spending its feat reroll
type RerollLuckyFeatInput struct {
	CombatantID string
}

// RerollLuckyFeatOutput reports whether the reroll fired; it is a no-op
// unless the combatant has the feat, rolled a natural 1, and has not
// used it this round
type RerollLuckyFeatOutput struct {
	Performed bool
}

// NextRoundInput advances the round counter and rerolls
type NextRoundInput struct{}

// NextRoundOutput reports the new round number
type NextRoundOutput struct {
	Round int
}

// ResetRoundInput returns to round 1 and rerolls
type ResetRoundInput struct{}

// ResetRoundOutput is empty
type ResetRoundOutput struct{}

// ClearEnemiesInput removes every enemy combatant
type ClearEnemiesInput struct{}

// ClearEnemiesOutput reports how many were removed
type ClearEnemiesOutput struct {
	Removed int
}

// SwitchCampaignInput selects the active campaign namespace
type SwitchCampaignInput struct {
	CampaignID string
}

// SwitchCampaignOutput is empty
type SwitchCampaignOutput struct{}

// GetStateInput requests the current view
type GetStateInput struct{}

// GetStateOutput carries the view
type GetStateOutput struct {
	View *StateView
}
