// Package session owns the in-memory combat state for the active
// campaign: the roster, the round counter, and the history log. Intents
// mutate state under a single lock, then fan out to the store and to
// registered listeners. The remote store is the durable backing, not a
// second owner; the in-memory copy is authoritative for the current
// edit.
package session

import (
	"context"
)

// Service handles combat session intents for the active campaign
type Service interface {
	// AddCombatant adds a combatant to the roster and rerolls the round
	AddCombatant(ctx context.Context, input *AddCombatantInput) (*AddCombatantOutput, error)

	// UpdateCombatant edits a combatant's fields and rerolls the round.
	// Unknown ids report Found=false without error.
	UpdateCombatant(ctx context.Context, input *UpdateCombatantInput) (*UpdateCombatantOutput, error)

	// RemoveCombatant removes a combatant and rerolls the round. Unknown
	// ids are a no-op.
	RemoveCombatant(ctx context.Context, input *RemoveCombatantInput) (*RemoveCombatantOutput, error)

	// DuplicateCombatant copies a combatant under a collision-free name
	// and rerolls the round. Unknown ids are a no-op.
	DuplicateCombatant(ctx context.Context, input *DuplicateCombatantInput) (*DuplicateCombatantOutput, error)

	// ToggleAdvantage cycles a combatant's advantage mode and rerolls
	// the round. Unknown ids are a no-op.
	ToggleAdvantage(ctx context.Context, input *ToggleAdvantageInput) (*ToggleAdvantageOutput, error)

	// RollAll rerolls every combatant, resets manual ordering, assigns
	// fresh baselines, and appends a history entry.
	RollAll(ctx context.Context, input *RollAllInput) (*RollAllOutput, error)

	// Reorder locks in a manual ordering from a drag-and-drop
	// permutation. A drag that does not move the dragged combatant is a
	// no-op.
	Reorder(ctx context.Context, input *ReorderInput) (*ReorderOutput, error)

	// RerollLuckyFeat spends a combatant's once-per-round feat reroll.
	// A no-op unless the combatant has the feat, sits on a natural 1,
	// and has not used it this round.
	RerollLuckyFeat(ctx context.Context, input *RerollLuckyFeatInput) (*RerollLuckyFeatOutput, error)

	// NextRound advances the round counter and rerolls
	NextRound(ctx context.Context, input *NextRoundInput) (*NextRoundOutput, error)

	// ResetRound returns to round 1 and rerolls
	ResetRound(ctx context.Context, input *ResetRoundInput) (*ResetRoundOutput, error)

	// ClearEnemies removes every enemy combatant and rerolls the round
	ClearEnemies(ctx context.Context, input *ClearEnemiesInput) (*ClearEnemiesOutput, error)

	// SwitchCampaign discards in-memory state and attaches to the given
	// campaign namespace, reloading from its remote snapshot.
	SwitchCampaign(ctx context.Context, input *SwitchCampaignInput) (*SwitchCampaignOutput, error)

	// GetState returns a deep-copied view of the current session
	GetState(ctx context.Context, input *GetStateInput) (*GetStateOutput, error)

	// AddListener registers a callback invoked with a fresh view after
	// every state change, local or remote
	AddListener(fn func(*StateView))
}
