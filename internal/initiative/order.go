// Package initiative computes canonical turn order and tracks the
// bookkeeping that reconciles rolled order with manual overrides. It is
// pure state manipulation; rolling and persistence live elsewhere.
package initiative

import (
	"sort"

	"github.com/grimforge/initiative-api/internal/entities"
)

// autoLess is the roll-derived comparator: initiative descending, then
// dex descending, then type precedence (party, friendly, enemy). Full
// ties report false so a stable sort preserves prior relative order.
func autoLess(a, b *entities.Combatant) bool {
	if a.Initiative != b.Initiative {
		return a.Initiative > b.Initiative
	}
	if a.Dex != b.Dex {
		return a.Dex > b.Dex
	}
	return a.Type.Precedence() < b.Type.Precedence()
}

// less merges manual overrides with the auto comparator. A combatant
// with a manual position always outranks one without, regardless of
// initiative. Equal manual positions fall back to the auto comparator.
func less(a, b *entities.Combatant) bool {
	switch {
	case a.ManualOrder != nil && b.ManualOrder != nil:
		if *a.ManualOrder != *b.ManualOrder {
			return *a.ManualOrder < *b.ManualOrder
		}
		return autoLess(a, b)
	case a.ManualOrder != nil:
		return true
	case b.ManualOrder != nil:
		return false
	default:
		return autoLess(a, b)
	}
}

// CanonicalOrder returns the fully resolved turn sequence. The input is
// not modified; the result shares combatant pointers with it. The sort
// is stable and deterministic: unchanged input yields identical output.
func CanonicalOrder(combatants []*entities.Combatant) []*entities.Combatant {
	ordered := make([]*entities.Combatant, len(combatants))
	copy(ordered, combatants)
	sort.SliceStable(ordered, func(i, j int) bool {
		return less(ordered[i], ordered[j])
	})
	return ordered
}

// AssignBaselines records each combatant's rank under the pure
// roll-derived order as its originalIndex. This is the reference point
// manual-move detection compares against; manual overrides are ignored
// here by design.
func AssignBaselines(combatants []*entities.Combatant) {
	ordered := make([]*entities.Combatant, len(combatants))
	copy(ordered, combatants)
	sort.SliceStable(ordered, func(i, j int) bool {
		return autoLess(ordered[i], ordered[j])
	})
	for i, c := range ordered {
		c.OriginalIndex = entities.IntPtr(i)
	}
}

// ApplyReorder locks in a manual ordering from the full id permutation a
// drag produced. Every combatant named in orderedIDs gets its position
// as manualOrder; moved-state is recomputed for the dragged combatant
// only, against its post-roll baseline. Returns false without mutating
// anything when the drag did not change the dragged combatant's
// position.
func ApplyReorder(combatants []*entities.Combatant, orderedIDs []string, draggedID string) bool {
	byID := make(map[string]*entities.Combatant, len(combatants))
	for _, c := range combatants {
		byID[c.ID] = c
	}

	dragged, ok := byID[draggedID]
	if !ok {
		return false
	}

	oldIndex := indexOf(CanonicalOrder(combatants), draggedID)
	newIndex := -1
	for i, id := range orderedIDs {
		if id == draggedID {
			newIndex = i
			break
		}
	}
	if newIndex == -1 || newIndex == oldIndex {
		return false
	}

	// Full re-derivation from the supplied permutation, not an
	// incremental patch.
	for i, id := range orderedIDs {
		if c, found := byID[id]; found {
			c.ManualOrder = entities.IntPtr(i)
		}
	}

	if dragged.OriginalIndex != nil {
		if newIndex != *dragged.OriginalIndex {
			dragged.WasMoved = true
			if newIndex > *dragged.OriginalIndex {
				dragged.MoveDirection = entities.DirectionPtr(entities.MoveDown)
			} else {
				dragged.MoveDirection = entities.DirectionPtr(entities.MoveUp)
			}
		} else {
			// Back at the baseline position
			dragged.WasMoved = false
			dragged.MoveDirection = nil
		}
	}

	return true
}

func indexOf(ordered []*entities.Combatant, id string) int {
	for i, c := range ordered {
		if c.ID == id {
			return i
		}
	}
	return -1
}
