package initiative

import (
	"github.com/grimforge/initiative-api/internal/entities"
)

// MaxHistoryEntries bounds the history log; the oldest entry is evicted
// on overflow.
const MaxHistoryEntries = 20

// History is an append-only bounded log of per-round snapshots. Entries
// are deep value copies; mutating the live roster after a snapshot does
// not alter stored entries. Storage order is chronological; callers
// wanting most-recent-first reverse at the presentation boundary.
type History struct {
	entries []entities.HistoryEntry
}

// NewHistory creates an empty history log.
func NewHistory() *History {
	return &History{}
}

// Append snapshots the roster as a new entry. An empty roster is not
// recorded.
func (h *History) Append(round int, timestamp int64, combatants []*entities.Combatant) {
	if len(combatants) == 0 {
		return
	}

	entry := entities.HistoryEntry{
		Round:      round,
		Timestamp:  timestamp,
		Combatants: make([]entities.HistoryCombatant, len(combatants)),
	}
	for i, c := range combatants {
		entry.Combatants[i] = c.Snapshot()
	}

	h.entries = append(h.entries, entry)
	if len(h.entries) > MaxHistoryEntries {
		h.entries = h.entries[len(h.entries)-MaxHistoryEntries:]
	}
}

// Entries returns the log in chronological order as deep copies.
func (h *History) Entries() []entities.HistoryEntry {
	out := make([]entities.HistoryEntry, len(h.entries))
	for i, e := range h.entries {
		out[i] = e.Clone()
	}
	return out
}

// Len returns the number of stored entries.
func (h *History) Len() int {
	return len(h.entries)
}

// Replace swaps the log contents, deep-copying and re-bounding the
// incoming entries. Used when remote state overwrites local state.
func (h *History) Replace(entries []entities.HistoryEntry) {
	if len(entries) > MaxHistoryEntries {
		entries = entries[len(entries)-MaxHistoryEntries:]
	}
	h.entries = make([]entities.HistoryEntry, len(entries))
	for i, e := range entries {
		h.entries[i] = e.Clone()
	}
}

// Clear discards all entries.
func (h *History) Clear() {
	h.entries = nil
}
