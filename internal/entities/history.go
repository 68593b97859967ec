package entities

// HistoryCombatant is the moment-in-time copy of a combatant stored in a
// history entry. It is a value copy, never a live reference; mutating
// the roster after a snapshot must not alter stored entries.
type HistoryCombatant struct {
	Name          string         `json:"name"`
	Type          CombatantType  `json:"type"`
	Dex           int            `json:"dex"`
	Modifier      int            `json:"modifier"`
	Initiative    int            `json:"initiative"`
	BaseRoll      int            `json:"baseRoll"`
	Advantage     AdvantageMode  `json:"advantage"`
	Rolls         []int          `json:"rolls"`
	Lucky         *LuckyRule     `json:"lucky"`
	LuckyReroll   *int           `json:"luckyReroll"`
	LuckyUsed     bool           `json:"luckyUsed"`
	ManualOrder   *int           `json:"manualOrder"`
	WasMoved      bool           `json:"wasMoved"`
	MoveDirection *MoveDirection `json:"moveDirection"`
}

// HistoryEntry is one immutable per-round snapshot of combat state.
type HistoryEntry struct {
	Round      int                `json:"round"`
	Timestamp  int64              `json:"timestamp"` // epoch millis
	Combatants []HistoryCombatant `json:"combatants"`
}

// Snapshot copies a combatant into its history representation.
func (c *Combatant) Snapshot() HistoryCombatant {
	rolls := make([]int, len(c.Rolls))
	copy(rolls, c.Rolls)
	return HistoryCombatant{
		Name:          c.Name,
		Type:          c.Type,
		Dex:           c.Dex,
		Modifier:      c.Modifier,
		Initiative:    c.Initiative,
		BaseRoll:      c.BaseRoll,
		Advantage:     c.Advantage,
		Rolls:         rolls,
		Lucky:         cloneLucky(c.Lucky),
		LuckyReroll:   cloneInt(c.LuckyReroll),
		LuckyUsed:     c.LuckyUsed,
		ManualOrder:   cloneInt(c.ManualOrder),
		WasMoved:      c.WasMoved,
		MoveDirection: cloneDirection(c.MoveDirection),
	}
}

// Clone returns a deep copy of the history entry.
func (e HistoryEntry) Clone() HistoryEntry {
	dup := HistoryEntry{
		Round:      e.Round,
		Timestamp:  e.Timestamp,
		Combatants: make([]HistoryCombatant, len(e.Combatants)),
	}
	for i, c := range e.Combatants {
		hc := c
		hc.Lucky = cloneLucky(c.Lucky)
		hc.LuckyReroll = cloneInt(c.LuckyReroll)
		hc.ManualOrder = cloneInt(c.ManualOrder)
		hc.MoveDirection = cloneDirection(c.MoveDirection)
		if c.Rolls != nil {
			hc.Rolls = make([]int, len(c.Rolls))
			copy(hc.Rolls, c.Rolls)
		}
		dup.Combatants[i] = hc
	}
	return dup
}
