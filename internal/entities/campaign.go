package entities

// CampaignMeta is the metadata node for a campaign namespace.
type CampaignMeta struct {
	Name        string `json:"name"`
	LastUpdated int64  `json:"lastUpdated"` // epoch millis
}

// CampaignListing pairs a campaign id with its metadata for selectors.
type CampaignListing struct {
	ID   string       `json:"id"`
	Meta CampaignMeta `json:"meta"`
}

// CampaignData is the per-campaign data node: the full combat state
// synced between devices.
type CampaignData struct {
	Combatants        []*Combatant   `json:"combatants"`
	CurrentRound      int            `json:"currentRound"`
	InitiativeHistory []HistoryEntry `json:"initiativeHistory"`
	LastUpdated       int64          `json:"lastUpdated"` // epoch millis
}

// Clone returns a deep copy of the campaign data.
func (d *CampaignData) Clone() *CampaignData {
	if d == nil {
		return nil
	}
	dup := &CampaignData{
		CurrentRound: d.CurrentRound,
		LastUpdated:  d.LastUpdated,
	}
	dup.Combatants = CloneCombatants(d.Combatants)
	dup.InitiativeHistory = make([]HistoryEntry, len(d.InitiativeHistory))
	for i := range d.InitiativeHistory {
		dup.InitiativeHistory[i] = d.InitiativeHistory[i].Clone()
	}
	return dup
}

// Normalize backfills defaults on state loaded from older persisted
// shapes: zero bonuses, nil lucky fields, auto ordering. Rolls stays
// nil-safe; a missing round becomes round 1.
func (d *CampaignData) Normalize() {
	if d == nil {
		return
	}
	if d.CurrentRound < 1 {
		d.CurrentRound = 1
	}
	combatants := d.Combatants[:0]
	for _, c := range d.Combatants {
		if c == nil {
			continue
		}
		if c.Type == "" {
			c.Type = TypeEnemy
		}
		if c.Advantage == "" {
			c.Advantage = AdvantageNormal
		}
		combatants = append(combatants, c)
	}
	d.Combatants = combatants

	history := d.InitiativeHistory[:0]
	for i := range d.InitiativeHistory {
		entry := d.InitiativeHistory[i]
		if entry.Combatants == nil {
			entry.Combatants = []HistoryCombatant{}
		}
		history = append(history, entry)
	}
	d.InitiativeHistory = history
}
