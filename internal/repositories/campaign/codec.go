package campaign

import (
	"encoding/json"
	"sort"
	"strconv"

	"github.com/grimforge/initiative-api/internal/entities"
	"github.com/grimforge/initiative-api/internal/errors"
)

// encodeData serializes campaign data for the store: dense arrays,
// explicit nulls for absent optional fields (the entity pointer fields
// marshal to JSON null), never omitted collection keys.
func encodeData(data *entities.CampaignData) ([]byte, error) {
	clean := data.Clone()
	if clean.Combatants == nil {
		clean.Combatants = []*entities.Combatant{}
	}
	for _, c := range clean.Combatants {
		if c.Rolls == nil {
			c.Rolls = []int{}
		}
	}
	if clean.InitiativeHistory == nil {
		clean.InitiativeHistory = []entities.HistoryEntry{}
	}

	payload, err := json.Marshal(clean)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal campaign data")
	}
	return payload, nil
}

// sparseList accepts either a JSON array or an index-keyed object.
// Stores that cannot represent sparse arrays collapse them into objects
// keyed by stringified indices; both shapes normalize to a dense
// ordered sequence here.
type sparseList []json.RawMessage

func (s *sparseList) UnmarshalJSON(b []byte) error {
	var arr []json.RawMessage
	if err := json.Unmarshal(b, &arr); err == nil {
		*s = arr
		return nil
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(b, &obj); err != nil {
		return err
	}

	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		ni, erri := strconv.Atoi(keys[i])
		nj, errj := strconv.Atoi(keys[j])
		if erri == nil && errj == nil {
			return ni < nj
		}
		return keys[i] < keys[j]
	})

	out := make([]json.RawMessage, 0, len(keys))
	for _, k := range keys {
		out = append(out, obj[k])
	}
	*s = out
	return nil
}

func isJSONNull(raw json.RawMessage) bool {
	return len(raw) == 0 || string(raw) == "null"
}

type rawHistoryEntry struct {
	Round      int        `json:"round"`
	Timestamp  int64      `json:"timestamp"`
	Combatants sparseList `json:"combatants"`
}

type rawCampaignData struct {
	Combatants        sparseList `json:"combatants"`
	CurrentRound      int        `json:"currentRound"`
	InitiativeHistory sparseList `json:"initiativeHistory"`
	LastUpdated       int64      `json:"lastUpdated"`
}

// decodeData parses a stored campaign data node, tolerating legacy and
// sparse shapes: object-keyed lists, null entries, and missing fields
// are all normalized rather than rejected.
func decodeData(payload []byte) (*entities.CampaignData, error) {
	var raw rawCampaignData
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal campaign data")
	}

	data := &entities.CampaignData{
		CurrentRound: raw.CurrentRound,
		LastUpdated:  raw.LastUpdated,
		Combatants:   make([]*entities.Combatant, 0, len(raw.Combatants)),
	}

	for _, item := range raw.Combatants {
		if isJSONNull(item) {
			continue
		}
		var c entities.Combatant
		if err := json.Unmarshal(item, &c); err != nil {
			return nil, errors.Wrap(err, "failed to unmarshal combatant")
		}
		data.Combatants = append(data.Combatants, &c)
	}

	legacyHistory := false
	data.InitiativeHistory = make([]entities.HistoryEntry, 0, len(raw.InitiativeHistory))
	for _, item := range raw.InitiativeHistory {
		if isJSONNull(item) {
			continue
		}
		var rawEntry rawHistoryEntry
		if err := json.Unmarshal(item, &rawEntry); err != nil {
			return nil, errors.Wrap(err, "failed to unmarshal history entry")
		}
		entry := entities.HistoryEntry{
			Round:      rawEntry.Round,
			Timestamp:  rawEntry.Timestamp,
			Combatants: make([]entities.HistoryCombatant, 0, len(rawEntry.Combatants)),
		}
		for _, rawCombatant := range rawEntry.Combatants {
			if isJSONNull(rawCombatant) {
				continue
			}
			// Snapshots written before moved-state tracking existed
			// lack the wasMoved key entirely. Mixing them with current
			// snapshots would make moved-state ambiguous, so a log
			// containing any such entry is discarded wholesale.
			var probe struct {
				WasMoved *bool `json:"wasMoved"`
			}
			if err := json.Unmarshal(rawCombatant, &probe); err == nil && probe.WasMoved == nil {
				legacyHistory = true
			}
			var hc entities.HistoryCombatant
			if err := json.Unmarshal(rawCombatant, &hc); err != nil {
				return nil, errors.Wrap(err, "failed to unmarshal history combatant")
			}
			entry.Combatants = append(entry.Combatants, hc)
		}
		data.InitiativeHistory = append(data.InitiativeHistory, entry)
	}
	if legacyHistory {
		data.InitiativeHistory = []entities.HistoryEntry{}
	}

	data.Normalize()
	return data, nil
}
