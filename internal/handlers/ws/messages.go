package ws

import (
	"encoding/json"

	"github.com/grimforge/initiative-api/internal/entities"
	"github.com/grimforge/initiative-api/internal/orchestrators/session"
)

// intentMessage is the envelope clients send: an action name plus an
// action-specific payload.
type intentMessage struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload"`
}

// Client payload shapes, one per action family

type combatantPayload struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Dex       int     `json:"dex"`
	Modifier  int     `json:"modifier"`
	Type      string  `json:"type"`
	Advantage string  `json:"advantage"`
	Lucky     *string `json:"lucky"`
}

type targetPayload struct {
	ID string `json:"id"`
}

type reorderPayload struct {
	OrderedIDs []string `json:"orderedIds"`
	DraggedID  string   `json:"draggedId"`
}

type campaignPayload struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// stateMessage pushes the full session view; clients render from it
// without further requests.
type stateMessage struct {
	Type       string                  `json:"type"`
	CampaignID string                  `json:"campaignId"`
	Round      int                     `json:"round"`
	Order      []*entities.Combatant   `json:"order"`
	Party      []*entities.Combatant   `json:"party"`
	Friendlies []*entities.Combatant   `json:"friendlies"`
	Enemies    []*entities.Combatant   `json:"enemies"`
	History    []entities.HistoryEntry `json:"history"`
}

func newStateMessage(view *session.StateView) stateMessage {
	return stateMessage{
		Type:       "state",
		CampaignID: view.CampaignID,
		Round:      view.Round,
		Order:      view.Order,
		Party:      view.Party,
		Friendlies: view.Friendlies,
		Enemies:    view.Enemies,
		History:    view.History,
	}
}

// campaignInfo is the flattened campaign listing entry on the wire
type campaignInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	LastUpdated int64  `json:"lastUpdated"`
}

type campaignsMessage struct {
	Type      string         `json:"type"`
	Campaigns []campaignInfo `json:"campaigns"`
}

func newCampaignsMessage(listings []entities.CampaignListing) campaignsMessage {
	msg := campaignsMessage{
		Type:      "campaigns",
		Campaigns: make([]campaignInfo, len(listings)),
	}
	for i, l := range listings {
		msg.Campaigns[i] = campaignInfo{
			ID:          l.ID,
			Name:        l.Meta.Name,
			LastUpdated: l.Meta.LastUpdated,
		}
	}
	return msg
}

type errorMessage struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func luckyFromWire(lucky *string) *entities.LuckyRule {
	if lucky == nil || *lucky == "" {
		return nil
	}
	rule := entities.LuckyRule(*lucky)
	return &rule
}
