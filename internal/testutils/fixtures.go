package testutils

import (
	"github.com/grimforge/initiative-api/internal/entities"
)

// Default fixture names
const (
	TestCampaignID   = "lost-mines"
	TestCampaignName = "Lost Mines"
)

// CreateTestCombatant creates a party combatant with sensible defaults
func CreateTestCombatant(id, name string) *entities.Combatant {
	return &entities.Combatant{
		ID:        id,
		Name:      name,
		Dex:       2,
		Modifier:  0,
		Type:      entities.TypeParty,
		Advantage: entities.AdvantageNormal,
		Rolls:     []int{10},
		BaseRoll:  10,
	}
}

// CreateTestEnemy creates an enemy combatant with sensible defaults
func CreateTestEnemy(id, name string) *entities.Combatant {
	c := CreateTestCombatant(id, name)
	c.Type = entities.TypeEnemy
	c.Dex = 0
	return c
}

// CreateTestCampaignData creates a one-round campaign snapshot holding
// the given combatants, with initiative derived from their fields
func CreateTestCampaignData(combatants ...*entities.Combatant) *entities.CampaignData {
	for _, c := range combatants {
		c.Initiative = c.BaseRoll + c.Dex + c.Modifier
	}
	return &entities.CampaignData{
		Combatants:   combatants,
		CurrentRound: 1,
		LastUpdated:  1700000000000,
	}
}
