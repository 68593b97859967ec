package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/grimforge/initiative-api/internal/dice"
	"github.com/grimforge/initiative-api/internal/entities"
	"github.com/grimforge/initiative-api/internal/pkg/idgen"
	mockclock "github.com/grimforge/initiative-api/internal/pkg/clock/mock"
	campaignmock "github.com/grimforge/initiative-api/internal/repositories/campaign/mock"
)

func newTestOrchestrator(t *testing.T) *Orchestrator {
	t.Helper()
	ctrl := gomock.NewController(t)

	clk := mockclock.NewMockClock(ctrl)
	clk.EXPECT().Now().Return(time.UnixMilli(1700000000000)).AnyTimes()

	// No repository calls expected in guard tests; any write is a
	// failure.
	repo := campaignmock.NewMockRepository(ctrl)

	o, err := New(&Config{
		CampaignRepo: repo,
		Roller:       dice.NewSequence(10),
		IDGenerator:  idgen.NewSequential("combatant"),
		Clock:        clk,
	})
	require.NoError(t, err)
	return o
}

func TestSaveSuppressedWhileApplyingRemote(t *testing.T) {
	o := newTestOrchestrator(t)
	o.campaignID = "active"
	o.applyingRemote = true

	id, data := o.saveSnapshotLocked()
	assert.Empty(t, id)
	assert.Nil(t, data)
}

func TestSaveSuppressedWithoutActiveCampaign(t *testing.T) {
	o := newTestOrchestrator(t)

	id, data := o.saveSnapshotLocked()
	assert.Empty(t, id)
	assert.Nil(t, data)
}

func TestSaveSnapshotIsDeepCopy(t *testing.T) {
	o := newTestOrchestrator(t)
	o.campaignID = "active"
	o.combatants = []*entities.Combatant{
		{ID: "c1", Name: "Aria", Type: entities.TypeParty, Advantage: entities.AdvantageNormal},
	}

	id, data := o.saveSnapshotLocked()
	require.Equal(t, "active", id)
	require.NotNil(t, data)

	o.combatants[0].Name = "changed"
	assert.Equal(t, "Aria", data.Combatants[0].Name)
}

func TestStaleDeliveryIsDropped(t *testing.T) {
	o := newTestOrchestrator(t)
	o.campaignID = "current"
	o.combatants = []*entities.Combatant{
		{ID: "c1", Name: "Aria", Type: entities.TypeParty, Advantage: entities.AdvantageNormal},
	}
	o.round = 3

	// A late delivery from the previous campaign's subscription
	o.applyRemote("previous", &entities.CampaignData{CurrentRound: 9})

	assert.Equal(t, 3, o.round)
	assert.Len(t, o.combatants, 1)
}

func TestNilDeliveryClearsState(t *testing.T) {
	o := newTestOrchestrator(t)
	o.campaignID = "current"
	o.combatants = []*entities.Combatant{
		{ID: "c1", Name: "Aria", Type: entities.TypeParty, Advantage: entities.AdvantageNormal},
	}
	o.round = 5

	o.applyRemote("current", nil)

	assert.Empty(t, o.combatants)
	assert.Equal(t, 1, o.round)
	assert.Zero(t, o.history.Len())
}

func TestDuplicateName(t *testing.T) {
	tests := []struct {
		name     string
		existing []string
		source   string
		want     string
	}{
		{
			name:     "first copy",
			existing: []string{"Goblin"},
			source:   "Goblin",
			want:     "Goblin 2",
		},
		{
			name:     "next in family",
			existing: []string{"Goblin", "Goblin 2"},
			source:   "Goblin",
			want:     "Goblin 3",
		},
		{
			name:     "copy of a copy",
			existing: []string{"Goblin", "Goblin 2", "Goblin 5"},
			source:   "Goblin 2",
			want:     "Goblin 6",
		},
		{
			name:     "unrelated names ignored",
			existing: []string{"Goblin", "Goblinoid", "Goblin King"},
			source:   "Goblin",
			want:     "Goblin 2",
		},
		{
			name:     "gap in suffixes takes max",
			existing: []string{"Wolf 4"},
			source:   "Wolf 4",
			want:     "Wolf 5",
		},
		{
			name:     "purely numeric name keeps its digits",
			existing: []string{"13"},
			source:   "13",
			want:     "13 2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, duplicateName(tt.existing, tt.source))
		})
	}
}
