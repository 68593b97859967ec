package session

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/grimforge/initiative-api/internal/dice"
	"github.com/grimforge/initiative-api/internal/entities"
	"github.com/grimforge/initiative-api/internal/errors"
	"github.com/grimforge/initiative-api/internal/initiative"
	"github.com/grimforge/initiative-api/internal/pkg/clock"
	"github.com/grimforge/initiative-api/internal/pkg/idgen"
	"github.com/grimforge/initiative-api/internal/repositories/campaign"
)

// saveTimeout bounds each background write to the store
const saveTimeout = 5 * time.Second

// Config holds the dependencies for the session orchestrator
type Config struct {
	CampaignRepo campaign.Repository
	Roller       dice.Roller
	IDGenerator  idgen.Generator
	Clock        clock.Clock
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()
	if c.CampaignRepo == nil {
		vb.RequiredField("CampaignRepo")
	}
	if c.Roller == nil {
		vb.RequiredField("Roller")
	}
	if c.IDGenerator == nil {
		vb.RequiredField("IDGenerator")
	}
	if c.Clock == nil {
		vb.RequiredField("Clock")
	}
	return vb.Build()
}

// Orchestrator implements Service. All state mutation happens under a
// single mutex; store writes are fired from outside the critical
// section so a slow store never blocks the next intent.
type Orchestrator struct {
	campaignRepo campaign.Repository
	roller       dice.Roller
	idGen        idgen.Generator
	clock        clock.Clock

	mu         sync.Mutex
	campaignID string
	combatants []*entities.Combatant
	round      int
	history    *initiative.History
	// applyingRemote suppresses outbound saves while an inbound remote
	// value is being applied, so a sync delivery never echoes back out
	// as a write.
	applyingRemote bool
	subCancel      context.CancelFunc

	listenerMu sync.Mutex
	listeners  []func(*StateView)
}

// New creates a new session orchestrator
func New(cfg *Config) (*Orchestrator, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &Orchestrator{
		campaignRepo: cfg.CampaignRepo,
		roller:       cfg.Roller,
		idGen:        cfg.IDGenerator,
		clock:        cfg.Clock,
		round:        1,
		history:      initiative.NewHistory(),
	}, nil
}

// Ensure Orchestrator implements Service
var _ Service = (*Orchestrator)(nil)

// AddListener registers a state-change callback
func (o *Orchestrator) AddListener(fn func(*StateView)) {
	if fn == nil {
		return
	}
	o.listenerMu.Lock()
	defer o.listenerMu.Unlock()
	o.listeners = append(o.listeners, fn)
}

// AddCombatant adds a combatant and rerolls the round
func (o *Orchestrator) AddCombatant(_ context.Context, input *AddCombatantInput) (*AddCombatantOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, errors.InvalidArgument("combatant name is required")
	}

	combatant := &entities.Combatant{
		ID:        o.idGen.Generate(),
		Name:      name,
		Dex:       input.Dex,
		Modifier:  input.Modifier,
		Type:      normalizeType(input.Type),
		Advantage: normalizeAdvantage(input.Advantage),
	}
	if input.Lucky != nil {
		combatant.Lucky = entities.LuckyPtr(*input.Lucky)
	}

	o.mu.Lock()
	o.combatants = append(o.combatants, combatant)
	o.rollAllLocked()
	id, data := o.saveSnapshotLocked()
	view := o.viewLocked()
	o.mu.Unlock()

	o.persist(id, data)
	o.notify(view)

	slog.Info("Added combatant",
		"combatant_id", combatant.ID,
		"name", combatant.Name,
		"type", combatant.Type,
	)

	return &AddCombatantOutput{CombatantID: combatant.ID}, nil
}

// UpdateCombatant edits a combatant's fields and rerolls the round
func (o *Orchestrator) UpdateCombatant(_ context.Context, input *UpdateCombatantInput) (*UpdateCombatantOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, errors.InvalidArgument("combatant name is required")
	}

	o.mu.Lock()
	combatant := o.findLocked(input.CombatantID)
	if combatant == nil {
		o.mu.Unlock()
		return &UpdateCombatantOutput{Found: false}, nil
	}

	combatant.Name = name
	combatant.Dex = input.Dex
	combatant.Modifier = input.Modifier
	combatant.Type = normalizeType(input.Type)
	combatant.Advantage = normalizeAdvantage(input.Advantage)
	combatant.Lucky = nil
	if input.Lucky != nil {
		combatant.Lucky = entities.LuckyPtr(*input.Lucky)
	}
	// Editing a combatant hands back its once-per-round reroll
	combatant.LuckyUsed = false

	o.rollAllLocked()
	id, data := o.saveSnapshotLocked()
	view := o.viewLocked()
	o.mu.Unlock()

	o.persist(id, data)
	o.notify(view)

	return &UpdateCombatantOutput{Found: true}, nil
}

// RemoveCombatant removes a combatant and rerolls the round
func (o *Orchestrator) RemoveCombatant(_ context.Context, input *RemoveCombatantInput) (*RemoveCombatantOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	o.mu.Lock()
	kept := o.combatants[:0]
	removed := false
	for _, c := range o.combatants {
		if c.ID == input.CombatantID {
			removed = true
			continue
		}
		kept = append(kept, c)
	}
	if !removed {
		o.mu.Unlock()
		return &RemoveCombatantOutput{}, nil
	}
	o.combatants = kept

	o.rollAllLocked()
	id, data := o.saveSnapshotLocked()
	view := o.viewLocked()
	o.mu.Unlock()

	o.persist(id, data)
	o.notify(view)

	return &RemoveCombatantOutput{}, nil
}

// DuplicateCombatant copies a combatant under a collision-free name
func (o *Orchestrator) DuplicateCombatant(_ context.Context, input *DuplicateCombatantInput) (*DuplicateCombatantOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	o.mu.Lock()
	source := o.findLocked(input.CombatantID)
	if source == nil {
		o.mu.Unlock()
		return &DuplicateCombatantOutput{}, nil
	}

	names := make([]string, len(o.combatants))
	for i, c := range o.combatants {
		names[i] = c.Name
	}

	// Copies gameplay stats but not the lucky rule; a duplicated
	// halfling stat block is usually a generic creature.
	dup := &entities.Combatant{
		ID:        o.idGen.Generate(),
		Name:      duplicateName(names, source.Name),
		Dex:       source.Dex,
		Modifier:  source.Modifier,
		Type:      source.Type,
		Advantage: source.Advantage,
	}
	o.combatants = append(o.combatants, dup)

	o.rollAllLocked()
	id, data := o.saveSnapshotLocked()
	view := o.viewLocked()
	o.mu.Unlock()

	o.persist(id, data)
	o.notify(view)

	return &DuplicateCombatantOutput{CombatantID: dup.ID, Name: dup.Name}, nil
}

// ToggleAdvantage cycles a combatant's advantage mode and rerolls
func (o *Orchestrator) ToggleAdvantage(_ context.Context, input *ToggleAdvantageInput) (*ToggleAdvantageOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	o.mu.Lock()
	combatant := o.findLocked(input.CombatantID)
	if combatant == nil {
		o.mu.Unlock()
		return &ToggleAdvantageOutput{}, nil
	}

	combatant.Advantage = combatant.Advantage.Next()
	mode := combatant.Advantage

	o.rollAllLocked()
	id, data := o.saveSnapshotLocked()
	view := o.viewLocked()
	o.mu.Unlock()

	o.persist(id, data)
	o.notify(view)

	return &ToggleAdvantageOutput{Advantage: mode}, nil
}

// RollAll rerolls every combatant and starts a fresh automatic ordering
func (o *Orchestrator) RollAll(_ context.Context, _ *RollAllInput) (*RollAllOutput, error) {
	o.mu.Lock()
	o.rollAllLocked()
	id, data := o.saveSnapshotLocked()
	view := o.viewLocked()
	o.mu.Unlock()

	o.persist(id, data)
	o.notify(view)

	return &RollAllOutput{}, nil
}

// Reorder locks in a manual ordering from a drag permutation
func (o *Orchestrator) Reorder(_ context.Context, input *ReorderInput) (*ReorderOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	o.mu.Lock()
	changed := initiative.ApplyReorder(o.combatants, input.OrderedIDs, input.DraggedID)
	if !changed {
		o.mu.Unlock()
		return &ReorderOutput{Changed: false}, nil
	}

	o.history.Append(o.round, o.clock.Now().UnixMilli(), initiative.CanonicalOrder(o.combatants))
	id, data := o.saveSnapshotLocked()
	view := o.viewLocked()
	o.mu.Unlock()

	o.persist(id, data)
	o.notify(view)

	return &ReorderOutput{Changed: true}, nil
}

// RerollLuckyFeat spends a combatant's once-per-round feat reroll
func (o *Orchestrator) RerollLuckyFeat(_ context.Context, input *RerollLuckyFeatInput) (*RerollLuckyFeatOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	o.mu.Lock()
	combatant := o.findLocked(input.CombatantID)
	if combatant == nil ||
		combatant.Lucky == nil || *combatant.Lucky != entities.LuckyFeat ||
		combatant.BaseRoll != 1 || combatant.LuckyUsed {
		o.mu.Unlock()
		return &RerollLuckyFeatOutput{Performed: false}, nil
	}

	discarded := combatant.BaseRoll
	outcome := dice.Resolve(o.roller, combatant.Advantage, nil)
	combatant.Rolls = outcome.Rolls
	combatant.BaseRoll = outcome.BaseRoll
	combatant.LuckyReroll = &discarded
	combatant.LuckyUsed = true
	combatant.Initiative = dice.Initiative(outcome.BaseRoll, combatant.Dex, combatant.Modifier)

	// The automatic ranking shifted, so the baselines shift with it
	initiative.AssignBaselines(o.combatants)
	o.history.Append(o.round, o.clock.Now().UnixMilli(), initiative.CanonicalOrder(o.combatants))

	id, data := o.saveSnapshotLocked()
	view := o.viewLocked()
	o.mu.Unlock()

	o.persist(id, data)
	o.notify(view)

	return &RerollLuckyFeatOutput{Performed: true}, nil
}

// NextRound advances the round counter and rerolls
func (o *Orchestrator) NextRound(_ context.Context, _ *NextRoundInput) (*NextRoundOutput, error) {
	o.mu.Lock()
	o.round++
	round := o.round
	o.rollAllLocked()
	id, data := o.saveSnapshotLocked()
	view := o.viewLocked()
	o.mu.Unlock()

	o.persist(id, data)
	o.notify(view)

	return &NextRoundOutput{Round: round}, nil
}

// ResetRound returns to round 1 and rerolls
func (o *Orchestrator) ResetRound(_ context.Context, _ *ResetRoundInput) (*ResetRoundOutput, error) {
	o.mu.Lock()
	o.round = 1
	o.rollAllLocked()
	id, data := o.saveSnapshotLocked()
	view := o.viewLocked()
	o.mu.Unlock()

	o.persist(id, data)
	o.notify(view)

	return &ResetRoundOutput{}, nil
}

// ClearEnemies removes every enemy combatant and rerolls
func (o *Orchestrator) ClearEnemies(_ context.Context, _ *ClearEnemiesInput) (*ClearEnemiesOutput, error) {
	o.mu.Lock()
	kept := o.combatants[:0]
	removed := 0
	for _, c := range o.combatants {
		if c.Type == entities.TypeEnemy {
			removed++
			continue
		}
		kept = append(kept, c)
	}
	if removed == 0 {
		o.mu.Unlock()
		return &ClearEnemiesOutput{Removed: 0}, nil
	}
	o.combatants = kept

	o.rollAllLocked()
	id, data := o.saveSnapshotLocked()
	view := o.viewLocked()
	o.mu.Unlock()

	o.persist(id, data)
	o.notify(view)

	return &ClearEnemiesOutput{Removed: removed}, nil
}

// SwitchCampaign attaches the session to a campaign namespace. Local
// state is discarded; the subscription's initial delivery repopulates
// it from the remote snapshot.
func (o *Orchestrator) SwitchCampaign(_ context.Context, input *SwitchCampaignInput) (*SwitchCampaignOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if input.CampaignID == "" {
		return nil, errors.InvalidArgument("campaign ID cannot be empty")
	}

	o.mu.Lock()
	if o.campaignID == input.CampaignID {
		o.mu.Unlock()
		return &SwitchCampaignOutput{}, nil
	}

	if o.subCancel != nil {
		o.subCancel()
	}

	campaignID := input.CampaignID
	o.campaignID = campaignID
	o.combatants = nil
	o.round = 1
	o.history.Clear()

	subCtx, cancel := context.WithCancel(context.Background())
	o.subCancel = cancel
	o.mu.Unlock()

	go func() {
		err := o.campaignRepo.Subscribe(subCtx, campaign.SubscribeInput{
			CampaignID: campaignID,
			Callback: func(data *entities.CampaignData) {
				o.applyRemote(campaignID, data)
			},
		})
		if err != nil {
			slog.Error("Campaign subscription ended",
				"campaign_id", campaignID,
				"error", err,
			)
		}
	}()

	slog.Info("Switched campaign", "campaign_id", campaignID)

	return &SwitchCampaignOutput{}, nil
}

// GetState returns a deep-copied view of the current session
func (o *Orchestrator) GetState(_ context.Context, _ *GetStateInput) (*GetStateOutput, error) {
	o.mu.Lock()
	view := o.viewLocked()
	o.mu.Unlock()

	return &GetStateOutput{View: view}, nil
}

// applyRemote replaces local state with a value delivered by the
// campaign subscription. Deliveries for a campaign that is no longer
// active are dropped; a switch may race a late delivery from the
// previous subscription.
func (o *Orchestrator) applyRemote(campaignID string, data *entities.CampaignData) {
	o.mu.Lock()
	if o.campaignID != campaignID {
		o.mu.Unlock()
		return
	}

	o.applyingRemote = true
	if data == nil {
		o.combatants = nil
		o.round = 1
		o.history.Clear()
	} else {
		o.combatants = data.Combatants
		o.round = data.CurrentRound
		o.history.Replace(data.InitiativeHistory)
	}
	o.applyingRemote = false

	view := o.viewLocked()
	o.mu.Unlock()

	o.notify(view)
}

// rollAllLocked rerolls the whole roster, resets manual ordering,
// assigns fresh baselines, and appends a history entry.
func (o *Orchestrator) rollAllLocked() {
	for _, c := range o.combatants {
		outcome := dice.Resolve(o.roller, c.Advantage, c.Lucky)
		c.Rolls = outcome.Rolls
		c.BaseRoll = outcome.BaseRoll
		c.LuckyReroll = outcome.LuckyReroll
		c.Initiative = dice.Initiative(outcome.BaseRoll, c.Dex, c.Modifier)
		c.ManualOrder = nil
		c.WasMoved = false
		c.MoveDirection = nil
		c.LuckyUsed = false
		c.OriginalIndex = nil
	}
	initiative.AssignBaselines(o.combatants)
	o.history.Append(o.round, o.clock.Now().UnixMilli(), initiative.CanonicalOrder(o.combatants))
}

func (o *Orchestrator) findLocked(id string) *entities.Combatant {
	for _, c := range o.combatants {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// saveSnapshotLocked decides, inside the critical section, whether this
// change should be written out, and captures an immutable snapshot if
// so. Returns an empty id and nil data when the save is suppressed: no
// active campaign, or the change originated from a remote delivery.
func (o *Orchestrator) saveSnapshotLocked() (string, *entities.CampaignData) {
	if o.applyingRemote || o.campaignID == "" {
		return "", nil
	}
	return o.campaignID, &entities.CampaignData{
		Combatants:        entities.CloneCombatants(o.combatants),
		CurrentRound:      o.round,
		InitiativeHistory: o.history.Entries(),
		LastUpdated:       o.clock.Now().UnixMilli(),
	}
}

// persist writes a snapshot in the background. Failures are logged, not
// surfaced; the in-memory state already moved on and the next
// successful write supersedes this one.
func (o *Orchestrator) persist(campaignID string, data *entities.CampaignData) {
	if data == nil {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
		defer cancel()

		if err := o.campaignRepo.SetData(ctx, campaign.SetDataInput{
			CampaignID: campaignID,
			Data:       data,
		}); err != nil {
			slog.Error("Failed to save campaign data",
				"campaign_id", campaignID,
				"error", err,
			)
			return
		}

		if err := o.campaignRepo.TouchMeta(ctx, campaign.TouchMetaInput{
			CampaignID:  campaignID,
			LastUpdated: data.LastUpdated,
		}); err != nil {
			slog.Warn("Failed to update campaign timestamp",
				"campaign_id", campaignID,
				"error", err,
			)
		}
	}()
}

func (o *Orchestrator) viewLocked() *StateView {
	ordered := initiative.CanonicalOrder(o.combatants)
	view := &StateView{
		CampaignID: o.campaignID,
		Round:      o.round,
		Order:      entities.CloneCombatants(ordered),
		Party:      []*entities.Combatant{},
		Friendlies: []*entities.Combatant{},
		Enemies:    []*entities.Combatant{},
		History:    o.history.Entries(),
	}
	for _, c := range o.combatants {
		switch c.Type {
		case entities.TypeParty:
			view.Party = append(view.Party, c.Clone())
		case entities.TypeFriendly:
			view.Friendlies = append(view.Friendlies, c.Clone())
		default:
			view.Enemies = append(view.Enemies, c.Clone())
		}
	}
	return view
}

func (o *Orchestrator) notify(view *StateView) {
	o.listenerMu.Lock()
	listeners := make([]func(*StateView), len(o.listeners))
	copy(listeners, o.listeners)
	o.listenerMu.Unlock()

	for _, fn := range listeners {
		fn(view)
	}
}

func normalizeType(t entities.CombatantType) entities.CombatantType {
	if t == "" {
		return entities.TypeEnemy
	}
	return t
}

func normalizeAdvantage(m entities.AdvantageMode) entities.AdvantageMode {
	if m == "" {
		return entities.AdvantageNormal
	}
	return m
}
