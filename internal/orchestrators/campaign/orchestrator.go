package campaign

import (
	"context"
	"log/slog"
	"regexp"
	"sort"
	"strings"

	"github.com/grimforge/initiative-api/internal/entities"
	"github.com/grimforge/initiative-api/internal/errors"
	"github.com/grimforge/initiative-api/internal/pkg/clock"
	campaignrepo "github.com/grimforge/initiative-api/internal/repositories/campaign"
)

// DefaultCampaignName seeds an empty store
const DefaultCampaignName = "Default Campaign"

var slugPattern = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify derives a campaign id from its display name: lowercase, runs
// of non-alphanumeric characters collapsed to a single hyphen, leading
// and trailing hyphens trimmed.
func Slugify(name string) string {
	slug := strings.ToLower(name)
	slug = slugPattern.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}

// Config holds the dependencies for the campaign orchestrator
type Config struct {
	Repo  campaignrepo.Repository
	Clock clock.Clock
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()
	if c.Repo == nil {
		vb.RequiredField("Repo")
	}
	if c.Clock == nil {
		vb.RequiredField("Clock")
	}
	return vb.Build()
}

// Orchestrator implements Service
type Orchestrator struct {
	repo  campaignrepo.Repository
	clock clock.Clock
}

// New creates a new campaign orchestrator
func New(cfg *Config) (*Orchestrator, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &Orchestrator{
		repo:  cfg.Repo,
		clock: cfg.Clock,
	}, nil
}

// Ensure Orchestrator implements Service
var _ Service = (*Orchestrator)(nil)

// ListCampaigns returns every campaign, most recently updated first
func (o *Orchestrator) ListCampaigns(ctx context.Context, _ *ListCampaignsInput) (*ListCampaignsOutput, error) {
	listings, err := o.sortedListings(ctx)
	if err != nil {
		return nil, err
	}
	return &ListCampaignsOutput{Campaigns: listings}, nil
}

// CreateCampaign creates a campaign, or returns the existing one when
// the derived slug is already taken
func (o *Orchestrator) CreateCampaign(ctx context.Context, input *CreateCampaignInput) (*CreateCampaignOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, errors.InvalidArgument("campaign name is required")
	}

	slug := Slugify(name)
	if slug == "" {
		return nil, errors.InvalidArgument("campaign name must contain letters or digits")
	}

	_, err := o.repo.GetMeta(ctx, campaignrepo.GetMetaInput{CampaignID: slug})
	if err == nil {
		return &CreateCampaignOutput{CampaignID: slug, Existing: true}, nil
	}
	if !errors.IsNotFound(err) {
		return nil, err
	}

	now := o.clock.Now().UnixMilli()
	if err := o.repo.SetMeta(ctx, campaignrepo.SetMetaInput{
		CampaignID: slug,
		Meta:       &entities.CampaignMeta{Name: name, LastUpdated: now},
	}); err != nil {
		return nil, err
	}
	if err := o.repo.SetData(ctx, campaignrepo.SetDataInput{
		CampaignID: slug,
		Data: &entities.CampaignData{
			CurrentRound: 1,
			LastUpdated:  now,
		},
	}); err != nil {
		return nil, err
	}

	slog.Info("Created campaign", "campaign_id", slug, "name", name)

	return &CreateCampaignOutput{CampaignID: slug}, nil
}

// RenameCampaign changes a campaign's display name
func (o *Orchestrator) RenameCampaign(ctx context.Context, input *RenameCampaignInput) (*RenameCampaignOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, errors.InvalidArgument("campaign name is required")
	}

	out, err := o.repo.GetMeta(ctx, campaignrepo.GetMetaInput{CampaignID: input.CampaignID})
	if err != nil {
		return nil, err
	}

	out.Meta.Name = name
	out.Meta.LastUpdated = o.clock.Now().UnixMilli()
	if err := o.repo.SetMeta(ctx, campaignrepo.SetMetaInput{
		CampaignID: input.CampaignID,
		Meta:       out.Meta,
	}); err != nil {
		return nil, err
	}

	return &RenameCampaignOutput{}, nil
}

// DeleteCampaign removes a campaign, refusing to delete the last one
func (o *Orchestrator) DeleteCampaign(ctx context.Context, input *DeleteCampaignInput) (*DeleteCampaignOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if input.CampaignID == "" {
		return nil, errors.InvalidArgument("campaign ID cannot be empty")
	}

	listings, err := o.sortedListings(ctx)
	if err != nil {
		return nil, err
	}

	found := false
	for _, l := range listings {
		if l.ID == input.CampaignID {
			found = true
			break
		}
	}
	if !found {
		return nil, errors.NotFound("campaign not found").
			WithMeta("campaign_id", input.CampaignID)
	}
	if len(listings) <= 1 {
		return nil, errors.FailedPrecondition("cannot delete the last campaign")
	}

	if err := o.repo.Delete(ctx, campaignrepo.DeleteInput{CampaignID: input.CampaignID}); err != nil {
		return nil, err
	}

	slog.Info("Deleted campaign", "campaign_id", input.CampaignID)

	for _, l := range listings {
		if l.ID != input.CampaignID {
			return &DeleteCampaignOutput{NextCampaignID: l.ID}, nil
		}
	}
	// Unreachable: len(listings) > 1 and the deleted id was among them
	return &DeleteCampaignOutput{}, nil
}

// EnsureDefault guarantees at least one campaign exists
func (o *Orchestrator) EnsureDefault(ctx context.Context, _ *EnsureDefaultInput) (*EnsureDefaultOutput, error) {
	listings, err := o.sortedListings(ctx)
	if err != nil {
		return nil, err
	}
	if len(listings) > 0 {
		return &EnsureDefaultOutput{CampaignID: listings[0].ID}, nil
	}

	created, err := o.CreateCampaign(ctx, &CreateCampaignInput{Name: DefaultCampaignName})
	if err != nil {
		return nil, err
	}
	return &EnsureDefaultOutput{CampaignID: created.CampaignID, Created: true}, nil
}

// sortedListings loads every campaign sorted by lastUpdated descending,
// ties broken by id for determinism.
func (o *Orchestrator) sortedListings(ctx context.Context) ([]entities.CampaignListing, error) {
	out, err := o.repo.List(ctx, campaignrepo.ListInput{})
	if err != nil {
		return nil, err
	}

	listings := out.Campaigns
	sort.Slice(listings, func(i, j int) bool {
		if listings[i].Meta.LastUpdated != listings[j].Meta.LastUpdated {
			return listings[i].Meta.LastUpdated > listings[j].Meta.LastUpdated
		}
		return listings[i].ID < listings[j].ID
	})
	return listings, nil
}
