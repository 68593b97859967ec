// Package campaign manages campaign namespaces: creation, renaming,
// deletion, and listing. Combat state inside a namespace is the session
// orchestrator's concern.
package campaign

import (
	"context"

	"github.com/grimforge/initiative-api/internal/entities"
)

// Service handles campaign namespace operations
type Service interface {
	// ListCampaigns returns every campaign, most recently updated first
	ListCampaigns(ctx context.Context, input *ListCampaignsInput) (*ListCampaignsOutput, error)

	// CreateCampaign creates a campaign named by the user. The id is a
	// slug derived from the name; creating a name whose slug already
	// exists returns the existing campaign instead of overwriting it.
	CreateCampaign(ctx context.Context, input *CreateCampaignInput) (*CreateCampaignOutput, error)

	// RenameCampaign changes a campaign's display name. The slug id is
	// stable across renames.
	RenameCampaign(ctx context.Context, input *RenameCampaignInput) (*RenameCampaignOutput, error)

	// DeleteCampaign removes a campaign and everything in it. Deleting
	// the last remaining campaign is refused.
	DeleteCampaign(ctx context.Context, input *DeleteCampaignInput) (*DeleteCampaignOutput, error)

	// EnsureDefault guarantees at least one campaign exists, creating
	// "Default Campaign" in an empty store, and returns the campaign a
	// fresh session should attach to.
	EnsureDefault(ctx context.Context, input *EnsureDefaultInput) (*EnsureDefaultOutput, error)
}

// ListCampaignsInput requests the campaign listing
type ListCampaignsInput struct{}

// ListCampaignsOutput carries campaigns sorted by lastUpdated descending
type ListCampaignsOutput struct {
	Campaigns []entities.CampaignListing
}

// CreateCampaignInput names the campaign to create
type CreateCampaignInput struct {
	Name string
}

// CreateCampaignOutput reports the campaign id; Existing is true when
// the slug was already taken and no new campaign was created
type CreateCampaignOutput struct {
	CampaignID string
	Existing   bool
}

// RenameCampaignInput identifies the campaign and its new name
type RenameCampaignInput struct {
	CampaignID string
	Name       string
}

// RenameCampaignOutput is empty
type RenameCampaignOutput struct{}

// DeleteCampaignInput identifies the campaign to delete
type DeleteCampaignInput struct {
	CampaignID string
}

// DeleteCampaignOutput names the most recently updated surviving
// campaign, for reattaching a session that was on the deleted one
type DeleteCampaignOutput struct {
	NextCampaignID string
}

// EnsureDefaultInput is empty
type EnsureDefaultInput struct{}

// EnsureDefaultOutput reports the campaign to attach to and whether it
// was just created
type EnsureDefaultOutput struct {
	CampaignID string
	Created    bool
}
