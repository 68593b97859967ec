// Package campaign provides the repository interface and types for
// campaign state storage and change notification.
package campaign

import (
	"context"

	"github.com/grimforge/initiative-api/internal/entities"
)

//go:generate mockgen -destination=mock/mock_repository.go -package=campaignmock github.com/grimforge/initiative-api/internal/repositories/campaign Repository

// GetMetaInput identifies the campaign whose metadata to load
type GetMetaInput struct {
	CampaignID string
}

// GetMetaOutput carries the loaded metadata
type GetMetaOutput struct {
	Meta *entities.CampaignMeta
}

// SetMetaInput replaces a campaign's metadata node
type SetMetaInput struct {
	CampaignID string
	Meta       *entities.CampaignMeta
}

// TouchMetaInput bumps only the lastUpdated timestamp, preserving the name
type TouchMetaInput struct {
	CampaignID  string
	LastUpdated int64
}

// GetDataInput identifies the campaign whose data node to load
type GetDataInput struct {
	CampaignID string
}

// GetDataOutput carries the loaded, normalized campaign data
type GetDataOutput struct {
	Data *entities.CampaignData
}

// SetDataInput overwrites a campaign's data node (last write wins)
type SetDataInput struct {
	CampaignID string
	Data       *entities.CampaignData
}

// ListInput requests the campaign listing
type ListInput struct{}

// ListOutput carries every known campaign with its metadata
type ListOutput struct {
	Campaigns []entities.CampaignListing
}

// DeleteInput identifies the campaign to remove entirely
type DeleteInput struct {
	CampaignID string
}

// SubscribeInput attaches a long-lived listener to a campaign's data
// node. The callback is invoked once with the current value (nil when
// the node is absent) and again on every subsequent change, until the
// context is canceled.
type SubscribeInput struct {
	CampaignID string
	Callback   func(data *entities.CampaignData)
}

// Repository defines campaign state storage operations
type Repository interface {
	// GetMeta retrieves a campaign's metadata
	GetMeta(ctx context.Context, input GetMetaInput) (*GetMetaOutput, error)

	// SetMeta replaces a campaign's metadata
	SetMeta(ctx context.Context, input SetMetaInput) error

	// TouchMeta updates only the metadata lastUpdated timestamp
	TouchMeta(ctx context.Context, input TouchMetaInput) error

	// GetData retrieves and normalizes a campaign's combat state
	GetData(ctx context.Context, input GetDataInput) (*GetDataOutput, error)

	// SetData overwrites a campaign's combat state and notifies subscribers
	SetData(ctx context.Context, input SetDataInput) error

	// List returns all campaigns with metadata
	List(ctx context.Context, input ListInput) (*ListOutput, error)

	// Delete removes a campaign's meta, data, and index entry
	Delete(ctx context.Context, input DeleteInput) error

	// Subscribe blocks, delivering the current data value and every
	// change to the callback until ctx is done
	Subscribe(ctx context.Context, input SubscribeInput) error
}
