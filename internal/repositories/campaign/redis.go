package campaign

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	redis "github.com/redis/go-redis/v9"

	"github.com/grimforge/initiative-api/internal/entities"
	"github.com/grimforge/initiative-api/internal/errors"
	redisclient "github.com/grimforge/initiative-api/internal/redis"
)

const (
	// Key patterns: campaign:{id}:meta, campaign:{id}:data
	metaKeyPrefix = "campaign:"
	indexKey      = "campaigns"

	errCampaignIDEmpty = "campaign ID cannot be empty"
	errDataNil         = "campaign data cannot be nil"
	errMetaNil         = "campaign meta cannot be nil"
	errCallbackNil     = "subscribe callback cannot be nil"
)

// Config holds the configuration for the Redis repository
type Config struct {
	Client redisclient.Client
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	if c.Client == nil {
		return errors.InvalidArgument("redis client is required")
	}
	return nil
}

type redisRepository struct {
	client redisclient.Client
}

// NewRedisRepository creates a new Redis repository for campaigns
func NewRedisRepository(cfg *Config) (Repository, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	return &redisRepository{
		client: cfg.Client,
	}, nil
}

// Ensure redisRepository implements Repository
var _ Repository = (*redisRepository)(nil)

// GetMeta retrieves a campaign's metadata
func (r *redisRepository) GetMeta(ctx context.Context, input GetMetaInput) (*GetMetaOutput, error) {
	if input.CampaignID == "" {
		return nil, errors.InvalidArgument(errCampaignIDEmpty)
	}

	payload, err := r.client.Get(ctx, r.metaKey(input.CampaignID)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, errors.NotFound("campaign not found").
				WithMeta("campaign_id", input.CampaignID)
		}
		return nil, errors.Wrapf(err, "failed to get campaign meta from Redis")
	}

	var meta entities.CampaignMeta
	if err := json.Unmarshal([]byte(payload), &meta); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal campaign meta")
	}

	return &GetMetaOutput{Meta: &meta}, nil
}

// SetMeta replaces a campaign's metadata and registers the campaign in
// the index
func (r *redisRepository) SetMeta(ctx context.Context, input SetMetaInput) error {
	if input.CampaignID == "" {
		return errors.InvalidArgument(errCampaignIDEmpty)
	}
	if input.Meta == nil {
		return errors.InvalidArgument(errMetaNil)
	}

	payload, err := json.Marshal(input.Meta)
	if err != nil {
		return errors.Wrapf(err, "failed to marshal campaign meta")
	}

	if err := r.client.Set(ctx, r.metaKey(input.CampaignID), payload, 0).Err(); err != nil {
		return errors.Wrapf(err, "failed to store campaign meta in Redis")
	}
	if err := r.client.SAdd(ctx, indexKey, input.CampaignID).Err(); err != nil {
		return errors.Wrapf(err, "failed to index campaign")
	}

	return nil
}

// TouchMeta updates only the lastUpdated timestamp, preserving the name
func (r *redisRepository) TouchMeta(ctx context.Context, input TouchMetaInput) error {
	if input.CampaignID == "" {
		return errors.InvalidArgument(errCampaignIDEmpty)
	}

	out, err := r.GetMeta(ctx, GetMetaInput{CampaignID: input.CampaignID})
	if err != nil {
		return err
	}

	out.Meta.LastUpdated = input.LastUpdated
	return r.SetMeta(ctx, SetMetaInput{CampaignID: input.CampaignID, Meta: out.Meta})
}

// GetData retrieves and normalizes a campaign's combat state
func (r *redisRepository) GetData(ctx context.Context, input GetDataInput) (*GetDataOutput, error) {
	if input.CampaignID == "" {
		return nil, errors.InvalidArgument(errCampaignIDEmpty)
	}

	payload, err := r.client.Get(ctx, r.dataKey(input.CampaignID)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, errors.NotFound("campaign data not found").
				WithMeta("campaign_id", input.CampaignID)
		}
		return nil, errors.Wrapf(err, "failed to get campaign data from Redis")
	}

	data, err := decodeData([]byte(payload))
	if err != nil {
		return nil, err
	}

	return &GetDataOutput{Data: data}, nil
}

// SetData overwrites a campaign's combat state (last write wins) and
// publishes a change notification for subscribers
func (r *redisRepository) SetData(ctx context.Context, input SetDataInput) error {
	if input.CampaignID == "" {
		return errors.InvalidArgument(errCampaignIDEmpty)
	}
	if input.Data == nil {
		return errors.InvalidArgument(errDataNil)
	}

	payload, err := encodeData(input.Data)
	if err != nil {
		return err
	}

	if err := r.client.Set(ctx, r.dataKey(input.CampaignID), payload, 0).Err(); err != nil {
		return errors.Wrapf(err, "failed to store campaign data in Redis")
	}

	if err := r.client.Publish(ctx, r.eventsChannel(input.CampaignID), "updated").Err(); err != nil {
		// Subscribers fall behind until the next write; the write itself
		// succeeded.
		slog.Warn("Failed to publish campaign change notification",
			"campaign_id", input.CampaignID,
			"error", err,
		)
	}

	return nil
}

// List returns every indexed campaign with its metadata. Index entries
// whose meta node is missing are skipped.
func (r *redisRepository) List(ctx context.Context, _ ListInput) (*ListOutput, error) {
	ids, err := r.client.SMembers(ctx, indexKey).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list campaigns from Redis")
	}

	out := &ListOutput{Campaigns: make([]entities.CampaignListing, 0, len(ids))}
	for _, id := range ids {
		metaOut, err := r.GetMeta(ctx, GetMetaInput{CampaignID: id})
		if err != nil {
			if errors.IsNotFound(err) {
				continue
			}
			return nil, err
		}
		out.Campaigns = append(out.Campaigns, entities.CampaignListing{
			ID:   id,
			Meta: *metaOut.Meta,
		})
	}

	return out, nil
}

// Delete removes a campaign's meta, data, and index entry
func (r *redisRepository) Delete(ctx context.Context, input DeleteInput) error {
	if input.CampaignID == "" {
		return errors.InvalidArgument(errCampaignIDEmpty)
	}

	if err := r.client.Del(ctx, r.metaKey(input.CampaignID), r.dataKey(input.CampaignID)).Err(); err != nil {
		return errors.Wrapf(err, "failed to delete campaign from Redis")
	}
	if err := r.client.SRem(ctx, indexKey, input.CampaignID).Err(); err != nil {
		return errors.Wrapf(err, "failed to unindex campaign")
	}

	return nil
}

// Subscribe delivers the current data value, then re-reads and delivers
// on every published change, until ctx is done.
func (r *redisRepository) Subscribe(ctx context.Context, input SubscribeInput) error {
	if input.CampaignID == "" {
		return errors.InvalidArgument(errCampaignIDEmpty)
	}
	if input.Callback == nil {
		return errors.InvalidArgument(errCallbackNil)
	}

	pubsub := r.client.Subscribe(ctx, r.eventsChannel(input.CampaignID))
	defer func() {
		if err := pubsub.Close(); err != nil {
			slog.Warn("Failed to close campaign subscription",
				"campaign_id", input.CampaignID,
				"error", err,
			)
		}
	}()

	// Initial delivery with the current value, nil when absent
	input.Callback(r.currentData(ctx, input.CampaignID))

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case _, ok := <-ch:
			if !ok {
				return nil
			}
			input.Callback(r.currentData(ctx, input.CampaignID))
		}
	}
}

// currentData loads the data node for a subscription delivery. Missing
// or unreadable data degrades to nil rather than failing the listener.
func (r *redisRepository) currentData(ctx context.Context, campaignID string) *entities.CampaignData {
	out, err := r.GetData(ctx, GetDataInput{CampaignID: campaignID})
	if err != nil {
		if !errors.IsNotFound(err) {
			slog.Error("Failed to load campaign data for subscriber",
				"campaign_id", campaignID,
				"error", err,
			)
		}
		return nil
	}
	return out.Data
}

func (r *redisRepository) metaKey(campaignID string) string {
	return fmt.Sprintf("%s%s:meta", metaKeyPrefix, campaignID)
}

func (r *redisRepository) dataKey(campaignID string) string {
	return fmt.Sprintf("%s%s:data", metaKeyPrefix, campaignID)
}

func (r *redisRepository) eventsChannel(campaignID string) string {
	return fmt.Sprintf("%s%s:events", metaKeyPrefix, campaignID)
}
