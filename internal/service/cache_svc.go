package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/jackdevtech455/youtube-analytics/internal/model"
)

// Channel metadata cache TTLs. Negative entries (channels the provider does
// not know) are cached briefly so repeated lookups don't re-spend quota.
const (
	ChannelMetaCacheTTL         = 6 * time.Hour
	ChannelMetaNegativeCacheTTL = 30 * time.Minute
)

// CacheService is a Redis TTL cache for external channel metadata, keyed by
// channel ID. It is an explicit component owned by the read layer, not
// ambient process state.
type CacheService struct {
	rdb *redis.Client
}

// NewCacheService creates a CacheService. If redisURL is empty or the
// connection fails, it returns a CacheService with a nil client (cache
// operations become no-ops).
func NewCacheService(redisURL string) *CacheService {
	if redisURL == "" {
		log.Info().Msg("redis: no URL configured, caching disabled")
		return &CacheService{}
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		log.Warn().Err(err).Str("url", redisURL).Msg("redis: invalid URL, caching disabled")
		return &CacheService{}
	}

	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Warn().Err(err).Msg("redis: connection failed, caching disabled")
		return &CacheService{}
	}

	log.Info().Msg("redis: connected, caching enabled")
	return &CacheService{rdb: rdb}
}

// Client returns the underlying Redis client (for health checks). May be nil.
func (c *CacheService) Client() *redis.Client {
	return c.rdb
}

// GetChannelMeta retrieves cached channel metadata. Returns nil on a miss or
// when caching is disabled.
func (c *CacheService) GetChannelMeta(ctx context.Context, channelID string) (*model.ChannelMeta, error) {
	if c.rdb == nil {
		return nil, nil
	}
	data, err := c.rdb.Get(ctx, channelMetaKey(channelID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var meta model.ChannelMeta
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, nil
	}
	return &meta, nil
}

// SetChannelMeta stores channel metadata with the given TTL.
func (c *CacheService) SetChannelMeta(ctx context.Context, meta model.ChannelMeta, ttl time.Duration) error {
	if c.rdb == nil {
		return nil
	}
	b, err := json.Marshal(meta)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, channelMetaKey(meta.ChannelID), b, ttl).Err()
}

// Close shuts down the Redis connection.
func (c *CacheService) Close() error {
	if c.rdb == nil {
		return nil
	}
	return c.rdb.Close()
}

func channelMetaKey(channelID string) string {
	return fmt.Sprintf("channel_meta:%s", channelID)
}
