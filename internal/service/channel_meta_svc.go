package service

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/jackdevtech455/youtube-analytics/internal/metrics"
	"github.com/jackdevtech455/youtube-analytics/internal/model"
	"github.com/jackdevtech455/youtube-analytics/internal/youtube"
)

// ChannelMetaService serves display metadata for channels through the TTL
// cache, batching provider lookups for the misses.
type ChannelMetaService struct {
	yt    *youtube.Client
	cache *CacheService
	log   zerolog.Logger
}

func NewChannelMetaService(yt *youtube.Client, cache *CacheService, log zerolog.Logger) *ChannelMetaService {
	return &ChannelMetaService{
		yt:    yt,
		cache: cache,
		log:   log.With().Str("component", "channel_meta").Logger(),
	}
}

// Lookup returns metadata for the given channel IDs in request order.
// Channels the provider does not know still get an entry (ID only) and a
// short negative cache record.
func (s *ChannelMetaService) Lookup(ctx context.Context, channelIDs []string) ([]model.ChannelMeta, error) {
	byID := make(map[string]model.ChannelMeta, len(channelIDs))
	var missing []string

	for _, id := range channelIDs {
		cached, err := s.cache.GetChannelMeta(ctx, id)
		if err != nil {
			s.log.Warn().Err(err).Str("channel_id", id).Msg("cache get failed")
		}
		if cached != nil {
			metrics.Collectors.ChannelMetaCacheHit.Inc()
			byID[id] = *cached
			continue
		}
		metrics.Collectors.ChannelMetaCacheMiss.Inc()
		missing = append(missing, id)
	}

	for start := 0; start < len(missing); start += detailBatchSize {
		end := min(start+detailBatchSize, len(missing))
		batch := missing[start:end]

		items, err := s.yt.ChannelsMetadata(ctx, batch)
		if err != nil {
			return nil, err
		}

		returned := make(map[string]bool, len(items))
		for _, item := range items {
			if item.ID == "" {
				continue
			}
			meta := model.ChannelMeta{
				ChannelID:    item.ID,
				Title:        nilIfEmpty(item.Snippet.Title),
				Handle:       normalizeHandle(item.Snippet.CustomURL),
				ThumbnailURL: nilIfEmpty(item.Snippet.Thumbnails.Default.URL),
			}
			byID[item.ID] = meta
			returned[item.ID] = true

			if err := s.cache.SetChannelMeta(ctx, meta, ChannelMetaCacheTTL); err != nil {
				s.log.Warn().Err(err).Str("channel_id", item.ID).Msg("cache set failed")
			}
		}

		for _, id := range batch {
			if returned[id] {
				continue
			}
			meta := model.ChannelMeta{ChannelID: id}
			byID[id] = meta
			if err := s.cache.SetChannelMeta(ctx, meta, ChannelMetaNegativeCacheTTL); err != nil {
				s.log.Warn().Err(err).Str("channel_id", id).Msg("cache set failed")
			}
		}
	}

	results := make([]model.ChannelMeta, 0, len(channelIDs))
	for _, id := range channelIDs {
		if meta, ok := byID[id]; ok {
			results = append(results, meta)
		}
	}
	return results, nil
}

// normalizeHandle prefixes the provider's customUrl with @ when present.
func normalizeHandle(customURL string) *string {
	trimmed := strings.TrimSpace(customURL)
	if trimmed == "" {
		return nil
	}
	if !strings.HasPrefix(trimmed, "@") {
		trimmed = "@" + trimmed
	}
	return &trimmed
}
