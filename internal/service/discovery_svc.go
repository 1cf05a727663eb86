package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/jackdevtech455/youtube-analytics/internal/metrics"
	"github.com/jackdevtech455/youtube-analytics/internal/model"
	"github.com/jackdevtech455/youtube-analytics/internal/repository"
	"github.com/jackdevtech455/youtube-analytics/internal/youtube"
)

// DiscoveryService produces one candidate ID list per tracker run and hands
// it to the candidate pool. A missing selector, unresolvable channel, or
// empty result set is a no-op: the tracker's existing pool stays intact for
// this cycle.
type DiscoveryService struct {
	yt         *youtube.Client
	candidates *CandidateService
	log        zerolog.Logger
}

func NewDiscoveryService(yt *youtube.Client, candidates *CandidateService, log zerolog.Logger) *DiscoveryService {
	return &DiscoveryService{
		yt:         yt,
		candidates: candidates,
		log:        log.With().Str("component", "discovery").Logger(),
	}
}

// RunTracker performs one discovery run for the tracker inside the caller's
// transaction.
func (s *DiscoveryService) RunTracker(ctx context.Context, db repository.DB, tracker model.Tracker, now time.Time) error {
	switch tracker.Mode {
	case model.ModeChannel:
		return s.runChannel(ctx, db, tracker, now)
	case model.ModeSearch:
		return s.runSearch(ctx, db, tracker, now)
	}
	return nil
}

func (s *DiscoveryService) runChannel(ctx context.Context, db repository.DB, tracker model.Tracker, now time.Time) error {
	if tracker.ChannelID == nil || *tracker.ChannelID == "" {
		return nil
	}

	channelID, err := s.yt.ResolveChannelID(ctx, *tracker.ChannelID)
	if err != nil {
		return err
	}
	if channelID == "" {
		s.log.Debug().Int64("tracker_id", tracker.ID).Str("reference", *tracker.ChannelID).
			Msg("channel reference did not resolve; pool unchanged")
		return nil
	}

	playlistID, err := s.yt.UploadsPlaylistID(ctx, channelID)
	if err != nil {
		return err
	}
	if playlistID == "" {
		return nil
	}

	videoIDs, err := s.yt.ListPlaylistVideoIDs(ctx, playlistID, tracker.CandidatePoolSize)
	if err != nil {
		return err
	}

	metrics.Collectors.DiscoveryRuns.WithLabelValues(string(model.ModeChannel)).Inc()
	return s.candidates.UpsertBatch(ctx, db, tracker, videoIDs, now)
}

func (s *DiscoveryService) runSearch(ctx context.Context, db repository.DB, tracker model.Tracker, now time.Time) error {
	if tracker.SearchQuery == nil || *tracker.SearchQuery == "" {
		return nil
	}

	videoIDs, err := s.yt.SearchVideoIDs(ctx, *tracker.SearchQuery, tracker.CandidatePoolSize)
	if err != nil {
		return err
	}

	metrics.Collectors.DiscoveryRuns.WithLabelValues(string(model.ModeSearch)).Inc()
	return s.candidates.UpsertBatch(ctx, db, tracker, videoIDs, now)
}
