package service

import (
	"context"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/jackdevtech455/youtube-analytics/internal/model"
	"github.com/jackdevtech455/youtube-analytics/internal/repository"
)

// CandidateService turns an ordered discovery result into persisted
// membership of a tracker's candidate pool, then trims the pool back to its
// configured size.
type CandidateService struct {
	log zerolog.Logger
}

func NewCandidateService(log zerolog.Logger) *CandidateService {
	return &CandidateService{log: log.With().Str("component", "candidates").Logger()}
}

// UpsertBatch records one discovery run's ordered video IDs (best-ranked
// first) against the tracker. Unseen videos get an empty shell row; new
// memberships start with first_seen = last_seen = now; re-surfaced ones
// refresh last_seen and source_rank. The pool cap is enforced afterwards
// using the tracker's eviction policy.
func (s *CandidateService) UpsertBatch(ctx context.Context, db repository.DB, tracker model.Tracker, videoIDs []string, now time.Time) error {
	for rank, videoID := range videoIDs {
		_, err := db.Exec(ctx, `
			INSERT INTO videos (video_id) VALUES ($1)
			ON CONFLICT (video_id) DO NOTHING`, videoID)
		if err != nil {
			return err
		}

		_, err = db.Exec(ctx, `
			INSERT INTO tracker_candidates (tracker_id, video_id, first_seen_at, last_seen_at, source_rank)
			VALUES ($1, $2, $3, $3, $4)
			ON CONFLICT (tracker_id, video_id)
			DO UPDATE SET last_seen_at = EXCLUDED.last_seen_at, source_rank = EXCLUDED.source_rank`,
			tracker.ID, videoID, now, rank+1)
		if err != nil {
			return err
		}
	}

	return s.enforceCap(ctx, db, tracker)
}

func (s *CandidateService) enforceCap(ctx context.Context, db repository.DB, tracker model.Tracker) error {
	rows, err := db.Query(ctx, `
		SELECT id, tracker_id, video_id, first_seen_at, last_seen_at, source_rank
		FROM tracker_candidates
		WHERE tracker_id = $1`, tracker.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	var members []model.TrackerCandidate
	for rows.Next() {
		var c model.TrackerCandidate
		if err := rows.Scan(&c.ID, &c.TrackerID, &c.VideoID, &c.FirstSeenAt, &c.LastSeenAt, &c.SourceRank); err != nil {
			return err
		}
		members = append(members, c)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	evicted := selectEvictions(members, tracker.CandidatePoolSize, tracker.EvictionPolicy)
	for _, id := range evicted {
		if _, err := db.Exec(ctx, `DELETE FROM tracker_candidates WHERE id = $1`, id); err != nil {
			return err
		}
	}

	if len(evicted) > 0 {
		s.log.Debug().Int64("tracker_id", tracker.ID).Int("evicted", len(evicted)).
			Str("policy", string(tracker.EvictionPolicy)).Msg("candidate pool trimmed")
	}
	return nil
}

// selectEvictions returns the membership IDs to delete so that at most
// poolSize members remain, ordered per the eviction policy:
//
//   - least_recently_seen keeps the most recently re-discovered members;
//   - lowest_source_rank keeps the best source-ranked members (unranked
//     members are evicted first).
//
// Ties fall back to recency, then membership ID, so the choice is
// deterministic.
func selectEvictions(members []model.TrackerCandidate, poolSize int, policy model.EvictionPolicy) []int64 {
	if len(members) <= poolSize {
		return nil
	}

	ordered := make([]model.TrackerCandidate, len(members))
	copy(ordered, members)

	switch policy {
	case model.EvictLowestSourceRank:
		sort.Slice(ordered, func(i, j int) bool {
			ri, rj := ordered[i].SourceRank, ordered[j].SourceRank
			switch {
			case ri == nil && rj == nil:
			case ri == nil:
				return false
			case rj == nil:
				return true
			case *ri != *rj:
				return *ri < *rj
			}
			if !ordered[i].LastSeenAt.Equal(ordered[j].LastSeenAt) {
				return ordered[i].LastSeenAt.After(ordered[j].LastSeenAt)
			}
			return ordered[i].ID < ordered[j].ID
		})
	default: // least_recently_seen
		sort.Slice(ordered, func(i, j int) bool {
			if !ordered[i].LastSeenAt.Equal(ordered[j].LastSeenAt) {
				return ordered[i].LastSeenAt.After(ordered[j].LastSeenAt)
			}
			return ordered[i].ID < ordered[j].ID
		})
	}

	evicted := make([]int64, 0, len(ordered)-poolSize)
	for _, c := range ordered[poolSize:] {
		evicted = append(evicted, c.ID)
	}
	return evicted
}
