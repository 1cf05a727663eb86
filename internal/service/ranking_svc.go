package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jackdevtech455/youtube-analytics/internal/model"
	"github.com/jackdevtech455/youtube-analytics/internal/repository"
	"github.com/jackdevtech455/youtube-analytics/pkg/timebucket"
)

// RankingService computes a tracker's ranked top-N over its candidate pool.
// All reads are plain SELECTs against committed state, so concurrent callers
// ranking the same tracker never contend beyond the store's isolation.
type RankingService struct {
	pool  *pgxpool.Pool
	clock Clock
}

func NewRankingService(pool *pgxpool.Pool, clock Clock) *RankingService {
	return &RankingService{pool: pool, clock: clock}
}

// candidateStats is one candidate video with its latest snapshot counts.
type candidateStats struct {
	VideoID      string
	Title        *string
	ChannelID    *string
	PublishedAt  *time.Time
	ViewCount    *int64
	LikeCount    *int64
	CommentCount *int64
}

// baselineCounts is the snapshot at the window start (greatest bucket at or
// before current bucket minus the window).
type baselineCounts struct {
	ViewCount    *int64
	LikeCount    *int64
	CommentCount *int64
}

// TopVideos ranks the tracker's candidates by its configured metric and
// window and truncates to its top_n. An inactive or unknown tracker yields
// an empty ranking, never an error.
func (s *RankingService) TopVideos(ctx context.Context, trackerID int64) ([]model.TopVideo, error) {
	tracker, err := scanTrackerByID(ctx, s.pool, trackerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return []model.TopVideo{}, nil
		}
		return nil, err
	}
	if !tracker.IsActive {
		return []model.TopVideo{}, nil
	}

	now := s.clock.Now()
	latest, err := s.latestStats(ctx, trackerID, now)
	if err != nil {
		return nil, err
	}

	var baselines map[string]baselineCounts
	if tracker.RankingMetric.Windowed() {
		windowStart := timebucket.Hour(now).Add(-time.Duration(tracker.EffectiveWindowHours()) * time.Hour)
		baselines, err = s.baselineStats(ctx, trackerID, windowStart)
		if err != nil {
			return nil, err
		}
	}

	return rankVideos(tracker.RankingMetric, tracker.EffectiveWindowHours(), latest, baselines, tracker.TopN), nil
}

func scanTrackerByID(ctx context.Context, db repository.DB, id int64) (model.Tracker, error) {
	var t model.Tracker
	err := db.QueryRow(ctx, `
		SELECT id, mode, top_n, ranking_metric, ranking_window_hours, is_active
		FROM trackers
		WHERE id = $1`, id).Scan(
		&t.ID, &t.Mode, &t.TopN, &t.RankingMetric, &t.RankingWindowHours, &t.IsActive)
	return t, err
}

// latestStats joins each candidate video with its most recent snapshot at or
// before now. Candidates with no snapshot yet are excluded; they have no
// reading to rank on.
func (s *RankingService) latestStats(ctx context.Context, trackerID int64, now time.Time) ([]candidateStats, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT v.video_id, v.title, v.channel_id, v.published_at,
		       snap.view_count, snap.like_count, snap.comment_count
		FROM tracker_candidates tc
		JOIN videos v ON v.video_id = tc.video_id
		JOIN LATERAL (
			SELECT view_count, like_count, comment_count
			FROM video_snapshots vs
			WHERE vs.video_id = tc.video_id AND vs.captured_at <= $2
			ORDER BY vs.captured_at DESC
			LIMIT 1
		) snap ON TRUE
		WHERE tc.tracker_id = $1`, trackerID, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []candidateStats
	for rows.Next() {
		var cs candidateStats
		err := rows.Scan(&cs.VideoID, &cs.Title, &cs.ChannelID, &cs.PublishedAt,
			&cs.ViewCount, &cs.LikeCount, &cs.CommentCount)
		if err != nil {
			return nil, err
		}
		stats = append(stats, cs)
	}
	return stats, rows.Err()
}

// baselineStats returns, per candidate video, the counts from the snapshot
// with the greatest bucket at or before the window start. Videos first seen
// inside the window simply have no entry.
func (s *RankingService) baselineStats(ctx context.Context, trackerID int64, windowStart time.Time) (map[string]baselineCounts, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT tc.video_id, snap.view_count, snap.like_count, snap.comment_count
		FROM tracker_candidates tc
		JOIN LATERAL (
			SELECT view_count, like_count, comment_count
			FROM video_snapshots vs
			WHERE vs.video_id = tc.video_id AND vs.captured_at <= $2
			ORDER BY vs.captured_at DESC
			LIMIT 1
		) snap ON TRUE
		WHERE tc.tracker_id = $1`, trackerID, windowStart)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	baselines := make(map[string]baselineCounts)
	for rows.Next() {
		var videoID string
		var bc baselineCounts
		if err := rows.Scan(&videoID, &bc.ViewCount, &bc.LikeCount, &bc.CommentCount); err != nil {
			return nil, err
		}
		baselines[videoID] = bc
	}
	return baselines, rows.Err()
}

// rankVideos scores candidates by the given metric, sorts descending, and
// truncates to topN. Missing counts score as 0; an absent baseline scores a
// windowed metric against 0, so a video first seen inside the window counts
// its full total as "delta". Equal scores order by video ID ascending.
func rankVideos(metric model.RankingMetric, windowHours int, latest []candidateStats, baselines map[string]baselineCounts, topN int) []model.TopVideo {
	ranked := make([]model.TopVideo, 0, len(latest))
	for _, cs := range latest {
		ranked = append(ranked, model.TopVideo{
			VideoID:            cs.VideoID,
			Title:              cs.Title,
			ChannelID:          cs.ChannelID,
			PublishedAt:        cs.PublishedAt,
			Score:              score(metric, windowHours, cs, baselines[cs.VideoID]),
			LatestViewCount:    cs.ViewCount,
			LatestLikeCount:    cs.LikeCount,
			LatestCommentCount: cs.CommentCount,
		})
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].VideoID < ranked[j].VideoID
	})

	if len(ranked) > topN {
		ranked = ranked[:topN]
	}
	return ranked
}

func score(metric model.RankingMetric, windowHours int, latest candidateStats, baseline baselineCounts) float64 {
	switch metric {
	case model.MetricViews:
		return float64(orZero(latest.ViewCount))
	case model.MetricLikes:
		return float64(orZero(latest.LikeCount))
	case model.MetricComments:
		return float64(orZero(latest.CommentCount))
	case model.MetricViewsDelta:
		return float64(orZero(latest.ViewCount) - orZero(baseline.ViewCount))
	case model.MetricLikesDelta:
		return float64(orZero(latest.LikeCount) - orZero(baseline.LikeCount))
	case model.MetricCommentsDelta:
		return float64(orZero(latest.CommentCount) - orZero(baseline.CommentCount))
	case model.MetricViewsVelocity:
		delta := orZero(latest.ViewCount) - orZero(baseline.ViewCount)
		return float64(delta) / float64(windowHours)
	}
	return 0
}

func orZero(n *int64) int64 {
	if n == nil {
		return 0
	}
	return *n
}
