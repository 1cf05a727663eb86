package service

import (
	"context"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/jackdevtech455/youtube-analytics/internal/metrics"
	"github.com/jackdevtech455/youtube-analytics/internal/repository"
	"github.com/jackdevtech455/youtube-analytics/internal/youtube"
	"github.com/jackdevtech455/youtube-analytics/pkg/timebucket"
)

// detailBatchSize is the external API's per-page cap for id-list lookups.
const detailBatchSize = 50

// SnapshotService captures one metrics reading per candidate video per hour
// bucket, refreshing each video's descriptive metadata along the way.
type SnapshotService struct {
	yt    *youtube.Client
	clock Clock
	log   zerolog.Logger
}

func NewSnapshotService(yt *youtube.Client, clock Clock, log zerolog.Logger) *SnapshotService {
	return &SnapshotService{
		yt:    yt,
		clock: clock,
		log:   log.With().Str("component", "snapshots").Logger(),
	}
}

// CollectAll snapshots every distinct video referenced by an active
// tracker's candidate pool. Re-running within the same hour bucket is a
// no-op for already-captured videos: the (video, bucket) unique key makes
// the insert idempotent. Returns the number of snapshot rows created.
func (s *SnapshotService) CollectAll(ctx context.Context, db repository.DB) (int, error) {
	rows, err := db.Query(ctx, `
		SELECT DISTINCT tc.video_id
		FROM tracker_candidates tc
		JOIN trackers t ON t.id = tc.tracker_id
		WHERE t.is_active
		ORDER BY tc.video_id`)
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	var videoIDs []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return 0, err
		}
		videoIDs = append(videoIDs, id)
	}
	if err := rows.Err(); err != nil {
		return 0, err
	}

	bucket := timebucket.Hour(s.clock.Now())
	created := 0

	for start := 0; start < len(videoIDs); start += detailBatchSize {
		end := min(start+detailBatchSize, len(videoIDs))

		items, err := s.yt.VideoDetails(ctx, videoIDs[start:end])
		if err != nil {
			return created, err
		}

		for _, item := range items {
			if item.ID == "" {
				continue
			}

			if err := s.upsertVideoMetadata(ctx, db, item); err != nil {
				return created, err
			}

			inserted, err := s.insertSnapshot(ctx, db, item, bucket)
			if err != nil {
				return created, err
			}
			if inserted {
				created++
			}
		}
	}

	metrics.Collectors.SnapshotsCreated.Add(float64(created))
	return created, nil
}

// upsertVideoMetadata refreshes a video's denormalized metadata. A publish
// timestamp that fails to parse is dropped, leaving the prior stored value.
func (s *SnapshotService) upsertVideoMetadata(ctx context.Context, db repository.DB, item youtube.VideoItem) error {
	publishedAt := s.parsePublishedAt(item.ID, item.Snippet.PublishedAt)

	_, err := db.Exec(ctx, `
		INSERT INTO videos (video_id, title, channel_id, duration_iso, published_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (video_id) DO UPDATE SET
			title = EXCLUDED.title,
			channel_id = EXCLUDED.channel_id,
			duration_iso = EXCLUDED.duration_iso,
			published_at = COALESCE(EXCLUDED.published_at, videos.published_at)`,
		item.ID, nilIfEmpty(item.Snippet.Title), nilIfEmpty(item.Snippet.ChannelID),
		nilIfEmpty(item.ContentDetails.Duration), publishedAt)
	return err
}

func (s *SnapshotService) insertSnapshot(ctx context.Context, db repository.DB, item youtube.VideoItem, bucket time.Time) (bool, error) {
	tag, err := db.Exec(ctx, `
		INSERT INTO video_snapshots (video_id, captured_at, view_count, like_count, comment_count)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (video_id, captured_at) DO NOTHING`,
		item.ID, bucket,
		s.parseCount(item.ID, "viewCount", item.Statistics.ViewCount),
		s.parseCount(item.ID, "likeCount", item.Statistics.LikeCount),
		s.parseCount(item.ID, "commentCount", item.Statistics.CommentCount))
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (s *SnapshotService) parsePublishedAt(videoID, raw string) *time.Time {
	if raw == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		// Best-effort field update, errors discarded; logged apart from
		// transport failures so data-quality issues stay observable.
		s.log.Debug().Str("event", "data_quality").Str("video_id", videoID).
			Str("published_at", raw).Msg("unparseable publish timestamp dropped")
		return nil
	}
	return &t
}

// parseCount converts a wire-format decimal count to a nullable value. A
// metric the provider omitted or mangled stays absent, never zero.
func (s *SnapshotService) parseCount(videoID, field, raw string) *int64 {
	if raw == "" {
		return nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		s.log.Debug().Str("event", "data_quality").Str("video_id", videoID).
			Str("field", field).Str("value", raw).Msg("unparseable count dropped")
		return nil
	}
	return &n
}

func nilIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
