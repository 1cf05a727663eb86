package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jackdevtech455/youtube-analytics/internal/model"
)

type VideoRepo struct {
	pool *pgxpool.Pool
}

func NewVideoRepo(pool *pgxpool.Pool) *VideoRepo {
	return &VideoRepo{pool: pool}
}

// timeseriesColumns whitelists the snapshot metric columns the timeseries
// endpoint may select. Never interpolate user input into SQL outside this map.
var timeseriesColumns = map[string]string{
	"view_count":    "view_count",
	"like_count":    "like_count",
	"comment_count": "comment_count",
}

// ValidTimeseriesMetric reports whether metric names a queryable snapshot column.
func ValidTimeseriesMetric(metric string) bool {
	_, ok := timeseriesColumns[metric]
	return ok
}

// Timeseries returns the snapshot series of one metric for a video since the
// given instant, oldest first.
func (r *VideoRepo) Timeseries(ctx context.Context, videoID, metric string, since time.Time) ([]model.TimeSeriesPoint, error) {
	column, ok := timeseriesColumns[metric]
	if !ok {
		return nil, fmt.Errorf("unknown timeseries metric: %s", metric)
	}

	query := fmt.Sprintf(`
		SELECT captured_at, %s
		FROM video_snapshots
		WHERE video_id = $1 AND captured_at >= $2
		ORDER BY captured_at ASC`, column)

	rows, err := r.pool.Query(ctx, query, videoID, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var points []model.TimeSeriesPoint
	for rows.Next() {
		var p model.TimeSeriesPoint
		if err := rows.Scan(&p.CapturedAt, &p.Value); err != nil {
			return nil, err
		}
		points = append(points, p)
	}
	return points, rows.Err()
}

// FindByVideoID returns a single video row by its external ID.
func (r *VideoRepo) FindByVideoID(ctx context.Context, videoID string) (*model.Video, error) {
	query := `
		SELECT video_id, channel_id, title, published_at, duration_iso, created_at
		FROM videos
		WHERE video_id = $1`

	var v model.Video
	err := r.pool.QueryRow(ctx, query, videoID).Scan(
		&v.VideoID, &v.ChannelID, &v.Title, &v.PublishedAt, &v.DurationISO, &v.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
