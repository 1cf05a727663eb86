package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jackdevtech455/youtube-analytics/internal/model"
)

const trackerColumns = `
	id, mode, channel_id, search_query, top_n, candidate_pool_size,
	ranking_metric, ranking_window_hours, eviction_policy,
	next_discovery_at, next_snapshot_at, is_active, created_at`

func scanTracker(row pgx.Row) (model.Tracker, error) {
	var t model.Tracker
	err := row.Scan(
		&t.ID, &t.Mode, &t.ChannelID, &t.SearchQuery, &t.TopN, &t.CandidatePoolSize,
		&t.RankingMetric, &t.RankingWindowHours, &t.EvictionPolicy,
		&t.NextDiscoveryAt, &t.NextSnapshotAt, &t.IsActive, &t.CreatedAt,
	)
	return t, err
}

type TrackerRepo struct {
	pool *pgxpool.Pool
}

func NewTrackerRepo(pool *pgxpool.Pool) *TrackerRepo {
	return &TrackerRepo{pool: pool}
}

// Create inserts a tracker and fills in its generated ID and creation time.
func (r *TrackerRepo) Create(ctx context.Context, t *model.Tracker) error {
	query := `
		INSERT INTO trackers (mode, channel_id, search_query, top_n, candidate_pool_size,
		                      ranking_metric, ranking_window_hours, eviction_policy, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at`

	return r.pool.QueryRow(ctx, query,
		t.Mode, t.ChannelID, t.SearchQuery, t.TopN, t.CandidatePoolSize,
		t.RankingMetric, t.RankingWindowHours, t.EvictionPolicy, t.IsActive,
	).Scan(&t.ID, &t.CreatedAt)
}

// FindByID returns a single tracker by its ID.
func (r *TrackerRepo) FindByID(ctx context.Context, id int64) (*model.Tracker, error) {
	query := `SELECT` + trackerColumns + ` FROM trackers WHERE id = $1`

	t, err := scanTracker(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// List returns all trackers, newest first.
func (r *TrackerRepo) List(ctx context.Context) ([]model.Tracker, error) {
	query := `SELECT` + trackerColumns + ` FROM trackers ORDER BY id DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trackers []model.Tracker
	for rows.Next() {
		t, err := scanTracker(rows)
		if err != nil {
			return nil, err
		}
		trackers = append(trackers, t)
	}
	return trackers, rows.Err()
}

// Update persists the mutable tracker fields.
func (r *TrackerRepo) Update(ctx context.Context, t *model.Tracker) error {
	query := `
		UPDATE trackers
		SET top_n = $1, candidate_pool_size = $2, ranking_metric = $3,
		    ranking_window_hours = $4, eviction_policy = $5, is_active = $6
		WHERE id = $7`

	_, err := r.pool.Exec(ctx, query,
		t.TopN, t.CandidatePoolSize, t.RankingMetric,
		t.RankingWindowHours, t.EvictionPolicy, t.IsActive, t.ID)
	return err
}

// Delete removes a tracker; candidate memberships cascade.
func (r *TrackerRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM trackers WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// ListActiveTrackers returns all active trackers through the given pool or
// transaction. Used by the worker passes.
func ListActiveTrackers(ctx context.Context, db DB) ([]model.Tracker, error) {
	query := `SELECT` + trackerColumns + ` FROM trackers WHERE is_active ORDER BY id`

	rows, err := db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trackers []model.Tracker
	for rows.Next() {
		t, err := scanTracker(rows)
		if err != nil {
			return nil, err
		}
		trackers = append(trackers, t)
	}
	return trackers, rows.Err()
}

// UpdateTrackerSchedule persists a tracker's next-due instants.
func UpdateTrackerSchedule(ctx context.Context, db DB, id int64, nextDiscoveryAt, nextSnapshotAt *time.Time) error {
	_, err := db.Exec(ctx,
		`UPDATE trackers SET next_discovery_at = $1, next_snapshot_at = $2 WHERE id = $3`,
		nextDiscoveryAt, nextSnapshotAt, id)
	return err
}
